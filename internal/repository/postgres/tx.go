package postgres

import (
	"github.com/containerd/errdefs"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"school_transport/internal/models"
	"school_transport/internal/repository"
)

type txn struct {
	db *gorm.DB
}

func (t *txn) UpdateRouteFields(routeID uint, fields repository.RouteFields) error {
	if fields.Empty() {
		return nil
	}
	updates := map[string]interface{}{}
	if fields.Name != nil {
		updates["name"] = *fields.Name
	}
	if fields.SetDriver {
		updates["driver_id"] = fields.DriverID
	}

	res := t.db.Model(&models.Route{}).Where("id = ?", routeID).Updates(updates)
	if res.Error != nil {
		return Classify(res.Error, "update route %d", routeID)
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(errdefs.ErrNotFound, "route %d", routeID)
	}
	return nil
}

func (t *txn) DeleteStopsByIDs(routeID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	err := t.db.Where("route_id = ? AND id IN ?", routeID, ids).Delete(&models.RouteStop{}).Error
	return Classify(err, "delete %d stops of route %d", len(ids), routeID)
}

func (t *txn) DeleteStopsByRoute(routeID uint) error {
	err := t.db.Where("route_id = ?", routeID).Delete(&models.RouteStop{}).Error
	return Classify(err, "delete stops of route %d", routeID)
}

func (t *txn) CreateStops(stops []models.RouteStop) error {
	if len(stops) == 0 {
		return nil
	}
	err := t.db.Omit(clause.Associations).Create(&stops).Error
	return Classify(err, "create %d stops", len(stops))
}

func (t *txn) UpdateStop(stop models.RouteStop) error {
	res := t.db.Model(&models.RouteStop{}).
		Where("id = ? AND route_id = ?", stop.ID, stop.RouteID).
		Updates(map[string]interface{}{
			"order_index":  stop.OrderIndex,
			"label":        stop.Label,
			"street":       stop.Street,
			"number":       stop.Number,
			"neighborhood": stop.Neighborhood,
			"latitude":     stop.Latitude,
			"longitude":    stop.Longitude,
		})
	if res.Error != nil {
		return Classify(res.Error, "update route stop %d", stop.ID)
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(errdefs.ErrConflict, "route stop %d is not owned by route %d", stop.ID, stop.RouteID)
	}
	return nil
}

func (t *txn) DeleteRoute(routeID uint) error {
	res := t.db.Where("id = ?", routeID).Delete(&models.Route{})
	if res.Error != nil {
		return Classify(res.Error, "delete route %d", routeID)
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(errdefs.ErrNotFound, "route %d", routeID)
	}
	return nil
}
