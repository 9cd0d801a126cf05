package postgres

import (
	"context"
	"fmt"

	"github.com/containerd/errdefs"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"school_transport/internal/models"
	"school_transport/internal/repository"
)

// Store implements repository.RouteStore on GORM.
type Store struct {
	db *gorm.DB
}

var _ repository.RouteStore = (*Store)(nil)

// New returns a Store backed by db.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// EnsureConstraints installs the deferred (route_id, order_index) unique
// constraint on route_stops. It is a no-op when the constraint exists.
func EnsureConstraints(db *gorm.DB) error {
	stmt := fmt.Sprintf(`DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%[1]s') THEN
		ALTER TABLE route_stops ADD CONSTRAINT %[1]s
			UNIQUE (route_id, order_index) DEFERRABLE INITIALLY DEFERRED;
	END IF;
END
$$;`, models.RouteStopOrderConstraint)
	return Classify(db.Exec(stmt).Error, "install route stop order constraint")
}

func orderedStops(db *gorm.DB) *gorm.DB {
	return db.Order("order_index ASC")
}

func (s *Store) GetRoute(ctx context.Context, id uint) (*models.Route, error) {
	var route models.Route
	err := s.db.WithContext(ctx).Preload("Stops", orderedStops).First(&route, id).Error
	if err != nil {
		return nil, Classify(err, "route %d", id)
	}
	return &route, nil
}

func (s *Store) ListRoutes(ctx context.Context) ([]models.Route, error) {
	var routes []models.Route
	err := s.db.WithContext(ctx).Preload("Stops", orderedStops).Order("name ASC").Find(&routes).Error
	if err != nil {
		return nil, Classify(err, "list routes")
	}
	return routes, nil
}

func (s *Store) CreateRoute(ctx context.Context, route *models.Route) error {
	err := s.db.WithContext(ctx).Omit(clause.Associations).Create(route).Error
	return Classify(err, "create route %q", route.Name)
}

func (s *Store) ListStops(ctx context.Context, routeID uint) ([]models.RouteStop, error) {
	var stops []models.RouteStop
	q := s.db.WithContext(ctx)
	if routeID != 0 {
		q = q.Where("route_id = ?", routeID)
	}
	if err := q.Order("route_id ASC").Order("order_index ASC").Find(&stops).Error; err != nil {
		return nil, Classify(err, "list stops of route %d", routeID)
	}
	return stops, nil
}

func (s *Store) GetStop(ctx context.Context, id uint) (*models.RouteStop, error) {
	var stop models.RouteStop
	if err := s.db.WithContext(ctx).First(&stop, id).Error; err != nil {
		return nil, Classify(err, "route stop %d", id)
	}
	return &stop, nil
}

// FindStopByOrder returns the stop of routeID at orderIndex, ignoring
// excludeID when non-zero. It returns nil, nil when there is none.
func (s *Store) FindStopByOrder(ctx context.Context, routeID uint, orderIndex int, excludeID uint) (*models.RouteStop, error) {
	var stops []models.RouteStop
	q := s.db.WithContext(ctx).Where("route_id = ? AND order_index = ?", routeID, orderIndex)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Limit(1).Find(&stops).Error; err != nil {
		return nil, Classify(err, "find stop %d of route %d", orderIndex, routeID)
	}
	if len(stops) == 0 {
		return nil, nil
	}
	return &stops[0], nil
}

func (s *Store) CreateStop(ctx context.Context, stop *models.RouteStop) error {
	err := s.db.WithContext(ctx).Create(stop).Error
	return Classify(err, "create stop %d of route %d", stop.OrderIndex, stop.RouteID)
}

// SaveStop writes every column of stop, including nil attributes.
func (s *Store) SaveStop(ctx context.Context, stop *models.RouteStop) error {
	res := s.db.WithContext(ctx).Model(stop).Select("*").Omit("id", "created_at").Updates(stop)
	if res.Error != nil {
		return Classify(res.Error, "update route stop %d", stop.ID)
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(errdefs.ErrNotFound, "route stop %d", stop.ID)
	}
	return nil
}

func (s *Store) DeleteStop(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.RouteStop{}, id)
	if res.Error != nil {
		return Classify(res.Error, "delete route stop %d", id)
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(errdefs.ErrNotFound, "route stop %d", id)
	}
	return nil
}

// Atomically runs fn inside a GORM transaction. Deferred constraint
// violations surface from the commit and are classified like any other write.
func (s *Store) Atomically(ctx context.Context, fn func(tx repository.Tx) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txn{db: tx})
	})
	return Classify(err, "transaction")
}
