package routing

import (
	"context"

	"github.com/containerd/errdefs"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"school_transport/internal/models"
)

// StopUpdate is a partial update of one stop. Unset fields are left as
// they are; a set-but-null attribute clears it. RouteID and OrderIndex
// cannot be null.
type StopUpdate struct {
	RouteID      Optional[uint]    `json:"route_id"`
	OrderIndex   Optional[int]     `json:"order_index"`
	Label        Optional[string]  `json:"label"`
	Street       Optional[string]  `json:"street"`
	Number       Optional[string]  `json:"number"`
	Neighborhood Optional[string]  `json:"neighborhood"`
	Latitude     Optional[float64] `json:"latitude"`
	Longitude    Optional[float64] `json:"longitude"`
}

// ListStops returns the stops of routeID ordered by index, or the stops of
// every route when routeID is 0.
func (s *Service) ListStops(ctx context.Context, routeID uint) ([]models.RouteStop, error) {
	return s.store.ListStops(ctx, routeID)
}

func (s *Service) GetStop(ctx context.Context, id uint) (*models.RouteStop, error) {
	return s.store.GetStop(ctx, id)
}

// CreateStop adds a single stop to routeID. The id is always assigned by the store.
func (s *Service) CreateStop(ctx context.Context, routeID uint, in StopInput) (*models.RouteStop, error) {
	if in.ID != nil {
		return nil, errors.Wrap(errdefs.ErrInvalidArgument, "id is assigned by the server and must not be sent")
	}
	if err := checkOrderIndex(in.OrderIndex, 0); err != nil {
		return nil, err
	}
	if _, err := s.store.GetRoute(ctx, routeID); err != nil {
		return nil, err
	}
	if err := s.checkOrderFree(ctx, routeID, *in.OrderIndex, 0); err != nil {
		return nil, err
	}

	stop := in.toStop(routeID, *in.OrderIndex)
	if err := s.store.CreateStop(ctx, &stop); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"route_id": routeID,
		"stop_id":  stop.ID,
	}).Debug("route stop created")
	return &stop, nil
}

// UpdateStop applies upd to the stop. Moving a stop to another route or
// index re-checks that the target slot is free.
func (s *Service) UpdateStop(ctx context.Context, id uint, upd StopUpdate) (*models.RouteStop, error) {
	stop, err := s.store.GetStop(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.RouteID.Set {
		if upd.RouteID.Value == nil {
			return nil, errors.Wrap(errdefs.ErrInvalidArgument, "route_id must not be null")
		}
		if *upd.RouteID.Value != stop.RouteID {
			if _, err := s.store.GetRoute(ctx, *upd.RouteID.Value); err != nil {
				return nil, err
			}
			stop.RouteID = *upd.RouteID.Value
		}
	}
	if upd.OrderIndex.Set {
		if err := checkOrderIndex(upd.OrderIndex.Value, 0); err != nil {
			return nil, err
		}
		stop.OrderIndex = *upd.OrderIndex.Value
	}
	applyOptional(&stop.Label, upd.Label)
	applyOptional(&stop.Street, upd.Street)
	applyOptional(&stop.Number, upd.Number)
	applyOptional(&stop.Neighborhood, upd.Neighborhood)
	applyOptional(&stop.Latitude, upd.Latitude)
	applyOptional(&stop.Longitude, upd.Longitude)

	if err := s.checkOrderFree(ctx, stop.RouteID, stop.OrderIndex, stop.ID); err != nil {
		return nil, err
	}
	if err := s.store.SaveStop(ctx, stop); err != nil {
		return nil, err
	}
	return stop, nil
}

func (s *Service) DeleteStop(ctx context.Context, id uint) error {
	if _, err := s.store.GetStop(ctx, id); err != nil {
		return err
	}
	return s.store.DeleteStop(ctx, id)
}

func (s *Service) checkOrderFree(ctx context.Context, routeID uint, orderIndex int, exclude uint) error {
	clash, err := s.store.FindStopByOrder(ctx, routeID, orderIndex, exclude)
	if err != nil {
		return err
	}
	if clash != nil {
		return errors.Wrapf(errdefs.ErrConflict, "route %d already has a stop at order_index %d", routeID, orderIndex)
	}
	return nil
}

func applyOptional[T any](dst **T, o Optional[T]) {
	if o.Set {
		*dst = o.Value
	}
}
