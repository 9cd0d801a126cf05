// Package routing manages routes and their ordered stops.
//
// The central operation is stop sequence reconciliation: making the stored
// stops of a route match a client-submitted candidate list in one atomic
// step, either as a full replace or as an incremental upsert. Single-stop
// CRUD and the route lifecycle live here as well so every write to
// route_stops goes through code that respects the per-route ordering
// invariant.
package routing

import (
	"context"
	"strings"

	"github.com/containerd/errdefs"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"school_transport/internal/models"
	"school_transport/internal/repository"
)

// Service implements route and stop operations on top of a RouteStore.
type Service struct {
	store repository.RouteStore
	log   logrus.FieldLogger
}

// NewService creates a Service. A nil log uses the logrus standard logger.
func NewService(store repository.RouteStore, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{store: store, log: log}
}

// ListRoutes returns every route ordered by name with its stops ordered by index.
func (s *Service) ListRoutes(ctx context.Context) ([]models.Route, error) {
	return s.store.ListRoutes(ctx)
}

// GetRoute returns the route with its stops ordered by index.
func (s *Service) GetRoute(ctx context.Context, id uint) (*models.Route, error) {
	return s.store.GetRoute(ctx, id)
}

// CreateRoute creates an empty route. The name is trimmed and must not be empty.
func (s *Service) CreateRoute(ctx context.Context, name string, driverID *uint) (*models.Route, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.Wrap(errdefs.ErrInvalidArgument, "route name is required")
	}

	route := models.Route{Name: name, DriverID: driverID}
	if err := s.store.CreateRoute(ctx, &route); err != nil {
		return nil, err
	}
	s.log.WithField("route_id", route.ID).Info("route created")
	return s.store.GetRoute(ctx, route.ID)
}

// DeleteRoute removes the route and its stops in one transaction.
// Rows elsewhere that still reference the route make it fail with a conflict.
func (s *Service) DeleteRoute(ctx context.Context, id uint) error {
	if _, err := s.store.GetRoute(ctx, id); err != nil {
		return err
	}

	err := s.store.Atomically(ctx, func(tx repository.Tx) error {
		if err := tx.DeleteStopsByRoute(id); err != nil {
			return err
		}
		return tx.DeleteRoute(id)
	})
	if err != nil {
		return errors.Wrapf(err, "delete route %d", id)
	}
	s.log.WithField("route_id", id).Info("route deleted")
	return nil
}
