package routing

import (
	"context"
	"sort"

	"github.com/containerd/errdefs"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"school_transport/internal/models"
	"school_transport/internal/repository"
)

// Reconcile dispatches to ReplaceStops or UpsertStops according to mode.
func (s *Service) Reconcile(ctx context.Context, mode Mode, routeID uint, patch RoutePatch, candidates []StopInput) (*models.Route, error) {
	switch mode {
	case ModeReplace:
		return s.ReplaceStops(ctx, routeID, patch, candidates)
	case ModeUpsert:
		return s.UpsertStops(ctx, routeID, patch, candidates)
	default:
		return nil, errors.Wrapf(errdefs.ErrInvalidArgument, "unknown reconcile mode %q", mode)
	}
}

// PatchRoute applies patch without touching the route's stops.
func (s *Service) PatchRoute(ctx context.Context, routeID uint, patch RoutePatch) (*models.Route, error) {
	fields, err := patch.fields()
	if err != nil {
		return nil, err
	}
	if _, err := s.store.GetRoute(ctx, routeID); err != nil {
		return nil, err
	}

	err = s.store.Atomically(ctx, func(tx repository.Tx) error {
		return tx.UpdateRouteFields(routeID, fields)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "update route %d", routeID)
	}
	return s.store.GetRoute(ctx, routeID)
}

// ReplaceStops makes candidates the complete stop list of the route.
//
// Candidates are sorted by their submitted order index and renumbered
// 0..n-1; submitted ids are ignored and fresh rows are created. The route
// patch, the removal of every stored stop and the insert of the new list
// commit together or not at all.
func (s *Service) ReplaceStops(ctx context.Context, routeID uint, patch RoutePatch, candidates []StopInput) (*models.Route, error) {
	fields, err := patch.fields()
	if err != nil {
		return nil, err
	}
	if err := validateCandidates(candidates); err != nil {
		return nil, err
	}
	if _, err := s.store.GetRoute(ctx, routeID); err != nil {
		return nil, err
	}

	normalized := normalize(routeID, candidates)

	err = s.store.Atomically(ctx, func(tx repository.Tx) error {
		if err := tx.UpdateRouteFields(routeID, fields); err != nil {
			return err
		}
		if err := tx.DeleteStopsByRoute(routeID); err != nil {
			return err
		}
		return tx.CreateStops(normalized)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "replace stops of route %d", routeID)
	}

	s.log.WithFields(logrus.Fields{
		"route_id": routeID,
		"stops":    len(normalized),
	}).Info("route stops replaced")
	return s.store.GetRoute(ctx, routeID)
}

// normalize sorts candidates by order index and renumbers them densely.
func normalize(routeID uint, candidates []StopInput) []models.RouteStop {
	sorted := make([]StopInput, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return *sorted[i].OrderIndex < *sorted[j].OrderIndex
	})

	stops := make([]models.RouteStop, len(sorted))
	for i, c := range sorted {
		stops[i] = c.toStop(routeID, i)
	}
	return stops
}

// UpsertStops reconciles candidates with the stored stops by id.
//
// Candidates with an id update that stop, which must belong to the route.
// Candidates without one are created. Stored stops that no candidate
// references are deleted. Order indices are kept as submitted; the store's
// unique constraint is checked against the committed result.
func (s *Service) UpsertStops(ctx context.Context, routeID uint, patch RoutePatch, candidates []StopInput) (*models.Route, error) {
	fields, err := patch.fields()
	if err != nil {
		return nil, err
	}
	if err := validateCandidates(candidates); err != nil {
		return nil, err
	}

	route, err := s.store.GetRoute(ctx, routeID)
	if err != nil {
		return nil, err
	}
	owned := make(map[uint]bool, len(route.Stops))
	for _, st := range route.Stops {
		owned[st.ID] = true
	}

	var (
		creates []models.RouteStop
		updates []models.RouteStop
		kept    = make(map[uint]bool, len(candidates))
	)
	for i, c := range candidates {
		if c.ID == nil {
			creates = append(creates, c.toStop(routeID, *c.OrderIndex))
			continue
		}
		id := *c.ID
		if kept[id] {
			return nil, errors.Wrapf(errdefs.ErrInvalidArgument, "stop %d: id %d listed more than once", i, id)
		}
		if !owned[id] {
			if err := s.checkForeignStop(ctx, routeID, id); err != nil {
				return nil, err
			}
		}
		kept[id] = true

		st := c.toStop(routeID, *c.OrderIndex)
		st.ID = id
		updates = append(updates, st)
	}

	var deletes []uint
	for _, st := range route.Stops {
		if !kept[st.ID] {
			deletes = append(deletes, st.ID)
		}
	}

	err = s.store.Atomically(ctx, func(tx repository.Tx) error {
		if err := tx.UpdateRouteFields(routeID, fields); err != nil {
			return err
		}
		if err := tx.DeleteStopsByIDs(routeID, deletes); err != nil {
			return err
		}
		if err := tx.CreateStops(creates); err != nil {
			return err
		}
		for _, st := range updates {
			if err := tx.UpdateStop(st); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "upsert stops of route %d", routeID)
	}

	s.log.WithFields(logrus.Fields{
		"route_id": routeID,
		"created":  len(creates),
		"updated":  len(updates),
		"deleted":  len(deletes),
	}).Info("route stops upserted")
	return s.store.GetRoute(ctx, routeID)
}

// checkForeignStop is called for a candidate id the route did not list.
// A missing stop is NotFound, a stop of another route is a Conflict.
func (s *Service) checkForeignStop(ctx context.Context, routeID, id uint) error {
	st, err := s.store.GetStop(ctx, id)
	if err != nil {
		return err
	}
	if st.RouteID != routeID {
		return errors.Wrapf(errdefs.ErrConflict, "stop %d belongs to route %d, not %d", id, st.RouteID, routeID)
	}
	return nil
}
