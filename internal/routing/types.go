package routing

import (
	"strings"

	"github.com/containerd/errdefs"
	"github.com/pkg/errors"

	"school_transport/internal/models"
	"school_transport/internal/repository"
)

// Mode selects how a candidate stop list is reconciled with the stored one.
type Mode string

const (
	// ModeReplace treats the candidates as the complete set: every stored stop
	// is dropped and the candidates are inserted renumbered 0..n-1.
	ModeReplace Mode = "replace"
	// ModeUpsert keeps stops referenced by id, creates those without an id and
	// deletes stored stops that are not referenced.
	ModeUpsert Mode = "upsert"
)

// ParseMode returns the mode named by s. An empty string selects ModeReplace.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeReplace:
		return ModeReplace, nil
	case ModeUpsert:
		return ModeUpsert, nil
	default:
		return "", errors.Wrapf(errdefs.ErrInvalidArgument, "unknown reconcile mode %q", s)
	}
}

// RoutePatch carries the optional route fields sent along with a stop list.
type RoutePatch struct {
	Name     *string        `json:"name"`
	DriverID Optional[uint] `json:"driver_id"`
}

func (p RoutePatch) fields() (repository.RouteFields, error) {
	var f repository.RouteFields
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return f, errors.Wrap(errdefs.ErrInvalidArgument, "route name must not be empty")
		}
		f.Name = &name
	}
	if p.DriverID.Set {
		f.SetDriver = true
		f.DriverID = p.DriverID.Value
	}
	return f, nil
}

// StopInput is one candidate stop. OrderIndex is mandatory; ID is only
// meaningful for ModeUpsert where it names the stored stop to update.
type StopInput struct {
	ID           *uint    `json:"id"`
	OrderIndex   *int     `json:"order_index"`
	Label        *string  `json:"label"`
	Street       *string  `json:"street"`
	Number       *string  `json:"number"`
	Neighborhood *string  `json:"neighborhood"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

func (in StopInput) toStop(routeID uint, orderIndex int) models.RouteStop {
	return models.RouteStop{
		RouteID:      routeID,
		OrderIndex:   orderIndex,
		Label:        in.Label,
		Street:       in.Street,
		Number:       in.Number,
		Neighborhood: in.Neighborhood,
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
	}
}

func checkOrderIndex(idx *int, pos int) error {
	if idx == nil {
		return errors.Wrapf(errdefs.ErrInvalidArgument, "stop %d: order_index is required", pos)
	}
	if *idx < 0 {
		return errors.Wrapf(errdefs.ErrInvalidArgument, "stop %d: order_index must be >= 0, got %d", pos, *idx)
	}
	return nil
}

// validateCandidates checks that every candidate has a usable order index
// and only then that no index repeats, so a malformed list is always Invalid.
func validateCandidates(candidates []StopInput) error {
	for i, c := range candidates {
		if err := checkOrderIndex(c.OrderIndex, i); err != nil {
			return err
		}
	}
	seen := make(map[int]struct{}, len(candidates))
	for _, c := range candidates {
		if _, dup := seen[*c.OrderIndex]; dup {
			return errors.Wrapf(errdefs.ErrConflict, "duplicate order_index %d: each stop needs a unique index", *c.OrderIndex)
		}
		seen[*c.OrderIndex] = struct{}{}
	}
	return nil
}
