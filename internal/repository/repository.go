package repository

import (
	"context"

	"school_transport/internal/models"
)

// RouteStore is the transactional record store for routes and their stops.
//
// Lookups of a missing record fail with errdefs.ErrNotFound. Writes rejected by
// the (route_id, order_index) unique constraint or by a foreign key fail with
// errdefs.ErrConflict. Infrastructure failures (lost connection, deadlock,
// serialization failure) fail with errdefs.ErrUnavailable.
type RouteStore interface {
	// Routes
	GetRoute(ctx context.Context, id uint) (*models.Route, error)
	ListRoutes(ctx context.Context) ([]models.Route, error)
	CreateRoute(ctx context.Context, route *models.Route) error

	// Stops. ListStops with routeID 0 lists the stops of every route.
	ListStops(ctx context.Context, routeID uint) ([]models.RouteStop, error)
	GetStop(ctx context.Context, id uint) (*models.RouteStop, error)
	FindStopByOrder(ctx context.Context, routeID uint, orderIndex int, excludeID uint) (*models.RouteStop, error)
	CreateStop(ctx context.Context, stop *models.RouteStop) error
	SaveStop(ctx context.Context, stop *models.RouteStop) error
	DeleteStop(ctx context.Context, id uint) error

	// Atomically runs fn in one transaction. Any error returned by fn, or
	// raised at commit, rolls back every write made through tx.
	Atomically(ctx context.Context, fn func(tx Tx) error) error
}

// Tx holds the write primitives available inside Atomically.
type Tx interface {
	UpdateRouteFields(routeID uint, fields RouteFields) error
	DeleteStopsByIDs(routeID uint, ids []uint) error
	DeleteStopsByRoute(routeID uint) error
	CreateStops(stops []models.RouteStop) error
	// UpdateStop rewrites the attributes and order index of an existing stop.
	// The stop must belong to stop.RouteID.
	UpdateStop(stop models.RouteStop) error
	DeleteRoute(routeID uint) error
}

// RouteFields lists the mutable route columns to write.
// A nil Name leaves the name untouched; DriverID is only written when SetDriver is true.
type RouteFields struct {
	Name      *string
	SetDriver bool
	DriverID  *uint
}

// Empty reports whether there is nothing to write.
func (f RouteFields) Empty() bool {
	return f.Name == nil && !f.SetDriver
}
