package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/containerd/errdefs"
	"github.com/pkg/errors"

	"school_transport/internal/models"
	"school_transport/internal/repository"
)

// Store is an in-memory repository.RouteStore used by tests.
//
// Atomically works on the live maps and restores a snapshot when fn fails.
// The (route_id, order_index) uniqueness is checked once fn returns, like a
// deferred constraint at commit.
type Store struct {
	mu     sync.Mutex
	routes map[uint]models.Route
	stops  map[uint]models.RouteStop
	nextID uint

	failOn map[string]error
	txs    int
}

var _ repository.RouteStore = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	return &Store{
		routes: make(map[uint]models.Route),
		stops:  make(map[uint]models.RouteStop),
		failOn: make(map[string]error),
	}
}

// State is a copy of the stored rows, comparable with go-cmp.
type State struct {
	Routes map[uint]models.Route
	Stops  map[uint]models.RouteStop
}

// Snapshot returns a copy of every stored route and stop.
func (m *Store) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// FailOn makes the named Tx primitive, or "commit", fail with err.
func (m *Store) FailOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOn[op] = err
}

// Transactions reports how many times Atomically was called.
func (m *Store) Transactions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.txs
}

func (m *Store) snapshotLocked() State {
	st := State{
		Routes: make(map[uint]models.Route, len(m.routes)),
		Stops:  make(map[uint]models.RouteStop, len(m.stops)),
	}
	for k, v := range m.routes {
		st.Routes[k] = v
	}
	for k, v := range m.stops {
		st.Stops[k] = v
	}
	return st
}

func (m *Store) id() uint {
	m.nextID++
	return m.nextID
}

// AddRoute stores a route named name and returns its id.
func (m *Store) AddRoute(name string) uint {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.id()
	m.routes[id] = models.Route{ID: id, Name: name}
	return id
}

// AddStop stores a stop without any uniqueness check and returns its id.
func (m *Store) AddStop(routeID uint, orderIndex int, label string) uint {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.id()
	m.stops[id] = models.RouteStop{ID: id, RouteID: routeID, OrderIndex: orderIndex, Label: &label}
	return id
}

func (m *Store) sortedStops(routeID uint) []models.RouteStop {
	out := []models.RouteStop{}
	for _, st := range m.stops {
		if routeID == 0 || st.RouteID == routeID {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RouteID != out[j].RouteID {
			return out[i].RouteID < out[j].RouteID
		}
		if out[i].OrderIndex != out[j].OrderIndex {
			return out[i].OrderIndex < out[j].OrderIndex
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *Store) checkUnique() error {
	seen := make(map[[2]int]uint)
	for _, st := range m.stops {
		key := [2]int{int(st.RouteID), st.OrderIndex}
		if other, ok := seen[key]; ok {
			return errors.Wrapf(errdefs.ErrConflict, "stops %d and %d share order_index %d", other, st.ID, st.OrderIndex)
		}
		seen[key] = st.ID
	}
	return nil
}

func (m *Store) GetRoute(_ context.Context, id uint) (*models.Route, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.routes[id]
	if !ok {
		return nil, errors.Wrapf(errdefs.ErrNotFound, "route %d", id)
	}
	r.Stops = m.sortedStops(id)
	return &r, nil
}

func (m *Store) ListRoutes(_ context.Context) ([]models.Route, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Route
	for _, r := range m.routes {
		r.Stops = m.sortedStops(r.ID)
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Store) CreateRoute(_ context.Context, route *models.Route) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	route.ID = m.id()
	stored := *route
	stored.Stops = nil
	m.routes[route.ID] = stored
	return nil
}

func (m *Store) ListStops(_ context.Context, routeID uint) ([]models.RouteStop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedStops(routeID), nil
}

func (m *Store) GetStop(_ context.Context, id uint) (*models.RouteStop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.stops[id]
	if !ok {
		return nil, errors.Wrapf(errdefs.ErrNotFound, "route stop %d", id)
	}
	return &st, nil
}

func (m *Store) FindStopByOrder(_ context.Context, routeID uint, orderIndex int, excludeID uint) (*models.RouteStop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, st := range m.sortedStops(routeID) {
		if st.OrderIndex == orderIndex && st.ID != excludeID {
			return &st, nil
		}
	}
	return nil, nil
}

func (m *Store) CreateStop(_ context.Context, stop *models.RouteStop) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.routes[stop.RouteID]; !ok {
		return errors.Wrapf(errdefs.ErrConflict, "route %d does not exist", stop.RouteID)
	}
	stop.ID = m.id()
	m.stops[stop.ID] = *stop
	if err := m.checkUnique(); err != nil {
		delete(m.stops, stop.ID)
		return err
	}
	return nil
}

func (m *Store) SaveStop(_ context.Context, stop *models.RouteStop) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.stops[stop.ID]
	if !ok {
		return errors.Wrapf(errdefs.ErrNotFound, "route stop %d", stop.ID)
	}
	m.stops[stop.ID] = *stop
	if err := m.checkUnique(); err != nil {
		m.stops[stop.ID] = prev
		return err
	}
	return nil
}

func (m *Store) DeleteStop(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.stops[id]; !ok {
		return errors.Wrapf(errdefs.ErrNotFound, "route stop %d", id)
	}
	delete(m.stops, id)
	return nil
}

func (m *Store) Atomically(_ context.Context, fn func(tx repository.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txs++

	before := m.snapshotLocked()
	nextID := m.nextID
	rollback := func() {
		m.routes, m.stops, m.nextID = before.Routes, before.Stops, nextID
	}

	if err := fn(&memTx{m: m}); err != nil {
		rollback()
		return err
	}
	if err := m.failOn["commit"]; err != nil {
		rollback()
		return err
	}
	if err := m.checkUnique(); err != nil {
		rollback()
		return err
	}
	return nil
}

// memTx runs with Store.mu held by Atomically.
type memTx struct {
	m *Store
}

func (t *memTx) fail(op string) error {
	return t.m.failOn[op]
}

func (t *memTx) UpdateRouteFields(routeID uint, fields repository.RouteFields) error {
	if err := t.fail("UpdateRouteFields"); err != nil {
		return err
	}
	r, ok := t.m.routes[routeID]
	if !ok {
		return errors.Wrapf(errdefs.ErrNotFound, "route %d", routeID)
	}
	if fields.Name != nil {
		r.Name = *fields.Name
	}
	if fields.SetDriver {
		r.DriverID = fields.DriverID
	}
	t.m.routes[routeID] = r
	return nil
}

func (t *memTx) DeleteStopsByIDs(routeID uint, ids []uint) error {
	if err := t.fail("DeleteStopsByIDs"); err != nil {
		return err
	}
	for _, id := range ids {
		if st, ok := t.m.stops[id]; ok && st.RouteID == routeID {
			delete(t.m.stops, id)
		}
	}
	return nil
}

func (t *memTx) DeleteStopsByRoute(routeID uint) error {
	if err := t.fail("DeleteStopsByRoute"); err != nil {
		return err
	}
	for id, st := range t.m.stops {
		if st.RouteID == routeID {
			delete(t.m.stops, id)
		}
	}
	return nil
}

func (t *memTx) CreateStops(stops []models.RouteStop) error {
	if err := t.fail("CreateStops"); err != nil {
		return err
	}
	for i := range stops {
		stops[i].ID = t.m.id()
		t.m.stops[stops[i].ID] = stops[i]
	}
	return nil
}

func (t *memTx) UpdateStop(stop models.RouteStop) error {
	if err := t.fail("UpdateStop"); err != nil {
		return err
	}
	cur, ok := t.m.stops[stop.ID]
	if !ok || cur.RouteID != stop.RouteID {
		return errors.Wrapf(errdefs.ErrConflict, "route stop %d is not owned by route %d", stop.ID, stop.RouteID)
	}
	stop.CreatedAt = cur.CreatedAt
	t.m.stops[stop.ID] = stop
	return nil
}

func (t *memTx) DeleteRoute(routeID uint) error {
	if err := t.fail("DeleteRoute"); err != nil {
		return err
	}
	for _, st := range t.m.stops {
		if st.RouteID == routeID {
			return errors.Wrapf(errdefs.ErrConflict, "route %d still has stops", routeID)
		}
	}
	if _, ok := t.m.routes[routeID]; !ok {
		return errors.Wrapf(errdefs.ErrNotFound, "route %d", routeID)
	}
	delete(t.m.routes, routeID)
	return nil
}
