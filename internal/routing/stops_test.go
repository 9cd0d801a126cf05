package routing

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/containerd/errdefs"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func TestCreateStop(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()
	routeID := store.AddRoute("Morning")
	store.AddStop(routeID, 0, "a")

	t.Run("free slot", func(t *testing.T) {
		st, err := svc.CreateStop(ctx, routeID, stop(1, "b"))
		assert.NilError(t, err)
		assert.Check(t, st.ID != 0)
		assert.Check(t, is.Equal(st.RouteID, routeID))
		assert.Check(t, is.Equal(st.OrderIndex, 1))
	})

	t.Run("taken slot", func(t *testing.T) {
		_, err := svc.CreateStop(ctx, routeID, stop(0, "clash"))
		assert.Check(t, errdefs.IsConflict(err), "got %v", err)
		assert.Check(t, is.ErrorContains(err, "order_index 0"))
	})

	t.Run("missing route", func(t *testing.T) {
		_, err := svc.CreateStop(ctx, 999, stop(0, "x"))
		assert.Check(t, errdefs.IsNotFound(err), "got %v", err)
	})

	t.Run("client supplied id", func(t *testing.T) {
		_, err := svc.CreateStop(ctx, routeID, stopWithID(77, 5, "x"))
		assert.Check(t, errdefs.IsInvalidArgument(err), "got %v", err)
	})

	t.Run("missing order_index", func(t *testing.T) {
		_, err := svc.CreateStop(ctx, routeID, StopInput{Label: ptr("x")})
		assert.Check(t, errdefs.IsInvalidArgument(err), "got %v", err)
	})

	stops, err := svc.ListStops(ctx, routeID)
	assert.NilError(t, err)
	assert.Check(t, is.Len(stops, 2))
	assertUniqueOrder(t, stops)
}

func TestUpdateStop(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()
	routeID := store.AddRoute("Morning")
	a := store.AddStop(routeID, 0, "a")
	store.AddStop(routeID, 1, "b")
	other := store.AddRoute("Other")

	t.Run("same index is not a clash with itself", func(t *testing.T) {
		st, err := svc.UpdateStop(ctx, a, StopUpdate{OrderIndex: Some(0), Street: Some("Rua B")})
		assert.NilError(t, err)
		assert.Check(t, is.Equal(*st.Street, "Rua B"))
		assert.Check(t, is.Equal(*st.Label, "a"))
	})

	t.Run("null clears an attribute", func(t *testing.T) {
		st, err := svc.UpdateStop(ctx, a, StopUpdate{Label: Null[string]()})
		assert.NilError(t, err)
		assert.Check(t, st.Label == nil)
	})

	t.Run("moving onto a taken index", func(t *testing.T) {
		_, err := svc.UpdateStop(ctx, a, StopUpdate{OrderIndex: Some(1)})
		assert.Check(t, errdefs.IsConflict(err), "got %v", err)
	})

	t.Run("moving to another route", func(t *testing.T) {
		st, err := svc.UpdateStop(ctx, a, StopUpdate{RouteID: Some(other), OrderIndex: Some(1)})
		assert.NilError(t, err)
		assert.Check(t, is.Equal(st.RouteID, other))
	})

	t.Run("moving to a missing route", func(t *testing.T) {
		_, err := svc.UpdateStop(ctx, a, StopUpdate{RouteID: Some[uint](999)})
		assert.Check(t, errdefs.IsNotFound(err), "got %v", err)
	})

	t.Run("null route", func(t *testing.T) {
		_, err := svc.UpdateStop(ctx, a, StopUpdate{RouteID: Null[uint]()})
		assert.Check(t, errdefs.IsInvalidArgument(err), "got %v", err)
	})

	t.Run("negative index", func(t *testing.T) {
		_, err := svc.UpdateStop(ctx, a, StopUpdate{OrderIndex: Some(-3)})
		assert.Check(t, errdefs.IsInvalidArgument(err), "got %v", err)
	})

	t.Run("missing stop", func(t *testing.T) {
		_, err := svc.UpdateStop(ctx, 999, StopUpdate{Label: Some("x")})
		assert.Check(t, errdefs.IsNotFound(err), "got %v", err)
	})
}

func TestDeleteStop(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()
	routeID := store.AddRoute("Morning")
	a := store.AddStop(routeID, 0, "a")

	assert.NilError(t, svc.DeleteStop(ctx, a))
	_, err := svc.GetStop(ctx, a)
	assert.Check(t, errdefs.IsNotFound(err))

	err = svc.DeleteStop(ctx, a)
	assert.Check(t, errdefs.IsNotFound(err), "got %v", err)
}

func TestListStopsAcrossRoutes(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()
	r1 := store.AddRoute("One")
	r2 := store.AddRoute("Two")
	store.AddStop(r2, 0, "r2")
	store.AddStop(r1, 1, "r1-b")
	store.AddStop(r1, 0, "r1-a")

	all, err := svc.ListStops(ctx, 0)
	assert.NilError(t, err)
	assert.DeepEqual(t, slots(all), []slot{
		{OrderIndex: 0, Label: "r1-a"},
		{OrderIndex: 1, Label: "r1-b"},
		{OrderIndex: 0, Label: "r2"},
	})
}

func TestStopUpdateDecoding(t *testing.T) {
	var upd StopUpdate
	err := json.Unmarshal([]byte(`{"label": null, "street": "Rua C", "order_index": 4}`), &upd)
	assert.NilError(t, err)

	assert.Check(t, upd.Label.Set)
	assert.Check(t, upd.Label.Value == nil)
	assert.Check(t, upd.Street.Set)
	assert.Check(t, is.Equal(*upd.Street.Value, "Rua C"))
	assert.Check(t, is.Equal(*upd.OrderIndex.Value, 4))
	assert.Check(t, !upd.Number.Set)
	assert.Check(t, !upd.RouteID.Set)
}
