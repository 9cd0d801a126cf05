package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"

	"school_transport/internal/models"
	"school_transport/internal/routing"
)

type createRouteInput struct {
	Name     string `json:"name" binding:"required"`
	DriverID *uint  `json:"driver_id"`
}

// updateRouteInput is the PATCH /routes/:id body. A missing or null stops
// list leaves the stops untouched; an empty list clears them.
type updateRouteInput struct {
	routing.RoutePatch
	Stops *[]routing.StopInput `json:"stops"`
	Mode  string               `json:"mode"`
}

type replaceStopsInput struct {
	routing.RoutePatch
	Stops []routing.StopInput `json:"stops" binding:"required"`
}

func (ctl *Controller) ListRoutes(c *gin.Context) {
	routes, err := ctl.Routing.ListRoutes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if routes == nil {
		routes = []models.Route{}
	}
	respond(c, http.StatusOK, "Routes listed", routes)
}

func (ctl *Controller) GetRoute(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	route, err := ctl.Routing.GetRoute(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Route found", route)
}

func (ctl *Controller) CreateRoute(c *gin.Context) {
	var input createRouteInput
	if err := bindJSON(c, &input); err != nil {
		respondError(c, err)
		return
	}
	route, err := ctl.Routing.CreateRoute(c.Request.Context(), input.Name, input.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Route created", route)
}

// UpdateRoute patches route fields and, when a stop list is sent, reconciles
// the stops with the requested mode (replace by default).
func (ctl *Controller) UpdateRoute(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var input updateRouteInput
	if err := bindJSON(c, &input); err != nil {
		respondError(c, err)
		return
	}

	var route *models.Route
	if input.Stops == nil {
		route, err = ctl.Routing.PatchRoute(c.Request.Context(), id, input.RoutePatch)
	} else {
		var mode routing.Mode
		if mode, err = routing.ParseMode(input.Mode); err == nil {
			route, err = ctl.Routing.Reconcile(c.Request.Context(), mode, id, input.RoutePatch, *input.Stops)
		}
	}
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Route updated", route)
}

// ReplaceRouteStops replaces the whole stop sequence of a route.
func (ctl *Controller) ReplaceRouteStops(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var input replaceStopsInput
	if err := bindJSON(c, &input); err != nil {
		respondError(c, err)
		return
	}
	route, err := ctl.Routing.ReplaceStops(c.Request.Context(), id, input.RoutePatch, input.Stops)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Route stops replaced", route)
}

func (ctl *Controller) DeleteRoute(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := ctl.Routing.DeleteRoute(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Route deleted successfully", nil)
}

// GetRoutePath returns the stops that have both coordinates as a GeoJSON
// LineString feature, in stop order.
func (ctl *Controller) GetRoutePath(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	route, err := ctl.Routing.GetRoute(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	feature, err := routePath(route)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Route path", feature)
}

// routePath builds a LineString in longitude/latitude order.
func routePath(route *models.Route) (*gjson.Feature, error) {
	coords := make([]geom.Coord, 0, len(route.Stops))
	stopIDs := make([]uint, 0, len(route.Stops))
	for _, st := range route.Stops {
		if st.Latitude == nil || st.Longitude == nil {
			continue
		}
		coords = append(coords, geom.Coord{*st.Longitude, *st.Latitude})
		stopIDs = append(stopIDs, st.ID)
	}
	line, err := geom.NewLineString(geom.XY).SetCoords(coords)
	if err != nil {
		return nil, err
	}
	return &gjson.Feature{
		Geometry: line,
		Properties: map[string]interface{}{
			"route_id": route.ID,
			"name":     route.Name,
			"stop_ids": stopIDs,
		},
	}, nil
}
