package controllers

import (
	"net/http"
	"strconv"

	"github.com/containerd/errdefs"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"school_transport/internal/models"
	"school_transport/internal/routing"
)

type createStopInput struct {
	RouteID *uint `json:"route_id" binding:"required"`
	routing.StopInput
}

// ListRouteStops lists every stop, or the stops of ?route_id=.
func (ctl *Controller) ListRouteStops(c *gin.Context) {
	var routeID uint
	if raw := c.Query("route_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			respondError(c, errors.Wrapf(errdefs.ErrInvalidArgument, "invalid route_id %q", raw))
			return
		}
		routeID = uint(id)
	}
	stops, err := ctl.Routing.ListStops(c.Request.Context(), routeID)
	if err != nil {
		respondError(c, err)
		return
	}
	if stops == nil {
		stops = []models.RouteStop{}
	}
	respond(c, http.StatusOK, "Route stops listed", stops)
}

func (ctl *Controller) GetRouteStop(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	stop, err := ctl.Routing.GetStop(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Route stop found", stop)
}

func (ctl *Controller) CreateRouteStop(c *gin.Context) {
	var input createStopInput
	if err := bindJSON(c, &input); err != nil {
		respondError(c, err)
		return
	}
	stop, err := ctl.Routing.CreateStop(c.Request.Context(), *input.RouteID, input.StopInput)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Route stop created", stop)
}

func (ctl *Controller) UpdateRouteStop(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var input routing.StopUpdate
	if err := bindJSON(c, &input); err != nil {
		respondError(c, err)
		return
	}
	stop, err := ctl.Routing.UpdateStop(c.Request.Context(), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Route stop updated", stop)
}

func (ctl *Controller) DeleteRouteStop(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := ctl.Routing.DeleteStop(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Route stop deleted", nil)
}
