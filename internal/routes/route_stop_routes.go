package routes

import (
	"github.com/gin-gonic/gin"

	"school_transport/internal/controllers"
)

func RouteStopRoutes(r *gin.Engine, ctl *controllers.Controller, auth gin.HandlerFunc) {
	group := r.Group("/route-stops")
	group.Use(auth)
	{
		group.GET("", ctl.ListRouteStops)
		group.POST("", ctl.CreateRouteStop)
		group.GET("/:id", ctl.GetRouteStop)
		group.PATCH("/:id", ctl.UpdateRouteStop)
		group.DELETE("/:id", ctl.DeleteRouteStop)
	}
}
