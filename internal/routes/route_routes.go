package routes

import (
	"github.com/gin-gonic/gin"

	"school_transport/internal/controllers"
)

func RouteRoutes(r *gin.Engine, ctl *controllers.Controller, auth gin.HandlerFunc) {
	group := r.Group("/routes")
	group.Use(auth)
	{
		group.GET("", ctl.ListRoutes)
		group.POST("", ctl.CreateRoute)
		group.GET("/:id", ctl.GetRoute)
		group.PATCH("/:id", ctl.UpdateRoute) // fields, plus stops in replace or upsert mode
		group.PUT("/:id/stops", ctl.ReplaceRouteStops)
		group.GET("/:id/path", ctl.GetRoutePath)
		group.DELETE("/:id", ctl.DeleteRoute)
	}
}
