package routes

import (
	"github.com/gin-gonic/gin"

	"school_transport/internal/controllers"
)

func AttendanceRoutes(r *gin.Engine, ctl *controllers.Controller, auth gin.HandlerFunc) {
	group := r.Group("/attendance")
	group.Use(auth)
	{
		group.GET("", ctl.ListAttendance)
		group.POST("", ctl.CreateAttendance)
		group.GET("/:id", ctl.GetAttendance)
		group.PATCH("/:id", ctl.UpdateAttendance)
		group.DELETE("/:id", ctl.DeleteAttendance)
	}
}
