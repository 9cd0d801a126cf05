package routes

import (
	"github.com/gin-gonic/gin"

	"school_transport/internal/controllers"
)

func StudentRoutes(r *gin.Engine, ctl *controllers.Controller, auth gin.HandlerFunc) {
	group := r.Group("/students")
	group.Use(auth)
	{
		group.GET("", ctl.ListStudents)
		group.POST("", ctl.CreateStudent)
		group.GET("/:id", ctl.GetStudent)
		group.PATCH("/:id", ctl.UpdateStudent)
		group.DELETE("/:id", ctl.DeleteStudent)
	}
}
