package routes

import (
	"github.com/gin-gonic/gin"

	"school_transport/internal/controllers"
	"school_transport/internal/middleware"
	"school_transport/internal/models"
)

// UserRoutes are restricted to admins.
func UserRoutes(r *gin.Engine, ctl *controllers.Controller, auth gin.HandlerFunc) {
	group := r.Group("/users")
	group.Use(auth, middleware.RequireRole(models.RoleAdmin))
	{
		group.GET("", ctl.ListUsers)
		group.POST("", ctl.CreateUser)
		group.GET("/:id", ctl.GetUser)
		group.PATCH("/:id", ctl.UpdateUser)
		group.DELETE("/:id", ctl.DeleteUser)
	}
}
