package routes

import (
	"github.com/gin-gonic/gin"

	"school_transport/internal/controllers"
)

func AuthRoutes(r *gin.Engine, ctl *controllers.Controller, auth gin.HandlerFunc) {
	group := r.Group("/auth")
	{
		group.POST("/login", ctl.Login)
		group.POST("/forgot-password", ctl.ForgotPassword)
		group.POST("/reset-password", ctl.ResetPassword)
		group.GET("/me", auth, ctl.Me)
	}
}
