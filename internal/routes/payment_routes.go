package routes

import (
	"github.com/gin-gonic/gin"

	"school_transport/internal/controllers"
)

func PaymentRoutes(r *gin.Engine, ctl *controllers.Controller, auth gin.HandlerFunc) {
	group := r.Group("/payments")
	group.Use(auth)
	{
		group.GET("", ctl.ListPayments)
		group.POST("", ctl.CreatePayment)
		group.GET("/:id", ctl.GetPayment)
		group.PATCH("/:id", ctl.UpdatePayment)
		group.DELETE("/:id", ctl.DeletePayment)
	}
}
