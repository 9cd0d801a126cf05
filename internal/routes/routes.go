package routes

import (
	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"school_transport/internal/controllers"
	"school_transport/internal/middleware"
)

func SetupRouter(ctl *controllers.Controller) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		ginlog.SetLogger(
			ginlog.WithSkipPath([]string{"/healthz"}),
			ginlog.WithUTC(true),
			ginlog.WithLogger(func(c *gin.Context, l zerolog.Logger) zerolog.Logger {
				return l.With().Str("request_id", c.GetString(middleware.ContextRequestID)).Logger()
			}),
		),
		gin.Recovery(),
	)

	r.GET("/healthz", ctl.Healthz)

	auth := ctl.Tokens.RequireAuth()
	AuthRoutes(r, ctl, auth)
	RouteRoutes(r, ctl, auth)
	RouteStopRoutes(r, ctl, auth)
	UserRoutes(r, ctl, auth)
	StudentRoutes(r, ctl, auth)
	PaymentRoutes(r, ctl, auth)
	AttendanceRoutes(r, ctl, auth)

	return r
}
