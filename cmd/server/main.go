package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"school_transport/internal/config"
	"school_transport/internal/controllers"
	"school_transport/internal/logger"
	"school_transport/internal/middleware"
	pgstore "school_transport/internal/repository/postgres"
	"school_transport/internal/routes"
	"school_transport/internal/routing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	closer := logger.Setup(cfg.Log.File, cfg.Log.Level)
	defer closer.Close()
	gin.SetMode(cfg.GinMode)

	db, err := config.OpenDB(cfg.DB)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	if err := controllers.EnsureAdmin(db, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		logrus.WithError(err).Fatal("Failed to bootstrap admin user")
	}

	svc := routing.NewService(pgstore.New(db), logrus.StandardLogger())
	tokens := middleware.NewTokens(cfg.JWT.Secret, cfg.JWT.TTL)
	r := routes.SetupRouter(controllers.New(db, svc, tokens))

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      middleware.EnableCORS(r, cfg.CORSOrigins),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("Server running at %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Server shutdown error")
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	logrus.Info("Server stopped")
}
