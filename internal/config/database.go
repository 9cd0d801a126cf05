package config

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"school_transport/internal/logger"
	"school_transport/internal/models"
	pgstore "school_transport/internal/repository/postgres"
)

// OpenDB connects to postgres through lib/pq, migrates the schema and
// installs the route stop order constraint.
func OpenDB(cfg DBConfig) (*gorm.DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Gorm(),
	})
	if err != nil {
		sqlDB.Close()
		return nil, errors.Wrap(err, "open gorm")
	}

	if err := Migrate(db); err != nil {
		sqlDB.Close()
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.Name,
	}).Info("Connected to database")
	return db, nil
}

// Migrate creates or updates every table the server uses.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Route{},
		&models.RouteStop{},
		&models.Student{},
		&models.Payment{},
		&models.Attendance{},
	)
	if err != nil {
		return errors.Wrap(err, "auto-migration failed")
	}
	return pgstore.EnsureConstraints(db)
}
