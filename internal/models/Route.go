package models

import (
	"time"
)

// Route represents a school transport path.
// A route has an ordered list of stops and optionally a driver assigned to it.
type Route struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name     string `gorm:"not null" json:"name"`
	DriverID *uint  `gorm:"index" json:"driver_id"`

	// Associations
	Driver *User       `gorm:"foreignKey:DriverID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
	Stops  []RouteStop `gorm:"foreignKey:RouteID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"stops"`
}
