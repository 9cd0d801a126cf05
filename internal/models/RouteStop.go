package models

import (
	"time"
)

// RouteStopOrderConstraint is the unique constraint on (route_id, order_index).
// It is created DEFERRABLE INITIALLY DEFERRED so only committed states are checked.
const RouteStopOrderConstraint = "route_stops_route_id_order_index_key"

// RouteStop represents one pickup/dropoff point along a route.
// OrderIndex gives its position; every descriptive attribute is optional.
type RouteStop struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	RouteID    uint `gorm:"not null;index" json:"route_id"`
	OrderIndex int  `gorm:"not null" json:"order_index"`

	Label        *string  `json:"label"`
	Street       *string  `json:"street"`
	Number       *string  `json:"number"`
	Neighborhood *string  `json:"neighborhood"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}
