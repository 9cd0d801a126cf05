package models

import (
	"time"
)

// Attendance status values.
const (
	AttendancePresent   = "PRESENT"
	AttendanceAbsent    = "ABSENT"
	AttendanceJustified = "JUSTIFIED"
)

// Attendance records whether a student rode a route on a given day.
// (DateRef, RouteID, StudentID) is unique.
type Attendance struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	DateRef   time.Time `gorm:"type:date;not null;uniqueIndex:idx_attendance_day_route_student" json:"date"`
	RouteID   uint      `gorm:"not null;uniqueIndex:idx_attendance_day_route_student" json:"route_id"`
	StudentID uint      `gorm:"not null;uniqueIndex:idx_attendance_day_route_student" json:"student_id"`
	Status    string    `gorm:"not null" json:"status"`
	Notes     *string   `gorm:"size:255" json:"notes"`
	MarkedBy  *uint     `json:"marked_by"`

	Route   *Route   `gorm:"foreignKey:RouteID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
	Student *Student `gorm:"foreignKey:StudentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

func (Attendance) TableName() string {
	return "attendance"
}
