package models

import (
	"gorm.io/gorm"
)

// Shift values for students.
const (
	ShiftMorning   = "MANHA"
	ShiftAfternoon = "TARDE"
	ShiftNight     = "NOITE"
	ShiftFullTime  = "INTEGRAL"
)

// Gender values for students.
const (
	GenderMale   = "M"
	GenderFemale = "F"
	GenderOther  = "OUTRO"
)

// Student is a passenger of the school transport.
// SeatNumber is unique among active students (checked before writes).
type Student struct {
	gorm.Model

	FullName     string  `gorm:"not null" json:"full_name"`
	Phone        *string `json:"phone"`
	Street       *string `json:"street"`
	Number       *string `json:"number"`
	Neighborhood *string `json:"neighborhood"`
	School       *string `json:"school"`
	Shift        *string `json:"shift"`
	Age          *int    `json:"age"`
	Gender       *string `json:"gender"`
	SeatNumber   *int    `gorm:"index" json:"seat_number"`
	Active       bool    `gorm:"not null" json:"active"`
}
