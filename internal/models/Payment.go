package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment status values.
const (
	PaymentOpen     = "OPEN"
	PaymentPaid     = "PAID"
	PaymentLate     = "LATE"
	PaymentCanceled = "CANCELED"
)

// Payment method values.
const (
	MethodCash     = "CASH"
	MethodPix      = "PIX"
	MethodCard     = "CARD"
	MethodTransfer = "TRANSFER"
)

// Payment is a monthly fee owed by a student.
type Payment struct {
	gorm.Model

	StudentID uint       `gorm:"not null;index" json:"student_id"`
	Student   *Student   `gorm:"foreignKey:StudentID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"student,omitempty"`
	Amount    float64    `gorm:"type:numeric(10,2);not null" json:"amount"`
	DueDate   time.Time  `gorm:"type:date;not null;index" json:"due_date"`
	PaidAt    *time.Time `json:"paid_at"`
	Status    string     `gorm:"not null" json:"status"`
	Method    string     `gorm:"not null" json:"method"`
	Notes     *string    `json:"notes"`
}
