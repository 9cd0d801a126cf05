package controllers

import (
	"net/http"
	"time"

	"github.com/containerd/errdefs"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"school_transport/internal/models"
	pgstore "school_transport/internal/repository/postgres"
)

const dateLayout = "2006-01-02"

// paymentInput serves create and PATCH; nil fields are left unchanged.
type paymentInput struct {
	StudentID *uint    `json:"student_id"`
	Amount    *float64 `json:"amount" binding:"omitempty,gt=0"`
	DueDate   *string  `json:"due_date"`
	PaidAt    *string  `json:"paid_at"`
	Status    *string  `json:"status" binding:"omitempty,oneof=OPEN PAID LATE CANCELED"`
	Method    *string  `json:"method" binding:"omitempty,oneof=CASH PIX CARD TRANSFER"`
	Notes     *string  `json:"notes"`
}

func parseDate(field, v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, errors.Wrapf(errdefs.ErrInvalidArgument, "%s must be YYYY-MM-DD, got %q", field, v)
	}
	return t, nil
}

// parseTimestamp accepts RFC 3339 or a plain date.
func parseTimestamp(field, v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return parseDate(field, v)
}

func (in paymentInput) apply(p *models.Payment) error {
	if in.StudentID != nil {
		p.StudentID = *in.StudentID
	}
	if in.Amount != nil {
		p.Amount = *in.Amount
	}
	if in.DueDate != nil {
		due, err := parseDate("due_date", *in.DueDate)
		if err != nil {
			return err
		}
		p.DueDate = due
	}
	if in.PaidAt != nil {
		paid, err := parseTimestamp("paid_at", *in.PaidAt)
		if err != nil {
			return err
		}
		p.PaidAt = &paid
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	if in.Method != nil {
		p.Method = *in.Method
	}
	if in.Notes != nil {
		p.Notes = in.Notes
	}

	switch {
	case p.StudentID == 0:
		return errors.Wrap(errdefs.ErrInvalidArgument, "student_id is required")
	case p.Amount <= 0:
		return errors.Wrap(errdefs.ErrInvalidArgument, "amount must be greater than zero")
	case p.DueDate.IsZero():
		return errors.Wrap(errdefs.ErrInvalidArgument, "due_date is required")
	}
	return nil
}

// ensureExists returns NotFound when no row of model has the id.
func ensureExists(db *gorm.DB, model interface{}, what string, id uint) error {
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return pgstore.Classify(err, "look up %s %d", what, id)
	}
	if count == 0 {
		return errors.Wrapf(errdefs.ErrNotFound, "%s %d", what, id)
	}
	return nil
}

func (ctl *Controller) CreatePayment(c *gin.Context) {
	var input paymentInput
	if err := bindJSON(c, &input); err != nil {
		respondError(c, err)
		return
	}
	payment := models.Payment{Status: models.PaymentOpen, Method: models.MethodCash}
	if err := input.apply(&payment); err != nil {
		respondError(c, err)
		return
	}

	db := ctl.DB.WithContext(c.Request.Context())
	if err := ensureExists(db, &models.Student{}, "student", payment.StudentID); err != nil {
		respondError(c, err)
		return
	}
	if err := db.Create(&payment).Error; err != nil {
		respondError(c, pgstore.Classify(err, "create payment"))
		return
	}
	respond(c, http.StatusCreated, "Payment created", payment)
}

// ListPayments orders by due date then student.
func (ctl *Controller) ListPayments(c *gin.Context) {
	payments := []models.Payment{}
	err := ctl.DB.WithContext(c.Request.Context()).
		Preload("Student").
		Order("due_date ASC").
		Order("student_id ASC").
		Find(&payments).Error
	if err != nil {
		respondError(c, pgstore.Classify(err, "list payments"))
		return
	}
	respond(c, http.StatusOK, "Payments listed", payments)
}

func (ctl *Controller) GetPayment(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var payment models.Payment
	if err := ctl.DB.WithContext(c.Request.Context()).Preload("Student").First(&payment, id).Error; err != nil {
		respondError(c, pgstore.Classify(err, "payment %d", id))
		return
	}
	respond(c, http.StatusOK, "Payment found", payment)
}

func (ctl *Controller) UpdatePayment(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var input paymentInput
	if err := bindJSON(c, &input); err != nil {
		respondError(c, err)
		return
	}

	db := ctl.DB.WithContext(c.Request.Context())
	var payment models.Payment
	if err := db.First(&payment, id).Error; err != nil {
		respondError(c, pgstore.Classify(err, "payment %d", id))
		return
	}
	if err := input.apply(&payment); err != nil {
		respondError(c, err)
		return
	}
	if input.StudentID != nil {
		if err := ensureExists(db, &models.Student{}, "student", payment.StudentID); err != nil {
			respondError(c, err)
			return
		}
	}
	if err := db.Omit("Student").Save(&payment).Error; err != nil {
		respondError(c, pgstore.Classify(err, "update payment %d", id))
		return
	}
	respond(c, http.StatusOK, "Payment updated", payment)
}

func (ctl *Controller) DeletePayment(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	res := ctl.DB.WithContext(c.Request.Context()).Delete(&models.Payment{}, id)
	if res.Error != nil {
		respondError(c, pgstore.Classify(res.Error, "delete payment %d", id))
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, errors.Wrapf(errdefs.ErrNotFound, "payment %d", id))
		return
	}
	respond(c, http.StatusOK, "Payment deleted", nil)
}
