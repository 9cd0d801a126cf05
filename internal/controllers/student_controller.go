package controllers

import (
	"net/http"
	"strings"

	"github.com/containerd/errdefs"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"school_transport/internal/models"
	pgstore "school_transport/internal/repository/postgres"
)

// studentInput serves create and PATCH; nil fields are left unchanged.
type studentInput struct {
	FullName     *string `json:"full_name"`
	Phone        *string `json:"phone"`
	Street       *string `json:"street"`
	Number       *string `json:"number"`
	Neighborhood *string `json:"neighborhood"`
	School       *string `json:"school"`
	Shift        *string `json:"shift" binding:"omitempty,oneof=MANHA TARDE NOITE INTEGRAL"`
	Age          *int    `json:"age" binding:"omitempty,min=1,max=120"`
	Gender       *string `json:"gender" binding:"omitempty,oneof=M F OUTRO"`
	SeatNumber   *int    `json:"seat_number" binding:"omitempty,gt=0"`
	Active       *bool   `json:"active"`
}

func (in studentInput) apply(s *models.Student) error {
	if in.FullName != nil {
		s.FullName = strings.TrimSpace(*in.FullName)
	}
	if s.FullName == "" {
		return errors.Wrap(errdefs.ErrInvalidArgument, "full_name must not be empty")
	}
	for dst, src := range map[**string]*string{
		&s.Phone:        in.Phone,
		&s.Street:       in.Street,
		&s.Number:       in.Number,
		&s.Neighborhood: in.Neighborhood,
		&s.School:       in.School,
		&s.Shift:        in.Shift,
		&s.Gender:       in.Gender,
	} {
		if src != nil {
			*dst = src
		}
	}
	if in.Age != nil {
		s.Age = in.Age
	}
	if in.SeatNumber != nil {
		s.SeatNumber = in.SeatNumber
	}
	if in.Active != nil {
		s.Active = *in.Active
	}
	return nil
}

// checkSeat rejects a seat already held by another active student.
func checkSeat(db *gorm.DB, s *models.Student) error {
	if !s.Active || s.SeatNumber == nil {
		return nil
	}
	var count int64
	err := db.Model(&models.Student{}).
		Where("seat_number = ? AND active = ? AND id <> ?", *s.SeatNumber, true, s.ID).
		Count(&count).Error
	if err != nil {
		return pgstore.Classify(err, "check seat %d", *s.SeatNumber)
	}
	if count > 0 {
		return errors.Wrapf(errdefs.ErrConflict, "seat %d is taken by another active student", *s.SeatNumber)
	}
	return nil
}

func (ctl *Controller) CreateStudent(c *gin.Context) {
	var input studentInput
	if err := bindJSON(c, &input); err != nil {
		respondError(c, err)
		return
	}
	student := models.Student{Active: true}
	if err := input.apply(&student); err != nil {
		respondError(c, err)
		return
	}

	db := ctl.DB.WithContext(c.Request.Context())
	if err := checkSeat(db, &student); err != nil {
		respondError(c, err)
		return
	}
	if err := db.Create(&student).Error; err != nil {
		respondError(c, pgstore.Classify(err, "create student"))
		return
	}
	respond(c, http.StatusCreated, "Student created", student)
}

// ListStudents orders by seat then name.
func (ctl *Controller) ListStudents(c *gin.Context) {
	students := []models.Student{}
	err := ctl.DB.WithContext(c.Request.Context()).
		Order("seat_number ASC NULLS LAST").
		Order("full_name ASC").
		Find(&students).Error
	if err != nil {
		respondError(c, pgstore.Classify(err, "list students"))
		return
	}
	respond(c, http.StatusOK, "Students listed", students)
}

func (ctl *Controller) GetStudent(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var student models.Student
	if err := ctl.DB.WithContext(c.Request.Context()).First(&student, id).Error; err != nil {
		respondError(c, pgstore.Classify(err, "student %d", id))
		return
	}
	respond(c, http.StatusOK, "Student found", student)
}

func (ctl *Controller) UpdateStudent(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var input studentInput
	if err := bindJSON(c, &input); err != nil {
		respondError(c, err)
		return
	}

	db := ctl.DB.WithContext(c.Request.Context())
	var student models.Student
	if err := db.First(&student, id).Error; err != nil {
		respondError(c, pgstore.Classify(err, "student %d", id))
		return
	}
	if err := input.apply(&student); err != nil {
		respondError(c, err)
		return
	}
	if err := checkSeat(db, &student); err != nil {
		respondError(c, err)
		return
	}
	if err := db.Save(&student).Error; err != nil {
		respondError(c, pgstore.Classify(err, "update student %d", id))
		return
	}
	respond(c, http.StatusOK, "Student updated", student)
}

func (ctl *Controller) DeleteStudent(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	res := ctl.DB.WithContext(c.Request.Context()).Delete(&models.Student{}, id)
	if res.Error != nil {
		respondError(c, pgstore.Classify(res.Error, "delete student %d", id))
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, errors.Wrapf(errdefs.ErrNotFound, "student %d", id))
		return
	}
	respond(c, http.StatusOK, "Student deleted", nil)
}
