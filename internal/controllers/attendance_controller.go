package controllers

import (
	"net/http"
	"strconv"

	"github.com/containerd/errdefs"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"school_transport/internal/models"
	pgstore "school_transport/internal/repository/postgres"
)

// attendanceInput serves create and PATCH; nil fields are left unchanged.
type attendanceInput struct {
	Date      *string `json:"date"`
	RouteID   *uint   `json:"route_id"`
	StudentID *uint   `json:"student_id"`
	Status    *string `json:"status" binding:"omitempty,oneof=PRESENT ABSENT JUSTIFIED"`
	Notes     *string `json:"notes" binding:"omitempty,max=255"`
	MarkedBy  *uint   `json:"marked_by"`
}

func (in attendanceInput) apply(a *models.Attendance) error {
	if in.Date != nil {
		day, err := parseDate("date", *in.Date)
		if err != nil {
			return err
		}
		a.DateRef = day
	}
	if in.RouteID != nil {
		a.RouteID = *in.RouteID
	}
	if in.StudentID != nil {
		a.StudentID = *in.StudentID
	}
	if in.Status != nil {
		a.Status = *in.Status
	}
	if in.Notes != nil {
		a.Notes = in.Notes
	}
	if in.MarkedBy != nil {
		a.MarkedBy = in.MarkedBy
	}

	switch {
	case a.DateRef.IsZero():
		return errors.Wrap(errdefs.ErrInvalidArgument, "date is required")
	case a.RouteID == 0:
		return errors.Wrap(errdefs.ErrInvalidArgument, "route_id is required")
	case a.StudentID == 0:
		return errors.Wrap(errdefs.ErrInvalidArgument, "student_id is required")
	case a.Status == "":
		return errors.Wrap(errdefs.ErrInvalidArgument, "status is required")
	}
	return nil
}

func (in attendanceInput) movesKey() bool {
	return in.Date != nil || in.RouteID != nil || in.StudentID != nil
}

func ensureAttendanceRefs(db *gorm.DB, a *models.Attendance) error {
	if err := ensureExists(db, &models.Route{}, "route", a.RouteID); err != nil {
		return err
	}
	return ensureExists(db, &models.Student{}, "student", a.StudentID)
}

// CreateAttendance inserts the record or overwrites the one already stored
// for the same day, route and student.
func (ctl *Controller) CreateAttendance(c *gin.Context) {
	var input attendanceInput
	if err := bindJSON(c, &input); err != nil {
		respondError(c, err)
		return
	}
	var record models.Attendance
	if err := input.apply(&record); err != nil {
		respondError(c, err)
		return
	}
	if record.MarkedBy == nil {
		uid := currentUserID(c)
		record.MarkedBy = &uid
	}

	db := ctl.DB.WithContext(c.Request.Context())
	if err := ensureAttendanceRefs(db, &record); err != nil {
		respondError(c, err)
		return
	}
	err := db.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date_ref"}, {Name: "route_id"}, {Name: "student_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "notes", "marked_by", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		respondError(c, pgstore.Classify(err, "record attendance"))
		return
	}

	var stored models.Attendance
	err = db.Where("date_ref = ? AND route_id = ? AND student_id = ?", record.DateRef, record.RouteID, record.StudentID).
		First(&stored).Error
	if err != nil {
		respondError(c, pgstore.Classify(err, "read attendance"))
		return
	}
	respond(c, http.StatusCreated, "Attendance recorded", stored)
}

// ListAttendance accepts optional date, route_id, student_id and status
// filters and orders by date then creation, newest first.
func (ctl *Controller) ListAttendance(c *gin.Context) {
	db := ctl.DB.WithContext(c.Request.Context())
	if v := c.Query("date"); v != "" {
		day, err := parseDate("date", v)
		if err != nil {
			respondError(c, err)
			return
		}
		db = db.Where("date_ref = ?", day)
	}
	for param, column := range map[string]string{"route_id": "route_id", "student_id": "student_id"} {
		v := c.Query(param)
		if v == "" {
			continue
		}
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			respondError(c, errors.Wrapf(errdefs.ErrInvalidArgument, "invalid %s %q", param, v))
			return
		}
		db = db.Where(column+" = ?", id)
	}
	if v := c.Query("status"); v != "" {
		db = db.Where("status = ?", v)
	}

	records := []models.Attendance{}
	if err := db.Order("date_ref DESC").Order("created_at DESC").Find(&records).Error; err != nil {
		respondError(c, pgstore.Classify(err, "list attendance"))
		return
	}
	respond(c, http.StatusOK, "Attendance listed", records)
}

func (ctl *Controller) GetAttendance(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var record models.Attendance
	if err := ctl.DB.WithContext(c.Request.Context()).First(&record, id).Error; err != nil {
		respondError(c, pgstore.Classify(err, "attendance %d", id))
		return
	}
	respond(c, http.StatusOK, "Attendance found", record)
}

func (ctl *Controller) UpdateAttendance(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var input attendanceInput
	if err := bindJSON(c, &input); err != nil {
		respondError(c, err)
		return
	}

	db := ctl.DB.WithContext(c.Request.Context())
	var record models.Attendance
	if err := db.First(&record, id).Error; err != nil {
		respondError(c, pgstore.Classify(err, "attendance %d", id))
		return
	}
	if err := input.apply(&record); err != nil {
		respondError(c, err)
		return
	}

	if input.movesKey() {
		if err := ensureAttendanceRefs(db, &record); err != nil {
			respondError(c, err)
			return
		}
		var count int64
		err := db.Model(&models.Attendance{}).
			Where("date_ref = ? AND route_id = ? AND student_id = ? AND id <> ?",
				record.DateRef, record.RouteID, record.StudentID, record.ID).
			Count(&count).Error
		if err != nil {
			respondError(c, pgstore.Classify(err, "check attendance key"))
			return
		}
		if count > 0 {
			respondError(c, errors.Wrap(errdefs.ErrConflict, "attendance already recorded for this student, route and date"))
			return
		}
	}

	if err := db.Omit(clause.Associations).Save(&record).Error; err != nil {
		respondError(c, pgstore.Classify(err, "update attendance %d", id))
		return
	}
	respond(c, http.StatusOK, "Attendance updated", record)
}

func (ctl *Controller) DeleteAttendance(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	res := ctl.DB.WithContext(c.Request.Context()).Delete(&models.Attendance{}, id)
	if res.Error != nil {
		respondError(c, pgstore.Classify(res.Error, "delete attendance %d", id))
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, errors.Wrapf(errdefs.ErrNotFound, "attendance %d", id))
		return
	}
	respond(c, http.StatusOK, "Attendance deleted", nil)
}
