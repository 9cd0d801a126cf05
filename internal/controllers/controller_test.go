package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/containerd/errdefs"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"school_transport/internal/middleware"
	"school_transport/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func ptr[T any](v T) *T {
	return &v
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		err  error
		code int
		body string
	}{
		{errors.Wrap(errdefs.ErrNotFound, "route 9"), http.StatusNotFound, "route 9: not found"},
		{errors.Wrap(errdefs.ErrInvalidArgument, "bad index"), http.StatusBadRequest, "bad index: invalid argument"},
		{errors.Wrap(errdefs.ErrConflict, "duplicate order_index 2"), http.StatusConflict, "duplicate order_index 2: conflict"},
		{errors.Wrap(errdefs.ErrUnavailable, "db down"), http.StatusServiceUnavailable, "Service Unavailable"},
		{errors.New("boom"), http.StatusInternalServerError, "Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, tt.err)

			assert.Check(t, is.Equal(rec.Code, tt.code))
			var body map[string]string
			assert.NilError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Check(t, is.Equal(body["error"], tt.body))
		})
	}
}

func TestRequestLogTagsCaller(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/routes", nil)
	c.Set(middleware.ContextRequestID, "req-1")

	entry := requestLog(c)
	assert.Check(t, is.Equal(entry.Data["request_id"], "req-1"))
	_, tagged := entry.Data["user"]
	assert.Check(t, !tagged)

	c.Set(middleware.ContextEmail, "ana@example.com")
	assert.Check(t, is.Equal(requestLog(c).Data["user"], "ana@example.com"))
}

func TestParseID(t *testing.T) {
	for raw, ok := range map[string]bool{"12": true, "0": false, "-3": false, "abc": false} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Params = gin.Params{{Key: "id", Value: raw}}
		id, err := parseID(c, "id")
		if ok {
			assert.NilError(t, err)
			assert.Check(t, is.Equal(id, uint(12)))
		} else {
			assert.Check(t, errdefs.IsInvalidArgument(err), "%s: got %v", raw, err)
		}
	}
}

func TestRoutePath(t *testing.T) {
	route := &models.Route{ID: 3, Name: "Morning", Stops: []models.RouteStop{
		{ID: 10, OrderIndex: 0, Latitude: ptr(-23.5), Longitude: ptr(-46.6)},
		{ID: 11, OrderIndex: 1, Latitude: ptr(-23.6)},
		{ID: 12, OrderIndex: 2, Latitude: ptr(-23.7), Longitude: ptr(-46.8)},
	}}

	feature, err := routePath(route)
	assert.NilError(t, err)

	data, err := json.Marshal(feature)
	assert.NilError(t, err)
	var decoded struct {
		Type     string `json:"type"`
		Geometry struct {
			Type        string       `json:"type"`
			Coordinates [][2]float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			RouteID uint   `json:"route_id"`
			StopIDs []uint `json:"stop_ids"`
		} `json:"properties"`
	}
	assert.NilError(t, json.Unmarshal(data, &decoded))
	assert.Check(t, is.Equal(decoded.Type, "Feature"))
	assert.Check(t, is.Equal(decoded.Geometry.Type, "LineString"))
	assert.Check(t, is.DeepEqual(decoded.Geometry.Coordinates, [][2]float64{{-46.6, -23.5}, {-46.8, -23.7}}))
	assert.Check(t, is.Equal(decoded.Properties.RouteID, uint(3)))
	assert.Check(t, is.DeepEqual(decoded.Properties.StopIDs, []uint{10, 12}))
}

func TestValidateAndNormalizeRole(t *testing.T) {
	for in, want := range map[string]string{"": "admin", " Driver ": "driver", "MONITOR": "monitor"} {
		got, err := validateAndNormalizeRole(in)
		assert.NilError(t, err)
		assert.Check(t, is.Equal(got, want))
	}
	_, err := validateAndNormalizeRole("commuter")
	assert.Check(t, errdefs.IsInvalidArgument(err), "got %v", err)
}

func TestUpdateUserChanges(t *testing.T) {
	changes, err := updateUserInput{
		Name:     ptr("  Ana "),
		Email:    ptr("Ana@Example.com"),
		Role:     ptr("Monitor"),
		Password: ptr("secret1"),
	}.changes()
	assert.NilError(t, err)
	assert.Check(t, is.Equal(changes["name"], "Ana"))
	assert.Check(t, is.Equal(changes["email"], "ana@example.com"))
	assert.Check(t, is.Equal(changes["role"], "monitor"))
	hash, _ := changes["password_hash"].(string)
	assert.NilError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret1")))

	_, err = updateUserInput{Name: ptr(" ")}.changes()
	assert.Check(t, errdefs.IsInvalidArgument(err), "got %v", err)

	changes, err = updateUserInput{}.changes()
	assert.NilError(t, err)
	assert.Check(t, is.Len(changes, 0))
}

func TestStudentApply(t *testing.T) {
	s := models.Student{Active: true}
	err := studentInput{FullName: ptr(" Bia "), SeatNumber: ptr(4), Shift: ptr(models.ShiftMorning)}.apply(&s)
	assert.NilError(t, err)
	assert.Check(t, is.Equal(s.FullName, "Bia"))
	assert.Check(t, is.Equal(*s.SeatNumber, 4))
	assert.Check(t, is.Equal(*s.Shift, "MANHA"))
	assert.Check(t, s.Active)

	err = studentInput{Active: ptr(false), Phone: ptr("555")}.apply(&s)
	assert.NilError(t, err)
	assert.Check(t, !s.Active)
	assert.Check(t, is.Equal(s.FullName, "Bia"))
	assert.Check(t, is.Equal(*s.Phone, "555"))

	err = studentInput{}.apply(&models.Student{})
	assert.Check(t, errdefs.IsInvalidArgument(err), "got %v", err)
}

func TestPaymentApply(t *testing.T) {
	p := models.Payment{Status: models.PaymentOpen, Method: models.MethodCash}
	err := paymentInput{
		StudentID: ptr(uint(2)),
		Amount:    ptr(150.5),
		DueDate:   ptr("2025-03-10"),
		PaidAt:    ptr("2025-03-09T10:00:00Z"),
	}.apply(&p)
	assert.NilError(t, err)
	assert.Check(t, p.DueDate.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)))
	assert.Check(t, p.PaidAt.Equal(time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC)))
	assert.Check(t, is.Equal(p.Status, "OPEN"))

	tests := []struct {
		name string
		in   paymentInput
	}{
		{"missing student", paymentInput{Amount: ptr(1.0), DueDate: ptr("2025-03-10")}},
		{"zero amount", paymentInput{StudentID: ptr(uint(1)), Amount: ptr(0.0), DueDate: ptr("2025-03-10")}},
		{"missing due date", paymentInput{StudentID: ptr(uint(1)), Amount: ptr(1.0)}},
		{"bad due date", paymentInput{StudentID: ptr(uint(1)), Amount: ptr(1.0), DueDate: ptr("10/03/2025")}},
		{"bad paid at", paymentInput{StudentID: ptr(uint(1)), Amount: ptr(1.0), DueDate: ptr("2025-03-10"), PaidAt: ptr("yesterday")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.apply(&models.Payment{})
			assert.Check(t, errdefs.IsInvalidArgument(err), "got %v", err)
		})
	}
}

func TestAttendanceApply(t *testing.T) {
	var a models.Attendance
	in := attendanceInput{Date: ptr("2025-05-02"), RouteID: ptr(uint(1)), StudentID: ptr(uint(7)), Status: ptr(models.AttendancePresent)}
	assert.NilError(t, in.apply(&a))
	assert.Check(t, a.DateRef.Equal(time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)))
	assert.Check(t, in.movesKey())

	notes := attendanceInput{Notes: ptr("late pickup")}
	assert.NilError(t, notes.apply(&a))
	assert.Check(t, !notes.movesKey())
	assert.Check(t, is.Equal(*a.Notes, "late pickup"))

	err := attendanceInput{Date: ptr("2025-05-02"), RouteID: ptr(uint(1)), StudentID: ptr(uint(7))}.apply(&models.Attendance{})
	assert.Check(t, errdefs.IsInvalidArgument(err), "got %v", err)
}

func TestNewResetToken(t *testing.T) {
	a, err := newResetToken()
	assert.NilError(t, err)
	b, err := newResetToken()
	assert.NilError(t, err)
	assert.Check(t, is.Len(a, 64))
	assert.Check(t, a != b)
}
