package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/containerd/errdefs"
	"github.com/containerd/errdefs/pkg/errhttp"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"school_transport/internal/middleware"
	"school_transport/internal/routing"
)

// Controller holds the dependencies shared by every handler.
type Controller struct {
	DB      *gorm.DB
	Routing *routing.Service
	Tokens  *middleware.Tokens

	now func() time.Time
}

func New(db *gorm.DB, svc *routing.Service, tokens *middleware.Tokens) *Controller {
	return &Controller{DB: db, Routing: svc, Tokens: tokens, now: time.Now}
}

// requestLog returns a logrus entry tagged with the request id and, once
// authenticated, the caller's email.
func requestLog(c *gin.Context) *logrus.Entry {
	fields := logrus.Fields{
		"request_id": c.GetString(middleware.ContextRequestID),
		"method":     c.Request.Method,
		"path":       c.FullPath(),
	}
	if email := c.GetString(middleware.ContextEmail); email != "" {
		fields["user"] = email
	}
	return logrus.WithFields(fields)
}

// respondError writes {"error": msg} with the status matching the error kind.
// Server side failures are logged in full and answered with a generic text.
func respondError(c *gin.Context, err error) {
	status := errhttp.ToHTTP(err)
	entry := requestLog(c).WithError(err)
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
		c.AbortWithStatusJSON(status, gin.H{"error": http.StatusText(status)})
		return
	}
	entry.Warn("request rejected")
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{"message": message, "data": data})
}

func bindJSON(c *gin.Context, v interface{}) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return errors.Wrapf(errdefs.ErrInvalidArgument, "invalid payload: %v", err)
	}
	return nil
}

func parseID(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.Wrapf(errdefs.ErrInvalidArgument, "invalid %s %q", name, raw)
	}
	return uint(id), nil
}

func currentUserID(c *gin.Context) uint {
	return c.GetUint(middleware.ContextUserID)
}

// Healthz answers liveness probes.
func (ctl *Controller) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
