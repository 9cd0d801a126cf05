package postgres

import (
	"context"
	"database/sql/driver"
	"fmt"

	"github.com/containerd/errdefs"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Classify maps a GORM / lib/pq error onto an errdefs kind and adds context.
// Errors that already carry a kind are returned unchanged.
func Classify(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	if errdefs.IsNotFound(err) || errdefs.IsConflict(err) ||
		errdefs.IsInvalidArgument(err) || errdefs.IsUnavailable(err) {
		return err
	}

	msg := fmt.Sprintf(format, args...)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Name() {
		case "unique_violation":
			return errors.Wrapf(errdefs.ErrConflict, "%s: unique constraint %q violated", msg, pqErr.Constraint)
		case "foreign_key_violation":
			return errors.Wrapf(errdefs.ErrConflict, "%s: %s", msg, pqErr.Message)
		case "serialization_failure", "deadlock_detected", "admin_shutdown", "cannot_connect_now", "too_many_connections":
			return errors.Wrapf(errdefs.ErrUnavailable, "%s: %s", msg, pqErr.Message)
		}
		if pqErr.Code.Class() == "08" {
			return errors.Wrapf(errdefs.ErrUnavailable, "%s: %s", msg, pqErr.Message)
		}
		return errors.Wrap(err, msg)
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errors.Wrap(errdefs.ErrNotFound, msg)
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated):
		return errors.Wrapf(errdefs.ErrConflict, "%s: %v", msg, err)
	case errors.Is(err, driver.ErrBadConn), errors.Is(err, context.DeadlineExceeded):
		return errors.Wrapf(errdefs.ErrUnavailable, "%s: %v", msg, err)
	}
	return errors.Wrap(err, msg)
}
