// Package store holds the durable side of the messaging core: the append-only
// conversation log, the operator inbox derived from it, and broadcast
// notifications with per-actor read watermarks.
package store

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/pushp314/agencydesk-backend/pkg/errors"
	"gorm.io/gorm"
)

const defaultTimeout = 5 * time.Second

type base struct {
	db      *gorm.DB
	timeout time.Duration
}

func newBase(db *gorm.DB, timeout time.Duration) base {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return base{db: db, timeout: timeout}
}

// session bounds every store call so a stalled database surfaces as a
// transient error instead of hanging the caller.
func (b base) session(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	return b.db.WithContext(ctx), cancel
}

// wrap converts driver errors into the application taxonomy.
func wrap(msg string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(msg)
	}
	return apperrors.Transient(msg, err)
}
