package aggregates

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/typecast-backend/internal/platform/apierr"
)

// MapError classifies storage failures into the apierr taxonomy. Errors that
// already carry a code pass through unchanged.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var tagged *apierr.Error
	if errors.As(err, &tagged) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apierr.Wrap(apierr.CodeNotFound, op, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apierr.Wrap(apierr.CodeConflict, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apierr.Wrap(apierr.CodeRetryable, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return apierr.Wrap(apierr.CodeConflict, op, err) // unique_violation
		case "23503":
			return apierr.Wrap(apierr.CodeNotFound, op, err) // foreign_key_violation
		case "40001", "40P01", "55P03":
			return apierr.Wrap(apierr.CodeRetryable, op, err)
		}
	}

	if IsUniqueViolation(err) {
		return apierr.Wrap(apierr.CodeConflict, op, err)
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "serialization"),
		strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "timeout"):
		return apierr.Wrap(apierr.CodeRetryable, op, err)
	default:
		return apierr.Wrap(apierr.CodeInternal, op, err)
	}
}

// IsUniqueViolation reports whether err came from a unique index on either
// backend. sqlite only surfaces this through the message text.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
