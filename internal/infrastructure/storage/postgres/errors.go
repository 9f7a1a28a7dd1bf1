package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/PraveenHasintha/inventra-backend/internal/core/apperror"
)

// PostgreSQL error codes the service reacts to.
const (
	CodeUniqueViolation     = "23505"
	CodeCheckViolation      = "23514"
	CodeForeignKey          = "23503"
	CodeNumericOutOfRange   = "22003"
	CodeSerializationFailed = "40001"
	CodeDeadlockDetected    = "40P01"
)

// MapError converts driver errors the caller can act on into AppErrors.
// AppErrors and other errors, including nil, are returned unchanged. Table and constraint
// names stay in the cause and never reach the client message.
func MapError(err error) error {
	if _, ok := apperror.AsAppError(err); ok {
		return err
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case CodeUniqueViolation:
		return apperror.NewAlreadyExists("Record already exists").WithCause(err)
	case CodeCheckViolation:
		return apperror.NewConflict("Request violates a data constraint").WithCause(err)
	case CodeForeignKey:
		return apperror.NewConflict("Referenced record does not exist").WithCause(err)
	case CodeNumericOutOfRange:
		return apperror.NewValidation("Value is out of range").WithCause(err)
	case CodeSerializationFailed, CodeDeadlockDetected:
		return apperror.NewConcurrentUpdate().WithCause(err)
	}
	return err
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == CodeUniqueViolation
}
