// Package pgerrs translates PostgreSQL driver errors into domain errors.
package pgerrs

import (
	"errors"

	"orderflow/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique constraint violation and
// returns the violated constraint name.
func IsUniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// MapUnique converts a unique violation into errs.AlreadyExistsError naming
// paramName and value. Any other error is returned unchanged.
func MapUnique(err error, paramName string, value any) error {
	if _, ok := IsUniqueViolation(err); ok {
		return errs.NewAlreadyExistsErrorWithCause(paramName, value, err)
	}
	return err
}
