package persist

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when no row matches a load
	ErrNotFound = errors.New("business object not found")

	// ErrNotUnique is returned when a single object load matches several rows
	ErrNotUnique = errors.New("more than one business object found")

	// ErrConcurrencyConflict is returned when an update or delete matches no
	// row because the object was changed or deleted by someone else
	ErrConcurrencyConflict = errors.New("business object was modified by another transaction")

	// ErrInvalidObject is returned when an object fails validation on commit
	ErrInvalidObject = errors.New("business object is not valid")

	// ErrUniqueViolation is returned when a unique constraint is violated
	ErrUniqueViolation = errors.New("unique constraint violation")

	// ErrForeignKeyViolation is returned when a foreign key constraint is violated
	ErrForeignKeyViolation = errors.New("foreign key constraint violation")

	// ErrNotNullViolation is returned when a NOT NULL constraint is violated
	ErrNotNullViolation = errors.New("not null constraint violation")

	// ErrCheckViolation is returned when a check constraint is violated
	ErrCheckViolation = errors.New("check constraint violation")
)

// ValidationError lists the objects that failed validation on commit
type ValidationError struct {
	Errors []ObjectError
}

// ObjectError is the validation failure of one object
type ObjectError struct {
	Class  string
	ID     string
	Reason string
}

// Error implements the error interface
func (ve *ValidationError) Error() string {
	if len(ve.Errors) == 0 {
		return ErrInvalidObject.Error()
	}
	if len(ve.Errors) == 1 {
		e := ve.Errors[0]
		return fmt.Sprintf("%s: %s %s: %s", ErrInvalidObject, e.Class, e.ID, e.Reason)
	}
	return fmt.Sprintf("%s: %d objects failed validation", ErrInvalidObject, len(ve.Errors))
}

// Is matches ErrInvalidObject
func (ve *ValidationError) Is(target error) bool {
	return target == ErrInvalidObject
}

// ConvertDBError maps driver errors to the errors of this package. Unknown
// errors are returned unchanged.
func ConvertDBError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if mapped := constraintError(pgErr.Code); mapped != nil {
			return fmt.Errorf("%w: %s", mapped, pgErr.Detail)
		}
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if mapped := constraintError(string(pqErr.Code)); mapped != nil {
			return fmt.Errorf("%w: %s", mapped, pqErr.Detail)
		}
		return err
	}

	// sqlite reports constraints in the message, e.g.
	// "UNIQUE constraint failed: contact.surname"
	msg := err.Error()
	for prefix, mapped := range sqliteConstraints {
		if i := strings.Index(msg, prefix); i >= 0 {
			return fmt.Errorf("%w: %s", mapped, strings.TrimSpace(msg[i+len(prefix):]))
		}
	}

	return err
}

var sqliteConstraints = map[string]error{
	"UNIQUE constraint failed:":     ErrUniqueViolation,
	"FOREIGN KEY constraint failed": ErrForeignKeyViolation,
	"NOT NULL constraint failed:":   ErrNotNullViolation,
	"CHECK constraint failed:":      ErrCheckViolation,
}

// constraintError maps a PostgreSQL SQLSTATE code
func constraintError(code string) error {
	switch code {
	case "23505": // unique_violation
		return ErrUniqueViolation
	case "23503": // foreign_key_violation
		return ErrForeignKeyViolation
	case "23502": // not_null_violation
		return ErrNotNullViolation
	case "23514": // check_violation
		return ErrCheckViolation
	}
	return nil
}

// IsNotFound returns true if the error is ErrNotFound
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConcurrencyConflict returns true if the error is ErrConcurrencyConflict
func IsConcurrencyConflict(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}

// IsUniqueViolation returns true if the error is ErrUniqueViolation
func IsUniqueViolation(err error) bool {
	return errors.Is(err, ErrUniqueViolation)
}
