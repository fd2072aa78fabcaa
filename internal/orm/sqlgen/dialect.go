// Package sqlgen builds SQL statements for business objects from their class
// definitions. Relationship paths used in order criteria become LEFT JOINs;
// statements are rendered by squirrel.
package sqlgen

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	ormerrors "github.com/habanero-go/habanero/internal/orm/errors"
)

// Dialect holds the differences between the supported databases
type Dialect struct {
	Name        string
	Placeholder squirrel.PlaceholderFormat
	// Returning is true when INSERT ... RETURNING is used to read
	// database generated values instead of LastInsertId
	Returning bool
}

var (
	// Postgres is used by the pgx and lib/pq drivers
	Postgres = Dialect{Name: "postgres", Placeholder: squirrel.Dollar, Returning: true}
	// SQLite is used by the go-sqlite3 driver
	SQLite = Dialect{Name: "sqlite3", Placeholder: squirrel.Question}
)

// DialectForDriver returns the dialect for a database/sql driver name
func DialectForDriver(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "pgx", "postgres", "postgresql":
		return Postgres, nil
	case "sqlite3", "sqlite":
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// isValidIdentifier checks if a string is a valid SQL identifier
func isValidIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for _, char := range s {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '_') {
			return false
		}
	}
	return true
}

// validateIdentifiers checks table, column and alias names before they are
// written into a statement. Names may be qualified with ".".
func validateIdentifiers(identifiers ...string) error {
	for _, identifier := range identifiers {
		for _, part := range strings.Split(identifier, ".") {
			if !isValidIdentifier(part) {
				return ormerrors.NewInvalidXMLDefinition("invalid identifier %q", identifier)
			}
		}
	}
	return nil
}
