// Package id generates the UUIDv7 identifiers used by every entity.
// Time-ordered IDs keep postgres B-tree inserts append-mostly and make
// creation order recoverable from the ID alone.
package id

import (
	"github.com/google/uuid"
)

// ID aliases uuid.UUID so repositories and pgx see the underlying type.
type ID = uuid.UUID

// New returns a fresh UUIDv7. The 48-bit timestamp prefix orders IDs by
// creation time without a separate created_at index.
func New() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// uuid.NewV7 only fails when the random source does; fall back to V4.
		return uuid.New()
	}
	return id
}

// Parse validates and converts a string form.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// MustParse panics on an invalid string. For fixtures and tests.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// Nil returns the zero ID.
func Nil() ID {
	return uuid.Nil
}

// IsNil reports whether id is the zero ID.
func IsNil(id ID) bool {
	return id == uuid.Nil
}
