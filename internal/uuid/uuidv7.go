// Package uuid generates the identifiers used for database rows and ledger
// entries.
package uuid

import (
	googleuuid "github.com/google/uuid"
)

// New returns a UUIDv7 string. UUIDv7 is time-ordered, so rows created later
// sort after earlier ones in primary key indexes.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does.
		return googleuuid.NewString()
	}
	return id.String()
}

// Generator produces identifiers. Tests substitute a deterministic one.
type Generator func() string

// IsValid checks if a string is a valid UUID
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
