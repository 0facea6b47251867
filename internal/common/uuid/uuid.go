// Package uuid wraps github.com/google/uuid for request identifiers. New
// identifiers are UUIDv7 so that they sort by creation time in log output.
package uuid

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UUID is an alias of github.com/google/uuid.UUID.
type UUID = uuid.UUID

// Nil is the zero UUID value.
var Nil = uuid.Nil

// NewRandom returns a new UUIDv7.
func NewRandom() (UUID, error) {
	return uuid.NewV7()
}

// NewRequestID returns a UUIDv7 string, falling back to a timestamp based
// identifier if the random source fails.
func NewRequestID() string {
	u, err := NewRandom()
	if err == nil {
		return u.String()
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

// IsRequestID reports whether s is a well-formed UUID of any version.
func IsRequestID(s string) bool {
	u, err := uuid.Parse(s)
	return err == nil && u != Nil
}
