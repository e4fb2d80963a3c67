package util

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a random UUID string used for runs, events and sessions.
func NewID() string { return uuid.NewString() }

// NewShortID returns prefix followed by the first n uppercase hex characters
// of a random UUID (e.g. "INF-3FA"). No collision check is performed.
func NewShortID(prefix string, n int) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	if n > len(hex) {
		n = len(hex)
	}

	return prefix + strings.ToUpper(hex[:n])
}
