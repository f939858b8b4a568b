// Package idgen produces identifiers for announcements and navigation
// outputs. IDs are UUIDv7, so they sort by creation time in the history
// store.
package idgen

import (
	"strconv"

	"github.com/google/uuid"
)

// Generator produces unique string identifiers.
type Generator func() string

// UUIDv7 returns a Generator of RFC 9562 version 7 UUIDs.
func UUIDv7() Generator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// Prefixed prepends a fixed type prefix ("ann_", "nav_") to every ID.
func Prefixed(prefix string, gen Generator) Generator {
	return func() string {
		return prefix + gen()
	}
}

// Sequence returns a deterministic Generator ("prefix1", "prefix2", ...)
// for tests. It is not safe for concurrent use.
func Sequence(prefix string) Generator {
	n := 0
	return func() string {
		n++
		return prefix + strconv.Itoa(n)
	}
}

var (
	// Announcement identifies live-region outputs.
	Announcement Generator = Prefixed("ann_", UUIDv7())
	// Navigation identifies cursor-move outputs.
	Navigation Generator = Prefixed("nav_", UUIDv7())
)
