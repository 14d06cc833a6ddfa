package manifest

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// DefaultIDPrefix is the reverse-DNS prefix for generated package identifiers.
const DefaultIDPrefix = "com.scormpack.course"

// IDGenerator produces package identifiers. Identifier generation is
// injected rather than ambient so manifest output stays deterministic under
// test (pin with [FixedID]).
type IDGenerator func() string

// NewIDGenerator returns a generator producing "<prefix>.<8 hex chars>"
// identifiers with a random suffix. An empty prefix selects
// [DefaultIDPrefix].
func NewIDGenerator(prefix string) IDGenerator {
	if prefix == "" {
		prefix = DefaultIDPrefix
	}
	return func() string {
		id := uuid.New()
		return prefix + "." + hex.EncodeToString(id[:4])
	}
}

// FixedID returns a generator that always yields id.
func FixedID(id string) IDGenerator {
	return func() string { return id }
}
