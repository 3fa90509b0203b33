package ledger

import (
	"fmt"

	"github.com/google/uuid"
)

// ID is an opaque, collision-resistant entity identifier.
//
// IDs are minted once by the store at creation time and are stable for
// the life of the entity: decoding persisted state reuses the stored
// value, it never regenerates.
type ID string

// NewID mints a fresh identifier.
func NewID() ID { return ID(uuid.NewString()) }

// ParseID validates the wire form of an identifier.
func ParseID(s string) (ID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("invalid id %q: %w", s, err)
	}
	return ID(s), nil
}

func (id ID) String() string { return string(id) }

// IsZero reports whether the id is unset.
func (id ID) IsZero() bool { return id == "" }
