package ledger

import (
	"fmt"

	"github.com/google/uuid"
)

// entryNamespace seeds deterministic entry ids so replays produce identical journals
var entryNamespace = uuid.MustParse("6f1c1a52-9d0e-4c55-8a57-0b4f3f1e2a10")

// EntryID is a value object representing a journal entry's unique identifier
type EntryID struct {
	value string
}

// NewEntryID derives the id of the seq-th entry of an account.
// The same owner and sequence always produce the same id.
func NewEntryID(owner string, seq int64) EntryID {
	return EntryID{value: uuid.NewSHA1(entryNamespace, []byte(fmt.Sprintf("%s/%d", owner, seq))).String()}
}

// NewEntryIDFromString creates an EntryID from an existing UUID string
func NewEntryIDFromString(id string) (EntryID, error) {
	if id == "" {
		return EntryID{}, fmt.Errorf("entry_id cannot be empty")
	}

	if _, err := uuid.Parse(id); err != nil {
		return EntryID{}, fmt.Errorf("invalid entry_id format: %w", err)
	}

	return EntryID{value: id}, nil
}

// String returns a string representation of the EntryID
func (e EntryID) String() string {
	return e.value
}

// Equals checks if two EntryIDs are equal
func (e EntryID) Equals(other EntryID) bool {
	return e.value == other.value
}

// IsZero checks if the EntryID is the zero value (uninitialized)
func (e EntryID) IsZero() bool {
	return e.value == ""
}

// MarshalText encodes the id for snapshots
func (e EntryID) MarshalText() ([]byte, error) {
	return []byte(e.value), nil
}

// UnmarshalText decodes and validates the id
func (e *EntryID) UnmarshalText(text []byte) error {
	parsed, err := NewEntryIDFromString(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}
