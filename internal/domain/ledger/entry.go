package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
)

// Entry is an immutable journal record of one cash movement.
// Amount is positive for income and negative for expenses.
type Entry struct {
	id            EntryID
	month         shared.Month
	accruedAt     shared.Month
	entryType     EntryType
	category      Category
	amount        int64
	balanceBefore int64
	balanceAfter  int64
	description   string
}

// NewEntry creates a journal entry with validation.
// accruedAt is the month the underlying event happened; month is when cash moved.
func NewEntry(
	id EntryID,
	month shared.Month,
	accruedAt shared.Month,
	entryType EntryType,
	amount int64,
	balanceBefore int64,
	balanceAfter int64,
	description string,
) (*Entry, error) {
	if id.IsZero() {
		return nil, &ErrInvalidEntry{Field: "id", Reason: "id cannot be empty"}
	}

	if !entryType.IsValid() {
		return nil, &ErrInvalidEntry{
			Field:  "entry_type",
			Reason: fmt.Sprintf("invalid entry type: %s", entryType),
		}
	}

	category, err := entryType.ToCategory()
	if err != nil {
		return nil, &ErrInvalidEntry{Field: "category", Reason: err.Error()}
	}

	e := &Entry{
		id:            id,
		month:         month,
		accruedAt:     accruedAt,
		entryType:     entryType,
		category:      category,
		amount:        amount,
		balanceBefore: balanceBefore,
		balanceAfter:  balanceAfter,
		description:   description,
	}

	if err := e.Validate(); err != nil {
		return nil, err
	}

	return e, nil
}

// Validate checks that the entry satisfies all invariants
func (e *Entry) Validate() error {
	if e.amount == 0 {
		return &ErrInvalidEntry{Field: "amount", Reason: "amount cannot be zero"}
	}

	expected := e.balanceBefore + e.amount
	if e.balanceAfter != expected {
		return &ErrBalanceInvariantViolation{
			BalanceBefore: e.balanceBefore,
			Amount:        e.amount,
			BalanceAfter:  e.balanceAfter,
			Expected:      expected,
		}
	}

	if e.month.Before(e.accruedAt) {
		return &ErrInvalidEntry{
			Field:  "month",
			Reason: fmt.Sprintf("cash cannot move (%s) before the accrual (%s)", e.month, e.accruedAt),
		}
	}

	return nil
}

// Getters (all fields are immutable)

func (e *Entry) ID() EntryID {
	return e.id
}

func (e *Entry) Month() shared.Month {
	return e.month
}

func (e *Entry) AccruedAt() shared.Month {
	return e.accruedAt
}

func (e *Entry) Type() EntryType {
	return e.entryType
}

func (e *Entry) Category() Category {
	return e.category
}

func (e *Entry) Amount() int64 {
	return e.amount
}

func (e *Entry) BalanceBefore() int64 {
	return e.balanceBefore
}

func (e *Entry) BalanceAfter() int64 {
	return e.balanceAfter
}

func (e *Entry) Description() string {
	return e.description
}

// IsIncome returns true if the entry represents income
func (e *Entry) IsIncome() bool {
	return e.amount > 0
}

// String provides a human-readable representation
func (e *Entry) String() string {
	return fmt.Sprintf("Entry[%s, type=%s, amount=%d, balance=%d->%d]",
		e.id.String(), e.entryType, e.amount, e.balanceBefore, e.balanceAfter)
}

type entryJSON struct {
	ID            EntryID      `json:"id"`
	Month         shared.Month `json:"month"`
	AccruedAt     shared.Month `json:"accrued_at"`
	Type          EntryType    `json:"type"`
	Category      Category     `json:"category"`
	Amount        int64        `json:"amount"`
	BalanceBefore int64        `json:"balance_before"`
	BalanceAfter  int64        `json:"balance_after"`
	Description   string       `json:"description,omitempty"`
}

// MarshalJSON encodes the entry for save snapshots
func (e *Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(entryJSON{
		ID:            e.id,
		Month:         e.month,
		AccruedAt:     e.accruedAt,
		Type:          e.entryType,
		Category:      e.category,
		Amount:        e.amount,
		BalanceBefore: e.balanceBefore,
		BalanceAfter:  e.balanceAfter,
		Description:   e.description,
	})
}

// UnmarshalJSON reconstructs an entry from a snapshot, re-checking its invariants
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw entryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = Entry{
		id:            raw.ID,
		month:         raw.Month,
		accruedAt:     raw.AccruedAt,
		entryType:     raw.Type,
		category:      raw.Category,
		amount:        raw.Amount,
		balanceBefore: raw.BalanceBefore,
		balanceAfter:  raw.BalanceAfter,
		description:   raw.Description,
	}
	return e.Validate()
}
