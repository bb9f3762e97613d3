package ledger

import (
	"errors"
	"fmt"
)

// ErrReconciliationDrift is returned by Reconcile when cash and profit disagree
var ErrReconciliationDrift = errors.New("ledger reconciliation drift")

// ErrInvalidEntry represents validation errors for journal entries
type ErrInvalidEntry struct {
	Field  string
	Reason string
}

func (e *ErrInvalidEntry) Error() string {
	return fmt.Sprintf("invalid entry: %s - %s", e.Field, e.Reason)
}

// ErrBalanceInvariantViolation represents errors when balance calculations don't match
type ErrBalanceInvariantViolation struct {
	BalanceBefore int64
	Amount        int64
	BalanceAfter  int64
	Expected      int64
}

func (e *ErrBalanceInvariantViolation) Error() string {
	return fmt.Sprintf("balance invariant violated: balance_before=%d + amount=%d should equal balance_after=%d, but got %d",
		e.BalanceBefore, e.Amount, e.Expected, e.BalanceAfter)
}

// DriftError reports a reconciliation gap between cash and profit
type DriftError struct {
	CashDelta  int64
	PendingNet int64
	Profit     int64
	DriftCents int64
	Tolerance  int64
}

func (e *DriftError) Error() string {
	return fmt.Sprintf("ledger reconciliation drift: cash_delta=%d + pending=%d != profit=%d (drift=%d, tolerance=%d)",
		e.CashDelta, e.PendingNet, e.Profit, e.DriftCents, e.Tolerance)
}

func (e *DriftError) Unwrap() error {
	return ErrReconciliationDrift
}
