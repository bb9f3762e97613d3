package shared

import (
	"errors"
	"fmt"
)

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// Error kinds. Every concrete error below unwraps to exactly one of these so callers
// can branch with errors.Is without caring about the payload.
var (
	ErrInvalidContractParameters = errors.New("invalid contract parameters")
	ErrInsufficientCash          = errors.New("insufficient cash")
	ErrInvalidDecision           = errors.New("invalid decision")
	ErrCampaignTerminal          = errors.New("campaign already finished")
)

// Contract errors

type InvalidContractError struct {
	*DomainError
	Field  string
	Reason string
}

func NewInvalidContractError(field, reason string) *InvalidContractError {
	return &InvalidContractError{
		DomainError: NewDomainError(fmt.Sprintf("invalid contract: %s - %s", field, reason)),
		Field:       field,
		Reason:      reason,
	}
}

func (e *InvalidContractError) Unwrap() error {
	return ErrInvalidContractParameters
}

// Cash errors

type InsufficientCashError struct {
	*DomainError
	Required  int64
	Available int64
}

func NewInsufficientCashError(required, available int64) *InsufficientCashError {
	return &InsufficientCashError{
		DomainError: NewDomainError(fmt.Sprintf("insufficient cash: need %d, have %d", required, available)),
		Required:    required,
		Available:   available,
	}
}

func (e *InsufficientCashError) Unwrap() error {
	return ErrInsufficientCash
}

// Decision errors

type InvalidDecisionError struct {
	*DomainError
	Action string
	Reason string
}

func NewInvalidDecisionError(action, reason string) *InvalidDecisionError {
	return &InvalidDecisionError{
		DomainError: NewDomainError(fmt.Sprintf("invalid decision %s: %s", action, reason)),
		Action:      action,
		Reason:      reason,
	}
}

func (e *InvalidDecisionError) Unwrap() error {
	return ErrInvalidDecision
}

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
