package pipeline

import (
	"fmt"
	"strings"

	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
)

// Status is the lifecycle state of a tape-out request
type Status string

const (
	// StatusQueued indicates the design is in fabrication and not ready yet
	StatusQueued Status = "QUEUED"

	// StatusReady indicates the lead time has elapsed this month
	StatusReady Status = "READY"

	// StatusReleased indicates the product moved to the released registry
	StatusReleased Status = "RELEASED"
)

// ProductSpec describes the chip being taped out
type ProductSpec struct {
	Name       string  `json:"name"`
	TechNodeID string  `json:"tech_node_id"`
	PerfIndex  float64 `json:"perf_index"`
	DieAreaMM2 float64 `json:"die_area_mm2"`
}

// Validate checks that the design is schedulable
func (s ProductSpec) Validate() error {
	if strings.TrimSpace(s.TechNodeID) == "" {
		return shared.NewInvalidDecisionError("tapeout", "tech node is required")
	}
	if s.DieAreaMM2 <= 0 {
		return shared.NewInvalidDecisionError("tapeout", fmt.Sprintf("die area must be > 0, got %v", s.DieAreaMM2))
	}
	if s.PerfIndex < 0 {
		return shared.NewInvalidDecisionError("tapeout", "perf index cannot be negative")
	}
	return nil
}

// Request is a single tape-out moving through QUEUED → READY → RELEASED.
//
// Invariants:
// - ReadyAt is never before QueuedAt
// - the expedite cost is paid once, at scheduling
type Request struct {
	ID                string       `json:"id"`
	Spec              ProductSpec  `json:"spec"`
	QueuedAt          shared.Month `json:"queued_at"`
	ReadyAt           shared.Month `json:"ready_at"`
	Expedite          bool         `json:"expedite"`
	ExpediteCostCents int64        `json:"expedite_cost_cents"`
	Status            Status       `json:"status"`
}

// MarkReady transitions QUEUED → READY once the month has reached ReadyAt.
// Returns false when the request is not due or has already left QUEUED.
func (r *Request) MarkReady(m shared.Month) bool {
	if r.Status != StatusQueued || m.Before(r.ReadyAt) {
		return false
	}
	r.Status = StatusReady
	return true
}

// Release transitions READY → RELEASED
func (r *Request) Release() error {
	if r.Status != StatusReady {
		return fmt.Errorf("cannot release tape-out %s from %s state", r.ID, r.Status)
	}
	r.Status = StatusReleased
	return nil
}

// MonthsRemaining returns how many months are left until the request is ready
func (r *Request) MonthsRemaining(m shared.Month) int {
	left := r.ReadyAt.Sub(m)
	if left < 0 {
		return 0
	}
	return left
}

// Product is a released design contributing to sales
type Product struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	TechNodeID string       `json:"tech_node_id"`
	PerfIndex  float64      `json:"perf_index"`
	DieAreaMM2 float64      `json:"die_area_mm2"`
	ReleasedAt shared.Month `json:"released_at"`
}
