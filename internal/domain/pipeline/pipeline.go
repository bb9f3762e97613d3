package pipeline

import (
	"fmt"

	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
)

// DefaultLeadTimeMonths is used when a tech node does not declare its own lead time
const DefaultLeadTimeMonths = 12

// Debiter takes cash out of a company account. Implementations must either debit the
// full amount or return an error without touching the balance.
type Debiter interface {
	Debit(cents int64, memo string) error
}

// Policy holds the expedite terms
type Policy struct {
	ExpediteOffsetMonths int   `json:"expedite_offset_months"`
	ExpediteCostCents    int64 `json:"expedite_cost_cents"`
}

// DefaultPolicy returns a 3-month expedite for $500k
func DefaultPolicy() Policy {
	return Policy{
		ExpediteOffsetMonths: 3,
		ExpediteCostCents:    50_000_000,
	}
}

// Pipeline holds the tape-out queue and the released product registry of one company
type Pipeline struct {
	Queue    []Request `json:"queue,omitempty"`
	Released []Product `json:"released,omitempty"`
}

// Schedule enqueues a tape-out at queuedAt.
//
// ReadyAt = queuedAt + leadTime - (expedite ? offset : 0), clamped to queuedAt.
// With expedite the cost is debited before the request is enqueued; if the debit fails
// nothing is queued and the error (typically shared.InsufficientCashError) is returned.
func (p *Pipeline) Schedule(id string, spec ProductSpec, queuedAt shared.Month, leadTimeMonths int, expedite bool, policy Policy, cash Debiter) (Request, error) {
	if err := spec.Validate(); err != nil {
		return Request{}, err
	}
	if leadTimeMonths < 0 {
		return Request{}, shared.NewInvalidDecisionError("tapeout", "lead time cannot be negative")
	}
	if p.find(id) >= 0 || p.isReleased(id) {
		return Request{}, shared.NewInvalidDecisionError("tapeout", fmt.Sprintf("duplicate tape-out id %s", id))
	}

	ready := queuedAt.AddMonths(leadTimeMonths)
	var cost int64
	if expedite {
		ready = ready.AddMonths(-policy.ExpediteOffsetMonths)
		cost = policy.ExpediteCostCents
	}
	if ready.Before(queuedAt) {
		ready = queuedAt
	}

	if cost > 0 {
		if cash == nil {
			return Request{}, shared.NewInsufficientCashError(cost, 0)
		}
		if err := cash.Debit(cost, fmt.Sprintf("expedite tape-out %s", spec.Name)); err != nil {
			return Request{}, err
		}
	}

	req := Request{
		ID:                id,
		Spec:              spec,
		QueuedAt:          queuedAt,
		ReadyAt:           ready,
		Expedite:          expedite,
		ExpediteCostCents: cost,
		Status:            StatusQueued,
	}
	p.Queue = append(p.Queue, req)
	return req, nil
}

// Advance processes month m: due requests go QUEUED → READY, then every READY request is
// released and leaves the queue. Calling Advance again for the same (or an earlier) month
// releases nothing.
func (p *Pipeline) Advance(m shared.Month) []Product {
	for i := range p.Queue {
		p.Queue[i].MarkReady(m)
	}

	var released []Product
	kept := make([]Request, 0, len(p.Queue))
	for i := range p.Queue {
		r := p.Queue[i]
		if r.Status != StatusReady || p.isReleased(r.ID) {
			kept = append(kept, r)
			continue
		}
		if err := r.Release(); err != nil {
			kept = append(kept, r)
			continue
		}
		product := Product{
			ID:         r.ID,
			Name:       r.Spec.Name,
			TechNodeID: r.Spec.TechNodeID,
			PerfIndex:  r.Spec.PerfIndex,
			DieAreaMM2: r.Spec.DieAreaMM2,
			ReleasedAt: m,
		}
		p.Released = append(p.Released, product)
		released = append(released, product)
	}
	p.Queue = kept
	return released
}

// BestPerf returns the highest perf index among released products (0 when none)
func (p *Pipeline) BestPerf() float64 {
	best := 0.0
	for _, prod := range p.Released {
		if prod.PerfIndex > best {
			best = prod.PerfIndex
		}
	}
	return best
}

// Latest returns the most recently released product
func (p *Pipeline) Latest() (Product, bool) {
	if len(p.Released) == 0 {
		return Product{}, false
	}
	return p.Released[len(p.Released)-1], true
}

// PerfBoost converts the best released perf index into an attractiveness uplift:
// weight * (best/baseline - 1), never negative.
func (p *Pipeline) PerfBoost(baselinePerf, weight float64) float64 {
	best := p.BestPerf()
	if best <= 0 || baselinePerf <= 0 || weight <= 0 {
		return 0
	}
	boost := weight * (best/baselinePerf - 1)
	if boost < 0 {
		return 0
	}
	return boost
}

// HasNode reports whether any released product uses the node
func (p *Pipeline) HasNode(nodeID string) bool {
	for _, prod := range p.Released {
		if prod.TechNodeID == nodeID {
			return true
		}
	}
	return false
}

// Pending returns the queued requests in scheduling order
func (p *Pipeline) Pending() []Request {
	return append([]Request(nil), p.Queue...)
}

// Clone returns a deep copy
func (p Pipeline) Clone() Pipeline {
	p.Queue = append([]Request(nil), p.Queue...)
	p.Released = append([]Product(nil), p.Released...)
	return p
}

func (p *Pipeline) find(id string) int {
	for i := range p.Queue {
		if p.Queue[i].ID == id {
			return i
		}
	}
	return -1
}

func (p *Pipeline) isReleased(id string) bool {
	for _, prod := range p.Released {
		if prod.ID == id {
			return true
		}
	}
	return false
}
