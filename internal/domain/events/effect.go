package events

import (
	"fmt"

	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
)

// Kind identifies the variant of an effect descriptor
type Kind string

const (
	// KindSegmentShock attaches a step event to a market segment
	KindSegmentShock Kind = "SEGMENT_SHOCK"

	// KindCashShock moves cash in or out of one company (or every company when Target is "*")
	KindCashShock Kind = "CASH_SHOCK"

	// KindNodeDelay pushes back the availability year of a tech node
	KindNodeDelay Kind = "NODE_DELAY"

	// KindCostShock scales foundry wafer prices for contracts requested afterwards
	KindCostShock Kind = "COST_SHOCK"
)

// AllTargets matches every company for company-scoped effects
const AllTargets = "*"

// IsValid checks if the kind is known
func (k Kind) IsValid() bool {
	switch k {
	case KindSegmentShock, KindCashShock, KindNodeDelay, KindCostShock:
		return true
	default:
		return false
	}
}

// Payload carries the variant data. Only the fields relevant to Kind are read.
type Payload struct {
	DemandShock     float64 `json:"demand_shock,omitempty"`
	RefPriceShock   float64 `json:"ref_price_shock,omitempty"`
	ElasticityDelta float64 `json:"elasticity_delta,omitempty"`
	DurationMonths  int     `json:"duration_months,omitempty"`
	CashCents       int64   `json:"cash_cents,omitempty"`
	DelayYears      int     `json:"delay_years,omitempty"`
	CostFactor      float64 `json:"cost_factor,omitempty"`
}

// Effect is a scheduled, data-driven change to the world
type Effect struct {
	ID        string       `json:"id"`
	Name      string       `json:"name,omitempty"`
	Kind      Kind         `json:"kind"`
	Target    string       `json:"target"`
	TriggerAt shared.Month `json:"trigger_at"`
	Payload   Payload      `json:"payload"`
}

// Key identifies one application of the effect: (event id, trigger month)
func (e Effect) Key() string {
	return fmt.Sprintf("%s@%s", e.ID, e.TriggerAt)
}

// Validate checks the descriptor
func (e Effect) Validate() error {
	if e.ID == "" {
		return shared.NewValidationError("event.id", "id cannot be empty")
	}
	if !e.Kind.IsValid() {
		return shared.NewValidationError("event."+e.ID+".kind", fmt.Sprintf("unknown kind %q", e.Kind))
	}
	if e.Target == "" {
		return shared.NewValidationError("event."+e.ID+".target", "target cannot be empty")
	}
	switch e.Kind {
	case KindSegmentShock:
		if e.Payload.DurationMonths < 0 {
			return shared.NewValidationError("event."+e.ID+".duration_months", "duration cannot be negative")
		}
	case KindCostShock:
		if e.Payload.CostFactor <= 0 {
			return shared.NewValidationError("event."+e.ID+".cost_factor", "cost factor must be > 0")
		}
	case KindNodeDelay:
		if e.Payload.DelayYears < 0 {
			return shared.NewValidationError("event."+e.ID+".delay_years", "delay cannot be negative")
		}
	}
	return nil
}
