package econ

import (
	"fmt"

	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
)

// ShockMode decides how several active step events on the same segment combine
type ShockMode string

const (
	// ShockAdditive sums the shock fractions before applying them: base * (1 + s1 + s2)
	ShockAdditive ShockMode = "additive"

	// ShockMultiplicative compounds the shocks: base * (1 + s1) * (1 + s2)
	ShockMultiplicative ShockMode = "multiplicative"
)

// IsValid checks if the shock mode is known
func (m ShockMode) IsValid() bool {
	return m == ShockAdditive || m == ShockMultiplicative
}

// ParseShockMode parses a shock mode, defaulting the empty string to multiplicative
func ParseShockMode(s string) (ShockMode, error) {
	if s == "" {
		return ShockMultiplicative, nil
	}
	m := ShockMode(s)
	if !m.IsValid() {
		return "", fmt.Errorf("invalid shock mode: %s", s)
	}
	return m, nil
}

// StepEvent is a scheduled demand/price shock on a segment.
// Shocks are signed fractions: -0.2 removes 20% of base demand.
type StepEvent struct {
	ID              string       `json:"id"`
	Start           shared.Month `json:"start"`
	Months          int          `json:"months"` // 0 means the shock is permanent
	DemandShock     float64      `json:"demand_shock"`
	RefPriceShock   float64      `json:"ref_price_shock"`
	ElasticityDelta float64      `json:"elasticity_delta"`
}

// ActiveAt reports whether the event applies at month m
func (e StepEvent) ActiveAt(m shared.Month) bool {
	if m.Before(e.Start) {
		return false
	}
	if e.Months <= 0 {
		return true
	}
	return m.Before(e.Start.AddMonths(e.Months))
}

// Segment is a market segment demand curve.
// BaseDemandUnits and BaseASPCents are the monthly values at Epoch.
type Segment struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Epoch           shared.Month `json:"epoch"`
	BaseDemandUnits int64        `json:"base_demand_units"`
	BaseASPCents    int64        `json:"base_asp_cents"`
	Elasticity      float64      `json:"elasticity"`
	AnnualTrend     float64      `json:"annual_trend"`
	ShockMode       ShockMode    `json:"shock_mode"`
	Events          []StepEvent  `json:"events,omitempty"`
}

// Conditions are the resolved demand-curve parameters of a segment for one month
type Conditions struct {
	BaseDemand    float64
	RefPriceCents float64
	Elasticity    float64
}

// ConditionsAt resolves trend growth and every active step event for month m.
// Each active event contributes exactly once regardless of how long it has been active.
func (s *Segment) ConditionsAt(m shared.Month) Conditions {
	elapsed := m.Sub(s.Epoch)
	if elapsed < 0 {
		elapsed = 0
	}

	growth := compound(1+s.AnnualTrend/12, elapsed)
	c := Conditions{
		BaseDemand:    float64(s.BaseDemandUnits) * growth,
		RefPriceCents: float64(s.BaseASPCents),
		Elasticity:    s.Elasticity,
	}

	demandFactor, priceFactor := 1.0, 1.0
	demandSum, priceSum := 0.0, 0.0
	for _, e := range s.Events {
		if !e.ActiveAt(m) {
			continue
		}
		demandFactor *= 1 + e.DemandShock
		priceFactor *= 1 + e.RefPriceShock
		demandSum += e.DemandShock
		priceSum += e.RefPriceShock
		c.Elasticity += e.ElasticityDelta
	}

	if s.ShockMode == ShockAdditive {
		demandFactor = 1 + demandSum
		priceFactor = 1 + priceSum
	}

	c.BaseDemand *= nonNegative(demandFactor)
	c.RefPriceCents *= nonNegative(priceFactor)
	return c
}

// HasEvent reports whether an event id is already attached to the segment
func (s *Segment) HasEvent(id string) bool {
	for _, e := range s.Events {
		if e.ID == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy
func (s Segment) Clone() Segment {
	s.Events = append([]StepEvent(nil), s.Events...)
	return s
}

func compound(rate float64, months int) float64 {
	f := 1.0
	for i := 0; i < months; i++ {
		f *= rate
	}
	return f
}

func nonNegative(x float64) float64 {
	if x < 0 {
		return 0
	}
	return x
}
