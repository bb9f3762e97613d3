package planner

import (
	"fmt"
	"math"
)

// Weights are the utility component weights. They need not sum to 1; Utility normalizes.
type Weights struct {
	Share     float64 `json:"share"`
	Margin    float64 `json:"margin"`
	Liquidity float64 `json:"liquidity"`
	Portfolio float64 `json:"portfolio"`
}

// DefaultWeights is the balanced preset: share 0.4, margin 0.3, liquidity 0.2, portfolio 0.1
func DefaultWeights() Weights {
	return Weights{Share: 0.4, Margin: 0.3, Liquidity: 0.2, Portfolio: 0.1}
}

// Normalized replaces negative or non-finite weights with 0 and scales the rest to sum 1.
// All-zero weights stay zero.
func (w Weights) Normalized() Weights {
	clean := func(x float64) float64 {
		if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
			return 0
		}
		return x
	}
	out := Weights{clean(w.Share), clean(w.Margin), clean(w.Liquidity), clean(w.Portfolio)}
	sum := out.Share + out.Margin + out.Liquidity + out.Portfolio
	if sum <= 0 {
		return Weights{}
	}
	return Weights{out.Share / sum, out.Margin / sum, out.Liquidity / sum, out.Portfolio / sum}
}

// Tactics are the month-to-month thresholds of an AI company
type Tactics struct {
	ShareDropDelta           float64 `json:"share_drop_delta"`
	PriceEpsilonFrac         float64 `json:"price_epsilon_frac"`
	MinMarginFrac            float64 `json:"min_margin_frac"`
	ShortageRaiseThreshold   float64 `json:"shortage_raise_threshold"`
	ShortageRaiseEpsilonFrac float64 `json:"shortage_raise_epsilon_frac"`
	CashLiquidityFloorK      float64 `json:"cash_liquidity_floor_k"`
	RDBoostFrac              float64 `json:"rd_boost_frac"`
	RDCutFrac                float64 `json:"rd_cut_frac"`
}

// DefaultTactics returns the stock thresholds
func DefaultTactics() Tactics {
	return Tactics{
		ShareDropDelta:           0.05,
		PriceEpsilonFrac:         0.02,
		MinMarginFrac:            0.05,
		ShortageRaiseThreshold:   1.2,
		ShortageRaiseEpsilonFrac: 0.02,
		CashLiquidityFloorK:      0.5,
		RDBoostFrac:              0.01,
		RDCutFrac:                0.01,
	}
}

// Config controls the beam search
type Config struct {
	Weights            Weights        `json:"weights"`
	BeamWidth          int            `json:"beam_width"`
	Months             int            `json:"months"`
	QuarterStep        int            `json:"quarter_step"`
	Discount           float64        `json:"discount"`
	PriceStepFrac      float64        `json:"price_step_frac"`
	CapacityStepWafers int64          `json:"capacity_step_wafers"`
	RDStepCents        int64          `json:"rd_step_cents"`
	Portfolio          PortfolioModel `json:"portfolio"`
	Parallelism        int            `json:"parallelism"`
	Tactics            Tactics        `json:"tactics"`
}

// DefaultConfig plans two years ahead in quarters with a beam of three
func DefaultConfig() Config {
	return Config{
		Weights:            DefaultWeights(),
		BeamWidth:          3,
		Months:             24,
		QuarterStep:        3,
		Discount:           0.99,
		PriceStepFrac:      0.05,
		CapacityStepWafers: 500,
		RDStepCents:        1_000_000,
		Portfolio:          PortfolioBlended,
		Parallelism:        4,
		Tactics:            DefaultTactics(),
	}
}

// DecisionPoints is the number of quarterly decisions in one plan
func (c Config) DecisionPoints() int {
	if c.QuarterStep <= 0 {
		return 0
	}
	return c.Months / c.QuarterStep
}

// Validate checks the search parameters
func (c Config) Validate() error {
	if c.BeamWidth < 1 {
		return fmt.Errorf("beam_width must be >= 1, got %d", c.BeamWidth)
	}
	if c.QuarterStep < 1 {
		return fmt.Errorf("quarter_step must be >= 1, got %d", c.QuarterStep)
	}
	if c.Months < c.QuarterStep {
		return fmt.Errorf("months (%d) must cover at least one quarter step (%d)", c.Months, c.QuarterStep)
	}
	if c.Discount <= 0 || c.Discount > 1 {
		return fmt.Errorf("discount must be within (0,1], got %v", c.Discount)
	}
	if c.PriceStepFrac < 0 || c.PriceStepFrac >= 1 {
		return fmt.Errorf("price_step_frac must be within [0,1), got %v", c.PriceStepFrac)
	}
	if c.CapacityStepWafers < 0 || c.RDStepCents < 0 {
		return fmt.Errorf("capacity and R&D steps cannot be negative")
	}
	if !c.Portfolio.IsValid() {
		return fmt.Errorf("unknown portfolio model %q", c.Portfolio)
	}
	return nil
}
