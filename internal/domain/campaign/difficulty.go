package campaign

import (
	"fmt"
	"math"
)

// Difficulty is a named preset scaling the starting conditions of a campaign
type Difficulty struct {
	ID                      string  `json:"id"`
	CashMultiplier          float64 `json:"cash_multiplier"`
	MinMarginFrac           float64 `json:"min_margin_frac"`
	PriceEpsilonFrac        float64 `json:"price_epsilon_frac"`
	TakeOrPayFrac           float64 `json:"take_or_pay_frac"`
	GrowthMultiplier        float64 `json:"growth_multiplier"`
	EventSeverityMultiplier float64 `json:"event_severity_multiplier"`
}

// Normal is the neutral preset used when a scenario names none
func Normal() Difficulty {
	return Difficulty{
		ID:                      "normal",
		CashMultiplier:          1,
		MinMarginFrac:           0.05,
		PriceEpsilonFrac:        0.02,
		TakeOrPayFrac:           0.5,
		GrowthMultiplier:        1,
		EventSeverityMultiplier: 1,
	}
}

// Validate checks the preset ranges
func (d Difficulty) Validate() error {
	for name, v := range map[string]float64{
		"cash_multiplier":           d.CashMultiplier,
		"growth_multiplier":         d.GrowthMultiplier,
		"event_severity_multiplier": d.EventSeverityMultiplier,
		"price_epsilon_frac":        d.PriceEpsilonFrac,
	} {
		if math.IsNaN(v) || v < 0 {
			return fmt.Errorf("difficulty %s: %s must be >= 0", d.ID, name)
		}
	}
	if d.MinMarginFrac < 0 || d.MinMarginFrac >= 1 {
		return fmt.Errorf("difficulty %s: min_margin_frac must be within [0,1)", d.ID)
	}
	if d.TakeOrPayFrac < 0 || d.TakeOrPayFrac > 1 {
		return fmt.Errorf("difficulty %s: take_or_pay_frac must be within [0,1]", d.ID)
	}
	return nil
}

// ScaleCash applies the cash multiplier, rounding to the nearest cent
func (d Difficulty) ScaleCash(cents int64) int64 {
	return int64(math.Round(float64(cents) * d.CashMultiplier))
}
