package capacity

import (
	"fmt"
	"math"

	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
)

// BillingModel determines how a foundry contract is charged each month
type BillingModel string

const (
	// BillingFlat charges the full committed volume every active month
	BillingFlat BillingModel = "flat"

	// BillingUsage charges wafers actually used, floored by the take-or-pay commitment
	BillingUsage BillingModel = "usage"
)

// IsValid checks if the billing model is known
func (b BillingModel) IsValid() bool {
	return b == BillingFlat || b == BillingUsage
}

// ParseBillingModel parses a billing model; empty means usage billing
func ParseBillingModel(s string) (BillingModel, error) {
	if s == "" {
		return BillingUsage, nil
	}
	b := BillingModel(s)
	if !b.IsValid() {
		return "", fmt.Errorf("invalid billing model: %s", s)
	}
	return b, nil
}

// Contract is a foundry capacity reservation active over [Start, End)
type Contract struct {
	ID                 string       `json:"id"`
	FoundryID          string       `json:"foundry_id"`
	WafersPerMonth     int64        `json:"wafers_per_month"`
	PricePerWaferCents int64        `json:"price_per_wafer_cents"`
	TakeOrPayFrac      float64      `json:"take_or_pay_frac"`
	Billing            BillingModel `json:"billing"`
	LeadTimeMonths     int          `json:"lead_time_months"`
	Start              shared.Month `json:"start"`
	End                shared.Month `json:"end"`
}

// Terms are the negotiable parameters of a capacity request
type Terms struct {
	FoundryID          string
	WafersPerMonth     int64
	PricePerWaferCents int64
	TakeOrPayFrac      float64
	Billing            BillingModel
	LeadTimeMonths     int
	DurationMonths     int
}

// NewContract builds a contract requested at month requestedAt.
// Capacity arrives after the lead time and lasts DurationMonths.
func NewContract(id string, requestedAt shared.Month, t Terms) (Contract, error) {
	billing := t.Billing
	if billing == "" {
		billing = BillingUsage
	}
	if t.DurationMonths <= 0 {
		return Contract{}, shared.NewInvalidContractError("duration_months", "duration must be > 0")
	}
	if t.LeadTimeMonths < 0 {
		return Contract{}, shared.NewInvalidContractError("lead_time_months", "lead time cannot be negative")
	}

	start := requestedAt.AddMonths(t.LeadTimeMonths)
	c := Contract{
		ID:                 id,
		FoundryID:          t.FoundryID,
		WafersPerMonth:     t.WafersPerMonth,
		PricePerWaferCents: t.PricePerWaferCents,
		TakeOrPayFrac:      t.TakeOrPayFrac,
		Billing:            billing,
		LeadTimeMonths:     t.LeadTimeMonths,
		Start:              start,
		End:                start.AddMonths(t.DurationMonths),
	}
	if err := c.Validate(); err != nil {
		return Contract{}, err
	}
	return c, nil
}

// Validate checks the contract invariants
func (c Contract) Validate() error {
	if c.WafersPerMonth <= 0 {
		return shared.NewInvalidContractError("wafers_per_month", fmt.Sprintf("must be > 0, got %d", c.WafersPerMonth))
	}
	if !c.End.After(c.Start) {
		return shared.NewInvalidContractError("end", fmt.Sprintf("end %s must be after start %s", c.End, c.Start))
	}
	if c.PricePerWaferCents < 0 {
		return shared.NewInvalidContractError("price_per_wafer_cents", "price cannot be negative")
	}
	if math.IsNaN(c.TakeOrPayFrac) || c.TakeOrPayFrac < 0 || c.TakeOrPayFrac > 1 {
		return shared.NewInvalidContractError("take_or_pay_frac", "must be within [0,1]")
	}
	if !c.Billing.IsValid() {
		return shared.NewInvalidContractError("billing", fmt.Sprintf("invalid billing model: %s", c.Billing))
	}
	return nil
}

// ActiveAt reports whether the contract contributes capacity in month m
func (c Contract) ActiveAt(m shared.Month) bool {
	return !m.Before(c.Start) && m.Before(c.End)
}

// CommittedWafers is the take-or-pay floor in wafers
func (c Contract) CommittedWafers() int64 {
	return int64(math.Ceil(c.TakeOrPayFrac * float64(c.WafersPerMonth)))
}

// MonthlyCost returns the charge for one active month given the wafers actually used
func (c Contract) MonthlyCost(usedWafers int64) int64 {
	if c.Billing == BillingFlat {
		return c.WafersPerMonth * c.PricePerWaferCents
	}

	billed := usedWafers
	if billed > c.WafersPerMonth {
		billed = c.WafersPerMonth
	}
	if floor := c.CommittedWafers(); billed < floor {
		billed = floor
	}
	return billed * c.PricePerWaferCents
}
