package simulation

import (
	"fmt"
	"math"

	"github.com/andrescamacho/fabtycoon-go/internal/domain/campaign"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/capacity"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/econ"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/ledger"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/pipeline"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
)

// ActionKind identifies what a decision changes
type ActionKind string

const (
	ActionHold     ActionKind = "HOLD"
	ActionPrice    ActionKind = "PRICE"
	ActionCapacity ActionKind = "CAPACITY"
	ActionRD       ActionKind = "RD"
	ActionTapeout  ActionKind = "TAPEOUT"
)

// CapacityRequest asks a foundry for wafers. Zero fields take the rule defaults.
type CapacityRequest struct {
	FoundryID          string                `json:"foundry_id,omitempty"`
	WafersPerMonth     int64                 `json:"wafers_per_month"`
	DurationMonths     int                   `json:"duration_months,omitempty"`
	PricePerWaferCents int64                 `json:"price_per_wafer_cents,omitempty"`
	TakeOrPayFrac      *float64              `json:"take_or_pay_frac,omitempty"`
	Billing            capacity.BillingModel `json:"billing,omitempty"`
	LeadTimeMonths     *int                  `json:"lead_time_months,omitempty"`
}

// TapeoutRequest asks to tape out a product. Zero perf/die area take the company's current values.
type TapeoutRequest struct {
	Name       string  `json:"name,omitempty"`
	TechNodeID string  `json:"tech_node_id"`
	PerfIndex  float64 `json:"perf_index,omitempty"`
	DieAreaMM2 float64 `json:"die_area_mm2,omitempty"`
	Expedite   bool    `json:"expedite"`
}

// Decision is one action for one company
type Decision struct {
	Kind           ActionKind       `json:"kind"`
	PriceDeltaFrac float64          `json:"price_delta_frac,omitempty"`
	TargetASPCents int64            `json:"target_asp_cents,omitempty"`
	RDDeltaCents   int64            `json:"rd_delta_cents,omitempty"`
	Capacity       *CapacityRequest `json:"capacity,omitempty"`
	Tapeout        *TapeoutRequest  `json:"tapeout,omitempty"`
}

// String renders a short label for logs and the recommendation view
func (d Decision) String() string {
	switch d.Kind {
	case ActionPrice:
		if d.TargetASPCents > 0 {
			return fmt.Sprintf("price -> %d", d.TargetASPCents)
		}
		return fmt.Sprintf("price %+.1f%%", d.PriceDeltaFrac*100)
	case ActionCapacity:
		if d.Capacity != nil {
			return fmt.Sprintf("capacity +%d wafers/month", d.Capacity.WafersPerMonth)
		}
	case ActionRD:
		return fmt.Sprintf("R&D %+d cents/month", d.RDDeltaCents)
	case ActionTapeout:
		if d.Tapeout != nil {
			if d.Tapeout.Expedite {
				return fmt.Sprintf("tape-out on %s (expedite)", d.Tapeout.TechNodeID)
			}
			return fmt.Sprintf("tape-out on %s", d.Tapeout.TechNodeID)
		}
	}
	return "hold"
}

// Applied describes the effect of an accepted decision
type Applied struct {
	Decision      Decision           `json:"decision"`
	ASPCents      int64              `json:"asp_cents,omitempty"`
	RDBudgetCents int64              `json:"rd_budget_cents,omitempty"`
	Contract      *capacity.Contract `json:"contract,omitempty"`
	Tapeout       *pipeline.Request  `json:"tapeout,omitempty"`
}

// ApplyDecision validates and applies one decision to a company in the current month.
// A rejected decision leaves the state unchanged and returns an error that unwraps to
// shared.ErrInvalidDecision, shared.ErrInvalidContractParameters or shared.ErrInsufficientCash.
func ApplyDecision(s *State, companyID string, d Decision) (Applied, error) {
	c, err := s.Company(companyID)
	if err != nil {
		return Applied{}, shared.NewInvalidDecisionError(string(d.Kind), err.Error())
	}

	switch d.Kind {
	case ActionHold, "":
		return Applied{Decision: d}, nil
	case ActionPrice:
		return applyPrice(s, c, d)
	case ActionRD:
		return applyRD(c, d)
	case ActionCapacity:
		return applyCapacity(s, c, d)
	case ActionTapeout:
		return applyTapeout(s, c, d)
	default:
		return Applied{}, shared.NewInvalidDecisionError(string(d.Kind), "unknown action")
	}
}

// NewPrice returns the ASP a price decision would set
func NewPrice(c *Company, d Decision) int64 {
	if d.TargetASPCents > 0 {
		return d.TargetASPCents
	}
	return int64(math.Round(float64(c.ASPCents) * (1 + d.PriceDeltaFrac)))
}

func applyPrice(s *State, c *Company, d Decision) (Applied, error) {
	if math.IsNaN(d.PriceDeltaFrac) || math.IsInf(d.PriceDeltaFrac, 0) {
		return Applied{}, shared.NewInvalidDecisionError("price", "price delta must be finite")
	}
	price := NewPrice(c, d)
	if price <= 0 {
		return Applied{}, shared.NewInvalidDecisionError("price", fmt.Sprintf("price must stay positive, got %d", price))
	}
	floor := econ.MinPrice(c.UnitCostCents, s.Rules.MinMarginFrac)
	if price < c.ASPCents && price < floor {
		return Applied{}, shared.NewInvalidDecisionError("price",
			fmt.Sprintf("cut to %d breaches the minimum margin floor %d", price, floor))
	}
	c.ASPCents = price
	return Applied{Decision: d, ASPCents: price}, nil
}

func applyRD(c *Company, d Decision) (Applied, error) {
	budget := c.RDBudgetCents + d.RDDeltaCents
	if budget < 0 {
		return Applied{}, shared.NewInvalidDecisionError("rd", fmt.Sprintf("R&D budget cannot go negative (%d)", budget))
	}
	c.RDBudgetCents = budget
	return Applied{Decision: d, RDBudgetCents: budget}, nil
}

// ContractTerms resolves a capacity request against the rule defaults and the current
// wafer price factor
func ContractTerms(s *State, req CapacityRequest) capacity.Terms {
	def := s.Rules.Contract
	t := capacity.Terms{
		FoundryID:          req.FoundryID,
		WafersPerMonth:     req.WafersPerMonth,
		PricePerWaferCents: req.PricePerWaferCents,
		TakeOrPayFrac:      def.TakeOrPayFrac,
		Billing:            req.Billing,
		LeadTimeMonths:     def.LeadTimeMonths,
		DurationMonths:     req.DurationMonths,
	}
	if t.FoundryID == "" {
		t.FoundryID = def.FoundryID
	}
	if t.PricePerWaferCents == 0 {
		factor := s.WaferPriceFactor
		if factor <= 0 {
			factor = 1
		}
		t.PricePerWaferCents = int64(math.Round(float64(def.PricePerWaferCents) * factor))
	}
	if req.TakeOrPayFrac != nil {
		t.TakeOrPayFrac = *req.TakeOrPayFrac
	}
	if t.Billing == "" {
		t.Billing = def.Billing
	}
	if req.LeadTimeMonths != nil {
		t.LeadTimeMonths = *req.LeadTimeMonths
	}
	if t.DurationMonths == 0 {
		t.DurationMonths = def.DurationMonths
	}
	return t
}

// FirstMonthCommitment is the cash a contract commits to in its first active month
func FirstMonthCommitment(c capacity.Contract) int64 {
	if c.Billing == capacity.BillingFlat {
		return c.WafersPerMonth * c.PricePerWaferCents
	}
	return c.CommittedWafers() * c.PricePerWaferCents
}

func applyCapacity(s *State, c *Company, d Decision) (Applied, error) {
	if d.Capacity == nil {
		return Applied{}, shared.NewInvalidDecisionError("capacity", "missing capacity request")
	}
	contract, err := capacity.NewContract(s.NextID("contract"), s.Month, ContractTerms(s, *d.Capacity))
	if err != nil {
		return Applied{}, err
	}
	if need := FirstMonthCommitment(contract); need > c.Cash() {
		return Applied{}, shared.NewInsufficientCashError(need, c.Cash())
	}
	if err := c.Capacity.Request(contract); err != nil {
		return Applied{}, err
	}
	return Applied{Decision: d, Contract: &contract}, nil
}

func applyTapeout(s *State, c *Company, d Decision) (Applied, error) {
	req := d.Tapeout
	if req == nil {
		return Applied{}, shared.NewInvalidDecisionError("tapeout", "missing tape-out request")
	}
	node, ok := s.TechNode(req.TechNodeID)
	if !ok {
		return Applied{}, shared.NewInvalidDecisionError("tapeout", fmt.Sprintf("unknown tech node %s", req.TechNodeID))
	}
	if !node.AvailableIn(s.Month.Year()) {
		return Applied{}, shared.NewInvalidDecisionError("tapeout",
			fmt.Sprintf("tech node %s is not available before %d", node.ID, node.YearAvailable))
	}

	spec := pipeline.ProductSpec{
		Name:       req.Name,
		TechNodeID: node.ID,
		PerfIndex:  req.PerfIndex,
		DieAreaMM2: req.DieAreaMM2,
	}
	if spec.PerfIndex == 0 {
		spec.PerfIndex = node.PerfIndex
	}
	if spec.DieAreaMM2 == 0 {
		spec.DieAreaMM2 = c.DieAreaMM2
	}
	if spec.Name == "" {
		spec.Name = fmt.Sprintf("%s-%s-%s", c.ID, node.ID, s.Month)
	}

	lead := node.LeadTimeMonths
	if lead == 0 {
		lead = pipeline.DefaultLeadTimeMonths
	}

	id := s.NextID("tapeout")
	account := c.Ledger.Account(ledger.EntryTypeExpedite, s.Month)
	r, err := c.Pipeline.Schedule(id, spec, s.Month, lead, req.Expedite, s.Rules.Expedite, account)
	if err != nil {
		return Applied{}, err
	}
	return Applied{Decision: d, Tapeout: &r}, nil
}

// Override is a manual player intervention; every present field becomes one decision
type Override struct {
	PriceDeltaFrac *float64         `json:"price_delta_frac,omitempty"`
	RDDeltaCents   *int64           `json:"rd_delta_cents,omitempty"`
	Capacity       *CapacityRequest `json:"capacity,omitempty"`
	Tapeout        *TapeoutRequest  `json:"tapeout,omitempty"`
}

// Decisions expands the override in a fixed order: price, R&D, capacity, tape-out
func (o Override) Decisions() []Decision {
	var out []Decision
	if o.PriceDeltaFrac != nil {
		out = append(out, Decision{Kind: ActionPrice, PriceDeltaFrac: *o.PriceDeltaFrac})
	}
	if o.RDDeltaCents != nil {
		out = append(out, Decision{Kind: ActionRD, RDDeltaCents: *o.RDDeltaCents})
	}
	if o.Capacity != nil {
		req := *o.Capacity
		out = append(out, Decision{Kind: ActionCapacity, Capacity: &req})
	}
	if o.Tapeout != nil {
		req := *o.Tapeout
		out = append(out, Decision{Kind: ActionTapeout, Tapeout: &req})
	}
	return out
}

// OverrideResult reports what an override changed
type OverrideResult struct {
	Applied          []Applied `json:"applied"`
	CampaignTerminal bool      `json:"campaign_terminal"`
}

// ApplyOverride applies all parts of an override to the player company, or none of them.
// After the campaign has finished the override is a no-op reported through CampaignTerminal.
func ApplyOverride(s *State, o Override) (OverrideResult, error) {
	if s.CampaignTerminal() {
		return OverrideResult{CampaignTerminal: true}, nil
	}
	if s.PlayerID == "" {
		return OverrideResult{}, shared.NewInvalidDecisionError("override", "scenario has no player company")
	}
	decisions := o.Decisions()
	if len(decisions) == 0 {
		return OverrideResult{}, shared.NewInvalidDecisionError("override", "override is empty")
	}

	work := s.Clone()
	result := OverrideResult{}
	for _, d := range decisions {
		applied, err := ApplyDecision(work, work.PlayerID, d)
		if err != nil {
			return OverrideResult{}, err
		}
		result.Applied = append(result.Applied, applied)
		trackTutorial(work.Tutorial, d)
	}

	*s = *work
	return result, nil
}

func trackTutorial(t *campaign.Tutorial, d Decision) {
	switch d.Kind {
	case ActionPrice:
		if d.PriceDeltaFrac < 0 {
			t.Complete(campaign.StepPriceCut)
		}
	case ActionCapacity:
		t.Complete(campaign.StepFoundryContract)
	case ActionTapeout:
		if d.Tapeout != nil && d.Tapeout.Expedite {
			t.Complete(campaign.StepTapeoutExpedite)
		}
	}
}
