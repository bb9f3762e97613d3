package simulation

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/andrescamacho/fabtycoon-go/internal/domain/campaign"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/capacity"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/econ"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/events"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/ledger"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/pipeline"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
)

// SnapshotVersion is bumped whenever the State encoding changes incompatibly
const SnapshotVersion = 1

var idNamespace = uuid.MustParse("0d5b3c2e-7a41-4f8e-9c36-54e2b1a9f001")

// ContractDefaults fill in the capacity request terms a caller leaves empty
type ContractDefaults struct {
	FoundryID          string                `json:"foundry_id"`
	PricePerWaferCents int64                 `json:"price_per_wafer_cents"`
	TakeOrPayFrac      float64               `json:"take_or_pay_frac"`
	Billing            capacity.BillingModel `json:"billing"`
	LeadTimeMonths     int                   `json:"lead_time_months"`
	DurationMonths     int                   `json:"duration_months"`
}

// Rules are the tunable constants of the world model. They travel with the state so a
// snapshot replays under the rules it was created with.
type Rules struct {
	Cost                    econ.CostConfig  `json:"cost"`
	Expedite                pipeline.Policy  `json:"expedite"`
	Contract                ContractDefaults `json:"contract"`
	MinMarginFrac           float64          `json:"min_margin_frac"`
	AttractivenessBeta      float64          `json:"attractiveness_beta"`
	ResidualAttractiveness  float64          `json:"residual_attractiveness"`
	PerfBoostWeight         float64          `json:"perf_boost_weight"`
	BaselinePerf            float64          `json:"baseline_perf"`
	RDBoostWeight           float64          `json:"rd_boost_weight"`
	RDScaleCents            int64            `json:"rd_scale_cents"`
	BuildAheadFrac          float64          `json:"build_ahead_frac"`
	MaskVolumeUnits         int64            `json:"mask_volume_units"`
	QuarterStep             int              `json:"quarter_step"`
	ShareHistoryMonths      int              `json:"share_history_months"`
	ReconcileToleranceCents int64            `json:"reconcile_tolerance_cents"`
}

// DefaultRules returns the rules used by the bundled scenarios
func DefaultRules() Rules {
	return Rules{
		Cost:     econ.DefaultCostConfig(),
		Expedite: pipeline.DefaultPolicy(),
		Contract: ContractDefaults{
			FoundryID:          "tsmc",
			PricePerWaferCents: 250_000,
			TakeOrPayFrac:      0.5,
			Billing:            capacity.BillingUsage,
			LeadTimeMonths:     3,
			DurationMonths:     12,
		},
		MinMarginFrac:           0.05,
		AttractivenessBeta:      1.5,
		ResidualAttractiveness:  0,
		PerfBoostWeight:         0.5,
		BaselinePerf:            1.0,
		RDBoostWeight:           0.05,
		RDScaleCents:            100_000_000,
		BuildAheadFrac:          0.05,
		MaskVolumeUnits:         1_000_000,
		QuarterStep:             3,
		ShareHistoryMonths:      12,
		ReconcileToleranceCents: 0,
	}
}

// KPIs are the per-company results of one simulated month
type KPIs struct {
	Month             shared.Month `json:"month"`
	DemandUnits       int64        `json:"demand_units"`
	CapacityUnits     int64        `json:"capacity_units"`
	ProducedUnits     int64        `json:"produced_units"`
	SoldUnits         int64        `json:"sold_units"`
	InventoryUnits    int64        `json:"inventory_units"`
	ASPCents          int64        `json:"asp_cents"`
	UnitCostCents     int64        `json:"unit_cost_cents"`
	RevenueCents      int64        `json:"revenue_cents"`
	COGSCents         int64        `json:"cogs_cents"`
	ContractCostCents int64        `json:"contract_cost_cents"`
	RDCents           int64        `json:"rd_cents"`
	ExpediteCents     int64        `json:"expedite_cents"`
	AdjustmentCents   int64        `json:"adjustment_cents"`
	ProfitCents       int64        `json:"profit_cents"`
	CashCents         int64        `json:"cash_cents"`
	CashDeltaCents    int64        `json:"cash_delta_cents"`
	Share             float64      `json:"share"`
	Released          []string     `json:"released,omitempty"`
}

// Company is one chip maker. Cash lives in the ledger.
type Company struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	AI             bool               `json:"ai"`
	Segments       []string           `json:"segments,omitempty"`
	DebtCents      int64              `json:"debt_cents"`
	ASPCents       int64              `json:"asp_cents"`
	UnitCostCents  int64              `json:"unit_cost_cents"`
	RDBudgetCents  int64              `json:"rd_budget_cents"`
	RDStockCents   int64              `json:"rd_stock_cents"`
	InventoryUnits int64              `json:"inventory_units"`
	DieAreaMM2     float64            `json:"die_area_mm2"`
	PerfIndex      float64            `json:"perf_index"`
	ShareHistory   []float64          `json:"share_history,omitempty"`
	SegmentShare   map[string]float64 `json:"segment_share,omitempty"`
	Last           KPIs               `json:"last"`
	Capacity       capacity.Book      `json:"capacity"`
	Pipeline       pipeline.Pipeline  `json:"pipeline"`
	Ledger         ledger.Ledger      `json:"ledger"`
}

// Cash returns the company's cash balance in cents
func (c *Company) Cash() int64 {
	return c.Ledger.CashCents
}

// Share returns the most recent overall market share
func (c *Company) Share() float64 {
	if len(c.ShareHistory) == 0 {
		return 0
	}
	return c.ShareHistory[len(c.ShareHistory)-1]
}

// AverageShare returns the mean of the recorded share history
func (c *Company) AverageShare() float64 {
	if len(c.ShareHistory) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range c.ShareHistory {
		sum += s
	}
	return sum / float64(len(c.ShareHistory))
}

// SellsIn reports whether the company competes in a segment
func (c *Company) SellsIn(segmentID string) bool {
	if len(c.Segments) == 0 {
		return true
	}
	for _, s := range c.Segments {
		if s == segmentID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy
func (c Company) Clone() Company {
	c.Segments = append([]string(nil), c.Segments...)
	c.ShareHistory = append([]float64(nil), c.ShareHistory...)
	if c.SegmentShare != nil {
		shares := make(map[string]float64, len(c.SegmentShare))
		for k, v := range c.SegmentShare {
			shares[k] = v
		}
		c.SegmentShare = shares
	}
	c.Last.Released = append([]string(nil), c.Last.Released...)
	c.Capacity = c.Capacity.Clone()
	c.Pipeline = c.Pipeline.Clone()
	c.Ledger = c.Ledger.Clone()
	return c
}

// TimelineRow is one month of player history
type TimelineRow struct {
	Month          shared.Month    `json:"month"`
	CompanyID      string          `json:"company_id"`
	KPIs           KPIs            `json:"kpis"`
	CampaignStatus campaign.Status `json:"campaign_status,omitempty"`
	Events         []string        `json:"events,omitempty"`
}

// State is the whole simulated world. It is owned by a single caller at a time and
// mutated only by Advance and the decision functions of this package.
type State struct {
	Version          int                     `json:"version"`
	ScenarioID       string                  `json:"scenario_id"`
	StartMonth       shared.Month            `json:"start_month"`
	Month            shared.Month            `json:"month"`
	PlayerID         string                  `json:"player_id"`
	Rules            Rules                   `json:"rules"`
	Segments         []econ.Segment          `json:"segments"`
	TechNodes        []econ.TechNode         `json:"tech_nodes"`
	Companies        []Company               `json:"companies"`
	Effects          []events.Effect         `json:"effects,omitempty"`
	Gate             events.Gate             `json:"gate"`
	FiredEvents      map[string]shared.Month `json:"fired_events,omitempty"`
	Campaign         *campaign.Campaign      `json:"campaign,omitempty"`
	Tutorial         *campaign.Tutorial      `json:"tutorial,omitempty"`
	WaferPriceFactor float64                 `json:"wafer_price_factor"`
	History          []TimelineRow           `json:"history,omitempty"`
	Seq              int64                   `json:"seq"`
}

// NewState assembles a world and validates its static data. Companies are sorted by id so
// every per-company loop runs in a stable order.
func NewState(scenarioID string, start shared.Month, rules Rules, segments []econ.Segment, nodes []econ.TechNode, companies []Company, playerID string) (*State, error) {
	if err := econ.ValidateCatalog(nodes, segments); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	if len(companies) == 0 {
		return nil, shared.NewValidationError("companies", "at least one company is required")
	}
	if rules.QuarterStep <= 0 {
		return nil, shared.NewValidationError("rules.quarter_step", "must be > 0")
	}

	sorted := append([]Company(nil), companies...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	seen := make(map[string]bool, len(sorted))
	for _, c := range sorted {
		if c.ID == "" || seen[c.ID] {
			return nil, shared.NewValidationError("companies", fmt.Sprintf("duplicate or empty company id %q", c.ID))
		}
		seen[c.ID] = true
		if c.ASPCents <= 0 {
			return nil, shared.NewValidationError("company."+c.ID+".asp_cents", "ASP must be > 0")
		}
	}
	if playerID != "" && !seen[playerID] {
		return nil, shared.NewValidationError("player_id", fmt.Sprintf("unknown player company %q", playerID))
	}

	return &State{
		Version:          SnapshotVersion,
		ScenarioID:       scenarioID,
		StartMonth:       start,
		Month:            start,
		PlayerID:         playerID,
		Rules:            rules,
		Segments:         segments,
		TechNodes:        nodes,
		Companies:        sorted,
		Gate:             events.Gate{Applied: map[string]shared.Month{}},
		FiredEvents:      map[string]shared.Month{},
		WaferPriceFactor: 1,
	}, nil
}

// Company returns the company with the given id
func (s *State) Company(id string) (*Company, error) {
	for i := range s.Companies {
		if s.Companies[i].ID == id {
			return &s.Companies[i], nil
		}
	}
	return nil, fmt.Errorf("company not found: %s", id)
}

// Player returns the player company, if any
func (s *State) Player() (*Company, bool) {
	if s.PlayerID == "" {
		return nil, false
	}
	c, err := s.Company(s.PlayerID)
	return c, err == nil
}

// Segment returns the segment with the given id
func (s *State) Segment(id string) (*econ.Segment, bool) {
	for i := range s.Segments {
		if s.Segments[i].ID == id {
			return &s.Segments[i], true
		}
	}
	return nil, false
}

// TechNode returns the node with the given id
func (s *State) TechNode(id string) (*econ.TechNode, bool) {
	for i := range s.TechNodes {
		if s.TechNodes[i].ID == id {
			return &s.TechNodes[i], true
		}
	}
	return nil, false
}

// AvailableNodes returns the nodes usable for tape-outs in the current year, best perf first
func (s *State) AvailableNodes() []econ.TechNode {
	var out []econ.TechNode
	for _, n := range s.TechNodes {
		if n.AvailableIn(s.Month.Year()) {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PerfIndex != out[j].PerfIndex {
			return out[i].PerfIndex > out[j].PerfIndex
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ElapsedMonths returns the months simulated since the campaign start
func (s *State) ElapsedMonths() int {
	return s.Month.Sub(s.StartMonth)
}

// IsQuarterBoundary reports whether the current month opens a planning quarter
func (s *State) IsQuarterBoundary() bool {
	step := s.Rules.QuarterStep
	if step <= 0 {
		step = 3
	}
	return s.ElapsedMonths()%step == 0
}

// CampaignTerminal reports whether the campaign has finished
func (s *State) CampaignTerminal() bool {
	return s.Campaign != nil && s.Campaign.IsTerminal()
}

// NextID derives a deterministic id; replays of the same state produce the same ids
func (s *State) NextID(kind string) string {
	s.Seq++
	return uuid.NewSHA1(idNamespace, []byte(fmt.Sprintf("%s/%s/%s/%d", s.ScenarioID, kind, s.Month, s.Seq))).String()
}

// Clone returns a deep copy sharing nothing mutable with s
func (s *State) Clone() *State {
	c := *s
	c.Segments = make([]econ.Segment, len(s.Segments))
	for i, seg := range s.Segments {
		c.Segments[i] = seg.Clone()
	}
	c.TechNodes = make([]econ.TechNode, len(s.TechNodes))
	for i, n := range s.TechNodes {
		n.Dependencies = append([]string(nil), n.Dependencies...)
		c.TechNodes[i] = n
	}
	c.Companies = make([]Company, len(s.Companies))
	for i := range s.Companies {
		c.Companies[i] = s.Companies[i].Clone()
	}
	c.Effects = append([]events.Effect(nil), s.Effects...)
	c.Gate = s.Gate.Clone()
	c.FiredEvents = make(map[string]shared.Month, len(s.FiredEvents))
	for k, v := range s.FiredEvents {
		c.FiredEvents[k] = v
	}
	if s.Campaign != nil {
		camp := s.Campaign.Clone()
		c.Campaign = &camp
	}
	c.Tutorial = s.Tutorial.Clone()
	c.History = append([]TimelineRow(nil), s.History...)
	return &c
}
