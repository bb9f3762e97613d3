package simulation

import (
	"context"
	"fmt"
	"math"

	"github.com/andrescamacho/fabtycoon-go/internal/domain/campaign"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/capacity"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/econ"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/events"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/ledger"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/pipeline"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
)

// AIPolicy drives the computer-controlled companies. QuarterlyPlan is called on quarter
// boundaries, MonthlyTactics on every other month. Implementations must not mutate s.
type AIPolicy interface {
	MonthlyTactics(s *State, companyID string) []Decision
	QuarterlyPlan(ctx context.Context, s *State, companyID string) ([]Decision, error)
}

// MaxMonths bounds a single Advance call
const MaxMonths = 1200

// Options configure one Advance call
type Options struct {
	// Policy plays the AI companies; nil leaves them on their current settings
	Policy AIPolicy
}

// Advance simulates up to months months, mutating s in place. Callers that need the
// original state afterwards pass s.Clone().
//
// Each month is atomic. The context is only checked between months. Once the campaign
// reaches a terminal status Advance stops and every later call is a no-op reporting
// CampaignTerminal.
func Advance(ctx context.Context, s *State, months int, opts Options) (Report, error) {
	report := Report{StartMonth: s.Month, EndMonth: s.Month}
	if months < 0 || months > MaxMonths {
		return report, shared.NewValidationError("months", fmt.Sprintf("must be within [0, %d]", MaxMonths))
	}

	for i := 0; i < months; i++ {
		if s.CampaignTerminal() {
			break
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := step(ctx, s, opts, &report); err != nil {
			return report, fmt.Errorf("failed to simulate %s: %w", s.Month, err)
		}
		report.Months++
		report.EndMonth = s.Month
	}

	report.CampaignTerminal = s.CampaignTerminal()
	if s.Campaign != nil {
		report.CampaignStatus = s.Campaign.Status
	}
	return report, nil
}

// segmentDemand is the demand of one company in one segment
type segmentDemand struct {
	segmentID string
	units     int64
}

type market struct {
	// per company, in segment order
	demand [][]segmentDemand
	// per segment id, demand left to the residual market
	residual map[string]int64
}

func step(ctx context.Context, s *State, opts Options, report *Report) error {
	m := s.Month

	fired, err := s.Gate.Resolve(s.Effects, m, s.applyEffect)
	if err != nil {
		report.diagnose(m, "", DiagnosticEvent, err.Error())
	}
	var firedIDs []string
	for _, e := range fired {
		s.FiredEvents[e.ID] = m
		firedIDs = append(firedIDs, e.ID)
		report.Fired = append(report.Fired, e.Key())
	}

	if opts.Policy != nil {
		runPolicy(ctx, s, opts.Policy, report)
	}

	mk := splitDemand(s, m)
	var sold [][]segmentDemand
	for i := range s.Companies {
		c := &s.Companies[i]
		alloc, err := tickCompany(s, c, mk.demand[i], m, report)
		if err != nil {
			return fmt.Errorf("company %s: %w", c.ID, err)
		}
		sold = append(sold, alloc)
	}

	updateShares(s, sold, mk.residual)

	s.Month = m.AddMonths(1)
	for i := range s.Companies {
		s.Companies[i].Last.Share = s.Companies[i].Share()
	}

	player, ok := s.Player()
	if !ok {
		return nil
	}
	if s.Campaign != nil {
		s.Campaign.Evaluate(observe(s, player))
	}
	s.Tutorial.ObserveCash(s.StartMonth, s.Month, player.Cash())

	row := TimelineRow{Month: m, CompanyID: player.ID, KPIs: player.Last, Events: firedIDs}
	row.KPIs.Released = append([]string(nil), player.Last.Released...)
	if s.Campaign != nil {
		row.CampaignStatus = s.Campaign.Status
	}
	s.History = append(s.History, row)
	return nil
}

func runPolicy(ctx context.Context, s *State, policy AIPolicy, report *Report) {
	quarter := s.IsQuarterBoundary()
	for i := range s.Companies {
		if !s.Companies[i].AI {
			continue
		}
		id := s.Companies[i].ID

		var decisions []Decision
		if quarter {
			planned, err := policy.QuarterlyPlan(ctx, s, id)
			if err != nil {
				report.diagnose(s.Month, id, DiagnosticPlanner, err.Error())
				continue
			}
			decisions = planned
		} else {
			decisions = policy.MonthlyTactics(s, id)
		}

		for _, d := range decisions {
			if _, err := ApplyDecision(s, id, d); err != nil {
				report.diagnose(s.Month, id, DiagnosticDecision, fmt.Sprintf("%s rejected: %v", d, err))
			}
		}
	}
}

// AttractivenessBoost is the perf uplift a company gets from its released products and
// accumulated R&D
func AttractivenessBoost(s *State, c *Company) float64 {
	boost := c.Pipeline.PerfBoost(s.Rules.BaselinePerf, s.Rules.PerfBoostWeight)
	if s.Rules.RDBoostWeight > 0 && s.Rules.RDScaleCents > 0 && c.RDStockCents > 0 {
		boost += s.Rules.RDBoostWeight * math.Log1p(float64(c.RDStockCents)/float64(s.Rules.RDScaleCents))
	}
	return boost
}

// splitDemand divides each segment between the companies selling in it, weighted by
// attractiveness. Each company sees the curve demand at its own price.
func splitDemand(s *State, m shared.Month) market {
	mk := market{
		demand:   make([][]segmentDemand, len(s.Companies)),
		residual: make(map[string]int64, len(s.Segments)),
	}

	boosts := make([]float64, len(s.Companies))
	for i := range s.Companies {
		boosts[i] = AttractivenessBoost(s, &s.Companies[i])
	}

	for si := range s.Segments {
		seg := &s.Segments[si]
		ref := econ.RefPrice(seg, m)

		attr := make([]float64, len(s.Companies))
		total := math.Max(s.Rules.ResidualAttractiveness, 0)
		for i := range s.Companies {
			c := &s.Companies[i]
			if !c.SellsIn(seg.ID) {
				continue
			}
			attr[i] = econ.Attractiveness(ref, c.ASPCents, s.Rules.AttractivenessBeta, boosts[i])
			total += attr[i]
		}
		if total <= 0 {
			continue
		}

		for i := range s.Companies {
			if attr[i] == 0 {
				continue
			}
			curve := econ.Demand(seg, s.Companies[i].ASPCents, m)
			units := int64(math.Floor(float64(curve)*(attr[i]/total) + 1e-9))
			mk.demand[i] = append(mk.demand[i], segmentDemand{segmentID: seg.ID, units: units})
		}
		if s.Rules.ResidualAttractiveness > 0 {
			curve := econ.Demand(seg, ref, m)
			mk.residual[seg.ID] = int64(math.Floor(float64(curve) * (s.Rules.ResidualAttractiveness / total)))
		}
	}
	return mk
}

// ProductionTarget is the number of units a company tries to build: demand plus a
// build-ahead buffer, less the inventory already on hand
func ProductionTarget(demand, inventory int64, buildAheadFrac float64) int64 {
	target := int64(math.Ceil(float64(demand)*(1+math.Max(buildAheadFrac, 0))-1e-9)) - inventory
	if target < 0 {
		return 0
	}
	return target
}

func tickCompany(s *State, c *Company, demand []segmentDemand, m shared.Month, report *Report) ([]segmentDemand, error) {
	var totalDemand int64
	for _, d := range demand {
		totalDemand += d.units
	}

	for _, expired := range c.Capacity.Expire(m) {
		report.diagnose(m, c.ID, DiagnosticInfo, fmt.Sprintf("contract %s with %s expired", expired.ID, expired.FoundryID))
	}
	capUnits := c.Capacity.Available(m)

	produced := min(capUnits, ProductionTarget(totalDemand, c.InventoryUnits, s.Rules.BuildAheadFrac))
	onHand := produced + c.InventoryUnits
	sold := min(onHand, totalDemand)
	c.InventoryUnits = onHand - sold

	revenue := sold * c.ASPCents
	cogs := sold * c.UnitCostCents
	charges := c.Capacity.Bill(m, produced)
	contractCost := capacity.TotalCents(charges)
	rd := c.RDBudgetCents

	var released []string
	for _, p := range c.Pipeline.Advance(m.AddMonths(1)) {
		if err := adoptProduct(s, c, p); err != nil {
			report.diagnose(m, c.ID, DiagnosticRelease, err.Error())
		}
		released = append(released, p.ID)
		report.Released = append(report.Released, p.ID)
	}

	res, err := c.Ledger.ApplyMonth(ledger.Accruals{
		RevenueCents:      revenue,
		COGSCents:         cogs,
		ContractCostCents: contractCost,
		RDCents:           rd,
	}, m)
	if err != nil {
		return nil, err
	}
	if err := c.Ledger.Reconcile(s.Rules.ReconcileToleranceCents); err != nil {
		report.diagnose(m, c.ID, DiagnosticDrift, err.Error())
	}
	c.RDStockCents += rd

	c.Last = KPIs{
		Month:             m,
		DemandUnits:       totalDemand,
		CapacityUnits:     capUnits,
		ProducedUnits:     produced,
		SoldUnits:         sold,
		InventoryUnits:    c.InventoryUnits,
		ASPCents:          c.ASPCents,
		UnitCostCents:     c.UnitCostCents,
		RevenueCents:      res.Accruals.RevenueCents,
		COGSCents:         res.Accruals.COGSCents,
		ContractCostCents: res.Accruals.ContractCostCents,
		RDCents:           res.Accruals.RDCents,
		ExpediteCents:     res.Accruals.ExpediteCents,
		AdjustmentCents:   res.Accruals.AdjustmentCents,
		ProfitCents:       res.Accruals.Profit(),
		CashCents:         res.ClosingCash,
		CashDeltaCents:    res.CashDelta,
		Released:          released,
	}

	return allocateSales(demand, sold, totalDemand), nil
}

// adoptProduct switches production to a released product: unit cost, die size and the
// units each contracted wafer yields follow the new design
func adoptProduct(s *State, c *Company, p pipeline.Product) error {
	node, ok := s.TechNode(p.TechNodeID)
	if !ok {
		return fmt.Errorf("released product %s uses unknown node %s", p.ID, p.TechNodeID)
	}
	cost, err := econ.UnitCost(node, p.DieAreaMM2, s.Rules.MaskVolumeUnits, s.Rules.Cost)
	if err != nil {
		return fmt.Errorf("failed to cost product %s: %w", p.ID, err)
	}
	good, err := econ.GoodDiesPerWafer(node, p.DieAreaMM2, s.Rules.Cost)
	if err != nil {
		return fmt.Errorf("failed to size product %s: %w", p.ID, err)
	}

	c.UnitCostCents = cost
	c.DieAreaMM2 = p.DieAreaMM2
	c.PerfIndex = math.Max(c.PerfIndex, p.PerfIndex)
	if upw := int64(good); upw > 0 {
		c.Capacity.UnitsPerWafer = upw
	}
	return nil
}

// allocateSales spreads sold units over segments in proportion to their demand.
// Rounding leftovers go to the earliest segments that still have unmet demand.
func allocateSales(demand []segmentDemand, sold, totalDemand int64) []segmentDemand {
	out := make([]segmentDemand, len(demand))
	if totalDemand == 0 {
		for i, d := range demand {
			out[i] = segmentDemand{segmentID: d.segmentID}
		}
		return out
	}

	left := sold
	for i, d := range demand {
		units := d.units * sold / totalDemand
		out[i] = segmentDemand{segmentID: d.segmentID, units: units}
		left -= units
	}
	for i := 0; left > 0 && i < len(out); i++ {
		if out[i].units < demand[i].units {
			out[i].units++
			left--
		}
	}
	return out
}

func updateShares(s *State, sold [][]segmentDemand, residual map[string]int64) {
	totals := make(map[string]int64, len(s.Segments))
	for seg, units := range residual {
		totals[seg] += units
	}
	for _, alloc := range sold {
		for _, d := range alloc {
			totals[d.segmentID] += d.units
		}
	}
	var marketTotal int64
	for _, units := range totals {
		marketTotal += units
	}

	limit := s.Rules.ShareHistoryMonths
	for i := range s.Companies {
		c := &s.Companies[i]
		c.SegmentShare = make(map[string]float64, len(sold[i]))
		var total int64
		for _, d := range sold[i] {
			total += d.units
			if totals[d.segmentID] > 0 {
				c.SegmentShare[d.segmentID] = float64(d.units) / float64(totals[d.segmentID])
			}
		}

		share := 0.0
		if marketTotal > 0 {
			share = float64(total) / float64(marketTotal)
		}
		c.ShareHistory = append(c.ShareHistory, share)
		if limit > 0 && len(c.ShareHistory) > limit {
			c.ShareHistory = append([]float64(nil), c.ShareHistory[len(c.ShareHistory)-limit:]...)
		}
	}
}

func observe(s *State, c *Company) campaign.Observation {
	released := make(map[string]bool, len(c.Pipeline.Released))
	for _, p := range c.Pipeline.Released {
		released[p.TechNodeID] = true
	}
	return campaign.Observation{
		Month:         s.Month,
		CashCents:     c.Cash(),
		ProfitCents:   c.Ledger.ProfitCents,
		Share:         c.SegmentShare,
		ReleasedNodes: released,
		FiredEvents:   s.FiredEvents,
	}
}

// applyEffect is the single place where scheduled effects touch the world. Targets that
// match nothing are ignored.
func (s *State) applyEffect(e events.Effect) error {
	switch e.Kind {
	case events.KindSegmentShock:
		for i := range s.Segments {
			seg := &s.Segments[i]
			if e.Target != events.AllTargets && e.Target != seg.ID {
				continue
			}
			if seg.HasEvent(e.Key()) {
				continue
			}
			seg.Events = append(seg.Events, econ.StepEvent{
				ID:              e.Key(),
				Start:           s.Month,
				Months:          e.Payload.DurationMonths,
				DemandShock:     e.Payload.DemandShock,
				RefPriceShock:   e.Payload.RefPriceShock,
				ElasticityDelta: e.Payload.ElasticityDelta,
			})
		}
	case events.KindCashShock:
		for i := range s.Companies {
			c := &s.Companies[i]
			if e.Target != events.AllTargets && e.Target != c.ID {
				continue
			}
			memo := e.Name
			if memo == "" {
				memo = e.ID
			}
			if err := c.Ledger.Adjust(e.Payload.CashCents, s.Month, memo); err != nil {
				return err
			}
		}
	case events.KindNodeDelay:
		for i := range s.TechNodes {
			if e.Target == events.AllTargets || e.Target == s.TechNodes[i].ID {
				s.TechNodes[i].YearAvailable += e.Payload.DelayYears
			}
		}
	case events.KindCostShock:
		if s.WaferPriceFactor <= 0 {
			s.WaferPriceFactor = 1
		}
		s.WaferPriceFactor *= e.Payload.CostFactor
	default:
		return fmt.Errorf("unknown effect kind %q", e.Kind)
	}
	return nil
}

// ExpectedDemand returns the units a company would be offered this month at its current
// price, before capacity limits
func ExpectedDemand(s *State, companyID string) int64 {
	idx := -1
	for i := range s.Companies {
		if s.Companies[i].ID == companyID {
			idx = i
		}
	}
	if idx < 0 {
		return 0
	}
	var total int64
	for _, d := range splitDemand(s, s.Month).demand[idx] {
		total += d.units
	}
	return total
}
