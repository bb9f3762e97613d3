package simulation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/fabtycoon-go/internal/domain/campaign"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/capacity"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/econ"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/events"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/ledger"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/simulation"
)

var start = shared.NewMonth(1990, 1)

func desktop() econ.Segment {
	return econ.Segment{
		ID:              "desktop",
		Name:            "Desktop",
		Epoch:           start,
		BaseDemandUnits: 1000,
		BaseASPCents:    30_000,
		Elasticity:      -1.2,
		ShockMode:       econ.ShockMultiplicative,
	}
}

func node800() econ.TechNode {
	return econ.TechNode{
		ID:               "N800",
		YearAvailable:    1989,
		WaferCostCents:   200_000,
		MaskSetCostCents: 50_000_000,
		YieldBaseline:    0.8,
		PerfIndex:        1.2,
		LeadTimeMonths:   12,
	}
}

func company(id string, cash int64) simulation.Company {
	return simulation.Company{
		ID:            id,
		Name:          id,
		ASPCents:      30_000,
		UnitCostCents: 20_000,
		DieAreaMM2:    100,
		PerfIndex:     1,
		Capacity:      *capacity.NewBook(2000, 1),
		Ledger:        *ledger.New(id, cash, ledger.Config{}),
	}
}

func newState(t *testing.T, cash int64) *simulation.State {
	t.Helper()
	s, err := simulation.NewState("test", start, simulation.DefaultRules(),
		[]econ.Segment{desktop()}, []econ.TechNode{node800()},
		[]simulation.Company{company("player", cash)}, "player")
	require.NoError(t, err)
	return s
}

func advance(t *testing.T, s *simulation.State, months int) simulation.Report {
	t.Helper()
	r, err := simulation.Advance(context.Background(), s, months, simulation.Options{})
	require.NoError(t, err)
	return r
}

func player(t *testing.T, s *simulation.State) *simulation.Company {
	t.Helper()
	p, ok := s.Player()
	require.True(t, ok)
	return p
}

func TestAdvance_OneMonthBaseline(t *testing.T) {
	// Arrange
	s := newState(t, 10_000_000)

	// Act
	report := advance(t, s, 1)

	// Assert
	p := player(t, s)
	assert.Equal(t, 1, report.Months)
	assert.Equal(t, start.AddMonths(1), s.Month)
	assert.Equal(t, int64(1000), p.Last.SoldUnits)
	assert.Equal(t, int64(30_000_000), p.Last.RevenueCents)
	assert.Equal(t, int64(20_000_000), p.Last.COGSCents)
	assert.Equal(t, int64(10_000_000), p.Last.ProfitCents)
	assert.Equal(t, int64(20_000_000), p.Cash())
	assert.Equal(t, int64(50), p.InventoryUnits, "build-ahead units are carried")
	assert.InDelta(t, 1.0, p.Share(), 1e-9)
	require.Len(t, s.History, 1)
	assert.Equal(t, start, s.History[0].Month)
}

func TestAdvance_InventoryCarriesOver(t *testing.T) {
	s := newState(t, 10_000_000)

	advance(t, s, 2)

	p := player(t, s)
	assert.Equal(t, int64(1000), p.Last.ProducedUnits, "second month only tops up to the buffer")
	assert.Equal(t, int64(1000), p.Last.SoldUnits)
	assert.Equal(t, int64(50), p.InventoryUnits)
}

func TestAdvance_CapacityLimitsSales(t *testing.T) {
	s := newState(t, 10_000_000)
	s.Companies[0].Capacity.BaseUnits = 600

	advance(t, s, 1)

	p := player(t, s)
	assert.Equal(t, int64(600), p.Last.ProducedUnits)
	assert.Equal(t, int64(600), p.Last.SoldUnits)
	assert.Equal(t, int64(0), p.InventoryUnits)
}

func TestAdvance_ZeroLagCashMatchesProfitEveryMonth(t *testing.T) {
	// Arrange: contract, expedited tape-out, R&D and a cash shock all in play
	s := newState(t, 200_000_000)
	s.Companies[0].RDBudgetCents = 500_000
	s.Effects = []events.Effect{{
		ID: "grant", Kind: events.KindCashShock, Target: "player", TriggerAt: start.AddMonths(4),
		Payload: events.Payload{CashCents: 3_000_000},
	}}
	_, err := simulation.ApplyOverride(s, simulation.Override{
		Capacity: &simulation.CapacityRequest{WafersPerMonth: 10},
		Tapeout:  &simulation.TapeoutRequest{TechNodeID: "N800", Expedite: true},
	})
	require.NoError(t, err)

	// Act
	report := advance(t, s, 24)

	// Assert
	assert.False(t, report.HasDrift())
	require.Len(t, s.History, 24)
	for _, row := range s.History {
		k := row.KPIs
		want := k.RevenueCents - k.COGSCents - k.ContractCostCents - k.RDCents - k.ExpediteCents + k.AdjustmentCents
		assert.Equal(t, want, k.CashDeltaCents, "month %s", row.Month)
		assert.Equal(t, want, k.ProfitCents, "month %s", row.Month)
	}
	assert.Equal(t, int64(50_000_000), s.History[0].KPIs.ExpediteCents)
	assert.Equal(t, int64(3_000_000), s.History[4].KPIs.AdjustmentCents)
	require.NoError(t, player(t, s).Ledger.Reconcile(0))
}

func TestAdvance_ExpeditedTapeoutReleasesOnceAtMonthNine(t *testing.T) {
	// Arrange
	s := newState(t, 100_000_000)
	res, err := simulation.ApplyOverride(s, simulation.Override{
		Tapeout: &simulation.TapeoutRequest{TechNodeID: "N800", Expedite: true},
	})
	require.NoError(t, err)
	require.Len(t, res.Applied, 1)

	// Assert: paid at scheduling
	assert.Equal(t, int64(50_000_000), player(t, s).Cash())

	// Act
	advance(t, s, 8)
	assert.Empty(t, player(t, s).Pipeline.Released)

	advance(t, s, 1)
	p := player(t, s)
	require.Len(t, p.Pipeline.Released, 1)
	assert.Equal(t, start.AddMonths(9), p.Pipeline.Released[0].ReleasedAt)
	assert.Empty(t, p.Pipeline.Queue)
	assert.Equal(t, 1.2, p.PerfIndex)
	assert.NotEqual(t, int64(20_000), p.UnitCostCents, "release switches unit cost to the new node")
	assert.Equal(t, int64(47), p.Capacity.UnitsPerWafer)

	advance(t, s, 6)
	assert.Len(t, player(t, s).Pipeline.Released, 1)

	var expedite int64
	for _, row := range s.History {
		expedite += row.KPIs.ExpediteCents
	}
	assert.Equal(t, int64(50_000_000), expedite, "expedite is charged exactly once")
}

func TestAdvance_ContractCapacityWindow(t *testing.T) {
	s := newState(t, 100_000_000)
	s.Companies[0].Capacity.BaseUnits = 0
	top := 0.0
	_, err := simulation.ApplyOverride(s, simulation.Override{
		Capacity: &simulation.CapacityRequest{WafersPerMonth: 1000, PricePerWaferCents: 1, TakeOrPayFrac: &top},
	})
	require.NoError(t, err)

	advance(t, s, 16)

	for i, row := range s.History {
		want := int64(0)
		if i >= 3 && i <= 14 {
			want = 1000
		}
		assert.Equal(t, want, row.KPIs.CapacityUnits, "month %d", i)
	}
	assert.Empty(t, player(t, s).Capacity.Contracts, "expired contract is dropped")
}

func TestAdvance_SegmentShockFiresOnce(t *testing.T) {
	s := newState(t, 10_000_000)
	s.Effects = []events.Effect{{
		ID: "crash", Kind: events.KindSegmentShock, Target: "desktop", TriggerAt: start.AddMonths(1),
		Payload: events.Payload{DemandShock: -0.5, DurationMonths: 2},
	}}

	report := advance(t, s, 4)

	assert.Equal(t, []string{"crash@1990-02"}, report.Fired)
	assert.Equal(t, start.AddMonths(1), s.FiredEvents["crash"])
	demand := []int64{}
	for _, row := range s.History {
		demand = append(demand, row.KPIs.DemandUnits)
	}
	assert.Equal(t, []int64{1000, 500, 500, 1000}, demand)
	seg, _ := s.Segment("desktop")
	assert.Len(t, seg.Events, 1)
}

func TestAdvance_CostShockRaisesLaterContracts(t *testing.T) {
	s := newState(t, 100_000_000)
	s.Effects = []events.Effect{{
		ID: "shortage", Kind: events.KindCostShock, Target: events.AllTargets, TriggerAt: start,
		Payload: events.Payload{CostFactor: 1.2},
	}}
	advance(t, s, 1)

	terms := simulation.ContractTerms(s, simulation.CapacityRequest{WafersPerMonth: 5})

	assert.Equal(t, int64(300_000), terms.PricePerWaferCents)
	assert.Equal(t, "tsmc", terms.FoundryID)
}

func TestAdvance_SplitsDemandBetweenCompanies(t *testing.T) {
	rules := simulation.DefaultRules()
	cheap := company("a-cheap", 10_000_000)
	cheap.ASPCents = 27_000
	pricey := company("b-pricey", 10_000_000)
	s, err := simulation.NewState("duel", start, rules, []econ.Segment{desktop()}, []econ.TechNode{node800()},
		[]simulation.Company{pricey, cheap}, "")
	require.NoError(t, err)

	advance(t, s, 1)

	a, _ := s.Company("a-cheap")
	b, _ := s.Company("b-pricey")
	assert.Greater(t, a.Last.DemandUnits, b.Last.DemandUnits)
	assert.InDelta(t, 1.0, a.Share()+b.Share(), 1e-9)
	assert.Equal(t, "a-cheap", s.Companies[0].ID, "companies run in id order")
	assert.Empty(t, s.History, "no player, no timeline")
}

func TestAdvance_TerminalCampaignFreezes(t *testing.T) {
	// Arrange
	s := newState(t, 10_000_000)
	c, err := campaign.New("test", "normal", start, start.AddMonths(60), []campaign.Goal{
		{Kind: campaign.GoalProfitTarget, ProfitCents: 15_000_000, Deadline: start.AddMonths(24)},
	}, nil)
	require.NoError(t, err)
	s.Campaign = c

	// Act
	report := advance(t, s, 12)

	// Assert
	assert.Equal(t, 2, report.Months)
	assert.True(t, report.CampaignTerminal)
	assert.Equal(t, campaign.StatusSuccess, report.CampaignStatus)
	assert.Equal(t, start.AddMonths(2), s.Month)

	again := advance(t, s, 3)
	assert.Zero(t, again.Months)
	assert.True(t, again.CampaignTerminal)
	assert.Equal(t, start.AddMonths(2), s.Month)

	delta := -0.1
	res, err := simulation.ApplyOverride(s, simulation.Override{PriceDeltaFrac: &delta})
	require.NoError(t, err)
	assert.True(t, res.CampaignTerminal)
	assert.Equal(t, int64(30_000), player(t, s).ASPCents)
}

func TestAdvance_CancelledContextStopsBetweenMonths(t *testing.T) {
	s := newState(t, 10_000_000)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := simulation.Advance(ctx, s, 3, simulation.Options{})

	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, report.Months)
	assert.Equal(t, start, s.Month)
}

type fixedPolicy struct {
	quarterly []string
	monthly   []string
	price     float64
}

func (p *fixedPolicy) MonthlyTactics(s *simulation.State, id string) []simulation.Decision {
	p.monthly = append(p.monthly, s.Month.String())
	return []simulation.Decision{{Kind: simulation.ActionHold}}
}

func (p *fixedPolicy) QuarterlyPlan(_ context.Context, s *simulation.State, id string) ([]simulation.Decision, error) {
	p.quarterly = append(p.quarterly, s.Month.String())
	return []simulation.Decision{{Kind: simulation.ActionPrice, PriceDeltaFrac: p.price}}, nil
}

func TestAdvance_PolicyRunsOnQuarterBoundaries(t *testing.T) {
	ai := company("ai", 10_000_000)
	ai.AI = true
	s, err := simulation.NewState("ai", start, simulation.DefaultRules(), []econ.Segment{desktop()}, []econ.TechNode{node800()},
		[]simulation.Company{ai, company("player", 10_000_000)}, "player")
	require.NoError(t, err)
	policy := &fixedPolicy{price: 0.01}

	report, err := simulation.Advance(context.Background(), s, 6, simulation.Options{Policy: policy})

	require.NoError(t, err)
	assert.Equal(t, []string{"1990-01", "1990-04"}, policy.quarterly)
	assert.Len(t, policy.monthly, 4)
	c, _ := s.Company("ai")
	assert.Equal(t, int64(30_603), c.ASPCents)
	assert.Empty(t, report.Diagnostics)
}

func TestAdvance_RejectedPolicyDecisionIsDiagnosed(t *testing.T) {
	ai := company("ai", 10_000_000)
	ai.AI = true
	s, err := simulation.NewState("ai", start, simulation.DefaultRules(), []econ.Segment{desktop()}, []econ.TechNode{node800()},
		[]simulation.Company{ai}, "")
	require.NoError(t, err)

	report, err := simulation.Advance(context.Background(), s, 1, simulation.Options{Policy: &fixedPolicy{price: -0.5}})

	require.NoError(t, err)
	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, simulation.DiagnosticDecision, report.Diagnostics[0].Kind)
	c, _ := s.Company("ai")
	assert.Equal(t, int64(30_000), c.ASPCents)
}

func TestAdvance_MonthsOutOfRangeRejected(t *testing.T) {
	for _, months := range []int{-1, simulation.MaxMonths + 1} {
		s := newState(t, 1)
		before := s.Month

		_, err := simulation.Advance(context.Background(), s, months, simulation.Options{})

		var verr *shared.ValidationError
		assert.True(t, errors.As(err, &verr), "months=%d", months)
		assert.Equal(t, before, s.Month, "months=%d", months)
	}
}
