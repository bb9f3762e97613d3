package planner_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/fabtycoon-go/internal/domain/capacity"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/econ"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/ledger"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/planner"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/simulation"
)

var start = shared.NewMonth(1990, 1)

func world(t *testing.T, mutate func(ai *simulation.Company)) *simulation.State {
	t.Helper()
	seg := econ.Segment{ID: "desktop", Name: "Desktop", Epoch: start, BaseDemandUnits: 1000, BaseASPCents: 30_000, Elasticity: -1.2}
	nodes := []econ.TechNode{
		{ID: "N800", YearAvailable: 1988, WaferCostCents: 200_000, MaskSetCostCents: 50_000_000, YieldBaseline: 0.8, PerfIndex: 1.0, LeadTimeMonths: 12},
		{ID: "N600", YearAvailable: 1990, WaferCostCents: 300_000, MaskSetCostCents: 80_000_000, YieldBaseline: 0.7, PerfIndex: 1.4, LeadTimeMonths: 12},
	}
	newCompany := func(id string) simulation.Company {
		return simulation.Company{
			ID: id, Name: id, ASPCents: 30_000, UnitCostCents: 20_000, DieAreaMM2: 100, PerfIndex: 1,
			Capacity: *capacity.NewBook(2000, 1),
			Ledger:   *ledger.New(id, 100_000_000, ledger.Config{}),
		}
	}
	ai := newCompany("ai")
	ai.AI = true
	if mutate != nil {
		mutate(&ai)
	}
	s, err := simulation.NewState("plan", start, simulation.DefaultRules(), []econ.Segment{seg}, nodes,
		[]simulation.Company{ai, newCompany("player")}, "player")
	require.NoError(t, err)
	return s
}

func smallConfig() planner.Config {
	cfg := planner.DefaultConfig()
	cfg.Months = 6
	cfg.BeamWidth = 2
	return cfg
}

func TestUtility_MonotonicAndBounded(t *testing.T) {
	w := planner.DefaultWeights()
	base := planner.Metrics{Share: 0.2, Margin: 0.2, LiquidityK: 0.5, Portfolio: 0.3}

	upShare := base
	upShare.Share = 0.3
	upMargin := base
	upMargin.Margin = 0.3

	assert.GreaterOrEqual(t, planner.Utility(upShare, w), planner.Utility(base, w))
	assert.GreaterOrEqual(t, planner.Utility(upMargin, w), planner.Utility(base, w))
	assert.Equal(t, planner.Utility(base, w), planner.Utility(base, w))

	maxed := planner.Metrics{Share: 9, Margin: 9, LiquidityK: 1e12, Portfolio: 9}
	assert.InDelta(t, 1.0, planner.Utility(maxed, w), 1e-12)
	assert.Zero(t, planner.Utility(planner.Metrics{Share: math.NaN(), Margin: -1}, w))
}

func TestWeights_NormalizeIgnoresInvalid(t *testing.T) {
	w := planner.Weights{Share: 2, Margin: math.NaN(), Liquidity: -1, Portfolio: 2}.Normalized()

	assert.InDelta(t, 0.5, w.Share, 1e-12)
	assert.Zero(t, w.Margin)
	assert.Zero(t, w.Liquidity)
	assert.InDelta(t, 0.5, w.Portfolio, 1e-12)
	assert.Equal(t, planner.Weights{}, planner.Weights{}.Normalized())
}

func TestDecideTactics_ShareDropCutIsClampedToFloor(t *testing.T) {
	cfg := planner.DefaultTactics()
	cfg.PriceEpsilonFrac = 0.1

	delta, rd := planner.DecideTactics(planner.TacticInputs{
		PrevShare: 0.3, Share: 0.2, DemandSupplyRatio: 1, LiquidityK: 10,
		ASPCents: 22_000, UnitCostCents: 20_000,
	}, cfg)

	assert.Less(t, delta, 0.0)
	assert.InDelta(t, 21_000.0/22_000.0-1, delta, 1e-12)
	assert.GreaterOrEqual(t, 22_000*(1+delta), 21_000.0-1e-6)
	assert.Equal(t, cfg.RDBoostFrac, rd)
}

func TestDecideTactics_ShortageRaisesPrice(t *testing.T) {
	delta, _ := planner.DecideTactics(planner.TacticInputs{
		PrevShare: 0.3, Share: 0.3, DemandSupplyRatio: 1.5, LiquidityK: 10,
		ASPCents: 30_000, UnitCostCents: 20_000,
	}, planner.DefaultTactics())

	assert.InDelta(t, 0.02, delta, 1e-12)
}

func TestDecideTactics_LowLiquidityCutsRD(t *testing.T) {
	_, rd := planner.DecideTactics(planner.TacticInputs{LiquidityK: 0.1, ASPCents: 30_000}, planner.DefaultTactics())

	assert.Equal(t, -0.01, rd)
}

func TestCandidates_GuardsAndTriggers(t *testing.T) {
	// Arrange: tight margin and a shortage
	s := world(t, func(ai *simulation.Company) {
		ai.UnitCostCents = 28_000
		ai.Capacity.BaseUnits = 100
	})

	// Act
	cands := planner.Candidates(s, "ai", planner.DefaultConfig())

	// Assert
	var kinds []simulation.ActionKind
	for _, d := range cands {
		kinds = append(kinds, d.Kind)
		if d.Kind == simulation.ActionPrice {
			assert.Equal(t, int64(29_400), d.TargetASPCents, "cut is clamped to the floor")
		}
	}
	assert.Equal(t, []simulation.ActionKind{
		simulation.ActionHold, simulation.ActionPrice, simulation.ActionCapacity, simulation.ActionRD,
		simulation.ActionTapeout, simulation.ActionTapeout,
	}, kinds, "no raise below 20% share")
}

func TestCandidates_NoCapacityWithoutShortage(t *testing.T) {
	s := world(t, nil)

	for _, d := range planner.Candidates(s, "ai", planner.DefaultConfig()) {
		assert.NotEqual(t, simulation.ActionCapacity, d.Kind)
	}
}

func TestCandidates_NoCutAtTheFloor(t *testing.T) {
	s := world(t, func(ai *simulation.Company) { ai.UnitCostCents = 28_572 })

	for _, d := range planner.Candidates(s, "ai", planner.DefaultConfig()) {
		assert.NotEqual(t, simulation.ActionPrice, d.Kind)
	}
}

func TestPlanQuarter_NeverBreachesMinimumMargin(t *testing.T) {
	// Arrange
	s := world(t, func(ai *simulation.Company) { ai.UnitCostCents = 28_000 })
	cfg := smallConfig()

	// Act
	plan, err := planner.PlanQuarter(context.Background(), s, "ai", cfg)

	// Assert
	require.NoError(t, err)
	require.Len(t, plan.Decisions, 1)
	require.Len(t, plan.Path, cfg.DecisionPoints())

	floor := econ.MinPrice(28_000, cfg.Tactics.MinMarginFrac)
	for _, d := range plan.Path {
		if d.Kind == simulation.ActionPrice && d.TargetASPCents > 0 {
			assert.GreaterOrEqual(t, d.TargetASPCents, floor)
		}
	}

	replay := s.Clone()
	_, err = simulation.ApplyDecision(replay, "ai", plan.Decisions[0])
	require.NoError(t, err)
	c, _ := replay.Company("ai")
	assert.GreaterOrEqual(t, c.ASPCents, floor)
}

func TestPlanQuarter_DeterministicAcrossParallelism(t *testing.T) {
	s := world(t, nil)
	serial := smallConfig()
	serial.Parallelism = 1
	wide := smallConfig()
	wide.Parallelism = 16

	a, err := planner.PlanQuarter(context.Background(), s, "ai", serial)
	require.NoError(t, err)
	b, err := planner.PlanQuarter(context.Background(), s, "ai", wide)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Greater(t, a.Evaluated, 0)
}

func TestPlanQuarter_DoesNotTouchLiveState(t *testing.T) {
	s := world(t, nil)
	before, err := simulation.Fingerprint(s)
	require.NoError(t, err)

	_, err = planner.PlanQuarter(context.Background(), s, "ai", smallConfig())
	require.NoError(t, err)

	after, err := simulation.Fingerprint(s)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestPlanQuarter_RejectsBadInput(t *testing.T) {
	s := world(t, nil)

	_, err := planner.PlanQuarter(context.Background(), s, "ghost", smallConfig())
	assert.Error(t, err)

	cfg := smallConfig()
	cfg.BeamWidth = 0
	_, err = planner.PlanQuarter(context.Background(), s, "ai", cfg)
	assert.Error(t, err)
}

func TestPolicy_DrivesAICompanies(t *testing.T) {
	s := world(t, nil)
	policy := planner.NewPolicy(smallConfig())

	report, err := simulation.Advance(context.Background(), s, 6, simulation.Options{Policy: policy})

	require.NoError(t, err)
	assert.Equal(t, 6, report.Months)
	for _, d := range report.Diagnostics {
		assert.NotEqual(t, simulation.DiagnosticPlanner, d.Kind, d.Message)
	}
}
