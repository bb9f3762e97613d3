package econ_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/fabtycoon-go/internal/domain/econ"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
)

var epoch = shared.NewMonth(1990, 1)

func desktopSegment() econ.Segment {
	return econ.Segment{
		ID:              "desktop",
		Name:            "Desktop CPU",
		Epoch:           epoch,
		BaseDemandUnits: 1000,
		BaseASPCents:    30000,
		Elasticity:      -1.2,
	}
}

func TestDemand_AtReferencePriceEqualsBaseDemand(t *testing.T) {
	seg := desktopSegment()

	units := econ.Demand(&seg, 30000, epoch)

	assert.Equal(t, int64(1000), units)
}

func TestDemand_SlopesDownward(t *testing.T) {
	seg := desktopSegment()
	seg.BaseDemandUnits = 2_000_000

	for _, price := range []int64{0, 1, 500, 10000, 30000, 45000, 1_000_000} {
		for _, eps := range []float64{0.01, 0.05, 0.25} {
			p := max(price, 1)
			higher := int64(float64(p)*(1+eps)) + 1
			assert.Less(t,
				econ.DemandCurve(&seg, higher, epoch),
				econ.DemandCurve(&seg, p, epoch),
				"price %d eps %v", price, eps)
			assert.LessOrEqual(t, econ.Demand(&seg, higher, epoch), econ.Demand(&seg, price, epoch))
		}
	}
}

func TestDemand_CompoundsTrendMonthly(t *testing.T) {
	// Arrange
	seg := desktopSegment()
	seg.BaseDemandUnits = 1_200_000
	seg.AnnualTrend = 0.12

	// Act
	after12 := econ.DemandCurve(&seg, 30000, epoch.AddMonths(12))
	before := econ.DemandCurve(&seg, 30000, epoch.AddMonths(-5))

	// Assert
	assert.InDelta(t, 1_200_000*1.1268250301319698, after12, 1e-3)
	assert.InDelta(t, 1_200_000, before, 1e-9)
}

func TestConditionsAt_StepEventsApplyOnceWhileActive(t *testing.T) {
	seg := desktopSegment()
	seg.Events = []econ.StepEvent{
		{ID: "boom", Start: epoch.AddMonths(2), Months: 3, DemandShock: 0.5, RefPriceShock: -0.1},
	}

	assert.InDelta(t, 1000, seg.ConditionsAt(epoch.AddMonths(1)).BaseDemand, 1e-9)
	for m := 2; m < 5; m++ {
		c := seg.ConditionsAt(epoch.AddMonths(m))
		assert.InDelta(t, 1500, c.BaseDemand, 1e-9, "month %d", m)
		assert.InDelta(t, 27000, c.RefPriceCents, 1e-9, "month %d", m)
	}
	assert.InDelta(t, 1000, seg.ConditionsAt(epoch.AddMonths(5)).BaseDemand, 1e-9)
}

func TestConditionsAt_ShockModes(t *testing.T) {
	events := []econ.StepEvent{
		{ID: "a", Start: epoch, DemandShock: 0.5, ElasticityDelta: 0.2},
		{ID: "b", Start: epoch, DemandShock: 0.5},
	}

	mult := desktopSegment()
	mult.ShockMode = econ.ShockMultiplicative
	mult.Events = events

	add := desktopSegment()
	add.ShockMode = econ.ShockAdditive
	add.Events = events

	assert.InDelta(t, 2250, mult.ConditionsAt(epoch).BaseDemand, 1e-9)
	assert.InDelta(t, 2000, add.ConditionsAt(epoch).BaseDemand, 1e-9)
	assert.InDelta(t, -1.0, add.ConditionsAt(epoch).Elasticity, 1e-9)
}

func TestConditionsAt_ShockCannotDriveDemandNegative(t *testing.T) {
	seg := desktopSegment()
	seg.ShockMode = econ.ShockAdditive
	seg.Events = []econ.StepEvent{{ID: "crash", Start: epoch, DemandShock: -1.5}}

	assert.Equal(t, int64(0), econ.Demand(&seg, 30000, epoch))
}

func TestUnitCost(t *testing.T) {
	// Arrange
	node := &econ.TechNode{
		ID:               "N600",
		YearAvailable:    1990,
		WaferCostCents:   500_000,
		MaskSetCostCents: 10_000_000,
		YieldBaseline:    0.8,
	}

	// Act
	cost, err := econ.UnitCost(node, 100, 100_000, econ.DefaultCostConfig())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(10712), cost)
}

func TestUnitCost_RejectsZeroDieArea(t *testing.T) {
	node := &econ.TechNode{ID: "N600", YieldBaseline: 0.8, WaferCostCents: 1}

	_, err := econ.UnitCost(node, 0, 1000, econ.DefaultCostConfig())

	assert.Error(t, err)
}

func TestMinPrice(t *testing.T) {
	assert.Equal(t, int64(21000), econ.MinPrice(20000, 0.05))
	assert.True(t, econ.RespectsMinMargin(21000, 20000, 0.05))
	assert.False(t, econ.RespectsMinMargin(20999, 20000, 0.05))
}

func TestAttractiveness_CheaperIsMoreAttractive(t *testing.T) {
	cheap := econ.Attractiveness(30000, 25000, 1.5, 0)
	dear := econ.Attractiveness(30000, 35000, 1.5, 0)
	boosted := econ.Attractiveness(30000, 35000, 1.5, 0.2)

	assert.Greater(t, cheap, dear)
	assert.InDelta(t, dear*1.2, boosted, 1e-12)
}

func TestValidateCatalog(t *testing.T) {
	good := []econ.TechNode{
		{ID: "N800", YearAvailable: 1988, YieldBaseline: 0.9},
		{ID: "N600", YearAvailable: 1991, YieldBaseline: 0.8, Dependencies: []string{"N800"}},
	}
	segs := []econ.Segment{desktopSegment()}

	tests := []struct {
		name    string
		nodes   []econ.TechNode
		segs    []econ.Segment
		wantErr string
	}{
		{name: "valid", nodes: good, segs: segs},
		{name: "year out of range", nodes: []econ.TechNode{{ID: "X", YearAvailable: 1969}}, wantErr: "out of supported range"},
		{name: "yield above one", nodes: []econ.TechNode{{ID: "X", YearAvailable: 1990, YieldBaseline: 1.2}}, wantErr: "yield"},
		{name: "negative money", nodes: []econ.TechNode{{ID: "X", YearAvailable: 1990, WaferCostCents: -1}}, wantErr: "negative monetary"},
		{name: "missing dependency", nodes: []econ.TechNode{{ID: "X", YearAvailable: 1990, Dependencies: []string{"Y"}}}, wantErr: "dependency not found: Y"},
		{name: "duplicate node", nodes: []econ.TechNode{good[0], good[0]}, wantErr: "duplicate"},
		{name: "positive elasticity", segs: []econ.Segment{{ID: "s", BaseASPCents: 1, Elasticity: 0.3}}, wantErr: "elasticity must be < 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := econ.ValidateCatalog(tt.nodes, tt.segs)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
