package simulation_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/fabtycoon-go/internal/domain/campaign"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/capacity"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/simulation"
)

func TestApplyDecision_PriceCutRespectsMarginFloor(t *testing.T) {
	// Arrange
	s := newState(t, 10_000_000)

	// Act
	_, err := simulation.ApplyDecision(s, "player", simulation.Decision{Kind: simulation.ActionPrice, PriceDeltaFrac: -0.4})

	// Assert
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInvalidDecision))
	assert.Equal(t, int64(30_000), player(t, s).ASPCents)

	applied, err := simulation.ApplyDecision(s, "player", simulation.Decision{Kind: simulation.ActionPrice, PriceDeltaFrac: -0.3})
	require.NoError(t, err)
	assert.Equal(t, int64(21_000), applied.ASPCents, "cut exactly to the floor is allowed")
}

func TestApplyDecision_PriceRaiseAboveFloorAlwaysAllowed(t *testing.T) {
	s := newState(t, 10_000_000)
	s.Companies[0].UnitCostCents = 40_000

	_, err := simulation.ApplyDecision(s, "player", simulation.Decision{Kind: simulation.ActionPrice, PriceDeltaFrac: 0.05})

	require.NoError(t, err)
	assert.Equal(t, int64(31_500), player(t, s).ASPCents)
}

func TestApplyDecision_TargetPrice(t *testing.T) {
	s := newState(t, 10_000_000)

	_, err := simulation.ApplyDecision(s, "player", simulation.Decision{Kind: simulation.ActionPrice, TargetASPCents: 25_000})

	require.NoError(t, err)
	assert.Equal(t, int64(25_000), player(t, s).ASPCents)
}

func TestApplyDecision_RDCannotGoNegative(t *testing.T) {
	s := newState(t, 10_000_000)
	s.Companies[0].RDBudgetCents = 100

	_, err := simulation.ApplyDecision(s, "player", simulation.Decision{Kind: simulation.ActionRD, RDDeltaCents: -101})

	var derr *shared.InvalidDecisionError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, "rd", derr.Action)
	assert.Equal(t, int64(100), player(t, s).RDBudgetCents)
}

func TestApplyDecision_CapacityNeedsCashForFirstMonth(t *testing.T) {
	s := newState(t, 1_000_000)

	_, err := simulation.ApplyDecision(s, "player", simulation.Decision{
		Kind:     simulation.ActionCapacity,
		Capacity: &simulation.CapacityRequest{WafersPerMonth: 100},
	})

	var cerr *shared.InsufficientCashError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, int64(50*250_000), cerr.Required)
	assert.Empty(t, player(t, s).Capacity.Contracts)
}

func TestApplyDecision_InvalidContractParameters(t *testing.T) {
	s := newState(t, 1_000_000)

	_, err := simulation.ApplyDecision(s, "player", simulation.Decision{
		Kind:     simulation.ActionCapacity,
		Capacity: &simulation.CapacityRequest{WafersPerMonth: 0},
	})

	assert.True(t, errors.Is(err, shared.ErrInvalidContractParameters))
}

func TestApplyDecision_FlatContractCommitsFullVolume(t *testing.T) {
	s := newState(t, 100_000_000)

	applied, err := simulation.ApplyDecision(s, "player", simulation.Decision{
		Kind:     simulation.ActionCapacity,
		Capacity: &simulation.CapacityRequest{WafersPerMonth: 8, Billing: capacity.BillingFlat},
	})

	require.NoError(t, err)
	require.NotNil(t, applied.Contract)
	assert.Equal(t, int64(2_000_000), simulation.FirstMonthCommitment(*applied.Contract))
	assert.Equal(t, start.AddMonths(3), applied.Contract.Start)
	assert.Equal(t, start.AddMonths(15), applied.Contract.End)
}

func TestApplyDecision_TapeoutRules(t *testing.T) {
	tests := []struct {
		name    string
		request simulation.TapeoutRequest
		cash    int64
		target  error
	}{
		{"unknown node", simulation.TapeoutRequest{TechNodeID: "N1"}, 100_000_000, shared.ErrInvalidDecision},
		{"expedite without cash", simulation.TapeoutRequest{TechNodeID: "N800", Expedite: true}, 1_000, shared.ErrInsufficientCash},
		{"bad die area", simulation.TapeoutRequest{TechNodeID: "N800", DieAreaMM2: -1}, 100_000_000, shared.ErrInvalidDecision},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newState(t, tt.cash)

			_, err := simulation.ApplyDecision(s, "player", simulation.Decision{Kind: simulation.ActionTapeout, Tapeout: &tt.request})

			assert.True(t, errors.Is(err, tt.target), "got %v", err)
			assert.Empty(t, player(t, s).Pipeline.Queue)
			assert.Equal(t, tt.cash, player(t, s).Cash())
		})
	}
}

func TestApplyDecision_NodeNotYetAvailable(t *testing.T) {
	s := newState(t, 100_000_000)
	s.TechNodes[0].YearAvailable = 1992

	_, err := simulation.ApplyDecision(s, "player", simulation.Decision{
		Kind:    simulation.ActionTapeout,
		Tapeout: &simulation.TapeoutRequest{TechNodeID: "N800"},
	})

	assert.True(t, errors.Is(err, shared.ErrInvalidDecision))
}

func TestApplyOverride_IsAtomic(t *testing.T) {
	// Arrange
	s := newState(t, 1_000_000)
	cut := -0.1

	// Act
	_, err := simulation.ApplyOverride(s, simulation.Override{
		PriceDeltaFrac: &cut,
		Tapeout:        &simulation.TapeoutRequest{TechNodeID: "N800", Expedite: true},
	})

	// Assert
	assert.True(t, errors.Is(err, shared.ErrInsufficientCash))
	assert.Equal(t, int64(30_000), player(t, s).ASPCents)
	assert.Equal(t, int64(1_000_000), player(t, s).Cash())
}

func TestApplyOverride_EmptyIsRejected(t *testing.T) {
	s := newState(t, 1_000_000)

	_, err := simulation.ApplyOverride(s, simulation.Override{})

	assert.True(t, errors.Is(err, shared.ErrInvalidDecision))
}

func TestApplyOverride_CompletesTutorialSteps(t *testing.T) {
	s := newState(t, 100_000_000)
	s.Tutorial = &campaign.Tutorial{Enabled: true, Steps: []campaign.TutorialStep{
		{ID: campaign.StepPriceCut}, {ID: campaign.StepFoundryContract}, {ID: campaign.StepTapeoutExpedite},
	}}
	cut := -0.05

	_, err := simulation.ApplyOverride(s, simulation.Override{
		PriceDeltaFrac: &cut,
		Capacity:       &simulation.CapacityRequest{WafersPerMonth: 4},
	})
	require.NoError(t, err)

	step, idx, ok := s.Tutorial.Current()
	require.True(t, ok)
	assert.Equal(t, 2, idx)
	assert.Equal(t, campaign.StepTapeoutExpedite, step.ID)
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "price -5.0%", simulation.Decision{Kind: simulation.ActionPrice, PriceDeltaFrac: -0.05}.String())
	assert.Equal(t, "hold", simulation.Decision{}.String())
	assert.Equal(t, "tape-out on N800 (expedite)", simulation.Decision{
		Kind: simulation.ActionTapeout, Tapeout: &simulation.TapeoutRequest{TechNodeID: "N800", Expedite: true},
	}.String())
}
