package simulation_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/fabtycoon-go/internal/domain/campaign"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/econ"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/events"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/ledger"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/simulation"
)

func busyState(t *testing.T) *simulation.State {
	t.Helper()
	laggy := company("player", 150_000_000)
	laggy.Ledger = *ledger.New("player", 150_000_000, ledger.Config{RevenueLagDays: 45, COGSLagDays: 30})
	laggy.RDBudgetCents = 250_000
	rival := company("rival", 80_000_000)
	rival.ASPCents = 28_500

	s, err := simulation.NewState("busy", start, simulation.DefaultRules(),
		[]econ.Segment{desktop()}, []econ.TechNode{node800()},
		[]simulation.Company{laggy, rival}, "player")
	require.NoError(t, err)

	s.Effects = []events.Effect{
		{ID: "boom", Kind: events.KindSegmentShock, Target: "desktop", TriggerAt: start.AddMonths(2),
			Payload: events.Payload{DemandShock: 0.3, RefPriceShock: 0.1}},
		{ID: "fine", Kind: events.KindCashShock, Target: events.AllTargets, TriggerAt: start.AddMonths(7),
			Payload: events.Payload{CashCents: -1_000_000}},
	}
	c, err := campaign.New("busy", "normal", start, start.AddMonths(120), []campaign.Goal{
		{Kind: campaign.GoalProfitTarget, ProfitCents: 1_000_000_000_000, Deadline: start.AddMonths(100)},
	}, nil)
	require.NoError(t, err)
	s.Campaign = c

	_, err = simulation.ApplyOverride(s, simulation.Override{
		Capacity: &simulation.CapacityRequest{WafersPerMonth: 20},
		Tapeout:  &simulation.TapeoutRequest{TechNodeID: "N800"},
	})
	require.NoError(t, err)
	return s
}

func TestSnapshot_ReplayIsBitIdentical(t *testing.T) {
	// Arrange
	continuous := busyState(t)
	paused := continuous.Clone()

	// Act
	_, err := simulation.Advance(context.Background(), continuous, 18, simulation.Options{})
	require.NoError(t, err)

	_, err = simulation.Advance(context.Background(), paused, 7, simulation.Options{})
	require.NoError(t, err)
	data, err := simulation.Snapshot(paused)
	require.NoError(t, err)
	loaded, err := simulation.Restore(data)
	require.NoError(t, err)
	_, err = simulation.Advance(context.Background(), loaded, 11, simulation.Options{})
	require.NoError(t, err)

	// Assert
	want, err := simulation.Fingerprint(continuous)
	require.NoError(t, err)
	got, err := simulation.Fingerprint(loaded)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Len(t, loaded.History, 18)
}

func TestSnapshot_RestoreRoundTrip(t *testing.T) {
	s := busyState(t)
	_, err := simulation.Advance(context.Background(), s, 3, simulation.Options{})
	require.NoError(t, err)

	data, err := simulation.Snapshot(s)
	require.NoError(t, err)
	loaded, err := simulation.Restore(data)
	require.NoError(t, err)

	want, _ := simulation.Fingerprint(s)
	got, _ := simulation.Fingerprint(loaded)
	assert.Equal(t, want, got)
	assert.True(t, loaded.Gate.IsApplied(s.Effects[0]))
}

func TestSnapshot_EventsDoNotRefireAfterLoad(t *testing.T) {
	s := busyState(t)
	_, err := simulation.Advance(context.Background(), s, 8, simulation.Options{})
	require.NoError(t, err)
	data, err := simulation.Snapshot(s)
	require.NoError(t, err)

	loaded, err := simulation.Restore(data)
	require.NoError(t, err)
	report, err := simulation.Advance(context.Background(), loaded, 4, simulation.Options{})
	require.NoError(t, err)

	assert.Empty(t, report.Fired)
	seg, _ := loaded.Segment("desktop")
	assert.Len(t, seg.Events, 1)
}

func TestSnapshot_RejectsUnknownVersion(t *testing.T) {
	_, err := simulation.Restore([]byte(`{"version": 99}`))
	assert.Error(t, err)

	_, err = simulation.Restore([]byte(`not json`))
	assert.Error(t, err)
}

func TestClone_DoesNotShareMutableState(t *testing.T) {
	s := busyState(t)
	before, err := simulation.Fingerprint(s)
	require.NoError(t, err)

	clone := s.Clone()
	_, err = simulation.Advance(context.Background(), clone, 12, simulation.Options{})
	require.NoError(t, err)

	after, err := simulation.Fingerprint(s)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestLaggedLedgerStillReconciles(t *testing.T) {
	s := busyState(t)

	report, err := simulation.Advance(context.Background(), s, 12, simulation.Options{})

	require.NoError(t, err)
	assert.False(t, report.HasDrift())
	p := player(t, s)
	assert.NotEmpty(t, p.Ledger.Pending, "45-day revenue is still in flight")
	require.NoError(t, p.Ledger.Reconcile(0))
}
