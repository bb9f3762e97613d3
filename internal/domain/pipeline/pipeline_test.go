package pipeline_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/fabtycoon-go/internal/domain/pipeline"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
)

type fakeWallet struct {
	cash   int64
	debits []int64
}

func (w *fakeWallet) Debit(cents int64, memo string) error {
	if cents > w.cash {
		return shared.NewInsufficientCashError(cents, w.cash)
	}
	w.cash -= cents
	w.debits = append(w.debits, cents)
	return nil
}

var m0 = shared.NewMonth(1990, 1)

func spec() pipeline.ProductSpec {
	return pipeline.ProductSpec{Name: "FT-386", TechNodeID: "N800", PerfIndex: 1.2, DieAreaMM2: 120}
}

func TestSchedule_ExpeditedTapeoutChargedAtSchedulingAndReleasedAtNine(t *testing.T) {
	// Arrange
	p := &pipeline.Pipeline{}
	wallet := &fakeWallet{cash: 10_000_000}
	policy := pipeline.Policy{ExpediteOffsetMonths: 3, ExpediteCostCents: 1_000_000}

	// Act
	req, err := p.Schedule("t-1", spec(), m0, 12, true, policy, wallet)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, m0.AddMonths(9), req.ReadyAt)
	assert.Equal(t, int64(9_000_000), wallet.cash, "expedite is charged immediately")

	for m := 0; m < 9; m++ {
		assert.Empty(t, p.Advance(m0.AddMonths(m)), "month %d", m)
	}
	released := p.Advance(m0.AddMonths(9))
	require.Len(t, released, 1)
	assert.Equal(t, m0.AddMonths(9), released[0].ReleasedAt)
	assert.Equal(t, []int64{1_000_000}, wallet.debits, "release does not charge again")
}

func TestSchedule_InsufficientCashLeavesQueueAndCashUntouched(t *testing.T) {
	p := &pipeline.Pipeline{}
	wallet := &fakeWallet{cash: 999}
	policy := pipeline.Policy{ExpediteOffsetMonths: 3, ExpediteCostCents: 1000}

	_, err := p.Schedule("t-1", spec(), m0, 12, true, policy, wallet)

	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInsufficientCash))
	assert.Empty(t, p.Queue)
	assert.Equal(t, int64(999), wallet.cash)
}

func TestSchedule_WithoutExpediteNeverCharges(t *testing.T) {
	p := &pipeline.Pipeline{}

	req, err := p.Schedule("t-1", spec(), m0, 12, false, pipeline.DefaultPolicy(), nil)

	require.NoError(t, err)
	assert.Equal(t, m0.AddMonths(12), req.ReadyAt)
	assert.Zero(t, req.ExpediteCostCents)
}

func TestSchedule_ReadyNeverBeforeQueued(t *testing.T) {
	p := &pipeline.Pipeline{}
	wallet := &fakeWallet{cash: 1 << 40}

	req, err := p.Schedule("t-1", spec(), m0, 2, true, pipeline.DefaultPolicy(), wallet)

	require.NoError(t, err)
	assert.Equal(t, m0, req.ReadyAt)
}

func TestSchedule_RejectsInvalidSpecAndDuplicates(t *testing.T) {
	p := &pipeline.Pipeline{}

	bad := spec()
	bad.DieAreaMM2 = 0
	_, err := p.Schedule("t-1", bad, m0, 12, false, pipeline.DefaultPolicy(), nil)
	assert.True(t, errors.Is(err, shared.ErrInvalidDecision))

	_, err = p.Schedule("t-1", spec(), m0, 12, false, pipeline.DefaultPolicy(), nil)
	require.NoError(t, err)
	_, err = p.Schedule("t-1", spec(), m0, 12, false, pipeline.DefaultPolicy(), nil)
	assert.True(t, errors.Is(err, shared.ErrInvalidDecision))
	assert.Len(t, p.Queue, 1)
}

func TestAdvance_ReleasesExactlyOnceUnderReplay(t *testing.T) {
	// Arrange
	p := &pipeline.Pipeline{}
	_, err := p.Schedule("t-1", spec(), m0, 4, false, pipeline.DefaultPolicy(), nil)
	require.NoError(t, err)
	ready := m0.AddMonths(4)

	// Act
	first := p.Advance(ready)
	replay := p.Advance(ready)
	later := p.Advance(ready.AddMonths(6))

	// Assert
	assert.Len(t, first, 1)
	assert.Empty(t, replay)
	assert.Empty(t, later)
	assert.Len(t, p.Released, 1)
	assert.Empty(t, p.Queue)
}

func TestAdvance_PastReadyDateStillReleasesOnce(t *testing.T) {
	p := &pipeline.Pipeline{}
	_, _ = p.Schedule("t-1", spec(), m0, 4, false, pipeline.DefaultPolicy(), nil)

	released := p.Advance(m0.AddMonths(10))

	require.Len(t, released, 1)
	assert.Equal(t, m0.AddMonths(10), released[0].ReleasedAt)
}

func TestPerfBoost(t *testing.T) {
	p := &pipeline.Pipeline{}
	assert.Zero(t, p.PerfBoost(1.0, 0.5))

	p.Released = []pipeline.Product{{ID: "a", PerfIndex: 1.2}, {ID: "b", PerfIndex: 1.6}, {ID: "c", PerfIndex: 0.8}}

	assert.InDelta(t, 1.6, p.BestPerf(), 1e-12)
	assert.InDelta(t, 0.3, p.PerfBoost(1.0, 0.5), 1e-12)
	assert.Zero(t, p.PerfBoost(2.0, 0.5))
}

func TestClone_IsIndependent(t *testing.T) {
	p := pipeline.Pipeline{}
	_, _ = p.Schedule("t-1", spec(), m0, 1, false, pipeline.DefaultPolicy(), nil)

	clone := p.Clone()
	clone.Advance(m0.AddMonths(1))

	assert.Len(t, p.Queue, 1)
	assert.Empty(t, p.Released)
	assert.Len(t, clone.Released, 1)
}
