package game_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/fabtycoon-go/internal/application/game"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/planner"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/simulation"
	"github.com/andrescamacho/fabtycoon-go/test/helpers"
)

func startedSession(t *testing.T) *game.Session {
	t.Helper()
	setup, err := helpers.LoadPack(t).Build("classic_1990", "")
	require.NoError(t, err)
	s := game.NewSession()
	require.NoError(t, s.Start(setup.State, helpers.FastPlanner(setup.Planner)))
	return s
}

func TestSession_EmptyUntilStarted(t *testing.T) {
	s := game.NewSession()

	_, err := s.View()
	assert.ErrorIs(t, err, game.ErrNoGame)
	_, err = s.PlannerConfig()
	assert.ErrorIs(t, err, game.ErrNoGame)
	err = s.Mutate(context.Background(), func(context.Context, *simulation.State, *planner.Policy) error { return nil })
	assert.ErrorIs(t, err, game.ErrNoGame)
}

func TestSession_SecondMutationFailsFastWhileBusy(t *testing.T) {
	// Arrange
	s := startedSession(t)
	var inner error
	var busy bool
	var viewMonth string

	// Act
	err := s.Mutate(context.Background(), func(ctx context.Context, st *simulation.State, _ *planner.Policy) error {
		busy = s.Busy()
		inner = s.Mutate(ctx, func(context.Context, *simulation.State, *planner.Policy) error { return nil })
		view, err := s.View()
		if err != nil {
			return err
		}
		viewMonth = view.Month.String()
		return nil
	})

	// Assert
	require.NoError(t, err)
	assert.True(t, busy)
	assert.ErrorIs(t, inner, game.ErrTickInProgress)
	assert.Equal(t, "1990-01", viewMonth, "reads are served while a tick runs")
	assert.False(t, s.Busy())
}

func TestSession_ViewIsRepublishedAfterMutation(t *testing.T) {
	// Arrange
	s := startedSession(t)
	before, err := s.View()
	require.NoError(t, err)

	// Act
	err = s.Mutate(context.Background(), func(ctx context.Context, st *simulation.State, policy *planner.Policy) error {
		_, err := simulation.Advance(ctx, st, 2, simulation.Options{Policy: policy})
		return err
	})

	// Assert
	require.NoError(t, err)
	after, err := s.View()
	require.NoError(t, err)
	assert.Equal(t, "1990-01", before.Month.String(), "published views are never mutated")
	assert.Equal(t, "1990-03", after.Month.String())
}
