package scheduler_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/fabtycoon-go/internal/application/common"
	"github.com/andrescamacho/fabtycoon-go/internal/application/game"
	gameCommands "github.com/andrescamacho/fabtycoon-go/internal/application/game/commands"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/simulation"
	"github.com/andrescamacho/fabtycoon-go/internal/infrastructure/config"
	"github.com/andrescamacho/fabtycoon-go/internal/infrastructure/scheduler"
	"github.com/andrescamacho/fabtycoon-go/test/helpers"
)

func TestScheduler_AutoPlayAdvancesConfiguredMonths(t *testing.T) {
	// Arrange
	med := helpers.NewMockMediator()
	med.On(&gameCommands.AdvanceMonthsCommand{}, func(r common.Request) (common.Response, error) {
		return &gameCommands.AdvanceMonthsResponse{Report: simulation.Report{Months: r.(*gameCommands.AdvanceMonthsCommand).Months}}, nil
	})
	s := scheduler.NewScheduler(context.Background(), med, nil)
	require.NoError(t, s.RegisterAll(config.ScheduleConfig{AutoPlay: "@every 1h", AutoPlayMonths: 3}))

	// Act
	s.RunAutoPlayNow()

	// Assert
	calls := med.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, 3, calls[0].(*gameCommands.AdvanceMonthsCommand).Months)
	assert.Len(t, s.Cron.Entries(), 1)
}

func TestScheduler_SkipsWhileBusy(t *testing.T) {
	med := helpers.NewMockMediator()
	med.On(&gameCommands.SaveGameCommand{}, func(common.Request) (common.Response, error) {
		return nil, game.ErrTickInProgress
	})
	s := scheduler.NewScheduler(context.Background(), med, nil)

	assert.NotPanics(t, s.RunSaveNow)
	assert.Len(t, med.Calls(), 1)
}

func TestScheduler_EmptyExpressionsDisableJobs(t *testing.T) {
	s := scheduler.NewScheduler(context.Background(), helpers.NewMockMediator(), nil)

	require.NoError(t, s.RegisterAll(config.ScheduleConfig{AutoPlayMonths: 1}))

	assert.Empty(t, s.Cron.Entries())
}

func TestScheduler_RejectsBadExpression(t *testing.T) {
	s := scheduler.NewScheduler(context.Background(), helpers.NewMockMediator(), nil)

	err := s.RegisterAll(config.ScheduleConfig{AutoPlay: "every tuesday", AutoPlayMonths: 1})

	assert.Error(t, err)
}
