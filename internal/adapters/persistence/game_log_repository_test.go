package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/fabtycoon-go/internal/adapters/persistence"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
	"github.com/andrescamacho/fabtycoon-go/test/helpers"
)

func TestGameLogRepository_DeduplicatesWithinWindow(t *testing.T) {
	// Arrange
	clock := shared.NewMockClock(epoch)
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormGameLogRepository(db, clock)
	ctx := context.Background()

	// Act
	require.NoError(t, repo.Log(ctx, "daemon", "classic_1990", "ledger drift", "WARNING", nil))
	clock.Advance(30 * time.Second)
	require.NoError(t, repo.Log(ctx, "daemon", "classic_1990", "ledger drift", "WARNING", nil))
	clock.Advance(31 * time.Second)
	require.NoError(t, repo.Log(ctx, "daemon", "classic_1990", "ledger drift", "WARNING", map[string]interface{}{"month": "1990-04"}))

	// Assert
	logs, err := repo.GetLogs(ctx, "daemon", 10, 0, nil, nil)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, int64(2), helpers.CountRows(t, db, &persistence.GameLogModel{}))
	assert.Equal(t, "1990-04", logs[0].Metadata["month"])
	assert.Nil(t, logs[1].Metadata)
}

func TestGameLogRepository_FiltersByLevelAndSource(t *testing.T) {
	repo := persistence.NewGormGameLogRepository(helpers.NewTestDB(t), shared.NewMockClock(epoch))
	ctx := context.Background()
	require.NoError(t, repo.Log(ctx, "daemon", "", "tick", "INFO", nil))
	require.NoError(t, repo.Log(ctx, "daemon", "", "autosave failed", "ERROR", nil))
	require.NoError(t, repo.Log(ctx, "scheduler", "", "auto-play", "INFO", nil))

	level := "ERROR"
	logs, err := repo.GetLogs(ctx, "daemon", 0, 0, &level, nil)

	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "autosave failed", logs[0].Message)
}
