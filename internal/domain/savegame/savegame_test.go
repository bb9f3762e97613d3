package savegame_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/fabtycoon-go/internal/domain/capacity"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/econ"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/ledger"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/savegame"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/simulation"
)

func state(t *testing.T) *simulation.State {
	t.Helper()
	start := shared.NewMonth(1990, 1)
	seg := econ.Segment{ID: "desktop", Name: "Desktop", Epoch: start, BaseDemandUnits: 1000, BaseASPCents: 30_000, Elasticity: -1.2}
	player := simulation.Company{
		ID: "player", Name: "Player", ASPCents: 30_000, UnitCostCents: 20_000,
		Capacity: *capacity.NewBook(2000, 1),
		Ledger:   *ledger.New("player", 50_000_000, ledger.Config{}),
	}
	s, err := simulation.NewState("classic_1990", start, simulation.DefaultRules(), []econ.Segment{seg}, nil,
		[]simulation.Company{player}, "player")
	require.NoError(t, err)
	return s
}

func TestNew_ManualSaveIsDone(t *testing.T) {
	// Arrange
	clock := shared.NewMockClock(time.Time{})
	s := state(t)

	// Act
	save, err := savegame.New("before the crash", s, clock)

	// Assert
	require.NoError(t, err)
	assert.Regexp(t, `^before-the-crash-[0-9a-f]{8}$`, save.ID)
	assert.Equal(t, savegame.StatusDone, save.Status)
	assert.Equal(t, clock.Now(), save.CreatedAt)
	assert.Equal(t, "classic_1990", save.ScenarioID)
	assert.NotEmpty(t, save.Fingerprint)
	assert.NotEmpty(t, save.Snapshot)
}

func TestNew_AutosaveStartsInProgress(t *testing.T) {
	s := state(t)

	save, err := savegame.New(savegame.AutosaveName(s.Month), s, nil)

	require.NoError(t, err)
	assert.Equal(t, "auto-199001", save.Name)
	assert.Equal(t, savegame.StatusInProgress, save.Status)
	save.MarkDone()
	assert.Equal(t, savegame.StatusDone, save.Status)
}

func TestNew_RejectsEmptyName(t *testing.T) {
	_, err := savegame.New("  ", state(t), nil)

	var verr *shared.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestRestore_DetectsCorruption(t *testing.T) {
	s := state(t)
	save, err := savegame.New("x", s, nil)
	require.NoError(t, err)

	restored, err := save.Restore()
	require.NoError(t, err)
	assert.Equal(t, s.Month, restored.Month)

	save.Fingerprint = "deadbeef"
	_, err = save.Restore()
	assert.ErrorContains(t, err, "fingerprint mismatch")
}

func TestExpired_KeepsNewestAutosaves(t *testing.T) {
	// Arrange
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var saves []*savegame.Save
	for i := 0; i < 8; i++ {
		saves = append(saves, &savegame.Save{
			ID:        string(rune('a' + i)),
			Name:      savegame.AutosaveName(shared.NewMonth(1990, 1).AddMonths(3 * i)),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
	saves = append(saves, &savegame.Save{ID: "manual", Name: "manual-199001", CreatedAt: base})

	// Act
	expired := savegame.Expired(saves, savegame.DefaultAutosaveSlots)

	// Assert
	require.Len(t, expired, 2)
	assert.Equal(t, "a", expired[0].ID)
	assert.Equal(t, "b", expired[1].ID)
	assert.Empty(t, savegame.Expired(saves[:6], savegame.DefaultAutosaveSlots))
}
