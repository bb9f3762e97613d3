package assets_test

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/fabtycoon-go/internal/adapters/assets"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/campaign"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/events"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
)

func TestLoadEmbedded_BuildsEveryScenario(t *testing.T) {
	pack, err := assets.LoadEmbedded()
	require.NoError(t, err)

	assert.Equal(t, []string{"classic_1990", "crunch_2001", "tutorial_1990"}, pack.ScenarioIDs())
	assert.Len(t, pack.Difficulties, 3)
	require.NoError(t, pack.Planner.Validate())
}

func TestBuild_ClassicScenario(t *testing.T) {
	// Arrange
	pack, err := assets.LoadEmbedded()
	require.NoError(t, err)

	// Act
	setup, err := pack.Build("classic_1990", "")

	// Assert
	require.NoError(t, err)
	s := setup.State
	assert.Equal(t, shared.NewMonth(1990, 1), s.Month)
	assert.Len(t, s.Companies, 3)

	player, ok := s.Player()
	require.True(t, ok)
	assert.False(t, player.AI)
	assert.Equal(t, int64(500_000_000), player.Cash())
	assert.Greater(t, player.UnitCostCents, int64(0))
	assert.Less(t, player.UnitCostCents, player.ASPCents)
	assert.Greater(t, player.Capacity.UnitsPerWafer, int64(1))

	require.NotNil(t, s.Campaign)
	assert.Equal(t, campaign.StatusInProgress, s.Campaign.Status)
	assert.Len(t, s.Campaign.Goals, 4)
	assert.Len(t, s.Effects, 4)
	assert.Nil(t, s.Tutorial)
}

func TestBuild_DifficultyScalesCashAndSeverity(t *testing.T) {
	pack, err := assets.LoadEmbedded()
	require.NoError(t, err)

	hard, err := pack.Build("classic_1990", "hard")
	require.NoError(t, err)

	player, _ := hard.State.Player()
	assert.Equal(t, int64(350_000_000), player.Cash())
	assert.Equal(t, 0.08, hard.State.Rules.MinMarginFrac)
	assert.Equal(t, 0.7, hard.State.Rules.Contract.TakeOrPayFrac)
	assert.Equal(t, 0.03, hard.Planner.Tactics.PriceEpsilonFrac)

	for _, e := range hard.State.Effects {
		switch e.ID {
		case "memory_glut_1996":
			assert.InDelta(t, -0.3, e.Payload.DemandShock, 1e-9)
		case "pc_boom_1992":
			assert.InDelta(t, 0.25, e.Payload.DemandShock, 1e-9, "favourable shocks are not scaled")
		case "fab_fire_1993":
			assert.Equal(t, events.KindCostShock, e.Kind)
			assert.InDelta(t, 1.225, e.Payload.CostFactor, 1e-9)
		}
	}
}

func TestBuild_TutorialScenario(t *testing.T) {
	pack, err := assets.LoadEmbedded()
	require.NoError(t, err)

	setup, err := pack.Build("tutorial_1990", "")

	require.NoError(t, err)
	step, idx, ok := setup.State.Tutorial.Current()
	require.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.Equal(t, campaign.StepPriceCut, step.ID)
	assert.Equal(t, "easy", setup.Difficulty.ID)
}

func TestBuild_UnknownScenarioOrDifficulty(t *testing.T) {
	pack, err := assets.LoadEmbedded()
	require.NoError(t, err)

	_, err = pack.Build("nope", "")
	assert.ErrorContains(t, err, "unknown scenario")

	_, err = pack.Build("classic_1990", "nightmare")
	assert.ErrorContains(t, err, "unknown difficulty")
}

func TestLoad_RejectsInvalidPack(t *testing.T) {
	tests := []struct {
		name    string
		tech    string
		markets string
		wantErr string
	}{
		{
			name:    "positive elasticity",
			tech:    "nodes: []\n",
			markets: "segments:\n  - {id: a, epoch: \"1990-01\", base_demand_units: 10, base_asp_cents: 10, elasticity: 0.5}\n",
			wantErr: "elasticity",
		},
		{
			name:    "yield above one",
			tech:    "nodes:\n  - {id: N1, year_available: 1990, yield_baseline: 1.5}\n",
			markets: "segments: []\n",
			wantErr: "yield",
		},
		{
			name:    "missing dependency",
			tech:    "nodes:\n  - {id: N1, year_available: 1990, yield_baseline: 0.5, dependencies: [N0]}\n",
			markets: "segments: []\n",
			wantErr: "dependency not found",
		},
		{
			name:    "bad epoch",
			tech:    "nodes: []\n",
			markets: "segments:\n  - {id: a, epoch: \"1990-13\", base_demand_units: 10, base_asp_cents: 10, elasticity: -1}\n",
			wantErr: "out of range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{
				"markets.yaml":     {Data: []byte(tt.markets)},
				"tech.yaml":        {Data: []byte(tt.tech)},
				"difficulty.yaml":  {Data: []byte("presets: []\n")},
				"ai_defaults.yaml": {Data: []byte("planner: {beam_width: 1, months: 3, quarter_step: 3, discount: 1}\n")},
			}

			_, err := assets.Load(fsys)

			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
