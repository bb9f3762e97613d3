package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/fabtycoon-go/internal/application/common"
	"github.com/andrescamacho/fabtycoon-go/internal/application/game"
	"github.com/andrescamacho/fabtycoon-go/internal/application/game/dtos"
)

// ResetCampaignCommand starts a new campaign from a named scenario
type ResetCampaignCommand struct {
	Scenario   string
	Difficulty string // empty uses the scenario's own preset
}

// Mutation marks the command as changing the live world
func (*ResetCampaignCommand) Mutation() {}

// ResetCampaignResponse is the summary of the fresh world
type ResetCampaignResponse struct {
	ScenarioName string             `json:"scenario_name"`
	Difficulty   string             `json:"difficulty"`
	Summary      *dtos.StateSummary `json:"summary"`
}

// ResetCampaignHandler handles the ResetCampaign command
type ResetCampaignHandler struct {
	session *game.Session
	catalog game.ScenarioCatalog
	tune    game.PlannerTuner
}

// NewResetCampaignHandler creates a new ResetCampaignHandler
func NewResetCampaignHandler(session *game.Session, catalog game.ScenarioCatalog, tune game.PlannerTuner) *ResetCampaignHandler {
	return &ResetCampaignHandler{
		session: session,
		catalog: catalog,
		tune:    tune,
	}
}

// Handle executes the ResetCampaign command
func (h *ResetCampaignHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ResetCampaignCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ResetCampaignCommand")
	}

	setup, err := h.catalog.Build(cmd.Scenario, cmd.Difficulty)
	if err != nil {
		return nil, fmt.Errorf("failed to build scenario %q: %w", cmd.Scenario, err)
	}

	cfg := setup.Planner
	if h.tune != nil {
		cfg = h.tune(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid planner config: %w", err)
	}

	if err := h.session.Start(setup.State, cfg); err != nil {
		return nil, err
	}

	common.LoggerFromContext(ctx).Log("INFO", "Campaign started", map[string]interface{}{
		"scenario":   setup.ScenarioID,
		"difficulty": setup.Difficulty.ID,
		"start":      setup.State.Month.String(),
	})

	view, err := h.session.View()
	if err != nil {
		return nil, err
	}
	return &ResetCampaignResponse{
		ScenarioName: setup.Name,
		Difficulty:   setup.Difficulty.ID,
		Summary:      dtos.Summarize(view),
	}, nil
}
