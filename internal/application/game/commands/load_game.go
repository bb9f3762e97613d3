package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/fabtycoon-go/internal/application/common"
	"github.com/andrescamacho/fabtycoon-go/internal/application/game"
	"github.com/andrescamacho/fabtycoon-go/internal/application/game/dtos"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/savegame"
)

// LoadGameCommand replaces the live world with a saved snapshot
type LoadGameCommand struct {
	SaveID string `validate:"required"`
}

// Mutation marks the command as changing the live world
func (*LoadGameCommand) Mutation() {}

// LoadGameResponse is the summary of the restored world
type LoadGameResponse struct {
	SaveID  string             `json:"save_id"`
	Name    string             `json:"name"`
	Summary *dtos.StateSummary `json:"summary"`
}

// LoadGameHandler handles the LoadGame command
type LoadGameHandler struct {
	session  *game.Session
	saveRepo savegame.Repository
	catalog  game.ScenarioCatalog
	tune     game.PlannerTuner
}

// NewLoadGameHandler creates a new LoadGameHandler
func NewLoadGameHandler(session *game.Session, saveRepo savegame.Repository, catalog game.ScenarioCatalog, tune game.PlannerTuner) *LoadGameHandler {
	return &LoadGameHandler{
		session:  session,
		saveRepo: saveRepo,
		catalog:  catalog,
		tune:     tune,
	}
}

// Handle executes the LoadGame command
func (h *LoadGameHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*LoadGameCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *LoadGameCommand")
	}
	if cmd.SaveID == "" {
		return nil, fmt.Errorf("save id is required")
	}

	save, err := h.saveRepo.FindByID(ctx, cmd.SaveID)
	if err != nil {
		return nil, fmt.Errorf("failed to find save %s: %w", cmd.SaveID, err)
	}
	if save.Status != savegame.StatusDone {
		return nil, fmt.Errorf("save %s is incomplete (%s)", save.ID, save.Status)
	}

	state, err := save.Restore()
	if err != nil {
		return nil, err
	}

	difficulty := ""
	if state.Campaign != nil {
		difficulty = state.Campaign.Difficulty
	}
	cfg, err := h.catalog.PlannerFor(difficulty)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve planner for difficulty %q: %w", difficulty, err)
	}
	if h.tune != nil {
		cfg = h.tune(cfg)
	}

	if err := h.session.Start(state, cfg); err != nil {
		return nil, err
	}

	common.LoggerFromContext(ctx).Log("INFO", "Game loaded", map[string]interface{}{
		"save_id": save.ID,
		"name":    save.Name,
		"month":   state.Month.String(),
	})

	view, err := h.session.View()
	if err != nil {
		return nil, err
	}
	return &LoadGameResponse{
		SaveID:  save.ID,
		Name:    save.Name,
		Summary: dtos.Summarize(view),
	}, nil
}
