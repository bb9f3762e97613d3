package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/fabtycoon-go/internal/application/common"
	"github.com/andrescamacho/fabtycoon-go/internal/application/game"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/savegame"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
)

// SaveGameCommand writes a manual save of the live world
type SaveGameCommand struct {
	Name string // defaults to manual-YYYYMM
}

// SaveGameResponse identifies the new save
type SaveGameResponse struct {
	SaveID      string `json:"save_id"`
	Name        string `json:"name"`
	Month       string `json:"month"`
	Fingerprint string `json:"fingerprint"`
}

// SaveGameHandler handles the SaveGame command
type SaveGameHandler struct {
	session  *game.Session
	saveRepo savegame.Repository
	clock    shared.Clock
}

// NewSaveGameHandler creates a new SaveGameHandler
func NewSaveGameHandler(session *game.Session, saveRepo savegame.Repository, clock shared.Clock) *SaveGameHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &SaveGameHandler{
		session:  session,
		saveRepo: saveRepo,
		clock:    clock,
	}
}

// Handle executes the SaveGame command
func (h *SaveGameHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*SaveGameCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *SaveGameCommand")
	}

	view, err := h.session.View()
	if err != nil {
		return nil, err
	}

	name := cmd.Name
	if name == "" {
		name = savegame.ManualName(view.Month)
	}
	if savegame.IsAutosave(name) {
		return nil, shared.NewValidationError("name", fmt.Sprintf("prefix %q is reserved for autosaves", savegame.AutosavePrefix))
	}

	save, err := savegame.New(name, view, h.clock)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot game: %w", err)
	}
	if err := h.saveRepo.Create(ctx, save); err != nil {
		return nil, fmt.Errorf("failed to persist save: %w", err)
	}

	common.LoggerFromContext(ctx).Log("INFO", "Game saved", map[string]interface{}{
		"save_id": save.ID,
		"name":    save.Name,
		"month":   save.Month.String(),
	})

	return &SaveGameResponse{
		SaveID:      save.ID,
		Name:        save.Name,
		Month:       save.Month.String(),
		Fingerprint: save.Fingerprint,
	}, nil
}
