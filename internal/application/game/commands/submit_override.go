package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/fabtycoon-go/internal/application/common"
	"github.com/andrescamacho/fabtycoon-go/internal/application/game"
	"github.com/andrescamacho/fabtycoon-go/internal/application/game/dtos"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/planner"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/simulation"
)

// SubmitOverrideCommand applies player decisions to the live world. Every field is optional
// but at least one must be set.
type SubmitOverrideCommand struct {
	PriceDeltaFrac *float64
	RDDeltaCents   *int64
	Capacity       *simulation.CapacityRequest
	Tapeout        *simulation.TapeoutRequest
}

// Mutation marks the command as changing the live world
func (*SubmitOverrideCommand) Mutation() {}

// SubmitOverrideResponse reports what was applied
type SubmitOverrideResponse struct {
	Result  simulation.OverrideResult `json:"result"`
	Summary *dtos.StateSummary        `json:"summary"`
}

// SubmitOverrideHandler handles the SubmitOverride command
type SubmitOverrideHandler struct {
	session *game.Session
}

// NewSubmitOverrideHandler creates a new SubmitOverrideHandler
func NewSubmitOverrideHandler(session *game.Session) *SubmitOverrideHandler {
	return &SubmitOverrideHandler{session: session}
}

// Handle executes the SubmitOverride command. Rejected overrides leave the world untouched.
func (h *SubmitOverrideHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*SubmitOverrideCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *SubmitOverrideCommand")
	}

	override := simulation.Override{
		PriceDeltaFrac: cmd.PriceDeltaFrac,
		RDDeltaCents:   cmd.RDDeltaCents,
		Capacity:       cmd.Capacity,
		Tapeout:        cmd.Tapeout,
	}

	var resp SubmitOverrideResponse
	err := h.session.Mutate(ctx, func(ctx context.Context, st *simulation.State, _ *planner.Policy) error {
		result, err := simulation.ApplyOverride(st, override)
		if err != nil {
			return err
		}
		resp.Result = result
		resp.Summary = dtos.Summarize(st)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("override rejected: %w", err)
	}

	common.LoggerFromContext(ctx).Log("INFO", "Override applied", map[string]interface{}{
		"decisions":         len(resp.Result.Applied),
		"campaign_terminal": resp.Result.CampaignTerminal,
	})
	return &resp, nil
}
