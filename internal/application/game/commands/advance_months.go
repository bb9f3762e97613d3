package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/fabtycoon-go/internal/adapters/metrics"
	"github.com/andrescamacho/fabtycoon-go/internal/application/common"
	"github.com/andrescamacho/fabtycoon-go/internal/application/game"
	"github.com/andrescamacho/fabtycoon-go/internal/application/game/dtos"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/planner"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/savegame"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/simulation"
)

// MaxAdvanceMonths caps a single advance request
const MaxAdvanceMonths = simulation.MaxMonths

// AdvanceMonthsCommand advances the live world
type AdvanceMonthsCommand struct {
	Months int
}

// Mutation marks the command as changing the live world
func (*AdvanceMonthsCommand) Mutation() {}

// AdvanceMonthsResponse carries the tick report and the new summary
type AdvanceMonthsResponse struct {
	Report   simulation.Report  `json:"report"`
	Summary  *dtos.StateSummary `json:"summary"`
	Autosave string             `json:"autosave,omitempty"`
}

// AdvanceMonthsHandler handles the AdvanceMonths command
type AdvanceMonthsHandler struct {
	session       *game.Session
	saveRepo      savegame.Repository
	publisher     game.TickPublisher
	clock         shared.Clock
	autosaveSlots int
}

// NewAdvanceMonthsHandler creates a new AdvanceMonthsHandler.
// A nil saveRepo disables autosaves.
func NewAdvanceMonthsHandler(
	session *game.Session,
	saveRepo savegame.Repository,
	publisher game.TickPublisher,
	clock shared.Clock,
	autosaveSlots int,
) *AdvanceMonthsHandler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if publisher == nil {
		publisher = game.NopPublisher{}
	}
	return &AdvanceMonthsHandler{
		session:       session,
		saveRepo:      saveRepo,
		publisher:     publisher,
		clock:         clock,
		autosaveSlots: autosaveSlots,
	}
}

// Handle executes the AdvanceMonths command
func (h *AdvanceMonthsHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*AdvanceMonthsCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *AdvanceMonthsCommand")
	}
	if cmd.Months < 0 || cmd.Months > MaxAdvanceMonths {
		return nil, shared.NewValidationError("months", fmt.Sprintf("must be within [0, %d]", MaxAdvanceMonths))
	}

	logger := common.LoggerFromContext(ctx)

	var (
		report   simulation.Report
		summary  *dtos.StateSummary
		snapshot *savegame.Save
	)
	err := h.session.Mutate(ctx, func(ctx context.Context, st *simulation.State, policy *planner.Policy) error {
		before := st.ElapsedMonths()

		var err error
		report, err = simulation.Advance(ctx, st, cmd.Months, simulation.Options{Policy: policy})
		if err != nil {
			return err
		}
		summary = dtos.Summarize(st)

		if h.saveRepo != nil && crossedQuarter(before, st.ElapsedMonths(), st.Rules.QuarterStep) {
			snapshot, err = savegame.New(savegame.AutosaveName(st.Month), st, h.clock)
			if err != nil {
				return fmt.Errorf("failed to snapshot autosave: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to advance %d months: %w", cmd.Months, err)
	}

	for _, d := range report.Diagnostics {
		level := "INFO"
		if d.Kind == simulation.DiagnosticDrift || d.Kind == simulation.DiagnosticPlanner {
			level = "WARNING"
		}
		logger.Log(level, d.Message, map[string]interface{}{
			"month":   d.Month.String(),
			"company": d.CompanyID,
			"kind":    string(d.Kind),
		})
	}

	resp := &AdvanceMonthsResponse{Report: report, Summary: summary}
	if snapshot != nil {
		// autosave failures never undo the tick
		err := h.autosave(ctx, snapshot)
		metrics.RecordAutosave(err == nil)
		if err != nil {
			logger.Log("ERROR", "Autosave failed", map[string]interface{}{"error": err.Error()})
		} else {
			resp.Autosave = snapshot.Name
		}
	}

	metrics.RecordTick(summary, report)
	h.publisher.PublishTick(ctx, game.TickEvent{Report: report, Summary: summary})
	return resp, nil
}

// autosave writes the snapshot, marks it done and rotates old autosaves out
func (h *AdvanceMonthsHandler) autosave(ctx context.Context, save *savegame.Save) error {
	if err := h.saveRepo.Create(ctx, save); err != nil {
		return fmt.Errorf("failed to persist autosave: %w", err)
	}
	if err := h.saveRepo.UpdateStatus(ctx, save.ID, savegame.StatusDone); err != nil {
		return fmt.Errorf("failed to complete autosave: %w", err)
	}
	save.MarkDone()

	all, err := h.saveRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list saves: %w", err)
	}
	slots := h.autosaveSlots
	if slots <= 0 {
		slots = savegame.DefaultAutosaveSlots
	}
	for _, old := range savegame.Expired(all, slots) {
		if err := h.saveRepo.Delete(ctx, old.ID); err != nil {
			return fmt.Errorf("failed to rotate autosave %s: %w", old.ID, err)
		}
	}
	return nil
}

// crossedQuarter reports whether a quarter boundary lies in (before, after]
func crossedQuarter(before, after, step int) bool {
	if step <= 0 || after <= before {
		return false
	}
	return after/step > before/step
}
