package queries

import (
	"bytes"
	"context"
	"fmt"

	"github.com/andrescamacho/fabtycoon-go/internal/adapters/export"
	"github.com/andrescamacho/fabtycoon-go/internal/application/common"
	"github.com/andrescamacho/fabtycoon-go/internal/application/game"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/planner"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/simulation"
)

// ExportTimelineQuery simulates forward on a copy of the live world and exports the
// player rows of that dry run. The live world is never advanced.
type ExportTimelineQuery struct {
	Months int    `validate:"min=1,max=1200"`
	Format string `validate:"omitempty,oneof=json csv"` // inferred from Path when empty
	Path   string // empty returns the encoded rows inline
}

// ExportTimelineResponse describes the export
type ExportTimelineResponse struct {
	Rows    int    `json:"rows"`
	Format  string `json:"format"`
	Path    string `json:"path,omitempty"`
	From    string `json:"from"`
	To      string `json:"to"`
	Content []byte `json:"content,omitempty"`
}

// ExportTimelineHandler handles the ExportTimeline query
type ExportTimelineHandler struct {
	session *game.Session
}

// NewExportTimelineHandler creates a new ExportTimelineHandler
func NewExportTimelineHandler(session *game.Session) *ExportTimelineHandler {
	return &ExportTimelineHandler{session: session}
}

// Handle executes the ExportTimeline query
func (h *ExportTimelineHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ExportTimelineQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ExportTimelineQuery")
	}
	if query.Months <= 0 {
		return nil, shared.NewValidationError("months", "must be > 0")
	}

	format, err := resolveFormat(query.Format, query.Path)
	if err != nil {
		return nil, err
	}

	view, err := h.session.View()
	if err != nil {
		return nil, err
	}
	cfg, err := h.session.PlannerConfig()
	if err != nil {
		return nil, err
	}

	dry := view.Clone()
	dry.History = nil
	report, err := simulation.Advance(ctx, dry, query.Months, simulation.Options{Policy: planner.NewPolicy(cfg)})
	if err != nil {
		return nil, fmt.Errorf("dry run failed: %w", err)
	}

	resp := &ExportTimelineResponse{
		Rows:   len(dry.History),
		Format: string(format),
		Path:   query.Path,
		From:   report.StartMonth.String(),
		To:     report.EndMonth.String(),
	}
	if query.Path != "" {
		if err := export.WriteTimelineFile(query.Path, format, dry.History); err != nil {
			return nil, err
		}
	} else {
		var buf bytes.Buffer
		if err := export.WriteTimeline(&buf, format, dry.History); err != nil {
			return nil, err
		}
		resp.Content = buf.Bytes()
	}

	common.LoggerFromContext(ctx).Log("INFO", "Timeline exported", map[string]interface{}{
		"rows":   resp.Rows,
		"format": resp.Format,
		"path":   resp.Path,
	})
	return resp, nil
}

func resolveFormat(name, path string) (export.Format, error) {
	if name == "" && path != "" {
		if f, ok := export.FormatFromPath(path); ok {
			return f, nil
		}
	}
	return export.ParseFormat(name)
}
