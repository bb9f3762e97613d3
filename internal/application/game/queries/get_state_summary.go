package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/fabtycoon-go/internal/application/common"
	"github.com/andrescamacho/fabtycoon-go/internal/application/game"
	"github.com/andrescamacho/fabtycoon-go/internal/application/game/dtos"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/simulation"
)

// GetStateSummaryQuery returns the current world summary
type GetStateSummaryQuery struct {
	WithFingerprint bool
}

// GetStateSummaryHandler handles the GetStateSummary query
type GetStateSummaryHandler struct {
	session *game.Session
}

// NewGetStateSummaryHandler creates a new GetStateSummaryHandler
func NewGetStateSummaryHandler(session *game.Session) *GetStateSummaryHandler {
	return &GetStateSummaryHandler{session: session}
}

// Handle executes the GetStateSummary query
func (h *GetStateSummaryHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetStateSummaryQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetStateSummaryQuery")
	}

	view, err := h.session.View()
	if err != nil {
		return nil, err
	}

	summary := dtos.Summarize(view)
	if query.WithFingerprint {
		fp, err := simulation.Fingerprint(view)
		if err != nil {
			return nil, fmt.Errorf("failed to fingerprint state: %w", err)
		}
		summary.Fingerprint = fp
	}
	return summary, nil
}
