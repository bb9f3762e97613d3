package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/andrescamacho/fabtycoon-go/internal/application/common"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/savegame"
)

// ListSavesQuery lists stored games, newest first
type ListSavesQuery struct {
	IncludeAutosaves bool
}

// SaveInfo describes one stored game
type SaveInfo struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Status         string    `json:"status"`
	ScenarioID     string    `json:"scenario_id"`
	Month          string    `json:"month"`
	ProgressMonths int       `json:"progress_months"`
	CreatedAt      time.Time `json:"created_at"`
	Autosave       bool      `json:"autosave"`
}

// ListSavesResponse holds the stored games
type ListSavesResponse struct {
	Saves []SaveInfo `json:"saves"`
}

// ListSavesHandler handles the ListSaves query
type ListSavesHandler struct {
	saveRepo savegame.Repository
}

// NewListSavesHandler creates a new ListSavesHandler
func NewListSavesHandler(saveRepo savegame.Repository) *ListSavesHandler {
	return &ListSavesHandler{saveRepo: saveRepo}
}

// Handle executes the ListSaves query
func (h *ListSavesHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ListSavesQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListSavesQuery")
	}

	saves, err := h.saveRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list saves: %w", err)
	}

	resp := &ListSavesResponse{Saves: []SaveInfo{}}
	for _, s := range saves {
		if savegame.IsAutosave(s.Name) && !query.IncludeAutosaves {
			continue
		}
		resp.Saves = append(resp.Saves, SaveInfo{
			ID:             s.ID,
			Name:           s.Name,
			Status:         string(s.Status),
			ScenarioID:     s.ScenarioID,
			Month:          s.Month.String(),
			ProgressMonths: s.ProgressMonths,
			CreatedAt:      s.CreatedAt,
			Autosave:       savegame.IsAutosave(s.Name),
		})
	}
	return resp, nil
}
