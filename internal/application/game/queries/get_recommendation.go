package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/fabtycoon-go/internal/application/common"
	"github.com/andrescamacho/fabtycoon-go/internal/application/game"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/planner"
)

// GetRecommendationQuery runs the quarterly planner for one company without touching the
// live world
type GetRecommendationQuery struct {
	CompanyID string // defaults to the player
}

// GetRecommendationResponse is the planner's advice
type GetRecommendationResponse struct {
	CompanyID     string       `json:"company_id"`
	Month         string       `json:"month"`
	Decisions     []string     `json:"decisions"`
	Path          []string     `json:"path"`
	ExpectedScore float64      `json:"expected_score"`
	Evaluated     int          `json:"evaluated"`
	Plan          planner.Plan `json:"plan"`
}

// GetRecommendationHandler handles the GetRecommendation query
type GetRecommendationHandler struct {
	session *game.Session
}

// NewGetRecommendationHandler creates a new GetRecommendationHandler
func NewGetRecommendationHandler(session *game.Session) *GetRecommendationHandler {
	return &GetRecommendationHandler{session: session}
}

// Handle executes the GetRecommendation query
func (h *GetRecommendationHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetRecommendationQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetRecommendationQuery")
	}

	view, err := h.session.View()
	if err != nil {
		return nil, err
	}
	cfg, err := h.session.PlannerConfig()
	if err != nil {
		return nil, err
	}

	companyID := query.CompanyID
	if companyID == "" {
		companyID = view.PlayerID
	}

	plan, err := planner.PlanQuarter(ctx, view, companyID, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to plan for %s: %w", companyID, err)
	}

	resp := &GetRecommendationResponse{
		CompanyID:     companyID,
		Month:         view.Month.String(),
		Decisions:     []string{},
		Path:          []string{},
		ExpectedScore: plan.ExpectedScore,
		Evaluated:     plan.Evaluated,
		Plan:          plan,
	}
	for _, d := range plan.Decisions {
		resp.Decisions = append(resp.Decisions, d.String())
	}
	for _, d := range plan.Path {
		resp.Path = append(resp.Path, d.String())
	}
	return resp, nil
}
