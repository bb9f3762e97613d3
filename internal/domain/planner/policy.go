package planner

import (
	"context"

	"github.com/andrescamacho/fabtycoon-go/internal/domain/simulation"
)

// Policy plays AI companies: beam search on quarter boundaries, tactics in between
type Policy struct {
	config Config
}

// NewPolicy creates a policy with the given planner configuration
func NewPolicy(cfg Config) *Policy {
	return &Policy{config: cfg}
}

// Config returns the planner configuration
func (p *Policy) Config() Config {
	return p.config
}

// MonthlyTactics implements simulation.AIPolicy
func (p *Policy) MonthlyTactics(s *simulation.State, companyID string) []simulation.Decision {
	return MonthlyDecisions(s, companyID, p.config.Tactics)
}

// QuarterlyPlan implements simulation.AIPolicy
func (p *Policy) QuarterlyPlan(ctx context.Context, s *simulation.State, companyID string) ([]simulation.Decision, error) {
	plan, err := PlanQuarter(ctx, s, companyID, p.config)
	if err != nil {
		return nil, err
	}
	return plan.Decisions, nil
}

var _ simulation.AIPolicy = (*Policy)(nil)
