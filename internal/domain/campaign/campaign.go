package campaign

import (
	"fmt"
	"math"

	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
)

// Status is the overall outcome of a campaign
type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusSuccess    Status = "SUCCESS"
	StatusFailed     Status = "FAILED"
)

// IsTerminal reports whether the campaign has finished
func (s Status) IsTerminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// GoalKind identifies how a goal is measured
type GoalKind string

const (
	GoalReachShare   GoalKind = "REACH_SHARE"
	GoalLaunchNode   GoalKind = "LAUNCH_NODE"
	GoalProfitTarget GoalKind = "PROFIT_TARGET"
	GoalSurviveEvent GoalKind = "SURVIVE_EVENT"
)

// Goal is one campaign objective. Progress is kept within [0,1].
type Goal struct {
	Kind        GoalKind     `json:"kind"`
	Description string       `json:"description"`
	Segment     string       `json:"segment,omitempty"`
	MinShare    float64      `json:"min_share,omitempty"`
	Node        string       `json:"node,omitempty"`
	ProfitCents int64        `json:"profit_cents,omitempty"`
	EventID     string       `json:"event_id,omitempty"`
	Deadline    shared.Month `json:"deadline"`
	Progress    float64      `json:"progress"`
	Done        bool         `json:"done"`
}

// FailKind identifies a fail condition
type FailKind string

const (
	FailCashBelow  FailKind = "CASH_BELOW"
	FailShareBelow FailKind = "SHARE_BELOW"
)

// FailCondition ends the campaign as failed when it trips.
// SHARE_BELOW is checked at its deadline, or at the campaign end when it has none.
type FailCondition struct {
	Kind           FailKind      `json:"kind"`
	ThresholdCents int64         `json:"threshold_cents,omitempty"`
	Segment        string        `json:"segment,omitempty"`
	MinShare       float64       `json:"min_share,omitempty"`
	Deadline       *shared.Month `json:"deadline,omitempty"`
}

// Observation is what the campaign can see of the player company after a tick
type Observation struct {
	Month         shared.Month
	CashCents     int64
	ProfitCents   int64
	Share         map[string]float64
	ReleasedNodes map[string]bool
	FiredEvents   map[string]shared.Month
}

// Campaign tracks goals and fail conditions for the player company
type Campaign struct {
	ScenarioID string          `json:"scenario_id"`
	Difficulty string          `json:"difficulty"`
	Start      shared.Month    `json:"start"`
	End        shared.Month    `json:"end"`
	Goals      []Goal          `json:"goals"`
	Fails      []FailCondition `json:"fails,omitempty"`
	Status     Status          `json:"status"`
	FinishedAt *shared.Month   `json:"finished_at,omitempty"`
	Reason     string          `json:"reason,omitempty"`
}

// New creates an in-progress campaign
func New(scenarioID, difficulty string, start, end shared.Month, goals []Goal, fails []FailCondition) (*Campaign, error) {
	if !end.After(start) {
		return nil, shared.NewValidationError("campaign.end", fmt.Sprintf("end %s must be after start %s", end, start))
	}
	for i := range goals {
		if err := validateGoal(goals[i]); err != nil {
			return nil, err
		}
		if goals[i].Description == "" {
			goals[i].Description = describe(goals[i])
		}
	}
	for _, f := range fails {
		if err := validateFail(f); err != nil {
			return nil, err
		}
	}
	return &Campaign{
		ScenarioID: scenarioID,
		Difficulty: difficulty,
		Start:      start,
		End:        end,
		Goals:      goals,
		Fails:      fails,
		Status:     StatusInProgress,
	}, nil
}

// IsTerminal reports whether the status is frozen
func (c *Campaign) IsTerminal() bool {
	return c.Status.IsTerminal()
}

// Evaluate updates goal progress and the campaign status from an observation.
// Once the campaign is terminal it is never modified again and Evaluate returns false.
func (c *Campaign) Evaluate(obs Observation) bool {
	if c.IsTerminal() {
		return false
	}

	for _, f := range c.Fails {
		if reason, tripped := c.checkFail(f, obs); tripped {
			c.finish(StatusFailed, obs.Month, reason)
			return true
		}
	}

	allDone := true
	for i := range c.Goals {
		g := &c.Goals[i]
		if g.Done {
			continue
		}
		g.Progress = progress(g, obs)
		if g.Progress >= 1 {
			g.Progress = 1
			g.Done = true
			continue
		}
		allDone = false
		if obs.Month.After(g.Deadline) {
			c.finish(StatusFailed, obs.Month, fmt.Sprintf("missed goal: %s (deadline %s)", g.Description, g.Deadline))
			return true
		}
	}

	if allDone {
		c.finish(StatusSuccess, obs.Month, "all goals completed")
		return true
	}
	if !obs.Month.Before(c.End) {
		c.finish(StatusFailed, obs.Month, "campaign ended with unfinished goals")
		return true
	}
	return false
}

// DoneCount returns the number of completed goals
func (c *Campaign) DoneCount() int {
	n := 0
	for _, g := range c.Goals {
		if g.Done {
			n++
		}
	}
	return n
}

// Clone returns a deep copy
func (c Campaign) Clone() Campaign {
	c.Goals = append([]Goal(nil), c.Goals...)
	fails := make([]FailCondition, len(c.Fails))
	for i, f := range c.Fails {
		if f.Deadline != nil {
			d := *f.Deadline
			f.Deadline = &d
		}
		fails[i] = f
	}
	if c.Fails == nil {
		fails = nil
	}
	c.Fails = fails
	if c.FinishedAt != nil {
		m := *c.FinishedAt
		c.FinishedAt = &m
	}
	return c
}

func (c *Campaign) finish(status Status, m shared.Month, reason string) {
	c.Status = status
	c.FinishedAt = &m
	c.Reason = reason
}

func (c *Campaign) checkFail(f FailCondition, obs Observation) (string, bool) {
	switch f.Kind {
	case FailCashBelow:
		if obs.CashCents < f.ThresholdCents {
			return fmt.Sprintf("cash %d fell below %d", obs.CashCents, f.ThresholdCents), true
		}
	case FailShareBelow:
		checkAt := c.End
		if f.Deadline != nil {
			checkAt = *f.Deadline
		}
		if obs.Month.Before(checkAt) {
			return "", false
		}
		if share := obs.Share[f.Segment]; share < f.MinShare {
			return fmt.Sprintf("%s share %.3f below %.3f at %s", f.Segment, share, f.MinShare, checkAt), true
		}
	}
	return "", false
}

func progress(g *Goal, obs Observation) float64 {
	switch g.Kind {
	case GoalReachShare:
		return clamp01(obs.Share[g.Segment] / math.Max(g.MinShare, 1e-6))
	case GoalLaunchNode:
		if obs.ReleasedNodes[g.Node] {
			return 1
		}
		return 0
	case GoalProfitTarget:
		if g.ProfitCents <= 0 {
			return 1
		}
		return clamp01(float64(obs.ProfitCents) / float64(g.ProfitCents))
	case GoalSurviveEvent:
		fired, ok := obs.FiredEvents[g.EventID]
		if !ok {
			return 0
		}
		if !obs.Month.Before(g.Deadline) {
			return 1
		}
		span := g.Deadline.Sub(fired)
		if span <= 0 {
			return 1
		}
		// reaching 1 needs the deadline itself, never before it
		return math.Min(clamp01(float64(obs.Month.Sub(fired))/float64(span)), 0.99)
	}
	return 0
}

func validateGoal(g Goal) error {
	switch g.Kind {
	case GoalReachShare:
		if g.Segment == "" || g.MinShare <= 0 || g.MinShare > 1 {
			return shared.NewValidationError("goal.reach_share", "segment and min_share in (0,1] are required")
		}
	case GoalLaunchNode:
		if g.Node == "" {
			return shared.NewValidationError("goal.launch_node", "node is required")
		}
	case GoalProfitTarget:
		if g.ProfitCents < 0 {
			return shared.NewValidationError("goal.profit_target", "profit target cannot be negative")
		}
	case GoalSurviveEvent:
		if g.EventID == "" {
			return shared.NewValidationError("goal.survive_event", "event_id is required")
		}
	default:
		return shared.NewValidationError("goal.kind", fmt.Sprintf("unknown goal kind %q", g.Kind))
	}
	return nil
}

func validateFail(f FailCondition) error {
	switch f.Kind {
	case FailCashBelow:
	case FailShareBelow:
		if f.Segment == "" || f.MinShare <= 0 || f.MinShare > 1 {
			return shared.NewValidationError("fail.share_below", "segment and min_share in (0,1] are required")
		}
	default:
		return shared.NewValidationError("fail.kind", fmt.Sprintf("unknown fail condition %q", f.Kind))
	}
	return nil
}

func describe(g Goal) string {
	switch g.Kind {
	case GoalReachShare:
		return fmt.Sprintf("Reach %.0f%% share in %s", g.MinShare*100, g.Segment)
	case GoalLaunchNode:
		return fmt.Sprintf("Launch a product on %s", g.Node)
	case GoalProfitTarget:
		return fmt.Sprintf("Cumulative profit of $%.2f", float64(g.ProfitCents)/100)
	case GoalSurviveEvent:
		return fmt.Sprintf("Survive %s", g.EventID)
	}
	return string(g.Kind)
}

func clamp01(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
