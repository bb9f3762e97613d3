package planner

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/andrescamacho/fabtycoon-go/internal/domain/econ"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/simulation"
)

// Plan is the result of one beam search
type Plan struct {
	CompanyID     string                `json:"company_id"`
	Decisions     []simulation.Decision `json:"decisions"`
	Path          []simulation.Decision `json:"path"`
	ExpectedScore float64               `json:"expected_score"`
	Liquidity     float64               `json:"liquidity"`
	Evaluated     int                   `json:"evaluated"`
}

type node struct {
	state     *simulation.State
	path      []simulation.Decision
	score     float64
	liquidity float64
	order     int
}

// PlanQuarter runs a beam search over cfg.DecisionPoints() quarterly decisions for one
// company and returns the first decision of the best plan.
//
// Every candidate is rolled forward on its own clone of s, so s is never modified.
// Rollouts run in parallel; the beam is reduced by score, then liquidity, then the order in
// which candidates were generated, so the chosen plan never depends on scheduling.
func PlanQuarter(ctx context.Context, s *simulation.State, companyID string, cfg Config) (Plan, error) {
	if err := cfg.Validate(); err != nil {
		return Plan{}, fmt.Errorf("invalid planner config: %w", err)
	}
	if _, err := s.Company(companyID); err != nil {
		return Plan{}, err
	}

	root := s.Clone()
	// rollouts only need the economy
	root.Campaign = nil
	root.Tutorial = nil
	root.History = nil

	beam := []node{{state: root}}
	evaluated := 0
	discount := 1.0
	for point := 0; point < cfg.DecisionPoints(); point++ {
		var children []node
		for _, parent := range beam {
			for _, d := range Candidates(parent.state, companyID, cfg) {
				children = append(children, node{
					state: parent.state,
					path:  append(append([]simulation.Decision(nil), parent.path...), d),
					score: parent.score,
					order: len(children),
				})
			}
		}

		if err := rollout(ctx, children, companyID, cfg, discount); err != nil {
			return Plan{}, err
		}
		evaluated += len(children)

		kept := children[:0]
		for _, child := range children {
			if child.state != nil {
				kept = append(kept, child)
			}
		}
		if len(kept) == 0 {
			break
		}
		sortBeam(kept)
		if len(kept) > cfg.BeamWidth {
			kept = kept[:cfg.BeamWidth]
		}
		for i := range kept {
			kept[i].order = i
		}
		beam = kept
		discount *= cfg.Discount
	}

	best := beam[0]
	plan := Plan{
		CompanyID:     companyID,
		Path:          best.path,
		ExpectedScore: best.score,
		Liquidity:     best.liquidity,
		Evaluated:     evaluated,
	}
	if len(best.path) > 0 {
		plan.Decisions = []simulation.Decision{best.path[0]}
	}
	return plan, nil
}

// rollout applies each child's last decision on a clone of its parent state and simulates
// one quarter. Children whose decision is rejected get a nil state and are dropped.
func rollout(ctx context.Context, children []node, companyID string, cfg Config, discount float64) error {
	g, ctx := errgroup.WithContext(ctx)
	if cfg.Parallelism > 0 {
		g.SetLimit(cfg.Parallelism)
	}
	policy := rolloutPolicy{tactics: cfg.Tactics}

	for i := range children {
		child := &children[i]
		g.Go(func() error {
			st := child.state.Clone()
			child.state = nil
			d := child.path[len(child.path)-1]
			if _, err := simulation.ApplyDecision(st, companyID, d); err != nil {
				return nil
			}
			if _, err := simulation.Advance(ctx, st, cfg.QuarterStep, simulation.Options{Policy: policy}); err != nil {
				return fmt.Errorf("rollout of %s failed: %w", d, err)
			}
			c, err := st.Company(companyID)
			if err != nil {
				return err
			}
			child.state = st
			child.score += discount * Utility(MetricsFor(st, c, cfg.Portfolio), cfg.Weights)
			child.liquidity = Liquidity(c)
			return nil
		})
	}
	return g.Wait()
}

func sortBeam(nodes []node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].score != nodes[j].score {
			return nodes[i].score > nodes[j].score
		}
		if nodes[i].liquidity != nodes[j].liquidity {
			return nodes[i].liquidity > nodes[j].liquidity
		}
		return nodes[i].order < nodes[j].order
	})
}

// Candidates returns the action set considered for one company at one decision point.
// Price cuts below the margin floor are clamped to the floor (or dropped when the price is
// already there). Raises are skipped below 20% share. Capacity is only offered under a
// shortage.
func Candidates(s *simulation.State, companyID string, cfg Config) []simulation.Decision {
	c, err := s.Company(companyID)
	if err != nil {
		return nil
	}

	out := []simulation.Decision{{Kind: simulation.ActionHold}}

	floor := econ.MinPrice(c.UnitCostCents, cfg.Tactics.MinMarginFrac)
	floor = max(floor, econ.MinPrice(c.UnitCostCents, s.Rules.MinMarginFrac))
	if cfg.PriceStepFrac > 0 {
		cut := int64(math.Round(float64(c.ASPCents) * (1 - cfg.PriceStepFrac)))
		switch {
		case cut >= floor:
			out = append(out, simulation.Decision{Kind: simulation.ActionPrice, PriceDeltaFrac: -cfg.PriceStepFrac})
		case floor < c.ASPCents:
			out = append(out, simulation.Decision{Kind: simulation.ActionPrice, TargetASPCents: floor})
		}
		if c.AverageShare() >= 0.2 {
			out = append(out, simulation.Decision{Kind: simulation.ActionPrice, PriceDeltaFrac: cfg.PriceStepFrac})
		}
	}

	if cfg.CapacityStepWafers > 0 && ShortageRatio(s, c) > cfg.Tactics.ShortageRaiseThreshold {
		out = append(out, simulation.Decision{
			Kind:     simulation.ActionCapacity,
			Capacity: &simulation.CapacityRequest{WafersPerMonth: cfg.CapacityStepWafers},
		})
	}

	if cfg.RDStepCents > 0 {
		out = append(out, simulation.Decision{Kind: simulation.ActionRD, RDDeltaCents: cfg.RDStepCents})
	}

	if n, ok := nextNode(s, c); ok {
		out = append(out, simulation.Decision{
			Kind:    simulation.ActionTapeout,
			Tapeout: &simulation.TapeoutRequest{TechNodeID: n.ID},
		})
		if c.Cash() >= s.Rules.Expedite.ExpediteCostCents {
			out = append(out, simulation.Decision{
				Kind:    simulation.ActionTapeout,
				Tapeout: &simulation.TapeoutRequest{TechNodeID: n.ID, Expedite: true},
			})
		}
	}
	return out
}

// nextNode is the best available node that beats the company's current perf and has no
// tape-out queued or released yet
func nextNode(s *simulation.State, c *simulation.Company) (econ.TechNode, bool) {
	for _, n := range s.AvailableNodes() {
		if n.PerfIndex <= c.PerfIndex || c.Pipeline.HasNode(n.ID) {
			continue
		}
		queued := false
		for _, r := range c.Pipeline.Queue {
			if r.Spec.TechNodeID == n.ID {
				queued = true
			}
		}
		if !queued {
			return n, true
		}
	}
	return econ.TechNode{}, false
}

// rolloutPolicy plays every AI company with tactics only; nested planning would recurse
type rolloutPolicy struct {
	tactics Tactics
}

func (p rolloutPolicy) MonthlyTactics(s *simulation.State, companyID string) []simulation.Decision {
	return MonthlyDecisions(s, companyID, p.tactics)
}

func (p rolloutPolicy) QuarterlyPlan(context.Context, *simulation.State, string) ([]simulation.Decision, error) {
	return nil, nil
}
