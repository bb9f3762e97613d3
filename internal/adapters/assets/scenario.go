package assets

import (
	"fmt"
	"math"
	"strings"

	"github.com/andrescamacho/fabtycoon-go/internal/domain/campaign"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/capacity"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/econ"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/events"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/ledger"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/pipeline"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/planner"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/simulation"
)

// PlayerID is the company id of the human player in every scenario
const PlayerID = "player"

var aiNames = []string{"Intellect", "Advanced Micro", "Motorola Semi", "Cyrus", "NexGen", "Transmeta"}

// Setup is a freshly built campaign: the world, the difficulty it was built with and the
// planner configuration for its AI companies
type Setup struct {
	ScenarioID string
	Name       string
	Difficulty campaign.Difficulty
	State      *simulation.State
	Planner    planner.Config
}

// Build creates a new world from a scenario. An empty difficulty uses the scenario's own.
func (p *Pack) Build(scenarioID, difficultyID string) (*Setup, error) {
	doc, ok := p.scenarios[scenarioID]
	if !ok {
		return nil, fmt.Errorf("unknown scenario: %s", scenarioID)
	}
	if difficultyID == "" {
		difficultyID = doc.Difficulty
	}
	diff, err := p.Difficulty(difficultyID)
	if err != nil {
		return nil, err
	}

	start, err := shared.ParseMonth(doc.StartDate)
	if err != nil {
		return nil, fmt.Errorf("start_date: %w", err)
	}
	end, err := shared.ParseMonth(doc.EndDate)
	if err != nil {
		return nil, fmt.Errorf("end_date: %w", err)
	}

	rules := simulation.DefaultRules()
	rules.MinMarginFrac = diff.MinMarginFrac
	rules.Contract.TakeOrPayFrac = diff.TakeOrPayFrac
	if o := doc.Rules; o != nil {
		if o.PerfBoostWeight != nil {
			rules.PerfBoostWeight = *o.PerfBoostWeight
		}
		if o.BuildAheadFrac != nil {
			rules.BuildAheadFrac = *o.BuildAheadFrac
		}
		if o.ExpediteCostCents != nil {
			rules.Expedite.ExpediteCostCents = *o.ExpediteCostCents
		}
	}

	segments := make([]econ.Segment, len(p.Segments))
	for i, s := range p.Segments {
		s.AnnualTrend *= diff.GrowthMultiplier
		s.Events = nil
		segments[i] = s
	}
	nodes := make([]econ.TechNode, len(p.TechNodes))
	for i, n := range p.TechNodes {
		n.Dependencies = append([]string(nil), n.Dependencies...)
		nodes[i] = n
	}

	ledgerCfg := ledger.Config{
		RevenueLagDays: doc.Finance.RevenueLagDays,
		COGSLagDays:    doc.Finance.COGSLagDays,
		RDLagDays:      doc.Finance.RDLagDays,
	}
	if err := ledgerCfg.Validate(); err != nil {
		return nil, fmt.Errorf("finance: %w", err)
	}

	player, err := buildCompany(PlayerID, doc.Player, start, nodes, rules, ledgerCfg)
	if err != nil {
		return nil, fmt.Errorf("player: %w", err)
	}
	player.Ledger = *ledger.New(PlayerID, diff.ScaleCash(doc.Player.CashCents), ledgerCfg)
	companies := []simulation.Company{player}

	for i := 0; i < doc.AICompanies; i++ {
		tpl := doc.AITemplate
		if tpl.Name == "" {
			tpl.Name = aiNames[i%len(aiNames)]
		}
		id := fmt.Sprintf("ai-%d", i+1)
		c, err := buildCompany(id, tpl, start, nodes, rules, ledgerCfg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", id, err)
		}
		c.AI = true
		companies = append(companies, c)
	}

	state, err := simulation.NewState(doc.ID, start, rules, segments, nodes, companies, PlayerID)
	if err != nil {
		return nil, err
	}

	for _, e := range doc.Events {
		effect, err := e.toDomain(diff.EventSeverityMultiplier)
		if err != nil {
			return nil, err
		}
		state.Effects = append(state.Effects, effect)
	}

	goals, err := buildGoals(doc.Goals)
	if err != nil {
		return nil, err
	}
	fails, err := buildFails(doc.Fails)
	if err != nil {
		return nil, err
	}
	state.Campaign, err = campaign.New(doc.ID, diff.ID, start, end, goals, fails)
	if err != nil {
		return nil, err
	}

	if t := doc.Tutorial; t != nil {
		tut := &campaign.Tutorial{Enabled: true, CashThresholdCents: t.CashThresholdCents}
		for _, s := range t.Steps {
			tut.Steps = append(tut.Steps, campaign.TutorialStep{ID: s.ID, Desc: s.Desc, Hint: s.Hint})
		}
		state.Tutorial = tut
	}

	return &Setup{
		ScenarioID: doc.ID,
		Name:       doc.Name,
		Difficulty: diff,
		State:      state,
		Planner:    p.plannerFor(diff),
	}, nil
}

// PlannerFor returns the AI planner configuration adjusted for a difficulty preset
func (p *Pack) PlannerFor(difficultyID string) (planner.Config, error) {
	diff, err := p.Difficulty(difficultyID)
	if err != nil {
		return planner.Config{}, err
	}
	return p.plannerFor(diff), nil
}

func (p *Pack) plannerFor(diff campaign.Difficulty) planner.Config {
	cfg := p.Planner
	cfg.Tactics.PriceEpsilonFrac = diff.PriceEpsilonFrac
	cfg.Tactics.MinMarginFrac = math.Max(cfg.Tactics.MinMarginFrac, diff.MinMarginFrac)
	return cfg
}

func buildCompany(id string, d companyDTO, start shared.Month, nodes []econ.TechNode, rules simulation.Rules, lcfg ledger.Config) (simulation.Company, error) {
	var node *econ.TechNode
	for i := range nodes {
		if nodes[i].ID == d.Node {
			node = &nodes[i]
		}
	}
	if node == nil {
		return simulation.Company{}, fmt.Errorf("unknown starting node %q", d.Node)
	}
	if !node.AvailableIn(start.Year()) {
		return simulation.Company{}, fmt.Errorf("starting node %s is not available in %d", node.ID, start.Year())
	}
	if d.BaseCapacityUnits < 0 || d.RDBudgetCents < 0 {
		return simulation.Company{}, shared.NewValidationError("company."+id, "capacity and R&D budget cannot be negative")
	}

	cost, err := econ.UnitCost(node, d.DieAreaMM2, rules.MaskVolumeUnits, rules.Cost)
	if err != nil {
		return simulation.Company{}, err
	}
	good, err := econ.GoodDiesPerWafer(node, d.DieAreaMM2, rules.Cost)
	if err != nil {
		return simulation.Company{}, err
	}

	name := d.Name
	if name == "" {
		name = id
	}
	book := capacity.NewBook(d.BaseCapacityUnits, max(int64(good), 1))
	return simulation.Company{
		ID:            id,
		Name:          name,
		Segments:      append([]string(nil), d.Segments...),
		ASPCents:      d.ASPCents,
		UnitCostCents: cost,
		RDBudgetCents: d.RDBudgetCents,
		DieAreaMM2:    d.DieAreaMM2,
		PerfIndex:     node.PerfIndex,
		Capacity:      *book,
		Pipeline: pipeline.Pipeline{Released: []pipeline.Product{{
			ID:         id + "-launch",
			Name:       name + " " + node.ID,
			TechNodeID: node.ID,
			PerfIndex:  node.PerfIndex,
			DieAreaMM2: d.DieAreaMM2,
			ReleasedAt: start,
		}}},
		Ledger: *ledger.New(id, d.CashCents, lcfg),
	}, nil
}

func buildGoals(in []goalDTO) ([]campaign.Goal, error) {
	var out []campaign.Goal
	for _, g := range in {
		deadline, err := shared.ParseMonth(g.Deadline)
		if err != nil {
			return nil, fmt.Errorf("goal %s deadline: %w", g.Type, err)
		}
		goal := campaign.Goal{
			Kind:        campaign.GoalKind(strings.ToUpper(g.Type)),
			Segment:     g.Segment,
			MinShare:    g.MinShare,
			Node:        g.Node,
			ProfitCents: g.ProfitCents,
			EventID:     g.EventID,
			Deadline:    deadline,
		}
		out = append(out, goal)
	}
	return out, nil
}

func buildFails(in []failDTO) ([]campaign.FailCondition, error) {
	var out []campaign.FailCondition
	for _, f := range in {
		fc := campaign.FailCondition{
			Kind:           campaign.FailKind(strings.ToUpper(f.Type)),
			ThresholdCents: f.ThresholdCents,
			Segment:        f.Segment,
			MinShare:       f.MinShare,
		}
		switch fc.Kind {
		case campaign.FailCashBelow, campaign.FailShareBelow:
		default:
			return nil, fmt.Errorf("unknown fail condition %q", f.Type)
		}
		if f.Deadline != "" {
			d, err := shared.ParseMonth(f.Deadline)
			if err != nil {
				return nil, fmt.Errorf("fail condition %s deadline: %w", f.Type, err)
			}
			fc.Deadline = &d
		}
		out = append(out, fc)
	}
	return out, nil
}

// toDomain converts an event and scales its adverse part by the difficulty severity
func (d eventDTO) toDomain(severity float64) (events.Effect, error) {
	trigger, err := shared.ParseMonth(d.Trigger)
	if err != nil {
		return events.Effect{}, fmt.Errorf("event %s trigger: %w", d.ID, err)
	}
	target := d.Target
	if target == "" {
		target = events.AllTargets
	}
	e := events.Effect{
		ID:        d.ID,
		Name:      d.Name,
		Kind:      events.Kind(strings.ToUpper(d.Kind)),
		Target:    target,
		TriggerAt: trigger,
		Payload: events.Payload{
			DemandShock:     adverse(d.DemandShock, severity),
			RefPriceShock:   adverse(d.RefPriceShock, severity),
			ElasticityDelta: d.ElasticityDelta,
			DurationMonths:  d.DurationMonths,
			CashCents:       d.CashCents,
			DelayYears:      d.DelayYears,
			CostFactor:      d.CostFactor,
		},
	}
	if d.CashCents < 0 {
		e.Payload.CashCents = int64(math.Round(float64(d.CashCents) * severity))
	}
	if d.CostFactor > 1 {
		e.Payload.CostFactor = 1 + (d.CostFactor-1)*severity
	}
	if err := e.Validate(); err != nil {
		return events.Effect{}, err
	}
	return e, nil
}

// adverse scales a negative shock fraction, never below -1
func adverse(shock, severity float64) float64 {
	if shock >= 0 {
		return shock
	}
	return math.Max(shock*severity, -1)
}
