package dtos

import (
	"github.com/andrescamacho/fabtycoon-go/internal/domain/campaign"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/simulation"
)

// StateSummary is the player-facing view of the world after a tick
type StateSummary struct {
	ScenarioID  string              `json:"scenario_id"`
	Date        string              `json:"date"`
	MonthIndex  int                 `json:"month_index"`
	Player      *CompanySummary     `json:"player,omitempty"`
	Companies   []CompanySummary    `json:"companies"`
	Campaign    *CampaignSummary    `json:"campaign,omitempty"`
	Tutorial    *TutorialHint       `json:"tutorial,omitempty"`
	Pipeline    []TapeoutSummary    `json:"pipeline"`
	Contracts   []ContractSummary   `json:"contracts"`
	Fingerprint string              `json:"fingerprint,omitempty"`
	Events      map[string]string   `json:"fired_events,omitempty"`
	Segments    []SegmentConditions `json:"segments"`
}

// CompanySummary holds the KPIs of one company
type CompanySummary struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	AI             bool    `json:"ai"`
	CashCents      int64   `json:"cash_cents"`
	ASPCents       int64   `json:"asp_cents"`
	UnitCostCents  int64   `json:"unit_cost_cents"`
	RDBudgetCents  int64   `json:"rd_budget_cents"`
	InventoryUnits int64   `json:"inventory_units"`
	CapacityUnits  int64   `json:"capacity_units"`
	Share          float64 `json:"share"`
	AverageShare   float64 `json:"average_share"`
	RevenueCents   int64   `json:"revenue_cents"`
	COGSCents      int64   `json:"cogs_cents"`
	ProfitCents    int64   `json:"profit_cents"`
	TotalProfit    int64   `json:"total_profit_cents"`
	SoldUnits      int64   `json:"sold_units"`
	PerfIndex      float64 `json:"perf_index"`
}

// CampaignSummary is the campaign status with goal progress
type CampaignSummary struct {
	Status     string        `json:"status"`
	Difficulty string        `json:"difficulty"`
	End        string        `json:"end"`
	Reason     string        `json:"reason,omitempty"`
	Goals      []GoalSummary `json:"goals"`
	DoneCount  int           `json:"done_count"`
}

// GoalSummary is one campaign goal
type GoalSummary struct {
	Kind        string  `json:"kind"`
	Description string  `json:"description"`
	Deadline    string  `json:"deadline"`
	Progress    float64 `json:"progress"`
	Done        bool    `json:"done"`
}

// TutorialHint is the first unfinished tutorial step
type TutorialHint struct {
	Step  int    `json:"step"`
	Total int    `json:"total"`
	ID    string `json:"id"`
	Desc  string `json:"desc"`
	Hint  string `json:"hint"`
}

// TapeoutSummary is one queued tape-out of the player
type TapeoutSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	TechNodeID string `json:"tech_node_id"`
	ReadyAt    string `json:"ready_at"`
	Expedite   bool   `json:"expedite"`
	Status     string `json:"status"`
}

// ContractSummary is one foundry contract of the player
type ContractSummary struct {
	ID                 string  `json:"id"`
	FoundryID          string  `json:"foundry_id"`
	WafersPerMonth     int64   `json:"wafers_per_month"`
	PricePerWaferCents int64   `json:"price_per_wafer_cents"`
	TakeOrPayFrac      float64 `json:"take_or_pay_frac"`
	Billing            string  `json:"billing"`
	Start              string  `json:"start"`
	End                string  `json:"end"`
}

// SegmentConditions are the resolved demand-curve parameters of a segment this month
type SegmentConditions struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	BaseDemand    float64 `json:"base_demand"`
	RefPriceCents float64 `json:"ref_price_cents"`
	Elasticity    float64 `json:"elasticity"`
}

// Summarize builds the summary of a state
func Summarize(s *simulation.State) *StateSummary {
	out := &StateSummary{
		ScenarioID: s.ScenarioID,
		Date:       s.Month.String(),
		MonthIndex: s.ElapsedMonths(),
		Pipeline:   []TapeoutSummary{},
		Contracts:  []ContractSummary{},
	}

	for i := range s.Companies {
		c := &s.Companies[i]
		cs := companySummary(s, c)
		out.Companies = append(out.Companies, cs)
		if c.ID == s.PlayerID {
			p := cs
			out.Player = &p
			for _, r := range c.Pipeline.Queue {
				out.Pipeline = append(out.Pipeline, TapeoutSummary{
					ID:         r.ID,
					Name:       r.Spec.Name,
					TechNodeID: r.Spec.TechNodeID,
					ReadyAt:    r.ReadyAt.String(),
					Expedite:   r.Expedite,
					Status:     string(r.Status),
				})
			}
			for _, k := range c.Capacity.Contracts {
				out.Contracts = append(out.Contracts, ContractSummary{
					ID:                 k.ID,
					FoundryID:          k.FoundryID,
					WafersPerMonth:     k.WafersPerMonth,
					PricePerWaferCents: k.PricePerWaferCents,
					TakeOrPayFrac:      k.TakeOrPayFrac,
					Billing:            string(k.Billing),
					Start:              k.Start.String(),
					End:                k.End.String(),
				})
			}
		}
	}

	for i := range s.Segments {
		seg := &s.Segments[i]
		cond := seg.ConditionsAt(s.Month)
		out.Segments = append(out.Segments, SegmentConditions{
			ID:            seg.ID,
			Name:          seg.Name,
			BaseDemand:    cond.BaseDemand,
			RefPriceCents: cond.RefPriceCents,
			Elasticity:    cond.Elasticity,
		})
	}

	if len(s.FiredEvents) > 0 {
		out.Events = make(map[string]string, len(s.FiredEvents))
		for id, m := range s.FiredEvents {
			out.Events[id] = m.String()
		}
	}

	if s.Campaign != nil {
		out.Campaign = campaignSummary(s.Campaign)
	}
	if step, idx, ok := s.Tutorial.Current(); ok {
		out.Tutorial = &TutorialHint{
			Step:  idx + 1,
			Total: len(s.Tutorial.Steps),
			ID:    step.ID,
			Desc:  step.Desc,
			Hint:  step.Hint,
		}
	}
	return out
}

func companySummary(s *simulation.State, c *simulation.Company) CompanySummary {
	return CompanySummary{
		ID:             c.ID,
		Name:           c.Name,
		AI:             c.AI,
		CashCents:      c.Cash(),
		ASPCents:       c.ASPCents,
		UnitCostCents:  c.UnitCostCents,
		RDBudgetCents:  c.RDBudgetCents,
		InventoryUnits: c.InventoryUnits,
		CapacityUnits:  c.Capacity.Available(s.Month),
		Share:          c.Share(),
		AverageShare:   c.AverageShare(),
		RevenueCents:   c.Last.RevenueCents,
		COGSCents:      c.Last.COGSCents,
		ProfitCents:    c.Last.ProfitCents,
		TotalProfit:    c.Ledger.ProfitCents,
		SoldUnits:      c.Last.SoldUnits,
		PerfIndex:      c.PerfIndex,
	}
}

func campaignSummary(c *campaign.Campaign) *CampaignSummary {
	out := &CampaignSummary{
		Status:     string(c.Status),
		Difficulty: c.Difficulty,
		End:        c.End.String(),
		Reason:     c.Reason,
		DoneCount:  c.DoneCount(),
	}
	for _, g := range c.Goals {
		out.Goals = append(out.Goals, GoalSummary{
			Kind:        string(g.Kind),
			Description: g.Description,
			Deadline:    g.Deadline.String(),
			Progress:    g.Progress,
			Done:        g.Done,
		})
	}
	return out
}
