package planner

import (
	"math"

	"github.com/andrescamacho/fabtycoon-go/internal/domain/econ"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/simulation"
)

// TacticInputs is what the monthly tactics look at
type TacticInputs struct {
	PrevShare         float64
	Share             float64
	DemandSupplyRatio float64
	LiquidityK        float64
	ASPCents          int64
	UnitCostCents     int64
}

// DecideTactics returns the monthly price delta (fraction of ASP) and R&D delta (fraction
// of the current budget).
//
// A share drop larger than ShareDropDelta cuts price by PriceEpsilonFrac; demand above
// ShortageRaiseThreshold times capacity raises it by ShortageRaiseEpsilonFrac. A net cut is
// limited so the new price never goes under the minimum margin floor. R&D is cut while
// liquidity is below the floor and boosted after a share drop otherwise.
func DecideTactics(in TacticInputs, cfg Tactics) (priceDelta, rdDelta float64) {
	drop := math.Max(in.PrevShare-in.Share, 0)
	if drop > cfg.ShareDropDelta {
		priceDelta -= cfg.PriceEpsilonFrac
	}
	if in.DemandSupplyRatio > cfg.ShortageRaiseThreshold {
		priceDelta += cfg.ShortageRaiseEpsilonFrac
	}

	if priceDelta < 0 && in.ASPCents > 0 {
		floor := econ.MinPrice(in.UnitCostCents, cfg.MinMarginFrac)
		if float64(in.ASPCents)*(1+priceDelta) < float64(floor) {
			priceDelta = math.Min(float64(floor)/float64(in.ASPCents)-1, 0)
		}
	}

	if in.LiquidityK < cfg.CashLiquidityFloorK {
		rdDelta -= cfg.RDCutFrac
	} else if drop > cfg.ShareDropDelta {
		rdDelta += cfg.RDBoostFrac
	}
	return priceDelta, rdDelta
}

// MonthlyDecisions turns the tactics of one company into decisions
func MonthlyDecisions(s *simulation.State, companyID string, cfg Tactics) []simulation.Decision {
	c, err := s.Company(companyID)
	if err != nil {
		return nil
	}

	in := TacticInputs{
		Share:             c.Share(),
		PrevShare:         c.Share(),
		DemandSupplyRatio: ShortageRatio(s, c),
		LiquidityK:        Liquidity(c),
		ASPCents:          c.ASPCents,
		UnitCostCents:     c.UnitCostCents,
	}
	if n := len(c.ShareHistory); n >= 2 {
		in.PrevShare = c.ShareHistory[n-2]
	}

	priceDelta, rdFrac := DecideTactics(in, cfg)

	var out []simulation.Decision
	if priceDelta != 0 {
		target := int64(math.Round(float64(c.ASPCents) * (1 + priceDelta)))
		if priceDelta < 0 {
			target = max(target, econ.MinPrice(c.UnitCostCents, cfg.MinMarginFrac))
		}
		if target != c.ASPCents {
			out = append(out, simulation.Decision{Kind: simulation.ActionPrice, TargetASPCents: target})
		}
	}
	if rd := int64(math.Round(float64(c.RDBudgetCents) * rdFrac)); rd != 0 {
		out = append(out, simulation.Decision{Kind: simulation.ActionRD, RDDeltaCents: rd})
	}
	return out
}

// ShortageRatio is expected demand over available capacity this month
func ShortageRatio(s *simulation.State, c *simulation.Company) float64 {
	demand := simulation.ExpectedDemand(s, c.ID)
	capUnits := c.Capacity.Available(s.Month)
	if capUnits <= 0 {
		if demand > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return float64(demand) / float64(capUnits)
}
