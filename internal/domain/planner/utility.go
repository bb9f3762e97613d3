package planner

import (
	"fmt"
	"math"

	"github.com/andrescamacho/fabtycoon-go/internal/domain/simulation"
)

// LiquiditySaturationK is the cash/(debt+1) ratio at which liquidity scores 1
const LiquiditySaturationK = 5.0

// Metrics are the utility inputs of one company
type Metrics struct {
	Share      float64 `json:"share"`
	Margin     float64 `json:"margin"`
	LiquidityK float64 `json:"liquidity_k"`
	Portfolio  float64 `json:"portfolio"`
}

// PortfolioModel selects how portfolio strength is measured
type PortfolioModel string

const (
	// PortfolioCoverage is the fraction of segments the company sells in
	PortfolioCoverage PortfolioModel = "coverage"

	// PortfolioProducts grows with released products, saturating at five
	PortfolioProducts PortfolioModel = "products"

	// PortfolioBlended averages coverage and products
	PortfolioBlended PortfolioModel = "blended"
)

// IsValid checks if the model is known
func (p PortfolioModel) IsValid() bool {
	switch p {
	case PortfolioCoverage, PortfolioProducts, PortfolioBlended:
		return true
	default:
		return false
	}
}

// ParsePortfolioModel parses a model name, defaulting the empty string to blended
func ParsePortfolioModel(s string) (PortfolioModel, error) {
	if s == "" {
		return PortfolioBlended, nil
	}
	p := PortfolioModel(s)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid portfolio model: %s", s)
	}
	return p, nil
}

// Strength scores a company's portfolio in [0,1]
func (p PortfolioModel) Strength(s *simulation.State, c *simulation.Company) float64 {
	coverage := 0.0
	if n := len(s.Segments); n > 0 {
		selling := 0
		for _, seg := range s.Segments {
			if c.SellsIn(seg.ID) {
				selling++
			}
		}
		coverage = float64(selling) / float64(n)
	}
	products := norm01(float64(len(c.Pipeline.Released)) / 5)

	switch p {
	case PortfolioCoverage:
		return coverage
	case PortfolioProducts:
		return products
	default:
		return (coverage + products) / 2
	}
}

// Utility scores metrics in [0,1]: each input is clamped, liquidity is normalized against
// LiquiditySaturationK and the weights are normalized by their sum.
func Utility(m Metrics, w Weights) float64 {
	w = w.Normalized()
	score := norm01(m.Share)*w.Share +
		norm01(m.Margin)*w.Margin +
		NormLiquidity(m.LiquidityK)*w.Liquidity +
		norm01(m.Portfolio)*w.Portfolio
	return norm01(score)
}

// NormLiquidity maps a cash/(debt+1) ratio onto [0,1]
func NormLiquidity(k float64) float64 {
	return norm01(k / LiquiditySaturationK)
}

// MetricsFor reads the utility inputs of a company from the state.
// Margin is last month's profit over revenue; without revenue it falls back to the unit margin.
func MetricsFor(s *simulation.State, c *simulation.Company, model PortfolioModel) Metrics {
	margin := 0.0
	if c.Last.RevenueCents > 0 {
		margin = float64(c.Last.ProfitCents) / float64(c.Last.RevenueCents)
	} else if c.ASPCents > 0 {
		margin = float64(c.ASPCents-c.UnitCostCents) / float64(c.ASPCents)
	}

	return Metrics{
		Share:      c.AverageShare(),
		Margin:     norm01(margin),
		LiquidityK: Liquidity(c),
		Portfolio:  model.Strength(s, c),
	}
}

// Liquidity is cash/(debt+1), never negative
func Liquidity(c *simulation.Company) float64 {
	k := float64(c.Cash()) / (math.Max(float64(c.DebtCents), 0) + 1)
	if math.IsNaN(k) || k < 0 {
		return 0
	}
	return k
}

func norm01(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return math.Min(math.Max(x, 0), 1)
}
