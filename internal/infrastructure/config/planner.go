package config

import (
	"github.com/andrescamacho/fabtycoon-go/internal/domain/planner"
)

// PlannerConfig overrides the AI planner preset of a scenario. Zero values keep the preset.
type PlannerConfig struct {
	BeamWidth     int     `mapstructure:"beam_width" validate:"min=0"`
	HorizonMonths int     `mapstructure:"horizon_months" validate:"min=0"`
	Parallelism   int     `mapstructure:"parallelism" validate:"min=0"`
	Discount      float64 `mapstructure:"discount" validate:"min=0,max=1"`
	Portfolio     string  `mapstructure:"portfolio" validate:"omitempty,oneof=coverage products blended"`

	Weights WeightsConfig `mapstructure:"weights"`
}

// WeightsConfig overrides the utility weights. All four must be set to take effect.
type WeightsConfig struct {
	Share     float64 `mapstructure:"share" validate:"min=0"`
	Margin    float64 `mapstructure:"margin" validate:"min=0"`
	Liquidity float64 `mapstructure:"liquidity" validate:"min=0"`
	Portfolio float64 `mapstructure:"portfolio" validate:"min=0"`
}

func (w WeightsConfig) set() bool {
	return w.Share+w.Margin+w.Liquidity+w.Portfolio > 0
}

// Tune applies the overrides to a planner configuration. It is used as the
// game.PlannerTuner of new and loaded campaigns.
func (p PlannerConfig) Tune(cfg planner.Config) planner.Config {
	if p.BeamWidth > 0 {
		cfg.BeamWidth = p.BeamWidth
	}
	if p.HorizonMonths > 0 {
		cfg.Months = p.HorizonMonths
	}
	if p.Parallelism > 0 {
		cfg.Parallelism = p.Parallelism
	}
	if p.Discount > 0 {
		cfg.Discount = p.Discount
	}
	if p.Portfolio != "" {
		cfg.Portfolio = planner.PortfolioModel(p.Portfolio)
	}
	if p.Weights.set() {
		cfg.Weights = planner.Weights{
			Share:     p.Weights.Share,
			Margin:    p.Weights.Margin,
			Liquidity: p.Weights.Liquidity,
			Portfolio: p.Weights.Portfolio,
		}
	}
	return cfg
}
