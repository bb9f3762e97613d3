package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/fabtycoon-go/internal/domain/campaign"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/econ"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/planner"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
)

//go:embed data/*.yaml data/scenarios/*.yaml
var embedded embed.FS

// Pack is a validated set of game data: markets, tech tree, difficulty presets, AI
// defaults and campaign scenarios
type Pack struct {
	Segments     []econ.Segment
	TechNodes    []econ.TechNode
	Difficulties map[string]campaign.Difficulty
	Planner      planner.Config
	scenarios    map[string]scenarioDoc
}

// LoadEmbedded loads the pack compiled into the binary
func LoadEmbedded() (*Pack, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// Load reads a pack laid out as markets.yaml, tech.yaml, difficulty.yaml, ai_defaults.yaml
// and scenarios/*.yaml
func Load(fsys fs.FS) (*Pack, error) {
	var markets marketsDoc
	if err := decode(fsys, "markets.yaml", &markets); err != nil {
		return nil, err
	}
	var tech techDoc
	if err := decode(fsys, "tech.yaml", &tech); err != nil {
		return nil, err
	}
	var diff difficultyDoc
	if err := decode(fsys, "difficulty.yaml", &diff); err != nil {
		return nil, err
	}
	var ai aiDoc
	if err := decode(fsys, "ai_defaults.yaml", &ai); err != nil {
		return nil, err
	}

	p := &Pack{
		Difficulties: make(map[string]campaign.Difficulty),
		scenarios:    make(map[string]scenarioDoc),
	}

	for _, d := range markets.Segments {
		seg, err := d.toDomain()
		if err != nil {
			return nil, fmt.Errorf("markets.yaml: %w", err)
		}
		p.Segments = append(p.Segments, seg)
	}
	for _, d := range tech.Nodes {
		p.TechNodes = append(p.TechNodes, d.toDomain())
	}
	if err := econ.ValidateCatalog(p.TechNodes, p.Segments); err != nil {
		return nil, fmt.Errorf("invalid asset catalog: %w", err)
	}

	for _, d := range diff.Presets {
		preset := d.toDomain()
		if err := preset.Validate(); err != nil {
			return nil, fmt.Errorf("difficulty.yaml: %w", err)
		}
		if _, dup := p.Difficulties[preset.ID]; dup {
			return nil, fmt.Errorf("difficulty.yaml: duplicate preset %s", preset.ID)
		}
		p.Difficulties[preset.ID] = preset
	}

	plannerCfg, err := ai.toDomain()
	if err != nil {
		return nil, fmt.Errorf("ai_defaults.yaml: %w", err)
	}
	p.Planner = plannerCfg

	files, err := fs.Glob(fsys, "scenarios/*.yaml")
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		var sc scenarioDoc
		if err := decode(fsys, f, &sc); err != nil {
			return nil, err
		}
		if sc.ID == "" {
			sc.ID = strings.TrimSuffix(path.Base(f), ".yaml")
		}
		if _, dup := p.scenarios[sc.ID]; dup {
			return nil, fmt.Errorf("%s: duplicate scenario id %s", f, sc.ID)
		}
		p.scenarios[sc.ID] = sc
	}

	// building every scenario once surfaces bad dates and references at load time
	for _, id := range p.ScenarioIDs() {
		if _, err := p.Build(id, ""); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", id, err)
		}
	}
	return p, nil
}

// ScenarioIDs lists the scenarios in the pack, sorted
func (p *Pack) ScenarioIDs() []string {
	ids := make([]string, 0, len(p.scenarios))
	for id := range p.scenarios {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Difficulty returns a preset by id; the empty id is "normal"
func (p *Pack) Difficulty(id string) (campaign.Difficulty, error) {
	if id == "" {
		id = "normal"
	}
	if d, ok := p.Difficulties[id]; ok {
		return d, nil
	}
	if id == "normal" {
		return campaign.Normal(), nil
	}
	return campaign.Difficulty{}, fmt.Errorf("unknown difficulty: %s", id)
}

func decode(fsys fs.FS, name string, out interface{}) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

func (d segmentDTO) toDomain() (econ.Segment, error) {
	epoch, err := shared.ParseMonth(d.Epoch)
	if err != nil {
		return econ.Segment{}, fmt.Errorf("segment %s: %w", d.ID, err)
	}
	mode, err := econ.ParseShockMode(d.ShockMode)
	if err != nil {
		return econ.Segment{}, fmt.Errorf("segment %s: %w", d.ID, err)
	}
	return econ.Segment{
		ID:              d.ID,
		Name:            d.Name,
		Epoch:           epoch,
		BaseDemandUnits: d.BaseDemandUnits,
		BaseASPCents:    d.BaseASPCents,
		Elasticity:      d.Elasticity,
		AnnualTrend:     d.AnnualTrend,
		ShockMode:       mode,
	}, nil
}

func (d techNodeDTO) toDomain() econ.TechNode {
	return econ.TechNode{
		ID:               d.ID,
		YearAvailable:    d.YearAvailable,
		WaferCostCents:   d.WaferCostCents,
		MaskSetCostCents: d.MaskSetCostCents,
		YieldBaseline:    d.YieldBaseline,
		PerfIndex:        d.PerfIndex,
		LeadTimeMonths:   d.LeadTimeMonths,
		Dependencies:     d.Dependencies,
	}
}

func (d difficultyDTO) toDomain() campaign.Difficulty {
	return campaign.Difficulty{
		ID:                      d.ID,
		CashMultiplier:          d.CashMultiplier,
		MinMarginFrac:           d.MinMarginFrac,
		PriceEpsilonFrac:        d.PriceEpsilonFrac,
		TakeOrPayFrac:           d.TakeOrPayFrac,
		GrowthMultiplier:        d.GrowthMultiplier,
		EventSeverityMultiplier: d.EventSeverityMultiplier,
	}
}

func (d aiDoc) toDomain() (planner.Config, error) {
	portfolio, err := planner.ParsePortfolioModel(d.Planner.Portfolio)
	if err != nil {
		return planner.Config{}, err
	}
	cfg := planner.Config{
		Weights: planner.Weights{
			Share:     d.Weights.Share,
			Margin:    d.Weights.Margin,
			Liquidity: d.Weights.Liquidity,
			Portfolio: d.Weights.Portfolio,
		},
		BeamWidth:          d.Planner.BeamWidth,
		Months:             d.Planner.Months,
		QuarterStep:        d.Planner.QuarterStep,
		Discount:           d.Planner.Discount,
		PriceStepFrac:      d.Planner.PriceStepFrac,
		CapacityStepWafers: d.Planner.CapacityStepWafers,
		RDStepCents:        d.Planner.RDStepCents,
		Portfolio:          portfolio,
		Parallelism:        d.Planner.Parallelism,
		Tactics: planner.Tactics{
			ShareDropDelta:           d.Tactics.ShareDropDelta,
			PriceEpsilonFrac:         d.Tactics.PriceEpsilonFrac,
			MinMarginFrac:            d.Tactics.MinMarginFrac,
			ShortageRaiseThreshold:   d.Tactics.ShortageRaiseThreshold,
			ShortageRaiseEpsilonFrac: d.Tactics.ShortageRaiseEpsilonFrac,
			CashLiquidityFloorK:      d.Tactics.CashLiquidityFloorK,
			RDBoostFrac:              d.Tactics.RDBoostFrac,
			RDCutFrac:                d.Tactics.RDCutFrac,
		},
	}
	if err := cfg.Validate(); err != nil {
		return planner.Config{}, err
	}
	return cfg, nil
}
