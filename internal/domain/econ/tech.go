package econ

import (
	"fmt"
	"math"
)

// TechNode is a fabrication process node. Static reference data.
type TechNode struct {
	ID               string   `json:"id"`
	YearAvailable    int      `json:"year_available"`
	WaferCostCents   int64    `json:"wafer_cost_cents"`
	MaskSetCostCents int64    `json:"mask_set_cost_cents"`
	YieldBaseline    float64  `json:"yield_baseline"`
	PerfIndex        float64  `json:"perf_index"`
	LeadTimeMonths   int      `json:"lead_time_months"`
	Dependencies     []string `json:"dependencies,omitempty"`
}

// AvailableIn reports whether the node can be used for tape-outs in the given year
func (n *TechNode) AvailableIn(year int) bool {
	return year >= n.YearAvailable
}

// CostConfig holds the wafer geometry assumptions used by the cost model
type CostConfig struct {
	UsableDieAreaMM2  float64 `json:"usable_die_area_mm2"`
	YieldOverheadFrac float64 `json:"yield_overhead_frac"`
}

// DefaultCostConfig matches a 300mm wafer with edge exclusion
func DefaultCostConfig() CostConfig {
	return CostConfig{
		UsableDieAreaMM2:  6200,
		YieldOverheadFrac: 0.05,
	}
}

// GoodDiesPerWafer returns the sellable dies per wafer after yield and overhead derating
func GoodDiesPerWafer(node *TechNode, dieAreaMM2 float64, cfg CostConfig) (float64, error) {
	if dieAreaMM2 <= 0 {
		return 0, fmt.Errorf("die area must be > 0, got %v", dieAreaMM2)
	}
	if cfg.UsableDieAreaMM2 <= 0 {
		cfg = DefaultCostConfig()
	}

	gross := math.Floor(cfg.UsableDieAreaMM2 / dieAreaMM2)
	good := gross * node.YieldBaseline * (1 - cfg.YieldOverheadFrac)
	if good <= 0 {
		return 0, fmt.Errorf("node %s yields no good dies at %v mm2", node.ID, dieAreaMM2)
	}
	return good, nil
}

// UnitCost returns the per-unit manufacturing cost in cents: wafer cost spread over
// good dies plus the mask set amortized over volumeUnits.
func UnitCost(node *TechNode, dieAreaMM2 float64, volumeUnits int64, cfg CostConfig) (int64, error) {
	good, err := GoodDiesPerWafer(node, dieAreaMM2, cfg)
	if err != nil {
		return 0, err
	}
	if volumeUnits < 1 {
		volumeUnits = 1
	}

	waferPart := float64(node.WaferCostCents) / good
	maskPart := float64(node.MaskSetCostCents) / float64(volumeUnits)
	return int64(math.Ceil(waferPart + maskPart)), nil
}
