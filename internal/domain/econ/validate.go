package econ

import (
	"fmt"
	"math"
	"strings"

	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
)

const (
	minSupportedYear = 1970
	maxSupportedYear = 2100
)

// ValidateTechNode checks a single node's static invariants
func ValidateTechNode(n *TechNode) error {
	if strings.TrimSpace(n.ID) == "" {
		return shared.NewValidationError("tech_node.id", "id cannot be empty")
	}
	if n.YearAvailable < minSupportedYear || n.YearAvailable > maxSupportedYear {
		return shared.NewValidationError("tech_node."+n.ID+".year_available",
			fmt.Sprintf("year %d is out of supported range [%d, %d]", n.YearAvailable, minSupportedYear, maxSupportedYear))
	}
	if math.IsNaN(n.YieldBaseline) || n.YieldBaseline < 0 || n.YieldBaseline > 1 {
		return shared.NewValidationError("tech_node."+n.ID+".yield_baseline", "yield must be within [0,1]")
	}
	if n.WaferCostCents < 0 || n.MaskSetCostCents < 0 {
		return shared.NewValidationError("tech_node."+n.ID, "negative monetary value is invalid")
	}
	if n.LeadTimeMonths < 0 {
		return shared.NewValidationError("tech_node."+n.ID+".lead_time_months", "lead time cannot be negative")
	}
	return nil
}

// ValidateSegment checks a single segment's invariants
func ValidateSegment(s *Segment) error {
	if strings.TrimSpace(s.ID) == "" {
		return shared.NewValidationError("segment.id", "id cannot be empty")
	}
	if math.IsNaN(s.Elasticity) || math.IsInf(s.Elasticity, 0) {
		return shared.NewValidationError("segment."+s.ID+".elasticity", "non-finite numeric value encountered")
	}
	if s.Elasticity >= 0 {
		return shared.NewValidationError("segment."+s.ID+".elasticity", "price elasticity must be < 0")
	}
	if s.BaseDemandUnits < 0 || s.BaseASPCents <= 0 {
		return shared.NewValidationError("segment."+s.ID, "base demand must be >= 0 and base ASP > 0")
	}
	if s.ShockMode != "" && !s.ShockMode.IsValid() {
		return shared.NewValidationError("segment."+s.ID+".shock_mode", fmt.Sprintf("invalid shock mode: %s", s.ShockMode))
	}
	return nil
}

// ValidateCatalog validates every node and segment plus the cross references between nodes
func ValidateCatalog(nodes []TechNode, segments []Segment) error {
	ids := make(map[string]bool, len(nodes))
	for i := range nodes {
		if err := ValidateTechNode(&nodes[i]); err != nil {
			return err
		}
		if ids[nodes[i].ID] {
			return shared.NewValidationError("tech_node."+nodes[i].ID, "duplicate id")
		}
		ids[nodes[i].ID] = true
	}
	for i := range nodes {
		for _, dep := range nodes[i].Dependencies {
			if !ids[dep] {
				return shared.NewValidationError("tech_node."+nodes[i].ID+".dependencies",
					fmt.Sprintf("dependency not found: %s", dep))
			}
		}
	}

	segIDs := make(map[string]bool, len(segments))
	for i := range segments {
		if err := ValidateSegment(&segments[i]); err != nil {
			return err
		}
		if segIDs[segments[i].ID] {
			return shared.NewValidationError("segment."+segments[i].ID, "duplicate id")
		}
		segIDs[segments[i].ID] = true
	}
	return nil
}

// ValidateDieArea checks a product die area
func ValidateDieArea(areaMM2 float64) error {
	if math.IsNaN(areaMM2) || areaMM2 <= 0 {
		return shared.NewValidationError("die_area_mm2", "die area must be > 0")
	}
	return nil
}
