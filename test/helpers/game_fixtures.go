package helpers

import (
	"testing"

	"github.com/andrescamacho/fabtycoon-go/internal/adapters/assets"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/planner"
)

// LoadPack loads the embedded asset pack or fails the test
func LoadPack(t *testing.T) *assets.Pack {
	t.Helper()
	pack, err := assets.LoadEmbedded()
	if err != nil {
		t.Fatalf("failed to load embedded assets: %v", err)
	}
	return pack
}

// FastPlanner shrinks the search so tests that tick through quarter boundaries stay quick
func FastPlanner(cfg planner.Config) planner.Config {
	cfg.Months = 6
	cfg.BeamWidth = 2
	cfg.Parallelism = 2
	return cfg
}
