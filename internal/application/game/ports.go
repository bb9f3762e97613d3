package game

import (
	"context"

	"github.com/andrescamacho/fabtycoon-go/internal/adapters/assets"
	"github.com/andrescamacho/fabtycoon-go/internal/application/game/dtos"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/planner"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/simulation"
)

// ScenarioCatalog builds new campaigns from the asset pack
type ScenarioCatalog interface {
	ScenarioIDs() []string
	Build(scenarioID, difficulty string) (*assets.Setup, error)
	PlannerFor(difficulty string) (planner.Config, error)
}

// TickEvent is what listeners receive after every successful advance
type TickEvent struct {
	Report  simulation.Report  `json:"report"`
	Summary *dtos.StateSummary `json:"summary"`
}

// TickPublisher fans tick results out to live listeners (websocket clients, metrics)
type TickPublisher interface {
	PublishTick(ctx context.Context, event TickEvent)
}

// PlannerTuner adjusts the planner configuration of a new or loaded game
type PlannerTuner func(planner.Config) planner.Config

// NopPublisher drops every event
type NopPublisher struct{}

func (NopPublisher) PublishTick(context.Context, TickEvent) {}
