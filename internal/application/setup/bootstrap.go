package setup

import (
	"context"
	"fmt"

	gameCommands "github.com/andrescamacho/fabtycoon-go/internal/application/game/commands"
	gameQueries "github.com/andrescamacho/fabtycoon-go/internal/application/game/queries"
	"github.com/andrescamacho/fabtycoon-go/internal/application/mediator"
)

// StartResult tells how the live game was started
type StartResult struct {
	Resumed  bool
	SaveName string
	Scenario string
	Month    string
}

// StartGame puts a game into the session: the newest completed save when resume is set and
// one exists, a fresh campaign of scenario otherwise
func StartGame(ctx context.Context, m mediator.Mediator, resume bool, scenario, difficulty string) (*StartResult, error) {
	if resume {
		resp, err := m.Send(ctx, &gameQueries.ListSavesQuery{IncludeAutosaves: true})
		if err != nil {
			return nil, fmt.Errorf("failed to list saves: %w", err)
		}
		// saves are listed newest first
		for _, s := range resp.(*gameQueries.ListSavesResponse).Saves {
			if s.Status != "done" {
				continue
			}
			loaded, err := m.Send(ctx, &gameCommands.LoadGameCommand{SaveID: s.ID})
			if err != nil {
				return nil, fmt.Errorf("failed to resume save %s: %w", s.Name, err)
			}
			out := loaded.(*gameCommands.LoadGameResponse)
			return &StartResult{Resumed: true, SaveName: out.Name, Scenario: out.Summary.ScenarioID, Month: out.Summary.Date}, nil
		}
	}

	resp, err := m.Send(ctx, &gameCommands.ResetCampaignCommand{Scenario: scenario, Difficulty: difficulty})
	if err != nil {
		return nil, fmt.Errorf("failed to start scenario %s: %w", scenario, err)
	}
	out := resp.(*gameCommands.ResetCampaignResponse)
	return &StartResult{Scenario: out.Summary.ScenarioID, Month: out.Summary.Date}, nil
}
