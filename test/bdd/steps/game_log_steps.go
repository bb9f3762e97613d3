package steps

import (
	"context"
	"fmt"
	"io"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/fabtycoon-go/internal/adapters/persistence"
	"github.com/andrescamacho/fabtycoon-go/internal/infrastructure/logging"
	"github.com/andrescamacho/fabtycoon-go/test/helpers"
)

type gameLogContext struct {
	repo   *persistence.GormGameLogRepository
	logger *logging.Logger
}

func (lc *gameLogContext) aDaemonLoggerPersistingToTheDatabase() error {
	lc.repo = persistence.NewGormGameLogRepository(helpers.SharedTestDB, nil)
	lc.logger = logging.NewWithWriter(io.Discard, "debug", "text", "daemon", nil).
		WithSink(lc.repo, func() string { return "classic_1990" })
	return nil
}

func (lc *gameLogContext) theDaemonLogsAtLevel(message, level string) error {
	if lc.logger == nil {
		return fmt.Errorf("no logger configured")
	}
	lc.logger.Log(level, message, nil)
	// sink writes are async
	lc.logger.Sync()
	return nil
}

func (lc *gameLogContext) persisted() ([]persistence.GameLogEntry, error) {
	lc.logger.Sync()
	return lc.repo.GetLogs(context.Background(), "daemon", 0, 0, nil, nil)
}

func (lc *gameLogContext) logEntriesShouldBePersisted(n int) error {
	entries, err := lc.persisted()
	if err != nil {
		return err
	}
	if len(entries) != n {
		return fmt.Errorf("expected %d persisted entries, got %d", n, len(entries))
	}
	return nil
}

func (lc *gameLogContext) thePersistedEntriesShouldInclude(message string) error {
	entries, err := lc.persisted()
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.Message == message {
			if e.ScenarioID != "classic_1990" {
				return fmt.Errorf("entry %q stored with scenario %q", message, e.ScenarioID)
			}
			return nil
		}
	}
	return fmt.Errorf("no persisted entry %q among %d entries", message, len(entries))
}

// InitializeGameLogScenario registers the log persistence steps
func InitializeGameLogScenario(sc *godog.ScenarioContext) {
	lc := &gameLogContext{}

	sc.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		lc.repo = nil
		lc.logger = nil
		return ctx, nil
	})

	sc.Step(`^a daemon logger persisting to the database$`, lc.aDaemonLoggerPersistingToTheDatabase)
	sc.Step(`^the daemon logs "([^"]*)" at level "([^"]*)"$`, lc.theDaemonLogsAtLevel)
	sc.Step(`^(\d+) log entr(?:y|ies) should be persisted$`, lc.logEntriesShouldBePersisted)
	sc.Step(`^the persisted entries should include "([^"]*)"$`, lc.thePersistedEntriesShouldInclude)
}
