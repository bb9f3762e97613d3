package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/fabtycoon-go/internal/adapters/assets"
	daemon "github.com/andrescamacho/fabtycoon-go/internal/adapters/grpc"
	"github.com/andrescamacho/fabtycoon-go/internal/adapters/persistence"
	"github.com/andrescamacho/fabtycoon-go/internal/application/common"
	"github.com/andrescamacho/fabtycoon-go/internal/application/game"
	gameCommands "github.com/andrescamacho/fabtycoon-go/internal/application/game/commands"
	"github.com/andrescamacho/fabtycoon-go/internal/application/setup"
	"github.com/andrescamacho/fabtycoon-go/internal/infrastructure/config"
	"github.com/andrescamacho/fabtycoon-go/internal/infrastructure/database"
	"github.com/andrescamacho/fabtycoon-go/internal/infrastructure/logging"
)

// backend sends requests either to the daemon or to an in-process mediator
type backend interface {
	Send(ctx context.Context, request common.Request) (common.Response, error)
	Close() error
}

// openBackend picks the backend from the global flags; tests replace it
var openBackend = func(ctx context.Context) (backend, error) {
	if localMode {
		return newLocalBackend(ctx)
	}
	return daemon.NewDaemonClient(socketPath)
}

// withBackend runs fn against the selected backend with a bounded context
func withBackend(timeout time.Duration, fn func(ctx context.Context, b backend) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	b, err := openBackend(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to daemon: %w", err)
	}
	defer b.Close()

	return fn(ctx, b)
}

// localBackend hosts a whole game in the CLI process. Mutations are followed by a save so the
// next invocation continues where this one stopped.
type localBackend struct {
	mediator common.Mediator
	db       *gorm.DB
	logger   *logging.Logger
	dirty    bool
}

func newLocalBackend(ctx context.Context) (*localBackend, error) {
	cfg, err := config.LoadConfig("")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	logger := logging.NewWithWriter(os.Stderr, level, cfg.Logging.Format, "cli", nil)

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		database.Close(db)
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	pack, err := assets.LoadEmbedded()
	if err != nil {
		database.Close(db)
		return nil, err
	}

	registry := setup.NewHandlerRegistry(game.NewSession(), persistence.NewGormSaveRepository(db), pack, setup.Options{
		Tune:          cfg.Planner.Tune,
		AutosaveSlots: cfg.Simulation.AutosaveSlots,
		BuildInfo:     BuildInfo,
	})
	med, err := registry.CreateConfiguredMediator(setup.LoggerMiddleware(logger))
	if err != nil {
		database.Close(db)
		return nil, fmt.Errorf("failed to configure mediator: %w", err)
	}

	scenario, difficulty := defaultScenario(cfg)
	if _, err := setup.StartGame(ctx, med, true, scenario, difficulty); err != nil {
		database.Close(db)
		return nil, err
	}
	return &localBackend{mediator: med, db: db, logger: logger}, nil
}

func (b *localBackend) Send(ctx context.Context, request common.Request) (common.Response, error) {
	resp, err := b.mediator.Send(ctx, request)
	if err == nil && common.IsMutation(request) {
		b.dirty = true
	}
	return resp, err
}

func (b *localBackend) Close() error {
	if b.dirty {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := b.mediator.Send(ctx, &gameCommands.SaveGameCommand{}); err != nil {
			b.logger.Log("ERROR", "Failed to save local game", map[string]interface{}{"error": err.Error()})
		}
	}
	b.logger.Close()
	return database.Close(b.db)
}

// defaultScenario resolves the scenario for new games: user preferences first, then config
func defaultScenario(cfg *config.Config) (string, string) {
	scenario, difficulty := cfg.Simulation.DefaultScenario, cfg.Simulation.DefaultDifficulty
	if h, err := newUserConfigHandler(); err == nil {
		if user, err := h.Load(); err == nil && user.DefaultScenario != "" {
			scenario, difficulty = user.DefaultScenario, user.DefaultDifficulty
		}
	}
	return scenario, difficulty
}
