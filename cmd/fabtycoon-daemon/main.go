package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/andrescamacho/fabtycoon-go/internal/adapters/assets"
	"github.com/andrescamacho/fabtycoon-go/internal/adapters/grpc"
	"github.com/andrescamacho/fabtycoon-go/internal/adapters/metrics"
	"github.com/andrescamacho/fabtycoon-go/internal/adapters/persistence"
	"github.com/andrescamacho/fabtycoon-go/internal/adapters/stream"
	"github.com/andrescamacho/fabtycoon-go/internal/application/game"
	gameCommands "github.com/andrescamacho/fabtycoon-go/internal/application/game/commands"
	gameQueries "github.com/andrescamacho/fabtycoon-go/internal/application/game/queries"
	"github.com/andrescamacho/fabtycoon-go/internal/application/mediator"
	"github.com/andrescamacho/fabtycoon-go/internal/application/setup"
	"github.com/andrescamacho/fabtycoon-go/internal/infrastructure/config"
	"github.com/andrescamacho/fabtycoon-go/internal/infrastructure/database"
	"github.com/andrescamacho/fabtycoon-go/internal/infrastructure/logging"
	"github.com/andrescamacho/fabtycoon-go/internal/infrastructure/pidfile"
	"github.com/andrescamacho/fabtycoon-go/internal/infrastructure/scheduler"
)

// Set with -ldflags "-X main.version=... -X main.commit=... -X main.date=..."
var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	// Parse command-line flags
	forceFlag := flag.Bool("force", false, "Kill any existing daemon and start a new one")
	configPath := flag.String("config", "", "Path to config.yaml (default: search ./, ./configs, /etc/fabtycoon)")
	flag.Parse()

	fmt.Printf("FabTycoon Daemon %s\n", version)
	fmt.Println("======================")

	// Load configuration
	fmt.Println("Loading configuration...")
	cfg := config.MustLoadConfig(*configPath)

	// Acquire PID file lock to prevent multiple instances
	fmt.Printf("Acquiring PID file lock: %s\n", cfg.Daemon.PIDFile)
	pf := pidfile.New(cfg.Daemon.PIDFile)

	if err := pf.Acquire(); err != nil {
		var running *pidfile.AlreadyRunningError
		if !errors.As(err, &running) || !*forceFlag {
			log.Fatalf("Failed to acquire PID file lock: %v\nUse --force to kill the existing daemon", err)
		}

		// Force mode: kill existing daemon and try again
		fmt.Printf("Force mode enabled - stopping daemon with PID %d...\n", running.PID)
		if err := pf.KillExisting(cfg.Daemon.ShutdownTimeout); err != nil {
			log.Fatalf("Failed to kill existing daemon: %v", err)
		}
		if err := pf.Acquire(); err != nil {
			log.Fatalf("Failed to acquire PID file lock after killing existing daemon: %v", err)
		}
	}

	defer func() {
		if err := pf.Release(); err != nil {
			log.Printf("Warning: failed to release PID file: %v", err)
		}
	}()
	fmt.Println("PID file lock acquired")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Printf("Fatal error: %v", err)
		pf.Release()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	// 1. Database
	fmt.Printf("Connecting to %s database...\n", cfg.Database.Type)
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	fmt.Println("Database connected")

	// 2. Logger, optionally persisting warnings to game_logs
	session := game.NewSession()
	logger, err := logging.New(cfg.Logging, "daemon")
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()
	slog.SetDefault(logger.Slog())
	if cfg.Logging.Persist {
		logger = logger.WithSink(persistence.NewGormGameLogRepository(db, nil), func() string {
			if view, err := session.View(); err == nil {
				return view.ScenarioID
			}
			return ""
		})
	}

	// 3. Metrics
	var middlewares []mediator.Middleware
	var financial *metrics.FinancialMetricsCollector
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()

		commandCollector := metrics.NewCommandMetricsCollector()
		simulationCollector := metrics.NewSimulationMetricsCollector()
		rpcCollector := metrics.NewRPCMetricsCollector()
		for _, r := range []interface{ Register() error }{commandCollector, simulationCollector, rpcCollector} {
			if err := r.Register(); err != nil {
				return fmt.Errorf("failed to register metrics: %w", err)
			}
		}
		metrics.SetGlobalSimulationCollector(simulationCollector)
		metrics.SetGlobalRPCCollector(rpcCollector)
		middlewares = append(middlewares, metrics.PrometheusMiddleware(commandCollector))
		fmt.Printf("Metrics enabled on %s:%d%s\n", cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path)
	}

	// 4. Game content, live-state push and the mediator
	pack, err := assets.LoadEmbedded()
	if err != nil {
		return fmt.Errorf("failed to load game content: %w", err)
	}

	hub := stream.NewHub(logger)
	var publisher game.TickPublisher = game.NopPublisher{}
	if cfg.Stream.Enabled {
		publisher = hub
	}

	registry := setup.NewHandlerRegistry(session, persistence.NewGormSaveRepository(db), pack, setup.Options{
		Publisher:     publisher,
		Tune:          cfg.Planner.Tune,
		AutosaveSlots: cfg.Simulation.AutosaveSlots,
		BuildInfo:     gameQueries.BuildInfo{Version: version, Commit: commit, Date: date},
	})
	middlewares = append(middlewares,
		setup.RateLimitMiddleware(rate.NewLimiter(rate.Limit(cfg.RateLimit.Requests), cfg.RateLimit.Burst)),
		setup.LoggerMiddleware(logger),
	)
	med, err := registry.CreateConfiguredMediator(middlewares...)
	if err != nil {
		return fmt.Errorf("failed to configure mediator: %w", err)
	}

	if cfg.Metrics.Enabled {
		financial = metrics.NewFinancialMetricsCollector(med, logger)
		if err := financial.Register(); err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
	}

	// 5. Start or resume the game
	started, err := setup.StartGame(ctx, med, cfg.Simulation.ResumeLatest, cfg.Simulation.DefaultScenario, cfg.Simulation.DefaultDifficulty)
	if err != nil {
		return fmt.Errorf("failed to start game: %w", err)
	}
	if started.Resumed {
		fmt.Printf("Resumed %s (%s, %s)\n", started.SaveName, started.Scenario, started.Month)
	} else {
		fmt.Printf("New campaign %s at %s\n", started.Scenario, started.Month)
	}

	// 6. Daemon server
	socketPath := cfg.Daemon.SocketPath
	if err := os.MkdirAll(filepath.Dir(socketPath), 0755); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}
	daemonServer, err := grpc.NewDaemonServer(med, logger, socketPath)
	if err != nil {
		return fmt.Errorf("failed to create daemon server: %w", err)
	}
	fmt.Printf("Daemon listening on: %s\n", socketPath)

	// 7. Scheduler
	sched := scheduler.NewScheduler(ctx, med, logger)
	if err := sched.RegisterAll(cfg.Schedule); err != nil {
		return fmt.Errorf("failed to configure scheduler: %w", err)
	}
	sched.Start()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return daemonServer.Serve(gctx, cfg.Daemon.ShutdownTimeout)
	})
	if cfg.Stream.Enabled {
		g.Go(func() error {
			hub.Run(gctx)
			return nil
		})
		g.Go(func() error {
			return stream.Serve(gctx, hub, cfg.Stream)
		})
		fmt.Printf("Streaming ticks on ws://%s%s\n", cfg.Stream.Address, cfg.Stream.Path)
	}
	if cfg.Metrics.Enabled {
		financial.Start(gctx, cfg.Metrics.PollInterval)
		g.Go(func() error {
			return metrics.Serve(gctx, cfg.Metrics)
		})
	}

	fmt.Println("\n✓ Daemon is ready to accept connections")
	fmt.Println("Press Ctrl+C to stop")

	err = g.Wait()

	// 8. Shutdown
	sched.Stop()
	if financial != nil {
		financial.Stop()
	}
	if cfg.Daemon.SaveOnExit {
		saveCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		resp, saveErr := med.Send(saveCtx, &gameCommands.SaveGameCommand{})
		cancel()
		if saveErr != nil {
			logger.Log("ERROR", "Failed to save on exit", map[string]interface{}{"error": saveErr.Error()})
		} else {
			fmt.Printf("Saved %s\n", resp.(*gameCommands.SaveGameResponse).Name)
		}
	}

	if err != nil {
		return fmt.Errorf("daemon server error: %w", err)
	}
	fmt.Println("\nDaemon stopped")
	return nil
}
