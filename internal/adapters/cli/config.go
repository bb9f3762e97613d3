package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/fabtycoon-go/internal/infrastructure/config"
)

// newUserConfigHandler is swapped in tests
var newUserConfigHandler = config.NewUserConfigHandler

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage FabTycoon configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (FT_* prefix)
2. Config file (config.yaml)
3. Default values

User preferences (default scenario) are stored in ~/.fabtycoon/config.json

Examples:
  fabtycoon config show
  fabtycoon config set-scenario classic_1990 --difficulty hard
  fabtycoon config clear`,
	}

	// Add subcommands
	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetScenarioCommand())
	cmd.AddCommand(newConfigClearCommand())

	return cmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load system config
			cfg, err := config.LoadConfig("")
			if err != nil {
				fmt.Printf("Warning: Failed to load config: %v\n", err)
				fmt.Println("Using default configuration.")
				cfg = config.LoadConfigOrDefault("")
			}

			// Load user config
			userConfigHandler, err := newUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}

			userCfg, err := userConfigHandler.Load()
			if err != nil {
				fmt.Printf("Warning: Failed to load user config: %v\n\n", err)
				userCfg = &config.UserConfig{}
			}

			// Display configuration
			fmt.Println("FabTycoon Configuration")
			fmt.Println("=======================")

			fmt.Println("User Preferences:")
			fmt.Printf("  Config file:      %s\n", userConfigHandler.GetConfigPath())
			if userCfg.DefaultScenario != "" {
				fmt.Printf("  Scenario:         %s (%s)\n", userCfg.DefaultScenario, orDefault(userCfg.DefaultDifficulty))
			} else {
				fmt.Printf("  Scenario:         (not set)\n")
			}

			fmt.Println("\nDatabase:")
			fmt.Printf("  Type:             %s\n", cfg.Database.Type)
			switch {
			case cfg.Database.URL != "":
				fmt.Printf("  URL:              %s\n", maskPassword(cfg.Database.URL))
			case cfg.Database.Type == "sqlite":
				fmt.Printf("  Path:             %s\n", cfg.Database.Path)
			default:
				fmt.Printf("  Host:             %s\n", cfg.Database.Host)
				fmt.Printf("  Port:             %d\n", cfg.Database.Port)
				fmt.Printf("  Database:         %s\n", cfg.Database.Name)
				fmt.Printf("  User:             %s\n", cfg.Database.User)
			}
			fmt.Printf("  Max Connections:  %d\n", cfg.Database.Pool.MaxOpen)
			fmt.Printf("  Query Logging:    %s\n", cfg.Database.LogLevel)

			fmt.Println("\nSimulation:")
			fmt.Printf("  Scenario:         %s (%s)\n", cfg.Simulation.DefaultScenario, orDefault(cfg.Simulation.DefaultDifficulty))
			fmt.Printf("  Autosave Slots:   %d\n", cfg.Simulation.AutosaveSlots)
			fmt.Printf("  Resume Latest:    %t\n", cfg.Simulation.ResumeLatest)

			fmt.Println("\nDaemon:")
			fmt.Printf("  Socket Path:      %s\n", cfg.Daemon.SocketPath)
			fmt.Printf("  Shutdown Timeout: %s\n", cfg.Daemon.ShutdownTimeout)
			fmt.Printf("  Rate Limit:       %.0f req/s (burst: %d)\n", cfg.RateLimit.Requests, cfg.RateLimit.Burst)
			if cfg.Schedule.AutoPlay != "" {
				fmt.Printf("  Auto-play:        %s (%d months)\n", cfg.Schedule.AutoPlay, cfg.Schedule.AutoPlayMonths)
			}

			fmt.Println("\nLogging:")
			fmt.Printf("  Level:            %s\n", cfg.Logging.Level)
			fmt.Printf("  Format:           %s\n", cfg.Logging.Format)
			fmt.Printf("  Output:           %s\n", cfg.Logging.Output)

			return nil
		},
	}

	return cmd
}

// newConfigSetScenarioCommand creates the config set-scenario subcommand
func newConfigSetScenarioCommand() *cobra.Command {
	var difficulty string

	cmd := &cobra.Command{
		Use:   "set-scenario <scenario>",
		Short: "Set the default scenario",
		Long: `Set the scenario (and optionally the difficulty) used by 'fabtycoon reset'
and by --local when no save exists yet.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch difficulty {
			case "", "easy", "normal", "hard":
			default:
				return fmt.Errorf("unknown difficulty %q: use easy, normal or hard", difficulty)
			}

			userConfigHandler, err := newUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}
			if err := userConfigHandler.SetDefaultScenario(args[0], difficulty); err != nil {
				return fmt.Errorf("failed to set default scenario: %w", err)
			}

			fmt.Println("✓ Default scenario set successfully")
			fmt.Printf("  Scenario:   %s\n", args[0])
			fmt.Printf("  Difficulty: %s\n", orDefault(difficulty))
			return nil
		},
	}

	cmd.Flags().StringVar(&difficulty, "difficulty", "", "Difficulty preset (easy, normal, hard)")

	return cmd
}

// newConfigClearCommand creates the config clear subcommand
func newConfigClearCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear user preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			userConfigHandler, err := newUserConfigHandler()
			if err != nil {
				return fmt.Errorf("failed to create user config handler: %w", err)
			}

			if err := userConfigHandler.Clear(); err != nil {
				return fmt.Errorf("failed to clear user config: %w", err)
			}

			fmt.Println("✓ User preferences cleared")
			return nil
		},
	}

	return cmd
}

func orDefault(difficulty string) string {
	if difficulty == "" {
		return "scenario default"
	}
	return difficulty
}

// maskPassword masks passwords in connection strings for display
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); !ok {
		return raw
	}
	u.User = url.UserPassword(u.User.Username(), "xxxxx")
	return u.String()
}
