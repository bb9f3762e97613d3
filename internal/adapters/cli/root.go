package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	gameQueries "github.com/andrescamacho/fabtycoon-go/internal/application/game/queries"
)

var (
	// Global flags
	socketPath string
	localMode  bool
	outputJSON bool
	verbose    bool

	// BuildInfo is stamped by the binary at startup
	BuildInfo gameQueries.BuildInfo
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fabtycoon",
		Short: "FabTycoon CLI - run a semiconductor company month by month",
		Long: `FabTycoon CLI drives a campaign hosted by the daemon over its Unix socket,
or in-process with --local (the game then resumes from the newest save and is
saved again after every change).

Examples:
  fabtycoon reset --scenario classic_1990 --difficulty normal
  fabtycoon advance 3
  fabtycoon summary
  fabtycoon override --price-delta -0.05 --rd-delta 1000000
  fabtycoon override --tapeout N600 --expedite
  fabtycoon recommend
  fabtycoon export --months 24 --path timeline.csv
  fabtycoon saves --all
  fabtycoon ledger report profit-loss --start 1990-01 --end 1990-12`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", getDefaultSocketPath(),
		"Path to daemon Unix socket")
	rootCmd.PersistentFlags().BoolVar(&localMode, "local", false,
		"Run the game in-process instead of talking to the daemon")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false,
		"Print raw JSON responses")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output")

	// Add command groups
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewResetCommand())
	rootCmd.AddCommand(NewAdvanceCommand())
	rootCmd.AddCommand(NewSummaryCommand())
	rootCmd.AddCommand(NewOverrideCommand())
	rootCmd.AddCommand(NewRecommendCommand())
	rootCmd.AddCommand(NewExportCommand())
	rootCmd.AddCommand(NewSaveCommand())
	rootCmd.AddCommand(NewLoadCommand())
	rootCmd.AddCommand(NewSavesCommand())
	rootCmd.AddCommand(NewLedgerCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// getDefaultSocketPath returns the default socket path
func getDefaultSocketPath() string {
	if path := os.Getenv("FABTYCOON_SOCKET"); path != "" {
		return path
	}
	return "/tmp/fabtycoon-daemon.sock"
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
