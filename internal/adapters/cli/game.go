package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	gameCommands "github.com/andrescamacho/fabtycoon-go/internal/application/game/commands"
	"github.com/andrescamacho/fabtycoon-go/internal/application/game/dtos"
	gameQueries "github.com/andrescamacho/fabtycoon-go/internal/application/game/queries"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/capacity"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/simulation"
)

const (
	shortTimeout = 30 * time.Second
	longTimeout  = 10 * time.Minute
)

// NewResetCommand creates the reset command
func NewResetCommand() *cobra.Command {
	var (
		scenario   string
		difficulty string
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Start a new campaign",
		Long: `Replace the current game with a fresh campaign.

Without --scenario the default from 'fabtycoon config set-scenario' is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if scenario == "" {
				scenario, difficulty = userDefaultScenario(difficulty)
			}
			return withBackend(shortTimeout, func(ctx context.Context, b backend) error {
				resp, err := b.Send(ctx, &gameCommands.ResetCampaignCommand{Scenario: scenario, Difficulty: difficulty})
				if err != nil {
					return fmt.Errorf("failed to reset campaign: %w", err)
				}
				result := resp.(*gameCommands.ResetCampaignResponse)
				if outputJSON {
					return printJSON(result)
				}
				fmt.Printf("✓ New campaign %s (%s)\n", result.ScenarioName, result.Difficulty)
				displaySummary(result.Summary)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&scenario, "scenario", "", "Scenario to start")
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "Difficulty preset (easy, normal, hard)")

	return cmd
}

// NewAdvanceCommand creates the advance command
func NewAdvanceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "advance [months]",
		Short: "Advance the simulation",
		Long: `Advance the live game by a number of months (default 1).

AI companies plan on quarter boundaries; the game is autosaved whenever a
quarter boundary is crossed. The run stops early when the campaign ends.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			months := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid month count %q", args[0])
				}
				months = n
			}
			return withBackend(longTimeout, func(ctx context.Context, b backend) error {
				resp, err := b.Send(ctx, &gameCommands.AdvanceMonthsCommand{Months: months})
				if err != nil {
					return fmt.Errorf("failed to advance: %w", err)
				}
				result := resp.(*gameCommands.AdvanceMonthsResponse)
				if outputJSON {
					return printJSON(result)
				}
				displayReport(&result.Report)
				if result.Autosave != "" {
					fmt.Printf("Autosaved as %s\n", result.Autosave)
				}
				displaySummary(result.Summary)
				return nil
			})
		},
	}
	return cmd
}

// NewSummaryCommand creates the summary command
func NewSummaryCommand() *cobra.Command {
	var fingerprint bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the current state of the world",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(shortTimeout, func(ctx context.Context, b backend) error {
				resp, err := b.Send(ctx, &gameQueries.GetStateSummaryQuery{WithFingerprint: fingerprint})
				if err != nil {
					return fmt.Errorf("failed to get summary: %w", err)
				}
				summary := resp.(*dtos.StateSummary)
				if outputJSON {
					return printJSON(summary)
				}
				displaySummary(summary)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&fingerprint, "fingerprint", false, "Include the state fingerprint")

	return cmd
}

// NewOverrideCommand creates the override command
func NewOverrideCommand() *cobra.Command {
	var (
		priceDelta  float64
		rdDelta     int64
		foundry     string
		wafers      int64
		duration    int
		waferPrice  int64
		takeOrPay   float64
		billing     string
		leadTime    int
		tapeoutNode string
		tapeoutName string
		perfIndex   float64
		dieArea     float64
		expedite    bool
	)

	cmd := &cobra.Command{
		Use:   "override",
		Short: "Apply player decisions to the current month",
		Long: `Apply one or more player decisions. All parts are validated first and
either all apply or none do.

Examples:
  fabtycoon override --price-delta -0.05
  fabtycoon override --rd-delta 5000000
  fabtycoon override --foundry tsmc --wafers 500 --duration 12 --wafer-price 250000
  fabtycoon override --tapeout N600 --name "Chip 2" --expedite`,
		RunE: func(cmd *cobra.Command, args []string) error {
			command := &gameCommands.SubmitOverrideCommand{}
			flags := cmd.Flags()
			if flags.Changed("price-delta") {
				command.PriceDeltaFrac = &priceDelta
			}
			if flags.Changed("rd-delta") {
				command.RDDeltaCents = &rdDelta
			}
			if flags.Changed("wafers") {
				command.Capacity = &simulation.CapacityRequest{
					FoundryID:          foundry,
					WafersPerMonth:     wafers,
					DurationMonths:     duration,
					PricePerWaferCents: waferPrice,
					Billing:            capacity.BillingModel(billing),
				}
				if flags.Changed("take-or-pay") {
					command.Capacity.TakeOrPayFrac = &takeOrPay
				}
				if flags.Changed("lead-time") {
					command.Capacity.LeadTimeMonths = &leadTime
				}
			}
			if tapeoutNode != "" {
				command.Tapeout = &simulation.TapeoutRequest{
					Name:       tapeoutName,
					TechNodeID: tapeoutNode,
					PerfIndex:  perfIndex,
					DieAreaMM2: dieArea,
					Expedite:   expedite,
				}
			}
			if command.PriceDeltaFrac == nil && command.RDDeltaCents == nil && command.Capacity == nil && command.Tapeout == nil {
				return fmt.Errorf("nothing to override: set at least one of --price-delta, --rd-delta, --wafers or --tapeout")
			}

			return withBackend(shortTimeout, func(ctx context.Context, b backend) error {
				resp, err := b.Send(ctx, command)
				if err != nil {
					return fmt.Errorf("override rejected: %w", err)
				}
				result := resp.(*gameCommands.SubmitOverrideResponse)
				if outputJSON {
					return printJSON(result)
				}
				if result.Result.CampaignTerminal {
					fmt.Println("Campaign has ended; nothing was applied")
					return nil
				}
				for _, a := range result.Result.Applied {
					fmt.Printf("✓ %s\n", a.Decision)
				}
				displaySummary(result.Summary)
				return nil
			})
		},
	}

	cmd.Flags().Float64Var(&priceDelta, "price-delta", 0, "Relative price change, e.g. -0.05")
	cmd.Flags().Int64Var(&rdDelta, "rd-delta", 0, "Monthly R&D budget change in cents")
	cmd.Flags().StringVar(&foundry, "foundry", "", "Foundry to contract")
	cmd.Flags().Int64Var(&wafers, "wafers", 0, "Wafers per month to contract")
	cmd.Flags().IntVar(&duration, "duration", 0, "Contract duration in months (0 uses the default)")
	cmd.Flags().Int64Var(&waferPrice, "wafer-price", 0, "Price per wafer in cents (0 uses the node cost)")
	cmd.Flags().Float64Var(&takeOrPay, "take-or-pay", 0, "Take-or-pay fraction")
	cmd.Flags().StringVar(&billing, "billing", "", "Billing model: flat or usage")
	cmd.Flags().IntVar(&leadTime, "lead-time", 0, "Months before the capacity comes online")
	cmd.Flags().StringVar(&tapeoutNode, "tapeout", "", "Tech node of a new tape-out")
	cmd.Flags().StringVar(&tapeoutName, "name", "", "Product name of the tape-out")
	cmd.Flags().Float64Var(&perfIndex, "perf", 0, "Performance index of the tape-out (0 keeps the current one)")
	cmd.Flags().Float64Var(&dieArea, "die-area", 0, "Die area in mm² (0 keeps the current die)")
	cmd.Flags().BoolVar(&expedite, "expedite", false, "Pay to expedite the tape-out")

	return cmd
}

// NewRecommendCommand creates the recommend command
func NewRecommendCommand() *cobra.Command {
	var company string

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Ask the planner what it would do this quarter",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(longTimeout, func(ctx context.Context, b backend) error {
				resp, err := b.Send(ctx, &gameQueries.GetRecommendationQuery{CompanyID: company})
				if err != nil {
					return fmt.Errorf("failed to plan: %w", err)
				}
				result := resp.(*gameQueries.GetRecommendationResponse)
				if outputJSON {
					return printJSON(result)
				}
				fmt.Printf("\nRECOMMENDATION for %s (%s)\n", result.CompanyID, result.Month)
				fmt.Println(rule)
				for _, d := range result.Decisions {
					fmt.Printf("  Now:   %s\n", d)
				}
				for i, d := range result.Path {
					fmt.Printf("  Q+%d:   %s\n", i, d)
				}
				fmt.Println(rule)
				fmt.Printf("Expected score: %.4f (%d plans evaluated)\n", result.ExpectedScore, result.Evaluated)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&company, "company", "", "Company to plan for (default: the player)")

	return cmd
}

// NewExportCommand creates the export command
func NewExportCommand() *cobra.Command {
	var (
		months int
		format string
		path   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a dry-run timeline of the player",
		Long: `Simulate forward on a copy of the world and export the player's monthly
rows as CSV or JSON. The live game is not advanced.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(longTimeout, func(ctx context.Context, b backend) error {
				resp, err := b.Send(ctx, &gameQueries.ExportTimelineQuery{Months: months, Format: format, Path: path})
				if err != nil {
					return fmt.Errorf("failed to export: %w", err)
				}
				result := resp.(*gameQueries.ExportTimelineResponse)
				if outputJSON {
					return printJSON(result)
				}
				if result.Path == "" {
					_, err := os.Stdout.Write(result.Content)
					return err
				}
				fmt.Printf("✓ Exported %d rows (%s to %s) to %s\n", result.Rows, result.From, result.To, result.Path)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&months, "months", 12, "Months to simulate")
	cmd.Flags().StringVar(&format, "format", "", "csv or json (default: from the file extension)")
	cmd.Flags().StringVar(&path, "path", "", "Output file (default: print to stdout)")

	return cmd
}

// userDefaultScenario reads the scenario preference; an empty scenario lets the server decide
func userDefaultScenario(difficulty string) (string, string) {
	h, err := newUserConfigHandler()
	if err != nil {
		return "", difficulty
	}
	cfg, err := h.Load()
	if err != nil || cfg.DefaultScenario == "" {
		return "", difficulty
	}
	if difficulty == "" {
		difficulty = cfg.DefaultDifficulty
	}
	return cfg.DefaultScenario, difficulty
}

func displayReport(r *simulation.Report) {
	fmt.Printf("\nAdvanced %d month(s): %s → %s\n", r.Months, r.StartMonth, r.EndMonth)
	for _, id := range r.Fired {
		fmt.Printf("  ⚡ Event: %s\n", id)
	}
	for _, id := range r.Released {
		fmt.Printf("  ✓ Released: %s\n", id)
	}
	if verbose {
		for _, d := range r.Diagnostics {
			fmt.Printf("  ! %s %s %s: %s\n", d.Month, d.CompanyID, d.Kind, d.Message)
		}
	}
	if r.CampaignTerminal {
		fmt.Printf("Campaign finished: %s\n", r.CampaignStatus)
	}
}

func displaySummary(s *dtos.StateSummary) {
	if s == nil {
		return
	}
	fmt.Printf("\n%s · %s (month %d)\n", s.ScenarioID, s.Date, s.MonthIndex)
	fmt.Println(rule)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Company\tCash\tASP\tUnit Cost\tShare\tRevenue\tProfit")
	fmt.Fprintln(w, "───────\t────\t───\t─────────\t─────\t───────\t──────")
	for _, c := range s.Companies {
		name := c.Name
		if !c.AI {
			name += " *"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			name,
			formatCents(c.CashCents),
			formatCents(c.ASPCents),
			formatCents(c.UnitCostCents),
			formatPercent(c.Share),
			formatCents(c.RevenueCents),
			formatAmount(c.ProfitCents),
		)
	}
	w.Flush()

	if len(s.Pipeline) > 0 {
		fmt.Println("\nPIPELINE")
		for _, t := range s.Pipeline {
			fmt.Printf("  %-20s %-6s ready %s %s\n", t.Name, t.TechNodeID, t.ReadyAt, t.Status)
		}
	}
	if len(s.Contracts) > 0 {
		fmt.Println("\nCONTRACTS")
		for _, k := range s.Contracts {
			fmt.Printf("  %-12s %6d wafers/mo @ %s  %s to %s\n",
				k.FoundryID, k.WafersPerMonth, formatCents(k.PricePerWaferCents), k.Start, k.End)
		}
	}
	if s.Campaign != nil {
		fmt.Printf("\nCAMPAIGN %s (%s), ends %s\n", s.Campaign.Status, s.Campaign.Difficulty, s.Campaign.End)
		for _, g := range s.Campaign.Goals {
			mark := " "
			if g.Done {
				mark = "✓"
			}
			fmt.Printf("  [%s] %-40s %5s  by %s\n", mark, g.Description, formatPercent(g.Progress), g.Deadline)
		}
		if s.Campaign.Reason != "" {
			fmt.Printf("  %s\n", s.Campaign.Reason)
		}
	}
	if s.Tutorial != nil {
		fmt.Printf("\nTUTORIAL %d/%d: %s\n  Hint: %s\n", s.Tutorial.Step, s.Tutorial.Total, s.Tutorial.Desc, s.Tutorial.Hint)
	}
	if s.Fingerprint != "" {
		fmt.Printf("\nFingerprint: %s\n", s.Fingerprint)
	}
	fmt.Println(rule)
}
