package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	gameCommands "github.com/andrescamacho/fabtycoon-go/internal/application/game/commands"
	gameQueries "github.com/andrescamacho/fabtycoon-go/internal/application/game/queries"
)

// NewSaveCommand creates the save command
func NewSaveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save [name]",
		Short: "Save the current game",
		Long: `Save the current game. Without a name the save is called manual-YYYYMM
after the current game month.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			command := &gameCommands.SaveGameCommand{}
			if len(args) == 1 {
				command.Name = args[0]
			}
			return withBackend(shortTimeout, func(ctx context.Context, b backend) error {
				resp, err := b.Send(ctx, command)
				if err != nil {
					return fmt.Errorf("failed to save: %w", err)
				}
				result := resp.(*gameCommands.SaveGameResponse)
				if outputJSON {
					return printJSON(result)
				}
				fmt.Printf("✓ Saved %s at %s\n", result.Name, result.Month)
				fmt.Printf("  ID:          %s\n", result.SaveID)
				fmt.Printf("  Fingerprint: %s\n", result.Fingerprint)
				return nil
			})
		},
	}
	return cmd
}

// NewLoadCommand creates the load command
func NewLoadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <save-id>",
		Short: "Replace the current game with a saved one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(shortTimeout, func(ctx context.Context, b backend) error {
				resp, err := b.Send(ctx, &gameCommands.LoadGameCommand{SaveID: args[0]})
				if err != nil {
					return fmt.Errorf("failed to load: %w", err)
				}
				result := resp.(*gameCommands.LoadGameResponse)
				if outputJSON {
					return printJSON(result)
				}
				fmt.Printf("✓ Loaded %s\n", result.Name)
				displaySummary(result.Summary)
				return nil
			})
		},
	}
	return cmd
}

// NewSavesCommand creates the saves command
func NewSavesCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "saves",
		Short: "List saved games, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(shortTimeout, func(ctx context.Context, b backend) error {
				resp, err := b.Send(ctx, &gameQueries.ListSavesQuery{IncludeAutosaves: all})
				if err != nil {
					return fmt.Errorf("failed to list saves: %w", err)
				}
				result := resp.(*gameQueries.ListSavesResponse)
				if outputJSON {
					return printJSON(result)
				}
				displaySaves(result.Saves)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include autosaves")

	return cmd
}

func displaySaves(saves []gameQueries.SaveInfo) {
	if len(saves) == 0 {
		fmt.Println("No saves found")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tName\tScenario\tMonth\tStatus\tSaved At")
	fmt.Fprintln(w, "──\t────\t────────\t─────\t──────\t────────")
	for _, s := range saves {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			s.ID,
			s.Name,
			s.ScenarioID,
			s.Month,
			s.Status,
			s.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		)
	}
	w.Flush()
}
