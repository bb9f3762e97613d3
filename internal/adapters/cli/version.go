package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	gameQueries "github.com/andrescamacho/fabtycoon-go/internal/application/game/queries"
)

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show build information",
		Long: `Show the version of this binary, or of the running daemon with --remote.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !remote {
				info := BuildInfo
				if info.Version == "" {
					info.Version = "dev"
				}
				fmt.Printf("fabtycoon %s (commit %s, built %s)\n", info.Version, info.Commit, info.Date)
				return nil
			}
			return withBackend(shortTimeout, func(ctx context.Context, b backend) error {
				resp, err := b.Send(ctx, &gameQueries.GetBuildInfoQuery{})
				if err != nil {
					return fmt.Errorf("failed to get build info: %w", err)
				}
				info := resp.(*gameQueries.GetBuildInfoResponse)
				if outputJSON {
					return printJSON(info)
				}
				fmt.Printf("fabtycoon-daemon %s (commit %s, built %s, %s)\n", info.Version, info.Commit, info.Date, info.GoVersion)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "Ask the daemon instead")

	return cmd
}
