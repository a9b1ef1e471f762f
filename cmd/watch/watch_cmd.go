package watch

import (
	"os"
	"os/signal"

	"github.com/LegacyCodeHQ/compresolve/cmd/resolve"
	"github.com/spf13/cobra"
)

// NewCommand returns a new watch command instance.
func NewCommand() *cobra.Command {
	opts := &resolve.Options{}
	cmd := &cobra.Command{
		Use:   "watch [requests...]",
		Short: "Resolve requests and re-resolve them when files appear or disappear",
		Long: `Resolve requests, then keep watching the base directory and print the
results again whenever a file or directory is created, removed or renamed
and the outcome changes. Content changes are ignored since resolution only
depends on which files exist.

Examples:
  compresolve watch -b src ui/Button ui/Card`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := opts.NewSession(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return watchAndResolve(ctx, session, args, opts.Format, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	resolve.AddFlags(cmd, opts)

	return cmd
}
