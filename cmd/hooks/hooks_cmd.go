package hooks

import (
	"fmt"
	"io"
	"strings"

	"github.com/LegacyCodeHQ/compresolve/cmd/resolve"
	"github.com/LegacyCodeHQ/compresolve/pipeline"
	"github.com/spf13/cobra"
)

// NewCommand returns a new hooks command instance.
func NewCommand() *cobra.Command {
	opts := &resolve.Options{}
	cmd := &cobra.Command{
		Use:   "hooks",
		Short: "List the resolution pipeline hooks and their steps",
		Long: `List the hooks of the resolution pipeline in the order requests flow
through them, with the steps registered on each hook and the hooks each
one may hand requests to.

Examples:
  compresolve hooks`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := opts.NewSession(cmd)
			if err != nil {
				return err
			}
			return writeHooks(cmd.OutOrStdout(), session.Pipeline)
		},
	}
	resolve.AddFlags(cmd, opts)

	return cmd
}

func writeHooks(w io.Writer, p *pipeline.Pipeline) error {
	hooks, err := p.Hooks()
	if err != nil {
		return err
	}

	for _, hook := range hooks {
		line := fmt.Sprintf("%s [%s]", hook.Name, strings.Join(hook.Taps, ", "))
		next, err := p.Successors(hook.Name)
		if err != nil {
			return err
		}
		if len(next) > 0 {
			line += " -> " + strings.Join(next, ", ")
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
