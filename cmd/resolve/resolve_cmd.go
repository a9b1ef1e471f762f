package resolve

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// NewCommand returns a new resolve command instance.
func NewCommand() *cobra.Command {
	opts := &Options{}
	cmd := &cobra.Command{
		Use:   "resolve [requests...]",
		Short: "Resolve module requests using the component convention",
		Long: `Resolve module requests the way the build pipeline would.

A request is tried as a file first. If that fails it is treated as a
component: "ui/Button" resolves to ui/Button.js next to it, or to
ui/Button/Button.js inside a directory of the same name. Extensions are
tried in priority order and the first existing file wins. Requests going
through node_modules are never treated as components.

Examples:
  compresolve resolve ui/Button
  compresolve resolve -b src -e ts,tsx 'ui/Button?inline'
  compresolve resolve -f json ui/Button ui/Card`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := opts.NewSession(cmd)
			if err != nil {
				return err
			}
			entries, err := session.ResolveAll(args)
			if err != nil {
				return err
			}
			return Write(cmd.OutOrStdout(), opts.Format, entries)
		},
	}
	AddFlags(cmd, opts)

	return cmd
}

// Write prints entries in the given format.
func Write(w io.Writer, format string, entries []Entry) error {
	if format == FormatJSON {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode results: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	}

	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s -> %s\n", e.Request, e.target()); err != nil {
			return err
		}
	}
	return nil
}

func (e Entry) target() string {
	switch {
	case !e.Found:
		return "unresolved"
	case e.Query != "":
		return e.Path + "?" + e.Query
	default:
		return e.Path
	}
}
