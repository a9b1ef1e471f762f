package cmd

import (
	"os"

	"github.com/LegacyCodeHQ/compresolve/cmd/hooks"
	"github.com/LegacyCodeHQ/compresolve/cmd/resolve"
	"github.com/LegacyCodeHQ/compresolve/cmd/watch"
	"github.com/spf13/cobra"
)

// version is set via build-time ldflags
var version = "dev"

// buildDate is set via build-time ldflags
var buildDate = "unknown"

// commit is set via build-time ldflags
var commit = "unknown"

// rootCmd represents the base command when called without any subcommands
var rootCmd = NewRootCommand()

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compresolve",
		Short: "Resolve component-style module requests",
		Long: `compresolve resolves module requests using the component convention,
where a directory and the file inside it share a name (Button/Button.js).

It runs the same resolution step a build pipeline would, so you can check
what a request resolves to, and which extension wins, without running a
build.

Use 'compresolve <command> --help' for details about a command.`,
		Version:      version,
		SilenceUsage: true,
		Annotations:  map[string]string{"buildDate": buildDate, "commit": commit},
	}

	cmd.AddCommand(resolve.NewCommand())
	cmd.AddCommand(hooks.NewCommand())
	cmd.AddCommand(watch.NewCommand())

	// Customize version template to show additional build info
	cmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
Build date: {{printf "%s" (index .Annotations "buildDate")}}
Commit: {{printf "%s" (index .Annotations "commit")}}
`)
	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
