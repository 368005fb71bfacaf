package app

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/networktocode/schema-enforcer/internal/config"
	"github.com/networktocode/schema-enforcer/internal/fs"
)

// Version is the current version of schema-enforcer, set at build time.
var Version = "dev"

var LongDescription = `
schema-enforcer validates structured data files and host variables against
schemas: JSON Schema documents, declarative predicate checks and typed models.
Use it in CI to keep every data file in a repository honest, and in watch mode
while editing schemas and data side by side.
`

// NewRootCmd creates the root command and wires up dependencies.
func NewRootCmd(lazy *LazyManager, ll *slog.LevelVar, stderr io.Writer, envProvider fs.EnvProvider) *cobra.Command {
	var debug bool
	var noColour bool
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "schema-enforcer",
		Short:         "Enforce schemas on structured data",
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Long:          LongDescription,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip initialization for help and completion commands
			if cmd.Name() == "help" || isCompletionCommand(cmd) {
				return nil
			}
			// Skip if already initialised (e.g., in tests)
			if lazy.HasInner() {
				if debug {
					ll.Set(slog.LevelDebug)
				}
				return nil
			}

			// 1. Setup Logging
			if debug {
				ll.Set(slog.LevelDebug)
			}

			// 2. Load Settings
			settings, err := config.Load(configPath, envProvider)
			if err != nil {
				return fmt.Errorf("configuration failed: %w", err)
			}

			logger, _, err := setupLogger(stderr, ll, settings.MainDirectory)
			if err != nil {
				logger.Warn("logging to file disabled", "error", err)
			}

			// 3. Hydrate the Lazy Wrapper
			lazy.SetInner(NewCLIManager(logger, settings))

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to settings file (overrides env/default)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")

	rootCmd.PersistentFlags().BoolVarP(&noColour, "nocolour", "c", false, "Disable colour in output")
	// Support alternate spellings
	rootCmd.PersistentFlags().BoolVar(&noColour, "nocolor", false, "")
	rootCmd.PersistentFlags().BoolVar(&noColour, "noColor", false, "")
	rootCmd.PersistentFlags().BoolVar(&noColour, "noColour", false, "")
	_ = rootCmd.PersistentFlags().MarkHidden("nocolor")
	_ = rootCmd.PersistentFlags().MarkHidden("noColor")
	_ = rootCmd.PersistentFlags().MarkHidden("noColour")

	// Subcommands
	rootCmd.AddCommand(NewValidateCmd(lazy))
	rootCmd.AddCommand(NewHostsCmd(lazy))
	rootCmd.AddCommand(NewSchemaCmd(lazy))

	return rootCmd
}

// isCompletionCommand returns true if the command or any of its parents is the "completion" command.
func isCompletionCommand(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "completion" {
			return true
		}
	}
	return false
}

// formatValue is a pflag.Value restricted to the supported output formats.
type formatValue string

func (f *formatValue) String() string {
	return string(*f)
}

func (f *formatValue) Set(s string) error {
	switch s {
	case "text", "json":
		*f = formatValue(s)
		return nil
	}
	return fmt.Errorf("invalid output format %q (text, json)", s)
}

func (f *formatValue) Type() string {
	return "string"
}
