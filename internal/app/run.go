// Package app wires the CLI commands to the validation engine.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/networktocode/schema-enforcer/internal/fs"
)

func Run(ctx context.Context, args []string, stdout, stderr io.Writer, envProvider fs.EnvProvider) error {
	logLevel := &slog.LevelVar{}
	logLevel.Set(slog.LevelInfo)

	// Local lazy instance ensures t.Parallel() safety
	lazy := &LazyManager{}

	if envProvider == nil {
		envProvider = fs.NewEnvProvider()
	}

	rootCmd := NewRootCmd(lazy, logLevel, stderr, envProvider)
	rootCmd.SetArgs(args[1:]) // Skip the program name
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Print error to stderr for script tests and CLI users (SilenceErrors is set)
		if !errors.Is(err, ErrChecksFailed) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return err
	}

	return nil
}
