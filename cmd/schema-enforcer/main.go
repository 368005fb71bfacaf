package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/networktocode/schema-enforcer/internal/app"
)

func main() {
	// Create context that cancels on SIGINT (Ctrl+C) or SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := app.Run(ctx, os.Args, os.Stdout, os.Stderr, nil)
	stop()
	//nolint:gocritic // os.Exit is intentional
	os.Exit(app.ExitCode(err))
}
