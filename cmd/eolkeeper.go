// Package cmd starts the eolkeeper CLI.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bnema/eolkeeper/internal/adapters/in/cli"
	"github.com/bnema/eolkeeper/internal/app"
)

// ExecuteCLI runs the root command and exits non-zero on any error.
func ExecuteCLI(version, commit, date string) {
	if version != "" {
		cli.SetVersionInfo(version, commit, date)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCmd(app.Build).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
