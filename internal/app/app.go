// Package app is the composition root: it turns configuration into the
// adapters and use cases behind the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/bnema/eolkeeper/internal/adapters/in/cli"
	"github.com/bnema/eolkeeper/internal/adapters/out/credentials"
	"github.com/bnema/eolkeeper/internal/adapters/out/docker"
	"github.com/bnema/eolkeeper/internal/adapters/out/filesystem"
	historystore "github.com/bnema/eolkeeper/internal/adapters/out/history"
	"github.com/bnema/eolkeeper/internal/adapters/out/oras"
	"github.com/bnema/eolkeeper/internal/adapters/out/process"
	"github.com/bnema/eolkeeper/internal/boundaries/out"
	"github.com/bnema/eolkeeper/internal/config"
	"github.com/bnema/eolkeeper/internal/domain"
	"github.com/bnema/eolkeeper/internal/usecase/annotate"
	historysvc "github.com/bnema/eolkeeper/internal/usecase/history"
	"github.com/bnema/eolkeeper/internal/usecase/reconcile"
	"github.com/bnema/eolkeeper/pkg/logger"
)

// LogOutput receives all log lines. Command results go to stdout.
var LogOutput io.Writer = os.Stderr

// Build loads the configuration and wires the CLI runtime.
func Build(ctx context.Context, opts cli.GlobalOptions) (*cli.Runtime, error) {
	cfg, err := config.Load(config.Options{ConfigFile: opts.ConfigFile})
	if err != nil {
		return nil, err
	}

	level := opts.LogLevel
	if level == "" {
		level = cfg.Log.Level
	}
	l, err := logger.New(LogOutput, level)
	if err != nil {
		return nil, fmt.Errorf("%w: --log-level: %v", domain.ErrInvalidConfig, err)
	}

	return Wire(ctx, cfg, l)
}

// Wire creates the adapters and use cases for cfg.
func Wire(_ context.Context, cfg *config.Config, l *log.Logger) (*cli.Runtime, error) {
	var closers []func() error
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}

	runner := process.NewRetryingRunner(
		process.NewRateLimitedRunner(
			process.NewExecRunner(cfg.Annotate.CommandTimeout, l),
			cfg.Annotate.RateLimit, cfg.Annotate.RateBurst, l,
		),
		process.RetryPolicy{
			MaxRetries:      cfg.Annotate.Retries,
			InitialInterval: cfg.Annotate.RetryInitialInterval,
			MaxInterval:     cfg.Annotate.RetryMaxInterval,
		},
		l,
	)
	orasClient := oras.NewClient(runner, oras.Config{
		Path:          cfg.Oras.Path,
		ArtifactType:  cfg.Oras.ArtifactType,
		AnnotationKey: cfg.Oras.AnnotationKey,
	}, l)

	var (
		session out.RegistrySession      = orasClient
		host    out.HostPlatformProvider = docker.RuntimePlatform{}
	)
	if cfg.Docker.Enabled {
		daemon, err := docker.NewDaemon(cfg.Docker.Host, l)
		if err != nil {
			return nil, err
		}
		closers = append(closers, daemon.Close)
		session = docker.NewCheckedSession(daemon, orasClient)
		host = daemon
	}

	var (
		recorder out.HistoryRecorder
		reader   out.HistoryReader = disabledHistory{}
	)
	if cfg.History.Enabled {
		store, err := historystore.Open(cfg.History.Path, l)
		if err != nil {
			_ = closeAll()
			return nil, err
		}
		closers = append(closers, store.Close)
		recorder, reader = store, store
	}

	creds := credentials.NewStaticProvider(credentials.Entry{
		Username: cfg.Registry.Username,
		Password: cfg.Registry.Password,
	})

	return &cli.Runtime{
		Reconcile: reconcile.NewService(l),
		Annotate:  annotate.NewService(creds, session, orasClient, recorder, annotate.Config{Concurrency: cfg.Annotate.Concurrency}, l),
		History:   historysvc.NewService(reader, l),
		Catalogs:  filesystem.NewCatalogLoader(l),
		Batches:   filesystem.NewBatchStore(l),
		Host:      host,
		Registry:  cfg.Registry.Address,
		Close:     closeAll,
	}, nil
}

type disabledHistory struct{}

func (disabledHistory) Failures(context.Context, string) ([]domain.DigestResult, error) {
	return nil, fmt.Errorf("%w: history is disabled (history.enabled=false)", domain.ErrInvalidConfig)
}
