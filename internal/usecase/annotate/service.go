// Package annotate implements the EOL annotation use case: every digest of a
// batch is annotated concurrently and failures are collected into a batch that
// can be resubmitted.
package annotate

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/bnema/eolkeeper/internal/boundaries/out"
	"github.com/bnema/eolkeeper/internal/domain"
)

// Config holds dispatch tuning.
type Config struct {
	// Concurrency bounds in-flight digests. Zero or less means one per CPU.
	Concurrency int
}

// Service implements the annotate use case.
type Service struct {
	credentials out.CredentialProvider
	session     out.RegistrySession
	annotator   out.Annotator
	history     out.HistoryRecorder
	concurrency int
	log         *log.Logger
	now         func() time.Time
	newRunID    func() string
}

// NewService creates a new annotate service. history may be nil.
func NewService(
	credentials out.CredentialProvider,
	session out.RegistrySession,
	annotator out.Annotator,
	history out.HistoryRecorder,
	cfg Config,
	logger *log.Logger,
) *Service {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	return &Service{
		credentials: credentials,
		session:     session,
		annotator:   annotator,
		history:     history,
		concurrency: concurrency,
		log:         logger.WithPrefix("annotate"),
		now:         time.Now,
		newRunID:    uuid.NewString,
	}
}

type counters struct {
	annotated atomic.Int64
	skipped   atomic.Int64
	failed    atomic.Int64
}

// Annotate applies the EOL annotation to every digest of batch. Individual
// failures never stop the batch; they are returned as report.Rerun together
// with an error wrapping domain.ErrAnnotationFailures.
func (s *Service) Annotate(ctx context.Context, batch *domain.EolBatch, opts domain.AnnotateOptions) (domain.AnnotateReport, error) {
	var report domain.AnnotateReport
	if err := batch.Validate(); err != nil {
		return report, err
	}

	creds, err := s.credentials.GetCredentials(ctx, opts.Registry)
	if err != nil {
		return report, fmt.Errorf("failed to get credentials for registry %q: %w", opts.Registry, err)
	}
	if creds == nil {
		return report, fmt.Errorf("%w: %s", domain.ErrNoCredentials, opts.Registry)
	}

	session, annotator := s.session, s.annotator
	if opts.DryRun {
		session = dryRunSession{log: s.log}
		annotator = dryRunAnnotator{next: s.annotator, log: s.log}
	}

	report.RunID = s.newRunID()
	logger := s.log.With("run", report.RunID)

	if err := session.Login(ctx, creds, opts.Registry); err != nil {
		return report, fmt.Errorf("failed to log in to registry %q: %w", opts.Registry, err)
	}
	defer func() {
		if logoutErr := session.Logout(context.WithoutCancel(ctx), opts.Registry); logoutErr != nil {
			logger.Warn("failed to log out of registry", "registry", opts.Registry, "err", logoutErr)
		}
	}()

	logger.Info("annotating EOL digests",
		"digests", len(batch.EolDigests),
		"eolDate", batch.EolDate.String(),
		"noCheck", opts.SkipIdempotencyCheck,
		"dryRun", opts.DryRun,
		"concurrency", s.concurrency,
	)

	ledger := NewLedger()
	var stats counters

	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for _, record := range batch.EolDigests {
		g.Go(func() error {
			w := worker{
				annotator: annotator,
				history:   s.history,
				ledger:    ledger,
				stats:     &stats,
				log:       logger,
				runID:     report.RunID,
				opts:      opts,
			}
			w.process(ctx, record, batch.EffectiveDate(record))
			return nil
		})
	}
	// Workers record failures in the ledger and always return nil.
	_ = g.Wait()

	report.Annotated = int(stats.annotated.Load())
	report.Skipped = int(stats.skipped.Load())
	report.Failed = int(stats.failed.Load())

	logger.Info("EOL annotation finished",
		"annotated", report.Annotated,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)

	report.Rerun = ledger.Flush(s.now())
	if report.Rerun == nil {
		return report, nil
	}

	rerunJSON, err := json.Marshal(report.Rerun)
	if err != nil {
		return report, fmt.Errorf("failed to encode rerun batch: %w", err)
	}
	logger.Info("JSON for rerunning failed annotations:")
	logger.Info(string(rerunJSON))

	return report, fmt.Errorf("%w: %d of %d digests failed", domain.ErrAnnotationFailures, len(report.Rerun.EolDigests), len(batch.EolDigests))
}

// worker processes one digest.
type worker struct {
	annotator out.Annotator
	history   out.HistoryRecorder
	ledger    *Ledger
	stats     *counters
	log       *log.Logger
	runID     string
	opts      domain.AnnotateOptions
}

func (w worker) process(ctx context.Context, record domain.DigestRecord, date domain.Date) {
	result := domain.DigestResult{Digest: record.Digest, EolDate: date}
	logger := w.log.With("digest", record.Digest)

	defer func() {
		if r := recover(); r != nil {
			result.Outcome = domain.OutcomeFailed
			result.Error = fmt.Sprintf("panic: %v", r)
			w.ledger.Append(record.Digest, date)
			logger.Error("annotation panicked", "panic", r)
		}
		w.count(result.Outcome)
		w.record(ctx, logger, result)
	}()

	reference := domain.QualifyReference(w.opts.Registry, record.Digest)

	if !w.opts.SkipIdempotencyCheck {
		annotated, err := w.annotator.IsAnnotated(ctx, reference)
		if err != nil {
			w.fail(logger, &result, fmt.Errorf("lifecycle lookup: %w", err))
			return
		}
		if annotated {
			logger.Info("digest is already annotated for EOL")
			result.Outcome = domain.OutcomeAlreadyAnnotated
			return
		}
	}

	logger.Info("annotating EOL for digest", "eolDate", date.String())
	if err := w.annotator.Annotate(ctx, reference, date); err != nil {
		w.fail(logger, &result, err)
		return
	}

	result.Outcome = domain.OutcomeAnnotated
	logger.Info("digest annotated for EOL", "eolDate", date.String())
}

func (w worker) fail(logger *log.Logger, result *domain.DigestResult, err error) {
	result.Outcome = domain.OutcomeFailed
	result.Error = err.Error()
	w.ledger.Append(result.Digest, result.EolDate)
	logger.Error("failed to annotate EOL for digest", "err", err)
}

func (w worker) count(outcome domain.AnnotationOutcome) {
	switch outcome {
	case domain.OutcomeAnnotated:
		w.stats.annotated.Add(1)
	case domain.OutcomeAlreadyAnnotated:
		w.stats.skipped.Add(1)
	case domain.OutcomeFailed:
		w.stats.failed.Add(1)
	}
}

func (w worker) record(ctx context.Context, logger *log.Logger, result domain.DigestResult) {
	if w.history == nil || w.opts.DryRun {
		return
	}
	if err := w.history.Record(ctx, w.runID, result); err != nil {
		logger.Warn("failed to record annotation outcome", "err", err)
	}
}
