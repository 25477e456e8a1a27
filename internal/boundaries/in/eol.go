// Package in defines input ports (interfaces) for use cases.
package in

import (
	"context"

	"github.com/bnema/eolkeeper/internal/domain"
)

// ReconcileService computes the digests retired between two releases.
type ReconcileService interface {
	// Generate diffs oldInfo against newInfo and returns the batch of digests to retire.
	Generate(ctx context.Context, oldInfo, newInfo *domain.Catalog, opts domain.ReconcileOptions) (*domain.EolBatch, domain.ReconcileSummary, error)
}

// AnnotateService applies EOL annotations to a batch of digests.
type AnnotateService interface {
	// Annotate processes every digest of the batch and reports failures as a re-runnable batch.
	Annotate(ctx context.Context, batch *domain.EolBatch, opts domain.AnnotateOptions) (domain.AnnotateReport, error)
}

// HistoryService exposes journaled dispatch runs.
type HistoryService interface {
	// RerunBatch rebuilds a batch from the failed digests of a recorded run.
	RerunBatch(ctx context.Context, runID string) (*domain.EolBatch, error)
}
