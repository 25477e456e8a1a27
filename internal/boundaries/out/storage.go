package out

import (
	"context"
	"io"

	"github.com/bnema/eolkeeper/internal/domain"
)

// CatalogLoader reads image-info snapshots.
type CatalogLoader interface {
	LoadCatalog(path string) (*domain.Catalog, error)
}

// BatchStore reads and writes persisted EOL batches.
type BatchStore interface {
	LoadBatch(path string) (*domain.EolBatch, error)
	SaveBatch(path string, batch *domain.EolBatch) error
	// WriteBatch writes batch to w in the same format SaveBatch persists.
	WriteBatch(w io.Writer, batch *domain.EolBatch) error
}

// HistoryRecorder journals digest outcomes of a dispatch run.
type HistoryRecorder interface {
	Record(ctx context.Context, runID string, result domain.DigestResult) error
}

// HistoryReader reads back journaled outcomes.
type HistoryReader interface {
	// Failures returns the failed digests of runID, ErrRunNotFound if the run is unknown.
	Failures(ctx context.Context, runID string) ([]domain.DigestResult, error)
}
