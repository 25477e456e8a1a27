// Package history rebuilds re-run batches from journaled dispatch runs.
package history

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bnema/eolkeeper/internal/boundaries/out"
	"github.com/bnema/eolkeeper/internal/domain"
	"github.com/bnema/eolkeeper/internal/usecase/annotate"
)

// Service implements the history use case.
type Service struct {
	reader out.HistoryReader
	log    *log.Logger
	now    func() time.Time
}

// NewService creates a new history service.
func NewService(reader out.HistoryReader, logger *log.Logger) *Service {
	return &Service{
		reader: reader,
		log:    logger.WithPrefix("history"),
		now:    time.Now,
	}
}

// RerunBatch returns the failed digests of runID in the same shape the
// dispatcher logs after a run, or nil when the run had no failures.
func (s *Service) RerunBatch(ctx context.Context, runID string) (*domain.EolBatch, error) {
	failures, err := s.reader.Failures(ctx, runID)
	if err != nil {
		return nil, err
	}

	ledger := annotate.NewLedger()
	for _, f := range failures {
		ledger.Append(f.Digest, f.EolDate)
	}

	s.log.Info("failed digests found", "run", runID, "digests", ledger.Len())
	return ledger.Flush(s.now()), nil
}
