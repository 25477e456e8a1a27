package annotate

import (
	"sort"
	"sync"
	"time"

	"github.com/bnema/eolkeeper/internal/domain"
)

// Ledger collects failed annotations from concurrent workers. It is owned by
// a single Annotate call.
type Ledger struct {
	mu      sync.Mutex
	entries map[string]domain.Date
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{entries: make(map[string]domain.Date)}
}

// Append records a failed digest with its effective date. A digest is kept
// once; the first recorded date wins.
func (l *Ledger) Append(digest string, date domain.Date) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.entries[digest]; ok {
		return false
	}
	l.entries[digest] = date
	return true
}

// Len returns the number of failed digests.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Flush returns the failures as a batch dated now that can be resubmitted
// as-is, or nil when nothing failed. Records are ordered by digest.
func (l *Ledger) Flush(now time.Time) *domain.EolBatch {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) == 0 {
		return nil
	}

	digests := make([]string, 0, len(l.entries))
	for digest := range l.entries {
		digests = append(digests, digest)
	}
	sort.Strings(digests)

	batch := &domain.EolBatch{
		EolDate:    domain.DateOf(now),
		EolDigests: make([]domain.DigestRecord, 0, len(digests)),
	}
	for _, digest := range digests {
		date := l.entries[digest]
		batch.EolDigests = append(batch.EolDigests, domain.DigestRecord{Digest: digest, EolDate: &date})
	}

	return batch
}
