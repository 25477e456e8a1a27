package domain

import (
	"fmt"
	"strings"

	ocidigest "github.com/opencontainers/go-digest"
)

// DigestRecord is a single digest to annotate, optionally with its own EOL date.
type DigestRecord struct {
	Digest  string `json:"digest"`
	EolDate *Date  `json:"eolDate,omitempty"`
}

// EolBatch is the persisted list of digests to annotate. EolDate is the
// default applied to records without their own date.
type EolBatch struct {
	EolDate    Date           `json:"eolDate"`
	EolDigests []DigestRecord `json:"eolDigests"`
}

// NewEolBatch creates a batch holding the given digests without per-digest dates.
func NewEolBatch(eolDate Date, digests []string) *EolBatch {
	records := make([]DigestRecord, 0, len(digests))
	for _, digest := range digests {
		records = append(records, DigestRecord{Digest: digest})
	}
	return &EolBatch{EolDate: eolDate, EolDigests: records}
}

// EffectiveDate returns the record's own date when set, else the batch default.
func (b *EolBatch) EffectiveDate(record DigestRecord) Date {
	if record.EolDate != nil && !record.EolDate.IsZero() {
		return *record.EolDate
	}
	return b.EolDate
}

// Digests returns the digest values in batch order.
func (b *EolBatch) Digests() []string {
	digests := make([]string, 0, len(b.EolDigests))
	for _, record := range b.EolDigests {
		digests = append(digests, record.Digest)
	}
	return digests
}

// Validate checks the batch is safe to dispatch.
func (b *EolBatch) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: batch is empty", ErrInvalidBatch)
	}

	seen := make(map[string]struct{}, len(b.EolDigests))
	for i, record := range b.EolDigests {
		if strings.TrimSpace(record.Digest) == "" {
			return fmt.Errorf("%w: entry %d has an empty digest", ErrInvalidBatch, i)
		}
		if ocidigest.DigestRegexpAnchored.MatchString(strings.TrimSpace(record.Digest)) {
			return fmt.Errorf("%w: digest %q names no repository (expected <repo>@%s)", ErrInvalidBatch, record.Digest, record.Digest)
		}
		if _, dup := seen[record.Digest]; dup {
			return fmt.Errorf("%w: duplicate digest %q", ErrInvalidBatch, record.Digest)
		}
		seen[record.Digest] = struct{}{}

		if b.EffectiveDate(record).IsZero() {
			return fmt.Errorf("%w: digest %q has no EOL date and the batch has no default", ErrInvalidBatch, record.Digest)
		}
	}

	return nil
}

// DigestSet collects digests once each, remembering insertion order.
type DigestSet struct {
	order []string
	index map[string]struct{}
}

// NewDigestSet creates an empty set.
func NewDigestSet() *DigestSet {
	return &DigestSet{index: make(map[string]struct{})}
}

// Add inserts digest and reports whether it was new. Empty digests are ignored.
func (s *DigestSet) Add(digest string) bool {
	if digest == "" {
		return false
	}
	if _, ok := s.index[digest]; ok {
		return false
	}
	s.index[digest] = struct{}{}
	s.order = append(s.order, digest)
	return true
}

// Contains reports whether digest is in the set.
func (s *DigestSet) Contains(digest string) bool {
	_, ok := s.index[digest]
	return ok
}

// Len returns the number of digests in the set.
func (s *DigestSet) Len() int {
	return len(s.order)
}

// Values returns the digests in insertion order.
func (s *DigestSet) Values() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// QualifyReference prefixes registry to a digest reference that carries no
// registry host. References that already name a host are returned unchanged.
func QualifyReference(registry, reference string) string {
	registry = strings.TrimSuffix(strings.TrimSpace(registry), "/")
	if registry == "" {
		return reference
	}

	first, _, found := strings.Cut(reference, "/")
	if found && (strings.ContainsAny(first, ".:") || first == "localhost") {
		return reference
	}

	return registry + "/" + reference
}
