package filesystem

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/bnema/eolkeeper/internal/domain"
)

// BatchStore reads and writes EOL digest batches as JSON files.
type BatchStore struct {
	log *log.Logger
}

// NewBatchStore creates a new filesystem batch store.
func NewBatchStore(logger *log.Logger) *BatchStore {
	return &BatchStore{log: logger.WithPrefix("filesystem")}
}

// LoadBatch reads and validates the batch at path.
func (s *BatchStore) LoadBatch(path string) (*domain.EolBatch, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: EOL digests list path is required", domain.ErrInvalidBatch)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", domain.ErrInvalidBatch, path, err)
	}

	var batch domain.EolBatch
	if err := decodeJSON(data, &batch); err != nil {
		return nil, fmt.Errorf("%w: unable to deserialize %s: %v", domain.ErrInvalidBatch, path, err)
	}
	if err := batch.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	s.log.Debug("EOL batch loaded", "path", path, "digests", len(batch.EolDigests))
	return &batch, nil
}

// SaveBatch writes batch to path atomically, indented, with absent dates omitted.
func (s *BatchStore) SaveBatch(path string, batch *domain.EolBatch) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("EOL digests output path is required")
	}

	data, err := EncodeBatch(batch)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".eol-digests-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write EOL batch: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close EOL batch: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set EOL batch permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move EOL batch into place: %w", err)
	}

	s.log.Info("EOL batch written", "path", path, "digests", len(batch.EolDigests))
	return nil
}

// WriteBatch writes batch to w in its persisted form.
func (s *BatchStore) WriteBatch(w io.Writer, batch *domain.EolBatch) error {
	data, err := EncodeBatch(batch)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// EncodeBatch renders batch the way it is persisted.
func EncodeBatch(batch *domain.EolBatch) ([]byte, error) {
	if batch == nil {
		return nil, fmt.Errorf("%w: nothing to encode", domain.ErrInvalidBatch)
	}
	if batch.EolDigests == nil {
		batch = &domain.EolBatch{EolDate: batch.EolDate, EolDigests: []domain.DigestRecord{}}
	}

	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode EOL batch: %w", err)
	}
	return append(data, '\n'), nil
}
