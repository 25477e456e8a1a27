// Package filesystem implements image-info and EOL batch storage on the local filesystem.
package filesystem

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/bnema/eolkeeper/internal/domain"
)

// CatalogLoader reads image-info snapshots from JSON or YAML files.
type CatalogLoader struct {
	log *log.Logger
}

// NewCatalogLoader creates a new filesystem catalog loader.
func NewCatalogLoader(logger *log.Logger) *CatalogLoader {
	return &CatalogLoader{log: logger.WithPrefix("filesystem")}
}

// LoadCatalog reads the snapshot at path. A missing, unreadable or malformed
// file yields an error wrapping domain.ErrMalformedCatalog.
func (l *CatalogLoader) LoadCatalog(path string) (*domain.Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: image-info path is required", domain.ErrMalformedCatalog)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", domain.ErrMalformedCatalog, path, err)
	}

	var catalog domain.Catalog
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &catalog); err != nil {
			return nil, fmt.Errorf("%w: failed to parse %s: %v", domain.ErrMalformedCatalog, path, err)
		}
	default:
		if err := decodeJSON(data, &catalog); err != nil {
			return nil, fmt.Errorf("%w: failed to parse %s: %v", domain.ErrMalformedCatalog, path, err)
		}
	}

	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	l.log.Debug("image-info loaded", "path", path, "repos", len(catalog.Repos))
	return &catalog, nil
}

// decodeJSON decodes a single JSON value. Unknown fields are accepted,
// image-info files carry much more than the catalog needs.
func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after JSON document")
	}
	return nil
}
