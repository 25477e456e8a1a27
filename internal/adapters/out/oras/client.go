// Package oras implements lifecycle annotation and registry login through the oras CLI.
package oras

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/bnema/eolkeeper/internal/adapters/out/process"
	"github.com/bnema/eolkeeper/internal/domain"
)

// Config selects the oras binary and the lifecycle annotation protocol.
type Config struct {
	Path          string
	ArtifactType  string
	AnnotationKey string
}

// DefaultConfig uses oras from PATH and the Microsoft artifact lifecycle protocol.
func DefaultConfig() Config {
	return Config{
		Path:          "oras",
		ArtifactType:  domain.LifecycleArtifactType,
		AnnotationKey: domain.LifecycleEOLDateKey,
	}
}

// Client implements out.Annotator and out.RegistrySession.
type Client struct {
	runner process.Runner
	cfg    Config
	log    *log.Logger
}

// NewClient creates a new oras client. Retries are the runner's business.
func NewClient(runner process.Runner, cfg Config, logger *log.Logger) *Client {
	defaults := DefaultConfig()
	if cfg.Path == "" {
		cfg.Path = defaults.Path
	}
	if cfg.ArtifactType == "" {
		cfg.ArtifactType = defaults.ArtifactType
	}
	if cfg.AnnotationKey == "" {
		cfg.AnnotationKey = defaults.AnnotationKey
	}

	return &Client{
		runner: runner,
		cfg:    cfg,
		log:    logger.WithPrefix("oras"),
	}
}

// discoverOutput covers the JSON shapes of oras discover across releases.
type discoverOutput struct {
	Manifests []json.RawMessage `json:"manifests"`
	Referrers []json.RawMessage `json:"referrers"`
}

// IsAnnotated reports whether reference has at least one lifecycle referrer.
func (c *Client) IsAnnotated(ctx context.Context, reference string) (bool, error) {
	out, err := c.runner.Run(ctx, process.Command{
		Name: c.cfg.Path,
		Args: []string{"discover", "--artifact-type", c.cfg.ArtifactType, "--format", "json", reference},
	})
	if err != nil {
		return false, fmt.Errorf("failed to discover lifecycle artifacts of %s: %w", reference, err)
	}

	annotated := parseDiscover(out)
	c.log.Debug("lifecycle artifacts discovered", "reference", reference, "annotated", annotated)
	return annotated, nil
}

func parseDiscover(out string) bool {
	out = strings.TrimSpace(out)
	if out == "" {
		return false
	}

	var parsed discoverOutput
	if err := json.Unmarshal([]byte(out), &parsed); err == nil {
		return len(parsed.Manifests)+len(parsed.Referrers) > 0
	}

	return !strings.Contains(out, "Discovered 0 artifact")
}

// Annotate attaches an end-of-life lifecycle artifact dated date to reference.
func (c *Client) Annotate(ctx context.Context, reference string, date domain.Date) error {
	if date.IsZero() {
		return fmt.Errorf("%w: no EOL date for %s", domain.ErrInvalidBatch, reference)
	}

	_, err := c.runner.Run(ctx, process.Command{
		Name: c.cfg.Path,
		Args: []string{
			"attach",
			"--artifact-type", c.cfg.ArtifactType,
			"--annotation", c.cfg.AnnotationKey + "=" + date.String(),
			reference,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to attach EOL annotation to %s: %w", reference, err)
	}
	return nil
}

// Login logs oras in to registry, passing the password on stdin.
func (c *Client) Login(ctx context.Context, creds *domain.RegistryCredentials, registry string) error {
	if strings.TrimSpace(registry) == "" {
		return fmt.Errorf("%w: registry address is required for oras login", domain.ErrInvalidConfig)
	}
	if creds == nil {
		return fmt.Errorf("%w: %s", domain.ErrNoCredentials, registry)
	}

	_, err := c.runner.Run(ctx, process.Command{
		Name:  c.cfg.Path,
		Args:  []string{"login", registry, "--username", creds.Username, "--password-stdin"},
		Stdin: creds.Password + "\n",
	})
	if err != nil {
		return fmt.Errorf("oras login to %s failed: %w", registry, err)
	}

	c.log.Info("logged in", "registry", registry, "username", creds.Username)
	return nil
}

// Logout removes the oras login for registry.
func (c *Client) Logout(ctx context.Context, registry string) error {
	if strings.TrimSpace(registry) == "" {
		return nil
	}

	if _, err := c.runner.Run(ctx, process.Command{Name: c.cfg.Path, Args: []string{"logout", registry}}); err != nil {
		return fmt.Errorf("oras logout from %s failed: %w", registry, err)
	}

	c.log.Info("logged out", "registry", registry)
	return nil
}
