// Package selector narrows an image-info catalog to the repos and platforms a run applies to.
package selector

import (
	"fmt"
	"iter"
	"regexp"
	"strings"

	"github.com/bnema/eolkeeper/internal/domain"
)

// Selector applies a domain.PlatformFilter to catalogs. It never mutates its input.
type Selector struct {
	filter  domain.PlatformFilter
	pattern *regexp.Regexp
}

// New compiles filter into a Selector.
func New(filter domain.PlatformFilter) (*Selector, error) {
	s := &Selector{filter: filter}

	if filter.RestrictsPlatforms() {
		pattern, err := regexp.Compile(GlobPattern(filter.Path))
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", domain.ErrInvalidPathPattern, filter.Path, err)
		}
		s.pattern = pattern
	}

	return s, nil
}

// GlobPattern translates a * / ? wildcard into an anchored, case-insensitive regexp.
func GlobPattern(glob string) string {
	quoted := regexp.QuoteMeta(glob)
	quoted = strings.ReplaceAll(quoted, `\*`, ".*")
	quoted = strings.ReplaceAll(quoted, `\?`, ".")
	return "(?i)^" + quoted + "$"
}

// WithHost returns a copy of the selector whose active platforms match host.
func (s *Selector) WithHost(host domain.HostPlatform) *Selector {
	c := *s
	c.filter.OS = host.OS
	c.filter.Architecture = host.Architecture
	return &c
}

// Filter returns the filter the selector was built from.
func (s *Selector) Filter() domain.PlatformFilter {
	return s.filter
}

// Repos yields the repos of catalog matching the repo filter.
func (s *Selector) Repos(catalog *domain.Catalog) iter.Seq[domain.Repo] {
	name := strings.TrimSpace(s.filter.Repo)
	return func(yield func(domain.Repo) bool) {
		for _, repo := range catalog.Repos {
			if name != "" && repo.Name != name {
				continue
			}
			if !yield(repo) {
				return
			}
		}
	}
}

// Platforms yields the platforms of image whose Dockerfile matches the path filter.
func (s *Selector) Platforms(image *domain.Image) iter.Seq[domain.Platform] {
	return func(yield func(domain.Platform) bool) {
		for _, platform := range image.Platforms {
			if s.pattern != nil && !s.pattern.MatchString(platform.Dockerfile) {
				continue
			}
			if !yield(platform) {
				return
			}
		}
	}
}

// ActivePlatforms yields the platforms that also match the filter OS and architecture.
func (s *Selector) ActivePlatforms(image *domain.Image) iter.Seq[domain.Platform] {
	return func(yield func(domain.Platform) bool) {
		for platform := range s.Platforms(image) {
			if !strings.EqualFold(platform.OSType, s.filter.OS) || platform.Architecture != s.filter.Architecture {
				continue
			}
			if !yield(platform) {
				return
			}
		}
	}
}
