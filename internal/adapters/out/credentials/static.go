// Package credentials resolves registry logins from configuration.
package credentials

import (
	"context"
	"fmt"
	"strings"

	"github.com/bnema/eolkeeper/internal/domain"
)

// Entry is a configured login for one registry. An empty Registry matches any registry.
type Entry struct {
	Registry string
	Username string
	Password string
}

// StaticProvider implements out.CredentialProvider over configured entries.
type StaticProvider struct {
	entries []Entry
}

// NewStaticProvider creates a provider. Entries without a username or password are ignored.
func NewStaticProvider(entries ...Entry) *StaticProvider {
	p := &StaticProvider{}
	for _, e := range entries {
		if e.Username == "" || e.Password == "" {
			continue
		}
		e.Registry = normalizeRegistry(e.Registry)
		p.entries = append(p.entries, e)
	}
	return p
}

// GetCredentials returns the login for registry. Exact matches win over wildcard entries.
func (p *StaticProvider) GetCredentials(ctx context.Context, registry string) (*domain.RegistryCredentials, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	registry = normalizeRegistry(registry)
	var wildcard *Entry
	for i := range p.entries {
		e := &p.entries[i]
		if e.Registry == registry {
			return &domain.RegistryCredentials{Username: e.Username, Password: e.Password}, nil
		}
		if e.Registry == "" && wildcard == nil {
			wildcard = e
		}
	}

	if wildcard != nil {
		return &domain.RegistryCredentials{Username: wildcard.Username, Password: wildcard.Password}, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrNoCredentials, registry)
}

func normalizeRegistry(registry string) string {
	registry = strings.TrimSpace(strings.ToLower(registry))
	registry = strings.TrimPrefix(registry, "https://")
	registry = strings.TrimPrefix(registry, "http://")
	return strings.TrimSuffix(registry, "/")
}
