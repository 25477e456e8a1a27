// Package out defines output ports (interfaces) implemented by adapters.
package out

import (
	"context"

	"github.com/bnema/eolkeeper/internal/domain"
)

// CredentialProvider resolves the login for a registry.
type CredentialProvider interface {
	// GetCredentials returns domain.ErrNoCredentials when nothing is configured.
	GetCredentials(ctx context.Context, registry string) (*domain.RegistryCredentials, error)
}

// RegistrySession logs a tool in to a registry for the duration of a batch.
type RegistrySession interface {
	Login(ctx context.Context, creds *domain.RegistryCredentials, registry string) error
	Logout(ctx context.Context, registry string) error
}

// Annotator reads and writes lifecycle annotations on digests.
type Annotator interface {
	// IsAnnotated reports whether reference already carries a lifecycle annotation.
	IsAnnotated(ctx context.Context, reference string) (bool, error)

	// Annotate attaches an end-of-life annotation dated date to reference.
	Annotate(ctx context.Context, reference string, date domain.Date) error
}

// HostPlatformProvider reports the platform images are built and run on.
type HostPlatformProvider interface {
	HostPlatform(ctx context.Context) (domain.HostPlatform, error)
}
