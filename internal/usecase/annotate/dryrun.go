package annotate

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/bnema/eolkeeper/internal/boundaries/out"
	"github.com/bnema/eolkeeper/internal/domain"
)

// dryRunSession logs the login instead of performing it.
type dryRunSession struct {
	log *log.Logger
}

func (s dryRunSession) Login(_ context.Context, creds *domain.RegistryCredentials, registry string) error {
	s.log.Info("[dry-run] skipping registry login", "registry", registry, "username", creds.Username)
	return nil
}

func (s dryRunSession) Logout(_ context.Context, registry string) error {
	s.log.Info("[dry-run] skipping registry logout", "registry", registry)
	return nil
}

// dryRunAnnotator queries existing annotations but never attaches new ones.
type dryRunAnnotator struct {
	next out.Annotator
	log  *log.Logger
}

func (a dryRunAnnotator) IsAnnotated(ctx context.Context, reference string) (bool, error) {
	annotated, err := a.next.IsAnnotated(ctx, reference)
	if err != nil {
		a.log.Warn("[dry-run] lifecycle lookup failed, assuming not annotated", "reference", reference, "err", err)
		return false, nil
	}
	return annotated, nil
}

func (a dryRunAnnotator) Annotate(_ context.Context, reference string, date domain.Date) error {
	a.log.Info("[dry-run] skipping EOL annotation", "reference", reference, "eolDate", date.String())
	return nil
}
