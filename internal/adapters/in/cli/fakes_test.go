package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bnema/eolkeeper/internal/domain"
)

type fakeReconcile struct {
	batch   *domain.EolBatch
	summary domain.ReconcileSummary
	err     error

	calls    int
	lastOpts domain.ReconcileOptions
	oldInfo  *domain.Catalog
	newInfo  *domain.Catalog
}

func (f *fakeReconcile) Generate(_ context.Context, oldInfo, newInfo *domain.Catalog, opts domain.ReconcileOptions) (*domain.EolBatch, domain.ReconcileSummary, error) {
	f.calls++
	f.lastOpts = opts
	f.oldInfo, f.newInfo = oldInfo, newInfo
	return f.batch, f.summary, f.err
}

type fakeAnnotate struct {
	report domain.AnnotateReport
	err    error

	calls    int
	lastOpts domain.AnnotateOptions
	batch    *domain.EolBatch
}

func (f *fakeAnnotate) Annotate(_ context.Context, batch *domain.EolBatch, opts domain.AnnotateOptions) (domain.AnnotateReport, error) {
	f.calls++
	f.lastOpts = opts
	f.batch = batch
	return f.report, f.err
}

type fakeHistory struct {
	batch *domain.EolBatch
	err   error
}

func (f *fakeHistory) RerunBatch(context.Context, string) (*domain.EolBatch, error) {
	return f.batch, f.err
}

type fakeCatalogs struct {
	catalogs map[string]*domain.Catalog
	loaded   []string
}

func (f *fakeCatalogs) LoadCatalog(path string) (*domain.Catalog, error) {
	f.loaded = append(f.loaded, path)
	c, ok := f.catalogs[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s not found", domain.ErrMalformedCatalog, path)
	}
	return c, nil
}

type fakeBatches struct {
	batches map[string]*domain.EolBatch
	saveErr error
}

func newFakeBatches() *fakeBatches {
	return &fakeBatches{batches: make(map[string]*domain.EolBatch)}
}

func (f *fakeBatches) LoadBatch(path string) (*domain.EolBatch, error) {
	b, ok := f.batches[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s not found", domain.ErrInvalidBatch, path)
	}
	return b, nil
}

func (f *fakeBatches) SaveBatch(path string, batch *domain.EolBatch) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.batches[path] = batch
	return nil
}

func (f *fakeBatches) WriteBatch(w io.Writer, batch *domain.EolBatch) error {
	if batch == nil {
		return errors.New("nil batch")
	}
	_, err := fmt.Fprintf(w, "eolDate=%s digests=%s\n", batch.EolDate, strings.Join(batch.Digests(), ","))
	return err
}

type fakeHost struct {
	host  domain.HostPlatform
	err   error
	calls int
}

func (f *fakeHost) HostPlatform(context.Context) (domain.HostPlatform, error) {
	f.calls++
	return f.host, f.err
}
