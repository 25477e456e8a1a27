package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/eolkeeper/internal/domain"
)

var testPaths = generatePaths{OldInfo: "old.json", NewInfo: "new.json", Out: "eol-digests.json"}

func newGenerateRuntime(reconcile *fakeReconcile) (*Runtime, *fakeBatches, *fakeHost) {
	batches := newFakeBatches()
	host := &fakeHost{host: domain.HostPlatform{OS: "linux", Architecture: "arm64"}}
	return &Runtime{
		Reconcile: reconcile,
		Catalogs: &fakeCatalogs{catalogs: map[string]*domain.Catalog{
			"old.json": {Repos: []domain.Repo{{Name: "runtime"}}},
			"new.json": {},
		}},
		Batches: batches,
		Host:    host,
	}, batches, host
}

func TestRunGenerate_WritesBatchAndSummary(t *testing.T) {
	date := domain.Date{Year: 2024, Month: time.November, Day: 12}
	reconcile := &fakeReconcile{
		batch: domain.NewEolBatch(date, []string{"runtime@sha256:1", "runtime@sha256:2"}),
		summary: domain.ReconcileSummary{Total: 2, Repos: []domain.RepoRetirement{{
			Repo: "runtime", Removed: true, Digests: 2,
			Versions: []domain.VersionRetirement{{ProductVersion: "6.0", Digests: 2}},
		}}},
	}
	rt, batches, host := newGenerateRuntime(reconcile)

	var out bytes.Buffer
	err := runGenerate(context.Background(), rt, testPaths, generateOptions{EolDate: "2024-11-12", Repo: "runtime"}, &out)

	require.NoError(t, err)
	assert.Equal(t, date, reconcile.lastOpts.EolDate)
	assert.Equal(t, "runtime", reconcile.lastOpts.Scope.Repo)
	assert.False(t, reconcile.lastOpts.ActiveOnly)
	assert.Equal(t, "runtime", reconcile.oldInfo.Repos[0].Name)
	assert.Zero(t, host.calls)
	assert.Same(t, reconcile.batch, batches.batches["eol-digests.json"])

	text := stripANSI(out.String())
	assert.Contains(t, text, "runtime (removed)")
	assert.Contains(t, text, "6.0")
	assert.Contains(t, text, "2024-11-12")
	assert.Contains(t, text, "Wrote 2 digests to eol-digests.json")
}

func TestRunGenerate_ActiveOnlyUsesHostPlatform(t *testing.T) {
	reconcile := &fakeReconcile{batch: domain.NewEolBatch(domain.Date{Year: 2024, Month: time.January, Day: 1}, nil)}
	rt, _, host := newGenerateRuntime(reconcile)

	var out bytes.Buffer
	err := runGenerate(context.Background(), rt, testPaths, generateOptions{ActiveOnly: true, OS: "windows"}, &out)

	require.NoError(t, err)
	assert.Equal(t, 1, host.calls)
	assert.True(t, reconcile.lastOpts.ActiveOnly)
	assert.Equal(t, "windows", reconcile.lastOpts.Scope.OS)
	assert.Equal(t, "arm64", reconcile.lastOpts.Scope.Architecture)
	assert.Contains(t, stripANSI(out.String()), "No digests retired")
}

func TestRunGenerate_Errors(t *testing.T) {
	t.Run("invalid date", func(t *testing.T) {
		reconcile := &fakeReconcile{}
		rt, _, _ := newGenerateRuntime(reconcile)

		err := runGenerate(context.Background(), rt, testPaths, generateOptions{EolDate: "12/11/2024"}, &bytes.Buffer{})

		assert.ErrorIs(t, err, domain.ErrInvalidDate)
		assert.Zero(t, reconcile.calls)
	})

	t.Run("missing catalog", func(t *testing.T) {
		reconcile := &fakeReconcile{}
		rt, _, _ := newGenerateRuntime(reconcile)
		paths := testPaths
		paths.NewInfo = "missing.json"

		err := runGenerate(context.Background(), rt, paths, generateOptions{}, &bytes.Buffer{})

		assert.ErrorIs(t, err, domain.ErrMalformedCatalog)
		assert.Zero(t, reconcile.calls)
	})

	t.Run("host detection", func(t *testing.T) {
		rt, _, host := newGenerateRuntime(&fakeReconcile{})
		host.err = errors.New("daemon gone")

		err := runGenerate(context.Background(), rt, testPaths, generateOptions{ActiveOnly: true}, &bytes.Buffer{})

		assert.ErrorContains(t, err, "daemon gone")
	})

	t.Run("reconcile failure writes nothing", func(t *testing.T) {
		rt, batches, _ := newGenerateRuntime(&fakeReconcile{err: domain.ErrInvalidPathPattern})

		err := runGenerate(context.Background(), rt, testPaths, generateOptions{Path: "["}, &bytes.Buffer{})

		assert.ErrorIs(t, err, domain.ErrInvalidPathPattern)
		assert.Empty(t, batches.batches)
	})
}
