package cli

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/eolkeeper/internal/domain"
)

func stripANSI(input string) string {
	return regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`).ReplaceAllString(input, "")
}

func executeRoot(t *testing.T, build Builder, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd(build)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCmd_VersionDoesNotBuildRuntime(t *testing.T) {
	SetVersionInfo("1.2.3", "abc123", "2024-11-12")
	t.Cleanup(func() { SetVersionInfo("dev", "unknown", "unknown") })

	out, err := executeRoot(t, func(context.Context, GlobalOptions) (*Runtime, error) {
		t.Fatal("builder must not run for version")
		return nil, nil
	}, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "eolkeeper 1.2.3")
	assert.Contains(t, out, "Commit: abc123")
}

func TestRootCmd_PassesGlobalOptionsAndCloses(t *testing.T) {
	batch := domain.NewEolBatch(domain.Date{Year: 2024, Month: time.January, Day: 2}, []string{"runtime@sha256:9"})
	closed := false
	var got GlobalOptions

	build := func(_ context.Context, opts GlobalOptions) (*Runtime, error) {
		got = opts
		return &Runtime{
			History: &fakeHistory{batch: batch},
			Batches: newFakeBatches(),
			Close: func() error {
				closed = true
				return nil
			},
		}, nil
	}

	out, err := executeRoot(t, build, "--config", "ci.yaml", "--log-level", "debug", "history", "failures", "run-1")

	require.NoError(t, err)
	assert.Equal(t, GlobalOptions{ConfigFile: "ci.yaml", LogLevel: "debug"}, got)
	assert.True(t, closed)
	assert.Contains(t, out, "digests=runtime@sha256:9")
}

func TestRootCmd_BuilderError(t *testing.T) {
	_, err := executeRoot(t, func(context.Context, GlobalOptions) (*Runtime, error) {
		return nil, domain.ErrInvalidConfig
	}, "annotate", "eol-digests.json")

	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestRootCmd_ArgumentValidation(t *testing.T) {
	build := func(context.Context, GlobalOptions) (*Runtime, error) {
		return nil, errors.New("should not be called")
	}

	tests := [][]string{
		{"generate", "old.json", "new.json"},
		{"annotate"},
		{"history", "failures"},
	}
	for _, args := range tests {
		_, err := executeRoot(t, build, args...)
		assert.Error(t, err, args)
		assert.NotContains(t, err.Error(), "should not be called", args)
	}
}
