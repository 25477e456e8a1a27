package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func datePtr(d Date) *Date {
	return &d
}

func TestEolBatch_EffectiveDate(t *testing.T) {
	batchDate := Date{Year: 2022, Month: time.January, Day: 1}
	ownDate := Date{Year: 2023, Month: time.June, Day: 30}
	batch := &EolBatch{EolDate: batchDate}

	assert.Equal(t, batchDate, batch.EffectiveDate(DigestRecord{Digest: "digest1"}))
	assert.Equal(t, ownDate, batch.EffectiveDate(DigestRecord{Digest: "digest2", EolDate: datePtr(ownDate)}))
	assert.Equal(t, batchDate, batch.EffectiveDate(DigestRecord{Digest: "digest3", EolDate: &Date{}}))
}

func TestEolBatch_JSONShape(t *testing.T) {
	batch := EolBatch{
		EolDate: Date{Year: 2022, Month: time.January, Day: 1},
		EolDigests: []DigestRecord{
			{Digest: "digest1"},
			{Digest: "digest2", EolDate: datePtr(Date{Year: 2022, Month: time.March, Day: 4})},
		},
	}

	data, err := json.Marshal(batch)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"eolDate": "2022-01-01",
		"eolDigests": [
			{"digest": "digest1"},
			{"digest": "digest2", "eolDate": "2022-03-04"}
		]
	}`, string(data))
	assert.NotContains(t, string(data), "null")
}

func TestEolBatch_Validate(t *testing.T) {
	day := Date{Year: 2022, Month: time.January, Day: 1}

	tests := []struct {
		name    string
		batch   *EolBatch
		wantErr bool
	}{
		{name: "nil batch", batch: nil, wantErr: true},
		{name: "valid", batch: NewEolBatch(day, []string{"a", "b"})},
		{name: "empty digest list", batch: &EolBatch{EolDate: day}},
		{name: "blank digest", batch: NewEolBatch(day, []string{"a", " "}), wantErr: true},
		{name: "duplicate digest", batch: NewEolBatch(day, []string{"a", "a"}), wantErr: true},
		{name: "no date anywhere", batch: NewEolBatch(Date{}, []string{"a"}), wantErr: true},
		{name: "bare digest without repository", batch: NewEolBatch(day, []string{"sha256:" + strings.Repeat("ab", 32)}), wantErr: true},
		{name: "repository digest", batch: NewEolBatch(day, []string{"dotnet/runtime@sha256:" + strings.Repeat("ab", 32)})},
		{
			name: "own date without default",
			batch: &EolBatch{EolDigests: []DigestRecord{
				{Digest: "a", EolDate: datePtr(day)},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.batch.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidBatch)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDigestSet(t *testing.T) {
	set := NewDigestSet()

	assert.True(t, set.Add("b"))
	assert.True(t, set.Add("a"))
	assert.False(t, set.Add("b"))
	assert.False(t, set.Add(""))

	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Contains("a"))
	assert.False(t, set.Contains("c"))
	assert.Equal(t, []string{"b", "a"}, set.Values())
}

func TestQualifyReference(t *testing.T) {
	tests := []struct {
		name      string
		registry  string
		reference string
		want      string
	}{
		{name: "no registry", registry: "", reference: "dotnet/runtime@sha256:abc", want: "dotnet/runtime@sha256:abc"},
		{name: "bare repo", registry: "myacr.azurecr.io", reference: "dotnet/runtime@sha256:abc", want: "myacr.azurecr.io/dotnet/runtime@sha256:abc"},
		{name: "trailing slash", registry: "myacr.azurecr.io/", reference: "runtime@sha256:abc", want: "myacr.azurecr.io/runtime@sha256:abc"},
		{name: "already qualified", registry: "myacr.azurecr.io", reference: "mcr.microsoft.com/dotnet/runtime@sha256:abc", want: "mcr.microsoft.com/dotnet/runtime@sha256:abc"},
		{name: "host with port", registry: "myacr.azurecr.io", reference: "registry:5000/runtime@sha256:abc", want: "registry:5000/runtime@sha256:abc"},
		{name: "localhost", registry: "myacr.azurecr.io", reference: "localhost/runtime@sha256:abc", want: "localhost/runtime@sha256:abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, QualifyReference(tt.registry, tt.reference))
		})
	}
}
