package credentials

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/eolkeeper/internal/domain"
)

func TestStaticProvider_GetCredentials(t *testing.T) {
	p := NewStaticProvider(
		Entry{Username: "any", Password: "any-pass"},
		Entry{Registry: "https://MyACR.azurecr.io/", Username: "bot", Password: "s3cret"},
	)

	creds, err := p.GetCredentials(context.Background(), "myacr.azurecr.io")
	require.NoError(t, err)
	assert.Equal(t, &domain.RegistryCredentials{Username: "bot", Password: "s3cret"}, creds)

	creds, err = p.GetCredentials(context.Background(), "other.example.com")
	require.NoError(t, err)
	assert.Equal(t, "any", creds.Username)
}

func TestStaticProvider_NoCredentials(t *testing.T) {
	p := NewStaticProvider(
		Entry{Registry: "myacr.azurecr.io", Username: "bot"},
		Entry{Registry: "other.example.com", Username: "bot", Password: "pw"},
	)

	creds, err := p.GetCredentials(context.Background(), "myacr.azurecr.io")

	assert.Nil(t, creds)
	assert.ErrorIs(t, err, domain.ErrNoCredentials)
	assert.ErrorContains(t, err, "myacr.azurecr.io")
}

func TestStaticProvider_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStaticProvider(Entry{Username: "u", Password: "p"}).GetCredentials(ctx, "r.io")

	assert.ErrorIs(t, err, context.Canceled)
}
