package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/imoview/realty-crm/internal/core/domain"
)

func TestResolveRemote_RuntimeConfigWins(t *testing.T) {
	got := ResolveRemote(
		RemoteConfig{Endpoint: "mongodb://env:27017", AccessKey: "env-key"},
		domain.RemoteCredentials{Endpoint: "mongodb://saved:27017", AccessKey: "saved-key"},
	)
	assert.Equal(t, "mongodb://env:27017", got.Endpoint)
	assert.Equal(t, "env-key", got.AccessKey)
}

func TestResolveRemote_PersistedBeatsFallback(t *testing.T) {
	got := ResolveRemote(
		RemoteConfig{},
		domain.RemoteCredentials{Endpoint: "mongodb://saved:27017", AccessKey: "saved-key"},
	)
	assert.Equal(t, "mongodb://saved:27017", got.Endpoint)
	assert.Equal(t, "saved-key", got.AccessKey)
}

func TestResolveRemote_FallbackWhenNothingConfigured(t *testing.T) {
	got := ResolveRemote(RemoteConfig{}, domain.RemoteCredentials{})
	assert.Equal(t, fallbackEndpoint, got.Endpoint)
	assert.Equal(t, fallbackAccessKey, got.AccessKey)
}

func TestResolveRemote_FieldsResolveIndependently(t *testing.T) {
	got := ResolveRemote(
		RemoteConfig{Endpoint: "mongodb://env:27017"},
		domain.RemoteCredentials{AccessKey: "saved-key"},
	)
	assert.Equal(t, "mongodb://env:27017", got.Endpoint)
	assert.Equal(t, "saved-key", got.AccessKey)
}
