package config

import "github.com/imoview/realty-crm/internal/core/domain"

// Compiled-in fallback replica credentials. With nothing else configured the
// system points at the shared demo replica rather than crashing; an empty
// resolution downstream means local-only mode.
const (
	fallbackEndpoint  = "mongodb://localhost:27017"
	fallbackAccessKey = "public-demo-key"
)

// ResolveRemote applies the single, uniform credential precedence:
// runtime configuration first, then previously persisted settings, then the
// compiled-in fallback pair. Each field resolves independently.
func ResolveRemote(cfg RemoteConfig, persisted domain.RemoteCredentials) domain.RemoteCredentials {
	out := domain.RemoteCredentials{
		Endpoint:  cfg.Endpoint,
		AccessKey: cfg.AccessKey,
	}
	if out.Endpoint == "" {
		out.Endpoint = persisted.Endpoint
	}
	if out.AccessKey == "" {
		out.AccessKey = persisted.AccessKey
	}
	if out.Endpoint == "" {
		out.Endpoint = fallbackEndpoint
	}
	if out.AccessKey == "" {
		out.AccessKey = fallbackAccessKey
	}
	return out
}
