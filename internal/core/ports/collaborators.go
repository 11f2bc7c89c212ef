package ports

import (
	"context"

	"github.com/imoview/realty-crm/internal/core/domain"
)

// SnapshotSchemaVersion tags the persisted local projection so a future
// schema change can be detected and the blob discarded.
const SnapshotSchemaVersion = 1

// Projection is the reduced subset of state that survives process restarts:
// session identity plus global settings. Operational collections are always
// re-hydrated from the remote side.
type Projection struct {
	SchemaVersion int                    `json:"schema_version"`
	CurrentUser   *domain.User           `json:"current_user,omitempty"`
	Settings      *domain.SystemSettings `json:"settings,omitempty"`
}

// SnapshotStore persists the local projection across restarts.
type SnapshotStore interface {
	Save(p Projection) error
	// Load returns nil with no error when no usable snapshot exists.
	Load() (*Projection, error)
}

// Mailer dispatches one message; it reports success as a bare boolean and is
// a no-op returning false when disabled or unconfigured.
type Mailer interface {
	Send(to, subject, body string) bool
}

// TextGenerator is the opaque generative-text collaborator. Callers must
// treat it as unreliable and supply their own fallbacks.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// WebhookSink receives fire-and-forget property lifecycle events.
type WebhookSink interface {
	NotifyProperty(event string, property domain.Property)
}
