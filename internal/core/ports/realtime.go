package ports

import "context"

// ChangeType is the kind of remote change a replication event carries.
type ChangeType string

const (
	ChangeInsert ChangeType = "insert"
	ChangeUpdate ChangeType = "update"
	ChangeDelete ChangeType = "delete"
)

// ChangeEvent is one change pushed from the remote side. Document carries the
// full row content; for deletes only the id field is guaranteed.
type ChangeEvent struct {
	Type     ChangeType `json:"type"`
	Table    string     `json:"table"`
	Document Document   `json:"document"`
}

// RealtimeFeed delivers per-table change feeds. Subscribing twice to the same
// table must reuse the existing subscription; a subscription whose receive
// loop dies is evicted so a later Subscribe opens a fresh one.
type RealtimeFeed interface {
	Subscribe(ctx context.Context, table string, handler func(ChangeEvent)) error
	CloseAll()
}

// RealtimePublisher pushes committed local changes to the other replicas.
type RealtimePublisher interface {
	Publish(ctx context.Context, event ChangeEvent) error
}
