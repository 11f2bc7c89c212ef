package ports

// SyncOp is the kind of remote write an outbox task performs.
type SyncOp string

const (
	SyncUpsert SyncOp = "upsert"
	SyncDelete SyncOp = "delete"
)

// SyncTask is one fire-and-forget remote write produced by a committed local
// mutation. Document is nil for deletes.
type SyncTask struct {
	Op       SyncOp
	Table    string
	ID       string
	Document Document
}

// Outbox accepts sync tasks for asynchronous, best-effort delivery to the
// remote store. Enqueue never blocks the mutation path and failures never
// roll back local state.
type Outbox interface {
	Enqueue(task SyncTask)
}

// NopOutbox discards every task. Used when replication is disabled.
type NopOutbox struct{}

func (NopOutbox) Enqueue(SyncTask) {}
