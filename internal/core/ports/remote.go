package ports

import "context"

// Remote table names, one per replicated collection.
const (
	TableUsers      = "users"
	TableProperties = "properties"
	TableClients    = "clients"
	TablePipelines  = "pipelines"
	TableLogs       = "logs"
	TableSettings   = "system_settings"
)

// ReplicatedTables lists every table fetched during hydration, in load order.
var ReplicatedTables = []string{
	TableUsers, TableProperties, TableClients, TablePipelines, TableLogs, TableSettings,
}

// Document is the generic JSON shape a remote row's content decodes to.
type Document = map[string]any

// RemoteTable is the generic key→document abstraction over the remote store.
// No filters or joins: tables are fetched in full and filtered client-side.
// Implementations must degrade to logged no-ops when unconfigured.
type RemoteTable interface {
	FetchAll(ctx context.Context, table string) ([]Document, error)
	Upsert(ctx context.Context, table string, doc Document) error
	Delete(ctx context.Context, table, id string) error
}
