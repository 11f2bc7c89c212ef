// Package store implements the in-memory entity store at the heart of the
// brokerage: the single source of truth for all collections, with optimistic
// local mutation, audit logging, and best-effort replication to the remote
// document tables.
//
// Every mutation runs synchronously under the store lock: preconditions are
// checked first and a violation leaves state untouched (the caller gets a
// sentinel error and the user gets an error notification). A committed
// mutation bumps the record version, appends exactly one audit entry, and
// enqueues the remote write on the outbox without waiting for it.
package store

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/imoview/realty-crm/internal/core/domain"
	"github.com/imoview/realty-crm/internal/core/ports"
)

// Deps are the collaborators a Store talks to across the system boundary.
// Nil fields are replaced with no-op implementations so the store keeps
// working in local-only mode.
type Deps struct {
	Remote   ports.RemoteTable
	Outbox   ports.Outbox
	Feed     ports.RealtimeFeed
	Snapshot ports.SnapshotStore
	Mailer   ports.Mailer
	Webhook  ports.WebhookSink
	TextGen  ports.TextGenerator
	Verifier domain.CredentialVerifier
}

// Store is the authoritative in-memory state of one running client.
type Store struct {
	mu sync.RWMutex

	users      map[string]domain.User
	properties map[string]domain.Property
	clients    map[string]domain.Client
	pipelines  map[string]domain.Pipeline
	logs       map[string]domain.LogEntry
	settings   domain.SystemSettings
	notices    []domain.Notification
	current    *domain.User

	remote   ports.RemoteTable
	outbox   ports.Outbox
	feed     ports.RealtimeFeed
	snapshot ports.SnapshotStore
	mailer   ports.Mailer
	webhook  ports.WebhookSink
	textgen  ports.TextGenerator
	verifier domain.CredentialVerifier

	log zerolog.Logger
	now func() time.Time
}

// New builds a Store. The previously persisted projection, when present, is
// merged into the initial state before any remote load runs so a returning
// user sees their identity immediately.
func New(deps Deps, log zerolog.Logger) *Store {
	s := &Store{
		users:      make(map[string]domain.User),
		properties: make(map[string]domain.Property),
		clients:    make(map[string]domain.Client),
		pipelines:  make(map[string]domain.Pipeline),
		logs:       make(map[string]domain.LogEntry),
		settings:   domain.DefaultSettings(),
		remote:     deps.Remote,
		outbox:     deps.Outbox,
		feed:       deps.Feed,
		snapshot:   deps.Snapshot,
		mailer:     deps.Mailer,
		webhook:    deps.Webhook,
		textgen:    deps.TextGen,
		verifier:   deps.Verifier,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
	if s.outbox == nil {
		s.outbox = ports.NopOutbox{}
	}
	if s.verifier == nil {
		s.verifier = domain.PlaintextVerifier{}
	}
	s.restoreProjection()
	return s
}

func (s *Store) restoreProjection() {
	if s.snapshot == nil {
		return
	}
	p, err := s.snapshot.Load()
	if err != nil {
		s.log.Warn().Err(err).Msg("local snapshot unreadable, starting clean")
		return
	}
	if p == nil {
		return
	}
	if p.Settings != nil {
		s.settings = *p.Settings
	}
	if p.CurrentUser != nil {
		u := *p.CurrentUser
		s.current = &u
		s.users[u.ID] = u
	}
}

// persistProjection writes the reduced projection (session user + settings).
// Failures are logged only; the local state is already committed.
func (s *Store) persistProjection() {
	if s.snapshot == nil {
		return
	}
	p := ports.Projection{SchemaVersion: ports.SnapshotSchemaVersion}
	if s.current != nil {
		u := *s.current
		p.CurrentUser = &u
	}
	cfg := s.settings
	p.Settings = &cfg
	if err := s.snapshot.Save(p); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist local projection")
	}
}

// ---------------------------------------------------------------------------
// Document codec
// ---------------------------------------------------------------------------

// toDocument converts an entity to its generic JSON document form. Snapshots
// taken this way are deep copies: later mutation of the live entity cannot
// retroactively change them.
func toDocument(v any) ports.Document {
	b, err := json.Marshal(v)
	if err != nil {
		return ports.Document{}
	}
	var doc ports.Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return ports.Document{}
	}
	return doc
}

func decodeDocument[T any](doc ports.Document) (T, error) {
	var v T
	b, err := json.Marshal(doc)
	if err != nil {
		return v, err
	}
	err = json.Unmarshal(b, &v)
	return v, err
}

func documentID(doc ports.Document) string {
	id, _ := doc["id"].(string)
	return id
}

func documentVersion(doc ports.Document) int64 {
	switch v := doc["version"].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case json.Number:
		n, _ := v.Int64()
		return n
	}
	return 0
}

// ---------------------------------------------------------------------------
// Commit path
// ---------------------------------------------------------------------------

// enqueueUpsert ships one changed record to the remote side, fire-and-forget.
func (s *Store) enqueueUpsert(table string, entity any) {
	doc := toDocument(entity)
	s.outbox.Enqueue(ports.SyncTask{Op: ports.SyncUpsert, Table: table, ID: documentID(doc), Document: doc})
}

func (s *Store) enqueueDelete(table, id string) {
	s.outbox.Enqueue(ports.SyncTask{Op: ports.SyncDelete, Table: table, ID: id})
}

func newID() string { return uuid.NewString() }

// ---------------------------------------------------------------------------
// Notifications
// ---------------------------------------------------------------------------

func (s *Store) push(level domain.NotificationLevel, msg string) {
	s.notices = append(s.notices, domain.Notification{
		ID:        newID(),
		Level:     level,
		Message:   msg,
		CreatedAt: s.now(),
	})
}

func (s *Store) pushError(msg string)   { s.push(domain.NoticeError, msg) }
func (s *Store) pushSuccess(msg string) { s.push(domain.NoticeSuccess, msg) }
func (s *Store) pushInfo(msg string)    { s.push(domain.NoticeInfo, msg) }

// Notifications returns the live (non-expired) notifications, oldest first,
// pruning anything past its display window.
func (s *Store) Notifications() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	kept := s.notices[:0]
	for _, n := range s.notices {
		if !n.Expired(now) {
			kept = append(kept, n)
		}
	}
	s.notices = kept
	out := make([]domain.Notification, len(kept))
	copy(out, kept)
	return out
}

// Dismiss removes one notification before its expiry.
func (s *Store) Dismiss(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.notices {
		if n.ID == id {
			s.notices = append(s.notices[:i], s.notices[i+1:]...)
			return
		}
	}
}

// ---------------------------------------------------------------------------
// Read accessors. All return clones so callers never hold live references.
// ---------------------------------------------------------------------------

func (s *Store) Users() []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *Store) User(id string) (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok
}

func (s *Store) Properties() []domain.Property {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Property, 0, len(s.properties))
	for _, p := range s.properties {
		out = append(out, cloneProperty(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *Store) Property(id string) (domain.Property, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.properties[id]
	return cloneProperty(p), ok
}

func (s *Store) Clients() []domain.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Client, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, cloneClient(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *Store) Client(id string) (domain.Client, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[id]
	return cloneClient(c), ok
}

// PipelineLeads returns the active (non-lost) leads sitting in a pipeline.
func (s *Store) PipelineLeads(pipelineID string) []domain.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Client
	for _, c := range s.clients {
		if c.PipelineID == pipelineID && c.LostReason == "" {
			out = append(out, cloneClient(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *Store) Pipelines() []domain.Pipeline {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Pipeline, 0, len(s.pipelines))
	for _, p := range s.pipelines {
		out = append(out, clonePipeline(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Store) Pipeline(id string) (domain.Pipeline, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pipelines[id]
	return clonePipeline(p), ok
}

func (s *Store) Logs() []domain.LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.LogEntry, 0, len(s.logs))
	for _, e := range s.logs {
		out = append(out, cloneLog(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].At.After(out[j].At) })
	return out
}

func (s *Store) Log(id string) (domain.LogEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.logs[id]
	return cloneLog(e), ok
}

func (s *Store) Settings() domain.SystemSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSettings(s.settings)
}

// ---------------------------------------------------------------------------
// Clones: entities containing slices/maps are copied via the JSON round-trip
// so handed-out values never share mutable sub-objects with the store.
// ---------------------------------------------------------------------------

func cloneProperty(p domain.Property) domain.Property {
	if p.Features != nil {
		p.Features = append([]string(nil), p.Features...)
	}
	if p.ApprovedAt != nil {
		t := *p.ApprovedAt
		p.ApprovedAt = &t
	}
	return p
}

func cloneClient(c domain.Client) domain.Client {
	if c.Visits != nil {
		c.Visits = append([]domain.Visit(nil), c.Visits...)
	}
	return c
}

func clonePipeline(p domain.Pipeline) domain.Pipeline {
	if p.Stages != nil {
		p.Stages = append([]domain.Stage(nil), p.Stages...)
	}
	return p
}

func cloneLog(e domain.LogEntry) domain.LogEntry {
	e.Previous = cloneDocument(e.Previous)
	e.Next = cloneDocument(e.Next)
	return e
}

func cloneSettings(c domain.SystemSettings) domain.SystemSettings {
	out, err := decodeDocument[domain.SystemSettings](toDocument(c))
	if err != nil {
		return c
	}
	return out
}

func cloneDocument(doc ports.Document) ports.Document {
	if doc == nil {
		return nil
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil
	}
	var out ports.Document
	if err := json.Unmarshal(b, &out); err != nil {
		return nil
	}
	return out
}
