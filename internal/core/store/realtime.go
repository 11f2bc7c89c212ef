package store

import (
	"context"
	"fmt"

	"github.com/imoview/realty-crm/internal/core/domain"
	"github.com/imoview/realty-crm/internal/core/ports"
)

// Hydrate performs the initial bulk load: every replicated table is fetched
// in full and replaces the local collections. The session user survives even
// when the remote copy is older. Without a configured remote this is a no-op.
func (s *Store) Hydrate(ctx context.Context) error {
	if s.remote == nil {
		return nil
	}
	for _, table := range ports.ReplicatedTables {
		docs, err := s.remote.FetchAll(ctx, table)
		if err != nil {
			return fmt.Errorf("hydrate %s: %w", table, err)
		}
		s.replaceCollection(table, docs)
	}
	s.log.Info().Msg("hydrated from remote")
	return nil
}

func (s *Store) replaceCollection(table string, docs []ports.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch table {
	case ports.TableUsers:
		users := make(map[string]domain.User, len(docs))
		for _, doc := range docs {
			u, err := decodeDocument[domain.User](doc)
			if err != nil || u.ID == "" {
				s.log.Warn().Err(err).Str("table", table).Msg("skipping malformed remote document")
				continue
			}
			users[u.ID] = u
		}
		// Keep the optimistic session identity when the remote copy is stale.
		if s.current != nil {
			if remote, ok := users[s.current.ID]; !ok || remote.Version < s.current.Version {
				users[s.current.ID] = *s.current
			} else {
				clone := remote
				s.current = &clone
			}
		}
		s.users = users
	case ports.TableProperties:
		props := make(map[string]domain.Property, len(docs))
		for _, doc := range docs {
			p, err := decodeDocument[domain.Property](doc)
			if err != nil || p.ID == "" {
				s.log.Warn().Err(err).Str("table", table).Msg("skipping malformed remote document")
				continue
			}
			props[p.ID] = p
		}
		s.properties = props
	case ports.TableClients:
		clients := make(map[string]domain.Client, len(docs))
		for _, doc := range docs {
			c, err := decodeDocument[domain.Client](doc)
			if err != nil || c.ID == "" {
				s.log.Warn().Err(err).Str("table", table).Msg("skipping malformed remote document")
				continue
			}
			clients[c.ID] = c
		}
		s.clients = clients
	case ports.TablePipelines:
		pipelines := make(map[string]domain.Pipeline, len(docs))
		for _, doc := range docs {
			p, err := decodeDocument[domain.Pipeline](doc)
			if err != nil || p.ID == "" {
				s.log.Warn().Err(err).Str("table", table).Msg("skipping malformed remote document")
				continue
			}
			pipelines[p.ID] = p
		}
		s.pipelines = pipelines
	case ports.TableLogs:
		logs := make(map[string]domain.LogEntry, len(docs))
		for _, doc := range docs {
			e, err := decodeDocument[domain.LogEntry](doc)
			if err != nil || e.ID == "" {
				s.log.Warn().Err(err).Str("table", table).Msg("skipping malformed remote document")
				continue
			}
			logs[e.ID] = e
		}
		s.logs = logs
	case ports.TableSettings:
		for _, doc := range docs {
			if documentID(doc) != domain.SettingsID {
				continue
			}
			cfg, err := decodeDocument[domain.SystemSettings](doc)
			if err != nil {
				s.log.Warn().Err(err).Msg("skipping malformed remote settings")
				continue
			}
			if cfg.Version >= s.settings.Version {
				s.settings = cfg
				s.persistProjection()
			}
		}
	}
}

// openRealtime subscribes to every replicated table's change feed. Subscribe
// is idempotent on the feed side, so calling this on every login is safe.
func (s *Store) openRealtime(ctx context.Context) {
	if s.feed == nil {
		return
	}
	for _, table := range ports.ReplicatedTables {
		if err := s.feed.Subscribe(ctx, table, s.ApplyRemoteChange); err != nil {
			s.log.Warn().Err(err).Str("table", table).Msg("realtime subscribe failed")
		}
	}
}

// ApplyRemoteChange reconciles one pushed change event into local state.
// Last-write-wins, guarded by the record version: an inbound document whose
// version is not newer than the locally-held one is dropped, so a stale
// remote echo can never clobber a fresh optimistic write, and applying the
// same event twice is a no-op the second time.
func (s *Store) ApplyRemoteChange(evt ports.ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := documentID(evt.Document)
	if evt.Table == ports.TableSettings {
		id = domain.SettingsID
	}
	if id == "" {
		s.log.Debug().Str("table", evt.Table).Msg("remote change without id dropped")
		return
	}

	if evt.Type == ports.ChangeDelete {
		s.deleteLocal(evt.Table, id)
		return
	}

	incoming := documentVersion(evt.Document)
	if local, ok := s.localVersion(evt.Table, id); ok && incoming <= local {
		s.log.Debug().Str("table", evt.Table).Str("id", id).
			Int64("incoming", incoming).Int64("local", local).
			Msg("stale remote change dropped")
		return
	}

	switch evt.Table {
	case ports.TableUsers:
		if u, err := decodeDocument[domain.User](evt.Document); err == nil && u.ID != "" {
			s.users[u.ID] = u
			if s.current != nil && s.current.ID == u.ID {
				clone := u
				s.current = &clone
				s.persistProjection()
			}
		}
	case ports.TableProperties:
		if p, err := decodeDocument[domain.Property](evt.Document); err == nil && p.ID != "" {
			s.properties[p.ID] = p
		}
	case ports.TableClients:
		if c, err := decodeDocument[domain.Client](evt.Document); err == nil && c.ID != "" {
			s.clients[c.ID] = c
		}
	case ports.TablePipelines:
		if p, err := decodeDocument[domain.Pipeline](evt.Document); err == nil && p.ID != "" {
			s.pipelines[p.ID] = p
		}
	case ports.TableLogs:
		if e, err := decodeDocument[domain.LogEntry](evt.Document); err == nil && e.ID != "" {
			s.logs[e.ID] = e
		}
	case ports.TableSettings:
		if cfg, err := decodeDocument[domain.SystemSettings](evt.Document); err == nil {
			cfg.ID = domain.SettingsID
			s.settings = cfg
			s.persistProjection()
		}
	}
}

func (s *Store) localVersion(table, id string) (int64, bool) {
	switch table {
	case ports.TableUsers:
		if u, ok := s.users[id]; ok {
			return u.Version, true
		}
	case ports.TableProperties:
		if p, ok := s.properties[id]; ok {
			return p.Version, true
		}
	case ports.TableClients:
		if c, ok := s.clients[id]; ok {
			return c.Version, true
		}
	case ports.TablePipelines:
		if p, ok := s.pipelines[id]; ok {
			return p.Version, true
		}
	case ports.TableLogs:
		if e, ok := s.logs[id]; ok {
			return e.Version, true
		}
	case ports.TableSettings:
		return s.settings.Version, true
	}
	return 0, false
}

func (s *Store) deleteLocal(table, id string) {
	switch table {
	case ports.TableUsers:
		delete(s.users, id)
	case ports.TableProperties:
		delete(s.properties, id)
	case ports.TableClients:
		delete(s.clients, id)
	case ports.TablePipelines:
		delete(s.pipelines, id)
	case ports.TableLogs:
		delete(s.logs, id)
	}
}
