package store

import (
	"fmt"

	"github.com/imoview/realty-crm/internal/core/domain"
	"github.com/imoview/realty-crm/internal/core/ports"
)

// record appends one audit entry for a committed mutation. previous and next
// are snapshotted through the JSON codec, so the entry can never be corrupted
// by later mutation of the live entity. Must be called under the write lock.
func (s *Store) record(action domain.LogAction, kind domain.EntityKind, entityID, label, details string, previous, next any) domain.LogEntry {
	actorID, actorName, _ := s.actor()
	entry := domain.LogEntry{
		ID:         newID(),
		ActorID:    actorID,
		ActorName:  actorName,
		At:         s.now(),
		Action:     action,
		EntityKind: kind,
		EntityID:   entityID,
		Label:      label,
		Details:    details,
		Version:    1,
	}
	if previous != nil {
		entry.Previous = toDocument(previous)
	}
	if next != nil {
		entry.Next = toDocument(next)
	}
	s.logs[entry.ID] = entry
	s.enqueueUpsert(ports.TableLogs, entry)
	return entry
}

// Restore rolls an entity back to the snapshot held by a log entry. The
// snapshot is merged shallowly onto the current document, so fields added
// since the entry was written survive. Restoring is itself an audited
// mutation: it appends a new restore entry whose Next is the restored value.
// An entry without a previous snapshot is a silent no-op.
func (s *Store) Restore(logID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.logs[logID]
	if !ok {
		s.pushError("Log entry not found.")
		return domain.ErrLogNotFound
	}
	if entry.Previous == nil {
		return nil
	}

	current, ok := s.entityDocument(entry.EntityKind, entry.EntityID)
	if !ok {
		// Entity was deleted since: the snapshot alone becomes the document.
		current = ports.Document{}
	}
	merged := cloneDocument(current)
	if merged == nil {
		merged = ports.Document{}
	}
	for k, v := range entry.Previous {
		merged[k] = v
	}
	merged["version"] = documentVersion(current) + 1

	if err := s.applyDocument(entry.EntityKind, entry.EntityID, merged); err != nil {
		s.pushError("Could not restore this record.")
		return err
	}

	s.record(domain.ActionRestore, entry.EntityKind, entry.EntityID, entry.Label,
		fmt.Sprintf("restored from log %s", entry.ID), current, merged)
	s.pushSuccess("Record restored.")
	return nil
}

// entityDocument returns the current document form of the entity a log entry
// points at. Must be called under the lock.
func (s *Store) entityDocument(kind domain.EntityKind, id string) (ports.Document, bool) {
	switch kind {
	case domain.KindUser:
		if u, ok := s.users[id]; ok {
			return toDocument(u), true
		}
	case domain.KindProperty:
		if p, ok := s.properties[id]; ok {
			return toDocument(p), true
		}
	case domain.KindClient:
		if c, ok := s.clients[id]; ok {
			return toDocument(c), true
		}
	case domain.KindPipeline:
		if p, ok := s.pipelines[id]; ok {
			return toDocument(p), true
		}
	case domain.KindSettings:
		return toDocument(s.settings), true
	}
	return nil, false
}

// applyDocument decodes a merged document back into the typed collection and
// ships it to the remote side. Must be called under the lock.
func (s *Store) applyDocument(kind domain.EntityKind, id string, doc ports.Document) error {
	switch kind {
	case domain.KindUser:
		u, err := decodeDocument[domain.User](doc)
		if err != nil {
			return err
		}
		u.ID = id
		s.users[id] = u
		s.enqueueUpsert(ports.TableUsers, u)
	case domain.KindProperty:
		p, err := decodeDocument[domain.Property](doc)
		if err != nil {
			return err
		}
		p.ID = id
		s.properties[id] = p
		s.enqueueUpsert(ports.TableProperties, p)
	case domain.KindClient:
		c, err := decodeDocument[domain.Client](doc)
		if err != nil {
			return err
		}
		c.ID = id
		s.clients[id] = c
		s.enqueueUpsert(ports.TableClients, c)
	case domain.KindPipeline:
		p, err := decodeDocument[domain.Pipeline](doc)
		if err != nil {
			return err
		}
		p.ID = id
		s.pipelines[id] = p
		s.enqueueUpsert(ports.TablePipelines, p)
	case domain.KindSettings:
		cfg, err := decodeDocument[domain.SystemSettings](doc)
		if err != nil {
			return err
		}
		cfg.ID = domain.SettingsID
		s.settings = cfg
		s.persistProjection()
		s.enqueueUpsert(ports.TableSettings, cfg)
	default:
		return fmt.Errorf("restore: unknown entity kind %q", kind)
	}
	return nil
}
