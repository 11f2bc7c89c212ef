package store

import (
	"github.com/imoview/realty-crm/internal/core/domain"
	"github.com/imoview/realty-crm/internal/core/ports"
)

// UpdateSettings replaces the global settings singleton. The id and version
// are managed here, whatever the caller sent.
func (s *Store) UpdateSettings(next domain.SystemSettings) (domain.SystemSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.settings
	next.ID = domain.SettingsID
	next.Version = prev.Version + 1
	next.UpdatedAt = s.now()

	s.settings = next
	s.persistProjection()
	s.record(domain.ActionUpdate, domain.KindSettings, domain.SettingsID, "System settings", "settings updated", prev, next)
	s.enqueueUpsert(ports.TableSettings, next)
	s.pushSuccess("Settings saved.")
	return cloneSettings(next), nil
}
