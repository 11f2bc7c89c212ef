package store

import (
	"strings"
	"time"

	"github.com/imoview/realty-crm/internal/core/domain"
	"github.com/imoview/realty-crm/internal/core/ports"
)

// ClientInput carries the fields a caller may set on a lead.
type ClientInput struct {
	Name   string
	Phone  string
	Email  string
	Source string
	Notes  string
}

// AddClient creates a lead owned by the acting user. Phone numbers are unique
// across the whole collection.
func (s *Store) AddClient(in ClientInput) (domain.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addClientLocked(in, "")
}

// addClientLocked is the shared insert path; relatedTo links a family-member
// lead back to its origin. Must be called under the write lock.
func (s *Store) addClientLocked(in ClientInput, relatedTo string) (domain.Client, error) {
	phone := normalizePhone(in.Phone)
	if phone == "" {
		s.pushError("A phone number is required.")
		return domain.Client{}, domain.ErrPhoneRequired
	}
	for _, c := range s.clients {
		if normalizePhone(c.Phone) == phone {
			s.pushError("A client with this phone number already exists.")
			return domain.Client{}, domain.ErrPhoneExists
		}
	}

	actorID, _, _ := s.actor()
	now := s.now()
	c := domain.Client{
		ID:            newID(),
		Name:          in.Name,
		Phone:         in.Phone,
		Email:         in.Email,
		Source:        in.Source,
		Notes:         in.Notes,
		OwnerID:       actorID,
		RelatedTo:     relatedTo,
		LastContactAt: now,
		Version:       1,
		CreatedAt:     now,
	}
	if def := s.defaultPipelineLocked(); def != nil && len(def.Stages) > 0 {
		c.PipelineID = def.ID
		c.Stage = def.Stages[0].ID
	}

	s.clients[c.ID] = c
	s.record(domain.ActionCreate, domain.KindClient, c.ID, c.Name, "lead created", nil, c)
	s.enqueueUpsert(ports.TableClients, c)
	s.pushSuccess("Lead " + c.Name + " created.")
	return cloneClient(c), nil
}

// AddFamilyMember creates a new lead related to an existing one. Compound
// operation: the origin gains a note about the relation and both records are
// audited and synced.
func (s *Store) AddFamilyMember(originID string, in ClientInput) (domain.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	origin, ok := s.clients[originID]
	if !ok {
		s.pushError("Client not found.")
		return domain.Client{}, domain.ErrClientNotFound
	}

	member, err := s.addClientLocked(in, originID)
	if err != nil {
		return domain.Client{}, err
	}

	next := cloneClient(origin)
	note := "Family member: " + member.Name
	if next.Notes != "" {
		next.Notes += "\n" + note
	} else {
		next.Notes = note
	}
	next.Version = origin.Version + 1
	s.clients[originID] = next
	s.record(domain.ActionUpdate, domain.KindClient, originID, next.Name, "family member added", origin, next)
	s.enqueueUpsert(ports.TableClients, next)
	return member, nil
}

// UpdateClient edits lead fields. A phone change keeps the uniqueness rule.
func (s *Store) UpdateClient(id string, in ClientInput) (domain.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.clients[id]
	if !ok {
		s.pushError("Client not found.")
		return domain.Client{}, domain.ErrClientNotFound
	}
	if in.Phone != "" && normalizePhone(in.Phone) != normalizePhone(prev.Phone) {
		for _, c := range s.clients {
			if c.ID != id && normalizePhone(c.Phone) == normalizePhone(in.Phone) {
				s.pushError("A client with this phone number already exists.")
				return domain.Client{}, domain.ErrPhoneExists
			}
		}
	}

	next := cloneClient(prev)
	if in.Name != "" {
		next.Name = in.Name
	}
	if in.Phone != "" {
		next.Phone = in.Phone
	}
	if in.Email != "" {
		next.Email = in.Email
	}
	if in.Source != "" {
		next.Source = in.Source
	}
	if in.Notes != "" {
		next.Notes = in.Notes
	}
	next.Version = prev.Version + 1

	s.clients[id] = next
	s.record(domain.ActionUpdate, domain.KindClient, id, next.Name, "lead updated", prev, next)
	s.enqueueUpsert(ports.TableClients, next)
	s.pushSuccess("Lead " + next.Name + " updated.")
	return cloneClient(next), nil
}

// DeleteClient removes a lead and, with it, all of its visits.
func (s *Store) DeleteClient(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.clients[id]
	if !ok {
		s.pushError("Client not found.")
		return domain.ErrClientNotFound
	}
	delete(s.clients, id)
	s.record(domain.ActionDelete, domain.KindClient, id, prev.Name, "lead deleted", prev, nil)
	s.enqueueDelete(ports.TableClients, id)
	s.pushSuccess("Lead " + prev.Name + " deleted.")
	return nil
}

// MarkLeadAsLost pulls a lead out of its pipeline, recording why. History is
// retained; only the pipeline placement is cleared.
func (s *Store) MarkLeadAsLost(id, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if reason == "" {
		s.pushError("A reason is required to mark a lead as lost.")
		return domain.ErrReasonRequired
	}
	prev, ok := s.clients[id]
	if !ok {
		s.pushError("Client not found.")
		return domain.ErrClientNotFound
	}

	next := cloneClient(prev)
	next.PipelineID = ""
	next.Stage = ""
	next.LostReason = reason
	next.Version = prev.Version + 1

	s.clients[id] = next
	s.record(domain.ActionUpdate, domain.KindClient, id, next.Name, "lead lost: "+reason, prev, next)
	s.enqueueUpsert(ports.TableClients, next)
	s.pushInfo("Lead " + next.Name + " marked as lost.")
	return nil
}

// MoveLeadToStage places a lead at a stage of a pipeline. Re-entering a
// pipeline clears a previous lost reason.
func (s *Store) MoveLeadToStage(id, pipelineID, stageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.clients[id]
	if !ok {
		s.pushError("Client not found.")
		return domain.ErrClientNotFound
	}
	pipeline, ok := s.pipelines[pipelineID]
	if !ok {
		s.pushError("Pipeline not found.")
		return domain.ErrPipelineNotFound
	}
	if !pipeline.HasStage(stageID) {
		s.pushError("Stage not found in this pipeline.")
		return domain.ErrStageNotFound
	}

	next := cloneClient(prev)
	next.PipelineID = pipelineID
	next.Stage = stageID
	next.LostReason = ""
	next.Version = prev.Version + 1

	s.clients[id] = next
	s.record(domain.ActionUpdate, domain.KindClient, id, next.Name, "moved to stage "+stageID, prev, next)
	s.enqueueUpsert(ports.TableClients, next)
	return nil
}

// TouchLeadContact stamps the lead as contacted now, resetting its aging.
func (s *Store) TouchLeadContact(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.clients[id]
	if !ok {
		s.pushError("Client not found.")
		return domain.ErrClientNotFound
	}
	next := cloneClient(prev)
	next.LastContactAt = s.now()
	next.Version = prev.Version + 1

	s.clients[id] = next
	s.record(domain.ActionUpdate, domain.KindClient, id, next.Name, "contact recorded", prev, next)
	s.enqueueUpsert(ports.TableClients, next)
	return nil
}

// ScheduleVisit books a showing for a lead.
func (s *Store) ScheduleVisit(clientID, propertyID string, date time.Time, notes string) (domain.Visit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.clients[clientID]
	if !ok {
		s.pushError("Client not found.")
		return domain.Visit{}, domain.ErrClientNotFound
	}
	if _, ok := s.properties[propertyID]; !ok {
		s.pushError("Property not found.")
		return domain.Visit{}, domain.ErrPropertyNotFound
	}

	visit := domain.Visit{
		ID:         newID(),
		PropertyID: propertyID,
		Date:       date,
		Status:     domain.VisitScheduled,
		Notes:      notes,
	}
	next := cloneClient(prev)
	next.Visits = append(next.Visits, visit)
	next.Version = prev.Version + 1

	s.clients[clientID] = next
	s.record(domain.ActionUpdate, domain.KindClient, clientID, next.Name, "visit scheduled", prev, next)
	s.enqueueUpsert(ports.TableClients, next)
	s.pushSuccess("Visit scheduled for " + next.Name + ".")
	return visit, nil
}

// UpdateVisit changes the status or notes of one visit.
func (s *Store) UpdateVisit(clientID, visitID string, status domain.VisitStatus, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.clients[clientID]
	if !ok {
		s.pushError("Client not found.")
		return domain.ErrClientNotFound
	}

	next := cloneClient(prev)
	found := false
	for i := range next.Visits {
		if next.Visits[i].ID == visitID {
			next.Visits[i].Status = status
			if notes != "" {
				next.Visits[i].Notes = notes
			}
			found = true
			break
		}
	}
	if !found {
		s.pushError("Visit not found.")
		return domain.ErrVisitNotFound
	}
	next.Version = prev.Version + 1

	s.clients[clientID] = next
	s.record(domain.ActionUpdate, domain.KindClient, clientID, next.Name, "visit "+string(status), prev, next)
	s.enqueueUpsert(ports.TableClients, next)
	return nil
}

// CancelVisit marks one visit cancelled, keeping its notes.
func (s *Store) CancelVisit(clientID, visitID string) error {
	return s.UpdateVisit(clientID, visitID, domain.VisitCancelled, "")
}

// normalizePhone strips formatting so "11 98888-0001" and "11988880001"
// collide as intended.
func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
