package store

import (
	"github.com/imoview/realty-crm/internal/core/domain"
	"github.com/imoview/realty-crm/internal/core/ports"
)

// Webhook event names emitted on property lifecycle changes.
const (
	eventPropertyPublished = "property.published"
	eventPropertyUpdated   = "property.updated"
	eventPropertyStatus    = "property.status_changed"
	eventPropertyDeleted   = "property.deleted"
)

// PropertyInput carries the fields a caller may set on a listing.
type PropertyInput struct {
	Title       string
	Description string
	Type        string
	Location    string
	Price       float64
	Features    []string
	// AsDraft keeps a staff-created listing in draft instead of publishing it.
	AsDraft bool
}

// AddProperty creates a listing owned by the acting user. Staff listings (or
// any listing while approval is switched off) go straight to published;
// everything else starts in pending_approval.
func (s *Store) AddProperty(in PropertyInput) (domain.Property, error) {
	s.mu.Lock()

	actorID, _, role := s.actor()
	now := s.now()
	p := domain.Property{
		ID:          newID(),
		Title:       in.Title,
		Description: in.Description,
		Type:        in.Type,
		Location:    in.Location,
		Price:       in.Price,
		Features:    append([]string(nil), in.Features...),
		AuthorID:    actorID,
		Status:      domain.StatusPendingApproval,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	switch {
	case in.AsDraft:
		p.Status = domain.StatusDraft
	case role.IsStaff() || !s.settings.RequirePropertyApproval:
		p.ApplyStatus(domain.StatusPublished, actorID, now)
	}

	s.properties[p.ID] = p
	s.record(domain.ActionCreate, domain.KindProperty, p.ID, p.Title, "property created", nil, p)
	s.enqueueUpsert(ports.TableProperties, p)
	s.pushSuccess("Property \"" + p.Title + "\" created.")
	published := p.Status == domain.StatusPublished
	out := cloneProperty(p)
	s.mu.Unlock()

	if published {
		s.notifyWebhook(eventPropertyPublished, out)
	}
	return out, nil
}

// UpdateProperty edits listing fields without touching the status machine.
func (s *Store) UpdateProperty(id string, in PropertyInput) (domain.Property, error) {
	s.mu.Lock()

	prev, ok := s.properties[id]
	if !ok {
		s.pushError("Property not found.")
		s.mu.Unlock()
		return domain.Property{}, domain.ErrPropertyNotFound
	}
	actorID, _, role := s.actor()
	if !role.IsStaff() && prev.AuthorID != actorID {
		s.pushError("You can only edit your own listings.")
		s.mu.Unlock()
		return domain.Property{}, domain.ErrForbidden
	}

	next := cloneProperty(prev)
	if in.Title != "" {
		next.Title = in.Title
	}
	if in.Description != "" {
		next.Description = in.Description
	}
	if in.Type != "" {
		next.Type = in.Type
	}
	if in.Location != "" {
		next.Location = in.Location
	}
	if in.Price != 0 {
		next.Price = in.Price
	}
	if in.Features != nil {
		next.Features = append([]string(nil), in.Features...)
	}
	next.Version = prev.Version + 1
	next.UpdatedAt = s.now()

	s.properties[id] = next
	s.record(domain.ActionUpdate, domain.KindProperty, id, next.Title, "property updated", prev, next)
	s.enqueueUpsert(ports.TableProperties, next)
	s.pushSuccess("Property \"" + next.Title + "\" updated.")
	out := cloneProperty(next)
	s.mu.Unlock()

	s.notifyWebhook(eventPropertyUpdated, out)
	return out, nil
}

// SubmitProperty moves a draft into the approval queue.
func (s *Store) SubmitProperty(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.properties[id]
	if !ok {
		s.pushError("Property not found.")
		return domain.ErrPropertyNotFound
	}
	if !prev.Status.CanTransitionTo(domain.StatusPendingApproval) {
		s.pushError("This listing cannot be submitted for approval.")
		return domain.ErrInvalidTransition
	}

	next := cloneProperty(prev)
	next.ApplyStatus(domain.StatusPendingApproval, "", s.now())
	next.Version = prev.Version + 1

	s.properties[id] = next
	s.record(domain.ActionUpdate, domain.KindProperty, id, next.Title, "submitted for approval", prev, next)
	s.enqueueUpsert(ports.TableProperties, next)
	s.pushInfo("Property \"" + next.Title + "\" submitted for approval.")
	return nil
}

// ApproveProperty publishes a pending listing. Staff only. The author is
// notified by email using the propertyApproved template.
func (s *Store) ApproveProperty(id string) error {
	s.mu.Lock()

	_, _, role := s.actor()
	if !role.IsStaff() {
		s.pushError("Only staff can approve listings.")
		s.mu.Unlock()
		return domain.ErrForbidden
	}
	prev, ok := s.properties[id]
	if !ok {
		s.pushError("Property not found.")
		s.mu.Unlock()
		return domain.ErrPropertyNotFound
	}
	if prev.Status != domain.StatusPendingApproval {
		s.pushError("Only pending listings can be approved.")
		s.mu.Unlock()
		return domain.ErrInvalidTransition
	}

	actorID, _, _ := s.actor()
	next := cloneProperty(prev)
	next.ApplyStatus(domain.StatusPublished, actorID, s.now())
	next.Version = prev.Version + 1

	s.properties[id] = next
	s.record(domain.ActionApproval, domain.KindProperty, id, next.Title, "property approved", prev, next)
	s.enqueueUpsert(ports.TableProperties, next)
	s.pushSuccess("Property \"" + next.Title + "\" approved and published.")

	owner, hasOwner := s.users[next.AuthorID]
	body := s.settings.RenderTemplate("propertyApproved", map[string]string{
		"ownerName":     owner.Name,
		"propertyTitle": next.Title,
	})
	out := cloneProperty(next)
	s.mu.Unlock()

	if hasOwner && s.mailer != nil && body != "" {
		if !s.mailer.Send(owner.Email, "Your listing was approved", body) {
			s.log.Debug().Str("to", owner.Email).Msg("approval email not sent")
		}
	}
	s.notifyWebhook(eventPropertyPublished, out)
	return nil
}

// RejectProperty sends a pending listing back to draft with a mandatory
// reason. Staff only.
func (s *Store) RejectProperty(id, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, _, role := s.actor()
	if !role.IsStaff() {
		s.pushError("Only staff can reject listings.")
		return domain.ErrForbidden
	}
	if reason == "" {
		s.pushError("A rejection reason is required.")
		return domain.ErrReasonRequired
	}
	prev, ok := s.properties[id]
	if !ok {
		s.pushError("Property not found.")
		return domain.ErrPropertyNotFound
	}

	next := cloneProperty(prev)
	next.ApplyStatus(domain.StatusDraft, "", s.now())
	next.RejectionReason = reason
	next.Version = prev.Version + 1

	s.properties[id] = next
	s.record(domain.ActionApproval, domain.KindProperty, id, next.Title, "property rejected: "+reason, prev, next)
	s.enqueueUpsert(ports.TableProperties, next)
	s.pushInfo("Property \"" + next.Title + "\" rejected.")
	return nil
}

// ChangePropertyStatus is the staff override: any listing can be moved to any
// status. Moving back into draft or pending_approval requires a reason.
func (s *Store) ChangePropertyStatus(id string, status domain.PropertyStatus, reason string) error {
	s.mu.Lock()

	_, _, role := s.actor()
	if !role.IsStaff() {
		s.pushError("Only staff can change listing status directly.")
		s.mu.Unlock()
		return domain.ErrForbidden
	}
	if !status.Valid() {
		s.pushError("Unknown status.")
		s.mu.Unlock()
		return domain.ErrInvalidTransition
	}
	if (status == domain.StatusDraft || status == domain.StatusPendingApproval) && reason == "" {
		s.pushError("A reason is required when taking a listing off the market.")
		s.mu.Unlock()
		return domain.ErrReasonRequired
	}
	prev, ok := s.properties[id]
	if !ok {
		s.pushError("Property not found.")
		s.mu.Unlock()
		return domain.ErrPropertyNotFound
	}

	actorID, _, _ := s.actor()
	next := cloneProperty(prev)
	next.ApplyStatus(status, actorID, s.now())
	if status == domain.StatusDraft && reason != "" {
		next.RejectionReason = reason
	}
	next.Version = prev.Version + 1

	s.properties[id] = next
	s.record(domain.ActionUpdate, domain.KindProperty, id, next.Title, "status changed to "+string(status), prev, next)
	s.enqueueUpsert(ports.TableProperties, next)
	s.pushSuccess("Property \"" + next.Title + "\" is now " + string(status) + ".")
	out := cloneProperty(next)
	s.mu.Unlock()

	s.notifyWebhook(eventPropertyStatus, out)
	return nil
}

// DeleteProperty removes a listing. The author or staff may delete.
func (s *Store) DeleteProperty(id string) error {
	s.mu.Lock()

	prev, ok := s.properties[id]
	if !ok {
		s.pushError("Property not found.")
		s.mu.Unlock()
		return domain.ErrPropertyNotFound
	}
	actorID, _, role := s.actor()
	if !role.IsStaff() && prev.AuthorID != actorID {
		s.pushError("You can only delete your own listings.")
		s.mu.Unlock()
		return domain.ErrForbidden
	}

	delete(s.properties, id)
	s.record(domain.ActionDelete, domain.KindProperty, id, prev.Title, "property deleted", prev, nil)
	s.enqueueDelete(ports.TableProperties, id)
	s.pushSuccess("Property \"" + prev.Title + "\" deleted.")
	out := cloneProperty(prev)
	s.mu.Unlock()

	s.notifyWebhook(eventPropertyDeleted, out)
	return nil
}

// notifyWebhook fires the outbound webhook without blocking the caller.
func (s *Store) notifyWebhook(event string, p domain.Property) {
	if s.webhook == nil {
		return
	}
	go s.webhook.NotifyProperty(event, p)
}
