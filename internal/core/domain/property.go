package domain

import (
	"errors"
	"time"
)

// PropertyStatus represents the lifecycle state of a listing.
type PropertyStatus string

const (
	StatusDraft           PropertyStatus = "draft"
	StatusPendingApproval PropertyStatus = "pending_approval"
	StatusPublished       PropertyStatus = "published"
	StatusSold            PropertyStatus = "sold"
	StatusReserved        PropertyStatus = "reserved"
	StatusInactive        PropertyStatus = "inactive"
)

// validTransitions defines the ordinary (non-staff) lifecycle flow. Staff may
// move a listing to any status via an explicit status change.
var validTransitions = map[PropertyStatus][]PropertyStatus{
	StatusDraft:           {StatusPendingApproval},
	StatusPendingApproval: {StatusPublished, StatusDraft},
	StatusPublished:       {StatusDraft, StatusSold, StatusReserved, StatusInactive},
	StatusSold:            {StatusPublished},
	StatusReserved:        {StatusPublished, StatusSold},
	StatusInactive:        {StatusPublished},
}

var ErrPropertyNotFound = errors.New("property not found")
var ErrInvalidTransition = errors.New("invalid status transition")
var ErrReasonRequired = errors.New("a reason is required")

// CanTransitionTo reports whether the ordinary flow allows moving to next.
func (s PropertyStatus) CanTransitionTo(next PropertyStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether s is one of the known statuses.
func (s PropertyStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPendingApproval, StatusPublished, StatusSold, StatusReserved, StatusInactive:
		return true
	}
	return false
}

// Property is a listing owned by exactly one author.
type Property struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Type        string         `json:"type,omitempty"`
	Location    string         `json:"location,omitempty"`
	Price       float64        `json:"price"`
	Features    []string       `json:"features,omitempty"`
	AuthorID    string         `json:"author_id"`
	Status      PropertyStatus `json:"status"`
	// ApprovedBy is set only while the listing is published.
	ApprovedBy      string     `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	Version         int64      `json:"version"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ApplyStatus moves the property to next, maintaining the approval-field
// invariants: entering published stamps approval metadata (if unset) and
// clears any rejection reason; entering pending_approval clears the rejection
// reason; leaving published via reject clears the approval metadata.
func (p *Property) ApplyStatus(next PropertyStatus, actorID string, at time.Time) {
	switch next {
	case StatusPublished:
		if p.ApprovedBy == "" {
			p.ApprovedBy = actorID
			t := at
			p.ApprovedAt = &t
		}
		p.RejectionReason = ""
	case StatusPendingApproval:
		p.RejectionReason = ""
	case StatusDraft:
		p.ApprovedBy = ""
		p.ApprovedAt = nil
	}
	p.Status = next
	p.UpdatedAt = at
}
