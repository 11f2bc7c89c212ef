package domain

import (
	"errors"
	"time"
)

// VisitStatus is the state of one scheduled showing.
type VisitStatus string

const (
	VisitScheduled VisitStatus = "scheduled"
	VisitCompleted VisitStatus = "completed"
	VisitCancelled VisitStatus = "cancelled"
)

var ErrClientNotFound = errors.New("client not found")
var ErrVisitNotFound = errors.New("visit not found")
var ErrPhoneExists = errors.New("a client with this phone number already exists")
var ErrPhoneRequired = errors.New("a phone number is required")

// Visit is a sub-record of a Client: one showing of a property. It has no
// life of its own and is deleted together with its client.
type Visit struct {
	ID         string      `json:"id"`
	PropertyID string      `json:"property_id"`
	Date       time.Time   `json:"date"`
	Status     VisitStatus `json:"status"`
	Notes      string      `json:"notes,omitempty"`
}

// Client is a lead owned by exactly one user, optionally placed in a pipeline.
type Client struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty"`
	Source  string `json:"source,omitempty"`
	OwnerID string `json:"owner_id"`
	// PipelineID is empty when the lead sits outside any funnel (new, or lost).
	PipelineID string `json:"pipeline_id,omitempty"`
	Stage      string `json:"stage,omitempty"`
	LostReason string `json:"lost_reason,omitempty"`
	// RelatedTo links a family-member lead back to the origin client.
	RelatedTo     string    `json:"related_to,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	LastContactAt time.Time `json:"last_contact_at"`
	Visits        []Visit   `json:"visits,omitempty"`
	Version       int64     `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
}

// NextVisit returns the earliest future visit still in scheduled status, or
// nil when none exists.
func (c *Client) NextVisit(now time.Time) *Visit {
	var next *Visit
	for i := range c.Visits {
		v := &c.Visits[i]
		if v.Status != VisitScheduled || !v.Date.After(now) {
			continue
		}
		if next == nil || v.Date.Before(next.Date) {
			next = v
		}
	}
	if next == nil {
		return nil
	}
	clone := *next
	return &clone
}

// LeadFreshness classifies how recently a lead was contacted.
type LeadFreshness string

const (
	LeadFresh LeadFreshness = "fresh"
	LeadWarm  LeadFreshness = "warm"
	LeadCold  LeadFreshness = "cold"
)

// Freshness classifies the lead against the configured aging thresholds.
func (c *Client) Freshness(now time.Time, warmDays, coldDays int) LeadFreshness {
	if warmDays <= 0 {
		warmDays = 7
	}
	if coldDays <= warmDays {
		coldDays = warmDays * 3
	}
	days := int(now.Sub(c.LastContactAt).Hours() / 24)
	switch {
	case days >= coldDays:
		return LeadCold
	case days >= warmDays:
		return LeadWarm
	default:
		return LeadFresh
	}
}
