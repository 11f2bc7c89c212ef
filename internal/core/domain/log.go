package domain

import (
	"errors"
	"time"
)

// LogAction names the kind of mutation an audit entry records.
type LogAction string

const (
	ActionCreate   LogAction = "create"
	ActionUpdate   LogAction = "update"
	ActionDelete   LogAction = "delete"
	ActionRestore  LogAction = "restore"
	ActionApproval LogAction = "approval"
)

// EntityKind names the collection an audit entry refers to.
type EntityKind string

const (
	KindUser     EntityKind = "user"
	KindProperty EntityKind = "property"
	KindClient   EntityKind = "client"
	KindPipeline EntityKind = "pipeline"
	KindSettings EntityKind = "settings"
)

var ErrLogNotFound = errors.New("log entry not found")

// LogEntry is an immutable record of one committed mutation. Previous and
// Next hold deep-copied snapshots of the entity document; once written an
// entry is never mutated.
type LogEntry struct {
	ID         string         `json:"id"`
	ActorID    string         `json:"actor_id"`
	ActorName  string         `json:"actor_name"`
	At         time.Time      `json:"at"`
	Action     LogAction      `json:"action"`
	EntityKind EntityKind     `json:"entity_kind"`
	EntityID   string         `json:"entity_id"`
	Label      string         `json:"label"`
	Details    string         `json:"details,omitempty"`
	Previous   map[string]any `json:"previous,omitempty"`
	Next       map[string]any `json:"next,omitempty"`
	Version    int64          `json:"version"`
}
