// Package events defines the domain events emitted by the graph aggregate
// and the analysis pipeline.
package events

import (
	"time"
)

// DomainEvent is implemented by every event the aggregates emit.
type DomainEvent interface {
	EventType() string
	AggregateID() string
	OccurredAt() time.Time
}

// BaseEvent carries the fields shared by all events.
type BaseEvent struct {
	ID        string
	Type      string
	Aggregate string
	Timestamp time.Time
}

func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) AggregateID() string   { return e.Aggregate }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// GraphCreated is emitted when a new graph snapshot is ingested.
type GraphCreated struct {
	BaseEvent
	GraphID  string
	OwnerID  string
	Platform string
}

// GraphAnalyzed is emitted when the analysis pipeline completes for a graph.
type GraphAnalyzed struct {
	BaseEvent
	GraphID        string
	CommunityCount int
	Modularity     float64
}

// GraphDeleted is emitted when a graph and its derived data are removed.
type GraphDeleted struct {
	BaseEvent
	GraphID string
	OwnerID string
}

// InsightsGenerated is emitted when an insight set is persisted.
type InsightsGenerated struct {
	BaseEvent
	GraphID      string
	InsightCount int
}

// KeyRotated is emitted when a user's pseudonymization key is rotated.
// Old pseudonyms become permanently unrecoverable.
type KeyRotated struct {
	BaseEvent
	UserID string
}
