// Package valueobjects contains the strongly-typed identifiers used across
// the domain. Raw strings never cross aggregate boundaries.
package valueobjects

import (
	"github.com/google/uuid"
)

// NodeID is a pseudonymized node identifier. It is derived from the raw
// platform handle with the owner's secret key and carries no recoverable
// information about the original value.
type NodeID string

// NewNodeID wraps an already-derived pseudonym.
func NewNodeID(pseudonym string) NodeID {
	return NodeID(pseudonym)
}

// String returns the string representation.
func (id NodeID) String() string { return string(id) }

// IsZero reports whether the ID is empty.
func (id NodeID) IsZero() bool { return id == "" }

// Equals compares two node IDs.
func (id NodeID) Equals(other NodeID) bool { return id == other }

// GraphID uniquely identifies one ingested graph snapshot.
type GraphID string

// NewGraphID creates a new random GraphID.
func NewGraphID() GraphID {
	return GraphID(uuid.New().String())
}

// String returns the string representation.
func (id GraphID) String() string { return string(id) }

// IsZero reports whether the ID is empty.
func (id GraphID) IsZero() bool { return id == "" }

// InsightID uniquely identifies a generated insight.
type InsightID string

// NewInsightID creates a new random InsightID.
func NewInsightID() InsightID {
	return InsightID(uuid.New().String())
}

// String returns the string representation.
func (id InsightID) String() string { return string(id) }
