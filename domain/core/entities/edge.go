package entities

import (
	"netgraph-backend/domain/core/valueobjects"
	pkgerrors "netgraph-backend/pkg/errors"
)

// EdgeKind categorizes the relationship an edge represents.
type EdgeKind string

const (
	EdgeKindFollow       EdgeKind = "follow"
	EdgeKindMutualFollow EdgeKind = "mutual-follow"
	EdgeKindInteraction  EdgeKind = "interaction"
)

// GraphEdge is a directed tie between two nodes. Weight is the interaction
// strength in (0,1]. A reciprocal pair of directed edges represents a
// mutual tie.
type GraphEdge struct {
	SourceID valueobjects.NodeID
	TargetID valueobjects.NodeID
	Weight   float64
	Kind     EdgeKind
}

// NewGraphEdge validates and creates an edge. Weights above 1 are clamped;
// zero or negative weights are rejected.
func NewGraphEdge(source, target valueobjects.NodeID, weight float64, kind EdgeKind) (*GraphEdge, error) {
	if source.IsZero() || target.IsZero() {
		return nil, pkgerrors.NewValidationError("edge endpoints are required")
	}
	if source.Equals(target) {
		return nil, pkgerrors.NewValidationError("edge cannot connect a node to itself")
	}
	if weight <= 0 {
		return nil, pkgerrors.NewValidationError("edge weight must be positive")
	}
	if weight > 1 {
		weight = 1
	}
	if kind == "" {
		kind = EdgeKindFollow
	}
	return &GraphEdge{
		SourceID: source,
		TargetID: target,
		Weight:   weight,
		Kind:     kind,
	}, nil
}

// Key returns the canonical identity of a directed edge within a graph.
func (e *GraphEdge) Key() string {
	return e.SourceID.String() + "->" + e.TargetID.String()
}
