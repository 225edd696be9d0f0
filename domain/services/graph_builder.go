package services

import (
	"netgraph-backend/domain/config"
	"netgraph-backend/domain/core/aggregates"
	"netgraph-backend/domain/core/entities"
	"netgraph-backend/domain/core/valueobjects"
	pkgerrors "netgraph-backend/pkg/errors"

	"go.uber.org/zap"
)

// NodeRecord is a pseudonymized node ready for graph construction.
type NodeRecord struct {
	ID          valueobjects.NodeID
	Kind        entities.NodeKind
	DisplayName string
	Username    string
}

// EdgeRecord is a pseudonymized directed edge ready for graph construction.
type EdgeRecord struct {
	SourceID valueobjects.NodeID
	TargetID valueobjects.NodeID
	Weight   float64
	Kind     entities.EdgeKind
}

// GraphBuilder turns pseudonymized records into a validated Graph
// aggregate. Per-record problems are dropped and counted, never fatal.
type GraphBuilder struct {
	cfg    *config.DomainConfig
	logger *zap.Logger
}

// NewGraphBuilder creates a builder with the given domain configuration.
func NewGraphBuilder(cfg *config.DomainConfig, logger *zap.Logger) *GraphBuilder {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GraphBuilder{cfg: cfg, logger: logger}
}

// Build constructs a PENDING graph from the records. Nodes are deduplicated
// by ID with last-write-wins attribute resolution; edges referencing absent
// endpoints or carrying non-positive weights are dropped and surface only
// as a warning count on the graph.
func (b *GraphBuilder) Build(ownerID, platform string, nodes []NodeRecord, edges []EdgeRecord) (*aggregates.Graph, error) {
	graph, err := aggregates.NewGraph(ownerID, platform, b.cfg)
	if err != nil {
		return nil, err
	}

	for _, rec := range nodes {
		node, err := entities.NewGraphNode(rec.ID, rec.Kind, rec.DisplayName, rec.Username)
		if err != nil {
			b.logger.Warn("skipping malformed node record",
				zap.String("graph_id", graph.ID().String()),
				zap.Error(err),
			)
			continue
		}
		if err := graph.AddNode(node); err != nil {
			return nil, pkgerrors.Wrap(err, "failed to add node")
		}
	}

	dropped := 0
	for _, rec := range edges {
		edge, err := entities.NewGraphEdge(rec.SourceID, rec.TargetID, rec.Weight, rec.Kind)
		if err != nil {
			graph.RecordDroppedEdge()
			dropped++
			continue
		}
		before := graph.EdgeCount()
		if err := graph.AddEdge(edge); err != nil {
			return nil, pkgerrors.Wrap(err, "failed to add edge")
		}
		if graph.EdgeCount() == before {
			dropped++
		}
	}

	if dropped > 0 {
		b.logger.Warn("dropped invalid edges during build",
			zap.String("graph_id", graph.ID().String()),
			zap.Int("dropped", dropped),
			zap.Int("kept", graph.EdgeCount()),
		)
	}

	if err := graph.Validate(); err != nil {
		return nil, err
	}
	return graph, nil
}
