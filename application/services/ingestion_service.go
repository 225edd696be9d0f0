package services

import (
	"context"

	"netgraph-backend/application/ports"
	"netgraph-backend/domain/config"
	"netgraph-backend/domain/core/aggregates"
	"netgraph-backend/domain/core/entities"
	domainservices "netgraph-backend/domain/services"
	pkgerrors "netgraph-backend/pkg/errors"

	"go.uber.org/zap"
)

// RawNodeRecord is one node as exported by the platform, before
// pseudonymization.
type RawNodeRecord struct {
	RawID       string
	Kind        string
	DisplayName string
	Username    string
}

// RawEdgeRecord is one edge as exported by the platform, before
// pseudonymization.
type RawEdgeRecord struct {
	RawSource string
	RawTarget string
	Weight    float64
	Kind      string
}

// IngestionService turns a raw export into a persisted, pseudonymized
// graph snapshot. No externally-identifiable value survives ingestion: raw
// handles are replaced by keyed one-way hashes before the graph is built.
type IngestionService struct {
	keys    ports.KeyManager
	graphs  ports.GraphRepository
	builder *domainservices.GraphBuilder
	logger  *zap.Logger
}

// NewIngestionService creates the service.
func NewIngestionService(
	keys ports.KeyManager,
	graphs ports.GraphRepository,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *IngestionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IngestionService{
		keys:    keys,
		graphs:  graphs,
		builder: domainservices.NewGraphBuilder(cfg, logger),
		logger:  logger,
	}
}

// Ingest pseudonymizes the records, builds a new PENDING graph version and
// persists it. A key-manager failure is fatal for the whole ingestion.
func (s *IngestionService) Ingest(
	ctx context.Context,
	ownerID, platform string,
	rawNodes []RawNodeRecord,
	rawEdges []RawEdgeRecord,
) (*aggregates.Graph, error) {
	if ownerID == "" {
		return nil, pkgerrors.NewValidationError("ownerID is required")
	}

	key, err := s.keys.EnsureUserKey(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	nodes := make([]domainservices.NodeRecord, 0, len(rawNodes))
	for _, raw := range rawNodes {
		if raw.RawID == "" {
			continue
		}
		kind := entities.NodeKind(raw.Kind)
		if kind == "" {
			kind = entities.NodeKindPeer
		}
		nodes = append(nodes, domainservices.NodeRecord{
			ID:          key.DeriveID(raw.RawID),
			Kind:        kind,
			DisplayName: raw.DisplayName,
			Username:    raw.Username,
		})
	}

	edges := make([]domainservices.EdgeRecord, 0, len(rawEdges))
	for _, raw := range rawEdges {
		edges = append(edges, domainservices.EdgeRecord{
			SourceID: key.DeriveID(raw.RawSource),
			TargetID: key.DeriveID(raw.RawTarget),
			Weight:   raw.Weight,
			Kind:     entities.EdgeKind(raw.Kind),
		})
	}

	graph, err := s.builder.Build(ownerID, platform, nodes, edges)
	if err != nil {
		return nil, err
	}

	if err := s.graphs.Save(ctx, graph); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to persist ingested graph")
	}

	s.logger.Info("graph ingested",
		zap.String("graph_id", graph.ID().String()),
		zap.String("owner_id", ownerID),
		zap.String("platform", platform),
		zap.Int("nodes", graph.NodeCount()),
		zap.Int("edges", graph.EdgeCount()),
		zap.Int("dropped_edges", graph.DroppedEdges()),
	)
	return graph, nil
}

// RotateKey rotates the user's pseudonymization key. Existing graphs keep
// their old pseudonyms and can never be correlated with new ingestions.
func (s *IngestionService) RotateKey(ctx context.Context, ownerID string) error {
	_, err := s.keys.RotateKey(ctx, ownerID)
	return err
}
