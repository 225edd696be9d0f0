package aggregates

import (
	"time"

	"netgraph-backend/domain/config"
	"netgraph-backend/domain/core/entities"
	"netgraph-backend/domain/core/valueobjects"
	pkgerrors "netgraph-backend/pkg/errors"
)

// NodeSnapshot is the serializable form of a graph node.
type NodeSnapshot struct {
	ID          string  `json:"id" msgpack:"id"`
	Kind        string  `json:"kind" msgpack:"kind"`
	DisplayName string  `json:"displayName" msgpack:"displayName"`
	Username    string  `json:"username" msgpack:"username"`
	CommunityID *int    `json:"communityId" msgpack:"communityId"`
	PageRank    float64 `json:"pageRank" msgpack:"pageRank"`
	Betweenness float64 `json:"betweenness" msgpack:"betweenness"`
	Degree      int     `json:"degree" msgpack:"degree"`
}

// EdgeSnapshot is the serializable form of a graph edge.
type EdgeSnapshot struct {
	Source string  `json:"source" msgpack:"source"`
	Target string  `json:"target" msgpack:"target"`
	Weight float64 `json:"weight" msgpack:"weight"`
	Kind   string  `json:"kind" msgpack:"kind"`
}

// GraphSnapshot is the full serializable state of a graph aggregate. The
// persistence and cache layers store and exchange this form; numeric
// fields round-trip bit-for-bit.
type GraphSnapshot struct {
	ID           string          `json:"id" msgpack:"id"`
	OwnerID      string          `json:"ownerId" msgpack:"ownerId"`
	Platform     string          `json:"platform" msgpack:"platform"`
	Status       string          `json:"status" msgpack:"status"`
	Nodes        []NodeSnapshot  `json:"nodes" msgpack:"nodes"`
	Edges        []EdgeSnapshot  `json:"edges" msgpack:"edges"`
	Statistics   *AnalysisResult `json:"statistics" msgpack:"statistics"`
	DroppedEdges int             `json:"droppedEdges" msgpack:"droppedEdges"`
	Version      int             `json:"version" msgpack:"version"`
	FailureCode  string          `json:"failureCode,omitempty" msgpack:"failureCode"`
	CreatedAt    time.Time       `json:"createdAt" msgpack:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt" msgpack:"updatedAt"`
	AnalyzedAt   *time.Time      `json:"analyzedAt" msgpack:"analyzedAt"`
}

// Snapshot captures the aggregate state for persistence. Node order is
// preserved.
func (g *Graph) Snapshot() *GraphSnapshot {
	s := &GraphSnapshot{
		ID:           g.id.String(),
		OwnerID:      g.ownerID,
		Platform:     g.platform,
		Status:       string(g.status),
		Nodes:        make([]NodeSnapshot, 0, len(g.nodes)),
		Edges:        make([]EdgeSnapshot, 0, len(g.edges)),
		Statistics:   g.statistics,
		DroppedEdges: g.droppedEdges,
		Version:      g.version,
		FailureCode:  g.failureCode,
		CreatedAt:    g.createdAt,
		UpdatedAt:    g.updatedAt,
		AnalyzedAt:   g.analyzedAt,
	}
	for _, n := range g.nodes {
		s.Nodes = append(s.Nodes, NodeSnapshot{
			ID:          n.ID().String(),
			Kind:        string(n.Kind()),
			DisplayName: n.DisplayName(),
			Username:    n.Username(),
			CommunityID: n.CommunityID(),
			PageRank:    n.PageRank(),
			Betweenness: n.Betweenness(),
			Degree:      n.Degree(),
		})
	}
	for _, e := range g.edges {
		s.Edges = append(s.Edges, EdgeSnapshot{
			Source: e.SourceID.String(),
			Target: e.TargetID.String(),
			Weight: e.Weight,
			Kind:   string(e.Kind),
		})
	}
	return s
}

// RestoreGraph rebuilds an aggregate from a stored snapshot. Snapshots are
// trusted state, so node and edge validation is not re-run, but index
// integrity is still enforced.
func RestoreGraph(s *GraphSnapshot) (*Graph, error) {
	if s == nil {
		return nil, pkgerrors.NewValidationError("snapshot cannot be nil")
	}
	g := ReconstructGraph(
		valueobjects.GraphID(s.ID),
		s.OwnerID,
		s.Platform,
		Status(s.Status),
		s.Version,
		s.CreatedAt,
		s.UpdatedAt,
	)
	g.statistics = s.Statistics
	g.droppedEdges = s.DroppedEdges
	g.failureCode = s.FailureCode
	g.analyzedAt = s.AnalyzedAt
	g.domainCfg = config.DefaultDomainConfig()

	for _, ns := range s.Nodes {
		node, err := entities.NewGraphNode(
			valueobjects.NodeID(ns.ID),
			entities.NodeKind(ns.Kind),
			ns.DisplayName,
			ns.Username,
		)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "corrupt node snapshot")
		}
		if ns.CommunityID != nil {
			node.SetCommunity(*ns.CommunityID)
		}
		node.SetCentrality(ns.PageRank, ns.Betweenness)
		node.SetDegree(ns.Degree)
		if _, exists := g.nodeIndex[node.ID()]; exists {
			return nil, pkgerrors.NewValidationError("duplicate node in snapshot")
		}
		g.nodeIndex[node.ID()] = len(g.nodes)
		g.nodes = append(g.nodes, node)
	}
	for _, es := range s.Edges {
		edge := &entities.GraphEdge{
			SourceID: valueobjects.NodeID(es.Source),
			TargetID: valueobjects.NodeID(es.Target),
			Weight:   es.Weight,
			Kind:     entities.EdgeKind(es.Kind),
		}
		if !g.HasNode(edge.SourceID) || !g.HasNode(edge.TargetID) {
			return nil, pkgerrors.NewValidationError("edge references missing node in snapshot")
		}
		g.edgeKeys[edge.Key()] = struct{}{}
		g.edges = append(g.edges, edge)
	}
	return g, nil
}
