// Package aggregates contains the Graph aggregate root. It owns the node
// and edge collections and enforces the consistency rules for one ingested
// connection snapshot.
package aggregates

import (
	"fmt"
	"time"

	"netgraph-backend/domain/config"
	"netgraph-backend/domain/core/entities"
	"netgraph-backend/domain/core/valueobjects"
	"netgraph-backend/domain/events"
	pkgerrors "netgraph-backend/pkg/errors"

	"github.com/google/uuid"
)

// Status tracks the graph's position in its processing lifecycle.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusReady      Status = "READY"
	StatusFailed     Status = "FAILED"
)

// Graph is the aggregate root for one ingested connection snapshot.
// Nodes keep their insertion order; that order is the deterministic
// tie-break basis for every analysis algorithm downstream.
type Graph struct {
	id       valueobjects.GraphID
	ownerID  string
	platform string
	status   Status

	nodes     []*entities.GraphNode
	nodeIndex map[valueobjects.NodeID]int
	edges     []*entities.GraphEdge
	edgeKeys  map[string]struct{}

	statistics   *AnalysisResult
	droppedEdges int

	version     int
	createdAt   time.Time
	updatedAt   time.Time
	analyzedAt  *time.Time
	events      []events.DomainEvent
	domainCfg   *config.DomainConfig
	failureCode string
}

// NewGraph creates an empty PENDING graph for an owner and platform.
func NewGraph(ownerID, platform string, cfg *config.DomainConfig) (*Graph, error) {
	if ownerID == "" {
		return nil, pkgerrors.NewValidationError("ownerID is required")
	}
	if platform == "" {
		return nil, pkgerrors.NewValidationError("platform is required")
	}
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	now := time.Now()
	g := &Graph{
		id:        valueobjects.NewGraphID(),
		ownerID:   ownerID,
		platform:  platform,
		status:    StatusPending,
		nodeIndex: make(map[valueobjects.NodeID]int),
		edgeKeys:  make(map[string]struct{}),
		version:   1,
		createdAt: now,
		updatedAt: now,
		domainCfg: cfg,
	}

	g.addEvent(events.GraphCreated{
		BaseEvent: events.BaseEvent{
			ID:        uuid.New().String(),
			Type:      "graph.created",
			Aggregate: g.id.String(),
			Timestamp: now,
		},
		GraphID:  g.id.String(),
		OwnerID:  ownerID,
		Platform: platform,
	})

	return g, nil
}

// ReconstructGraph recreates a graph from stored data without emitting
// events or re-running validation.
func ReconstructGraph(
	id valueobjects.GraphID,
	ownerID, platform string,
	status Status,
	version int,
	createdAt, updatedAt time.Time,
) *Graph {
	return &Graph{
		id:        id,
		ownerID:   ownerID,
		platform:  platform,
		status:    status,
		nodeIndex: make(map[valueobjects.NodeID]int),
		edgeKeys:  make(map[string]struct{}),
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
		domainCfg: config.DefaultDomainConfig(),
	}
}

// ID returns the graph's unique identifier.
func (g *Graph) ID() valueobjects.GraphID { return g.id }

// OwnerID returns the owning user's identifier.
func (g *Graph) OwnerID() string { return g.ownerID }

// Platform returns the source platform of the snapshot.
func (g *Graph) Platform() string { return g.platform }

// Status returns the lifecycle status.
func (g *Graph) Status() Status { return g.status }

// Version returns the aggregate version.
func (g *Graph) Version() int { return g.version }

// CreatedAt returns when the graph was created.
func (g *Graph) CreatedAt() time.Time { return g.createdAt }

// UpdatedAt returns when the graph was last updated.
func (g *Graph) UpdatedAt() time.Time { return g.updatedAt }

// AnalyzedAt returns when insights were last generated, if ever.
func (g *Graph) AnalyzedAt() *time.Time { return g.analyzedAt }

// FailureCode returns the internal error code of a FAILED graph.
func (g *Graph) FailureCode() string { return g.failureCode }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// DroppedEdges returns how many invalid edges were rejected during build.
func (g *Graph) DroppedEdges() int { return g.droppedEdges }

// Statistics returns the computed analysis result, or nil before analysis.
func (g *Graph) Statistics() *AnalysisResult { return g.statistics }

// Nodes returns the nodes in insertion order. The slice is a copy; the
// node pointers are shared so analysis phases can annotate them.
func (g *Graph) Nodes() []*entities.GraphNode {
	nodes := make([]*entities.GraphNode, len(g.nodes))
	copy(nodes, g.nodes)
	return nodes
}

// Edges returns the edges in insertion order.
func (g *Graph) Edges() []*entities.GraphEdge {
	edges := make([]*entities.GraphEdge, len(g.edges))
	copy(edges, g.edges)
	return edges
}

// GetNode retrieves a node by ID.
func (g *Graph) GetNode(id valueobjects.NodeID) (*entities.GraphNode, error) {
	idx, ok := g.nodeIndex[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("node")
	}
	return g.nodes[idx], nil
}

// HasNode reports whether a node exists in the graph.
func (g *Graph) HasNode(id valueobjects.NodeID) bool {
	_, ok := g.nodeIndex[id]
	return ok
}

// NodeOrdinal returns the node's stable insertion index.
func (g *Graph) NodeOrdinal(id valueobjects.NodeID) (int, bool) {
	idx, ok := g.nodeIndex[id]
	return idx, ok
}

// AddNode adds a node, or updates attributes in place when the ID already
// exists (last-write-wins deduplication).
func (g *Graph) AddNode(node *entities.GraphNode) error {
	if node == nil {
		return pkgerrors.NewValidationError("node cannot be nil")
	}
	if idx, exists := g.nodeIndex[node.ID()]; exists {
		g.nodes[idx].UpdateAttributes(node.DisplayName(), node.Username())
		return nil
	}
	if len(g.nodes) >= g.domainCfg.MaxNodesPerGraph {
		return pkgerrors.NewValidationError(
			fmt.Sprintf("maximum nodes reached: %d", g.domainCfg.MaxNodesPerGraph))
	}
	g.nodeIndex[node.ID()] = len(g.nodes)
	g.nodes = append(g.nodes, node)
	return nil
}

// AddEdge validates and adds a directed edge. Edges referencing missing
// nodes or duplicating an existing edge are dropped and counted, never
// fatal.
func (g *Graph) AddEdge(edge *entities.GraphEdge) error {
	if edge == nil {
		return pkgerrors.NewValidationError("edge cannot be nil")
	}
	if !g.HasNode(edge.SourceID) || !g.HasNode(edge.TargetID) {
		g.droppedEdges++
		return nil
	}
	if _, dup := g.edgeKeys[edge.Key()]; dup {
		g.droppedEdges++
		return nil
	}
	if len(g.edges) >= g.domainCfg.MaxEdgesPerGraph {
		return pkgerrors.NewValidationError(
			fmt.Sprintf("maximum edges reached: %d", g.domainCfg.MaxEdgesPerGraph))
	}
	g.edgeKeys[edge.Key()] = struct{}{}
	g.edges = append(g.edges, edge)
	return nil
}

// RecordDroppedEdge counts an edge rejected before construction (for
// example a non-positive weight in the raw export).
func (g *Graph) RecordDroppedEdge() {
	g.droppedEdges++
}

// StartProcessing transitions PENDING -> PROCESSING.
func (g *Graph) StartProcessing() error {
	if g.status != StatusPending && g.status != StatusReady {
		return pkgerrors.NewConflictError("graph is not in a processable state: " + string(g.status))
	}
	g.status = StatusProcessing
	g.touch()
	return nil
}

// CompleteAnalysis attaches the computed statistics, annotates per-node
// results and transitions to READY.
func (g *Graph) CompleteAnalysis(result *AnalysisResult) error {
	if g.status != StatusProcessing {
		return pkgerrors.NewConflictError("graph is not being processed")
	}
	if result == nil {
		return pkgerrors.NewValidationError("analysis result cannot be nil")
	}
	g.statistics = result
	g.status = StatusReady
	now := time.Now()
	g.analyzedAt = &now
	g.touch()

	g.addEvent(events.GraphAnalyzed{
		BaseEvent: events.BaseEvent{
			ID:        uuid.New().String(),
			Type:      "graph.analyzed",
			Aggregate: g.id.String(),
			Timestamp: now,
		},
		GraphID:        g.id.String(),
		CommunityCount: len(result.Communities),
		Modularity:     result.Modularity,
	})
	return nil
}

// FailAnalysis transitions to FAILED with an internal error code. Previously
// computed statistics are left untouched.
func (g *Graph) FailAnalysis(code string) {
	g.status = StatusFailed
	g.failureCode = code
	g.touch()
}

// Validate checks the aggregate invariants: unique node ids, edge endpoints
// present, consistent indexes.
func (g *Graph) Validate() error {
	if len(g.nodeIndex) != len(g.nodes) {
		return pkgerrors.NewValidationError("node index out of sync")
	}
	for _, edge := range g.edges {
		if !g.HasNode(edge.SourceID) {
			return pkgerrors.NewValidationError("edge references non-existent source node")
		}
		if !g.HasNode(edge.TargetID) {
			return pkgerrors.NewValidationError("edge references non-existent target node")
		}
	}
	return nil
}

// GetUncommittedEvents returns all uncommitted domain events.
func (g *Graph) GetUncommittedEvents() []events.DomainEvent {
	out := make([]events.DomainEvent, len(g.events))
	copy(out, g.events)
	return out
}

// MarkEventsAsCommitted clears the uncommitted event list.
func (g *Graph) MarkEventsAsCommitted() {
	g.events = nil
}

// RecordEvent appends a domain event raised outside the aggregate's own
// transitions (deletion, key rotation).
func (g *Graph) RecordEvent(event events.DomainEvent) {
	g.addEvent(event)
}

func (g *Graph) addEvent(event events.DomainEvent) {
	g.events = append(g.events, event)
}

func (g *Graph) touch() {
	g.updatedAt = time.Now()
	g.version++
}
