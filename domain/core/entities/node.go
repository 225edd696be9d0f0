package entities

import (
	"netgraph-backend/domain/core/valueobjects"
	pkgerrors "netgraph-backend/pkg/errors"
)

// NodeKind distinguishes the graph owner from their connections.
type NodeKind string

const (
	NodeKindSelf NodeKind = "SELF"
	NodeKindPeer NodeKind = "PEER"
)

// GraphNode is a single account in a user's connection graph. The ID is a
// pseudonym; DisplayName and Username are whatever the export contained and
// are only kept for rendering back to the owning user.
type GraphNode struct {
	id          valueobjects.NodeID
	kind        NodeKind
	displayName string
	username    string

	// Analysis results, populated during the analysis phases.
	communityID *int
	pageRank    float64
	betweenness float64
	degree      int
}

// NewGraphNode creates a node from a pseudonymized identifier.
func NewGraphNode(id valueobjects.NodeID, kind NodeKind, displayName, username string) (*GraphNode, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("node id is required")
	}
	if kind != NodeKindSelf && kind != NodeKindPeer {
		return nil, pkgerrors.NewValidationError("invalid node kind: " + string(kind))
	}
	return &GraphNode{
		id:          id,
		kind:        kind,
		displayName: displayName,
		username:    username,
	}, nil
}

// ID returns the node's pseudonymized identifier.
func (n *GraphNode) ID() valueobjects.NodeID { return n.id }

// Kind returns whether the node is the graph owner or a peer.
func (n *GraphNode) Kind() NodeKind { return n.kind }

// DisplayName returns the display name from the export.
func (n *GraphNode) DisplayName() string { return n.displayName }

// Username returns the username from the export.
func (n *GraphNode) Username() string { return n.username }

// CommunityID returns the detected community, or nil before detection.
func (n *GraphNode) CommunityID() *int { return n.communityID }

// PageRank returns the node's influence score.
func (n *GraphNode) PageRank() float64 { return n.pageRank }

// Betweenness returns the node's normalized bridge score.
func (n *GraphNode) Betweenness() float64 { return n.betweenness }

// Degree returns the node's total degree.
func (n *GraphNode) Degree() int { return n.degree }

// UpdateAttributes replaces the display attributes. Used by the builder for
// last-write-wins deduplication of conflicting records.
func (n *GraphNode) UpdateAttributes(displayName, username string) {
	n.displayName = displayName
	n.username = username
}

// SetCommunity records the detected community assignment.
func (n *GraphNode) SetCommunity(communityID int) {
	c := communityID
	n.communityID = &c
}

// SetCentrality records the computed centrality scores.
func (n *GraphNode) SetCentrality(pageRank, betweenness float64) {
	n.pageRank = pageRank
	n.betweenness = betweenness
}

// SetDegree records the node's total degree.
func (n *GraphNode) SetDegree(degree int) {
	n.degree = degree
}
