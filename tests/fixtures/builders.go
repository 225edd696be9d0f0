// Package fixtures provides graph builders shared across test packages.
package fixtures

import (
	"testing"

	"github.com/stretchr/testify/require"

	"netgraph-backend/domain/core/aggregates"
	"netgraph-backend/domain/core/entities"
	"netgraph-backend/domain/core/valueobjects"
)

// Edge describes a directed edge for the Graph builder.
type Edge struct {
	Source string
	Target string
	Weight float64
}

// Graph builds a PENDING graph with the given node IDs (in order) and
// edges. Node display names follow the pattern "User <id>".
func Graph(t *testing.T, nodeIDs []string, edges []Edge) *aggregates.Graph {
	t.Helper()
	g, err := aggregates.NewGraph("owner-1", "twitter", nil)
	require.NoError(t, err)

	for _, id := range nodeIDs {
		node, err := entities.NewGraphNode(
			valueobjects.NewNodeID(id), entities.NodeKindPeer, "User "+id, id)
		require.NoError(t, err)
		require.NoError(t, g.AddNode(node))
	}
	for _, e := range edges {
		weight := e.Weight
		if weight == 0 {
			weight = 1
		}
		edge, err := entities.NewGraphEdge(
			valueobjects.NewNodeID(e.Source), valueobjects.NewNodeID(e.Target),
			weight, entities.EdgeKindFollow)
		require.NoError(t, err)
		require.NoError(t, g.AddEdge(edge))
	}
	return g
}

// TwoTriangles builds two disjoint directed 3-cycles: a-b-c and d-e-f.
func TwoTriangles(t *testing.T) *aggregates.Graph {
	t.Helper()
	return Graph(t,
		[]string{"a", "b", "c", "d", "e", "f"},
		[]Edge{
			{Source: "a", Target: "b"},
			{Source: "b", Target: "c"},
			{Source: "c", Target: "a"},
			{Source: "d", Target: "e"},
			{Source: "e", Target: "f"},
			{Source: "f", Target: "d"},
		},
	)
}

// Star builds a hub node connected both ways to each leaf.
func Star(t *testing.T, leaves int) *aggregates.Graph {
	t.Helper()
	ids := []string{"hub"}
	edges := make([]Edge, 0, 2*leaves)
	for i := 0; i < leaves; i++ {
		leaf := "leaf" + string(rune('a'+i))
		ids = append(ids, leaf)
		edges = append(edges,
			Edge{Source: "hub", Target: leaf},
			Edge{Source: leaf, Target: "hub"},
		)
	}
	return Graph(t, ids, edges)
}
