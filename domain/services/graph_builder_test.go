package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netgraph-backend/domain/core/aggregates"
	"netgraph-backend/domain/core/entities"
	"netgraph-backend/domain/core/valueobjects"
)

func record(id string) NodeRecord {
	return NodeRecord{
		ID:          valueobjects.NewNodeID(id),
		Kind:        entities.NodeKindPeer,
		DisplayName: "User " + id,
		Username:    id,
	}
}

func TestBuild_HappyPath(t *testing.T) {
	builder := NewGraphBuilder(nil, nil)

	g, err := builder.Build("owner-1", "twitter",
		[]NodeRecord{record("a"), record("b")},
		[]EdgeRecord{{
			SourceID: valueobjects.NewNodeID("a"),
			TargetID: valueobjects.NewNodeID("b"),
			Weight:   0.5,
			Kind:     entities.EdgeKindFollow,
		}},
	)
	require.NoError(t, err)

	assert.Equal(t, aggregates.StatusPending, g.Status())
	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 1, g.EdgeCount())
	assert.Zero(t, g.DroppedEdges())
}

func TestBuild_DropsInvalidEdges(t *testing.T) {
	builder := NewGraphBuilder(nil, nil)

	g, err := builder.Build("owner-1", "twitter",
		[]NodeRecord{record("a"), record("b")},
		[]EdgeRecord{
			// Valid.
			{SourceID: "a", TargetID: "b", Weight: 1},
			// Duplicate of the first.
			{SourceID: "a", TargetID: "b", Weight: 0.7},
			// Unknown endpoint.
			{SourceID: "a", TargetID: "ghost", Weight: 1},
			// Self loop.
			{SourceID: "a", TargetID: "a", Weight: 1},
			// Non-positive weight.
			{SourceID: "b", TargetID: "a", Weight: 0},
		},
	)
	require.NoError(t, err)

	assert.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, 4, g.DroppedEdges())
}

func TestBuild_DeduplicatesNodesLastWriteWins(t *testing.T) {
	builder := NewGraphBuilder(nil, nil)

	first := record("a")
	second := record("a")
	second.DisplayName = "Renamed"

	g, err := builder.Build("owner-1", "twitter", []NodeRecord{first, second}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, g.NodeCount())
	node, err := g.GetNode(valueobjects.NewNodeID("a"))
	require.NoError(t, err)
	assert.Equal(t, "Renamed", node.DisplayName())
}

func TestBuild_SkipsMalformedNodes(t *testing.T) {
	builder := NewGraphBuilder(nil, nil)

	g, err := builder.Build("owner-1", "twitter",
		[]NodeRecord{record("a"), {ID: "", Kind: entities.NodeKindPeer}},
		nil,
	)
	require.NoError(t, err)
	assert.Equal(t, 1, g.NodeCount())
}

func TestBuild_RequiresOwner(t *testing.T) {
	builder := NewGraphBuilder(nil, nil)
	_, err := builder.Build("", "twitter", nil, nil)
	assert.Error(t, err)
}

func TestBuild_ClampsWeightAboveOne(t *testing.T) {
	builder := NewGraphBuilder(nil, nil)

	g, err := builder.Build("owner-1", "twitter",
		[]NodeRecord{record("a"), record("b")},
		[]EdgeRecord{{SourceID: "a", TargetID: "b", Weight: 3.5}},
	)
	require.NoError(t, err)
	require.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, 1.0, g.Edges()[0].Weight)
}
