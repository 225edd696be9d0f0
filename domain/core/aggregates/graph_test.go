package aggregates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netgraph-backend/domain/core/entities"
	"netgraph-backend/domain/core/valueobjects"
	pkgerrors "netgraph-backend/pkg/errors"
)

func node(t *testing.T, id string) *entities.GraphNode {
	t.Helper()
	n, err := entities.NewGraphNode(
		valueobjects.NewNodeID(id), entities.NodeKindPeer, "User "+id, id)
	require.NoError(t, err)
	return n
}

func edge(source, target string) *entities.GraphEdge {
	return &entities.GraphEdge{
		SourceID: valueobjects.NewNodeID(source),
		TargetID: valueobjects.NewNodeID(target),
		Weight:   1,
		Kind:     entities.EdgeKindFollow,
	}
}

func TestNewGraph(t *testing.T) {
	g, err := NewGraph("owner-1", "twitter", nil)
	require.NoError(t, err)

	assert.Equal(t, StatusPending, g.Status())
	assert.Equal(t, "owner-1", g.OwnerID())
	assert.Equal(t, 1, g.Version())
	assert.NotEmpty(t, g.ID())

	evts := g.GetUncommittedEvents()
	require.Len(t, evts, 1)
	assert.Equal(t, "graph.created", evts[0].EventType())

	g.MarkEventsAsCommitted()
	assert.Empty(t, g.GetUncommittedEvents())
}

func TestNewGraph_RequiresOwnerAndPlatform(t *testing.T) {
	_, err := NewGraph("", "twitter", nil)
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = NewGraph("owner-1", "", nil)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestAddNode_LastWriteWins(t *testing.T) {
	g, err := NewGraph("owner-1", "twitter", nil)
	require.NoError(t, err)

	require.NoError(t, g.AddNode(node(t, "a")))
	renamed := node(t, "a")
	renamed.UpdateAttributes("Renamed", "a")
	require.NoError(t, g.AddNode(renamed))

	assert.Equal(t, 1, g.NodeCount())
	got, err := g.GetNode(valueobjects.NewNodeID("a"))
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.DisplayName())

	// Ordinal stays stable across updates.
	idx, ok := g.NodeOrdinal(valueobjects.NewNodeID("a"))
	assert.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestAddEdge_DropsInvalidSilently(t *testing.T) {
	g, err := NewGraph("owner-1", "twitter", nil)
	require.NoError(t, err)
	require.NoError(t, g.AddNode(node(t, "a")))
	require.NoError(t, g.AddNode(node(t, "b")))

	require.NoError(t, g.AddEdge(edge("a", "b")))
	// Duplicate.
	require.NoError(t, g.AddEdge(edge("a", "b")))
	// Missing endpoint.
	require.NoError(t, g.AddEdge(edge("a", "ghost")))

	assert.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, 2, g.DroppedEdges())
}

func TestLifecycle(t *testing.T) {
	g, err := NewGraph("owner-1", "twitter", nil)
	require.NoError(t, err)

	// Analysis cannot complete before processing starts.
	err = g.CompleteAnalysis(&AnalysisResult{})
	assert.True(t, pkgerrors.IsConflict(err))

	require.NoError(t, g.StartProcessing())
	assert.Equal(t, StatusProcessing, g.Status())

	// Double start conflicts.
	err = g.StartProcessing()
	assert.True(t, pkgerrors.IsConflict(err))

	result := &AnalysisResult{NodeCount: 2, Modularity: 0.4}
	require.NoError(t, g.CompleteAnalysis(result))
	assert.Equal(t, StatusReady, g.Status())
	assert.Same(t, result, g.Statistics())
	require.NotNil(t, g.AnalyzedAt())

	// A READY graph can be re-analyzed.
	require.NoError(t, g.StartProcessing())
	g.FailAnalysis("ANALYSIS_TIMEOUT")
	assert.Equal(t, StatusFailed, g.Status())
	assert.Equal(t, "ANALYSIS_TIMEOUT", g.FailureCode())
	// Prior statistics survive a failed re-run.
	assert.Same(t, result, g.Statistics())
}

func TestCompleteAnalysis_EmitsEvent(t *testing.T) {
	g, err := NewGraph("owner-1", "twitter", nil)
	require.NoError(t, err)
	g.MarkEventsAsCommitted()

	require.NoError(t, g.StartProcessing())
	require.NoError(t, g.CompleteAnalysis(&AnalysisResult{
		Communities: []Community{{ID: 0, Size: 3}},
		Modularity:  0.5,
	}))

	evts := g.GetUncommittedEvents()
	require.Len(t, evts, 1)
	assert.Equal(t, "graph.analyzed", evts[0].EventType())
}

func TestSnapshotRoundTrip(t *testing.T) {
	g, err := NewGraph("owner-1", "twitter", nil)
	require.NoError(t, err)
	require.NoError(t, g.AddNode(node(t, "a")))
	require.NoError(t, g.AddNode(node(t, "b")))
	require.NoError(t, g.AddEdge(edge("a", "b")))
	g.RecordDroppedEdge()

	require.NoError(t, g.StartProcessing())
	require.NoError(t, g.CompleteAnalysis(&AnalysisResult{
		NodeCount:  2,
		EdgeCount:  1,
		Density:    0.5,
		Modularity: 0.123456789,
	}))
	g.Nodes()[0].SetCommunity(0)
	g.Nodes()[0].SetCentrality(0.625, 0.5)
	g.Nodes()[0].SetDegree(2)

	restored, err := RestoreGraph(g.Snapshot())
	require.NoError(t, err)

	assert.Equal(t, g.ID(), restored.ID())
	assert.Equal(t, g.OwnerID(), restored.OwnerID())
	assert.Equal(t, StatusReady, restored.Status())
	assert.Equal(t, g.Version(), restored.Version())
	assert.Equal(t, 1, restored.DroppedEdges())
	require.NotNil(t, restored.Statistics())
	assert.Equal(t, 0.123456789, restored.Statistics().Modularity)

	first := restored.Nodes()[0]
	require.NotNil(t, first.CommunityID())
	assert.Equal(t, 0, *first.CommunityID())
	assert.Equal(t, 0.625, first.PageRank())
	assert.Equal(t, 0.5, first.Betweenness())
	assert.Equal(t, 2, first.Degree())

	require.Len(t, restored.Edges(), 1)
	assert.Equal(t, valueobjects.NewNodeID("a"), restored.Edges()[0].SourceID)

	// Restoration emits no events.
	assert.Empty(t, restored.GetUncommittedEvents())
}

func TestRestoreGraph_RejectsCorruptSnapshots(t *testing.T) {
	_, err := RestoreGraph(nil)
	assert.True(t, pkgerrors.IsValidation(err))

	s := &GraphSnapshot{
		ID: "g-1", OwnerID: "owner-1", Platform: "twitter", Status: "PENDING",
		Nodes: []NodeSnapshot{
			{ID: "a", Kind: "PEER", DisplayName: "A"},
			{ID: "a", Kind: "PEER", DisplayName: "A again"},
		},
	}
	_, err = RestoreGraph(s)
	assert.True(t, pkgerrors.IsValidation(err))

	s = &GraphSnapshot{
		ID: "g-1", OwnerID: "owner-1", Platform: "twitter", Status: "PENDING",
		Nodes: []NodeSnapshot{{ID: "a", Kind: "PEER", DisplayName: "A"}},
		Edges: []EdgeSnapshot{{Source: "a", Target: "ghost", Weight: 1, Kind: "follow"}},
	}
	_, err = RestoreGraph(s)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestValidate(t *testing.T) {
	g, err := NewGraph("owner-1", "twitter", nil)
	require.NoError(t, err)
	require.NoError(t, g.AddNode(node(t, "a")))
	require.NoError(t, g.AddNode(node(t, "b")))
	require.NoError(t, g.AddEdge(edge("a", "b")))
	assert.NoError(t, g.Validate())
}
