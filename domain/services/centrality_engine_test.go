package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netgraph-backend/tests/fixtures"
)

func TestCompute_DirectedCycle(t *testing.T) {
	g := fixtures.Graph(t,
		[]string{"a", "b", "c"},
		[]fixtures.Edge{
			{Source: "a", Target: "b"},
			{Source: "b", Target: "c"},
			{Source: "c", Target: "a"},
		},
	)
	engine := NewCentralityEngine(nil, nil)

	result, err := engine.Compute(context.Background(), g)
	require.NoError(t, err)

	// The uniform distribution is the fixed point of a symmetric cycle.
	assert.True(t, result.Converged)
	sum := 0.0
	for _, score := range result.PageRank {
		assert.InDelta(t, 1.0/3.0, score, 1e-9)
		sum += score
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestCompute_StarBetweenness(t *testing.T) {
	g := fixtures.Star(t, 4)
	engine := NewCentralityEngine(nil, nil)

	result, err := engine.Compute(context.Background(), g)
	require.NoError(t, err)

	// Every leaf-to-leaf shortest path runs through the hub.
	assert.InDelta(t, 1.0, result.Betweenness[0], 1e-9)
	for i := 1; i < len(result.Betweenness); i++ {
		assert.InDelta(t, 0.0, result.Betweenness[i], 1e-9)
	}

	// The hub also collects the most PageRank.
	for i := 1; i < len(result.PageRank); i++ {
		assert.Greater(t, result.PageRank[0], result.PageRank[i])
	}
}

func TestCompute_OneWayStarBetweennessIsZero(t *testing.T) {
	// All edges point outward from the hub and leaves have no out-edges,
	// so no shortest path crosses an intermediate vertex.
	g := fixtures.Graph(t,
		[]string{"hub", "a", "b", "c", "d"},
		[]fixtures.Edge{
			{Source: "hub", Target: "a"},
			{Source: "hub", Target: "b"},
			{Source: "hub", Target: "c"},
			{Source: "hub", Target: "d"},
		},
	)
	engine := NewCentralityEngine(nil, nil)

	result, err := engine.Compute(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0, 0, 0}, result.Betweenness)
}

func TestCompute_PageRankMassConserved(t *testing.T) {
	// Node d is dangling; its mass must be redistributed, not lost.
	g := fixtures.Graph(t,
		[]string{"a", "b", "c", "d"},
		[]fixtures.Edge{
			{Source: "a", Target: "b"},
			{Source: "b", Target: "c"},
			{Source: "c", Target: "d"},
		},
	)
	engine := NewCentralityEngine(nil, nil)

	result, err := engine.Compute(context.Background(), g)
	require.NoError(t, err)

	sum := 0.0
	for _, score := range result.PageRank {
		sum += score
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
}

func TestCompute_TinyGraphBetweennessIsZero(t *testing.T) {
	g := fixtures.Graph(t,
		[]string{"a", "b"},
		[]fixtures.Edge{{Source: "a", Target: "b"}},
	)
	engine := NewCentralityEngine(nil, nil)

	result, err := engine.Compute(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, result.Betweenness)
}

func TestCompute_AnnotatesNodes(t *testing.T) {
	g := fixtures.Star(t, 3)
	engine := NewCentralityEngine(nil, nil)

	result, err := engine.Compute(context.Background(), g)
	require.NoError(t, err)

	for i, node := range g.Nodes() {
		assert.Equal(t, result.PageRank[i], node.PageRank())
		assert.Equal(t, result.Betweenness[i], node.Betweenness())
	}
	// The hub touches every leaf in both directions.
	assert.Equal(t, 6, g.Nodes()[0].Degree())
}

func TestCompute_Deterministic(t *testing.T) {
	engine := NewCentralityEngine(nil, nil)

	first, err := engine.Compute(context.Background(), fixtures.TwoTriangles(t))
	require.NoError(t, err)
	second, err := engine.Compute(context.Background(), fixtures.TwoTriangles(t))
	require.NoError(t, err)

	assert.Equal(t, first.PageRank, second.PageRank)
	assert.Equal(t, first.Betweenness, second.Betweenness)
}
