package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netgraph-backend/tests/fixtures"
)

func TestCalculate_DensityAndAverageDegree(t *testing.T) {
	g := fixtures.Graph(t,
		[]string{"a", "b", "c"},
		[]fixtures.Edge{
			{Source: "a", Target: "b"},
			{Source: "b", Target: "c"},
		},
	)
	calc := NewMetricsCalculator(nil)

	m, err := calc.Calculate(g, nil)
	require.NoError(t, err)

	assert.InDelta(t, 2.0/6.0, m.Density, 1e-9)
	assert.InDelta(t, 4.0/3.0, m.AverageDegree, 1e-9)
}

func TestCalculate_Reciprocity(t *testing.T) {
	g := fixtures.Graph(t,
		[]string{"a", "b", "c"},
		[]fixtures.Edge{
			{Source: "a", Target: "b"},
			{Source: "b", Target: "a"},
			{Source: "a", Target: "c"},
		},
	)
	calc := NewMetricsCalculator(nil)

	m, err := calc.Calculate(g, nil)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, m.Reciprocity, 1e-9)
}

func TestCalculate_EchoChamberFullyIntraCommunity(t *testing.T) {
	g := fixtures.TwoTriangles(t)
	detector := NewCommunityDetector(nil, nil)
	communities, err := detector.Detect(g)
	require.NoError(t, err)

	calc := NewMetricsCalculator(nil)
	m, err := calc.Calculate(g, communities)
	require.NoError(t, err)

	// Every edge stays inside its own triangle.
	assert.InDelta(t, 100.0, m.EchoChamberScore, 1e-9)
}

func TestCalculate_DegreeDistribution(t *testing.T) {
	g := fixtures.Star(t, 4)
	calc := NewMetricsCalculator(nil)

	m, err := calc.Calculate(g, nil)
	require.NoError(t, err)

	assert.Equal(t, 4, m.DegreeDistribution.MaxIn)
	assert.Equal(t, 4, m.DegreeDistribution.MaxOut)
	assert.Equal(t, 8, m.DegreeDistribution.MaxTotal)
	assert.InDelta(t, 8.0/5.0, m.DegreeDistribution.AvgIn, 1e-9)
	assert.InDelta(t, 8.0/5.0, m.DegreeDistribution.AvgOut, 1e-9)
}

func TestCalculate_MaturityStaysInRange(t *testing.T) {
	detector := NewCommunityDetector(nil, nil)
	calc := NewMetricsCalculator(nil)

	g := fixtures.TwoTriangles(t)
	communities, err := detector.Detect(g)
	require.NoError(t, err)
	m, err := calc.Calculate(g, communities)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, m.NetworkMaturity, 0.0)
	assert.LessOrEqual(t, m.NetworkMaturity, 100.0)
}

func TestCalculate_EmptyGraph(t *testing.T) {
	g := fixtures.Graph(t, nil, nil)
	calc := NewMetricsCalculator(nil)

	m, err := calc.Calculate(g, nil)
	require.NoError(t, err)
	assert.Zero(t, m.Density)
	assert.Zero(t, m.AverageDegree)
	assert.Zero(t, m.Reciprocity)
}
