package services

import (
	"netgraph-backend/domain/core/aggregates"
	pkgerrors "netgraph-backend/pkg/errors"

	"go.uber.org/zap"
)

// GraphMetrics aggregates the graph-level statistics that do not depend on
// any external I/O.
type GraphMetrics struct {
	Density            float64
	AverageDegree      float64
	Reciprocity        float64
	EchoChamberScore   float64
	NetworkMaturity    float64
	DegreeDistribution aggregates.DegreeDistribution
}

// MetricsCalculator computes the aggregate statistics from a built graph
// plus its community assignment.
type MetricsCalculator struct {
	logger *zap.Logger
}

// NewMetricsCalculator creates a calculator.
func NewMetricsCalculator(logger *zap.Logger) *MetricsCalculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetricsCalculator{logger: logger}
}

// Calculate derives all metrics. communities may be nil for a graph with
// no nodes; otherwise Assignments must cover every node ordinal.
func (c *MetricsCalculator) Calculate(g *aggregates.Graph, communities *CommunityResult) (*GraphMetrics, error) {
	if g == nil {
		return nil, pkgerrors.NewValidationError("graph cannot be nil")
	}
	adj := newAdjacency(g)
	n := adj.n

	m := &GraphMetrics{}
	if n == 0 {
		return m, nil
	}

	edgeCount := g.EdgeCount()
	if n > 1 {
		m.Density = float64(edgeCount) / float64(n*(n-1))
	}
	m.AverageDegree = 2 * float64(edgeCount) / float64(n)
	m.Reciprocity = c.reciprocity(g)
	m.DegreeDistribution = c.degreeDistribution(adj)
	if communities != nil {
		m.EchoChamberScore = c.echoChamber(adj, communities.Assignments)
	}
	m.NetworkMaturity = c.networkMaturity(adj, m, communities)

	return m, nil
}

// reciprocity is the fraction of directed edges whose reverse edge also
// exists.
func (c *MetricsCalculator) reciprocity(g *aggregates.Graph) float64 {
	edges := g.Edges()
	if len(edges) == 0 {
		return 0
	}
	keys := make(map[string]struct{}, len(edges))
	for _, e := range edges {
		keys[e.Key()] = struct{}{}
	}
	reciprocal := 0
	for _, e := range edges {
		reverse := e.TargetID.String() + "->" + e.SourceID.String()
		if _, ok := keys[reverse]; ok {
			reciprocal++
		}
	}
	return float64(reciprocal) / float64(len(edges))
}

func (c *MetricsCalculator) degreeDistribution(adj *adjacency) aggregates.DegreeDistribution {
	var d aggregates.DegreeDistribution
	totalIn, totalOut := 0, 0
	for i := 0; i < adj.n; i++ {
		in := len(adj.in[i])
		out := len(adj.out[i])
		totalIn += in
		totalOut += out
		if in > d.MaxIn {
			d.MaxIn = in
		}
		if out > d.MaxOut {
			d.MaxOut = out
		}
		if in+out > d.MaxTotal {
			d.MaxTotal = in + out
		}
	}
	if adj.n > 0 {
		d.AvgIn = float64(totalIn) / float64(adj.n)
		d.AvgOut = float64(totalOut) / float64(adj.n)
	}
	return d
}

// echoChamber is the percentage of each node's edge weight that stays
// inside its own community, averaged over all nodes with nonzero weighted
// degree.
func (c *MetricsCalculator) echoChamber(adj *adjacency, assignment []int) float64 {
	if len(assignment) != adj.n {
		return 0
	}
	sum := 0.0
	counted := 0
	for i := 0; i < adj.n; i++ {
		total := adj.weightedDegree(i)
		if total == 0 {
			continue
		}
		intra := 0.0
		for _, e := range adj.out[i] {
			if assignment[e.to] == assignment[i] {
				intra += e.weight
			}
		}
		for _, e := range adj.in[i] {
			if assignment[e.to] == assignment[i] {
				intra += e.weight
			}
		}
		sum += intra / total * 100
		counted++
	}
	if counted == 0 {
		return 0
	}
	return sum / float64(counted)
}

// networkMaturity is a composite of density, community balance and average
// tie strength, scaled to [0,100]. Density saturates at 0.1 so small real
// networks are not scored as immature purely for being sparse.
func (c *MetricsCalculator) networkMaturity(adj *adjacency, m *GraphMetrics, communities *CommunityResult) float64 {
	densityScore := m.Density * 10 * 100
	if densityScore > 100 {
		densityScore = 100
	}

	balance := 0.0
	if communities != nil && len(communities.Communities) > 0 {
		// 1 - Herfindahl concentration of community shares.
		hhi := 0.0
		for _, comm := range communities.Communities {
			share := comm.Percentage / 100
			hhi += share * share
		}
		balance = (1 - hhi) * 100
	}

	tieStrength := 0.0
	if adj.totalWeight > 0 {
		edgeTotal := 0
		for i := 0; i < adj.n; i++ {
			edgeTotal += len(adj.out[i])
		}
		if edgeTotal > 0 {
			tieStrength = adj.totalWeight / float64(edgeTotal) * 100
		}
	}

	score := 0.4*densityScore + 0.3*balance + 0.3*tieStrength
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}
