package services

import (
	"sort"

	"netgraph-backend/domain/core/aggregates"
	"netgraph-backend/domain/core/valueobjects"
)

// arc is one directed, weighted adjacency entry referencing a node by its
// stable insertion ordinal.
type arc struct {
	to     int
	weight float64
}

// adjacency is the strongly-typed adjacency-list view the analysis
// algorithms operate on. Node ordinals follow the aggregate's insertion
// order, which makes every traversal deterministic.
type adjacency struct {
	n           int
	ids         []valueobjects.NodeID
	out         [][]arc
	in          [][]arc
	outWeight   []float64
	inWeight    []float64
	totalWeight float64
}

// newAdjacency projects the aggregate into index-based adjacency lists.
func newAdjacency(g *aggregates.Graph) *adjacency {
	nodes := g.Nodes()
	n := len(nodes)
	a := &adjacency{
		n:         n,
		ids:       make([]valueobjects.NodeID, n),
		out:       make([][]arc, n),
		in:        make([][]arc, n),
		outWeight: make([]float64, n),
		inWeight:  make([]float64, n),
	}
	for i, node := range nodes {
		a.ids[i] = node.ID()
	}
	for _, edge := range g.Edges() {
		s, ok := g.NodeOrdinal(edge.SourceID)
		if !ok {
			continue
		}
		t, ok := g.NodeOrdinal(edge.TargetID)
		if !ok {
			continue
		}
		a.out[s] = append(a.out[s], arc{to: t, weight: edge.Weight})
		a.in[t] = append(a.in[t], arc{to: s, weight: edge.Weight})
		a.outWeight[s] += edge.Weight
		a.inWeight[t] += edge.Weight
		a.totalWeight += edge.Weight
	}
	return a
}

// weightedDegree returns the node's total weighted degree (in + out).
func (a *adjacency) weightedDegree(i int) float64 {
	return a.outWeight[i] + a.inWeight[i]
}

// undirected collapses the directed view into a symmetric one, summing the
// weights of reciprocal arcs. Community detection operates on this view.
type undirected struct {
	n           int
	neighbors   [][]arc
	degree      []float64
	totalWeight float64
}

func (a *adjacency) toUndirected() *undirected {
	u := &undirected{
		n:         a.n,
		neighbors: make([][]arc, a.n),
		degree:    make([]float64, a.n),
	}
	// Merge arc weights symmetrically, keeping neighbor order by ordinal.
	merged := make([]map[int]float64, a.n)
	for i := 0; i < a.n; i++ {
		merged[i] = make(map[int]float64)
	}
	for i := 0; i < a.n; i++ {
		for _, e := range a.out[i] {
			merged[i][e.to] += e.weight
			merged[e.to][i] += e.weight
		}
	}
	for i := 0; i < a.n; i++ {
		ordinals := make([]int, 0, len(merged[i]))
		for j := range merged[i] {
			if j != i {
				ordinals = append(ordinals, j)
			}
		}
		sort.Ints(ordinals)
		for _, j := range ordinals {
			w := merged[i][j]
			u.neighbors[i] = append(u.neighbors[i], arc{to: j, weight: w})
			u.degree[i] += w
		}
	}
	u.totalWeight = a.totalWeight
	return u
}
