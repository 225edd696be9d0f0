package services

import (
	"sort"

	"netgraph-backend/domain/config"
	"netgraph-backend/domain/core/aggregates"
	pkgerrors "netgraph-backend/pkg/errors"

	"go.uber.org/zap"
)

// CommunityResult is the outcome of community detection: a full partition
// of the node set plus the partition's modularity.
type CommunityResult struct {
	// Assignments maps node ordinal to community ID.
	Assignments []int
	Communities []aggregates.Community
	Modularity  float64
}

// CommunityDetector partitions a graph into communities by Louvain-style
// modularity optimization. All iteration orders are deterministic: nodes
// are visited in ascending insertion ordinal and ties between candidate
// communities are broken by the lowest community ID.
type CommunityDetector struct {
	cfg    *config.DomainConfig
	logger *zap.Logger
}

// NewCommunityDetector creates a detector with the given configuration.
func NewCommunityDetector(cfg *config.DomainConfig, logger *zap.Logger) *CommunityDetector {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommunityDetector{cfg: cfg, logger: logger}
}

// levelGraph is the contracted graph one Louvain pass operates on.
// Weights are undirected; selfLoop carries the weight folded inside a
// super-node by earlier contractions.
type levelGraph struct {
	n         int
	neighbors [][]arc
	selfLoop  []float64
	degree    []float64 // weighted degree including 2*selfLoop
	m         float64   // total edge weight including self-loops
}

// Detect runs the two-phase algorithm and annotates each node with its
// community. A graph with zero edges degenerates to one singleton
// community per node.
func (d *CommunityDetector) Detect(g *aggregates.Graph) (*CommunityResult, error) {
	if g == nil {
		return nil, pkgerrors.NewValidationError("graph cannot be nil")
	}

	adj := newAdjacency(g)
	n := adj.n

	if n == 0 {
		return &CommunityResult{Assignments: []int{}, Communities: []aggregates.Community{}}, nil
	}

	assignment := make([]int, n)
	if adj.totalWeight == 0 {
		for i := range assignment {
			assignment[i] = i
		}
		return d.buildResult(g, adj, assignment, 0)
	}

	lg := levelFromUndirected(adj.toUndirected())

	// assignment[i] tracks which current-level super-node each original
	// node belongs to.
	for i := range assignment {
		assignment[i] = i
	}

	prevQ := modularity(lg, identity(lg.n))
	for pass := 0; pass < d.cfg.LouvainMaxPasses; pass++ {
		comm, moved := d.localMove(lg)
		q := modularity(lg, comm)
		if !moved || q-prevQ <= 1e-9 {
			break
		}
		prevQ = q

		contracted, renumber := contract(lg, comm)
		for i := range assignment {
			assignment[i] = renumber[comm[assignment[i]]]
		}
		lg = contracted
		if lg.n == 1 {
			break
		}
	}

	finalQ := modularityOriginal(adj, assignment)
	return d.buildResult(g, adj, assignment, finalQ)
}

// localMove is the first Louvain phase: greedy node moves until a full
// sweep produces none.
func (d *CommunityDetector) localMove(lg *levelGraph) (comm []int, movedAny bool) {
	comm = identity(lg.n)
	sumTot := make([]float64, lg.n)
	for i := 0; i < lg.n; i++ {
		sumTot[i] = lg.degree[i]
	}

	m := lg.m
	for sweep := 0; ; sweep++ {
		movedInSweep := false
		for i := 0; i < lg.n; i++ {
			c0 := comm[i]
			ki := lg.degree[i]
			sumTot[c0] -= ki

			// Weight from i into each neighboring community.
			kin := make(map[int]float64)
			for _, e := range lg.neighbors[i] {
				kin[comm[e.to]] += e.weight
			}

			candidates := make([]int, 0, len(kin))
			for c := range kin {
				candidates = append(candidates, c)
			}
			sort.Ints(candidates)

			gain := func(c int) float64 {
				return kin[c]/m - sumTot[c]*ki/(2*m*m)
			}

			bestC := c0
			bestGain := gain(c0)
			for _, c := range candidates {
				if c == c0 {
					continue
				}
				if g := gain(c); g > bestGain {
					bestGain = g
					bestC = c
				}
			}

			sumTot[bestC] += ki
			if bestC != c0 {
				comm[i] = bestC
				movedInSweep = true
				movedAny = true
			}
		}
		if !movedInSweep {
			break
		}
	}
	return comm, movedAny
}

// contract is the second Louvain phase: communities become super-nodes and
// edge weights between them are summed. Returns the contracted graph and a
// dense renumbering of community IDs in ascending order.
func contract(lg *levelGraph, comm []int) (*levelGraph, []int) {
	renumber := make([]int, lg.n)
	for i := range renumber {
		renumber[i] = -1
	}
	present := make([]bool, lg.n)
	for i := 0; i < lg.n; i++ {
		present[comm[i]] = true
	}
	used := make([]int, 0, lg.n)
	for c := 0; c < lg.n; c++ {
		if present[c] {
			used = append(used, c)
		}
	}
	for newID, oldID := range used {
		renumber[oldID] = newID
	}

	nn := len(used)
	out := &levelGraph{
		n:         nn,
		neighbors: make([][]arc, nn),
		selfLoop:  make([]float64, nn),
		degree:    make([]float64, nn),
	}

	merged := make([]map[int]float64, nn)
	for i := range merged {
		merged[i] = make(map[int]float64)
	}
	for i := 0; i < lg.n; i++ {
		ci := renumber[comm[i]]
		out.selfLoop[ci] += lg.selfLoop[i]
		for _, e := range lg.neighbors[i] {
			cj := renumber[comm[e.to]]
			if ci == cj {
				// Each undirected edge appears in both adjacency lists;
				// halve to fold it into the self-loop once.
				out.selfLoop[ci] += e.weight / 2
			} else {
				merged[ci][cj] += e.weight
			}
		}
	}
	for i := 0; i < nn; i++ {
		ordinals := make([]int, 0, len(merged[i]))
		for j := range merged[i] {
			ordinals = append(ordinals, j)
		}
		sort.Ints(ordinals)
		for _, j := range ordinals {
			out.neighbors[i] = append(out.neighbors[i], arc{to: j, weight: merged[i][j]})
		}
	}
	for i := 0; i < nn; i++ {
		out.degree[i] = 2 * out.selfLoop[i]
		for _, e := range out.neighbors[i] {
			out.degree[i] += e.weight
		}
		out.m += out.selfLoop[i]
		for _, e := range out.neighbors[i] {
			out.m += e.weight / 2
		}
	}
	return out, renumber
}

// modularity computes Q for a partition of a level graph.
func modularity(lg *levelGraph, comm []int) float64 {
	if lg.m == 0 {
		return 0
	}
	m2 := 2 * lg.m
	intra := make([]float64, lg.n)
	total := make([]float64, lg.n)
	seen := make([]bool, lg.n)
	for i := 0; i < lg.n; i++ {
		c := comm[i]
		seen[c] = true
		total[c] += lg.degree[i]
		intra[c] += 2 * lg.selfLoop[i]
		for _, e := range lg.neighbors[i] {
			if comm[e.to] == c {
				intra[c] += e.weight
			}
		}
	}
	q := 0.0
	for c := 0; c < lg.n; c++ {
		if seen[c] {
			q += intra[c]/m2 - (total[c]/m2)*(total[c]/m2)
		}
	}
	return q
}

// modularityOriginal computes Q for the original graph under the final
// assignment, using the undirected projection.
func modularityOriginal(adj *adjacency, assignment []int) float64 {
	if adj.totalWeight == 0 {
		return 0
	}
	lg := levelFromUndirected(adj.toUndirected())
	return modularity(lg, assignment)
}

func levelFromUndirected(u *undirected) *levelGraph {
	lg := &levelGraph{
		n:         u.n,
		neighbors: u.neighbors,
		selfLoop:  make([]float64, u.n),
		degree:    make([]float64, u.n),
		m:         u.totalWeight,
	}
	copy(lg.degree, u.degree)
	return lg
}

func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// buildResult renumbers communities by descending size, annotates nodes and
// assembles the Community documents.
func (d *CommunityDetector) buildResult(
	g *aggregates.Graph,
	adj *adjacency,
	assignment []int,
	q float64,
) (*CommunityResult, error) {
	members := make(map[int][]int)
	for ordinal, c := range assignment {
		members[c] = append(members[c], ordinal)
	}

	order := make([]int, 0, len(members))
	for c := range members {
		order = append(order, c)
	}
	sort.Slice(order, func(a, b int) bool {
		ca, cb := order[a], order[b]
		if len(members[ca]) != len(members[cb]) {
			return len(members[ca]) > len(members[cb])
		}
		return members[ca][0] < members[cb][0]
	})

	nodes := g.Nodes()
	finalAssign := make([]int, adj.n)
	communities := make([]aggregates.Community, 0, len(order))
	for newID, oldID := range order {
		ordinals := members[oldID]
		ids := make([]string, len(ordinals))
		inCommunity := make(map[int]bool, len(ordinals))
		for i, ord := range ordinals {
			ids[i] = adj.ids[ord].String()
			inCommunity[ord] = true
			finalAssign[ord] = newID
			nodes[ord].SetCommunity(newID)
		}

		intraEdges := 0
		for _, ord := range ordinals {
			for _, e := range adj.out[ord] {
				if inCommunity[e.to] {
					intraEdges++
				}
			}
		}
		size := len(ordinals)
		density := 0.0
		if size > 1 {
			density = float64(intraEdges) / float64(size*(size-1))
		}
		pct := 0.0
		if adj.n > 0 {
			pct = float64(size) / float64(adj.n) * 100
		}
		communities = append(communities, aggregates.Community{
			ID:              newID,
			MemberIDs:       ids,
			Size:            size,
			Percentage:      pct,
			InternalDensity: density,
		})
	}

	d.logger.Debug("community detection completed",
		zap.String("graph_id", g.ID().String()),
		zap.Int("communities", len(communities)),
		zap.Float64("modularity", q),
	)

	return &CommunityResult{
		Assignments: finalAssign,
		Communities: communities,
		Modularity:  q,
	}, nil
}
