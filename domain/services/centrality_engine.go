package services

import (
	"context"
	"math"
	"runtime"

	"netgraph-backend/domain/config"
	"netgraph-backend/domain/core/aggregates"
	pkgerrors "netgraph-backend/pkg/errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CentralityResult holds the per-node influence and bridge scores.
type CentralityResult struct {
	// PageRank and Betweenness are indexed by node ordinal.
	PageRank    []float64
	Betweenness []float64

	// Converged is false when the power iteration hit its cap; the scores
	// are still the best effort and callers flag it in statistics.
	Converged  bool
	Iterations int
}

// CentralityEngine computes the influence ranking (weighted PageRank) and
// bridge score (Brandes betweenness) for every node.
type CentralityEngine struct {
	cfg    *config.DomainConfig
	logger *zap.Logger
}

// NewCentralityEngine creates an engine with the given configuration.
func NewCentralityEngine(cfg *config.DomainConfig, logger *zap.Logger) *CentralityEngine {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CentralityEngine{cfg: cfg, logger: logger}
}

// Compute runs both centrality algorithms and annotates the nodes.
func (e *CentralityEngine) Compute(ctx context.Context, g *aggregates.Graph) (*CentralityResult, error) {
	if g == nil {
		return nil, pkgerrors.NewValidationError("graph cannot be nil")
	}
	adj := newAdjacency(g)

	pr, iterations, converged := e.pageRank(adj)
	bc, err := e.betweenness(ctx, adj)
	if err != nil {
		return nil, err
	}

	nodes := g.Nodes()
	for i, node := range nodes {
		node.SetCentrality(pr[i], bc[i])
		node.SetDegree(len(adj.out[i]) + len(adj.in[i]))
	}

	if !converged {
		e.logger.Warn("pagerank hit iteration cap without converging",
			zap.String("graph_id", g.ID().String()),
			zap.Int("iterations", iterations),
		)
	}

	return &CentralityResult{
		PageRank:    pr,
		Betweenness: bc,
		Converged:   converged,
		Iterations:  iterations,
	}, nil
}

// pageRank runs the power method with uniform initialization. Score flows
// along out-edges proportionally to edge weight; dangling nodes
// redistribute their score uniformly each iteration.
func (e *CentralityEngine) pageRank(adj *adjacency) (scores []float64, iterations int, converged bool) {
	n := adj.n
	scores = make([]float64, n)
	if n == 0 {
		return scores, 0, true
	}

	d := e.cfg.PageRankDamping
	uniform := 1.0 / float64(n)
	for i := range scores {
		scores[i] = uniform
	}

	next := make([]float64, n)
	for iterations = 1; iterations <= e.cfg.PageRankMaxIters; iterations++ {
		dangling := 0.0
		for i := 0; i < n; i++ {
			if adj.outWeight[i] == 0 {
				dangling += scores[i]
			}
		}

		base := (1-d)*uniform + d*dangling*uniform
		for i := range next {
			next[i] = base
		}
		for i := 0; i < n; i++ {
			if adj.outWeight[i] == 0 {
				continue
			}
			share := d * scores[i] / adj.outWeight[i]
			for _, arc := range adj.out[i] {
				next[arc.to] += share * arc.weight
			}
		}

		delta := 0.0
		for i := 0; i < n; i++ {
			delta += math.Abs(next[i] - scores[i])
		}
		scores, next = next, scores

		if delta < e.cfg.PageRankEpsilon {
			return scores, iterations, true
		}
	}
	return scores, e.cfg.PageRankMaxIters, false
}

// betweenness implements Brandes' algorithm over the unweighted directed
// structure, normalized by (n-1)(n-2). Sources are sharded across workers;
// partial sums combine in a fixed worker order so results stay
// bit-for-bit reproducible.
func (e *CentralityEngine) betweenness(ctx context.Context, adj *adjacency) ([]float64, error) {
	n := adj.n
	if n < 3 {
		return make([]float64, n), nil
	}

	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}
	partials := make([][]float64, workers)

	grp, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		grp.Go(func() error {
			local := make([]float64, n)
			for s := w; s < n; s += workers {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				brandesFromSource(adj, s, local)
			}
			partials[w] = local
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, pkgerrors.Wrap(err, "betweenness computation aborted")
	}

	bc := make([]float64, n)
	for w := 0; w < workers; w++ {
		for i, v := range partials[w] {
			bc[i] += v
		}
	}

	norm := float64(n-1) * float64(n-2)
	for i := range bc {
		bc[i] /= norm
	}
	return bc, nil
}

// brandesFromSource runs one single-source shortest-path counting pass and
// accumulates the dependency contributions into acc.
func brandesFromSource(adj *adjacency, s int, acc []float64) {
	n := adj.n
	sigma := make([]float64, n)
	dist := make([]int, n)
	delta := make([]float64, n)
	preds := make([][]int, n)
	for i := 0; i < n; i++ {
		dist[i] = -1
	}

	sigma[s] = 1
	dist[s] = 0
	stack := make([]int, 0, n)
	queue := []int{s}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		stack = append(stack, v)
		for _, arc := range adj.out[v] {
			w := arc.to
			if dist[w] < 0 {
				dist[w] = dist[v] + 1
				queue = append(queue, w)
			}
			if dist[w] == dist[v]+1 {
				sigma[w] += sigma[v]
				preds[w] = append(preds[w], v)
			}
		}
	}

	for i := len(stack) - 1; i >= 0; i-- {
		w := stack[i]
		for _, v := range preds[w] {
			delta[v] += sigma[v] / sigma[w] * (1 + delta[w])
		}
		if w != s {
			acc[w] += delta[w]
		}
	}
}
