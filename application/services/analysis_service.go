// Package services contains the application-layer orchestration: ingestion,
// analysis and insight generation over the domain services.
package services

import (
	"context"
	"sort"

	"netgraph-backend/domain/config"
	"netgraph-backend/domain/core/aggregates"
	domainservices "netgraph-backend/domain/services"
	pkgerrors "netgraph-backend/pkg/errors"

	"go.uber.org/zap"
)

// ProgressFunc receives phase and completion-percentage updates during an
// analysis run.
type ProgressFunc func(phase string, percent int)

// Analysis phases reported through ProgressFunc.
const (
	PhaseCommunities = "communities"
	PhaseCentrality  = "centrality"
	PhaseMetrics     = "metrics"
)

const topListSize = 10

// AnalysisService runs the structural analysis pipeline over a built graph
// and assembles the AnalysisResult. It is pure computation: no I/O beyond
// the graph it is handed.
type AnalysisService struct {
	detector   *domainservices.CommunityDetector
	centrality *domainservices.CentralityEngine
	metrics    *domainservices.MetricsCalculator
	logger     *zap.Logger
}

// NewAnalysisService wires the domain algorithm services together.
func NewAnalysisService(cfg *config.DomainConfig, logger *zap.Logger) *AnalysisService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisService{
		detector:   domainservices.NewCommunityDetector(cfg, logger),
		centrality: domainservices.NewCentralityEngine(cfg, logger),
		metrics:    domainservices.NewMetricsCalculator(logger),
		logger:     logger,
	}
}

// Analyze computes communities, centrality and aggregate metrics for the
// graph. Progress is reported per phase; pass nil to skip reporting.
func (s *AnalysisService) Analyze(ctx context.Context, g *aggregates.Graph, progress ProgressFunc) (*aggregates.AnalysisResult, error) {
	if g == nil {
		return nil, pkgerrors.NewValidationError("graph cannot be nil")
	}
	report := func(phase string, pct int) {
		if progress != nil {
			progress(phase, pct)
		}
	}

	report(PhaseCommunities, 10)
	communities, err := s.detector.Detect(g)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "community detection failed")
	}

	report(PhaseCentrality, 45)
	centrality, err := s.centrality.Compute(ctx, g)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "centrality computation failed")
	}

	report(PhaseMetrics, 80)
	metrics, err := s.metrics.Calculate(g, communities)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "metrics calculation failed")
	}

	result := &aggregates.AnalysisResult{
		Communities:        communities.Communities,
		BridgeNodes:        rankNodes(g, centrality.Betweenness),
		TopInfluencers:     rankNodes(g, centrality.PageRank),
		Density:            metrics.Density,
		AverageDegree:      metrics.AverageDegree,
		Reciprocity:        metrics.Reciprocity,
		EchoChamberScore:   metrics.EchoChamberScore,
		NetworkMaturity:    metrics.NetworkMaturity,
		NodeCount:          g.NodeCount(),
		EdgeCount:          g.EdgeCount(),
		Modularity:         communities.Modularity,
		DegreeDistribution: metrics.DegreeDistribution,
		DroppedEdges:       g.DroppedEdges(),
		PageRankConverged:  centrality.Converged,
	}

	report(PhaseMetrics, 90)
	s.logger.Info("analysis completed",
		zap.String("graph_id", g.ID().String()),
		zap.Int("nodes", result.NodeCount),
		zap.Int("edges", result.EdgeCount),
		zap.Int("communities", len(result.Communities)),
		zap.Float64("modularity", result.Modularity),
		zap.Bool("pagerank_converged", result.PageRankConverged),
	)
	return result, nil
}

// rankNodes returns the top nodes by score in descending order, ties broken
// by insertion ordinal for reproducible output. Zero scores are omitted.
func rankNodes(g *aggregates.Graph, scores []float64) []aggregates.RankedNode {
	nodes := g.Nodes()
	ordinals := make([]int, 0, len(scores))
	for i, s := range scores {
		if s > 0 {
			ordinals = append(ordinals, i)
		}
	}
	sort.SliceStable(ordinals, func(a, b int) bool {
		return scores[ordinals[a]] > scores[ordinals[b]]
	})
	if len(ordinals) > topListSize {
		ordinals = ordinals[:topListSize]
	}
	out := make([]aggregates.RankedNode, 0, len(ordinals))
	for _, i := range ordinals {
		out = append(out, aggregates.RankedNode{
			NodeID:      nodes[i].ID().String(),
			DisplayName: nodes[i].DisplayName(),
			Score:       scores[i],
		})
	}
	return out
}
