package services

import (
	"context"
	"time"

	"netgraph-backend/application/ports"
	"netgraph-backend/domain/core/aggregates"
	"netgraph-backend/domain/core/valueobjects"
	"netgraph-backend/domain/events"
	"netgraph-backend/domain/insights"
	pkgerrors "netgraph-backend/pkg/errors"
	"netgraph-backend/pkg/observability"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GenerationState tracks one insight-generation run.
type GenerationState string

const (
	StateRequested GenerationState = "REQUESTED"
	StateAnalyzing GenerationState = "ANALYZING"
	StateMatching  GenerationState = "MATCHING"
	StatePersisted GenerationState = "PERSISTED"
	StateFailed    GenerationState = "FAILED"
)

// Internal failure codes reported on FAILED graphs.
const (
	failureCodeAnalysis = "ANALYSIS_ERROR"
	failureCodeMatching = "MATCHING_ERROR"
	failureCodePersist  = "PERSIST_ERROR"
)

// InsightEngine orchestrates one generation run per graph:
// REQUESTED -> ANALYZING -> MATCHING -> PERSISTED, or FAILED from any
// stage. Generation is all-or-nothing: a failed run never partially
// overwrites a previously persisted insight set.
type InsightEngine struct {
	graphs    ports.GraphRepository
	insights  ports.InsightRepository
	analysis  *AnalysisService
	matcher   *insights.Matcher
	templates ports.TemplateProvider
	publisher ports.EventPublisher
	metrics   *observability.Metrics
	logger    *zap.Logger
	clock     func() time.Time
}

// NewInsightEngine wires the orchestrator. Metrics may be nil.
func NewInsightEngine(
	graphs ports.GraphRepository,
	insightRepo ports.InsightRepository,
	analysis *AnalysisService,
	matcher *insights.Matcher,
	templates ports.TemplateProvider,
	publisher ports.EventPublisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *InsightEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InsightEngine{
		graphs:    graphs,
		insights:  insightRepo,
		analysis:  analysis,
		matcher:   matcher,
		templates: templates,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		clock:     time.Now,
	}
}

// Generate runs the full pipeline for a graph and returns the persisted
// insight set. Progress callbacks report the analysis phases plus the
// matching and persistence tail.
func (e *InsightEngine) Generate(
	ctx context.Context,
	graphID valueobjects.GraphID,
	progress ProgressFunc,
) ([]insights.GeneratedInsight, error) {
	report := func(phase string, pct int) {
		if progress != nil {
			progress(phase, pct)
		}
	}
	report("requested", 0)

	graph, err := e.graphs.FindByID(ctx, graphID)
	if err != nil {
		return nil, err
	}

	if err := graph.StartProcessing(); err != nil {
		return nil, err
	}
	if err := e.graphs.Save(ctx, graph); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to mark graph processing")
	}

	// ANALYZING
	stageStart := e.clock()
	result, err := e.analysis.Analyze(ctx, graph, progress)
	if err != nil {
		e.fail(ctx, graph, failureCodeAnalysis)
		return nil, err
	}
	if err := graph.CompleteAnalysis(result); err != nil {
		e.fail(ctx, graph, failureCodeAnalysis)
		return nil, err
	}
	e.observeStage("analyzing", stageStart)

	// MATCHING
	report("matching", 92)
	stageStart = e.clock()
	generated, err := e.matcher.Match(graphID, result, e.templates.Templates(), e.clock())
	if err != nil {
		e.fail(ctx, graph, failureCodeMatching)
		return nil, err
	}
	e.observeStage("matching", stageStart)

	// PERSISTED: insights first, then the READY graph. A failure at either
	// step leaves the previous insight set and graph state untouched.
	report("persisting", 96)
	stageStart = e.clock()
	if err := e.insights.ReplaceForGraph(ctx, graphID, generated); err != nil {
		e.fail(ctx, graph, failureCodePersist)
		return nil, pkgerrors.Wrap(err, "failed to persist insights")
	}
	if err := e.graphs.Save(ctx, graph); err != nil {
		e.countRun("failure")
		return nil, pkgerrors.Wrap(err, "failed to persist analyzed graph")
	}
	e.observeStage("persisting", stageStart)
	e.countRun("success")
	if e.metrics != nil {
		e.metrics.InsightsGenerated.Add(float64(len(generated)))
	}

	e.publish(ctx, events.InsightsGenerated{
		BaseEvent: events.BaseEvent{
			ID:        uuid.New().String(),
			Type:      "insights.generated",
			Aggregate: graphID.String(),
			Timestamp: e.clock(),
		},
		GraphID:      graphID.String(),
		InsightCount: len(generated),
	})

	report("persisted", 100)
	return generated, nil
}

// GetGraph loads one graph aggregate.
func (e *InsightEngine) GetGraph(ctx context.Context, graphID valueobjects.GraphID) (*aggregates.Graph, error) {
	return e.graphs.FindByID(ctx, graphID)
}

// ListGraphs returns all graphs belonging to an owner, newest first.
func (e *InsightEngine) ListGraphs(ctx context.Context, ownerID string) ([]*aggregates.Graph, error) {
	return e.graphs.FindByOwner(ctx, ownerID)
}

// GetInsights returns the stored insight set for a graph.
func (e *InsightEngine) GetInsights(ctx context.Context, graphID valueobjects.GraphID) ([]insights.GeneratedInsight, error) {
	if _, err := e.graphs.FindByID(ctx, graphID); err != nil {
		return nil, err
	}
	return e.insights.FindByGraph(ctx, graphID)
}

// DeleteGraph removes a graph and cascades to its cached statistics and
// generated insights.
func (e *InsightEngine) DeleteGraph(ctx context.Context, graphID valueobjects.GraphID) error {
	graph, err := e.graphs.FindByID(ctx, graphID)
	if err != nil {
		return err
	}
	if err := e.insights.DeleteByGraph(ctx, graphID); err != nil {
		return pkgerrors.Wrap(err, "failed to delete insights")
	}
	if err := e.graphs.Delete(ctx, graphID); err != nil {
		return pkgerrors.Wrap(err, "failed to delete graph")
	}
	e.publish(ctx, events.GraphDeleted{
		BaseEvent: events.BaseEvent{
			ID:        uuid.New().String(),
			Type:      "graph.deleted",
			Aggregate: graphID.String(),
			Timestamp: e.clock(),
		},
		GraphID: graphID.String(),
		OwnerID: graph.OwnerID(),
	})
	return nil
}

func (e *InsightEngine) observeStage(stage string, start time.Time) {
	if e.metrics != nil {
		e.metrics.ObserveAnalysisPhase(stage, e.clock().Sub(start))
	}
}

func (e *InsightEngine) countRun(outcome string) {
	if e.metrics != nil {
		e.metrics.AnalysisRuns.WithLabelValues(outcome).Inc()
	}
}

// fail transitions the graph to FAILED with an internal code. The caller's
// error is what surfaces; persistence problems here are only logged.
func (e *InsightEngine) fail(ctx context.Context, graph *aggregates.Graph, code string) {
	e.countRun("failure")
	graph.FailAnalysis(code)
	if err := e.graphs.Save(ctx, graph); err != nil {
		e.logger.Error("failed to persist FAILED graph state",
			zap.String("graph_id", graph.ID().String()),
			zap.String("code", code),
			zap.Error(err),
		)
	}
}

func (e *InsightEngine) publish(ctx context.Context, evt events.DomainEvent) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(ctx, evt); err != nil {
		e.logger.Warn("failed to publish domain event",
			zap.String("event_type", evt.EventType()),
			zap.Error(err),
		)
	}
}
