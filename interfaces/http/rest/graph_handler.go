package rest

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"netgraph-backend/application/services"
	"netgraph-backend/domain/core/aggregates"
	"netgraph-backend/domain/core/valueobjects"
	"netgraph-backend/infrastructure/concurrency"
	pkgerrors "netgraph-backend/pkg/errors"
	"netgraph-backend/pkg/observability"
)

// ownerHeader carries the authenticated subject. Authentication itself
// happens upstream; this service trusts the gateway-injected header.
const ownerHeader = "X-Owner-ID"

// GraphHandler adapts HTTP requests onto the application services.
type GraphHandler struct {
	ingestion *services.IngestionService
	engine    *services.InsightEngine
	pool      *concurrency.AnalysisPool
	validate  *validator.Validate
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewGraphHandler creates the handler.
func NewGraphHandler(
	ingestion *services.IngestionService,
	engine *services.InsightEngine,
	pool *concurrency.AnalysisPool,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *GraphHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GraphHandler{
		ingestion: ingestion,
		engine:    engine,
		pool:      pool,
		validate:  validator.New(),
		metrics:   metrics,
		logger:    logger,
	}
}

func (h *GraphHandler) owner(r *http.Request) (string, error) {
	owner := r.Header.Get(ownerHeader)
	if owner == "" {
		return "", pkgerrors.NewUnauthorizedError("missing owner identity")
	}
	return owner, nil
}

// IngestGraph handles POST /api/v1/graphs.
func (h *GraphHandler) IngestGraph(w http.ResponseWriter, r *http.Request) {
	owner, err := h.owner(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	var req IngestGraphRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, pkgerrors.NewValidationError("invalid request body").WithCause(err))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, h.logger, pkgerrors.NewValidationError(err.Error()))
		return
	}

	rawNodes, rawEdges := toRawRecords(&req)
	graph, err := h.ingestion.Ingest(r.Context(), owner, req.Platform, rawNodes, rawEdges)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if h.metrics != nil {
		h.metrics.GraphsIngested.Inc()
	}
	respond(w, http.StatusCreated, toGraphResponse(graph))
}

// GetGraph handles GET /api/v1/graphs/{graphID}.
func (h *GraphHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	graph, err := h.authorizedGraph(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respond(w, http.StatusOK, toGraphResponse(graph))
}

// ListGraphs handles GET /api/v1/graphs.
func (h *GraphHandler) ListGraphs(w http.ResponseWriter, r *http.Request) {
	owner, err := h.owner(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	graphs, err := h.engine.ListGraphs(r.Context(), owner)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	out := make([]GraphResponse, 0, len(graphs))
	for _, g := range graphs {
		out = append(out, toGraphResponse(g))
	}
	respond(w, http.StatusOK, out)
}

// AnalyzeGraph handles POST /api/v1/graphs/{graphID}/analyze. The run is
// asynchronous; the response carries the job id to poll.
func (h *GraphHandler) AnalyzeGraph(w http.ResponseWriter, r *http.Request) {
	graph, err := h.authorizedGraph(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	jobID, err := h.pool.Submit(graph.ID())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respond(w, http.StatusAccepted, JobResponse{
		JobID:   jobID,
		GraphID: graph.ID().String(),
		State:   string(concurrency.JobQueued),
	})
}

// GetJob handles GET /api/v1/jobs/{jobID}.
func (h *GraphHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	update, ok := h.pool.Status(chi.URLParam(r, "jobID"))
	if !ok {
		respondError(w, h.logger, pkgerrors.NewNotFoundError("job"))
		return
	}
	respond(w, http.StatusOK, toJobResponse(update))
}

// GetInsights handles GET /api/v1/graphs/{graphID}/insights.
func (h *GraphHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
	graph, err := h.authorizedGraph(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	set, err := h.engine.GetInsights(r.Context(), graph.ID())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respond(w, http.StatusOK, toInsightResponses(set))
}

// DeleteGraph handles DELETE /api/v1/graphs/{graphID}.
func (h *GraphHandler) DeleteGraph(w http.ResponseWriter, r *http.Request) {
	graph, err := h.authorizedGraph(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if err := h.engine.DeleteGraph(r.Context(), graph.ID()); err != nil {
		respondError(w, h.logger, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"id": graph.ID().String()})
}

// RotateKey handles POST /api/v1/keys/rotate.
func (h *GraphHandler) RotateKey(w http.ResponseWriter, r *http.Request) {
	owner, err := h.owner(r)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if err := h.ingestion.RotateKey(r.Context(), owner); err != nil {
		respondError(w, h.logger, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"status": "rotated"})
}

// Health handles GET /health.
func (h *GraphHandler) Health(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

// authorizedGraph loads the routed graph and enforces ownership. A graph
// owned by someone else is reported as not found, not forbidden, so the
// endpoint does not leak graph existence.
func (h *GraphHandler) authorizedGraph(r *http.Request) (*aggregates.Graph, error) {
	owner, err := h.owner(r)
	if err != nil {
		return nil, err
	}
	id := chi.URLParam(r, "graphID")
	if id == "" {
		return nil, pkgerrors.NewValidationError("graphID is required")
	}
	g, err := h.engine.GetGraph(r.Context(), valueobjects.GraphID(id))
	if err != nil {
		return nil, err
	}
	if g.OwnerID() != owner {
		return nil, pkgerrors.NewNotFoundError("graph").WithCode("GRAPH_NOT_FOUND")
	}
	return g, nil
}
