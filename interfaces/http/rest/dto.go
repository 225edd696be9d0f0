package rest

import (
	"time"

	"netgraph-backend/application/services"
	"netgraph-backend/domain/core/aggregates"
	"netgraph-backend/domain/insights"
	"netgraph-backend/infrastructure/concurrency"
)

// IngestNodeRequest is one connection record in an ingest payload.
type IngestNodeRequest struct {
	ID          string `json:"id" validate:"required"`
	Kind        string `json:"kind" validate:"omitempty,oneof=SELF PEER"`
	DisplayName string `json:"displayName" validate:"max=256"`
	Username    string `json:"username" validate:"max=256"`
}

// IngestEdgeRequest is one relationship in an ingest payload.
type IngestEdgeRequest struct {
	Source string  `json:"source" validate:"required"`
	Target string  `json:"target" validate:"required"`
	Weight float64 `json:"weight" validate:"gt=0"`
	Kind   string  `json:"kind" validate:"omitempty,oneof=follow mutual-follow interaction"`
}

// IngestGraphRequest is the POST /graphs body.
type IngestGraphRequest struct {
	Platform string              `json:"platform" validate:"required,max=64"`
	Nodes    []IngestNodeRequest `json:"nodes" validate:"required,min=1,dive"`
	Edges    []IngestEdgeRequest `json:"edges" validate:"dive"`
}

// GraphResponse is the external view of a graph. Node identities are
// pseudonyms already; raw handles never reach this layer.
type GraphResponse struct {
	ID           string                     `json:"id"`
	OwnerID      string                     `json:"ownerId"`
	Platform     string                     `json:"platform"`
	Status       string                     `json:"status"`
	NodeCount    int                        `json:"nodeCount"`
	EdgeCount    int                        `json:"edgeCount"`
	DroppedEdges int                        `json:"droppedEdges"`
	Version      int                        `json:"version"`
	FailureCode  string                     `json:"failureCode,omitempty"`
	CreatedAt    time.Time                  `json:"createdAt"`
	AnalyzedAt   *time.Time                 `json:"analyzedAt,omitempty"`
	Statistics   *aggregates.AnalysisResult `json:"statistics,omitempty"`
}

func toGraphResponse(g *aggregates.Graph) GraphResponse {
	return GraphResponse{
		ID:           g.ID().String(),
		OwnerID:      g.OwnerID(),
		Platform:     g.Platform(),
		Status:       string(g.Status()),
		NodeCount:    g.NodeCount(),
		EdgeCount:    g.EdgeCount(),
		DroppedEdges: g.DroppedEdges(),
		Version:      g.Version(),
		FailureCode:  g.FailureCode(),
		CreatedAt:    g.CreatedAt(),
		AnalyzedAt:   g.AnalyzedAt(),
		Statistics:   g.Statistics(),
	}
}

// JobResponse reports an async analysis job.
type JobResponse struct {
	JobID   string `json:"jobId"`
	GraphID string `json:"graphId"`
	State   string `json:"state"`
	Phase   string `json:"phase,omitempty"`
	Percent int    `json:"percent"`
	Error   string `json:"error,omitempty"`
}

func toJobResponse(u concurrency.JobUpdate) JobResponse {
	return JobResponse{
		JobID:   u.JobID,
		GraphID: u.GraphID,
		State:   string(u.State),
		Phase:   u.Phase,
		Percent: u.Percent,
		Error:   u.Error,
	}
}

// InsightResponse is one generated insight.
type InsightResponse struct {
	ID          string    `json:"id"`
	TemplateID  string    `json:"templateId"`
	Category    string    `json:"category"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Confidence  string    `json:"confidence"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toInsightResponses(set []insights.GeneratedInsight) []InsightResponse {
	out := make([]InsightResponse, 0, len(set))
	for _, ins := range set {
		out = append(out, InsightResponse{
			ID:          ins.ID.String(),
			TemplateID:  ins.TemplateID,
			Category:    string(ins.Category),
			Title:       ins.Title,
			Description: ins.Description,
			Confidence:  string(ins.Confidence),
			CreatedAt:   ins.CreatedAt,
		})
	}
	return out
}

func toRawRecords(req *IngestGraphRequest) ([]services.RawNodeRecord, []services.RawEdgeRecord) {
	nodes := make([]services.RawNodeRecord, 0, len(req.Nodes))
	for _, n := range req.Nodes {
		nodes = append(nodes, services.RawNodeRecord{
			RawID:       n.ID,
			Kind:        n.Kind,
			DisplayName: n.DisplayName,
			Username:    n.Username,
		})
	}
	edges := make([]services.RawEdgeRecord, 0, len(req.Edges))
	for _, e := range req.Edges {
		edges = append(edges, services.RawEdgeRecord{
			RawSource: e.Source,
			RawTarget: e.Target,
			Weight:    e.Weight,
			Kind:      e.Kind,
		})
	}
	return nodes, edges
}
