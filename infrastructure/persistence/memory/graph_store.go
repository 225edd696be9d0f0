// Package memory provides in-memory repository implementations used by
// tests and local development. Aggregates are stored as snapshots so
// callers never share mutable state with the store.
package memory

import (
	"context"
	"sort"
	"sync"

	"netgraph-backend/application/ports"
	"netgraph-backend/domain/core/aggregates"
	"netgraph-backend/domain/core/valueobjects"
	pkgerrors "netgraph-backend/pkg/errors"
)

// GraphStore is a thread-safe in-memory graph repository.
type GraphStore struct {
	mu     sync.RWMutex
	graphs map[valueobjects.GraphID]*aggregates.GraphSnapshot
	// order preserves insertion sequence for deterministic FindByOwner.
	order []valueobjects.GraphID
}

var _ ports.GraphRepository = (*GraphStore)(nil)

// NewGraphStore creates an empty store.
func NewGraphStore() *GraphStore {
	return &GraphStore{graphs: make(map[valueobjects.GraphID]*aggregates.GraphSnapshot)}
}

func (s *GraphStore) Save(ctx context.Context, graph *aggregates.Graph) error {
	if graph == nil {
		return pkgerrors.NewValidationError("graph cannot be nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.graphs[graph.ID()]; !exists {
		s.order = append(s.order, graph.ID())
	}
	s.graphs[graph.ID()] = graph.Snapshot()
	return nil
}

func (s *GraphStore) FindByID(ctx context.Context, id valueobjects.GraphID) (*aggregates.Graph, error) {
	s.mu.RLock()
	snapshot, exists := s.graphs[id]
	s.mu.RUnlock()
	if !exists {
		return nil, pkgerrors.NewNotFoundError("graph").WithCode("GRAPH_NOT_FOUND")
	}
	return aggregates.RestoreGraph(snapshot)
}

func (s *GraphStore) FindByOwner(ctx context.Context, ownerID string) ([]*aggregates.Graph, error) {
	s.mu.RLock()
	ids := make([]valueobjects.GraphID, 0)
	for _, id := range s.order {
		if snap, ok := s.graphs[id]; ok && snap.OwnerID == ownerID {
			ids = append(ids, id)
		}
	}
	snapshots := make([]*aggregates.GraphSnapshot, 0, len(ids))
	for _, id := range ids {
		snapshots = append(snapshots, s.graphs[id])
	}
	s.mu.RUnlock()

	// Newest first, ties broken by id for stable output.
	sort.SliceStable(snapshots, func(a, b int) bool {
		if !snapshots[a].CreatedAt.Equal(snapshots[b].CreatedAt) {
			return snapshots[a].CreatedAt.After(snapshots[b].CreatedAt)
		}
		return snapshots[a].ID < snapshots[b].ID
	})

	out := make([]*aggregates.Graph, 0, len(snapshots))
	for _, snap := range snapshots {
		g, err := aggregates.RestoreGraph(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

func (s *GraphStore) Delete(ctx context.Context, id valueobjects.GraphID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.graphs[id]; !exists {
		return pkgerrors.NewNotFoundError("graph").WithCode("GRAPH_NOT_FOUND")
	}
	delete(s.graphs, id)
	for i, gid := range s.order {
		if gid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
