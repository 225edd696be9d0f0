package memory

import (
	"context"
	"sync"

	"netgraph-backend/application/ports"
	"netgraph-backend/domain/core/valueobjects"
	"netgraph-backend/domain/insights"
)

// InsightStore is a thread-safe in-memory insight repository. Sets are
// replaced atomically per graph.
type InsightStore struct {
	mu   sync.RWMutex
	sets map[valueobjects.GraphID][]insights.GeneratedInsight
}

var _ ports.InsightRepository = (*InsightStore)(nil)

// NewInsightStore creates an empty store.
func NewInsightStore() *InsightStore {
	return &InsightStore{sets: make(map[valueobjects.GraphID][]insights.GeneratedInsight)}
}

func (s *InsightStore) ReplaceForGraph(ctx context.Context, graphID valueobjects.GraphID, set []insights.GeneratedInsight) error {
	stored := make([]insights.GeneratedInsight, len(set))
	copy(stored, set)
	s.mu.Lock()
	s.sets[graphID] = stored
	s.mu.Unlock()
	return nil
}

func (s *InsightStore) FindByGraph(ctx context.Context, graphID valueobjects.GraphID) ([]insights.GeneratedInsight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, exists := s.sets[graphID]
	if !exists {
		return []insights.GeneratedInsight{}, nil
	}
	out := make([]insights.GeneratedInsight, len(set))
	copy(out, set)
	return out, nil
}

func (s *InsightStore) DeleteByGraph(ctx context.Context, graphID valueobjects.GraphID) error {
	s.mu.Lock()
	delete(s.sets, graphID)
	s.mu.Unlock()
	return nil
}
