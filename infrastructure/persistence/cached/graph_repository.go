// Package cached decorates the durable graph repository with a byte-level
// cache. The cache is an optimization only: a cache failure degrades to
// the durable store and never surfaces to the caller.
package cached

import (
	"context"
	"time"

	"go.uber.org/zap"

	"netgraph-backend/application/ports"
	"netgraph-backend/domain/core/aggregates"
	"netgraph-backend/domain/core/valueobjects"
	"netgraph-backend/infrastructure/cache"
	"netgraph-backend/pkg/observability"
)

const keyPrefix = "graph:"

// GraphRepository is a write-through caching decorator over a durable
// ports.GraphRepository. Invalidation happens before the durable write is
// acknowledged, so a reader racing a write sees either the old or the new
// version, never a stale entry outliving the write.
type GraphRepository struct {
	inner   ports.GraphRepository
	cache   ports.GraphCache
	codec   cache.SnapshotCodec
	ttl     time.Duration
	metrics *observability.Metrics
	logger  *zap.Logger
}

var _ ports.GraphRepository = (*GraphRepository)(nil)

// NewGraphRepository wraps the durable repository with the cache. Metrics
// may be nil.
func NewGraphRepository(inner ports.GraphRepository, graphCache ports.GraphCache, ttl time.Duration, metrics *observability.Metrics, logger *zap.Logger) *GraphRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GraphRepository{
		inner:   inner,
		cache:   graphCache,
		ttl:     ttl,
		metrics: metrics,
		logger:  logger,
	}
}

func cacheKey(id valueobjects.GraphID) string {
	return keyPrefix + id.String()
}

// Save invalidates the cached entry, writes through to the durable store,
// then repopulates the cache with the new version.
func (r *GraphRepository) Save(ctx context.Context, graph *aggregates.Graph) error {
	key := cacheKey(graph.ID())
	if err := r.cache.Delete(ctx, key); err != nil {
		r.logger.Warn("cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
	if err := r.inner.Save(ctx, graph); err != nil {
		return err
	}
	r.put(ctx, key, graph)
	return nil
}

// FindByID serves from the cache when possible, falling back to the
// durable store on a miss or a corrupt entry.
func (r *GraphRepository) FindByID(ctx context.Context, id valueobjects.GraphID) (*aggregates.Graph, error) {
	key := cacheKey(id)
	data, hit, err := r.cache.Get(ctx, key)
	if err != nil {
		r.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	} else if hit {
		snapshot, decodeErr := r.codec.Decode(data)
		if decodeErr == nil {
			if graph, restoreErr := aggregates.RestoreGraph(snapshot); restoreErr == nil {
				if r.metrics != nil {
					r.metrics.CacheHits.Inc()
				}
				return graph, nil
			}
		}
		r.logger.Warn("evicting corrupt cache entry", zap.String("key", key))
		if delErr := r.cache.Delete(ctx, key); delErr != nil {
			r.logger.Warn("cache eviction failed", zap.String("key", key), zap.Error(delErr))
		}
	}

	if r.metrics != nil {
		r.metrics.CacheMisses.Inc()
	}
	graph, err := r.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.put(ctx, key, graph)
	return graph, nil
}

func (r *GraphRepository) FindByOwner(ctx context.Context, ownerID string) ([]*aggregates.Graph, error) {
	return r.inner.FindByOwner(ctx, ownerID)
}

// Delete invalidates the cache before the durable delete so no reader can
// resurrect the entry afterwards.
func (r *GraphRepository) Delete(ctx context.Context, id valueobjects.GraphID) error {
	key := cacheKey(id)
	if err := r.cache.Delete(ctx, key); err != nil {
		r.logger.Warn("cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
	return r.inner.Delete(ctx, id)
}

// WarmGraph preloads the cache with a single graph.
func (r *GraphRepository) WarmGraph(ctx context.Context, id valueobjects.GraphID) error {
	graph, err := r.inner.FindByID(ctx, id)
	if err != nil {
		return err
	}
	r.put(ctx, cacheKey(graph.ID()), graph)
	return nil
}

// Warm preloads the cache with all graphs belonging to an owner.
func (r *GraphRepository) Warm(ctx context.Context, ownerID string) error {
	graphs, err := r.inner.FindByOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	for _, graph := range graphs {
		r.put(ctx, cacheKey(graph.ID()), graph)
	}
	r.logger.Debug("cache warmed",
		zap.String("owner_id", ownerID),
		zap.Int("graphs", len(graphs)),
	)
	return nil
}

func (r *GraphRepository) put(ctx context.Context, key string, graph *aggregates.Graph) {
	data, err := r.codec.Encode(graph.Snapshot())
	if err != nil {
		r.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := r.cache.Set(ctx, key, data, r.ttl); err != nil {
		r.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}
