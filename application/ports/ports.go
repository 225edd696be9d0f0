// Package ports declares the interfaces the application layer depends on.
// Infrastructure provides the implementations; tests substitute in-memory
// ones.
package ports

import (
	"context"
	"time"

	"netgraph-backend/domain/core/aggregates"
	"netgraph-backend/domain/core/valueobjects"
	"netgraph-backend/domain/events"
	"netgraph-backend/domain/insights"
)

// GraphRepository is the durable store for graph aggregates.
type GraphRepository interface {
	Save(ctx context.Context, graph *aggregates.Graph) error
	FindByID(ctx context.Context, id valueobjects.GraphID) (*aggregates.Graph, error)
	FindByOwner(ctx context.Context, ownerID string) ([]*aggregates.Graph, error)
	Delete(ctx context.Context, id valueobjects.GraphID) error
}

// InsightRepository stores generated insight sets. ReplaceForGraph is
// all-or-nothing: a failed write leaves the previous set untouched.
type InsightRepository interface {
	ReplaceForGraph(ctx context.Context, graphID valueobjects.GraphID, set []insights.GeneratedInsight) error
	FindByGraph(ctx context.Context, graphID valueobjects.GraphID) ([]insights.GeneratedInsight, error)
	DeleteByGraph(ctx context.Context, graphID valueobjects.GraphID) error
}

// KeyStore persists encrypted per-user pseudonymization keys. Load returns
// a NotFoundError when the user has no key yet.
type KeyStore interface {
	Load(ctx context.Context, userID string) ([]byte, error)
	Store(ctx context.Context, userID string, encryptedKey []byte) error
}

// UserKey derives pseudonymized identifiers with a user's secret key. The
// derivation is a pure function: equal raw values always yield equal IDs
// under the same key.
type UserKey interface {
	DeriveID(rawValue string) valueobjects.NodeID
}

// KeyManager resolves user keys, creating them lazily on first use.
// Rotation is destructive: pseudonyms derived under the old key can never
// be re-correlated.
type KeyManager interface {
	EnsureUserKey(ctx context.Context, userID string) (UserKey, error)
	RotateKey(ctx context.Context, userID string) (UserKey, error)
}

// GraphCache is the byte-level cache in front of the durable graph store.
// Keys are independent; implementations must not serialize unrelated keys
// behind one lock.
type GraphCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// EventPublisher delivers domain events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, evts ...events.DomainEvent) error
}

// TemplateProvider yields the current insight template library.
// Implementations may hot-reload the library from disk.
type TemplateProvider interface {
	Templates() []insights.InsightTemplate
}
