// Package resilience wraps repositories with a circuit breaker so a
// struggling backing store sheds load fast instead of queueing callers.
package resilience

import (
	"context"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"netgraph-backend/application/ports"
	"netgraph-backend/domain/core/aggregates"
	"netgraph-backend/domain/core/valueobjects"
	pkgerrors "netgraph-backend/pkg/errors"
)

// GraphRepository guards a durable graph repository with a circuit
// breaker. Domain errors (not-found, validation) do not count as
// failures; only infrastructure errors trip the breaker.
type GraphRepository struct {
	inner   ports.GraphRepository
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

var _ ports.GraphRepository = (*GraphRepository)(nil)

// NewGraphRepository wraps the repository with breaker settings tuned for
// a store that answers in tens of milliseconds.
func NewGraphRepository(inner ports.GraphRepository, name string, logger *zap.Logger) *GraphRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &GraphRepository{inner: inner, logger: logger}
	r.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			// Expected domain outcomes are not infrastructure failures.
			return pkgerrors.IsNotFound(err) || pkgerrors.IsValidation(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return r
}

func (r *GraphRepository) execute(fn func() (interface{}, error)) (interface{}, error) {
	out, err := r.breaker.Execute(fn)
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return nil, pkgerrors.NewUnavailableError("graph store circuit open").WithCause(err)
	}
	return out, err
}

func (r *GraphRepository) Save(ctx context.Context, graph *aggregates.Graph) error {
	_, err := r.execute(func() (interface{}, error) {
		return nil, r.inner.Save(ctx, graph)
	})
	return err
}

func (r *GraphRepository) FindByID(ctx context.Context, id valueobjects.GraphID) (*aggregates.Graph, error) {
	out, err := r.execute(func() (interface{}, error) {
		return r.inner.FindByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return out.(*aggregates.Graph), nil
}

func (r *GraphRepository) FindByOwner(ctx context.Context, ownerID string) ([]*aggregates.Graph, error) {
	out, err := r.execute(func() (interface{}, error) {
		return r.inner.FindByOwner(ctx, ownerID)
	})
	if err != nil {
		return nil, err
	}
	return out.([]*aggregates.Graph), nil
}

func (r *GraphRepository) Delete(ctx context.Context, id valueobjects.GraphID) error {
	_, err := r.execute(func() (interface{}, error) {
		return nil, r.inner.Delete(ctx, id)
	})
	return err
}
