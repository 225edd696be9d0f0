package concurrency

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netgraph-backend/application/services"
	"netgraph-backend/domain/insights"
	"netgraph-backend/infrastructure/crypto"
	"netgraph-backend/infrastructure/persistence/memory"
	pkgerrors "netgraph-backend/pkg/errors"
)

type defaultTemplates struct{}

func (defaultTemplates) Templates() []insights.InsightTemplate { return insights.DefaultLibrary() }

func newPoolHarness(t *testing.T, cfg PoolConfig) (*AnalysisPool, *services.IngestionService) {
	t.Helper()

	graphs := memory.NewGraphStore()
	keyManager, err := crypto.NewKeyManager(memory.NewKeyStore(), make([]byte, 32), nil)
	require.NoError(t, err)

	engine := services.NewInsightEngine(
		graphs,
		memory.NewInsightStore(),
		services.NewAnalysisService(nil, nil),
		insights.NewMatcher(nil, nil),
		defaultTemplates{},
		nil,
		nil,
		nil,
	)
	return NewAnalysisPool(engine, cfg, nil), services.NewIngestionService(keyManager, graphs, nil, nil)
}

func triangle() ([]services.RawNodeRecord, []services.RawEdgeRecord) {
	nodes := []services.RawNodeRecord{
		{RawID: "@a", DisplayName: "A"},
		{RawID: "@b", DisplayName: "B"},
		{RawID: "@c", DisplayName: "C"},
	}
	edges := []services.RawEdgeRecord{
		{RawSource: "@a", RawTarget: "@b", Weight: 1},
		{RawSource: "@b", RawTarget: "@c", Weight: 1},
		{RawSource: "@c", RawTarget: "@a", Weight: 1},
	}
	return nodes, edges
}

func TestPool_RunsJobToCompletion(t *testing.T) {
	pool, ingestion := newPoolHarness(t, PoolConfig{Workers: 1})
	pool.Start(context.Background())
	t.Cleanup(pool.Stop)

	nodes, edges := triangle()
	graph, err := ingestion.Ingest(context.Background(), "owner-1", "twitter", nodes, edges)
	require.NoError(t, err)

	jobID, err := pool.Submit(graph.ID())
	require.NoError(t, err)

	update, ok := pool.Status(jobID)
	require.True(t, ok)
	assert.Equal(t, graph.ID().String(), update.GraphID)

	require.Eventually(t, func() bool {
		update, ok := pool.Status(jobID)
		return ok && update.State == JobCompleted
	}, 10*time.Second, 10*time.Millisecond)

	update, _ = pool.Status(jobID)
	assert.Equal(t, 100, update.Percent)
	assert.Empty(t, update.Error)
}

func TestPool_FailedJobReportsError(t *testing.T) {
	pool, _ := newPoolHarness(t, PoolConfig{Workers: 1})
	pool.Start(context.Background())
	t.Cleanup(pool.Stop)

	jobID, err := pool.Submit("no-such-graph")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		update, ok := pool.Status(jobID)
		return ok && update.State == JobFailed
	}, 10*time.Second, 10*time.Millisecond)

	update, _ := pool.Status(jobID)
	assert.Contains(t, update.Error, "not found")
}

func TestPool_FullQueue(t *testing.T) {
	// Never started: nothing drains the queue.
	pool, _ := newPoolHarness(t, PoolConfig{Workers: 1, QueueSize: 1})

	_, err := pool.Submit("graph-1")
	require.NoError(t, err)
	_, err = pool.Submit("graph-2")
	assert.True(t, pkgerrors.IsUnavailable(err))
}

func TestPool_SubmitAfterStop(t *testing.T) {
	pool, _ := newPoolHarness(t, PoolConfig{Workers: 1})
	pool.Start(context.Background())
	pool.Stop()

	_, err := pool.Submit("graph-1")
	assert.True(t, pkgerrors.IsUnavailable(err))
}

func TestPool_UnknownJob(t *testing.T) {
	pool, _ := newPoolHarness(t, PoolConfig{Workers: 1})
	_, ok := pool.Status("unknown")
	assert.False(t, ok)
}
