// Package concurrency runs insight-generation jobs on a bounded worker
// pool so one large graph cannot starve the API of goroutines.
package concurrency

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"netgraph-backend/application/services"
	"netgraph-backend/domain/core/valueobjects"
	pkgerrors "netgraph-backend/pkg/errors"
)

// JobState is the lifecycle of one queued analysis job.
type JobState string

const (
	JobQueued    JobState = "QUEUED"
	JobRunning   JobState = "RUNNING"
	JobCompleted JobState = "COMPLETED"
	JobFailed    JobState = "FAILED"
)

// JobUpdate is one progress message emitted while a job runs.
type JobUpdate struct {
	JobID   string
	GraphID string
	State   JobState
	Phase   string
	Percent int
	Error   string
	At      time.Time
}

// PoolConfig sizes the pool. Zero values pick CPU-based defaults.
type PoolConfig struct {
	Workers    int
	QueueSize  int
	JobTimeout time.Duration
}

func (c PoolConfig) withDefaults() PoolConfig {
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.QueueSize <= 0 {
		c.QueueSize = c.Workers * 4
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = 5 * time.Minute
	}
	return c
}

type job struct {
	id      string
	graphID valueobjects.GraphID
}

// AnalysisPool executes insight-generation runs with bounded parallelism
// and publishes per-job progress updates.
type AnalysisPool struct {
	engine  *services.InsightEngine
	config  PoolConfig
	queue   chan job
	updates chan JobUpdate
	logger  *zap.Logger

	mu     sync.RWMutex
	jobs   map[string]JobUpdate
	wg     sync.WaitGroup
	cancel context.CancelFunc
	once   sync.Once
	closed bool
}

// NewAnalysisPool creates a stopped pool; call Start before Submit.
func NewAnalysisPool(engine *services.InsightEngine, config PoolConfig, logger *zap.Logger) *AnalysisPool {
	if logger == nil {
		logger = zap.NewNop()
	}
	config = config.withDefaults()
	return &AnalysisPool{
		engine:  engine,
		config:  config,
		queue:   make(chan job, config.QueueSize),
		updates: make(chan JobUpdate, config.QueueSize*4),
		logger:  logger,
		jobs:    make(map[string]JobUpdate),
	}
}

// Start launches the workers. Safe to call more than once.
func (p *AnalysisPool) Start(ctx context.Context) {
	p.once.Do(func() {
		ctx, p.cancel = context.WithCancel(ctx)
		for i := 0; i < p.config.Workers; i++ {
			p.wg.Add(1)
			go p.worker(ctx)
		}
		p.logger.Info("analysis pool started", zap.Int("workers", p.config.Workers))
	})
}

// Submit enqueues a generation run and returns the job id immediately.
// A full queue is reported as an unavailable error rather than blocking.
func (p *AnalysisPool) Submit(graphID valueobjects.GraphID) (string, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return "", pkgerrors.NewUnavailableError("analysis pool stopped")
	}
	j := job{id: uuid.New().String(), graphID: graphID}
	update := JobUpdate{
		JobID:   j.id,
		GraphID: graphID.String(),
		State:   JobQueued,
		At:      time.Now(),
	}
	p.jobs[j.id] = update
	p.mu.Unlock()

	select {
	case p.queue <- j:
		p.emit(update)
		return j.id, nil
	default:
		p.mu.Lock()
		delete(p.jobs, j.id)
		p.mu.Unlock()
		return "", pkgerrors.NewUnavailableError("analysis queue full")
	}
}

// Status returns the last known update for a job.
func (p *AnalysisPool) Status(jobID string) (JobUpdate, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	update, ok := p.jobs[jobID]
	return update, ok
}

// Updates exposes the progress stream. The channel closes on Stop.
func (p *AnalysisPool) Updates() <-chan JobUpdate {
	return p.updates
}

// Stop drains workers and closes the update stream. Queued jobs that have
// not started are abandoned.
func (p *AnalysisPool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	close(p.updates)
}

func (p *AnalysisPool) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-p.queue:
			p.run(ctx, j)
		}
	}
}

func (p *AnalysisPool) run(ctx context.Context, j job) {
	runCtx, cancel := context.WithTimeout(ctx, p.config.JobTimeout)
	defer cancel()

	p.record(JobUpdate{JobID: j.id, GraphID: j.graphID.String(), State: JobRunning, At: time.Now()})

	progress := func(phase string, percent int) {
		p.record(JobUpdate{
			JobID:   j.id,
			GraphID: j.graphID.String(),
			State:   JobRunning,
			Phase:   phase,
			Percent: percent,
			At:      time.Now(),
		})
	}

	generated, err := p.engine.Generate(runCtx, j.graphID, services.ProgressFunc(progress))
	if err != nil {
		p.record(JobUpdate{
			JobID:   j.id,
			GraphID: j.graphID.String(),
			State:   JobFailed,
			Error:   err.Error(),
			At:      time.Now(),
		})
		p.logger.Error("analysis job failed",
			zap.String("job_id", j.id),
			zap.String("graph_id", j.graphID.String()),
			zap.Error(err),
		)
		return
	}
	p.record(JobUpdate{
		JobID:   j.id,
		GraphID: j.graphID.String(),
		State:   JobCompleted,
		Percent: 100,
		At:      time.Now(),
	})
	p.logger.Info("analysis job completed",
		zap.String("job_id", j.id),
		zap.String("graph_id", j.graphID.String()),
		zap.Int("insights", len(generated)),
	)
}

func (p *AnalysisPool) record(update JobUpdate) {
	p.mu.Lock()
	p.jobs[update.JobID] = update
	p.mu.Unlock()
	p.emit(update)
}

// emit never blocks a worker; slow consumers lose intermediate updates
// but the jobs map always holds the latest state.
func (p *AnalysisPool) emit(update JobUpdate) {
	select {
	case p.updates <- update:
	default:
	}
}
