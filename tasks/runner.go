package tasks

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alt-coder/chartflow/charts"
	"github.com/alt-coder/chartflow/core"
)

// ErrShuttingDown is returned by Start once Shutdown has begun; the service
// is draining, not rejecting the request on its merits.
var ErrShuttingDown = errors.New("runner is shutting down")

// FlowBuilder assembles a flow for a request. Implemented by
// charts.Pipeline; stubbed in tests.
type FlowBuilder interface {
	FlowFor(req *charts.Request, shared core.SharedContext) (*core.Flow, error)
}

// Runner executes one flow per task, each on its own goroutine. The engine
// itself provides no cancellation, so the runner derives a per-task context
// and the rendering nodes observe it between items.
type Runner struct {
	store *Store
	flows FlowBuilder
	log   *zap.Logger

	observe func(Status)

	mu      sync.Mutex
	cancels map[uuid.UUID]context.CancelFunc
	wg      sync.WaitGroup
	closed  bool
}

// RunnerOption configures a runner.
type RunnerOption func(*Runner)

// WithObserver registers a callback invoked with every terminal status, used
// for metrics.
func WithObserver(observe func(Status)) RunnerOption {
	return func(r *Runner) { r.observe = observe }
}

// NewRunner builds a runner over the store and flow builder.
func NewRunner(store *Store, flows FlowBuilder, log *zap.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		store:   store,
		flows:   flows,
		log:     log,
		cancels: make(map[uuid.UUID]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start validates the task's request, assembles its flow, persists the task,
// and launches its run. Assembly errors (bad request, capability mismatch,
// missing generator) are returned synchronously and nothing is stored.
func (r *Runner) Start(t *Task) error {
	shared := core.SharedContext{}
	flow, err := r.flows.FlowFor(t.Request, shared)
	if err != nil {
		return err
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrShuttingDown
	}
	ctx, cancel := context.WithCancel(context.Background())
	r.cancels[t.ID] = cancel
	r.wg.Add(1)
	r.mu.Unlock()

	r.store.Put(t)
	go r.run(ctx, t, flow, shared)
	return nil
}

func (r *Runner) run(ctx context.Context, t *Task, flow *core.Flow, shared core.SharedContext) {
	defer r.wg.Done()
	defer r.forget(t.ID)

	t.MarkRunning()
	r.store.Put(t)
	r.log.Info("task started", zap.String("task_id", t.ID.String()))

	err := flow.Run(ctx)
	switch {
	case err != nil && ctx.Err() != nil:
		t.MarkCanceled()
		r.log.Info("task canceled", zap.String("task_id", t.ID.String()))
	case err != nil:
		t.MarkFailed(err)
		r.log.Error("task failed", zap.String("task_id", t.ID.String()), zap.Error(err))
	default:
		artifacts, _ := shared[charts.KeyArtifacts].([]string)
		t.MarkSucceeded(artifacts)
		r.log.Info("task succeeded",
			zap.String("task_id", t.ID.String()),
			zap.Int("artifacts", len(artifacts)),
			zap.Duration("duration", t.Duration()))
	}
	r.store.Put(t)
	if r.observe != nil {
		r.observe(t.Status)
	}
}

// Cancel cancels a running task's context. It reports false when the task is
// not currently running.
func (r *Runner) Cancel(id uuid.UUID) bool {
	r.mu.Lock()
	cancel, ok := r.cancels[id]
	r.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

func (r *Runner) forget(id uuid.UUID) {
	r.mu.Lock()
	if cancel, ok := r.cancels[id]; ok {
		cancel()
		delete(r.cancels, id)
	}
	r.mu.Unlock()
}

// Shutdown stops accepting tasks, cancels everything in flight, and waits
// for all task goroutines to finish or the context to expire.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	for _, cancel := range r.cancels {
		cancel()
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
