package tasks

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alt-coder/chartflow/charts"
	"github.com/alt-coder/chartflow/core"
)

// stubFlows builds one-node flows driven by an exec function, standing in for
// the chart pipeline.
type stubFlows struct {
	exec func(ctx context.Context) ([]string, error)
	err  error
}

func (s *stubFlows) FlowFor(_ *charts.Request, shared core.SharedContext) (*core.Flow, error) {
	if s.err != nil {
		return nil, s.err
	}
	node := core.NewNode("work", core.Funcs{
		ExecFn: func(ctx context.Context, _ any) (any, error) {
			return s.exec(ctx)
		},
		PostFn: func(_ context.Context, shared core.SharedContext, _, execResult any) (core.Action, error) {
			shared[charts.KeyArtifacts] = execResult.([]string)
			return core.NoAction, nil
		},
	})
	return core.NewFlow(node, shared)
}

func waitTerminal(t *testing.T, store *Store, task *Task) *Task {
	t.Helper()
	var got *Task
	require.Eventually(t, func() bool {
		snapshot, ok := store.Get(task.ID)
		if !ok || !snapshot.Status.IsTerminal() {
			return false
		}
		got = snapshot
		return true
	}, 2*time.Second, 5*time.Millisecond)
	return got
}

func TestRunnerSuccess(t *testing.T) {
	store := NewStore()
	flows := &stubFlows{exec: func(context.Context) ([]string, error) {
		return []string{"/out/chart.html"}, nil
	}}

	var mu sync.Mutex
	var observed []Status
	runner := NewRunner(store, flows, zap.NewNop(), WithObserver(func(s Status) {
		mu.Lock()
		observed = append(observed, s)
		mu.Unlock()
	}))

	task := New(&charts.Request{Prompt: "plot"})
	require.NoError(t, runner.Start(task))

	got := waitTerminal(t, store, task)
	assert.Equal(t, StatusSucceeded, got.Status)
	assert.Equal(t, []string{"/out/chart.html"}, got.Artifacts)
	assert.NotNil(t, got.StartedAt)
	assert.NotNil(t, got.FinishedAt)
	assert.Empty(t, got.Error)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Status{StatusSucceeded}, observed)
}

func TestRunnerFailure(t *testing.T) {
	store := NewStore()
	flows := &stubFlows{exec: func(context.Context) ([]string, error) {
		return nil, fmt.Errorf("renderer exploded")
	}}
	runner := NewRunner(store, flows, zap.NewNop())

	task := New(&charts.Request{Prompt: "plot"})
	require.NoError(t, runner.Start(task))

	got := waitTerminal(t, store, task)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Contains(t, got.Error, "renderer exploded")
	assert.Empty(t, got.Artifacts)
}

func TestRunnerStartRejectsBadRequest(t *testing.T) {
	store := NewStore()
	flows := &stubFlows{err: fmt.Errorf("request needs a prompt")}
	runner := NewRunner(store, flows, zap.NewNop())

	task := New(&charts.Request{})
	require.Error(t, runner.Start(task))

	_, ok := store.Get(task.ID)
	assert.False(t, ok, "rejected task must not be stored")
}

func TestRunnerCancel(t *testing.T) {
	store := NewStore()
	started := make(chan struct{})
	flows := &stubFlows{exec: func(ctx context.Context) ([]string, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	runner := NewRunner(store, flows, zap.NewNop())

	task := New(&charts.Request{Prompt: "plot"})
	require.NoError(t, runner.Start(task))

	<-started
	assert.True(t, runner.Cancel(task.ID))

	got := waitTerminal(t, store, task)
	assert.Equal(t, StatusCanceled, got.Status)
}

func TestRunnerCancelUnknownTask(t *testing.T) {
	runner := NewRunner(NewStore(), &stubFlows{}, zap.NewNop())
	assert.False(t, runner.Cancel(New(&charts.Request{}).ID))
}

func TestRunnerCancelAfterFinish(t *testing.T) {
	store := NewStore()
	flows := &stubFlows{exec: func(context.Context) ([]string, error) {
		return nil, nil
	}}
	runner := NewRunner(store, flows, zap.NewNop())

	task := New(&charts.Request{Prompt: "plot"})
	require.NoError(t, runner.Start(task))
	waitTerminal(t, store, task)

	assert.False(t, runner.Cancel(task.ID))
}

func TestRunnerShutdown(t *testing.T) {
	store := NewStore()
	flows := &stubFlows{exec: func(ctx context.Context) ([]string, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	runner := NewRunner(store, flows, zap.NewNop())

	task := New(&charts.Request{Prompt: "plot"})
	require.NoError(t, runner.Start(task))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, runner.Shutdown(ctx))

	got, ok := store.Get(task.ID)
	require.True(t, ok)
	assert.Equal(t, StatusCanceled, got.Status)

	// new work is refused after shutdown
	err := runner.Start(New(&charts.Request{Prompt: "plot"}))
	assert.ErrorIs(t, err, ErrShuttingDown)
}
