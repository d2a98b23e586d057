package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryThenSucceed(t *testing.T) {
	fallbackCalls := 0
	attempts := 0
	n := NewNode("flaky", Funcs{
		ExecFn: func(context.Context, any) (any, error) {
			attempts++
			if attempts == 1 {
				return nil, errors.New("transient")
			}
			return "ok", nil
		},
		PostFn: func(_ context.Context, shared SharedContext, _, exec any) (Action, error) {
			shared["result"] = exec
			return NoAction, nil
		},
	},
		WithRetry(2, 50*time.Millisecond),
		WithFallback(func(context.Context, any, error) (any, error) {
			fallbackCalls++
			return nil, nil
		}),
	)

	shared := SharedContext{}
	start := time.Now()
	_, err := n.Run(context.Background(), shared)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, "ok", shared["result"])
	assert.Equal(t, 2, attempts)
	assert.Zero(t, fallbackCalls)
	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond, "the retry delay must be honored")
}

func TestRetryExhaustionInvokesFallback(t *testing.T) {
	n := NewNode("always-failing", Funcs{
		ExecFn: func(context.Context, any) (any, error) {
			return nil, errors.New("down")
		},
		PostFn: func(_ context.Context, shared SharedContext, _, exec any) (Action, error) {
			shared["result"] = exec
			return NoAction, nil
		},
	},
		WithRetry(1, 0),
		WithFallback(func(_ context.Context, _ any, err error) (any, error) {
			return "error", nil
		}),
	)

	shared := SharedContext{}
	_, err := n.Run(context.Background(), shared)
	require.NoError(t, err)
	assert.Equal(t, "error", shared["result"])
}

func TestDefaultFallbackReRaises(t *testing.T) {
	boom := errors.New("down")
	attempts := 0
	n := NewNode("no-fallback", Funcs{
		ExecFn: func(context.Context, any) (any, error) {
			attempts++
			return nil, boom
		},
	}, WithRetry(3, 0))

	_, err := n.Run(context.Background(), SharedContext{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, attempts)
}

func TestNoDelayAfterTerminalAttempt(t *testing.T) {
	n := NewNode("terminal", Funcs{
		ExecFn: func(context.Context, any) (any, error) {
			return nil, errors.New("down")
		},
	},
		WithRetry(1, 200*time.Millisecond),
		WithFallback(func(context.Context, any, error) (any, error) { return nil, nil }),
	)

	start := time.Now()
	_, err := n.Run(context.Background(), SharedContext{})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 200*time.Millisecond,
		"the delay belongs between attempts, not before the fallback")
}

func TestMaxRetriesCoercedUpToOne(t *testing.T) {
	attempts := 0
	n := NewNode("coerced", Funcs{
		ExecFn: func(context.Context, any) (any, error) {
			attempts++
			return nil, errors.New("down")
		},
	}, WithRetry(0, 0))

	assert.Equal(t, 1, n.Retry().MaxRetries)
	_, err := n.Run(context.Background(), SharedContext{})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryWarnsPerFailedAttemptAndErrorsOnExhaustion(t *testing.T) {
	log := &captureLogger{}
	n := NewNode("noisy", Funcs{
		ExecFn: func(context.Context, any) (any, error) {
			return nil, errors.New("down")
		},
	},
		WithRetry(3, 0),
		WithFallback(func(context.Context, any, error) (any, error) { return nil, nil }),
		WithLogger(log),
	)

	_, err := n.Run(context.Background(), SharedContext{})
	require.NoError(t, err)
	assert.Len(t, log.byLevel("warn"), 2, "one warning per non-final failed attempt")
	assert.Len(t, log.byLevel("error"), 1, "one error for the terminal failure")
}
