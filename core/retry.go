package core

import (
	"context"
	"time"
)

// Fallback is invoked in place of a failed Exec (or ExecItem) once its
// retries are exhausted. It receives the prep result (the item, for batch
// nodes) and the terminal error; its return value becomes the execution
// result. A nil Fallback re-raises the terminal error.
type Fallback func(ctx context.Context, prepResult any, err error) (any, error)

// RetryPolicy bounds and recovers from transient Exec failures. It applies to
// the Exec phase only; Prep and Post failures are never retried.
type RetryPolicy struct {
	// MaxRetries is the total number of attempts. Values below 1 are coerced
	// up: "no retry" is one attempt followed by the fallback.
	MaxRetries int

	// Wait is slept strictly between failed attempts, never after the final
	// one.
	Wait time.Duration

	// Fallback replaces the default re-raise behavior.
	Fallback Fallback
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxRetries < 1 {
		p.MaxRetries = 1
	}
	if p.Wait < 0 {
		p.Wait = 0
	}
	return p
}

// run drives up to MaxRetries attempts of exec over input, reporting each
// non-final failure at warn level and the terminal failure at error level
// before routing it to the fallback.
func (p RetryPolicy) run(ctx context.Context, log Logger, node, phase string, input any,
	exec func(context.Context, any) (any, error)) (any, error) {

	var out any
	var err error
	for attempt := 1; attempt <= p.MaxRetries; attempt++ {
		out, err = exec(ctx, input)
		if err == nil {
			return out, nil
		}
		if attempt < p.MaxRetries {
			log.Warn(node, "attempt failed, retrying",
				"phase", phase, "attempt", attempt, "max_retries", p.MaxRetries,
				"wait", p.Wait.String(), "error", err)
			if p.Wait > 0 {
				time.Sleep(p.Wait)
			}
		}
	}

	log.Error(node, "retries exhausted, invoking fallback",
		"phase", phase, "max_retries", p.MaxRetries, "error", err)

	if p.Fallback == nil {
		return nil, &PhaseError{Node: node, Phase: phase, Err: err}
	}
	out, ferr := p.Fallback(ctx, input, err)
	if ferr != nil {
		return nil, &PhaseError{Node: node, Phase: PhaseFallback, Err: ferr}
	}
	return out, nil
}
