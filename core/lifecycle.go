package core

import "context"

// Lifecycle is the three-phase contract a unit of work implements.
//
// Prep reads and derives input from the shared context. Exec performs the
// core computation and deliberately has no access to the shared context: it
// only sees what Prep handed it, which keeps it the retryable step. Post is
// the only phase permitted to write back into the shared context; the action
// it returns picks the next transition (NoAction terminates the flow).
type Lifecycle interface {
	Prep(ctx context.Context, shared SharedContext) (any, error)
	Exec(ctx context.Context, prepResult any) (any, error)
	Post(ctx context.Context, shared SharedContext, prepResult, execResult any) (Action, error)
}

// ItemLifecycle is the batch variant of Lifecycle. Prep must produce a
// sequence (slice or array); ExecItem is applied to each element under the
// node's retry policy. Per-item results are not surfaced to Post: batch nodes
// report through the shared context only.
type ItemLifecycle interface {
	Prep(ctx context.Context, shared SharedContext) (any, error)
	ExecItem(ctx context.Context, item any) (any, error)
	Post(ctx context.Context, shared SharedContext, prepResult, execResult any) (Action, error)
}

// BaseLifecycle provides the default behavior for all three phases and is
// meant to be embedded by node implementations that only need some of them:
// Prep and Exec are no-ops, and Post passes the execution result through
// unchanged as the action. A default Exec never sees the prep result, so a
// lifecycle overriding only Prep terminates the flow instead of routing its
// prep result as an action.
type BaseLifecycle struct{}

func (BaseLifecycle) Prep(context.Context, SharedContext) (any, error) { return nil, nil }

func (BaseLifecycle) Exec(context.Context, any) (any, error) { return nil, nil }

func (BaseLifecycle) Post(_ context.Context, _ SharedContext, _, execResult any) (Action, error) {
	switch v := execResult.(type) {
	case Action:
		return v, nil
	case string:
		return Action(v), nil
	default:
		return NoAction, nil
	}
}

// ExecItem passes the item through for batch implementations embedding
// BaseLifecycle; unlike Exec it is not a no-op, since a batch item is the
// unit of work itself.
func (BaseLifecycle) ExecItem(_ context.Context, item any) (any, error) { return item, nil }

// Funcs adapts plain functions to a Lifecycle. Nil fields fall back to the
// BaseLifecycle defaults.
type Funcs struct {
	PrepFn func(ctx context.Context, shared SharedContext) (any, error)
	ExecFn func(ctx context.Context, prepResult any) (any, error)
	PostFn func(ctx context.Context, shared SharedContext, prepResult, execResult any) (Action, error)
}

func (f Funcs) Prep(ctx context.Context, shared SharedContext) (any, error) {
	if f.PrepFn == nil {
		return BaseLifecycle{}.Prep(ctx, shared)
	}
	return f.PrepFn(ctx, shared)
}

func (f Funcs) Exec(ctx context.Context, prepResult any) (any, error) {
	if f.ExecFn == nil {
		return BaseLifecycle{}.Exec(ctx, prepResult)
	}
	return f.ExecFn(ctx, prepResult)
}

func (f Funcs) Post(ctx context.Context, shared SharedContext, prepResult, execResult any) (Action, error) {
	if f.PostFn == nil {
		return BaseLifecycle{}.Post(ctx, shared, prepResult, execResult)
	}
	return f.PostFn(ctx, shared, prepResult, execResult)
}

// ItemFuncs adapts plain functions to an ItemLifecycle.
type ItemFuncs struct {
	PrepFn     func(ctx context.Context, shared SharedContext) (any, error)
	ExecItemFn func(ctx context.Context, item any) (any, error)
	PostFn     func(ctx context.Context, shared SharedContext, prepResult, execResult any) (Action, error)
}

func (f ItemFuncs) Prep(ctx context.Context, shared SharedContext) (any, error) {
	if f.PrepFn == nil {
		return BaseLifecycle{}.Prep(ctx, shared)
	}
	return f.PrepFn(ctx, shared)
}

func (f ItemFuncs) ExecItem(ctx context.Context, item any) (any, error) {
	if f.ExecItemFn == nil {
		return BaseLifecycle{}.ExecItem(ctx, item)
	}
	return f.ExecItemFn(ctx, item)
}

func (f ItemFuncs) Post(ctx context.Context, shared SharedContext, prepResult, execResult any) (Action, error) {
	if f.PostFn == nil {
		return BaseLifecycle{}.Post(ctx, shared, prepResult, execResult)
	}
	return f.PostFn(ctx, shared, prepResult, execResult)
}
