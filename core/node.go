package core

import (
	"context"
	"fmt"
	"maps"
	"time"
)

// Strategy tags how a node's Exec phase is driven: once over the prep result,
// sequentially over a prepared sequence, or concurrently over it.
type Strategy int

const (
	StrategySingle Strategy = iota
	StrategyBatch
	StrategyParallelBatch
)

func (s Strategy) String() string {
	switch s {
	case StrategySingle:
		return "single"
	case StrategyBatch:
		return "batch"
	case StrategyParallelBatch:
		return "parallel-batch"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Node is a unit of work in the transition graph. It binds a Lifecycle (or
// ItemLifecycle) implementation to an execution strategy, a retry policy, a
// parameter bag, and the action-labeled edges to its successors.
type Node struct {
	name       string
	impl       Lifecycle
	items      ItemLifecycle
	strategy   Strategy
	retry      RetryPolicy
	params     map[string]any
	successors map[Action]*Node
	log        Logger
}

// Option configures a node at construction.
type Option func(*Node)

// WithRetry attaches a retry policy: maxRetries total attempts (coerced up to
// 1) with wait slept between failed attempts.
func WithRetry(maxRetries int, wait time.Duration) Option {
	return func(n *Node) {
		n.retry.MaxRetries = maxRetries
		n.retry.Wait = wait
	}
}

// WithFallback installs the computation invoked once retries are exhausted.
func WithFallback(fb Fallback) Option {
	return func(n *Node) { n.retry.Fallback = fb }
}

// WithLogger injects the node's logging collaborator.
func WithLogger(log Logger) Option {
	return func(n *Node) {
		if log != nil {
			n.log = log
		}
	}
}

// WithParams seeds the node's parameter bag, equivalent to calling SetParams.
func WithParams(params map[string]any) Option {
	return func(n *Node) { n.SetParams(params) }
}

// NewNode builds a single-execution node around impl.
func NewNode(name string, impl Lifecycle, opts ...Option) *Node {
	n := newNode(name, StrategySingle, opts)
	n.impl = impl
	return n
}

// NewBatchNode builds a node whose prepared sequence is executed one item at
// a time, in order, fail-fast.
func NewBatchNode(name string, impl ItemLifecycle, opts ...Option) *Node {
	n := newNode(name, StrategyBatch, opts)
	n.items = impl
	return n
}

// NewParallelBatchNode builds a node whose prepared sequence is executed with
// all items launched together and joined fail-fast.
func NewParallelBatchNode(name string, impl ItemLifecycle, opts ...Option) *Node {
	n := newNode(name, StrategyParallelBatch, opts)
	n.items = impl
	return n
}

func newNode(name string, strategy Strategy, opts []Option) *Node {
	n := &Node{
		name:       name,
		strategy:   strategy,
		retry:      RetryPolicy{MaxRetries: 1},
		successors: make(map[Action]*Node),
		log:        NopLogger{},
	}
	for _, opt := range opts {
		opt(n)
	}
	n.retry = n.retry.normalized()
	return n
}

// Name returns the node's identity as reported to the logger.
func (n *Node) Name() string { return n.name }

// Strategy returns the node's execution strategy tag.
func (n *Node) Strategy() Strategy { return n.strategy }

// Retry returns the node's retry policy.
func (n *Node) Retry() RetryPolicy { return n.retry }

// Params returns the node's parameter bag.
func (n *Node) Params() map[string]any { return n.params }

// SetParams replaces the parameter bag with a shallow copy of params. No
// validation is performed.
func (n *Node) SetParams(params map[string]any) {
	n.params = maps.Clone(params)
}

// Next registers next as the successor for the given action (DefaultAction
// when omitted) and returns next to allow chaining. Re-registering an action
// overwrites the prior edge; this succeeds but is logged as a warning.
func (n *Node) Next(next *Node, action ...Action) *Node {
	label := DefaultAction
	if len(action) > 0 {
		label = action[0]
	}
	if prev, exists := n.successors[label]; exists {
		n.log.Warn(n.name, "overwriting successor",
			"action", label.String(), "previous", prev.name, "next", next.name)
	}
	n.successors[label] = next
	return next
}

// Successor looks up the registered edge for action.
func (n *Node) Successor(action Action) (*Node, bool) {
	next, ok := n.successors[action]
	return next, ok
}

// actions lists the registered edge labels, for log detail.
func (n *Node) actions() []string {
	labels := make([]string, 0, len(n.successors))
	for a := range n.successors {
		labels = append(labels, a.String())
	}
	return labels
}

// Run executes the node's full lifecycle standalone. A node with successors
// is expected to be driven by a Flow, so running it directly logs a usage
// warning first.
func (n *Node) Run(ctx context.Context, shared SharedContext) (Action, error) {
	if len(n.successors) > 0 {
		n.log.Warn(n.name, "node has successors but was run directly, transitions will not be followed")
	}
	return n.run(ctx, shared)
}

// run is the driver-facing lifecycle: prep, exec under the retry policy and
// execution strategy, then post. Each phase completes fully before the next
// begins; any phase error aborts the run and propagates.
func (n *Node) run(ctx context.Context, shared SharedContext) (Action, error) {
	prepResult, err := n.prep(ctx, shared)
	if err != nil {
		return NoAction, &PhaseError{Node: n.name, Phase: PhasePrep, Err: err}
	}

	var execResult any
	switch n.strategy {
	case StrategySingle:
		execResult, err = n.retry.run(ctx, n.log, n.name, PhaseExec, prepResult, n.impl.Exec)
	case StrategyBatch:
		err = n.runBatch(ctx, prepResult)
	case StrategyParallelBatch:
		err = n.runParallelBatch(ctx, prepResult)
	}
	if err != nil {
		return NoAction, err
	}

	action, err := n.post(ctx, shared, prepResult, execResult)
	if err != nil {
		return NoAction, &PhaseError{Node: n.name, Phase: PhasePost, Err: err}
	}
	return action, nil
}

func (n *Node) prep(ctx context.Context, shared SharedContext) (any, error) {
	if n.impl != nil {
		return n.impl.Prep(ctx, shared)
	}
	return n.items.Prep(ctx, shared)
}

func (n *Node) post(ctx context.Context, shared SharedContext, prepResult, execResult any) (Action, error) {
	if n.impl != nil {
		return n.impl.Post(ctx, shared, prepResult, execResult)
	}
	return n.items.Post(ctx, shared, prepResult, execResult)
}
