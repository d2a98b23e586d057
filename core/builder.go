package core

// FlowOption configures a flow at construction.
type FlowOption func(*Flow)

// WithFlowLogger injects the driver's logging collaborator.
func WithFlowLogger(log Logger) FlowOption {
	return func(f *Flow) {
		if log != nil {
			f.log = log
		}
	}
}

// NewFlow assembles a driver for a graph of single-execution nodes. Retry
// capability is carried by the node's policy, so retry-protected nodes use
// this flavor too.
func NewFlow(start *Node, shared SharedContext, opts ...FlowOption) (*Flow, error) {
	return build(start, shared, StrategySingle, opts)
}

// NewBatchFlow assembles a driver whose start node executes its prepared
// sequence one item at a time.
func NewBatchFlow(start *Node, shared SharedContext, opts ...FlowOption) (*Flow, error) {
	return build(start, shared, StrategyBatch, opts)
}

// NewParallelBatchFlow assembles a driver whose start node fans its prepared
// sequence out concurrently.
func NewParallelBatchFlow(start *Node, shared SharedContext, opts ...FlowOption) (*Flow, error) {
	return build(start, shared, StrategyParallelBatch, opts)
}

// build validates the start node and shared context and checks that the
// start node's declared capability matches the requested flavor; a mismatch
// is a configuration error raised before any node executes.
func build(start *Node, shared SharedContext, flavor Strategy, opts []FlowOption) (*Flow, error) {
	if start == nil {
		return nil, ErrNoStartNode
	}
	if shared == nil {
		return nil, ErrNoSharedContext
	}
	if start.strategy != flavor {
		return nil, &CapabilityError{Node: start.name, Want: flavor, Got: start.strategy}
	}
	f := &Flow{
		start:   start,
		current: start,
		shared:  shared,
		log:     NopLogger{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}
