package core

import (
	"context"
	"maps"
)

// Flow walks the transition graph from a start node until termination. It
// executes nodes one at a time; the only concurrency in a flow run happens
// inside a parallel-batch node's own Exec phase.
type Flow struct {
	start   *Node
	current *Node
	shared  SharedContext
	log     Logger
}

// Current returns the node the driver is positioned at: the start node while
// idle, the executing node while running, nil once terminated.
func (f *Flow) Current() *Node { return f.current }

// Shared returns the flow's shared context.
func (f *Flow) Shared() SharedContext { return f.shared }

// Reset returns a terminated (or mid-flight) driver to its idle state at the
// start node, without re-running anything.
func (f *Flow) Reset() { f.current = f.start }

// Run steps the driver from its current node until a node returns NoAction
// (normal termination), returns an action with no registered edge (graceful
// no-successor termination, logged at error level), or fails. On every
// termination path the current node is cleared; call Reset to run again.
//
// Node failures propagate to the caller unchanged: the driver performs no
// retry or recovery of its own, all resilience is node-local.
func (f *Flow) Run(ctx context.Context) error {
	if f.current == nil {
		return ErrFlowTerminated
	}

	for f.current != nil {
		node := f.current
		f.log.Progress(node.name, "node starting", "strategy", node.strategy.String())

		action, err := node.run(ctx, f.shared)
		if err != nil {
			f.current = nil
			f.log.Error(node.name, "node failed",
				"params", node.params, "context", maps.Clone(f.shared), "error", err)
			return err
		}
		f.log.Success(node.name, "node completed", "action", action.String())

		if action == NoAction {
			f.current = nil
			return nil
		}
		next, ok := node.Successor(action)
		if !ok {
			f.log.Error(node.name, "no successor for action, flow stopping",
				"action", action.String(), "registered", node.actions())
			f.current = nil
			return nil
		}
		f.current = next
	}
	return nil
}
