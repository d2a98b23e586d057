package core

import (
	"errors"
	"fmt"
)

// Lifecycle phase names used in PhaseError and log detail.
const (
	PhasePrep     = "prep"
	PhaseExec     = "exec"
	PhaseExecItem = "exec_item"
	PhaseFallback = "fallback"
	PhasePost     = "post"
)

var (
	// ErrNoStartNode is returned by the flow builders when no start node is
	// supplied.
	ErrNoStartNode = errors.New("core: flow requires a start node")

	// ErrNoSharedContext is returned by the flow builders when no shared
	// context is supplied.
	ErrNoSharedContext = errors.New("core: flow requires a shared context")

	// ErrFlowTerminated is returned by Flow.Run on a driver that has already
	// terminated; call Reset to run it again.
	ErrFlowTerminated = errors.New("core: flow already terminated, call Reset before running again")

	// ErrNotSequence is returned when a batch node's Prep produces something
	// that is not a slice or array.
	ErrNotSequence = errors.New("core: batch prep result is not a sequence")
)

// PhaseError wraps an error raised inside a node's lifecycle with the node
// identity and the phase that failed.
type PhaseError struct {
	Node  string
	Phase string
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("node %q: %s phase failed: %v", e.Node, e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error { return e.Err }

// CapabilityError is returned by the flow builders when the start node's
// execution strategy does not match the requested flow flavor.
type CapabilityError struct {
	Node string
	Want Strategy
	Got  Strategy
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("core: flow flavor %s requires a %s start node, node %q is %s",
		e.Want, e.Want, e.Node, e.Got)
}
