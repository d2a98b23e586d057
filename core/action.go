package core

// SharedContext is the mutable state passed by reference to every node in one
// flow run. Nodes read it in Prep and write it back in Post; the engine does
// no locking of its own.
type SharedContext = map[string]any

// Action is the edge label returned by a node's Post phase. The flow driver
// looks the action up in the node's successor map to pick the next node.
type Action string

const (
	// DefaultAction is the reserved edge label used when Next is called
	// without an explicit action. The leading NUL byte keeps it out of the
	// space of caller-chosen labels.
	DefaultAction Action = "\x00default"

	// NoAction means "no transition": a node returning it terminates the
	// flow normally.
	NoAction Action = ""
)

// String renders the action for logs, mapping the reserved values to
// readable names.
func (a Action) String() string {
	switch a {
	case DefaultAction:
		return "default"
	case NoAction:
		return "none"
	default:
		return string(a)
	}
}
