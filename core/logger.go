package core

// Logger is the engine's injected logging collaborator. Every method takes
// the identity of the node being reported on, a message, and optional
// key/value detail pairs. The engine never constructs a logger of its own;
// callers pass one at node and flow construction, and the zero value of every
// constructor defaults to NopLogger.
type Logger interface {
	Debug(node, msg string, kv ...any)
	Info(node, msg string, kv ...any)
	Warn(node, msg string, kv ...any)
	Error(node, msg string, kv ...any)

	// Progress reports that a node has started its lifecycle.
	Progress(node, msg string, kv ...any)
	// Success reports that a node's lifecycle completed without error.
	Success(node, msg string, kv ...any)
}

// NopLogger discards everything. It is the default for nodes and flows built
// without an explicit logger.
type NopLogger struct{}

func (NopLogger) Debug(string, string, ...any)    {}
func (NopLogger) Info(string, string, ...any)     {}
func (NopLogger) Warn(string, string, ...any)     {}
func (NopLogger) Error(string, string, ...any)    {}
func (NopLogger) Progress(string, string, ...any) {}
func (NopLogger) Success(string, string, ...any)  {}
