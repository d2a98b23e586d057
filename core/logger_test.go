package core

import "sync"

// capturedEntry is one call into the capture logger.
type capturedEntry struct {
	level string
	node  string
	msg   string
	kv    []any
}

// captureLogger records every call so tests can assert on the engine's log
// points. Safe for concurrent use by parallel-batch items.
type captureLogger struct {
	mu      sync.Mutex
	entries []capturedEntry
}

func (c *captureLogger) record(level, node, msg string, kv []any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, capturedEntry{level: level, node: node, msg: msg, kv: kv})
}

func (c *captureLogger) Debug(node, msg string, kv ...any)    { c.record("debug", node, msg, kv) }
func (c *captureLogger) Info(node, msg string, kv ...any)     { c.record("info", node, msg, kv) }
func (c *captureLogger) Warn(node, msg string, kv ...any)     { c.record("warn", node, msg, kv) }
func (c *captureLogger) Error(node, msg string, kv ...any)    { c.record("error", node, msg, kv) }
func (c *captureLogger) Progress(node, msg string, kv ...any) { c.record("progress", node, msg, kv) }
func (c *captureLogger) Success(node, msg string, kv ...any)  { c.record("success", node, msg, kv) }

func (c *captureLogger) byLevel(level string) []capturedEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []capturedEntry
	for _, e := range c.entries {
		if e.level == level {
			out = append(out, e)
		}
	}
	return out
}
