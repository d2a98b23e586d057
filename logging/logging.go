// Package logging builds the service's zap logger and adapts it to the flow
// engine's injected Logger interface.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger. Level is one of debug|info|warn|error; format is
// "json" or "console".
func New(level, format string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// FlowLogger adapts a zap logger to the engine's Logger interface. Progress
// and success reports map to info level with an event marker, the rest map
// one to one.
type FlowLogger struct {
	log *zap.SugaredLogger
}

// NewFlowLogger wraps the zap logger for the engine.
func NewFlowLogger(log *zap.Logger) *FlowLogger {
	return &FlowLogger{log: log.Sugar()}
}

func (f *FlowLogger) Debug(node, msg string, kv ...any) {
	f.log.Debugw(msg, append([]any{"node", node}, kv...)...)
}

func (f *FlowLogger) Info(node, msg string, kv ...any) {
	f.log.Infow(msg, append([]any{"node", node}, kv...)...)
}

func (f *FlowLogger) Warn(node, msg string, kv ...any) {
	f.log.Warnw(msg, append([]any{"node", node}, kv...)...)
}

func (f *FlowLogger) Error(node, msg string, kv ...any) {
	f.log.Errorw(msg, append([]any{"node", node}, kv...)...)
}

func (f *FlowLogger) Progress(node, msg string, kv ...any) {
	f.log.Infow(msg, append([]any{"node", node, "event", "progress"}, kv...)...)
}

func (f *FlowLogger) Success(node, msg string, kv ...any) {
	f.log.Infow(msg, append([]any{"node", node, "event", "success"}, kv...)...)
}
