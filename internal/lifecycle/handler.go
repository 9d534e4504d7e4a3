// Package lifecycle provides the wrapper used around CLI command execution.
// It captures the start time, runs the command, and reports the outcome and
// duration to a handler.
//
// The package is intentionally minimal: no event bus, no goroutines.
package lifecycle

import (
	"time"

	"go.uber.org/zap"
)

// Handler receives command completions.
type Handler interface {
	// OnCommandComplete is called when a CLI command finishes execution.
	// Parameters:
	//   - name: the command name (e.g., "release v1.2.0", "config show")
	//   - success: true if command completed without error
	//   - duration: how long the command took to execute
	OnCommandComplete(name string, success bool, duration time.Duration)
}

// Run executes fn and reports its outcome to h. A nil handler only runs fn.
// fn's error is returned unchanged.
func Run(h Handler, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	if h != nil {
		h.OnCommandComplete(name, err == nil, time.Since(start))
	}
	return err
}

// LogHandler reports completions to a zap logger at info level. The error
// itself is reported by the caller.
type LogHandler struct {
	Logger *zap.Logger
}

// OnCommandComplete logs the completion.
func (l LogHandler) OnCommandComplete(name string, success bool, duration time.Duration) {
	if l.Logger == nil {
		return
	}
	l.Logger.Info("command complete",
		zap.String("command", name),
		zap.Bool("success", success),
		zap.Duration("duration", duration))
}
