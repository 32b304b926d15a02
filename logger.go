package compositor

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler drops every record. Enabled is false so callers skip building
// the record at all.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the package default logger. Accessed atomically so that
// SetLogger can be called concurrently with compositor construction.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := newNopLogger()
	loggerPtr.Store(l)
}

// SetLogger configures the default logger for compositors created after the
// call and for the renderer backends they select. By default nothing is
// logged. A single compositor can override it with WithLogger.
//
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used:
//   - [slog.LevelDebug]: per-cycle dispatch decisions (custom or built-in path),
//     lookups of capabilities nobody registered
//   - [slog.LevelInfo]: lifecycle events (backend selected, capability registered)
//   - [slog.LevelWarn]: non-fatal issues (incompatible capability lookups, paint errors)
//   - [slog.LevelError]: duplicate capability registration
//
// Example:
//
//	compositor.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the package default logger.
// Sub-packages (renderer/, backend/) call this to share the same logger
// configuration without introducing import cycles.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// Logger returns the logger of this compositor instance.
func (c *Compositor) Logger() *slog.Logger {
	return c.logger
}
