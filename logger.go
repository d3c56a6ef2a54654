package ink

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/ink/internal/gpu"
	"github.com/gogpu/ink/surface"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for ink and its sub-packages.
// By default ink produces no log output. Pass nil to restore silence.
//
// Log levels used by ink:
//   - [slog.LevelDebug]: commits, frames, deferred outline builds
//   - [slog.LevelInfo]: lifecycle events (engine opened, GPU compositor ready)
//   - [slog.LevelWarn]: dropped glitch samples, GPU fallback, surface loss
//
// Example:
//
//	ink.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	surface.SetLogger(l)
	gpu.SetLogger(l)
}

// Logger returns the current logger used by ink.
// It is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
