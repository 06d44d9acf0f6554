// Package log builds the structured loggers used across easbuild and carries
// them through context.Context.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
)

// Options configures a logger.
type Options struct {
	// Debug lowers the level to debug and adds caller information.
	Debug bool
	// Writer receives log output. Defaults to os.Stderr.
	Writer io.Writer
}

// NewHandler returns a slog handler that renders through charmbracelet/log.
func NewHandler(name string, opts Options) slog.Handler {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	level := log.InfoLevel
	if opts.Debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: opts.Debug,
		ReportCaller:    opts.Debug,
		Prefix:          name,
		Level:           level,
	})
}

// New returns a named logger.
func New(name string, opts Options) *slog.Logger {
	return slog.New(NewHandler(name, opts))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type ctxKey struct{}

// IntoContext adds a logger to a context. Use FromContext to pull it out.
func IntoContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored in ctx, or slog.Default() when there is none.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
			return l
		}
	}
	return slog.Default()
}
