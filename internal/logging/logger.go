// Package logging provides the structured logger used across the service.
// It is a thin, context-aware wrapper over log/slog so call sites stay
// decoupled from the concrete handler configuration.
package logging

import (
	"context"
	"log/slog"
	"os"
)

// Logger is a context-aware structured logger. The variadic args are
// alternating key-value pairs, as in slog:
//
//	log.Info(ctx, "incident reported", "incidentId", id)
type Logger interface {
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always carries the given pairs.
	With(args ...any) Logger
}

type slogLogger struct {
	l *slog.Logger
}

// New returns a JSON logger writing to stdout, scoped to the named component.
func New(component string) Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	return &slogLogger{l: slog.New(h).With("component", component)}
}

// Wrap adapts an existing slog.Logger.
func Wrap(l *slog.Logger) Logger {
	return &slogLogger{l: l}
}

func (s *slogLogger) Info(ctx context.Context, msg string, args ...any) {
	s.l.InfoContext(ctx, msg, args...)
}

func (s *slogLogger) Warn(ctx context.Context, msg string, args ...any) {
	s.l.WarnContext(ctx, msg, args...)
}

func (s *slogLogger) Error(ctx context.Context, msg string, args ...any) {
	s.l.ErrorContext(ctx, msg, args...)
}

func (s *slogLogger) With(args ...any) Logger {
	return &slogLogger{l: s.l.With(args...)}
}
