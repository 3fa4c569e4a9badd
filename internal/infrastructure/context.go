package infrastructure

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// GenerateTraceID returns a random run or request id
func GenerateTraceID() string {
	return uuid.NewString()
}

// EnsureTraceID returns ctx if it already carries a trace ID, otherwise a
// child context with a fresh one
func EnsureTraceID(ctx context.Context) context.Context {
	if GetTraceID(ctx) != "" {
		return ctx
	}
	return WithTraceID(ctx, GenerateTraceID())
}

// WithComponent tags logger with the package-level component name
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With(slog.String("component", component))
}

// WithStep tags logger with a pipeline step id
func WithStep(logger *slog.Logger, stepID string) *slog.Logger {
	return logger.With(slog.String("step", stepID))
}

// WithCorpus tags logger with a corpus number and its raw file
func WithCorpus(logger *slog.Logger, id int, file string) *slog.Logger {
	return logger.With(slog.Int("corpus", id), slog.String("source", file))
}

// WithError adds err to logger; a nil err leaves it unchanged
func WithError(logger *slog.Logger, err error) *slog.Logger {
	if err == nil {
		return logger
	}
	return logger.With(slog.String("error", err.Error()))
}
