package app

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"stocksentiment/internal/infrastructure"
	"stocksentiment/internal/operations"
)

// Execute runs req synchronously under a fresh run ID, which also becomes
// the trace ID of every log record, and logs one line per step
func (rt *Runtime) Execute(ctx context.Context, req operations.OperationRequest) (*operations.OperationResponse, error) {
	if req.ID == "" {
		req.ID = infrastructure.GenerateTraceID()
	}
	ctx = infrastructure.WithTraceID(ctx, req.ID)

	resp, err := rt.Manager.Execute(ctx, req)
	if resp != nil {
		for _, id := range resp.Order {
			step := resp.Steps[id]
			rt.Logger.InfoContext(ctx, "Step result",
				slog.String("step", id),
				slog.String("status", string(step.Status)),
				slog.String("error", step.Error),
				slog.Any("metadata", step.Metadata))
		}
	}
	return resp, err
}

// SplitList splits a comma separated flag value, dropping blanks
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseCorpusIDs parses a comma separated list of corpus ids. An empty value
// selects every corpus.
func ParseCorpusIDs(s string) ([]int, error) {
	parts := SplitList(s)
	ids := make([]int, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.Atoi(part)
		if err != nil || id < 1 {
			return nil, fmt.Errorf("invalid corpus id %q", part)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return ids, nil
}
