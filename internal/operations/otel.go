package operations

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"stocksentiment/internal/infrastructure"
)

// TracerName is the instrumentation scope of operation spans
const TracerName = "stocksentiment.operation"

// OperationTracer provides OpenTelemetry instrumentation for operations
type OperationTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewOperationTracer creates a tracer that records step metrics on m. A nil
// m records spans only.
func NewOperationTracer(m *infrastructure.PipelineMetrics) *OperationTracer {
	return &OperationTracer{
		tracer:  otel.Tracer(TracerName),
		metrics: m,
	}
}

// TraceOperation creates a span for the entire operation
func (t *OperationTracer) TraceOperation(ctx context.Context, operationID string, steps []string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "operation.execute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
			attribute.StringSlice("operation.steps", steps),
		),
	)
}

// TraceStep creates a span for one step
func (t *OperationTracer) TraceStep(ctx context.Context, operationID, stepID string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "operation.step."+stepID,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
			attribute.String("step.id", stepID),
		),
	)
}

// RecordStepCompletion ends the step span and records its metrics
func (t *OperationTracer) RecordStepCompletion(ctx context.Context, span trace.Span, stepID string, duration time.Duration, err error) {
	span.SetAttributes(attribute.Float64("step.duration_seconds", duration.Seconds()))
	if err != nil {
		infrastructure.RecordError(ctx, err)
	} else {
		span.SetStatus(codes.Ok, "step completed")
	}
	t.metrics.RecordStep(ctx, stepID, duration, err)
	span.End()
}

// RecordOperationCompletion ends the operation span
func (t *OperationTracer) RecordOperationCompletion(ctx context.Context, span trace.Span, status OperationStatusValue, err error) {
	span.SetAttributes(attribute.String("operation.status", string(status)))
	if err != nil {
		infrastructure.RecordError(ctx, err)
	} else {
		span.SetStatus(codes.Ok, "operation completed")
	}
	span.End()
}
