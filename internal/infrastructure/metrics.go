package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PipelineMetrics holds the application metrics. A nil *PipelineMetrics is
// valid and records nothing.
type PipelineMetrics struct {
	StepRuns      metric.Int64Counter
	StepDuration  metric.Float64Histogram
	RowsWritten   metric.Int64Counter
	RowsDropped   metric.Int64Counter
	UnknownLabels metric.Int64Counter
	APIRequests   metric.Int64Counter
	APIRetries    metric.Int64Counter
	HTTPRequests  metric.Int64Counter
	HTTPDuration  metric.Float64Histogram
}

// NewPipelineMetrics creates the instruments on meter
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	var (
		m   PipelineMetrics
		err error
	)

	if m.StepRuns, err = meter.Int64Counter("pipeline_step_runs_total",
		metric.WithDescription("Total number of pipeline step executions")); err != nil {
		return nil, err
	}
	if m.StepDuration, err = meter.Float64Histogram("pipeline_step_duration_seconds",
		metric.WithDescription("Pipeline step execution duration in seconds"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.RowsWritten, err = meter.Int64Counter("pipeline_rows_written_total",
		metric.WithDescription("Rows written to output files")); err != nil {
		return nil, err
	}
	if m.RowsDropped, err = meter.Int64Counter("corpus_rows_dropped_total",
		metric.WithDescription("Corpus rows removed by cleaning, by reason")); err != nil {
		return nil, err
	}
	if m.UnknownLabels, err = meter.Int64Counter("corpus_unknown_labels_total",
		metric.WithDescription("Raw sentiment values outside the source vocabulary")); err != nil {
		return nil, err
	}
	if m.APIRequests, err = meter.Int64Counter("acquisition_api_requests_total",
		metric.WithDescription("Requests sent to remote data providers")); err != nil {
		return nil, err
	}
	if m.APIRetries, err = meter.Int64Counter("acquisition_api_retries_total",
		metric.WithDescription("Retried requests to remote data providers")); err != nil {
		return nil, err
	}
	if m.HTTPRequests, err = meter.Int64Counter("http_requests_total",
		metric.WithDescription("Total number of HTTP requests")); err != nil {
		return nil, err
	}
	if m.HTTPDuration, err = meter.Float64Histogram("http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}

	return &m, nil
}

// RecordStep records one step execution
func (m *PipelineMetrics) RecordStep(ctx context.Context, step string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	attrs := metric.WithAttributes(
		attribute.String("step", step),
		attribute.String("status", status),
	)
	m.StepRuns.Add(ctx, 1, attrs)
	m.StepDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordRowsWritten adds n rows written by component
func (m *PipelineMetrics) RecordRowsWritten(ctx context.Context, component string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.RowsWritten.Add(ctx, int64(n), metric.WithAttributes(attribute.String("component", component)))
}

// RecordRowsDropped adds n rows removed from a corpus for reason
func (m *PipelineMetrics) RecordRowsDropped(ctx context.Context, corpus int, reason string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.RowsDropped.Add(ctx, int64(n), metric.WithAttributes(
		attribute.Int("corpus", corpus),
		attribute.String("reason", reason),
	))
}

// RecordUnknownLabels adds n out-of-vocabulary labels seen in a corpus
func (m *PipelineMetrics) RecordUnknownLabels(ctx context.Context, corpus int, n int) {
	if m == nil || n == 0 {
		return
	}
	m.UnknownLabels.Add(ctx, int64(n), metric.WithAttributes(attribute.Int("corpus", corpus)))
}

// RecordAPIRequest records one request to provider; retry marks a repeated attempt
func (m *PipelineMetrics) RecordAPIRequest(ctx context.Context, provider string, retry bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("provider", provider))
	m.APIRequests.Add(ctx, 1, attrs)
	if retry {
		m.APIRetries.Add(ctx, 1, attrs)
	}
}

// RecordHTTPRequest records one served HTTP request
func (m *PipelineMetrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	)
	m.HTTPRequests.Add(ctx, 1, attrs)
	m.HTTPDuration.Record(ctx, duration.Seconds(), attrs)
}
