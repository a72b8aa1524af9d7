package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const apiScopeName = "github.com/steveyegge/linear-cli/api"

// APIInstruments records a span per GraphQL operation and counts requests,
// retries and failures in linear.api.* metrics. With the no-op providers
// installed by a disabled Init every call is free.
type APIInstruments struct {
	tracer   trace.Tracer
	requests metric.Int64Counter
	retries  metric.Int64Counter
	errs     metric.Int64Counter
	dur      metric.Float64Histogram
}

// NewAPIInstruments binds instruments to the current global providers.
func NewAPIInstruments() *APIInstruments {
	m := Meter(apiScopeName)
	requests, _ := m.Int64Counter("linear.api.requests",
		metric.WithDescription("HTTP requests sent to the Linear API"),
	)
	retries, _ := m.Int64Counter("linear.api.retries",
		metric.WithDescription("Retries scheduled after a retryable failure"),
	)
	errs, _ := m.Int64Counter("linear.api.errors",
		metric.WithDescription("Operations that ended in an error"),
	)
	dur, _ := m.Float64Histogram("linear.api.operation.duration",
		metric.WithDescription("Operation duration including retries, in milliseconds"),
		metric.WithUnit("ms"),
	)
	return &APIInstruments{
		tracer:   Tracer(apiScopeName),
		requests: requests,
		retries:  retries,
		errs:     errs,
		dur:      dur,
	}
}

// Start opens the span for one logical operation.
func (a *APIInstruments) Start(ctx context.Context, operation string) (context.Context, trace.Span, time.Time) {
	ctx, span := a.tracer.Start(ctx, "linear."+operation,
		trace.WithAttributes(attribute.String("graphql.operation.name", operation)),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	return ctx, span, time.Now()
}

// Request counts one HTTP exchange. status is 0 for connection failures.
func (a *APIInstruments) Request(ctx context.Context, operation string, attempt, status int) {
	attrs := metric.WithAttributes(
		attribute.String("graphql.operation.name", operation),
		attribute.Int("http.response.status_code", status),
	)
	a.requests.Add(ctx, 1, attrs)
	trace.SpanFromContext(ctx).AddEvent("request", trace.WithAttributes(
		attribute.Int("attempt", attempt),
		attribute.Int("http.response.status_code", status),
	))
}

// Retry counts a scheduled retry for the given error kind.
func (a *APIInstruments) Retry(ctx context.Context, operation, kind string, delay time.Duration) {
	a.retries.Add(ctx, 1, metric.WithAttributes(
		attribute.String("graphql.operation.name", operation),
		attribute.String("error.kind", kind),
	))
	trace.SpanFromContext(ctx).AddEvent("retry", trace.WithAttributes(
		attribute.String("error.kind", kind),
		attribute.Int64("delay_ms", delay.Milliseconds()),
	))
}

// End ends the span, records duration and optional error.
func (a *APIInstruments) End(ctx context.Context, span trace.Span, start time.Time, operation string, err error) {
	attrs := metric.WithAttributes(attribute.String("graphql.operation.name", operation))
	a.dur.Record(ctx, float64(time.Since(start).Milliseconds()), attrs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		a.errs.Add(ctx, 1, attrs)
	}
	span.End()
}
