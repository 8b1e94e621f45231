package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Observability bundles the meter and tracer a binary uses. All methods are
// safe on a nil receiver, so tests can pass nil.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meter          otelmetric.Meter
	tracer         trace.Tracer

	jobCounter     otelmetric.Int64Counter
	jobDuration    otelmetric.Float64Histogram
	submissions    otelmetric.Int64Counter
	submitDuration otelmetric.Float64Histogram
	uploads        otelmetric.Int64Counter
}

// New wires the Prometheus exporter into the default registry, so it may be
// called once per process.
func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, err
	}
	return build(serviceName, metric.NewMeterProvider(metric.WithReader(exporter)), true), nil
}

// NewUnexported keeps metrics in process without registering an exporter.
func NewUnexported(serviceName string) *Observability {
	return build(serviceName, metric.NewMeterProvider(), false)
}

func build(serviceName string, provider *metric.MeterProvider, global bool) *Observability {
	tp := sdktrace.NewTracerProvider()
	if global {
		otel.SetMeterProvider(provider)
		otel.SetTracerProvider(tp)
	}

	meter := provider.Meter(serviceName)
	o := &Observability{
		meterProvider:  provider,
		tracerProvider: tp,
		meter:          meter,
		tracer:         tp.Tracer(serviceName),
	}

	o.jobCounter, _ = meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Number of jobs processed"),
	)
	o.jobDuration, _ = meter.Float64Histogram(
		"jobs.duration",
		otelmetric.WithDescription("Job processing duration"),
		otelmetric.WithUnit("ms"),
	)
	o.submissions, _ = meter.Int64Counter(
		"wizard.submissions",
		otelmetric.WithDescription("Loan application submissions by mode and outcome"),
	)
	o.submitDuration, _ = meter.Float64Histogram(
		"wizard.submit.duration",
		otelmetric.WithDescription("Time from confirmation to the last document upload"),
		otelmetric.WithUnit("ms"),
	)
	o.uploads, _ = meter.Int64Counter(
		"wizard.document.uploads",
		otelmetric.WithDescription("Document uploads by type and outcome"),
	)
	return o
}

// StartSpan starts a span, or returns ctx with a no-op span when o is nil.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if o == nil || o.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) RecordJobProcessed(ctx context.Context, taskType string) {
	if o != nil && o.jobCounter != nil {
		o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("task_type", taskType),
		))
	}
}

func (o *Observability) RecordJobDuration(ctx context.Context, duration time.Duration, taskType string) {
	if o != nil && o.jobDuration != nil {
		o.jobDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("task_type", taskType),
		))
	}
}

func (o *Observability) RecordSubmission(ctx context.Context, mode, outcome string, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("mode", mode),
		attribute.String("outcome", outcome),
	)
	if o.submissions != nil {
		o.submissions.Add(ctx, 1, attrs)
	}
	if o.submitDuration != nil {
		o.submitDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) RecordUpload(ctx context.Context, documentType, outcome string) {
	if o != nil && o.uploads != nil {
		o.uploads.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("document_type", documentType),
			attribute.String("outcome", outcome),
		))
	}
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var firstErr error
	if o.tracerProvider != nil {
		firstErr = o.tracerProvider.Shutdown(ctx)
	}
	if o.meterProvider != nil {
		if err := o.meterProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
