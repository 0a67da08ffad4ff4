// Package otelexport bridges jobtrace span trees into the OpenTelemetry
// SDK's exporter ecosystem.
//
// [Exporter] converts a finalized tree into ReadOnlySpan snapshots and
// forwards them to any [sdktrace.SpanExporter] — OTLP, Zipkin, stdout, or
// an in-memory exporter in tests:
//
//	otlp, _ := otlptracehttp.New(ctx)
//	ic, _ := jobtrace.New(otelexport.New(otlp))
package otelexport

import (
	"context"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/queueworks/jobtrace"
)

// Exporter forwards jobtrace span trees to an OpenTelemetry span exporter.
type Exporter struct {
	dest sdktrace.SpanExporter
}

// New returns an Exporter that forwards trees to dest.
func New(dest sdktrace.SpanExporter) *Exporter {
	return &Exporter{dest: dest}
}

// Export implements [jobtrace.Exporter]. The tree is flattened in
// pre-order, truncated to maxFrames spans, converted to ReadOnlySpan
// snapshots, and handed to the destination exporter in one batch.
func (e *Exporter) Export(ctx context.Context, tree *jobtrace.SpanTree, maxFrames int) error {
	spans := tree.Flatten(maxFrames)
	snapshots := make([]sdktrace.ReadOnlySpan, 0, len(spans))
	for _, s := range spans {
		snapshots = append(snapshots, snapshot(s))
	}
	return e.dest.ExportSpans(ctx, snapshots)
}

// Shutdown shuts down the destination exporter.
func (e *Exporter) Shutdown(ctx context.Context) error {
	return e.dest.Shutdown(ctx)
}

func snapshot(s *jobtrace.Span) sdktrace.ReadOnlySpan {
	stub := tracetest.SpanStub{
		Name:           s.Name(),
		SpanContext:    spanContext(s),
		SpanKind:       s.Kind(),
		StartTime:      s.StartTime(),
		EndTime:        s.EndTime(),
		Attributes:     s.Attributes(),
		ChildSpanCount: len(s.Children()),
		Status: sdktrace.Status{
			Code:        s.StatusCode(),
			Description: s.StatusMessage(),
		},
	}
	if p := s.Parent(); p != nil {
		stub.Parent = spanContext(p)
	}
	return stub.Snapshot()
}

func spanContext(s *jobtrace.Span) trace.SpanContext {
	return trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    s.TraceID(),
		SpanID:     s.SpanID(),
		TraceFlags: trace.FlagsSampled,
	})
}
