package jobtrace

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/queueworks/jobtrace"

// interceptorMetrics records interceptor self-metrics. A nil receiver is a
// no-op, so the interceptor can call these unconditionally.
//
// Recorded instruments:
//   - jobtrace.jobs.sampled (counter): traced job executions
//   - jobtrace.jobs.bypassed (counter): executions the sampling gate skipped
//   - jobtrace.export.failures (counter): failed export hand-offs
//   - jobtrace.job.duration (histogram, milliseconds): traced job duration
type interceptorMetrics struct {
	sampled        metric.Int64Counter
	bypassed       metric.Int64Counter
	exportFailures metric.Int64Counter
	duration       metric.Float64Histogram
}

func newInterceptorMetrics(mp metric.MeterProvider) *interceptorMetrics {
	meter := mp.Meter(instrumentationName)

	sampled, _ := meter.Int64Counter("jobtrace.jobs.sampled",
		metric.WithDescription("Number of job executions that were traced"),
	)
	bypassed, _ := meter.Int64Counter("jobtrace.jobs.bypassed",
		metric.WithDescription("Number of job executions the sampling gate bypassed"),
	)
	exportFailures, _ := meter.Int64Counter("jobtrace.export.failures",
		metric.WithDescription("Number of span tree exports that failed"),
	)
	duration, _ := meter.Float64Histogram("jobtrace.job.duration",
		metric.WithDescription("Traced job execution duration in milliseconds"),
		metric.WithUnit("ms"),
	)

	return &interceptorMetrics{
		sampled:        sampled,
		bypassed:       bypassed,
		exportFailures: exportFailures,
		duration:       duration,
	}
}

func (m *interceptorMetrics) recordBypassed(ctx context.Context) {
	if m == nil {
		return
	}
	m.bypassed.Add(ctx, 1)
}

func (m *interceptorMetrics) recordSampled(ctx context.Context, d time.Duration, failed bool) {
	if m == nil {
		return
	}
	m.sampled.Add(ctx, 1, metric.WithAttributes(failedAttr(failed)))
	m.duration.Record(ctx, float64(d.Microseconds())/1000.0)
}

func (m *interceptorMetrics) recordExportFailure(ctx context.Context) {
	if m == nil {
		return
	}
	m.exportFailures.Add(ctx, 1)
}

func failedAttr(failed bool) attribute.KeyValue {
	return attribute.Bool("job.failed", failed)
}
