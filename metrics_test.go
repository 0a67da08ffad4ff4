package jobtrace_test

import (
	"context"
	"errors"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/queueworks/jobtrace"
	"github.com/queueworks/jobtrace/jobtracetest"
)

func TestMetricsSampledAndDuration(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	ic, err := jobtrace.New(jobtracetest.NewInMemoryExporter(),
		jobtrace.WithMeterProvider(mp),
	)
	if err != nil {
		t.Fatal(err)
	}

	err = ic.Handle(context.Background(), jobtrace.Descriptor{"class": "MailerJob"},
		func(ctx context.Context, d jobtrace.Descriptor) error { return nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	metrics := collectMetrics(t, reader)
	assertMetricExists(t, metrics, "jobtrace.jobs.sampled")
	assertMetricExists(t, metrics, "jobtrace.job.duration")
}

func TestMetricsBypassed(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	ic, err := jobtrace.New(jobtracetest.NewInMemoryExporter(),
		jobtrace.WithMeterProvider(mp),
		jobtrace.WithSampler(func(jobtrace.Descriptor) bool { return false }),
	)
	if err != nil {
		t.Fatal(err)
	}

	err = ic.Handle(context.Background(), jobtrace.Descriptor{},
		func(ctx context.Context, d jobtrace.Descriptor) error { return nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	metrics := collectMetrics(t, reader)
	assertMetricExists(t, metrics, "jobtrace.jobs.bypassed")
}

func TestMetricsExportFailure(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	ic, err := jobtrace.New(&jobtracetest.FailingExporter{},
		jobtrace.WithMeterProvider(mp),
	)
	if err != nil {
		t.Fatal(err)
	}

	got := ic.Handle(context.Background(), jobtrace.Descriptor{},
		func(ctx context.Context, d jobtrace.Descriptor) error { return nil })
	var expErr *jobtrace.ExportError
	if !errors.As(got, &expErr) {
		t.Fatalf("expected *ExportError, got %v", got)
	}

	metrics := collectMetrics(t, reader)
	assertMetricExists(t, metrics, "jobtrace.export.failures")
}

func TestMetricsDisabledWithoutProvider(t *testing.T) {
	// No WithMeterProvider: Handle must work with no instruments at all.
	ic, err := jobtrace.New(jobtracetest.NewInMemoryExporter())
	if err != nil {
		t.Fatal(err)
	}
	err = ic.Handle(context.Background(), jobtrace.Descriptor{},
		func(ctx context.Context, d jobtrace.Descriptor) error { return nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- helpers ---

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect metrics: %v", err)
	}
	result := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			result[m.Name] = m
		}
	}
	return result
}

func assertMetricExists(t *testing.T, metrics map[string]metricdata.Metrics, name string) {
	t.Helper()
	if _, ok := metrics[name]; !ok {
		t.Errorf("metric %q not found in collected metrics", name)
	}
}
