// Package jobtrace wraps background-job execution in a distributed-tracing
// root span and exports the completed span tree once the job finishes,
// regardless of outcome.
//
// The package has one primary component:
//
//   - [Interceptor]: composes a sampling gate, a job-derived root span, and a
//     guaranteed exactly-once export into a single [MiddlewareFunc] that a job
//     runner places around its handler chain.
//
// # Quick Start
//
// Wrap a handler:
//
//	ic, err := jobtrace.New(exporter,
//	    jobtrace.WithTracePrefix("jobs"),
//	    jobtrace.WithNameKeys("queue", "class"),
//	    jobtrace.WithSpanAttributeKeys("queue", "class", "job_id"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = ic.Handle(ctx, descriptor, func(ctx context.Context, d jobtrace.Descriptor) error {
//	    // process the job; nested instrumentation attaches child spans:
//	    ctx, span := jobtrace.StartSpan(ctx, "render")
//	    defer span.End()
//	    return render(ctx)
//	})
//
// The exporter receives the finalized tree exactly once per traced job, on
// both the success and failure paths. Jobs the sampling gate rejects run with
// no tracing state at all.
//
// Exporters are pluggable through the [Exporter] interface. The otelexport
// subpackage bridges trees into any OpenTelemetry SDK span exporter, and the
// jobtracetest subpackage provides an in-memory exporter for tests.
package jobtrace
