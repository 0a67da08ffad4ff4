package jobtrace

import (
	"context"
	"log/slog"

	"github.com/zoobzio/clockz"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Interceptor wraps job execution in a root span and guarantees the
// finished span tree is exported exactly once per traced job. Construct
// one per worker process with [New] and install [Interceptor.Handle] as
// middleware around the handler chain.
//
// An Interceptor is safe for concurrent use: each Handle call builds its
// own TraceContext, and the current span travels in the call's context, so
// concurrent jobs never touch each other's trees.
type Interceptor struct {
	builder jobSpanBuilder
	sample  SampleFunc
	sched   exportScheduler
	clock   clockz.Clock
	logger  *slog.Logger
	metrics *interceptorMetrics
}

// New returns an Interceptor that hands finished span trees to exporter.
func New(exporter Exporter, opts ...Option) (*Interceptor, error) {
	if exporter == nil {
		return nil, ErrNilExporter
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}
	ic := &Interceptor{
		builder: jobSpanBuilder{
			prefix:   cfg.prefix,
			nameKeys: cfg.nameKeys,
			attrKeys: cfg.attrKeys,
			host:     cfg.host,
		},
		sample: cfg.sample,
		sched:  exportScheduler{exporter: exporter, maxFrames: cfg.maxFrames},
		clock:  cfg.clock,
		logger: logger,
	}
	if cfg.meter != nil {
		ic.metrics = newInterceptorMetrics(cfg.meter)
	}
	return ic, nil
}

// Middleware returns Handle in [MiddlewareFunc] form for use with [Chain].
func (i *Interceptor) Middleware() MiddlewareFunc {
	return i.Handle
}

// Handle runs next under a traced scope and exports the resulting span
// tree once next has exited, by any path.
//
// If the sampling gate rejects the job, next runs directly: no span, no
// TraceContext, no export call. Otherwise a root scope is opened, the root
// span is named and decorated from the descriptor, and next executes with
// that scope current in ctx so nested [StartSpan] calls attach children.
//
// The error next returns is the authoritative outcome of Handle and is
// never altered, suppressed, or wrapped by the export step. An exporter
// failure is returned (as *[ExportError]) only when next itself succeeded;
// when both fail, the job's error wins and the export failure is logged.
// A panic in next still triggers the export before it continues unwinding.
func (i *Interceptor) Handle(ctx context.Context, d Descriptor, next HandlerFunc) (err error) {
	if !i.sample(d) {
		i.metrics.recordBypassed(ctx)
		return next(ctx, d)
	}

	tc := newTraceContext(i.clock)
	root := tc.openRoot(i.builder.spanName(d), trace.SpanKindServer)
	i.builder.configureRoot(root, d)

	start := i.clock.Now()
	var jobErr error
	completed := false

	defer func() {
		if !completed {
			// Unwinding from a panic: the job never reported an outcome.
			root.SetStatus(codes.Error, "job terminated abnormally")
		}
		// A cancellation that aborted the job must not also abort the
		// export recording it, so the hand-off gets a non-cancelable
		// context.
		expErr := i.sched.exportOnCompletion(context.WithoutCancel(ctx), tc)
		i.metrics.recordSampled(ctx, i.clock.Now().Sub(start), jobErr != nil || !completed)

		if expErr == nil {
			return
		}
		i.metrics.recordExportFailure(ctx)
		if jobErr == nil && completed {
			err = expErr
			return
		}
		// The job's own failure is primary; the dropped trace is an
		// observability concern, surfaced here instead of replacing it.
		i.logger.LogAttrs(ctx, slog.LevelError, "span export failed",
			slog.String("span.name", root.Name()),
			slog.String("trace.id", root.TraceID().String()),
			slog.String("error", expErr.Error()),
		)
	}()

	jobErr = next(contextWithScope(ctx, tc, root), d)
	completed = true

	if jobErr != nil {
		root.SetStatus(codes.Error, jobErr.Error())
	} else {
		root.SetStatus(codes.Ok, "")
	}
	return jobErr
}
