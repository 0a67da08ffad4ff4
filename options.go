package jobtrace

import (
	"log/slog"

	"github.com/zoobzio/clockz"
	"go.opentelemetry.io/otel/metric"
)

// Defaults applied by [New] when the corresponding option is not given.
const (
	// DefaultTracePrefix is the leading segment of root span names.
	DefaultTracePrefix = "jobs"

	// DefaultMaxExportFrames bounds how many spans of a tree are handed to
	// the exporter.
	DefaultMaxExportFrames = 100
)

// config holds the resolved configuration for an Interceptor.
type config struct {
	prefix    string
	nameKeys  []string
	attrKeys  []string
	host      string
	sample    SampleFunc
	maxFrames int
	clock     clockz.Clock
	logger    *slog.Logger
	meter     metric.MeterProvider
}

func defaultConfig() config {
	return config{
		prefix:    DefaultTracePrefix,
		sample:    SampleAll,
		maxFrames: DefaultMaxExportFrames,
		clock:     clockz.RealClock,
	}
}

// Option configures an Interceptor.
type Option func(*config)

// WithTracePrefix sets the leading segment of root span names.
// Default: [DefaultTracePrefix].
func WithTracePrefix(prefix string) Option {
	return func(c *config) { c.prefix = prefix }
}

// WithNameKeys sets the descriptor keys whose values form the root span
// name, joined to the prefix in the given order. A key absent from a job's
// descriptor contributes an empty segment.
func WithNameKeys(keys ...string) Option {
	return func(c *config) { c.nameKeys = keys }
}

// WithSpanAttributeKeys sets the descriptor keys promoted to root span
// attributes. Keys absent from a job's descriptor are silently skipped.
func WithSpanAttributeKeys(keys ...string) Option {
	return func(c *config) { c.attrKeys = keys }
}

// WithHostAttribute sets the value of the root span's "host" attribute,
// identifying the service or machine processing jobs. Empty means no host
// attribute is set.
func WithHostAttribute(host string) Option {
	return func(c *config) { c.host = host }
}

// WithSampler sets the sampling gate. Default: [SampleAll].
func WithSampler(sample SampleFunc) Option {
	return func(c *config) {
		if sample != nil {
			c.sample = sample
		}
	}
}

// WithMaxExportFrames bounds the number of spans handed to the exporter per
// tree; deeper frames are truncated (see [SpanTree.Flatten]). Zero or
// negative means unbounded. Default: [DefaultMaxExportFrames].
func WithMaxExportFrames(n int) Option {
	return func(c *config) { c.maxFrames = n }
}

// WithClock sets the clock used for span timestamps. Enables clock
// injection for deterministic testing. Default: clockz.RealClock.
func WithClock(clock clockz.Clock) Option {
	return func(c *config) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger sets the logger used to surface secondary export failures.
// Default: [slog.Default].
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithMeterProvider enables interceptor self-metrics on the given provider.
// Without this option no instruments are created.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *config) { c.meter = mp }
}
