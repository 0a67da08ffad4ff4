package jobtrace

import "context"

// Exporter ships a finalized span tree to a telemetry backend. The tree is
// handed over with every span closed; the exporter may retain or discard
// it freely. maxFrames bounds how many spans the exporter should emit
// (see [SpanTree.Flatten] for the truncation rule); zero or negative means
// unbounded.
//
// Export may be called from many goroutines concurrently, one call per
// traced job. An implementation that buffers or batches asynchronously is
// fine; the interceptor only requires that the hand-off call itself
// returns.
type Exporter interface {
	Export(ctx context.Context, tree *SpanTree, maxFrames int) error
}

// ExporterFunc adapts a function to the [Exporter] interface.
type ExporterFunc func(ctx context.Context, tree *SpanTree, maxFrames int) error

// Export calls f.
func (f ExporterFunc) Export(ctx context.Context, tree *SpanTree, maxFrames int) error {
	return f(ctx, tree, maxFrames)
}

// exportScheduler guarantees a trace context's tree is handed to the
// exporter exactly once, no matter how many exit paths race to trigger it.
type exportScheduler struct {
	exporter  Exporter
	maxFrames int
}

// exportOnCompletion finalizes and exports the tree. Only the first call
// per TraceContext performs the export; every call observes the same
// result. An exporter failure is wrapped in *ExportError.
func (s exportScheduler) exportOnCompletion(ctx context.Context, tc *TraceContext) error {
	tc.exportOnce.Do(func() {
		tc.tree.endAll()
		if err := s.exporter.Export(ctx, tc.tree, s.maxFrames); err != nil {
			tc.exportErr = &ExportError{Err: err}
		}
	})
	return tc.exportErr
}
