// Package jobtracetest provides test utilities for code instrumented with
// jobtrace.
//
// [InMemoryExporter] records every export hand-off so tests can assert on
// exactly-once delivery and on the shape of exported trees:
//
//	func TestHandler(t *testing.T) {
//	    exp := jobtracetest.NewInMemoryExporter()
//	    ic, _ := jobtrace.New(exp)
//	    _ = ic.Handle(ctx, d, handler)
//	    if exp.Count() != 1 {
//	        t.Fatalf("expected 1 export, got %d", exp.Count())
//	    }
//	}
package jobtracetest

import (
	"context"
	"errors"
	"sync"

	"github.com/queueworks/jobtrace"
)

// ExportCall records one Export invocation.
type ExportCall struct {
	Tree      *jobtrace.SpanTree
	MaxFrames int
}

// InMemoryExporter records exported span trees in memory. Safe for
// concurrent use by multiple goroutines.
type InMemoryExporter struct {
	mu    sync.Mutex
	calls []ExportCall
}

// NewInMemoryExporter returns an empty in-memory exporter.
func NewInMemoryExporter() *InMemoryExporter {
	return &InMemoryExporter{}
}

// Export implements [jobtrace.Exporter].
func (e *InMemoryExporter) Export(_ context.Context, tree *jobtrace.SpanTree, maxFrames int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, ExportCall{Tree: tree, MaxFrames: maxFrames})
	return nil
}

// Count returns the number of Export calls recorded.
func (e *InMemoryExporter) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

// Calls returns a copy of the recorded export calls in order.
func (e *InMemoryExporter) Calls() []ExportCall {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]ExportCall, len(e.calls))
	copy(out, e.calls)
	return out
}

// Trees returns the exported span trees in order.
func (e *InMemoryExporter) Trees() []*jobtrace.SpanTree {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*jobtrace.SpanTree, len(e.calls))
	for i, c := range e.calls {
		out[i] = c.Tree
	}
	return out
}

// Reset discards all recorded calls.
func (e *InMemoryExporter) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = nil
}

// ErrExportFailed is the default error returned by [FailingExporter].
var ErrExportFailed = errors.New("jobtracetest: export failed")

// FailingExporter fails every Export call, for exercising export-failure
// paths. It still counts attempts.
type FailingExporter struct {
	// Err is returned from Export. Defaults to [ErrExportFailed] when nil.
	Err error

	mu       sync.Mutex
	attempts int
}

// Export implements [jobtrace.Exporter] by failing.
func (e *FailingExporter) Export(context.Context, *jobtrace.SpanTree, int) error {
	e.mu.Lock()
	e.attempts++
	e.mu.Unlock()
	if e.Err != nil {
		return e.Err
	}
	return ErrExportFailed
}

// Attempts returns how many times Export was called.
func (e *FailingExporter) Attempts() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.attempts
}
