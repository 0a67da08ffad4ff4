package jobtrace

import (
	"context"
	"sync"

	"github.com/zoobzio/clockz"
	"go.opentelemetry.io/otel/trace"
)

// scopeKeyType is a private type for context keys to avoid collisions.
type scopeKeyType struct{}

var scopeKey scopeKeyType

// scope bundles the trace context with the span that is current for one
// nesting level. Each StartSpan derives a new context carrying a new scope;
// the caller's original context still holds the enclosing scope, so
// returning from a nested call restores the previous current span without
// any bookkeeping.
type scope struct {
	tc   *TraceContext
	span *Span
}

// TraceContext owns the span tree of a single traced job execution. It is
// created when a job is accepted for tracing and discarded after its tree
// has been exported. A TraceContext must not be shared across concurrent
// job executions.
type TraceContext struct {
	tree  *SpanTree
	clock clockz.Clock

	exportOnce sync.Once
	exportErr  error
}

// newTraceContext returns a TraceContext with no root span yet.
func newTraceContext(clock clockz.Clock) *TraceContext {
	return &TraceContext{clock: clock}
}

// openRoot creates the unattached root span of this execution's tree.
func (tc *TraceContext) openRoot(name string, kind trace.SpanKind) *Span {
	root := newRootSpan(name, kind, tc.clock)
	tc.tree = &SpanTree{root: root}
	return root
}

// Tree returns the span tree being built, or nil before openRoot.
func (tc *TraceContext) Tree() *SpanTree { return tc.tree }

// contextWithScope returns a context carrying span as the current span.
func contextWithScope(ctx context.Context, tc *TraceContext, span *Span) context.Context {
	return context.WithValue(ctx, scopeKey, &scope{tc: tc, span: span})
}

// scopeFromContext extracts the active scope, or nil if the execution is
// untraced.
func scopeFromContext(ctx context.Context) *scope {
	if ctx == nil {
		return nil
	}
	sc, _ := ctx.Value(scopeKey).(*scope)
	return sc
}

// SpanFromContext returns the current span, or nil if the context carries
// no trace scope.
func SpanFromContext(ctx context.Context) *Span {
	if sc := scopeFromContext(ctx); sc != nil {
		return sc.span
	}
	return nil
}

// StartSpan opens a child of the current span and returns a context in
// which the child is current. Use the returned context for nested work and
// the original context afterwards; ending the child restores the parent as
// current simply by dropping the derived context.
//
//	ctx2, span := jobtrace.StartSpan(ctx, "resize")
//	defer span.End()
//	return resize(ctx2)
//
// If ctx carries no trace scope (the job was not sampled), StartSpan
// returns ctx unchanged and a nil span; a nil span's methods are no-ops,
// so instrumented code needs no sampled/unsampled branching.
func StartSpan(ctx context.Context, name string) (context.Context, *Span) {
	sc := scopeFromContext(ctx)
	if sc == nil {
		return ctx, nil
	}
	child := sc.span.newChild(name)
	return contextWithScope(ctx, sc.tc, child), child
}
