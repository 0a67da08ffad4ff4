package jobtrace

import (
	"crypto/rand"
	"time"

	"github.com/zoobzio/clockz"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span is a single timed unit of work within one traced job execution.
//
// A span is NOT safe for concurrent modification; spans belong to exactly one
// execution context at a time. Once End is called the span is frozen:
// attribute and status writes become no-ops and the end time never changes.
type Span struct {
	traceID   trace.TraceID
	spanID    trace.SpanID
	parent    *Span
	children  []*Span
	name      string
	kind      trace.SpanKind
	startTime time.Time
	endTime   time.Time
	attrs     []attribute.KeyValue
	attrIdx   map[attribute.Key]int
	status    codes.Code
	statusMsg string
	clock     clockz.Clock
}

// newRootSpan creates the root span of a new trace.
func newRootSpan(name string, kind trace.SpanKind, clock clockz.Clock) *Span {
	return &Span{
		traceID:   newTraceID(),
		spanID:    newSpanID(),
		name:      name,
		kind:      kind,
		startTime: clock.Now(),
		clock:     clock,
	}
}

// newChild creates a child span attached under s, sharing its trace ID.
func (s *Span) newChild(name string) *Span {
	child := &Span{
		traceID:   s.traceID,
		spanID:    newSpanID(),
		parent:    s,
		name:      name,
		kind:      trace.SpanKindInternal,
		startTime: s.clock.Now(),
		clock:     s.clock,
	}
	s.children = append(s.children, child)
	return child
}

// Name returns the span name, fixed at creation.
func (s *Span) Name() string { return s.name }

// Kind returns the span kind.
func (s *Span) Kind() trace.SpanKind { return s.kind }

// TraceID returns the trace ID shared by every span in the tree.
func (s *Span) TraceID() trace.TraceID { return s.traceID }

// SpanID returns this span's ID.
func (s *Span) SpanID() trace.SpanID { return s.spanID }

// Parent returns the parent span, or nil for the root.
func (s *Span) Parent() *Span { return s.parent }

// Children returns the span's direct children in creation order.
func (s *Span) Children() []*Span {
	out := make([]*Span, len(s.children))
	copy(out, s.children)
	return out
}

// StartTime returns when the span was opened.
func (s *Span) StartTime() time.Time { return s.startTime }

// EndTime returns when the span was closed, or the zero time while open.
func (s *Span) EndTime() time.Time { return s.endTime }

// Ended reports whether End has been called.
func (s *Span) Ended() bool { return !s.endTime.IsZero() }

// Duration returns EndTime minus StartTime, or zero while the span is open.
func (s *Span) Duration() time.Duration {
	if s.endTime.IsZero() {
		return 0
	}
	return s.endTime.Sub(s.startTime)
}

// Attributes returns a copy of the span's attributes. Keys are unique;
// repeated writes to a key keep the last value.
func (s *Span) Attributes() []attribute.KeyValue {
	out := make([]attribute.KeyValue, len(s.attrs))
	copy(out, s.attrs)
	return out
}

// SetAttributes sets attributes on the span. Writing a key that is already
// set replaces its value. Calls on a nil or ended span are no-ops.
func (s *Span) SetAttributes(kvs ...attribute.KeyValue) {
	if s == nil || s.Ended() {
		return
	}
	if s.attrIdx == nil {
		s.attrIdx = make(map[attribute.Key]int, len(kvs))
	}
	for _, kv := range kvs {
		if i, ok := s.attrIdx[kv.Key]; ok {
			s.attrs[i] = kv
			continue
		}
		s.attrIdx[kv.Key] = len(s.attrs)
		s.attrs = append(s.attrs, kv)
	}
}

// SetStatus sets the span status. Calls on a nil or ended span are no-ops.
func (s *Span) SetStatus(code codes.Code, msg string) {
	if s == nil || s.Ended() {
		return
	}
	s.status = code
	s.statusMsg = msg
}

// StatusCode returns the span's status code.
func (s *Span) StatusCode() codes.Code { return s.status }

// StatusMessage returns the span's status message.
func (s *Span) StatusMessage() string { return s.statusMsg }

// End closes the span, stamping its end time from the clock. Safe to call
// multiple times; only the first call takes effect. Safe on a nil span, so
// instrumentation can unconditionally defer span.End() even on the
// untraced path.
func (s *Span) End() {
	if s == nil || s.Ended() {
		return
	}
	s.endTime = s.clock.Now()
}

// SpanTree is the root span of one traced job execution plus every
// descendant reachable through child links. A tree is owned by the
// TraceContext that built it and is handed to the exporter finalized, with
// all spans closed.
type SpanTree struct {
	root *Span
}

// Root returns the tree's root span.
func (t *SpanTree) Root() *Span { return t.root }

// Len returns the total number of spans in the tree.
func (t *SpanTree) Len() int {
	return len(t.Flatten(0))
}

// Flatten returns the tree's spans in pre-order depth-first order: the root
// first, then each child subtree in creation order. If maxFrames is
// positive, the walk stops after maxFrames spans; the root and outermost
// frames are retained and the deepest frames are dropped. This is the
// truncation rule applied when a tree exceeds an exporter's frame bound.
func (t *SpanTree) Flatten(maxFrames int) []*Span {
	if t == nil || t.root == nil {
		return nil
	}
	var out []*Span
	var walk func(s *Span) bool
	walk = func(s *Span) bool {
		if maxFrames > 0 && len(out) >= maxFrames {
			return false
		}
		out = append(out, s)
		for _, c := range s.children {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(t.root)
	return out
}

// endAll closes any spans still open, root last. Instrumented code that
// leaked an open child gets a consistent end time rather than a zero one.
func (t *SpanTree) endAll() {
	var walk func(s *Span)
	walk = func(s *Span) {
		for _, c := range s.children {
			walk(c)
		}
		s.End()
	}
	if t != nil && t.root != nil {
		walk(t.root)
	}
}

// newTraceID returns a random 16-byte trace ID.
func newTraceID() trace.TraceID {
	var id trace.TraceID
	_, _ = rand.Read(id[:])
	return id
}

// newSpanID returns a random 8-byte span ID.
func newSpanID() trace.SpanID {
	var id trace.SpanID
	_, _ = rand.Read(id[:])
	return id
}
