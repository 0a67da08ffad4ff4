package jobtrace

import "context"

// Descriptor is the job metadata supplied by the job runner: an opaque
// string-keyed mapping used to derive span names and attributes. The
// interceptor treats it as read-only and never mutates it.
type Descriptor map[string]string

// Get returns the value for key and whether the key is present.
func (d Descriptor) Get(key string) (string, bool) {
	v, ok := d[key]
	return v, ok
}

// Has reports whether key is present in the descriptor.
func (d Descriptor) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// HandlerFunc is a function that processes a job. The context carries the
// active trace scope, if any, so nested instrumentation can attach child
// spans via [StartSpan].
type HandlerFunc func(ctx context.Context, d Descriptor) error

// MiddlewareFunc is a function that wraps a HandlerFunc with cross-cutting
// concerns. It follows the standard Go middleware pattern (onion model).
//
// Example:
//
//	func timingMiddleware(ctx context.Context, d jobtrace.Descriptor, next jobtrace.HandlerFunc) error {
//	    start := time.Now()
//	    err := next(ctx, d)
//	    log.Printf("job took %s", time.Since(start))
//	    return err
//	}
type MiddlewareFunc func(ctx context.Context, d Descriptor, next HandlerFunc) error

// Chain holds an ordered list of named middleware. The zero value is ready
// to use. Chains let a job runner compose the tracing interceptor with
// logging and application middleware in a controlled order.
type Chain struct {
	middleware []namedMiddleware
}

// namedMiddleware associates a name with a middleware for identification.
type namedMiddleware struct {
	name string
	fn   MiddlewareFunc
}

// NewChain returns an empty middleware chain.
func NewChain() *Chain {
	return &Chain{}
}

// Add appends middleware to the end of the chain.
func (c *Chain) Add(name string, fn MiddlewareFunc) {
	c.middleware = append(c.middleware, namedMiddleware{name: name, fn: fn})
}

// Prepend inserts middleware at the beginning of the chain.
func (c *Chain) Prepend(name string, fn MiddlewareFunc) {
	c.middleware = append([]namedMiddleware{{name: name, fn: fn}}, c.middleware...)
}

// InsertBefore inserts middleware immediately before the named middleware.
func (c *Chain) InsertBefore(existing string, name string, fn MiddlewareFunc) {
	for i, m := range c.middleware {
		if m.name == existing {
			c.middleware = append(c.middleware[:i+1], c.middleware[i:]...)
			c.middleware[i] = namedMiddleware{name: name, fn: fn}
			return
		}
	}
	// If not found, append to end.
	c.Add(name, fn)
}

// InsertAfter inserts middleware immediately after the named middleware.
func (c *Chain) InsertAfter(existing string, name string, fn MiddlewareFunc) {
	for i, m := range c.middleware {
		if m.name == existing {
			inserted := append([]namedMiddleware{{name: name, fn: fn}}, c.middleware[i+1:]...)
			c.middleware = append(c.middleware[:i+1], inserted...)
			return
		}
	}
	c.Add(name, fn)
}

// Remove removes middleware by name from the chain.
func (c *Chain) Remove(name string) {
	for i, m := range c.middleware {
		if m.name == name {
			c.middleware = append(c.middleware[:i], c.middleware[i+1:]...)
			return
		}
	}
}

// Then builds a HandlerFunc by wrapping the handler with the middleware chain.
func (c *Chain) Then(handler HandlerFunc) HandlerFunc {
	// Build from inside out: the last middleware wraps the handler first.
	h := handler
	for i := len(c.middleware) - 1; i >= 0; i-- {
		mw := c.middleware[i].fn
		next := h
		h = func(ctx context.Context, d Descriptor) error {
			return mw(ctx, d, next)
		}
	}
	return h
}
