package jobtrace

// SampleFunc decides whether a job execution is traced at all. It is
// evaluated exactly once per job, before any span is created, and must be
// a pure function of the descriptor: no side effects, no retained state.
// When it returns false the interceptor invokes the handler directly with
// no tracing overhead.
//
// A panic inside the predicate propagates to the caller; tracing never
// suppresses a job.
type SampleFunc func(d Descriptor) bool

// SampleAll is the default sampling gate: every job is traced.
func SampleAll(Descriptor) bool { return true }
