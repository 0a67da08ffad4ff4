package jobtrace

import "errors"

// ErrNilExporter is returned by [New] when no exporter is supplied. The
// interceptor's whole contract is the export hand-off, so there is no
// useful nil-exporter mode.
var ErrNilExporter = errors.New("jobtrace: exporter is nil")

// ExportError wraps a failure from the exporter during the mandatory
// post-job export step. It supports errors.Is and errors.As for idiomatic
// Go error handling.
//
// When the job body itself failed, the job's error is what [Interceptor.Handle]
// returns and the export failure is only logged; an ExportError reaches the
// caller only when the job succeeded and export alone failed.
type ExportError struct {
	// Err is the underlying exporter failure.
	Err error
}

// Error implements the error interface.
func (e *ExportError) Error() string {
	return "jobtrace: span export failed: " + e.Err.Error()
}

// Unwrap returns the underlying exporter failure.
func (e *ExportError) Unwrap() error { return e.Err }
