package jobtrace

import (
	"context"
	"log/slog"
	"time"
)

// Logging returns middleware that logs job execution using the provided
// [slog.Logger]. Each job execution produces two log entries: one at start
// (DEBUG level) and one at completion (INFO on success, ERROR on failure).
//
// The values of the given descriptor keys are logged under "job.<key>";
// keys absent from a job's descriptor are skipped. Completion entries also
// carry duration_ms.
func Logging(logger *slog.Logger, keys ...string) MiddlewareFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, d Descriptor, next HandlerFunc) error {
		attrs := make([]slog.Attr, 0, len(keys)+2)
		for _, key := range keys {
			if v, ok := d[key]; ok {
				attrs = append(attrs, slog.String("job."+key, v))
			}
		}

		logger.LogAttrs(ctx, slog.LevelDebug, "job started", attrs...)

		start := time.Now()
		err := next(ctx, d)
		duration := time.Since(start)

		attrs = append(attrs, slog.Float64("duration_ms", float64(duration.Microseconds())/1000.0))

		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
			logger.LogAttrs(ctx, slog.LevelError, "job failed", attrs...)
		} else {
			logger.LogAttrs(ctx, slog.LevelInfo, "job completed", attrs...)
		}

		return err
	}
}
