package jobtrace

import (
	"strings"

	"go.opentelemetry.io/otel/attribute"
)

// HostAttributeKey is the attribute key under which the configured
// host/service identifier is recorded on root spans.
const HostAttributeKey = "host"

// nameSeparator joins the trace prefix and name segments.
const nameSeparator = "/"

// jobSpanBuilder derives the root span's name and attributes from a job
// descriptor according to the interceptor's configuration.
type jobSpanBuilder struct {
	prefix   string
	nameKeys []string
	attrKeys []string
	host     string
}

// spanName joins the trace prefix and the descriptor values for each
// configured name key, in order, with "/". A missing key contributes an
// empty segment rather than aborting name construction: the name's shape
// stays stable across descriptors so backends can group on it.
func (b jobSpanBuilder) spanName(d Descriptor) string {
	segments := make([]string, 0, len(b.nameKeys)+1)
	segments = append(segments, b.prefix)
	for _, key := range b.nameKeys {
		segments = append(segments, d[key])
	}
	return strings.Join(segments, nameSeparator)
}

// configureRoot sets the host attribute and promotes the configured
// descriptor keys to span attributes. Keys absent from the descriptor are
// skipped silently.
func (b jobSpanBuilder) configureRoot(span *Span, d Descriptor) {
	if b.host != "" {
		span.SetAttributes(attribute.String(HostAttributeKey, b.host))
	}
	for _, key := range b.attrKeys {
		if v, ok := d[key]; ok {
			span.SetAttributes(attribute.String(key, v))
		}
	}
}
