package observability

import (
	"context"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// TracerName identifies spans emitted by the worker.
const TracerName = "github.com/docpipeline/indexer"

// Tracer returns the worker's tracer.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// StartStage starts a span for a pipeline stage, named so traces line up
// with the StageError.Stage values the orchestrator produces.
func StartStage(ctx context.Context, stage string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "stage."+stage)
}

// natsHeaderCarrier adapts nats.Msg headers to OTel's TextMapCarrier so
// trace context can ride along on a queued job or a vector-index-ready
// event across process boundaries.
type natsHeaderCarrier nats.Msg

func (c *natsHeaderCarrier) Get(key string) string {
	if c.Header == nil {
		return ""
	}
	return c.Header.Get(key)
}

func (c *natsHeaderCarrier) Set(key, val string) {
	if c.Header == nil {
		c.Header = make(nats.Header)
	}
	c.Header.Set(key, val)
}

func (c *natsHeaderCarrier) Keys() []string {
	if c.Header == nil {
		return nil
	}
	keys := make([]string, 0, len(c.Header))
	for k := range c.Header {
		keys = append(keys, k)
	}
	return keys
}

// InjectHeaders writes ctx's trace context into msg's NATS headers.
func InjectHeaders(ctx context.Context, msg *nats.Msg) {
	otel.GetTextMapPropagator().Inject(ctx, (*natsHeaderCarrier)(msg))
}

// ExtractContext reads trace context out of msg's NATS headers, falling
// back to a background context with no parent span when absent.
func ExtractContext(msg *nats.Msg) context.Context {
	return otel.GetTextMapPropagator().Extract(context.Background(), (*natsHeaderCarrier)(msg))
}
