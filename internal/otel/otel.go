// Package otel wires OpenTelemetry tracing to the event bus. The rest of
// the module publishes plain event payloads; this package is the only one
// that knows a tracing backend exists.
package otel

import (
	"context"
	"sync"
	"time"

	eventbus "github.com/hanpama/newsgraph/internal/eventbus"
	events "github.com/hanpama/newsgraph/internal/events"
	reqid "github.com/hanpama/newsgraph/internal/reqid"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
)

// Setup configures OpenTelemetry and attaches eventbus subscribers.
// If endpoint is empty, no telemetry is configured.
func Setup(endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithInsecure()))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	otel.SetTracerProvider(tp)

	sub := &subscriber{tracer: otel.Tracer("newsgraph")}
	sub.register()

	return tp.Shutdown, nil
}

type subscriber struct {
	tracer   trace.Tracer
	gqlSpans sync.Map // rid -> trace.Span
}

func (s *subscriber) register() {
	eventbus.Subscribe(func(ctx context.Context, e events.GraphQLStart) {
		rid, _ := reqid.FromContext(ctx)
		_, span := s.tracer.Start(ctx, "graphql.operation")
		span.SetAttributes(
			attribute.String("graphql.operation.name", e.OperationName),
			attribute.String("graphql.operation.type", e.OperationType),
		)
		s.gqlSpans.Store(rid, span)
	})

	eventbus.Subscribe(func(ctx context.Context, e events.GraphQLFinish) {
		rid, _ := reqid.FromContext(ctx)
		v, ok := s.gqlSpans.LoadAndDelete(rid)
		if !ok {
			return
		}
		span := v.(trace.Span)
		span.SetAttributes(attribute.Int("graphql.error_count", len(e.Errors)))
		span.End()
	})

	// Flush and store-call events arrive after the fact, carrying their
	// duration. Each becomes a retroactive child span under the operation.
	eventbus.Subscribe(func(ctx context.Context, e events.FetchFlush) {
		parent, ok := s.operationContext(ctx)
		if !ok {
			return
		}
		_, span := s.tracer.Start(parent, "fetch.flush",
			trace.WithTimestamp(time.Now().Add(-e.Duration)))
		span.SetAttributes(attribute.Int("fetch.buckets", e.Buckets))
		if e.Err != nil {
			span.RecordError(e.Err)
		}
		span.End()
	})

	eventbus.Subscribe(func(ctx context.Context, e events.StoreCall) {
		parent, ok := s.operationContext(ctx)
		if !ok {
			return
		}
		_, span := s.tracer.Start(parent, "store."+e.Mode,
			trace.WithTimestamp(time.Now().Add(-e.Duration)))
		span.SetAttributes(
			attribute.String("store.kind", e.Kind),
			attribute.Int("store.keys", e.Keys),
		)
		if e.Relation != "" {
			span.SetAttributes(attribute.String("store.relation", e.Relation))
		}
		if e.Err != nil {
			span.RecordError(e.Err)
		}
		span.End()
	})
}

func (s *subscriber) operationContext(ctx context.Context) (context.Context, bool) {
	rid, _ := reqid.FromContext(ctx)
	v, ok := s.gqlSpans.Load(rid)
	if !ok {
		return ctx, false
	}
	return trace.ContextWithSpan(ctx, v.(trace.Span)), true
}
