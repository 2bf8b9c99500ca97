package middleware

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/toolhost/protocol"
)

const instrumentationName = "github.com/felixgeelhaar/toolhost"

// Attribute keys recorded on spans and metrics.
const (
	AttrRPCSystem    = "rpc.system"
	AttrRPCMethod    = "rpc.method"
	AttrErrorCode    = "rpc.jsonrpc.error_code"
	AttrRequestID    = "toolhost.request_id"
	AttrTool         = "toolhost.tool"
	AttrServiceName  = "service.name"
	rpcSystemJSONRPC = "jsonrpc"
)

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*otelConfig)

type otelConfig struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	serviceName    string
	skipMethods    map[string]bool
}

// WithTracerProvider sets a custom tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *otelConfig) {
		c.tracerProvider = tp
	}
}

// WithMeterProvider sets a custom meter provider.
func WithMeterProvider(mp metric.MeterProvider) OTelOption {
	return func(c *otelConfig) {
		c.meterProvider = mp
	}
}

// WithOTelServiceName sets the service.name attribute.
func WithOTelServiceName(name string) OTelOption {
	return func(c *otelConfig) {
		c.serviceName = name
	}
}

// WithOTelSkipMethods excludes methods from tracing and metrics.
func WithOTelSkipMethods(methods ...string) OTelOption {
	return func(c *otelConfig) {
		for _, m := range methods {
			c.skipMethods[m] = true
		}
	}
}

// OTel returns middleware that opens a server span per request and records
// request count, error count and latency.
func OTel(opts ...OTelOption) Middleware {
	cfg := &otelConfig{
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
		serviceName:    "toolhost",
		skipMethods:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	tracer := cfg.tracerProvider.Tracer(instrumentationName)
	meter := cfg.meterProvider.Meter(instrumentationName)

	requests, _ := meter.Int64Counter(
		"toolhost.requests",
		metric.WithDescription("Requests handled"),
		metric.WithUnit("{request}"),
	)
	failures, _ := meter.Int64Counter(
		"toolhost.errors",
		metric.WithDescription("Requests answered with an error"),
		metric.WithUnit("{error}"),
	)
	latency, _ := meter.Float64Histogram(
		"toolhost.request.duration",
		metric.WithDescription("Time spent handling a request"),
		metric.WithUnit("ms"),
	)

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			if cfg.skipMethods[req.Method] {
				return next(ctx, req)
			}

			attrs := []attribute.KeyValue{
				attribute.String(AttrRPCSystem, rpcSystemJSONRPC),
				attribute.String(AttrRPCMethod, req.Method),
				attribute.String(AttrServiceName, cfg.serviceName),
			}

			ctx, span := tracer.Start(ctx, req.Method,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attrs...),
			)
			defer span.End()

			if reqID := RequestIDFromContext(ctx); reqID != "" {
				span.SetAttributes(attribute.String(AttrRequestID, reqID))
			}

			start := time.Now()
			requests.Add(ctx, 1, metric.WithAttributes(attrs...))

			resp, err := next(ctx, req)

			elapsed := float64(time.Since(start)) / float64(time.Millisecond)
			latency.Record(ctx, elapsed, metric.WithAttributes(attrs...))

			code, failed := 0, false
			switch {
			case err != nil:
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				failed = true
				code = protocol.CodeInternalError
				var rpcErr *protocol.Error
				if errors.As(err, &rpcErr) {
					code = rpcErr.Code
				}
			case resp != nil && resp.Error != nil:
				span.SetStatus(codes.Error, resp.Error.Message)
				failed = true
				code = resp.Error.Code
			default:
				span.SetStatus(codes.Ok, "")
			}

			if failed {
				span.SetAttributes(attribute.Int(AttrErrorCode, code))
				failures.Add(ctx, 1, metric.WithAttributes(
					append(attrs, attribute.Int(AttrErrorCode, code))...,
				))
			}

			return resp, err
		}
	}
}

// AddSpanEvent adds an event to the current span.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).AddEvent(name, trace.WithAttributes(attrs...))
}

// SetSpanAttribute sets an attribute on the current span.
// Values of unsupported types are ignored.
func SetSpanAttribute(ctx context.Context, key string, value any) {
	span := trace.SpanFromContext(ctx)
	switch v := value.(type) {
	case string:
		span.SetAttributes(attribute.String(key, v))
	case int:
		span.SetAttributes(attribute.Int(key, v))
	case int64:
		span.SetAttributes(attribute.Int64(key, v))
	case float64:
		span.SetAttributes(attribute.Float64(key, v))
	case bool:
		span.SetAttributes(attribute.Bool(key, v))
	}
}
