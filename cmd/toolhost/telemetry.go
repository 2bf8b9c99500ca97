package main

import (
	"context"
	"errors"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/felixgeelhaar/toolhost/middleware"
)

// telemetry owns the SDK providers installed when telemetry.enabled is set.
// Finished spans are logged at debug level and the request counters are
// logged once on shutdown. Stdout carries the protocol, so nothing is
// exported there.
type telemetry struct {
	tracer *sdktrace.TracerProvider
	meter  *sdkmetric.MeterProvider
	reader *sdkmetric.ManualReader
	logger middleware.Logger
}

func newTelemetry(logger middleware.Logger) *telemetry {
	reader := sdkmetric.NewManualReader()
	return &telemetry{
		tracer: sdktrace.NewTracerProvider(sdktrace.WithSyncer(spanLogger{logger: logger})),
		meter:  sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
		reader: reader,
		logger: logger,
	}
}

func (t *telemetry) options() []middleware.OTelOption {
	return []middleware.OTelOption{
		middleware.WithTracerProvider(t.tracer),
		middleware.WithMeterProvider(t.meter),
	}
}

// shutdown logs the collected counters and stops both providers.
func (t *telemetry) shutdown(ctx context.Context) error {
	var rm metricdata.ResourceMetrics
	if err := t.reader.Collect(ctx, &rm); err != nil {
		t.logger.Warn("collect metrics", middleware.F("error", err))
	} else {
		t.logger.Info("telemetry summary",
			middleware.F("requests", counterTotal(rm, "toolhost.requests")),
			middleware.F("errors", counterTotal(rm, "toolhost.errors")),
		)
	}
	return errors.Join(t.tracer.Shutdown(ctx), t.meter.Shutdown(ctx))
}

func counterTotal(rm metricdata.ResourceMetrics, name string) int64 {
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
			}
		}
	}
	return total
}

// spanLogger is a span exporter that writes one debug line per span.
type spanLogger struct {
	logger middleware.Logger
}

func (e spanLogger) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, s := range spans {
		e.logger.Debug("span",
			middleware.F("name", s.Name()),
			middleware.F("trace_id", s.SpanContext().TraceID().String()),
			middleware.F("status", s.Status().Code.String()),
			middleware.F("duration", s.EndTime().Sub(s.StartTime())),
		)
	}
	return nil
}

func (spanLogger) Shutdown(context.Context) error { return nil }
