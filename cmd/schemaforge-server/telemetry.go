package main

import (
	"context"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/goliatone/go-schemaforge/pkg/server"
)

// telemetry keeps server metrics in process. There is no exporter; the
// totals are logged when the server stops.
type telemetry struct {
	reader sdkmetric.Reader
	meter  *sdkmetric.MeterProvider
	tracer *sdktrace.TracerProvider
}

func newTelemetry() *telemetry {
	reader := sdkmetric.NewManualReader()
	return &telemetry{
		reader: reader,
		meter:  sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
		tracer: sdktrace.NewTracerProvider(),
	}
}

func (t *telemetry) options() []server.Option {
	return []server.Option{
		server.WithMeterProvider(t.meter),
		server.WithTracerProvider(t.tracer),
	}
}

// summarize logs one entry per counter with its total.
func (t *telemetry) summarize(ctx context.Context, logger server.Logger) {
	var rm metricdata.ResourceMetrics
	if err := t.reader.Collect(ctx, &rm); err != nil {
		logger.Warn("collect metrics", server.F("error", err))
		return
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			logger.Info("metric total", server.F("name", m.Name), server.F("value", total))
		}
	}
}

func (t *telemetry) shutdown(ctx context.Context) error {
	if err := t.tracer.Shutdown(ctx); err != nil {
		return err
	}
	return t.meter.Shutdown(ctx)
}
