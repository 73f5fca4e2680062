package observability

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

type metrics struct {
	clientRequestsTotal   metric.Int64Counter
	clientRequestDuration metric.Float64Histogram
	sinkWritesTotal       metric.Int64Counter
	sinkWriteDuration     metric.Float64Histogram
}

var (
	metricsOnce sync.Once
	m           metrics
)

func buildMeterProvider(ctx context.Context, cfg Config) (*sdkmetric.MeterProvider, error) {
	if !cfg.Enabled || !cfg.MetricsEnabled {
		return sdkmetric.NewMeterProvider(), nil
	}

	exporter, err := otlpmetricgrpc.New(
		ctx,
		otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}

	res, err := resource.New(
		ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironmentName(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create metric resource: %w", err)
	}

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exporter),
		),
	), nil
}

func initInstruments() {
	metricsOnce.Do(func() {
		meter := otel.Meter(instrumentationName)
		m.clientRequestsTotal, _ = meter.Int64Counter("lariat.client.requests_total")
		m.clientRequestDuration, _ = meter.Float64Histogram("lariat.client.request_duration_ms")
		m.sinkWritesTotal, _ = meter.Int64Counter("lariat.sink.writes_total")
		m.sinkWriteDuration, _ = meter.Float64Histogram("lariat.sink.write_duration_ms")
	})
}

// RecordClientRequest records one outbound API call. status is 0 when no
// response was received.
func RecordClientRequest(ctx context.Context, method, route string, status int, durationMS float64) {
	initInstruments()
	attrs := metric.WithAttributes(
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrHTTPRoute, route),
		attribute.Int(AttrHTTPStatusCode, status),
	)
	m.clientRequestsTotal.Add(ctx, 1, attrs)
	m.clientRequestDuration.Record(ctx, durationMS, attrs)
}

func RecordSinkWrite(ctx context.Context, sinkName, sinkKind string, rows int, success bool, durationMS float64) {
	initInstruments()
	attrs := metric.WithAttributes(
		attribute.String(AttrSinkName, sinkName),
		attribute.String(AttrSinkKind, sinkKind),
		attribute.Bool("success", success),
	)
	m.sinkWritesTotal.Add(ctx, int64(rows), attrs)
	m.sinkWriteDuration.Record(ctx, durationMS, attrs)
}
