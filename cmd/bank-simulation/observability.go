package main

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/simbank/cashier-simulation/bank"
	"github.com/simbank/cashier-simulation/bank/oteladapters"
)

const (
	serviceName = "bank-simulation"

	// OTLP endpoints of the local observability stack.
	traceEndpoint  = "localhost:4319"
	metricEndpoint = "localhost:4317"
)

type observabilityProviders struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
}

// newObservabilityProviders sets up OTLP exporting providers and registers them globally.
func newObservabilityProviders(ctx context.Context) (*observabilityProviders, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String("dev"),
		),
	)
	if err != nil {
		return nil, err
	}

	traceExporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(traceEndpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	metricExporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(metricEndpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	p := &observabilityProviders{
		tracerProvider: sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(traceExporter),
			sdktrace.WithResource(res),
		),
		meterProvider: sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(5*time.Second))),
			sdkmetric.WithResource(res),
		),
	}

	otel.SetTracerProvider(p.tracerProvider)
	otel.SetMeterProvider(p.meterProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return p, nil
}

// observabilityBankOptions returns the logging, metrics and tracing options backed by the
// global OpenTelemetry providers. Log records go through the slog bridge and carry the
// trace and span IDs of the operation that emitted them.
func observabilityBankOptions() []bank.Option {
	return []bank.Option{
		bank.WithContextualLogger(oteladapters.NewSlogBridgeLogger(serviceName)),
		bank.WithMetrics(oteladapters.NewMetricsCollector(otel.Meter(serviceName))),
		bank.WithTracing(oteladapters.NewTracingCollector(otel.Tracer(serviceName))),
	}
}

func (p *observabilityProviders) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return errors.Join(
		p.tracerProvider.Shutdown(ctx),
		p.meterProvider.Shutdown(ctx),
	)
}
