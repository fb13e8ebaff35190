// Package oteladapters provides OpenTelemetry implementations of the bank package's
// observability interfaces: a contextual logger, a metrics collector and a tracing collector.
//
// Typical wiring:
//
//	b, err := bank.NewBank(
//		bank.WithContextualLogger(oteladapters.NewSlogBridgeLogger("bank-simulation")),
//		bank.WithMetrics(oteladapters.NewMetricsCollector(otel.Meter("bank-simulation"))),
//		bank.WithTracing(oteladapters.NewTracingCollector(otel.Tracer("bank-simulation"))),
//	)
package oteladapters
