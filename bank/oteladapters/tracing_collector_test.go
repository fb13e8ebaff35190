package oteladapters_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/simbank/cashier-simulation/bank/oteladapters"
)

func newTracingCollector() (*oteladapters.TracingCollector, *tracetest.InMemoryExporter) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	return oteladapters.NewTracingCollector(provider.Tracer("bank-test")), exporter
}

func spanAttribute(span tracetest.SpanStub, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}

	return attribute.Value{}, false
}

func Test_TracingCollector_StartAndFinishSpan(t *testing.T) {
	collector, exporter := newTracingCollector()

	ctx, span := collector.StartSpan(context.Background(), "bank.client.withdraw", map[string]string{
		"client.id":  "1",
		"cashier.id": "2",
	})
	require.NotNil(t, ctx)
	require.NotNil(t, span)

	collector.FinishSpan(span, "success", map[string]string{"operation.amount": "40"})

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "bank.client.withdraw", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)

	for key, want := range map[string]string{"client.id": "1", "cashier.id": "2", "operation.amount": "40"} {
		got, ok := spanAttribute(spans[0], key)
		require.True(t, ok, key)
		assert.Equal(t, want, got.AsString(), key)
	}
}

func Test_TracingCollector_StatusMapping(t *testing.T) {
	collector, exporter := newTracingCollector()

	_, failed := collector.StartSpan(context.Background(), "failed", nil)
	collector.FinishSpan(failed, "error", nil)

	_, rejected := collector.StartSpan(context.Background(), "rejected", nil)
	collector.FinishSpan(rejected, "conflict", nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	assert.Equal(t, codes.Error, spans[0].Status.Code)

	assert.Equal(t, codes.Unset, spans[1].Status.Code)
	conflict, ok := spanAttribute(spans[1], "bank.conflict")
	require.True(t, ok)
	assert.True(t, conflict.AsBool())
}

func Test_TracingCollector_ChildSpanSharesTrace(t *testing.T) {
	collector, exporter := newTracingCollector()

	parentCtx, parent := collector.StartSpan(context.Background(), "parent", nil)
	_, child := collector.StartSpan(parentCtx, "child", nil)
	collector.FinishSpan(child, "ok", nil)
	collector.FinishSpan(parent, "ok", nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, spans[1].SpanContext.TraceID(), spans[0].SpanContext.TraceID())
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
}

func Test_OTelSpanContext_AddAttribute(t *testing.T) {
	collector, exporter := newTracingCollector()

	_, span := collector.StartSpan(context.Background(), "attr", nil)
	span.AddAttribute("session.id", "abc")
	collector.FinishSpan(span, "ok", nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	got, ok := spanAttribute(spans[0], "session.id")
	require.True(t, ok)
	assert.Equal(t, "abc", got.AsString())
}
