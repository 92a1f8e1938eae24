package telemetry

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartSpan_RecordsAttributes(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	_, span := StartSpan(context.Background(), SpanNGONearby, AttrRadiusMeters.Float64(5000))
	span.End()

	ended := rec.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 span, got %d", len(ended))
	}
	if ended[0].Name() != SpanNGONearby {
		t.Errorf("expected span %q, got %q", SpanNGONearby, ended[0].Name())
	}
	attrs := ended[0].Attributes()
	if len(attrs) != 1 || attrs[0].Key != AttrRadiusMeters || attrs[0].Value.AsFloat64() != 5000 {
		t.Errorf("unexpected attributes: %v", attrs)
	}
}
