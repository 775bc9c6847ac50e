package observability

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestRecordSpanError(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantStatus codes.Code
	}{
		{"client error keeps span unset", 404, codes.Unset},
		{"server error marks span", 503, codes.Error},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			recorder := tracetest.NewSpanRecorder()
			tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
			ctx, span := tp.Tracer("test").Start(context.Background(), "req")

			RecordSpanError(ctx, errors.New("boom"), tc.status, KindClassified, "NotFound")
			span.End()

			spans := recorder.Ended()
			if len(spans) != 1 {
				t.Fatalf("expected 1 span, got %d", len(spans))
			}
			got := spans[0]
			if got.Status().Code != tc.wantStatus {
				t.Errorf("expected span status %v, got %v", tc.wantStatus, got.Status().Code)
			}
			if len(got.Events()) != 1 || got.Events()[0].Name != "exception" {
				t.Errorf("expected one exception event, got %v", got.Events())
			}
			found := false
			for _, kv := range got.Attributes() {
				if kv.Key == attribute.Key(AttrHTTPStatus) && kv.Value.AsInt64() == int64(tc.status) {
					found = true
				}
			}
			if !found {
				t.Errorf("expected %s attribute", AttrHTTPStatus)
			}
		})
	}
}

func TestRecordSpanError_NoSpan(t *testing.T) {
	// must not panic without an active span
	RecordSpanError(context.Background(), errors.New("boom"), 500, KindOpaque, "UnknownError")
}

func TestErrorMetrics_RecordError(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := NewErrorMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewErrorMetrics: %v", err)
	}

	ctx := context.Background()
	m.RecordError(ctx, 404, KindClassified, "NotFound")
	m.RecordError(ctx, 404, KindClassified, "NotFound")
	m.RecordError(ctx, 500, KindOpaque, "UnknownError")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if md.Name != "http.server.error.total" {
				continue
			}
			sum, ok := md.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("unexpected data type %T", md.Data)
			}
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	if total != 3 {
		t.Errorf("expected 3 recorded errors, got %d", total)
	}
}

func TestErrorMetrics_NilReceiver(t *testing.T) {
	var m *ErrorMetrics
	m.RecordError(context.Background(), 500, KindOpaque, "UnknownError")
}

func TestSamplerFor(t *testing.T) {
	if samplerFor(1).Description() != sdktrace.AlwaysSample().Description() {
		t.Error("expected AlwaysSample for rate 1")
	}
	if samplerFor(0).Description() != sdktrace.NeverSample().Description() {
		t.Error("expected NeverSample for rate 0")
	}
}
