package parking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type testTelemetry struct {
	*TelemetryProvider
	reader *sdkmetric.ManualReader
	spans  *tracetest.SpanRecorder
}

func newTestTelemetry(t *testing.T) *testTelemetry {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	spans := tracetest.NewSpanRecorder()

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	provider := NewTelemetryProviderFrom("parking-ledger-test", tp, mp)
	t.Cleanup(func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	})

	return &testTelemetry{
		TelemetryProvider: provider,
		reader:            reader,
		spans:             spans,
	}
}

// sum adds up every data point of the named int64 sum instrument.
func (tt *testTelemetry) sum(t *testing.T, name string) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, tt.reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			data, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is %T, not an int64 sum", name, m.Data)
			for _, dp := range data.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func (tt *testTelemetry) spanNames() []string {
	var names []string
	for _, s := range tt.spans.Ended() {
		names = append(names, s.Name())
	}
	return names
}
