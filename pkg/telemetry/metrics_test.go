package telemetry

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collectSums(t *testing.T, reader *sdkmetric.ManualReader) map[string]map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}

	out := map[string]map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			byAttr := map[string]int64{}
			for _, dp := range sum.DataPoints {
				for _, kv := range dp.Attributes.ToSlice() {
					byAttr[kv.Value.AsString()] += dp.Value
				}
			}
			out[m.Name] = byAttr
		}
	}
	return out
}

func TestInventoryMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background()) //nolint:errcheck

	m, err := NewInventoryMetricsWith(mp)
	if err != nil {
		t.Fatalf("NewInventoryMetricsWith: %v", err)
	}

	ctx := context.Background()
	m.RecordMovement(ctx, "purchase", 5)
	m.RecordMovement(ctx, "purchase", 2)
	m.RecordMovement(ctx, "consumption", 3)
	m.ItemsChanged(ctx, "part", 1)
	m.ItemsChanged(ctx, "part", 1)
	m.ItemsChanged(ctx, "part", -1)

	sums := collectSums(t, reader)
	if got := sums["inventory.movements"]["purchase"]; got != 7 {
		t.Errorf("purchase movements = %d, want 7", got)
	}
	if got := sums["inventory.movements"]["consumption"]; got != 3 {
		t.Errorf("consumption movements = %d, want 3", got)
	}
	if got := sums["inventory.items"]["part"]; got != 1 {
		t.Errorf("part items = %d, want 1", got)
	}
}
