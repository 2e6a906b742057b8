package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const inventoryMeterName = "github.com/ghuser/stockledger/inventory"

// InventoryMetrics holds the ledger's OTel instruments. Exported on /metrics
// as inventory_movements_total and inventory_items.
type InventoryMetrics struct {
	movements metric.Int64Counter
	items     metric.Int64UpDownCounter
}

// NewInventoryMetrics registers the instruments on the global MeterProvider.
func NewInventoryMetrics() (*InventoryMetrics, error) {
	return NewInventoryMetricsWith(otel.GetMeterProvider())
}

// NewInventoryMetricsWith registers the instruments on mp.
func NewInventoryMetricsWith(mp metric.MeterProvider) (*InventoryMetrics, error) {
	meter := mp.Meter(inventoryMeterName)

	movements, err := meter.Int64Counter("inventory.movements",
		metric.WithDescription("Units moved by recorded stock transactions"),
		metric.WithUnit("{unit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("movements counter: %w", err)
	}

	items, err := meter.Int64UpDownCounter("inventory.items",
		metric.WithDescription("Items registered in the ledger"),
		metric.WithUnit("{item}"),
	)
	if err != nil {
		return nil, fmt.Errorf("items counter: %w", err)
	}

	return &InventoryMetrics{movements: movements, items: items}, nil
}

// RecordMovement adds quantity units under the given movement type.
func (m *InventoryMetrics) RecordMovement(ctx context.Context, movementType string, quantity int) {
	m.movements.Add(ctx, int64(quantity), metric.WithAttributes(attribute.String("movement_type", movementType)))
}

// ItemsChanged moves the item gauge by delta for one item type.
func (m *InventoryMetrics) ItemsChanged(ctx context.Context, itemType string, delta int64) {
	m.items.Add(ctx, delta, metric.WithAttributes(attribute.String("item_type", itemType)))
}
