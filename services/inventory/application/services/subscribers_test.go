package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ghuser/stockledger/pkg/auth"
	"github.com/ghuser/stockledger/pkg/events"
	"github.com/ghuser/stockledger/pkg/logger"
	"github.com/ghuser/stockledger/services/inventory/domain/models"
	"github.com/ghuser/stockledger/services/inventory/infrastructure/persistence/memory"
)

type fakeRecorder struct {
	mu        sync.Mutex
	movements map[string]int
	items     map[string]int64
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{movements: map[string]int{}, items: map[string]int64{}}
}

func (f *fakeRecorder) RecordMovement(_ context.Context, movementType string, quantity int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.movements[movementType] += quantity
}

func (f *fakeRecorder) ItemsChanged(_ context.Context, itemType string, delta int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[itemType] += delta
}

func (f *fakeRecorder) snapshot() (map[string]int, map[string]int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := make(map[string]int, len(f.movements))
	for k, v := range f.movements {
		m[k] = v
	}
	i := make(map[string]int64, len(f.items))
	for k, v := range f.items {
		i[k] = v
	}
	return m, i
}

func TestRegisterSubscribers_FeedsMetrics(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := events.NewEventBus(logger.NewDiscard())
	t.Cleanup(func() { _ = bus.Close() })

	rec := newFakeRecorder()
	if err := RegisterSubscribers(ctx, bus, rec, logger.NewDiscard()); err != nil {
		t.Fatalf("RegisterSubscribers: %v", err)
	}

	ledger := openLedger(t, memory.NewInventoryRepository(), WithPublisher(bus))
	mustCreate(t, ledger, NewItemInput{Type: models.ItemTypePart, Code: "P-1", Name: "bolt"}, 0)
	box := mustCreate(t, ledger, NewItemInput{Type: models.ItemTypeProduct, Code: "X-1", Name: "gearbox"}, 5)
	if _, err := ledger.AddTransaction(ctx, box.ID, NewTransactionInput{Type: models.TransactionConsumption, Quantity: 2}); err != nil {
		t.Fatal(err)
	}
	if err := ledger.DeleteItem(ctx, auth.RoleAdmin, box.ID, adminSecret); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		movements, items := rec.snapshot()
		done := movements["purchase"] == 5 && movements["consumption"] == 2 &&
			items["part"] == 1 && items["product"] == 0
		if done {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("metrics never settled: movements=%v items=%v", movements, items)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSeedItemCounts(t *testing.T) {
	rec := newFakeRecorder()
	SeedItemCounts(context.Background(), rec, []models.Item{
		{ID: "a", Type: models.ItemTypePart},
		{ID: "b", Type: models.ItemTypePart},
		{ID: "c", Type: models.ItemTypeProduct},
	})
	_, items := rec.snapshot()
	if items["part"] != 2 || items["product"] != 1 {
		t.Errorf("unexpected seed counts: %v", items)
	}
}
