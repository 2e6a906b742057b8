package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ghuser/stockledger/pkg/auth"
	"github.com/ghuser/stockledger/pkg/logger"
	"github.com/ghuser/stockledger/services/inventory/domain/models"
	"github.com/ghuser/stockledger/services/inventory/infrastructure/persistence/memory"
)

const (
	adminSecret      = "admin-secret"
	restrictedSecret = "restricted-secret"
)

var fixedNow = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

func testVerifier() *auth.Authenticator {
	return auth.NewAuthenticator(auth.StaticSecret(adminSecret), auth.StaticSecret(restrictedSecret))
}

type published struct {
	topic   string
	payload any
}

// recordingPublisher captures every event the ledger emits.
type recordingPublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *recordingPublisher) PublishJSON(_ context.Context, topic string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{topic: topic, payload: payload})
	return p.err
}

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.topic
	}
	return out
}

func openLedger(t *testing.T, repo *memory.InventoryRepository, opts ...LedgerOption) *LedgerService {
	t.Helper()
	opts = append([]LedgerOption{WithClock(func() time.Time { return fixedNow })}, opts...)
	ledger, err := Open(context.Background(), repo, testVerifier(), logger.NewDiscard(), opts...)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return ledger
}

func mustCreate(t *testing.T, ledger *LedgerService, in NewItemInput, qty int) models.Item {
	t.Helper()
	it, err := ledger.CreateItem(context.Background(), in, qty)
	if err != nil {
		t.Fatalf("CreateItem(%+v): %v", in, err)
	}
	return it
}

func ptr[T any](v T) *T { return &v }
