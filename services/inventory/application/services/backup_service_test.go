package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ghuser/stockledger/pkg/logger"
	inventorydomain "github.com/ghuser/stockledger/services/inventory/domain"
	"github.com/ghuser/stockledger/services/inventory/domain/models"
	domainsvcs "github.com/ghuser/stockledger/services/inventory/domain/services"
	"github.com/ghuser/stockledger/services/inventory/infrastructure/persistence/memory"
)

// fakeUploader keeps uploaded objects in a map.
type fakeUploader struct {
	objects   map[string][]byte
	err       error
	bucketErr error
	ensured   int
}

func (f *fakeUploader) EnsureBucket(context.Context) error {
	f.ensured++
	return f.bucketErr
}

func (f *fakeUploader) Upsert(_ context.Context, name string, data []byte) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, existed := f.objects[name]
	f.objects[name] = data
	return !existed, nil
}

func newBackupFixture(t *testing.T, up *fakeUploader) (*BackupService, *LedgerService, *memory.InventoryRepository) {
	t.Helper()
	repo := memory.NewInventoryRepository()
	ledger := openLedger(t, repo)
	factory := func(models.BackupSettings) (Uploader, error) { return up, nil }
	svc := NewBackupService(ledger, repo, factory, logger.NewDiscard())
	svc.now = func() time.Time { return fixedNow }
	return svc, ledger, repo
}

func TestBackupRun_UpsertsFixedName(t *testing.T) {
	ctx := context.Background()
	up := &fakeUploader{objects: map[string][]byte{}}
	svc, ledger, _ := newBackupFixture(t, up)
	it := mustCreate(t, ledger, NewItemInput{Type: models.ItemTypePart, Code: "X1", Name: "widget"}, 3)

	if _, err := svc.UpdateSettings(ctx, models.BackupSettings{ClientID: "backup-bot", FolderID: "/nightly/"}); err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}

	first, err := svc.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !first.Created || first.Items != 1 || first.ObjectName != models.BackupFileName {
		t.Errorf("unexpected first result: %+v", first)
	}
	second, err := svc.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if second.Created {
		t.Error("second run should overwrite, not create")
	}
	if len(up.objects) != 1 {
		t.Fatalf("expected exactly one object, got %d", len(up.objects))
	}
	if up.ensured != 2 {
		t.Errorf("bucket checked %d times, want once per run", up.ensured)
	}

	payload, err := domainsvcs.DecodeBackup(up.objects[models.BackupFileName])
	if err != nil {
		t.Fatalf("DecodeBackup: %v", err)
	}
	if len(payload.Inventory) != 1 || payload.Inventory[0].ID != it.ID {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if got := domainsvcs.StockOf(payload.Inventory[0]); got != 3 {
		t.Errorf("stock in backup = %d, want 3", got)
	}
}

func TestBackupRun_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("not configured", func(t *testing.T) {
		svc, _, _ := newBackupFixture(t, &fakeUploader{objects: map[string][]byte{}})
		if _, err := svc.Run(ctx); !errors.Is(err, inventorydomain.ErrTransport) {
			t.Fatalf("expected ErrTransport, got %v", err)
		}
	})

	t.Run("upload fails", func(t *testing.T) {
		svc, ledger, repo := newBackupFixture(t, &fakeUploader{objects: map[string][]byte{}, err: errors.New("403 forbidden")})
		mustCreate(t, ledger, NewItemInput{Type: models.ItemTypePart, Code: "X1", Name: "widget"}, 1)
		if _, err := svc.UpdateSettings(ctx, models.BackupSettings{ClientID: "backup-bot"}); err != nil {
			t.Fatal(err)
		}
		saves := repo.Saves()

		if _, err := svc.Run(ctx); !errors.Is(err, inventorydomain.ErrTransport) {
			t.Fatalf("expected ErrTransport, got %v", err)
		}
		if repo.Saves() != saves || len(ledger.Items(ctx)) != 1 {
			t.Error("a failed upload must not touch the ledger")
		}
	})

	t.Run("bucket cannot be created", func(t *testing.T) {
		up := &fakeUploader{objects: map[string][]byte{}, bucketErr: errors.New("access denied")}
		svc, ledger, _ := newBackupFixture(t, up)
		mustCreate(t, ledger, NewItemInput{Type: models.ItemTypePart, Code: "X1", Name: "widget"}, 1)
		if _, err := svc.UpdateSettings(ctx, models.BackupSettings{ClientID: "backup-bot"}); err != nil {
			t.Fatal(err)
		}

		if _, err := svc.Run(ctx); !errors.Is(err, inventorydomain.ErrTransport) {
			t.Fatalf("expected ErrTransport, got %v", err)
		}
		if len(up.objects) != 0 {
			t.Error("nothing should be uploaded without a bucket")
		}
	})

	t.Run("factory fails", func(t *testing.T) {
		repo := memory.NewInventoryRepository()
		ledger := openLedger(t, repo)
		factory := func(models.BackupSettings) (Uploader, error) { return nil, errors.New("bad endpoint") }
		svc := NewBackupService(ledger, repo, factory, logger.NewDiscard())
		if _, err := svc.UpdateSettings(ctx, models.BackupSettings{ClientID: "backup-bot"}); err != nil {
			t.Fatal(err)
		}
		if _, err := svc.Run(ctx); !errors.Is(err, inventorydomain.ErrTransport) {
			t.Fatalf("expected ErrTransport, got %v", err)
		}
	})
}

func TestBackupSettings(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newBackupFixture(t, &fakeUploader{objects: map[string][]byte{}})

	if _, err := svc.UpdateSettings(ctx, models.BackupSettings{ClientID: "  "}); !errors.Is(err, inventorydomain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}

	saved, err := svc.UpdateSettings(ctx, models.BackupSettings{ClientID: " bot ", FolderID: "/a/b/"})
	if err != nil {
		t.Fatal(err)
	}
	if saved.ClientID != "bot" || saved.FolderID != "a/b" {
		t.Errorf("unexpected normalized settings: %+v", saved)
	}
	got, err := svc.Settings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got != saved {
		t.Errorf("Settings() = %+v, want %+v", got, saved)
	}
}

func TestBackupSettings_UnreadableFailOpen(t *testing.T) {
	ctx := context.Background()
	var logs bytes.Buffer
	repo := memory.NewInventoryRepository()
	repo.SettingsErr = fmt.Errorf("%w: backup settings: unexpected end of JSON input", inventorydomain.ErrCorruptState)
	up := &fakeUploader{objects: map[string][]byte{}}
	factory := func(models.BackupSettings) (Uploader, error) { return up, nil }
	svc := NewBackupService(openLedger(t, repo), repo, factory, logger.NewWithWriter(&logs, "info"))

	got, err := svc.Settings(ctx)
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if got != (models.BackupSettings{}) {
		t.Errorf("Settings() = %+v, want zero settings", got)
	}
	if !strings.Contains(logs.String(), `"level":"WARN"`) || !strings.Contains(logs.String(), "unreadable") {
		t.Errorf("expected a WARN about unreadable settings, got %s", logs.String())
	}

	if _, err := svc.Run(ctx); !errors.Is(err, inventorydomain.ErrTransport) {
		t.Fatalf("Run with unreadable settings: expected ErrTransport, got %v", err)
	}

	repo.SettingsErr = errors.New("connection refused")
	if _, err := svc.Settings(ctx); err == nil {
		t.Fatal("other load errors must still fail")
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, ledger, _ := newBackupFixture(t, &fakeUploader{objects: map[string][]byte{}})
	bolt := mustCreate(t, ledger, NewItemInput{Type: models.ItemTypePart, Code: "P-1", Name: "bolt"}, 7)
	if _, err := ledger.AddTransaction(ctx, bolt.ID, NewTransactionInput{Type: models.TransactionConsumption, Quantity: 2}); err != nil {
		t.Fatal(err)
	}
	box := mustCreate(t, ledger, NewItemInput{Type: models.ItemTypeProduct, Code: "X-1", Name: "gearbox"}, 1)

	data, err := domainsvcs.EncodeBackup(svc.Snapshot(ctx))
	if err != nil {
		t.Fatal(err)
	}
	payload, err := domainsvcs.DecodeBackup(data)
	if err != nil {
		t.Fatal(err)
	}

	fresh := openLedger(t, memory.NewInventoryRepository())
	if _, err := fresh.Restore(ctx, payload); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	for id, want := range map[string]int{bolt.ID: 5, box.ID: 1} {
		assertStock(t, fresh, id, want)
	}
}
