package services

import (
	"context"
	"fmt"

	"github.com/ghuser/stockledger/pkg/app"
	"github.com/ghuser/stockledger/services/inventory/domain/models"
	"github.com/ghuser/stockledger/services/inventory/domain/repositories"
	domainsvcs "github.com/ghuser/stockledger/services/inventory/domain/services"
	"github.com/ghuser/stockledger/services/inventory/infrastructure/backup"
	"github.com/ghuser/stockledger/services/inventory/infrastructure/persistence/memory"
	redisrepo "github.com/ghuser/stockledger/services/inventory/infrastructure/persistence/redis"
)

// Store is the persistence the inventory context needs: the corpus and the
// backup settings.
type Store interface {
	repositories.InventoryRepository
	repositories.BackupSettingsRepository
}

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Ledger *LedgerService
	Backup *BackupService
	Export *ExportService
	// StrictSerials mirrors WithUniqueSerials for the advisory serial check.
	StrictSerials bool
}

// New wires all inventory application services with infrastructure from the
// Application container and loads the corpus.
func New(ctx context.Context, a *app.Application) (*Services, error) {
	return NewWithStore(ctx, a, storeFor(a))
}

// NewWithStore is New with an explicit store.
func NewWithStore(ctx context.Context, a *app.Application, store Store) (*Services, error) {
	opts := []LedgerOption{}
	if a.EventBus != nil {
		opts = append(opts, WithPublisher(a.EventBus))
	}
	if a.Config != nil && a.Config.StrictUpdates {
		opts = append(opts, WithItemMerge(domainsvcs.StrictMergeItem))
	}
	strictSerials := a.Config != nil && a.Config.StrictSerials
	if strictSerials {
		opts = append(opts, WithUniqueSerials())
	}

	ledger, err := Open(ctx, store, a.Authenticator, a.Logger, opts...)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	return &Services{
		Ledger:        ledger,
		Backup:        NewBackupService(ledger, store, minioFactory(a), a.Logger),
		Export:        NewExportService(ledger),
		StrictSerials: strictSerials,
	}, nil
}

func storeFor(a *app.Application) Store {
	if a.Redis == nil {
		return memory.NewInventoryRepository()
	}
	return redisrepo.NewInventoryRepository(a.Redis)
}

// minioFactory builds the backup uploader per run so settings changes apply
// without a restart.
func minioFactory(a *app.Application) UploaderFactory {
	return func(s models.BackupSettings) (Uploader, error) {
		if a.Config == nil {
			return nil, fmt.Errorf("backup destination is not configured")
		}
		return backup.NewMinioUploader(backup.MinioConfig{
			Endpoint:        a.Config.MinioEndpoint,
			Bucket:          a.Config.MinioBucket,
			AccessKeyID:     s.ClientID,
			SecretAccessKey: a.Config.MinioSecretKey,
			UseSSL:          a.Config.MinioUseSSL,
			Folder:          s.FolderID,
		})
	}
}
