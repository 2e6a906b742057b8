package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ghuser/stockledger/pkg/logger"
	inventorydomain "github.com/ghuser/stockledger/services/inventory/domain"
	"github.com/ghuser/stockledger/services/inventory/domain/models"
	"github.com/ghuser/stockledger/services/inventory/domain/repositories"
	domainsvcs "github.com/ghuser/stockledger/services/inventory/domain/services"
)

// Uploader stores a named object in the backup destination. created reports
// whether the object did not exist before.
type Uploader interface {
	// EnsureBucket creates the destination bucket on first use.
	EnsureBucket(ctx context.Context) error
	Upsert(ctx context.Context, name string, data []byte) (created bool, err error)
}

// UploaderFactory builds an Uploader for the persisted backup settings.
type UploaderFactory func(models.BackupSettings) (Uploader, error)

// BackupResult describes one completed upload.
type BackupResult struct {
	ObjectName string    `json:"object_name"`
	Created    bool      `json:"created"`
	Items      int       `json:"items"`
	BackupDate time.Time `json:"backup_date"`
}

// BackupService snapshots the ledger and ships it to the backup destination.
// A failed upload never touches the ledger.
type BackupService struct {
	ledger      *LedgerService
	settings    repositories.BackupSettingsRepository
	newUploader UploaderFactory
	log         logger.Logger
	now         func() time.Time
}

// NewBackupService wires a BackupService.
func NewBackupService(ledger *LedgerService, settings repositories.BackupSettingsRepository, newUploader UploaderFactory, log logger.Logger) *BackupService {
	return &BackupService{
		ledger:      ledger,
		settings:    settings,
		newUploader: newUploader,
		log:         log,
		now:         time.Now,
	}
}

// Snapshot captures the current corpus.
func (b *BackupService) Snapshot(ctx context.Context) models.BackupPayload {
	return domainsvcs.Snapshot(b.ledger.Items(ctx), b.now())
}

// Run snapshots the corpus and upserts it as models.BackupFileName.
func (b *BackupService) Run(ctx context.Context) (BackupResult, error) {
	settings, err := b.Settings(ctx)
	if err != nil {
		return BackupResult{}, err
	}
	if strings.TrimSpace(settings.ClientID) == "" {
		return BackupResult{}, fmt.Errorf("%w: backup client id is not configured", inventorydomain.ErrTransport)
	}

	uploader, err := b.newUploader(settings)
	if err != nil {
		return BackupResult{}, asTransport(err)
	}

	payload := b.Snapshot(ctx)
	data, err := domainsvcs.EncodeBackup(payload)
	if err != nil {
		return BackupResult{}, err
	}

	if err := uploader.EnsureBucket(ctx); err != nil {
		b.log.ErrorContext(ctx, "backup bucket unavailable", "error", err)
		return BackupResult{}, asTransport(err)
	}
	created, err := uploader.Upsert(ctx, models.BackupFileName, data)
	if err != nil {
		b.log.ErrorContext(ctx, "backup upload failed", "error", err)
		return BackupResult{}, asTransport(err)
	}

	result := BackupResult{
		ObjectName: models.BackupFileName,
		Created:    created,
		Items:      len(payload.Inventory),
		BackupDate: payload.BackupDate,
	}
	b.log.InfoContext(ctx, "backup uploaded",
		"object", result.ObjectName,
		"created", result.Created,
		"items", result.Items,
	)
	return result, nil
}

// Settings returns the persisted backup settings. Unreadable settings are
// logged and reported as unset, so the operator can simply save new ones.
func (b *BackupService) Settings(ctx context.Context) (models.BackupSettings, error) {
	s, err := b.settings.LoadSettings(ctx)
	switch {
	case errors.Is(err, inventorydomain.ErrCorruptState):
		b.log.WarnContext(ctx, "persisted backup settings are unreadable, treating them as unset", "error", err)
		return models.BackupSettings{}, nil
	case err != nil:
		return models.BackupSettings{}, fmt.Errorf("load backup settings: %w", err)
	}
	return s, nil
}

// UpdateSettings stores new backup settings. The client id is required.
func (b *BackupService) UpdateSettings(ctx context.Context, s models.BackupSettings) (models.BackupSettings, error) {
	s.ClientID = strings.TrimSpace(s.ClientID)
	s.FolderID = strings.Trim(strings.TrimSpace(s.FolderID), "/")
	if s.ClientID == "" {
		return models.BackupSettings{}, fmt.Errorf("%w: client id is required", inventorydomain.ErrValidation)
	}
	if err := b.settings.SaveSettings(ctx, s); err != nil {
		return models.BackupSettings{}, fmt.Errorf("save backup settings: %w", err)
	}
	return s, nil
}

func asTransport(err error) error {
	if errors.Is(err, inventorydomain.ErrTransport) {
		return err
	}
	return fmt.Errorf("%w: %w", inventorydomain.ErrTransport, err)
}
