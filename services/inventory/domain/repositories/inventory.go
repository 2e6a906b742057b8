package repositories

import (
	"context"

	"github.com/ghuser/stockledger/services/inventory/domain/models"
)

// InventoryRepository persists the whole item corpus as one unit.
// The domain layer owns this interface; infrastructure implements it.
type InventoryRepository interface {
	// Load returns the last saved corpus and its version. An empty store
	// yields an empty, non-nil slice at version 0. Undecodable state is
	// reported wrapped in ErrCorruptState along with the version it was read at.
	Load(ctx context.Context) ([]models.Item, int64, error)

	// Version returns the version of the stored corpus without decoding it.
	Version(ctx context.Context) (int64, error)

	// Save replaces the stored corpus only if it is still at version expected,
	// and returns the new version. When another writer got there first nothing
	// is stored and the error wraps ErrStaleState.
	Save(ctx context.Context, items []models.Item, expected int64) (int64, error)
}

// BackupSettingsRepository persists the remote backup destination.
type BackupSettingsRepository interface {
	// LoadSettings returns the zero value when nothing was saved yet.
	LoadSettings(ctx context.Context) (models.BackupSettings, error)
	SaveSettings(ctx context.Context, s models.BackupSettings) error
}
