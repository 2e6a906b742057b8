// Package memory keeps the inventory corpus in process memory. It backs
// STORAGE=memory and the application tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	inventorydomain "github.com/ghuser/stockledger/services/inventory/domain"
	"github.com/ghuser/stockledger/services/inventory/domain/models"
)

// InventoryRepository implements repositories.InventoryRepository and
// repositories.BackupSettingsRepository. Stored values are deep copies, so
// callers never share memory with the repository.
type InventoryRepository struct {
	mu       sync.Mutex
	items    []models.Item
	version  int64
	settings models.BackupSettings

	// SaveErr, when set, is returned by Save without storing anything.
	SaveErr error
	// LoadErr, when set, is returned by Load.
	LoadErr error
	// SettingsErr, when set, is returned by LoadSettings.
	SettingsErr error
	saves   int
}

// NewInventoryRepository returns a repository seeded with a copy of items.
func NewInventoryRepository(items ...models.Item) *InventoryRepository {
	return &InventoryRepository{items: models.CloneItems(items)}
}

func (r *InventoryRepository) Load(context.Context) ([]models.Item, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.LoadErr != nil {
		return nil, r.version, r.LoadErr
	}
	return models.CloneItems(r.items), r.version, nil
}

func (r *InventoryRepository) Version(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.LoadErr != nil {
		return 0, r.LoadErr
	}
	return r.version, nil
}

func (r *InventoryRepository) Save(_ context.Context, items []models.Item, expected int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.SaveErr != nil {
		return 0, r.SaveErr
	}
	if expected != r.version {
		return 0, fmt.Errorf("%w: stored version %d, expected %d", inventorydomain.ErrStaleState, r.version, expected)
	}
	r.items = models.CloneItems(items)
	r.version++
	r.saves++
	return r.version, nil
}

// Saves reports how many Save calls succeeded.
func (r *InventoryRepository) Saves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

func (r *InventoryRepository) LoadSettings(context.Context) (models.BackupSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.SettingsErr != nil {
		return models.BackupSettings{}, r.SettingsErr
	}
	return r.settings, nil
}

func (r *InventoryRepository) SaveSettings(_ context.Context, s models.BackupSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings = s
	return nil
}
