// Package redis persists the inventory corpus and backup settings in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ghuser/stockledger/pkg/cache"
	inventorydomain "github.com/ghuser/stockledger/services/inventory/domain"
	"github.com/ghuser/stockledger/services/inventory/domain/models"
)

// Fixed, versioned keys. Bump the suffix on incompatible layout changes.
const (
	InventoryKey = "stockledger:inventory:v1"
	// InventoryVersionKey counts successful saves of InventoryKey. Writers
	// WATCH it so concurrent processes cannot overwrite each other blindly.
	InventoryVersionKey = "stockledger:inventory:v1:version"
	BackupSettingsKey   = "stockledger:backup-settings:v1"
)

// InventoryRepository implements repositories.InventoryRepository and
// repositories.BackupSettingsRepository. The whole corpus is one JSON blob
// written together with its version in a single MULTI/EXEC.
type InventoryRepository struct {
	client *cache.RedisClient
}

// NewInventoryRepository returns a repository backed by the given client.
func NewInventoryRepository(client *cache.RedisClient) *InventoryRepository {
	return &InventoryRepository{client: client}
}

// Load returns the stored corpus and its version, or an empty corpus when the
// key is absent. Undecodable or invalid data is reported as ErrCorruptState.
func (r *InventoryRepository) Load(ctx context.Context) ([]models.Item, int64, error) {
	var blob, ver *goredis.StringCmd
	_, err := r.client.Client().TxPipelined(ctx, func(p goredis.Pipeliner) error {
		blob = p.Get(ctx, InventoryKey)
		ver = p.Get(ctx, InventoryVersionKey)
		return nil
	})
	if err != nil && !errors.Is(err, goredis.Nil) {
		return nil, 0, fmt.Errorf("get inventory: %w", err)
	}

	version, err := versionOf(ver)
	if err != nil {
		return nil, 0, err
	}
	data, err := blob.Bytes()
	if errors.Is(err, goredis.Nil) {
		return []models.Item{}, version, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("get inventory: %w", err)
	}
	items, err := decodeInventory(data)
	return items, version, err
}

// Version returns the current corpus version; 0 when nothing was saved yet.
func (r *InventoryRepository) Version(ctx context.Context) (int64, error) {
	return versionOf(r.client.Client().Get(ctx, InventoryVersionKey))
}

// Save overwrites the stored corpus with items if the version is still
// expected. A concurrent save between the check and EXEC aborts the
// transaction and is reported as ErrStaleState too.
func (r *InventoryRepository) Save(ctx context.Context, items []models.Item, expected int64) (int64, error) {
	if items == nil {
		items = []models.Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return 0, fmt.Errorf("encode inventory: %w", err)
	}

	next := expected + 1
	err = r.client.Client().Watch(ctx, func(tx *goredis.Tx) error {
		current, err := versionOf(tx.Get(ctx, InventoryVersionKey))
		if err != nil {
			return err
		}
		if current != expected {
			return fmt.Errorf("%w: stored version %d, expected %d", inventorydomain.ErrStaleState, current, expected)
		}
		_, err = tx.TxPipelined(ctx, func(p goredis.Pipeliner) error {
			p.Set(ctx, InventoryKey, data, 0)
			p.Set(ctx, InventoryVersionKey, next, 0)
			return nil
		})
		return err
	}, InventoryVersionKey)

	switch {
	case errors.Is(err, goredis.TxFailedErr):
		return 0, fmt.Errorf("%w: version moved during save", inventorydomain.ErrStaleState)
	case errors.Is(err, inventorydomain.ErrStaleState):
		return 0, err
	case err != nil:
		return 0, fmt.Errorf("set inventory: %w", err)
	}
	return next, nil
}

func versionOf(cmd *goredis.StringCmd) (int64, error) {
	v, err := cmd.Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get inventory version: %w", err)
	}
	return v, nil
}

// LoadSettings returns the saved backup settings, or the zero value.
func (r *InventoryRepository) LoadSettings(ctx context.Context) (models.BackupSettings, error) {
	var s models.BackupSettings
	data, err := r.client.Client().Get(ctx, BackupSettingsKey).Bytes()
	if errors.Is(err, goredis.Nil) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("get backup settings: %w", err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return models.BackupSettings{}, fmt.Errorf("%w: backup settings: %w", inventorydomain.ErrCorruptState, err)
	}
	return s, nil
}

// SaveSettings overwrites the saved backup settings.
func (r *InventoryRepository) SaveSettings(ctx context.Context, s models.BackupSettings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode backup settings: %w", err)
	}
	if err := r.client.Client().Set(ctx, BackupSettingsKey, data, 0).Err(); err != nil {
		return fmt.Errorf("set backup settings: %w", err)
	}
	return nil
}

func decodeInventory(data []byte) ([]models.Item, error) {
	var items []models.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %w", inventorydomain.ErrCorruptState, err)
	}
	for _, it := range items {
		if err := it.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", inventorydomain.ErrCorruptState, err)
		}
	}
	return models.CloneItems(items), nil
}
