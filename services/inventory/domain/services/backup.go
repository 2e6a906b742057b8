package services

import (
	"encoding/json"
	"fmt"
	"time"

	inventorydomain "github.com/ghuser/stockledger/services/inventory/domain"
	"github.com/ghuser/stockledger/services/inventory/domain/models"
)

// Snapshot captures the whole corpus at instant at. The payload owns its own
// copy, so later mutations of items are not visible in it.
func Snapshot(items []models.Item, at time.Time) models.BackupPayload {
	return models.BackupPayload{
		Inventory:  models.CloneItems(items),
		BackupDate: at.UTC(),
	}
}

// EncodeBackup serializes a payload as indented JSON.
func EncodeBackup(p models.BackupPayload) ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}
	return data, nil
}

// DecodeBackup parses a payload produced by EncodeBackup and checks every item
// and transaction. Item ids must be unique.
func DecodeBackup(data []byte) (models.BackupPayload, error) {
	var p models.BackupPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return models.BackupPayload{}, fmt.Errorf("%w: decode backup: %w", inventorydomain.ErrValidation, err)
	}
	if err := ValidateCorpus(p.Inventory); err != nil {
		return models.BackupPayload{}, err
	}
	p.Inventory = models.CloneItems(p.Inventory)
	return p, nil
}

// ValidateCorpus checks every item of a corpus and the uniqueness of item ids.
func ValidateCorpus(items []models.Item) error {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if err := it.Validate(); err != nil {
			return fmt.Errorf("%w: %w", inventorydomain.ErrValidation, err)
		}
		if _, dup := seen[it.ID]; dup {
			return fmt.Errorf("%w: item id %s appears twice", inventorydomain.ErrValidation, it.ID)
		}
		seen[it.ID] = struct{}{}
	}
	return nil
}
