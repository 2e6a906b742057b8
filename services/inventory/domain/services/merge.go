package services

import (
	"fmt"
	"strings"

	inventorydomain "github.com/ghuser/stockledger/services/inventory/domain"
	"github.com/ghuser/stockledger/services/inventory/domain/models"
)

// ItemMergeFunc applies patch to current. corpus is the rest of the ledger at
// the time of the update, for variants that re-check uniqueness.
type ItemMergeFunc func(current models.Item, patch models.ItemPatch, corpus []models.Item) (models.Item, error)

// MergeItem copies every non-nil patch field onto current. It does not re-run
// required-field or duplicate checks; callers validate before updating.
// Code and name are still normalized, and a negative price is rejected.
func MergeItem(current models.Item, patch models.ItemPatch, _ []models.Item) (models.Item, error) {
	merged := current.Clone()
	if patch.Code != nil {
		merged.Code = models.NormalizeCode(*patch.Code)
	}
	if patch.DrawingNumber != nil {
		merged.DrawingNumber = strings.TrimSpace(*patch.DrawingNumber)
	}
	if patch.Name != nil {
		merged.Name = models.NormalizeName(*patch.Name)
	}
	if patch.Spec != nil {
		merged.Spec = *patch.Spec
	}
	if patch.UnitPrice != nil {
		if patch.UnitPrice.IsNegative() {
			return models.Item{}, fmt.Errorf("%w: unit price must not be negative", inventorydomain.ErrValidation)
		}
		merged.UnitPrice = *patch.UnitPrice
	}
	if patch.Remarks != nil {
		merged.Remarks = *patch.Remarks
	}
	return merged, nil
}

// StrictMergeItem is MergeItem followed by the checks CreateItem runs: the
// name must stay non-blank and code/drawing number must stay unique.
func StrictMergeItem(current models.Item, patch models.ItemPatch, corpus []models.Item) (models.Item, error) {
	merged, err := MergeItem(current, patch, corpus)
	if err != nil {
		return models.Item{}, err
	}
	if merged.Name == "" {
		return models.Item{}, fmt.Errorf("%w: item name is required", inventorydomain.ErrValidation)
	}
	if err := CheckDuplicates(merged.Code, merged.DrawingNumber, corpus, current.ID); err != nil {
		return models.Item{}, err
	}
	return merged, nil
}

// MergeTransaction copies every non-nil patch field onto current, keeping its
// id. The result must still have a known type and a positive quantity.
func MergeTransaction(current models.Transaction, patch models.TransactionPatch) (models.Transaction, error) {
	merged := current
	if patch.Type != nil {
		merged.Type = *patch.Type
	}
	if patch.Quantity != nil {
		merged.Quantity = *patch.Quantity
	}
	if patch.Date != nil {
		merged.Date = patch.Date.UTC()
	}
	if patch.Remarks != nil {
		merged.Remarks = *patch.Remarks
	}
	if patch.SerialNumber != nil {
		merged.SerialNumber = strings.TrimSpace(*patch.SerialNumber)
	}
	if err := merged.Validate(); err != nil {
		return models.Transaction{}, fmt.Errorf("%w: %w", inventorydomain.ErrValidation, err)
	}
	return merged, nil
}
