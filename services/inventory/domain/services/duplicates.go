package services

import (
	"strings"

	inventorydomain "github.com/ghuser/stockledger/services/inventory/domain"
	"github.com/ghuser/stockledger/services/inventory/domain/models"
)

// IsDuplicateCode reports whether any item already carries candidate as its
// code, ignoring case. Blank candidates are never duplicates.
func IsDuplicateCode(candidate string, items []models.Item) bool {
	return isDuplicate(candidate, items, "", func(it models.Item) string { return it.Code })
}

// IsDuplicateDrawingNumber applies the IsDuplicateCode rule to drawing numbers.
func IsDuplicateDrawingNumber(candidate string, items []models.Item) bool {
	return isDuplicate(candidate, items, "", func(it models.Item) string { return it.DrawingNumber })
}

// CheckDuplicates returns a *DuplicateError for the first of code or
// drawingNumber that collides with an item other than excludeID.
func CheckDuplicates(code, drawingNumber string, items []models.Item, excludeID string) error {
	if isDuplicate(code, items, excludeID, func(it models.Item) string { return it.Code }) {
		return &inventorydomain.DuplicateError{Field: inventorydomain.FieldCode, Value: models.NormalizeCode(code)}
	}
	if isDuplicate(drawingNumber, items, excludeID, func(it models.Item) string { return it.DrawingNumber }) {
		return &inventorydomain.DuplicateError{Field: inventorydomain.FieldDrawingNumber, Value: strings.TrimSpace(drawingNumber)}
	}
	return nil
}

func isDuplicate(candidate string, items []models.Item, excludeID string, field func(models.Item) string) bool {
	c := foldKey(candidate)
	if c == "" {
		return false
	}
	for _, it := range items {
		if it.ID == excludeID {
			continue
		}
		if foldKey(field(it)) == c {
			return true
		}
	}
	return false
}

func foldKey(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
