package services

import (
	"slices"
	"strings"

	"github.com/ghuser/stockledger/services/inventory/domain/models"
)

// UsedSerials lists every serial number recorded on any transaction, sorted
// and without repeats. The presentation layer uses it to warn about reuse.
func UsedSerials(items []models.Item) []string {
	var out []string
	for _, it := range items {
		for _, tx := range it.Transactions {
			if s := strings.TrimSpace(tx.SerialNumber); s != "" {
				out = append(out, s)
			}
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// IsDuplicateSerial reports whether candidate is already used by a transaction
// other than excludeTxID, ignoring case. Blank candidates are never duplicates.
func IsDuplicateSerial(candidate string, items []models.Item, excludeTxID string) bool {
	c := foldKey(candidate)
	if c == "" {
		return false
	}
	for _, it := range items {
		for _, tx := range it.Transactions {
			if tx.ID == excludeTxID {
				continue
			}
			if foldKey(tx.SerialNumber) == c {
				return true
			}
		}
	}
	return false
}
