package services

import (
	"iter"
	"strings"

	"github.com/ghuser/stockledger/services/inventory/domain/models"
)

// Filter yields the items of the given category whose name or code contains
// query, case-insensitively. Products also match on any transaction serial
// number. A blank query keeps the whole category. Order follows items.
//
// The returned sequence is lazy and may be ranged over more than once.
func Filter(items []models.Item, category models.ItemType, query string) iter.Seq[models.Item] {
	q := strings.ToLower(strings.TrimSpace(query))
	return func(yield func(models.Item) bool) {
		for _, it := range items {
			if it.Type != category {
				continue
			}
			if q != "" && !matches(it, q) {
				continue
			}
			if !yield(it) {
				return
			}
		}
	}
}

func matches(it models.Item, q string) bool {
	if strings.Contains(strings.ToLower(it.Name), q) || strings.Contains(strings.ToLower(it.Code), q) {
		return true
	}
	if it.Type != models.ItemTypeProduct {
		return false
	}
	for _, tx := range it.Transactions {
		if strings.Contains(strings.ToLower(tx.SerialNumber), q) {
			return true
		}
	}
	return false
}
