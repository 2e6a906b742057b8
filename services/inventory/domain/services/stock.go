// Package services contains stateless domain services for the inventory
// bounded context: stock derivation, duplicate checks, search, export and
// backup serialization. None of them mutate their inputs.
package services

import "github.com/ghuser/stockledger/services/inventory/domain/models"

// StockOf derives the current stock of an item from its transaction history:
// purchases add, consumptions subtract. An empty history yields 0.
//
// This is the only place stock is computed; nothing stores it.
func StockOf(item models.Item) int {
	stock := 0
	for _, tx := range item.Transactions {
		switch tx.Type {
		case models.TransactionPurchase:
			stock += tx.Quantity
		case models.TransactionConsumption:
			stock -= tx.Quantity
		}
	}
	return stock
}
