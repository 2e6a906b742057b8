package services

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ghuser/stockledger/services/inventory/domain/models"
)

var testDate = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

func purchase(id string, qty int) models.Transaction {
	return models.Transaction{ID: id, Type: models.TransactionPurchase, Quantity: qty, Date: testDate}
}

func consumption(id string, qty int) models.Transaction {
	return models.Transaction{ID: id, Type: models.TransactionConsumption, Quantity: qty, Date: testDate}
}

func item(id string, typ models.ItemType, code, name string, txs ...models.Transaction) models.Item {
	if txs == nil {
		txs = []models.Transaction{}
	}
	return models.Item{
		ID:               id,
		Type:             typ,
		Code:             code,
		Name:             name,
		UnitPrice:        decimal.Zero,
		RegistrationDate: testDate,
		Transactions:     txs,
	}
}
