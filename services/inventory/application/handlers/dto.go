package handlers

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ghuser/stockledger/services/inventory/domain/models"
	domainsvcs "github.com/ghuser/stockledger/services/inventory/domain/services"
)

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// TransactionResponse is one movement as returned by the API.
type TransactionResponse struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Quantity     int       `json:"quantity"`
	Date         time.Time `json:"date"`
	Remarks      string    `json:"remarks,omitempty"`
	SerialNumber string    `json:"serial_number,omitempty"`
}

// ItemResponse is an item with its derived stock. Transactions are only
// included on single-item reads.
type ItemResponse struct {
	ID               string                `json:"id"`
	Type             string                `json:"type"`
	Code             string                `json:"code"`
	DrawingNumber    string                `json:"drawing_number,omitempty"`
	Name             string                `json:"name"`
	Spec             string                `json:"spec,omitempty"`
	UnitPrice        Price                 `json:"unit_price"`
	Remarks          string                `json:"remarks,omitempty"`
	RegistrationDate time.Time             `json:"registration_date"`
	Stock            int                   `json:"stock"`
	Transactions     []TransactionResponse `json:"transactions,omitempty"`
}

func toTransactionResponse(tx models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:           tx.ID,
		Type:         string(tx.Type),
		Quantity:     tx.Quantity,
		Date:         tx.Date,
		Remarks:      tx.Remarks,
		SerialNumber: tx.SerialNumber,
	}
}

func toItemResponse(it models.Item, withTransactions bool) ItemResponse {
	resp := ItemResponse{
		ID:               it.ID,
		Type:             string(it.Type),
		Code:             it.Code,
		DrawingNumber:    it.DrawingNumber,
		Name:             it.Name,
		Spec:             it.Spec,
		UnitPrice:        Price{it.UnitPrice},
		Remarks:          it.Remarks,
		RegistrationDate: it.RegistrationDate,
		Stock:            domainsvcs.StockOf(it),
	}
	if withTransactions {
		resp.Transactions = make([]TransactionResponse, len(it.Transactions))
		for i, tx := range it.Transactions {
			resp.Transactions[i] = toTransactionResponse(tx)
		}
	}
	return resp
}

// Price is written as a JSON number. It accepts a number or a string; text
// that is not a number becomes zero.
type Price struct {
	decimal.Decimal
}

func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.Decimal.String()), nil
}

func (p *Price) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		p.Decimal = decimal.Zero
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		s = string(data)
	}
	p.Decimal = models.ParseUnitPrice(s)
	return nil
}
