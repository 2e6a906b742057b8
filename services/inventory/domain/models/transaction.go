package models

import (
	"fmt"
	"strings"
	"time"
)

// TransactionType is the direction of a stock movement.
type TransactionType string

const (
	TransactionPurchase    TransactionType = "purchase"
	TransactionConsumption TransactionType = "consumption"
)

// ParseTransactionType validates s as a TransactionType.
func ParseTransactionType(s string) (TransactionType, error) {
	switch t := TransactionType(strings.ToLower(strings.TrimSpace(s))); t {
	case TransactionPurchase, TransactionConsumption:
		return t, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
}

// Valid reports whether t is one of the known movement types, exactly as stored.
func (t TransactionType) Valid() bool {
	return t == TransactionPurchase || t == TransactionConsumption
}

// Transaction is one recorded movement against an item. Quantity is always a
// positive magnitude; the direction comes from Type.
type Transaction struct {
	ID           string          `json:"id"`
	Type         TransactionType `json:"type"`
	Quantity     int             `json:"quantity"`
	Date         time.Time       `json:"date"`
	Remarks      string          `json:"remarks,omitempty"`
	SerialNumber string          `json:"serialNumber,omitempty"`
}

// TransactionFields carries the caller-supplied fields of a new transaction.
type TransactionFields struct {
	Type         TransactionType
	Quantity     int
	Date         time.Time
	Remarks      string
	SerialNumber string
}

// TransactionPatch lists the fields an update may change. Nil fields are left untouched.
type TransactionPatch struct {
	Type         *TransactionType
	Quantity     *int
	Date         *time.Time
	Remarks      *string
	SerialNumber *string
}

// NewTransaction builds a Transaction with a generated ID. A zero Date is
// replaced by now.
func NewTransaction(f TransactionFields, now time.Time) (Transaction, error) {
	txType, err := ParseTransactionType(string(f.Type))
	if err != nil {
		return Transaction{}, err
	}
	if f.Quantity <= 0 {
		return Transaction{}, fmt.Errorf("quantity must be positive, got %d", f.Quantity)
	}
	date := f.Date
	if date.IsZero() {
		date = now
	}
	return Transaction{
		ID:           NewID(TransactionIDPrefix),
		Type:         txType,
		Quantity:     f.Quantity,
		Date:         date.UTC(),
		Remarks:      f.Remarks,
		SerialNumber: strings.TrimSpace(f.SerialNumber),
	}, nil
}

// Validate checks the invariants a stored transaction must satisfy.
func (t Transaction) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("transaction id must be set")
	}
	if !t.Type.Valid() {
		return fmt.Errorf("transaction %s: unknown transaction type %q", t.ID, t.Type)
	}
	if t.Quantity <= 0 {
		return fmt.Errorf("transaction %s: quantity must be positive, got %d", t.ID, t.Quantity)
	}
	return nil
}
