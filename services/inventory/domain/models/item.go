package models

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ItemType is the category an item belongs to. It never changes after creation.
type ItemType string

const (
	ItemTypePart    ItemType = "part"
	ItemTypeProduct ItemType = "product"
)

// ParseItemType validates s as an ItemType.
func ParseItemType(s string) (ItemType, error) {
	switch t := ItemType(strings.ToLower(strings.TrimSpace(s))); t {
	case ItemTypePart, ItemTypeProduct:
		return t, nil
	default:
		return "", fmt.Errorf("unknown item type %q", s)
	}
}

// Valid reports whether t is one of the known categories, exactly as stored.
func (t ItemType) Valid() bool {
	return t == ItemTypePart || t == ItemTypeProduct
}

// Label is the plural form used in export file names.
func (t ItemType) Label() string {
	return string(t) + "s"
}

// Item is the aggregate root of the ledger: identity fields plus the ordered
// transaction history that stock is derived from.
type Item struct {
	ID               string          `json:"id"`
	Type             ItemType        `json:"type"`
	Code             string          `json:"code"`
	DrawingNumber    string          `json:"drawingNumber,omitempty"`
	Name             string          `json:"name"`
	Spec             string          `json:"spec,omitempty"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	Remarks          string          `json:"remarks,omitempty"`
	RegistrationDate time.Time       `json:"registrationDate"`
	Transactions     []Transaction   `json:"transactions"`
}

// MarshalJSON writes unitPrice as a bare JSON number, the form used by the
// persisted blob and the backup payload. Decoding accepts quoted prices too.
func (i Item) MarshalJSON() ([]byte, error) {
	type plain Item
	return json.Marshal(struct {
		plain
		UnitPrice json.Number `json:"unitPrice"`
	}{plain(i), json.Number(i.UnitPrice.String())})
}

// ItemFields carries the caller-supplied fields of a new item.
type ItemFields struct {
	Type          ItemType
	Code          string
	DrawingNumber string
	Name          string
	Spec          string
	UnitPrice     decimal.Decimal
	Remarks       string
}

// ItemPatch lists the fields an update may change. Nil fields are left untouched.
// ID, Type and RegistrationDate are not patchable.
type ItemPatch struct {
	Code          *string
	DrawingNumber *string
	Name          *string
	Spec          *string
	UnitPrice     *decimal.Decimal
	Remarks       *string
}

// NewItem builds an Item with a generated ID and the given registration time.
// Code and name are normalized to uppercase.
func NewItem(f ItemFields, now time.Time) (*Item, error) {
	itemType, err := ParseItemType(string(f.Type))
	if err != nil {
		return nil, err
	}
	name := NormalizeName(f.Name)
	if name == "" {
		return nil, fmt.Errorf("item name is required")
	}
	if f.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("unit price must not be negative")
	}
	return &Item{
		ID:               NewID(ItemIDPrefix),
		Type:             itemType,
		Code:             NormalizeCode(f.Code),
		DrawingNumber:    strings.TrimSpace(f.DrawingNumber),
		Name:             name,
		Spec:             f.Spec,
		UnitPrice:        f.UnitPrice,
		Remarks:          f.Remarks,
		RegistrationDate: now.UTC(),
		Transactions:     []Transaction{},
	}, nil
}

// NormalizeCode trims and uppercases an item code.
func NormalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// NormalizeName trims and uppercases an item name.
func NormalizeName(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ParseUnitPrice parses a user-supplied price. Input that is not a number
// yields zero.
func ParseUnitPrice(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Transaction returns the transaction with the given id and its index.
func (i *Item) Transaction(id string) (Transaction, int, bool) {
	for idx, tx := range i.Transactions {
		if tx.ID == id {
			return tx, idx, true
		}
	}
	return Transaction{}, -1, false
}

// Clone returns a copy that shares no transaction storage with i.
func (i Item) Clone() Item {
	c := i
	c.Transactions = slices.Clone(i.Transactions)
	if c.Transactions == nil {
		c.Transactions = []Transaction{}
	}
	return c
}

// CloneItems deep-copies a corpus.
func CloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}

// Validate checks the invariants a stored item must satisfy. It is used when a
// corpus arrives from outside the ledger, e.g. a restored backup.
func (i Item) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("item id must be set")
	}
	if !i.Type.Valid() {
		return fmt.Errorf("item %s: unknown item type %q", i.ID, i.Type)
	}
	if i.UnitPrice.IsNegative() {
		return fmt.Errorf("item %s: unit price must not be negative", i.ID)
	}
	seen := make(map[string]struct{}, len(i.Transactions))
	for _, tx := range i.Transactions {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("item %s: %w", i.ID, err)
		}
		if _, dup := seen[tx.ID]; dup {
			return fmt.Errorf("item %s: transaction id %s appears twice", i.ID, tx.ID)
		}
		seen[tx.ID] = struct{}{}
	}
	return nil
}
