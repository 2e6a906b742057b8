package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewItem(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	fields := ItemFields{
		Type:          ItemTypePart,
		Code:          " a1 ",
		DrawingNumber: " dwg-7 ",
		Name:          "widget",
		UnitPrice:     decimal.RequireFromString("12.50"),
	}

	t.Run("normalizes code and name", func(t *testing.T) {
		item, err := NewItem(fields, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item.Code != "A1" {
			t.Fatalf("expected code %q, got %q", "A1", item.Code)
		}
		if item.Name != "WIDGET" {
			t.Fatalf("expected name %q, got %q", "WIDGET", item.Name)
		}
		if item.DrawingNumber != "dwg-7" {
			t.Fatalf("expected drawing number trimmed, got %q", item.DrawingNumber)
		}
	})

	t.Run("assigns id and registration date", func(t *testing.T) {
		item, err := NewItem(fields, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(item.ID, ItemIDPrefix+"_") {
			t.Fatalf("expected %q prefix, got %q", ItemIDPrefix, item.ID)
		}
		if !item.RegistrationDate.Equal(now) {
			t.Fatalf("expected registration date %v, got %v", now, item.RegistrationDate)
		}
		if item.Transactions == nil || len(item.Transactions) != 0 {
			t.Fatalf("expected empty non-nil transactions, got %#v", item.Transactions)
		}
	})

	t.Run("blank name returns error", func(t *testing.T) {
		f := fields
		f.Name = "   "
		if _, err := NewItem(f, now); err == nil {
			t.Fatal("expected error, got nil")
		}
	})

	t.Run("unknown type returns error", func(t *testing.T) {
		f := fields
		f.Type = "tool"
		if _, err := NewItem(f, now); err == nil {
			t.Fatal("expected error, got nil")
		}
	})

	t.Run("negative price returns error", func(t *testing.T) {
		f := fields
		f.UnitPrice = decimal.NewFromInt(-1)
		if _, err := NewItem(f, now); err == nil {
			t.Fatal("expected error, got nil")
		}
	})

	t.Run("generates unique IDs on each call", func(t *testing.T) {
		a, _ := NewItem(fields, now)
		b, _ := NewItem(fields, now)
		if a.ID == b.ID {
			t.Fatal("expected unique IDs, got identical")
		}
	})
}

func TestParseUnitPrice(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12.5", "12.5"},
		{" 3 ", "3"},
		{"", "0"},
		{"abc", "0"},
		{"1,000", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseUnitPrice(tt.in); got.String() != tt.want {
				t.Fatalf("ParseUnitPrice(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseItemType(t *testing.T) {
	if got, err := ParseItemType("Product"); err != nil || got != ItemTypeProduct {
		t.Fatalf("expected product, got %q, %v", got, err)
	}
	if _, err := ParseItemType(""); err == nil {
		t.Fatal("expected error for empty type")
	}
	if ItemTypePart.Label() != "parts" {
		t.Fatalf("unexpected label %q", ItemTypePart.Label())
	}
}

func TestItem_Clone(t *testing.T) {
	item := Item{ID: "itm_1", Transactions: []Transaction{{ID: "txn_1", Type: TransactionPurchase, Quantity: 2}}}
	c := item.Clone()
	c.Transactions[0].Quantity = 99
	if item.Transactions[0].Quantity != 2 {
		t.Fatal("clone must not share transaction storage")
	}

	empty := Item{ID: "itm_2"}.Clone()
	if empty.Transactions == nil {
		t.Fatal("clone must normalize nil transactions")
	}
}

func TestItem_Validate(t *testing.T) {
	valid := Item{
		ID:   "itm_1",
		Type: ItemTypePart,
		Name: "WIDGET",
		Transactions: []Transaction{
			{ID: "txn_1", Type: TransactionPurchase, Quantity: 3},
		},
	}

	tests := []struct {
		name    string
		mutate  func(*Item)
		wantErr bool
	}{
		{"valid", func(*Item) {}, false},
		{"missing id", func(i *Item) { i.ID = "" }, true},
		{"bad type", func(i *Item) { i.Type = "tool" }, true},
		{"negative price", func(i *Item) { i.UnitPrice = decimal.NewFromInt(-5) }, true},
		{"zero quantity", func(i *Item) { i.Transactions[0].Quantity = 0 }, true},
		{"duplicate transaction id", func(i *Item) {
			i.Transactions = append(i.Transactions, i.Transactions[0])
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := valid.Clone()
			tt.mutate(&item)
			if err := item.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}

func TestItem_JSONFieldNames(t *testing.T) {
	item := Item{
		ID:               "itm_1",
		Type:             ItemTypePart,
		Code:             "X1",
		DrawingNumber:    "D-1",
		Name:             "WIDGET",
		UnitPrice:        decimal.RequireFromString("4.25"),
		RegistrationDate: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Transactions:     []Transaction{},
	}
	data, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal to map failed: %v", err)
	}
	for _, field := range []string{"id", "type", "code", "drawingNumber", "name", "unitPrice", "registrationDate", "transactions"} {
		if _, ok := raw[field]; !ok {
			t.Errorf("expected JSON field %q not found in: %s", field, data)
		}
	}
	if _, ok := raw["unitPrice"].(float64); !ok {
		t.Errorf("expected unitPrice to be a JSON number, got %T", raw["unitPrice"])
	}
}

func TestItem_UnitPriceJSON(t *testing.T) {
	item := Item{ID: "itm_1", Type: ItemTypePart, UnitPrice: decimal.RequireFromString("1234.10"), Transactions: []Transaction{}}

	data, err := json.Marshal([]Item{item})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"unitPrice":1234.1`) {
		t.Errorf("unitPrice should be a bare number: %s", data)
	}
	if decimal.MarshalJSONWithoutQuotes {
		t.Error("encoding items must not rely on the package-wide decimal setting")
	}

	tests := []struct {
		name string
		json string
	}{
		{"number", `{"id":"itm_1","unitPrice":1234.1}`},
		{"quoted", `{"id":"itm_1","unitPrice":"1234.10"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Item
			if err := json.Unmarshal([]byte(tt.json), &got); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if !got.UnitPrice.Equal(item.UnitPrice) {
				t.Errorf("UnitPrice = %s, want %s", got.UnitPrice, item.UnitPrice)
			}
		})
	}
}
