package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics published by the ledger after each successful flush.
// Consumers subscribe via EventBus.Subscribe(ctx, topic).
const (
	TopicItemCreated         = "inventory.item.created"
	TopicItemUpdated         = "inventory.item.updated"
	TopicItemDeleted         = "inventory.item.deleted"
	TopicTransactionRecorded = "inventory.transaction.recorded"
	TopicTransactionUpdated  = "inventory.transaction.updated"
	TopicTransactionDeleted  = "inventory.transaction.deleted"
)

// SchemaVersion is bumped on breaking payload changes.
const SchemaVersion = 1

// ItemTopics and TransactionTopics group the topics by payload type.
var (
	ItemTopics        = []string{TopicItemCreated, TopicItemUpdated, TopicItemDeleted}
	TransactionTopics = []string{TopicTransactionRecorded, TopicTransactionUpdated, TopicTransactionDeleted}
)

// ItemEvent describes a change to an item's master data.
type ItemEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Version    int       `json:"version"`
	ItemID     string    `json:"item_id"`
	ItemType   string    `json:"item_type"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	Stock      int       `json:"stock"`
	OccurredAt time.Time `json:"occurred_at"`
}

// TransactionEvent describes a stock movement being recorded, edited or removed.
// Stock is the item's derived stock after the change.
type TransactionEvent struct {
	EventID         uuid.UUID `json:"event_id"`
	Version         int       `json:"version"`
	ItemID          string    `json:"item_id"`
	TransactionID   string    `json:"transaction_id"`
	TransactionType string    `json:"transaction_type"`
	Quantity        int       `json:"quantity"`
	Stock           int       `json:"stock"`
	OccurredAt      time.Time `json:"occurred_at"`
}
