package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/ghuser/stockledger/pkg/logger"
	domainevents "github.com/ghuser/stockledger/services/inventory/domain/events"
	"github.com/ghuser/stockledger/services/inventory/domain/models"
)

// Subscriber is satisfied by *events.EventBus.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, handler func(context.Context, *message.Message) error) (<-chan error, error)
}

// MetricsRecorder is satisfied by *telemetry.InventoryMetrics.
type MetricsRecorder interface {
	RecordMovement(ctx context.Context, movementType string, quantity int)
	ItemsChanged(ctx context.Context, itemType string, delta int64)
}

// RegisterSubscribers wires the ledger event handlers that feed metrics and
// the movement log. Handlers must be idempotent; the bus retries on failure.
func RegisterSubscribers(ctx context.Context, sub Subscriber, rec MetricsRecorder, log logger.Logger) error {
	handlers := map[string]func(context.Context, *message.Message) error{
		domainevents.TopicItemCreated:         handleItemCount(rec, log, 1),
		domainevents.TopicItemDeleted:         handleItemCount(rec, log, -1),
		domainevents.TopicTransactionRecorded: handleMovement(rec, log, true),
		domainevents.TopicTransactionUpdated:  handleMovement(rec, log, false),
		domainevents.TopicTransactionDeleted:  handleMovement(rec, log, false),
	}

	topics := make([]string, 0, len(handlers))
	for topic, h := range handlers {
		errCh, err := sub.Subscribe(ctx, topic, h)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
		go func() {
			for err := range errCh {
				log.ErrorContext(ctx, "subscriber error", "topic", topic, "error", err)
			}
		}()
		topics = append(topics, topic)
	}

	log.Info("event subscribers registered", "topics", topics)
	return nil
}

// SeedItemCounts brings the item counter in line with a corpus loaded at startup.
func SeedItemCounts(ctx context.Context, rec MetricsRecorder, items []models.Item) {
	counts := map[models.ItemType]int64{}
	for _, it := range items {
		counts[it.Type]++
	}
	for typ, n := range counts {
		rec.ItemsChanged(ctx, string(typ), n)
	}
}

func handleItemCount(rec MetricsRecorder, log logger.Logger, delta int64) func(context.Context, *message.Message) error {
	return func(ctx context.Context, msg *message.Message) error {
		var evt domainevents.ItemEvent
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			// a malformed payload will never decode; retrying is pointless
			log.WarnContext(ctx, "dropping undecodable item event", "error", err)
			return nil
		}
		rec.ItemsChanged(ctx, evt.ItemType, delta)
		log.InfoContext(ctx, "item changed",
			"item_id", evt.ItemID,
			"item_type", evt.ItemType,
			"code", evt.Code,
			"delta", delta,
		)
		return nil
	}
}

// handleMovement logs every transaction event. Only newly recorded movements
// add to the counter, which is monotonic.
func handleMovement(rec MetricsRecorder, log logger.Logger, count bool) func(context.Context, *message.Message) error {
	return func(ctx context.Context, msg *message.Message) error {
		var evt domainevents.TransactionEvent
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			log.WarnContext(ctx, "dropping undecodable transaction event", "error", err)
			return nil
		}
		if count {
			rec.RecordMovement(ctx, evt.TransactionType, evt.Quantity)
		}
		log.InfoContext(ctx, "stock movement",
			"item_id", evt.ItemID,
			"transaction_id", evt.TransactionID,
			"type", evt.TransactionType,
			"quantity", evt.Quantity,
			"stock", evt.Stock,
		)
		return nil
	}
}
