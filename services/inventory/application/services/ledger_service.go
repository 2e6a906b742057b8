package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/stockledger/pkg/auth"
	"github.com/ghuser/stockledger/pkg/logger"
	inventorydomain "github.com/ghuser/stockledger/services/inventory/domain"
	domainevents "github.com/ghuser/stockledger/services/inventory/domain/events"
	"github.com/ghuser/stockledger/services/inventory/domain/models"
	"github.com/ghuser/stockledger/services/inventory/domain/repositories"
	domainsvcs "github.com/ghuser/stockledger/services/inventory/domain/services"
)

// InitialStockRemark is recorded on the purchase created for a non-zero
// initial quantity.
const InitialStockRemark = "Initial stock"

// NewItemInput carries the caller-supplied fields of a new item.
type NewItemInput = models.ItemFields

// NewTransactionInput carries the caller-supplied fields of a new movement.
type NewTransactionInput = models.TransactionFields

// EventPublisher is satisfied by *events.EventBus.
type EventPublisher interface {
	PublishJSON(ctx context.Context, topic string, payload any) error
}

// LedgerOption customises a LedgerService.
type LedgerOption func(*LedgerService)

// WithItemMerge replaces the blind default merge used by UpdateItem.
func WithItemMerge(merge domainsvcs.ItemMergeFunc) LedgerOption {
	return func(s *LedgerService) { s.mergeItem = merge }
}

// WithUniqueSerials makes AddTransaction and UpdateTransaction reject serial
// numbers already used by another transaction.
func WithUniqueSerials() LedgerOption {
	return func(s *LedgerService) { s.uniqueSerials = true }
}

// WithPublisher publishes change events after every committed mutation.
func WithPublisher(p EventPublisher) LedgerOption {
	return func(s *LedgerService) { s.publisher = p }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) LedgerOption {
	return func(s *LedgerService) { s.now = now }
}

// maxSaveAttempts bounds how often a mutation is replayed on a corpus that
// another process changed underneath it.
const maxSaveAttempts = 3

// LedgerService owns the item corpus. Every mutation copies the current
// snapshot, changes the copy, flushes it to the repository and only then
// publishes it as the new snapshot. A failed flush leaves the visible corpus
// untouched. Writers are serialised; readers never block.
//
// Flushes are conditional on the version the snapshot was loaded at. When
// another process (stockctl restore, a second API replica) saved in between,
// the ledger reloads and replays the mutation on the newer corpus.
type LedgerService struct {
	repo     repositories.InventoryRepository
	verifier auth.SecretVerifier
	log      logger.Logger

	mergeItem     domainsvcs.ItemMergeFunc
	uniqueSerials bool
	publisher     EventPublisher
	now           func() time.Time

	writeMu  sync.Mutex
	snapshot atomic.Pointer[corpus]
}

type corpus struct {
	items   []models.Item
	version int64
}

// Open loads the corpus from repo. Corrupt persisted state is logged and the
// ledger starts empty; any other load failure is returned.
func Open(ctx context.Context, repo repositories.InventoryRepository, verifier auth.SecretVerifier, log logger.Logger, opts ...LedgerOption) (*LedgerService, error) {
	s := &LedgerService{
		repo:      repo,
		verifier:  verifier,
		log:       log,
		mergeItem: domainsvcs.MergeItem,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	c, err := s.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}
	s.snapshot.Store(c)
	return s, nil
}

// load reads the stored corpus. Corrupt state becomes an empty corpus at the
// stored version, so the next save overwrites it.
func (s *LedgerService) load(ctx context.Context) (*corpus, error) {
	items, version, err := s.repo.Load(ctx)
	switch {
	case errors.Is(err, inventorydomain.ErrCorruptState):
		s.log.WarnContext(ctx, "persisted inventory is unreadable, starting empty", "error", err)
		items = []models.Item{}
	case err != nil:
		return nil, err
	}
	if items == nil {
		items = []models.Item{}
	}
	return &corpus{items: items, version: version}, nil
}

func (s *LedgerService) current() []models.Item {
	return s.snapshot.Load().items
}

// Refresh reloads the corpus when the repository holds a newer version than
// the snapshot. It reports whether the snapshot was replaced. Unreadable
// state is returned as an error and the snapshot is kept.
func (s *LedgerService) Refresh(ctx context.Context) (bool, error) {
	version, err := s.repo.Version(ctx)
	if err != nil {
		return false, fmt.Errorf("read inventory version: %w", err)
	}
	if version == s.snapshot.Load().version {
		return false, nil
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	items, version, err := s.repo.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("reload inventory: %w", err)
	}
	if version == s.snapshot.Load().version {
		return false, nil
	}
	s.snapshot.Store(&corpus{items: items, version: version})
	s.log.InfoContext(ctx, "inventory reloaded after an external change", "items", len(items), "version", version)
	return true, nil
}

// Follow calls Refresh every interval until ctx is done. The API runs it
// when the corpus lives in a store other processes can write to. interval
// must be positive.
func (s *LedgerService) Follow(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
				s.log.WarnContext(ctx, "inventory refresh failed", "error", err)
			}
		}
	}
}

// Items returns a copy of the whole corpus, newest first.
func (s *LedgerService) Items(context.Context) []models.Item {
	return models.CloneItems(s.current())
}

// Item returns a copy of one item.
func (s *LedgerService) Item(_ context.Context, id string) (models.Item, error) {
	items := s.current()
	idx := indexOf(items, id)
	if idx < 0 {
		return models.Item{}, fmt.Errorf("%w: %s", inventorydomain.ErrItemNotFound, id)
	}
	return items[idx].Clone(), nil
}

// CreateItem validates and registers a new item at the head of the corpus.
// A positive initialQuantity records one purchase remarked InitialStockRemark.
func (s *LedgerService) CreateItem(ctx context.Context, in NewItemInput, initialQuantity int) (models.Item, error) {
	if initialQuantity < 0 {
		return models.Item{}, fmt.Errorf("%w: initial quantity must not be negative", inventorydomain.ErrValidation)
	}
	now := s.now()
	item, err := models.NewItem(in, now)
	if err != nil {
		return models.Item{}, fmt.Errorf("%w: %w", inventorydomain.ErrValidation, err)
	}
	if initialQuantity > 0 {
		tx, err := models.NewTransaction(models.TransactionFields{
			Type:     models.TransactionPurchase,
			Quantity: initialQuantity,
			Date:     now,
			Remarks:  InitialStockRemark,
		}, now)
		if err != nil {
			return models.Item{}, fmt.Errorf("%w: %w", inventorydomain.ErrValidation, err)
		}
		item.Transactions = append(item.Transactions, tx)
	}

	err = s.mutate(ctx, func(items []models.Item) ([]models.Item, error) {
		if err := domainsvcs.CheckDuplicates(item.Code, item.DrawingNumber, items, ""); err != nil {
			return nil, err
		}
		return slices.Insert(items, 0, item.Clone()), nil
	})
	if err != nil {
		return models.Item{}, err
	}

	s.publishItem(ctx, domainevents.TopicItemCreated, *item)
	for _, tx := range item.Transactions {
		s.publishTransaction(ctx, domainevents.TopicTransactionRecorded, *item, tx)
	}
	return item.Clone(), nil
}

// DeleteItem removes an item after re-checking the caller's secret for role.
// A wrong secret returns ErrAuthorization and changes nothing.
func (s *LedgerService) DeleteItem(ctx context.Context, role auth.Role, id, password string) error {
	if s.verifier == nil || s.verifier.VerifySecret(role, password) != nil {
		return fmt.Errorf("%w: wrong password", inventorydomain.ErrAuthorization)
	}

	var removed models.Item
	err := s.mutate(ctx, func(items []models.Item) ([]models.Item, error) {
		idx := indexOf(items, id)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s", inventorydomain.ErrItemNotFound, id)
		}
		removed = items[idx]
		return slices.Delete(items, idx, idx+1), nil
	})
	if err != nil {
		return err
	}

	s.publishItem(ctx, domainevents.TopicItemDeleted, removed)
	return nil
}

// UpdateItem applies patch with the configured merge function.
func (s *LedgerService) UpdateItem(ctx context.Context, id string, patch models.ItemPatch) (models.Item, error) {
	var updated models.Item
	err := s.mutate(ctx, func(items []models.Item) ([]models.Item, error) {
		idx := indexOf(items, id)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s", inventorydomain.ErrItemNotFound, id)
		}
		merged, err := s.mergeItem(items[idx], patch, items)
		if err != nil {
			return nil, err
		}
		items[idx] = merged
		updated = merged
		return items, nil
	})
	if err != nil {
		return models.Item{}, err
	}

	s.publishItem(ctx, domainevents.TopicItemUpdated, updated)
	return updated.Clone(), nil
}

// AddTransaction appends a movement to an item's history.
func (s *LedgerService) AddTransaction(ctx context.Context, itemID string, in NewTransactionInput) (models.Transaction, error) {
	tx, err := models.NewTransaction(in, s.now())
	if err != nil {
		return models.Transaction{}, fmt.Errorf("%w: %w", inventorydomain.ErrValidation, err)
	}

	var owner models.Item
	err = s.mutate(ctx, func(items []models.Item) ([]models.Item, error) {
		idx := indexOf(items, itemID)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s", inventorydomain.ErrItemNotFound, itemID)
		}
		if err := s.checkSerial(tx.SerialNumber, items, ""); err != nil {
			return nil, err
		}
		items[idx].Transactions = append(items[idx].Transactions, tx)
		owner = items[idx]
		return items, nil
	})
	if err != nil {
		return models.Transaction{}, err
	}

	s.publishTransaction(ctx, domainevents.TopicTransactionRecorded, owner, tx)
	return tx, nil
}

// UpdateTransaction edits a movement in place; its position is unchanged.
func (s *LedgerService) UpdateTransaction(ctx context.Context, itemID, txID string, patch models.TransactionPatch) (models.Transaction, error) {
	var (
		owner   models.Item
		updated models.Transaction
	)
	err := s.mutate(ctx, func(items []models.Item) ([]models.Item, error) {
		idx := indexOf(items, itemID)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s", inventorydomain.ErrItemNotFound, itemID)
		}
		current, txIdx, ok := items[idx].Transaction(txID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", inventorydomain.ErrTransactionNotFound, txID)
		}
		merged, err := domainsvcs.MergeTransaction(current, patch)
		if err != nil {
			return nil, err
		}
		if err := s.checkSerial(merged.SerialNumber, items, txID); err != nil {
			return nil, err
		}
		items[idx].Transactions[txIdx] = merged
		owner, updated = items[idx], merged
		return items, nil
	})
	if err != nil {
		return models.Transaction{}, err
	}

	s.publishTransaction(ctx, domainevents.TopicTransactionUpdated, owner, updated)
	return updated, nil
}

// DeleteTransaction removes one movement from an item's history.
func (s *LedgerService) DeleteTransaction(ctx context.Context, itemID, txID string) error {
	var (
		owner   models.Item
		removed models.Transaction
	)
	err := s.mutate(ctx, func(items []models.Item) ([]models.Item, error) {
		idx := indexOf(items, itemID)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s", inventorydomain.ErrItemNotFound, itemID)
		}
		tx, txIdx, ok := items[idx].Transaction(txID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", inventorydomain.ErrTransactionNotFound, txID)
		}
		items[idx].Transactions = slices.Delete(items[idx].Transactions, txIdx, txIdx+1)
		owner, removed = items[idx], tx
		return items, nil
	})
	if err != nil {
		return err
	}

	s.publishTransaction(ctx, domainevents.TopicTransactionDeleted, owner, removed)
	return nil
}

// Restore replaces the whole corpus with a backup payload in one swap.
// It returns the number of restored items.
func (s *LedgerService) Restore(ctx context.Context, payload models.BackupPayload) (int, error) {
	if err := domainsvcs.ValidateCorpus(payload.Inventory); err != nil {
		return 0, err
	}
	restored := models.CloneItems(payload.Inventory)
	err := s.mutate(ctx, func([]models.Item) ([]models.Item, error) {
		return restored, nil
	})
	if err != nil {
		return 0, err
	}
	s.log.InfoContext(ctx, "inventory restored",
		"items", len(restored),
		"backup_date", payload.BackupDate,
	)
	return len(restored), nil
}

// mutate runs apply on a private copy of the corpus, flushes the result and
// publishes it as the new snapshot. apply may run more than once, each time
// on a freshly loaded corpus, so it must only touch the slice it is given and
// the caller's result variables.
func (s *LedgerService) mutate(ctx context.Context, apply func([]models.Item) ([]models.Item, error)) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cur := s.snapshot.Load()
	for attempt := 1; ; attempt++ {
		next, err := apply(models.CloneItems(cur.items))
		if err != nil {
			return err
		}
		version, err := s.repo.Save(ctx, next, cur.version)
		if err == nil {
			s.snapshot.Store(&corpus{items: next, version: version})
			return nil
		}
		if !errors.Is(err, inventorydomain.ErrStaleState) || attempt == maxSaveAttempts {
			return fmt.Errorf("flush inventory: %w", err)
		}

		s.log.WarnContext(ctx, "inventory changed by another writer, replaying on the newer corpus", "attempt", attempt, "stale_version", cur.version)
		if cur, err = s.load(ctx); err != nil {
			return fmt.Errorf("reload inventory: %w", err)
		}
		s.snapshot.Store(cur)
	}
}

func (s *LedgerService) checkSerial(serial string, items []models.Item, excludeTxID string) error {
	if !s.uniqueSerials || !domainsvcs.IsDuplicateSerial(serial, items, excludeTxID) {
		return nil
	}
	return &inventorydomain.DuplicateError{Field: inventorydomain.FieldSerialNumber, Value: serial}
}

func (s *LedgerService) publishItem(ctx context.Context, topic string, item models.Item) {
	if s.publisher == nil {
		return
	}
	evt := domainevents.ItemEvent{
		EventID:    uuid.New(),
		Version:    domainevents.SchemaVersion,
		ItemID:     item.ID,
		ItemType:   string(item.Type),
		Code:       item.Code,
		Name:       item.Name,
		Stock:      domainsvcs.StockOf(item),
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.PublishJSON(ctx, topic, evt); err != nil {
		s.log.WarnContext(ctx, "publish inventory event failed", "topic", topic, "item_id", item.ID, "error", err)
	}
}

func (s *LedgerService) publishTransaction(ctx context.Context, topic string, item models.Item, tx models.Transaction) {
	if s.publisher == nil {
		return
	}
	evt := domainevents.TransactionEvent{
		EventID:         uuid.New(),
		Version:         domainevents.SchemaVersion,
		ItemID:          item.ID,
		TransactionID:   tx.ID,
		TransactionType: string(tx.Type),
		Quantity:        tx.Quantity,
		Stock:           domainsvcs.StockOf(item),
		OccurredAt:      s.now().UTC(),
	}
	if err := s.publisher.PublishJSON(ctx, topic, evt); err != nil {
		s.log.WarnContext(ctx, "publish inventory event failed", "topic", topic, "item_id", item.ID, "error", err)
	}
}

func indexOf(items []models.Item, id string) int {
	return slices.IndexFunc(items, func(it models.Item) bool { return it.ID == id })
}
