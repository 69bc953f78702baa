// Package cart holds the not-yet-submitted order line items for the current
// session and persists them through the key-value store on every mutation.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"

	"deliveryflow/pkg/kvstore"
	"deliveryflow/pkg/logger"
	"deliveryflow/pkg/order"
)

// itemsKey is the fixed persistence key for the cart item sequence.
const itemsKey = "delivery:cart_items"

// ConfirmFunc is asked before the cart is cleared. Returning false cancels
// the clear and leaves the cart untouched.
type ConfirmFunc func() bool

// ItemInput describes a line item before it has an id.
type ItemInput struct {
	Marketplace string `json:"marketplace"`
	Link        string `json:"link"`
	Quantity    int    `json:"quantity"`
	Size        string `json:"size,omitempty"`
	Color       string `json:"color,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// Store manages the cart item sequence. Derived values are recomputed on
// every read.
type Store struct {
	kv      kvstore.Store
	log     *logger.Logger
	confirm ConfirmFunc

	mu    sync.Mutex
	items []order.OrderItem
}

// New constructs a cart backed by kv, loading any previously persisted
// items. Missing or unreadable state degrades to an empty cart; it is
// logged, never returned. A nil confirm treats every clear as confirmed.
func New(ctx context.Context, kv kvstore.Store, log *logger.Logger, confirm ConfirmFunc) *Store {
	s := &Store{kv: kv, log: log, confirm: confirm}

	if raw, err := kv.Get(ctx, itemsKey); err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			log.Error(ctx, "load cart items", "error", err)
		}
	} else if err := json.Unmarshal(raw, &s.items); err != nil {
		log.Error(ctx, "decode cart items, starting empty", "error", err)
		s.items = nil
	}

	return s
}

// AddItem assigns a fresh id, appends the item to the end of the sequence
// and returns it. Quantities below one are floored at one.
func (s *Store) AddItem(ctx context.Context, in ItemInput) order.OrderItem {
	item := order.OrderItem{
		ID:          uuid.NewString(),
		Marketplace: in.Marketplace,
		Link:        in.Link,
		Quantity:    max(1, in.Quantity),
		Size:        in.Size,
		Color:       in.Color,
		Notes:       in.Notes,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, item)
	s.persist(ctx)
	return item
}

// RemoveItem deletes the item with the given id. Unknown ids are a silent
// no-op.
func (s *Store) RemoveItem(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, item := range s.items {
		if item.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.persist(ctx)
			return
		}
	}
}

// UpdateQuantity adjusts an item's quantity by delta, never below one.
// Unknown ids are a silent no-op.
func (s *Store) UpdateQuantity(ctx context.Context, id string, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, item := range s.items {
		if item.ID == id {
			s.items[i].Quantity = max(1, item.Quantity+delta)
			s.persist(ctx)
			return
		}
	}
}

// Clear discards all items after asking the confirmation provider. It
// reports whether the cart was cleared; a declined confirmation leaves the
// cart unchanged and is not an error.
func (s *Store) Clear(ctx context.Context) bool {
	if s.confirm != nil && !s.confirm() {
		return false
	}
	s.Reset(ctx)
	return true
}

// Reset discards all items without consulting the confirmation provider.
// Order submission uses it: the items already belong to the new order.
func (s *Store) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	if err := s.kv.Delete(ctx, itemsKey); err != nil {
		s.log.Error(ctx, "delete cart items", "error", err)
	}
}

// Items returns a copy of the current item sequence in insertion order.
func (s *Store) Items() []order.OrderItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]order.OrderItem(nil), s.items...)
}

// TotalItems is the sum of all item quantities.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

// UniqueMarketplaces counts the distinct marketplaces among current items.
func (s *Store) UniqueMarketplaces() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{}, len(s.items))
	for _, item := range s.items {
		seen[item.Marketplace] = struct{}{}
	}
	return len(seen)
}

// persist rewrites the full item sequence. Failures are logged and
// swallowed. Callers hold s.mu.
func (s *Store) persist(ctx context.Context) {
	raw, err := json.Marshal(s.items)
	if err != nil {
		s.log.Error(ctx, "encode cart items", "error", err)
		return
	}
	if err := s.kv.Set(ctx, itemsKey, raw); err != nil {
		s.log.Error(ctx, "save cart items", "error", err)
	}
}
