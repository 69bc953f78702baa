package order

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"deliveryflow/pkg/kvstore"
	"deliveryflow/pkg/logger"
)

// Persistence keys. The order list and the id counter are stored
// independently so a partial write cannot corrupt both.
const (
	ordersKey  = "delivery:orders"
	counterKey = "delivery:order_counter"

	// counterSeed is the last-used value a fresh ledger starts from, so the
	// first allocated id is 8001.
	counterSeed = 8000
)

// Ledger holds all submitted orders, most recent first, and allocates
// sequential order ids from a persisted counter.
type Ledger struct {
	kv  kvstore.Store
	log *logger.Logger
	now func() time.Time

	mu      sync.Mutex
	orders  []Order
	counter int64
}

// NewLedger constructs a ledger backed by kv, loading any previously
// persisted orders and counter. Missing or unreadable state degrades to an
// empty ledger with the counter at its seed; it is logged, never returned.
func NewLedger(ctx context.Context, kv kvstore.Store, log *logger.Logger) *Ledger {
	l := &Ledger{kv: kv, log: log, now: time.Now, counter: counterSeed}

	if raw, err := kv.Get(ctx, ordersKey); err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			log.Error(ctx, "load orders", "error", err)
		}
	} else if err := json.Unmarshal(raw, &l.orders); err != nil {
		log.Error(ctx, "decode orders, starting empty", "error", err)
		l.orders = nil
	}

	if raw, err := kv.Get(ctx, counterKey); err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			log.Error(ctx, "load order counter", "error", err)
		}
	} else if n, err := strconv.ParseInt(string(raw), 10, 64); err != nil {
		log.Error(ctx, "decode order counter, using seed", "error", err)
	} else {
		l.counter = n
	}

	return l
}

// Add allocates the next sequential id and appends a new pending order built
// from items and details. The items slice is copied, so later caller
// mutations cannot reach the stored order. The new order is prepended to
// keep the list most recent first.
func (l *Ledger) Add(ctx context.Context, items []OrderItem, details DeliveryDetails) (Order, error) {
	if len(items) == 0 {
		return Order{}, ErrEmptyOrder
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.counter++
	o := Order{
		ID:              strconv.FormatInt(l.counter, 10),
		Items:           append([]OrderItem(nil), items...),
		DeliveryDetails: details,
		Status:          StatusPending,
		CreatedAt:       l.now().UTC(),
	}
	l.orders = append([]Order{o}, l.orders...)

	l.persist(ctx)
	return o, nil
}

// Find looks up an order by id. It tries an exact string match first and
// falls back to comparing both sides as integers, so "08001" still finds the
// order stored as "8001".
func (l *Ledger) Find(ctx context.Context, id string) (Order, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, o := range l.orders {
		if o.ID == id {
			return o, true
		}
	}

	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return Order{}, false
	}
	for _, o := range l.orders {
		if stored, err := strconv.ParseInt(o.ID, 10, 64); err == nil && stored == n {
			return o, true
		}
	}
	return Order{}, false
}

// Orders returns a copy of the order list, most recent first.
func (l *Ledger) Orders() []Order {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Order(nil), l.orders...)
}

// persist rewrites both keys. Failures are logged and swallowed so a storage
// anomaly never surfaces as an order submission error. Callers hold l.mu.
func (l *Ledger) persist(ctx context.Context) {
	raw, err := json.Marshal(l.orders)
	if err != nil {
		l.log.Error(ctx, "encode orders", "error", err)
		return
	}
	if err := l.kv.Set(ctx, ordersKey, raw); err != nil {
		l.log.Error(ctx, "save orders", "error", err)
	}
	if err := l.kv.Set(ctx, counterKey, []byte(strconv.FormatInt(l.counter, 10))); err != nil {
		l.log.Error(ctx, "save order counter", "error", err)
	}
}
