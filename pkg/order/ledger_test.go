package order

import (
	"context"
	"io"
	"testing"

	"deliveryflow/pkg/kvstore/memory"
	"deliveryflow/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(io.Discard, logger.LevelError, "test", nil)
}

func testItems() []OrderItem {
	return []OrderItem{
		{ID: "i1", Marketplace: "wildberries", Link: "https://wb.example/1", Quantity: 2},
		{ID: "i2", Marketplace: "ozon", Link: "https://ozon.example/2", Quantity: 1, Size: "L"},
	}
}

func testDetails() DeliveryDetails {
	return DeliveryDetails{Address: "Lenina st. 10", Date: "2026-09-15", Time: "14:30", Notes: "call ahead"}
}

func TestAddSequentialIDs(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(ctx, memory.New(), testLogger())

	first, err := l.Add(ctx, testItems(), testDetails())
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	second, err := l.Add(ctx, testItems(), testDetails())
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if first.ID != "8001" || second.ID != "8002" {
		t.Fatalf("expected ids 8001 and 8002, got %q and %q", first.ID, second.ID)
	}
	if first.Status != StatusPending {
		t.Fatalf("expected pending status, got %q", first.Status)
	}
	if first.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be set")
	}
	if len(first.Items) != 2 || first.Items[0] != testItems()[0] {
		t.Fatalf("items do not match input: %+v", first.Items)
	}
	if first.DeliveryDetails != testDetails() {
		t.Fatalf("details do not match input: %+v", first.DeliveryDetails)
	}

	// Most recent first.
	orders := l.Orders()
	if len(orders) != 2 || orders[0].ID != "8002" {
		t.Fatalf("expected newest order first, got %+v", orders)
	}
}

func TestAddRejectsEmpty(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(ctx, memory.New(), testLogger())

	if _, err := l.Add(ctx, nil, testDetails()); err != ErrEmptyOrder {
		t.Fatalf("expected ErrEmptyOrder, got %v", err)
	}
	if got := len(l.Orders()); got != 0 {
		t.Fatalf("expected no orders, got %d", got)
	}
}

func TestAddCopiesItems(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(ctx, memory.New(), testLogger())

	items := testItems()
	o, err := l.Add(ctx, items, testDetails())
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	items[0].Quantity = 99
	if got, _ := l.Find(ctx, o.ID); got.Items[0].Quantity == 99 {
		t.Fatal("ledger order shares memory with caller slice")
	}
}

func TestFind(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(ctx, memory.New(), testLogger())
	if _, err := l.Add(ctx, testItems(), testDetails()); err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, ok := l.Find(ctx, "8001"); !ok {
		t.Fatal("expected exact match on 8001")
	}
	if o, ok := l.Find(ctx, "08001"); !ok || o.ID != "8001" {
		t.Fatalf("expected numeric-normalized match for 08001, got ok=%v id=%q", ok, o.ID)
	}
	if _, ok := l.Find(ctx, "9999"); ok {
		t.Fatal("expected no match for 9999")
	}
	if _, ok := l.Find(ctx, "not-a-number"); ok {
		t.Fatal("expected no match for non-numeric id")
	}
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()

	l := NewLedger(ctx, kv, testLogger())
	if _, err := l.Add(ctx, testItems(), testDetails()); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := l.Add(ctx, testItems(), testDetails()); err != nil {
		t.Fatalf("add: %v", err)
	}

	restored := NewLedger(ctx, kv, testLogger())
	if got := len(restored.Orders()); got != 2 {
		t.Fatalf("expected 2 orders after reload, got %d", got)
	}

	// The counter must survive too, so ids keep increasing across restarts.
	o, err := restored.Add(ctx, testItems(), testDetails())
	if err != nil {
		t.Fatalf("add after reload: %v", err)
	}
	if o.ID != "8003" {
		t.Fatalf("expected id 8003 after reload, got %q", o.ID)
	}
}

func TestCorruptStateStartsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	if err := kv.Set(ctx, "delivery:orders", []byte("[broken")); err != nil {
		t.Fatalf("seed corrupt orders: %v", err)
	}
	if err := kv.Set(ctx, "delivery:order_counter", []byte("abc")); err != nil {
		t.Fatalf("seed corrupt counter: %v", err)
	}

	l := NewLedger(ctx, kv, testLogger())
	if got := len(l.Orders()); got != 0 {
		t.Fatalf("expected empty ledger from corrupt state, got %d orders", got)
	}

	o, err := l.Add(ctx, testItems(), testDetails())
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if o.ID != "8001" {
		t.Fatalf("expected counter reseeded at 8000, got id %q", o.ID)
	}
}
