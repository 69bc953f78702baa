package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gorilla/mux"

	"deliveryflow/pkg/auth"
	"deliveryflow/pkg/cart"
	kvmemory "deliveryflow/pkg/kvstore/memory"
	"deliveryflow/pkg/logger"
	"deliveryflow/pkg/order"
	usermemory "deliveryflow/pkg/user/memory"
)

func TestMain(m *testing.M) {
	log = logger.New(io.Discard, logger.LevelError, "test", nil)
	os.Exit(m.Run())
}

// resetState rebuilds the handler globals on fresh in-memory stores.
func resetState() {
	ctx := context.Background()
	kv := kvmemory.New()
	cartStore = cart.New(ctx, kv, log, nil)
	ledger = order.NewLedger(ctx, kv, log)
	authSvc, _ = auth.New(usermemory.New(), []byte("test-secret"))
	publisher = nil
}

func newTestRouter() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/register", registerHandler).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", loginHandler).Methods(http.MethodPost)
	api.Handle("/profile", authMiddleware(http.HandlerFunc(getProfileHandler))).Methods(http.MethodGet)
	api.Handle("/profile", authMiddleware(http.HandlerFunc(updateProfileHandler))).Methods(http.MethodPut)
	api.HandleFunc("/cart", getCartHandler).Methods(http.MethodGet)
	api.HandleFunc("/cart", clearCartHandler).Methods(http.MethodDelete)
	api.HandleFunc("/cart/items", addCartItemHandler).Methods(http.MethodPost)
	api.HandleFunc("/cart/items/{id}", removeCartItemHandler).Methods(http.MethodDelete)
	api.HandleFunc("/cart/items/{id}", updateQuantityHandler).Methods(http.MethodPatch)
	api.HandleFunc("/orders", createOrderHandler).Methods(http.MethodPost)
	api.HandleFunc("/orders", listOrdersHandler).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}", getOrderHandler).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}/timeline", timelineHandler).Methods(http.MethodGet)
	api.HandleFunc("/pickup-points", listPickupPointsHandler).Methods(http.MethodGet)
	return r
}

func doJSON(t *testing.T, r *mux.Router, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCartToOrderFlow(t *testing.T) {
	resetState()
	r := newTestRouter()

	// Submitting with an empty cart must fail.
	w := doJSON(t, r, http.MethodPost, "/api/orders",
		order.DeliveryDetails{Address: "Lenina st. 10", Date: "2026-09-15", Time: "14:30"}, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty cart, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/cart/items",
		cart.ItemInput{Marketplace: "ozon", Link: "https://ozon.example/1", Quantity: 2}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 adding item, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/api/cart", nil, "")
	var view cartView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	if view.TotalItems != 2 || view.UniqueMarketplaces != 1 {
		t.Fatalf("unexpected cart view: %+v", view)
	}

	w = doJSON(t, r, http.MethodPost, "/api/orders",
		order.DeliveryDetails{Address: "Lenina st. 10", Date: "2026-09-15", Time: "14:30"}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating order, got %d: %s", w.Code, w.Body.String())
	}
	var o order.Order
	if err := json.Unmarshal(w.Body.Bytes(), &o); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	if o.ID != "8001" || o.Status != order.StatusPending {
		t.Fatalf("unexpected order: %+v", o)
	}

	// Submission clears the cart.
	w = doJSON(t, r, http.MethodGet, "/api/cart", nil, "")
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	if view.TotalItems != 0 {
		t.Fatalf("expected cart cleared after submission, got %+v", view)
	}

	// Lookup tolerates leading zeros.
	w = doJSON(t, r, http.MethodGet, "/api/orders/08001", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for normalized lookup, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/orders/8001/timeline", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for timeline, got %d", w.Code)
	}
	var entries []order.TimelineEntry
	if err := json.Unmarshal(w.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode timeline: %v", err)
	}
	if len(entries) != 1 || entries[0].Status != "Order placed" {
		t.Fatalf("unexpected timeline for pending order: %+v", entries)
	}
}

func TestClearCartRequiresConfirmation(t *testing.T) {
	resetState()
	r := newTestRouter()

	doJSON(t, r, http.MethodPost, "/api/cart/items",
		cart.ItemInput{Marketplace: "ozon", Link: "https://ozon.example/1", Quantity: 1}, "")

	w := doJSON(t, r, http.MethodDelete, "/api/cart", nil, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without confirm, got %d", w.Code)
	}
	if got := cartStore.TotalItems(); got != 1 {
		t.Fatalf("expected cart untouched, got %d items", got)
	}

	w = doJSON(t, r, http.MethodDelete, "/api/cart?confirm=true", nil, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 with confirm, got %d", w.Code)
	}
	if got := cartStore.TotalItems(); got != 0 {
		t.Fatalf("expected empty cart, got %d items", got)
	}
}

func TestClearCartDeclinedByProvider(t *testing.T) {
	resetState()
	cartStore = cart.New(context.Background(), kvmemory.New(), log, func() bool { return false })
	r := newTestRouter()

	doJSON(t, r, http.MethodPost, "/api/cart/items",
		cart.ItemInput{Marketplace: "ozon", Link: "https://ozon.example/1", Quantity: 1}, "")

	w := doJSON(t, r, http.MethodDelete, "/api/cart?confirm=true", nil, "")
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 when the provider declines, got %d", w.Code)
	}
	if got := cartStore.TotalItems(); got != 1 {
		t.Fatalf("expected cart untouched after declined clear, got %d items", got)
	}
}

func TestAuthAndProfile(t *testing.T) {
	resetState()
	r := newTestRouter()

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", auth.RegisterRequest{
		Name: "Anna", Email: "anna@example.com",
		Password: "correct-horse", ConfirmPassword: "correct-horse",
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 registering, got %d: %s", w.Code, w.Body.String())
	}
	var resp auth.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	w = doJSON(t, r, http.MethodGet, "/api/profile", nil, resp.Token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for profile, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/profile", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	city := "Moscow"
	w = doJSON(t, r, http.MethodPut, "/api/profile", map[string]string{"city": city}, resp.Token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 updating profile, got %d: %s", w.Code, w.Body.String())
	}
	var updated struct {
		City *string `json:"city"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if updated.City == nil || *updated.City != "Moscow" {
		t.Fatalf("expected city updated, got %+v", updated.City)
	}

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", auth.LoginRequest{
		Email: "anna@example.com", Password: "wrong-password",
	}, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad credentials, got %d", w.Code)
	}
}
