package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"deliveryflow/pkg/cart"
	"deliveryflow/pkg/order"
	"deliveryflow/pkg/otel"
	"deliveryflow/pkg/pickup"
)

// cartView is the cart plus its derived counts, recomputed per request.
type cartView struct {
	Items              []order.OrderItem `json:"items"`
	TotalItems         int               `json:"totalItems"`
	UniqueMarketplaces int               `json:"uniqueMarketplaces"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// getCartHandler returns the current cart.
// @Summary Get cart
// @Produce json
// @Success 200 {object} cartView
// @Router /cart [get]
func getCartHandler(w http.ResponseWriter, r *http.Request) {
	_, span := otel.AddSpan(r.Context(), "getCartHandler")
	defer span.End()

	respondJSON(w, http.StatusOK, cartView{
		Items:              cartStore.Items(),
		TotalItems:         cartStore.TotalItems(),
		UniqueMarketplaces: cartStore.UniqueMarketplaces(),
	})
}

// addCartItemHandler adds an item to the cart.
// @Summary Add cart item
// @Accept json
// @Produce json
// @Param item body cart.ItemInput true "Item"
// @Success 201 {object} order.OrderItem
// @Router /cart/items [post]
func addCartItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "addCartItemHandler")
	defer span.End()

	var in cart.ItemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if in.Marketplace == "" || in.Link == "" {
		respondError(w, http.StatusBadRequest, "marketplace and link are required")
		return
	}

	item := cartStore.AddItem(ctx, in)
	respondJSON(w, http.StatusCreated, item)
}

// removeCartItemHandler removes a cart item. Unknown ids are a no-op.
// @Summary Remove cart item
// @Param id path string true "Item ID"
// @Success 204
// @Router /cart/items/{id} [delete]
func removeCartItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "removeCartItemHandler")
	defer span.End()

	cartStore.RemoveItem(ctx, mux.Vars(r)["id"])
	w.WriteHeader(http.StatusNoContent)
}

// updateQuantityHandler adjusts a cart item's quantity by a delta.
// @Summary Update item quantity
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param delta body object true "Quantity delta"
// @Success 200 {object} cartView
// @Router /cart/items/{id} [patch]
func updateQuantityHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "updateQuantityHandler")
	defer span.End()

	var req struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cartStore.UpdateQuantity(ctx, mux.Vars(r)["id"], req.Delta)
	respondJSON(w, http.StatusOK, cartView{
		Items:              cartStore.Items(),
		TotalItems:         cartStore.TotalItems(),
		UniqueMarketplaces: cartStore.UniqueMarketplaces(),
	})
}

// clearCartHandler empties the cart. The client must confirm explicitly.
// @Summary Clear cart
// @Param confirm query bool true "Must be true"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /cart [delete]
func clearCartHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "clearCartHandler")
	defer span.End()

	if r.URL.Query().Get("confirm") != "true" {
		respondError(w, http.StatusBadRequest, "confirmation required")
		return
	}
	if !cartStore.Clear(ctx) {
		respondError(w, http.StatusConflict, "clear was not confirmed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// createOrderHandler submits the current cart as a new order.
// @Summary Submit order
// @Accept json
// @Produce json
// @Param details body order.DeliveryDetails true "Delivery details"
// @Success 201 {object} order.Order
// @Failure 400 {object} map[string]string
// @Router /orders [post]
func createOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "createOrderHandler")
	defer span.End()

	var details order.DeliveryDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if details.Address == "" || details.Date == "" {
		respondError(w, http.StatusBadRequest, "address and date are required")
		return
	}

	o, err := ledger.Add(ctx, cartStore.Items(), details)
	if err != nil {
		if errors.Is(err, order.ErrEmptyOrder) {
			respondError(w, http.StatusBadRequest, "cart is empty")
			return
		}
		log.Error(ctx, "create order", "error", err)
		respondError(w, http.StatusInternalServerError, "could not create order")
		return
	}

	// The submitted items now belong to the order; the cart starts over.
	cartStore.Reset(ctx)

	if publisher != nil {
		if err := publisher.Publish(ctx, o); err != nil {
			log.Error(ctx, "publish order", "id", o.ID, "error", err)
		}
	}

	log.Info(ctx, "order created", "id", o.ID, "items", len(o.Items))
	respondJSON(w, http.StatusCreated, o)
}

// listOrdersHandler lists submitted orders, most recent first.
// @Summary List orders
// @Produce json
// @Success 200 {array} order.Order
// @Router /orders [get]
func listOrdersHandler(w http.ResponseWriter, r *http.Request) {
	_, span := otel.AddSpan(r.Context(), "listOrdersHandler")
	defer span.End()

	respondJSON(w, http.StatusOK, ledger.Orders())
}

// getOrderHandler retrieves an order by id, tolerating leading zeros.
// @Summary Get order
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} order.Order
// @Failure 404 {object} map[string]string
// @Router /orders/{id} [get]
func getOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "getOrderHandler")
	defer span.End()

	o, ok := ledger.Find(ctx, mux.Vars(r)["id"])
	if !ok {
		respondError(w, http.StatusNotFound, "order not found")
		return
	}
	respondJSON(w, http.StatusOK, o)
}

// timelineHandler returns the derived progress timeline for an order.
// @Summary Order timeline
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {array} order.TimelineEntry
// @Failure 404 {object} map[string]string
// @Router /orders/{id}/timeline [get]
func timelineHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "timelineHandler")
	defer span.End()

	o, ok := ledger.Find(ctx, mux.Vars(r)["id"])
	if !ok {
		respondError(w, http.StatusNotFound, "order not found")
		return
	}
	respondJSON(w, http.StatusOK, order.Timeline(o))
}

// listPickupPointsHandler lists the pickup-point catalog.
// @Summary List pickup points
// @Produce json
// @Success 200 {array} pickup.Point
// @Router /pickup-points [get]
func listPickupPointsHandler(w http.ResponseWriter, r *http.Request) {
	_, span := otel.AddSpan(r.Context(), "listPickupPointsHandler")
	defer span.End()

	respondJSON(w, http.StatusOK, pickup.Points())
}

// getPickupPointHandler retrieves a pickup point by id.
// @Summary Get pickup point
// @Produce json
// @Param id path int true "Point ID"
// @Success 200 {object} pickup.Point
// @Failure 404 {object} map[string]string
// @Router /pickup-points/{id} [get]
func getPickupPointHandler(w http.ResponseWriter, r *http.Request) {
	_, span := otel.AddSpan(r.Context(), "getPickupPointHandler")
	defer span.End()

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	p, ok := pickup.Find(id)
	if !ok {
		respondError(w, http.StatusNotFound, "pickup point not found")
		return
	}
	respondJSON(w, http.StatusOK, p)
}
