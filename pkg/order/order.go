// Package order holds the submitted-order domain model and the ledger that
// allocates ids, appends orders and looks them up.
package order

import (
	"errors"
	"time"
)

// Status is the lifecycle state of a submitted order. It is set to
// StatusPending at creation and only read afterwards; transitions happen
// outside this service.
type Status string

// Order statuses.
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusDelivered  Status = "delivered"
)

// OrderItem is a single line item, either in the cart or inside a submitted
// order, never both. Size, Color and Notes are optional; absent means the
// buyer never set them.
type OrderItem struct {
	ID          string `json:"id"`
	Marketplace string `json:"marketplace"`
	Link        string `json:"link"`
	Quantity    int    `json:"quantity"`
	Size        string `json:"size,omitempty"`
	Color       string `json:"color,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// DeliveryDetails describes where and when an order is delivered. Immutable
// once attached to an order. Date is an ISO date (2006-01-02) and Time is
// HH:MM.
type DeliveryDetails struct {
	Address string `json:"address"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	Notes   string `json:"notes"`
}

// Order is a submitted delivery order. Items keep their cart insertion order
// and are never empty or mutated after creation.
type Order struct {
	ID              string          `json:"id"`
	Items           []OrderItem     `json:"items"`
	DeliveryDetails DeliveryDetails `json:"deliveryDetails"`
	Status          Status          `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// ErrEmptyOrder indicates an attempt to submit an order with no items.
var ErrEmptyOrder = errors.New("order must contain at least one item")
