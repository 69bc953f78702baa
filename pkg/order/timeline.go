package order

import "time"

// TimelineEntry is one step of an order's progress as shown on the tracking
// view.
type TimelineEntry struct {
	Status      string    `json:"status"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Completed   bool      `json:"completed"`
}

// Timeline derives the progress timeline for o purely from its status and
// creation time; nothing is persisted. A pending order yields the single
// placement entry, and so does any unrecognized status.
func Timeline(o Order) []TimelineEntry {
	entries := []TimelineEntry{{
		Status:      "Order placed",
		Date:        o.CreatedAt,
		Description: "Order created and confirmed",
		Location:    "Online",
		Completed:   true,
	}}

	if o.Status != StatusProcessing && o.Status != StatusDelivered {
		return entries
	}

	entries = append(entries,
		TimelineEntry{
			Status:      "In processing",
			Date:        o.CreatedAt.Add(1 * time.Hour),
			Description: "Order is being processed at the sorting facility",
			Location:    "Sorting facility",
			Completed:   true,
		},
		TimelineEntry{
			Status:      "In transit",
			Date:        o.CreatedAt.Add(2 * time.Hour),
			Description: "Order handed over to the courier service",
			Location:    "On the way to the recipient",
			Completed:   o.Status == StatusDelivered,
		},
	)

	if o.Status == StatusDelivered {
		entries = append(entries, TimelineEntry{
			Status:      "Delivered",
			Date:        deliveryTime(o),
			Description: "Order delivered to the recipient",
			Location:    o.DeliveryDetails.Address,
			Completed:   true,
		})
	}

	return entries
}

// deliveryTime resolves the scheduled delivery moment from the stored date
// and time strings, falling back to the date alone and finally to CreatedAt
// so the projection never fails.
func deliveryTime(o Order) time.Time {
	d := o.DeliveryDetails
	if t, err := time.Parse("2006-01-02 15:04", d.Date+" "+d.Time); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", d.Date); err == nil {
		return t
	}
	return o.CreatedAt
}
