package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderDraft holds the pickup details captured before an order is placed.
// It is never sent anywhere; placing the order discards it.
type OrderDraft struct {
	CustomerName  string `json:"customer_name,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
	PickupDate    string `json:"pickup_date,omitempty"`
}

// IsZero reports whether no detail was captured
func (d OrderDraft) IsZero() bool {
	return d == OrderDraft{}
}

// Merge overwrites fields that are set in other
func (d *OrderDraft) Merge(other OrderDraft) {
	if other.CustomerName != "" {
		d.CustomerName = other.CustomerName
	}
	if other.CustomerEmail != "" {
		d.CustomerEmail = other.CustomerEmail
	}
	if other.PickupDate != "" {
		d.PickupDate = other.PickupDate
	}
}

// CartSummary is the anonymous cart shape carried in analytics events
type CartSummary struct {
	LineCount int             `json:"line_count"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// SessionInfo describes a session without its contents
type SessionInfo struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
