package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Order struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	PublicID        string         `json:"public_id" gorm:"type:uuid;uniqueIndex;not null"`
	QuoteID         uint           `json:"quote_id" gorm:"not null"`
	CustomerID      uint           `json:"customer_id" gorm:"not null"`
	DriverID        *uint          `json:"driver_id" gorm:"index"`
	Status          string         `json:"status" gorm:"default:'ready_for_dispatch';index"` // see OrderStatus constants
	AmountCents     int64          `json:"amount_cents" gorm:"not null"`
	Currency        string         `json:"currency" gorm:"size:8;not null"`
	PickupAddress   string         `json:"pickup_address"`
	DropoffAddress  string         `json:"dropoff_address"`
	DeliveryDate    *time.Time     `json:"delivery_date"`
	StripeSessionID string         `json:"stripe_session_id" gorm:"size:128;uniqueIndex;not null"`
	HubspotDealID   string         `json:"hubspot_deal_id" gorm:"size:64;index"`
	HubspotMetadata datatypes.JSON `json:"hubspot_metadata" gorm:"type:jsonb"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

type OrderStatus string

const (
	OrderReadyForDispatch OrderStatus = "ready_for_dispatch"
	OrderAssigned         OrderStatus = "assigned"
	OrderAccepted         OrderStatus = "accepted"
	OrderPickedUp         OrderStatus = "picked_up"
	OrderInTransit        OrderStatus = "in_transit"
	OrderDelivered        OrderStatus = "delivered"
	OrderCanceled         OrderStatus = "canceled"
)

// statusRank orders the forward sequence. Canceled is terminal and sits
// outside the sequence.
var statusRank = map[OrderStatus]int{
	OrderReadyForDispatch: 0,
	OrderAssigned:         1,
	OrderAccepted:         2,
	OrderPickedUp:         3,
	OrderInTransit:        4,
	OrderDelivered:        5,
}

// IsValidStatus reports whether s is one of the known order statuses.
func IsValidStatus(s OrderStatus) bool {
	if s == OrderCanceled {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// IsTerminal reports whether no further transitions are possible from s.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderDelivered || s == OrderCanceled
}

// CanTransition reports whether moving from s to next is legal: a single
// forward step along the sequence, or into canceled from any non-terminal
// state.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if next == OrderCanceled {
		return true
	}
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to == from+1
}

// IsActive reports whether the order still counts against a driver's
// availability.
func (o *Order) IsActive() bool {
	return !OrderStatus(o.Status).IsTerminal()
}
