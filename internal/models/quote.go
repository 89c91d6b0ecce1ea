package models

import (
	"time"

	"gorm.io/gorm"
)

// Quote is the pre-payment price estimate. Draft and awaiting_payment live
// here; an Order only exists once payment has succeeded.
type Quote struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	PublicID       string         `json:"public_id" gorm:"type:uuid;uniqueIndex;not null"`
	CustomerID     uint           `json:"customer_id" gorm:"not null"`
	Status         string         `json:"status" gorm:"default:'draft'"` // draft, awaiting_payment, converted, expired
	PickupAddress  string         `json:"pickup_address"`
	DropoffAddress string         `json:"dropoff_address"`
	AmountCents    int64          `json:"amount_cents"`
	Currency       string         `json:"currency" gorm:"size:8"`
	DeliveryDate   *time.Time     `json:"delivery_date"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

type QuoteStatus string

const (
	QuoteDraft           QuoteStatus = "draft"
	QuoteAwaitingPayment QuoteStatus = "awaiting_payment"
	QuoteConverted       QuoteStatus = "converted"
	QuoteExpired         QuoteStatus = "expired"
)
