package models

import (
	"time"

	"gorm.io/datatypes"
)

// DispatchEvent is the append-only audit log. Rows are inserted once and
// never updated or deleted; the composite unique index on (source, event_id)
// is what makes webhook redelivery and concurrent duplicate delivery safe.
type DispatchEvent struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	OrderID   *uint          `json:"order_id" gorm:"index"`
	Actor     string         `json:"actor" gorm:"size:128;not null"`
	EventType string         `json:"event_type" gorm:"size:64;not null;index"`
	Payload   datatypes.JSON `json:"payload" gorm:"type:jsonb"`
	Source    string         `json:"source" gorm:"size:32;not null;uniqueIndex:ux_dispatch_events_source_event,priority:1"`
	EventID   string         `json:"event_id" gorm:"size:191;not null;uniqueIndex:ux_dispatch_events_source_event,priority:2"`
	CreatedAt time.Time      `json:"created_at" gorm:"index"`
}

// Event sources.
const (
	SourceStripe     = "stripe"
	SourceHubspot    = "hubspot"
	SourceDispatcher = "dispatcher"
	SourceAPI        = "api"
)

// Event types written by known producers.
const (
	EventPaymentCompleted = "payment_completed"
	EventStatusChanged    = "status_changed"
	EventDriverAssigned   = "driver_assigned"
	EventSyncFromHubspot  = "sync_from_hubspot"
)
