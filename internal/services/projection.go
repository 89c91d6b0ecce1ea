package services

import (
	"encoding/json"
	"time"

	"delivery_dispatch/internal/models"
)

// ProjectedOrder is the role-filtered read view of an order. Operational
// fields are identical for every role; only the HubSpot metadata subset
// differs.
type ProjectedOrder struct {
	ID              uint                   `json:"id"`
	PublicID        string                 `json:"public_id"`
	Status          string                 `json:"status"`
	AmountCents     int64                  `json:"amount_cents"`
	Currency        string                 `json:"currency"`
	PickupAddress   string                 `json:"pickup_address"`
	DropoffAddress  string                 `json:"dropoff_address"`
	DriverID        *uint                  `json:"driver_id"`
	DeliveryDate    *time.Time             `json:"delivery_date"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
	HubspotMetadata map[string]interface{} `json:"hubspot_metadata"`
}

// metadataVisibility lists the CRM metadata keys each role may see. Admin
// is handled separately and sees everything.
var metadataVisibility = map[string][]string{
	string(models.RoleDriver):     {"special_delivery_instructions"},
	string(models.RoleCustomer):   {"special_delivery_instructions"},
	string(models.RoleDispatcher): {"special_delivery_instructions", "recurring_frequency", "rush_requested"},
}

// ProjectOrder redacts the order's CRM metadata down to the subset the
// requesting role is allowed to see.
func ProjectOrder(order *models.Order, role string) ProjectedOrder {
	projected := ProjectedOrder{
		ID:              order.ID,
		PublicID:        order.PublicID,
		Status:          order.Status,
		AmountCents:     order.AmountCents,
		Currency:        order.Currency,
		PickupAddress:   order.PickupAddress,
		DropoffAddress:  order.DropoffAddress,
		DriverID:        order.DriverID,
		DeliveryDate:    order.DeliveryDate,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
		HubspotMetadata: map[string]interface{}{},
	}

	metadata := map[string]interface{}{}
	if len(order.HubspotMetadata) > 0 {
		// Unreadable metadata is treated as empty rather than failing the read.
		_ = json.Unmarshal(order.HubspotMetadata, &metadata)
	}

	if role == string(models.RoleAdmin) {
		projected.HubspotMetadata = metadata
		return projected
	}

	for _, key := range metadataVisibility[role] {
		if value, ok := metadata[key]; ok {
			projected.HubspotMetadata[key] = value
		}
	}
	return projected
}

// ProjectOrders applies ProjectOrder across a list.
func ProjectOrders(orders []models.Order, role string) []ProjectedOrder {
	projected := make([]ProjectedOrder, 0, len(orders))
	for i := range orders {
		projected = append(projected, ProjectOrder(&orders[i], role))
	}
	return projected
}
