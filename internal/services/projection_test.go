package services

import (
	"testing"

	"delivery_dispatch/internal/models"

	"gorm.io/datatypes"
)

func metadataOrder() *models.Order {
	return &models.Order{
		ID:       1,
		PublicID: "a1b2c3",
		Status:   string(models.OrderAssigned),
		HubspotMetadata: datatypes.JSON(`{
			"special_delivery_instructions": "Leave at loading dock",
			"recurring_frequency": "weekly",
			"rush_requested": "true",
			"internal_sales_note": "negotiated discount"
		}`),
	}
}

func TestProjectOrder_DriverSeesInstructionsOnly(t *testing.T) {
	p := ProjectOrder(metadataOrder(), string(models.RoleDriver))

	if p.HubspotMetadata["special_delivery_instructions"] != "Leave at loading dock" {
		t.Errorf("expected delivery instructions, got %v", p.HubspotMetadata)
	}
	if len(p.HubspotMetadata) != 1 {
		t.Errorf("expected exactly 1 metadata key for drivers, got %v", p.HubspotMetadata)
	}
}

func TestProjectOrder_CustomerSeesInstructionsOnly(t *testing.T) {
	p := ProjectOrder(metadataOrder(), string(models.RoleCustomer))
	if len(p.HubspotMetadata) != 1 {
		t.Errorf("expected exactly 1 metadata key for customers, got %v", p.HubspotMetadata)
	}
}

func TestProjectOrder_DispatcherSeesOperationalSubset(t *testing.T) {
	p := ProjectOrder(metadataOrder(), string(models.RoleDispatcher))

	for _, key := range []string{"special_delivery_instructions", "recurring_frequency", "rush_requested"} {
		if _, ok := p.HubspotMetadata[key]; !ok {
			t.Errorf("expected %q visible to dispatchers", key)
		}
	}
	if _, ok := p.HubspotMetadata["internal_sales_note"]; ok {
		t.Error("unlisted metadata must stay hidden from dispatchers")
	}
}

func TestProjectOrder_AdminSeesEverything(t *testing.T) {
	p := ProjectOrder(metadataOrder(), string(models.RoleAdmin))
	if len(p.HubspotMetadata) != 4 {
		t.Errorf("expected all metadata for admins, got %v", p.HubspotMetadata)
	}
}

func TestProjectOrder_NoMetadata(t *testing.T) {
	order := &models.Order{ID: 1, PublicID: "a1b2c3", Status: string(models.OrderAssigned)}
	p := ProjectOrder(order, string(models.RoleAdmin))
	if len(p.HubspotMetadata) != 0 {
		t.Errorf("expected empty metadata, got %v", p.HubspotMetadata)
	}
}

func TestProjectOrder_MalformedMetadata(t *testing.T) {
	order := &models.Order{
		ID:              1,
		Status:          string(models.OrderAssigned),
		HubspotMetadata: datatypes.JSON(`not json`),
	}
	p := ProjectOrder(order, string(models.RoleAdmin))
	if len(p.HubspotMetadata) != 0 {
		t.Errorf("expected malformed metadata treated as empty, got %v", p.HubspotMetadata)
	}
}

func TestProjectOrders(t *testing.T) {
	orders := []models.Order{*metadataOrder(), *metadataOrder()}
	projected := ProjectOrders(orders, string(models.RoleDriver))
	if len(projected) != 2 {
		t.Fatalf("expected 2 projections, got %d", len(projected))
	}
}
