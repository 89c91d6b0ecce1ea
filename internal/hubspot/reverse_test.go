package hubspot

import (
	"encoding/json"
	"testing"
	"time"

	"delivery_dispatch/internal/models"

	"gorm.io/datatypes"
)

func TestDealColumnUpdates_MappedColumns(t *testing.T) {
	updates, metadata, ignored := DealColumnUpdates(map[string]string{
		"pickup_address":  "12 Harbor St",
		"dropoff_address": "400 Pine Ave",
	})

	if len(metadata) != 0 || len(ignored) != 0 {
		t.Fatalf("unexpected metadata %v or ignored %v", metadata, ignored)
	}
	if updates["pickup_address"] != "12 Harbor St" || updates["dropoff_address"] != "400 Pine Ave" {
		t.Errorf("unexpected updates: %v", updates)
	}
}

func TestDealColumnUpdates_DeliveryDateParsed(t *testing.T) {
	updates, _, ignored := DealColumnUpdates(map[string]string{"delivery_date": "2026-09-04"})
	if len(ignored) != 0 {
		t.Fatalf("unexpected ignored: %v", ignored)
	}
	parsed, ok := updates["delivery_date"].(time.Time)
	if !ok {
		t.Fatalf("expected time.Time, got %T", updates["delivery_date"])
	}
	if parsed.Year() != 2026 || parsed.Month() != time.September || parsed.Day() != 4 {
		t.Errorf("unexpected date: %v", parsed)
	}

	// Unparseable dates are skipped rather than written as garbage.
	updates, _, ignored = DealColumnUpdates(map[string]string{"delivery_date": "next tuesday"})
	if len(updates) != 0 || len(ignored) != 1 {
		t.Errorf("expected bad date to be ignored, got updates %v ignored %v", updates, ignored)
	}
}

func TestDealColumnUpdates_CRMOwnedFieldsGoToMetadata(t *testing.T) {
	updates, metadata, _ := DealColumnUpdates(map[string]string{
		"special_delivery_instructions": "Leave at loading dock",
		"rush_requested":                "true",
		"pickup_address":                "12 Harbor St",
	})

	if metadata["special_delivery_instructions"] != "Leave at loading dock" || metadata["rush_requested"] != "true" {
		t.Errorf("unexpected metadata: %v", metadata)
	}
	if _, ok := updates["special_delivery_instructions"]; ok {
		t.Error("CRM-owned field must not become a column update")
	}
	if updates["pickup_address"] != "12 Harbor St" {
		t.Errorf("expected column update to survive, got %v", updates)
	}
}

func TestDealColumnUpdates_DealstageHasNoReverseMapping(t *testing.T) {
	updates, metadata, ignored := DealColumnUpdates(map[string]string{
		"dealstage": "closedwon",
		"pipeline":  "default",
	})

	if len(updates) != 0 || len(metadata) != 0 {
		t.Fatalf("stage edits must not touch the order, got updates %v metadata %v", updates, metadata)
	}
	if len(ignored) != 2 {
		t.Errorf("expected dealstage and pipeline to be ignored, got %v", ignored)
	}
}

func TestContactColumnUpdates_FirstnamePreservesLastname(t *testing.T) {
	customer := &models.Customer{Name: "Jordan Baker"}
	updates, ignored := ContactColumnUpdates(customer, map[string]string{"firstname": "Casey"})

	if len(ignored) != 0 {
		t.Fatalf("unexpected ignored: %v", ignored)
	}
	if updates["name"] != "Casey Baker" {
		t.Errorf("expected recombined name, got %v", updates["name"])
	}
}

func TestContactColumnUpdates_LastnamePreservesFirstname(t *testing.T) {
	customer := &models.Customer{Name: "Jordan Baker"}
	updates, _ := ContactColumnUpdates(customer, map[string]string{"lastname": "Reyes"})

	if updates["name"] != "Jordan Reyes" {
		t.Errorf("expected recombined name, got %v", updates["name"])
	}
}

func TestContactColumnUpdates_BothHalvesInOneBatch(t *testing.T) {
	customer := &models.Customer{Name: "Jordan Baker"}
	updates, _ := ContactColumnUpdates(customer, map[string]string{
		"firstname": "Casey",
		"lastname":  "Reyes",
	})

	if updates["name"] != "Casey Reyes" {
		t.Errorf("expected both halves applied, got %v", updates["name"])
	}
}

func TestContactColumnUpdates_PhoneNormalized(t *testing.T) {
	customer := &models.Customer{Name: "Jordan Baker"}
	updates, _ := ContactColumnUpdates(customer, map[string]string{"phone": "+1 (555) 010-0123"})

	if updates["phone"] != "+15550100123" {
		t.Errorf("unexpected phone: %v", updates["phone"])
	}
	if _, ok := updates["name"]; ok {
		t.Error("phone edit must not touch the name")
	}
}

func TestContactColumnUpdates_UnknownIgnored(t *testing.T) {
	customer := &models.Customer{Name: "Jordan Baker"}
	updates, ignored := ContactColumnUpdates(customer, map[string]string{"lifecyclestage": "customer"})

	if len(updates) != 0 {
		t.Errorf("unexpected updates: %v", updates)
	}
	if len(ignored) != 1 || ignored[0] != "lifecyclestage" {
		t.Errorf("expected lifecyclestage ignored, got %v", ignored)
	}
}

func TestMergeMetadata(t *testing.T) {
	existing := datatypes.JSON(`{"rush_requested":"false","recurring_frequency":"weekly"}`)

	merged, err := MergeMetadata(existing, map[string]string{"rush_requested": "true"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result map[string]string
	if err := json.Unmarshal(merged, &result); err != nil {
		t.Fatalf("merged metadata is not valid JSON: %v", err)
	}
	if result["rush_requested"] != "true" {
		t.Errorf("expected updated key, got %v", result)
	}
	if result["recurring_frequency"] != "weekly" {
		t.Errorf("expected untouched key to survive, got %v", result)
	}
}

func TestMergeMetadata_EmptyExisting(t *testing.T) {
	merged, err := MergeMetadata(nil, map[string]string{"rush_requested": "true"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var result map[string]string
	if err := json.Unmarshal(merged, &result); err != nil {
		t.Fatalf("merged metadata is not valid JSON: %v", err)
	}
	if result["rush_requested"] != "true" {
		t.Errorf("unexpected result: %v", result)
	}
}
