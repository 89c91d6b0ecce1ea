package hubspot

import (
	"testing"
	"time"
)

func TestSplitName(t *testing.T) {
	tests := []struct {
		name  string
		first string
		last  string
	}{
		{"Jordan Baker", "Jordan", "Baker"},
		{"Jordan", "Jordan", ""},
		{"Jordan van der Berg", "Jordan", "van der Berg"},
		{"  Jordan Baker  ", "Jordan", "Baker"},
		{"", "", ""},
	}

	for _, tt := range tests {
		first, last := SplitName(tt.name)
		if first != tt.first || last != tt.last {
			t.Errorf("SplitName(%q) = (%q, %q), want (%q, %q)", tt.name, first, last, tt.first, tt.last)
		}
	}
}

func TestJoinName(t *testing.T) {
	if got := JoinName("Jordan", "Baker"); got != "Jordan Baker" {
		t.Errorf("unexpected join: %q", got)
	}
	if got := JoinName("Jordan", ""); got != "Jordan" {
		t.Errorf("unexpected join with empty last: %q", got)
	}
	if got := JoinName("", "Baker"); got != "Baker" {
		t.Errorf("unexpected join with empty first: %q", got)
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+1 (555) 010-0123", "+15550100123"},
		{"555.010.0123", "5550100123"},
		{"55+5", "555"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizePhone(tt.in); got != tt.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{12500, "125.00"},
		{5, "0.05"},
		{99, "0.99"},
		{0, "0.00"},
		{-150, "-1.50"},
	}
	for _, tt := range tests {
		if got := FormatAmount(tt.cents); got != tt.want {
			t.Errorf("FormatAmount(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestMapper_DealProperties(t *testing.T) {
	m := NewMapper()
	deliveryDate := time.Date(2026, 9, 4, 0, 0, 0, 0, time.UTC)

	bag := m.DealProperties(OrderSyncData{
		OrderNumber:    "a1b2c3",
		Status:         "in_transit",
		AmountCents:    12500,
		Currency:       "USD",
		CustomerName:   "Jordan Baker",
		PickupAddress:  "12 Harbor St",
		DropoffAddress: "400 Pine Ave",
		DeliveryDate:   &deliveryDate,
	})

	if bag["dealname"] != "Delivery a1b2c3 - Jordan Baker" {
		t.Errorf("unexpected dealname: %q", bag["dealname"])
	}
	if bag["amount"] != "125.00" {
		t.Errorf("unexpected amount: %q", bag["amount"])
	}
	if bag["dealstage"] != "presentationscheduled" {
		t.Errorf("unexpected dealstage: %q", bag["dealstage"])
	}
	if bag["delivery_date"] != "2026-09-04T00:00:00Z" {
		t.Errorf("unexpected delivery_date: %q", bag["delivery_date"])
	}
	if bag["pickup_address"] != "12 Harbor St" || bag["dropoff_address"] != "400 Pine Ave" {
		t.Errorf("unexpected addresses: %q / %q", bag["pickup_address"], bag["dropoff_address"])
	}
}

func TestMapper_DealPropertiesOmitsEmptyFields(t *testing.T) {
	m := NewMapper()
	bag := m.DealProperties(OrderSyncData{OrderNumber: "a1b2c3", Status: "assigned", AmountCents: 100})

	if _, ok := bag["pickup_address"]; ok {
		t.Error("expected empty pickup_address to be omitted")
	}
	if _, ok := bag["delivery_date"]; ok {
		t.Error("expected nil delivery_date to be omitted")
	}
}

func TestMapper_DealPropertiesNeverIncludeCRMOwnedFields(t *testing.T) {
	m := NewMapper()
	bag := m.DealProperties(OrderSyncData{OrderNumber: "a1b2c3", Status: "delivered", AmountCents: 100})

	for _, name := range MetadataProperties {
		if _, ok := bag[name]; ok {
			t.Errorf("CRM-owned property %q must not be forward-synced", name)
		}
	}
}

func TestMapper_ContactProperties(t *testing.T) {
	m := NewMapper()
	bag := m.ContactProperties(OrderSyncData{
		CustomerName:  "Jordan Baker",
		CustomerEmail: " Jordan.Baker@Example.com ",
		CustomerPhone: "+1 555-010-0123",
	})

	if bag["email"] != "jordan.baker@example.com" {
		t.Errorf("unexpected email: %q", bag["email"])
	}
	if bag["firstname"] != "Jordan" || bag["lastname"] != "Baker" {
		t.Errorf("unexpected name split: %q / %q", bag["firstname"], bag["lastname"])
	}
	if bag["phone"] != "+15550100123" {
		t.Errorf("unexpected phone: %q", bag["phone"])
	}
}

func TestMapper_PropertyNameOverrides(t *testing.T) {
	t.Setenv("HUBSPOT_PROP_DEAL_ORDER_NUMBER", "custom_order_ref")
	t.Setenv("HUBSPOT_STAGE_DELIVERED", "wondeal")

	m := NewMapper()
	bag := m.DealProperties(OrderSyncData{OrderNumber: "a1b2c3", Status: "delivered", AmountCents: 100})

	if bag["custom_order_ref"] != "a1b2c3" {
		t.Errorf("expected overridden property name to carry the order number, got %v", bag)
	}
	if bag["dealstage"] != "wondeal" {
		t.Errorf("expected overridden stage, got %q", bag["dealstage"])
	}
}

func TestStageForStatus_UnknownStatusMapsToEmpty(t *testing.T) {
	m := NewMapper()
	if got := m.StageForStatus("bogus"); got != "" {
		t.Errorf("expected empty stage, got %q", got)
	}
}
