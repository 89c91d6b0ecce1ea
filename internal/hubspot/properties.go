package hubspot

import (
	"fmt"
	"os"
	"strings"
	"time"

	"delivery_dispatch/internal/models"
)

// PropertyBag is a validated key/value map destined for the HubSpot API.
// HubSpot property values are always strings on the wire.
type PropertyBag map[string]string

// OrderSyncData carries the internal fields that feed a forward sync.
type OrderSyncData struct {
	OrderNumber    string
	Status         string
	AmountCents    int64
	Currency       string
	CustomerName   string
	CustomerEmail  string
	CustomerPhone  string
	PickupAddress  string
	DropoffAddress string
	DeliveryDate   *time.Time
	CreatedAt      time.Time
}

// Mapper translates internal fields to tenant-specific HubSpot property
// names. Property keys are configured per deployment, so every name can be
// overridden via environment with a hard-coded fallback.
type Mapper struct {
	contactNames map[string]string
	dealNames    map[string]string
	stageByStatus map[string]string
}

func NewMapper() *Mapper {
	return &Mapper{
		contactNames: map[string]string{
			"email":     propName("HUBSPOT_PROP_CONTACT_EMAIL", "email"),
			"firstname": propName("HUBSPOT_PROP_CONTACT_FIRSTNAME", "firstname"),
			"lastname":  propName("HUBSPOT_PROP_CONTACT_LASTNAME", "lastname"),
			"phone":     propName("HUBSPOT_PROP_CONTACT_PHONE", "phone"),
		},
		dealNames: map[string]string{
			"dealname":        propName("HUBSPOT_PROP_DEAL_NAME", "dealname"),
			"amount":          propName("HUBSPOT_PROP_DEAL_AMOUNT", "amount"),
			"dealstage":       propName("HUBSPOT_PROP_DEAL_STAGE", "dealstage"),
			"order_number":    propName("HUBSPOT_PROP_DEAL_ORDER_NUMBER", "order_number"),
			"pickup_address":  propName("HUBSPOT_PROP_DEAL_PICKUP_ADDRESS", "pickup_address"),
			"dropoff_address": propName("HUBSPOT_PROP_DEAL_DROPOFF_ADDRESS", "dropoff_address"),
			"delivery_date":   propName("HUBSPOT_PROP_DEAL_DELIVERY_DATE", "delivery_date"),
		},
		stageByStatus: map[string]string{
			string(models.OrderReadyForDispatch): propName("HUBSPOT_STAGE_READY_FOR_DISPATCH", "appointmentscheduled"),
			string(models.OrderAssigned):         propName("HUBSPOT_STAGE_ASSIGNED", "qualifiedtobuy"),
			string(models.OrderAccepted):         propName("HUBSPOT_STAGE_ACCEPTED", "qualifiedtobuy"),
			string(models.OrderPickedUp):         propName("HUBSPOT_STAGE_PICKED_UP", "presentationscheduled"),
			string(models.OrderInTransit):        propName("HUBSPOT_STAGE_IN_TRANSIT", "presentationscheduled"),
			string(models.OrderDelivered):        propName("HUBSPOT_STAGE_DELIVERED", "closedwon"),
			string(models.OrderCanceled):         propName("HUBSPOT_STAGE_CANCELED", "closedlost"),
		},
	}
}

func propName(envKey, fallback string) string {
	if value := os.Getenv(envKey); value != "" {
		return value
	}
	return fallback
}

// StageForStatus maps an internal order status onto the external pipeline
// stage. Unknown statuses map to empty and are dropped by validation.
func (m *Mapper) StageForStatus(status string) string {
	return m.stageByStatus[status]
}

// ContactProperties maps customer fields onto the contact property bag.
// CRM-owned fields are never included here: forward sync must not overwrite
// sales-entered values.
func (m *Mapper) ContactProperties(data OrderSyncData) PropertyBag {
	first, last := SplitName(data.CustomerName)

	bag := PropertyBag{}
	bag.set(m.contactNames["email"], models.NormalizeEmail(data.CustomerEmail))
	bag.set(m.contactNames["firstname"], first)
	bag.set(m.contactNames["lastname"], last)
	bag.set(m.contactNames["phone"], NormalizePhone(data.CustomerPhone))
	return bag
}

// DealProperties maps order fields onto the deal property bag.
func (m *Mapper) DealProperties(data OrderSyncData) PropertyBag {
	bag := PropertyBag{}
	bag.set(m.dealNames["dealname"], dealName(data))
	bag.set(m.dealNames["amount"], FormatAmount(data.AmountCents))
	bag.set(m.dealNames["dealstage"], m.StageForStatus(data.Status))
	bag.set(m.dealNames["order_number"], data.OrderNumber)
	bag.set(m.dealNames["pickup_address"], data.PickupAddress)
	bag.set(m.dealNames["dropoff_address"], data.DropoffAddress)
	if data.DeliveryDate != nil {
		bag.set(m.dealNames["delivery_date"], FormatTime(*data.DeliveryDate))
	}
	return bag
}

func (b PropertyBag) set(name, value string) {
	if name == "" || value == "" {
		return
	}
	b[name] = value
}

func dealName(data OrderSyncData) string {
	if data.CustomerName != "" {
		return fmt.Sprintf("Delivery %s - %s", data.OrderNumber, data.CustomerName)
	}
	return "Delivery " + data.OrderNumber
}

// FormatAmount renders cents as a fixed two-decimal string, the format the
// HubSpot amount property expects.
func FormatAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// FormatTime renders a timestamp as ISO-8601.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// NormalizePhone strips a phone number down to digits and a leading plus.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for i, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SplitName splits a single full name into the contact first/last name pair.
// Everything after the first space becomes the last name.
func SplitName(name string) (string, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}
	parts := strings.SplitN(name, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.TrimSpace(parts[1])
}

// JoinName recombines the first/last name pair into the internal single
// name field.
func JoinName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}
