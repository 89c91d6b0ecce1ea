package hubspot

import (
	"encoding/json"
	"time"

	"delivery_dispatch/internal/models"

	"gorm.io/datatypes"
)

// MetadataProperties are the CRM-owned deal fields: entered by sales in
// HubSpot, cached into the order's metadata jsonb, and never overwritten by
// internal writes. Forward sync never sends them.
var MetadataProperties = []string{
	"special_delivery_instructions",
	"recurring_frequency",
	"rush_requested",
}

func IsMetadataProperty(name string) bool {
	for _, p := range MetadataProperties {
		if p == name {
			return true
		}
	}
	return false
}

type reverseTarget struct {
	column    string
	transform func(string) (interface{}, bool)
}

// dealReverse maps externally-editable deal properties onto order columns.
// dealstage and pipeline deliberately have no entry: order status is owned
// by the state machine and a HubSpot-side stage edit must not alter it.
var dealReverse = map[string]reverseTarget{
	"pickup_address":  {column: "pickup_address"},
	"dropoff_address": {column: "dropoff_address"},
	"delivery_date":   {column: "delivery_date", transform: parseReverseTime},
}

// contactReverse maps contact properties onto customer columns. The name
// pair is special-cased in ContactColumnUpdates.
var contactReverse = map[string]reverseTarget{
	"phone": {column: "phone", transform: func(v string) (interface{}, bool) {
		return NormalizePhone(v), true
	}},
}

func parseReverseTime(value string) (interface{}, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return nil, false
}

// DealColumnUpdates splits an incoming deal property-change set into order
// column updates, CRM-owned metadata updates, and properties with no
// reverse mapping (ignored).
func DealColumnUpdates(changes map[string]string) (map[string]interface{}, map[string]string, []string) {
	updates := map[string]interface{}{}
	metadata := map[string]string{}
	var ignored []string

	for name, value := range changes {
		if IsMetadataProperty(name) {
			metadata[name] = value
			continue
		}
		target, ok := dealReverse[name]
		if !ok {
			ignored = append(ignored, name)
			continue
		}
		if target.transform != nil {
			v, ok := target.transform(value)
			if !ok {
				ignored = append(ignored, name)
				continue
			}
			updates[target.column] = v
			continue
		}
		updates[target.column] = value
	}

	return updates, metadata, ignored
}

// ContactColumnUpdates computes customer column updates from an incoming
// contact property-change set. An update to one half of the name pair is
// recombined with the currently-known other half, so a firstname-only edit
// preserves the lastname already on record.
func ContactColumnUpdates(customer *models.Customer, changes map[string]string) (map[string]interface{}, []string) {
	updates := map[string]interface{}{}
	var ignored []string

	first, last := SplitName(customer.Name)
	nameChanged := false

	for name, value := range changes {
		switch name {
		case "firstname":
			first = value
			nameChanged = true
		case "lastname":
			last = value
			nameChanged = true
		default:
			target, ok := contactReverse[name]
			if !ok {
				ignored = append(ignored, name)
				continue
			}
			if target.transform != nil {
				v, ok := target.transform(value)
				if !ok {
					ignored = append(ignored, name)
					continue
				}
				updates[target.column] = v
				continue
			}
			updates[target.column] = value
		}
	}

	if nameChanged {
		updates["name"] = JoinName(first, last)
	}

	return updates, ignored
}

// MergeMetadata folds CRM-owned property values into the order's metadata
// cache without disturbing keys that did not change.
func MergeMetadata(existing datatypes.JSON, updates map[string]string) (datatypes.JSON, error) {
	current := map[string]interface{}{}
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &current); err != nil {
			return nil, err
		}
	}
	for k, v := range updates {
		current[k] = v
	}
	merged, err := json.Marshal(current)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(merged), nil
}
