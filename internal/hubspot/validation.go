package hubspot

import (
	"fmt"
	"strconv"

	"delivery_dispatch/pkg/hubspot"
)

// ValidationResult carries the filtered bag plus everything worth surfacing.
// Warnings cover fields that were silently dropped (schemas evolve
// independently of this software); Errors cover values the schema rejects.
// Neither aborts a sync: the filtered bag is still sent.
type ValidationResult struct {
	Properties PropertyBag
	Warnings   []string
	Errors     []string
}

// ValidateProperties filters a property bag against the live schema:
//   - names absent from the schema are dropped with a warning
//   - read-only and calculated properties are dropped with a warning
//   - type mismatches (non-numeric to number, value outside an enumeration)
//     are excluded and collected as errors
//   - empty values are always dropped, the API rejects them
func ValidateProperties(bag PropertyBag, schema map[string]hubspot.Property) ValidationResult {
	result := ValidationResult{Properties: PropertyBag{}}

	for name, value := range bag {
		if value == "" {
			continue
		}

		prop, ok := schema[name]
		if !ok {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("property %q not present in schema, dropped", name))
			continue
		}

		if prop.Calculated || prop.ModificationMetadata.ReadOnlyValue {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("property %q is read-only, dropped", name))
			continue
		}

		if err := checkType(prop, value); err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}

		result.Properties[name] = value
	}

	return result
}

func checkType(prop hubspot.Property, value string) error {
	switch prop.Type {
	case "number":
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return fmt.Errorf("property %q expects a number, got %q", prop.Name, value)
		}
	case "enumeration":
		if len(prop.Options) == 0 {
			return nil
		}
		for _, opt := range prop.Options {
			if opt.Value == value {
				return nil
			}
		}
		return fmt.Errorf("property %q does not allow value %q", prop.Name, value)
	case "bool":
		if value != "true" && value != "false" {
			return fmt.Errorf("property %q expects true or false, got %q", prop.Name, value)
		}
	}
	return nil
}
