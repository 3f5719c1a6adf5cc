package schema

import (
	"headless-cms-backend/pkg/errs"
	"headless-cms-backend/pkg/models"
)

// ValidateEntryData validates data against the field list and returns the
// cleaned projection. Either every field is clean and the projection is
// returned, or a single validation error lists every problem.
func ValidateEntryData(defs []models.FieldDefinition, data map[string]interface{}) (map[string]interface{}, error) {
	cleaned := make(map[string]interface{}, len(defs))
	var c errs.Collector

	for _, def := range defs {
		field := Compile(def)
		value, present := data[def.Name]

		if isBlank(value, present) {
			if def.Required {
				c.Add(def.Name, "%s is required", def.DisplayLabel())
				continue
			}
			if def.Default == nil {
				cleaned[def.Name] = field.zero()
				continue
			}
			// defaults go through the same coercion as submitted values
			value = def.Default
		}

		out, problem := field.coerce(value)
		if problem != "" {
			c.Add(def.Name, "%s", problem)
			continue
		}
		cleaned[def.Name] = out
	}

	if err := c.Err("Validation failed"); err != nil {
		return nil, err
	}
	return cleaned, nil
}

// absent, null and "" all count as missing
func isBlank(v interface{}, present bool) bool {
	if !present || v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}
