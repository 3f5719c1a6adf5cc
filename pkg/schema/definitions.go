package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"headless-cms-backend/pkg/errs"
	"headless-cms-backend/pkg/models"
)

// ValidateFieldDefinitions checks a decoded (JSON or YAML) field list.
// It never stops at the first problem: every violation is reported in input order.
func ValidateFieldDefinitions(fields interface{}) error {
	list, ok := fields.([]interface{})
	if !ok {
		return errs.Validation("Fields must be an array")
	}

	var c errs.Collector
	seen := make(map[string]bool, len(list))

	for i, item := range list {
		path := fmt.Sprintf("fields[%d]", i)
		def, ok := item.(map[string]interface{})
		if !ok {
			c.Add(path, "Field definition must be an object")
			continue
		}
		problems := c.Len()

		name, _ := def["name"].(string)
		switch {
		case strings.TrimSpace(name) == "":
			c.Add(path+".name", "Field name is required")
		case seen[name]:
			c.Add(path+".name", "Duplicate field name %q", name)
		default:
			seen[name] = true
		}

		typ, _ := def["type"].(string)
		if !models.FieldType(typ).Valid() {
			if typ == "" {
				c.Add(path+".type", "Field type is required")
			} else {
				c.Add(path+".type", "Invalid field type %q (allowed: %s)", typ, allowedTypes())
			}
		}

		if v, ok := def["label"]; ok && v != nil {
			if _, isString := v.(string); !isString {
				c.Add(path+".label", "label must be a string")
			}
		}

		if v, ok := def["required"]; ok && v != nil {
			if _, isBool := v.(bool); !isBool {
				c.Add(path+".required", "required must be a boolean")
			}
		}

		switch models.FieldType(typ) {
		case models.FieldTypeSelect:
			checkOptions(&c, path, def["options"])
		case models.FieldTypeString:
			if v, ok := def["maxLength"]; ok && v != nil {
				if n, isNum := toFloat(v); !isNum || n < 0 || n != math.Trunc(n) || n > math.MaxInt32 {
					c.Add(path+".maxLength", "maxLength must be a non-negative integer")
				}
			}
		case models.FieldTypeNumber:
			checkBounds(&c, path, def)
		}

		// a default must itself be a clean value, otherwise cleaned entries
		// would fail their own schema
		if v, ok := def["default"]; ok && v != nil && c.Len() == problems {
			field := Compile(models.FieldDefinitionFromMap(def))
			if _, problem := field.coerce(v); problem != "" {
				c.Add(path+".default", "Invalid default: %s", problem)
			}
		}
	}

	return c.Err("Invalid field definitions")
}

// DecodeFieldDefinitions parses raw JSON, validates it and returns the typed list.
// Keys the typed view does not model survive in FieldDefinition.Extra.
func DecodeFieldDefinitions(raw []byte) ([]models.FieldDefinition, error) {
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, errs.Validation("Fields must be valid JSON")
	}
	if err := ValidateFieldDefinitions(generic); err != nil {
		return nil, err
	}
	list := generic.([]interface{})
	defs := make([]models.FieldDefinition, len(list))
	for i, item := range list {
		defs[i] = models.FieldDefinitionFromMap(item.(map[string]interface{}))
	}
	return defs, nil
}

func checkOptions(c *errs.Collector, path string, raw interface{}) {
	opts, ok := raw.([]interface{})
	if !ok || len(opts) == 0 {
		c.Add(path+".options", "Select fields require a non-empty options array")
		return
	}
	for _, o := range opts {
		if _, isString := o.(string); !isString {
			c.Add(path+".options", "Select options must be strings")
			return
		}
	}
}

func checkBounds(c *errs.Collector, path string, def map[string]interface{}) {
	var lo, hi float64
	var hasMin, hasMax bool
	if v, ok := def["min"]; ok && v != nil {
		if lo, hasMin = toFloat(v); !hasMin {
			c.Add(path+".min", "min must be a number")
		}
	}
	if v, ok := def["max"]; ok && v != nil {
		if hi, hasMax = toFloat(v); !hasMax {
			c.Add(path+".max", "max must be a number")
		}
	}
	if hasMin && hasMax && lo > hi {
		c.Add(path+".max", "max must be greater than or equal to min")
	}
}

func allowedTypes() string {
	names := make([]string, len(models.FieldTypes))
	for i, t := range models.FieldTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// toFloat accepts the numeric shapes produced by encoding/json and yaml.v3.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
