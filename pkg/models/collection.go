package models

import (
	"encoding/json"
	"math"
	"time"
)

// FieldType 字段类型
type FieldType string

const (
	FieldTypeString   FieldType = "string"
	FieldTypeText     FieldType = "text"
	FieldTypeMarkdown FieldType = "markdown"
	FieldTypeNumber   FieldType = "number"
	FieldTypeBoolean  FieldType = "boolean"
	FieldTypeSelect   FieldType = "select"
	FieldTypeDate     FieldType = "date"
)

// FieldTypes lists every recognised field type in declaration order.
var FieldTypes = []FieldType{
	FieldTypeString,
	FieldTypeText,
	FieldTypeMarkdown,
	FieldTypeNumber,
	FieldTypeBoolean,
	FieldTypeSelect,
	FieldTypeDate,
}

// Valid reports whether t is one of the recognised field types.
func (t FieldType) Valid() bool {
	for _, known := range FieldTypes {
		if t == known {
			return true
		}
	}
	return false
}

// FieldDefinition describes one attribute of a collection's entries.
// Constraint fields only apply to the matching type and are ignored otherwise.
// Keys without a typed home (placeholder, helpText, a constraint of the wrong
// shape for an unrelated type) are kept in Extra and written back unchanged.
type FieldDefinition struct {
	Name      string                 `json:"name" yaml:"name"`
	Label     string                 `json:"label,omitempty" yaml:"label,omitempty"`
	Type      FieldType              `json:"type" yaml:"type"`
	Required  bool                   `json:"required,omitempty" yaml:"required,omitempty"`
	Default   interface{}            `json:"default,omitempty" yaml:"default,omitempty"`
	MaxLength *int                   `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Min       *float64               `json:"min,omitempty" yaml:"min,omitempty"`
	Max       *float64               `json:"max,omitempty" yaml:"max,omitempty"`
	Options   []string               `json:"options,omitempty" yaml:"options,omitempty"`
	Extra     map[string]interface{} `json:"-" yaml:",inline"`
}

// FieldDefinitionFromMap builds a definition from a decoded JSON or YAML
// object. A typed key whose value has the wrong shape goes to Extra.
func FieldDefinitionFromMap(m map[string]interface{}) FieldDefinition {
	var f FieldDefinition
	keep := func(k string, v interface{}) {
		if f.Extra == nil {
			f.Extra = make(map[string]interface{})
		}
		f.Extra[k] = v
	}

	for k, v := range m {
		switch k {
		case "name":
			f.Name, _ = v.(string)
		case "type":
			t, _ := v.(string)
			f.Type = FieldType(t)
		case "label":
			if s, ok := v.(string); ok {
				f.Label = s
			} else if v != nil {
				keep(k, v)
			}
		case "required":
			if b, ok := v.(bool); ok {
				f.Required = b
			} else if v != nil {
				keep(k, v)
			}
		case "default":
			f.Default = v
		case "maxLength":
			if n, ok := number(v); ok && n >= 0 && n == math.Trunc(n) && n <= math.MaxInt32 {
				i := int(n)
				f.MaxLength = &i
			} else if v != nil {
				keep(k, v)
			}
		case "min", "max":
			n, ok := number(v)
			switch {
			case ok && k == "min":
				f.Min = &n
			case ok:
				f.Max = &n
			case v != nil:
				keep(k, v)
			}
		case "options":
			if opts, ok := stringList(v); ok {
				f.Options = opts
			} else if v != nil {
				keep(k, v)
			}
		default:
			keep(k, v)
		}
	}
	return f
}

type fieldDefinitionJSON FieldDefinition

// MarshalJSON writes the typed keys first, then Extra in key order.
func (f FieldDefinition) MarshalJSON() ([]byte, error) {
	typed, err := json.Marshal(fieldDefinitionJSON(f))
	if err != nil || len(f.Extra) == 0 {
		return typed, err
	}
	extra, err := json.Marshal(f.Extra)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(typed)+len(extra))
	out = append(out, typed[:len(typed)-1]...)
	out = append(out, ',')
	return append(out, extra[1:]...), nil
}

func (f *FieldDefinition) UnmarshalJSON(data []byte) error {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*f = FieldDefinitionFromMap(m)
	return nil
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
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

func stringList(v interface{}) ([]string, bool) {
	items, ok := v.([]interface{})
	if !ok {
		return nil, false
	}
	out := make([]string, len(items))
	for i, item := range items {
		s, isString := item.(string)
		if !isString {
			return nil, false
		}
		out[i] = s
	}
	return out, true
}

// DisplayLabel returns the label, falling back to the name.
func (f FieldDefinition) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// Collection is a user-defined content type
type Collection struct {
	ID          int64             `json:"id" db:"id"`
	Name        string            `json:"name" db:"name"`
	Slug        string            `json:"slug" db:"slug"`
	Description string            `json:"description" db:"description"`
	Fields      []FieldDefinition `json:"fields" db:"fields"`
	EntryCount  *int              `json:"entry_count,omitempty" db:"entry_count"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at" db:"updated_at"`
}

// CreateCollectionInput 创建集合的请求体
type CreateCollectionInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Fields      json.RawMessage `json:"fields"`
}

// CollectionPatch 部分更新：只有出现在请求体中的键才会覆盖
type CollectionPatch struct {
	Name        Optional[string]          `json:"name"`
	Description Optional[string]          `json:"description"`
	Fields      Optional[json.RawMessage] `json:"fields"`
}
