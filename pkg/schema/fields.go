package schema

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"headless-cms-backend/pkg/models"
)

// Field is a compiled field definition. Each implementation carries the
// constraints of its own type; the set of implementations is closed to this package.
type Field interface {
	Definition() models.FieldDefinition
	// zero is the cleaned value of an absent optional field without a default.
	zero() interface{}
	// coerce validates a present value and returns its cleaned form, or a
	// non-empty problem description.
	coerce(v interface{}) (interface{}, string)
}

// Compile turns a stored definition into its typed variant.
// Unrecognised types compile to a pass-through field.
func Compile(def models.FieldDefinition) Field {
	b := base{def: def}
	switch def.Type {
	case models.FieldTypeString:
		return stringField{base: b, maxLength: def.MaxLength}
	case models.FieldTypeText, models.FieldTypeMarkdown:
		return longTextField{base: b}
	case models.FieldTypeNumber:
		return numberField{base: b, min: def.Min, max: def.Max}
	case models.FieldTypeBoolean:
		return booleanField{base: b}
	case models.FieldTypeSelect:
		return selectField{base: b, options: def.Options}
	case models.FieldTypeDate:
		return dateField{base: b}
	default:
		return opaqueField{base: b}
	}
}

type base struct {
	def models.FieldDefinition
}

func (b base) Definition() models.FieldDefinition { return b.def }
func (b base) zero() interface{}                  { return "" }
func (b base) label() string                      { return b.def.DisplayLabel() }

type stringField struct {
	base
	maxLength *int
}

func (f stringField) coerce(v interface{}) (interface{}, string) {
	s, ok := v.(string)
	if !ok {
		return nil, f.label() + " must be a string"
	}
	if f.maxLength != nil && utf8.RuneCountInString(s) > *f.maxLength {
		return nil, f.label() + " must be at most " + strconv.Itoa(*f.maxLength) + " characters"
	}
	return s, ""
}

// text and markdown
type longTextField struct {
	base
}

func (f longTextField) coerce(v interface{}) (interface{}, string) {
	s, ok := v.(string)
	if !ok {
		return nil, f.label() + " must be a string"
	}
	return s, ""
}

type numberField struct {
	base
	min, max *float64
}

func (f numberField) coerce(v interface{}) (interface{}, string) {
	n, ok := toNumber(v)
	if !ok {
		return nil, f.label() + " must be a number"
	}
	if f.min != nil && n < *f.min {
		return nil, f.label() + " must be at least " + formatNumber(*f.min)
	}
	if f.max != nil && n > *f.max {
		return nil, f.label() + " must be at most " + formatNumber(*f.max)
	}
	return n, ""
}

type booleanField struct {
	base
}

func (booleanField) zero() interface{} { return false }

func (booleanField) coerce(v interface{}) (interface{}, string) {
	return truthy(v), ""
}

type selectField struct {
	base
	options []string
}

func (f selectField) coerce(v interface{}) (interface{}, string) {
	if s, ok := v.(string); ok {
		for _, o := range f.options {
			if s == o {
				return s, ""
			}
		}
	}
	return nil, f.label() + " must be one of: " + strings.Join(f.options, ", ")
}

type dateField struct {
	base
}

// numeric month/day elements also match a single digit: "2006/1/2" reads "2024/03/01"
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-1-2",
	"2006/1/2",
	"2006/1/2 15:04:05",
	"1/2/2006",
	"1/2/2006 15:04:05",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
	"Monday, January 2, 2006",
	time.RFC1123,
	time.RFC1123Z,
	time.RFC850,
	time.ANSIC,
}

// stored verbatim, never normalised
func (f dateField) coerce(v interface{}) (interface{}, string) {
	s, ok := v.(string)
	if ok {
		trimmed := strings.TrimSpace(s)
		for _, layout := range dateLayouts {
			if _, err := time.Parse(layout, trimmed); err == nil {
				return s, ""
			}
		}
	}
	return nil, f.label() + " must be a valid date"
}

type opaqueField struct {
	base
}

func (opaqueField) coerce(v interface{}) (interface{}, string) {
	return v, ""
}

// toNumber mirrors loose numeric coercion: numbers pass, numeric strings parse,
// booleans map to 1/0. Non-finite results are rejected.
func toNumber(v interface{}) (float64, bool) {
	var n float64
	switch x := v.(type) {
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		n = f
	case bool:
		if x {
			n = 1
		}
	default:
		f, ok := toFloat(v)
		if !ok {
			return 0, false
		}
		n = f
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func truthy(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	default:
		if n, ok := toFloat(v); ok {
			return n != 0 && !math.IsNaN(n)
		}
		return true
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
