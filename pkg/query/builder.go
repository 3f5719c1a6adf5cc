// Package query turns list parameters into parameterized SQL fragments.
// Everything here is pure: no I/O, safe for concurrent use.
package query

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"headless-cms-backend/pkg/errs"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
	// MaxPage keeps (page-1)*per_page inside an int.
	MaxPage = math.MaxInt / MaxPerPage

	// FilterPrefix marks query parameters that filter on entry data.
	FilterPrefix = "filter."

	dataColumn   = "data"
	statusColumn = "status"
)

// 允许排序的列
var sortableColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"id":         true,
	"status":     true,
}

// filter names are embedded in SQL text, so only identifier-like names pass
var fieldNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// JSONPath renders an expression extracting key from a JSON column.
type JSONPath interface {
	JSONText(column, key string) string
}

// Filter is one equality predicate on a data field.
type Filter struct {
	Field string
	Value string
}

// Input holds raw list parameters as received from the caller.
type Input struct {
	Status  *string
	Filters []Filter
	Sort    string
	Page    string
	PerPage string
}

// Query is the built fragment set. Where has no leading WHERE keyword and
// Params line up with its placeholders; Limit and Offset are not in Params.
type Query struct {
	Where       string
	Order       string
	Limit       int
	Offset      int
	Params      []interface{}
	CurrentPage int
}

// Build assembles predicates in a fixed order: status first, then filters in
// the order given.
func Build(dialect JSONPath, in Input) (*Query, error) {
	var (
		predicates []string
		params     []interface{}
	)

	if in.Status != nil && *in.Status != "" {
		predicates = append(predicates, statusColumn+" = ?")
		params = append(params, *in.Status)
	}

	var c errs.Collector
	for _, f := range in.Filters {
		if !fieldNamePattern.MatchString(f.Field) {
			c.Add(FilterPrefix+f.Field, "Invalid filter field name %q", f.Field)
			continue
		}
		predicates = append(predicates, dialect.JSONText(dataColumn, f.Field)+" = ?")
		params = append(params, f.Value)
	}
	if err := c.Err("Invalid filter"); err != nil {
		return nil, err
	}

	page := parsePage(in.Page)
	limit := parsePerPage(in.PerPage)

	return &Query{
		Where:       strings.Join(predicates, " AND "),
		Order:       orderClause(in.Sort),
		Limit:       limit,
		Offset:      (page - 1) * limit,
		Params:      params,
		CurrentPage: page,
	}, nil
}

// FromValues reads list parameters from a query string. filter.<name> keys
// become filters in sorted key order so the bound parameter order is stable.
func FromValues(values url.Values) Input {
	in := Input{
		Sort:    values.Get("sort"),
		Page:    values.Get("page"),
		PerPage: values.Get("per_page"),
	}
	if values.Has("status") {
		s := values.Get("status")
		in.Status = &s
	}
	in.Filters = FiltersFromValues(values)
	return in
}

// FiltersFromValues strips the filter. prefix from matching keys.
func FiltersFromValues(values url.Values) []Filter {
	var keys []string
	for k := range values {
		if strings.HasPrefix(k, FilterPrefix) && len(k) > len(FilterPrefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	filters := make([]Filter, 0, len(keys))
	for _, k := range keys {
		filters = append(filters, Filter{
			Field: strings.TrimPrefix(k, FilterPrefix),
			Value: values.Get(k),
		})
	}
	return filters
}

// TotalPages returns ceil(total/limit).
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

func orderClause(s string) string {
	column, dir := "created_at", "DESC"
	if s != "" {
		name, desc := strings.TrimPrefix(s, "-"), strings.HasPrefix(s, "-")
		if sortableColumns[name] {
			column = name
			dir = "ASC"
			if desc {
				dir = "DESC"
			}
		}
	}
	if column == "id" {
		return fmt.Sprintf("id %s", dir)
	}
	// id breaks ties so pages never overlap
	return fmt.Sprintf("%s %s, id %s", column, dir, dir)
}

func parsePage(s string) int {
	n, ok := leadingInt(s)
	if !ok || n < 1 {
		return 1
	}
	if n > MaxPage {
		return MaxPage
	}
	return n
}

func parsePerPage(s string) int {
	n, ok := leadingInt(s)
	if !ok {
		return DefaultPerPage
	}
	if n < 1 {
		return 1
	}
	if n > MaxPerPage {
		return MaxPerPage
	}
	return n
}

// leadingInt reads an optional sign and the digits that follow it, ignoring
// any trailing text: "10abc" is 10, "2.5" is 2. Values past the int range
// saturate.
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		// only a range error is possible here
		n = math.MaxInt
	}
	if neg {
		n = -n
	}
	return n, true
}
