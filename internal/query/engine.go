package query

import (
	"slices"
	"strings"

	"github.com/bossy-radar/radar/internal/domain"
)

// Spec tells the engine how to read the filterable and sortable fields of T.
// A nil accessor disables the matching filter.
type Spec[T any] struct {
	Code       func(T) string
	Text       []func(T) string
	Industry   func(T) string
	MarketType func(T) string
	Year       func(T) int
	// Sortable fields by name. Accessors return nil for missing values.
	Fields map[string]func(T) any
	// Used when the caller does not ask for a sort
	DefaultSort []string
}

// Apply runs the full pipeline over a copy of items: identifier filter,
// keyword search, categorical filters, sort, then pagination.
func Apply[T any](items []T, p Params, spec Spec[T]) domain.Page[T] {
	out := slices.Clone(items)

	if spec.Code != nil {
		out = FilterIn(out, p.Codes, spec.Code)
	}
	if len(spec.Text) > 0 {
		out = Search(out, p.Name, spec.Text...)
	}
	if spec.Industry != nil {
		out = FilterIn(out, p.Industry, spec.Industry)
	}
	if spec.MarketType != nil {
		out = FilterIn(out, ExpandMarketTypes(p.MarketType), spec.MarketType)
	}
	if spec.Year != nil {
		out = FilterYears(out, p.Years, spec.Year)
	}

	keys := p.Sort
	if len(keys) == 0 {
		keys = spec.DefaultSort
	}
	Sort(out, keys, spec.Fields)

	return Paginate(out, p.PageOrDefault(), p.SizeOrDefault())
}

// FilterIn keeps items whose field is in values. Blank values are dropped
// first and an empty set keeps everything.
func FilterIn[T any](items []T, values []string, field func(T) string) []T {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			set[v] = struct{}{}
		}
	}
	if len(set) == 0 {
		return items
	}

	out := items[:0:0]
	for _, it := range items {
		if _, ok := set[field(it)]; ok {
			out = append(out, it)
		}
	}
	return out
}

// FilterYears keeps items whose year is in years; an empty set keeps everything
func FilterYears[T any](items []T, years []int, year func(T) int) []T {
	if len(years) == 0 {
		return items
	}
	out := items[:0:0]
	for _, it := range items {
		if slices.Contains(years, year(it)) {
			out = append(out, it)
		}
	}
	return out
}

// Search keeps items where any of fields contains keyword, case-insensitively.
// A blank keyword keeps everything.
func Search[T any](items []T, keyword string, fields ...func(T) string) []T {
	k := strings.ToLower(strings.TrimSpace(keyword))
	if k == "" {
		return items
	}
	out := items[:0:0]
	for _, it := range items {
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f(it)), k) {
				out = append(out, it)
				break
			}
		}
	}
	return out
}

// marketAliases maps a logical market type to the raw values used across sources
var marketAliases = map[string][]string{
	domain.MarketListed:   {"Listed", "sii", "SII"},
	domain.MarketOTC:      {"OTC", "otc"},
	domain.MarketEmerging: {"Emerging", "rotc", "ROTC"},
	domain.MarketPublic:   {"Public", "pub", "PUB"},
}

// ExpandMarketTypes replaces each logical market type with its raw aliases.
// Unknown values pass through unchanged and blanks are dropped.
func ExpandMarketTypes(values []string) []string {
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if aliases, ok := marketAliases[v]; ok {
			out = append(out, aliases...)
			continue
		}
		out = append(out, v)
	}
	return out
}
