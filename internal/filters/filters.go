package filters

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/bossy-radar/radar/internal/domain"
	"github.com/bossy-radar/radar/internal/query"
)

// State is the company search filter as projected from a URL query
type State struct {
	Page       int
	Size       int
	Sort       string
	Name       string
	Industry   []string
	MarketType []string
}

// Default returns the filter with every field at its default
func Default() State {
	return State{Page: 1, Size: domain.DefaultPageSize}
}

// FromQuery derives the filter from a URL query. Absent or invalid fields
// take their defaults, size is capped at MaxPageSize and repeated keys are
// collected in first-seen order without duplicates.
func FromQuery(v url.Values) State {
	s := State{
		Page:       atoiOr(v.Get("page"), 1),
		Size:       atoiOr(v.Get("size"), domain.DefaultPageSize),
		Sort:       strings.TrimSpace(v.Get("sort")),
		Name:       strings.TrimSpace(v.Get("name")),
		Industry:   v["industry"],
		MarketType: v["market_type"],
	}
	return s.normalize()
}

// Query serializes the filter, omitting fields equal to their defaults
func (s State) Query() url.Values {
	s = s.normalize()
	q := url.Values{}
	if s.Page != 1 {
		q.Set("page", strconv.Itoa(s.Page))
	}
	if s.Size != domain.DefaultPageSize {
		q.Set("size", strconv.Itoa(s.Size))
	}
	if s.Sort != "" {
		q.Set("sort", s.Sort)
	}
	if s.Name != "" {
		q.Set("name", s.Name)
	}
	for _, i := range s.Industry {
		q.Add("industry", i)
	}
	for _, m := range s.MarketType {
		q.Add("market_type", m)
	}
	return q
}

// Equal reports whether both filters describe the same query
func (s State) Equal(o State) bool {
	a, b := s.normalize(), o.normalize()
	return a.Page == b.Page &&
		a.Size == b.Size &&
		a.searchEqual(b)
}

// Params converts the filter into list parameters for the data source
func (s State) Params() query.Params {
	s = s.normalize()
	p := query.Params{
		Page:       s.Page,
		Size:       s.Size,
		Name:       s.Name,
		Industry:   slices.Clone(s.Industry),
		MarketType: slices.Clone(s.MarketType),
	}
	if s.Sort != "" {
		p.Sort = []string{s.Sort}
	}
	return p
}

// searchEqual compares the fields whose change resets pagination
func (s State) searchEqual(o State) bool {
	return s.Sort == o.Sort &&
		s.Name == o.Name &&
		slices.Equal(s.Industry, o.Industry) &&
		slices.Equal(s.MarketType, o.MarketType)
}

func (s State) normalize() State {
	if s.Page < 1 {
		s.Page = 1
	}
	switch {
	case s.Size < 1:
		s.Size = domain.DefaultPageSize
	case s.Size > domain.MaxPageSize:
		s.Size = domain.MaxPageSize
	}
	s.Sort = strings.TrimSpace(s.Sort)
	s.Name = strings.TrimSpace(s.Name)
	s.Industry = uniq(s.Industry)
	s.MarketType = uniq(s.MarketType)
	return s
}

func uniq(values []string) []string {
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}
