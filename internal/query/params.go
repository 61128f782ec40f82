package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/bossy-radar/radar/internal/domain"
)

// Params is the parameter bag accepted by every list operation.
// Zero values mean "not set".
type Params struct {
	Page int
	Size int
	// Sort keys, "-" prefix for descending
	Sort []string
	// Keyword matched against the record's text fields
	Name string

	Codes      []string
	Industry   []string
	MarketType []string
	Years      []int

	// Violation filters, backend only
	DataSource []string
	Authority  []string
	StartDate  string
	EndDate    string
	MinFine    *int64
	MaxFine    *int64

	// Yearly summary sections to include, backend only
	Include []string
}

// WithPage returns a copy of p pointing at page n with the given size
func (p Params) WithPage(n, size int) Params {
	p.Page = n
	p.Size = size
	return p
}

// PageOrDefault returns the requested page, 1 when unset
func (p Params) PageOrDefault() int {
	if p.Page < 1 {
		return 1
	}
	return p.Page
}

// SizeOrDefault returns the requested size, DefaultPageSize when unset
func (p Params) SizeOrDefault() int {
	if p.Size < 1 {
		return domain.DefaultPageSize
	}
	return p.Size
}

// Values encodes p as a backend query string. codeKey names the identifier
// parameter, which is "code" on the companies endpoint and "company_code"
// elsewhere. List values repeat their key.
func (p Params) Values(codeKey string) url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Size > 0 {
		v.Set("size", strconv.Itoa(p.Size))
	}
	addAll(v, "sort", p.Sort)
	if name := strings.TrimSpace(p.Name); name != "" {
		v.Set("name", name)
	}
	addAll(v, codeKey, p.Codes)
	addAll(v, "industry", p.Industry)
	addAll(v, "market_type", p.MarketType)
	for _, y := range p.Years {
		v.Add("year", strconv.Itoa(y))
	}
	addAll(v, "data_source", p.DataSource)
	addAll(v, "authority", p.Authority)
	if p.StartDate != "" {
		v.Set("start_date", p.StartDate)
	}
	if p.EndDate != "" {
		v.Set("end_date", p.EndDate)
	}
	if p.MinFine != nil {
		v.Set("min_fine", strconv.FormatInt(*p.MinFine, 10))
	}
	if p.MaxFine != nil {
		v.Set("max_fine", strconv.FormatInt(*p.MaxFine, 10))
	}
	addAll(v, "include", p.Include)
	return v
}

// ParseValues is the inverse of Values. Unparseable numbers are ignored.
func ParseValues(v url.Values, codeKey string) Params {
	p := Params{
		Sort:       nonBlank(v["sort"]),
		Name:       strings.TrimSpace(v.Get("name")),
		Codes:      nonBlank(v[codeKey]),
		Industry:   nonBlank(v["industry"]),
		MarketType: nonBlank(v["market_type"]),
		DataSource: nonBlank(v["data_source"]),
		Authority:  nonBlank(v["authority"]),
		StartDate:  v.Get("start_date"),
		EndDate:    v.Get("end_date"),
		Include:    nonBlank(v["include"]),
	}
	if p.Name == "" {
		p.Name = strings.TrimSpace(v.Get("keyword"))
	}
	p.Page, _ = strconv.Atoi(v.Get("page"))
	p.Size, _ = strconv.Atoi(v.Get("size"))
	for _, s := range v["year"] {
		if y, err := strconv.Atoi(s); err == nil {
			p.Years = append(p.Years, y)
		}
	}
	if n, err := strconv.ParseInt(v.Get("min_fine"), 10, 64); err == nil {
		p.MinFine = &n
	}
	if n, err := strconv.ParseInt(v.Get("max_fine"), 10, 64); err == nil {
		p.MaxFine = &n
	}
	return p
}

func addAll(v url.Values, key string, values []string) {
	for _, s := range values {
		if s = strings.TrimSpace(s); s != "" {
			v.Add(key, s)
		}
	}
}

func nonBlank(values []string) []string {
	var out []string
	for _, s := range values {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
