package query

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Sort orders items in place by keys. A "-" prefix sorts that key descending.
// Missing values sort last in either direction, strings use Traditional
// Chinese collation, and keys absent from fields are ignored. Items that
// compare equal on every key keep their input order.
func Sort[T any](items []T, keys []string, fields map[string]func(T) any) {
	type sortKey struct {
		get  func(T) any
		desc bool
	}

	var resolved []sortKey
	for _, k := range keys {
		k = strings.TrimSpace(k)
		desc := strings.HasPrefix(k, "-")
		if get, ok := fields[strings.TrimPrefix(k, "-")]; ok {
			resolved = append(resolved, sortKey{get: get, desc: desc})
		}
	}
	if len(resolved) == 0 {
		return
	}

	col := collate.New(language.TraditionalChinese)
	slices.SortStableFunc(items, func(a, b T) int {
		for _, k := range resolved {
			if c := compareValues(col, k.get(a), k.get(b), k.desc); c != 0 {
				return c
			}
		}
		return 0
	})
}

// compareValues orders nil after everything else, then compares by kind.
// desc flips the order of non-nil values only.
func compareValues(col *collate.Collator, a, b any, desc bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}

	c := compareNonNil(col, a, b)
	if desc {
		return -c
	}
	return c
}

func compareNonNil(col *collate.Collator, a, b any) int {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return cmp.Compare(fa, fb)
		}
	}
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return col.CompareString(av, bv)
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			default:
				return 1
			}
		}
	}
	return 0
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// Value unwraps an optional field for use as a sort value. A nil pointer
// becomes an untyped nil so it sorts last.
func Value[V any](p *V) any {
	if p == nil {
		return nil
	}
	return *p
}
