package catalog

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/routerhaus/kitfinder/facet"
	"github.com/routerhaus/kitfinder/ranking"
)

const (
	sortParam   = "sort"
	facetPrefix = "f_"
)

// EncodeQuery serialises a sort key and selection as URL query parameters:
// sort=<key> and f_<facet>=<v1>,<v2>. Values are sorted and inactive facets
// are omitted, so equal states encode identically. A comma inside a value is
// read back as a separator, and a value that is itself a complete
// percent-encoding of another string (such as "50%25") is decoded to that
// string.
func EncodeQuery(sort ranking.SortKey, sel facet.Selection) url.Values {
	v := url.Values{}
	v.Set(sortParam, string(sort))
	for _, key := range sel.Keys() {
		v.Set(facetPrefix+key, strings.Join(sel.Values(key), ","))
	}
	return v
}

// DecodeQuery parses query parameters back into a sort key and selection.
// ok is false when sort is absent or unrecognised, in which case the key is
// Relevance. Facets unknown to reg are dropped; a nil reg keeps every facet.
// Values that were percent-encoded twice by older links are decoded once more.
func DecodeQuery(values url.Values, reg *facet.Registry) (sort ranking.SortKey, ok bool, sel facet.Selection) {
	sort, ok = ranking.ParseSortKey(values.Get(sortParam))
	sel = facet.NewSelection()
	for param, list := range values {
		key, found := strings.CutPrefix(param, facetPrefix)
		if !found || key == "" {
			continue
		}
		if reg != nil && !reg.Has(key) {
			continue
		}
		for _, raw := range list {
			raw = decodeTwice(raw)
			for _, v := range strings.Split(raw, ",") {
				if v != "" {
					sel.Add(key, v)
				}
			}
		}
	}
	return sort, ok, sel
}

// decodeTwice unescapes raw when it is exactly the encoding of its unescaped
// form, as QueryEscape or encodeURIComponent would write it. Values that only
// happen to contain a percent escape, such as "50%25 off", are kept.
func decodeTwice(raw string) string {
	if !strings.Contains(raw, "%") {
		return raw
	}
	un, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	esc := url.QueryEscape(un)
	if raw == esc || raw == strings.ReplaceAll(esc, "+", "%20") {
		return un
	}
	return raw
}

// ParseQuery decodes a raw query string such as "sort=price-asc&f_brand=ASUS".
// A leading "?" is allowed.
func ParseQuery(raw string, reg *facet.Registry) (ranking.SortKey, bool, facet.Selection, error) {
	values, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		return ranking.Relevance, false, facet.NewSelection(), fmt.Errorf("parse query %q: %w", raw, err)
	}
	sort, ok, sel := DecodeQuery(values, reg)
	return sort, ok, sel, nil
}
