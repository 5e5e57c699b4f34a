package facet

import (
	"slices"

	"github.com/routerhaus/kitfinder/models"
	"github.com/routerhaus/kitfinder/ranking"
)

// Counts maps facet key to value to the number of kits exhibiting it.
type Counts map[string]map[string]int

// Option is one checkbox entry of a facet.
type Option struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Chip is a toggle button for a single facet value.
type Chip struct {
	Facet  string `json:"facet"`
	Label  string `json:"label"`
	Value  string `json:"value"`
	Active bool   `json:"active"`
}

// Text is the chip caption, e.g. "WAN Tier: 2.5G".
func (c Chip) Text() string {
	return c.Label + ": " + c.Value
}

// ComputeCounts counts facet values over items. A multi-valued facet counts
// every value a kit contains. Empty values are not counted.
func (r *Registry) ComputeCounts(items []models.Kit) Counts {
	counts := make(Counts, len(r.facets))
	for _, f := range r.facets {
		counts[f.Key] = make(map[string]int)
	}
	for i := range items {
		for _, f := range r.facets {
			for _, v := range f.Extract(&items[i]) {
				if v == "" {
					continue
				}
				counts[f.Key][v]++
			}
		}
	}
	return counts
}

// ComputeCounts counts items against the Default registry.
func ComputeCounts(items []models.Kit) Counts {
	return Default.ComputeCounts(items)
}

// Options returns the values of key with their counts, ordered by numeric
// collation so "Wi-Fi 6E" sits between "6" and "7".
func (c Counts) Options(key string) []Option {
	values := c[key]
	if len(values) == 0 {
		return nil
	}
	out := make([]Option, 0, len(values))
	for v, n := range values {
		out = append(out, Option{Value: v, Count: n})
	}
	num := ranking.NewNumericComparer()
	slices.SortFunc(out, func(a, b Option) int {
		if d := num.Compare(a.Value, b.Value); d != 0 {
			return d
		}
		// Collation can tie distinct strings; keep the order total.
		if a.Value < b.Value {
			return -1
		}
		if a.Value > b.Value {
			return 1
		}
		return 0
	})
	return out
}

// Total is the sum of counts for key.
func (c Counts) Total(key string) int {
	n := 0
	for _, v := range c[key] {
		n += v
	}
	return n
}

// QuickChips returns a chip for every counted value of the quick facets.
func (r *Registry) QuickChips(counts Counts, sel Selection) []Chip {
	var chips []Chip
	for _, key := range r.quick {
		label := r.Label(key)
		for _, opt := range counts.Options(key) {
			chips = append(chips, Chip{
				Facet:  key,
				Label:  label,
				Value:  opt.Value,
				Active: sel.Has(key, opt.Value),
			})
		}
	}
	return chips
}

// ActiveChips returns one removable chip per selected value. Facets follow
// registry order; unregistered keys come last, sorted.
func (r *Registry) ActiveChips(sel Selection) []Chip {
	var chips []Chip
	add := func(key string) {
		label := r.Label(key)
		for _, v := range sel.Values(key) {
			chips = append(chips, Chip{Facet: key, Label: label, Value: v, Active: true})
		}
	}
	for _, f := range r.facets {
		add(f.Key)
	}
	for _, key := range sel.Keys() {
		if !r.Has(key) {
			add(key)
		}
	}
	return chips
}
