package facet

import "github.com/routerhaus/kitfinder/models"

// Apply keeps the kits matching sel: AND across facets, OR within one facet.
// A multi-valued facet matches when any of its values is selected. Keys not in
// the registry are ignored. Input order is preserved and items is not
// modified.
func (r *Registry) Apply(items []models.Kit, sel Selection) []models.Kit {
	var active []Facet
	for _, f := range r.facets {
		if sel.Active(f.Key) {
			active = append(active, f)
		}
	}
	out := make([]models.Kit, 0, len(items))
	if len(active) == 0 {
		return append(out, items...)
	}
	for i := range items {
		if matches(&items[i], active, sel) {
			out = append(out, items[i])
		}
	}
	return out
}

// Apply filters items with the Default registry.
func Apply(items []models.Kit, sel Selection) []models.Kit {
	return Default.Apply(items, sel)
}

func matches(k *models.Kit, active []Facet, sel Selection) bool {
	for _, f := range active {
		values := f.Extract(k)
		if f.Cardinality == Single && len(values) == 0 {
			// An empty single value can still be selected explicitly.
			values = []string{""}
		}
		hit := false
		for _, v := range values {
			if sel.Has(f.Key, v) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}
