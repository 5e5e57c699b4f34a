// Package facet holds the facet registry and the count, filter and chip
// operations that iterate it.
package facet

import "github.com/routerhaus/kitfinder/models"

// Cardinality tells whether a facet extracts one value or many per kit.
type Cardinality int

const (
	Single Cardinality = iota
	Multi
)

func (c Cardinality) String() string {
	if c == Multi {
		return "multi"
	}
	return "single"
}

// Extractor returns the facet values of a kit. Single-valued extractors
// return at most one element.
type Extractor func(k *models.Kit) []string

// Facet describes one filterable dimension of the catalog.
type Facet struct {
	Key         string
	Label       string
	Cardinality Cardinality
	Extract     Extractor
}

// Registry is an ordered set of facets. Counting, filtering, chips and the
// query codec all iterate a registry, so a new facet needs one entry.
type Registry struct {
	facets []Facet
	index  map[string]int
	quick  []string
}

// NewRegistry builds a registry. quick lists the keys offered as quick chips.
// Later facets with a duplicate key are ignored.
func NewRegistry(facets []Facet, quick ...string) *Registry {
	r := &Registry{index: make(map[string]int, len(facets))}
	for _, f := range facets {
		if _, dup := r.index[f.Key]; dup {
			continue
		}
		r.index[f.Key] = len(r.facets)
		r.facets = append(r.facets, f)
	}
	for _, key := range quick {
		if _, ok := r.index[key]; ok {
			r.quick = append(r.quick, key)
		}
	}
	return r
}

// Facets returns the facets in registry order.
func (r *Registry) Facets() []Facet {
	return r.facets
}

// Lookup finds a facet by key.
func (r *Registry) Lookup(key string) (Facet, bool) {
	i, ok := r.index[key]
	if !ok {
		return Facet{}, false
	}
	return r.facets[i], true
}

// Has reports whether key names a registered facet.
func (r *Registry) Has(key string) bool {
	_, ok := r.index[key]
	return ok
}

// Label returns the display label of key, or key itself when unknown.
func (r *Registry) Label(key string) string {
	if f, ok := r.Lookup(key); ok {
		return f.Label
	}
	return key
}

// QuickKeys returns the quick-chip facet keys.
func (r *Registry) QuickKeys() []string {
	return r.quick
}

func single(get func(k *models.Kit) string) Extractor {
	return func(k *models.Kit) []string {
		v := get(k)
		if v == "" {
			return nil
		}
		return []string{v}
	}
}

// Default is the catalog's facet registry.
var Default = NewRegistry([]Facet{
	{Key: "brand", Label: "Brand", Extract: single(func(k *models.Kit) string { return k.Brand })},
	{Key: "wifiGen", Label: "Wi‑Fi Gen", Extract: single(func(k *models.Kit) string { return k.WifiGen })},
	{Key: "meshReady", Label: "Mesh Ready", Extract: single(func(k *models.Kit) string {
		if k.MeshReady {
			return "Yes"
		}
		return "No"
	})},
	{Key: "meshEco", Label: "Mesh Ecosystem", Extract: single(func(k *models.Kit) string { return k.MeshEco })},
	{Key: "wanTier", Label: "WAN Tier", Extract: single(func(k *models.Kit) string { return k.WanTier })},
	{Key: "coverageBucket", Label: "Coverage", Extract: single(func(k *models.Kit) string { return k.CoverageBucket })},
	{Key: "deviceLoad", Label: "Device Load", Extract: single(func(k *models.Kit) string { return k.DeviceLoad })},
	{Key: "primaryUse", Label: "Primary Use", Cardinality: Multi, Extract: func(k *models.Kit) []string { return k.PrimaryUse }},
	{Key: "access", Label: "Access Type", Cardinality: Multi, Extract: func(k *models.Kit) []string { return k.AccessSupport }},
	{Key: "priceBucket", Label: "Price", Extract: single(func(k *models.Kit) string { return k.PriceBucket })},
}, "wifiGen", "meshReady", "wanTier")
