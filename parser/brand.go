package parser

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/routerhaus/kitfinder/models"
)

// BrandRule maps a model-name pattern to a canonical brand.
type BrandRule struct {
	Pattern *regexp.Regexp
	Brand   string
}

// BrandResolver tests rules in order and stops at the first match.
type BrandResolver struct {
	rules []BrandRule
}

// NewBrandResolver builds a resolver. Rule order is match priority.
func NewBrandResolver(rules []BrandRule) *BrandResolver {
	return &BrandResolver{rules: rules}
}

// DefaultBrands knows the router brands found in the kit catalog.
var DefaultBrands = NewBrandResolver([]BrandRule{
	rule(`^TP[-‑–]?Link`, "TP-Link"),
	rule(`^(ASUS|ROG)`, "ASUS"),
	rule(`^(NETGEAR|Nighthawk|Orbi)`, "NETGEAR"),
	rule(`^(Linksys|Velop)`, "Linksys"),
	rule(`^(Amazon eero|eero)`, "eero"),
	rule(`^(Google|Nest)`, "Google"),
	rule(`^(Ubiquiti|UniFi|Dream)`, "Ubiquiti"),
	rule(`^Arris`, "Arris"),
	rule(`^MikroTik`, "MikroTik"),
	rule(`^MSI`, "MSI"),
	rule(`^Cudy`, "Cudy"),
	rule(`^Synology`, "Synology"),
	rule(`^Tenda`, "Tenda"),
	rule(`^D[-‒–]?Link`, "D-Link"),
	rule(`^Starlink`, "Starlink"),
	rule(`^Zyxel`, "Zyxel"),
})

func rule(pattern, brand string) BrandRule {
	return BrandRule{Pattern: regexp.MustCompile(`(?i)` + pattern), Brand: brand}
}

// Resolve returns the brand for a model name. Without a matching rule the
// first whitespace-separated word of the model, stripped to ASCII letters, is
// used; an empty result becomes "Unknown".
func (br *BrandResolver) Resolve(model string) string {
	for _, r := range br.rules {
		if r.Pattern.MatchString(model) {
			return r.Brand
		}
	}

	// Leading whitespace leaves an empty first word.
	first := model
	if i := strings.IndexFunc(model, unicode.IsSpace); i >= 0 {
		first = model[:i]
	}
	letters := strings.Map(func(r rune) rune {
		if r <= unicode.MaxASCII && unicode.IsLetter(r) {
			return r
		}
		return -1
	}, first)
	if letters == "" {
		return models.UnknownBrand
	}
	return letters
}

// Derive enriches raw using this resolver's rules.
func (br *BrandResolver) Derive(raw models.RawKit) models.Kit {
	return br.derive(raw)
}
