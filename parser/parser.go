// Package parser turns raw catalog records into enriched kits.
package parser

import (
	"regexp"
	"strings"

	"github.com/routerhaus/kitfinder/models"
)

// Derive enriches a raw record. It never fails: missing numbers count as 0,
// missing lists as empty and unknown brands fall back to a heuristic.
func Derive(raw models.RawKit) models.Kit {
	return DefaultBrands.derive(raw)
}

func (br *BrandResolver) derive(raw models.RawKit) models.Kit {
	model := raw.Model.String()
	brand := br.Resolve(model)

	kit := models.Kit{
		Brand:           brand,
		Model:           model,
		CoverageSqft:    raw.CoverageSqft.Float(),
		MaxWanSpeedMbps: raw.MaxWanSpeedMbps.Float(),
		PriceUSD:        raw.PriceUSD.Float(),
		MSRP:            raw.MSRP.Float(),
		WifiStandard:    raw.WifiStandard.String(),
		MeshReady:       bool(raw.MeshReady),
		PrimaryUse:      nonNil(raw.PrimaryUse),
		AccessSupport:   nonNil(raw.AccessSupport),
		Reviews:         raw.Reviews,
		Commerce:        raw.Commerce,
		Media:           raw.Media,
		MeshEco:         raw.MeshEco.String(),
		DeviceLoad:      raw.DeviceLoad.String(),
	}

	kit.CoverageBucket = CoverageBucket(kit.CoverageSqft)
	kit.WanTier = WanTier(kit.MaxWanSpeedMbps)
	kit.PriceBucket = PriceBucket(kit.EffectivePrice())
	kit.WifiGen = kit.WifiStandard

	if kit.MeshReady && kit.MeshEco == "" {
		kit.MeshEco = MeshEcosystem(brand)
	}
	if kit.DeviceLoad == "" {
		kit.DeviceLoad = DefaultDeviceLoad(kit.PrimaryUse)
	}

	kit.Slug = Slugify(kit.Brand + "-" + kit.Model)
	return kit
}

// CoverageBucket maps square footage to a coverage label.
func CoverageBucket(sqft float64) string {
	switch {
	case sqft <= 1800:
		return models.CoverageSmall
	case sqft <= 3000:
		return models.CoverageMedium
	default:
		return models.CoverageLarge
	}
}

// WanTier maps the fastest WAN port speed in Mbps to a tier label.
func WanTier(mbps float64) string {
	switch {
	case mbps <= 1000:
		return models.WanTier1G
	case mbps <= 2500:
		return models.WanTier2G5
	case mbps <= 5000:
		return models.WanTier5G
	default:
		return models.WanTier10G
	}
}

// PriceBucket maps a USD price to a price band. Unpriced kits land in the
// lowest band.
func PriceBucket(price float64) string {
	switch {
	case price < 150:
		return models.PriceUnder150
	case price < 300:
		return models.Price150to299
	case price < 600:
		return models.Price300to599
	default:
		return models.Price600Plus
	}
}

var meshEcosystems = map[string]string{
	"ASUS":     "AiMesh",
	"NETGEAR":  "Orbi",
	"TP-Link":  "Deco",
	"eero":     "eero",
	"Ubiquiti": "UniFi",
}

// MeshEcosystem guesses the mesh family of a brand.
func MeshEcosystem(brand string) string {
	if eco, ok := meshEcosystems[brand]; ok {
		return eco
	}
	return "EasyMesh"
}

// DefaultDeviceLoad assumes gaming households run more devices.
func DefaultDeviceLoad(primaryUse []string) string {
	if models.StringList(primaryUse).Contains("Gaming") {
		return models.DeviceLoadMid
	}
	return models.DeviceLoadLight
}

var nonWord = regexp.MustCompile(`[^a-z0-9_]+`)

// Slugify lowercases s and collapses every run of non-word characters into a
// single hyphen, trimming hyphens at either end.
// "ASUS-ZenWiFi XT8 (2-pack)" -> "asus-zenwifi-xt8-2-pack".
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = nonWord.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func nonNil(list models.StringList) []string {
	if list == nil {
		return []string{}
	}
	return []string(list)
}
