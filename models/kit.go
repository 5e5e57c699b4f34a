// Package models defines the catalog records shared by every stage.
package models

import "encoding/json"

// Bucket labels. The en dash in DeviceLoad and coverage/price labels is part
// of the value and appears verbatim in URLs and facet counts.
const (
	CoverageSmall  = "Apartment/Small"
	CoverageMedium = "2–3 Bedroom"
	CoverageLarge  = "Large/Multi-floor"

	WanTier1G  = "≤1G"
	WanTier2G5 = "2.5G"
	WanTier5G  = "5G"
	WanTier10G = "10G"
	WanTierSFP = "SFP+"

	PriceUnder150 = "<$150"
	Price150to299 = "$150–$299"
	Price300to599 = "$300–$599"
	Price600Plus  = "$600+"

	DeviceLoadLight = "1–5"
	DeviceLoadMid   = "6–15"
	DeviceLoadHeavy = "16+"

	UnknownBrand = "Unknown"
)

// Reviews carries the aggregated review score of a kit.
type Reviews struct {
	Score Number `json:"score"`
}

// UnmarshalJSON ignores anything that is not an object.
func (r *Reviews) UnmarshalJSON(data []byte) error {
	*r = Reviews{}
	if !isObject(data) {
		return nil
	}
	type plain Reviews
	var p plain
	if err := json.Unmarshal(data, &p); err == nil {
		*r = Reviews(p)
	}
	return nil
}

// Commerce carries retailer and purchase link information.
type Commerce struct {
	Retailers StringList `json:"retailers,omitempty"`
	BuyLink   Text       `json:"buyLink,omitempty"`
}

// UnmarshalJSON ignores anything that is not an object.
func (c *Commerce) UnmarshalJSON(data []byte) error {
	*c = Commerce{}
	if !isObject(data) {
		return nil
	}
	type plain Commerce
	var p plain
	if err := json.Unmarshal(data, &p); err == nil {
		*c = Commerce(p)
	}
	return nil
}

// Media carries product imagery.
type Media struct {
	Img Text `json:"img,omitempty"`
}

// UnmarshalJSON ignores anything that is not an object.
func (m *Media) UnmarshalJSON(data []byte) error {
	*m = Media{}
	if !isObject(data) {
		return nil
	}
	type plain Media
	var p plain
	if err := json.Unmarshal(data, &p); err == nil {
		*m = Media(p)
	}
	return nil
}

// RawKit is a catalog record exactly as found in the catalog file.
type RawKit struct {
	Model           Text       `json:"model"`
	CoverageSqft    Number     `json:"coverageSqft"`
	MaxWanSpeedMbps Number     `json:"maxWanSpeedMbps"`
	PriceUSD        Number     `json:"priceUsd"`
	MSRP            Number     `json:"msrp"`
	WifiStandard    Text       `json:"wifiStandard"`
	MeshReady       Flag       `json:"meshReady"`
	MeshEco         Text       `json:"meshEco"`
	PrimaryUse      StringList `json:"primaryUse"`
	AccessSupport   StringList `json:"accessSupport"`
	DeviceLoad      Text       `json:"deviceLoad"`
	Reviews         *Reviews   `json:"reviews"`
	Commerce        *Commerce  `json:"commerce"`
	Media           *Media     `json:"media"`
}

// UnmarshalJSON decodes a record, treating non-objects as an empty record.
func (r *RawKit) UnmarshalJSON(data []byte) error {
	*r = RawKit{}
	if !isObject(data) {
		return nil
	}
	type plain RawKit
	var p plain
	if err := json.Unmarshal(data, &p); err == nil {
		*r = RawKit(p)
	}
	return nil
}

// Kit is an enriched catalog item. Everything except Score is fixed at load.
type Kit struct {
	Slug            string    `json:"slug"`
	Brand           string    `json:"brand"`
	Model           string    `json:"model"`
	CoverageSqft    float64   `json:"coverageSqft"`
	MaxWanSpeedMbps float64   `json:"maxWanSpeedMbps"`
	PriceUSD        float64   `json:"priceUsd,omitempty"`
	MSRP            float64   `json:"msrp,omitempty"`
	WifiStandard    string    `json:"wifiStandard"`
	MeshReady       bool      `json:"meshReady"`
	PrimaryUse      []string  `json:"primaryUse"`
	Reviews         *Reviews  `json:"reviews,omitempty"`
	Commerce        *Commerce `json:"commerce,omitempty"`
	Media           *Media    `json:"media,omitempty"`

	CoverageBucket string   `json:"coverageBucket"`
	WanTier        string   `json:"wanTier"`
	PriceBucket    string   `json:"priceBucket"`
	WifiGen        string   `json:"wifiGen"`
	MeshEco        string   `json:"meshEco,omitempty"`
	AccessSupport  []string `json:"accessSupport"`
	DeviceLoad     string   `json:"deviceLoad"`

	// Score is the quiz match score, 0 until a quiz is applied.
	Score int `json:"_score,omitempty"`
}

// Title is the display name used on cards.
func (k *Kit) Title() string {
	return k.Brand + " " + k.Model
}

// EffectivePrice is the street price, falling back to MSRP.
func (k *Kit) EffectivePrice() float64 {
	if k.PriceUSD != 0 {
		return k.PriceUSD
	}
	return k.MSRP
}

// ReviewScore returns the review score or 0 when the kit has none.
func (k *Kit) ReviewScore() float64 {
	if k.Reviews == nil {
		return 0
	}
	return k.Reviews.Score.Float()
}

// HasUse reports whether use is one of the kit's primary uses.
func (k *Kit) HasUse(use string) bool {
	return StringList(k.PrimaryUse).Contains(use)
}
