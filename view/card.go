// Package view turns kits into the display records a presentation layer
// renders: result cards and compare-list lines.
package view

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/routerhaus/kitfinder/models"
)

// WiFi is the display spelling with a non-breaking hyphen.
const WiFi = "Wi‑Fi"

// DefaultBuyLabel is shown when a kit lists no retailer.
const DefaultBuyLabel = "Buy"

// Card is everything needed to draw one result.
type Card struct {
	Slug       string   `json:"slug"`
	Title      string   `json:"title"`
	Img        string   `json:"img,omitempty"`
	Chips      []string `json:"chips"`
	Specs      []string `json:"specs"`
	PriceLabel string   `json:"priceLabel"`
	BuyLabel   string   `json:"buyLabel"`
	BuyLink    string   `json:"buyLink,omitempty"`
	Score      int      `json:"score,omitempty"`
}

// NewCard builds the card for k.
func NewCard(k *models.Kit) Card {
	c := Card{
		Slug:       k.Slug,
		Title:      k.Title(),
		Chips:      Chips(k),
		Specs:      Specs(k),
		PriceLabel: PriceLabel(k),
		BuyLabel:   DefaultBuyLabel,
		Score:      k.Score,
	}
	if k.Media != nil {
		c.Img = k.Media.Img.String()
	}
	if k.Commerce != nil {
		if len(k.Commerce.Retailers) > 0 && k.Commerce.Retailers[0] != "" {
			c.BuyLabel = k.Commerce.Retailers[0]
		}
		c.BuyLink = k.Commerce.BuyLink.String()
	}
	return c
}

// Cards builds a card per kit, keeping order.
func Cards(items []models.Kit) []Card {
	cards := make([]Card, len(items))
	for i := range items {
		cards[i] = NewCard(&items[i])
	}
	return cards
}

// Chips are the short badges: Wi-Fi generation, mesh and WAN tier.
func Chips(k *models.Kit) []string {
	chips := make([]string, 0, 3)
	if k.WifiGen != "" {
		chips = append(chips, WiFi+" "+k.WifiGen)
	}
	if k.MeshReady {
		chips = append(chips, "Mesh")
	}
	if k.WanTier != "" {
		chips = append(chips, k.WanTier+" WAN")
	}
	return chips
}

// Specs are the bullet lines under the chips. Absent values are skipped.
func Specs(k *models.Kit) []string {
	specs := make([]string, 0, 3)
	if k.CoverageSqft != 0 {
		specs = append(specs, SquareFeet(k.CoverageSqft))
	}
	if k.MeshEco != "" {
		specs = append(specs, k.MeshEco+" mesh")
	}
	if len(k.AccessSupport) > 0 {
		specs = append(specs, strings.Join(k.AccessSupport, " / "))
	}
	return specs
}

// PriceLabel shows the street price, else the MSRP, else nothing.
func PriceLabel(k *models.Kit) string {
	switch {
	case k.PriceUSD != 0:
		return fmt.Sprintf("$%.2f", k.PriceUSD)
	case k.MSRP != 0:
		return fmt.Sprintf("MSRP $%.2f", k.MSRP)
	default:
		return ""
	}
}

// SquareFeet formats an area with thousands separators: "5,500 sq ft".
func SquareFeet(sqft float64) string {
	return humanize.Commaf(sqft) + " sq ft"
}

// CompareLine is the one-line summary shown in the compare drawer.
func CompareLine(k *models.Kit) string {
	return fmt.Sprintf("%s %s · %s %s · %s · %s",
		k.Brand, k.Model, WiFi, k.WifiGen, k.WanTier, SquareFeet(k.CoverageSqft))
}

// CompareLines summarises each kit in order.
func CompareLines(items []models.Kit) []string {
	lines := make([]string, len(items))
	for i := range items {
		lines[i] = CompareLine(&items[i])
	}
	return lines
}
