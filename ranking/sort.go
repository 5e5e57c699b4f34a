// Package ranking orders kits for display.
package ranking

import (
	"cmp"
	"math"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/routerhaus/kitfinder/models"
)

// SortKey names a result ordering.
type SortKey string

const (
	Relevance    SortKey = "relevance"
	WifiDesc     SortKey = "wifi-desc"
	PriceAsc     SortKey = "price-asc"
	PriceDesc    SortKey = "price-desc"
	CoverageDesc SortKey = "coverage-desc"
	WanDesc      SortKey = "wan-desc"
	ReviewsDesc  SortKey = "reviews-desc"
)

// Keys lists every sort key in menu order.
var Keys = []SortKey{Relevance, WifiDesc, PriceAsc, PriceDesc, CoverageDesc, WanDesc, ReviewsDesc}

// ParseSortKey recognises a sort key. Unknown input yields Relevance and false.
func ParseSortKey(s string) (SortKey, bool) {
	key := SortKey(s)
	if slices.Contains(Keys, key) {
		return key, true
	}
	return Relevance, false
}

var tiers = []string{models.WanTier1G, models.WanTier2G5, models.WanTier5G, models.WanTier10G, models.WanTierSFP}

// TierRank is the position of a WAN tier in ascending speed order, or -1.
func TierRank(tier string) int {
	return slices.Index(tiers, tier)
}

// Comparer compares strings so that embedded numbers order by value.
type Comparer struct {
	c *collate.Collator
}

// NewNumericComparer returns a comparer using English numeric collation.
// A comparer is not safe for concurrent use.
func NewNumericComparer() *Comparer {
	return &Comparer{c: collate.New(language.English, collate.Numeric)}
}

// Compare returns -1, 0 or +1. "6" < "6E" < "7".
func (c *Comparer) Compare(a, b string) int {
	return c.c.CompareString(a, b)
}

// Sort returns a stably sorted copy of items. The input is not modified.
func Sort(items []models.Kit, key SortKey) []models.Kit {
	out := slices.Clone(items)
	slices.SortStableFunc(out, Compare(key))
	return out
}

// Compare returns the comparison function used by Sort for key.
func Compare(key SortKey) func(a, b models.Kit) int {
	switch key {
	case WifiDesc:
		num := NewNumericComparer()
		return func(a, b models.Kit) int {
			return num.Compare(b.WifiGen, a.WifiGen)
		}
	case PriceAsc:
		return func(a, b models.Kit) int {
			return cmp.Compare(askPrice(a), askPrice(b))
		}
	case PriceDesc:
		return func(a, b models.Kit) int {
			return cmp.Compare(b.PriceUSD, a.PriceUSD)
		}
	case CoverageDesc:
		return func(a, b models.Kit) int {
			return cmp.Compare(b.CoverageSqft, a.CoverageSqft)
		}
	case WanDesc:
		return func(a, b models.Kit) int {
			return cmp.Compare(TierRank(b.WanTier), TierRank(a.WanTier))
		}
	case ReviewsDesc:
		return func(a, b models.Kit) int {
			return cmp.Compare(b.ReviewScore(), a.ReviewScore())
		}
	default:
		num := NewNumericComparer()
		return func(a, b models.Kit) int {
			if c := cmp.Compare(b.Score, a.Score); c != 0 {
				return c
			}
			if c := num.Compare(b.WifiGen, a.WifiGen); c != 0 {
				return c
			}
			return cmp.Compare(b.CoverageSqft, a.CoverageSqft)
		}
	}
}

// askPrice puts unpriced kits last when sorting by ascending price. Only the
// street price counts; MSRP-only kits are unpriced here.
func askPrice(k models.Kit) float64 {
	if k.PriceUSD == 0 {
		return math.Inf(1)
	}
	return k.PriceUSD
}
