// Package scoring rates kits against quiz answers.
package scoring

import (
	"cmp"
	"math"
	"slices"

	"github.com/routerhaus/kitfinder/models"
)

// DefaultRecommendations is the size of the recommendations panel.
const DefaultRecommendations = 6

// Weights are the contribution of each quiz criterion. They sum to 1.
type Weights struct {
	Coverage   float64
	DeviceLoad float64
	PrimaryUse float64
	Mesh       float64
	Wan        float64
	Price      float64
}

// DefaultWeights returns the catalog's scoring weights.
func DefaultWeights() Weights {
	return Weights{
		Coverage:   0.30,
		DeviceLoad: 0.25,
		PrimaryUse: 0.25,
		Mesh:       0.10,
		Wan:        0.05,
		Price:      0.05,
	}
}

// Sum adds the weights.
func (w Weights) Sum() float64 {
	return w.Coverage + w.DeviceLoad + w.PrimaryUse + w.Mesh + w.Wan + w.Price
}

// Percent returns the weights in whole percent, used to check they add to 100
// without float tolerance.
func (w Weights) Percent() int {
	p := func(v float64) int { return int(math.Round(v * 100)) }
	return p(w.Coverage) + p(w.DeviceLoad) + p(w.PrimaryUse) + p(w.Mesh) + p(w.Wan) + p(w.Price)
}

// Score rates k against q with the default weights.
func Score(k *models.Kit, q models.QuizAnswer) int {
	return DefaultWeights().Score(k, q)
}

// Score returns the weighted match of k against q scaled to 0..100. Mesh, WAN
// and price only count when the quiz asks for them.
func (w Weights) Score(k *models.Kit, q models.QuizAnswer) int {
	s := 0.0
	if k.CoverageBucket == q.Coverage {
		s += w.Coverage
	}
	if k.DeviceLoad == q.DeviceLoad {
		s += w.DeviceLoad
	}
	if k.HasUse(q.PrimaryUse) {
		s += w.PrimaryUse
	}
	if q.MeshNeed && k.MeshReady {
		s += w.Mesh
	}
	if q.WanPref != "" && k.WanTier == q.WanPref {
		s += w.Wan
	}
	if q.PricePref != "" && k.PriceBucket == q.PricePref {
		s += w.Price
	}
	return int(math.Round(s * 100))
}

// Apply rescores every item in place with the default weights.
func Apply(items []models.Kit, q models.QuizAnswer) {
	w := DefaultWeights()
	for i := range items {
		items[i].Score = w.Score(&items[i], q)
	}
}

// Clear zeroes every score.
func Clear(items []models.Kit) {
	for i := range items {
		items[i].Score = 0
	}
}

// Recommend returns the n best scored kits, ties kept in input order.
func Recommend(items []models.Kit, n int) []models.Kit {
	if n <= 0 {
		n = DefaultRecommendations
	}
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b models.Kit) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
