// Package oracle implements the ProbabilityOracle set: the external,
// pure-function/object collaborators GameLoop and PlayResolver consult for
// every stochastic outcome. None of these types hold per-replay mutable
// state — they are loaded once from artifacts on disk and shared read-only
// across replays, per spec's oracle immutability rule.
package oracle

import (
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// TriangularSample implements the clamping rule: given (q025,q50,q975),
// clamp each to [minAllowed,maxAllowed]; if q025>q50 set q025=q50; if
// q975<q50 set q975=q50; sample from Triangle(q025,q50,q975).
func TriangularSample(rng *rand.Rand, q025, q50, q975, minAllowed, maxAllowed float64) float64 {
	clamp := func(v float64) float64 {
		if v < minAllowed {
			return minAllowed
		}
		if v > maxAllowed {
			return maxAllowed
		}
		return v
	}
	q025, q50, q975 = clamp(q025), clamp(q50), clamp(q975)
	if q025 > q50 {
		q025 = q50
	}
	if q975 < q50 {
		q975 = q50
	}
	if q025 == q50 && q50 == q975 {
		return q50
	}
	tri := distuv.NewTriangle(q025, q975, q50, rng)
	return tri.Rand()
}

// PMF is an empirical probability mass function over integer-bucketed
// outcomes, e.g. the kickoff return-yardage tables loaded from the
// artifact files named in spec §6.
type PMF struct {
	buckets []int
	weights []float64
	cum     []float64
	total   float64
}

// NewPMF builds a PMF from a bucket->probability map, normalizing weights
// so callers may pass raw counts as well as probabilities.
func NewPMF(bucketWeights map[int]float64) *PMF {
	buckets := make([]int, 0, len(bucketWeights))
	for b := range bucketWeights {
		buckets = append(buckets, b)
	}
	sort.Ints(buckets)
	weights := make([]float64, len(buckets))
	cum := make([]float64, len(buckets))
	var total float64
	for i, b := range buckets {
		weights[i] = bucketWeights[b]
		total += weights[i]
		cum[i] = total
	}
	return &PMF{buckets: buckets, weights: weights, cum: cum, total: total}
}

// Sample draws one bucket from the PMF via inverse-CDF search.
func (p *PMF) Sample(rng *rand.Rand) int {
	if p.total <= 0 || len(p.buckets) == 0 {
		return 0
	}
	target := rng.Float64() * p.total
	i := sort.SearchFloat64s(p.cum, target)
	if i >= len(p.buckets) {
		i = len(p.buckets) - 1
	}
	return p.buckets[i]
}

// Categorical draws one of n labeled outcomes from explicit probabilities,
// used for the decision-oracle categorical distributions (pass/run/field
// goal/qb kneel, go/field-goal/punt).
func Categorical(rng *rand.Rand, labels []string, probs []float64) string {
	c := distuv.NewCategorical(probs, rng)
	idx := int(c.Rand())
	if idx < 0 || idx >= len(labels) {
		return labels[len(labels)-1]
	}
	return labels[idx]
}

// Bernoulli draws true with probability p.
func Bernoulli(rng *rand.Rand, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return rng.Float64() < p
}
