package oracle

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTriangularSample_StaysWithinClampedBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		v := TriangularSample(rng, 10, 50, 90, 0, 100)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
}

func TestTriangularSample_ClampsOutOfRangeQuantiles(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	// q025 > q50 and q975 < q50 before clamping to [minAllowed,maxAllowed]:
	// must not panic and must stay within bounds.
	for i := 0; i < 500; i++ {
		v := TriangularSample(rng, 200, 50, -50, 0, 100)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
}

func TestTriangularSample_DegenerateAllEqual(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	v := TriangularSample(rng, 30, 30, 30, 0, 100)
	assert.Equal(t, 30.0, v)
}

func TestPMF_SampleOnlyReturnsKnownBuckets(t *testing.T) {
	p := NewPMF(map[int]float64{-5: 0.2, 0: 0.3, 10: 0.5})
	rng := rand.New(rand.NewSource(3))
	seen := map[int]bool{}
	for i := 0; i < 1000; i++ {
		b := p.Sample(rng)
		seen[b] = true
		assert.Contains(t, []int{-5, 0, 10}, b)
	}
	assert.True(t, len(seen) > 1, "expected multiple distinct buckets across 1000 draws")
}

func TestPMF_EmptyReturnsZero(t *testing.T) {
	p := NewPMF(map[int]float64{})
	rng := rand.New(rand.NewSource(1))
	assert.Equal(t, 0, p.Sample(rng))
}

func TestCategorical_OnlyReturnsGivenLabels(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	labels := []string{"pass", "run", "field_goal"}
	probs := []float64{0.5, 0.4, 0.1}
	for i := 0; i < 200; i++ {
		got := Categorical(rng, labels, probs)
		assert.Contains(t, labels, got)
	}
}

func TestBernoulli_BoundaryProbabilities(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	assert.False(t, Bernoulli(rng, 0))
	assert.True(t, Bernoulli(rng, 1))
}
