package oracle

import "math/rand"

// RushFumbleRate is the 1.72% fumble rate on rush plays from models/run.py.
const RushFumbleRate = 0.0172

// QuantileRegressor stands in for a trained quantile-regression booster:
// given a yards-to-goal context it returns the three quantiles
// (q025,q50,q975) the triangular sampling rule consumes.
type QuantileRegressor interface {
	Quantiles(yardsToGoal int) (q025, q50, q975 float64)
}

// LinearQuantileRegressor produces quantiles as a linear function of
// yards_to_goal, clamped downstream by TriangularSample. This is the
// fallback used when no trained regressor artifact is configured.
type LinearQuantileRegressor struct {
	Q025Intercept, Q025Slope float64
	Q50Intercept, Q50Slope   float64
	Q975Intercept, Q975Slope float64
}

func (r *LinearQuantileRegressor) Quantiles(yardsToGoal int) (float64, float64, float64) {
	x := float64(yardsToGoal)
	return r.Q025Intercept + r.Q025Slope*x,
		r.Q50Intercept + r.Q50Slope*x,
		r.Q975Intercept + r.Q975Slope*x
}

// DefaultRunOracle implements RunOracle per models/run.py: rush yards
// sampled triangularly and clamped to [-(100-yards_to_goal), yards_to_goal]
// (can't gain more than the distance to the goal, can't lose more than
// the distance to the offense's own goal), fumble/recovery Bernoullis,
// yards-lost-on-fumble PMFs split by recovering side.
type DefaultRunOracle struct {
	Yards              QuantileRegressor
	FumbleYardsLostOff *PMF
	FumbleYardsLostDef *PMF
}

func (r *DefaultRunOracle) SampleYards(rng *rand.Rand, yardsToGoal int) int {
	q025, q50, q975 := r.Yards.Quantiles(yardsToGoal)
	minAllowed := float64(-(100 - yardsToGoal))
	maxAllowed := float64(yardsToGoal)
	return int(TriangularSample(rng, q025, q50, q975, minAllowed, maxAllowed))
}

func (r *DefaultRunOracle) IsFumble(rng *rand.Rand) bool {
	return Bernoulli(rng, RushFumbleRate)
}

func (r *DefaultRunOracle) FumbleRecoveredByOffense(rng *rand.Rand) bool {
	return Bernoulli(rng, 0.5)
}

func (r *DefaultRunOracle) SampleFumbleYardsLost(rng *rand.Rand, offenseRecovered bool) int {
	if offenseRecovered {
		return r.FumbleYardsLostOff.Sample(rng)
	}
	return r.FumbleYardsLostDef.Sample(rng)
}

// NewDefaultRunOracle returns a rush-yardage model centered around a
// modest positive gain, widening (wider q025/q975 spread) as yards_to_goal
// grows, matching the shape of an open-field vs. compressed-redzone rush
// distribution.
func NewDefaultRunOracle() *DefaultRunOracle {
	return &DefaultRunOracle{
		Yards: &LinearQuantileRegressor{
			Q025Intercept: -3, Q025Slope: 0,
			Q50Intercept: 4, Q50Slope: 0,
			Q975Intercept: 12, Q975Slope: 0.05,
		},
		FumbleYardsLostOff: NewPMF(map[int]float64{0: 0.6, -1: 0.2, -2: 0.1, 1: 0.1}),
		FumbleYardsLostDef: NewPMF(map[int]float64{0: 0.5, -1: 0.3, -2: 0.2}),
	}
}
