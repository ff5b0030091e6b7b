package oracle

import (
	"math"
	"math/rand"
)

// DefaultFieldGoalOracle implements FieldGoalOracle per spec §4.2 /
// models/field_goal.py.
type DefaultFieldGoalOracle struct {
	MakeClassifier       Classifier
	BlockedYardsGained    QuantileRegressor
}

// PBlocked implements the exact formula from models/field_goal.py:
// 0.00115*kick_distance-0.0107 for kick_distance<60, else flat 0.059.
func (f *DefaultFieldGoalOracle) PBlocked(kickDistance float64) float64 {
	if kickDistance >= 60 {
		return 0.059
	}
	p := 0.00115*kickDistance - 0.0107
	if p < 0 {
		return 0
	}
	return p
}

// PMake is only valid when yardsToGoal<=48 (fg_distance<=65); beyond that
// the kick is always a miss, per spec §4.2.
func (f *DefaultFieldGoalOracle) PMake(yardsToGoal int) float64 {
	if yardsToGoal > 48 {
		return 0
	}
	return f.MakeClassifier.PredictProba(map[string]float64{"yards_to_goal": float64(yardsToGoal)})
}

func (f *DefaultFieldGoalOracle) SampleBlockedYardsGained(rng *rand.Rand) int {
	q025, q50, q975 := f.BlockedYardsGained.Quantiles(0)
	return int(TriangularSample(rng, q025, q50, q975, -10, 20))
}

// SecondsUsed implements seconds_used=ceil(4+max(0,fg_distance-25)*0.05),
// fg_distance=yards_to_goal+17, per spec §4.2.
func (f *DefaultFieldGoalOracle) SecondsUsed(yardsToGoal int) int {
	fgDistance := float64(yardsToGoal + 17)
	extra := fgDistance - 25
	if extra < 0 {
		extra = 0
	}
	return int(math.Ceil(4 + extra*0.05))
}

// NewDefaultFieldGoalOracle returns a make-probability model that decays
// with distance, matching the well-known shape of NCAA field goal make
// rates (near-certain inside 10 yards to goal, about even near 33, and
// below one in four past 40).
func NewDefaultFieldGoalOracle() *DefaultFieldGoalOracle {
	return &DefaultFieldGoalOracle{
		MakeClassifier: &FallbackSigmoidClassifier{
			Bias:    6.0,
			Weights: map[string]float64{"yards_to_goal": -0.18},
		},
		BlockedYardsGained: &LinearQuantileRegressor{
			Q025Intercept: -2, Q50Intercept: 3, Q975Intercept: 10,
		},
	}
}
