package oracle

// DefaultTimeoutOracle implements the two independent timeout heads via
// classifiers over the full feature vector from models/timeout.py.
type DefaultTimeoutOracle struct {
	OffenseClassifier Classifier
	DefenseClassifier Classifier
}

func featureMap(f TimeoutFeatures) map[string]float64 {
	return map[string]float64{
		"score_diff":                 float64(f.ScoreDiff),
		"pct_game_played":            f.PctGamePlayed,
		"diff_time_ratio":            f.DiffTimeRatio,
		"seconds_remaining":          float64(f.SecondsRemaining),
		"down":                       float64(f.Down),
		"distance":                   float64(f.Distance),
		"yards_to_goal":              float64(f.YardsToGoal),
		"is_redzone":                 boolToFloat(f.IsRedzone),
		"is_goal_to_go":              boolToFloat(f.IsGoalToGo),
		"is_two_minute_drill":        boolToFloat(f.IsTwoMinuteDrill),
		"is_final_minute_of_half":    boolToFloat(f.IsFinalMinuteOfHalf),
		"clock_rolling_prior_to_play": boolToFloat(f.ClockRollingPriorToPlay),
		"num_prior_plays_on_drive":   float64(f.NumPriorPlaysOnDrive),
		"offense_is_home":            float64(f.OffenseIsHome),
		"offense_timeouts_remaining": float64(f.OffenseTimeoutsRemaining),
		"defense_timeouts_remaining": float64(f.DefenseTimeoutsRemaining),
	}
}

func (t *DefaultTimeoutOracle) POffenseCallsTimeout(f TimeoutFeatures) float64 {
	return t.OffenseClassifier.PredictProba(featureMap(f))
}

func (t *DefaultTimeoutOracle) PDefenseCallsTimeout(f TimeoutFeatures) float64 {
	return t.DefenseClassifier.PredictProba(featureMap(f))
}

// NewDefaultTimeoutOracle returns an oracle biased toward calling timeout
// only in the two-minute drill / final-minute-of-half windows, matching
// the intuitive shape of the trained classifier it stands in for.
func NewDefaultTimeoutOracle() *DefaultTimeoutOracle {
	weights := map[string]float64{
		"is_two_minute_drill":     2.5,
		"is_final_minute_of_half": 1.5,
		"is_redzone":              0.4,
	}
	return &DefaultTimeoutOracle{
		OffenseClassifier: &FallbackSigmoidClassifier{Weights: weights, Bias: -4.5},
		DefenseClassifier: &FallbackSigmoidClassifier{Weights: weights, Bias: -4.8},
	}
}
