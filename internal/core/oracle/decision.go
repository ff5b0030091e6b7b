package oracle

import "math/rand"

func decisionFeatureMap(f DecisionFeatures) map[string]float64 {
	return map[string]float64{
		"down":                    float64(f.Down),
		"distance":                float64(f.Distance),
		"yards_to_goal":           float64(f.YardsToGoal),
		"score_diff":              float64(f.ScoreDiff),
		"pct_game_played":         f.PctGamePlayed,
		"diff_time_ratio":         f.DiffTimeRatio,
		"is_redzone":              boolToFloat(f.IsRedzone),
		"is_goal_to_go":           boolToFloat(f.IsGoalToGo),
		"is_two_minute_drill":     boolToFloat(f.IsTwoMinuteDrill),
		"is_final_minute_of_half": boolToFloat(f.IsFinalMinuteOfHalf),
	}
}

// DefaultDecisionOracle implements DecisionOracle via per-outcome
// classifiers whose scores are normalized into a categorical
// distribution, standing in for the trained multi-class boosters in
// models/decision.py.
type DefaultDecisionOracle struct {
	PassScore, RunScore, FieldGoalScore, QBKneelScore Classifier
	GoScore, FGScore, PuntScore                        Classifier
	GoRunScore, GoPassScore                             Classifier
}

func normalize(scores ...float64) []float64 {
	var total float64
	for _, s := range scores {
		total += s
	}
	if total <= 0 {
		out := make([]float64, len(scores))
		for i := range out {
			out[i] = 1.0 / float64(len(scores))
		}
		return out
	}
	out := make([]float64, len(scores))
	for i, s := range scores {
		out[i] = s / total
	}
	return out
}

func (d *DefaultDecisionOracle) SampleEarlyDown(rng *rand.Rand, f DecisionFeatures) EarlyDownChoice {
	fm := decisionFeatureMap(f)
	probs := normalize(
		d.PassScore.PredictProba(fm),
		d.RunScore.PredictProba(fm),
		d.FieldGoalScore.PredictProba(fm),
		d.QBKneelScore.PredictProba(fm),
	)
	labels := []string{string(ChoicePass), string(ChoiceRun), string(ChoiceFieldGoal), string(ChoiceQBKneel)}
	return EarlyDownChoice(Categorical(rng, labels, probs))
}

func (d *DefaultDecisionOracle) SampleFourthDown(rng *rand.Rand, f DecisionFeatures) FourthDownChoice {
	fm := decisionFeatureMap(f)
	probs := normalize(
		d.GoScore.PredictProba(fm),
		d.FGScore.PredictProba(fm),
		d.PuntScore.PredictProba(fm),
	)
	labels := []string{string(ChoiceGo), string(ChoiceFG), string(ChoicePunt)}
	return FourthDownChoice(Categorical(rng, labels, probs))
}

func (d *DefaultDecisionOracle) SampleGoForItPassOrRun(rng *rand.Rand, f DecisionFeatures) EarlyDownChoice {
	fm := decisionFeatureMap(f)
	probs := normalize(d.GoPassScore.PredictProba(fm), d.GoRunScore.PredictProba(fm))
	labels := []string{string(ChoicePass), string(ChoiceRun)}
	return EarlyDownChoice(Categorical(rng, labels, probs))
}

// NewDefaultDecisionOracle builds a decision oracle whose relative scores
// favor run/pass on early downs; on 4th down the punt score is the largest
// at every spot, with the field-goal share rising as yards_to_goal
// shrinks — a plausible prior standing in for the trained model.
func NewDefaultDecisionOracle() *DefaultDecisionOracle {
	passRun := func(passBias, runBias float64) (Classifier, Classifier) {
		return &FallbackSigmoidClassifier{Bias: passBias, Weights: map[string]float64{"distance": 0.05}},
			&FallbackSigmoidClassifier{Bias: runBias, Weights: map[string]float64{"is_goal_to_go": 0.3}}
	}
	pass, run := passRun(0.2, 0.1)
	return &DefaultDecisionOracle{
		PassScore:      pass,
		RunScore:       run,
		FieldGoalScore: &FallbackSigmoidClassifier{Bias: -3.0, Weights: map[string]float64{}},
		QBKneelScore:   &FallbackSigmoidClassifier{Bias: -4.0, Weights: map[string]float64{}},
		GoScore:        &FallbackSigmoidClassifier{Bias: -0.8, Weights: map[string]float64{"distance": -0.15}},
		FGScore:        &FallbackSigmoidClassifier{Bias: -0.2, Weights: map[string]float64{"yards_to_goal": -0.03}},
		PuntScore:      &FallbackSigmoidClassifier{Bias: 0.5, Weights: map[string]float64{"yards_to_goal": 0.01}},
		GoRunScore:     &FallbackSigmoidClassifier{Bias: 0.1, Weights: map[string]float64{}},
		GoPassScore:    &FallbackSigmoidClassifier{Bias: 0.1, Weights: map[string]float64{}},
	}
}
