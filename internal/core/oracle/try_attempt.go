package oracle

// SpecialTieCondition implements the exact algorithm from
// models/try_attempt.py's _special_tie_condition: true iff the deficit is
// representable as 3*fg + 8*td8 + 7*td7 (fg in {0,1}, td8/td7 >= 0) but
// NOT representable as 3*fg + 7*td (fg in {0,1}, td >= 0). deficit must be
// non-negative (the points the offense trails by).
func SpecialTieCondition(deficit int) bool {
	if deficit < 0 {
		return false
	}
	return canRepresentWith3_8_7(deficit) && !canRepresentWith3_7(deficit)
}

func canRepresentWith3_8_7(deficit int) bool {
	for fg := 0; fg <= 1; fg++ {
		rem := deficit - 3*fg
		if rem < 0 {
			continue
		}
		for td8 := 0; td8*8 <= rem; td8++ {
			rem2 := rem - 8*td8
			if rem2 >= 0 && rem2%7 == 0 {
				return true
			}
		}
	}
	return false
}

func canRepresentWith3_7(deficit int) bool {
	for fg := 0; fg <= 1; fg++ {
		rem := deficit - 3*fg
		if rem >= 0 && rem%7 == 0 {
			return true
		}
	}
	return false
}

// NewTryAttemptFeatures builds the TryAttemptOracle feature vector exactly
// per spec §4.2: two_point_to_tie=[score_diff==-2], two_point_to_lead=
// [score_diff==-1], will_need_two_pt_to_tie from SpecialTieCondition
// applied to the deficit implied by score_diff.
func NewTryAttemptFeatures(scoreDiff int, diffTimeRatio, pctGamePlayed float64) TryAttemptFeatures {
	deficit := -scoreDiff
	return TryAttemptFeatures{
		ScoreDiff:          scoreDiff,
		DiffTimeRatio:      diffTimeRatio,
		PctGamePlayed:      pctGamePlayed,
		TwoPointToTie:      scoreDiff == -2,
		TwoPointToLead:     scoreDiff == -1,
		WillNeedTwoPtToTie: SpecialTieCondition(deficit),
	}
}

// lookupKey identifies a division/power-five combination for the XP/2pt
// lookup tables.
type lookupKey struct {
	division    int
	isPowerFive bool
}

// DefaultTryAttemptOracle implements TryAttemptOracle via a classifier for
// the XP-vs-two-point attempt decision and flat lookup tables (with
// fallbacks) for each make probability, per spec §4.2.
type DefaultTryAttemptOracle struct {
	AttemptClassifier Classifier
	XPMakeTable       map[lookupKey]float64
	TwoPointMakeTable map[[2]int]float64
}

func (t *DefaultTryAttemptOracle) PAttemptXP(f TryAttemptFeatures) float64 {
	features := map[string]float64{
		"score_diff":             float64(f.ScoreDiff),
		"diff_time_ratio":        f.DiffTimeRatio,
		"pct_game_played":        f.PctGamePlayed,
		"two_point_to_tie":       boolToFloat(f.TwoPointToTie),
		"two_point_to_lead":      boolToFloat(f.TwoPointToLead),
		"will_need_two_pt_to_tie": boolToFloat(f.WillNeedTwoPtToTie),
	}
	return t.AttemptClassifier.PredictProba(features)
}

func (t *DefaultTryAttemptOracle) PXPMake(offenseDivision int, offenseIsPowerFive bool) float64 {
	if p, ok := t.XPMakeTable[lookupKey{offenseDivision, offenseIsPowerFive}]; ok {
		return p
	}
	return 0.85
}

func (t *DefaultTryAttemptOracle) PTwoPointMake(offenseDivision, defenseDivision int) float64 {
	if p, ok := t.TwoPointMakeTable[[2]int{offenseDivision, defenseDivision}]; ok {
		return p
	}
	return 0.30
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// NewDefaultTryAttemptOracle builds an oracle whose attempt-decision
// classifier strongly favors XP except in the exact situations spec §4.2
// calls out (two_point_to_tie, two_point_to_lead, will_need_two_pt_to_tie),
// and whose make tables are left empty so every call falls through to the
// documented fallback probabilities.
func NewDefaultTryAttemptOracle() *DefaultTryAttemptOracle {
	return &DefaultTryAttemptOracle{
		AttemptClassifier: &FallbackSigmoidClassifier{
			Weights: map[string]float64{
				"two_point_to_tie":        -6.0,
				"two_point_to_lead":       -5.0,
				"will_need_two_pt_to_tie": -4.0,
			},
			Bias: 4.0,
		},
		XPMakeTable:       map[lookupKey]float64{},
		TwoPointMakeTable: map[[2]int]float64{},
	}
}
