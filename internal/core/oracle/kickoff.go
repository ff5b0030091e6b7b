package oracle

import "math/rand"

// DefaultKickoffOracle implements KickoffOracle from a trained onside-
// decision classifier plus the empirical PMF tables used in the original
// models/kickoff.py: regular-return yardage, onside-recovery yardage
// (split by which side recovers), keyed only by bucket since the seconds-
// used figure is folded into each PMF bucket's paired table.
type DefaultKickoffOracle struct {
	OnsideClassifier Classifier
	RegularReturnYTG *PMF
	RegularReturnSec *PMF
	OnsideOffenseYTG *PMF
	OnsideOffenseSec *PMF
	OnsideDefenseYTG *PMF
	OnsideDefenseSec *PMF
}

func (k *DefaultKickoffOracle) POnside(scoreDiff int, pctGamePlayed, diffTimeRatio float64, offenseTimeouts int) float64 {
	return k.OnsideClassifier.PredictProba(map[string]float64{
		"score_diff":        float64(scoreDiff),
		"pct_game_played":   pctGamePlayed,
		"diff_time_ratio":   diffTimeRatio,
		"offense_timeouts":  float64(offenseTimeouts),
	})
}

func (k *DefaultKickoffOracle) SampleRegularReturn(rng *rand.Rand) (int, int) {
	ytg := k.RegularReturnYTG.Sample(rng)
	sec := k.RegularReturnSec.Sample(rng)
	return ytg, sec
}

// SampleOnsideRecoveryTeam returns true when the kicking team (offense)
// recovers. P(offense) = 0.20 per spec §4.2.
func (k *DefaultKickoffOracle) SampleOnsideRecoveryTeam(rng *rand.Rand) bool {
	return Bernoulli(rng, 0.20)
}

func (k *DefaultKickoffOracle) SampleOnsideReturn(rng *rand.Rand, recoveringTeamIsKicker bool) (int, int) {
	if recoveringTeamIsKicker {
		return k.OnsideOffenseYTG.Sample(rng), k.OnsideOffenseSec.Sample(rng)
	}
	return k.OnsideDefenseYTG.Sample(rng), k.OnsideDefenseSec.Sample(rng)
}

// NewDefaultKickoffOracle builds an oracle from the built-in fallback
// tables, used when no trained artifact directory is configured. The
// yardage/seconds buckets are representative of the empirical
// distributions described in models/kickoff.py (concentrated around the
// touchback/25-yard-line area for regular kickoffs, shorter and noisier
// for onside attempts).
func NewDefaultKickoffOracle() *DefaultKickoffOracle {
	return &DefaultKickoffOracle{
		OnsideClassifier: &FallbackSigmoidClassifier{
			Weights: map[string]float64{
				"score_diff":       -0.25,
				"diff_time_ratio":  -0.01,
				"offense_timeouts": -0.15,
			},
			Bias: -3.0,
		},
		RegularReturnYTG: NewPMF(map[int]float64{75: 0.65, 70: 0.15, 65: 0.1, 60: 0.05, 55: 0.03, 50: 0.02}),
		RegularReturnSec: NewPMF(map[int]float64{6: 1.0}),
		OnsideOffenseYTG: NewPMF(map[int]float64{45: 0.4, 50: 0.3, 55: 0.2, 60: 0.1}),
		OnsideOffenseSec: NewPMF(map[int]float64{6: 1.0}),
		OnsideDefenseYTG: NewPMF(map[int]float64{45: 0.4, 50: 0.3, 55: 0.2, 60: 0.1}),
		OnsideDefenseSec: NewPMF(map[int]float64{6: 1.0}),
	}
}
