package oracle

import (
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// SackFumbleRate is the 8% fumble rate on sacks from models/sack.py.
const SackFumbleRate = 0.08

// SackFumbleOffenseRecoveryRate is P(offense recovers) = 0.535.
const SackFumbleOffenseRecoveryRate = 0.535

// sackTimeDist is the truncated-normal sack-time distribution
// (mu=3.5s, sigma=0.8, clamped to [2,7]) from models/sack.py, implemented
// by rejection sampling over gonum's Normal with fixed bounds.
type sackTimeDist struct {
	base distuv.Normal
	min, max float64
}

func newSackTimeDist(rng *rand.Rand) *sackTimeDist {
	return &sackTimeDist{
		base: distuv.Normal{Mu: 3.5, Sigma: 0.8, Src: rng},
		min:  2, max: 7,
	}
}

func (d *sackTimeDist) sample() int {
	for i := 0; i < 100; i++ {
		v := d.base.Rand()
		if v >= d.min && v <= d.max {
			return int(v + 0.5)
		}
	}
	return int(d.base.Mu)
}

// DefaultPassSackOracle implements PassSackOracle per models/sack.py.
type DefaultPassSackOracle struct {
	SackClassifier     Classifier
	NormalYardsLost    *PMF
	FumbleYardsLostOff *PMF
	FumbleYardsLostDef *PMF
}

func (s *DefaultPassSackOracle) IsSack(rng *rand.Rand, f DecisionFeatures) bool {
	p := s.SackClassifier.PredictProba(decisionFeatureMap(f))
	return Bernoulli(rng, p)
}

func (s *DefaultPassSackOracle) IsSackFumble(rng *rand.Rand) bool {
	return Bernoulli(rng, SackFumbleRate)
}

func (s *DefaultPassSackOracle) SackFumbleRecoveredByOffense(rng *rand.Rand) bool {
	return Bernoulli(rng, SackFumbleOffenseRecoveryRate)
}

func (s *DefaultPassSackOracle) SampleSackFumbleYardsLost(rng *rand.Rand, offenseRecovered bool) int {
	if offenseRecovered {
		return s.FumbleYardsLostOff.Sample(rng)
	}
	return s.FumbleYardsLostDef.Sample(rng)
}

func (s *DefaultPassSackOracle) SampleSackYardsLost(rng *rand.Rand) int {
	return s.NormalYardsLost.Sample(rng)
}

func (s *DefaultPassSackOracle) SampleSackTimeUsed(rng *rand.Rand) int {
	return newSackTimeDist(rng).sample()
}

// NewDefaultPassSackOracle returns a sack oracle with a league-average
// sack rate prior and yardage PMFs matching the shape (not the exact
// counts) of the empirical tables in models/sack.py.
func NewDefaultPassSackOracle() *DefaultPassSackOracle {
	return &DefaultPassSackOracle{
		SackClassifier: &FallbackSigmoidClassifier{
			Bias:    -2.7,
			Weights: map[string]float64{"is_redzone": 0.2},
		},
		NormalYardsLost:    NewPMF(map[int]float64{5: 0.3, 6: 0.25, 7: 0.2, 8: 0.15, 9: 0.1}),
		FumbleYardsLostOff: NewPMF(map[int]float64{5: 0.5, 6: 0.3, 7: 0.2}),
		FumbleYardsLostDef: NewPMF(map[int]float64{5: 0.4, 6: 0.35, 7: 0.25}),
	}
}
