package oracle

import "math/rand"

// DefaultPuntOracle implements PuntOracle per spec §4.2 / models/punt.py.
type DefaultPuntOracle struct {
	ReceivingYTG       QuantileRegressor
	BlockedYardsGained QuantileRegressor
}

// PBlocked implements the exact formula from models/punt.py: 0.0015 if
// the kicking team's yards_to_goal<30, else 0.00019*ytg-0.00414.
func (p *DefaultPuntOracle) PBlocked(teamYardsToGoal int) float64 {
	if teamYardsToGoal < 30 {
		return 0.0015
	}
	v := 0.00019*float64(teamYardsToGoal) - 0.00414
	if v < 0 {
		return 0
	}
	return v
}

func (p *DefaultPuntOracle) SampleReceivingTeamYardsToGoal(rng *rand.Rand, kickingTeamYardsToGoal int) int {
	q025, q50, q975 := p.ReceivingYTG.Quantiles(kickingTeamYardsToGoal)
	return int(TriangularSample(rng, q025, q50, q975, -10, 99))
}

func (p *DefaultPuntOracle) SampleBlockedYardsGained(rng *rand.Rand) int {
	q025, q50, q975 := p.BlockedYardsGained.Quantiles(0)
	return int(TriangularSample(rng, q025, q50, q975, -10, 20))
}

// ReturnSecondsUsed implements models/punt.py's predict_punt_receiving_yards
// timing: a 5 second base, plus 0.15s per yard the receiving team's field
// position falls short of the 80-yard-to-goal mark (a longer return, which
// leaves the receivers closer to the goal they attack, takes longer).
func (p *DefaultPuntOracle) ReturnSecondsUsed(receivingTeamYardsToGoal int) int {
	short := -receivingTeamYardsToGoal + 80
	if short < 0 {
		short = 0
	}
	return 5 + int(float64(short)*0.15)
}

// BlockedSecondsUsed implements models/punt.py's
// predict_yards_gained_if_punt_blocked timing: a 5 second base, plus 1
// second per 10 yards gained on the blocked-kick play.
func (p *DefaultPuntOracle) BlockedSecondsUsed(yardsGained int) int {
	abs := yardsGained
	if abs < 0 {
		abs = -abs
	}
	return 5 + abs/10
}

// NewDefaultPuntOracle returns a punt model whose receiving-team
// yards_to_goal grows roughly linearly with the kicking team's own
// yards_to_goal (a higher receiving-team yards_to_goal is worse for the
// receivers, since it leaves them farther from the goal they attack).
func NewDefaultPuntOracle() *DefaultPuntOracle {
	return &DefaultPuntOracle{
		ReceivingYTG: &LinearQuantileRegressor{
			Q025Intercept: 10, Q025Slope: 0.5,
			Q50Intercept: 20, Q50Slope: 0.6,
			Q975Intercept: 35, Q975Slope: 0.7,
		},
		BlockedYardsGained: &LinearQuantileRegressor{
			Q025Intercept: -5, Q50Intercept: 2, Q975Intercept: 8,
		},
	}
}
