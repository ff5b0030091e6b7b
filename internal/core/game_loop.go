package core

import (
	"math/rand"

	"github.com/lneuendorf/cfbsim/internal/core/oracle"
)

// GameLoop is the top-level state machine: coin toss, then a repeating
// cycle of timeout opportunity, pre-snap runoff, penalty opportunity, and
// dispatch on next_action, until the clock hits zero.
type GameLoop struct {
	Resolver *PlayResolver
	Clock    *ClockManager
	Oracles  *oracle.Set
}

func NewGameLoop(oracles *oracle.Set) *GameLoop {
	clock := NewClockManager()
	return &GameLoop{
		Resolver: NewPlayResolver(oracles, clock),
		Clock:    clock,
		Oracles:  oracles,
	}
}

// Run executes one replay to completion and returns the signed result
// from the home team's perspective: +1 win, 0 tie, -1 loss. cancel is
// polled at the top of every cycle; when it reports true, Run returns
// ErrCancelled without further mutating state.
func (l *GameLoop) Run(g *GameState, rng *rand.Rand, cancel func() bool) (int, error) {
	if g.Possession() == PossessionNone {
		l.coinToss(g, rng)
	}

	halftimeReset := false
	for g.SecondsRemaining() > 0 {
		if cancel != nil && cancel() {
			return 0, ErrCancelled
		}

		if !halftimeReset && g.SecondsRemaining() <= 1800 {
			g.ResetTimeoutsForHalf()
			halftimeReset = true
		}

		if err := l.timeoutOpportunity(g, rng); err != nil {
			return 0, err
		}
		if g.SecondsRemaining() <= 0 {
			break
		}

		l.Clock.ApplyPreSnapRunoff(g)
		if g.SecondsRemaining() <= 0 {
			break
		}

		if err := l.penaltyOpportunity(g, rng); err != nil {
			return 0, err
		}
		if g.SecondsRemaining() <= 0 {
			break
		}

		if err := l.Resolver.Resolve(g, rng); err != nil {
			return 0, err
		}
		if err := g.ValidateInvariants(); err != nil {
			return 0, err
		}
	}

	return signOf(g.Home().Score - g.Away().Score), nil
}

func (l *GameLoop) coinToss(g *GameState, rng *rand.Rand) {
	if rng.Float64() < 0.5 {
		g.SetPossession(PossessionHome)
	} else {
		g.SetPossession(PossessionAway)
	}
}

func (l *GameLoop) timeoutOpportunity(g *GameState, rng *rand.Rand) error {
	f := l.timeoutFeatures(g)

	if g.Offense().Timeouts > 0 {
		if oracle.Bernoulli(rng, l.Oracles.Timeout.POffenseCallsTimeout(f)) {
			g.DecrementOffenseTimeouts()
		}
	}
	if g.Defense().Timeouts > 0 {
		if oracle.Bernoulli(rng, l.Oracles.Timeout.PDefenseCallsTimeout(f)) {
			g.DecrementDefenseTimeouts()
		}
	}
	return nil
}

func (l *GameLoop) timeoutFeatures(g *GameState) oracle.TimeoutFeatures {
	return oracle.TimeoutFeatures{
		ScoreDiff:                g.ScoreDiff(),
		PctGamePlayed:            g.PctGamePlayed(),
		DiffTimeRatio:            g.DiffTimeRatio(),
		SecondsRemaining:         g.SecondsRemaining(),
		Down:                     g.Down(),
		Distance:                 g.Distance(),
		YardsToGoal:              g.YardsToGoal(),
		IsRedzone:                g.IsRedzone(),
		IsGoalToGo:               g.IsGoalToGo(),
		IsTwoMinuteDrill:         g.IsTwoMinuteDrill(),
		IsFinalMinuteOfHalf:      g.IsFinalMinuteOfHalf(),
		ClockRollingPriorToPlay:  g.ClockRolling(),
		NumPriorPlaysOnDrive:     g.NumPlaysOnDrive(),
		OffenseIsHome:            g.OffenseHomeFlag(),
		OffenseTimeoutsRemaining: g.Offense().Timeouts,
		DefenseTimeoutsRemaining: g.Defense().Timeouts,
	}
}

// penaltyOpportunity draws offense and defense penalties independently,
// applying yardage with half-distance capping and the loss-of-down /
// automatic-first-down effects from spec §4.2. Only meaningful ahead of a
// scrimmage snap; kickoffs and try attempts have no penalty opportunity
// in this model.
func (l *GameLoop) penaltyOpportunity(g *GameState, rng *rand.Rand) error {
	if g.NextAction() != ActionPlay {
		return nil
	}

	if oracle.Bernoulli(rng, l.Oracles.Penalty.PPenalty()) {
		yards := l.Oracles.Penalty.SampleYardage(rng)
		newYTG := CapHalfDistance(g.YardsToGoal(), -yards)
		if err := g.SetYardsToGoal(newYTG); err != nil {
			return err
		}
		if l.Oracles.Penalty.OffensivePenaltyIsLossOfDown(rng) {
			if g.Down() < 4 {
				if err := g.SetDown(g.Down() + 1); err != nil {
					return err
				}
			} else {
				flipped := 100 - newYTG
				g.SwitchPossession()
				if err := g.SetYardsToGoal(clampYTG(flipped)); err != nil {
					return err
				}
				if err := g.SetDown(1); err != nil {
					return err
				}
				if err := g.SetDistance(defaultFirstDownDistance); err != nil {
					return err
				}
				return nil
			}
		} else {
			if err := g.SetDistance(g.Distance() + yards); err != nil {
				return err
			}
		}
	}

	if oracle.Bernoulli(rng, l.Oracles.Penalty.PPenalty()) {
		yards := l.Oracles.Penalty.SampleYardage(rng)
		newYTG := CapHalfDistance(g.YardsToGoal(), yards)
		if err := g.SetYardsToGoal(newYTG); err != nil {
			return err
		}
		gotFirstDown := yards >= g.Distance()
		if l.Oracles.Penalty.DefensivePenaltyIsAutomaticFirstDown(rng) || gotFirstDown {
			if err := g.SetDown(1); err != nil {
				return err
			}
			dist := defaultFirstDownDistance
			if newYTG < dist {
				dist = newYTG
			}
			if err := g.SetDistance(dist); err != nil {
				return err
			}
		} else {
			if err := g.SetDistance(g.Distance() - yards); err != nil {
				return err
			}
		}
	}
	return nil
}

func signOf(diff int) int {
	if diff > 0 {
		return 1
	}
	if diff < 0 {
		return -1
	}
	return 0
}
