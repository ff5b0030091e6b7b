package core

import (
	"math/rand"

	"github.com/lneuendorf/cfbsim/internal/core/oracle"
)

const (
	runPlaySeconds  = 5
	kneelSeconds    = 3
	defaultFirstDownDistance = 10
)

// PlayResolver samples an outcome for the current next_action, mutates
// GameState accordingly, and sets prev_action/next_action. Ordering rule
// (spec §4.3): update score first; switch possession (for defensive
// scores) next; set next_action; then stop/start clock.
type PlayResolver struct {
	Oracles *oracle.Set
	Clock   *ClockManager
}

func NewPlayResolver(oracles *oracle.Set, clock *ClockManager) *PlayResolver {
	return &PlayResolver{Oracles: oracles, Clock: clock}
}

// Resolve dispatches on g.NextAction() and applies the corresponding
// subset of rules from spec §4.3.
func (r *PlayResolver) Resolve(g *GameState, rng *rand.Rand) error {
	switch g.NextAction() {
	case ActionKickoff:
		return r.resolveKickoff(g, rng)
	case ActionPlay:
		return r.resolvePlay(g, rng)
	case ActionTryAttempt:
		return r.resolveTryAttempt(g, rng)
	default:
		return NewContractViolation("unresolvable next_action", g.Snapshot())
	}
}

// resolveKickoff implements spec §4.3's kickoff rules. The team currently
// in possession when next_action=kickoff is the kicking team.
func (r *PlayResolver) resolveKickoff(g *GameState, rng *rand.Rand) error {
	kickerTimeouts := g.Offense().Timeouts
	pOnside := r.Oracles.Kickoff.POnside(g.ScoreDiff(), g.PctGamePlayed(), g.DiffTimeRatio(), kickerTimeouts)
	onside := oracle.Bernoulli(rng, pOnside)

	var ytg, secUsed int
	var kickerRecovers bool
	if onside {
		kickerRecovers = r.Oracles.Kickoff.SampleOnsideRecoveryTeam(rng)
		ytg, secUsed = r.Oracles.Kickoff.SampleOnsideReturn(rng, kickerRecovers)
	} else {
		kickerRecovers = false
		ytg, secUsed = r.Oracles.Kickoff.SampleRegularReturn(rng)
	}

	if !kickerRecovers {
		g.SwitchPossession()
	}

	if ytg <= 0 {
		if err := g.IncrementOffenseScore(6); err != nil {
			return err
		}
		g.SetNextAction(ActionTryAttempt)
	} else {
		if ytg > 99 {
			ytg = 99
		}
		if err := g.SetYardsToGoal(ytg); err != nil {
			return err
		}
		if err := g.SetDown(1); err != nil {
			return err
		}
		if err := g.SetDistance(defaultFirstDownDistance); err != nil {
			return err
		}
		g.SetNextAction(ActionPlay)
	}
	g.DecrementSecondsRemaining(secUsed)
	g.StopClock()
	g.SetPrevAction(ActionKickoff)
	return nil
}

// resolvePlay dispatches the scrimmage snap itself: the DecisionOracle
// picks run/pass/field_goal/qb_kneel on downs 1-3, and go/field_goal/punt
// on 4th down (with a secondary pass-or-run pick when going).
func (r *PlayResolver) resolvePlay(g *GameState, rng *rand.Rand) error {
	df := oracle.DecisionFeatures{
		Down:                g.Down(),
		Distance:            g.Distance(),
		YardsToGoal:         g.YardsToGoal(),
		ScoreDiff:           g.ScoreDiff(),
		PctGamePlayed:       g.PctGamePlayed(),
		DiffTimeRatio:       g.DiffTimeRatio(),
		IsRedzone:           g.IsRedzone(),
		IsGoalToGo:          g.IsGoalToGo(),
		IsTwoMinuteDrill:    g.IsTwoMinuteDrill(),
		IsFinalMinuteOfHalf: g.IsFinalMinuteOfHalf(),
	}

	var choice oracle.EarlyDownChoice
	if g.Down() < 4 {
		choice = r.Oracles.Decision.SampleEarlyDown(rng, df)
	} else {
		fourth := r.Oracles.Decision.SampleFourthDown(rng, df)
		switch fourth {
		case oracle.ChoiceFG:
			choice = oracle.ChoiceFieldGoal
		case oracle.ChoicePunt:
			return r.resolvePunt(g, rng)
		default:
			choice = r.Oracles.Decision.SampleGoForItPassOrRun(rng, df)
		}
	}

	switch choice {
	case oracle.ChoiceRun:
		return r.resolveRun(g, rng)
	case oracle.ChoicePass:
		return r.resolvePass(g, rng)
	case oracle.ChoiceFieldGoal:
		return r.resolveFieldGoal(g, rng)
	case oracle.ChoiceQBKneel:
		return r.resolveQBKneel(g, rng)
	default:
		return NewContractViolation("unknown decision-oracle choice", g.Snapshot())
	}
}

// scrimmageOutcome applies a signed yardage delta (positive = toward the
// defense's goal) to the current spot and reports whether it produced a
// touchdown or safety. It does not commit yards_to_goal when either
// fires — the caller applies the scoring transition instead.
func scrimmageOutcome(g *GameState, yardsGained int) (newYTG int, touchdown, safety bool) {
	newYTG = g.YardsToGoal() - yardsGained
	if newYTG <= 0 {
		return newYTG, true, false
	}
	if newYTG >= 100 {
		return newYTG, false, true
	}
	return newYTG, false, false
}

// advanceDownAndDistance commits a non-scoring scrimmage gain: if the gain
// reaches the line to gain, down resets to 1 with a fresh set of 10 (or
// goal-to-go distance); otherwise down advances. A 4th-down failure is a
// turnover on downs, checked before the down would become 5 (spec §9 open
// question b: the check precedes the increment rather than producing a
// transient down==5).
func advanceDownAndDistance(g *GameState, newYTG, yardsGained int) error {
	gotFirstDown := yardsGained >= g.Distance()
	if gotFirstDown {
		if err := g.SetYardsToGoal(newYTG); err != nil {
			return err
		}
		if err := g.SetDown(1); err != nil {
			return err
		}
		dist := defaultFirstDownDistance
		if newYTG < dist {
			dist = newYTG
		}
		return g.SetDistance(dist)
	}

	if g.Down() == 4 {
		// turnover on downs: flip the field and hand possession over.
		flipped := 100 - newYTG
		g.SwitchPossession()
		if err := g.SetYardsToGoal(flipped); err != nil {
			return err
		}
		if err := g.SetDown(1); err != nil {
			return err
		}
		return g.SetDistance(defaultFirstDownDistance)
	}

	if err := g.SetYardsToGoal(newYTG); err != nil {
		return err
	}
	if err := g.SetDown(g.Down() + 1); err != nil {
		return err
	}
	return g.SetDistance(g.Distance() - yardsGained)
}

func (r *PlayResolver) resolveRun(g *GameState, rng *rand.Rand) error {
	yardsGained := r.Oracles.Run.SampleYards(rng, g.YardsToGoal())

	if r.Oracles.Run.IsFumble(rng) {
		offenseRecovers := r.Oracles.Run.FumbleRecoveredByOffense(rng)
		lost := r.Oracles.Run.SampleFumbleYardsLost(rng, offenseRecovers)
		yardsGained -= lost
		g.IncrementPlayCount()
		r.Clock.ConsumeSeconds(g, runPlaySeconds)
		g.StartClock()

		newYTG, td, safety := scrimmageOutcome(g, yardsGained)
		// a fumble recovered by the defense is a turnover regardless
		// of whether it crossed a goal line.
		if !offenseRecovers {
			g.SwitchPossession()
		}
		if td {
			if err := g.IncrementOffenseScore(6); err != nil {
				return err
			}
			g.SetNextAction(ActionTryAttempt)
			g.StopClock()
			g.SetPrevAction(ActionRunPlay)
			return nil
		}
		if safety {
			if err := g.IncrementDefenseScore(2); err != nil {
				return err
			}
			g.SetPossession(safetyKickerPossession(g))
			g.SetNextAction(ActionKickoff)
			g.StopClock()
			g.SetPrevAction(ActionSafety)
			return nil
		}
		if !offenseRecovers {
			if err := g.SetYardsToGoal(clampYTG(newYTG)); err != nil {
				return err
			}
			if err := g.SetDown(1); err != nil {
				return err
			}
			if err := g.SetDistance(defaultFirstDownDistance); err != nil {
				return err
			}
			g.SetPrevAction(ActionRunPlay)
			return nil
		}
		if err := advanceDownAndDistance(g, newYTG, yardsGained); err != nil {
			return err
		}
		g.SetPrevAction(ActionRunPlay)
		return nil
	}

	g.IncrementPlayCount()
	r.Clock.ConsumeSeconds(g, runPlaySeconds)
	g.StartClock()

	newYTG, td, safety := scrimmageOutcome(g, yardsGained)
	if td {
		if err := g.IncrementOffenseScore(6); err != nil {
			return err
		}
		g.SetNextAction(ActionTryAttempt)
		g.StopClock()
		g.SetPrevAction(ActionRunPlay)
		return nil
	}
	if safety {
		if err := g.IncrementDefenseScore(2); err != nil {
			return err
		}
		g.SetPossession(safetyKickerPossession(g))
		g.SetNextAction(ActionKickoff)
		g.StopClock()
		g.SetPrevAction(ActionSafety)
		return nil
	}
	if err := advanceDownAndDistance(g, newYTG, yardsGained); err != nil {
		return err
	}
	g.SetPrevAction(ActionRunPlay)
	return nil
}

func (r *PlayResolver) resolvePass(g *GameState, rng *rand.Rand) error {
	df := oracle.DecisionFeatures{
		Down: g.Down(), Distance: g.Distance(), YardsToGoal: g.YardsToGoal(),
		ScoreDiff: g.ScoreDiff(), PctGamePlayed: g.PctGamePlayed(), DiffTimeRatio: g.DiffTimeRatio(),
		IsRedzone: g.IsRedzone(), IsGoalToGo: g.IsGoalToGo(),
		IsTwoMinuteDrill: g.IsTwoMinuteDrill(), IsFinalMinuteOfHalf: g.IsFinalMinuteOfHalf(),
	}
	if r.Oracles.PassSack.IsSack(rng, df) {
		return r.resolveSack(g, rng)
	}

	g.IncrementPlayCount()
	complete := oracle.Bernoulli(rng, 0.7)
	if !complete {
		r.Clock.ConsumeSeconds(g, 0)
		g.StopClock()
		g.SetPrevAction(ActionPassPlay)
		return nil
	}

	// Completion yardage is a fixed 6 yards, a placeholder the source
	// model also hard-codes; sampling a real yardage distribution is an
	// open product decision (spec §9 open question d), not yet wired to
	// an oracle.
	const completeYards = 6
	r.Clock.ConsumeSeconds(g, 0)
	g.StartClock()

	newYTG, td, safety := scrimmageOutcome(g, completeYards)
	if td {
		if err := g.IncrementOffenseScore(6); err != nil {
			return err
		}
		g.SetNextAction(ActionTryAttempt)
		g.StopClock()
		g.SetPrevAction(ActionPassPlay)
		return nil
	}
	if safety {
		if err := g.IncrementDefenseScore(2); err != nil {
			return err
		}
		g.SetPossession(safetyKickerPossession(g))
		g.SetNextAction(ActionKickoff)
		g.StopClock()
		g.SetPrevAction(ActionSafety)
		return nil
	}
	if err := advanceDownAndDistance(g, newYTG, completeYards); err != nil {
		return err
	}
	g.SetPrevAction(ActionPassPlay)
	return nil
}

func (r *PlayResolver) resolveSack(g *GameState, rng *rand.Rand) error {
	yardsLost := r.Oracles.PassSack.SampleSackYardsLost(rng)
	secUsed := r.Oracles.PassSack.SampleSackTimeUsed(rng)
	g.IncrementPlayCount()
	r.Clock.ConsumeSeconds(g, secUsed)
	g.StartClock()

	if r.Oracles.PassSack.IsSackFumble(rng) {
		offenseRecovers := r.Oracles.PassSack.SackFumbleRecoveredByOffense(rng)
		extraLost := r.Oracles.PassSack.SampleSackFumbleYardsLost(rng, offenseRecovers)
		total := yardsLost + extraLost
		newYTG, _, safety := scrimmageOutcome(g, -total)
		if !offenseRecovers {
			g.SwitchPossession()
			newYTG = 100 - newYTG
			if err := g.SetYardsToGoal(clampYTG(newYTG)); err != nil {
				return err
			}
			if err := g.SetDown(1); err != nil {
				return err
			}
			if err := g.SetDistance(defaultFirstDownDistance); err != nil {
				return err
			}
			g.StopClock()
			g.SetPrevAction(ActionSackFumbleRecovery)
			return nil
		}
		if safety {
			if err := g.IncrementDefenseScore(2); err != nil {
				return err
			}
			g.SetPossession(safetyKickerPossession(g))
			g.SetNextAction(ActionKickoff)
			g.StopClock()
			g.SetPrevAction(ActionSackSafety)
			return nil
		}
		if err := advanceDownAndDistance(g, newYTG, -total); err != nil {
			return err
		}
		g.SetPrevAction(ActionSackFumbleRecovery)
		return nil
	}

	newYTG, _, safety := scrimmageOutcome(g, -yardsLost)
	if safety {
		if err := g.IncrementDefenseScore(2); err != nil {
			return err
		}
		g.SetPossession(safetyKickerPossession(g))
		g.SetNextAction(ActionKickoff)
		g.StopClock()
		g.SetPrevAction(ActionSackSafety)
		return nil
	}
	if err := advanceDownAndDistance(g, newYTG, -yardsLost); err != nil {
		return err
	}
	g.SetPrevAction(ActionSack)
	return nil
}

func (r *PlayResolver) resolveFieldGoal(g *GameState, rng *rand.Rand) error {
	kickDistance := float64(g.YardsToGoal() + 17)
	secUsed := r.Oracles.FieldGoal.SecondsUsed(g.YardsToGoal())
	blocked := oracle.Bernoulli(rng, r.Oracles.FieldGoal.PBlocked(kickDistance))

	if blocked {
		yardsGained := r.Oracles.FieldGoal.SampleBlockedYardsGained(rng)
		newYTG, _, returnedPastKicker := scrimmageOutcome(g, -yardsGained)
		g.SwitchPossession()
		r.Clock.ConsumeSeconds(g, secUsed)
		if returnedPastKicker {
			// the original kicking team's defense, now on offense
			// after the turnover, ran it back across the goal line.
			if err := g.IncrementOffenseScore(6); err != nil {
				return err
			}
			g.SetNextAction(ActionTryAttempt)
			g.StopClock()
			g.SetPrevAction(ActionFieldGoalBlockedTD)
			return nil
		}
		flipped := 100 - newYTG
		if err := g.SetYardsToGoal(clampYTG(flipped)); err != nil {
			return err
		}
		if err := g.SetDown(1); err != nil {
			return err
		}
		if err := g.SetDistance(defaultFirstDownDistance); err != nil {
			return err
		}
		g.StopClock()
		g.SetPrevAction(ActionFieldGoalBlocked)
		return nil
	}

	r.Clock.ConsumeSeconds(g, secUsed)
	if g.YardsToGoal() > 48 {
		return r.missedFieldGoal(g)
	}
	made := oracle.Bernoulli(rng, r.Oracles.FieldGoal.PMake(g.YardsToGoal()))
	if made {
		if err := g.IncrementOffenseScore(3); err != nil {
			return err
		}
		g.SetNextAction(ActionKickoff)
		g.StopClock()
		g.SetPrevAction(ActionFieldGoal)
		return nil
	}
	return r.missedFieldGoal(g)
}

func (r *PlayResolver) missedFieldGoal(g *GameState) error {
	spot := 100 - g.YardsToGoal()
	g.SwitchPossession()
	if err := g.SetYardsToGoal(clampYTG(spot)); err != nil {
		return err
	}
	if err := g.SetDown(1); err != nil {
		return err
	}
	if err := g.SetDistance(defaultFirstDownDistance); err != nil {
		return err
	}
	g.StopClock()
	g.SetPrevAction(ActionFieldGoalMiss)
	return nil
}

func (r *PlayResolver) resolvePunt(g *GameState, rng *rand.Rand) error {
	kickingYTG := g.YardsToGoal()
	blocked := oracle.Bernoulli(rng, r.Oracles.Punt.PBlocked(kickingYTG))
	g.StopClock()

	if blocked {
		yardsGained := r.Oracles.Punt.SampleBlockedYardsGained(rng)
		r.Clock.ConsumeSeconds(g, r.Oracles.Punt.BlockedSecondsUsed(yardsGained))
		newYTG, _, _ := scrimmageOutcome(g, -yardsGained)
		if newYTG <= 0 {
			if oracle.Bernoulli(rng, 0.70) {
				if err := g.IncrementOffenseScore(6); err != nil {
					return err
				}
				g.SetNextAction(ActionTryAttempt)
				g.SetPrevAction(ActionPuntBlockedTD)
				return nil
			}
			if err := g.IncrementDefenseScore(2); err != nil {
				return err
			}
			g.SetPossession(safetyKickerPossession(g))
			g.SetNextAction(ActionKickoff)
			g.SetPrevAction(ActionPuntBlockedSafety)
			return nil
		}
		g.SwitchPossession()
		flipped := 100 - newYTG
		if err := g.SetYardsToGoal(clampYTG(flipped)); err != nil {
			return err
		}
		if err := g.SetDown(1); err != nil {
			return err
		}
		if err := g.SetDistance(defaultFirstDownDistance); err != nil {
			return err
		}
		g.SetPrevAction(ActionPuntBlocked)
		return nil
	}

	receivingYTG := r.Oracles.Punt.SampleReceivingTeamYardsToGoal(rng, kickingYTG)
	r.Clock.ConsumeSeconds(g, r.Oracles.Punt.ReturnSecondsUsed(receivingYTG))
	if receivingYTG <= 0 {
		// the receiving team returned it all the way: their score.
		g.SwitchPossession()
		if err := g.IncrementOffenseScore(6); err != nil {
			return err
		}
		g.SetNextAction(ActionTryAttempt)
		g.SetPrevAction(ActionPuntReturnTD)
		return nil
	}
	g.SwitchPossession()
	dist := defaultFirstDownDistance
	if receivingYTG < dist {
		dist = receivingYTG
	}
	if err := g.SetYardsToGoal(clampYTG(receivingYTG)); err != nil {
		return err
	}
	if err := g.SetDown(1); err != nil {
		return err
	}
	if err := g.SetDistance(dist); err != nil {
		return err
	}
	g.SetPrevAction(ActionPunt)
	return nil
}

func (r *PlayResolver) resolveQBKneel(g *GameState, rng *rand.Rand) error {
	g.IncrementPlayCount()
	r.Clock.ConsumeSeconds(g, kneelSeconds)
	g.StartClock()

	newYTG, _, _ := scrimmageOutcome(g, -1)
	if err := advanceDownAndDistance(g, newYTG, -1); err != nil {
		return err
	}
	g.SetPrevAction(ActionQBKneel)
	return nil
}

func (r *PlayResolver) resolveTryAttempt(g *GameState, rng *rand.Rand) error {
	f := oracle.NewTryAttemptFeatures(g.ScoreDiff(), g.DiffTimeRatio(), g.PctGamePlayed())
	attemptXP := oracle.Bernoulli(rng, r.Oracles.TryAttempt.PAttemptXP(f))

	offense := g.Offense()
	if attemptXP {
		made := oracle.Bernoulli(rng, r.Oracles.TryAttempt.PXPMake(int(offense.Division), offense.IsPowerFive))
		if made {
			if err := g.IncrementOffenseScore(1); err != nil {
				return err
			}
		}
	} else {
		made := oracle.Bernoulli(rng, r.Oracles.TryAttempt.PTwoPointMake(int(offense.Division), int(g.Defense().Division)))
		if made {
			if err := g.IncrementOffenseScore(2); err != nil {
				return err
			}
		}
	}
	g.SetNextAction(ActionKickoff)
	g.StopClock()
	return nil
}

func clampYTG(v int) int {
	if v < 1 {
		return 1
	}
	if v > 99 {
		return 99
	}
	return v
}

// safetyKickerPossession decides who kicks off after a safety. The
// recorded decision for spec §9 open question a is that the team that
// conceded the safety free-kicks to the opponent (the NCAA rule), not the
// source model's behavior of leaving the scored-upon team in possession
// — see DESIGN.md. g.Possession() at call time is still the team that
// just conceded the safety (it is the offense in the play that produced
// the safety), so the kicker is the other side.
func safetyKickerPossession(g *GameState) Possession {
	if g.Possession() == PossessionHome {
		return PossessionAway
	}
	return PossessionHome
}
