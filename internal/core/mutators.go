package core

// SetPossession assigns possession outright (used by the opening coin
// toss and onside-kick recovery). It does not reset drive-play count —
// use SwitchPossession for in-drive turnovers.
func (g *GameState) SetPossession(p Possession) {
	g.possession = p
}

// SwitchPossession flips possession to the other team and zeroes
// num_plays_on_drive, per spec §4.1.
func (g *GameState) SwitchPossession() {
	switch g.possession {
	case PossessionHome:
		g.possession = PossessionAway
	case PossessionAway:
		g.possession = PossessionHome
	}
	g.numPlaysOnDrive = 0
}

// SetDown sets the current down. down must be in {1,2,3,4}, or callers
// pass ClearDown to mark "none" (e.g. between plays, pre-kickoff).
func (g *GameState) SetDown(down int) error {
	if down < 1 || down > 4 {
		return NewContractViolation("down must be in {1,2,3,4}", g.Snapshot())
	}
	g.down = down
	return nil
}

// ClearDown marks down as not applicable (next_action != play).
func (g *GameState) ClearDown() { g.down = noDown }

// SetDistance sets yards needed for a first down. Must be >=1, or equal
// to yards_to_goal when goal-to-go (validated by caller via IsGoalToGo
// after the yards-to-goal mutation that established it).
func (g *GameState) SetDistance(distance int) error {
	if distance < 1 {
		return NewContractViolation("distance must be >= 1", g.Snapshot())
	}
	g.distance = distance
	return nil
}

func (g *GameState) ClearDistance() { g.distance = noDistance }

// SetYardsToGoal sets the spot of the ball, 1..99 at rest. Callers that
// need to represent a would-be value outside that range (0 => touchdown,
// 100 => safety) must handle the scoring transition themselves and never
// commit the out-of-range value via this setter.
func (g *GameState) SetYardsToGoal(ytg int) error {
	if ytg < 1 || ytg > 99 {
		return NewContractViolation("yards_to_goal must be in [1,99] at rest", g.Snapshot())
	}
	g.yardsToGoal = ytg
	return nil
}

func (g *GameState) ClearYardsToGoal() { g.yardsToGoal = noYardsToGoal }

// CapHalfDistance applies the half-the-distance-to-the-goal rule: a
// proposed yardage delta that would move the ball past either goal line
// is capped at half the remaining distance, per spec §4.1. The result is
// the new yards_to_goal value (lower = closer to the defense's goal);
// delta is signed so that positive means the offense gained ground.
func CapHalfDistance(currentYTG, delta int) int {
	proposed := currentYTG - delta
	if proposed <= 0 {
		// would cross the defense's goal line: cap at half the
		// distance to that goal.
		return currentYTG - currentYTG/2
	}
	if proposed >= 100 {
		// would cross the offense's own goal line (safety territory):
		// cap at half the distance to that goal.
		remaining := 100 - currentYTG
		return currentYTG + remaining/2
	}
	return proposed
}

// DecrementSecondsRemaining consumes n seconds off the clock, clamping at
// zero (the loop terminates when seconds_remaining hits zero).
func (g *GameState) DecrementSecondsRemaining(n int) {
	g.secondsRemaining -= n
	if g.secondsRemaining < 0 {
		g.secondsRemaining = 0
	}
}

func (g *GameState) StopClock()  { g.clockRolling = false }
func (g *GameState) StartClock() { g.clockRolling = true }

// IncrementOffenseScore adds n points to the team currently on offense.
func (g *GameState) IncrementOffenseScore(n int) error {
	if n < 0 {
		return NewContractViolation("score increment must be >= 0", g.Snapshot())
	}
	if g.possession == PossessionHome {
		g.home.Score += n
	} else {
		g.away.Score += n
	}
	return nil
}

// IncrementDefenseScore adds n points to the team currently on defense
// (safeties, defensive/return touchdowns).
func (g *GameState) IncrementDefenseScore(n int) error {
	if n < 0 {
		return NewContractViolation("score increment must be >= 0", g.Snapshot())
	}
	if g.possession == PossessionHome {
		g.away.Score += n
	} else {
		g.home.Score += n
	}
	return nil
}

// DecrementOffenseTimeouts spends one of the offense's timeouts and stops
// the clock, floored at zero.
func (g *GameState) DecrementOffenseTimeouts() {
	if g.possession == PossessionHome {
		if g.home.Timeouts > 0 {
			g.home.Timeouts--
		}
	} else {
		if g.away.Timeouts > 0 {
			g.away.Timeouts--
		}
	}
	g.StopClock()
}

// DecrementDefenseTimeouts spends one of the defense's timeouts and stops
// the clock. The source implementation's defensive branch was a no-op due
// to a missing-parentheses bug (spec §9 open question c); this
// implementation normalizes both branches to actually decrement and stop
// the clock.
func (g *GameState) DecrementDefenseTimeouts() {
	if g.possession == PossessionHome {
		if g.away.Timeouts > 0 {
			g.away.Timeouts--
		}
	} else {
		if g.home.Timeouts > 0 {
			g.home.Timeouts--
		}
	}
	g.StopClock()
}

// ResetTimeoutsForHalf restores both teams to 3 timeouts. Called by
// GameLoop at the 1800-second (halftime) boundary per the recorded
// decision on spec §9 open question e.
func (g *GameState) ResetTimeoutsForHalf() {
	g.home.Timeouts = 3
	g.away.Timeouts = 3
}

// IncrementPlayCount bumps num_plays_on_drive, used by TimeoutOracle's
// num_prior_plays_on_drive feature.
func (g *GameState) IncrementPlayCount() { g.numPlaysOnDrive++ }

// SetNextAction sets the tagged variant GameLoop dispatches on next.
func (g *GameState) SetNextAction(a Action) { g.nextAction = a }

// SetPrevAction records the diagnostic-only tag for the action just
// resolved.
func (g *GameState) SetPrevAction(a Action) { g.prevAction = a }

// ValidateInvariants checks the quantified invariants from spec §8 that
// must hold whenever the loop is between plays (not mid-mutation). It
// returns a StateInvariantBroken error describing the first violation
// found, or nil.
func (g *GameState) ValidateInvariants() error {
	if g.secondsRemaining < 0 || g.secondsRemaining > 3600 {
		return NewStateInvariantBroken("seconds_remaining out of [0,3600]", g.Snapshot())
	}
	if g.nextAction == ActionPlay && !g.HasDown() {
		return NewStateInvariantBroken("down must be set when next_action=play", g.Snapshot())
	}
	if g.HasDown() && (g.down < 1 || g.down > 4) {
		return NewStateInvariantBroken("down out of {1,2,3,4}", g.Snapshot())
	}
	if g.HasYardsToGoal() && (g.yardsToGoal < 1 || g.yardsToGoal > 99) {
		return NewStateInvariantBroken("yards_to_goal out of [1,99] at rest", g.Snapshot())
	}
	if g.home.Score < 0 || g.away.Score < 0 {
		return NewStateInvariantBroken("scores must be non-negative", g.Snapshot())
	}
	if g.home.Timeouts < 0 || g.home.Timeouts > 3 || g.away.Timeouts < 0 || g.away.Timeouts > 3 {
		return NewStateInvariantBroken("timeouts out of [0,3]", g.Snapshot())
	}
	return nil
}
