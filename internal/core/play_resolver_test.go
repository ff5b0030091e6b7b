package core

import (
	"math/rand"
	"testing"

	"github.com/lneuendorf/cfbsim/internal/core/oracle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResolverGame() (*GameState, *PlayResolver) {
	g := newSimGameState(1500, 1500)
	oracles := oracle.NewDefaultSet()
	clock := NewClockManager()
	return g, NewPlayResolver(oracles, clock)
}

// TestFieldGoalOracle_BlockProbabilityBound exercises the FG-block
// probability bound scenario: at kick_distance=70 (beyond the formula's
// domain) the block probability is the flat 0.059 ceiling, and the linear
// region never exceeds it.
func TestFieldGoalOracle_BlockProbabilityBound(t *testing.T) {
	fg := oracle.NewDefaultFieldGoalOracle()
	assert.InDelta(t, 0.059, fg.PBlocked(70), 1e-9)
	assert.InDelta(t, 0.059, fg.PBlocked(60), 1e-9)
	assert.Less(t, fg.PBlocked(30), 0.059)
	assert.GreaterOrEqual(t, fg.PBlocked(30), 0.0)
}

// TestFieldGoalOracle_PMakeZeroBeyond48Yards checks the spec's hard cutoff:
// attempts with yards_to_goal>48 always miss.
func TestFieldGoalOracle_PMakeZeroBeyond48Yards(t *testing.T) {
	fg := oracle.NewDefaultFieldGoalOracle()
	assert.Equal(t, 0.0, fg.PMake(49))
	assert.Equal(t, 0.0, fg.PMake(60))
	assert.Greater(t, fg.PMake(20), 0.0)
}

// TestAdvanceDownAndDistance_FourthDownFailureFlipsField exercises the
// turnover-on-downs field-flip scenario: failing to convert on 4th down
// switches possession and mirrors the spot across the field, without ever
// passing through a down==5 state.
func TestAdvanceDownAndDistance_FourthDownFailureFlipsField(t *testing.T) {
	g := newSimGameState(1500, 1500)
	g.SetPossession(PossessionHome)
	require.NoError(t, g.SetDown(4))
	require.NoError(t, g.SetDistance(5))
	require.NoError(t, g.SetYardsToGoal(40))

	// gained only 2 yards on 4th-and-5: turnover on downs.
	newYTG, td, safety := scrimmageOutcome(g, 2)
	require.False(t, td)
	require.False(t, safety)

	err := advanceDownAndDistance(g, newYTG, 2)
	require.NoError(t, err)

	assert.Equal(t, PossessionAway, g.Possession())
	assert.Equal(t, 1, g.Down())
	assert.Equal(t, defaultFirstDownDistance, g.Distance())
	assert.Equal(t, 100-newYTG, g.YardsToGoal())
}

// TestAdvanceDownAndDistance_FirstDownResetsDown exercises the
// converted-first-down branch: gaining at least the line to gain resets
// down to 1 with a fresh set of 10 (or less, if goal-to-go).
func TestAdvanceDownAndDistance_FirstDownResetsDown(t *testing.T) {
	g := newSimGameState(1500, 1500)
	g.SetPossession(PossessionHome)
	require.NoError(t, g.SetDown(2))
	require.NoError(t, g.SetDistance(7))
	require.NoError(t, g.SetYardsToGoal(30))

	newYTG, _, _ := scrimmageOutcome(g, 8)
	err := advanceDownAndDistance(g, newYTG, 8)
	require.NoError(t, err)

	assert.Equal(t, 1, g.Down())
	assert.Equal(t, 22, g.YardsToGoal())
	assert.Equal(t, 10, g.Distance())
}

// TestAdvanceDownAndDistance_NonFourthDownFailureAdvancesDown checks the
// ordinary non-converting, non-4th-down branch: down increments by one and
// distance shrinks by the yards gained, never passing through down==5.
func TestAdvanceDownAndDistance_NonFourthDownFailureAdvancesDown(t *testing.T) {
	g := newSimGameState(1500, 1500)
	g.SetPossession(PossessionHome)
	require.NoError(t, g.SetDown(2))
	require.NoError(t, g.SetDistance(10))
	require.NoError(t, g.SetYardsToGoal(50))

	newYTG, _, _ := scrimmageOutcome(g, 3)
	err := advanceDownAndDistance(g, newYTG, 3)
	require.NoError(t, err)

	assert.Equal(t, 3, g.Down())
	assert.Equal(t, 7, g.Distance())
	assert.Equal(t, 47, g.YardsToGoal())
}

// TestResolveKickoff_OnsideRecoveryKeepsKickingTeamOnOffense exercises the
// onside-recovery path of resolveKickoff from a tied, start-of-game state:
// across up to 200 kickoffs, at least one must leave possession with the
// kicking team (an onside recovery by the kicker, no SwitchPossession).
func TestResolveKickoff_OnsideRecoveryKeepsKickingTeamOnOffense(t *testing.T) {
	g, resolver := newResolverGame()
	g.SetPossession(PossessionHome)
	g.SetNextAction(ActionKickoff)
	rng := rand.New(rand.NewSource(21))

	sawKickerRecovery := false
	for i := 0; i < 200 && !sawKickerRecovery; i++ {
		g.SetPossession(PossessionHome)
		g.SetNextAction(ActionKickoff)
		before := g.Possession()
		err := resolver.resolveKickoff(g, rng)
		require.NoError(t, err)
		if g.Possession() == before && g.NextAction() != ActionTryAttempt {
			sawKickerRecovery = true
		}
	}
	assert.True(t, sawKickerRecovery, "expected at least one kicking-team recovery across 200 kickoffs")
}

// TestResolveQBKneel_LosesOneYardAndConsumesClock exercises the qb-kneel
// path: down/distance advance via the shared turnover-on-downs-aware
// helper and the clock runs down by kneelSeconds.
func TestResolveQBKneel_LosesOneYardAndConsumesClock(t *testing.T) {
	g, resolver := newResolverGame()
	g.SetPossession(PossessionHome)
	require.NoError(t, g.SetDown(1))
	require.NoError(t, g.SetDistance(10))
	require.NoError(t, g.SetYardsToGoal(50))
	g.DecrementSecondsRemaining(3600 - 2800)
	rng := rand.New(rand.NewSource(2))

	err := resolver.resolveQBKneel(g, rng)
	require.NoError(t, err)

	assert.Equal(t, 51, g.YardsToGoal())
	assert.Equal(t, 2, g.Down())
	assert.Equal(t, 11, g.Distance())
	assert.Equal(t, 2797, g.SecondsRemaining())
	assert.Equal(t, ActionQBKneel, g.PrevAction())
}

// TestCapHalfDistance_PenaltyNeverCrossesGoalLine is a property check: for
// a broad range of yards-to-goal and proposed deltas, the capped result
// always stays within [1,99].
func TestCapHalfDistance_PenaltyNeverCrossesGoalLine(t *testing.T) {
	for ytg := 1; ytg <= 99; ytg++ {
		for _, delta := range []int{-80, -40, -10, 0, 10, 40, 80} {
			got := CapHalfDistance(ytg, delta)
			assert.GreaterOrEqual(t, got, 1, "ytg=%d delta=%d", ytg, delta)
			assert.LessOrEqual(t, got, 99, "ytg=%d delta=%d", ytg, delta)
		}
	}
}
