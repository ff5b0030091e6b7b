package core

import (
	"math/rand"
	"testing"

	"github.com/lneuendorf/cfbsim/internal/core/oracle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSimGameState(homeElo, awayElo float64) *GameState {
	return NewGameState(NewGameStateInput{
		HomeElo: homeElo, AwayElo: awayElo,
		HomeDivision: DivisionFBS, AwayDivision: DivisionFBS,
		HomeIsPowerFive: true, AwayIsPowerFive: true,
	})
}

// TestRunOneGame_EqualTeamsRoughlyFairOverManyReplays exercises the
// equal-teams-fair-weather scenario: two evenly matched teams should split
// wins roughly 50/50 across a large batch of replays.
func TestRunOneGame_EqualTeamsRoughlyFairOverManyReplays(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping large replay batch in -short mode")
	}
	oracles := oracle.NewDefaultSet()
	rng := rand.New(rand.NewSource(1234))
	g := newSimGameState(1500, 1500)

	const n = 2000
	homeWins, ties := 0, 0
	for i := 0; i < n; i++ {
		result, err := RunOneGame(g, oracles, rng, nil)
		require.NoError(t, err)
		if result > 0 {
			homeWins++
		} else if result == 0 {
			ties++
		}
	}

	homeWinRate := float64(homeWins) / float64(n)
	assert.InDelta(t, 0.5, homeWinRate, 0.15, "evenly matched teams should split wins roughly evenly")
	assert.Less(t, ties, n/5, "ties should be a small minority of outcomes")
}

// TestRunOneGame_EloDominanceFavorsStrongerTeam exercises the
// Elo-dominance scenario: a team with a dramatically higher Elo rating
// should win the large majority of replays.
func TestRunOneGame_EloDominanceFavorsStrongerTeam(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping large replay batch in -short mode")
	}
	oracles := oracle.NewDefaultSet()
	rng := rand.New(rand.NewSource(99))
	g := newSimGameState(2200, 1000)

	const n = 500
	homeWins := 0
	for i := 0; i < n; i++ {
		result, err := RunOneGame(g, oracles, rng, nil)
		require.NoError(t, err)
		if result > 0 {
			homeWins++
		}
	}

	homeWinRate := float64(homeWins) / float64(n)
	assert.Greater(t, homeWinRate, 0.5, "the dramatically higher-Elo home team should win more often than not")
}

// TestRunOneGame_TerminatesAndHoldsInvariants runs a single replay and
// checks the terminal state satisfies the spec's quantified invariants.
func TestRunOneGame_TerminatesAndHoldsInvariants(t *testing.T) {
	oracles := oracle.NewDefaultSet()
	rng := rand.New(rand.NewSource(42))
	g := newSimGameState(1500, 1450)

	result, err := RunOneGame(g, oracles, rng, nil)
	require.NoError(t, err)
	assert.Contains(t, []int{-1, 0, 1}, result)
	assert.Equal(t, 0, g.SecondsRemaining())
	assert.GreaterOrEqual(t, g.Home().Score, 0)
	assert.GreaterOrEqual(t, g.Away().Score, 0)
}

// TestRunOneGame_CancelStopsWithoutFurtherMutation exercises cancellation:
// a cancel func returning true on the first poll must return ErrCancelled
// and leave the clock untouched.
func TestRunOneGame_CancelStopsWithoutFurtherMutation(t *testing.T) {
	oracles := oracle.NewDefaultSet()
	rng := rand.New(rand.NewSource(7))
	g := newSimGameState(1500, 1500)
	g.ResetToInitial()

	calls := 0
	cancel := func() bool {
		calls++
		return true
	}

	result, err := RunOneGame(g, oracles, rng, cancel)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, 0, result)
	assert.Equal(t, 3600, g.SecondsRemaining(), "cancellation before any cycle must leave the clock untouched")
}

// TestRunOneGame_ResetsStateEachInvocation verifies RunOneGame resets g to
// its pregame snapshot before running, so the same GameState value can be
// reused across replays without carrying over score/clock state.
func TestRunOneGame_ResetsStateEachInvocation(t *testing.T) {
	oracles := oracle.NewDefaultSet()
	rng := rand.New(rand.NewSource(3))
	g := newSimGameState(1500, 1500)

	_, err := RunOneGame(g, oracles, rng, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, g.SecondsRemaining())

	_, err = RunOneGame(g, oracles, rng, nil)
	require.NoError(t, err)
	// seconds_remaining must have run all the way back down to 0 again,
	// proving the second invocation started from 3600, not 0.
	assert.Equal(t, 0, g.SecondsRemaining())
}

// TestClockManager_OneKneelReducesClockByExpectedAmount exercises the
// clock-monotonicity scenario: a single QB kneel with the clock already
// rolling consumes the kneel pre-snap runoff (40s) plus the kneel play's
// own time (3s), for 43 seconds total, absent any boundary stoppage.
func TestClockManager_OneKneelReducesClockByExpectedAmount(t *testing.T) {
	g := newSimGameState(1500, 1500)
	g.SetPossession(PossessionHome)
	g.StartClock()
	g.SetPrevAction(ActionQBKneel)
	require.NoError(t, g.SetYardsToGoal(50))
	require.NoError(t, g.SetDown(1))
	require.NoError(t, g.SetDistance(10))
	// place seconds_remaining away from any clock-stop boundary so the
	// full 43-second consumption is observable.
	g.DecrementSecondsRemaining(3600 - 2800) // seconds_remaining = 2800

	clock := NewClockManager()
	clock.ApplyPreSnapRunoff(g)
	assert.Equal(t, 2760, g.SecondsRemaining())

	clock.ConsumeSeconds(g, kneelSeconds)
	assert.Equal(t, 2757, g.SecondsRemaining())
}

// TestPenaltyOpportunity_OnlyFiresOnScrimmagePlays verifies that no
// penalty is ever applied ahead of a kickoff or try attempt, per spec
// §4.2: penalties only have an opportunity to occur ahead of a scrimmage
// snap.
func TestPenaltyOpportunity_OnlyFiresOnScrimmagePlays(t *testing.T) {
	oracles := oracle.NewDefaultSet()
	loop := NewGameLoop(oracles)
	rng := rand.New(rand.NewSource(11))

	g := newSimGameState(1500, 1500)
	g.SetPossession(PossessionHome)
	g.SetNextAction(ActionKickoff)
	require.NoError(t, g.SetYardsToGoal(65))

	err := loop.penaltyOpportunity(g, rng)
	require.NoError(t, err)
	assert.Equal(t, 65, g.YardsToGoal(), "no penalty opportunity exists ahead of a kickoff")
}
