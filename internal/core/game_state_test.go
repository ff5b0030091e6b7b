package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGameState() *GameState {
	return NewGameState(NewGameStateInput{
		HomeElo: 1500, AwayElo: 1500,
		HomeDivision: DivisionFBS, AwayDivision: DivisionFBS,
	})
}

func TestNewGameState_Defaults(t *testing.T) {
	g := newTestGameState()
	assert.Equal(t, PossessionNone, g.Possession())
	assert.Equal(t, 3600, g.SecondsRemaining())
	assert.False(t, g.HasDown())
	assert.False(t, g.HasDistance())
	assert.False(t, g.HasYardsToGoal())
	assert.False(t, g.ClockRolling())
	assert.Equal(t, 3, g.Home().Timeouts)
	assert.Equal(t, 3, g.Away().Timeouts)
	assert.Equal(t, ActionKickoff, g.NextAction())
}

func TestResetToInitial_RestoresSnapshot(t *testing.T) {
	g := newTestGameState()
	g.SetPossession(PossessionHome)
	require.NoError(t, g.SetYardsToGoal(40))
	require.NoError(t, g.SetDown(2))
	require.NoError(t, g.IncrementOffenseScore(7))
	g.DecrementSecondsRemaining(500)

	g.ResetToInitial()

	assert.Equal(t, PossessionNone, g.Possession())
	assert.Equal(t, 3600, g.SecondsRemaining())
	assert.Equal(t, 0, g.Home().Score)
	assert.False(t, g.HasYardsToGoal())
}

func TestSwitchPossession_ZeroesPlayCount(t *testing.T) {
	g := newTestGameState()
	g.SetPossession(PossessionHome)
	g.IncrementPlayCount()
	g.IncrementPlayCount()
	require.Equal(t, 2, g.NumPlaysOnDrive())

	g.SwitchPossession()

	assert.Equal(t, PossessionAway, g.Possession())
	assert.Equal(t, 0, g.NumPlaysOnDrive())
}

func TestDecrementSecondsRemaining_ClampsAtZero(t *testing.T) {
	g := newTestGameState()
	g.DecrementSecondsRemaining(10000)
	assert.Equal(t, 0, g.SecondsRemaining())
}

func TestDerivedQuantities_ScoreDiffAndRatio(t *testing.T) {
	g := newTestGameState()
	g.SetPossession(PossessionHome)
	require.NoError(t, g.IncrementOffenseScore(14))
	require.NoError(t, g.IncrementDefenseScore(7))

	assert.Equal(t, 7, g.ScoreDiff())
	assert.InDelta(t, 0.0, g.PctGamePlayed(), 1e-9)

	g.DecrementSecondsRemaining(3600)
	assert.InDelta(t, 1.0, g.PctGamePlayed(), 1e-9)
	assert.InDelta(t, 7*mathExp4, g.DiffTimeRatio(), 1e-6)
}

const mathExp4 = 54.598150033144236 // e^4, used to check DiffTimeRatio at pct_game_played=1

func TestIsRedzoneAndGoalToGo(t *testing.T) {
	g := newTestGameState()
	require.NoError(t, g.SetYardsToGoal(15))
	require.NoError(t, g.SetDistance(10))
	assert.True(t, g.IsRedzone())
	assert.False(t, g.IsGoalToGo())

	require.NoError(t, g.SetYardsToGoal(8))
	require.NoError(t, g.SetDistance(10))
	assert.True(t, g.IsGoalToGo())
}

func TestIsTwoMinuteDrillAndFinalMinuteOfHalf(t *testing.T) {
	g := newTestGameState()
	g.DecrementSecondsRemaining(3600 - 100) // seconds_remaining = 100
	assert.True(t, g.IsTwoMinuteDrill())
	assert.False(t, g.IsFinalMinuteOfHalf())

	g.ResetToInitial()
	g.DecrementSecondsRemaining(3600 - 1850) // seconds_remaining = 1850
	assert.True(t, g.IsTwoMinuteDrill())
	assert.True(t, g.IsFinalMinuteOfHalf())
}

func TestSetDown_RejectsOutOfRange(t *testing.T) {
	g := newTestGameState()
	err := g.SetDown(0)
	assert.Error(t, err)
	assert.True(t, IsContractViolation(err))

	err = g.SetDown(5)
	assert.Error(t, err)
}

func TestSetYardsToGoal_RejectsOutOfRange(t *testing.T) {
	g := newTestGameState()
	assert.Error(t, g.SetYardsToGoal(0))
	assert.Error(t, g.SetYardsToGoal(100))
	assert.NoError(t, g.SetYardsToGoal(50))
}

func TestDecrementDefenseTimeouts_ActuallyDecrements(t *testing.T) {
	// Regression test for spec's normalization of the source's
	// missing-parentheses bug (open question c): both branches must
	// decrement and stop the clock.
	g := newTestGameState()
	g.SetPossession(PossessionHome)
	g.StartClock()

	g.DecrementDefenseTimeouts()

	assert.Equal(t, 2, g.Away().Timeouts)
	assert.False(t, g.ClockRolling())
}

func TestCapHalfDistance_CapsAtHalfToGoal(t *testing.T) {
	// 10 yards to goal, a 30-yard penalty would cross the goal line:
	// capped at half the remaining distance (5).
	got := CapHalfDistance(10, 30)
	assert.Equal(t, 5, got)
}

func TestCapHalfDistance_NormalDeltaUncapped(t *testing.T) {
	got := CapHalfDistance(50, 10)
	assert.Equal(t, 40, got)
}
