package oracle

import "math/rand"

// KickoffOracle samples kickoff outcomes: onside decision, recovery team,
// resulting field position and clock usage.
type KickoffOracle interface {
	POnside(scoreDiff int, pctGamePlayed, diffTimeRatio float64, offenseTimeouts int) float64
	SampleRegularReturn(rng *rand.Rand) (yardsToGoal, secondsUsed int)
	SampleOnsideRecoveryTeam(rng *rand.Rand) bool // true = kicking team (offense) recovers
	SampleOnsideReturn(rng *rand.Rand, recoveringTeamIsKicker bool) (yardsToGoal, secondsUsed int)
}

// TryAttemptFeatures captures the try-attempt features, including the
// special-tie-condition flags, built once per attempt by
// NewTryAttemptFeatures from GameState's derived quantities and passed
// down rather than re-derived inside each oracle.
type TryAttemptFeatures struct {
	ScoreDiff           int
	DiffTimeRatio       float64
	PctGamePlayed       float64
	TwoPointToTie       bool
	TwoPointToLead      bool
	WillNeedTwoPtToTie  bool
}

// TryAttemptOracle decides extra-point attempt vs two-point attempt and
// the make probability of each.
type TryAttemptOracle interface {
	PAttemptXP(f TryAttemptFeatures) float64
	PXPMake(offenseDivision int, offenseIsPowerFive bool) float64
	PTwoPointMake(offenseDivision, defenseDivision int) float64
}

// TimeoutFeatures is the full feature vector consulted by both the
// offense and defense timeout heads, grounded on models/timeout.py's
// feature set (richer than spec.md's one-line mention — see SPEC_FULL.md
// §4).
type TimeoutFeatures struct {
	ScoreDiff              int
	PctGamePlayed          float64
	DiffTimeRatio          float64
	SecondsRemaining       int
	Down                   int
	Distance               int
	YardsToGoal            int
	IsRedzone              bool
	IsGoalToGo             bool
	IsTwoMinuteDrill       bool
	IsFinalMinuteOfHalf    bool
	ClockRollingPriorToPlay bool
	NumPriorPlaysOnDrive   int
	// OffenseIsHome is the 3-valued home/away/neutral flag GameState's
	// OffenseHomeFlag computes: 0 at a neutral site, else 1/-1 for home/away.
	OffenseIsHome          int
	OffenseTimeoutsRemaining int
	DefenseTimeoutsRemaining int
}

// TimeoutOracle has two independent heads: will the offense call timeout,
// will the defense call timeout.
type TimeoutOracle interface {
	POffenseCallsTimeout(f TimeoutFeatures) float64
	PDefenseCallsTimeout(f TimeoutFeatures) float64
}

// PenaltyOracle models the flat-rate penalty opportunity each cycle.
type PenaltyOracle interface {
	PPenalty() float64
	SampleYardage(rng *rand.Rand) int
	DefensivePenaltyIsAutomaticFirstDown(rng *rand.Rand) bool
	OffensivePenaltyIsLossOfDown(rng *rand.Rand) bool
}

// DecisionFeatures is the shared feature vector for the down-by-down
// offensive decision oracle.
type DecisionFeatures struct {
	Down                int
	Distance            int
	YardsToGoal         int
	ScoreDiff           int
	PctGamePlayed       float64
	DiffTimeRatio       float64
	IsRedzone           bool
	IsGoalToGo          bool
	IsTwoMinuteDrill    bool
	IsFinalMinuteOfHalf bool
}

// EarlyDownChoice enumerates the 1st-3rd down categorical decision.
type EarlyDownChoice string

const (
	ChoicePass    EarlyDownChoice = "pass"
	ChoiceRun     EarlyDownChoice = "run"
	ChoiceFieldGoal EarlyDownChoice = "field_goal"
	ChoiceQBKneel EarlyDownChoice = "qb_kneel"
)

// FourthDownChoice enumerates the 4th-down categorical decision.
type FourthDownChoice string

const (
	ChoiceGo       FourthDownChoice = "go"
	ChoiceFG       FourthDownChoice = "field_goal"
	ChoicePunt     FourthDownChoice = "punt"
)

// DecisionOracle picks the play call.
type DecisionOracle interface {
	SampleEarlyDown(rng *rand.Rand, f DecisionFeatures) EarlyDownChoice
	SampleFourthDown(rng *rand.Rand, f DecisionFeatures) FourthDownChoice
	SampleGoForItPassOrRun(rng *rand.Rand, f DecisionFeatures) EarlyDownChoice // ChoicePass or ChoiceRun only
}

// RunOracle samples rush-play outcomes.
type RunOracle interface {
	SampleYards(rng *rand.Rand, yardsToGoal int) int
	IsFumble(rng *rand.Rand) bool
	FumbleRecoveredByOffense(rng *rand.Rand) bool
	SampleFumbleYardsLost(rng *rand.Rand, offenseRecovered bool) int
}

// PassSackOracle samples sack occurrence/consequences for drop-backs; the
// completion/incompletion split itself is handled in PlayResolver (see
// spec §9 open question d on pass-yardage determinism).
type PassSackOracle interface {
	IsSack(rng *rand.Rand, f DecisionFeatures) bool
	IsSackFumble(rng *rand.Rand) bool
	SackFumbleRecoveredByOffense(rng *rand.Rand) bool
	SampleSackFumbleYardsLost(rng *rand.Rand, offenseRecovered bool) int
	SampleSackYardsLost(rng *rand.Rand) int
	SampleSackTimeUsed(rng *rand.Rand) int
}

// FieldGoalOracle samples field goal attempts.
type FieldGoalOracle interface {
	PBlocked(kickDistance float64) float64
	PMake(yardsToGoal int) float64 // only valid when yardsToGoal<=48
	SampleBlockedYardsGained(rng *rand.Rand) int
	SecondsUsed(yardsToGoal int) int
}

// PuntOracle samples punt attempts.
type PuntOracle interface {
	PBlocked(teamYardsToGoal int) float64
	SampleReceivingTeamYardsToGoal(rng *rand.Rand, kickingTeamYardsToGoal int) int
	SampleBlockedYardsGained(rng *rand.Rand) int
	// ReturnSecondsUsed returns the game-clock seconds consumed by a punt
	// that reaches the receiving team, given the resulting receiving-team
	// yards-to-goal sample.
	ReturnSecondsUsed(receivingTeamYardsToGoal int) int
	// BlockedSecondsUsed returns the game-clock seconds consumed by a
	// blocked punt, given the yards gained on the blocked-kick play.
	BlockedSecondsUsed(yardsGained int) int
}

// Set bundles every oracle GameLoop/PlayResolver needs. All fields must be
// non-nil; constructing a Set with a missing oracle is an
// OracleUnavailable condition the caller should refuse to start with.
type Set struct {
	Kickoff    KickoffOracle
	TryAttempt TryAttemptOracle
	Timeout    TimeoutOracle
	Penalty    PenaltyOracle
	Decision   DecisionOracle
	Run        RunOracle
	PassSack   PassSackOracle
	FieldGoal  FieldGoalOracle
	Punt       PuntOracle
}
