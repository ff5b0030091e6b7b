package core

import "math"

// GameState is the sole authority for derived quantities. All fields are
// unexported; the typed mutators below are the only mutation surface, and
// every mutator leaves derived quantities consistent because those
// quantities are never stored — they are recomputed from primitive fields
// on every read.
type GameState struct {
	possession       Possession
	home             TeamState
	away             TeamState
	secondsRemaining int
	down             int
	distance         int
	yardsToGoal      int
	weather          Weather
	elevationFt      float64
	neutralSite      bool
	clockRolling     bool
	numPlaysOnDrive  int
	prevAction       Action
	nextAction       Action

	initial Snapshot
}

// NewGameStateInput carries the pregame inputs accepted by the initial
// state constructor (spec §6: entry-point initial-state contract).
type NewGameStateInput struct {
	HomeElo, AwayElo                 float64
	HomeTimeouts, AwayTimeouts       int // 0 means "use the default of 3"
	HomeDivision, AwayDivision       Division
	HomeIsPowerFive, AwayIsPowerFive bool
	HomePriors, AwayPriors           TeamPriors
	Weather                          Weather
	ElevationFt                      float64
	NeutralSite                      bool
}

// NewGameState builds the pregame GameState: scores default to 0, timeouts
// default to 3 each (or whatever HomeTimeouts/AwayTimeouts request),
// seconds_remaining=3600, possession=none, down/distance/yards_to_goal=none,
// clock_rolling=false.
func NewGameState(in NewGameStateInput) *GameState {
	home := TeamState{
		EloRating:   in.HomeElo,
		Timeouts:    defaultTimeouts(in.HomeTimeouts),
		Division:    in.HomeDivision,
		IsPowerFive: in.HomeIsPowerFive,
		Priors:      in.HomePriors,
	}
	away := TeamState{
		EloRating:   in.AwayElo,
		Timeouts:    defaultTimeouts(in.AwayTimeouts),
		Division:    in.AwayDivision,
		IsPowerFive: in.AwayIsPowerFive,
		Priors:      in.AwayPriors,
	}
	gs := &GameState{
		possession:       PossessionNone,
		home:             home,
		away:             away,
		secondsRemaining: 3600,
		down:             noDown,
		distance:         noDistance,
		yardsToGoal:      noYardsToGoal,
		weather:          in.Weather,
		elevationFt:      in.ElevationFt,
		neutralSite:      in.NeutralSite,
		clockRolling:     false,
		numPlaysOnDrive:  0,
		prevAction:       ActionNone,
		nextAction:       ActionKickoff,
	}
	gs.initial = gs.snapshot()
	return gs
}

func defaultTimeouts(n int) int {
	if n <= 0 {
		return 3
	}
	return n
}

func (g *GameState) snapshot() Snapshot {
	return Snapshot{
		Possession:       g.possession,
		Home:             g.home,
		Away:             g.away,
		SecondsRemaining: g.secondsRemaining,
		Down:             g.down,
		Distance:         g.distance,
		YardsToGoal:      g.yardsToGoal,
		Weather:          g.weather,
		ElevationFt:      g.elevationFt,
		NeutralSite:      g.neutralSite,
		ClockRolling:     g.clockRolling,
		NumPlaysOnDrive:  g.numPlaysOnDrive,
		PrevAction:       g.prevAction,
		NextAction:       g.nextAction,
	}
}

// Snapshot returns the current state as a diagnostic value, for attaching
// to fatal errors.
func (g *GameState) Snapshot() *Snapshot {
	s := g.snapshot()
	return &s
}

// ResetToInitial restores the state captured at construction time,
// overwriting in place to avoid allocation churn across replays (design
// note: value-copy snapshot at construction, reset() overwrites in place).
func (g *GameState) ResetToInitial() {
	s := g.initial
	g.possession = s.Possession
	g.home = s.Home
	g.away = s.Away
	g.secondsRemaining = s.SecondsRemaining
	g.down = s.Down
	g.distance = s.Distance
	g.yardsToGoal = s.YardsToGoal
	g.weather = s.Weather
	g.elevationFt = s.ElevationFt
	g.neutralSite = s.NeutralSite
	g.clockRolling = s.ClockRolling
	g.numPlaysOnDrive = s.NumPlaysOnDrive
	g.prevAction = s.PrevAction
	g.nextAction = s.NextAction
}

// --- plain accessors ---

func (g *GameState) Possession() Possession      { return g.possession }
func (g *GameState) SecondsRemaining() int       { return g.secondsRemaining }
func (g *GameState) Down() int                   { return g.down }
func (g *GameState) HasDown() bool               { return g.down != noDown }
func (g *GameState) Distance() int               { return g.distance }
func (g *GameState) HasDistance() bool           { return g.distance != noDistance }
func (g *GameState) YardsToGoal() int            { return g.yardsToGoal }
func (g *GameState) HasYardsToGoal() bool        { return g.yardsToGoal != noYardsToGoal }
func (g *GameState) Weather() Weather            { return g.weather }
func (g *GameState) ElevationFt() float64        { return g.elevationFt }
func (g *GameState) NeutralSite() bool           { return g.neutralSite }
func (g *GameState) ClockRolling() bool          { return g.clockRolling }
func (g *GameState) NumPlaysOnDrive() int        { return g.numPlaysOnDrive }
func (g *GameState) PrevAction() Action          { return g.prevAction }
func (g *GameState) NextAction() Action          { return g.nextAction }
func (g *GameState) Home() TeamState             { return g.home }
func (g *GameState) Away() TeamState             { return g.away }

// --- possession-relative accessors (design note: polymorphic offense/
// defense pair accessor replacing ternaries) ---

// Offense returns the team currently on offense. Valid only when
// possession is Home or Away.
func (g *GameState) Offense() TeamState {
	if g.possession == PossessionHome {
		return g.home
	}
	return g.away
}

// Defense returns the team currently on defense.
func (g *GameState) Defense() TeamState {
	if g.possession == PossessionHome {
		return g.away
	}
	return g.home
}

// OffenseHomeFlag reports the 3-valued home/away/neutral feature the
// original model's get_offense_is_home computes: 0 at a neutral site
// (checked first, so it overrides possession), else 1 if the offense is
// the home team, else -1. Neutral site takes priority over possession
// here because the timeout-oracle feature this feeds is meant to capture
// home-field advantage, which a neutral site erases regardless of which
// team nominally holds the ball.
func (g *GameState) OffenseHomeFlag() int {
	switch {
	case g.neutralSite:
		return 0
	case g.possession == PossessionHome:
		return 1
	default:
		return -1
	}
}

// --- derived quantities: pure functions over primitive fields, recomputed
// on every call so they can never go stale relative to a mutation. ---

func (g *GameState) ScoreDiff() int {
	return g.Offense().Score - g.Defense().Score
}

func (g *GameState) PctGamePlayed() float64 {
	return float64(3600-g.secondsRemaining) / 3600.0
}

func (g *GameState) DiffTimeRatio() float64 {
	return float64(g.ScoreDiff()) * math.Exp(4*g.PctGamePlayed())
}

func (g *GameState) EloDiff() float64 {
	return g.Offense().EloRating - g.Defense().EloRating
}

func (g *GameState) IsRedzone() bool {
	return g.HasYardsToGoal() && g.yardsToGoal <= 20
}

func (g *GameState) IsGoalToGo() bool {
	return g.HasYardsToGoal() && g.HasDistance() && g.yardsToGoal <= g.distance
}

func (g *GameState) IsTwoMinuteDrill() bool {
	s := g.secondsRemaining
	return s <= 120 || (s >= 1800 && s <= 1920)
}

func (g *GameState) IsFinalMinuteOfHalf() bool {
	s := g.secondsRemaining
	return s <= 60 || (s >= 1800 && s <= 1860)
}
