package core

import (
	"math/rand"

	"github.com/lneuendorf/cfbsim/internal/core/oracle"
)

// RunOneGame is the single entry point the outer Monte Carlo driver
// invokes per replay (spec §6). It resets g to its pregame snapshot
// before running, so a single GameState value may be reused across many
// replays by the same goroutine without reallocating.
func RunOneGame(g *GameState, oracles *oracle.Set, rng *rand.Rand, cancel func() bool) (int, error) {
	g.ResetToInitial()
	loop := NewGameLoop(oracles)
	return loop.Run(g, rng, cancel)
}
