// Package replay is the outer Monte Carlo batch driver: it fans a
// requested iteration count out across a worker pool, running
// core.RunOneGame independently per replay with its own *rand.Rand, and
// aggregates the signed results into a win/tie/loss probability estimate
// plus an abort rate.
package replay

import (
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lneuendorf/cfbsim/internal/core"
	"github.com/lneuendorf/cfbsim/internal/core/oracle"
)

// BatchConfig configures one batch run.
type BatchConfig struct {
	Iterations int
	Workers    int
}

// Progress is emitted periodically while a batch runs, consumed by the
// websocket hub to stream updates to subscribers.
type Progress struct {
	Completed int
	Aborted   int
	Total     int
}

// Result is the aggregate outcome of a completed batch.
type Result struct {
	Requested   int
	Completed   int
	Aborted     int
	PWin        float64
	PTie        float64
	PLoss       float64
	Elapsed     time.Duration
	AbortCounts map[core.Kind]int
}

// Batch runs cfg.Iterations independent replays of the same matchup
// across a worker pool, seeding each worker's *rand.Rand independently so
// no two workers share PRNG state. oracles is shared read-only across
// every worker, per spec's oracle-immutability rule. progressChan, if
// non-nil, receives best-effort progress updates roughly every 100ms and
// is never blocked on.
func Batch(input core.NewGameStateInput, oracles *oracle.Set, cfg BatchConfig, progressChan chan<- Progress) Result {
	start := time.Now()

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > cfg.Iterations {
		workers = cfg.Iterations
	}
	if workers < 1 {
		workers = 1
	}

	var homeWins, ties, losses, aborted, completed int64
	var abortMu sync.Mutex
	abortCounts := make(map[core.Kind]int)

	jobs := make(chan int, cfg.Iterations)
	for i := 0; i < cfg.Iterations; i++ {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		// each worker owns a private, independently-seeded RNG and a
		// single reusable GameState, so replays never share mutable
		// state across goroutines.
		seed := time.Now().UnixNano() ^ int64(w)<<32
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			g := core.NewGameState(input)
			for range jobs {
				result, err := core.RunOneGame(g, oracles, rng, nil)
				if err != nil {
					atomic.AddInt64(&aborted, 1)
					abortMu.Lock()
					abortCounts[core.KindOf(err)]++
					abortMu.Unlock()
					continue
				}
				switch {
				case result > 0:
					atomic.AddInt64(&homeWins, 1)
				case result < 0:
					atomic.AddInt64(&losses, 1)
				default:
					atomic.AddInt64(&ties, 1)
				}
				atomic.AddInt64(&completed, 1)
			}
		}(seed)
	}

	done := make(chan struct{})
	if progressChan != nil {
		go reportProgress(progressChan, &completed, &aborted, cfg.Iterations, done)
	}

	wg.Wait()
	close(done)

	n := float64(completed)
	var pWin, pTie, pLoss float64
	if n > 0 {
		pWin = float64(homeWins) / n
		pTie = float64(ties) / n
		pLoss = float64(losses) / n
	}

	return Result{
		Requested:   cfg.Iterations,
		Completed:   int(completed),
		Aborted:     int(aborted),
		PWin:        pWin,
		PTie:        pTie,
		PLoss:       pLoss,
		Elapsed:     time.Since(start),
		AbortCounts: abortCounts,
	}
}

func reportProgress(progressChan chan<- Progress, completed, aborted *int64, total int, done <-chan struct{}) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			p := Progress{
				Completed: int(atomic.LoadInt64(completed)),
				Aborted:   int(atomic.LoadInt64(aborted)),
				Total:     total,
			}
			select {
			case progressChan <- p:
			default:
				// never block the workers on a slow consumer.
			}
		}
	}
}
