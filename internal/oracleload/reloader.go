// Package oracleload periodically refreshes the trained classifier
// artifacts backing the oracle set, grounded on the teacher's
// cron-scheduled refresh pattern in
// backend/internal/services/data_fetcher.go (DataFetcherService: a
// *cron.Cron, one AddFunc per recurring job, Start/Stop around it).
package oracleload

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/lneuendorf/cfbsim/internal/core/oracle"
)

const (
	defaultTreeCount   = 100
	defaultMaxFeatures = 4
)

// Reloader holds the live oracle.Set behind an atomically-swappable
// pointer. With artifactDir=="" Reload is a no-op and the initial set
// keeps serving; otherwise Reload is a no-op until that directory
// actually exists.
type Reloader struct {
	artifactDir string
	logger      *logrus.Entry
	current     atomic.Pointer[oracle.Set]
}

// NewReloader wraps initial (typically oracle.NewDefaultSet()) behind the
// reloadable pointer Current() reads from.
func NewReloader(artifactDir string, initial *oracle.Set, logger *logrus.Entry) *Reloader {
	r := &Reloader{artifactDir: artifactDir, logger: logger}
	r.current.Store(initial)
	return r
}

// Current returns the live oracle.Set. Safe to call concurrently with
// Reload — every replay batch should call this once per batch rather than
// caching the result, so a reload mid-batch doesn't affect replays already
// in flight but new batches pick it up.
func (r *Reloader) Current() *oracle.Set {
	return r.current.Load()
}

// Reload re-parses every classifier artifact CSV present in artifactDir
// and atomically swaps a fresh Set into Current(). Only the decision,
// timeout, sack, and field-goal-make classifiers are reloaded; every other
// oracle (kickoff and try attempt, including their onside and attempt
// classifiers, plus run, penalty, and punt) is carried over from the live
// set unchanged. A
// missing artifact directory, or one missing some of the per-model CSVs,
// is not an error — whatever isn't found simply keeps serving its current
// classifier.
func (r *Reloader) Reload() error {
	if r.artifactDir == "" {
		return nil
	}
	if _, err := os.Stat(r.artifactDir); err != nil {
		r.logger.WithField("artifact_dir", r.artifactDir).Debug("oracle artifact directory not present, keeping current oracle set")
		return nil
	}

	next := *r.current.Load() // shallow copy: same non-classifier oracles, new classifier holders below
	slots, err := classifierSlots(&next)
	if err != nil {
		return err
	}

	loaded := 0
	for _, slot := range slots {
		path := filepath.Join(r.artifactDir, slot.file)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		c, err := oracle.LoadRandomForestClassifier(path, defaultTreeCount, defaultMaxFeatures)
		if err != nil {
			return fmt.Errorf("loading oracle artifact %s: %w", path, err)
		}
		*slot.target = c
		loaded++
	}

	r.current.Store(&next)
	r.logger.WithFields(logrus.Fields{
		"artifact_dir":       r.artifactDir,
		"classifiers_loaded": loaded,
	}).Info("reloaded oracle artifacts")
	return nil
}

type classifierSlot struct {
	file   string
	target *oracle.Classifier
}

// classifierSlots enumerates every trainable classifier in set alongside
// the artifact filename convention it loads from. Returns an error if set
// was not built from the Default* oracle implementations, since those are
// the only ones with a swappable Classifier field.
func classifierSlots(set *oracle.Set) ([]classifierSlot, error) {
	d, ok := set.Decision.(*oracle.DefaultDecisionOracle)
	if !ok {
		return nil, fmt.Errorf("oracleload: Decision oracle is not *DefaultDecisionOracle, cannot reload its classifiers")
	}
	t, ok := set.Timeout.(*oracle.DefaultTimeoutOracle)
	if !ok {
		return nil, fmt.Errorf("oracleload: Timeout oracle is not *DefaultTimeoutOracle, cannot reload its classifiers")
	}
	s, ok := set.PassSack.(*oracle.DefaultPassSackOracle)
	if !ok {
		return nil, fmt.Errorf("oracleload: PassSack oracle is not *DefaultPassSackOracle, cannot reload its classifier")
	}
	fg, ok := set.FieldGoal.(*oracle.DefaultFieldGoalOracle)
	if !ok {
		return nil, fmt.Errorf("oracleload: FieldGoal oracle is not *DefaultFieldGoalOracle, cannot reload its classifier")
	}
	// copy each oracle into set so the slots below never write into the
	// oracles the previously published set still shares.
	dc, tc, sc, fgc := *d, *t, *s, *fg
	d, t, s, fg = &dc, &tc, &sc, &fgc
	set.Decision, set.Timeout, set.PassSack, set.FieldGoal = d, t, s, fg

	return []classifierSlot{
		{"decision_pass.csv", &d.PassScore},
		{"decision_run.csv", &d.RunScore},
		{"decision_field_goal.csv", &d.FieldGoalScore},
		{"decision_qb_kneel.csv", &d.QBKneelScore},
		{"decision_go.csv", &d.GoScore},
		{"decision_fg.csv", &d.FGScore},
		{"decision_punt.csv", &d.PuntScore},
		{"decision_go_run.csv", &d.GoRunScore},
		{"decision_go_pass.csv", &d.GoPassScore},
		{"timeout_offense.csv", &t.OffenseClassifier},
		{"timeout_defense.csv", &t.DefenseClassifier},
		{"sack.csv", &s.SackClassifier},
		{"field_goal_make.csv", &fg.MakeClassifier},
	}, nil
}

// Start schedules periodic reloads on schedule (a standard cron
// expression, e.g. "0 */6 * * *" for every six hours) and returns the
// running *cron.Cron so the caller can Stop it at shutdown. A reload
// failure is logged, not fatal — the previously-loaded Set keeps serving
// traffic.
func Start(r *Reloader, schedule string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		if err := r.Reload(); err != nil {
			r.logger.WithError(err).Warn("oracle artifact reload failed, keeping previous oracle set")
		}
	}); err != nil {
		return nil, fmt.Errorf("scheduling oracle artifact reload: %w", err)
	}
	c.Start()
	return c, nil
}
