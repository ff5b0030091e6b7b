package oracle

import (
	"fmt"
	"math"

	"github.com/sjwhitworth/golearn/base"
	"github.com/sjwhitworth/golearn/ensemble"
)

// Classifier produces P(event) from a named feature vector. It is the
// capability every classifier-shaped oracle (DecisionOracle's categorical
// heads, TimeoutOracle's two heads, PassSackOracle's sack head,
// FieldGoalOracle's make head) dispatches through, per the design note on
// oracle dispatch: a capability set per event kind.
type Classifier interface {
	PredictProba(features map[string]float64) float64
}

// RandomForestClassifier wraps a small bagging ensemble of golearn
// ensemble.RandomForest sub-forests, each fit independently over the same
// training artifact (spec §6: "classifier/regressor models = opaque
// serialized GBM ensembles keyed by feature-name strings" — golearn's
// RandomForest is this module's in-pack stand-in for that class of
// artifact). golearn's own RandomForest.Predict only surfaces a single
// majority label per call, not a vote proportion, so PredictProba instead
// polls subForestCount independently-bagged sub-forests and reports the
// share that predict the positive class — a real continuous estimate
// rather than one forest's hard 0/1 call. It is built once at startup and
// never mutated afterward, satisfying the oracle-immutability rule in
// spec §5.
type RandomForestClassifier struct {
	forests      []*ensemble.RandomForest
	template     *base.DenseInstances
	featureOrder []string
}

// subForestCount is odd so the vote share never lands exactly on a coin
// flip from a tie.
const subForestCount = 11

// LoadRandomForestClassifier parses a CSV training artifact (last column
// is the binary label) and fits subForestCount independently-bagged
// random forests over it. Returns a wrapped error on any I/O, parse, or
// fit failure.
func LoadRandomForestClassifier(csvPath string, treeCount, maxFeatures int) (*RandomForestClassifier, error) {
	instances, err := base.ParseCSVToInstances(csvPath, true)
	if err != nil {
		return nil, fmt.Errorf("oracle artifact %s: %w", csvPath, err)
	}
	dense := instances.(*base.DenseInstances)

	forests := make([]*ensemble.RandomForest, subForestCount)
	for i := range forests {
		rf := ensemble.NewRandomForest(treeCount, maxFeatures)
		if err := rf.Fit(dense); err != nil {
			return nil, fmt.Errorf("fitting random forest %d/%d on %s: %w", i+1, subForestCount, csvPath, err)
		}
		forests[i] = rf
	}

	attrs := base.NonClassFloatAttributes(dense)
	order := make([]string, len(attrs))
	for i, a := range attrs {
		order[i] = a.GetName()
	}
	return &RandomForestClassifier{forests: forests, template: dense, featureOrder: order}, nil
}

// PredictProba builds a single-row instance set matching the training
// schema and returns the fraction of sub-forests that predict the
// positive class.
func (c *RandomForestClassifier) PredictProba(features map[string]float64) float64 {
	row := base.NewDenseInstances()
	for _, spec := range base.ResolveAllAttributes(c.template) {
		row.AddAttribute(spec)
	}
	row.Extend(1)
	specs := base.ResolveAttributes(row, c.template.AllAttributes())
	for i, name := range c.featureOrder {
		v := features[name]
		row.Set(specs[i], 0, base.PackFloatToBytes(v))
	}

	votes := 0
	for _, rf := range c.forests {
		preds, err := rf.Predict(row)
		if err != nil {
			continue
		}
		lbl := preds.RowString(0)
		if lbl == "1" || lbl == "1.0" || lbl == "true" {
			votes++
		}
	}
	return float64(votes) / float64(len(c.forests))
}

// FallbackSigmoidClassifier is used wherever no trained artifact is
// configured: a hand-set logistic function over a small set of named
// features, matching the teacher/source's pattern of hard-coded fallback
// probabilities (e.g. p_xp_make defaulting to 0.85) rather than refusing
// to run. It is not a statistically fit model — it exists so the
// simulator can run end-to-end against spec §8's literal scenarios
// without a trained artifact directory configured.
type FallbackSigmoidClassifier struct {
	Weights map[string]float64
	Bias    float64
}

func (c *FallbackSigmoidClassifier) PredictProba(features map[string]float64) float64 {
	z := c.Bias
	for name, w := range c.Weights {
		z += w * features[name]
	}
	return 1.0 / (1.0 + math.Exp(-z))
}
