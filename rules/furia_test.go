package rules

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/furia/core/model"
	"github.com/YuminosukeSato/furia/dataset"
)

// thresholdData builds 100 points x = 0.01..1.00 with class A for
// x <= 0.5 and class B otherwise.
func thresholdData(t *testing.T) *dataset.Instances {
	t.Helper()
	X := mat.NewDense(100, 1, nil)
	y := mat.NewDense(100, 1, nil)
	for i := 0; i < 100; i++ {
		x := float64(i+1) / 100
		X.Set(i, 0, x)
		if x > 0.5 {
			y.Set(i, 0, 1)
		}
	}
	data, err := dataset.FromMatrix(X, y, []string{"A", "B"})
	require.NoError(t, err)
	return data
}

func probeInstance(schema *dataset.Schema, x float64) *dataset.Instance {
	return dataset.NewInstance(schema, []float64{x, math.NaN()}, 1.0)
}

func TestFitAxisAlignedBinary(t *testing.T) {
	data := thresholdData(t)

	clf := NewFURIA()
	require.NoError(t, clf.Fit(data))

	// One single-antecedent rule per class.
	require.Equal(t, 2.0, clf.MeasureNumRules())
	ruleA, ruleB := clf.Ruleset()[0], clf.Ruleset()[1]
	assert.Equal(t, 0.0, ruleA.Consequent)
	assert.Equal(t, 1.0, ruleB.Consequent)
	require.Equal(t, 1, ruleA.Size())
	require.Equal(t, 1, ruleB.Size())

	antdA := ruleA.Antds[0]
	assert.Equal(t, SideLow, antdA.Value)
	assert.InDelta(t, 0.50, antdA.SplitPoint, 1e-9)
	// Fuzzification pushes the support bound to the first value of
	// the other class.
	assert.True(t, antdA.FuzzyYet)
	assert.InDelta(t, 0.51, antdA.SupportBound, 1e-9)

	antdB := ruleB.Antds[0]
	assert.Equal(t, SideHigh, antdB.Value)
	assert.InDelta(t, 0.51, antdB.SplitPoint, 1e-9)
	assert.InDelta(t, 0.50, antdB.SupportBound, 1e-9)

	// On the boundary the A rule fires fully and B not at all.
	dist, err := clf.DistributionForInstance(probeInstance(data.Schema(), 0.5))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, dist[0], 1e-9)

	// Clear points go to their side.
	for _, c := range []struct {
		x    float64
		want int
	}{{0.1, 0}, {0.501, 0}, {0.509, 1}, {0.9, 1}} {
		pred, err := clf.PredictInstance(probeInstance(data.Schema(), c.x))
		require.NoError(t, err)
		assert.Equal(t, c.want, pred, "x=%v", c.x)
	}

	// Inside the fuzzy overlap the distribution is non-degenerate.
	dist, err = clf.DistributionForInstance(probeInstance(data.Schema(), 0.505))
	require.NoError(t, err)
	assert.Greater(t, dist[0], 0.05)
	assert.Less(t, dist[0], 0.95)
	assert.InDelta(t, 1.0, floats.Sum(dist), 1e-9)
}

func TestFitIsDeterministic(t *testing.T) {
	data := thresholdData(t)

	clf1 := NewFURIA(WithSeed(1))
	clf2 := NewFURIA(WithSeed(1))
	require.NoError(t, clf1.Fit(data))
	require.NoError(t, clf2.Fit(data))

	assert.Equal(t, clf1.String(), clf2.String())

	for _, x := range []float64{0.05, 0.42, 0.505, 0.77} {
		d1, err := clf1.DistributionForInstance(probeInstance(data.Schema(), x))
		require.NoError(t, err)
		d2, err := clf2.DistributionForInstance(probeInstance(data.Schema(), x))
		require.NoError(t, err)
		assert.Equal(t, d1, d2)
	}
}

func TestFitNominalXOR(t *testing.T) {
	schema, err := dataset.NewSchema([]*dataset.Attribute{
		dataset.NewNominalAttribute("a", []string{"0", "1"}),
		dataset.NewNominalAttribute("b", []string{"0", "1"}),
		dataset.NewNominalAttribute("class", []string{"f", "t"}),
	}, 2)
	require.NoError(t, err)

	data := dataset.NewInstances(schema, 100)
	for i := 0; i < 100; i++ {
		a := float64(i % 2)
		b := float64((i / 2) % 2)
		class := 0.0
		if a != b {
			class = 1.0
		}
		data.Add(dataset.NewInstance(schema, []float64{a, b, class}, 1.0))
	}

	clf := NewFURIA()
	require.NoError(t, clf.Fit(data))

	// Two conjunctive rules per class, perfect training accuracy.
	assert.Equal(t, 4.0, clf.MeasureNumRules())
	byClass := map[float64]int{}
	for _, rule := range clf.Ruleset() {
		assert.Equal(t, 2, rule.Size())
		byClass[rule.Consequent]++
	}
	assert.Equal(t, 2, byClass[0])
	assert.Equal(t, 2, byClass[1])

	for i := 0; i < data.Len(); i++ {
		pred, err := clf.PredictInstance(data.Instance(i))
		require.NoError(t, err)
		assert.Equal(t, int(data.Instance(i).ClassValue()), pred)
	}
}

func TestEmptyClassGetsNoRules(t *testing.T) {
	X := mat.NewDense(20, 1, nil)
	y := mat.NewDense(20, 1, nil)
	for i := 0; i < 20; i++ {
		X.Set(i, 0, float64(i)/20)
		if i >= 10 {
			y.Set(i, 0, 1)
		}
	}
	data, err := dataset.FromMatrix(X, y, []string{"A", "B", "C"})
	require.NoError(t, err)

	clf := NewFURIA()
	require.NoError(t, clf.Fit(data))

	assert.Equal(t, 0.0, clf.Apriori()[2])
	for _, rule := range clf.Ruleset() {
		assert.NotEqual(t, 2.0, rule.Consequent)
	}

	dist, err := clf.DistributionForInstance(probeInstance(data.Schema(), 0.25))
	require.NoError(t, err)
	assert.Equal(t, 0.0, dist[2])
}

func TestOneClassDatasetHasNoRules(t *testing.T) {
	X := mat.NewDense(10, 1, nil)
	y := mat.NewDense(10, 1, nil)
	for i := 0; i < 10; i++ {
		X.Set(i, 0, float64(i))
	}
	data, err := dataset.FromMatrix(X, y, []string{"only"})
	require.NoError(t, err)

	clf := NewFURIA()
	require.NoError(t, clf.Fit(data))

	assert.Equal(t, 0.0, clf.MeasureNumRules())

	dist, err := clf.DistributionForInstance(probeInstance(data.Schema(), 3))
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, dist)
}

func TestUncoveredInstanceActions(t *testing.T) {
	data := thresholdData(t)
	missing := dataset.NewInstance(data.Schema(), []float64{math.NaN(), math.NaN()}, 1.0)

	reject := NewFURIA(WithUncovAction(UncovActionReject))
	require.NoError(t, reject.Fit(data))
	dist, err := reject.DistributionForInstance(missing)
	require.NoError(t, err)
	assert.Equal(t, 0.0, floats.Sum(dist))

	apriori := NewFURIA(WithUncovAction(UncovActionApriori))
	require.NoError(t, apriori.Fit(data))
	dist, err = apriori.DistributionForInstance(missing)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, dist[0], 1e-12)
	assert.InDelta(t, 0.5, dist[1], 1e-12)

	// The default stretching cannot help either when every antecedent
	// misses, so the apriori fallback applies.
	stretch := NewFURIA()
	require.NoError(t, stretch.Fit(data))
	dist, err = stretch.DistributionForInstance(missing)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, dist[0], 1e-12)
}

// xyModel hand-builds a fitted model over (x, y, class {A, B}) for
// inference-only tests.
func xyModel(t *testing.T, apriori []float64) *FURIA {
	t.Helper()
	schema, err := dataset.NewSchema([]*dataset.Attribute{
		dataset.NewNumericAttribute("x"),
		dataset.NewNumericAttribute("y"),
		dataset.NewNominalAttribute("class", []string{"A", "B"}),
	}, 2)
	require.NoError(t, err)

	f := NewFURIA()
	f.schema = schema
	f.classAttr = schema.ClassAttribute()
	f.apriori = apriori
	f.SetFitted()
	return f
}

func TestRuleStretchingWeight(t *testing.T) {
	f := xyModel(t, []float64{1, 3})

	rule := NewRule(0)
	ax := newNumericAntecedent(f.schema.Attribute(0))
	ax.Value = SideLow
	ax.SplitPoint = 0.5
	ax.Confidence = 0.9
	ay := newNumericAntecedent(f.schema.Attribute(1))
	ay.Value = SideLow
	ay.SplitPoint = 0.5
	ay.Confidence = 0.95
	rule.Antds = []*Antecedent{ax, ay}
	f.ruleset = []*Rule{rule}

	// (0.3, 0.8) is uncovered; stretching drops the y antecedent and
	// votes with (1+1)/(2+2) * 0.9 * 1 = 0.45 for A.
	in := dataset.NewInstance(f.schema, []float64{0.3, 0.8, math.NaN()}, 1.0)

	d := make([]float64, 2)
	f.stretchRules(in, d)
	assert.InDelta(t, 0.45, d[0], 1e-12)
	assert.Equal(t, 0.0, d[1])

	dist, err := f.DistributionForInstance(in)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, dist[0], 1e-9, "output favors A")
}

func TestConflictResolutionBreaksTieTowardApriori(t *testing.T) {
	// Class B's apriori weight equals the tied vote mass, so A gives
	// up 1e-5 and B wins.
	f := xyModel(t, []float64{0.3, 0.5})

	ruleA := NewRule(0)
	aa := newNumericAntecedent(f.schema.Attribute(0))
	aa.Value = SideLow
	aa.SplitPoint = 0.5
	aa.Confidence = 0.5
	ruleA.Antds = []*Antecedent{aa}

	ruleB := NewRule(1)
	ab := newNumericAntecedent(f.schema.Attribute(0))
	ab.Value = SideHigh
	ab.SplitPoint = 0.2
	ab.Confidence = 0.5
	ruleB.Antds = []*Antecedent{ab}

	f.ruleset = []*Rule{ruleA, ruleB}

	in := dataset.NewInstance(f.schema, []float64{0.3, 0.1, math.NaN()}, 1.0)
	pred, err := f.PredictInstance(in)
	require.NoError(t, err)
	assert.Equal(t, 1, pred)

	dist, err := f.DistributionForInstance(in)
	require.NoError(t, err)
	assert.Greater(t, dist[1], dist[0])
	assert.InDelta(t, 1.0, floats.Sum(dist), 1e-9)
}

func TestPredictProbaMatrix(t *testing.T) {
	data := thresholdData(t)
	clf := NewFURIA()
	require.NoError(t, clf.Fit(data))

	X := mat.NewDense(2, 1, []float64{0.1, 0.9})
	proba, err := clf.PredictProba(X)
	require.NoError(t, err)
	r, c := proba.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)
	assert.InDelta(t, 1.0, proba.At(0, 0), 1e-9)
	assert.InDelta(t, 1.0, proba.At(1, 1), 1e-9)

	pred, err := clf.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, 0.0, pred.At(0, 0))
	assert.Equal(t, 1.0, pred.At(1, 0))

	_, err = clf.PredictProba(mat.NewDense(1, 3, nil))
	assert.Error(t, err, "feature count mismatch")
}

func TestFitMatrix(t *testing.T) {
	X := mat.NewDense(20, 1, nil)
	y := mat.NewDense(20, 1, nil)
	for i := 0; i < 20; i++ {
		X.Set(i, 0, float64(i))
		if i >= 10 {
			y.Set(i, 0, 1)
		}
	}

	clf := NewFURIA()
	require.NoError(t, clf.FitMatrix(X, y))
	assert.True(t, clf.IsFitted())

	var _ model.Classifier = clf
}

func TestPredictBeforeFitFails(t *testing.T) {
	clf := NewFURIA()
	schema := numericSchema(t)
	_, err := clf.DistributionForInstance(dataset.NewInstance(schema, []float64{0.5, 0}, 1))
	assert.Error(t, err)
}

func TestFitRejectsBadData(t *testing.T) {
	// Numeric class attribute.
	schema, err := dataset.NewSchema([]*dataset.Attribute{
		dataset.NewNumericAttribute("x"),
		dataset.NewNumericAttribute("target"),
	}, 1)
	require.NoError(t, err)
	bad := dataset.NewInstances(schema, 0)
	for i := 0; i < 5; i++ {
		bad.Add(dataset.NewInstance(schema, []float64{float64(i), 0}, 1))
	}
	assert.Error(t, NewFURIA().Fit(bad))

	// Fewer instances than folds.
	tiny := dataset.NewInstances(numericSchema(t), 0)
	tiny.Add(dataset.NewInstance(tiny.Schema(), []float64{0.1, 0}, 1))
	tiny.Add(dataset.NewInstance(tiny.Schema(), []float64{0.9, 1}, 1))
	assert.Error(t, NewFURIA().Fit(tiny))

	// Illegal option values.
	assert.Error(t, NewFURIA(WithFolds(1)).Fit(thresholdData(t)))
	assert.Error(t, NewFURIA(WithMinNo(0)).Fit(thresholdData(t)))
	assert.Error(t, NewFURIA(WithOptimizations(-1)).Fit(thresholdData(t)))
}

func TestGetMeasure(t *testing.T) {
	data := thresholdData(t)
	clf := NewFURIA()
	require.NoError(t, clf.Fit(data))

	n, err := clf.GetMeasure("measureNumRules")
	require.NoError(t, err)
	assert.Equal(t, 2.0, n)

	_, err = clf.GetMeasure("measureSomethingElse")
	assert.Error(t, err)
}

func TestStringRendersRules(t *testing.T) {
	clf := NewFURIA()
	assert.Equal(t, "FURIA: No model built yet.", clf.String())

	require.NoError(t, clf.Fit(thresholdData(t)))
	s := clf.String()
	assert.Contains(t, s, "FURIA rules:")
	assert.Contains(t, s, "(CF = ")
	assert.Contains(t, s, "=> class=A")
	assert.Contains(t, s, "=> class=B")
	assert.Contains(t, s, "Number of Rules : 2")
}

func TestCapabilities(t *testing.T) {
	clf := NewFURIA(WithFolds(5))
	caps := clf.Capabilities()
	assert.True(t, caps.NominalAttributes)
	assert.True(t, caps.NumericAttributes)
	assert.True(t, caps.MissingValues)
	assert.True(t, caps.NominalClass)
	assert.Equal(t, 5, caps.MinimumInstances)
}

func TestRulesetGobRoundTrip(t *testing.T) {
	data := thresholdData(t)
	clf := NewFURIA()
	require.NoError(t, clf.Fit(data))

	path := filepath.Join(t.TempDir(), "ruleset.gob")
	require.NoError(t, model.SaveModel(clf.Ruleset(), path))

	var restored []*Rule
	require.NoError(t, model.LoadModel(&restored, path))

	require.Len(t, restored, len(clf.Ruleset()))
	for i, rule := range clf.Ruleset() {
		assert.Equal(t, rule.Consequent, restored[i].Consequent)
		assert.Equal(t, rule.StringWithClass(data.Schema().ClassAttribute()),
			restored[i].StringWithClass(data.Schema().ClassAttribute()))
		assert.Equal(t, rule.Confidence(), restored[i].Confidence())
	}
}

func TestMembershipPlotWritesFile(t *testing.T) {
	data := thresholdData(t)
	clf := NewFURIA()
	require.NoError(t, clf.Fit(data))

	path := filepath.Join(t.TempDir(), "rule.png")
	require.NoError(t, MembershipPlot(clf.Ruleset()[0], data.Schema().ClassAttribute(), 0, 1, path))

	nominalOnly := NewRule(0)
	err := MembershipPlot(nominalOnly, data.Schema().ClassAttribute(), 0, 1, path)
	assert.Error(t, err)
}
