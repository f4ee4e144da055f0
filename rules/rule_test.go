package rules

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/furia/dataset"
)

// xySchema builds (x numeric, y numeric, class {A, B}).
func xySchema(t *testing.T) *dataset.Schema {
	t.Helper()
	schema, err := dataset.NewSchema([]*dataset.Attribute{
		dataset.NewNumericAttribute("x"),
		dataset.NewNumericAttribute("y"),
		dataset.NewNominalAttribute("class", []string{"A", "B"}),
	}, 2)
	require.NoError(t, err)
	return schema
}

// separableData builds ten points on one axis: x <= 0.5 is class a,
// the rest class b.
func separableData(t *testing.T) *dataset.Instances {
	t.Helper()
	schema := numericSchema(t)
	d := dataset.NewInstances(schema, 10)
	for i := 1; i <= 10; i++ {
		class := 0.0
		if i > 5 {
			class = 1.0
		}
		d.Add(dataset.NewInstance(schema, []float64{float64(i) / 10, class}, 1.0))
	}
	return d
}

func TestGrowSingleThresholdRule(t *testing.T) {
	data := separableData(t)

	rule := NewRule(0)
	rule.grow(data, 2.0)

	require.Equal(t, 1, rule.Size())
	antd := rule.Antds[0]
	assert.Equal(t, SideLow, antd.Value)
	assert.InDelta(t, 0.5, antd.SplitPoint, 1e-12)
	assert.InDelta(t, 1.0, antd.AccuRate(), 1e-12)

	ruleB := NewRule(1)
	ruleB.grow(data, 2.0)
	require.Equal(t, 1, ruleB.Size())
	assert.Equal(t, SideHigh, ruleB.Antds[0].Value)
	assert.InDelta(t, 0.6, ruleB.Antds[0].SplitPoint, 1e-12)
}

func TestGrowRespectsMinNo(t *testing.T) {
	data := separableData(t)

	// A minimum covered-positive weight above the class size blocks
	// every candidate.
	rule := NewRule(0)
	rule.grow(data, 50.0)
	assert.Equal(t, 0, rule.Size())
}

func TestGrowOnEmptyDataIsNoop(t *testing.T) {
	schema := numericSchema(t)
	rule := NewRule(0)
	rule.grow(dataset.NewInstances(schema, 0), 2.0)
	assert.Equal(t, 0, rule.Size())
}

func TestPruneTruncatesHarmfulTail(t *testing.T) {
	schema := xySchema(t)
	prune := instancesOf(schema,
		[]float64{0.3, 0.9, 0},
		[]float64{0.4, 0.8, 0},
		[]float64{0.2, 0.7, 0},
		[]float64{0.8, 0.1, 1},
		[]float64{0.9, 0.2, 1},
		[]float64{0.3, 0.1, 1},
	)

	rule := NewRule(0)
	first := newNumericAntecedent(schema.Attribute(0))
	first.Value = SideLow
	first.SplitPoint = 0.5
	second := newNumericAntecedent(schema.Attribute(1))
	second.Value = SideLow
	second.SplitPoint = 0.5
	rule.Antds = []*Antecedent{first, second}

	// Prefix (x <= 0.5) scores (3+1)/(4+2); the full rule only covers
	// one negative and scores (0+1)/(1+2). The tail goes.
	rule.prune(prune, false)
	require.Equal(t, 1, rule.Size())
	assert.Same(t, first, rule.Antds[0])
}

func TestPruneKeepsImprovingRule(t *testing.T) {
	data := separableData(t)

	rule := NewRule(0)
	antd := newNumericAntecedent(data.Schema().Attribute(0))
	antd.Value = SideLow
	antd.SplitPoint = 0.5
	rule.Antds = []*Antecedent{antd}

	rule.prune(data, true)
	assert.Equal(t, 1, rule.Size())
}

func TestFuzzifyAssignsOuterSupportBound(t *testing.T) {
	data := separableData(t)

	rule := NewRule(0)
	antd := newNumericAntecedent(data.Schema().Attribute(0))
	antd.Value = SideLow
	antd.SplitPoint = 0.5
	rule.Antds = []*Antecedent{antd}

	rule.fuzzify(data, true)

	// The first value on the uncovered side keeps the purity at one.
	assert.True(t, antd.FuzzyYet)
	assert.InDelta(t, 0.6, antd.SupportBound, 1e-12)
	// Membership decays linearly inside the support.
	in := dataset.NewInstance(data.Schema(), []float64{0.55, 0}, 1)
	assert.InDelta(t, 0.5, antd.Covers(in), 1e-12)
}

func TestFuzzifySkipsNominalOnlyRules(t *testing.T) {
	schema := nominalSchema(t)
	data := instancesOf(schema,
		[]float64{0, 0},
		[]float64{1, 1},
	)

	rule := NewRule(0)
	antd := newNominalAntecedent(schema.Attribute(0))
	antd.Value = 0
	rule.Antds = []*Antecedent{antd}

	rule.fuzzify(data, true)
	assert.False(t, rule.Antds[0].FuzzyYet)
}

func TestCalculateConfidences(t *testing.T) {
	data := separableData(t)

	rule := NewRule(0)
	antd := newNumericAntecedent(data.Schema().Attribute(0))
	antd.Value = SideLow
	antd.SplitPoint = 0.5
	rule.Antds = []*Antecedent{antd}

	apriori := []float64{5, 5}
	rule.calculateConfidences(data, apriori, TNormProduct)

	// m-estimate with m=2: (5 + 2*0.5) / (5 + 2).
	assert.InDelta(t, 6.0/7.0, rule.Confidence(), 1e-12)
}

func TestConfidenceOfEmptyRuleIsNaN(t *testing.T) {
	rule := NewRule(0)
	assert.True(t, math.IsNaN(rule.Confidence()))
}

func TestMembershipTNorms(t *testing.T) {
	schema := xySchema(t)

	rule := NewRule(0)
	for att, support := range map[int]float64{0: 1.0, 1: 2.0} {
		a := newNumericAntecedent(schema.Attribute(att))
		a.Value = SideLow
		a.SplitPoint = 0.5
		a.SupportBound = support
		a.FuzzyYet = true
		rule.Antds = append(rule.Antds, a)
	}

	// Memberships: x=0.75 -> 0.5 on antd 0, y=0.875 -> 0.75 on antd 1.
	in := dataset.NewInstance(schema, []float64{0.75, 0.875, 0}, 1)
	assert.InDelta(t, 0.375, rule.Membership(in, TNormProduct), 1e-12)
	assert.InDelta(t, 0.5, rule.Membership(in, TNormMin), 1e-12)
	assert.True(t, rule.Covers(in))

	// Zero on one antecedent zeroes both T-norms.
	out := dataset.NewInstance(schema, []float64{1.5, 0.1, 0}, 1)
	assert.Equal(t, 0.0, rule.Membership(out, TNormProduct))
	assert.Equal(t, 0.0, rule.Membership(out, TNormMin))
	assert.False(t, rule.Covers(out))
}

func TestRuleString(t *testing.T) {
	schema := xySchema(t)

	rule := NewRule(1)
	a := newNumericAntecedent(schema.Attribute(0))
	a.Value = SideHigh
	a.SplitPoint = 0.5
	rule.Antds = []*Antecedent{a}

	assert.Equal(t, "(x in [0.5, inf]) => class=B", rule.StringWithClass(schema.ClassAttribute()))
	assert.Equal(t, " => class=B", NewRule(1).StringWithClass(schema.ClassAttribute()))
}
