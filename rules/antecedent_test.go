package rules

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/furia/dataset"
)

// numericSchema builds (x numeric, class {a, b}).
func numericSchema(t *testing.T) *dataset.Schema {
	t.Helper()
	schema, err := dataset.NewSchema([]*dataset.Attribute{
		dataset.NewNumericAttribute("x"),
		dataset.NewNominalAttribute("class", []string{"a", "b"}),
	}, 1)
	require.NoError(t, err)
	return schema
}

// nominalSchema builds (color {red, green, blue}, class {a, b}).
func nominalSchema(t *testing.T) *dataset.Schema {
	t.Helper()
	schema, err := dataset.NewSchema([]*dataset.Attribute{
		dataset.NewNominalAttribute("color", []string{"red", "green", "blue"}),
		dataset.NewNominalAttribute("class", []string{"a", "b"}),
	}, 1)
	require.NoError(t, err)
	return schema
}

func instancesOf(schema *dataset.Schema, rows ...[]float64) *dataset.Instances {
	d := dataset.NewInstances(schema, len(rows))
	for _, row := range rows {
		d.Add(dataset.NewInstance(schema, row, 1.0))
	}
	return d
}

func TestNumericAntecedentCoversCrisp(t *testing.T) {
	schema := numericSchema(t)
	antd := newNumericAntecedent(schema.Attribute(0))
	antd.Value = SideLow
	antd.SplitPoint = 0.5

	cases := []struct {
		x    float64
		want float64
	}{
		{0.2, 1}, {0.5, 1}, {0.50001, 0}, {0.9, 0},
	}
	for _, c := range cases {
		in := dataset.NewInstance(schema, []float64{c.x, 0}, 1)
		assert.Equal(t, c.want, antd.Covers(in), "x=%v", c.x)
	}

	missing := dataset.NewInstance(schema, []float64{math.NaN(), 0}, 1)
	assert.Equal(t, 0.0, antd.Covers(missing))
}

func TestNumericAntecedentCoversTrapezoid(t *testing.T) {
	schema := numericSchema(t)

	low := newNumericAntecedent(schema.Attribute(0))
	low.Value = SideLow
	low.SplitPoint = 2
	low.SupportBound = 4
	low.FuzzyYet = true

	assert.Equal(t, 1.0, low.Covers(dataset.NewInstance(schema, []float64{2, 0}, 1)))
	assert.InDelta(t, 0.5, low.Covers(dataset.NewInstance(schema, []float64{3, 0}, 1)), 1e-12)
	assert.Equal(t, 0.0, low.Covers(dataset.NewInstance(schema, []float64{4, 0}, 1)))

	high := newNumericAntecedent(schema.Attribute(0))
	high.Value = SideHigh
	high.SplitPoint = 4
	high.SupportBound = 2
	high.FuzzyYet = true

	assert.Equal(t, 1.0, high.Covers(dataset.NewInstance(schema, []float64{4, 0}, 1)))
	assert.InDelta(t, 0.75, high.Covers(dataset.NewInstance(schema, []float64{3.5, 0}, 1)), 1e-12)
	assert.Equal(t, 0.0, high.Covers(dataset.NewInstance(schema, []float64{2, 0}, 1)))
	assert.Equal(t, 0.0, high.Covers(dataset.NewInstance(schema, []float64{1, 0}, 1)))
}

func TestNumericSplitDataFindsBoundary(t *testing.T) {
	schema := numericSchema(t)
	data := instancesOf(schema,
		[]float64{3, 1},
		[]float64{1, 0},
		[]float64{4, 1},
		[]float64{2, 0},
	)

	antd := newNumericAntecedent(schema.Attribute(0))
	defAccRt := (2.0 + 1) / (4.0 + 1)
	bags := antd.splitData(data, defAccRt, 0)
	require.NotNil(t, bags)

	assert.Equal(t, SideLow, antd.Value)
	assert.Equal(t, 2.0, antd.SplitPoint)
	assert.InDelta(t, 2.0, antd.Accu(), 1e-12)
	assert.InDelta(t, 2.0, antd.Cover(), 1e-12)
	assert.InDelta(t, 1.0, antd.AccuRate(), 1e-12)
	assert.True(t, antd.MaxInfoGain() > 0)

	// The winning bag holds the two class-a instances.
	win := bags[int(antd.Value)]
	require.Equal(t, 2, win.Len())
	assert.Equal(t, 1.0, win.Instance(0).Value(0))
	assert.Equal(t, 2.0, win.Instance(1).Value(0))
}

func TestNumericSplitDataAllMissing(t *testing.T) {
	schema := numericSchema(t)
	data := instancesOf(schema,
		[]float64{math.NaN(), 0},
		[]float64{math.NaN(), 1},
	)

	antd := newNumericAntecedent(schema.Attribute(0))
	assert.Nil(t, antd.splitData(data, 0.5, 0))
}

func TestNominalSplitData(t *testing.T) {
	schema := nominalSchema(t)
	data := instancesOf(schema,
		[]float64{0, 0}, // red -> a
		[]float64{0, 0},
		[]float64{1, 1}, // green -> b
		[]float64{1, 0},
		[]float64{2, 1}, // blue -> b
	)

	antd := newNominalAntecedent(schema.Attribute(0))
	defAccRt := (3.0 + 1) / (5.0 + 1)
	bags := antd.splitData(data, defAccRt, 0)

	require.Len(t, bags, 3)
	assert.Equal(t, 0.0, antd.Value, "red bucket is purely class a")
	assert.InDelta(t, 2.0, antd.Accu(), 1e-12)
	assert.Equal(t, 2, bags[0].Len())
	assert.Equal(t, 2, bags[1].Len())
	assert.Equal(t, 1, bags[2].Len())
}

func TestNominalAntecedentCovers(t *testing.T) {
	schema := nominalSchema(t)
	antd := newNominalAntecedent(schema.Attribute(0))
	antd.Value = 1

	assert.Equal(t, 1.0, antd.Covers(dataset.NewInstance(schema, []float64{1, 0}, 1)))
	assert.Equal(t, 0.0, antd.Covers(dataset.NewInstance(schema, []float64{2, 0}, 1)))
	assert.Equal(t, 0.0, antd.Covers(dataset.NewInstance(schema, []float64{math.NaN(), 0}, 1)))
}

func TestAntecedentString(t *testing.T) {
	schema := numericSchema(t)

	low := newNumericAntecedent(schema.Attribute(0))
	low.Value = SideLow
	low.SplitPoint = 0.5
	assert.Equal(t, "x in [-inf, 0.5]", low.String())

	low.SupportBound = 0.75
	low.FuzzyYet = true
	assert.Equal(t, "x in [-inf, -inf, 0.5, 0.75]", low.String())

	high := newNumericAntecedent(schema.Attribute(0))
	high.Value = SideHigh
	high.SplitPoint = 0.5
	high.SupportBound = 0.25
	high.FuzzyYet = true
	assert.Equal(t, "x in [0.25, 0.5, inf, inf]", high.String())

	nominal := newNominalAntecedent(nominalSchema(t).Attribute(0))
	nominal.Value = 2
	assert.Equal(t, "color = blue", nominal.String())
}
