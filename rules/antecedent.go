// Package rules implements the FURIA fuzzy unordered rule induction
// classifier: RIPPER-style per-class rule learning with MDL-guided
// stopping and optimization, fuzzification of numeric antecedents into
// trapezoids by purity maximization, m-estimate rule confidences, and
// T-norm inference with rule stretching for uncovered instances.
package rules

import (
	"fmt"
	"math"
	"strconv"

	"github.com/YuminosukeSato/furia/dataset"
)

// AntecedentKind tags the two antecedent shapes.
type AntecedentKind int

const (
	// NumericAntecedent tests one side of a split point on a numeric
	// attribute, optionally softened into a trapezoid.
	NumericAntecedent AntecedentKind = iota
	// NominalAntecedent tests equality with one nominal value.
	NominalAntecedent
)

// Sides of a numeric antecedent, stored in Antecedent.Value.
const (
	// SideLow covers values at or below the split point.
	SideLow = 0.0
	// SideHigh covers values at or above the split point.
	SideHigh = 1.0
)

// Antecedent is a single test within a rule. The two kinds share the
// statistics gathered while growing and the confidence assigned to the
// rule prefix that ends here.
type Antecedent struct {
	Attr *dataset.Attribute
	Kind AntecedentKind

	// Value is the winning bag index from splitData: the side
	// (SideLow/SideHigh) for numeric antecedents, the nominal value
	// index otherwise.
	Value float64

	// Numeric only: the crisp boundary and the fuzzy support bound.
	// FuzzyYet is set once a meaningful support bound was assigned.
	SplitPoint   float64
	SupportBound float64
	FuzzyYet     bool

	// Confidence of the rule prefix ending at this antecedent,
	// assigned by Rule.calculateConfidences.
	Confidence float64

	// Growing statistics.
	maxInfoGain float64
	accuRate    float64
	cover       float64
	accu        float64
}

func newNumericAntecedent(att *dataset.Attribute) *Antecedent {
	return &Antecedent{
		Attr:         att,
		Kind:         NumericAntecedent,
		Value:        math.NaN(),
		SplitPoint:   math.NaN(),
		SupportBound: math.NaN(),
		accuRate:     math.NaN(),
		cover:        math.NaN(),
		accu:         math.NaN(),
	}
}

func newNominalAntecedent(att *dataset.Attribute) *Antecedent {
	return &Antecedent{
		Attr:     att,
		Kind:     NominalAntecedent,
		Value:    math.NaN(),
		accuRate: math.NaN(),
		cover:    math.NaN(),
		accu:     math.NaN(),
	}
}

func newAntecedent(att *dataset.Attribute) *Antecedent {
	if att.IsNumeric() {
		return newNumericAntecedent(att)
	}
	return newNominalAntecedent(att)
}

func (a *Antecedent) copy() *Antecedent {
	c := *a
	return &c
}

// MaxInfoGain returns the best information gain found while growing.
func (a *Antecedent) MaxInfoGain() float64 { return a.maxInfoGain }

// AccuRate returns the Laplace-smoothed accuracy of the winning bag.
func (a *Antecedent) AccuRate() float64 { return a.accuRate }

// Accu returns the accurately covered weight of the winning bag.
func (a *Antecedent) Accu() float64 { return a.accu }

// Cover returns the covered weight of the winning bag.
func (a *Antecedent) Cover() float64 { return a.cover }

// Covers returns the membership degree of the instance in [0, 1].
// Missing values never match.
func (a *Antecedent) Covers(in *dataset.Instance) float64 {
	att := a.Attr.Index()
	if in.IsMissing(att) {
		return 0
	}
	v := in.Value(att)
	switch a.Kind {
	case NominalAntecedent:
		if int(v) == int(a.Value) {
			return 1
		}
		return 0
	default:
		if a.Value == SideLow {
			switch {
			case v <= a.SplitPoint:
				return 1
			case a.FuzzyYet && v < a.SupportBound:
				return 1 - (v-a.SplitPoint)/(a.SupportBound-a.SplitPoint)
			}
		} else {
			switch {
			case v >= a.SplitPoint:
				return 1
			case a.FuzzyYet && v > a.SupportBound:
				return 1 - (a.SplitPoint-v)/(a.SplitPoint-a.SupportBound)
			}
		}
		return 0
	}
}

// splitData splits the data into bags for this antecedent's attribute,
// records the statistics of the most informative bag, and returns the
// bags. The winning bag index is left in a.Value.
func (a *Antecedent) splitData(data *dataset.Instances, defAccRt, classY float64) []*dataset.Instances {
	if a.Kind == NominalAntecedent {
		return a.splitNominal(data, defAccRt, classY)
	}
	return a.splitNumeric(data, defAccRt, classY)
}

// splitNumeric scans the candidate split points of a numeric attribute.
// The left bag holds values at or below the candidate, the right bag
// values at or above it (the boundary value group belongs to both,
// mirroring the closed half-spaces Covers tests). Instances missing the
// attribute sort to the end and take part in neither bag. Returns nil
// when the attribute is missing everywhere.
func (a *Antecedent) splitNumeric(data *dataset.Instances, defAccRt, classY float64) []*dataset.Instances {
	att := a.Attr.Index()
	total := data.Len()

	split := 1
	prev := 0
	finalSplit := split
	a.maxInfoGain = 0
	a.Value = 0

	var fstCover, sndCover, fstAccu, sndAccu float64

	data.SortByAttribute(att)
	for x := 0; x < data.Len(); x++ {
		in := data.Instance(x)
		if in.IsMissing(att) {
			total = x
			break
		}
		sndCover += in.Weight()
		if int(in.ClassValue()) == int(classY) {
			sndAccu += in.Weight()
		}
	}
	if total == 0 {
		return nil
	}
	a.SplitPoint = data.Instance(total - 1).Value(att)

	for ; split <= total; split++ {
		if split < total && data.Instance(split).Value(att) <= data.Instance(prev).Value(att) {
			continue
		}

		for y := prev; y < split; y++ {
			in := data.Instance(y)
			fstCover += in.Weight()
			if int(in.ClassValue()) == int(classY) {
				fstAccu += in.Weight()
			}
		}

		fstAccuRate := (fstAccu + 1.0) / (fstCover + 1.0)
		sndAccuRate := (sndAccu + 1.0) / (sndCover + 1.0)
		fstInfoGain := fstAccu * (math.Log2(fstAccuRate) - math.Log2(defAccRt))
		sndInfoGain := sndAccu * (math.Log2(sndAccuRate) - math.Log2(defAccRt))

		var isFirst bool
		var infoGain, accRate, accurate, coverage float64
		if fstInfoGain > sndInfoGain {
			isFirst = true
			infoGain, accRate, accurate, coverage = fstInfoGain, fstAccuRate, fstAccu, fstCover
		} else {
			isFirst = false
			infoGain, accRate, accurate, coverage = sndInfoGain, sndAccuRate, sndAccu, sndCover
		}

		if infoGain > a.maxInfoGain {
			a.SplitPoint = data.Instance(prev).Value(att)
			if isFirst {
				a.Value = SideLow
				finalSplit = split
			} else {
				a.Value = SideHigh
				finalSplit = prev
			}
			a.accuRate = accRate
			a.accu = accurate
			a.cover = coverage
			a.maxInfoGain = infoGain
		}

		for y := prev; y < split; y++ {
			in := data.Instance(y)
			sndCover -= in.Weight()
			if int(in.ClassValue()) == int(classY) {
				sndAccu -= in.Weight()
			}
		}
		prev = split
	}

	return []*dataset.Instances{
		data.Slice(0, finalSplit),
		data.Slice(finalSplit, total-finalSplit),
	}
}

// splitNominal partitions by nominal value and keeps the bag with the
// highest Laplace-smoothed information gain.
func (a *Antecedent) splitNominal(data *dataset.Instances, defAccRt, classY float64) []*dataset.Instances {
	att := a.Attr.Index()
	bag := a.Attr.NumValues()
	bags := make([]*dataset.Instances, bag)
	accurate := make([]float64, bag)
	coverage := make([]float64, bag)
	for x := range bags {
		bags[x] = dataset.NewInstances(data.Schema(), data.Len())
	}

	for x := 0; x < data.Len(); x++ {
		in := data.Instance(x)
		if in.IsMissing(att) {
			continue
		}
		v := int(in.Value(att))
		bags[v].Add(in)
		coverage[v] += in.Weight()
		if int(in.ClassValue()) == int(classY) {
			accurate[v] += in.Weight()
		}
	}

	for x := 0; x < bag; x++ {
		t := coverage[x] + 1.0
		p := accurate[x] + 1.0
		infoGain := accurate[x] * (math.Log2(p/t) - math.Log2(defAccRt))
		if infoGain > a.maxInfoGain {
			a.maxInfoGain = infoGain
			a.cover = coverage[x]
			a.accu = accurate[x]
			a.accuRate = p / t
			a.Value = float64(x)
		}
	}
	return bags
}

// String renders the antecedent as the attribute's fuzzy interval
// (numeric) or nominal equality test.
func (a *Antecedent) String() string {
	if a.Kind == NominalAntecedent {
		return fmt.Sprintf("%s = %s", a.Attr.Name(), a.Attr.Value(int(a.Value)))
	}
	if a.Value == SideLow {
		if a.FuzzyYet {
			return fmt.Sprintf("%s in [-inf, -inf, %s, %s]",
				a.Attr.Name(), fmtValue(a.SplitPoint), fmtValue(a.SupportBound))
		}
		return fmt.Sprintf("%s in [-inf, %s]", a.Attr.Name(), fmtValue(a.SplitPoint))
	}
	if a.FuzzyYet {
		return fmt.Sprintf("%s in [%s, %s, inf, inf]",
			a.Attr.Name(), fmtValue(a.SupportBound), fmtValue(a.SplitPoint))
	}
	return fmt.Sprintf("%s in [%s, inf]", a.Attr.Name(), fmtValue(a.SplitPoint))
}

// fmtValue prints a boundary rounded to six decimals without trailing
// zeros.
func fmtValue(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e6)/1e6, 'f', -1, 64)
}
