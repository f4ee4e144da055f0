package rules

import (
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/furia/dataset"
	"github.com/YuminosukeSato/furia/pkg/errors"
)

// membershipSamples is the number of points each membership curve is
// sampled at.
const membershipSamples = 200

// MembershipPlot renders the membership functions of a rule's numeric
// antecedents over the interval [lo, hi] and writes the image to path
// (format chosen by extension, e.g. .png or .pdf).
func MembershipPlot(rule *Rule, classAttr *dataset.Attribute, lo, hi float64, path string) error {
	if !(hi > lo) {
		return errors.NewValueError("rules.MembershipPlot", "interval must satisfy lo < hi")
	}

	p := plot.New()
	p.Title.Text = rule.StringWithClass(classAttr)
	p.X.Label.Text = "attribute value"
	p.Y.Label.Text = "membership"
	p.Y.Min, p.Y.Max = 0, 1.05

	plotted := 0
	for _, antd := range rule.Antds {
		if antd.Kind != NumericAntecedent {
			continue
		}
		pts := make(plotter.XYs, membershipSamples+1)
		step := (hi - lo) / membershipSamples
		for i := range pts {
			x := lo + float64(i)*step
			pts[i].X = x
			pts[i].Y = membershipAt(antd, x)
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return errors.Wrap(err, "rules.MembershipPlot")
		}
		line.Color = plotutil.Color(plotted)
		p.Add(line)
		p.Legend.Add(antd.String(), line)
		plotted++
	}
	if plotted == 0 {
		return errors.NewValueError("rules.MembershipPlot", "rule has no numeric antecedents")
	}

	if err := p.Save(6*vg.Inch, 3*vg.Inch, path); err != nil {
		return errors.Wrap(err, "rules.MembershipPlot")
	}
	return nil
}

// membershipAt evaluates a numeric antecedent's trapezoid at x without
// building an instance.
func membershipAt(a *Antecedent, x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	if a.Value == SideLow {
		switch {
		case x <= a.SplitPoint:
			return 1
		case a.FuzzyYet && x < a.SupportBound:
			return 1 - (x-a.SplitPoint)/(a.SupportBound-a.SplitPoint)
		}
		return 0
	}
	switch {
	case x >= a.SplitPoint:
		return 1
	case a.FuzzyYet && x > a.SupportBound:
		return 1 - (a.SplitPoint-x)/(a.SplitPoint-a.SupportBound)
	}
	return 0
}
