package rules

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/furia/dataset"
	"github.com/YuminosukeSato/furia/pkg/errors"
)

// DistributionForInstance classifies one instance and returns the
// class distribution: the T-norm-weighted confidence votes of the
// covering rules, falling back to rule stretching (or the configured
// action) when nothing covers, with deterministic conflict resolution
// and apriori fallback. The result sums to one, or is all-zero when
// the reject action abstains. The model is never mutated.
func (f *FURIA) DistributionForInstance(in *dataset.Instance) ([]float64, error) {
	if !f.IsFitted() {
		return nil, errors.NewNotFittedError("FURIA", "DistributionForInstance")
	}

	d := make([]float64, f.schema.NumClasses())

	// Test for multiple overlap of rules. Antecedent-free rules (a
	// class emptied by earlier rules) never vote.
	for _, rule := range f.ruleset {
		if !rule.HasAntds() {
			continue
		}
		if rule.Covers(in) {
			d[int(rule.Consequent)] += rule.Membership(in, f.tNorm) * rule.Confidence()
		}
	}

	// If no rule covered the example, maybe start the rule stretching.
	if floats.Sum(d) == 0 {
		switch f.uncovAction {
		case UncovActionApriori:
			out := append([]float64(nil), f.apriori...)
			if floats.Sum(out) > 0 {
				floats.Scale(1/floats.Sum(out), out)
			}
			return out, nil
		case UncovActionReject:
			return d, nil
		}
		f.stretchRules(in, d)
	}

	// Check for conflicts and resolve them against the apriori
	// distribution: every tied class whose apriori differs from the
	// tied value gives up 1e-5.
	maxClasses := make([]float64, len(d))
	for i := range d {
		if d[floats.MaxIdx(d)] == d[i] && d[i] > 0 {
			maxClasses[i] = 1
		}
	}
	if floats.Sum(maxClasses) > 0 {
		for i := range maxClasses {
			if maxClasses[i] > 0 && f.apriori[i] != d[floats.MaxIdx(d)] {
				d[i] -= 0.00001
			}
		}
	}

	// If no stretched rule was able to cover the instance, fall back
	// to the apriori distribution.
	if floats.Sum(d) == 0 {
		copy(d, f.apriori)
	}

	if floats.Sum(d) > 0 {
		floats.Scale(1/floats.Sum(d), d)
	}
	return d, nil
}

// stretchRules adds, for every rule, the vote of its longest antecedent
// prefix that still covers the instance, discounted by the fraction of
// antecedents that survived. Votes take the maximum per class, not the
// sum. Rules are read-only; prefixes are ephemeral views.
func (f *FURIA) stretchRules(in *dataset.Instance, d []float64) {
	for _, rule := range f.ruleset {
		numAntdsBefore := rule.Size()

		// Find the first antecedent that does not cover the instance.
		cut := numAntdsBefore
		for j, antd := range rule.Antds {
			if antd.Covers(in) == 0 {
				cut = j
				break
			}
		}

		// Empty rules shall not vote here.
		if cut == 0 {
			continue
		}

		stretched := &Rule{Consequent: rule.Consequent, Antds: rule.Antds[:cut]}
		secondWeight := (float64(cut) + 1) / (float64(numAntdsBefore) + 2)
		w := stretched.Confidence() * secondWeight * stretched.Membership(in, f.tNorm)
		if w >= d[int(rule.Consequent)] {
			d[int(rule.Consequent)] = w
		}
	}
}

// PredictInstance returns the class value index with the highest
// distribution mass for the instance.
func (f *FURIA) PredictInstance(in *dataset.Instance) (int, error) {
	dist, err := f.DistributionForInstance(in)
	if err != nil {
		return 0, err
	}
	return floats.MaxIdx(dist), nil
}

// FitMatrix trains on a gonum feature matrix with an integer class
// column vector, building the numeric-attribute schema on the fly.
func (f *FURIA) FitMatrix(X, y mat.Matrix) error {
	r, _ := y.Dims()
	maxClass := 0
	for i := 0; i < r; i++ {
		if v := int(y.At(i, 0)); v > maxClass {
			maxClass = v
		}
	}
	labels := make([]string, maxClass+1)
	for i := range labels {
		labels[i] = fmt.Sprintf("c%d", i)
	}
	data, err := dataset.FromMatrix(X, y, labels)
	if err != nil {
		return err
	}
	return f.Fit(data)
}

// PredictProba returns the class distribution for every row of X.
func (f *FURIA) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	if !f.IsFitted() {
		return nil, errors.NewNotFittedError("FURIA", "PredictProba")
	}
	r, c := X.Dims()
	if c != f.schema.NumAttributes()-1 {
		return nil, errors.NewDimensionError("FURIA.PredictProba", f.schema.NumAttributes()-1, c, 1)
	}

	out := mat.NewDense(r, f.schema.NumClasses(), nil)
	for i := 0; i < r; i++ {
		values := make([]float64, f.schema.NumAttributes())
		values[f.schema.ClassIndex()] = math.NaN()
		col := 0
		for j := range values {
			if j == f.schema.ClassIndex() {
				continue
			}
			values[j] = X.At(i, col)
			col++
		}
		dist, err := f.DistributionForInstance(dataset.NewInstance(f.schema, values, 1.0))
		if err != nil {
			return nil, err
		}
		out.SetRow(i, dist)
	}
	return out, nil
}

// Predict returns the predicted class index per row of X as a column
// vector.
func (f *FURIA) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := f.PredictProba(X)
	if err != nil {
		return nil, err
	}
	r, _ := proba.Dims()
	out := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		out.Set(i, 0, float64(floats.MaxIdx(proba.RawRowView(i))))
	}
	return out, nil
}
