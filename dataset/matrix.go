package dataset

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/furia/pkg/errors"
)

// FromMatrix builds an instance set from a gonum feature matrix and a
// class column vector. Every feature becomes a numeric attribute named
// x0..x{c-1}; classValues defines the nominal class attribute. Entries
// of y must be integral indices into classValues (NaN marks a missing
// class); NaN feature entries become missing values. All instances get
// weight 1.
func FromMatrix(X mat.Matrix, y mat.Matrix, classValues []string) (*Instances, error) {
	r, c := X.Dims()
	ry, cy := y.Dims()
	if r == 0 || c == 0 {
		return nil, errors.NewValueError("dataset.FromMatrix", "empty data")
	}
	if cy != 1 {
		return nil, errors.NewValueError("dataset.FromMatrix", "y must be a column vector")
	}
	if ry != r {
		return nil, errors.NewDimensionError("dataset.FromMatrix", r, ry, 0)
	}
	if len(classValues) < 1 {
		return nil, errors.NewValueError("dataset.FromMatrix", "classValues must not be empty")
	}

	attrs := make([]*Attribute, 0, c+1)
	for j := 0; j < c; j++ {
		attrs = append(attrs, NewNumericAttribute(fmt.Sprintf("x%d", j)))
	}
	attrs = append(attrs, NewNominalAttribute("class", classValues))
	schema, err := NewSchema(attrs, c)
	if err != nil {
		return nil, err
	}

	out := NewInstances(schema, r)
	for i := 0; i < r; i++ {
		values := make([]float64, c+1)
		for j := 0; j < c; j++ {
			values[j] = X.At(i, j)
		}
		cv := y.At(i, 0)
		if !math.IsNaN(cv) {
			idx := math.Round(cv)
			if idx != cv {
				errors.Warn(errors.NewDataConversionWarning("float64", "class index",
					fmt.Sprintf("class value %v of row %d rounded to %v", cv, i, idx)))
			}
			if idx < 0 || int(idx) >= len(classValues) {
				return nil, errors.NewValidationError("y",
					fmt.Sprintf("class value of row %d out of range [0, %d)", i, len(classValues)), cv)
			}
			cv = idx
		}
		values[c] = cv
		out.Add(NewInstance(schema, values, 1.0))
	}
	return out, nil
}
