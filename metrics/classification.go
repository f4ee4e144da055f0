// Package metrics provides evaluation metrics for the classifiers in
// this library.
package metrics

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/furia/pkg/errors"
)

// Accuracy computes the fraction of correct predictions. Both
// vectors hold class value indices.
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("Accuracy", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("Accuracy", n, yPred.Len(), 0)
	}

	correct := 0
	for i := 0; i < n; i++ {
		if int(yTrue.AtVec(i)) == int(yPred.AtVec(i)) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// ErrorRate computes 1 - Accuracy.
func ErrorRate(yTrue, yPred *mat.VecDense) (float64, error) {
	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return 1 - acc, nil
}

// ConfusionMatrix computes the numClasses x numClasses count matrix
// with true classes on the rows and predicted classes on the columns.
func ConfusionMatrix(yTrue, yPred *mat.VecDense, numClasses int) (*mat.Dense, error) {
	n := yTrue.Len()
	if n == 0 {
		return nil, errors.NewValueError("ConfusionMatrix", "empty vector")
	}
	if yPred.Len() != n {
		return nil, errors.NewDimensionError("ConfusionMatrix", n, yPred.Len(), 0)
	}
	if numClasses < 1 {
		return nil, errors.NewValueError("ConfusionMatrix", "numClasses must be positive")
	}

	cm := mat.NewDense(numClasses, numClasses, nil)
	for i := 0; i < n; i++ {
		t, p := int(yTrue.AtVec(i)), int(yPred.AtVec(i))
		if t < 0 || t >= numClasses || p < 0 || p >= numClasses {
			return nil, errors.NewValueError("ConfusionMatrix", "class value out of range")
		}
		cm.Set(t, p, cm.At(t, p)+1)
	}
	return cm, nil
}

// Precision computes the precision of the given class from prediction
// vectors. When the class is never predicted the metric is ill-defined;
// a warning is raised and 0 returned.
func Precision(yTrue, yPred *mat.VecDense, class int) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("Precision", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("Precision", n, yPred.Len(), 0)
	}

	var tp, predicted float64
	for i := 0; i < n; i++ {
		if int(yPred.AtVec(i)) != class {
			continue
		}
		predicted++
		if int(yTrue.AtVec(i)) == class {
			tp++
		}
	}
	if predicted == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("precision", "no predicted samples", 0))
		return 0, nil
	}
	return tp / predicted, nil
}
