// Package model provides the interfaces and base types shared by the
// classifiers in this library.
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Estimator is the minimal contract of a trainable model.
type Estimator interface {
	// IsFitted returns whether the model has been fitted.
	IsFitted() bool
	// Reset returns the model to its unfitted state.
	Reset()
}

// Classifier combines the interfaces of classification models.
type Classifier interface {
	Estimator
	Predictor

	// PredictProba returns per-class probability estimates, one row
	// per input sample.
	PredictProba(X mat.Matrix) (*mat.Dense, error)
}

// RuleModel is the interface of rule-based classifiers that expose a
// readable model structure.
type RuleModel interface {
	// MeasureNumRules returns the number of rules in the model.
	MeasureNumRules() float64
	// String renders the rule list in human-readable form.
	String() string
}

// ParameterGetter is the interface for models that expose their parameters.
type ParameterGetter interface {
	// GetParams returns the model's hyperparameters.
	GetParams() map[string]interface{}
}

// Persistable is the interface for models that can be saved and loaded.
type Persistable interface {
	// Save saves the model to a file.
	Save(path string) error

	// Load loads the model from a file.
	Load(path string) error
}
