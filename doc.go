// Package furia provides a fuzzy unordered rule induction classifier
// for Go, designed for backend services that need interpretable
// classification models.
//
// FURIA learns an unordered set of IF-THEN rules per class with a
// RIPPER-style separate-and-conquer loop, softens the numeric rule
// boundaries into trapezoidal fuzzy sets, and classifies by T-norm
// aggregated, confidence-weighted rule votes with a rule-stretching
// fallback for uncovered instances.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/furia/dataset"
//	    "github.com/YuminosukeSato/furia/rules"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    X := mat.NewDense(4, 1, []float64{0.1, 0.3, 0.7, 0.9})
//	    y := mat.NewDense(4, 1, []float64{0, 0, 1, 1})
//
//	    data, err := dataset.FromMatrix(X, y, []string{"low", "high"})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    clf := rules.NewFURIA()
//	    if err := clf.Fit(data); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    fmt.Println(clf)
//	}
//
// # Packages
//
// The library is organized into several packages:
//
//   - rules: the FURIA learner, its options and inference
//   - dataset: attributes, weighted instances and instance sets
//   - metrics: classification metrics (accuracy, confusion matrix)
//   - core/model: shared interfaces and gob persistence helpers
//   - pkg/errors: structured error handling
//   - pkg/log: structured logging
//
// # Determinism
//
// Training is a pure function of the instances, the option values and
// the seed: identical inputs produce byte-identical models and
// predictions.
package furia
