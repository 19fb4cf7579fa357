// Package model defines the classifier contracts shared by the trainers and
// the evaluation harness, and the fitted-state bookkeeping they embed.
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Fitter is a model that learns from a feature matrix and aligned integer
// labels, one row per sample.
type Fitter interface {
	Fit(X mat.Matrix, y []int) error
}

// LabelPredictor predicts the class id of a single feature vector.
type LabelPredictor interface {
	Predict(x []float64) (int, error)
}

// BatchPredictor predicts one class id per row of X.
type BatchPredictor interface {
	PredictBatch(X mat.Matrix) ([]int, error)
}

// Classifier combines the interfaces of a trained classifier.
type Classifier interface {
	Fitter
	LabelPredictor
	BatchPredictor

	// Classes returns the sorted labels seen during fitting.
	Classes() []int
}
