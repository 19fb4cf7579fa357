// Package metrics scores predicted class labels against ground truth.
package metrics

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/digitcv/pkg/errors"
)

// Accuracy returns the fraction of positions where yPred equals yTrue, in
// [0, 1].
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkVectors("Accuracy", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return errors.SafeDivide(float64(correct), float64(n)), nil
}

// Correct counts the positions where the labels agree.
func Correct(yTrue, yPred []int) (int, error) {
	if len(yTrue) == 0 {
		return 0, errors.NewValueError("Correct", "empty labels")
	}
	if len(yPred) != len(yTrue) {
		return 0, errors.NewDimensionError("Correct", len(yTrue), len(yPred), 0)
	}
	correct := 0
	for i, want := range yTrue {
		if yPred[i] == want {
			correct++
		}
	}
	return correct, nil
}

// AccuracyPercent returns the share of agreeing labels as a percentage in
// [0, 100].
func AccuracyPercent(yTrue, yPred []int) (float64, error) {
	acc, err := Accuracy(labelVector(yTrue), labelVector(yPred))
	if err != nil {
		return 0, errors.Wrap(err, "accuracy percent")
	}
	return 100 * acc, nil
}

// labelVector copies labels into a vector, or returns nil when there are none.
func labelVector(labels []int) *mat.VecDense {
	if len(labels) == 0 {
		return nil
	}
	v := mat.NewVecDense(len(labels), nil)
	for i, l := range labels {
		v.SetVec(i, float64(l))
	}
	return v
}

func checkVectors(op string, yTrue, yPred *mat.VecDense) (int, error) {
	if yTrue == nil || yPred == nil {
		return 0, errors.NewValueError(op, "empty vector")
	}
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return n, nil
}
