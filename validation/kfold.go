// Package validation runs k-fold cross-validation of the kernel set over a
// dataset and scores the resulting classifiers on held-out images.
package validation

import (
	"github.com/YuminosukeSato/digitcv/pkg/errors"
)

// Fold is one train/validation split. Index is 1-based.
type Fold struct {
	Index        int
	TrainIndices []int
	TestIndices  []int
}

// KFold splits sample indices into k contiguous validation blocks without
// shuffling. The first n%k folds hold one extra sample.
type KFold struct {
	k int
}

// NewKFold returns a splitter with k folds. k must be at least 2.
func NewKFold(k int) (*KFold, error) {
	if k < 2 {
		return nil, errors.NewValidationError("folds", "must be at least 2", k)
	}
	return &KFold{k: k}, nil
}

// K returns the number of folds.
func (kf *KFold) K() int {
	return kf.k
}

// Split partitions 0..n-1 into k folds. Every index appears in exactly one
// validation block, and each fold trains on the remaining indices in order.
func (kf *KFold) Split(n int) ([]Fold, error) {
	if n < kf.k {
		return nil, errors.NewValidationError("folds", "cannot exceed the number of samples", kf.k)
	}

	folds := make([]Fold, kf.k)
	start := 0
	for i := range folds {
		size := n / kf.k
		if i < n%kf.k {
			size++
		}
		end := start + size

		test := make([]int, 0, size)
		train := make([]int, 0, n-size)
		for j := 0; j < n; j++ {
			if j >= start && j < end {
				test = append(test, j)
			} else {
				train = append(train, j)
			}
		}
		folds[i] = Fold{Index: i + 1, TrainIndices: train, TestIndices: test}
		start = end
	}
	return folds, nil
}
