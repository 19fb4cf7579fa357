package validation

import (
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/digitcv/svm"
)

// FoldScores holds the accuracy of every kernel on one fold, in kernel order.
type FoldScores struct {
	Fold       int
	Train      int
	Validation int
	Accuracy   []float64
}

// CVResult is the accuracy table of a cross-validation run.
//
// Final holds the classifiers of the last fold, one per kernel. They are
// not refit on the full dataset.
type CVResult struct {
	Kernels []string
	Folds   []FoldScores
	Final   []*svm.SVC
}

// Records returns the number of (fold, kernel) accuracy records.
func (r *CVResult) Records() int {
	n := 0
	for _, f := range r.Folds {
		n += len(f.Accuracy)
	}
	return n
}

// Scores returns the per-fold accuracies of kernel, or nil if it was not
// evaluated.
func (r *CVResult) Scores(kernel string) []float64 {
	col := -1
	for i, k := range r.Kernels {
		if k == kernel {
			col = i
			break
		}
	}
	if col < 0 {
		return nil
	}
	scores := make([]float64, len(r.Folds))
	for i, f := range r.Folds {
		scores[i] = f.Accuracy[col]
	}
	return scores
}

// Mean returns the mean fold accuracy of kernel.
func (r *CVResult) Mean(kernel string) float64 {
	scores := r.Scores(kernel)
	if len(scores) == 0 {
		return 0
	}
	return stat.Mean(scores, nil)
}

// Std returns the sample standard deviation of the fold accuracies of
// kernel. It is zero for a single fold.
func (r *CVResult) Std(kernel string) float64 {
	scores := r.Scores(kernel)
	if len(scores) < 2 {
		return 0
	}
	return stat.StdDev(scores, nil)
}
