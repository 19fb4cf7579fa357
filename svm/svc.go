package svm

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/digitcv/core/model"
	"github.com/YuminosukeSato/digitcv/pkg/errors"
	"github.com/YuminosukeSato/digitcv/pkg/log"
)

const modelName = "SVC"

// SVC is a binary C-support vector classifier.
//
// The larger of the two training labels is the positive class: Decision
// returns a positive value for it.
type SVC struct {
	state *model.StateManager

	kernel  Kernel
	c       float64
	tol     float64
	cacheMB int
	maxIter int
	logger  log.Logger

	classes        []int
	supportVectors [][]float64
	dualCoef       []float64
	rho            float64
	// weights is the primal vector, kept for the linear kernel only.
	weights    []float64
	iterations int
}

var _ model.Classifier = (*SVC)(nil)

// NewSVC creates an unfitted classifier using kernel k.
func NewSVC(k Kernel, opts ...Option) *SVC {
	s := &SVC{
		state:   model.NewStateManager(),
		kernel:  k,
		c:       defaultC,
		tol:     defaultTolerance,
		cacheMB: defaultCacheMB,
		logger:  log.GetLoggerWithName("svm"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Train fits a new classifier with kernel k on X and y.
func Train(X mat.Matrix, y []int, k Kernel, opts ...Option) (*SVC, error) {
	s := NewSVC(k, opts...)
	if err := s.Fit(X, y); err != nil {
		return nil, err
	}
	return s, nil
}

// Fit trains the classifier. X holds one sample per row and y exactly two
// distinct labels.
func (s *SVC) Fit(X mat.Matrix, y []int) error {
	s.state.Reset()

	if X == nil {
		return errors.NewModelError("SVC.Fit", "empty data", errors.ErrEmptyData)
	}
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return errors.NewModelError("SVC.Fit", "empty data", errors.ErrEmptyData)
	}
	if len(y) != rows {
		return errors.NewDimensionError("SVC.Fit", rows, len(y), 0)
	}
	if err := s.kernel.Validate(); err != nil {
		return err
	}
	if s.c <= 0 {
		return errors.NewValidationError("C", "must be positive", s.c)
	}
	if s.tol <= 0 {
		return errors.NewValidationError("tolerance", "must be positive", s.tol)
	}

	classes := uniqueSorted(y)
	switch {
	case len(classes) < 2:
		return errors.NewModelError("SVC.Fit", "degenerate training split", errors.ErrSingleClass)
	case len(classes) > 2:
		return errors.NewValidationError("y", "binary classification needs exactly two classes", classes)
	}

	x := make([][]float64, rows)
	signs := make([]float64, rows)
	for i := range x {
		x[i] = mat.Row(nil, i, X)
		signs[i] = -1
		if y[i] == classes[1] {
			signs[i] = 1
		}
	}

	maxIter := s.maxIter
	if maxIter <= 0 {
		maxIter = 100 * rows
		if maxIter < minMaxIter {
			maxIter = minMaxIter
		}
	}

	start := time.Now()
	sol := newSolver(x, signs, s.kernel, s.c, s.tol, s.cacheMB).solve(maxIter)
	if !sol.converged {
		errors.Warn(errors.NewConvergenceWarning("SVC SMO", sol.iterations,
			fmt.Sprintf("kernel %s stopped above tolerance %g", s.kernel.Name(), s.tol)))
	}

	s.supportVectors = nil
	s.dualCoef = nil
	for i, a := range sol.alpha {
		if a > 0 {
			s.supportVectors = append(s.supportVectors, x[i])
			s.dualCoef = append(s.dualCoef, a*signs[i])
		}
	}
	s.weights = nil
	if s.kernel.Type == Linear {
		s.weights = make([]float64, cols)
		for i, sv := range s.supportVectors {
			floats.AddScaled(s.weights, s.dualCoef[i], sv)
		}
	}
	s.rho = sol.rho
	s.iterations = sol.iterations
	s.classes = classes
	s.state.SetFitted(cols)

	s.logger.Debug("SVC fitted",
		log.ModelNameKey, modelName,
		log.OperationKey, log.OperationFit,
		log.KernelKey, s.kernel.Name(),
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
		log.IterationKey, sol.iterations,
		log.SupportVectorsKey, len(s.supportVectors),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Decision returns the signed distance-like score of x. Positive values
// predict the larger class.
func (s *SVC) Decision(x []float64) (float64, error) {
	if err := s.state.RequireFitted(modelName, "Decision"); err != nil {
		return 0, err
	}
	if err := s.state.CheckFeatures("SVC.Decision", len(x)); err != nil {
		return 0, err
	}
	return s.decision(x), nil
}

func (s *SVC) decision(x []float64) float64 {
	if s.weights != nil {
		return floats.Dot(s.weights, x) - s.rho
	}
	sum := -s.rho
	for i, sv := range s.supportVectors {
		sum += s.dualCoef[i] * s.kernel.Eval(sv, x)
	}
	return sum
}

// Predict returns the class id of x.
func (s *SVC) Predict(x []float64) (int, error) {
	if err := s.state.RequireFitted(modelName, "Predict"); err != nil {
		return 0, err
	}
	if err := s.state.CheckFeatures("SVC.Predict", len(x)); err != nil {
		return 0, err
	}
	return s.label(s.decision(x)), nil
}

// PredictBatch returns one class id per row of X.
func (s *SVC) PredictBatch(X mat.Matrix) ([]int, error) {
	if err := s.state.RequireFitted(modelName, "PredictBatch"); err != nil {
		return nil, err
	}
	if X == nil {
		return nil, errors.NewModelError("SVC.PredictBatch", "empty data", errors.ErrEmptyData)
	}
	rows, cols := X.Dims()
	if err := s.state.CheckFeatures("SVC.PredictBatch", cols); err != nil {
		return nil, err
	}
	out := make([]int, rows)
	row := make([]float64, cols)
	for i := range out {
		mat.Row(row, i, X)
		out[i] = s.label(s.decision(row))
	}
	return out, nil
}

func (s *SVC) label(score float64) int {
	if score > 0 {
		return s.classes[1]
	}
	return s.classes[0]
}

// Classes returns the two training labels in ascending order.
func (s *SVC) Classes() []int {
	return append([]int(nil), s.classes...)
}

// Kernel returns the kernel configuration.
func (s *SVC) Kernel() Kernel {
	return s.kernel
}

// IsFitted reports whether Fit has succeeded.
func (s *SVC) IsFitted() bool {
	return s.state.IsFitted()
}

// NumSupportVectors returns the number of training samples with a non-zero
// dual coefficient.
func (s *SVC) NumSupportVectors() int {
	return len(s.supportVectors)
}

// Iterations returns the number of SMO steps of the last fit.
func (s *SVC) Iterations() int {
	return s.iterations
}

// Rho returns the bias subtracted from the kernel expansion.
func (s *SVC) Rho() float64 {
	return s.rho
}

func uniqueSorted(y []int) []int {
	seen := make(map[int]struct{})
	var out []int
	for _, v := range y {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}
