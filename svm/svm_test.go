package svm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/digitcv/pkg/errors"
	"github.com/YuminosukeSato/digitcv/pkg/log"
)

// clusters returns two jittered groups, label a around (0.5, 3) and label b
// around (3, 0.5), separable by every kernel but sigmoid.
func clusters(a, b int) (*mat.Dense, []int) {
	jitter := []float64{-0.3, 0, 0.3}
	var data []float64
	var labels []int
	for _, c := range []struct {
		label  int
		cx, cy float64
	}{{a, 0.5, 3}, {b, 3, 0.5}} {
		for _, dx := range jitter {
			for _, dy := range jitter {
				data = append(data, c.cx+dx, c.cy+dy)
				labels = append(labels, c.label)
			}
		}
	}
	return mat.NewDense(len(labels), 2, data), labels
}

func quietLogger() Option {
	logger, _ := log.NewTestLogger(log.LevelError)
	return WithLogger(logger)
}

func TestKernelTypeNames(t *testing.T) {
	tests := []struct {
		name string
		want KernelType
	}{
		{"linear", Linear},
		{"polynomial", Poly},
		{"poly", Poly},
		{"RBF", RBF},
		{" sigmoid ", Sigmoid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKernelType(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseKernelType("chi2")
	var valErr *errors.ValidationError
	assert.True(t, errors.As(err, &valErr))
	assert.Equal(t, "unknown", KernelType(42).String())
}

func TestDefaultKernelsOrder(t *testing.T) {
	var names []string
	for _, k := range DefaultKernels() {
		names = append(names, k.Name())
		assert.Equal(t, 2.0, k.Degree)
		assert.Equal(t, 1.0, k.Gamma)
		assert.Equal(t, 0.0, k.Coef0)
		assert.NoError(t, k.Validate())
	}
	assert.Equal(t, []string{"linear", "polynomial", "rbf", "sigmoid"}, names)
}

func TestKernelEval(t *testing.T) {
	a, b := []float64{1, 2}, []float64{3, 4}
	tests := []struct {
		kernel Kernel
		want   float64
	}{
		{Kernel{Type: Linear}, 11},
		{Kernel{Type: Poly, Degree: 2, Gamma: 1}, 121},
		{Kernel{Type: Poly, Degree: 2, Gamma: 0.5, Coef0: 1}, 42.25},
		{Kernel{Type: RBF, Gamma: 1}, math.Exp(-8)},
		{Kernel{Type: Sigmoid, Gamma: 1}, math.Tanh(11)},
	}
	for _, tt := range tests {
		t.Run(tt.kernel.Name(), func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.kernel.Eval(a, b), 1e-12)
		})
	}
}

func TestKernelValidate(t *testing.T) {
	assert.Error(t, Kernel{Type: Poly, Degree: 0, Gamma: 1}.Validate())
	assert.Error(t, Kernel{Type: RBF, Gamma: 0}.Validate())
	assert.Error(t, Kernel{Type: KernelType(9), Gamma: 1}.Validate())
	assert.NoError(t, Kernel{Type: Linear}.Validate())
}

func TestTwoPointSolution(t *testing.T) {
	X := mat.NewDense(2, 2, []float64{0, 0, 2, 0})
	svc, err := Train(X, []int{0, 1}, Kernel{Type: Linear}, quietLogger())
	require.NoError(t, err)

	assert.InDelta(t, 1.0, svc.Rho(), 1e-9)
	assert.Equal(t, 2, svc.NumSupportVectors())
	assert.Equal(t, 1, svc.Iterations())

	d, err := svc.Decision([]float64{2, 0})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, d, 1e-9)
	d, err = svc.Decision([]float64{0, 5})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, d, 1e-9)
}

func TestSeparableClusters(t *testing.T) {
	X, y := clusters(0, 1)
	for _, k := range DefaultKernels()[:3] {
		t.Run(k.Name(), func(t *testing.T) {
			svc, err := Train(X, y, k, quietLogger())
			require.NoError(t, err)
			assert.True(t, svc.IsFitted())

			pred, err := svc.PredictBatch(X)
			require.NoError(t, err)
			assert.Equal(t, y, pred)

			got, err := svc.Predict([]float64{0.4, 3.1})
			require.NoError(t, err)
			assert.Equal(t, 0, got)
			got, err = svc.Predict([]float64{3.1, 0.4})
			require.NoError(t, err)
			assert.Equal(t, 1, got)
		})
	}
}

func TestRBFSeparatesXOR(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		0, 0,
		1, 1,
		0, 1,
		1, 0,
	})
	y := []int{0, 0, 1, 1}

	svc, err := Train(X, y, Kernel{Type: RBF, Gamma: 1}, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 4, svc.NumSupportVectors())
	assert.InDelta(t, 0.0, svc.Rho(), 1e-6)

	pred, err := svc.PredictBatch(X)
	require.NoError(t, err)
	assert.Equal(t, y, pred)

	got, err := svc.Predict([]float64{0.9, 0.1})
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestSigmoidPredictsKnownClasses(t *testing.T) {
	X, y := clusters(0, 1)
	svc, err := Train(X, y, DefaultKernels()[3], quietLogger())
	require.NoError(t, err)

	pred, err := svc.PredictBatch(X)
	require.NoError(t, err)
	for _, p := range pred {
		assert.Contains(t, []int{0, 1}, p)
	}
}

func TestArbitraryLabels(t *testing.T) {
	X, y := clusters(7, 3)
	svc, err := Train(X, y, Kernel{Type: RBF, Gamma: 1}, quietLogger())
	require.NoError(t, err)

	assert.Equal(t, []int{3, 7}, svc.Classes())
	pred, err := svc.PredictBatch(X)
	require.NoError(t, err)
	assert.Equal(t, y, pred)

	// the larger label is the positive side
	d, err := svc.Decision([]float64{0.5, 3})
	require.NoError(t, err)
	assert.Greater(t, d, 0.0)
}

func TestSmallCacheMatchesDefault(t *testing.T) {
	n := 300
	data := make([]float64, 0, 2*n)
	y := make([]int, 0, n)
	for i := 0; i < n; i++ {
		x := float64(i%20) / 4
		v := float64(i/20) / 3
		data = append(data, x, v)
		label := 0
		if x+0.5*v > 4 {
			label = 1
		}
		y = append(y, label)
	}
	X := mat.NewDense(n, 2, data)
	k := Kernel{Type: RBF, Gamma: 1}

	full, err := Train(X, y, k, quietLogger())
	require.NoError(t, err)
	small, err := Train(X, y, k, quietLogger(), WithCacheSize(0))
	require.NoError(t, err)

	assert.Equal(t, full.Iterations(), small.Iterations())
	assert.InDelta(t, full.Rho(), small.Rho(), 1e-9)
	a, err := full.PredictBatch(X)
	require.NoError(t, err)
	b, err := small.PredictBatch(X)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestConvergenceWarning(t *testing.T) {
	var warnings []error
	errors.SetZerologWarnFunc(func(w error) { warnings = append(warnings, w) })
	defer errors.SetZerologWarnFunc(nil)

	X, y := clusters(0, 1)
	rows, _ := X.Dims()
	grown := mat.NewDense(rows+1, 2, nil)
	grown.Copy(X)
	grown.SetRow(rows, []float64{10, 0})
	y = append(y, 1)

	svc, err := Train(grown, y, Kernel{Type: Linear}, quietLogger(), WithMaxIter(1))
	require.NoError(t, err)
	assert.Equal(t, 1, svc.Iterations())

	require.Len(t, warnings, 1)
	var cw *errors.ConvergenceWarning
	assert.True(t, errors.As(warnings[0], &cw))
}

func TestFitErrors(t *testing.T) {
	X, y := clusters(0, 1)

	t.Run("single class", func(t *testing.T) {
		ones := make([]int, len(y))
		_, err := Train(X, ones, Kernel{Type: Linear}, quietLogger())
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrSingleClass))
		var modelErr *errors.ModelError
		assert.True(t, errors.As(err, &modelErr))
	})

	t.Run("three classes", func(t *testing.T) {
		labels := append([]int(nil), y...)
		labels[0] = 2
		_, err := Train(X, labels, Kernel{Type: Linear}, quietLogger())
		var valErr *errors.ValidationError
		assert.True(t, errors.As(err, &valErr))
	})

	t.Run("label count", func(t *testing.T) {
		_, err := Train(X, y[:3], Kernel{Type: Linear}, quietLogger())
		var dimErr *errors.DimensionError
		assert.True(t, errors.As(err, &dimErr))
	})

	t.Run("nil matrix", func(t *testing.T) {
		_, err := Train(nil, nil, Kernel{Type: Linear}, quietLogger())
		assert.True(t, errors.Is(err, errors.ErrEmptyData))
	})

	t.Run("bad C", func(t *testing.T) {
		_, err := Train(X, y, Kernel{Type: Linear}, quietLogger(), WithC(0))
		var valErr *errors.ValidationError
		assert.True(t, errors.As(err, &valErr))
	})

	t.Run("bad kernel", func(t *testing.T) {
		_, err := Train(X, y, Kernel{Type: RBF}, quietLogger())
		var valErr *errors.ValidationError
		assert.True(t, errors.As(err, &valErr))
	})
}

func TestPredictErrors(t *testing.T) {
	svc := NewSVC(Kernel{Type: Linear}, quietLogger())

	_, err := svc.Predict([]float64{1, 2})
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))
	_, err = svc.PredictBatch(mat.NewDense(1, 2, nil))
	assert.True(t, errors.As(err, &nf))

	X, y := clusters(0, 1)
	require.NoError(t, svc.Fit(X, y))

	_, err = svc.Predict([]float64{1, 2, 3})
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
	_, err = svc.PredictBatch(mat.NewDense(1, 3, nil))
	assert.True(t, errors.As(err, &dimErr))

	_, err = svc.PredictBatch(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
	var modelErr *errors.ModelError
	assert.True(t, errors.As(err, &modelErr))
}

func TestRefitFailureClearsState(t *testing.T) {
	X, y := clusters(0, 1)
	svc := NewSVC(Kernel{Type: Linear}, quietLogger())
	require.NoError(t, svc.Fit(X, y))
	require.Error(t, svc.Fit(X, make([]int, len(y))))
	assert.False(t, svc.IsFitted())
}

func TestRowCacheEviction(t *testing.T) {
	c := newRowCache(0, 10)
	c.put(0, []float64{0})
	c.put(1, []float64{1})
	_, ok := c.get(0)
	require.True(t, ok)
	c.put(2, []float64{2})

	assert.Equal(t, 2, c.len())
	_, ok = c.get(1)
	assert.False(t, ok, "least recently used row should be evicted")
	_, ok = c.get(0)
	assert.True(t, ok)

	big := newRowCache(1, 1024)
	assert.Equal(t, 128, big.capacity)
}
