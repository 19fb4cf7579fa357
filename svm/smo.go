package svm

import (
	"math"

	"github.com/YuminosukeSato/digitcv/core/parallel"
)

const (
	// tau replaces a non-positive curvature along the working-set direction,
	// which occurs with non-PSD kernels such as sigmoid.
	tau = 1e-12

	// rowParallelThreshold is the sample count above which kernel rows are
	// computed on every core.
	rowParallelThreshold = 256
)

// solver solves the C-SVC dual
//
//	min ½ αᵀQα - eᵀα  subject to  yᵀα = 0, 0 ≤ α ≤ C
//
// with Q_ij = y_i y_j K(x_i, x_j), selecting working pairs with second order
// information and updating the gradient incrementally.
type solver struct {
	x      [][]float64
	y      []float64
	kernel Kernel
	c      float64
	eps    float64

	alpha []float64
	grad  []float64
	diag  []float64
	cache *rowCache
}

type solution struct {
	alpha      []float64
	rho        float64
	iterations int
	converged  bool
}

func newSolver(x [][]float64, y []float64, k Kernel, c, eps float64, cacheMB int) *solver {
	n := len(x)
	s := &solver{
		x:      x,
		y:      y,
		kernel: k,
		c:      c,
		eps:    eps,
		alpha:  make([]float64, n),
		grad:   make([]float64, n),
		diag:   make([]float64, n),
		cache:  newRowCache(cacheMB, n),
	}
	for i := range s.grad {
		s.grad[i] = -1
		s.diag[i] = k.Eval(x[i], x[i])
	}
	return s
}

// row returns Q_i. The slice stays valid after later calls, even if the
// cache drops it.
func (s *solver) row(i int) []float64 {
	if r, ok := s.cache.get(i); ok {
		return r
	}
	n := len(s.x)
	r := make([]float64, n)
	xi, yi := s.x[i], s.y[i]
	parallel.ParallelizeWithThreshold(n, rowParallelThreshold, func(start, end int) {
		for j := start; j < end; j++ {
			r[j] = yi * s.y[j] * s.kernel.Eval(xi, s.x[j])
		}
	})
	s.cache.put(i, r)
	return r
}

func (s *solver) upperBound(i int) bool { return s.alpha[i] >= s.c }
func (s *solver) lowerBound(i int) bool { return s.alpha[i] <= 0 }

// selectWorkingSet returns the maximal violating index i and the j that
// maximizes the second order decrease of the objective. ok is false once the
// KKT gap is below eps.
func (s *solver) selectWorkingSet() (i, j int, ok bool) {
	gmax, gmax2 := math.Inf(-1), math.Inf(-1)
	i = -1
	for t := range s.alpha {
		if s.y[t] > 0 {
			if !s.upperBound(t) && -s.grad[t] >= gmax {
				gmax, i = -s.grad[t], t
			}
		} else if !s.lowerBound(t) && s.grad[t] >= gmax {
			gmax, i = s.grad[t], t
		}
	}

	var qi []float64
	if i >= 0 {
		qi = s.row(i)
	}

	j = -1
	objMin := math.Inf(1)
	for t := range s.alpha {
		var gradDiff, quad float64
		if s.y[t] > 0 {
			if s.lowerBound(t) {
				continue
			}
			if s.grad[t] >= gmax2 {
				gmax2 = s.grad[t]
			}
			gradDiff = gmax + s.grad[t]
			if gradDiff <= 0 || i < 0 {
				continue
			}
			quad = s.diag[i] + s.diag[t] - 2*s.y[i]*qi[t]
		} else {
			if s.upperBound(t) {
				continue
			}
			if -s.grad[t] >= gmax2 {
				gmax2 = -s.grad[t]
			}
			gradDiff = gmax - s.grad[t]
			if gradDiff <= 0 || i < 0 {
				continue
			}
			quad = s.diag[i] + s.diag[t] + 2*s.y[i]*qi[t]
		}
		if quad <= 0 {
			quad = tau
		}
		if obj := -gradDiff * gradDiff / quad; obj <= objMin {
			objMin, j = obj, t
		}
	}

	if gmax+gmax2 < s.eps || j < 0 {
		return -1, -1, false
	}
	return i, j, true
}

// update optimizes the pair (i, j) analytically, clips it to the box and
// refreshes the gradient.
func (s *solver) update(i, j int) {
	qi, qj := s.row(i), s.row(j)
	c := s.c
	oldI, oldJ := s.alpha[i], s.alpha[j]
	ai, aj := oldI, oldJ

	if s.y[i] != s.y[j] {
		quad := s.diag[i] + s.diag[j] + 2*qi[j]
		if quad <= 0 {
			quad = tau
		}
		delta := (-s.grad[i] - s.grad[j]) / quad
		diff := ai - aj
		ai += delta
		aj += delta
		if diff > 0 {
			if aj < 0 {
				aj, ai = 0, diff
			}
		} else if ai < 0 {
			ai, aj = 0, -diff
		}
		if diff > 0 {
			if ai > c {
				ai, aj = c, c-diff
			}
		} else if aj > c {
			aj, ai = c, c+diff
		}
	} else {
		quad := s.diag[i] + s.diag[j] - 2*qi[j]
		if quad <= 0 {
			quad = tau
		}
		delta := (s.grad[i] - s.grad[j]) / quad
		sum := ai + aj
		ai -= delta
		aj += delta
		if sum > c {
			if ai > c {
				ai, aj = c, sum-c
			}
		} else if aj < 0 {
			aj, ai = 0, sum
		}
		if sum > c {
			if aj > c {
				aj, ai = c, sum-c
			}
		} else if ai < 0 {
			ai, aj = 0, sum
		}
	}

	s.alpha[i], s.alpha[j] = ai, aj
	di, dj := ai-oldI, aj-oldJ
	for k := range s.grad {
		s.grad[k] += qi[k]*di + qj[k]*dj
	}
}

// rho computes the bias from the free variables, or from the middle of the
// feasible interval when every variable sits at a bound.
func (s *solver) rho() float64 {
	ub, lb := math.Inf(1), math.Inf(-1)
	free, sumFree := 0, 0.0
	for i := range s.alpha {
		yg := s.y[i] * s.grad[i]
		switch {
		case s.upperBound(i):
			if s.y[i] < 0 {
				ub = math.Min(ub, yg)
			} else {
				lb = math.Max(lb, yg)
			}
		case s.lowerBound(i):
			if s.y[i] > 0 {
				ub = math.Min(ub, yg)
			} else {
				lb = math.Max(lb, yg)
			}
		default:
			free++
			sumFree += yg
		}
	}
	if free > 0 {
		return sumFree / float64(free)
	}
	return (ub + lb) / 2
}

func (s *solver) solve(maxIter int) solution {
	iter := 0
	converged := false
	for iter < maxIter {
		i, j, ok := s.selectWorkingSet()
		if !ok {
			converged = true
			break
		}
		s.update(i, j)
		iter++
	}
	return solution{
		alpha:      s.alpha,
		rho:        s.rho(),
		iterations: iter,
		converged:  converged,
	}
}
