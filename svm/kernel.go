// Package svm implements a binary C-support vector classifier trained with
// sequential minimal optimization, and the closed set of kernels evaluated
// by the cross-validation harness.
package svm

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/digitcv/pkg/errors"
)

// KernelType selects the kernel function.
type KernelType int

const (
	// Linear is K(a, b) = a·b.
	Linear KernelType = iota
	// Poly is K(a, b) = (gamma*a·b + coef0)^degree.
	Poly
	// RBF is K(a, b) = exp(-gamma*|a-b|²).
	RBF
	// Sigmoid is K(a, b) = tanh(gamma*a·b + coef0).
	Sigmoid
)

var kernelNames = [...]string{
	Linear:  "linear",
	Poly:    "polynomial",
	RBF:     "rbf",
	Sigmoid: "sigmoid",
}

func (t KernelType) String() string {
	if t < Linear || t > Sigmoid {
		return "unknown"
	}
	return kernelNames[t]
}

// ParseKernelType resolves a kernel name. "poly" is accepted for Poly.
func ParseKernelType(name string) (KernelType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "linear":
		return Linear, nil
	case "polynomial", "poly":
		return Poly, nil
	case "rbf":
		return RBF, nil
	case "sigmoid":
		return Sigmoid, nil
	}
	return 0, errors.NewValidationError("kernel", "unknown kernel, expected one of linear, polynomial, rbf, sigmoid", name)
}

// Kernel is a kernel function with its parameters. Degree is used by Poly
// only; Gamma and Coef0 are ignored by Linear.
type Kernel struct {
	Type   KernelType
	Degree float64
	Gamma  float64
	Coef0  float64
}

// DefaultKernels returns the evaluated kernel set in reporting order:
// linear, polynomial, rbf and sigmoid, with Degree 2, Gamma 1 and Coef0 0.
func DefaultKernels() []Kernel {
	return []Kernel{
		{Type: Linear, Degree: 2, Gamma: 1},
		{Type: Poly, Degree: 2, Gamma: 1},
		{Type: RBF, Degree: 2, Gamma: 1},
		{Type: Sigmoid, Degree: 2, Gamma: 1},
	}
}

// Name returns the kernel type name used in reports.
func (k Kernel) Name() string {
	return k.Type.String()
}

// Validate checks the parameters used by the kernel type.
func (k Kernel) Validate() error {
	switch k.Type {
	case Linear:
		return nil
	case Poly:
		if k.Degree <= 0 {
			return errors.NewValidationError("degree", "must be positive", k.Degree)
		}
	case RBF, Sigmoid:
	default:
		return errors.NewValidationError("kernel", "unknown kernel type", int(k.Type))
	}
	if k.Gamma <= 0 {
		return errors.NewValidationError("gamma", "must be positive", k.Gamma)
	}
	return nil
}

// Eval computes K(a, b). Both vectors must have the same length.
func (k Kernel) Eval(a, b []float64) float64 {
	switch k.Type {
	case Poly:
		return math.Pow(k.Gamma*floats.Dot(a, b)+k.Coef0, k.Degree)
	case RBF:
		d := floats.Distance(a, b, 2)
		return math.Exp(-k.Gamma * d * d)
	case Sigmoid:
		return math.Tanh(k.Gamma*floats.Dot(a, b) + k.Coef0)
	default:
		return floats.Dot(a, b)
	}
}
