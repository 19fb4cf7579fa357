// Package dataset builds labelled feature matrices from class-partitioned
// image directories.
package dataset

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/digitcv/pkg/errors"
)

// Dataset is an ordered collection of feature vectors with aligned labels.
// Row i of Features, Labels[i] and Paths[i] describe the same image.
type Dataset struct {
	Features *mat.Dense
	Labels   []int
	Paths    []string
	// Descriptor is the tag of the algorithm that produced Features.
	Descriptor string
}

// New checks alignment and wraps the given data.
func New(features *mat.Dense, labels []int, paths []string, descriptorTag string) (*Dataset, error) {
	if features == nil {
		return nil, errors.Wrap(errors.ErrEmptyData, "dataset features")
	}
	rows, _ := features.Dims()
	if rows != len(labels) {
		return nil, errors.NewDimensionError("dataset.New", rows, len(labels), 0)
	}
	if paths != nil && len(paths) != rows {
		return nil, errors.NewDimensionError("dataset.New", rows, len(paths), 0)
	}
	return &Dataset{Features: features, Labels: labels, Paths: paths, Descriptor: descriptorTag}, nil
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.Labels)
}

// Dim returns the feature vector length.
func (d *Dataset) Dim() int {
	_, c := d.Features.Dims()
	return c
}

// Row returns a copy of the feature vector of sample i.
func (d *Dataset) Row(i int) []float64 {
	return mat.Row(nil, i, d.Features)
}

// Subset copies the rows at indices, in the given order, with their labels.
func (d *Dataset) Subset(indices []int) (*mat.Dense, []int, error) {
	if len(indices) == 0 {
		return nil, nil, errors.Wrap(errors.ErrEmptyData, "dataset subset")
	}
	n := d.Len()
	x := mat.NewDense(len(indices), d.Dim(), nil)
	y := make([]int, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= n {
			return nil, nil, errors.NewValueError("Dataset.Subset", "index out of range")
		}
		x.SetRow(i, d.Features.RawRowView(idx))
		y[i] = d.Labels[idx]
	}
	return x, y, nil
}

// ClassCounts returns the number of samples per label.
func (d *Dataset) ClassCounts() map[int]int {
	counts := make(map[int]int)
	for _, l := range d.Labels {
		counts[l]++
	}
	return counts
}
