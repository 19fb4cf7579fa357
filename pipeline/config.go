// Package pipeline wires the loader, the cross-validation harness and the
// held-out evaluation into one run and renders its report.
package pipeline

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/YuminosukeSato/digitcv/dataset"
	"github.com/YuminosukeSato/digitcv/descriptor"
	"github.com/YuminosukeSato/digitcv/pkg/errors"
)

// Config describes one evaluation run. Empty class directories are derived
// from DataDir as <DataDir>/{train,test}/{zero,one}.
type Config struct {
	Descriptor string
	Folds      int

	DataDir   string
	TrainZero string
	TrainOne  string
	TestZero  string
	TestOne   string

	// Holdout is the number of test images read per class.
	Holdout int

	// Workers bounds the batch pools; 0 uses every CPU.
	Workers int
	// Timeout bounds each batch stage; 0 disables it.
	Timeout         time.Duration
	ParallelKernels bool
	// Resize scales input images to the descriptor window.
	Resize bool

	// PlotPath, when set, receives a bar chart of the accuracies. The
	// extension selects the format.
	PlotPath string
}

var plotFormats = []string{".png", ".svg", ".pdf", ".eps", ".jpg", ".jpeg", ".tif", ".tiff"}

// DefaultConfig returns the settings used when no flags are given.
func DefaultConfig() Config {
	return Config{
		Descriptor: "hog",
		Folds:      5,
		DataDir:    "mnist_data",
		Holdout:    50,
	}
}

// Validate checks the configuration without touching the file system.
func (c Config) Validate() error {
	if !descriptor.IsRegistered(c.Descriptor) {
		return errors.NewValidationError("histogram",
			"unknown descriptor, expected one of "+strings.Join(descriptor.Tags(), ", "), c.Descriptor)
	}
	if c.Folds < 2 {
		return errors.NewValidationError("fold", "must be at least 2", c.Folds)
	}
	if c.Holdout <= 0 {
		return errors.NewValidationError("holdout", "must be positive", c.Holdout)
	}
	if c.Workers < 0 {
		return errors.NewValidationError("workers", "must not be negative", c.Workers)
	}
	if c.Timeout < 0 {
		return errors.NewValidationError("timeout", "must not be negative", c.Timeout)
	}
	for _, cd := range append(c.TrainClasses(), c.TestClasses()...) {
		if cd.Dir == "" {
			return errors.NewValidationError("data", "class directory is empty", cd.Label)
		}
	}
	if c.PlotPath != "" && !isPlotFormat(filepath.Ext(c.PlotPath)) {
		return errors.NewValidationError("plot",
			"unsupported extension, expected one of "+strings.Join(plotFormats, ", "), c.PlotPath)
	}
	return nil
}

// TrainClasses returns the training directories, label 0 first.
func (c Config) TrainClasses() []dataset.ClassDir {
	return []dataset.ClassDir{
		{Label: 0, Dir: c.dir(c.TrainZero, "train", "zero")},
		{Label: 1, Dir: c.dir(c.TrainOne, "train", "one")},
	}
}

// TestClasses returns the held-out directories, label 0 first.
func (c Config) TestClasses() []dataset.ClassDir {
	return []dataset.ClassDir{
		{Label: 0, Dir: c.dir(c.TestZero, "test", "zero")},
		{Label: 1, Dir: c.dir(c.TestOne, "test", "one")},
	}
}

func (c Config) dir(override, split, class string) string {
	if override != "" {
		return override
	}
	if c.DataDir == "" {
		return ""
	}
	return filepath.Join(c.DataDir, split, class)
}

func isPlotFormat(ext string) bool {
	ext = strings.ToLower(ext)
	for _, f := range plotFormats {
		if f == ext {
			return true
		}
	}
	return false
}
