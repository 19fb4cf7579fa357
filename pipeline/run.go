package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/YuminosukeSato/digitcv/dataset"
	"github.com/YuminosukeSato/digitcv/descriptor"
	"github.com/YuminosukeSato/digitcv/pkg/errors"
	"github.com/YuminosukeSato/digitcv/pkg/log"
	"github.com/YuminosukeSato/digitcv/svm"
	"github.com/YuminosukeSato/digitcv/validation"
)

// Report is the outcome of a run.
type Report struct {
	Descriptor string
	Features   int
	Samples    int
	Holdout    int
	CV         *validation.CVResult
	HeldOut    []validation.HoldoutScore
	Elapsed    time.Duration
}

// Run validates cfg, cross-validates the default kernel set on the training
// directories, scores the last fold's classifiers on the held-out images and
// writes the report to out. The plot is written when cfg.PlotPath is set.
func Run(ctx context.Context, cfg Config, out io.Writer) (*Report, error) {
	start := time.Now()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := log.GetLoggerWithName("pipeline")

	desc, err := descriptor.New(cfg.Descriptor)
	if err != nil {
		return nil, err
	}

	loaderOpts := []dataset.LoaderOption{
		dataset.WithWorkers(cfg.Workers),
		dataset.WithTimeout(cfg.Timeout),
		dataset.WithLogger(log.GetLoggerWithName("dataset")),
	}
	if cfg.Resize {
		loaderOpts = append(loaderOpts, dataset.WithResize(desc.Window()))
	}
	loader := dataset.NewLoader(desc, loaderOpts...)

	logger.Info("Loading training images",
		log.PhaseKey, log.PhasePreprocessing,
		log.DescriptorKey, desc.Name(),
	)
	ds, err := loader.Load(ctx, cfg.TrainClasses())
	if err != nil {
		return nil, errors.Wrap(err, "training set")
	}

	cvOpts := []validation.Option{
		validation.WithLogger(log.GetLoggerWithName("validation")),
		validation.WithWorkers(cfg.Workers),
		validation.WithSVMOptions(svm.WithLogger(log.GetLoggerWithName("svm"))),
	}
	if cfg.ParallelKernels {
		cvOpts = append(cvOpts, validation.WithParallelKernels())
	}

	logger.Info("Cross-validating",
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, ds.Len(),
		log.FoldsKey, cfg.Folds,
	)
	cv, err := validation.CrossValidate(ctx, ds, cfg.Folds, svm.DefaultKernels(), cvOpts...)
	if err != nil {
		return nil, err
	}

	heldOut, err := validation.EvaluateHoldout(ctx, loader, cfg.TestClasses(), cfg.Holdout, cv.Final,
		validation.WithLogger(log.GetLoggerWithName("validation")))
	if err != nil {
		return nil, err
	}

	report := &Report{
		Descriptor: desc.Name(),
		Features:   desc.Size(),
		Samples:    ds.Len(),
		Holdout:    cfg.Holdout,
		CV:         cv,
		HeldOut:    heldOut,
	}

	if cfg.PlotPath != "" {
		if err := SavePlot(report, cfg.PlotPath); err != nil {
			return nil, err
		}
		logger.Info("Plot written", log.PathKey, cfg.PlotPath)
	}

	report.Elapsed = time.Since(start)
	if err := WriteReport(out, report); err != nil {
		return nil, errors.Wrap(err, "write report")
	}
	return report, nil
}
