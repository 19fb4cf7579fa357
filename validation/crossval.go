package validation

import (
	"context"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/digitcv/core/parallel"
	"github.com/YuminosukeSato/digitcv/dataset"
	"github.com/YuminosukeSato/digitcv/metrics"
	"github.com/YuminosukeSato/digitcv/pkg/errors"
	"github.com/YuminosukeSato/digitcv/pkg/log"
	"github.com/YuminosukeSato/digitcv/svm"
)

type kernelRun struct {
	model    *svm.SVC
	accuracy float64
}

// CrossValidate trains one classifier per kernel on each of k contiguous
// folds of ds and records the validation accuracy in percent.
//
// Folds run in order. The first failure stops the run and is returned with
// the fold index and kernel name attached.
func CrossValidate(ctx context.Context, ds *dataset.Dataset, k int, kernels []svm.Kernel, opts ...Option) (*CVResult, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "cross-validation dataset")
	}
	if len(kernels) == 0 {
		return nil, errors.NewValueError("CrossValidate", "no kernels to evaluate")
	}
	kf, err := NewKFold(k)
	if err != nil {
		return nil, err
	}
	folds, err := kf.Split(ds.Len())
	if err != nil {
		return nil, err
	}

	o := resolve(opts)
	logger := o.logger.With(log.DescriptorKey, ds.Descriptor, log.FoldsKey, k)

	result := &CVResult{Kernels: make([]string, len(kernels))}
	for i, kern := range kernels {
		result.Kernels[i] = kern.Name()
	}

	for _, fold := range folds {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "fold %d", fold.Index)
		}

		start := time.Now()
		trainX, trainY, err := ds.Subset(fold.TrainIndices)
		if err != nil {
			return nil, errors.Wrapf(err, "fold %d", fold.Index)
		}
		testX, testY, err := ds.Subset(fold.TestIndices)
		if err != nil {
			return nil, errors.Wrapf(err, "fold %d", fold.Index)
		}

		run := func(_ context.Context, kern svm.Kernel) (kernelRun, error) {
			r, err := trainAndScore(trainX, trainY, testX, testY, kern, o.trainOptions())
			if err != nil {
				return kernelRun{}, errors.Wrapf(err, "fold %d, kernel %s", fold.Index, kern.Name())
			}
			return r, nil
		}

		var runs []kernelRun
		if o.parallelKernels {
			runs, err = parallel.Map(ctx, kernels, run, parallel.WithWorkers(o.workers))
			if err != nil {
				return nil, err
			}
		} else {
			runs = make([]kernelRun, len(kernels))
			for i, kern := range kernels {
				if runs[i], err = run(ctx, kern); err != nil {
					return nil, err
				}
			}
		}

		scores := FoldScores{
			Fold:       fold.Index,
			Train:      len(fold.TrainIndices),
			Validation: len(fold.TestIndices),
			Accuracy:   make([]float64, len(runs)),
		}
		models := make([]*svm.SVC, len(runs))
		for i, r := range runs {
			scores.Accuracy[i] = r.accuracy
			models[i] = r.model
			logger.Debug("Kernel scored",
				log.FoldKey, fold.Index,
				log.KernelKey, result.Kernels[i],
				log.AccuracyKey, r.accuracy,
				log.SupportVectorsKey, r.model.NumSupportVectors(),
			)
		}
		result.Folds = append(result.Folds, scores)
		result.Final = models

		logger.Info("Finished fold",
			log.PhaseKey, log.PhaseValidation,
			log.FoldKey, fold.Index,
			log.TrainSizeKey, scores.Train,
			log.ValidationSizeKey, scores.Validation,
			log.DurationMsKey, time.Since(start).Milliseconds(),
		)
	}
	return result, nil
}

func trainAndScore(trainX *mat.Dense, trainY []int, testX *mat.Dense, testY []int, kern svm.Kernel, opts []svm.Option) (kernelRun, error) {
	model, err := svm.Train(trainX, trainY, kern, opts...)
	if err != nil {
		return kernelRun{}, err
	}
	pred, err := model.PredictBatch(testX)
	if err != nil {
		return kernelRun{}, err
	}
	acc, err := metrics.AccuracyPercent(testY, pred)
	if err != nil {
		return kernelRun{}, err
	}
	return kernelRun{model: model, accuracy: acc}, nil
}
