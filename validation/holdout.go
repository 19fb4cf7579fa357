package validation

import (
	"context"

	"github.com/YuminosukeSato/digitcv/dataset"
	"github.com/YuminosukeSato/digitcv/metrics"
	"github.com/YuminosukeSato/digitcv/pkg/errors"
	"github.com/YuminosukeSato/digitcv/pkg/log"
	"github.com/YuminosukeSato/digitcv/svm"
)

// HoldoutScore is the accuracy of one classifier on the held-out sample.
type HoldoutScore struct {
	Kernel   string
	Correct  int
	Total    int
	Accuracy float64
}

// EvaluateHoldout loads at most perClass images of every class with loader
// and scores each model on them. Scores follow the order of models.
func EvaluateHoldout(ctx context.Context, loader *dataset.Loader, classes []dataset.ClassDir, perClass int, models []*svm.SVC, opts ...Option) ([]HoldoutScore, error) {
	if perClass <= 0 {
		return nil, errors.NewValidationError("holdout", "must be positive", perClass)
	}
	if len(models) == 0 {
		return nil, errors.NewValueError("EvaluateHoldout", "no models to evaluate")
	}
	o := resolve(opts)

	ds, err := loader.LoadLimited(ctx, classes, perClass)
	if err != nil {
		return nil, errors.Wrap(err, "loading held-out images")
	}

	scores := make([]HoldoutScore, len(models))
	for i, m := range models {
		if m == nil {
			return nil, errors.NewValueError("EvaluateHoldout", "nil model")
		}
		name := m.Kernel().Name()
		pred, err := m.PredictBatch(ds.Features)
		if err != nil {
			return nil, errors.Wrapf(err, "held-out kernel %s", name)
		}
		correct, err := metrics.Correct(ds.Labels, pred)
		if err != nil {
			return nil, errors.Wrapf(err, "held-out kernel %s", name)
		}
		scores[i] = HoldoutScore{
			Kernel:   name,
			Correct:  correct,
			Total:    ds.Len(),
			Accuracy: 100 * errors.SafeDivide(float64(correct), float64(ds.Len())),
		}
		o.logger.Info("Held-out accuracy",
			log.PhaseKey, log.PhaseTesting,
			log.KernelKey, name,
			log.SamplesKey, ds.Len(),
			log.AccuracyKey, scores[i].Accuracy,
		)
	}
	return scores, nil
}
