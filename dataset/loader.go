package dataset

import (
	"context"
	"image"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/digitcv/core/parallel"
	"github.com/YuminosukeSato/digitcv/descriptor"
	"github.com/YuminosukeSato/digitcv/pkg/errors"
	"github.com/YuminosukeSato/digitcv/pkg/log"
)

// Loader reads class directories and turns every image into a feature
// vector with a shared Descriptor.
type Loader struct {
	descriptor descriptor.Descriptor
	source     ImageSource
	workers    int
	timeout    time.Duration
	logger     log.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithWorkers sets the worker pool size. Values <= 0 use every CPU.
func WithWorkers(n int) LoaderOption {
	return func(l *Loader) {
		l.workers = n
	}
}

// WithTimeout bounds each batch stage. Zero disables the timeout.
func WithTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) {
		l.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithImageSource replaces LoadGray.
func WithImageSource(src ImageSource) LoaderOption {
	return func(l *Loader) {
		l.source = src
	}
}

// WithResize scales every image to size before it is described.
func WithResize(size image.Point) LoaderOption {
	return func(l *Loader) {
		l.source = ResizingSource(size)
	}
}

// NewLoader creates a Loader computing features with d.
func NewLoader(d descriptor.Descriptor, opts ...LoaderOption) *Loader {
	l := &Loader{
		descriptor: d,
		source:     LoadGray,
		logger:     log.GetLoggerWithName("dataset"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Descriptor returns the descriptor used by the loader.
func (l *Loader) Descriptor() descriptor.Descriptor {
	return l.descriptor
}

// Load reads every image of every class.
func (l *Loader) Load(ctx context.Context, classes []ClassDir) (*Dataset, error) {
	return l.LoadLimited(ctx, classes, 0)
}

// LoadLimited reads at most perClass images of each class; perClass <= 0
// reads them all.
func (l *Loader) LoadLimited(ctx context.Context, classes []ClassDir, perClass int) (*Dataset, error) {
	paths, labels, err := Enumerate(classes, perClass)
	if err != nil {
		return nil, err
	}
	for _, c := range classes {
		found := false
		for _, lbl := range labels {
			if lbl == c.Label {
				found = true
				break
			}
		}
		if !found {
			l.logger.Warn("Class directory has no images", log.PathKey, c.Dir, "label", c.Label)
		}
	}
	return l.LoadPaths(ctx, paths, labels)
}

// LoadPaths loads the given images in two parallel stages: every image is
// decoded first, then every descriptor is computed. Row order follows paths.
func (l *Loader) LoadPaths(ctx context.Context, paths []string, labels []int) (*Dataset, error) {
	if len(paths) != len(labels) {
		return nil, errors.NewDimensionError("Loader.LoadPaths", len(paths), len(labels), 0)
	}
	if len(paths) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "no images found")
	}

	opts := []parallel.Option{parallel.WithWorkers(l.workers), parallel.WithTimeout(l.timeout)}
	logger := l.logger.With(log.DescriptorKey, l.descriptor.Name())

	start := time.Now()
	logger.Info("Loading images",
		log.OperationKey, log.OperationLoad,
		log.BatchSizeKey, len(paths),
		log.WorkersKey, parallel.Workers(len(paths), opts...),
	)

	images, err := parallel.Map(ctx, paths, func(_ context.Context, path string) (*image.Gray, error) {
		img, err := l.source(path)
		if err != nil {
			return nil, err
		}
		if img == nil {
			return nil, errors.NewValueError("Loader.LoadPaths", "image source returned no image for "+path)
		}
		return img, nil
	}, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "loading images")
	}

	logger.Info("Computing descriptors",
		log.OperationKey, log.OperationDescribe,
		log.SamplesKey, len(images),
		log.FeaturesKey, l.descriptor.Size(),
	)

	indices := make([]int, len(images))
	for i := range indices {
		indices[i] = i
	}
	size := l.descriptor.Size()
	vectors, err := parallel.Map(ctx, indices, func(_ context.Context, i int) ([]float64, error) {
		v, err := l.descriptor.Compute(images[i])
		if err != nil {
			return nil, errors.Wrapf(err, "describe %s", paths[i])
		}
		if len(v) != size {
			return nil, errors.Wrapf(errors.NewDimensionError(l.descriptor.Name(), size, len(v), 1), "describe %s", paths[i])
		}
		return v, nil
	}, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "computing descriptors")
	}

	features := mat.NewDense(len(vectors), size, nil)
	for i, v := range vectors {
		features.SetRow(i, v)
	}

	logger.Info("Descriptors ready",
		log.SamplesKey, len(vectors),
		log.ClassesKey, countLabels(labels),
		log.FeaturesKey, size,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)

	return New(features, append([]int(nil), labels...), append([]string(nil), paths...), l.descriptor.Name())
}

func countLabels(labels []int) int {
	seen := make(map[int]struct{})
	for _, l := range labels {
		seen[l] = struct{}{}
	}
	return len(seen)
}
