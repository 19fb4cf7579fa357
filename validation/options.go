package validation

import (
	"github.com/YuminosukeSato/digitcv/pkg/log"
	"github.com/YuminosukeSato/digitcv/svm"
)

type options struct {
	parallelKernels bool
	workers         int
	logger          log.Logger
	svmOptions      []svm.Option
}

// Option configures CrossValidate and EvaluateHoldout.
type Option func(*options)

// WithParallelKernels trains the kernels of each fold concurrently. Scores
// keep the declared kernel order.
func WithParallelKernels() Option {
	return func(o *options) {
		o.parallelKernels = true
	}
}

// WithWorkers bounds the number of kernels trained at once when parallel
// kernels are enabled. Values <= 0 use every CPU.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithLogger sets the logger for progress records.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithSVMOptions passes options to every trained classifier.
func WithSVMOptions(opts ...svm.Option) Option {
	return func(o *options) {
		o.svmOptions = append(o.svmOptions, opts...)
	}
}

func resolve(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.GetLoggerWithName("validation")
	}
	return o
}

func (o options) trainOptions() []svm.Option {
	return append([]svm.Option{svm.WithLogger(o.logger)}, o.svmOptions...)
}
