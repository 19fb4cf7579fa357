// Package log defines standard attribute keys for digitcv runs.
//
// Keys follow a hierarchical naming convention (e.g. "ml.operation",
// "data.samples") so that log lines from the loader, the cross-validation
// harness and the classifier can be filtered together.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the classifier type, e.g. "SVC".
	ModelNameKey = "model.name"

	// KernelKey identifies the kernel configuration of a classifier.
	KernelKey = "model.kernel"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "score", "load", "describe"
	OperationKey = "ml.operation"

	// ComponentKey identifies the package emitting the record.
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the run.
	PhaseKey = "ml.phase"

	// DescriptorKey names the descriptor algorithm ("hog", "lbp").
	DescriptorKey = "ml.descriptor"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of samples in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the feature vector length.
	FeaturesKey = "data.features"

	// ClassesKey indicates the number of distinct labels.
	ClassesKey = "data.classes"

	// PathKey is a file or directory path.
	PathKey = "data.path"

	// BatchSizeKey indicates the number of items handed to a worker pool.
	BatchSizeKey = "data.batch_size"
)

// Cross-validation Context
const (
	// FoldKey is the 1-based fold index.
	FoldKey = "cv.fold"

	// FoldsKey is the total number of folds.
	FoldsKey = "cv.folds"

	// TrainSizeKey is the number of training samples of a fold.
	TrainSizeKey = "cv.train_size"

	// ValidationSizeKey is the number of validation samples of a fold.
	ValidationSizeKey = "cv.validation_size"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// AccuracyKey records accuracy as a percentage in [0, 100].
	AccuracyKey = "metrics.accuracy"

	// IterationKey records the number of optimizer iterations.
	IterationKey = "training.iteration"

	// SupportVectorsKey records the number of support vectors of a trained SVC.
	SupportVectorsKey = "training.support_vectors"
)

// Infrastructure and Environment
const (
	// WorkersKey records the size of a worker pool.
	WorkersKey = "infra.workers"
)

// Error Context
const (
	// ErrorKey holds the error message.
	ErrorKey = "error"

	// StacktraceKey contains stack trace information for debugging.
	StacktraceKey = "error.stacktrace"
)

// Standard attribute values.
const (
	OperationFit      = "fit"
	OperationPredict  = "predict"
	OperationScore    = "score"
	OperationLoad     = "load"
	OperationDescribe = "describe"

	PhaseTraining      = "training"
	PhaseValidation    = "validation"
	PhaseTesting       = "testing"
	PhasePreprocessing = "preprocessing"
)
