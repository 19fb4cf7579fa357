// Package digitcv evaluates support vector classifiers on binary digit
// images.
//
// Every training image is reduced to a fixed-length descriptor (HOG or LBP),
// and one classifier per kernel (linear, polynomial, rbf, sigmoid) is trained
// and scored with k-fold cross-validation. The classifiers of the last fold
// are then scored on a held-out sample.
//
// # Packages
//
//   - descriptor: the Descriptor contract, the tag registry and the HOG and
//     LBP implementations
//   - dataset: image decoding, sorted directory listing and the parallel
//     Loader that builds the feature matrix
//   - svm: kernels and the SMO-trained C-SVC
//   - validation: KFold, CrossValidate and EvaluateHoldout
//   - metrics: accuracy scores
//   - pipeline: run configuration, report and plot
//   - core/parallel: the ordered worker pool behind the batch stages
//   - pkg/errors, pkg/log: error types and structured logging
//
// # Quick Start
//
//	go run ./cmd/digitcv -histogram hog -fold 5 -data mnist_data
//
// The data directory holds train/zero, train/one, test/zero and test/one.
// From Go:
//
//	cfg := pipeline.DefaultConfig()
//	cfg.Descriptor = "lbp"
//	report, err := pipeline.Run(ctx, cfg, os.Stdout)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(report.CV.Mean("rbf"))
//
// Errors carry stack traces (cockroachdb/errors) and can be inspected with
// errors.Is and errors.As from pkg/errors, for example to detect a fold whose
// training split holds a single class:
//
//	if errors.Is(err, errors.ErrSingleClass) { ... }
package digitcv
