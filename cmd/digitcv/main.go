// Command digitcv cross-validates the linear, polynomial, rbf and sigmoid
// SVM kernels on HOG or LBP descriptors of binary digit images and scores
// the last fold's classifiers on held-out images.
//
// Usage:
//
//	digitcv [-histogram hog|lbp] [-fold 5] [-data mnist_data] [-holdout 50]
//
// Images are read from <data>/train/{zero,one} and <data>/test/{zero,one}
// unless the class directories are given explicitly.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/YuminosukeSato/digitcv/pipeline"
	"github.com/YuminosukeSato/digitcv/pkg/errors"
	"github.com/YuminosukeSato/digitcv/pkg/log"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg := pipeline.DefaultConfig()
	var (
		logLevel   string
		logConsole bool
	)

	fs := flag.NewFlagSet("digitcv", flag.ContinueOnError)
	fs.StringVar(&cfg.Descriptor, "histogram", cfg.Descriptor, "descriptor: hog or lbp")
	fs.StringVar(&cfg.Descriptor, "hist", cfg.Descriptor, "shorthand for -histogram")
	fs.IntVar(&cfg.Folds, "fold", cfg.Folds, "number of cross-validation folds")
	fs.IntVar(&cfg.Folds, "f", cfg.Folds, "shorthand for -fold")
	fs.StringVar(&cfg.DataDir, "data", cfg.DataDir, "root of the train/ and test/ class directories")
	fs.StringVar(&cfg.TrainZero, "train-zero", "", "training images of class 0 (default <data>/train/zero)")
	fs.StringVar(&cfg.TrainOne, "train-one", "", "training images of class 1 (default <data>/train/one)")
	fs.StringVar(&cfg.TestZero, "test-zero", "", "held-out images of class 0 (default <data>/test/zero)")
	fs.StringVar(&cfg.TestOne, "test-one", "", "held-out images of class 1 (default <data>/test/one)")
	fs.IntVar(&cfg.Holdout, "holdout", cfg.Holdout, "held-out images per class")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "worker pool size, 0 for one per CPU")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "time limit for each batch stage, 0 for none")
	fs.BoolVar(&cfg.ParallelKernels, "parallel-kernels", cfg.ParallelKernels, "train the kernels of a fold concurrently")
	fs.BoolVar(&cfg.Resize, "resize", cfg.Resize, "scale images to the descriptor window")
	fs.StringVar(&cfg.PlotPath, "plot", "", "write an accuracy bar chart to this file (.png, .svg, .pdf)")
	fs.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")
	fs.BoolVar(&logConsole, "log-console", false, "human-readable log output")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	if err := log.SetupLogger(logLevel, logConsole); err != nil {
		fmt.Fprintf(os.Stderr, "digitcv: %v\n", err)
		return 2
	}
	logger := log.GetLoggerWithName("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// a panic surfaces as a PanicError and exit code 1
	err := errors.SafeExecute("digitcv", func() error {
		_, err := pipeline.Run(ctx, cfg, os.Stdout)
		return err
	})
	if err != nil {
		logger.Error("Run failed", err)
		return 1
	}
	return 0
}
