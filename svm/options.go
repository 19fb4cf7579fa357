package svm

import "github.com/YuminosukeSato/digitcv/pkg/log"

const (
	defaultC         = 1.0
	defaultTolerance = 1e-3
	defaultCacheMB   = 100
	minMaxIter       = 100000
)

// Option configures an SVC.
type Option func(*SVC)

// WithC sets the box constraint of the dual variables.
func WithC(c float64) Option {
	return func(s *SVC) {
		s.c = c
	}
}

// WithTolerance sets the KKT gap at which SMO stops.
func WithTolerance(tol float64) Option {
	return func(s *SVC) {
		s.tol = tol
	}
}

// WithCacheSize sets the kernel row cache budget in megabytes.
func WithCacheSize(megabytes int) Option {
	return func(s *SVC) {
		s.cacheMB = megabytes
	}
}

// WithMaxIter caps SMO iterations. Values <= 0 select
// max(100*samples, 100000).
func WithMaxIter(n int) Option {
	return func(s *SVC) {
		s.maxIter = n
	}
}

// WithLogger sets the logger used during training.
func WithLogger(logger log.Logger) Option {
	return func(s *SVC) {
		s.logger = logger
	}
}
