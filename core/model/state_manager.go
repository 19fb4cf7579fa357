package model

import (
	"sync"

	"github.com/YuminosukeSato/digitcv/pkg/errors"
)

// StateManager tracks whether a model has been fitted and the feature count
// it was fitted with. It is safe for concurrent use, so a fitted model can
// serve predictions from several goroutines.
type StateManager struct {
	mu        sync.RWMutex
	fitted    bool
	nFeatures int
}

// NewStateManager creates a StateManager in the not-fitted state.
func NewStateManager() *StateManager {
	return &StateManager{}
}

// IsFitted returns whether the model has been fitted.
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fitted
}

// SetFitted marks the model as fitted on rows of nFeatures columns.
func (s *StateManager) SetFitted(nFeatures int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted = true
	s.nFeatures = nFeatures
}

// Reset returns to the not-fitted state.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted = false
	s.nFeatures = 0
}

// RequireFitted returns a NotFittedError naming modelName and method when the
// model has not been fitted.
func (s *StateManager) RequireFitted(modelName, method string) error {
	if !s.IsFitted() {
		return errors.NewNotFittedError(modelName, method)
	}
	return nil
}

// CheckFeatures returns a DimensionError when n differs from the feature
// count seen during fitting.
func (s *StateManager) CheckFeatures(op string, n int) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n != s.nFeatures {
		return errors.NewDimensionError(op, s.nFeatures, n, 1)
	}
	return nil
}
