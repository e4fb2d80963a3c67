package core

import (
	"fmt"
	"sync"
)

// ModelLimiter caps the number of model calls a single run may make, which
// bounds tool-call loops. A max of 0 means unlimited.
type ModelLimiter struct {
	mu    sync.Mutex
	max   int
	count int
}

// NewModelLimiter returns a limiter allowing max calls.
func NewModelLimiter(max int) *ModelLimiter {
	return &ModelLimiter{max: max}
}

// Increment records a call and errors once the cap is exceeded.
func (ml *ModelLimiter) Increment() error {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	ml.count++
	if ml.max > 0 && ml.count > ml.max {
		return fmt.Errorf("exceeded max model calls: %d", ml.max)
	}

	return nil
}

// Count returns the number of recorded calls.
func (ml *ModelLimiter) Count() int {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	return ml.count
}

// Remaining returns the calls left, or -1 when unlimited.
func (ml *ModelLimiter) Remaining() int {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	if ml.max == 0 {
		return -1
	}

	return max(ml.max-ml.count, 0)
}
