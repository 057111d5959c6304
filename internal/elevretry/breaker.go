package elevretry

import (
	"sync"
	"time"
)

// CircuitBreaker keeps a rolling window of failure timestamps. It opens
// when the in-window failure count reaches the threshold, and closes again
// once the count drops back below threshold or the open duration elapses.
type CircuitBreaker struct {
	mtx sync.Mutex

	threshold    int
	window       time.Duration
	openDuration time.Duration

	failures []time.Time
	open     bool
	openedAt time.Time

	now func() time.Time //swappable for tests
}

func NewCircuitBreaker(threshold int, window, openDuration time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		threshold:    threshold,
		window:       window,
		openDuration: openDuration,
		now:          time.Now,
	}
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mtx.Lock()
	defer cb.mtx.Unlock()

	now := cb.now()
	cb.failures = append(cb.failures, now)
	cb.pruneLocked(now)

	if !cb.open && len(cb.failures) >= cb.threshold {
		cb.open = true
		cb.openedAt = now
		Log.Warn().Msgf("Circuit breaker opened after %d failures within %v", len(cb.failures), cb.window)
	}
}

func (cb *CircuitBreaker) RecordSuccess() {
	// Successes do not shrink the failure window; the breaker recovers by
	// time alone.
}

func (cb *CircuitBreaker) IsOpen() bool {
	cb.mtx.Lock()
	defer cb.mtx.Unlock()

	now := cb.now()
	cb.pruneLocked(now)

	if !cb.open {
		return false
	}
	if now.Sub(cb.openedAt) >= cb.openDuration {
		cb.open = false
		cb.failures = cb.failures[:0]
		Log.Info().Msgf("Circuit breaker closed after open duration %v", cb.openDuration)
		return false
	}
	if len(cb.failures) < cb.threshold {
		cb.open = false
		Log.Info().Msgf("Circuit breaker closed, failures fell below threshold %d", cb.threshold)
		return false
	}
	return true
}

func (cb *CircuitBreaker) pruneLocked(now time.Time) {
	cutoff := now.Add(-cb.window)
	kept := cb.failures[:0]
	for _, failure := range cb.failures {
		if failure.After(cutoff) {
			kept = append(kept, failure)
		}
	}
	cb.failures = kept
}
