package elevretry

import (
	"math"
	"sync"
	"time"

	"github.com/karsonchau/Elevator-System/internal/elevmodel"
	"github.com/karsonchau/Elevator-System/internal/logger"
)

var Log = logger.GetLogger()

// Policy decides whether a failed operation may be retried and how long to
// back off. Successes and failures are recorded per attempted operation,
// feeding both the circuit breaker and the aggregate statistics.
type Policy struct {
	mtx sync.Mutex

	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	breaker     *CircuitBreaker

	totalFailures   int64
	totalSuccesses  int64
	totalRetries    int64
	lastFailureTime time.Time
}

func NewPolicy(maxAttempts int, baseDelay, maxDelay time.Duration, breaker *CircuitBreaker) *Policy {
	return &Policy{
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		maxDelay:    maxDelay,
		breaker:     breaker,
	}
}

func (p *Policy) ShouldRetry(request *elevmodel.ElevatorRequest, attempt int) bool {
	if request == nil {
		return false
	}
	if p.breaker.IsOpen() {
		return false
	}
	return attempt <= p.maxAttempts
}

// CalculateDelay is baseDelay * 2^(attempt-1), capped at maxDelay. An
// attempt number of 0 therefore yields half the base delay; callers rely
// on that exact value.
func (p *Policy) CalculateDelay(attempt int) time.Duration {
	delay := float64(p.baseDelay) * math.Pow(2, float64(attempt-1))
	if delay > float64(p.maxDelay) {
		return p.maxDelay
	}
	return time.Duration(delay)
}

func (p *Policy) RecordSuccess() {
	p.mtx.Lock()
	p.totalSuccesses++
	p.mtx.Unlock()

	p.breaker.RecordSuccess()
}

func (p *Policy) RecordFailure() {
	p.mtx.Lock()
	p.totalFailures++
	p.lastFailureTime = time.Now()
	p.mtx.Unlock()

	p.breaker.RecordFailure()
}

func (p *Policy) RecordRetry() {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	p.totalRetries++
}

func (p *Policy) IsCircuitBreakerOpen() bool {
	return p.breaker.IsOpen()
}

type Stats struct {
	TotalFailures   int64
	TotalSuccesses  int64
	TotalRetries    int64
	LastFailureTime time.Time
	SuccessRate     float64
}

func (p *Policy) Stats() Stats {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	stats := Stats{
		TotalFailures:   p.totalFailures,
		TotalSuccesses:  p.totalSuccesses,
		TotalRetries:    p.totalRetries,
		LastFailureTime: p.lastFailureTime,
	}
	total := p.totalSuccesses + p.totalFailures
	if total > 0 {
		stats.SuccessRate = float64(p.totalSuccesses) / float64(total)
	} else {
		stats.SuccessRate = 1.0
	}
	return stats
}
