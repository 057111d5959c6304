package elevhealth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/karsonchau/Elevator-System/internal/elevretry"
	"github.com/karsonchau/Elevator-System/internal/elevtrack"
	"github.com/karsonchau/Elevator-System/internal/logger"
)

var Log = logger.GetLogger()

const (
	SUCCESS_RATE_WARN      = 0.90
	SUCCESS_RATE_CRITICAL  = 0.80
	TIMED_OUT_LIMIT        = 10
	ACTIVE_HIGH_WATER_MARK = 50
	AVG_RESPONSE_CEILING   = 30 * time.Second
)

type Verdict int

const (
	VerdictHealthy Verdict = iota
	VerdictDegraded
	VerdictUnhealthy
)

func (v Verdict) String() string {
	switch v {
	case VerdictHealthy:
		return "Healthy"
	case VerdictDegraded:
		return "Degraded"
	case VerdictUnhealthy:
		return "Unhealthy"
	default:
		return "Unknown"
	}
}

type operationStats struct {
	successes     int64
	failures      int64
	totalDuration time.Duration
	lastError     error
}

// Monitor aggregates per-operation success/failure counters and derives an
// overall verdict from them, the circuit breaker, and the request tracker.
type Monitor struct {
	mtx sync.Mutex

	policy   *elevretry.Policy
	tracker  *elevtrack.Tracker
	interval time.Duration

	operations map[string]*operationStats

	verdict Verdict
	issues  []string
}

func NewMonitor(policy *elevretry.Policy, tracker *elevtrack.Tracker, interval time.Duration) *Monitor {
	return &Monitor{
		policy:     policy,
		tracker:    tracker,
		interval:   interval,
		operations: make(map[string]*operationStats),
	}
}

func (m *Monitor) RecordSuccess(operation string, duration time.Duration) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	stats := m.statsLocked(operation)
	stats.successes++
	stats.totalDuration += duration
}

func (m *Monitor) RecordFailure(operation string, err error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	stats := m.statsLocked(operation)
	stats.failures++
	stats.lastError = err
}

func (m *Monitor) statsLocked(operation string) *operationStats {
	stats, ok := m.operations[operation]
	if !ok {
		stats = &operationStats{}
		m.operations[operation] = stats
	}
	return stats
}

// Start runs the periodic health check until the context is cancelled.
func (m *Monitor) Start(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		Log.Info().Msg("Health monitor started")
		defer Log.Info().Msg("Health monitor stopped")

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.check()
			}
		}
	}()
}

// check recomputes the verdict. An internal error while computing health is
// itself a health failure, so a panic here yields Unhealthy rather than
// taking the process down.
func (m *Monitor) check() {
	defer func() {
		if r := recover(); r != nil {
			Log.Error().Msgf("Health check panicked: %v", r)
			m.mtx.Lock()
			m.verdict = VerdictUnhealthy
			m.issues = []string{fmt.Sprintf("internal error during health check: %v", r)}
			m.mtx.Unlock()
		}
	}()

	var issues []string
	if m.policy.IsCircuitBreakerOpen() {
		issues = append(issues, "circuit breaker is open")
	}

	rate := m.successRate()
	if rate < SUCCESS_RATE_WARN {
		issues = append(issues, fmt.Sprintf("success rate %.2f below %.2f", rate, SUCCESS_RATE_WARN))
	}
	if rate < SUCCESS_RATE_CRITICAL {
		issues = append(issues, fmt.Sprintf("success rate %.2f below %.2f", rate, SUCCESS_RATE_CRITICAL))
	}

	trackerStats := m.tracker.Stats()
	if trackerStats.TimedOut > TIMED_OUT_LIMIT {
		issues = append(issues, fmt.Sprintf("%d requests timed out", trackerStats.TimedOut))
	}
	if trackerStats.Active > ACTIVE_HIGH_WATER_MARK {
		issues = append(issues, fmt.Sprintf("%d active requests above high-water mark %d", trackerStats.Active, ACTIVE_HIGH_WATER_MARK))
	}
	if average := m.averageResponseTime(); average > AVG_RESPONSE_CEILING {
		issues = append(issues, fmt.Sprintf("average response time %v above %v", average, AVG_RESPONSE_CEILING))
	}

	verdict := VerdictHealthy
	switch {
	case len(issues) >= 3:
		verdict = VerdictUnhealthy
	case len(issues) >= 1:
		verdict = VerdictDegraded
	}

	m.mtx.Lock()
	previous := m.verdict
	m.verdict = verdict
	m.issues = issues
	m.mtx.Unlock()

	if verdict != previous {
		Log.Info().Msgf("Health verdict changed from %s to %s, issues: %v", previous, verdict, issues)
	}
}

func (m *Monitor) successRate() float64 {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	var successes, failures int64
	for _, stats := range m.operations {
		successes += stats.successes
		failures += stats.failures
	}
	total := successes + failures
	if total == 0 {
		return 1.0
	}
	return float64(successes) / float64(total)
}

func (m *Monitor) averageResponseTime() time.Duration {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	var successes int64
	var total time.Duration
	for _, stats := range m.operations {
		successes += stats.successes
		total += stats.totalDuration
	}
	if successes == 0 {
		return 0
	}
	return total / time.Duration(successes)
}

// Verdict returns the most recently computed verdict and its issues.
func (m *Monitor) Verdict() (Verdict, []string) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	issues := make([]string, len(m.issues))
	copy(issues, m.issues)
	return m.verdict, issues
}

func (m *Monitor) IsHealthy() bool {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.verdict == VerdictHealthy
}

type OperationReport struct {
	Operation     string
	Successes     int64
	Failures      int64
	AvgDuration   time.Duration
	LastErrorText string
}

// Report returns a per-operation breakdown for status output.
func (m *Monitor) Report() []OperationReport {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	reports := make([]OperationReport, 0, len(m.operations))
	for operation, stats := range m.operations {
		report := OperationReport{
			Operation: operation,
			Successes: stats.successes,
			Failures:  stats.failures,
		}
		if stats.successes > 0 {
			report.AvgDuration = stats.totalDuration / time.Duration(stats.successes)
		}
		if stats.lastError != nil {
			report.LastErrorText = stats.lastError.Error()
		}
		reports = append(reports, report)
	}
	return reports
}
