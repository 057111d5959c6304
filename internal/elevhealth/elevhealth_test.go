package elevhealth

import (
	"errors"
	"testing"
	"time"

	"github.com/karsonchau/Elevator-System/internal/elevretry"
	"github.com/karsonchau/Elevator-System/internal/elevstore"
	"github.com/karsonchau/Elevator-System/internal/elevtrack"
)

func newTestMonitor() (*Monitor, *elevretry.Policy) {
	breaker := elevretry.NewCircuitBreaker(5, time.Minute, time.Minute)
	policy := elevretry.NewPolicy(3, time.Millisecond, time.Second, breaker)
	tracker := elevtrack.NewTracker(elevstore.NewRequestStore(), nil, time.Minute, time.Minute)
	return NewMonitor(policy, tracker, time.Minute), policy
}

func TestHealthyWithNoSamples(t *testing.T) {
	monitor, _ := newTestMonitor()
	monitor.check()

	verdict, issues := monitor.Verdict()
	if verdict != VerdictHealthy {
		t.Errorf("Expected Healthy, got %s with issues %v", verdict, issues)
	}
	if !monitor.IsHealthy() {
		t.Error("Expected IsHealthy to be true")
	}
}

func TestDegradedOnLowSuccessRate(t *testing.T) {
	monitor, _ := newTestMonitor()
	for i := 0; i < 17; i++ {
		monitor.RecordSuccess("assignment", time.Millisecond)
	}
	for i := 0; i < 3; i++ {
		monitor.RecordFailure("assignment", errors.New("store unavailable"))
	}
	monitor.check()

	verdict, issues := monitor.Verdict()
	if verdict != VerdictDegraded {
		t.Errorf("Expected Degraded at 85%% success, got %s", verdict)
	}
	if len(issues) != 1 {
		t.Errorf("Expected exactly 1 issue, got %v", issues)
	}
	if monitor.IsHealthy() {
		t.Error("Expected IsHealthy to be false")
	}
}

// A success rate under the critical threshold trips both rate checks.
func TestCriticalSuccessRateCountsTwice(t *testing.T) {
	monitor, _ := newTestMonitor()
	monitor.RecordSuccess("assignment", time.Millisecond)
	monitor.RecordFailure("assignment", errors.New("store unavailable"))
	monitor.check()

	verdict, issues := monitor.Verdict()
	if verdict != VerdictDegraded {
		t.Errorf("Expected Degraded, got %s", verdict)
	}
	if len(issues) != 2 {
		t.Errorf("Expected 2 issues at 50%% success, got %v", issues)
	}
}

func TestUnhealthyOnThreeIssues(t *testing.T) {
	monitor, policy := newTestMonitor()
	monitor.RecordSuccess("assignment", time.Millisecond)
	monitor.RecordFailure("assignment", errors.New("store unavailable"))
	for i := 0; i < 5; i++ {
		policy.RecordFailure()
	}
	monitor.check()

	verdict, issues := monitor.Verdict()
	if verdict != VerdictUnhealthy {
		t.Errorf("Expected Unhealthy with breaker open and low rate, got %s (%v)", verdict, issues)
	}
	if len(issues) != 3 {
		t.Errorf("Expected 3 issues, got %v", issues)
	}
}

func TestReport(t *testing.T) {
	monitor, _ := newTestMonitor()
	monitor.RecordSuccess("movement", 10*time.Millisecond)
	monitor.RecordSuccess("movement", 20*time.Millisecond)
	monitor.RecordFailure("movement", errors.New("motor jam"))

	reports := monitor.Report()
	if len(reports) != 1 {
		t.Fatalf("Expected 1 operation report, got %d", len(reports))
	}
	report := reports[0]
	if report.Operation != "movement" || report.Successes != 2 || report.Failures != 1 {
		t.Errorf("Unexpected report %+v", report)
	}
	if report.AvgDuration != 15*time.Millisecond {
		t.Errorf("Expected average duration 15ms, got %v", report.AvgDuration)
	}
	if report.LastErrorText != "motor jam" {
		t.Errorf("Expected last error text to be recorded, got %q", report.LastErrorText)
	}
}

func TestVerdictString(t *testing.T) {
	cases := map[Verdict]string{
		VerdictHealthy:   "Healthy",
		VerdictDegraded:  "Degraded",
		VerdictUnhealthy: "Unhealthy",
		Verdict(42):      "Unknown",
	}
	for verdict, expected := range cases {
		if verdict.String() != expected {
			t.Errorf("Expected %q, got %q", expected, verdict.String())
		}
	}
}
