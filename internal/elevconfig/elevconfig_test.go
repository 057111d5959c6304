package elevconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v, expected nil", err)
	}
}

func TestQueueCapacity(t *testing.T) {
	config := Default()
	config.MinFloor = 1
	config.MaxFloor = 3 // 3 floors -> 6, below the minimum
	if config.QueueCapacity() != QUEUE_CAPACITY_MIN {
		t.Errorf("QueueCapacity() = %d, expected %d", config.QueueCapacity(), QUEUE_CAPACITY_MIN)
	}

	config.MaxFloor = 20 // 20 floors -> 40
	if config.QueueCapacity() != 40 {
		t.Errorf("QueueCapacity() = %d, expected 40", config.QueueCapacity())
	}
}

func TestLoadYamlFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "elevator.yaml")
	content := "min_floor: -2\nmax_floor: 15\nelevator_count: 4\nfloor_movement_ms: 250\nassignment_scorer: scancost\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Expected no error writing file, got %v", err)
	}

	config, err := Load(path)
	if err != nil {
		t.Fatalf("Load = %v, expected nil", err)
	}
	if config.MinFloor != -2 || config.MaxFloor != 15 {
		t.Errorf("Expected floor range [-2, 15], got [%d, %d]", config.MinFloor, config.MaxFloor)
	}
	if config.ElevatorCount != 4 {
		t.Errorf("Expected 4 elevators, got %d", config.ElevatorCount)
	}
	if config.FloorMovementTime != 250*time.Millisecond {
		t.Errorf("Expected 250ms floor movement, got %v", config.FloorMovementTime)
	}
	if config.AssignmentScorer != SCORER_SCANCOST {
		t.Errorf("Expected scancost scorer, got %v", config.AssignmentScorer)
	}
	// Untouched fields keep their defaults.
	if config.RequestTimeout != Default().RequestTimeout {
		t.Errorf("Expected default request timeout, got %v", config.RequestTimeout)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("ELEV_COUNT", "7")
	t.Setenv("ELEV_LOADING_MS", "123")

	config, err := Load("")
	if err != nil {
		t.Fatalf("Load = %v, expected nil", err)
	}
	if config.ElevatorCount != 7 {
		t.Errorf("Expected env to set elevator count 7, got %d", config.ElevatorCount)
	}
	if config.LoadingTime != 123*time.Millisecond {
		t.Errorf("Expected env to set loading time 123ms, got %v", config.LoadingTime)
	}
}

func TestEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("ELEV_COUNT", "not-a-number")

	config, err := Load("")
	if err != nil {
		t.Fatalf("Load = %v, expected nil", err)
	}
	if config.ElevatorCount != Default().ElevatorCount {
		t.Errorf("Expected default elevator count, got %d", config.ElevatorCount)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	bad := Default()
	bad.MinFloor = 5
	bad.MaxFloor = 5
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for min_floor == max_floor, got nil")
	}

	bad = Default()
	bad.ElevatorCount = 0
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for zero elevators, got nil")
	}

	bad = Default()
	bad.AssignmentScorer = "nearest"
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for unknown scorer, got nil")
	}

	bad = Default()
	bad.RequestTimeout = 0
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for zero request timeout, got nil")
	}

	bad = Default()
	bad.RetryBaseDelay = 0
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for zero retry base delay, got nil")
	}

	bad = Default()
	bad.RetryMaxDelay = bad.RetryBaseDelay / 2
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for max delay below base delay, got nil")
	}

	bad = Default()
	bad.BreakerFailureWindow = 0
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for zero breaker failure window, got nil")
	}

	bad = Default()
	bad.BreakerOpenDuration = 0
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for zero breaker open duration, got nil")
	}

	// Zero sweep intervals would panic the background tickers.
	bad = Default()
	bad.HealthCheckInterval = 0
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for zero health check interval, got nil")
	}

	bad = Default()
	bad.TimeoutCheckInterval = 0
	if err := bad.Validate(); err == nil {
		t.Error("Expected error for zero timeout check interval, got nil")
	}
}
