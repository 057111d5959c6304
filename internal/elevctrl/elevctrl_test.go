package elevctrl

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/karsonchau/Elevator-System/internal/elevconfig"
	"github.com/karsonchau/Elevator-System/internal/elevevent"
	"github.com/karsonchau/Elevator-System/internal/elevmodel"
)

const TEST_DEADLINE = 5 * time.Second

func newTestConfig() elevconfig.Config {
	config := elevconfig.Default()
	config.MinFloor = 1
	config.MaxFloor = 5
	config.ElevatorCount = 1
	config.FloorMovementTime = time.Millisecond
	config.LoadingTime = time.Millisecond
	config.TimeoutCheckInterval = time.Millisecond
	return config
}

func newTestController(t *testing.T, config elevconfig.Config) *Controller {
	t.Helper()
	controller, err := NewController(config, elevevent.NewBus())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	return controller
}

func waitFor(condition func() bool) bool {
	deadline := time.Now().Add(TEST_DEADLINE)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return false
}

func TestNewControllerBuildsFleet(t *testing.T) {
	config := newTestConfig()
	config.ElevatorCount = 3
	controller := newTestController(t, config)

	snapshots := controller.GetElevatorStatus()
	if len(snapshots) != 3 {
		t.Fatalf("Expected 3 elevators, got %d", len(snapshots))
	}
	for index, snapshot := range snapshots {
		if snapshot.ID != index+1 {
			t.Errorf("Expected elevator id %d at position %d, got %d", index+1, index, snapshot.ID)
		}
		if snapshot.CurrentFloor != config.MinFloor {
			t.Errorf("Expected elevator %d parked at floor %d, got %d", snapshot.ID, config.MinFloor, snapshot.CurrentFloor)
		}
	}
}

func TestNewControllerRejectsBadConfig(t *testing.T) {
	config := newTestConfig()
	config.MinFloor = 10
	config.MaxFloor = 1
	if _, err := NewController(config, elevevent.NewBus()); err == nil {
		t.Error("Expected an error for an inverted floor range")
	}
}

func TestSubmitRequestEqualFloors(t *testing.T) {
	controller := newTestController(t, newTestConfig())

	id, err := controller.SubmitRequest(context.Background(), 3, 3)
	if err == nil {
		t.Error("Expected an error for equal floors")
	}
	if id != uuid.Nil {
		t.Errorf("Expected no request id, got %v", id)
	}
}

func TestSubmitRequestUncovered(t *testing.T) {
	controller := newTestController(t, newTestConfig())

	id, err := controller.SubmitRequest(context.Background(), 3, 50)
	if err == nil {
		t.Fatal("Expected a rejection for an uncovered destination")
	}
	request, err := controller.GetRequestStatus(id)
	if err != nil {
		t.Fatalf("Expected rejected request to be queryable, got %v", err)
	}
	if request.Status != elevmodel.RequestFailed {
		t.Errorf("Expected rejected request Failed, got %s", request.Status)
	}
}

func TestSubmitRequestAssigns(t *testing.T) {
	controller := newTestController(t, newTestConfig())

	id, err := controller.SubmitRequest(context.Background(), 2, 4)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	request, err := controller.GetRequestStatus(id)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if request.Status != elevmodel.RequestAssigned {
		t.Errorf("Expected request Assigned, got %s", request.Status)
	}
	if stats := controller.TrackerStats(); stats.Active != 1 {
		t.Errorf("Expected 1 tracked request, got %d", stats.Active)
	}
}

func TestGetRequestStatusUnknown(t *testing.T) {
	controller := newTestController(t, newTestConfig())
	if _, err := controller.GetRequestStatus(uuid.New()); err == nil {
		t.Error("Expected an error for an unknown request id")
	}
}

// Full pipeline: submit, run the elevator, observe completion.
func TestRequestServedEndToEnd(t *testing.T) {
	controller := newTestController(t, newTestConfig())

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	controller.Start(ctx, wg)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := controller.RunElevator(ctx, 1); err != nil {
			t.Errorf("RunElevator = %v, expected nil", err)
		}
	}()
	defer wg.Wait()
	defer cancel()

	id, err := controller.SubmitRequest(ctx, 2, 4)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	completed := func() bool {
		request, err := controller.GetRequestStatus(id)
		return err == nil && request.Status == elevmodel.RequestCompleted
	}
	if !waitFor(completed) {
		request, _ := controller.GetRequestStatus(id)
		t.Fatalf("Expected request Completed, got %s", request.Status)
	}

	parked := func() bool {
		snapshots := controller.GetElevatorStatus()
		if len(snapshots) != 1 {
			return false
		}
		return snapshots[0].CurrentFloor == 4 && snapshots[0].Status == elevmodel.ElevatorIdle
	}
	if !waitFor(parked) {
		t.Error("Expected elevator to end Idle at floor 4")
	}

	// Completion releases the request from timeout tracking right away.
	if !waitFor(func() bool { return controller.TrackerStats().Active == 0 }) {
		t.Errorf("Expected no active tracked requests after completion, got %d", controller.TrackerStats().Active)
	}
}

// With no elevator loop running, the tracker's sweep fails the request once
// it outlives the service timeout.
func TestRequestTimesOutWithoutService(t *testing.T) {
	config := newTestConfig()
	config.RequestTimeout = 10 * time.Millisecond
	controller := newTestController(t, config)

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	controller.Start(ctx, wg)
	defer wg.Wait()
	defer cancel()

	id, err := controller.SubmitRequest(ctx, 2, 4)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	failed := func() bool {
		request, err := controller.GetRequestStatus(id)
		return err == nil && request.Status == elevmodel.RequestFailed
	}
	if !waitFor(failed) {
		t.Fatal("Expected request to be failed by the timeout sweep")
	}
	if !waitFor(func() bool { return controller.TrackerStats().TimedOut == 1 }) {
		t.Errorf("Expected 1 timed out request, got %d", controller.TrackerStats().TimedOut)
	}
}

func TestSubmitBlocksOnFullQueue(t *testing.T) {
	controller := newTestController(t, newTestConfig())

	for i := 0; i < cap(controller.admission); i++ {
		controller.admission <- struct{}{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := controller.SubmitRequest(ctx, 2, 4); err == nil {
		t.Error("Expected submission to give up when the queue never drains")
	}
}

func TestElevatorSnapshotsAreCopies(t *testing.T) {
	controller := newTestController(t, newTestConfig())

	snapshots := controller.GetElevatorStatus()
	snapshots[0].CurrentFloor = 99

	again := controller.GetElevatorStatus()
	if again[0].CurrentFloor == 99 {
		t.Error("Expected snapshots to be independent copies")
	}
}
