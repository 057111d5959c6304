package elevmodel

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewElevatorValidation(t *testing.T) {
	if _, err := NewElevator(0, 1, 10, time.Millisecond, 0); err == nil {
		t.Error("Expected error for non-positive id, got nil")
	}
	if _, err := NewElevator(1, 10, 10, time.Millisecond, 0); err == nil {
		t.Error("Expected error for minFloor == maxFloor, got nil")
	}
	if _, err := NewElevator(1, 1, 10, 0, 0); err == nil {
		t.Error("Expected error for zero floor movement time, got nil")
	}
	if _, err := NewElevator(1, 1, 10, time.Millisecond, -time.Millisecond); err == nil {
		t.Error("Expected error for negative loading time, got nil")
	}

	elev, err := NewElevator(2, -3, 10, time.Millisecond, time.Millisecond)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if elev.CurrentFloor != elev.MinFloor {
		t.Errorf("Expected new elevator parked at MinFloor %d, got %d", elev.MinFloor, elev.CurrentFloor)
	}
	if elev.Status != ElevatorIdle || elev.Direction != DirectionIdle {
		t.Errorf("Expected new elevator to be Idle/Idle, got %s/%s", elev.Status, elev.Direction)
	}
}

func TestMoveToOutOfRange(t *testing.T) {
	elev, err := NewElevator(1, 1, 10, time.Millisecond, 0)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	for _, floor := range []int{0, 11, -5, 100} {
		if err := elev.MoveTo(floor); !errors.Is(err, ErrFloorOutOfRange) {
			t.Errorf("MoveTo(%d) = %v, expected ErrFloorOutOfRange", floor, err)
		}
		if elev.CurrentFloor != elev.MinFloor {
			t.Errorf("MoveTo(%d) mutated CurrentFloor to %d", floor, elev.CurrentFloor)
		}
	}

	if err := elev.MoveTo(7); err != nil {
		t.Errorf("MoveTo(7) = %v, expected nil", err)
	}
	if elev.CurrentFloor != 7 {
		t.Errorf("Expected CurrentFloor 7, got %d", elev.CurrentFloor)
	}
}

func TestNewElevatorRequest(t *testing.T) {
	if _, err := NewElevatorRequest(3, 3); !errors.Is(err, ErrEqualFloors) {
		t.Errorf("Expected ErrEqualFloors for equal floors, got %v", err)
	}

	req, err := NewElevatorRequest(3, 8)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if req.Direction() != DirectionUp {
		t.Errorf("Expected direction Up for 3->8, got %s", req.Direction())
	}
	if req.Status() != RequestPending {
		t.Errorf("Expected new request to be Pending, got %s", req.Status())
	}

	down, _ := NewElevatorRequest(8, 3)
	if down.Direction() != DirectionDown {
		t.Errorf("Expected direction Down for 8->3, got %s", down.Direction())
	}
}

func TestRequestStatusMachine(t *testing.T) {
	legal := []struct {
		from, to RequestStatus
	}{
		{RequestPending, RequestValidated},
		{RequestValidated, RequestAssigned},
		{RequestAssigned, RequestInProgress},
		{RequestInProgress, RequestCompleted},
		{RequestAssigned, RequestRetrying},
		{RequestInProgress, RequestRetrying},
		{RequestRetrying, RequestValidated},
		{RequestRetrying, RequestAssigned},
		{RequestPending, RequestFailed},
		{RequestInProgress, RequestCancelled},
	}
	for _, tc := range legal {
		if !tc.from.CanTransitionTo(tc.to) {
			t.Errorf("Expected %s -> %s to be legal", tc.from, tc.to)
		}
	}

	illegal := []struct {
		from, to RequestStatus
	}{
		{RequestPending, RequestAssigned},
		{RequestPending, RequestInProgress},
		{RequestValidated, RequestCompleted},
		{RequestCompleted, RequestFailed},
		{RequestFailed, RequestValidated},
		{RequestCancelled, RequestInProgress},
		{RequestCompleted, RequestCompleted},
	}
	for _, tc := range illegal {
		if tc.from.CanTransitionTo(tc.to) {
			t.Errorf("Expected %s -> %s to be illegal", tc.from, tc.to)
		}
	}
}

func TestTransitionRejectsTerminal(t *testing.T) {
	req, _ := NewElevatorRequest(1, 2)
	for _, status := range []RequestStatus{RequestValidated, RequestAssigned, RequestInProgress, RequestCompleted} {
		if _, err := req.Transition(status); err != nil {
			t.Fatalf("Transition(%s) = %v, expected nil", status, err)
		}
	}

	if _, err := req.Transition(RequestCompleted); err == nil {
		t.Error("Expected completing an already-Completed request to fail")
	}
	if _, err := req.Transition(RequestFailed); err == nil {
		t.Error("Expected failing a Completed request to be rejected")
	}
	if req.Status() != RequestCompleted {
		t.Errorf("Expected status to stay Completed, got %s", req.Status())
	}
}

// Of two goroutines racing a request toward a terminal state, exactly one
// transition applies.
func TestTransitionSingleWinner(t *testing.T) {
	req, _ := NewElevatorRequest(1, 2)
	for _, status := range []RequestStatus{RequestValidated, RequestAssigned, RequestInProgress} {
		if _, err := req.Transition(status); err != nil {
			t.Fatalf("Transition(%s) = %v, expected nil", status, err)
		}
	}

	var wins int32
	var wg sync.WaitGroup
	for _, status := range []RequestStatus{RequestCompleted, RequestFailed, RequestCancelled} {
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func(next RequestStatus) {
				defer wg.Done()
				if _, err := req.Transition(next); err == nil {
					atomic.AddInt32(&wins, 1)
				}
			}(status)
		}
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("Expected exactly one terminal transition to win, got %d", wins)
	}
	if !req.Status().Terminal() {
		t.Errorf("Expected a terminal status, got %s", req.Status())
	}
}

func TestDirectionString(t *testing.T) {
	directionArray := []Direction{DirectionUp, DirectionDown, DirectionIdle, Direction(99)}
	directionStringArray := []string{"Up", "Down", "Idle", "Undefined"}

	for index, direction := range directionArray {
		if direction.String() != directionStringArray[index] {
			t.Errorf("Direction.String() returned %v, expected %v", direction.String(), directionStringArray[index])
		}
	}
}

func TestRequestStatusString(t *testing.T) {
	statusArray := []RequestStatus{
		RequestPending, RequestValidated, RequestAssigned, RequestInProgress,
		RequestRetrying, RequestCompleted, RequestFailed, RequestCancelled, RequestStatus(99),
	}
	statusStringArray := []string{
		"Pending", "Validated", "Assigned", "InProgress",
		"Retrying", "Completed", "Failed", "Cancelled", "Undefined",
	}

	for index, status := range statusArray {
		if status.String() != statusStringArray[index] {
			t.Errorf("RequestStatus.String() returned %v, expected %v", status.String(), statusStringArray[index])
		}
	}
}
