package elevmodel

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ElevatorRequest is shared between the submitting caller, the serving
// elevator's loop and the timeout sweep, so its status is guarded by its
// own lock. Every other field is immutable after construction.
type ElevatorRequest struct {
	ID               uuid.UUID
	CurrentFloor     int
	DestinationFloor int
	RequestTime      time.Time

	mtx    sync.Mutex
	status RequestStatus
}

func NewElevatorRequest(currentFloor, destinationFloor int) (*ElevatorRequest, error) {
	if currentFloor == destinationFloor {
		return nil, fmt.Errorf("%w: floor %d", ErrEqualFloors, currentFloor)
	}

	return &ElevatorRequest{
		ID:               uuid.New(),
		CurrentFloor:     currentFloor,
		DestinationFloor: destinationFloor,
		RequestTime:      time.Now(),
		status:           RequestPending,
	}, nil
}

// Direction is derived: Up exactly when the destination lies above the
// pickup floor.
func (r *ElevatorRequest) Direction() Direction {
	if r.DestinationFloor > r.CurrentFloor {
		return DirectionUp
	}
	return DirectionDown
}

func (r *ElevatorRequest) Status() RequestStatus {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return r.status
}

// Transition atomically advances the status machine, refusing illegal
// edges. It returns the status held before the transition, so of two
// goroutines racing toward a terminal state exactly one wins.
func (r *ElevatorRequest) Transition(next RequestStatus) (RequestStatus, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	previous := r.status
	if !previous.CanTransitionTo(next) {
		return previous, fmt.Errorf("illegal request status transition %s -> %s", previous, next)
	}
	r.status = next
	return previous, nil
}

// RequestSnapshot is a point-in-time value copy handed to callers outside
// the dispatch core.
type RequestSnapshot struct {
	ID               uuid.UUID     `json:"id"`
	CurrentFloor     int           `json:"current_floor"`
	DestinationFloor int           `json:"destination_floor"`
	RequestTime      time.Time     `json:"request_time"`
	Status           RequestStatus `json:"status"`
}

func (r *ElevatorRequest) Snapshot() RequestSnapshot {
	return RequestSnapshot{
		ID:               r.ID,
		CurrentFloor:     r.CurrentFloor,
		DestinationFloor: r.DestinationFloor,
		RequestTime:      r.RequestTime,
		Status:           r.Status(),
	}
}

func (r *ElevatorRequest) String() string {
	jsonData, err := json.Marshal(r.Snapshot())
	if err != nil {
		Log.Error().Msg("Error Serialising ElevatorRequest Object to JSON")
		return ""
	}
	return string(jsonData)
}
