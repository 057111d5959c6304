package elevstore

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/karsonchau/Elevator-System/internal/elevmodel"
)

var ErrNotFound = errors.New("not found")

// ElevatorStore is the published view of the fleet, keyed by elevator id
// and safe for concurrent use. It holds value copies: the movement engine
// owns the live Elevator instance and publishes changes through Update, so
// readers never share mutable state with the engine. GetAll returns
// elevators in ascending id order.
type ElevatorStore struct {
	mtx       sync.RWMutex
	elevators map[int]elevmodel.Elevator
}

func NewElevatorStore() *ElevatorStore {
	return &ElevatorStore{
		elevators: make(map[int]elevmodel.Elevator),
	}
}

func (s *ElevatorStore) Add(elevator *elevmodel.Elevator) error {
	if elevator == nil {
		return errors.New("cannot add nil elevator")
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, exists := s.elevators[elevator.ID]; exists {
		return fmt.Errorf("elevator %d already registered", elevator.ID)
	}
	s.elevators[elevator.ID] = *elevator
	return nil
}

func (s *ElevatorStore) GetByID(id int) (elevmodel.Elevator, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	elevator, exists := s.elevators[id]
	if !exists {
		return elevmodel.Elevator{}, fmt.Errorf("elevator %d: %w", id, ErrNotFound)
	}
	return elevator, nil
}

func (s *ElevatorStore) GetAll() []elevmodel.Elevator {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	all := make([]elevmodel.Elevator, 0, len(s.elevators))
	for _, elevator := range s.elevators {
		all = append(all, elevator)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

// Update is idempotent: re-storing the same elevator is not an error.
func (s *ElevatorStore) Update(elevator *elevmodel.Elevator) error {
	if elevator == nil {
		return errors.New("cannot update nil elevator")
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, exists := s.elevators[elevator.ID]; !exists {
		return fmt.Errorf("elevator %d: %w", elevator.ID, ErrNotFound)
	}
	s.elevators[elevator.ID] = *elevator
	return nil
}

// RequestStore is an in-memory repository keyed by request id, safe for
// concurrent use.
type RequestStore struct {
	mtx      sync.RWMutex
	requests map[uuid.UUID]*elevmodel.ElevatorRequest
}

func NewRequestStore() *RequestStore {
	return &RequestStore{
		requests: make(map[uuid.UUID]*elevmodel.ElevatorRequest),
	}
}

func (s *RequestStore) Add(request *elevmodel.ElevatorRequest) error {
	if request == nil {
		return errors.New("cannot add nil request")
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, exists := s.requests[request.ID]; exists {
		return fmt.Errorf("request %v already registered", request.ID)
	}
	s.requests[request.ID] = request
	return nil
}

func (s *RequestStore) GetByID(id uuid.UUID) (*elevmodel.ElevatorRequest, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	request, exists := s.requests[id]
	if !exists {
		return nil, fmt.Errorf("request %v: %w", id, ErrNotFound)
	}
	return request, nil
}

func (s *RequestStore) GetAll() []*elevmodel.ElevatorRequest {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	all := make([]*elevmodel.ElevatorRequest, 0, len(s.requests))
	for _, request := range s.requests {
		all = append(all, request)
	}
	return all
}

func (s *RequestStore) Update(request *elevmodel.ElevatorRequest) error {
	if request == nil {
		return errors.New("cannot update nil request")
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, exists := s.requests[request.ID]; !exists {
		return fmt.Errorf("request %v: %w", request.ID, ErrNotFound)
	}
	s.requests[request.ID] = request
	return nil
}
