package elevsched

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/karsonchau/Elevator-System/internal/elevmodel"
)

// Schedule is the scheduling state owned by a single elevator: its active
// request set and the sorted set of floors currently needing a stop. All
// access goes through the schedule's own lock; there is no lock shared
// between elevators.
type Schedule struct {
	mtx    sync.Mutex
	active map[uuid.UUID]*elevmodel.ElevatorRequest
	floors []int //ascending, no duplicates
}

func NewSchedule() *Schedule {
	return &Schedule{
		active: make(map[uuid.UUID]*elevmodel.ElevatorRequest),
	}
}

// Add inserts an assigned request and marks its pickup floor as needing
// service.
func (s *Schedule) Add(request *elevmodel.ElevatorRequest) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.active[request.ID] = request
	s.insertFloorLocked(request.CurrentFloor)
}

func (s *Schedule) InsertFloor(floor int) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.insertFloorLocked(floor)
}

func (s *Schedule) insertFloorLocked(floor int) {
	index := sort.SearchInts(s.floors, floor)
	if index < len(s.floors) && s.floors[index] == floor {
		return
	}
	s.floors = append(s.floors, 0)
	copy(s.floors[index+1:], s.floors[index:])
	s.floors[index] = floor
}

func (s *Schedule) removeFloorLocked(floor int) {
	index := sort.SearchInts(s.floors, floor)
	if index < len(s.floors) && s.floors[index] == floor {
		s.floors = append(s.floors[:index], s.floors[index+1:]...)
	}
}

func (s *Schedule) Len() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return len(s.active)
}

func (s *Schedule) Contains(floor int) bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	index := sort.SearchInts(s.floors, floor)
	return index < len(s.floors) && s.floors[index] == floor
}

// Requests returns a point-in-time copy of the active set.
func (s *Schedule) Requests() []*elevmodel.ElevatorRequest {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	requests := make([]*elevmodel.ElevatorRequest, 0, len(s.active))
	for _, request := range s.active {
		requests = append(requests, request)
	}
	return requests
}

func (s *Schedule) Floors() []int {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	floors := make([]int, len(s.floors))
	copy(floors, s.floors)
	return floors
}

// NextStopAbove returns the smallest service floor strictly above current.
func (s *Schedule) NextStopAbove(current int) (int, bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	index := sort.SearchInts(s.floors, current+1)
	if index < len(s.floors) {
		return s.floors[index], true
	}
	return 0, false
}

// NextStopBelow returns the largest service floor strictly below current.
func (s *Schedule) NextStopBelow(current int) (int, bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	index := sort.SearchInts(s.floors, current)
	if index > 0 {
		return s.floors[index-1], true
	}
	return 0, false
}

func (s *Schedule) StopsAbove(current int) bool {
	_, ok := s.NextStopAbove(current)
	return ok
}

func (s *Schedule) StopsBelow(current int) bool {
	_, ok := s.NextStopBelow(current)
	return ok
}

// PruneTerminal drops terminal requests from the active set and rebuilds
// the service floors from what remains: pickups for requests not yet on
// board, destinations for requests in progress. A floor stays exactly as
// long as one non-terminal request still references it.
func (s *Schedule) PruneTerminal() {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for id, request := range s.active {
		if request.Status().Terminal() {
			delete(s.active, id)
		}
	}

	s.floors = s.floors[:0]
	for _, request := range s.active {
		if request.Status() == elevmodel.RequestInProgress {
			s.insertFloorLocked(request.DestinationFloor)
		} else {
			s.insertFloorLocked(request.CurrentFloor)
		}
	}
}

// Board holds one schedule per elevator id.
type Board struct {
	mtx       sync.RWMutex
	schedules map[int]*Schedule
}

func NewBoard() *Board {
	return &Board{
		schedules: make(map[int]*Schedule),
	}
}

func (b *Board) Get(elevatorID int) *Schedule {
	b.mtx.RLock()
	schedule, exists := b.schedules[elevatorID]
	b.mtx.RUnlock()
	if exists {
		return schedule
	}

	b.mtx.Lock()
	defer b.mtx.Unlock()
	if schedule, exists := b.schedules[elevatorID]; exists {
		return schedule
	}
	schedule = NewSchedule()
	b.schedules[elevatorID] = schedule
	return schedule
}
