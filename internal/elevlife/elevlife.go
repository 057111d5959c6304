package elevlife

import (
	"github.com/karsonchau/Elevator-System/internal/elevevent"
	"github.com/karsonchau/Elevator-System/internal/elevmodel"
	"github.com/karsonchau/Elevator-System/internal/elevsched"
	"github.com/karsonchau/Elevator-System/internal/elevstore"
	"github.com/karsonchau/Elevator-System/internal/logger"
)

var Log = logger.GetLogger()

// Tracker is notified when a request reaches a terminal status, so the
// timeout bookkeeping for it can be dropped right away instead of waiting
// for the next sweep.
type Tracker interface {
	StopTracking(request *elevmodel.ElevatorRequest)
}

// Manager applies pickup/dropoff rules at a stopped floor and owns request
// status transitions from there on.
type Manager struct {
	requests *elevstore.RequestStore
	bus      *elevevent.Bus
	tracker  Tracker
}

func NewManager(requests *elevstore.RequestStore, bus *elevevent.Bus) *Manager {
	return &Manager{
		requests: requests,
		bus:      bus,
	}
}

// SetTracker wires the terminal-status observer. Must be called before any
// elevator goroutine starts processing stops.
func (m *Manager) SetTracker(tracker Tracker) {
	m.tracker = tracker
}

// ProcessStop handles a stop at the elevator's current floor: dropoffs
// first, then pickups, then pruning. It reports whether any passenger
// action occurred, which decides whether the elevator dwells.
func (m *Manager) ProcessStop(elevator *elevmodel.Elevator, schedule *elevsched.Schedule) bool {
	floor := elevator.CurrentFloor
	acted := false

	for _, request := range schedule.Requests() {
		if request.Status() == elevmodel.RequestInProgress && request.DestinationFloor == floor {
			if m.complete(elevator, request) {
				acted = true
			}
		}
	}

	for _, request := range schedule.Requests() {
		if !m.canPickUp(elevator, request, floor) {
			continue
		}
		if m.pickUp(elevator, schedule, request) {
			acted = true
		}
	}

	schedule.PruneTerminal()
	return acted
}

// Pickup requires an assigned request waiting at this floor, travelling the
// way the elevator is sweeping, with its pickup not behind the sweep.
func (m *Manager) canPickUp(elevator *elevmodel.Elevator, request *elevmodel.ElevatorRequest, floor int) bool {
	if request.Status() != elevmodel.RequestAssigned || request.CurrentFloor != floor {
		return false
	}
	if request.Direction() != elevator.Direction {
		return false
	}
	switch elevator.Direction {
	case elevmodel.DirectionUp:
		return request.CurrentFloor >= elevator.CurrentFloor
	case elevmodel.DirectionDown:
		return request.CurrentFloor <= elevator.CurrentFloor
	}
	return false
}

func (m *Manager) pickUp(elevator *elevmodel.Elevator, schedule *elevsched.Schedule, request *elevmodel.ElevatorRequest) bool {
	previous, err := request.Transition(elevmodel.RequestInProgress)
	if err != nil {
		Log.Error().Msgf("Pickup of request %v refused: %v", request.ID, err)
		return false
	}
	schedule.InsertFloor(request.DestinationFloor)
	m.persist(request)

	Log.Info().Msgf("Elevator %d picked up request %v at floor %d", elevator.ID, request.ID, request.CurrentFloor)
	m.bus.Publish(elevevent.ElevatorEvent{Value: elevevent.PickupEvent{
		ElevatorID: elevator.ID,
		RequestID:  request.ID,
		Floor:      request.CurrentFloor,
	}})
	m.publishStatusChange(request, previous, elevmodel.RequestInProgress, "")
	return true
}

// complete is idempotent: a request that already reached a terminal status
// is left alone.
func (m *Manager) complete(elevator *elevmodel.Elevator, request *elevmodel.ElevatorRequest) bool {
	previous, err := request.Transition(elevmodel.RequestCompleted)
	if err != nil {
		Log.Debug().Msgf("Dropoff of request %v skipped: %v", request.ID, err)
		return false
	}
	m.persist(request)
	m.notifyTerminal(request)

	Log.Info().Msgf("Elevator %d dropped off request %v at floor %d", elevator.ID, request.ID, request.DestinationFloor)
	m.bus.Publish(elevevent.ElevatorEvent{Value: elevevent.DropoffEvent{
		ElevatorID: elevator.ID,
		RequestID:  request.ID,
		Floor:      request.DestinationFloor,
	}})
	m.publishStatusChange(request, previous, elevmodel.RequestCompleted, "")
	return true
}

// ForceFail moves a request to Failed with a reason. Terminal requests are
// left untouched.
func (m *Manager) ForceFail(request *elevmodel.ElevatorRequest, reason string) {
	previous, err := request.Transition(elevmodel.RequestFailed)
	if err != nil {
		return
	}
	m.persist(request)
	m.notifyTerminal(request)

	Log.Warn().Msgf("Request %v forced to Failed: %v", request.ID, reason)
	m.publishStatusChange(request, previous, elevmodel.RequestFailed, reason)
}

func (m *Manager) notifyTerminal(request *elevmodel.ElevatorRequest) {
	if m.tracker != nil {
		m.tracker.StopTracking(request)
	}
}

func (m *Manager) persist(request *elevmodel.ElevatorRequest) {
	if err := m.requests.Update(request); err != nil {
		Log.Error().Msgf("Error persisting request %v: %v", request.ID, err)
	}
}

func (m *Manager) publishStatusChange(request *elevmodel.ElevatorRequest, previous, current elevmodel.RequestStatus, reason string) {
	m.bus.Publish(elevevent.ElevatorEvent{Value: elevevent.StatusChangeEvent{
		RequestID: request.ID,
		From:      previous,
		To:        current,
		Reason:    reason,
	}})
}
