package elevassign

import (
	"sync"

	"github.com/karsonchau/Elevator-System/internal/elevevent"
	"github.com/karsonchau/Elevator-System/internal/elevmodel"
	"github.com/karsonchau/Elevator-System/internal/elevsched"
	"github.com/karsonchau/Elevator-System/internal/elevstore"
	"github.com/karsonchau/Elevator-System/internal/logger"
)

var Log = logger.GetLogger()

type Outcome int

const (
	OutcomeAssigned Outcome = iota
	OutcomeRejected
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAssigned:
		return "Assigned"
	case OutcomeRejected:
		return "Rejected"
	case OutcomeFailed:
		return "Failed"
	default:
		return "Undefined"
	}
}

// Result is the tagged outcome of an assignment attempt. Rejected means the
// request can never succeed as submitted; Failed means a transient fault
// that may be retried.
type Result struct {
	Outcome    Outcome
	ElevatorID int
	Reason     string
	Err        error
}

const (
	REASON_NIL_REQUEST  = "request is nil"
	REASON_NO_ELEVATORS = "no elevator available"
	REASON_NOT_COVERED  = "no available elevator covers both floors"
)

// Resolver picks the serving elevator for a new request. The lock spans
// only the pick-and-insert critical section so two concurrent assignments
// cannot both act on the same stale distance ranking.
type Resolver struct {
	mtx       sync.Mutex
	elevators *elevstore.ElevatorStore
	board     *elevsched.Board
	scorer    Scorer
	bus       *elevevent.Bus
}

func NewResolver(elevators *elevstore.ElevatorStore, board *elevsched.Board, scorer Scorer, bus *elevevent.Bus) *Resolver {
	return &Resolver{
		elevators: elevators,
		board:     board,
		scorer:    scorer,
		bus:       bus,
	}
}

func (r *Resolver) Assign(request *elevmodel.ElevatorRequest) Result {
	if request == nil {
		return Result{Outcome: OutcomeRejected, Reason: REASON_NIL_REQUEST}
	}

	r.mtx.Lock()
	defer r.mtx.Unlock()

	// The store serves value copies; scoring works on a private snapshot of
	// the fleet.
	available := make([]elevmodel.Elevator, 0)
	for _, elevator := range r.elevators.GetAll() {
		if elevator.Status != elevmodel.ElevatorOutOfService {
			available = append(available, elevator)
		}
	}
	if len(available) == 0 {
		return Result{Outcome: OutcomeRejected, Reason: REASON_NO_ELEVATORS}
	}

	var best *elevmodel.Elevator
	bestScore := 0
	for i := range available {
		elevator := &available[i]
		if !elevator.Covers(request.CurrentFloor, request.DestinationFloor) {
			continue
		}
		score := r.scorer.Score(elevator, r.board.Get(elevator.ID), request)
		// GetAll is id-ascending, so strict less-than keeps the lowest id
		// on ties.
		if best == nil || score < bestScore {
			best = elevator
			bestScore = score
		}
	}
	if best == nil {
		return Result{Outcome: OutcomeRejected, Reason: REASON_NOT_COVERED}
	}

	if _, err := request.Transition(elevmodel.RequestAssigned); err != nil {
		return Result{Outcome: OutcomeFailed, Err: err}
	}
	r.board.Get(best.ID).Add(request)

	Log.Debug().Msgf("Assigned request %v to elevator %d (score %d)", request.ID, best.ID, bestScore)
	r.bus.Publish(elevevent.ElevatorEvent{Value: elevevent.AssignmentEvent{
		ElevatorID: best.ID,
		RequestID:  request.ID,
	}})

	return Result{Outcome: OutcomeAssigned, ElevatorID: best.ID}
}
