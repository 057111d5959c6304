package elevmotion

import (
	"context"
	"fmt"
	"time"

	"github.com/karsonchau/Elevator-System/internal/elevevent"
	"github.com/karsonchau/Elevator-System/internal/elevlife"
	"github.com/karsonchau/Elevator-System/internal/elevmodel"
	"github.com/karsonchau/Elevator-System/internal/elevsched"
	"github.com/karsonchau/Elevator-System/internal/elevstore"
	"github.com/karsonchau/Elevator-System/internal/elevutils"
	"github.com/karsonchau/Elevator-System/internal/logger"
)

var Log = logger.GetLogger()

const (
	IDLE_POLL_INTERVAL     = 100 * time.Millisecond
	STORE_RETRY_ATTEMPTS   = 3
	STORE_RETRY_BASE_DELAY = 50 * time.Millisecond
)

// Engine drives one elevator through its scan-and-serve cycle: pick a
// direction, sweep floor by floor, stop where the schedule says, hand the
// stop to the lifecycle manager, reverse when the sweep is exhausted.
type Engine struct {
	elevator  *elevmodel.Elevator
	schedule  *elevsched.Schedule
	elevators *elevstore.ElevatorStore
	lifecycle *elevlife.Manager
	bus       *elevevent.Bus

	idlePollInterval time.Duration
}

func NewEngine(elevator *elevmodel.Elevator, schedule *elevsched.Schedule, elevators *elevstore.ElevatorStore, lifecycle *elevlife.Manager, bus *elevevent.Bus) *Engine {
	return &Engine{
		elevator:         elevator,
		schedule:         schedule,
		elevators:        elevators,
		lifecycle:        lifecycle,
		bus:              bus,
		idlePollInterval: IDLE_POLL_INTERVAL,
	}
}

// Run is the control loop. It returns nil on cancellation and an error only
// when the elevator has been forced out of service.
func (en *Engine) Run(ctx context.Context) error {
	Log.Info().Msgf("Movement engine for elevator %d started", en.elevator.ID)
	defer Log.Info().Msgf("Movement engine for elevator %d stopped", en.elevator.ID)

	for {
		if ctx.Err() != nil {
			return nil
		}

		if en.schedule.Len() == 0 {
			if err := en.park(ctx); err != nil {
				return en.failElevator(err)
			}
			en.sleep(ctx, en.idlePollInterval)
			continue
		}

		step := en.plan()
		switch step.kind {
		case stepLoad:
			if err := en.load(ctx, step.direction); err != nil {
				return en.failElevator(err)
			}
		case stepMove:
			if err := en.move(ctx, step.direction, step.target); err != nil {
				return en.failElevator(err)
			}
		case stepRecover:
			en.recover()
		}
	}
}

type stepKind int

const (
	stepLoad stepKind = iota
	stepMove
	stepRecover
)

type step struct {
	kind      stepKind
	direction elevmodel.Direction
	target    int
}

// plan decides the next action. Current sweep direction is kept while it
// still has work; otherwise the engine serves the current floor or
// reverses. With active requests but an empty floor set the bookkeeping is
// out of sync and the recovery path rebuilds it.
func (en *Engine) plan() step {
	direction := en.elevator.Direction
	if direction == elevmodel.DirectionIdle {
		direction = en.directionTowardClosest()
	}

	for _, d := range []elevmodel.Direction{direction, direction.Opposite()} {
		if d == elevmodel.DirectionIdle {
			break
		}
		if en.serveableHere(d) {
			return step{kind: stepLoad, direction: d}
		}
		if target, ok := en.nextStop(d); ok {
			if !en.elevator.InRange(target) {
				return step{kind: stepRecover}
			}
			return step{kind: stepMove, direction: d, target: target}
		}
	}
	return step{kind: stepRecover}
}

func (en *Engine) nextStop(direction elevmodel.Direction) (int, bool) {
	if direction == elevmodel.DirectionUp {
		return en.schedule.NextStopAbove(en.elevator.CurrentFloor)
	}
	return en.schedule.NextStopBelow(en.elevator.CurrentFloor)
}

// serveableHere reports whether stopping right now, sweeping the given
// direction, would drop off or pick up at least one request.
func (en *Engine) serveableHere(direction elevmodel.Direction) bool {
	floor := en.elevator.CurrentFloor
	for _, request := range en.schedule.Requests() {
		if request.Status() == elevmodel.RequestInProgress && request.DestinationFloor == floor {
			return true
		}
		if request.Status() == elevmodel.RequestAssigned && request.CurrentFloor == floor && request.Direction() == direction {
			return true
		}
	}
	return false
}

// directionTowardClosest points an idle elevator at the nearest floor still
// owing it work, preferring Up on equal distance.
func (en *Engine) directionTowardClosest() elevmodel.Direction {
	current := en.elevator.CurrentFloor
	bestDistance := -1
	var bestDirection elevmodel.Direction

	for _, request := range en.schedule.Requests() {
		floor := request.CurrentFloor
		if request.Status() == elevmodel.RequestInProgress {
			floor = request.DestinationFloor
		}
		distance := elevutils.Abs(floor - current)
		better := bestDistance == -1 || distance < bestDistance ||
			(distance == bestDistance && floor > current)
		if !better {
			continue
		}
		bestDistance = distance
		switch {
		case floor > current:
			bestDirection = elevmodel.DirectionUp
		case floor < current:
			bestDirection = elevmodel.DirectionDown
		default:
			bestDirection = request.Direction()
		}
	}
	return bestDirection
}

// move advances one floor at a time toward the target, committing and
// announcing the position after every single-floor hop. A cancellation
// mid-sleep commits nothing. The sweep stops early at any intermediate
// floor that has joined the service set since planning.
func (en *Engine) move(ctx context.Context, direction elevmodel.Direction, target int) error {
	en.elevator.Direction = direction
	en.elevator.Status = elevmodel.ElevatorMoving
	if err := en.persist(ctx); err != nil {
		return err
	}

	for en.elevator.CurrentFloor != target {
		if !en.sleep(ctx, en.elevator.FloorMovementTime) {
			return nil
		}
		next := en.elevator.CurrentFloor + int(direction)
		if err := en.elevator.MoveTo(next); err != nil {
			return err
		}
		if err := en.persist(ctx); err != nil {
			return err
		}

		Log.Debug().Msgf("Elevator %d at floor %d moving %s", en.elevator.ID, next, direction)
		en.bus.Publish(elevevent.ElevatorEvent{Value: elevevent.MovementEvent{
			ElevatorID: en.elevator.ID,
			Floor:      next,
			Direction:  direction,
		}})

		if en.schedule.Contains(next) {
			return nil
		}
	}
	return nil
}

// load dwells at the current floor while the lifecycle manager processes
// pickups and dropoffs. No action, no dwell.
func (en *Engine) load(ctx context.Context, direction elevmodel.Direction) error {
	en.elevator.Direction = direction
	en.elevator.Status = elevmodel.ElevatorLoading
	if err := en.persist(ctx); err != nil {
		return err
	}

	acted := en.lifecycle.ProcessStop(en.elevator, en.schedule)
	if acted {
		en.sleep(ctx, en.elevator.LoadingTime)
	}
	return nil
}

// recover resynchronises schedule bookkeeping: requests whose floors this
// elevator can never reach are failed instead of looped on, everything else
// gets its service floor rebuilt.
func (en *Engine) recover() {
	for _, request := range en.schedule.Requests() {
		if !en.elevator.Covers(request.CurrentFloor, request.DestinationFloor) {
			en.lifecycle.ForceFail(request, fmt.Sprintf("floors outside elevator %d range [%d, %d]",
				en.elevator.ID, en.elevator.MinFloor, en.elevator.MaxFloor))
		}
	}
	en.schedule.PruneTerminal()
}

func (en *Engine) park(ctx context.Context) error {
	if en.elevator.Status == elevmodel.ElevatorIdle && en.elevator.Direction == elevmodel.DirectionIdle {
		return nil
	}
	en.elevator.Status = elevmodel.ElevatorIdle
	en.elevator.Direction = elevmodel.DirectionIdle
	return en.persist(ctx)
}

// persist retries the repository update with a short exponential backoff
// before giving up; a final failure takes the elevator out of service.
func (en *Engine) persist(ctx context.Context) error {
	delay := STORE_RETRY_BASE_DELAY
	var err error
	for attempt := 0; attempt < STORE_RETRY_ATTEMPTS; attempt++ {
		if err = en.elevators.Update(en.elevator); err == nil {
			return nil
		}
		Log.Warn().Msgf("Error persisting elevator %d (attempt %d): %v", en.elevator.ID, attempt+1, err)
		if !en.sleep(ctx, delay) {
			return err
		}
		delay *= 2
	}
	return err
}

func (en *Engine) failElevator(cause error) error {
	en.elevator.Status = elevmodel.ElevatorOutOfService
	en.elevator.Direction = elevmodel.DirectionIdle
	if err := en.elevators.Update(en.elevator); err != nil {
		Log.Error().Msgf("Error recording elevator %d as out of service: %v", en.elevator.ID, err)
	}

	for _, request := range en.schedule.Requests() {
		en.lifecycle.ForceFail(request, fmt.Sprintf("elevator %d out of service", en.elevator.ID))
	}
	en.schedule.PruneTerminal()

	return fmt.Errorf("elevator %d out of service: %w", en.elevator.ID, cause)
}

// sleep waits the duration unless cancelled first; it reports whether the
// full wait elapsed.
func (en *Engine) sleep(ctx context.Context, duration time.Duration) bool {
	if duration <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
