package elevctrl

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/karsonchau/Elevator-System/internal/elevassign"
	"github.com/karsonchau/Elevator-System/internal/elevconfig"
	"github.com/karsonchau/Elevator-System/internal/elevevent"
	"github.com/karsonchau/Elevator-System/internal/elevhealth"
	"github.com/karsonchau/Elevator-System/internal/elevlife"
	"github.com/karsonchau/Elevator-System/internal/elevmodel"
	"github.com/karsonchau/Elevator-System/internal/elevmotion"
	"github.com/karsonchau/Elevator-System/internal/elevretry"
	"github.com/karsonchau/Elevator-System/internal/elevsched"
	"github.com/karsonchau/Elevator-System/internal/elevstore"
	"github.com/karsonchau/Elevator-System/internal/elevtrack"
	"github.com/karsonchau/Elevator-System/internal/logger"
)

var Log = logger.GetLogger()

const (
	OP_ASSIGNMENT = "assignment"
	OP_MOVEMENT   = "movement"
)

// Controller is the composition root: it owns the fleet, the stores and the
// dispatch pipeline, and exposes submit/status/run operations to callers.
type Controller struct {
	config elevconfig.Config

	// fleet holds the live elevator instances. Each is owned by its
	// movement engine once RunElevator starts; everyone else reads the
	// copies the store publishes.
	fleet map[int]*elevmodel.Elevator

	elevators *elevstore.ElevatorStore
	requests  *elevstore.RequestStore
	board     *elevsched.Board
	resolver  *elevassign.Resolver
	lifecycle *elevlife.Manager
	policy    *elevretry.Policy
	tracker   *elevtrack.Tracker
	health    *elevhealth.Monitor
	bus       *elevevent.Bus

	// admission bounds concurrent submissions; a full queue blocks the
	// caller instead of dropping the request.
	admission chan struct{}
}

func NewController(config elevconfig.Config, bus *elevevent.Bus) (*Controller, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("error validating configuration: %w", err)
	}

	elevators := elevstore.NewElevatorStore()
	fleet := make(map[int]*elevmodel.Elevator, config.ElevatorCount)
	for id := 1; id <= config.ElevatorCount; id++ {
		elevator, err := elevmodel.NewElevator(id, config.MinFloor, config.MaxFloor, config.FloorMovementTime, config.LoadingTime)
		if err != nil {
			return nil, fmt.Errorf("error creating elevator %d: %w", id, err)
		}
		if err := elevators.Add(elevator); err != nil {
			return nil, fmt.Errorf("error registering elevator %d: %w", id, err)
		}
		fleet[id] = elevator
	}

	requests := elevstore.NewRequestStore()
	board := elevsched.NewBoard()
	lifecycle := elevlife.NewManager(requests, bus)

	var scorer elevassign.Scorer
	switch config.AssignmentScorer {
	case elevconfig.SCORER_SCANCOST:
		scorer = elevassign.ScanCostScorer{SwitchCost: elevassign.DEFAULT_SWITCH_COST}
	default:
		scorer = elevassign.DistanceScorer{}
	}

	breaker := elevretry.NewCircuitBreaker(config.BreakerFailureThreshold, config.BreakerFailureWindow, config.BreakerOpenDuration)
	policy := elevretry.NewPolicy(config.MaxRetryAttempts, config.RetryBaseDelay, config.RetryMaxDelay, breaker)
	tracker := elevtrack.NewTracker(requests, lifecycle, config.RequestTimeout, config.TimeoutCheckInterval)
	lifecycle.SetTracker(tracker)

	return &Controller{
		config:    config,
		fleet:     fleet,
		elevators: elevators,
		requests:  requests,
		board:     board,
		resolver:  elevassign.NewResolver(elevators, board, scorer, bus),
		lifecycle: lifecycle,
		policy:    policy,
		tracker:   tracker,
		health:    elevhealth.NewMonitor(policy, tracker, config.HealthCheckInterval),
		bus:       bus,
		admission: make(chan struct{}, config.QueueCapacity()),
	}, nil
}

// Start launches the background sweeps. Elevator loops are started
// separately through RunElevator, one per elevator.
func (c *Controller) Start(ctx context.Context, wg *sync.WaitGroup) {
	c.tracker.Start(ctx, wg)
	c.health.Start(ctx, wg)
	Log.Info().Msgf("Controller started with %d elevators serving floors %d to %d",
		c.config.ElevatorCount, c.config.MinFloor, c.config.MaxFloor)
}

// SubmitRequest validates and assigns a new request, retrying transient
// assignment failures under the retry policy. It blocks while the admission
// queue is full and honours context cancellation while waiting.
func (c *Controller) SubmitRequest(ctx context.Context, currentFloor, destinationFloor int) (uuid.UUID, error) {
	select {
	case c.admission <- struct{}{}:
	case <-ctx.Done():
		return uuid.Nil, fmt.Errorf("submission cancelled: %w", ctx.Err())
	}
	defer func() { <-c.admission }()

	request, err := elevmodel.NewElevatorRequest(currentFloor, destinationFloor)
	if err != nil {
		return uuid.Nil, err
	}
	if _, err := request.Transition(elevmodel.RequestValidated); err != nil {
		return uuid.Nil, err
	}
	if err := c.requests.Add(request); err != nil {
		return uuid.Nil, fmt.Errorf("error storing request: %w", err)
	}

	started := time.Now()
	for attempt := 1; ; attempt++ {
		result := c.resolver.Assign(request)
		switch result.Outcome {
		case elevassign.OutcomeAssigned:
			c.policy.RecordSuccess()
			c.health.RecordSuccess(OP_ASSIGNMENT, time.Since(started))
			c.tracker.Track(request)
			Log.Info().Msgf("Request %v (%d to %d) assigned to elevator %d",
				request.ID, currentFloor, destinationFloor, result.ElevatorID)
			return request.ID, nil

		case elevassign.OutcomeRejected:
			// Validation rejections can never succeed on retry; they do
			// not count against the circuit breaker.
			c.lifecycle.ForceFail(request, result.Reason)
			return request.ID, fmt.Errorf("request rejected: %v", result.Reason)

		default:
			c.policy.RecordFailure()
			c.health.RecordFailure(OP_ASSIGNMENT, result.Err)
			if !c.policy.ShouldRetry(request, attempt) {
				c.lifecycle.ForceFail(request, fmt.Sprintf("assignment failed after %d attempts", attempt))
				return request.ID, fmt.Errorf("error assigning request after %d attempts: %w", attempt, result.Err)
			}
			c.policy.RecordRetry()
			if err := c.rewind(request); err != nil {
				c.lifecycle.ForceFail(request, "assignment retry bookkeeping failed")
				return request.ID, err
			}
			delay := c.policy.CalculateDelay(attempt)
			Log.Warn().Msgf("Assignment of request %v failed (attempt %d), retrying in %v: %v",
				request.ID, attempt, delay, result.Err)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				c.lifecycle.ForceFail(request, "submission cancelled during retry backoff")
				return request.ID, fmt.Errorf("submission cancelled: %w", ctx.Err())
			}
		}
	}
}

// rewind takes a request back to Validated through Retrying so the next
// assignment attempt starts from a clean state.
func (c *Controller) rewind(request *elevmodel.ElevatorRequest) error {
	if request.Status() == elevmodel.RequestValidated {
		return nil
	}
	if _, err := request.Transition(elevmodel.RequestRetrying); err != nil {
		return fmt.Errorf("error marking request %v for retry: %w", request.ID, err)
	}
	if _, err := request.Transition(elevmodel.RequestValidated); err != nil {
		return fmt.Errorf("error revalidating request %v: %w", request.ID, err)
	}
	return nil
}

// GetRequestStatus returns a snapshot of the request, or ErrNotFound.
func (c *Controller) GetRequestStatus(id uuid.UUID) (elevmodel.RequestSnapshot, error) {
	request, err := c.requests.GetByID(id)
	if err != nil {
		return elevmodel.RequestSnapshot{}, err
	}
	return request.Snapshot(), nil
}

// GetElevatorStatus returns point-in-time copies of every elevator, in
// ascending id order.
func (c *Controller) GetElevatorStatus() []elevmodel.Elevator {
	return c.elevators.GetAll()
}

// RunElevator drives one elevator's movement loop until the context is
// cancelled or the elevator is forced out of service.
func (c *Controller) RunElevator(ctx context.Context, elevatorID int) error {
	elevator, ok := c.fleet[elevatorID]
	if !ok {
		return fmt.Errorf("elevator %d: %w", elevatorID, elevstore.ErrNotFound)
	}
	engine := elevmotion.NewEngine(elevator, c.board.Get(elevatorID), c.elevators, c.lifecycle, c.bus)
	if err := engine.Run(ctx); err != nil {
		c.health.RecordFailure(OP_MOVEMENT, err)
		return err
	}
	return nil
}

func (c *Controller) TrackerStats() elevtrack.Stats {
	return c.tracker.Stats()
}

func (c *Controller) RetryStats() elevretry.Stats {
	return c.policy.Stats()
}

func (c *Controller) Health() (elevhealth.Verdict, []string) {
	return c.health.Verdict()
}

func (c *Controller) IsHealthy() bool {
	return c.health.IsHealthy()
}

func (c *Controller) Config() elevconfig.Config {
	return c.config
}
