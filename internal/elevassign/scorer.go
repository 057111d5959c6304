package elevassign

import (
	"github.com/tiendc/go-deepcopy"

	"github.com/karsonchau/Elevator-System/internal/elevmodel"
	"github.com/karsonchau/Elevator-System/internal/elevsched"
	"github.com/karsonchau/Elevator-System/internal/elevutils"
)

// Scorer ranks a candidate elevator for a request; lower is better.
type Scorer interface {
	Score(elevator *elevmodel.Elevator, schedule *elevsched.Schedule, request *elevmodel.ElevatorRequest) int
}

// DistanceScorer is the default: distance from the elevator to the pickup
// floor.
type DistanceScorer struct{}

func (DistanceScorer) Score(elevator *elevmodel.Elevator, _ *elevsched.Schedule, request *elevmodel.ElevatorRequest) int {
	return elevutils.Abs(request.CurrentFloor - elevator.CurrentFloor)
}

const DEFAULT_SWITCH_COST = 2

// ScanCostScorer charges plain distance when the elevator is already
// sweeping toward the pickup and has not passed it. Otherwise it simulates
// finishing the current sweep on a copy of the elevator and adds a fixed
// direction-switch cost.
type ScanCostScorer struct {
	SwitchCost int
}

func (s ScanCostScorer) Score(elevator *elevmodel.Elevator, schedule *elevsched.Schedule, request *elevmodel.ElevatorRequest) int {
	distance := elevutils.Abs(request.CurrentFloor - elevator.CurrentFloor)

	if elevator.Direction == elevmodel.DirectionIdle {
		return distance
	}
	if elevator.Direction == request.Direction() && pickupAhead(elevator, request) {
		return distance
	}

	simulated := new(elevmodel.Elevator)
	if err := deepcopy.Copy(simulated, elevator); err != nil {
		Log.Error().Msgf("Failed to copy elevator %d for scan-cost scoring: %v", elevator.ID, err)
		return distance + s.SwitchCost
	}

	edge := sweepEdge(simulated, schedule)
	sweepRemainder := elevutils.Abs(edge - simulated.CurrentFloor)
	if err := simulated.MoveTo(edge); err != nil {
		return distance + s.SwitchCost
	}

	return sweepRemainder + elevutils.Abs(request.CurrentFloor-simulated.CurrentFloor) + s.SwitchCost
}

func pickupAhead(elevator *elevmodel.Elevator, request *elevmodel.ElevatorRequest) bool {
	switch elevator.Direction {
	case elevmodel.DirectionUp:
		return request.CurrentFloor >= elevator.CurrentFloor
	case elevmodel.DirectionDown:
		return request.CurrentFloor <= elevator.CurrentFloor
	}
	return false
}

// sweepEdge is the last scheduled stop in the current direction, falling
// back to the range boundary when the schedule has nothing there.
func sweepEdge(elevator *elevmodel.Elevator, schedule *elevsched.Schedule) int {
	floors := schedule.Floors()
	switch elevator.Direction {
	case elevmodel.DirectionUp:
		for i := len(floors) - 1; i >= 0; i-- {
			if floors[i] > elevator.CurrentFloor {
				return floors[i]
			}
		}
		return elevator.CurrentFloor
	case elevmodel.DirectionDown:
		for _, floor := range floors {
			if floor < elevator.CurrentFloor {
				return floor
			}
		}
		return elevator.CurrentFloor
	}
	return elevator.CurrentFloor
}
