package elevmodel

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/karsonchau/Elevator-System/internal/logger"
)

var Log = logger.GetLogger()

var (
	ErrFloorOutOfRange = errors.New("floor outside elevator range")
	ErrEqualFloors     = errors.New("current and destination floors are equal")
)

type Elevator struct {
	ID           int            `json:"id"`
	CurrentFloor int            `json:"current_floor"`
	Direction    Direction      `json:"direction"`
	Status       ElevatorStatus `json:"status"`
	MinFloor     int            `json:"min_floor"`
	MaxFloor     int            `json:"max_floor"`

	FloorMovementTime time.Duration `json:"floor_movement_time"`
	LoadingTime       time.Duration `json:"loading_time"`
}

func NewElevator(id, minFloor, maxFloor int, floorMovementTime, loadingTime time.Duration) (*Elevator, error) {
	if id <= 0 {
		return nil, fmt.Errorf("elevator id must be positive, got %d", id)
	}
	if minFloor >= maxFloor {
		return nil, fmt.Errorf("minFloor %d must be below maxFloor %d", minFloor, maxFloor)
	}
	if floorMovementTime <= 0 {
		return nil, fmt.Errorf("floor movement time must be positive, got %v", floorMovementTime)
	}
	if loadingTime < 0 {
		return nil, fmt.Errorf("loading time must not be negative, got %v", loadingTime)
	}

	return &Elevator{
		ID:                id,
		CurrentFloor:      minFloor,
		Direction:         DirectionIdle,
		Status:            ElevatorIdle,
		MinFloor:          minFloor,
		MaxFloor:          maxFloor,
		FloorMovementTime: floorMovementTime,
		LoadingTime:       loadingTime,
	}, nil
}

// MoveTo rejects floors outside [MinFloor, MaxFloor] without touching
// CurrentFloor.
func (e *Elevator) MoveTo(floor int) error {
	if !e.InRange(floor) {
		return fmt.Errorf("%w: floor %d not in [%d, %d]", ErrFloorOutOfRange, floor, e.MinFloor, e.MaxFloor)
	}
	e.CurrentFloor = floor
	return nil
}

func (e *Elevator) InRange(floor int) bool {
	return floor >= e.MinFloor && floor <= e.MaxFloor
}

// Covers reports whether both endpoints of a trip lie inside this
// elevator's floor range.
func (e *Elevator) Covers(fromFloor, toFloor int) bool {
	return e.InRange(fromFloor) && e.InRange(toFloor)
}

func (e *Elevator) String() string {
	jsonData, err := json.Marshal(e)
	if err != nil {
		Log.Error().Msg("Error Serialising Elevator Object to JSON")
		return ""
	}
	return string(jsonData)
}
