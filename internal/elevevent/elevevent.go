package elevevent

import (
	"github.com/google/uuid"

	"github.com/karsonchau/Elevator-System/internal/elevmodel"
)

type ElevatorEvent struct {
	//Golang doesnt support union types,
	//so we have to pass any of the below
	//structs
	Value any
}

type MovementEvent struct {
	ElevatorID int
	Floor      int
	Direction  elevmodel.Direction
}

type PickupEvent struct {
	ElevatorID int
	RequestID  uuid.UUID
	Floor      int
}

type DropoffEvent struct {
	ElevatorID int
	RequestID  uuid.UUID
	Floor      int
}

type AssignmentEvent struct {
	ElevatorID int
	RequestID  uuid.UUID
}

type StatusChangeEvent struct {
	RequestID uuid.UUID
	From      elevmodel.RequestStatus
	To        elevmodel.RequestStatus
	Reason    string
}

func (e *ElevatorEvent) EventType() string {
	switch e.Value.(type) {
	case MovementEvent:
		return "MovementEvent"
	case PickupEvent:
		return "PickupEvent"
	case DropoffEvent:
		return "DropoffEvent"
	case AssignmentEvent:
		return "AssignmentEvent"
	case StatusChangeEvent:
		return "StatusChangeEvent"
	default:
		return "UnknownEvent"
	}
}
