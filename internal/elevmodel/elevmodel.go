package elevmodel

type Direction int

const (
	DirectionDown Direction = -1
	DirectionIdle Direction = 0
	DirectionUp   Direction = 1
)

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "Up"
	case DirectionDown:
		return "Down"
	case DirectionIdle:
		return "Idle"
	default:
		return "Undefined"
	}
}

func (d Direction) Opposite() Direction {
	switch d {
	case DirectionUp:
		return DirectionDown
	case DirectionDown:
		return DirectionUp
	default:
		return DirectionIdle
	}
}

type ElevatorStatus int

const (
	ElevatorIdle ElevatorStatus = iota
	ElevatorMoving
	ElevatorLoading
	ElevatorOutOfService
)

func (s ElevatorStatus) String() string {
	switch s {
	case ElevatorIdle:
		return "Idle"
	case ElevatorMoving:
		return "Moving"
	case ElevatorLoading:
		return "Loading"
	case ElevatorOutOfService:
		return "OutOfService"
	default:
		return "Undefined"
	}
}

type RequestStatus int

const (
	RequestPending RequestStatus = iota
	RequestValidated
	RequestAssigned
	RequestInProgress
	RequestRetrying
	RequestCompleted
	RequestFailed
	RequestCancelled
)

func (s RequestStatus) String() string {
	switch s {
	case RequestPending:
		return "Pending"
	case RequestValidated:
		return "Validated"
	case RequestAssigned:
		return "Assigned"
	case RequestInProgress:
		return "InProgress"
	case RequestRetrying:
		return "Retrying"
	case RequestCompleted:
		return "Completed"
	case RequestFailed:
		return "Failed"
	case RequestCancelled:
		return "Cancelled"
	default:
		return "Undefined"
	}
}

func (s RequestStatus) Terminal() bool {
	return s == RequestCompleted || s == RequestFailed || s == RequestCancelled
}

// CanTransitionTo encodes the request status machine. Failed and Cancelled
// are reachable from every non-terminal status.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	if s.Terminal() {
		return false
	}
	if next == RequestFailed || next == RequestCancelled {
		return true
	}
	switch s {
	case RequestPending:
		return next == RequestValidated
	case RequestValidated:
		return next == RequestAssigned
	case RequestAssigned:
		return next == RequestInProgress || next == RequestRetrying
	case RequestInProgress:
		return next == RequestCompleted || next == RequestRetrying
	case RequestRetrying:
		return next == RequestValidated || next == RequestAssigned
	}
	return false
}
