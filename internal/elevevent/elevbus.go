package elevevent

import (
	"sync"

	"github.com/karsonchau/Elevator-System/internal/logger"
)

var Log = logger.GetLogger()

const SUBSCRIBER_BUFFER_LENGTH = 64

// Bus is a fire-and-forget fan-out for observability events. Publishing
// never blocks the caller: a subscriber that cannot keep up loses events.
type Bus struct {
	mtx         sync.RWMutex
	subscribers []chan ElevatorEvent
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Subscribe() <-chan ElevatorEvent {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	channel := make(chan ElevatorEvent, SUBSCRIBER_BUFFER_LENGTH)
	b.subscribers = append(b.subscribers, channel)
	return channel
}

func (b *Bus) Publish(event ElevatorEvent) {
	b.mtx.RLock()
	defer b.mtx.RUnlock()

	for _, channel := range b.subscribers {
		select {
		case channel <- event:
		default:
			Log.Debug().Msgf("Dropping %v for slow subscriber", event.EventType())
		}
	}
}
