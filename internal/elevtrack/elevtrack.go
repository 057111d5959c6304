package elevtrack

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/karsonchau/Elevator-System/internal/elevmodel"
	"github.com/karsonchau/Elevator-System/internal/elevstore"
	"github.com/karsonchau/Elevator-System/internal/logger"
)

var Log = logger.GetLogger()

// Completion durations kept for the running average.
const COMPLETION_HISTORY_LENGTH = 100

// Failer forces a request into the Failed state. The lifecycle manager
// satisfies it.
type Failer interface {
	ForceFail(request *elevmodel.ElevatorRequest, reason string)
}

// Tracker watches every admitted request from admission until it reaches a
// terminal state, and force-fails the ones that exceed the service timeout.
type Tracker struct {
	mtx sync.Mutex

	requests *elevstore.RequestStore
	failer   Failer

	timeout       time.Duration
	checkInterval time.Duration

	active       map[uuid.UUID]time.Time
	completions  []time.Duration
	totalTracked int64
	timedOut     int64
}

func NewTracker(requests *elevstore.RequestStore, failer Failer, timeout, checkInterval time.Duration) *Tracker {
	return &Tracker{
		requests:      requests,
		failer:        failer,
		timeout:       timeout,
		checkInterval: checkInterval,
		active:        make(map[uuid.UUID]time.Time),
	}
}

// Track starts the service clock for a request. Tracking the same request
// twice does not reset its deadline.
func (t *Tracker) Track(request *elevmodel.ElevatorRequest) {
	if request == nil {
		return
	}
	t.mtx.Lock()
	defer t.mtx.Unlock()

	if _, ok := t.active[request.ID]; ok {
		return
	}
	t.active[request.ID] = time.Now()
	t.totalTracked++
}

// StopTracking ends the clock for a request that reached a terminal state.
// Completed requests contribute their duration to the completion history.
func (t *Tracker) StopTracking(request *elevmodel.ElevatorRequest) {
	if request == nil {
		return
	}
	t.mtx.Lock()
	defer t.mtx.Unlock()

	start, ok := t.active[request.ID]
	if !ok {
		return
	}
	delete(t.active, request.ID)

	if request.Status() == elevmodel.RequestCompleted {
		t.completions = append(t.completions, time.Since(start))
		if len(t.completions) > COMPLETION_HISTORY_LENGTH {
			t.completions = t.completions[1:]
		}
	}
}

// Start runs the timeout sweep until the context is cancelled.
func (t *Tracker) Start(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		Log.Info().Msg("Request tracker started")
		defer Log.Info().Msg("Request tracker stopped")

		ticker := time.NewTicker(t.checkInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.sweep()
			}
		}
	}()
}

// sweep walks every tracked request: entries that reached a terminal state
// stop being tracked, entries in flight longer than the timeout are forced
// to Failed.
func (t *Tracker) sweep() {
	t.mtx.Lock()
	now := time.Now()
	tracked := make(map[uuid.UUID]time.Time, len(t.active))
	for id, start := range t.active {
		tracked[id] = start
	}
	t.mtx.Unlock()

	for id, start := range tracked {
		request, err := t.requests.GetByID(id)
		if err != nil {
			Log.Warn().Msgf("Error looking up tracked request %s: %v", id, err)
			t.drop(id, false)
			continue
		}
		if request.Status().Terminal() {
			t.StopTracking(request)
			continue
		}
		if now.Sub(start) > t.timeout {
			Log.Warn().Msgf("Request %s timed out after %v", id, t.timeout)
			t.failer.ForceFail(request, "service timeout exceeded")
			t.drop(id, true)
		}
	}
}

func (t *Tracker) drop(id uuid.UUID, timedOut bool) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	delete(t.active, id)
	if timedOut {
		t.timedOut++
	}
}

type Stats struct {
	TotalTracked      int64
	Active            int
	TimedOut          int64
	ByStatus          map[elevmodel.RequestStatus]int
	AvgCompletionTime time.Duration
	OldestActiveStart time.Time
}

// Stats reports tracking counters plus a status breakdown of every request
// in the store.
func (t *Tracker) Stats() Stats {
	t.mtx.Lock()
	stats := Stats{
		TotalTracked: t.totalTracked,
		Active:       len(t.active),
		TimedOut:     t.timedOut,
		ByStatus:     make(map[elevmodel.RequestStatus]int),
	}
	if len(t.completions) > 0 {
		var total time.Duration
		for _, duration := range t.completions {
			total += duration
		}
		stats.AvgCompletionTime = total / time.Duration(len(t.completions))
	}
	for _, start := range t.active {
		if stats.OldestActiveStart.IsZero() || start.Before(stats.OldestActiveStart) {
			stats.OldestActiveStart = start
		}
	}
	t.mtx.Unlock()

	for _, request := range t.requests.GetAll() {
		stats.ByStatus[request.Status()]++
	}
	return stats
}
