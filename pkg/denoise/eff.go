package denoise

import (
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

// Default parameters for EventFlowFilter.
const (
	DefaultEFFBufferSize     = 100
	DefaultEFFSearchRadius   = 1
	DefaultEFFFloatThreshold = 20.0
	DefaultEFFDuration       = 2000
)

// EventFlowFilter classifies an event as signal when the apparent optical
// flow speed fitted through its recent spatial neighbors, via a
// least-squares plane x,y -> t, falls at or below a speed threshold: slow
// apparent motion is consistent with a moving edge, while effectively
// infinite flow (too few neighbors, or a degenerate fit) is treated as
// noise. It keeps a bounded deque of recent candidate events, evicted
// both by capacity and by a time-to-live duration.
type EventFlowFilter struct {
	bufferSize     int
	searchRadius   int
	floatThreshold float64
	duration       int64

	buf *eventRing

	log *logrus.Entry
}

// NewEventFlowFilter constructs an EventFlowFilter. bufferSize bounds the
// candidate deque; searchRadius is the Chebyshev pixel radius considered
// spatially nearby; floatThreshold is the maximum fitted flow speed
// (pixels per millisecond) admitted as signal; duration is the maximum
// age, in microseconds, a candidate is kept regardless of buffer space.
func NewEventFlowFilter(bufferSize, searchRadius int, floatThreshold float64, duration int64) (*EventFlowFilter, error) {
	if bufferSize <= 0 {
		return nil, newConfigError("bufferSize", "must be positive")
	}
	if searchRadius < 0 {
		return nil, newConfigError("searchRadius", "must be non-negative")
	}
	if duration <= 0 {
		return nil, newConfigError("duration", "must be positive")
	}
	f := &EventFlowFilter{
		bufferSize:     bufferSize,
		searchRadius:   searchRadius,
		floatThreshold: floatThreshold,
		duration:       duration,
		log:            defaultEntry("eff"),
	}
	f.Initialize()
	return f, nil
}

// NewEventFlowFilterDefault builds an EventFlowFilter with the reference
// implementation's default buffer size, radius, threshold and duration.
func NewEventFlowFilterDefault() (*EventFlowFilter, error) {
	return NewEventFlowFilter(DefaultEFFBufferSize, DefaultEFFSearchRadius, DefaultEFFFloatThreshold, DefaultEFFDuration)
}

// Initialize refills the candidate deque with bufferSize zero-value
// sentinels.
func (f *EventFlowFilter) Initialize() {
	f.buf = newEventRing(f.bufferSize)
	f.log.WithFields(logrus.Fields{
		"bufferSize":     f.bufferSize,
		"searchRadius":   f.searchRadius,
		"floatThreshold": f.floatThreshold,
		"duration":       f.duration,
	}).Debug("initialized")
}

// fitEventFlow gathers spatially nearby, non-sentinel candidates from the
// deque and, when more than three are available, fits a plane t = a*x +
// b*y + c through them by least squares and derives a flow speed from its
// gradient. Fewer than four candidates, or a fit with a zero gradient
// component, yields +Inf: effectively infinite flow, always rejected by
// any finite floatThreshold.
func (f *EventFlowFilter) fitEventFlow(e Event) float64 {
	flow := math.Inf(1)

	var candidates []Event
	f.buf.forEach(func(stored Event) bool {
		if abs(int(e.X)-int(stored.X)) <= f.searchRadius &&
			abs(int(e.Y)-int(stored.Y)) <= f.searchRadius &&
			stored.T != 0 {
			candidates = append(candidates, stored)
		}
		return true
	})

	if len(candidates) <= 3 {
		return flow
	}

	n := len(candidates)
	a := mat.NewDense(n, 3, nil)
	b := mat.NewDense(n, 1, nil)
	for i, c := range candidates {
		a.Set(i, 0, float64(c.X))
		a.Set(i, 1, float64(c.Y))
		a.Set(i, 2, 1.0)
		b.Set(i, 0, (float64(c.T)-float64(e.T))*1e-3)
	}

	var x mat.Dense
	if err := x.Solve(a, b); err != nil {
		return flow
	}

	gx, gy := x.At(0, 0), x.At(1, 0)
	if gx != 0 && gy != 0 {
		flow = math.Sqrt(math.Pow(-1.0/gx, 2) + math.Pow(-1.0/gy, 2))
	}
	return flow
}

// Evaluate implements Filter.
func (f *EventFlowFilter) Evaluate(e Event) bool {
	flow := f.fitEventFlow(e)
	isSignal := flow <= f.floatThreshold

	for f.buf.len() > 0 && e.T-f.buf.front().T >= f.duration {
		f.buf.popFront()
	}
	if f.buf.full() {
		f.buf.popFront()
	}
	f.buf.pushBack(e)

	return isSignal
}
