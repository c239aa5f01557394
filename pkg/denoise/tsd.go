package denoise

import (
	"math"

	"github.com/sirupsen/logrus"
)

// Default parameters for TimeSurfaceDenoisor.
const (
	DefaultTSDDecay          = 20000
	DefaultTSDSearchRadius   = 1
	DefaultTSDFloatThreshold = 0.2
)

// TimeSurfaceDenoisor classifies an event as signal when the average
// exponentially-decayed recency of same-polarity activity in its square
// neighborhood clears a threshold. It keeps two per-pixel time surfaces,
// one per polarity, each storing the last timestamp written there (0
// meaning never written).
type TimeSurfaceDenoisor struct {
	geometry       Geometry
	decay          float64
	searchRadius   int
	floatThreshold float64

	pos []int64
	neg []int64

	log *logrus.Entry
}

// NewTimeSurfaceDenoisor constructs a TimeSurfaceDenoisor. decay is the
// exponential time constant in microseconds; searchRadius is the
// Chebyshev radius of the neighborhood averaged over; floatThreshold is
// the minimum average decayed-recency score required to classify as
// signal.
func NewTimeSurfaceDenoisor(geometry Geometry, decay float64, searchRadius int, floatThreshold float64) (*TimeSurfaceDenoisor, error) {
	if decay <= 0 {
		return nil, newConfigError("decay", "must be positive")
	}
	if searchRadius < 0 {
		return nil, newConfigError("searchRadius", "must be non-negative")
	}
	f := &TimeSurfaceDenoisor{
		geometry:       geometry,
		decay:          decay,
		searchRadius:   searchRadius,
		floatThreshold: floatThreshold,
		log:            defaultEntry("tsd"),
	}
	f.Initialize()
	return f, nil
}

// NewTimeSurfaceDenoisorDefault builds a TimeSurfaceDenoisor with the
// reference implementation's default decay, radius and threshold.
func NewTimeSurfaceDenoisorDefault(geometry Geometry) (*TimeSurfaceDenoisor, error) {
	return NewTimeSurfaceDenoisor(geometry, DefaultTSDDecay, DefaultTSDSearchRadius, DefaultTSDFloatThreshold)
}

// Initialize clears both polarity time surfaces to unwritten (0).
func (f *TimeSurfaceDenoisor) Initialize() {
	n := f.geometry.size()
	f.pos = make([]int64, n)
	f.neg = make([]int64, n)
	f.log.WithFields(logrus.Fields{
		"decay":          f.decay,
		"searchRadius":   f.searchRadius,
		"floatThreshold": f.floatThreshold,
	}).Debug("initialized")
}

// Evaluate implements Filter.
func (f *TimeSurfaceDenoisor) Evaluate(e Event) bool {
	surface := f.neg
	if e.Polarity == 1 {
		surface = f.pos
	}

	support := 0
	diffTime := 0.0
	x, y := int(e.X), int(e.Y)
	for dx := -f.searchRadius; dx <= f.searchRadius; dx++ {
		for dy := -f.searchRadius; dy <= f.searchRadius; dy++ {
			nx, ny := x+dx, y+dy
			if !f.geometry.InBounds(nx, ny) {
				continue
			}
			neighborTS := surface[f.geometry.index(nx, ny)]
			if neighborTS == 0 {
				continue
			}
			diffTime += math.Exp(float64(neighborTS-e.T) / f.decay)
			support++
		}
	}

	surfaceVal := 0.0
	if support > 0 {
		surfaceVal = diffTime / float64(support)
	}

	surface[f.geometry.index(x, y)] = e.T

	return surfaceVal >= f.floatThreshold
}
