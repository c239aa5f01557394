package denoise

import (
	"math"

	"github.com/sirupsen/logrus"
)

// sentinel marks a pixel that has never been written, matching the
// reference implementation's std::numeric_limits<int64_t>::min(). It must
// never itself satisfy the tau comparison, so Evaluate checks for it
// explicitly rather than relying on the subtraction e.T-sentinel, which
// would overflow a signed 64-bit integer and (Go defines overflow as
// two's-complement wraparound) land far negative - satisfying tau by
// accident and misclassifying every isolated first event as signal.
const sentinel int64 = math.MinInt64

// ReclusiveEventDenoisor classifies an event as signal when any pixel in
// its square neighborhood, on the same polarity surface, recorded an
// event within tau microseconds. It exposes no tunable count or score
// threshold: a single recent same-polarity neighbor is enough.
type ReclusiveEventDenoisor struct {
	geometry Geometry
	tau      int64
	radius   int

	lastOn  []int64
	lastOff []int64

	log *logrus.Entry
}

// NewReclusiveEventDenoisor constructs a ReclusiveEventDenoisor. tau is
// the recency window in microseconds; radius is the Chebyshev radius of
// the neighborhood scanned.
func NewReclusiveEventDenoisor(geometry Geometry, tau int64, radius int) (*ReclusiveEventDenoisor, error) {
	if tau <= 0 {
		return nil, newConfigError("tau", "must be positive")
	}
	if radius < 0 {
		return nil, newConfigError("radius", "must be non-negative")
	}
	f := &ReclusiveEventDenoisor{
		geometry: geometry,
		tau:      tau,
		radius:   radius,
		log:      defaultEntry("red"),
	}
	f.Initialize()
	return f, nil
}

// Initialize resets both polarity surfaces to the sentinel value.
func (f *ReclusiveEventDenoisor) Initialize() {
	n := f.geometry.size()
	f.lastOn = make([]int64, n)
	f.lastOff = make([]int64, n)
	for i := range f.lastOn {
		f.lastOn[i] = sentinel
		f.lastOff[i] = sentinel
	}
	f.log.WithFields(logrus.Fields{
		"tau":    f.tau,
		"radius": f.radius,
	}).Debug("initialized")
}

// Evaluate implements Filter.
func (f *ReclusiveEventDenoisor) Evaluate(e Event) bool {
	surface := f.lastOff
	if e.Polarity == 1 {
		surface = f.lastOn
	}

	x, y := int(e.X), int(e.Y)
	isSignal := false
search:
	for dx := -f.radius; dx <= f.radius; dx++ {
		for dy := -f.radius; dy <= f.radius; dy++ {
			nx, ny := x+dx, y+dy
			if !f.geometry.InBounds(nx, ny) {
				continue
			}
			last := surface[f.geometry.index(nx, ny)]
			if last != sentinel && e.T-last <= f.tau {
				isSignal = true
				break search
			}
		}
	}

	surface[f.geometry.index(x, y)] = e.T

	return isSignal
}
