package denoise

import "github.com/sirupsen/logrus"

// Default parameters for DoubleWindowFilter, matching the reference
// implementation's constructor defaults.
const (
	DefaultDWFBufferSize   = 36
	DefaultDWFSearchRadius = 9
	DefaultDWFIntThreshold = 1
)

// DoubleWindowFilter classifies an event as signal when enough recent
// events - real or noise - lie within SearchRadius (L1 distance). It
// keeps two fixed-size ring buffers, one of recently retained events and
// one of recently dropped events, and scans both on every Evaluate.
type DoubleWindowFilter struct {
	bufferSize   int
	searchRadius int
	intThreshold int

	real  *eventRing
	noise *eventRing

	log *logrus.Entry
}

// NewDoubleWindowFilter constructs a DoubleWindowFilter. bufferSize is the
// capacity of each of the two windows; searchRadius is the maximum L1
// pixel distance considered nearby; intThreshold is the minimum count of
// nearby events (across both windows) required to classify as signal.
func NewDoubleWindowFilter(bufferSize, searchRadius, intThreshold int) (*DoubleWindowFilter, error) {
	if bufferSize <= 0 {
		return nil, newConfigError("bufferSize", "must be positive")
	}
	if searchRadius < 0 {
		return nil, newConfigError("searchRadius", "must be non-negative")
	}
	if intThreshold <= 0 {
		return nil, newConfigError("intThreshold", "must be positive")
	}
	f := &DoubleWindowFilter{
		bufferSize:   bufferSize,
		searchRadius: searchRadius,
		intThreshold: intThreshold,
		log:          defaultEntry("dwf"),
	}
	f.Initialize()
	return f, nil
}

// NewDoubleWindowFilterDefault builds a DoubleWindowFilter with the
// reference implementation's default thresholds.
func NewDoubleWindowFilterDefault() (*DoubleWindowFilter, error) {
	return NewDoubleWindowFilter(DefaultDWFBufferSize, DefaultDWFSearchRadius, DefaultDWFIntThreshold)
}

// Initialize resets both windows to bufferSize zero-value sentinels.
func (f *DoubleWindowFilter) Initialize() {
	f.real = newEventRing(f.bufferSize)
	f.noise = newEventRing(f.bufferSize)
	f.log.WithFields(logrus.Fields{
		"bufferSize":   f.bufferSize,
		"searchRadius": f.searchRadius,
		"intThreshold": f.intThreshold,
	}).Debug("initialized")
}

// countNearbyEvents counts events within searchRadius across both
// windows, stopping as soon as intThreshold is reached. Sentinel slots
// (T == 0) never participate: a genuine event at T == 0 is therefore
// indistinguishable from an empty slot, a quirk preserved from the
// reference implementation.
func (f *DoubleWindowFilter) countNearbyEvents(e Event) int {
	count := 0
	stop := false
	scan := func(stored Event) bool {
		if stored.T != 0 && l1Distance(e, stored) <= f.searchRadius {
			count++
			if count >= f.intThreshold {
				stop = true
				return false
			}
		}
		return true
	}
	f.real.forEach(scan)
	if stop {
		return count
	}
	f.noise.forEach(scan)
	return count
}

// Evaluate implements Filter.
func (f *DoubleWindowFilter) Evaluate(e Event) bool {
	isSignal := f.countNearbyEvents(e) >= f.intThreshold

	if isSignal {
		if f.real.full() {
			f.real.popFront()
		}
		f.real.pushBack(e)
	} else {
		if f.noise.full() {
			f.noise.popFront()
		}
		f.noise.pushBack(e)
	}
	return isSignal
}
