package denoise

import "github.com/sirupsen/logrus"

// Default parameters for KhodamoradiDenoiser.
const (
	DefaultKDDuration     = 2000
	DefaultKDIntThreshold = 2
)

// KhodamoradiDenoiser classifies an event as signal when enough of its
// four-connected column/row neighbors' last-seen events agree with it in
// time, polarity and adjacency. It keeps one "last event" slot per column
// and one per row, each overwritten on every Evaluate regardless of the
// verdict - there is no separate real/noise bookkeeping, unlike
// DoubleWindowFilter.
type KhodamoradiDenoiser struct {
	geometry     Geometry
	duration     int64
	intThreshold int

	lastEventX []Event // one slot per column, indexed by X
	lastEventY []Event // one slot per row, indexed by Y

	log *logrus.Entry
}

// NewKhodamoradiDenoiser constructs a KhodamoradiDenoiser. duration is
// the temporal correlation window in microseconds; intThreshold is the
// minimum adjacency support (0-6) required to classify as signal.
func NewKhodamoradiDenoiser(geometry Geometry, duration int64, intThreshold int) (*KhodamoradiDenoiser, error) {
	if duration <= 0 {
		return nil, newConfigError("duration", "must be positive")
	}
	if intThreshold <= 0 {
		return nil, newConfigError("intThreshold", "must be positive")
	}
	f := &KhodamoradiDenoiser{
		geometry:     geometry,
		duration:     duration,
		intThreshold: intThreshold,
		log:          defaultEntry("kd"),
	}
	f.Initialize()
	return f, nil
}

// NewKhodamoradiDenoiserDefault builds a KhodamoradiDenoiser with the
// reference implementation's default duration and threshold.
func NewKhodamoradiDenoiserDefault(geometry Geometry) (*KhodamoradiDenoiser, error) {
	return NewKhodamoradiDenoiser(geometry, DefaultKDDuration, DefaultKDIntThreshold)
}

// Initialize clears both column and row slots back to zero-value events.
// A zero-value slot (X=0, Y=0, Polarity=0, T=0) is not distinguished from
// a genuine event at the origin with T=0: an event arriving early in a
// stream can spuriously correlate against these unwritten slots, a quirk
// carried over from the reference implementation rather than patched.
func (f *KhodamoradiDenoiser) Initialize() {
	f.lastEventX = make([]Event, f.geometry.Width)
	f.lastEventY = make([]Event, f.geometry.Height)
	f.log.WithFields(logrus.Fields{
		"duration":     f.duration,
		"intThreshold": f.intThreshold,
	}).Debug("initialized")
}

// searchCorrelation counts, out of six possible sources (the column slots
// at x-1/x/x+1 and the row slots at y-1/y/y+1), how many hold a recent
// same-polarity event adjacent to e's pixel. The x slot only supports via
// its y-1/y+1 neighbors (an earlier event at e's own pixel does not
// count); symmetrically for the y slot.
func (f *KhodamoradiDenoiser) searchCorrelation(e Event) int {
	x, y := int(e.X), int(e.Y)
	support := 0

	hasXMinus := x > 0
	hasXPlus := x < int(f.geometry.Width)-1
	hasYMinus := y > 0
	hasYPlus := y < int(f.geometry.Height)-1

	matches := func(other Event) bool {
		return e.T-other.T <= f.duration && e.Polarity == other.Polarity
	}

	if hasXMinus {
		xPrev := f.lastEventX[x-1]
		if matches(xPrev) {
			if (hasYMinus && int(xPrev.Y) == y-1) || int(xPrev.Y) == y || (hasYPlus && int(xPrev.Y) == y+1) {
				support++
			}
		}
	}

	xCell := f.lastEventX[x]
	if matches(xCell) {
		if (hasYMinus && int(xCell.Y) == y-1) || (hasYPlus && int(xCell.Y) == y+1) {
			support++
		}
	}

	if hasXPlus {
		xNext := f.lastEventX[x+1]
		if matches(xNext) {
			if (hasYMinus && int(xNext.Y) == y-1) || int(xNext.Y) == y || (hasYPlus && int(xNext.Y) == y+1) {
				support++
			}
		}
	}

	if hasYMinus {
		yPrev := f.lastEventY[y-1]
		if matches(yPrev) {
			if (hasXMinus && int(yPrev.X) == x-1) || int(yPrev.X) == x || (hasXPlus && int(yPrev.X) == x+1) {
				support++
			}
		}
	}

	yCell := f.lastEventY[y]
	if matches(yCell) {
		if (hasXMinus && int(yCell.X) == x-1) || (hasXPlus && int(yCell.X) == x+1) {
			support++
		}
	}

	if hasYPlus {
		yNext := f.lastEventY[y+1]
		if matches(yNext) {
			if (hasXMinus && int(yNext.X) == x-1) || int(yNext.X) == x || (hasXPlus && int(yNext.X) == x+1) {
				support++
			}
		}
	}

	return support
}

// Evaluate implements Filter.
func (f *KhodamoradiDenoiser) Evaluate(e Event) bool {
	support := f.searchCorrelation(e)
	isSignal := support >= f.intThreshold

	f.lastEventX[e.X] = e
	f.lastEventY[e.Y] = e

	return isSignal
}
