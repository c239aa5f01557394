package denoise

import "github.com/sirupsen/logrus"

// Default parameters for YangNoiseFilter.
const (
	DefaultYNFDuration     = 10000
	DefaultYNFSearchRadius = 1
	DefaultYNFIntThreshold = 2
)

// YangNoiseFilter classifies an event as signal when enough same-polarity
// activity occurred recently in its spatial neighborhood. It keeps one
// timestamp and one polarity per pixel, the last event observed there.
type YangNoiseFilter struct {
	geometry     Geometry
	duration     int64
	searchRadius int
	intThreshold int

	lastTimestamp []int64
	lastPolarity  []uint8

	log *logrus.Entry
}

// NewYangNoiseFilter constructs a YangNoiseFilter. duration is the
// temporal window in microseconds; searchRadius is the Chebyshev radius
// (square neighborhood) searched around each event's pixel; intThreshold
// is the minimum same-polarity recent-activity count required to
// classify as signal.
func NewYangNoiseFilter(geometry Geometry, duration int64, searchRadius, intThreshold int) (*YangNoiseFilter, error) {
	if duration <= 0 {
		return nil, newConfigError("duration", "must be positive")
	}
	if searchRadius < 0 {
		return nil, newConfigError("searchRadius", "must be non-negative")
	}
	if intThreshold <= 0 {
		return nil, newConfigError("intThreshold", "must be positive")
	}
	f := &YangNoiseFilter{
		geometry:     geometry,
		duration:     duration,
		searchRadius: searchRadius,
		intThreshold: intThreshold,
		log:          defaultEntry("ynf"),
	}
	f.Initialize()
	return f, nil
}

// NewYangNoiseFilterDefault builds a YangNoiseFilter with the reference
// implementation's default duration, radius and threshold.
func NewYangNoiseFilterDefault(geometry Geometry) (*YangNoiseFilter, error) {
	return NewYangNoiseFilter(geometry, DefaultYNFDuration, DefaultYNFSearchRadius, DefaultYNFIntThreshold)
}

// Initialize clears the per-pixel timestamp and polarity grids.
func (f *YangNoiseFilter) Initialize() {
	n := f.geometry.size()
	f.lastTimestamp = make([]int64, n)
	f.lastPolarity = make([]uint8, n)
	f.log.WithFields(logrus.Fields{
		"duration":     f.duration,
		"searchRadius": f.searchRadius,
		"intThreshold": f.intThreshold,
	}).Debug("initialized")
}

// calculateDensity counts neighboring pixels (including the event's own
// pixel) whose last-seen event was within duration and shared e's
// polarity. A pixel never visited has lastTimestamp == 0 and
// lastPolarity == 0 (OFF): an event at T within duration of 0 and with
// polarity OFF will count its own, still-unwritten pixel, a quirk
// preserved from the reference implementation.
func (f *YangNoiseFilter) calculateDensity(e Event) int {
	density := 0
	for dy := -f.searchRadius; dy <= f.searchRadius; dy++ {
		for dx := -f.searchRadius; dx <= f.searchRadius; dx++ {
			x := int(e.X) + dx
			y := int(e.Y) + dy
			if !f.geometry.InBounds(x, y) {
				continue
			}
			idx := f.geometry.index(x, y)
			if e.T-f.lastTimestamp[idx] <= f.duration && e.Polarity == f.lastPolarity[idx] {
				density++
			}
		}
	}
	return density
}

// Evaluate implements Filter.
func (f *YangNoiseFilter) Evaluate(e Event) bool {
	density := f.calculateDensity(e)
	isSignal := density >= f.intThreshold

	idx := f.geometry.index(int(e.X), int(e.Y))
	f.lastTimestamp[idx] = e.T
	f.lastPolarity[idx] = e.Polarity

	return isSignal
}
