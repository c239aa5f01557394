package denoise

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Feature layout shared by buildFeatures and any ModelRuntime: a 7x7
// neighborhood, two channels (recency, polarity), flattened row-major.
const (
	mlpfInputDepth  = 2
	mlpfInputWidth  = 7
	mlpfInputHeight = 7
	mlpfInputArea   = mlpfInputWidth * mlpfInputHeight
	mlpfInputVolume = mlpfInputDepth * mlpfInputArea
)

// Default parameters for MultiLayerPerceptronFilter.
const (
	DefaultMLPFBatchSize      = 5000
	DefaultMLPFDuration       = 100000
	DefaultMLPFFloatThreshold = 0.8
)

// MultiLayerPerceptronFilter classifies events by batching them and
// scoring each against a 7x7 recency/polarity neighborhood feature
// through an injected ModelRuntime. Unlike the other six filters it
// does not decide one event at a time: a decision is only final once its
// batch fills, so ProcessEvents and a run of single-event Evaluate calls
// are equivalent here, but Evaluate's return value for an event still
// sitting in a partial batch is a provisional true, not a classification.
// This is a deliberate, documented exception to the package's usual
// event-wise decision contract.
type MultiLayerPerceptronFilter struct {
	geometry       Geometry
	batchSize      int
	duration       int64
	floatThreshold float64
	runtime        ModelRuntime // nil means transparent pass-through

	timeSurface []Event
	offsets     [][2]int

	buffer []Event

	instance uuid.UUID
	log      *logrus.Entry
}

// NewMultiLayerPerceptronFilter constructs a MultiLayerPerceptronFilter.
// runtime may be nil, in which case every event is retained without ever
// consulting a model (the reference implementation's "model not loaded"
// case, corrected here to the pass-through behavior the prose of this
// filter's contract requires rather than the original's drop-everything
// bug). Use LoadModelRuntime to build a runtime from a model file.
func NewMultiLayerPerceptronFilter(geometry Geometry, runtime ModelRuntime, batchSize int, duration int64, floatThreshold float64) (*MultiLayerPerceptronFilter, error) {
	if batchSize <= 0 {
		return nil, newConfigError("batchSize", "must be positive")
	}
	if duration <= 0 {
		return nil, newConfigError("duration", "must be positive")
	}
	f := &MultiLayerPerceptronFilter{
		geometry:       geometry,
		batchSize:      batchSize,
		duration:       duration,
		floatThreshold: floatThreshold,
		runtime:        runtime,
		instance:       uuid.New(),
		log:            defaultEntry("mlpf"),
	}
	f.Initialize()
	return f, nil
}

// NewMultiLayerPerceptronFilterDefault builds a MultiLayerPerceptronFilter
// with the reference implementation's default batch size, duration and
// threshold.
func NewMultiLayerPerceptronFilterDefault(geometry Geometry, runtime ModelRuntime) (*MultiLayerPerceptronFilter, error) {
	return NewMultiLayerPerceptronFilter(geometry, runtime, DefaultMLPFBatchSize, DefaultMLPFDuration, DefaultMLPFFloatThreshold)
}

// Initialize clears the time surface and event buffer, and rebuilds the
// 7x7 offset pattern.
func (f *MultiLayerPerceptronFilter) Initialize() {
	f.timeSurface = make([]Event, f.geometry.size())
	f.buffer = f.buffer[:0]

	halfWidth := mlpfInputWidth / 2
	halfHeight := mlpfInputHeight / 2
	f.offsets = make([][2]int, 0, mlpfInputArea)
	for dy := -halfHeight; dy <= halfHeight; dy++ {
		for dx := -halfWidth; dx <= halfWidth; dx++ {
			f.offsets = append(f.offsets, [2]int{dx, dy})
		}
	}

	f.log.WithFields(logrus.Fields{
		"instance":       f.instance,
		"batchSize":      f.batchSize,
		"duration":       f.duration,
		"floatThreshold": f.floatThreshold,
		"modelLoaded":    f.runtime != nil,
	}).Debug("initialized")
}

// buildFeatures constructs one mlpfInputVolume-length feature row per
// event and advances the time surface after each row is built, so later
// events in the same batch see earlier events' pixels as history - the
// batch is processed as a single temporal sequence, not independently.
func (f *MultiLayerPerceptronFilter) buildFeatures(events []Event) [][]float32 {
	rows := make([][]float32, len(events))
	for i, e := range events {
		row := make([]float32, mlpfInputVolume)
		for k, off := range f.offsets {
			x := int(e.X) + off[0]
			y := int(e.Y) + off[1]
			if !f.geometry.InBounds(x, y) {
				continue
			}
			last := f.timeSurface[f.geometry.index(x, y)]
			if last.T != 0 {
				row[k] = float32(1.0 - float64(e.T-last.T)/float64(f.duration))
			}
			row[k+mlpfInputArea] = float32(2*int(e.Polarity) - 1)
		}
		rows[i] = row
		f.timeSurface[f.geometry.index(int(e.X), int(e.Y))] = e
	}
	return rows
}

// classifyBatch scores a batch and returns, for each event, whether
// it is retained. A nil runtime passes every event through untouched; a
// runtime error retains the whole batch fail-safe and is logged as a
// ClassificationFault rather than surfaced to the caller.
func (f *MultiLayerPerceptronFilter) classifyBatch(events []Event) []bool {
	verdicts := make([]bool, len(events))

	if f.runtime == nil {
		for i := range verdicts {
			verdicts[i] = true
		}
		return verdicts
	}

	features := f.buildFeatures(events)
	scores, err := f.runtime.Classify(features)
	if err == nil && len(scores) != len(events) {
		err = fmt.Errorf("runtime returned %d scores for %d events", len(scores), len(events))
	}
	if err != nil {
		fault := &ClassificationFault{BatchSize: len(events), Err: err}
		f.log.WithField("instance", f.instance).Warn(fault.Error())
		for i := range verdicts {
			verdicts[i] = true
		}
		return verdicts
	}

	for i := range verdicts {
		verdicts[i] = scores[i] >= f.floatThreshold
	}
	return verdicts
}

// Evaluate implements Filter. It buffers e and, once the buffer reaches
// batchSize, classifies the whole batch and reports e's own verdict; an
// event that merely extends a still-partial batch is provisionally
// retained.
func (f *MultiLayerPerceptronFilter) Evaluate(e Event) bool {
	f.buffer = append(f.buffer, e)
	if len(f.buffer) < f.batchSize {
		return true
	}

	verdicts := f.classifyBatch(f.buffer)
	last := verdicts[len(verdicts)-1]
	f.buffer = f.buffer[:0]
	return last
}

// Flush classifies whatever partial batch is currently buffered, using
// whatever size is available rather than waiting for batchSize, and
// clears the buffer. Callers that process a bounded stream call Flush
// once at the end so the tail of the stream - otherwise stuck behind
// Evaluate's provisional true - gets a final verdict. Flush on an empty
// buffer returns an empty slice.
func (f *MultiLayerPerceptronFilter) Flush() []Event {
	if len(f.buffer) == 0 {
		return nil
	}
	verdicts := f.classifyBatch(f.buffer)
	retained := make([]Event, 0, len(f.buffer))
	for i, v := range verdicts {
		if v {
			retained = append(retained, f.buffer[i])
		}
	}
	f.buffer = f.buffer[:0]
	return retained
}

// ProcessEventsBatched classifies events in fixed-size chunks of
// batchSize directly, without going through the single-event buffer:
// every event in a chunk receives its own final verdict, so unlike
// ProcessEvents(f, events) no event's classification is the provisional
// "still buffering" placeholder. The last, possibly short, chunk is
// classified on its own.
func (f *MultiLayerPerceptronFilter) ProcessEventsBatched(events []Event) []Event {
	retained := make([]Event, 0, len(events))
	for start := 0; start < len(events); start += f.batchSize {
		end := start + f.batchSize
		if end > len(events) {
			end = len(events)
		}
		chunk := events[start:end]
		verdicts := f.classifyBatch(chunk)
		for i, v := range verdicts {
			if v {
				retained = append(retained, chunk[i])
			}
		}
	}
	return retained
}
