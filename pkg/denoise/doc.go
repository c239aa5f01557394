// Package denoise classifies event-camera (dynamic vision sensor) change
// detection events as signal or noise.
//
// Seven independent, single-threaded filters share one shape: constructed
// with sensor geometry and tunable thresholds, each offers a per-event
// Evaluate, and the package-level ProcessEvents runs any of them over a
// batch and returns the order-preserving retained subsequence. State is mutated strictly after the decision for
// the current event, never before.
package denoise
