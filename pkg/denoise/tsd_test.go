package denoise

import "testing"

// BenchmarkTimeSurfaceDenoisorEvaluate measures the per-event cost of the
// decayed-recency neighborhood average with default parameters.
func BenchmarkTimeSurfaceDenoisorEvaluate(b *testing.B) {
	g, err := NewGeometry(640, 480)
	if err != nil {
		b.Fatalf("unexpected error: %v", err)
	}
	f, err := NewTimeSurfaceDenoisorDefault(g)
	if err != nil {
		b.Fatalf("unexpected error: %v", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f.Evaluate(Event{X: uint16(i % 640), Y: uint16(i % 480), Polarity: uint8(i % 2), T: int64(i)})
	}
}

func TestNewTimeSurfaceDenoisorRejectsBadConfig(t *testing.T) {
	g := mustGeometry(t, 32, 32)
	if _, err := NewTimeSurfaceDenoisor(g, 0, 1, 0.2); err == nil {
		t.Fatalf("expected ConfigError for non-positive decay")
	}
	if _, err := NewTimeSurfaceDenoisor(g, 20000, -1, 0.2); err == nil {
		t.Fatalf("expected ConfigError for negative searchRadius")
	}
}

func TestTimeSurfaceDenoisorFirstEventIsNoise(t *testing.T) {
	g := mustGeometry(t, 32, 32)
	f, err := NewTimeSurfaceDenoisorDefault(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// No neighbor has ever been written, so support is 0 and the average
	// surface value defaults to 0, below any positive threshold.
	if f.Evaluate(Event{X: 10, Y: 10, Polarity: 1, T: 100}) {
		t.Fatalf("expected first event to be noise")
	}
}

func TestTimeSurfaceDenoisorRetainsImmediateRepeat(t *testing.T) {
	g := mustGeometry(t, 32, 32)
	f, err := NewTimeSurfaceDenoisorDefault(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.Evaluate(Event{X: 10, Y: 10, Polarity: 1, T: 100})
	// A same-polarity event at the same pixel immediately after has
	// diffTime = exp(-1/20000), just under 1 and well above the 0.2
	// default threshold.
	if !f.Evaluate(Event{X: 10, Y: 10, Polarity: 1, T: 101}) {
		t.Fatalf("expected immediate same-pixel repeat to be signal")
	}
}

func TestTimeSurfaceDenoisorIgnoresOppositePolarity(t *testing.T) {
	g := mustGeometry(t, 32, 32)
	f, err := NewTimeSurfaceDenoisorDefault(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.Evaluate(Event{X: 10, Y: 10, Polarity: 1, T: 100})
	if f.Evaluate(Event{X: 10, Y: 10, Polarity: 0, T: 101}) {
		t.Fatalf("expected opposite-polarity surface, with no history, to be noise")
	}
}

func TestTimeSurfaceDenoisorDecaysOverTime(t *testing.T) {
	g := mustGeometry(t, 32, 32)
	f, err := NewTimeSurfaceDenoisor(g, 1, 0, 0.2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.Evaluate(Event{X: 10, Y: 10, Polarity: 1, T: 100})
	// decay constant of 1us means 100us later the contribution has decayed
	// to exp(-100), far below the 0.2 threshold.
	if f.Evaluate(Event{X: 10, Y: 10, Polarity: 1, T: 200}) {
		t.Fatalf("expected heavily decayed activity to be noise")
	}
}

func TestTimeSurfaceDenoisorInitializeResetsSurfaces(t *testing.T) {
	g := mustGeometry(t, 32, 32)
	f, err := NewTimeSurfaceDenoisorDefault(g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.Evaluate(Event{X: 10, Y: 10, Polarity: 1, T: 100})
	f.Initialize()
	if f.Evaluate(Event{X: 10, Y: 10, Polarity: 1, T: 101}) {
		t.Fatalf("expected filter to behave as freshly constructed after Initialize")
	}
}
