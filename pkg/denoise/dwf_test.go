package denoise

import "testing"

// BenchmarkDoubleWindowFilterEvaluate measures the per-event cost of the
// dual-window nearby-event scan with default thresholds.
func BenchmarkDoubleWindowFilterEvaluate(b *testing.B) {
	f, err := NewDoubleWindowFilterDefault()
	if err != nil {
		b.Fatalf("unexpected error: %v", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f.Evaluate(Event{X: uint16(i % 640), Y: uint16(i % 480), Polarity: uint8(i % 2), T: int64(i)})
	}
}

func TestNewDoubleWindowFilterRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name                               string
		bufferSize, searchRadius, intThreshold int
	}{
		{"zero buffer", 0, 9, 1},
		{"negative radius", 36, -1, 1},
		{"zero threshold", 36, 9, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := NewDoubleWindowFilter(c.bufferSize, c.searchRadius, c.intThreshold); err == nil {
				t.Fatalf("expected ConfigError, got nil")
			} else if _, ok := err.(*ConfigError); !ok {
				t.Fatalf("expected *ConfigError, got %T", err)
			}
		})
	}
}

func TestDoubleWindowFilterFirstEventsAreNoise(t *testing.T) {
	f, err := NewDoubleWindowFilter(4, 2, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Windows start full of T==0 sentinels, which never count as nearby,
	// so with intThreshold==1 the very first genuine event has nothing to
	// match against and is classified noise.
	if f.Evaluate(Event{X: 1, Y: 1, T: 10}) {
		t.Fatalf("expected first event to be noise")
	}
}

func TestDoubleWindowFilterRetainsNearbySignal(t *testing.T) {
	f, err := NewDoubleWindowFilter(4, 2, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.Evaluate(Event{X: 1, Y: 1, T: 10}) // noise, seeds the noise window
	if !f.Evaluate(Event{X: 2, Y: 1, T: 20}) {
		t.Fatalf("expected event within search radius of prior noise to be signal")
	}
}

func TestDoubleWindowFilterRejectsDistantEvent(t *testing.T) {
	f, err := NewDoubleWindowFilter(4, 2, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.Evaluate(Event{X: 1, Y: 1, T: 10})
	if f.Evaluate(Event{X: 100, Y: 100, T: 20}) {
		t.Fatalf("expected distant event to be noise")
	}
}

func TestDoubleWindowFilterInitializeResetsState(t *testing.T) {
	f, err := NewDoubleWindowFilter(4, 2, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.Evaluate(Event{X: 1, Y: 1, T: 10})
	f.Evaluate(Event{X: 2, Y: 1, T: 20})
	f.Initialize()
	if f.Evaluate(Event{X: 2, Y: 1, T: 30}) {
		t.Fatalf("expected filter to behave as freshly constructed after Initialize")
	}
}

func TestDoubleWindowFilterProcessEventsPreservesOrder(t *testing.T) {
	f, err := NewDoubleWindowFilterDefault()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	events := []Event{
		{X: 5, Y: 5, T: 1},
		{X: 5, Y: 5, T: 2},
		{X: 200, Y: 200, T: 3},
		{X: 5, Y: 6, T: 4},
	}
	retained := ProcessEvents(f, events)
	if len(retained) == 0 {
		t.Fatalf("expected some events to be retained")
	}
	for i := 1; i < len(retained); i++ {
		if retained[i].T < retained[i-1].T {
			t.Fatalf("retained events out of order: %+v", retained)
		}
	}
}
