package fusion

import (
	"testing"
	"time"
)

func TestSafeMap(t *testing.T) {
	tests := []struct {
		name                            string
		x, inMin, inMax, outMin, outMax int
		want                            int
	}{
		{"lower bound", 0, 0, 150, 0, 300, 0},
		{"upper bound", 150, 0, 150, 0, 300, 300},
		{"midpoint", 75, 0, 150, 0, 300, 150},
		{"below domain clamps", -20, 0, 150, 0, 300, 0},
		{"above domain clamps", 400, 0, 150, 0, 300, 300},
		{"integer truncation", 1, 0, 150, 0, 300, 2},
		{"degenerate domain", 10, 0, 0, 0, 300, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SafeMap(tt.x, tt.inMin, tt.inMax, tt.outMin, tt.outMax)
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestThresholdScalesWithPosition(t *testing.T) {
	if got := Threshold(0, 150, 300); got != 0 {
		t.Errorf("at floor: got %d, want 0", got)
	}
	if got := Threshold(150, 150, 300); got != 300 {
		t.Errorf("at rise height: got %d, want 300", got)
	}
	if got := Threshold(199.9, 150, 300); got != 300 {
		t.Errorf("above rise height: got %d, want 300", got)
	}
}

func TestOccupancyHold(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var o Occupancy

	in := OccupancyInput{
		Position:    150,
		RiseHeight:  150,
		Sensitivity: 300,
		Interval:    2000 * time.Millisecond,
	}

	changes := 0
	sample := func(ms int, intensity int) bool {
		in.Time = start.Add(time.Duration(ms) * time.Millisecond)
		in.Intensity = intensity
		motion, changed := o.Update(in)
		if changed {
			changes++
		}
		return motion
	}

	if !sample(0, 1023) {
		t.Fatal("expected motion after trigger")
	}
	for ms := 1; ms < 2000; ms++ {
		if !sample(ms, 0) {
			t.Fatalf("motion dropped early at t=%dms", ms)
		}
	}
	if sample(2000, 0) {
		t.Error("expected motion to clear at t=2000ms")
	}
	if sample(2001, 0) {
		t.Error("expected motion to stay clear")
	}
	if changes != 2 {
		t.Errorf("changes: got %d, want 2", changes)
	}
}

func TestOccupancyNoTriggerNoMotion(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var o Occupancy

	// first samples near the zero time must not count as held motion
	for ms := 0; ms < 100; ms++ {
		motion, changed := o.Update(OccupancyInput{
			Time:        start.Add(time.Duration(ms) * time.Millisecond),
			Intensity:   100,
			Position:    150,
			RiseHeight:  150,
			Sensitivity: 300,
			Interval:    2 * time.Second,
		})
		if motion || changed {
			t.Fatalf("t=%dms: unexpected motion=%v changed=%v", ms, motion, changed)
		}
	}
	if !o.LastMotion().IsZero() {
		t.Errorf("expected zero last motion, got %v", o.LastMotion())
	}
}

func TestOccupancyRetrigger(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var o Occupancy
	in := OccupancyInput{RiseHeight: 150, Sensitivity: 300, Interval: time.Second}

	in.Time, in.Intensity = start, 500
	o.Update(in)
	in.Time, in.Intensity = start.Add(900*time.Millisecond), 500
	o.Update(in)

	in.Time, in.Intensity = start.Add(1500*time.Millisecond), 0
	if motion, _ := o.Update(in); !motion {
		t.Error("retrigger should extend the hold")
	}
	in.Time = start.Add(1900 * time.Millisecond)
	if motion, _ := o.Update(in); motion {
		t.Error("expected motion to clear one interval after the last trigger")
	}
}

func TestOccupancyThresholdIsStrict(t *testing.T) {
	var o Occupancy
	motion, _ := o.Update(OccupancyInput{
		Time:        time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		Intensity:   150,
		Position:    75,
		RiseHeight:  150,
		Sensitivity: 300,
		Interval:    time.Second,
	})
	if motion {
		t.Error("intensity equal to threshold must not trigger")
	}
}

func TestHysteresisExactBand(t *testing.T) {
	h := NewHysteresis(PositionBand)
	publishes := 0
	v := 0.0
	for i := 0; i < 4; i++ {
		v += 0.25
		if h.Check(v) {
			publishes++
		}
	}
	if publishes != 1 {
		t.Errorf("publishes: got %d, want 1", publishes)
	}
	if h.Sent() != 1.0 {
		t.Errorf("sent: got %v, want 1.0", h.Sent())
	}
}

func TestHysteresisBothDirections(t *testing.T) {
	h := NewHysteresis(DistanceBand)

	steps := []struct {
		v    float64
		want bool
	}{
		{1.9, false},
		{2.5, true},
		{1.0, false},
		{0.5, true},
		{-1.4, false},
		{-1.5, true},
	}
	for i, s := range steps {
		if got := h.Check(s.v); got != s.want {
			t.Errorf("step %d (%v): got %v, want %v", i, s.v, got, s.want)
		}
	}
}

func TestStrictHysteresisExcludesBand(t *testing.T) {
	h := NewStrictHysteresis(DistanceBand)

	steps := []struct {
		v    float64
		want bool
	}{
		{2.0, false},
		{-2.0, false},
		{2.5, true},
		{4.5, false},
		{0.5, false},
		{4.75, true},
		{2.5, true},
	}
	for i, s := range steps {
		if got := h.Check(s.v); got != s.want {
			t.Errorf("step %d (%v): got %v, want %v", i, s.v, got, s.want)
		}
	}
}
