// Package fusion derives occupancy from the PIR sensor and limits how often
// measured values are published.
// Like logic, it has no I/O; time is always passed in.
package fusion

import "time"

// Occupancy turns raw PIR intensity into a held boolean motion signal.
// The detection threshold scales with the lift position so the sensor is
// less sensitive while the lift is low.
type Occupancy struct {
	lastMotion time.Time
	triggered  bool
	motion     bool
}

// OccupancyInput is a single PIR sample with the parameters that shape it.
type OccupancyInput struct {
	Time        time.Time
	Intensity   int
	Position    float64
	RiseHeight  float64
	Sensitivity int
	Interval    time.Duration
}

// Threshold maps position from [0, riseHeight] onto [0, sensitivity].
func Threshold(position, riseHeight float64, sensitivity int) int {
	return SafeMap(int(position), 0, int(riseHeight), 0, sensitivity)
}

// Update processes a sample and reports whether the motion signal changed.
// Motion stays true while less than Interval has passed since the last sample
// above the threshold.
func (o *Occupancy) Update(in OccupancyInput) (motion, changed bool) {
	if in.Intensity > Threshold(in.Position, in.RiseHeight, in.Sensitivity) {
		o.lastMotion = in.Time
		o.triggered = true
	}

	next := o.triggered && in.Time.Sub(o.lastMotion) < in.Interval
	if next == o.motion {
		return o.motion, false
	}
	o.motion = next
	return o.motion, true
}

// Motion returns the current held motion signal.
func (o *Occupancy) Motion() bool {
	return o.motion
}

// LastMotion returns the time of the last trigger, or the zero time if the
// sensor never fired.
func (o *Occupancy) LastMotion() time.Time {
	return o.lastMotion
}

// SafeMap linearly maps x from [inMin, inMax] to [outMin, outMax] using
// integer arithmetic. x is clamped to the input range first. A degenerate
// input range maps to outMin.
func SafeMap(x, inMin, inMax, outMin, outMax int) int {
	if inMax == inMin {
		return outMin
	}
	lo, hi := inMin, inMax
	if lo > hi {
		lo, hi = hi, lo
	}
	if x < lo {
		x = lo
	}
	if x > hi {
		x = hi
	}
	return (x-inMin)*(outMax-outMin)/(inMax-inMin) + outMin
}
