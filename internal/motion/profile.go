// Package motion provides a bounded-acceleration velocity profile used to
// approach a target position. It has no I/O and does not allocate.
//
// Units: positions in cm, time in ms, velocity in cm/ms, acceleration in cm/ms².
package motion

import "math"

// Profile limits.
const (
	// MaxVelocity is 12 cm/s with a 20% margin.
	MaxVelocity = 12.0 / 1000 * 1.2
	// MaxAcceleration is 0.005 cm/s gained per ms.
	MaxAcceleration = 0.005 / 1000
)

// Arrival and motor-scaling constants. These are calibrated against the
// hardware and must not be simplified.
const (
	// ArrivalTolerance is the position window around the target (cm).
	ArrivalTolerance = 0.2
	// ArrivalVelocity is the speed below which the lift counts as settled (cm/ms).
	ArrivalVelocity = 0.002
	// MotorScale converts cm/ms to the motor duty scale.
	MotorScale = 1000
	// MotorDerate is applied to every profiled motor command.
	MotorDerate = 0.8
)

// Step is the time advanced per Approach call (ms).
const Step = 1.0

// Motor is the subset of the actuator driver the profile commands.
type Motor interface {
	MoveUp(speed float64)
	MoveDown(speed float64)
	HardStop()
}

// Profile is a trapezoidal velocity generator.
// The zero value is at rest with zero limits; Approach configures the limits.
type Profile struct {
	Position        float64
	Velocity        float64
	MaxVelocity     float64
	MaxAcceleration float64
}

// Reset brings the profile to rest.
func (p *Profile) Reset() {
	*p = Profile{}
}

// Update advances the profile by dt toward target.
// The velocity moves toward the fastest speed from which the profile can still
// stop at the target, changing by at most MaxAcceleration*dt and never
// exceeding MaxVelocity in magnitude.
func (p *Profile) Update(target, dt float64) {
	dist := target - p.Position

	// fastest speed that can still brake to zero within dist
	want := math.Sqrt(2 * p.MaxAcceleration * math.Abs(dist))
	if want > p.MaxVelocity {
		want = p.MaxVelocity
	}
	want = math.Copysign(want, dist)

	dv := clamp(want-p.Velocity, -p.MaxAcceleration*dt, p.MaxAcceleration*dt)
	p.Velocity = clamp(p.Velocity+dv, -p.MaxVelocity, p.MaxVelocity)
	p.Position += p.Velocity * dt
}

// Approach feeds the measured position into the profile, advances it one step
// toward target and commands the motor. It returns true once the lift is
// within ArrivalTolerance of target and slower than ArrivalVelocity, after
// hard-stopping the motor.
func (p *Profile) Approach(position, target float64, m Motor) bool {
	p.MaxVelocity = MaxVelocity
	p.MaxAcceleration = MaxAcceleration

	p.Position = position
	p.Update(target, Step)

	if math.Abs(position-target) < ArrivalTolerance && math.Abs(p.Velocity) < ArrivalVelocity {
		m.HardStop()
		return true
	}

	if p.Velocity > 0 {
		m.MoveUp(p.Velocity * MotorScale * MotorDerate)
	} else {
		m.MoveDown(math.Abs(p.Velocity) * MotorScale * MotorDerate)
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
