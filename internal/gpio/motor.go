package gpio

import "log"

// MaxSpeed is the full-scale motor speed.
const MaxSpeed = 1023.0

// HBridge drives a DC motor through an H-bridge with two direction inputs
// and a PWM enable.
// Driving both inputs high brakes the motor.
type HBridge struct {
	up   Output
	down Output
	duty Duty
}

// NewHBridge creates a motor driver. The motor is not touched until the
// first command.
func NewHBridge(up, down Output, duty Duty) *HBridge {
	return &HBridge{up: up, down: down, duty: duty}
}

// MoveUp drives the motor upward at speed (0..1023).
func (m *HBridge) MoveUp(speed float64) {
	m.drive(1, 0, speed)
}

// MoveDown drives the motor downward at speed (0..1023).
func (m *HBridge) MoveDown(speed float64) {
	m.drive(0, 1, speed)
}

// HardStop brakes the motor.
func (m *HBridge) HardStop() {
	m.drive(1, 1, MaxSpeed)
}

// Release lets the motor coast with the bridge disabled.
func (m *HBridge) Release() {
	m.drive(0, 0, 0)
}

func (m *HBridge) drive(up, down int, speed float64) {
	duty := speed / MaxSpeed
	if duty < 0 {
		duty = 0
	}
	if duty > 1 {
		duty = 1
	}

	if err := m.up.SetValue(up); err != nil {
		log.Printf("motor: set up line: %v", err)
	}
	if err := m.down.SetValue(down); err != nil {
		log.Printf("motor: set down line: %v", err)
	}
	if err := m.duty.SetDuty(duty); err != nil {
		log.Printf("motor: set duty: %v", err)
	}
}
