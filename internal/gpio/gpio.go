// Package gpio drives the lift hardware lines: the end-stop switch, the
// quadrature spool encoder, the PIR sensor and the H-bridge motor.
// The real implementation uses the Linux GPIO character device.
// The fakes allow testing without hardware.
package gpio

// Default line offsets on gpiochip0 (BCM numbering).
const (
	DefaultChip         = "gpiochip0"
	PinEndStop          = 17
	PinEncoderA         = 23
	PinEncoderB         = 24
	PinPIR              = 25
	PinMotorUp          = 5
	PinMotorDown        = 6
	DefaultCountsPerRev = 80
)

// Input is a readable line. *gpiocdev.Line satisfies it.
type Input interface {
	Value() (int, error)
}

// Output is a writable line. *gpiocdev.Line satisfies it.
type Output interface {
	SetValue(int) error
}

// Duty sets a PWM duty cycle in [0, 1]. *pwm.Channel satisfies it.
type Duty interface {
	SetDuty(fraction float64) error
}

// PIRLevel is the intensity reported for an active digital PIR output.
const PIRLevel = 1023

// DigitalPIR reads a PIR module with a digital output. An active line reads
// as full intensity.
type DigitalPIR struct {
	line Input
}

// NewDigitalPIR wraps an input line.
func NewDigitalPIR(line Input) *DigitalPIR {
	return &DigitalPIR{line: line}
}

// Read returns PIRLevel while the line is active and 0 otherwise.
func (p *DigitalPIR) Read() (int, error) {
	v, err := p.line.Value()
	if err != nil {
		return 0, err
	}
	if v != 0 {
		return PIRLevel, nil
	}
	return 0, nil
}
