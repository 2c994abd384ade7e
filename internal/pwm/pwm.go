// Package pwm drives Linux sysfs PWM channels (/sys/class/pwm) through the
// reef-pi rpi/pwm driver.
package pwm

import (
	"errors"
	"fmt"

	rpipwm "github.com/reef-pi/rpi/pwm"
)

// DefaultRoot is the sysfs PWM class directory.
const DefaultRoot = "/sys/class/pwm"

// DefaultFrequency suits LED dimming without visible flicker (Hz).
const DefaultFrequency = 1000

// NewDriver returns a driver for one PWM chip under root. The stock
// pwmchip0 goes through rpi/pwm directly; other chips use a driver rooted
// at their own sysfs directory.
func NewDriver(root string, chip int) rpipwm.Driver {
	if root == DefaultRoot && chip == 0 {
		return rpipwm.New()
	}
	return newChipDriver(root, chip)
}

// Channel is an exported and enabled PWM output.
type Channel struct {
	d    rpipwm.Driver
	n    int
	duty float64
}

// Open exports channel n, programs its period and enables it with a zero
// duty cycle.
func Open(d rpipwm.Driver, n int, freqHz int) (*Channel, error) {
	if freqHz <= 0 {
		return nil, fmt.Errorf("pwm: invalid frequency %d", freqHz)
	}
	exported, err := d.IsExported(n)
	if err != nil {
		return nil, fmt.Errorf("pwm%d: %w", n, err)
	}
	if !exported {
		if err := d.Export(n); err != nil {
			return nil, fmt.Errorf("export pwm%d: %w", n, err)
		}
	}
	if err := d.Frequency(n, freqHz); err != nil {
		return nil, fmt.Errorf("set period: %w", err)
	}
	if err := d.DutyCycle(n, 0); err != nil {
		return nil, fmt.Errorf("reset duty: %w", err)
	}
	if err := d.Enable(n); err != nil {
		return nil, fmt.Errorf("enable: %w", err)
	}
	return &Channel{d: d, n: n}, nil
}

// SetDuty sets the duty cycle as a fraction of the period, clamped to [0, 1].
func (c *Channel) SetDuty(fraction float64) error {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	if fraction == c.duty {
		return nil
	}
	// rpi/pwm takes a percentage
	if err := c.d.DutyCycle(c.n, fraction*100); err != nil {
		return fmt.Errorf("set duty: %w", err)
	}
	c.duty = fraction
	return nil
}

// Duty returns the last programmed duty fraction.
func (c *Channel) Duty() float64 {
	return c.duty
}

// Close drives the output low and disables the channel.
func (c *Channel) Close() error {
	var errs []error
	if err := c.d.DutyCycle(c.n, 0); err != nil {
		errs = append(errs, fmt.Errorf("reset duty: %w", err))
	}
	if err := c.d.Disable(c.n); err != nil {
		errs = append(errs, fmt.Errorf("disable: %w", err))
	}
	c.duty = 0
	return errors.Join(errs...)
}
