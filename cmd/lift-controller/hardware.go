package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/sweeney/lift-controller/internal/config"
	"github.com/sweeney/lift-controller/internal/dst"
	"github.com/sweeney/lift-controller/internal/gpio"
	"github.com/sweeney/lift-controller/internal/led"
	"github.com/sweeney/lift-controller/internal/pwm"
)

// distanceSensor is a lidar that reports readings until its context ends.
type distanceSensor interface {
	Run(ctx context.Context, fn dst.Handler) error
	Close() error
}

// hardware holds every opened device.
type hardware struct {
	chip    *gpio.Chip
	motor   *gpio.HBridge
	pir     *gpio.DigitalPIR
	light   led.Indicator
	sensor  distanceSensor // nil when no distance sensor is configured
	closers []io.Closer
}

// openHardware opens the GPIO lines, PWM channels and distance sensor.
// Encoder rotations and end-stop closures are sent on the given channels.
func openHardware(cfg config.Config, rotation chan<- float64, endStop chan<- struct{}) (*hardware, error) {
	chip, err := gpio.Open(cfg.GPIO.Chip)
	if err != nil {
		return nil, fmt.Errorf("init gpio: %w", err)
	}
	hw := &hardware{chip: chip}

	if err := hw.open(cfg, rotation, endStop); err != nil {
		hw.Close()
		return nil, err
	}
	return hw, nil
}

func (hw *hardware) open(cfg config.Config, rotation chan<- float64, endStop chan<- struct{}) error {
	g := cfg.GPIO

	up, err := hw.chip.Output(g.MotorUp)
	if err != nil {
		return fmt.Errorf("init motor: %w", err)
	}
	down, err := hw.chip.Output(g.MotorDown)
	if err != nil {
		return fmt.Errorf("init motor: %w", err)
	}
	duty, err := pwm.Open(pwm.NewDriver(pwm.DefaultRoot, g.MotorPWM.Chip), g.MotorPWM.Channel, g.MotorPWM.Frequency)
	if err != nil {
		return fmt.Errorf("init motor: %w", err)
	}
	hw.closers = append(hw.closers, duty)
	hw.motor = gpio.NewHBridge(up, down, duty)

	pir, err := hw.chip.Input(g.PIR)
	if err != nil {
		return fmt.Errorf("init pir: %w", err)
	}
	hw.pir = gpio.NewDigitalPIR(pir)

	_, err = hw.chip.EndStop(g.EndStop, g.Debounce, func() {
		select {
		case endStop <- struct{}{}:
		default: // one pending closure is enough
		}
	})
	if err != nil {
		return fmt.Errorf("init end-stop: %w", err)
	}

	err = hw.chip.Encoder(g.EncoderA, g.EncoderB, g.CountsPerRev, func(r float64) {
		rotation <- r
	})
	if err != nil {
		return fmt.Errorf("init encoder: %w", err)
	}

	if hw.light, err = hw.openLight(cfg.LED); err != nil {
		return fmt.Errorf("init led: %w", err)
	}

	if hw.sensor, err = openDistance(cfg.Distance); err != nil {
		return fmt.Errorf("init distance sensor: %w", err)
	}
	if hw.sensor != nil {
		hw.closers = append(hw.closers, hw.sensor)
	}
	return nil
}

func (hw *hardware) openLight(c config.LEDConfig) (led.Indicator, error) {
	if !c.Enabled {
		return led.LogIndicator{}, nil
	}
	var ch [4]led.Dimmer
	d := pwm.NewDriver(pwm.DefaultRoot, c.Chip)
	for i, n := range c.Channels {
		p, err := pwm.Open(d, n, c.Frequency)
		if err != nil {
			return nil, err
		}
		hw.closers = append(hw.closers, p)
		ch[i] = p
	}
	return led.NewPWMIndicator(ch[0], ch[1], ch[2], ch[3]), nil
}

func openDistance(c config.DistanceConfig) (distanceSensor, error) {
	switch c.Kind {
	case config.DistanceSerial:
		s, err := dst.OpenSerial(c.Device, c.Baud)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DistanceI2C:
		s, err := dst.OpenI2C(byte(c.Address), c.Interval)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, nil
}

// Close releases the motor and every device, logging failures.
func (hw *hardware) Close() {
	if hw.motor != nil {
		hw.motor.Release()
	}
	var errs []error
	for i := len(hw.closers) - 1; i >= 0; i-- {
		if err := hw.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := hw.chip.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		log.Printf("close hardware: %v", err)
	}
}

// printLines prints the current end-stop and PIR levels.
func printLines(g config.GPIOConfig) error {
	chip, err := gpio.Open(g.Chip)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer chip.Close()

	endStop, err := chip.EndStop(g.EndStop, 0, func() {})
	if err != nil {
		return fmt.Errorf("init end-stop: %w", err)
	}
	pirLine, err := chip.Input(g.PIR)
	if err != nil {
		return fmt.Errorf("init pir: %w", err)
	}

	es, err := endStop.Value()
	if err != nil {
		return fmt.Errorf("read end-stop: %w", err)
	}
	pir, err := pirLine.Value()
	if err != nil {
		return fmt.Errorf("read pir: %w", err)
	}
	fmt.Printf("END-STOP: %s, PIR: %s\n", endStopString(es), pirString(pir))
	return nil
}

// endStopString reads a pulled-up switch to ground.
func endStopString(v int) string {
	if v == 0 {
		return "CLOSED"
	}
	return "OPEN"
}

func pirString(v int) string {
	if v != 0 {
		return "MOTION"
	}
	return "QUIET"
}
