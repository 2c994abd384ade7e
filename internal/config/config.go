// Package config loads the daemon configuration from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/sweeney/lift-controller/internal/dst"
	"github.com/sweeney/lift-controller/internal/gpio"
	"github.com/sweeney/lift-controller/internal/params"
	"github.com/sweeney/lift-controller/internal/pwm"
)

// Distance sensor kinds.
const (
	DistanceNone   = "none"
	DistanceSerial = "serial"
	DistanceI2C    = "i2c"
)

// ErrInvalid is returned when a loaded configuration cannot be used.
var ErrInvalid = errors.New("invalid config")

// Config is the full daemon configuration.
type Config struct {
	Broker    string            `yaml:"broker"`
	ClientID  string            `yaml:"client_id"`
	Base      string            `yaml:"base"`
	HTTPAddr  string            `yaml:"http"`
	Heartbeat time.Duration     `yaml:"heartbeat"`
	GPIO      GPIOConfig        `yaml:"gpio"`
	Distance  DistanceConfig    `yaml:"distance"`
	LED       LEDConfig         `yaml:"led"`
	Params    map[string]string `yaml:"params"`
}

// GPIOConfig holds line offsets and the motor PWM channel.
type GPIOConfig struct {
	Chip         string        `yaml:"chip"`
	EndStop      int           `yaml:"end_stop"`
	Debounce     time.Duration `yaml:"debounce"`
	EncoderA     int           `yaml:"encoder_a"`
	EncoderB     int           `yaml:"encoder_b"`
	CountsPerRev int           `yaml:"counts_per_rev"`
	PIR          int           `yaml:"pir"`
	MotorUp      int           `yaml:"motor_up"`
	MotorDown    int           `yaml:"motor_down"`
	MotorPWM     PWMConfig     `yaml:"motor_pwm"`
}

// PWMConfig selects a sysfs PWM channel.
type PWMConfig struct {
	Chip      int `yaml:"chip"`
	Channel   int `yaml:"channel"`
	Frequency int `yaml:"frequency"`
}

// DistanceConfig selects the lidar connection.
type DistanceConfig struct {
	Kind     string        `yaml:"kind"`
	Device   string        `yaml:"device"`
	Baud     int           `yaml:"baud"`
	Address  int           `yaml:"address"`
	Interval time.Duration `yaml:"interval"`
}

// LEDConfig maps the RGBW indicator onto PWM channels of one chip.
type LEDConfig struct {
	Enabled   bool  `yaml:"enabled"`
	Chip      int   `yaml:"chip"`
	Channels  []int `yaml:"channels"` // red, green, blue, white
	Frequency int   `yaml:"frequency"`
}

// Defaults returns the configuration used when no file is given.
func Defaults() Config {
	return Config{
		Broker:    "tcp://localhost:1883",
		HTTPAddr:  ":80",
		Heartbeat: 15 * time.Minute,
		GPIO: GPIOConfig{
			Chip:         gpio.DefaultChip,
			EndStop:      gpio.PinEndStop,
			Debounce:     5 * time.Millisecond,
			EncoderA:     gpio.PinEncoderA,
			EncoderB:     gpio.PinEncoderB,
			CountsPerRev: gpio.DefaultCountsPerRev,
			PIR:          gpio.PinPIR,
			MotorUp:      gpio.PinMotorUp,
			MotorDown:    gpio.PinMotorDown,
			MotorPWM:     PWMConfig{Chip: 0, Channel: 0, Frequency: 20000},
		},
		Distance: DistanceConfig{
			Kind:     DistanceSerial,
			Device:   "/dev/serial0",
			Baud:     dst.DefaultBaud,
			Address:  dst.DefaultI2CAddress,
			Interval: 100 * time.Millisecond,
		},
		LED: LEDConfig{
			Chip:      1,
			Channels:  []int{0, 1, 2, 3},
			Frequency: pwm.DefaultFrequency,
		},
	}
}

// Load reads the YAML file at path on top of the defaults.
// Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the values that would otherwise fail late on hardware.
func (c Config) Validate() error {
	switch c.Distance.Kind {
	case DistanceNone, DistanceSerial, DistanceI2C:
	default:
		return fmt.Errorf("%w: distance kind %q", ErrInvalid, c.Distance.Kind)
	}
	if c.Broker == "" {
		return fmt.Errorf("%w: broker is required", ErrInvalid)
	}
	if c.GPIO.CountsPerRev < 1 {
		return fmt.Errorf("%w: counts_per_rev must be positive", ErrInvalid)
	}
	if c.Distance.Kind == DistanceI2C && c.Distance.Interval <= 0 {
		return fmt.Errorf("%w: distance interval must be positive", ErrInvalid)
	}
	if c.LED.Enabled && len(c.LED.Channels) != 4 {
		return fmt.Errorf("%w: led needs 4 channels, got %d", ErrInvalid, len(c.LED.Channels))
	}
	for name := range c.Params {
		if _, ok := params.Defaults().Get(name); !ok {
			return fmt.Errorf("%w: %w: %q", ErrInvalid, params.ErrUnknownParam, name)
		}
	}
	return nil
}

// Apply sets the configured parameter overrides on p.
func (c Config) Apply(p *params.Params) error {
	for name, value := range c.Params {
		if err := p.Set(name, value); err != nil {
			return fmt.Errorf("apply param: %w", err)
		}
	}
	return nil
}

// TopicBase returns the configured base topic, or lift/<client id>.
func (c Config) TopicBase() string {
	if c.Base != "" {
		return c.Base
	}
	return "lift/" + c.ClientID
}
