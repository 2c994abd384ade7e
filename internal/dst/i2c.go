package dst

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"
)

// DefaultI2CAddress is the factory I2C address of the TF-Luna.
const DefaultI2CAddress = 0x10

// regDistance is the first of the DistL DistH AmpL AmpH TempL TempH registers.
const regDistance = 0x00

// Bus is the subset of the reef-pi I2C bus the sensor uses.
type Bus interface {
	WriteBytes(addr byte, value []byte) error
	ReadBytes(addr byte, num int) ([]byte, error)
}

// I2CSensor polls a lidar over I2C.
type I2CSensor struct {
	bus      Bus
	addr     byte
	interval time.Duration
	closer   io.Closer
}

// NewI2CSensor creates a sensor polling addr on bus every interval.
func NewI2CSensor(bus Bus, addr byte, interval time.Duration) *I2CSensor {
	s := &I2CSensor{bus: bus, addr: addr, interval: interval}
	if c, ok := bus.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// Read takes one measurement.
func (s *I2CSensor) Read() (Reading, error) {
	if err := s.bus.WriteBytes(s.addr, []byte{regDistance}); err != nil {
		return Reading{}, fmt.Errorf("select distance register: %w", err)
	}
	b, err := s.bus.ReadBytes(s.addr, 6)
	if err != nil {
		return Reading{}, fmt.Errorf("read distance registers: %w", err)
	}
	if len(b) < 6 {
		return Reading{}, ErrShortFrame
	}

	return Reading{
		Distance:    float64(le16(b[0:])),
		Strength:    int(le16(b[2:])),
		Temperature: float64(le16(b[4:])) / 100,
	}, nil
}

// Run polls until ctx is cancelled, calling fn with every valid reading.
// Read errors are logged and the sample skipped.
func (s *I2CSensor) Run(ctx context.Context, fn Handler) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r, err := s.Read()
			if err != nil {
				log.Printf("dst: %v", err)
				continue
			}
			if r.Valid() {
				fn(r)
			}
		}
	}
}

// Close releases the bus if it can be closed.
func (s *I2CSensor) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
