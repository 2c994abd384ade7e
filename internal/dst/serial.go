package dst

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/tarm/serial"
)

// DefaultBaud is the factory UART rate of the TF-Luna.
const DefaultBaud = 115200

// Handler receives each valid reading.
type Handler func(Reading)

// SerialSensor streams frames from a UART lidar.
type SerialSensor struct {
	port io.ReadCloser

	closeOnce sync.Once
	closeErr  error
}

// OpenSerial opens the lidar on a serial device, e.g. /dev/serial0.
func OpenSerial(device string, baud int) (*SerialSensor, error) {
	port, err := serial.OpenPort(&serial.Config{Name: device, Baud: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", device, err)
	}
	return NewSerialSensor(port), nil
}

// NewSerialSensor reads frames from an already open port.
func NewSerialSensor(port io.ReadCloser) *SerialSensor {
	return &SerialSensor{port: port}
}

// Run reads frames until ctx is cancelled or the port fails, calling fn with
// every valid reading. Cancelling ctx closes the port.
func (s *SerialSensor) Run(ctx context.Context, fn Handler) error {
	stop := context.AfterFunc(ctx, func() { s.Close() })
	defer stop()

	sc := NewScanner(s.port)
	for {
		r, err := sc.Next()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read lidar frame: %w", err)
		}
		if r.Valid() {
			fn(r)
		}
	}
}

// Close closes the port. Later calls return the result of the first.
func (s *SerialSensor) Close() error {
	s.closeOnce.Do(func() { s.closeErr = s.port.Close() })
	return s.closeErr
}
