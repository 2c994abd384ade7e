//go:build !linux

package gpio

import (
	"errors"
	"time"
)

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// Chip is not available on non-Linux platforms.
type Chip struct{}

// Open returns an error on non-Linux platforms.
func Open(name string) (*Chip, error) {
	return nil, errUnsupported
}

// Input is not implemented on non-Linux platforms.
func (c *Chip) Input(offset int) (Input, error) {
	return nil, errUnsupported
}

// Output is not implemented on non-Linux platforms.
func (c *Chip) Output(offset int) (Output, error) {
	return nil, errUnsupported
}

// EndStop is not implemented on non-Linux platforms.
func (c *Chip) EndStop(offset int, debounce time.Duration, fn func()) (Input, error) {
	return nil, errUnsupported
}

// Encoder is not implemented on non-Linux platforms.
func (c *Chip) Encoder(a, b, countsPerRev int, fn func(rotation float64)) error {
	return errUnsupported
}

// Close is not implemented on non-Linux platforms.
func (c *Chip) Close() error {
	return nil
}
