//go:build !linux

package dst

import (
	"errors"
	"time"
)

// OpenI2C returns an error on non-Linux platforms.
func OpenI2C(addr byte, interval time.Duration) (*I2CSensor, error) {
	return nil, errors.New("dst: i2c not supported on this platform (requires Linux)")
}
