//go:build linux

package dst

import (
	"fmt"
	"time"

	"github.com/reef-pi/rpi/i2c"
)

// OpenI2C opens the default I2C bus and polls the lidar at addr.
func OpenI2C(addr byte, interval time.Duration) (*I2CSensor, error) {
	bus, err := i2c.New()
	if err != nil {
		return nil, fmt.Errorf("open i2c bus: %w", err)
	}
	return NewI2CSensor(bus, addr, interval), nil
}
