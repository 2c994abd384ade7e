//go:build linux

package gpio

import (
	"fmt"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// Chip hands out lines from a Linux GPIO character device.
type Chip struct {
	chip    *gpiocdev.Chip
	inputs  []*gpiocdev.Line
	outputs []*gpiocdev.Line
	groups  []*gpiocdev.Lines
}

// Open opens the named GPIO chip, e.g. "gpiochip0".
func Open(name string) (*Chip, error) {
	chip, err := gpiocdev.NewChip(name)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", name, err)
	}
	return &Chip{chip: chip}, nil
}

// Input requests a line as an input with pull-down to match Pi boot defaults.
func (c *Chip) Input(offset int) (Input, error) {
	line, err := c.chip.RequestLine(offset, gpiocdev.AsInput, gpiocdev.WithPullDown)
	if err != nil {
		return nil, fmt.Errorf("request input %d: %w", offset, err)
	}
	c.inputs = append(c.inputs, line)
	return line, nil
}

// Output requests a line as an output driven low.
func (c *Chip) Output(offset int) (Output, error) {
	line, err := c.chip.RequestLine(offset, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request output %d: %w", offset, err)
	}
	c.outputs = append(c.outputs, line)
	return line, nil
}

// EndStop watches a normally open switch to ground and calls fn each time it
// closes. fn runs on the gpiocdev event goroutine.
func (c *Chip) EndStop(offset int, debounce time.Duration, fn func()) (Input, error) {
	opts := []gpiocdev.LineReqOption{
		gpiocdev.WithPullUp,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithEventHandler(func(gpiocdev.LineEvent) { fn() }),
	}
	if debounce > 0 {
		opts = append(opts, gpiocdev.WithDebounce(debounce))
	}

	line, err := c.chip.RequestLine(offset, opts...)
	if err != nil {
		return nil, fmt.Errorf("request end-stop %d: %w", offset, err)
	}
	c.inputs = append(c.inputs, line)
	return line, nil
}

// Encoder decodes a quadrature encoder on lines a and b and calls fn with
// every non-zero rotation step. fn runs on the gpiocdev event goroutine.
func (c *Chip) Encoder(a, b, countsPerRev int, fn func(rotation float64)) error {
	var (
		mu  sync.Mutex
		dec *Decoder
	)

	handler := func(evt gpiocdev.LineEvent) {
		mu.Lock()
		defer mu.Unlock()
		if dec == nil {
			return
		}

		v := 0
		if evt.Type == gpiocdev.LineEventRisingEdge {
			v = 1
		}
		la, lb := dec.Levels()
		if evt.Offset == a {
			la = v
		} else {
			lb = v
		}
		if r := dec.Update(la, lb); r != 0 {
			fn(r)
		}
	}

	lines, err := c.chip.RequestLines([]int{a, b},
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(handler))
	if err != nil {
		return fmt.Errorf("request encoder %d/%d: %w", a, b, err)
	}
	c.groups = append(c.groups, lines)

	vals := make([]int, 2)
	if err := lines.Values(vals); err != nil {
		return fmt.Errorf("read encoder %d/%d: %w", a, b, err)
	}

	mu.Lock()
	dec = NewDecoder(vals[0], vals[1], countsPerRev)
	mu.Unlock()
	return nil
}

// Close releases every requested line and the chip.
// Lines are reconfigured to input with pull-down (matching Pi boot defaults)
// before closing so the motor bridge is left undriven.
func (c *Chip) Close() error {
	var errs []error

	for _, line := range c.outputs {
		if err := line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("drive line low: %w", err))
		}
	}
	for _, line := range append(c.outputs, c.inputs...) {
		if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure line: %w", err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line: %w", err))
		}
	}
	for _, lines := range c.groups {
		if err := lines.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close lines: %w", err))
		}
	}
	if c.chip != nil {
		if err := c.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
