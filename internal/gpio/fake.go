package gpio

import (
	"fmt"
	"sync"
)

// FakeLine is a test double for an input or output line.
type FakeLine struct {
	mu     sync.Mutex
	value  int
	Writes []int

	// Err, if set, is returned by Value and SetValue.
	Err error
}

// NewFakeLine creates a FakeLine reading value.
func NewFakeLine(value int) *FakeLine {
	return &FakeLine{value: value}
}

// Value returns the current level.
func (f *FakeLine) Value() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return 0, f.Err
	}
	return f.value, nil
}

// SetValue records and applies a level.
func (f *FakeLine) SetValue(v int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.value = v
	f.Writes = append(f.Writes, v)
	return nil
}

// Set changes the level without recording a write.
func (f *FakeLine) Set(v int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.value = v
}

// FakeDuty records duty cycles.
type FakeDuty struct {
	Duties []float64
	Err    error
}

// SetDuty records fraction.
func (f *FakeDuty) SetDuty(fraction float64) error {
	if f.Err != nil {
		return f.Err
	}
	f.Duties = append(f.Duties, fraction)
	return nil
}

// Last returns the most recent duty, or 0.
func (f *FakeDuty) Last() float64 {
	if len(f.Duties) == 0 {
		return 0
	}
	return f.Duties[len(f.Duties)-1]
}

// FakeMotor records motor commands as "up <speed>", "down <speed>" or "stop".
// It is safe for concurrent use.
type FakeMotor struct {
	mu       sync.Mutex
	commands []string
	speed    float64
}

// NewFakeMotor creates a FakeMotor for testing.
func NewFakeMotor() *FakeMotor {
	return &FakeMotor{}
}

// MoveUp records an upward command.
func (f *FakeMotor) MoveUp(speed float64) {
	f.record(fmt.Sprintf("up %g", speed), speed)
}

// MoveDown records a downward command.
func (f *FakeMotor) MoveDown(speed float64) {
	f.record(fmt.Sprintf("down %g", speed), -speed)
}

// HardStop records a stop.
func (f *FakeMotor) HardStop() {
	f.record("stop", 0)
}

func (f *FakeMotor) record(cmd string, speed float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, cmd)
	f.speed = speed
}

// Commands returns a copy of all recorded commands.
func (f *FakeMotor) Commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.commands))
	copy(out, f.commands)
	return out
}

// Last returns the most recent command, or "".
func (f *FakeMotor) Last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.commands) == 0 {
		return ""
	}
	return f.commands[len(f.commands)-1]
}

// Speed returns the signed speed of the last command; negative is down.
func (f *FakeMotor) Speed() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.speed
}

// Reset clears recorded commands.
func (f *FakeMotor) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = nil
	f.speed = 0
}
