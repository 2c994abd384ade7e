package led

import (
	"log"
	"time"
)

// Call is a recorded indicator command.
type Call struct {
	Flash    bool
	Color    Color
	Duration time.Duration // fade for Set, length for Flash
}

// FakeIndicator records indicator commands for test assertions.
type FakeIndicator struct {
	Calls []Call
}

// NewFakeIndicator creates a FakeIndicator for testing.
func NewFakeIndicator() *FakeIndicator {
	return &FakeIndicator{}
}

// Set records a Set call.
func (f *FakeIndicator) Set(c Color, fade time.Duration) {
	f.Calls = append(f.Calls, Call{Color: c, Duration: fade})
}

// Flash records a Flash call.
func (f *FakeIndicator) Flash(c Color, d time.Duration) {
	f.Calls = append(f.Calls, Call{Flash: true, Color: c, Duration: d})
}

// Last returns the most recent call, if any.
func (f *FakeIndicator) Last() (Call, bool) {
	if len(f.Calls) == 0 {
		return Call{}, false
	}
	return f.Calls[len(f.Calls)-1], true
}

// Reset clears recorded calls.
func (f *FakeIndicator) Reset() {
	f.Calls = nil
}

// LogIndicator logs indicator commands. Used when no light is wired.
type LogIndicator struct{}

// Set logs the requested color.
func (LogIndicator) Set(c Color, fade time.Duration) {
	log.Printf("led: set %s fade=%v", c, fade)
}

// Flash logs the requested flash.
func (LogIndicator) Flash(c Color, d time.Duration) {
	log.Printf("led: flash %s for %v", c, d)
}
