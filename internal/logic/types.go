// Package logic contains the lift controller state machine.
// This package has NO external I/O (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters, and every handler is
// expected to be called from a single goroutine.
package logic

import (
	"time"

	"github.com/sweeney/lift-controller/internal/params"
)

// State is the behavioral mode of the lift.
type State int

const (
	StateOffline    State = iota // waits for connectivity
	StateStandby                 // waits for commands
	StateMoveUp                  // moves up until stopped
	StateMoveDown                // moves down until stopped
	StateMoveTo                  // approaches a commanded position
	StateAutomate                // follows the occupancy sensors
	StateZero                    // moves up until the end-stop fires
	StateReset                   // recalibrates position
	StateReposition              // backs off the end-stop after a reset
)

var stateNames = [...]string{
	StateOffline:    "OFFLINE",
	StateStandby:    "STANDBY",
	StateMoveUp:     "MOVE_UP",
	StateMoveDown:   "MOVE_DOWN",
	StateMoveTo:     "MOVE_TO",
	StateAutomate:   "AUTOMATE",
	StateZero:       "ZERO",
	StateReset:      "RESET",
	StateReposition: "REPOSITION",
}

// String returns the published name of the state.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return ""
	}
	return stateNames[s]
}

// States lists every state in declaration order.
func States() []State {
	out := make([]State, len(stateNames))
	for i := range stateNames {
		out[i] = State(i)
	}
	return out
}

// Published topics, relative to the device base topic.
const (
	TopicState    = "state"
	TopicMotion   = "motion"
	TopicDistance = "distance"
	TopicPosition = "position"
)

// Command topics.
const (
	CommandMove       = "move"
	CommandStop       = "stop"
	CommandZero       = "zero"
	CommandFlash      = "flash"
	CommandFlashColor = "flash-color"
	CommandDisco      = "disco"
)

// RetractHeight is how far below reset height the lift parks after a reset (cm).
const RetractHeight = 5.0

// Driver commands the lift motor. Speeds are on the 0..1023 duty scale.
type Driver interface {
	MoveUp(speed float64)
	MoveDown(speed float64)
	HardStop()
}

// Sink receives everything the controller publishes.
type Sink interface {
	// Publish sends a value on a device topic.
	// Returns error if publishing fails (should not crash the process).
	Publish(topic, payload string, retain bool) error

	// SyncParam reports a parameter the controller changed itself.
	SyncParam(name, value string) error
}

// PIR reads the instantaneous intensity of the motion sensor.
type PIR interface {
	Read() (int, error)
}

// Snapshot is a point-in-time view of the controller.
type Snapshot struct {
	State       State
	Position    float64
	Distance    float64
	Motion      bool
	LastMotion  time.Time
	MoveTo      float64
	Transitions int
	Params      params.Params
}
