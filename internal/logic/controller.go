package logic

import (
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"github.com/sweeney/lift-controller/internal/fusion"
	"github.com/sweeney/lift-controller/internal/led"
	"github.com/sweeney/lift-controller/internal/motion"
	"github.com/sweeney/lift-controller/internal/params"
)

// indicatorFade is the fade used when entering an idle state.
const indicatorFade = 100 * time.Millisecond

// Deps are the collaborators a Controller drives.
type Deps struct {
	Motor Driver
	Light led.Indicator
	Sink  Sink
	PIR   PIR // optional; without it the lift never sees motion

	// Random returns uniformly distributed 32 bit values. Defaults to math/rand/v2.
	Random func() uint32
}

// Controller owns all lift state and runs the device state machine.
// It is not safe for concurrent use; serialize every call through one goroutine.
type Controller struct {
	motor  Driver
	light  led.Indicator
	sink   Sink
	pir    PIR
	random func() uint32

	params params.Params
	state  State

	position float64
	distance float64
	moveTo   float64

	profile      motion.Profile
	occupancy    fusion.Occupancy
	sentDistance *fusion.Hysteresis
	sentPosition *fusion.Hysteresis

	transitions int
}

// New creates a controller in the Offline state with the given parameters.
func New(deps Deps, p params.Params) *Controller {
	random := deps.Random
	if random == nil {
		random = rand.Uint32
	}
	return &Controller{
		motor:        deps.Motor,
		light:        deps.Light,
		sink:         deps.Sink,
		pir:          deps.PIR,
		random:       random,
		params:       p,
		state:        StateOffline,
		sentDistance: fusion.NewStrictHysteresis(fusion.DistanceBand),
		sentPosition: fusion.NewHysteresis(fusion.PositionBand),
	}
}

// State returns the active state.
func (c *Controller) State() State {
	return c.state
}

// Params returns the current parameter snapshot.
func (c *Controller) Params() params.Params {
	return c.params
}

// Position returns the measured position in cm.
func (c *Controller) Position() float64 {
	return c.position
}

// MoveTo returns the last commanded target in cm.
func (c *Controller) MoveTo() float64 {
	return c.moveTo
}

// Snapshot returns a copy of the controller state for display.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		State:       c.state,
		Position:    c.position,
		Distance:    c.distance,
		Motion:      c.occupancy.Motion(),
		LastMotion:  c.occupancy.LastMotion(),
		MoveTo:      c.moveTo,
		Transitions: c.transitions,
		Params:      c.params,
	}
}

// transition enters next and keeps entering whatever the following feed
// steps request, until a feed step settles.
func (c *Controller) transition(next State) {
	for next != c.state {
		log.Printf("transition: %s", next)
		c.enter(next)
		c.publish(TopicState, next.String())

		var ok bool
		if next, ok = c.feed(); !ok {
			return
		}
	}
}

// step runs the feed step of the active state and follows any transition it
// requests.
func (c *Controller) step() {
	if next, ok := c.feed(); ok {
		c.transition(next)
	}
}

// enter runs the entry action of s and makes it the active state.
func (c *Controller) enter(s State) {
	switch s {
	case StateOffline:
		c.motor.HardStop()
		c.light.Set(led.Mono(0), indicatorFade)

	case StateStandby:
		c.motor.HardStop()
		c.light.Set(led.Mono(c.params.IdleLight), indicatorFade)

	case StateMoveUp:
		c.motor.MoveUp(float64(c.params.MoveUpSpeed))

	case StateMoveDown:
		c.motor.MoveDown(float64(c.params.MoveDownSpeed))

	case StateMoveTo:
		c.motor.HardStop()
		c.profile.Reset()

	case StateAutomate:
		c.profile.Reset()

	case StateZero:
		c.motor.MoveUp(float64(c.params.ZeroSpeed))

	case StateReset:
		c.motor.HardStop()
		c.position = c.params.ResetHeight

	case StateReposition:
		c.motor.HardStop()
		c.profile.Reset()

	default:
		panic(fmt.Sprintf("logic: enter unknown state %d", s))
	}

	c.state = s
	c.transitions++
}

// feed advances the active state by one step. It returns the state to
// transition to, if any.
func (c *Controller) feed() (State, bool) {
	switch c.state {
	case StateOffline, StateMoveUp, StateMoveDown, StateZero:
		// held until an external event

	case StateStandby:
		if c.params.Automate {
			return StateAutomate, true
		}

	case StateMoveTo:
		if c.approach(c.moveTo) {
			return StateStandby, true
		}

	case StateAutomate:
		// the motor is still commanded on the tick automation is switched
		// off; the standby entry stops it right after
		disabled := !c.params.Automate

		target := c.params.IdleHeight
		if c.occupancy.Motion() {
			target = c.params.RiseHeight
		}
		c.approach(target)

		if disabled {
			return StateStandby, true
		}

	case StateReset:
		return StateReposition, true

	case StateReposition:
		if c.approach(c.params.ResetHeight - RetractHeight) {
			return StateStandby, true
		}
	}

	return c.state, false
}

func (c *Controller) approach(target float64) bool {
	return c.profile.Approach(c.position, target, c.motor)
}

func (c *Controller) publish(topic, payload string) {
	if err := c.sink.Publish(topic, payload, false); err != nil {
		log.Printf("publish %s error: %v", topic, err)
	}
}
