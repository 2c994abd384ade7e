package logic

import (
	"log"
	"time"

	"github.com/sweeney/lift-controller/internal/fusion"
	"github.com/sweeney/lift-controller/internal/led"
	"github.com/sweeney/lift-controller/internal/params"
)

// Indicator timings for commands.
const (
	pingFlash  = 100 * time.Millisecond
	pingLevel  = 512
	discoFade  = 100 * time.Millisecond
	discoScale = 4194304 // 2^32 / 1024
)

// Tick updates the sensor fusion and feeds the state machine. It is called
// once per control period.
func (c *Controller) Tick(now time.Time) {
	intensity := 0
	if c.pir != nil {
		v, err := c.pir.Read()
		if err != nil {
			log.Printf("pir read error: %v", err)
		} else {
			intensity = v
		}
	}

	motion, changed := c.occupancy.Update(fusion.OccupancyInput{
		Time:        now,
		Intensity:   intensity,
		Position:    c.position,
		RiseHeight:  c.params.RiseHeight,
		Sensitivity: c.params.PIRSensitivity,
		Interval:    time.Duration(c.params.PIRInterval) * time.Millisecond,
	})
	if changed {
		c.publish(TopicMotion, params.FormatBool(motion))
	}

	if c.sentDistance.Check(c.distance) {
		c.publish(TopicDistance, params.FormatFloat(c.distance))
	}

	c.step()
}

// Encoder applies a relative spool rotation to the position.
func (c *Controller) Encoder(rotation float64) {
	if c.params.InvertEncoder {
		rotation = -rotation
	}
	c.position += rotation * c.params.WindingLength

	if c.sentPosition.Check(c.position) {
		c.publish(TopicPosition, params.FormatFloat(c.position))
	}

	c.step()
}

// Distance records a distance sensor reading in cm. It is published on the
// next tick if it moved far enough.
func (c *Controller) Distance(d float64) {
	c.distance = d
}

// EndStop handles the end-stop switch closing.
// It is ignored while already recalibrating or when the switch is disabled.
func (c *Controller) EndStop() {
	if c.state == StateReset || c.state == StateReposition || !c.params.ZeroSwitch {
		return
	}
	c.transition(StateReset)
}

// Command handles an inbound command message. Unknown topics are ignored.
func (c *Controller) Command(topic string, payload []byte) {
	s := string(payload)

	switch topic {
	case CommandMove:
		switch s {
		case "up":
			c.transition(StateMoveUp)
		case "down":
			c.transition(StateMoveDown)
		default:
			c.moveTo = clamp(params.ParseFloat(s), c.params.BaseHeight, c.params.ResetHeight)
			c.transition(StateMoveTo)
		}

	case CommandStop:
		c.params.Automate = false
		if err := c.sink.SyncParam("automate", params.FormatBool(false)); err != nil {
			log.Printf("sync automate error: %v", err)
		}
		c.transition(StateStandby)

	case CommandZero:
		c.transition(StateZero)

	case CommandFlash:
		ms := params.ParseInt(s)
		c.light.Flash(led.Mono(c.params.FlashIntensity), time.Duration(ms)*time.Millisecond)

	case CommandFlashColor:
		v := params.ParseInts(s, 5)
		c.light.Flash(led.RGBW(v[0], v[1], v[2], v[3]), time.Duration(v[4])*time.Millisecond)

	case CommandDisco:
		color := led.RGBW(
			int(c.random()/discoScale),
			int(c.random()/discoScale),
			int(c.random()/discoScale),
			int(c.random()/discoScale),
		)
		c.light.Set(color, discoFade)
	}
}

// ParamChanged applies an updated parameter and re-feeds the active state so
// the new value takes effect immediately.
func (c *Controller) ParamChanged(name, value string) error {
	if err := c.params.Set(name, value); err != nil {
		return err
	}
	c.step()
	return nil
}

// Ping flashes the light so the device can be located.
func (c *Controller) Ping() {
	c.light.Flash(led.White(pingLevel), pingFlash)
}

// Connected is called when the messaging link comes up.
func (c *Controller) Connected() {
	c.transition(StateStandby)
}

// Disconnected is called when the messaging link is lost.
func (c *Controller) Disconnected() {
	c.transition(StateOffline)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
