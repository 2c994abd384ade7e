package led

import (
	"log"
	"sync"
	"time"
)

// Dimmer is a single PWM output.
type Dimmer interface {
	SetDuty(fraction float64) error
}

// fadeStep is the interval between fade updates.
const fadeStep = 10 * time.Millisecond

// PWMIndicator drives four PWM outputs as an RGBW light.
// Fades and flashes run on their own timers; a newer Set or Flash supersedes
// any that is still in progress.
type PWMIndicator struct {
	mu       sync.Mutex
	channels [4]Dimmer
	held     Color // color to return to after a flash
	shown    Color // color currently on the outputs
	gen      uint64
	timer    *time.Timer
}

// NewPWMIndicator returns an indicator over the red, green, blue and white outputs.
func NewPWMIndicator(r, g, b, w Dimmer) *PWMIndicator {
	return &PWMIndicator{channels: [4]Dimmer{r, g, b, w}}
}

// Set fades to c over fade.
func (p *PWMIndicator) Set(c Color, fade time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.held = c
	gen := p.supersede()
	if fade <= 0 {
		p.show(c)
		return
	}

	from := p.shown
	steps := int(fade / fadeStep)
	if steps < 1 {
		steps = 1
	}
	p.fade(gen, from, c, 1, steps)
}

// fade shows step i of n between from and to and schedules the next step.
// Caller holds p.mu.
func (p *PWMIndicator) fade(gen uint64, from, to Color, i, n int) {
	p.show(mix(from, to, float64(i)/float64(n)))
	if i >= n {
		return
	}
	p.timer = time.AfterFunc(fadeStep, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.gen != gen {
			return
		}
		p.fade(gen, from, to, i+1, n)
	})
}

// Flash shows c for d and then restores the held color.
func (p *PWMIndicator) Flash(c Color, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	gen := p.supersede()
	p.show(c)
	p.timer = time.AfterFunc(d, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.gen != gen {
			return
		}
		p.show(p.held)
	})
}

// supersede cancels any running fade or flash. Caller holds p.mu.
func (p *PWMIndicator) supersede() uint64 {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.gen++
	return p.gen
}

// show writes c to the outputs. Caller holds p.mu.
func (p *PWMIndicator) show(c Color) {
	levels := [4]int{c.R, c.G, c.B, c.W}
	for i, ch := range p.channels {
		if ch == nil {
			continue
		}
		if err := ch.SetDuty(float64(levels[i]) / MaxLevel); err != nil {
			log.Printf("led: channel %d: %v", i, err)
		}
	}
	p.shown = c
}

// Shown returns the color currently on the outputs.
func (p *PWMIndicator) Shown() Color {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shown
}

func mix(from, to Color, t float64) Color {
	lerp := func(a, b int) int {
		return a + int(float64(b-a)*t)
	}
	return Color{
		R: lerp(from.R, to.R),
		G: lerp(from.G, to.G),
		B: lerp(from.B, to.B),
		W: lerp(from.W, to.W),
	}
}
