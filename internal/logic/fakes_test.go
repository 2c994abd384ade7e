package logic

import (
	"fmt"
	"testing"
	"time"

	"github.com/sweeney/lift-controller/internal/led"
	"github.com/sweeney/lift-controller/internal/motion"
	"github.com/sweeney/lift-controller/internal/params"
)

// fakeMotor records motor commands as "up <speed>", "down <speed>" or "stop".
type fakeMotor struct {
	cmds  []string
	speed float64 // signed duty of the last command
}

func (m *fakeMotor) MoveUp(speed float64) {
	m.cmds = append(m.cmds, fmt.Sprintf("up %g", speed))
	m.speed = speed
}

func (m *fakeMotor) MoveDown(speed float64) {
	m.cmds = append(m.cmds, fmt.Sprintf("down %g", speed))
	m.speed = -speed
}

func (m *fakeMotor) HardStop() {
	m.cmds = append(m.cmds, "stop")
	m.speed = 0
}

func (m *fakeMotor) first() string {
	if len(m.cmds) == 0 {
		return ""
	}
	return m.cmds[0]
}

func (m *fakeMotor) last() string {
	if len(m.cmds) == 0 {
		return ""
	}
	return m.cmds[len(m.cmds)-1]
}

type published struct {
	topic   string
	payload string
}

// fakeSink records publishes and parameter syncs.
type fakeSink struct {
	published []published
	synced    map[string]string
	err       error
}

func (s *fakeSink) Publish(topic, payload string, retain bool) error {
	if s.err != nil {
		return s.err
	}
	s.published = append(s.published, published{topic, payload})
	return nil
}

func (s *fakeSink) SyncParam(name, value string) error {
	if s.synced == nil {
		s.synced = make(map[string]string)
	}
	s.synced[name] = value
	return nil
}

// on returns the payloads published on topic, in order.
func (s *fakeSink) on(topic string) []string {
	var out []string
	for _, p := range s.published {
		if p.topic == topic {
			out = append(out, p.payload)
		}
	}
	return out
}

func (s *fakeSink) reset() {
	s.published = nil
}

type fakePIR struct {
	value int
	err   error
}

func (p *fakePIR) Read() (int, error) {
	return p.value, p.err
}

// rig wires a controller to fakes and a simulated spool: the lift moves at
// exactly the velocity the motor was last commanded at.
type rig struct {
	c     *Controller
	motor *fakeMotor
	sink  *fakeSink
	light *led.FakeIndicator
	pir   *fakePIR
	now   time.Time
}

// testParams are the defaults with a direct 1 cm per rotation encoder.
func testParams() params.Params {
	p := params.Defaults()
	p.WindingLength = 1
	p.InvertEncoder = false
	return p
}

func newRig(t *testing.T, p params.Params) *rig {
	t.Helper()
	r := &rig{
		motor: &fakeMotor{},
		sink:  &fakeSink{},
		light: led.NewFakeIndicator(),
		pir:   &fakePIR{},
		now:   time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	r.c = New(Deps{
		Motor:  r.motor,
		Light:  r.light,
		Sink:   r.sink,
		PIR:    r.pir,
		Random: func() uint32 { return 0xFFFFFFFF },
	}, p)
	return r
}

// clear forgets everything recorded so far.
func (r *rig) clear() {
	r.motor.cmds = nil
	r.sink.reset()
	r.light.Reset()
}

// run advances the simulation by ms control periods, or until done reports true.
func (r *rig) run(ms int, done func() bool) bool {
	for i := 0; i < ms; i++ {
		r.now = r.now.Add(time.Millisecond)
		r.c.Tick(r.now)
		if v := r.motor.speed / (motion.MotorScale * motion.MotorDerate); v != 0 {
			r.c.Encoder(v / r.c.params.WindingLength)
		}
		if done != nil && done() {
			return true
		}
	}
	return false
}
