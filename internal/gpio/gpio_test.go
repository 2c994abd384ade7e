package gpio

import (
	"errors"
	"testing"
)

// forward is one full quadrature cycle as (A, B) levels, starting at 00.
var forward = [][2]int{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

func TestQuadDelta(t *testing.T) {
	tests := []struct {
		name      string
		prev, cur uint8
		want      int
	}{
		{"00 to 01", 0b00, 0b01, +1},
		{"01 to 11", 0b01, 0b11, +1},
		{"11 to 10", 0b11, 0b10, +1},
		{"10 to 00", 0b10, 0b00, +1},
		{"01 to 00", 0b01, 0b00, -1},
		{"11 to 01", 0b11, 0b01, -1},
		{"10 to 11", 0b10, 0b11, -1},
		{"00 to 10", 0b00, 0b10, -1},
		{"no change", 0b11, 0b11, 0},
		{"skipped 00 to 11", 0b00, 0b11, 0},
		{"skipped 01 to 10", 0b01, 0b10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := quadDelta(tt.prev, tt.cur); got != tt.want {
				t.Errorf("quadDelta(%02b, %02b) = %d, want %d", tt.prev, tt.cur, got, tt.want)
			}
		})
	}
}

func TestDecoderFullTurn(t *testing.T) {
	d := NewDecoder(0, 0, 8)

	total := 0.0
	for i := 0; i < 2; i++ {
		for _, s := range forward {
			total += d.Update(s[0], s[1])
		}
	}
	if total != 1 {
		t.Errorf("two forward cycles at 8 counts/rev: got %v turns, want 1", total)
	}

	for i := len(forward) - 2; i >= 0; i-- {
		total += d.Update(forward[i][0], forward[i][1])
	}
	total += d.Update(0, 0)
	if total != 0.5 {
		t.Errorf("after one reverse cycle: got %v turns, want 0.5", total)
	}
}

func TestDecoderLevels(t *testing.T) {
	d := NewDecoder(1, 0, 4)
	if a, b := d.Levels(); a != 1 || b != 0 {
		t.Errorf("initial levels: got (%d, %d), want (1, 0)", a, b)
	}
	d.Update(1, 1)
	if a, b := d.Levels(); a != 1 || b != 1 {
		t.Errorf("levels: got (%d, %d), want (1, 1)", a, b)
	}
}

func TestDecoderClampsCountsPerRev(t *testing.T) {
	d := NewDecoder(0, 0, 0)
	if got := d.Update(0, 1); got != 1 {
		t.Errorf("expected one full turn per count, got %v", got)
	}
}

func TestDigitalPIR(t *testing.T) {
	line := NewFakeLine(0)
	pir := NewDigitalPIR(line)

	if v, err := pir.Read(); err != nil || v != 0 {
		t.Errorf("idle: got (%d, %v), want (0, nil)", v, err)
	}

	line.Set(1)
	if v, err := pir.Read(); err != nil || v != PIRLevel {
		t.Errorf("active: got (%d, %v), want (%d, nil)", v, err, PIRLevel)
	}

	line.Err = errors.New("line closed")
	if _, err := pir.Read(); err == nil {
		t.Error("expected read error")
	}
}

func TestHBridge(t *testing.T) {
	tests := []struct {
		name     string
		cmd      func(m *HBridge)
		up, down int
		duty     float64
	}{
		{"up", func(m *HBridge) { m.MoveUp(1023) }, 1, 0, 1},
		{"down", func(m *HBridge) { m.MoveDown(0) }, 0, 1, 0},
		{"stop brakes", func(m *HBridge) { m.HardStop() }, 1, 1, 1},
		{"release coasts", func(m *HBridge) { m.Release() }, 0, 0, 0},
		{"clamped high", func(m *HBridge) { m.MoveUp(5000) }, 1, 0, 1},
		{"clamped low", func(m *HBridge) { m.MoveDown(-3) }, 0, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up, down, duty := NewFakeLine(0), NewFakeLine(0), &FakeDuty{}
			m := NewHBridge(up, down, duty)

			tt.cmd(m)

			if v, _ := up.Value(); v != tt.up {
				t.Errorf("up line: got %d, want %d", v, tt.up)
			}
			if v, _ := down.Value(); v != tt.down {
				t.Errorf("down line: got %d, want %d", v, tt.down)
			}
			if duty.Last() != tt.duty {
				t.Errorf("duty: got %v, want %v", duty.Last(), tt.duty)
			}
		})
	}
}

func TestHBridgeScalesSpeed(t *testing.T) {
	duty := &FakeDuty{}
	m := NewHBridge(NewFakeLine(0), NewFakeLine(0), duty)

	m.MoveUp(511.5)
	if duty.Last() != 0.5 {
		t.Errorf("duty: got %v, want 0.5", duty.Last())
	}
}

func TestHBridgeErrorsDoNotPanic(t *testing.T) {
	up := NewFakeLine(0)
	up.Err = errors.New("line closed")
	duty := &FakeDuty{Err: errors.New("pwm gone")}
	m := NewHBridge(up, NewFakeLine(0), duty)

	m.MoveUp(100)
	m.HardStop()
}

func TestFakeMotor(t *testing.T) {
	m := NewFakeMotor()
	m.MoveUp(512)
	m.MoveDown(3.5)

	if m.Speed() != -3.5 {
		t.Errorf("speed: got %v, want -3.5", m.Speed())
	}
	m.HardStop()

	want := []string{"up 512", "down 3.5", "stop"}
	got := m.Commands()
	if len(got) != len(want) {
		t.Fatalf("commands: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("command %d: got %q, want %q", i, got[i], want[i])
		}
	}
	if m.Last() != "stop" || m.Speed() != 0 {
		t.Errorf("last: got %q speed %v", m.Last(), m.Speed())
	}

	m.Reset()
	if len(m.Commands()) != 0 || m.Last() != "" {
		t.Error("expected no commands after reset")
	}
}
