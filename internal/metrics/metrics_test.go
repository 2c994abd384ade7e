package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sweeney/lift-controller/internal/logic"
	"github.com/sweeney/lift-controller/internal/status"
)

// value returns the metric with the given name whose labels include want.
func value(t *testing.T, c *Collector, name string, want map[string]string) float64 {
	t.Helper()
	families, err := c.Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			matched := 0
			for _, lp := range m.GetLabel() {
				if v, ok := want[lp.GetName()]; ok && v == lp.GetValue() {
					matched++
				}
			}
			if matched != len(want) {
				continue
			}
			if g := m.GetGauge(); g != nil {
				return g.GetValue()
			}
			return m.GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s %v not found", name, want)
	return 0
}

func TestObserve(t *testing.T) {
	c := New()
	c.Observe(status.Snapshot{
		Lift: logic.Snapshot{
			State:       logic.StateMoveTo,
			Position:    12.5,
			Distance:    80,
			MoveTo:      100,
			Motion:      true,
			Transitions: 3,
		},
		MQTTConnected: true,
		Queued:        2,
	})

	tests := []struct {
		name   string
		labels map[string]string
		want   float64
	}{
		{"lift_state", map[string]string{"state": "MOVE_TO"}, 1},
		{"lift_state", map[string]string{"state": "STANDBY"}, 0},
		{"lift_position_cm", nil, 12.5},
		{"lift_distance_cm", nil, 80},
		{"lift_move_to_cm", nil, 100},
		{"lift_motion", nil, 1},
		{"lift_transitions_total", nil, 3},
		{"lift_mqtt_connected", nil, 1},
		{"lift_mqtt_queued_messages", nil, 2},
	}

	for _, tt := range tests {
		if got := value(t, c, tt.name, tt.labels); got != tt.want {
			t.Errorf("%s%v: got %v, want %v", tt.name, tt.labels, got, tt.want)
		}
	}
}

func TestTransitionsCountDeltas(t *testing.T) {
	c := New()
	for _, n := range []int{2, 2, 5} {
		c.Observe(status.Snapshot{Lift: logic.Snapshot{Transitions: n}})
	}
	if got := value(t, c, "lift_transitions_total", nil); got != 5 {
		t.Errorf("transitions: got %v, want 5", got)
	}
}

func TestMessageCounter(t *testing.T) {
	c := New()
	c.Message("command", "move")
	c.Message("command", "move")
	c.Message("param", "automate")

	if got := value(t, c, "lift_mqtt_messages_total", map[string]string{"kind": "command", "name": "move"}); got != 2 {
		t.Errorf("move: got %v, want 2", got)
	}
	if got := value(t, c, "lift_mqtt_messages_total", map[string]string{"kind": "param", "name": "automate"}); got != 1 {
		t.Errorf("automate: got %v, want 1", got)
	}
}

func TestHandler(t *testing.T) {
	c := New()
	c.Observe(status.Snapshot{Lift: logic.Snapshot{State: logic.StateStandby, Position: 42}})

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		"lift_position_cm 42",
		`lift_state{state="STANDBY"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("body missing %q", want)
		}
	}
}
