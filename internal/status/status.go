// Package status provides a thread-safe status tracker for the lift-controller
// daemon. It is written by the control loop and read by HTTP handlers and
// the metrics collector.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/lift-controller/internal/logic"
)

// NetworkInfo contains network state as reported by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	TickMs      int64
	HeartbeatMs int64
	Broker      string
	Base        string
	ClientID    string
	HTTPAddr    string
	Distance    string // distance sensor kind: "serial", "i2c" or "none"
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type; safe to use after the lock is released.
type Snapshot struct {
	Lift          logic.Snapshot
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Queued        int
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
			Lift:      logic.Snapshot{State: logic.StateOffline},
		},
		now: time.Now,
	}
}

// Update stores the latest controller snapshot.
// Called from runLoop whenever the controller may have changed.
func (t *Tracker) Update(lift logic.Snapshot) {
	t.mu.Lock()
	t.snap.Lift = lift
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status and the number of
// publications waiting for the connection.
func (t *Tracker) SetMQTTConnected(connected bool, queued int) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.snap.Queued = queued
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}
