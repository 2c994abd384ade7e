package status

import (
	"encoding/json"
	"math"
	"time"

	"github.com/sweeney/lift-controller/internal/params"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string            `json:"event,omitempty"`
	Reason        string            `json:"reason,omitempty"`
	State         string            `json:"state"`
	Position      float64           `json:"position"`
	Distance      float64           `json:"distance"`
	MoveTo        float64           `json:"move_to"`
	Motion        bool              `json:"motion"`
	LastMotion    string            `json:"last_motion,omitempty"`
	Transitions   int               `json:"transitions"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	StartTime     string            `json:"start_time"`
	Timestamp     string            `json:"timestamp"`
	MQTT          MQTTStatus        `json:"mqtt"`
	Params        map[string]string `json:"params"`
	Network       *NetworkJSON      `json:"network,omitempty"`
	Config        ConfigJSON        `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
	Base      string `json:"base"`
	Queued    int    `json:"queued"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	TickMs      int64  `json:"tick_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	ClientID    string `json:"client_id"`
	HTTPAddr    string `json:"http_addr"`
	Distance    string `json:"distance_sensor"`
}

// round2 rounds to the published two decimals. Non-finite values, which
// JSON cannot carry, become 0.
func round2(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return math.Round(v*100) / 100
}

func buildInner(snap Snapshot) StatusInner {
	lift := snap.Lift

	state := lift.State.String()
	if state == "" {
		state = "UNKNOWN"
	}

	values := make(map[string]string)
	for _, name := range params.Names() {
		values[name], _ = lift.Params.Get(name)
	}

	inner := StatusInner{
		State:         state,
		Position:      round2(lift.Position),
		Distance:      round2(lift.Distance),
		MoveTo:        round2(lift.MoveTo),
		Motion:        lift.Motion,
		Transitions:   lift.Transitions,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT: MQTTStatus{
			Connected: snap.MQTTConnected,
			Broker:    snap.Config.Broker,
			Base:      snap.Config.Base,
			Queued:    snap.Queued,
		},
		Params: values,
		Config: ConfigJSON{
			TickMs:      snap.Config.TickMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			ClientID:    snap.Config.ClientID,
			HTTPAddr:    snap.Config.HTTPAddr,
			Distance:    snap.Config.Distance,
		},
	}
	if !lift.LastMotion.IsZero() {
		inner.LastMotion = lift.LastMotion.UTC().Format(time.RFC3339)
	}
	return inner
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
