// Package mqtt connects the lift controller to an MQTT broker.
// It routes inbound device topics to the controller and publishes state,
// sensor values, parameter values and lifecycle events.
package mqtt

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/sweeney/lift-controller/internal/logic"
)

// Topic suffixes below the device base topic.
const (
	TopicSystem     = "system"
	TopicPing       = "naos/ping"
	TopicParamSet   = "naos/set/"
	TopicParamValue = "naos/value/"
)

// Kind classifies an inbound message.
type Kind int

const (
	KindCommand Kind = iota + 1 // a controller command such as move or stop
	KindParam                   // a parameter update
	KindPing                    // a locate request
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindParam:
		return "param"
	case KindPing:
		return "ping"
	}
	return "unknown"
}

// Message is an inbound message routed to a handler.
type Message struct {
	Kind    Kind
	Name    string // command or parameter name; empty for pings
	Payload []byte
}

var commands = []string{
	logic.CommandMove,
	logic.CommandStop,
	logic.CommandZero,
	logic.CommandFlash,
	logic.CommandFlashColor,
	logic.CommandDisco,
}

// Route classifies a full topic received under base.
// It returns false for topics the device does not handle.
func Route(base, topic string, payload []byte) (Message, bool) {
	rest, ok := strings.CutPrefix(topic, base+"/")
	if !ok {
		return Message{}, false
	}

	if rest == TopicPing {
		return Message{Kind: KindPing, Payload: payload}, true
	}
	if name, ok := strings.CutPrefix(rest, TopicParamSet); ok {
		if name == "" || strings.Contains(name, "/") {
			return Message{}, false
		}
		return Message{Kind: KindParam, Name: name, Payload: payload}, true
	}
	for _, c := range commands {
		if rest == c {
			return Message{Kind: KindCommand, Name: c, Payload: payload}, true
		}
	}
	return Message{}, false
}

// Subscriptions returns the topic filters the device listens on.
func Subscriptions(base string) []string {
	filters := make([]string, 0, len(commands)+2)
	for _, c := range commands {
		filters = append(filters, base+"/"+c)
	}
	return append(filters, base+"/"+TopicParamSet+"+", base+"/"+TopicPing)
}

// Client is the broker connection used by the daemon.
type Client interface {
	logic.Sink

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// SystemPayload is the payload for simple system events (LWT, RECONNECTED)
// that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	return json.Marshal(SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	})
}
