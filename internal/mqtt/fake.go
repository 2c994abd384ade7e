package mqtt

import (
	"sync"

	"github.com/sweeney/lift-controller/internal/params"
)

// Publication is a recorded device publish.
type Publication struct {
	Topic    string // relative to the base topic
	Payload  string
	Retained bool
}

// FakeClient records everything published for test assertions.
// It is safe for concurrent use.
type FakeClient struct {
	mu sync.Mutex

	published    []Publication
	systemEvents []SystemEvent

	// PublishError, if set, will be returned by Publish and SyncParam.
	PublishError error

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	closed    bool
	connected bool
	flushes   int
	queued    int
}

// NewFakeClient creates a FakeClient for testing.
func NewFakeClient() *FakeClient {
	return &FakeClient{}
}

// Publish records a device publish.
func (f *FakeClient) Publish(topic, payload string, retain bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	f.published = append(f.published, Publication{Topic: topic, Payload: payload, Retained: retain})
	return nil
}

// SyncParam records a retained parameter value.
func (f *FakeClient) SyncParam(name, value string) error {
	return f.Publish(TopicParamValue+name, value, true)
}

// PublishParams records every parameter value.
func (f *FakeClient) PublishParams(p params.Params) error {
	for _, name := range params.Names() {
		v, _ := p.Get(name)
		if err := f.SyncParam(name, v); err != nil {
			return err
		}
	}
	return nil
}

// PublishSystem records the system event.
func (f *FakeClient) PublishSystem(event SystemEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}
	f.systemEvents = append(f.systemEvents, event)
	return nil
}

// Published returns a copy of the recorded publishes.
func (f *FakeClient) Published() []Publication {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Publication, len(f.published))
	copy(out, f.published)
	return out
}

// Payloads returns the payloads published on topic, in order.
func (f *FakeClient) Payloads(topic string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, p := range f.published {
		if p.Topic == topic {
			out = append(out, p.Payload)
		}
	}
	return out
}

// SystemEvents returns a copy of the recorded system events.
func (f *FakeClient) SystemEvents() []SystemEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]SystemEvent, len(f.systemEvents))
	copy(out, f.systemEvents)
	return out
}

// SetConnected controls the return value of IsConnected.
func (f *FakeClient) SetConnected(connected bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = connected
}

// IsConnected reports whether the fake client is "connected".
func (f *FakeClient) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

// Flush records a replay request. Nothing is ever queued by the fake.
func (f *FakeClient) Flush() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
	return 0
}

// Flushes returns how many times Flush was called.
func (f *FakeClient) Flushes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flushes
}

// SetQueued controls the return value of Queued.
func (f *FakeClient) SetQueued(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queued = n
}

// Queued returns the value set by SetQueued.
func (f *FakeClient) Queued() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queued
}

// Close marks the client as closed.
func (f *FakeClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Closed reports whether Close was called.
func (f *FakeClient) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Reset clears recorded publishes and errors.
func (f *FakeClient) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = nil
	f.systemEvents = nil
	f.PublishError = nil
	f.PublishSystemError = nil
	f.closed = false
	f.flushes = 0
}
