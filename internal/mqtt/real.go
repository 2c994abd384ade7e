package mqtt

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sweeney/lift-controller/internal/params"
)

// DefaultQueueSize is how many publications are kept while offline.
const DefaultQueueSize = 100

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

// Options configure a RealClient.
type Options struct {
	Broker    string // e.g. tcp://localhost:1883
	ClientID  string
	Base      string // device base topic
	QueueSize int
}

// RealClient talks to an actual MQTT broker.
// Inbound messages and connection changes are delivered on channels so
// the caller can serialize them with everything else it handles.
type RealClient struct {
	client paho.Client
	base   string

	mu    sync.Mutex
	queue *offlineQueue

	messages chan Message
	links    chan bool
}

// NewRealClient creates a client and starts connecting. If the broker is
// not reachable within the connect timeout it keeps retrying in the
// background; the first successful connect is reported on Links.
func NewRealClient(opts Options) (*RealClient, error) {
	if opts.QueueSize == 0 {
		opts.QueueSize = DefaultQueueSize
	}
	c := &RealClient{
		base:     opts.Base,
		queue:    newOfflineQueue(opts.QueueSize),
		messages: make(chan Message, 64),
		links:    make(chan bool, 8),
	}

	will, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "SHUTDOWN",
		Reason:    "MQTT_DISCONNECT",
	})
	if err != nil {
		return nil, fmt.Errorf("format will payload: %w", err)
	}

	po := paho.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetWill(c.topic(TopicSystem), string(will), 1, true).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(c.onConnectionLost)

	c.client = paho.NewClient(po)
	token := c.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		log.Printf("mqtt: broker %s not reachable yet, retrying in background", opts.Broker)
		return c, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	return c, nil
}

// Messages delivers routed inbound messages.
func (c *RealClient) Messages() <-chan Message {
	return c.messages
}

// Links delivers true on every connect and false on every connection loss.
func (c *RealClient) Links() <-chan bool {
	return c.links
}

func (c *RealClient) topic(suffix string) string {
	return c.base + "/" + suffix
}

func (c *RealClient) onConnect(client paho.Client) {
	log.Printf("mqtt: connected")

	filters := make(map[string]byte)
	for _, f := range Subscriptions(c.base) {
		filters[f] = 0
	}
	token := client.SubscribeMultiple(filters, c.onMessage)
	go func() {
		if token.WaitTimeout(publishTimeout) && token.Error() != nil {
			log.Printf("mqtt: subscribe error: %v", token.Error())
		}
	}()

	c.links <- true
}

func (c *RealClient) onConnectionLost(_ paho.Client, err error) {
	log.Printf("mqtt: connection lost: %v", err)
	c.links <- false
}

func (c *RealClient) onMessage(_ paho.Client, msg paho.Message) {
	m, ok := Route(c.base, msg.Topic(), msg.Payload())
	if !ok {
		log.Printf("mqtt: ignoring message on %s", msg.Topic())
		return
	}
	c.messages <- m
}

// Publish sends a value on a device topic, QoS 0.
// While disconnected the message is queued for replay.
func (c *RealClient) Publish(topic, payload string, retain bool) error {
	return c.publish(publication{topic: c.topic(topic), payload: []byte(payload), retained: retain})
}

// SyncParam publishes a parameter value, retained.
func (c *RealClient) SyncParam(name, value string) error {
	return c.Publish(TopicParamValue+name, value, true)
}

// PublishParams publishes every parameter value.
func (c *RealClient) PublishParams(p params.Params) error {
	var errs []error
	for _, name := range params.Names() {
		v, _ := p.Get(name)
		if err := c.SyncParam(name, v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PublishSystem sends a system lifecycle event.
// QoS 1 (at-least-once) since shutdown events must be delivered.
func (c *RealClient) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return c.publish(publication{topic: c.topic(TopicSystem), payload: payload, qos: 1, retained: event.Retained})
}

func (c *RealClient) publish(p publication) error {
	if !c.client.IsConnectionOpen() {
		c.mu.Lock()
		c.queue.push(p)
		c.mu.Unlock()
		return nil
	}

	token := c.client.Publish(p.topic, p.qos, p.retained, p.payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s: timeout", p.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", p.topic, err)
	}
	return nil
}

// Flush replays queued publications after a reconnect and returns how many
// were sent.
func (c *RealClient) Flush() int {
	c.mu.Lock()
	pending := c.queue.drain()
	c.mu.Unlock()

	if len(pending) > 0 {
		log.Printf("mqtt: replaying %d queued messages", len(pending))
	}
	sent := 0
	for _, p := range pending {
		if err := c.publish(p); err != nil {
			log.Printf("mqtt: replay error: %v", err)
			continue
		}
		sent++
	}
	return sent
}

// Queued returns the number of publications waiting for a connection.
func (c *RealClient) Queued() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.len()
}

// IsConnected reports whether the connection to the broker is open.
func (c *RealClient) IsConnected() bool {
	return c.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (c *RealClient) Close() error {
	c.client.Disconnect(1000) // 1 second timeout
	return nil
}
