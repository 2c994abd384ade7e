// Command lift-controller drives a motorized ceiling lift and exposes it over MQTT.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/sweeney/lift-controller/internal/config"
	"github.com/sweeney/lift-controller/internal/dst"
	"github.com/sweeney/lift-controller/internal/logic"
	"github.com/sweeney/lift-controller/internal/metrics"
	"github.com/sweeney/lift-controller/internal/mqtt"
	"github.com/sweeney/lift-controller/internal/params"
	"github.com/sweeney/lift-controller/internal/status"
	"github.com/sweeney/lift-controller/internal/web"
)

// tickInterval is the control period of the state machine.
const tickInterval = time.Millisecond

func main() {
	cfg, printState, err := loadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	if err := run(cfg, printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// loadConfig parses the command line, reads the optional config file and
// applies every explicitly set flag on top of it.
func loadConfig(args []string) (config.Config, bool, error) {
	d := config.Defaults()
	fs := flag.NewFlagSet("lift-controller", flag.ContinueOnError)
	path := fs.String("config", "", "YAML config file (optional)")
	broker := fs.String("broker", d.Broker, "MQTT broker address")
	clientID := fs.String("client-id", "", "MQTT client id (default lift-<hostname>)")
	base := fs.String("base", "", "Device base topic (default lift/<client-id>)")
	httpAddr := fs.String("http", d.HTTPAddr, "HTTP status address (empty to disable)")
	heartbeat := fs.Duration("heartbeat", d.Heartbeat, "Heartbeat interval (0 to disable)")
	printState := fs.Bool("print-state", false, "Print end-stop and PIR state and exit")

	if err := fs.Parse(args); err != nil {
		return d, false, err
	}

	cfg := d
	if *path != "" {
		var err error
		if cfg, err = config.Load(*path); err != nil {
			return cfg, false, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "broker":
			cfg.Broker = *broker
		case "client-id":
			cfg.ClientID = *clientID
		case "base":
			cfg.Base = *base
		case "http":
			cfg.HTTPAddr = *httpAddr
		case "heartbeat":
			cfg.Heartbeat = *heartbeat
		}
	})
	if cfg.ClientID == "" {
		cfg.ClientID = defaultClientID()
	}
	if err := cfg.Validate(); err != nil {
		return cfg, false, err
	}
	return cfg, *printState, nil
}

// defaultClientID names the device after the host, so the default base
// topic survives restarts.
func defaultClientID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "lift-" + uuid.NewString()[:8]
	}
	return "lift-" + host
}

func run(cfg config.Config, printState bool) error {
	if printState {
		return printLines(cfg.GPIO)
	}

	p := params.Defaults()
	if err := cfg.Apply(&p); err != nil {
		return err
	}

	rotation := make(chan float64, 1024)
	endStop := make(chan struct{}, 1)
	hw, err := openHardware(cfg, rotation, endStop)
	if err != nil {
		return err
	}
	defer hw.Close()

	// Initialize MQTT
	base := cfg.TopicBase()
	client, err := mqtt.NewRealClient(mqtt.Options{
		Broker:   cfg.Broker,
		ClientID: cfg.ClientID,
		Base:     base,
	})
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer client.Close()

	tracker := status.NewTracker(time.Now(), status.Config{
		TickMs:      tickInterval.Milliseconds(),
		HeartbeatMs: cfg.Heartbeat.Milliseconds(),
		Broker:      cfg.Broker,
		Base:        base,
		ClientID:    cfg.ClientID,
		HTTPAddr:    cfg.HTTPAddr,
		Distance:    cfg.Distance.Kind,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	ctrl := logic.New(logic.Deps{
		Motor: hw.motor,
		Light: hw.light,
		Sink:  client,
		PIR:   hw.pir,
	}, p)
	tracker.Update(ctrl.Snapshot())

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := client.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	collector := metrics.New()
	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker, collector)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTPAddr)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	distance := make(chan float64, 1)
	if hw.sensor != nil {
		go func() {
			err := hw.sensor.Run(ctx, func(r dst.Reading) {
				offerLatest(distance, r.Distance)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("distance sensor stopped: %v", err)
			}
		}()
	}

	log.Printf("started: broker=%s base=%s distance=%s heartbeat=%v", cfg.Broker, base, cfg.Distance.Kind, cfg.Heartbeat)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	var heartbeat <-chan time.Time
	if cfg.Heartbeat > 0 {
		hb := time.NewTicker(cfg.Heartbeat)
		defer hb.Stop()
		heartbeat = hb.C
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(ctrl, client, tracker, collector, time.Now, inputs{
		tick:      ticker.C,
		heartbeat: heartbeat,
		rotation:  rotation,
		endStop:   endStop,
		distance:  distance,
		messages:  client.Messages(),
		links:     client.Links(),
		sig:       sigCh,
	})
}

// inputs are the event sources runLoop serializes onto the controller.
// A nil channel is never selected.
type inputs struct {
	tick      <-chan time.Time
	heartbeat <-chan time.Time
	rotation  <-chan float64
	endStop   <-chan struct{}
	distance  <-chan float64
	messages  <-chan mqtt.Message
	links     <-chan bool
	sig       <-chan os.Signal
}

// broker is the MQTT surface used by runLoop.
type broker interface {
	mqtt.Client
	mqtt.ConnectionStatus
	PublishParams(p params.Params) error
	Flush() int
	Queued() int
}

// messageCounter is told about every inbound message.
type messageCounter interface {
	Message(kind, name string)
}

func runLoop(ctrl *logic.Controller, client broker, tracker *status.Tracker, counter messageCounter, now func() time.Time, in inputs) error {
	connectedBefore := false

	for {
		select {
		case s := <-in.sig:
			log.Printf("received %v, shutting down", s)
			ctrl.Disconnected()

			reason := signalName(s)
			tracker.Update(ctrl.Snapshot())
			tracker.SetMQTTConnected(client.IsConnected(), client.Queued())
			snap := tracker.Snapshot()
			event := mqtt.SystemEvent{
				Timestamp:  now(),
				Event:      "SHUTDOWN",
				Reason:     reason,
				Retained:   true,
				RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", reason),
			}
			if err := client.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-in.tick:
			ctrl.Tick(now())

		case r := <-in.rotation:
			ctrl.Encoder(r)

		case <-in.endStop:
			log.Printf("end-stop closed")
			ctrl.EndStop()

		case d := <-in.distance:
			ctrl.Distance(d)

		case m := <-in.messages:
			handleMessage(ctrl, client, m)
			if counter != nil {
				counter.Message(m.Kind.String(), m.Name)
			}

		case up := <-in.links:
			if !up {
				ctrl.Disconnected()
				break
			}
			if n := client.Flush(); n > 0 {
				log.Printf("replayed %d queued messages", n)
			}
			if err := client.PublishParams(ctrl.Params()); err != nil {
				log.Printf("publish params error: %v", err)
			}
			if connectedBefore {
				event := mqtt.SystemEvent{Timestamp: now(), Event: "RECONNECTED"}
				if err := client.PublishSystem(event); err != nil {
					log.Printf("failed to publish reconnected event: %v", err)
				}
			}
			connectedBefore = true
			ctrl.Connected()

		case <-in.heartbeat:
			if net := readNetworkInfo(); net != nil {
				tracker.SetNetwork(net)
			}
			tracker.Update(ctrl.Snapshot())
			tracker.SetMQTTConnected(client.IsConnected(), client.Queued())
			snap := tracker.Snapshot()
			log.Printf("heartbeat: state=%s position=%.2f transitions=%d", snap.Lift.State, snap.Lift.Position, snap.Lift.Transitions)

			event := mqtt.SystemEvent{
				Timestamp:  snap.Now,
				Event:      "HEARTBEAT",
				RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
			}
			if err := client.PublishSystem(event); err != nil {
				log.Printf("heartbeat publish error: %v", err)
			}
		}

		// Update status tracker for HTTP consumers
		tracker.Update(ctrl.Snapshot())
		tracker.SetMQTTConnected(client.IsConnected(), client.Queued())
	}
}

// handleMessage dispatches one routed inbound message to the controller.
func handleMessage(ctrl *logic.Controller, sink logic.Sink, m mqtt.Message) {
	switch m.Kind {
	case mqtt.KindCommand:
		log.Printf("command: %s %q", m.Name, m.Payload)
		ctrl.Command(m.Name, m.Payload)

	case mqtt.KindParam:
		if err := ctrl.ParamChanged(m.Name, string(m.Payload)); err != nil {
			log.Printf("param %s: %v", m.Name, err)
			return
		}
		v, _ := ctrl.Params().Get(m.Name)
		if err := sink.SyncParam(m.Name, v); err != nil {
			log.Printf("sync param %s error: %v", m.Name, err)
		}

	case mqtt.KindPing:
		ctrl.Ping()
	}
}

// offerLatest hands v to the loop, replacing a reading it has not taken
// yet. ch must have a single sender.
func offerLatest(ch chan float64, v float64) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
