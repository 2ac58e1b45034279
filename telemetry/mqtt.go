package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	natiu "github.com/soypat/natiu-mqtt"
	"golang.org/x/net/proxy"
)

// DefaultTopic is used when MQTTConfig.Topic is empty.
const DefaultTopic = "ds3231/reading"

// MQTTConfig configures both MQTT publishers.
type MQTTConfig struct {
	// Broker is tcp://host:port; the natiu client also accepts host:port.
	Broker string
	Topic  string
	// ClientID defaults to "ds3231-" followed by a random UUID.
	ClientID string
	Timeout  time.Duration
}

func (cfg *MQTTConfig) normalize() error {
	if cfg.Broker == "" {
		return errors.New("telemetry: no MQTT broker")
	}
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "ds3231-" + uuid.NewString()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return nil
}

// Payload returns the JSON form of r published over MQTT.
func Payload(r Reading) ([]byte, error) {
	return json.Marshal(r)
}

// waitFor returns how long to wait for an operation bounded by both timeout
// and the deadline of ctx.
func waitFor(ctx context.Context, timeout time.Duration) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d < timeout {
			return d
		}
	}
	return timeout
}

// PahoPublisher publishes readings with the Eclipse Paho client, which
// reconnects on its own.
type PahoPublisher struct {
	client  mqtt.Client
	topic   string
	timeout time.Duration
}

// DialPaho connects to the broker.
func DialPaho(cfg MQTTConfig) (*PahoPublisher, error) {
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetConnectTimeout(cfg.Timeout).
		SetAutoReconnect(true)
	client := mqtt.NewClient(opts)
	tok := client.Connect()
	if !tok.WaitTimeout(cfg.Timeout) {
		return nil, fmt.Errorf("telemetry: connecting to %s: timed out", cfg.Broker)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("telemetry: connecting to %s: %w", cfg.Broker, err)
	}
	return &PahoPublisher{client: client, topic: cfg.Topic, timeout: cfg.Timeout}, nil
}

func (p *PahoPublisher) Publish(ctx context.Context, r Reading) error {
	payload, err := Payload(r)
	if err != nil {
		return err
	}
	tok := p.client.Publish(p.topic, 0, false, payload)
	if !tok.WaitTimeout(waitFor(ctx, p.timeout)) {
		return errors.New("mqtt publish timed out")
	}
	return tok.Error()
}

func (p *PahoPublisher) Close() error {
	p.client.Disconnect(250)
	return nil
}

// NatiuPublisher publishes readings with the allocation free natiu client.
// It does not reconnect.
type NatiuPublisher struct {
	mu     sync.Mutex
	client *natiu.Client
	conn   net.Conn
	flags  natiu.PacketFlags
	vars   natiu.VariablesPublish
}

// DialNatiu connects to the broker, through the proxy named by the
// environment if there is one.
func DialNatiu(ctx context.Context, cfg MQTTConfig) (*NatiuPublisher, error) {
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	addr := strings.TrimPrefix(cfg.Broker, "tcp://")
	conn, err := proxy.Dial(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("telemetry: dialing %s: %w", addr, err)
	}

	client := natiu.NewClient(natiu.ClientConfig{
		Decoder: natiu.DecoderNoAlloc{UserBuffer: make([]byte, 512)},
	})
	var varconn natiu.VariablesConnect
	varconn.SetDefaultMQTT([]byte(cfg.ClientID))
	if err := client.Connect(ctx, conn, &varconn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("telemetry: connecting to %s: %w", addr, err)
	}

	flags, err := natiu.NewPublishFlags(natiu.QoS0, false, false)
	if err != nil {
		client.Disconnect(err)
		return nil, err
	}
	return &NatiuPublisher{
		client: client,
		conn:   conn,
		flags:  flags,
		// QoS0 publishes never carry the identifier but it must be nonzero.
		vars:   natiu.VariablesPublish{TopicName: []byte(cfg.Topic), PacketIdentifier: 1},
	}, nil
}

func (p *NatiuPublisher) Publish(ctx context.Context, r Reading) error {
	payload, err := Payload(r)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if deadline, ok := ctx.Deadline(); ok {
		p.conn.SetWriteDeadline(deadline)
		defer p.conn.SetWriteDeadline(time.Time{})
	}
	return p.client.PublishPayload(p.flags, p.vars, payload)
}

func (p *NatiuPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.client.Disconnect(errors.New("publisher closed"))
	return p.conn.Close()
}
