package awsiot

import (
	"context"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// newPahoClient is swapped out by tests to inject a mock client.
var newPahoClient = mqtt.NewClient

// publishToken is the slice of paho's PublishToken we rely on for
// acknowledgment reporting.
type publishToken interface {
	MessageID() uint16
}

const disconnectQuiesceMs = 250

// Client is the blocking adapter around the wrapped MQTT library.
// Subscribe and Publish perform the network call on the caller's
// goroutine and return its outcome; incoming traffic is delivered on
// the paired Connection returned by Connect.
type Client struct {
	pc   mqtt.Client
	conn *Connection
}

var _ MessagingClient = (*Client)(nil)

// Connect reads the credential files named by settings, assembles the
// mutual-TLS client options and dials <endpoint>:8883. On success it
// returns exactly one send-capable Client and one receive-capable
// Connection; on any failure neither is created.
//
// Reconnection after a transport drop is the wrapped library's job;
// this layer performs no retry of its own.
func Connect(settings Settings) (*Client, *Connection, error) {
	settings = settings.withDefaults()

	tlsCfg, err := newTLSConfig(settings)
	if err != nil {
		return nil, nil, err
	}

	conn := newConnection(settings.QueueSize)
	opts := newClientOptions(settings, conn)
	opts.SetTLSConfig(tlsCfg)

	c := &Client{
		pc:   newPahoClient(opts),
		conn: conn,
	}

	if token := c.pc.Connect(); token.Wait() && token.Error() != nil {
		conn.close()
		return nil, nil, fmt.Errorf("%w: %w", ErrConnectionFailed, token.Error())
	}

	return c, conn, nil
}

// newClientOptions builds the paho options shared by both client
// variants, wiring the library's callbacks onto conn.
func newClientOptions(settings Settings, conn *Connection) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions().
		AddBroker(settings.brokerURL()).
		SetClientID(settings.ClientID).
		SetKeepAlive(settings.KeepAlive).
		SetCleanSession(true).
		SetAutoReconnect(true)

	opts.SetOnConnectHandler(func(mqtt.Client) {
		conn.push(Event{Kind: EventConnected})
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		conn.push(Event{Kind: EventOther, Err: err})
	})
	opts.SetDefaultPublishHandler(func(_ mqtt.Client, msg mqtt.Message) {
		conn.push(publishEvent(msg))
	})

	return opts
}

func publishEvent(msg mqtt.Message) Event {
	return Event{
		Kind: EventPublish,
		Publish: &PublishEvent{
			Topic:     msg.Topic(),
			Payload:   msg.Payload(),
			QoS:       QoS(msg.Qos()),
			MessageID: msg.MessageID(),
		},
	}
}

// Subscribe registers interest in topic at the given QoS. Messages
// arrive as EventPublish events on the Connection. Failures are
// returned to the caller; nothing aborts the process.
func (c *Client) Subscribe(ctx context.Context, topic string, qos QoS) error {
	if !c.pc.IsConnected() {
		return ErrNotConnected
	}

	token := c.pc.Subscribe(topic, byte(qos), func(_ mqtt.Client, msg mqtt.Message) {
		c.conn.push(publishEvent(msg))
	})
	if err := waitToken(ctx, token); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	return nil
}

// Publish sends payload to topic with retain fixed to false. For
// QoS >= 1 the broker acknowledgment is surfaced as an EventPubAck on
// the Connection once the wrapped library completes the handshake;
// QoS 0 publishes never produce one.
func (c *Client) Publish(ctx context.Context, topic string, qos QoS, payload []byte) error {
	if !c.pc.IsConnected() {
		return ErrNotConnected
	}

	token := c.pc.Publish(topic, byte(qos), false, payload)
	if err := waitToken(ctx, token); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}

	if qos != AtMostOnce {
		if pt, ok := token.(publishToken); ok {
			c.conn.push(Event{
				Kind:   EventPubAck,
				PubAck: &PubAckEvent{MessageID: pt.MessageID()},
			})
		}
	}
	return nil
}

// Disconnect closes the broker session and marks the Connection
// exhausted, terminating any dispatch loop draining it.
func (c *Client) Disconnect() {
	c.pc.Disconnect(disconnectQuiesceMs)
	c.conn.close()
}

// IsConnected reports the wrapped library's view of the session.
func (c *Client) IsConnected() bool {
	return c.pc.IsConnected()
}

// waitToken waits for a paho token, honoring context cancellation.
func waitToken(ctx context.Context, token mqtt.Token) error {
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}
