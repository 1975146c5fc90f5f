package awsiot

import "sync"

// QoS is the MQTT quality-of-service level for subscribe and publish
// operations.
type QoS byte

const (
	AtMostOnce  QoS = 0
	AtLeastOnce QoS = 1
	ExactlyOnce QoS = 2
)

// EventKind tags the variants of an incoming Event.
type EventKind int

const (
	// EventNone marks an empty notification; dispatch loops ignore it.
	EventNone EventKind = iota

	// EventConnected signals that the broker session is established.
	EventConnected

	// EventPublish carries a message published to a subscribed topic.
	EventPublish

	// EventPubAck signals that an outgoing publish was acknowledged.
	EventPubAck

	// EventOther covers notifications this layer does not interpret,
	// including transport errors surfaced by the wrapped library.
	EventOther
)

// PublishEvent is a message delivered on a subscribed topic.
type PublishEvent struct {
	Topic     string
	Payload   []byte
	QoS       QoS
	MessageID uint16
}

// PubAckEvent is the broker's acknowledgment of a QoS >= 1 publish.
type PubAckEvent struct {
	MessageID uint16
}

// Event is the tagged variant delivered by a Connection or EventLoop.
// Exactly one of Publish/PubAck is non-nil for the matching kind; Err
// is set only for EventOther notifications that carry an error.
type Event struct {
	Kind    EventKind
	Publish *PublishEvent
	PubAck  *PubAckEvent
	Err     error
}

// Connection is the receive side of a connected session. The client
// adapter feeds it from the wrapped library's callbacks; the caller
// drains it, either directly or through a Listener.
//
// Delivery is ordered and capacity-bounded; producers block while the
// buffer is full. Once the owning client disconnects, Next drains any
// buffered events and then reports ok=false.
type Connection struct {
	events chan Event
	done   chan struct{}
	once   sync.Once
}

func newConnection(capacity int) *Connection {
	return &Connection{
		events: make(chan Event, capacity),
		done:   make(chan struct{}),
	}
}

// Events exposes the raw event channel for select-based consumers.
// Pair it with Done to detect shutdown; the channel itself is never
// closed.
func (c *Connection) Events() <-chan Event {
	return c.events
}

// Done is closed when the owning client disconnects.
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// Next blocks until the next event arrives. ok is false once the
// connection has been closed and all buffered events are drained.
func (c *Connection) Next() (ev Event, ok bool) {
	select {
	case ev = <-c.events:
		return ev, true
	case <-c.done:
		// Drain what was buffered before shutdown.
		select {
		case ev = <-c.events:
			return ev, true
		default:
			return Event{}, false
		}
	}
}

// push delivers an event, blocking while the buffer is full. Sends
// racing a close are abandoned; paho callbacks may still fire during
// teardown.
func (c *Connection) push(ev Event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

func (c *Connection) close() {
	c.once.Do(func() { close(c.done) })
}
