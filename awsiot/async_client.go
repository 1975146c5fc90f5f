package awsiot

import (
	"context"
	"fmt"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type requestKind int

const (
	requestSubscribe requestKind = iota
	requestPublish
)

// request is an enqueued subscribe or publish awaiting the event loop.
type request struct {
	kind    requestKind
	topic   string
	qos     QoS
	payload []byte
}

// AsyncClient is the concurrent adapter variant. It holds only the
// send side of a bounded request channel; all network I/O happens on
// whichever goroutine drives the paired EventLoop. Subscribe and
// Publish block only while the channel is full.
type AsyncClient struct {
	requests chan<- request
	stop     chan struct{}
	once     sync.Once
}

var _ MessagingClient = (*AsyncClient)(nil)

// EventLoop owns the broker session of an AsyncClient. The caller must
// keep invoking Poll; each call services pending requests and returns
// the next incoming event.
type EventLoop struct {
	pc       mqtt.Client
	conn     *Connection
	requests <-chan request
	stop     <-chan struct{}
	once     sync.Once
}

// ConnectAsync builds the same mutual-TLS session as Connect but
// returns the channel-backed handle and the event loop that drains it.
// Construction honors ctx while waiting on the broker handshake.
// Exactly one handle and one loop are produced; on failure, neither.
func ConnectAsync(ctx context.Context, settings Settings) (*AsyncClient, *EventLoop, error) {
	settings = settings.withDefaults()

	tlsCfg, err := newTLSConfig(settings)
	if err != nil {
		return nil, nil, err
	}

	conn := newConnection(settings.QueueSize)
	opts := newClientOptions(settings, conn)
	opts.SetTLSConfig(tlsCfg)

	pc := newPahoClient(opts)
	if err := waitToken(ctx, pc.Connect()); err != nil {
		conn.close()
		return nil, nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	requests := make(chan request, settings.QueueSize)
	stop := make(chan struct{})

	client := &AsyncClient{requests: requests, stop: stop}
	loop := &EventLoop{pc: pc, conn: conn, requests: requests, stop: stop}
	return client, loop, nil
}

// Subscribe enqueues a subscribe request. The subscription takes
// effect once the event loop services it.
func (c *AsyncClient) Subscribe(ctx context.Context, topic string, qos QoS) error {
	return c.enqueue(ctx, request{kind: requestSubscribe, topic: topic, qos: qos})
}

// Publish enqueues a publish request with retain fixed to false.
func (c *AsyncClient) Publish(ctx context.Context, topic string, qos QoS, payload []byte) error {
	return c.enqueue(ctx, request{kind: requestPublish, topic: topic, qos: qos, payload: payload})
}

// Disconnect asks the event loop to tear the session down. The loop's
// next Poll observes the signal, disconnects and returns ErrLoopClosed.
func (c *AsyncClient) Disconnect() {
	c.once.Do(func() { close(c.stop) })
}

func (c *AsyncClient) enqueue(ctx context.Context, req request) error {
	select {
	case <-c.stop:
		return ErrRequestQueueClosed
	default:
	}

	select {
	case c.requests <- req:
		return nil
	case <-c.stop:
		return ErrRequestQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Poll services pending requests and returns the next incoming event.
// Requests already queued are serviced before events are reported.
// Request failures surface as errors here rather than being swallowed;
// the loop remains usable afterwards. Poll returns ErrLoopClosed once
// the handle has disconnected, and ctx.Err() on cancellation.
func (el *EventLoop) Poll(ctx context.Context) (Event, error) {
	for {
		// Service requests already queued before anything else.
		select {
		case req := <-el.requests:
			ev, err := el.perform(ctx, req)
			if err != nil {
				return Event{}, err
			}
			if ev != nil {
				return *ev, nil
			}
			continue
		default:
		}

		// Then hand out buffered events, even during shutdown.
		select {
		case ev := <-el.conn.Events():
			return ev, nil
		default:
		}

		select {
		case <-ctx.Done():
			return Event{}, ctx.Err()
		case <-el.stop:
			el.shutdown()
			return Event{}, ErrLoopClosed
		case <-el.conn.Done():
			return Event{}, ErrLoopClosed
		case req := <-el.requests:
			ev, err := el.perform(ctx, req)
			if err != nil {
				return Event{}, err
			}
			if ev != nil {
				return *ev, nil
			}
		case ev := <-el.conn.Events():
			return ev, nil
		}
	}
}

// perform executes one queued request against the wrapped library. A
// QoS >= 1 publish yields the acknowledgment event directly so the
// poll goroutine never blocks on its own event buffer.
func (el *EventLoop) perform(ctx context.Context, req request) (*Event, error) {
	switch req.kind {
	case requestSubscribe:
		token := el.pc.Subscribe(req.topic, byte(req.qos), func(_ mqtt.Client, msg mqtt.Message) {
			el.conn.push(publishEvent(msg))
		})
		if err := waitToken(ctx, token); err != nil {
			return nil, fmt.Errorf("subscribe %s: %w", req.topic, err)
		}

	case requestPublish:
		token := el.pc.Publish(req.topic, byte(req.qos), false, req.payload)
		if err := waitToken(ctx, token); err != nil {
			return nil, fmt.Errorf("publish %s: %w", req.topic, err)
		}
		if req.qos != AtMostOnce {
			if pt, ok := token.(publishToken); ok {
				return &Event{
					Kind:   EventPubAck,
					PubAck: &PubAckEvent{MessageID: pt.MessageID()},
				}, nil
			}
		}
	}
	return nil, nil
}

func (el *EventLoop) shutdown() {
	el.once.Do(func() {
		el.pc.Disconnect(disconnectQuiesceMs)
		el.conn.close()
	})
}
