package awsiot

import "context"

// MessagingClient is the contract shared by both client variants.
// Client performs operations on the caller's goroutine; AsyncClient
// enqueues them for the goroutine driving the EventLoop. Callers pick
// the concurrency model, the surface stays the same.
type MessagingClient interface {
	Subscribe(ctx context.Context, topic string, qos QoS) error
	Publish(ctx context.Context, topic string, qos QoS, payload []byte) error
	Disconnect()
}

// EventHandler receives dispatched session events. Implementations may
// carry instance state; embed DefaultEventHandler to override only the
// callbacks of interest.
type EventHandler interface {
	OnConnect()
	OnPublish(msg PublishEvent)
	OnPubAck(ack PubAckEvent)
}
