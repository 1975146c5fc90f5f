package awsiot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// DefaultEventHandler logs each event and does nothing else. Embed it
// in a handler struct to inherit defaults for the callbacks you do not
// override.
type DefaultEventHandler struct {
	Logger *slog.Logger
}

var _ EventHandler = (*DefaultEventHandler)(nil)

func (h *DefaultEventHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *DefaultEventHandler) OnConnect() {
	h.logger().Info("default connect handler")
}

func (h *DefaultEventHandler) OnPublish(msg PublishEvent) {
	h.logger().Info("default publish handler", "topic", msg.Topic, "payloadSize", len(msg.Payload))
}

func (h *DefaultEventHandler) OnPubAck(ack PubAckEvent) {
	h.logger().Info("default puback handler", "messageId", ack.MessageID)
}

// Listener drives a dispatch loop over a Connection or EventLoop,
// translating incoming events into EventHandler callbacks.
type Listener struct {
	Handler EventHandler

	// Logger receives the logged-and-continue error reports. Nil means
	// slog.Default().
	Logger *slog.Logger

	// ErrorThreshold stops the loop after this many consecutive poll
	// errors, so a persistently failing session is observable instead
	// of silently retried forever. Zero or negative means never stop.
	ErrorThreshold int
}

func (l *Listener) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

// Listen blocks on conn, dispatching Connected and Publish events until
// the connection is exhausted. Events carrying an error are logged and
// counted against ErrorThreshold; all other kinds are ignored.
func (l *Listener) Listen(conn *Connection) error {
	consecutive := 0
	for {
		ev, ok := conn.Next()
		if !ok {
			return nil
		}

		if ev.Err != nil {
			consecutive++
			l.logger().Error("event stream error", "error", ev.Err, "consecutive", consecutive)
			if l.ErrorThreshold > 0 && consecutive >= l.ErrorThreshold {
				return fmt.Errorf("listener stopped after %d consecutive errors: %w", consecutive, ev.Err)
			}
			continue
		}
		consecutive = 0

		switch ev.Kind {
		case EventConnected:
			l.Handler.OnConnect()
		case EventPublish:
			if ev.Publish != nil {
				l.Handler.OnPublish(*ev.Publish)
			}
		default:
			// Unrecognized or empty notifications are ignored.
		}
	}
}

// ListenAsync polls loop until ctx is cancelled or the session is
// disconnected, dispatching Connected, Publish and PubAck events. Poll
// errors follow the same logged-and-continue policy as Listen.
func (l *Listener) ListenAsync(ctx context.Context, loop *EventLoop) error {
	consecutive := 0
	for {
		ev, err := loop.Poll(ctx)
		switch {
		case errors.Is(err, ErrLoopClosed):
			return nil
		case err != nil && ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			consecutive++
			l.logger().Error("poll error", "error", err, "consecutive", consecutive)
			if l.ErrorThreshold > 0 && consecutive >= l.ErrorThreshold {
				return fmt.Errorf("listener stopped after %d consecutive errors: %w", consecutive, err)
			}
			continue
		}
		consecutive = 0

		if ev.Err != nil {
			consecutive++
			l.logger().Error("event stream error", "error", ev.Err, "consecutive", consecutive)
			if l.ErrorThreshold > 0 && consecutive >= l.ErrorThreshold {
				return fmt.Errorf("listener stopped after %d consecutive errors: %w", consecutive, ev.Err)
			}
			continue
		}

		switch ev.Kind {
		case EventConnected:
			l.Handler.OnConnect()
		case EventPublish:
			if ev.Publish != nil {
				l.Handler.OnPublish(*ev.Publish)
			}
		case EventPubAck:
			if ev.PubAck != nil {
				l.Handler.OnPubAck(*ev.PubAck)
			}
		default:
			// Unrecognized or empty notifications are ignored.
		}
	}
}
