package bridge

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"

	"awsiot-client/awsiot"
	"awsiot-client/config"
	"awsiot-client/internal/logger"
	"awsiot-client/internal/metrics"
	"awsiot-client/internal/stats"
)

// natsConn is the slice of *nats.Conn the bridge depends on.
type natsConn interface {
	Publish(subject string, data []byte) error
	IsConnected() bool
	Close()
}

// Bridge subscribes to AWS IoT topics and forwards every received
// message to the corresponding NATS subject. It is itself the event
// handler for the underlying session, carrying the forwarding state
// its callbacks need.
type Bridge struct {
	client  awsiot.MessagingClient
	conn    *awsiot.Connection
	nc      natsConn
	logger  *logger.Logger
	metrics *metrics.Metrics
	stats   *stats.BridgeStats

	topics []string
	qos    awsiot.QoS
	prefix string

	connectedOnce atomic.Bool
}

var _ awsiot.EventHandler = (*Bridge)(nil)

// New connects both legs of the bridge: the mutual-TLS AWS IoT session
// and the NATS connection. Either failure aborts construction.
func New(cfg *config.Config, log *logger.Logger, metricsService *metrics.Metrics) (*Bridge, error) {
	settings := awsiot.NewSettings(
		cfg.AWSIoT.ClientID,
		cfg.AWSIoT.CAFile,
		cfg.AWSIoT.CertFile,
		cfg.AWSIoT.KeyFile,
		cfg.AWSIoT.Endpoint,
	)
	settings.KeepAlive = cfg.AWSIoT.KeepAliveDuration()
	settings.QueueSize = cfg.AWSIoT.QueueSize

	client, conn, err := awsiot.Connect(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to aws iot: %w", err)
	}

	b := &Bridge{
		client:  client,
		conn:    conn,
		logger:  log,
		metrics: metricsService,
		stats:   stats.NewBridgeStats(),
		topics:  cfg.AWSIoT.Topics,
		qos:     awsiot.QoS(cfg.AWSIoT.QoS),
		prefix:  cfg.NATS.SubjectPrefix,
	}

	b.nc, err = connectNATS(cfg, log, b)
	if err != nil {
		client.Disconnect()
		return nil, err
	}

	return b, nil
}

// connectNATS dials the configured NATS server with logging handlers.
func connectNATS(cfg *config.Config, log *logger.Logger, b *Bridge) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name(cfg.NATS.ClientName),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Error("disconnected from nats server", "error", err)
			b.safeMetricsUpdate(func(m *metrics.Metrics) { m.SetNATSConnectionStatus(false) })
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("reconnected to nats server", "url", nc.ConnectedUrl())
			b.safeMetricsUpdate(func(m *metrics.Metrics) { m.SetNATSConnectionStatus(true) })
		}),
	}
	if cfg.NATS.Username != "" {
		opts = append(opts, nats.UserInfo(cfg.NATS.Username, cfg.NATS.Password))
	}

	nc, err := nats.Connect(cfg.NATS.URLs[0], opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats server: %w", err)
	}

	log.Info("connected to nats server", "url", nc.ConnectedUrl())
	b.safeMetricsUpdate(func(m *metrics.Metrics) { m.SetNATSConnectionStatus(true) })
	return nc, nil
}

// Run subscribes to the configured topics and dispatches events until
// ctx is cancelled or the session ends.
func (b *Bridge) Run(ctx context.Context) error {
	for _, topic := range b.topics {
		if err := b.client.Subscribe(ctx, topic, b.qos); err != nil {
			return fmt.Errorf("failed to subscribe to topic %s: %w", topic, err)
		}
		b.logger.Debug("subscribed to topic", "topic", topic)
	}
	b.logger.Info("bridge started", "topics", len(b.topics), "qos", byte(b.qos))

	listener := &awsiot.Listener{Handler: b, Logger: b.logger.Logger}

	done := make(chan error, 1)
	go func() {
		done <- listener.Listen(b.conn)
	}()

	select {
	case <-ctx.Done():
		b.Close()
		<-done
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// Close tears down both legs of the bridge.
func (b *Bridge) Close() {
	b.logger.Info("shutting down bridge", "stats", b.stats.Snapshot())
	b.client.Disconnect()
	b.nc.Close()
}

// Stats exposes the bridge's counters.
func (b *Bridge) Stats() *stats.BridgeStats {
	return b.stats
}

// OnConnect implements awsiot.EventHandler. Fires on the initial
// session and on every re-establishment by the wrapped library.
func (b *Bridge) OnConnect() {
	if b.connectedOnce.Swap(true) {
		b.stats.IncReconnects()
		b.safeMetricsUpdate(func(m *metrics.Metrics) { m.IncReconnects() })
	}
	b.safeMetricsUpdate(func(m *metrics.Metrics) { m.SetIoTConnectionStatus(true) })
	b.logger.Info("aws iot session established")
}

// OnPublish implements awsiot.EventHandler, forwarding the message to
// its mapped NATS subject. Forwarding failures are counted and logged;
// the dispatch loop keeps running.
func (b *Bridge) OnPublish(msg awsiot.PublishEvent) {
	b.stats.IncReceived()
	b.safeMetricsUpdate(func(m *metrics.Metrics) { m.IncMessagesTotal("received") })

	subject := subjectFor(b.prefix, msg.Topic)
	if err := b.nc.Publish(subject, msg.Payload); err != nil {
		b.stats.IncErrors()
		b.safeMetricsUpdate(func(m *metrics.Metrics) { m.IncMessagesTotal("error") })
		b.logger.Error("failed to forward message",
			"error", err,
			"topic", msg.Topic,
			"subject", subject)
		return
	}

	b.stats.IncForwarded()
	b.safeMetricsUpdate(func(m *metrics.Metrics) { m.IncMessagesTotal("forwarded") })
	b.logger.Debug("forwarded message",
		"topic", msg.Topic,
		"subject", subject,
		"payloadSize", len(msg.Payload))
}

// OnPubAck implements awsiot.EventHandler.
func (b *Bridge) OnPubAck(ack awsiot.PubAckEvent) {
	b.stats.IncPubAcks()
	b.safeMetricsUpdate(func(m *metrics.Metrics) { m.IncPubAcks() })
	b.logger.Debug("publish acknowledged", "messageId", ack.MessageID)
}

// safeMetricsUpdate applies fn when metrics are enabled
func (b *Bridge) safeMetricsUpdate(fn func(*metrics.Metrics)) {
	if b.metrics != nil {
		fn(b.metrics)
	}
}
