package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes the bridge's prometheus instrumentation.
type Metrics struct {
	iotConnectionStatus  prometheus.Gauge
	natsConnectionStatus prometheus.Gauge
	messagesTotal        *prometheus.CounterVec
	pubAcksTotal         prometheus.Counter
	reconnectsTotal      prometheus.Counter
	eventQueueDepth      prometheus.Gauge
	goroutines           prometheus.Gauge
	uptimeSeconds        prometheus.Gauge
}

// NewMetrics creates the metric set and registers it with reg. A nil
// registerer yields a usable but unregistered set, handy for tests and
// for callers that run with metrics disabled.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		iotConnectionStatus: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "awsiot_bridge_iot_connection_status",
			Help: "Whether the AWS IoT session is established (1) or not (0)",
		}),
		natsConnectionStatus: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "awsiot_bridge_nats_connection_status",
			Help: "Whether the NATS connection is established (1) or not (0)",
		}),
		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "awsiot_bridge_messages_total",
			Help: "Messages handled by the bridge, partitioned by status",
		}, []string{"status"}),
		pubAcksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "awsiot_bridge_pubacks_total",
			Help: "Publish acknowledgments received from the broker",
		}),
		reconnectsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "awsiot_bridge_reconnects_total",
			Help: "Broker session re-establishments observed",
		}),
		eventQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "awsiot_bridge_event_queue_depth",
			Help: "Buffered incoming events awaiting dispatch",
		}),
		goroutines: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "awsiot_bridge_goroutines",
			Help: "Current number of goroutines",
		}),
		uptimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "awsiot_bridge_uptime_seconds",
			Help: "Seconds since the bridge started",
		}),
	}

	if reg != nil {
		collectors := []prometheus.Collector{
			m.iotConnectionStatus,
			m.natsConnectionStatus,
			m.messagesTotal,
			m.pubAcksTotal,
			m.reconnectsTotal,
			m.eventQueueDepth,
			m.goroutines,
			m.uptimeSeconds,
		}
		for _, c := range collectors {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}

	return m, nil
}

// SetIoTConnectionStatus updates the AWS IoT connection gauge
func (m *Metrics) SetIoTConnectionStatus(connected bool) {
	m.iotConnectionStatus.Set(boolToFloat(connected))
}

// SetNATSConnectionStatus updates the NATS connection gauge
func (m *Metrics) SetNATSConnectionStatus(connected bool) {
	m.natsConnectionStatus.Set(boolToFloat(connected))
}

// IncMessagesTotal increments the message counter for a status
// ("received", "forwarded" or "error")
func (m *Metrics) IncMessagesTotal(status string) {
	m.messagesTotal.WithLabelValues(status).Inc()
}

// IncPubAcks increments the publish acknowledgment counter
func (m *Metrics) IncPubAcks() {
	m.pubAcksTotal.Inc()
}

// IncReconnects increments the reconnect counter
func (m *Metrics) IncReconnects() {
	m.reconnectsTotal.Inc()
}

// SetEventQueueDepth records the buffered event count
func (m *Metrics) SetEventQueueDepth(depth float64) {
	m.eventQueueDepth.Set(depth)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// MetricsCollector periodically refreshes the process-level gauges.
type MetricsCollector struct {
	metrics  *Metrics
	interval time.Duration
	started  time.Time
	done     chan struct{}
}

// NewMetricsCollector creates a collector updating every interval
func NewMetricsCollector(m *Metrics, interval time.Duration) *MetricsCollector {
	return &MetricsCollector{
		metrics:  m,
		interval: interval,
		started:  time.Now(),
		done:     make(chan struct{}),
	}
}

// Start launches the background collection loop
func (c *MetricsCollector) Start() {
	go func() {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.metrics.goroutines.Set(float64(runtime.NumGoroutine()))
				c.metrics.uptimeSeconds.Set(time.Since(c.started).Seconds())
			case <-c.done:
				return
			}
		}
	}()
}

// Stop terminates the collection loop
func (c *MetricsCollector) Stop() {
	close(c.done)
}
