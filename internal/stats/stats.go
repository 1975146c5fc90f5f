package stats

import (
	"encoding/json"
	"sync/atomic"
	"time"
)

// BridgeStats tracks message counters for a running bridge.
type BridgeStats struct {
	StartTime         time.Time
	MessagesReceived  uint64
	MessagesForwarded uint64
	PubAcks           uint64
	Reconnects        uint64
	Errors            uint64
}

// NewBridgeStats creates a zeroed stats collector
func NewBridgeStats() *BridgeStats {
	return &BridgeStats{StartTime: time.Now()}
}

// IncReceived counts a message delivered from a subscribed topic
func (s *BridgeStats) IncReceived() { atomic.AddUint64(&s.MessagesReceived, 1) }

// IncForwarded counts a message successfully handed to NATS
func (s *BridgeStats) IncForwarded() { atomic.AddUint64(&s.MessagesForwarded, 1) }

// IncPubAcks counts a broker publish acknowledgment
func (s *BridgeStats) IncPubAcks() { atomic.AddUint64(&s.PubAcks, 1) }

// IncReconnects counts a session re-establishment
func (s *BridgeStats) IncReconnects() { atomic.AddUint64(&s.Reconnects, 1) }

// IncErrors counts a forwarding or stream error
func (s *BridgeStats) IncErrors() { atomic.AddUint64(&s.Errors, 1) }

// Snapshot returns current statistics
func (s *BridgeStats) Snapshot() map[string]interface{} {
	return map[string]interface{}{
		"uptime":             time.Since(s.StartTime).String(),
		"messages_received":  atomic.LoadUint64(&s.MessagesReceived),
		"messages_forwarded": atomic.LoadUint64(&s.MessagesForwarded),
		"pubacks":            atomic.LoadUint64(&s.PubAcks),
		"reconnects":         atomic.LoadUint64(&s.Reconnects),
		"errors":             atomic.LoadUint64(&s.Errors),
	}
}

// SnapshotJSON returns stats as JSON
func (s *BridgeStats) SnapshotJSON() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

// ForwardRate calculates messages forwarded per second of uptime
func (s *BridgeStats) ForwardRate() float64 {
	uptime := time.Since(s.StartTime).Seconds()
	if uptime <= 0 {
		return 0
	}
	return float64(atomic.LoadUint64(&s.MessagesForwarded)) / uptime
}
