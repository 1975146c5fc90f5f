package awsiot

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultKeepAlive is the MQTT keep-alive interval used when the
	// caller does not override Settings.KeepAlive.
	DefaultKeepAlive = 10 * time.Second

	// DefaultQueueSize bounds both the pending-request channel of the
	// async client and the incoming event channel.
	DefaultQueueSize = 10

	// tlsPort is the mutual-TLS MQTT port used by AWS IoT Core.
	tlsPort = 8883
)

// Settings bundles the connection parameters for an AWS IoT endpoint.
// It is plain data; nothing is validated until Connect reads the
// credential files and dials the broker.
type Settings struct {
	// ClientID identifies the device session. Left empty, Connect
	// generates an "awsiot-<uuid>" id.
	ClientID string

	// Paths to the PEM-encoded credential files. The files are read
	// wholesale at connect time and handed opaquely to the TLS layer.
	CAPath   string
	CertPath string
	KeyPath  string

	// Endpoint is the broker hostname without port; the port is always
	// 8883.
	Endpoint string

	// KeepAlive is the MQTT keep-alive interval. Zero means
	// DefaultKeepAlive.
	KeepAlive time.Duration

	// QueueSize caps pending requests and buffered incoming events.
	// Zero means DefaultQueueSize.
	QueueSize int
}

// NewSettings returns Settings with the documented defaults applied.
func NewSettings(clientID, caPath, certPath, keyPath, endpoint string) Settings {
	return Settings{
		ClientID:  clientID,
		CAPath:    caPath,
		CertPath:  certPath,
		KeyPath:   keyPath,
		Endpoint:  endpoint,
		KeepAlive: DefaultKeepAlive,
		QueueSize: DefaultQueueSize,
	}
}

// withDefaults fills zero-valued tunables so a zero Settings literal
// behaves like NewSettings output.
func (s Settings) withDefaults() Settings {
	if s.ClientID == "" {
		s.ClientID = "awsiot-" + uuid.New().String()
	}
	if s.KeepAlive <= 0 {
		s.KeepAlive = DefaultKeepAlive
	}
	if s.QueueSize <= 0 {
		s.QueueSize = DefaultQueueSize
	}
	return s
}

// brokerURL builds the paho broker URL for the endpoint.
func (s Settings) brokerURL() string {
	return fmt.Sprintf("tls://%s:%d", s.Endpoint, tlsPort)
}
