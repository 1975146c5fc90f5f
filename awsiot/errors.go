package awsiot

import "errors"

// Errors returned by the client constructors and operations.
// Use errors.Is() to classify failures in calling code.
var (
	// ErrCredentialRead is returned when a CA, certificate or key file
	// cannot be read from disk.
	ErrCredentialRead = errors.New("awsiot: credential file unreadable")

	// ErrTLSSetup is returned when the credential material cannot be
	// assembled into a TLS configuration.
	ErrTLSSetup = errors.New("awsiot: tls setup failed")

	// ErrConnectionFailed is returned when the broker handshake fails.
	ErrConnectionFailed = errors.New("awsiot: connection failed")

	// ErrNotConnected is returned when an operation is attempted on a
	// disconnected client.
	ErrNotConnected = errors.New("awsiot: client not connected")

	// ErrRequestQueueClosed is returned when the async client's request
	// channel has been shut down.
	ErrRequestQueueClosed = errors.New("awsiot: request queue closed")

	// ErrLoopClosed is returned by EventLoop.Poll once the session has
	// been disconnected.
	ErrLoopClosed = errors.New("awsiot: event loop closed")
)
