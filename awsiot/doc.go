// Package awsiot is a thin convenience layer over the paho MQTT client
// for talking to AWS IoT Core with mutual TLS. It assembles the CA,
// client certificate and private key files into connection options,
// fixes the broker port at 8883 and exposes simplified subscribe and
// publish calls plus an event dispatch loop.
//
// Two client variants implement the same MessagingClient contract:
// Client performs operations on the caller's goroutine, AsyncClient
// enqueues them on a bounded channel drained by an EventLoop that the
// caller polls. Packet framing, QoS handshakes, session persistence
// and reconnection all live inside the wrapped library.
package awsiot
