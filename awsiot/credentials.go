package awsiot

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// newTLSConfig reads the three credential files wholesale and assembles
// the mutual-TLS configuration. The PEM bytes are handed opaquely to
// the TLS layer; no parsing happens here beyond pool assembly.
func newTLSConfig(s Settings) (*tls.Config, error) {
	caPEM, err := os.ReadFile(s.CAPath)
	if err != nil {
		return nil, fmt.Errorf("%w: ca: %w", ErrCredentialRead, err)
	}

	certPEM, err := os.ReadFile(s.CertPath)
	if err != nil {
		return nil, fmt.Errorf("%w: client cert: %w", ErrCredentialRead, err)
	}

	keyPEM, err := os.ReadFile(s.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("%w: client key: %w", ErrCredentialRead, err)
	}

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, fmt.Errorf("%w: client keypair: %w", ErrTLSSetup, err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caPEM) {
		return nil, fmt.Errorf("%w: ca bundle contains no certificates", ErrTLSSetup)
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      pool,
		MinVersion:   tls.VersionTLS12,
	}, nil
}
