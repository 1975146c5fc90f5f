package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

const validConfig = `
awsiot:
  endpoint: example-ats.iot.eu-west-1.amazonaws.com
  clientId: bridge-1
  caFile: /etc/awsiot/ca.pem
  certFile: /etc/awsiot/cert.pem
  keyFile: /etc/awsiot/key.pem
  topics:
    - sensors/+/temperature
nats:
  urls:
    - nats://localhost:4222
`

func TestLoadValidConfigAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "10s", cfg.AWSIoT.KeepAlive)
	assert.Equal(t, 10*time.Second, cfg.AWSIoT.KeepAliveDuration())
	assert.Equal(t, 10, cfg.AWSIoT.QueueSize)
	assert.Equal(t, "bridge-1", cfg.NATS.ClientName)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Logging.LogToStdout)
	assert.Equal(t, ":2112", cfg.Metrics.Address)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, "15s", cfg.Metrics.UpdateInterval)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Nil(t, cfg)
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoadMalformedYAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, "awsiot: [not a mapping"))
	assert.Nil(t, cfg)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing endpoint",
			content: `
awsiot:
  caFile: a
  certFile: b
  keyFile: c
  topics: [t]
nats:
  urls: [nats://localhost:4222]
`,
			wantErr: "endpoint is required",
		},
		{
			name: "missing credentials",
			content: `
awsiot:
  endpoint: e
  topics: [t]
nats:
  urls: [nats://localhost:4222]
`,
			wantErr: "ca file is required",
		},
		{
			name: "no topics",
			content: `
awsiot:
  endpoint: e
  caFile: a
  certFile: b
  keyFile: c
nats:
  urls: [nats://localhost:4222]
`,
			wantErr: "at least one awsiot topic is required",
		},
		{
			name: "invalid qos",
			content: `
awsiot:
  endpoint: e
  caFile: a
  certFile: b
  keyFile: c
  topics: [t]
  qos: 3
nats:
  urls: [nats://localhost:4222]
`,
			wantErr: "invalid qos level",
		},
		{
			name: "invalid keep alive",
			content: `
awsiot:
  endpoint: e
  caFile: a
  certFile: b
  keyFile: c
  topics: [t]
  keepAlive: soon
nats:
  urls: [nats://localhost:4222]
`,
			wantErr: "invalid keep alive interval",
		},
		{
			name: "no nats urls",
			content: `
awsiot:
  endpoint: e
  caFile: a
  certFile: b
  keyFile: c
  topics: [t]
`,
			wantErr: "at least one nats url is required",
		},
		{
			name: "invalid log level",
			content: `
awsiot:
  endpoint: e
  caFile: a
  certFile: b
  keyFile: c
  topics: [t]
nats:
  urls: [nats://localhost:4222]
logging:
  level: chatty
`,
			wantErr: "invalid log level",
		},
		{
			name: "file logging without directory",
			content: `
awsiot:
  endpoint: e
  caFile: a
  certFile: b
  keyFile: c
  topics: [t]
nats:
  urls: [nats://localhost:4222]
logging:
  logToFile: true
`,
			wantErr: "log directory is required",
		},
		{
			name: "invalid metrics interval",
			content: `
awsiot:
  endpoint: e
  caFile: a
  certFile: b
  keyFile: c
  topics: [t]
nats:
  urls: [nats://localhost:4222]
metrics:
  enabled: true
  updateInterval: often
`,
			wantErr: "invalid metrics update interval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.content))
			assert.Nil(t, cfg)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	cfg.ApplyOverrides(32, ":9999", "/m", 30*time.Second)
	assert.Equal(t, 32, cfg.AWSIoT.QueueSize)
	assert.Equal(t, ":9999", cfg.Metrics.Address)
	assert.Equal(t, "/m", cfg.Metrics.Path)
	assert.Equal(t, "30s", cfg.Metrics.UpdateInterval)
}

func TestApplyOverridesZeroValuesKeepConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	cfg.ApplyOverrides(0, "", "", 0)
	assert.Equal(t, 10, cfg.AWSIoT.QueueSize)
	assert.Equal(t, ":2112", cfg.Metrics.Address)
}
