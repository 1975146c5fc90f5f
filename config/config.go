package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	AWSIoT  AWSIoTConfig  `yaml:"awsiot"`
	NATS    NATSConfig    `yaml:"nats"`
	Logging LogConfig     `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type AWSIoTConfig struct {
	Endpoint  string   `yaml:"endpoint"`
	ClientID  string   `yaml:"clientId"`
	CAFile    string   `yaml:"caFile"`
	CertFile  string   `yaml:"certFile"`
	KeyFile   string   `yaml:"keyFile"`
	Topics    []string `yaml:"topics"`
	QoS       byte     `yaml:"qos"`
	KeepAlive string   `yaml:"keepAlive"` // Duration string
	QueueSize int      `yaml:"queueSize"`
}

type NATSConfig struct {
	URLs          []string `yaml:"urls"`
	ClientName    string   `yaml:"clientName"`
	Username      string   `yaml:"username"`
	Password      string   `yaml:"password"`
	SubjectPrefix string   `yaml:"subjectPrefix"`
}

type LogConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	LogToFile   bool   `yaml:"logToFile"`
	LogToStdout bool   `yaml:"logToStdout"`
	Directory   string `yaml:"directory"`
	MaxSize     int    `yaml:"maxSize"` // megabytes
	MaxAge      int    `yaml:"maxAge"`  // days
	MaxBackups  int    `yaml:"maxBackups"`
	Compress    bool   `yaml:"compress"`
}

type MetricsConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Address        string `yaml:"address"`
	Path           string `yaml:"path"`
	UpdateInterval string `yaml:"updateInterval"` // Duration string
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults for the AWS IoT session
	if config.AWSIoT.KeepAlive == "" {
		config.AWSIoT.KeepAlive = "10s"
	}
	if config.AWSIoT.QueueSize <= 0 {
		config.AWSIoT.QueueSize = 10
	}

	// Set defaults for NATS
	if config.NATS.ClientName == "" {
		config.NATS.ClientName = config.AWSIoT.ClientID
	}

	// Set defaults for logging
	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	if !config.Logging.LogToFile && !config.Logging.LogToStdout {
		config.Logging.LogToStdout = true
	}
	if config.Logging.MaxSize <= 0 {
		config.Logging.MaxSize = 100
	}
	if config.Logging.MaxBackups <= 0 {
		config.Logging.MaxBackups = 3
	}

	// Set defaults for metrics
	if config.Metrics.Address == "" {
		config.Metrics.Address = ":2112"
	}
	if config.Metrics.Path == "" {
		config.Metrics.Path = "/metrics"
	}
	if config.Metrics.UpdateInterval == "" {
		config.Metrics.UpdateInterval = "15s"
	}

	// Validate the configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// validateConfig performs validation of all configuration values
func validateConfig(cfg *Config) error {
	// Validate AWS IoT config
	if cfg.AWSIoT.Endpoint == "" {
		return fmt.Errorf("awsiot endpoint is required")
	}
	if cfg.AWSIoT.CAFile == "" {
		return fmt.Errorf("awsiot ca file is required")
	}
	if cfg.AWSIoT.CertFile == "" {
		return fmt.Errorf("awsiot cert file is required")
	}
	if cfg.AWSIoT.KeyFile == "" {
		return fmt.Errorf("awsiot key file is required")
	}
	if len(cfg.AWSIoT.Topics) == 0 {
		return fmt.Errorf("at least one awsiot topic is required")
	}
	if cfg.AWSIoT.QoS > 2 {
		return fmt.Errorf("invalid qos level: %d", cfg.AWSIoT.QoS)
	}
	if _, err := time.ParseDuration(cfg.AWSIoT.KeepAlive); err != nil {
		return fmt.Errorf("invalid keep alive interval: %w", err)
	}

	// Validate NATS config
	if len(cfg.NATS.URLs) == 0 {
		return fmt.Errorf("at least one nats url is required")
	}

	// Validate logging config
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogToFile && cfg.Logging.Directory == "" {
		return fmt.Errorf("log directory is required when logging to file")
	}

	// Validate metrics config
	if cfg.Metrics.Enabled {
		if _, err := time.ParseDuration(cfg.Metrics.UpdateInterval); err != nil {
			return fmt.Errorf("invalid metrics update interval: %w", err)
		}
	}

	return nil
}

// KeepAliveDuration returns the parsed keep-alive interval. Call only
// after Load has validated the configuration.
func (c *AWSIoTConfig) KeepAliveDuration() time.Duration {
	d, _ := time.ParseDuration(c.KeepAlive)
	return d
}

// ApplyOverrides applies command line flag overrides to the configuration
func (c *Config) ApplyOverrides(queueSize int, metricsAddr, metricsPath string, metricsInterval time.Duration) {
	if queueSize > 0 {
		c.AWSIoT.QueueSize = queueSize
	}
	if metricsAddr != "" {
		c.Metrics.Address = metricsAddr
	}
	if metricsPath != "" {
		c.Metrics.Path = metricsPath
	}
	if metricsInterval > 0 {
		c.Metrics.UpdateInterval = metricsInterval.String()
	}
}
