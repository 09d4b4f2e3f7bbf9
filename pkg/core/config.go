package core

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig represents the main application configuration.
type AppConfig struct {
	// Server holds server-specific configuration.
	Server struct {
		Port           int   `yaml:"port"`
		ReadTimeoutMS  int64 `yaml:"read_timeout_ms"`
		WriteTimeoutMS int64 `yaml:"write_timeout_ms"`
		IdleTimeoutMS  int64 `yaml:"idle_timeout_ms"`
		MaxBodyBytes   int64 `yaml:"max_body_bytes"`
		DebugEvents    bool  `yaml:"debug_events"`
	} `yaml:"server"`
	// Webhook configures the inbound webhook endpoint.
	Webhook WebhookConfig `yaml:"webhook"`
	// Storage holds configuration for the record store and row sink.
	Storage StorageConfig `yaml:"storage"`
	// Sheet configures the tabular row sink.
	Sheet SheetConfig `yaml:"sheet"`
	// Watermill holds configuration for the event publisher.
	Watermill WatermillConfig `yaml:"watermill"`
}

// Config represents the application configuration including forward rules.
type Config struct {
	AppConfig `yaml:",inline"`
	Rules     []Rule `yaml:"rules"`
}

// WebhookConfig holds the inbound endpoint settings.
type WebhookConfig struct {
	Path string `yaml:"path"`
}

// StorageConfig holds SQL storage settings shared by the record store and
// the row sink.
type StorageConfig struct {
	Driver      string            `yaml:"driver"`
	DSN         string            `yaml:"dsn"`
	Dialect     string            `yaml:"dialect"`
	AutoMigrate bool              `yaml:"auto_migrate"`
	Pool        StoragePoolConfig `yaml:"pool"`
}

// StoragePoolConfig controls database connection pooling.
type StoragePoolConfig struct {
	MaxOpenConns      int   `yaml:"max_open_conns"`
	MaxIdleConns      int   `yaml:"max_idle_conns"`
	ConnMaxLifetimeMS int64 `yaml:"conn_max_lifetime_ms"`
	ConnMaxIdleTimeMS int64 `yaml:"conn_max_idle_time_ms"`
}

// SheetConfig names the range rows are appended under.
type SheetConfig struct {
	Range string `yaml:"range"`
}

// WatermillConfig holds the configuration for the event publisher.
type WatermillConfig struct {
	Driver    string          `yaml:"driver"`
	GoChannel GoChannelConfig `yaml:"gochannel"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	NATS      NATSConfig      `yaml:"nats"`
	AMQP      AMQPConfig      `yaml:"amqp"`
}

// GoChannelConfig holds configuration for the GoChannel pub/sub.
type GoChannelConfig struct {
	OutputChannelBuffer            int64 `yaml:"output_buffer"`
	Persistent                     bool  `yaml:"persistent"`
	BlockPublishUntilSubscriberAck bool  `yaml:"block_publish_until_subscriber_ack"`
}

// KafkaConfig holds configuration for the Kafka pub/sub.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
}

// NATSConfig holds configuration for the NATS streaming pub/sub.
type NATSConfig struct {
	ClusterID string `yaml:"cluster_id"`
	ClientID  string `yaml:"client_id"`
	URL       string `yaml:"url"`
}

// AMQPConfig holds configuration for the AMQP pub/sub.
type AMQPConfig struct {
	URL  string `yaml:"url"`
	Mode string `yaml:"mode"`
}

// LoadAppConfig reads the application configuration without rules.
func LoadAppConfig(path string) (AppConfig, error) {
	var cfg AppConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return cfg, err
	}

	applyDefaults(&cfg)
	return cfg, nil
}

// LoadConfig reads the full configuration including forward rules.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return cfg, err
	}

	applyDefaults(&cfg.AppConfig)
	if err := validateRules(cfg.Rules); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = 1 << 20
	}
	if cfg.Webhook.Path == "" {
		cfg.Webhook.Path = "/webhooks/paypal"
	}
	if cfg.Sheet.Range == "" {
		cfg.Sheet.Range = "Payments!A:J"
	}
}

func validateRules(rules []Rule) error {
	for i, rule := range rules {
		if strings.TrimSpace(rule.When) == "" {
			return fmt.Errorf("rule %d: when expression is required", i)
		}
		if strings.TrimSpace(rule.Emit) == "" {
			return fmt.Errorf("rule %d: emit topic is required", i)
		}
	}
	return nil
}
