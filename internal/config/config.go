// Package config defines the application configuration tree and its viper
// based loader.  Configuration comes from a YAML file with APISRC_* environment
// overrides; every field has a sane default so the binary starts with an empty
// file.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration object.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Search    SearchConfig    `mapstructure:"search"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	Log       LogConfig       `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// ServerConfig controls the HTTP interface.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN renders the connection string consumed by pgxpool and the migrator.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode)
}

// RedisConfig holds the optional Redis session-store settings.
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// KafkaConfig holds the optional event-producer settings.  With no brokers
// configured event publishing is disabled and the rest of the system runs
// unaffected.
type KafkaConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	RecordsTopic string        `mapstructure:"records_topic"`
	RunsTopic    string        `mapstructure:"runs_topic"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Enabled reports whether event publishing is configured.
func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

// LLMProviderConfig describes one chat-completion provider endpoint.
type LLMProviderConfig struct {
	Name    string        `mapstructure:"name"`
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LLMConfig lists the chat-completion providers tried in order during a
// discovery run, plus retry behavior applied to every provider call.
type LLMConfig struct {
	Providers    []LLMProviderConfig `mapstructure:"providers"`
	MaxAttempts  int                 `mapstructure:"max_attempts"`
	BaseBackoff  time.Duration       `mapstructure:"base_backoff"`
	MaxBackoff   time.Duration       `mapstructure:"max_backoff"`
	MaxTokens    int                 `mapstructure:"max_tokens"`
	Temperature  float64             `mapstructure:"temperature"`
}

// SearchConfig holds web-search collaborator credentials.
type SearchConfig struct {
	GoogleCSEKey string `mapstructure:"google_cse_key"`
	GoogleCSECX  string `mapstructure:"google_cse_cx"`
	SerpAPIKey   string `mapstructure:"serpapi_key"`
	MaxResults   int    `mapstructure:"max_results"`
}

// DiscoveryConfig tunes the classification and validation pipeline.
type DiscoveryConfig struct {
	// SynthesisThreshold is the minimum synthesis keyword score for a
	// patent text to be classified as synthesis-relevant.
	SynthesisThreshold int `mapstructure:"synthesis_threshold"`
	// SynthesisRatio is the minimum synthesis/formulation score ratio.
	SynthesisRatio float64 `mapstructure:"synthesis_ratio"`
	// StrictMinConfidence applies to strict buyer discovery.
	StrictMinConfidence float64 `mapstructure:"strict_min_confidence"`
	// RelaxedMinConfidence applies to relaxed buyer discovery.
	RelaxedMinConfidence float64 `mapstructure:"relaxed_min_confidence"`
	// ProgressBuffer bounds each session's progress event queue.
	ProgressBuffer int `mapstructure:"progress_buffer"`
	// SessionTTL bounds how long finished sessions stay queryable.
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

// LogConfig mirrors logging.Config so the logging package stays
// viper-agnostic.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Validate checks cross-field consistency.  Called by Load after unmarshal.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host must not be empty")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return fmt.Errorf("database.port out of range: %d", c.Database.Port)
	}
	if c.Discovery.SynthesisThreshold < 0 {
		return fmt.Errorf("discovery.synthesis_threshold must be >= 0")
	}
	if c.Discovery.SynthesisRatio < 1.0 {
		return fmt.Errorf("discovery.synthesis_ratio must be >= 1.0, got %v", c.Discovery.SynthesisRatio)
	}
	if c.Discovery.StrictMinConfidence < c.Discovery.RelaxedMinConfidence {
		return fmt.Errorf("discovery.strict_min_confidence (%v) below relaxed_min_confidence (%v)",
			c.Discovery.StrictMinConfidence, c.Discovery.RelaxedMinConfidence)
	}
	if c.LLM.MaxAttempts < 1 {
		return fmt.Errorf("llm.max_attempts must be >= 1")
	}
	for i, p := range c.LLM.Providers {
		if p.Name == "" {
			return fmt.Errorf("llm.providers[%d].name must not be empty", i)
		}
		if p.BaseURL == "" {
			return fmt.Errorf("llm.providers[%d].base_url must not be empty", i)
		}
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr required when redis.enabled")
	}
	return nil
}

//Personal.AI order the ending
