package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the prefix for environment overrides, e.g.
// APISRC_DATABASE_HOST maps to database.host.
const envPrefix = "APISRC"

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "apisource")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "apisource")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.migrations_path", "migrations")
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 24*time.Hour)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.records_topic", "apisource.records")
	v.SetDefault("kafka.runs_topic", "apisource.runs")
	v.SetDefault("kafka.write_timeout", 10*time.Second)

	v.SetDefault("llm.max_attempts", 3)
	v.SetDefault("llm.base_backoff", 4*time.Second)
	v.SetDefault("llm.max_backoff", 10*time.Second)
	v.SetDefault("llm.max_tokens", 4096)
	v.SetDefault("llm.temperature", 0.1)

	v.SetDefault("search.max_results", 10)

	v.SetDefault("discovery.synthesis_threshold", 3)
	v.SetDefault("discovery.synthesis_ratio", 1.2)
	v.SetDefault("discovery.strict_min_confidence", 90)
	v.SetDefault("discovery.relaxed_min_confidence", 50)
	v.SetDefault("discovery.progress_buffer", 100)
	v.SetDefault("discovery.session_ttl", time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_path", "stdout")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// Load reads the YAML file at path (optional; pass "" for env/defaults only),
// applies environment overrides, unmarshals, and validates.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// LoadFromEnv builds a Config from defaults and environment only.
func LoadFromEnv() (*Config, error) {
	return Load("")
}

// MustLoad is Load that panics on error.  For use in main() only.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Watch re-reads the config file on change and invokes onChange with the new
// validated Config.  Invalid updates are dropped and the previous config stays
// in effect.
func Watch(path string, onChange func(*Config)) error {
	if path == "" {
		return fmt.Errorf("watch requires a config file path")
	}
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	v.OnConfigChange(func(_ fsnotify.Event) {
		var cfg Config
		if err := v.Unmarshal(&cfg); err != nil {
			return
		}
		if err := cfg.Validate(); err != nil {
			return
		}
		onChange(&cfg)
	})
	v.WatchConfig()
	return nil
}

//Personal.AI order the ending
