package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Bot        BotConfig     `json:"bot"`
	Locales    LocalesConfig `json:"locales"`
	Routing    RoutingConfig `json:"routing"`
	Classifier ServiceConfig `json:"classifier"`
	Answers    ServiceConfig `json:"answers"`
	State      StateConfig   `json:"state"`
	Audit      AuditConfig   `json:"audit"`
	Logging    LoggingConfig `json:"logging"`
}

type BotConfig struct {
	ID string `json:"id" env:"CONCIERGE_BOT_ID"`
}

type LocalesConfig struct {
	Default     string   `json:"default" env:"CONCIERGE_LOCALES_DEFAULT"`
	Supported   []string `json:"supported" env:"CONCIERGE_LOCALES_SUPPORTED"`
	CatalogPath string   `json:"catalog_path" env:"CONCIERGE_LOCALES_CATALOG_PATH"`
}

type RoutingConfig struct {
	ConfidenceThreshold float64  `json:"confidence_threshold" env:"CONCIERGE_ROUTING_CONFIDENCE_THRESHOLD"`
	GreetingIntent      string   `json:"greeting_intent" env:"CONCIERGE_ROUTING_GREETING_INTENT"`
	InterruptIntents    []string `json:"interrupt_intents" env:"CONCIERGE_ROUTING_INTERRUPT_INTENTS"`
}

// ServiceConfig describes one per-locale HTTP scoring service: the
// classifier or the knowledge-base search.
type ServiceConfig struct {
	Endpoints map[string]string `json:"endpoints"` // locale -> URL
	TimeoutMS int               `json:"timeout_ms" env:"-"`
}

type StateConfig struct {
	Backend       string `json:"backend" env:"CONCIERGE_STATE_BACKEND"` // memory|redis
	RedisAddr     string `json:"redis_addr" env:"CONCIERGE_STATE_REDIS_ADDR"`
	RedisPassword string `json:"redis_password" env:"CONCIERGE_STATE_REDIS_PASSWORD"`
	RedisDB       int    `json:"redis_db" env:"CONCIERGE_STATE_REDIS_DB"`
	KeyPrefix     string `json:"key_prefix" env:"CONCIERGE_STATE_KEY_PREFIX"`
}

type AuditConfig struct {
	Enabled bool   `json:"enabled" env:"CONCIERGE_AUDIT_ENABLED"`
	Dir     string `json:"dir" env:"CONCIERGE_AUDIT_DIR"`
}

type LoggingConfig struct {
	FileEnabled bool   `json:"file_enabled" env:"CONCIERGE_LOGGING_FILE_ENABLED"`
	FilePath    string `json:"file_path" env:"CONCIERGE_LOGGING_FILE_PATH"`
	Debug       bool   `json:"debug" env:"CONCIERGE_LOGGING_DEBUG"`
}

func DefaultConfig() *Config {
	return &Config{
		Bot: BotConfig{
			ID: "concierge",
		},
		Locales: LocalesConfig{
			Default:   "en-US",
			Supported: []string{"en-US", "fr-FR", "es-ES"},
		},
		Routing: RoutingConfig{
			ConfidenceThreshold: 0.7,
			GreetingIntent:      "Greeting",
			InterruptIntents:    []string{"Cancel", "Restart"},
		},
		Classifier: ServiceConfig{
			Endpoints: map[string]string{},
			TimeoutMS: 5000,
		},
		Answers: ServiceConfig{
			Endpoints: map[string]string{},
			TimeoutMS: 5000,
		},
		State: StateConfig{
			Backend:   "memory",
			RedisAddr: "127.0.0.1:6379",
			KeyPrefix: "concierge",
		},
		Audit: AuditConfig{
			Enabled: false,
			Dir:     "~/.concierge/audit",
		},
		Logging: LoggingConfig{
			FileEnabled: false,
			FilePath:    "~/.concierge/concierge.log",
		},
	}
}

func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// AuditDir expands the configured audit directory.
func (c *Config) AuditDir() string {
	return expandHome(c.Audit.Dir)
}

// LogPath expands the configured log file path.
func (c *Config) LogPath() string {
	return expandHome(c.Logging.FilePath)
}

func expandHome(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, _ := os.UserHomeDir()
		if len(path) > 1 && path[1] == '/' {
			return home + path[1:]
		}
		return home
	}
	return path
}
