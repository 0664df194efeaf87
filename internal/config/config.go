package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/finai-dev/finai/internal/log"
)

// FileName is the default config file name.
const FileName = "finai.yaml"

// EnvPrefix prefixes environment overrides, e.g. FINAI_API_BASE_URL.
const EnvPrefix = "FINAI"

// Config represents the top-level finai.yaml configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Display DisplayConfig `yaml:"display"`
	Refresh RefreshConfig `yaml:"refresh"`
	Chat    ChatConfig    `yaml:"chat"`
	Events  EventsConfig  `yaml:"events"`
	Log     LogConfig     `yaml:"log"`
}

// APIConfig locates the remote finance API.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	UID     string `yaml:"uid"`
	Timeout string `yaml:"timeout"` // Go duration, e.g. "30s"
}

// DisplayConfig controls how money and charts are shown.
type DisplayConfig struct {
	Currency string   `yaml:"currency"`
	Palette  []string `yaml:"palette,omitempty"`
}

// RefreshConfig controls the refresh cascade.
type RefreshConfig struct {
	Parallel bool `yaml:"parallel"`
}

// ChatConfig controls the advisor conversation.
type ChatConfig struct {
	Greeting   string `yaml:"greeting,omitempty"`
	Transcript string `yaml:"transcript,omitempty"` // CSV path; empty disables recording
}

// EventsConfig enables AMQP mutation notifications. Empty URL disables them.
type EventsConfig struct {
	AMQPURL  string `yaml:"amqp_url,omitempty"`
	Exchange string `yaml:"exchange"`
	Queue    string `yaml:"queue,omitempty"`
}

// LogConfig controls diagnostics.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
}

// Default returns a Config with sensible defaults for a new workspace.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://127.0.0.1:5000",
			Timeout: "30s",
		},
		Display: DisplayConfig{
			Currency: "₹",
		},
		Events: EventsConfig{
			Exchange: "finai.mutations",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a finai.yaml file from disk on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Resolve loads path when it exists (defaults otherwise), applies FINAI_*
// environment overrides and validates the result.
func Resolve(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = Default()
	} else if err != nil {
		return nil, err
	}
	ApplyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays FINAI_* environment variables. Keys map dots to
// underscores: api.base_url is FINAI_API_BASE_URL.
func ApplyEnv(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	str := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	str("api.base_url", &cfg.API.BaseURL)
	str("api.uid", &cfg.API.UID)
	str("api.timeout", &cfg.API.Timeout)
	str("display.currency", &cfg.Display.Currency)
	str("chat.greeting", &cfg.Chat.Greeting)
	str("chat.transcript", &cfg.Chat.Transcript)
	str("events.amqp_url", &cfg.Events.AMQPURL)
	str("events.exchange", &cfg.Events.Exchange)
	str("events.queue", &cfg.Events.Queue)
	str("log.level", &cfg.Log.Level)
	str("log.format", &cfg.Log.Format)
	str("log.file", &cfg.Log.File)

	if v.IsSet("display.palette") {
		cfg.Display.Palette = v.GetStringSlice("display.palette")
	}
	if v.IsSet("refresh.parallel") {
		cfg.Refresh.Parallel = v.GetBool("refresh.parallel")
	}
}

// Timeout returns the API timeout. Validate guarantees it parses.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	if u, err := url.Parse(c.API.BaseURL); err != nil {
		problems = append(problems, fmt.Sprintf("invalid api.base_url '%s': %v", c.API.BaseURL, err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		problems = append(problems, fmt.Sprintf("invalid api.base_url scheme '%s': must be 'http' or 'https'", u.Scheme))
	} else if u.Host == "" {
		problems = append(problems, fmt.Sprintf("invalid api.base_url '%s': missing host", c.API.BaseURL))
	}

	if d, err := time.ParseDuration(c.API.Timeout); err != nil {
		problems = append(problems, fmt.Sprintf("invalid api.timeout '%s': %v", c.API.Timeout, err))
	} else if d <= 0 {
		problems = append(problems, fmt.Sprintf("invalid api.timeout '%s': must be positive", c.API.Timeout))
	}

	if strings.TrimSpace(c.Display.Currency) == "" {
		problems = append(problems, "display.currency cannot be empty")
	}
	for i, color := range c.Display.Palette {
		if strings.TrimSpace(color) == "" {
			problems = append(problems, fmt.Sprintf("display.palette[%d] cannot be empty", i))
		}
	}

	if c.Events.AMQPURL != "" {
		if u, err := url.Parse(c.Events.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid events.amqp_url: %v", err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid events.amqp_url scheme '%s': must be 'amqp' or 'amqps'", u.Scheme))
		}
		if c.Events.Exchange == "" {
			problems = append(problems, "events.exchange cannot be empty when events.amqp_url is set")
		}
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, fmt.Sprintf("invalid log.level: %v", err))
	}
	if c.Log.Format != "" && c.Log.Format != "text" && c.Log.Format != "json" {
		problems = append(problems, fmt.Sprintf("invalid log.format '%s': must be 'text' or 'json'", c.Log.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}
