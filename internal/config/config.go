// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the root configuration.
type Config struct {
	Port         int           `json:"port"         mapstructure:"port"`
	Env          string        `json:"env"          mapstructure:"env"`
	Provider     string        `json:"provider"     mapstructure:"provider"`
	GeminiAPIKey string        `json:"-"            mapstructure:"gemini_api_key"`
	OpenAIAPIKey string        `json:"-"            mapstructure:"openai_api_key"`
	BaseURL      string        `json:"base_url"     mapstructure:"base_url"`
	Timeout      time.Duration `json:"timeout"      mapstructure:"timeout"`
	Models       []string      `json:"models"       mapstructure:"models"`
	RateQuota    int           `json:"rate_quota"   mapstructure:"rate_quota"`
	RateWindow   time.Duration `json:"rate_window"  mapstructure:"rate_window"`
	CORSOrigins  []string      `json:"cors_origins" mapstructure:"cors_origins"`
}

// Load reads configuration from SCRUMSMITH_* environment variables. Outside
// production a .env file is honored first. Provider credentials keep their
// upstream names: GEMINI_API_KEY and OPENAI_API_KEY.
func Load() (*Config, error) {
	if getEnv("SCRUMSMITH_ENV", "development") == "development" {
		_ = godotenv.Load()
	}

	v := viper.New()
	v.SetEnvPrefix("scrumsmith")
	v.AutomaticEnv()

	v.SetDefault("port", 8000)
	v.SetDefault("env", "development")
	v.SetDefault("provider", "gemini")
	v.SetDefault("base_url", "")
	v.SetDefault("timeout", "60s")
	v.SetDefault("models", []string{"gemini-2.5-pro", "gemini-2.5-flash", "gemini-2.0-flash"})
	v.SetDefault("rate_quota", 5)
	v.SetDefault("rate_window", "1h")
	v.SetDefault("cors_origins", []string{"http://localhost:3000", "http://localhost:5173"})

	for key, envVar := range map[string]string{
		"gemini_api_key": "GEMINI_API_KEY",
		"openai_api_key": "OPENAI_API_KEY",
	} {
		if err := v.BindEnv(key, envVar); err != nil {
			return nil, fmt.Errorf("bind %s: %w", envVar, err)
		}
	}

	var cfg Config
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	for i, m := range cfg.Models {
		cfg.Models[i] = strings.TrimSpace(m)
	}
	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(o)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d is out of range", c.Port)
	}
	if c.Provider != "gemini" && c.Provider != "openai" {
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.RateQuota < 1 {
		return fmt.Errorf("rate quota must be at least 1, got %d", c.RateQuota)
	}
	if c.RateWindow <= 0 {
		return fmt.Errorf("rate window must be positive, got %s", c.RateWindow)
	}
	if len(c.Models) == 0 {
		return fmt.Errorf("at least one model must be configured")
	}
	for _, m := range c.Models {
		if m == "" {
			return fmt.Errorf("models list contains a blank entry")
		}
	}
	return nil
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }

func (c *Config) IsProduction() bool { return c.Env == "production" }

// APIKey returns the credential for the active provider.
func (c *Config) APIKey() string {
	if c.Provider == "openai" {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

// CredentialConfigured reports whether the active provider has a key. The
// server boots without one; generation requests fail until it is set.
func (c *Config) CredentialConfigured() bool { return c.APIKey() != "" }

// CredentialName is the environment variable holding the active provider's
// key, used in health output and error details.
func (c *Config) CredentialName() string {
	return strings.ToUpper(c.Provider) + "_API_KEY"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
