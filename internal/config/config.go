// Package config handles application configuration using Viper.
// Values merge in priority order: environment variables override the YAML
// file, which overrides defaults.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root configuration struct. Nested structs organize related
// settings; `mapstructure` tags map YAML/env keys to fields.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type AuthConfig struct {
	APIKeys   []string `mapstructure:"api_keys"`
	AdminKeys []string `mapstructure:"admin_keys"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// ProvidersConfig holds server-side default credentials and model
// selections per vendor. Request-supplied credentials take precedence;
// these fill in for callers that configure keys on the server instead.
type ProvidersConfig struct {
	OpenAI     ProviderConfig `mapstructure:"openai"`
	Anthropic  ProviderConfig `mapstructure:"anthropic"`
	Google     ProviderConfig `mapstructure:"google"`
	Perplexity ProviderConfig `mapstructure:"perplexity"`
}

type ProviderConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type StorageConfig struct {
	DatabasePath string `mapstructure:"database_path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// APIKeys returns the configured credentials keyed by lowercase provider
// id, the shape AnalysisRequest uses. Empty keys are omitted.
func (p ProvidersConfig) APIKeys() map[string]string {
	keys := make(map[string]string)
	if p.OpenAI.APIKey != "" {
		keys["openai"] = p.OpenAI.APIKey
	}
	if p.Anthropic.APIKey != "" {
		keys["anthropic"] = p.Anthropic.APIKey
	}
	if p.Google.APIKey != "" {
		keys["google"] = p.Google.APIKey
	}
	if p.Perplexity.APIKey != "" {
		keys["perplexity"] = p.Perplexity.APIKey
	}
	return keys
}

// SelectedModels returns the configured model selections keyed by lowercase
// provider id. Empty selections are omitted so adapter defaults apply.
func (p ProvidersConfig) SelectedModels() map[string]string {
	models := make(map[string]string)
	if p.OpenAI.Model != "" {
		models["openai"] = p.OpenAI.Model
	}
	if p.Anthropic.Model != "" {
		models["anthropic"] = p.Anthropic.Model
	}
	if p.Google.Model != "" {
		models["google"] = p.Google.Model
	}
	if p.Perplexity.Model != "" {
		models["perplexity"] = p.Perplexity.Model
	}
	return models
}

// Load reads configuration from a YAML file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("rate_limit.requests_per_second", 10)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("providers.openai.model", "gpt-4o")
	v.SetDefault("providers.anthropic.model", "claude-sonnet-4-20250514")
	v.SetDefault("providers.google.model", "gemini-2.5-flash")
	v.SetDefault("providers.perplexity.model", "sonar")
	// Credentials default to empty so AutomaticEnv can override them:
	// viper only maps env vars onto keys it already knows about.
	v.SetDefault("providers.openai.api_key", "")
	v.SetDefault("providers.anthropic.api_key", "")
	v.SetDefault("providers.google.api_key", "")
	v.SetDefault("providers.perplexity.api_key", "")
	v.SetDefault("storage.database_path", "./storage/brand-monitor.db")
	v.SetDefault("log.level", "info")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// A missing config file is fine; defaults plus env are enough.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Environment variables override everything.
	// BRANDMON_ prefix + nested keys: BRANDMON_SERVER_PORT=9090 → server.port
	v.SetEnvPrefix("BRANDMON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Address returns the listen address string like "0.0.0.0:8080".
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
