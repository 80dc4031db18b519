package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the chat gateway
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Providers  []ProviderConfig `yaml:"providers"`
	Models     []ModelRoute     `yaml:"models"`
	Prompts    PromptsConfig    `yaml:"prompts"`
	DataService DataServiceConfig `yaml:"data_service"`
	Redis      RedisConfig      `yaml:"redis"`
	Cache      CacheConfig      `yaml:"cache"`
	Classifier ClassifierConfig `yaml:"classifier,omitempty"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig defines HTTP server settings
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// ProviderConfig defines an LLM provider connection
type ProviderConfig struct {
	Name          string `yaml:"name"`    // openai, google, groq
	BaseURL       string `yaml:"base_url,omitempty"`
	APIKey        string `yaml:"api_key,omitempty"`
	Timeout       string `yaml:"timeout,omitempty"`
	ContextWindow int    `yaml:"context_window,omitempty"`
}

// GetTimeout returns the provider timeout as a time.Duration
func (p *ProviderConfig) GetTimeout() time.Duration {
	if p.Timeout == "" {
		return 60 * time.Second
	}
	d, err := time.ParseDuration(p.Timeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// ModelRoute maps a logical model name to a provider and native model id
type ModelRoute struct {
	Name        string `yaml:"name"`
	Provider    string `yaml:"provider"`
	NativeModel string `yaml:"native_model,omitempty"`
	Fallback    string `yaml:"fallback,omitempty"`       // alternate provider for retry
	FallbackModel string `yaml:"fallback_model,omitempty"` // native model on the alternate
}

// PromptsConfig defines prompt resolution settings
type PromptsConfig struct {
	ServiceURL      string `yaml:"service_url,omitempty"`
	ServiceAPIKey   string `yaml:"service_api_key,omitempty"`
	ServiceTimeout  string `yaml:"service_timeout,omitempty"`
	LocalFile       string `yaml:"local_file,omitempty"`
	RefreshSchedule string `yaml:"refresh_schedule,omitempty"` // cron spec for catalog refresh
}

// GetServiceTimeout returns the remote prompt service timeout
func (p *PromptsConfig) GetServiceTimeout() time.Duration {
	if p.ServiceTimeout == "" {
		return 3 * time.Second
	}
	d, err := time.ParseDuration(p.ServiceTimeout)
	if err != nil {
		return 3 * time.Second
	}
	return d
}

// DataServiceConfig defines the customer-data backend connection
type DataServiceConfig struct {
	URL     string `yaml:"url"`
	APIKey  string `yaml:"api_key,omitempty"`
	Timeout string `yaml:"timeout,omitempty"`
}

// GetTimeout returns the data service timeout
func (d *DataServiceConfig) GetTimeout() time.Duration {
	if d.Timeout == "" {
		return 10 * time.Second
	}
	t, err := time.ParseDuration(d.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return t
}

// RedisConfig defines Redis connection settings
type RedisConfig struct {
	Addr     string `yaml:"addr,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
}

// CacheConfig defines cache TTL settings
type CacheConfig struct {
	DataTTL     string `yaml:"data_ttl,omitempty"`
	ResponseTTL string `yaml:"response_ttl,omitempty"`
}

// GetDataTTL returns the TTL for raw data fetches
func (c *CacheConfig) GetDataTTL() time.Duration {
	if c.DataTTL == "" {
		return 15 * time.Minute
	}
	d, err := time.ParseDuration(c.DataTTL)
	if err != nil {
		return 15 * time.Minute
	}
	return d
}

// GetResponseTTL returns the TTL for finalized LLM responses
func (c *CacheConfig) GetResponseTTL() time.Duration {
	if c.ResponseTTL == "" {
		return 6 * time.Hour
	}
	d, err := time.ParseDuration(c.ResponseTTL)
	if err != nil {
		return 6 * time.Hour
	}
	return d
}

// ClassifierConfig allows overriding the built-in keyword tables
type ClassifierConfig struct {
	Keywords map[string][]string `yaml:"keywords,omitempty"`
}

// LoggingConfig defines logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load loads configuration from a YAML file with environment variable overrides
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return &cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the config
func (c *Config) applyEnvOverrides() {
	if port := os.Getenv("GATEWAY_PORT"); port != "" {
		fmt.Sscanf(port, "%d", &c.Server.Port)
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		c.Redis.Addr = addr
	}
	if url := os.Getenv("PROMPT_SERVICE_URL"); url != "" {
		c.Prompts.ServiceURL = url
	}
	if key := os.Getenv("PROMPT_SERVICE_API_KEY"); key != "" {
		c.Prompts.ServiceAPIKey = key
	}
	if url := os.Getenv("DATA_SERVICE_URL"); url != "" {
		c.DataService.URL = url
	}
	if key := os.Getenv("DATA_SERVICE_API_KEY"); key != "" {
		c.DataService.APIKey = key
	}
	for i := range c.Providers {
		var envKey string
		switch c.Providers[i].Name {
		case "openai":
			envKey = os.Getenv("OPENAI_API_KEY")
		case "google":
			envKey = os.Getenv("GOOGLE_API_KEY")
		case "groq":
			envKey = os.Getenv("GROQ_API_KEY")
		}
		if envKey != "" {
			c.Providers[i].APIKey = envKey
		}
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if len(c.Providers) == 0 {
		return fmt.Errorf("at least one provider is required")
	}
	names := make(map[string]bool)
	for _, p := range c.Providers {
		switch p.Name {
		case "openai", "google", "groq":
		default:
			return fmt.Errorf("unsupported provider: %s", p.Name)
		}
		names[p.Name] = true
	}
	if len(c.Models) == 0 {
		return fmt.Errorf("at least one model route is required")
	}
	for _, m := range c.Models {
		if !names[m.Provider] {
			return fmt.Errorf("model %s routes to unknown provider %s", m.Name, m.Provider)
		}
		if m.Fallback != "" && !names[m.Fallback] {
			return fmt.Errorf("model %s has unknown fallback provider %s", m.Name, m.Fallback)
		}
	}
	if c.DataService.URL == "" {
		return fmt.Errorf("data service URL is required")
	}
	return nil
}
