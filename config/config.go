package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v4"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Dealership DealershipConfig `yaml:"dealership"`
	TextGen    TextGenConfig    `yaml:"textgen"`
	Redis      RedisConfig      `yaml:"redis"`
	Ledger     LedgerConfig     `yaml:"ledger"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type DealershipConfig struct {
	Name           string `yaml:"name"`
	Address        string `yaml:"address"`
	CurrencySymbol string `yaml:"currency_symbol"`
}

type TextGenConfig struct {
	Provider           string `yaml:"provider"` // "gemini" | "fake"
	BaseURL            string `yaml:"base_url"`
	APIKey             string `yaml:"api_key"`
	DescriptionModel   string `yaml:"description_model"`
	SummaryModel       string `yaml:"summary_model"`
	TimeoutSeconds     int    `yaml:"timeout_seconds"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`
}

// RedisConfig is optional. An empty host disables caching and rate limiting.
type RedisConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
}

type LedgerConfig struct {
	Seed             *bool  `yaml:"seed"`
	ImageURLTemplate string `yaml:"image_url_template"`
}

func (r RedisConfig) Enabled() bool { return r.Host != "" }

func (r RedisConfig) Addr() string {
	port := r.Port
	if port == 0 {
		port = 6379
	}
	return fmt.Sprintf("%s:%d", r.Host, port)
}

// SeedEnabled reports whether demo data should be loaded. Defaults to true.
func (l LedgerConfig) SeedEnabled() bool {
	return l.Seed == nil || *l.Seed
}

func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	return &config, nil
}

// Load reads the file named by the configPath env var, or starts from an
// empty config when it is unset. API_KEY overrides textgen.api_key.
func Load() (*Config, error) {
	cfg := &Config{}
	if p := os.Getenv("configPath"); p != "" {
		var err error
		if cfg, err = LoadConfig(p); err != nil {
			return nil, err
		}
	}
	if key := os.Getenv("API_KEY"); key != "" {
		cfg.TextGen.APIKey = key
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills every empty field with its default.
func (c *Config) ApplyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8081"
	}
	if c.Dealership.Name == "" {
		c.Dealership.Name = "Kunal Tractors"
	}
	if c.Dealership.Address == "" {
		c.Dealership.Address = "123 Tractor Lane, Punjab, India"
	}
	if c.Dealership.CurrencySymbol == "" {
		c.Dealership.CurrencySymbol = "₹"
	}
	if c.TextGen.Provider == "" {
		if c.TextGen.APIKey != "" {
			c.TextGen.Provider = "gemini"
		} else {
			c.TextGen.Provider = "fake"
		}
	}
	if c.TextGen.DescriptionModel == "" {
		c.TextGen.DescriptionModel = "gemini-2.5-flash"
	}
	if c.TextGen.SummaryModel == "" {
		c.TextGen.SummaryModel = "gemini-2.5-pro"
	}
	if c.TextGen.TimeoutSeconds <= 0 {
		c.TextGen.TimeoutSeconds = 30
	}
	if c.Redis.CacheTTLSeconds <= 0 {
		c.Redis.CacheTTLSeconds = 3600
	}
}
