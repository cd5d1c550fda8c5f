package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration to support YAML unmarshalling.
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses human readable duration strings.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		return nil
	}
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be string")
	}
	raw := value.Value
	if raw == "" {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	d.Duration = parsed
	return nil
}

// Config captures runtime configuration for corridord.
type Config struct {
	ListenAddress string           `yaml:"listen"`
	DatabasePath  string           `yaml:"database"`
	Environment   string           `yaml:"env"`
	ShutdownGrace Duration         `yaml:"shutdown_grace"`
	Admin         AdminConfig      `yaml:"admin"`
	RateLimit     RateLimitConfig  `yaml:"rate_limit"`
	Corridors     []CorridorConfig `yaml:"corridors"`
}

// AdminConfig describes the administrator identity and the bearer tokens that
// may act as it over HTTP.
type AdminConfig struct {
	Address   string   `yaml:"address"`
	JWTSecret string   `yaml:"jwt_secret"`
	Issuer    string   `yaml:"issuer"`
	Audience  string   `yaml:"audience"`
	ClockSkew Duration `yaml:"clock_skew"`
}

// RateLimitConfig throttles the open operator surface per client.
type RateLimitConfig struct {
	RequestsPerMinute float64 `yaml:"requests_per_minute"`
	Burst             int     `yaml:"burst"`
}

// CorridorConfig seeds a corridor registration at startup.
type CorridorConfig struct {
	Token0   string     `yaml:"token0"`
	Token1   string     `yaml:"token1"`
	Nettable bool       `yaml:"nettable"`
	Fees     *FeeConfig `yaml:"fees"`
}

// FeeConfig seeds the corridor's dynamic fee curve.
type FeeConfig struct {
	BaseFeeBps       uint32 `yaml:"base_fee_bps"`
	MaxExtraFeeBps   uint32 `yaml:"max_extra_fee_bps"`
	NetFlowThreshold string `yaml:"net_flow_threshold"`
}

// Load reads configuration from the supplied path.
func Load(path string) (Config, error) {
	cfg := Config{}
	file, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()
	dec := yaml.NewDecoder(file)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	applyDefaults(&cfg)
	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = ":7090"
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "/var/data/corridord"
	}
	if cfg.ShutdownGrace.Duration == 0 {
		cfg.ShutdownGrace.Duration = 5 * time.Second
	}
	if cfg.Admin.ClockSkew.Duration == 0 {
		cfg.Admin.ClockSkew.Duration = 2 * time.Minute
	}
	if cfg.RateLimit.RequestsPerMinute == 0 {
		cfg.RateLimit.RequestsPerMinute = 600
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = 20
	}
}

func validate(cfg Config) error {
	if strings.TrimSpace(cfg.Admin.Address) == "" {
		return fmt.Errorf("admin address must be configured")
	}
	if strings.TrimSpace(cfg.Admin.JWTSecret) == "" {
		return fmt.Errorf("admin jwt secret must be configured")
	}
	for i, corridor := range cfg.Corridors {
		if strings.TrimSpace(corridor.Token0) == "" || strings.TrimSpace(corridor.Token1) == "" {
			return fmt.Errorf("corridor %d: both legs must be named", i)
		}
		if fees := corridor.Fees; fees != nil {
			if fees.BaseFeeBps > 10_000 || fees.MaxExtraFeeBps > 10_000 {
				return fmt.Errorf("corridor %d: fee components capped at 10000 bps", i)
			}
		}
	}
	return nil
}
