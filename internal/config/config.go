package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config is a ccview session file.
type Config struct {
	Name     string         `toml:"name"`
	Protocol string         `toml:"protocol"`
	Socket   PluginConfig   `toml:"socket"`
	Filters  []PluginConfig `toml:"filters"`
	Session  SessionConfig  `toml:"session"`
	HTTP     HTTPConfig     `toml:"http"`
}

// PluginConfig selects a plugin by type. Options are passed to its
// constructor unchanged.
type PluginConfig struct {
	Type    string         `toml:"type"`
	Options map[string]any `toml:"options"`
}

type SessionConfig struct {
	// ManualConnect leaves the socket disconnected until asked.
	ManualConnect    bool `toml:"manual_connect"`
	ConnectTimeoutMS int  `toml:"connect_timeout_ms"`
	QueueSize        int  `toml:"queue_size"`
	LogLimit         int  `toml:"log_limit"`
}

type HTTPConfig struct {
	Addr        string   `toml:"addr"`
	CorsOrigins []string `toml:"cors_origins"`
	// Token guards POST /api/send when set.
	Token string `toml:"token"`
}

// Default is the configuration used when no file is given.
func Default() Config {
	return Config{
		Name:     "ccview",
		Protocol: "demo",
		Socket:   PluginConfig{Type: "tcp_client"},
		HTTP:     HTTPConfig{Addr: ":9400"},
	}
}

func Load(path string) (Config, error) {
	cfg := Default()
	if err := loadToml(path, &cfg); err != nil {
		return Config{}, err
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("config missing name")
	}
	if strings.TrimSpace(cfg.Protocol) == "" {
		return fmt.Errorf("config missing protocol")
	}
	if strings.TrimSpace(cfg.Socket.Type) == "" {
		return fmt.Errorf("config missing socket type")
	}
	for i, f := range cfg.Filters {
		if strings.TrimSpace(f.Type) == "" {
			return fmt.Errorf("filters[%d] missing type", i)
		}
	}
	if cfg.Session.ConnectTimeoutMS < 0 || cfg.Session.QueueSize < 0 || cfg.Session.LogLimit < 0 {
		return fmt.Errorf("session settings must not be negative")
	}
	if strings.TrimSpace(cfg.HTTP.Addr) == "" {
		return fmt.Errorf("config missing http addr")
	}
	return nil
}
