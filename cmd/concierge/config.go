package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/conciergehq/concierge-go/gateway"
)

// Config holds the persistent CLI settings loaded from the YAML config file.
// Flags override individual fields.
type Config struct {
	BaseURL        string `yaml:"baseURL"`
	Mode           string `yaml:"mode"`
	ProxyPrefix    string `yaml:"proxyPrefix"`
	UpstreamPrefix string `yaml:"upstreamPrefix"`
	Token          string `yaml:"token"`
	TenantID       string `yaml:"tenantId"`
}

// LoadConfig reads the config file at path, or $HOME/.concierge.yaml when
// path is empty. A missing default file yields a zero config; a missing
// explicit file is an error.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return &Config{}, nil
		}
		path = filepath.Join(home, ".concierge.yaml")
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// Router builds the gateway router from the config. Empty fields fall back
// to direct mode and the library prefix defaults.
func (c *Config) Router() gateway.Router {
	mode := gateway.ModeDirect
	if c.Mode == string(gateway.ModeProxied) {
		mode = gateway.ModeProxied
	}
	return gateway.Router{
		BaseURL:        c.BaseURL,
		Mode:           mode,
		ProxyPrefix:    c.ProxyPrefix,
		UpstreamPrefix: c.UpstreamPrefix,
	}
}
