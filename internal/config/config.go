// Package config loads the devicescan configuration file.
//
// Config file locations (priority order):
//  1. $DEVICESCAN_CONFIG
//  2. ./devicescan.yaml
//  3. $XDG_CONFIG_HOME/devicescan/config.yaml
//  4. ~/.config/devicescan/config.yaml
//
// Keys missing from the file keep their default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/marcuoli/go-devicescan/internal/scanner"
	"github.com/marcuoli/go-devicescan/pkg/devicescan"
	"github.com/marcuoli/go-devicescan/pkg/devicescan/dns"
	"github.com/marcuoli/go-devicescan/pkg/devicescan/lan"
)

const (
	// EnvConfigPath is the environment variable for an explicit config path
	EnvConfigPath = "DEVICESCAN_CONFIG"
	// ConfigFileName is the config file name looked up in the working directory
	ConfigFileName = "devicescan.yaml"
	// ConfigDirName is the config directory name under XDG
	ConfigDirName = "devicescan"
)

// Config is the on-disk configuration.
type Config struct {
	// Interface is the network interface to scan; empty picks the wireless one.
	Interface       string   `yaml:"interface,omitempty"`
	Ports           []int    `yaml:"ports,omitempty"`
	ProbeTimeout    Duration `yaml:"probe_timeout,omitempty"`
	SettleDelay     Duration `yaml:"settle_delay"`
	HostnameTimeout Duration `yaml:"hostname_timeout,omitempty"`
	BranchTimeout   Duration `yaml:"branch_timeout,omitempty"`
	ResolverWorkers int      `yaml:"resolver_workers,omitempty"`

	EnableMDNS    bool `yaml:"enable_mdns"`
	EnableLLMNR   bool `yaml:"enable_llmnr"`
	EnableNetBIOS bool `yaml:"enable_netbios"`
	EnableSSDP    bool `yaml:"enable_ssdp"`
	// ActiveARP sends ARP requests to hosts missing from the neighbor table.
	// Needs raw socket privileges.
	ActiveARP bool `yaml:"active_arp"`

	OUIDatabase string `yaml:"oui_database,omitempty"`
	Database    string `yaml:"database,omitempty"`
	// LogLevel is empty for silent operation; DEVICESCAN_LOG_LEVEL then applies.
	LogLevel string `yaml:"log_level,omitempty"`
	Radio    bool   `yaml:"radio"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() *Config {
	return &Config{
		Ports:           append([]int(nil), scanner.DefaultPorts...),
		ProbeTimeout:    Duration(scanner.DefaultTimeout),
		SettleDelay:     Duration(lan.DefaultSettleDelay),
		HostnameTimeout: Duration(lan.DefaultHostnameTimeout),
		BranchTimeout:   Duration(devicescan.BranchTimeout),
		ResolverWorkers: dns.DefaultWorkers,
		EnableMDNS:      true,
		EnableLLMNR:     true,
		EnableNetBIOS:   true,
		EnableSSDP:      true,
		Database:        DefaultDatabasePath(),
		Radio:           true,
	}
}

// Load finds and loads the config file, or returns defaults if none found.
// The returned path is empty when defaults are used.
func Load() (*Config, string, error) {
	path := FindConfigPath()
	if path == "" {
		return DefaultConfig(), "", nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()

	return cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// applyDefaults fills in values the file zeroed out
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if len(c.Ports) == 0 {
		c.Ports = d.Ports
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = d.ProbeTimeout
	}
	if c.SettleDelay < 0 {
		c.SettleDelay = 0
	}
	if c.HostnameTimeout <= 0 {
		c.HostnameTimeout = d.HostnameTimeout
	}
	if c.BranchTimeout <= 0 {
		c.BranchTimeout = d.BranchTimeout
	}
	if c.ResolverWorkers <= 0 {
		c.ResolverWorkers = d.ResolverWorkers
	}
	if c.Database == "" {
		c.Database = d.Database
	}
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	for _, p := range c.Ports {
		if p < 1 || p > 65535 {
			return fmt.Errorf("invalid port %d", p)
		}
	}
	return nil
}

// LANConfig returns the IP scan tunables.
func (c *Config) LANConfig() lan.Config {
	settle := c.SettleDelay.Duration()
	if settle == 0 {
		// settle_delay: 0s turns the pause off
		settle = -1
	}
	return lan.Config{
		Ports:           append([]int(nil), c.Ports...),
		ProbeTimeout:    c.ProbeTimeout.Duration(),
		SettleDelay:     settle,
		HostnameTimeout: c.HostnameTimeout.Duration(),
	}
}

// FindConfigPath returns the first existing config file, or "" if none.
func FindConfigPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" {
		if fileExists(path) {
			return path
		}
	}

	if fileExists(ConfigFileName) {
		if abs, err := filepath.Abs(ConfigFileName); err == nil {
			return abs
		}
		return ConfigFileName
	}

	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		path := filepath.Join(xdgHome, ConfigDirName, "config.yaml")
		if fileExists(path) {
			return path
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".config", ConfigDirName, "config.yaml")
		if fileExists(path) {
			return path
		}
	}

	return ""
}

// DefaultDatabasePath returns where scan history is kept by default.
func DefaultDatabasePath() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, ConfigDirName, "sessions.db")
	}
	return "devicescan.db"
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
