package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "reflow.yaml"

	// DefaultPort is the default sync server port.
	DefaultPort = 8090

	// DefaultHost is the default sync server host.
	DefaultHost = "localhost"

	// DefaultPingInterval is the fallback websocket keepalive interval.
	DefaultPingInterval = 30 * time.Second

	// DefaultSendBuffer is the default per-session outbound frame buffer.
	DefaultSendBuffer = 64
)

// ErrNotFound is returned by Load when no reflow.yaml exists in the
// directory.
var ErrNotFound = fmt.Errorf("no %s found", ConfigFileName)

// Config represents the complete reflow.yaml configuration.
type Config struct {
	// Name is the project name.
	Name string `yaml:"name,omitempty"`

	// Server contains sync server settings.
	Server ServerConfig `yaml:"server,omitempty"`

	// Log contains logging settings.
	Log LogConfig `yaml:"log,omitempty"`

	// State contains settings for the initial data graph.
	State StateConfig `yaml:"state,omitempty"`

	// Sync contains websocket session settings.
	Sync SyncConfig `yaml:"sync,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains sync server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `yaml:"host,omitempty"`

	// Port is the port to listen on.
	Port int `yaml:"port,omitempty"`

	// ReadOnly rejects state writes arriving from remote sessions.
	ReadOnly bool `yaml:"readOnly,omitempty"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level,omitempty"`

	// Format is one of text, json.
	Format string `yaml:"format,omitempty"`
}

// SlogLevel maps the configured level name onto a slog level. Unknown
// names fall back to info.
func (l LogConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// StateConfig contains settings for the initial data graph.
type StateConfig struct {
	// Seed is the path to a JSON file holding the initial graph. Relative
	// paths resolve against the config file's directory.
	Seed string `yaml:"seed,omitempty"`
}

// SyncConfig contains websocket session settings.
type SyncConfig struct {
	// PingInterval is the keepalive interval (e.g. "30s").
	PingInterval string `yaml:"pingInterval,omitempty"`

	// SendBuffer is the per-session outbound frame buffer size.
	SendBuffer int `yaml:"sendBuffer,omitempty"`
}

// PingEvery parses the configured keepalive interval, falling back to
// the default on a missing or malformed value.
func (s SyncConfig) PingEvery() time.Duration {
	d, err := time.ParseDuration(s.PingInterval)
	if err != nil || d <= 0 {
		return DefaultPingInterval
	}
	return d
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Sync: SyncConfig{
			PingInterval: "30s",
			SendBuffer:   DefaultSendBuffer,
		},
	}
}

// Load reads configuration from the specified directory. It looks for
// reflow.yaml in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w in %s", ErrNotFound, filepath.Dir(path))
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := New()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ConfigFileName, err)
	}

	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return fmt.Errorf("no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// SeedPath returns the absolute path of the state seed file, or "" when
// no seed is configured.
func (c *Config) SeedPath() string {
	if c.State.Seed == "" {
		return ""
	}
	if filepath.IsAbs(c.State.Seed) || c.configPath == "" {
		return c.State.Seed
	}
	return filepath.Join(c.Dir(), c.State.Seed)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Sync.PingInterval == "" {
		c.Sync.PingInterval = "30s"
	}
	if c.Sync.SendBuffer == 0 {
		c.Sync.SendBuffer = DefaultSendBuffer
	}
}
