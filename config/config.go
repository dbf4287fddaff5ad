// Package config provides the main configuration for the application.
package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the main configuration for the application.
type Config struct {
	APIURL     string `yaml:"api_url"`     // Base URL of the server management API
	Username   string `yaml:"username"`    // Username for management API authentication
	Password   string `yaml:"password"`    // Password for management API authentication
	LogLevel   string `yaml:"log_level"`   // Logging level (debug, info, warn, error)
	ListenAddr string `yaml:"listen_addr"` // Address for the control/metrics HTTP endpoint

	AutoShutdown bool `yaml:"auto_shutdown"` // Whether to automatically stop the server when idle

	Launch  Launch  `yaml:"launch"`  // How to launch the supervised server process
	Timings Timings `yaml:"timings"` // Lifecycle timing parameters
}

// Launch selects how the supervised server process is started. Exactly one of
// Service or Command must be set.
type Launch struct {
	Service *Service `yaml:"service,omitempty"` // Managed systemd unit
	Command *Command `yaml:"command,omitempty"` // Plain executable
}

// Service describes a systemd unit launch target.
type Service struct {
	Unit    string `yaml:"unit"`     // Unit name, e.g. "gameserver.service"
	UserBus bool   `yaml:"user_bus"` // Use the per-user bus instead of the system bus
}

// Command describes an executable launch target.
type Command struct {
	Executable string   `yaml:"executable"`            // Path to the server binary
	Args       []string `yaml:"args,omitempty"`        // Arguments passed to the binary
	WorkingDir string   `yaml:"working_dir,omitempty"` // Working directory for the process
}

// Timings holds all lifecycle timing parameters. Values are pre-validated
// bounded inputs; the lifecycle code treats them as opaque.
type Timings struct {
	StartTimeout    Duration `yaml:"start_timeout"`    // How long to wait for the server to come up
	PollInterval    Duration `yaml:"poll_interval"`    // Interval between liveness probes while waiting
	SettleDelay     Duration `yaml:"settle_delay"`     // Delay between world save and the final player re-check
	ShutdownGrace   Duration `yaml:"shutdown_grace"`   // Grace delay passed to the remote shutdown request
	ShutdownTimeout Duration `yaml:"shutdown_timeout"` // How long to wait for the server to go down
	MonitorInterval Duration `yaml:"monitor_interval"` // Interval between monitor ticks
	IdleThreshold   int      `yaml:"idle_threshold"`   // Consecutive idle ticks before auto-stop
}

// Duration wraps time.Duration so YAML values can be written as "30s" or "5m".
type Duration time.Duration

// UnmarshalYAML parses a duration from its string form.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration in its string form.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// NewConfig returns a Config instance populated with default values.
func NewConfig() Config {
	return Config{
		APIURL:       "https://localhost:8443",
		Username:     "admin",
		Password:     "password",
		LogLevel:     "info",
		ListenAddr:   "127.0.0.1:8077",
		AutoShutdown: true,
		Launch: Launch{
			Service: &Service{
				Unit: "gameserver.service",
			},
		},
		Timings: Timings{
			StartTimeout:    Duration(5 * time.Minute),
			PollInterval:    Duration(2 * time.Second),
			SettleDelay:     Duration(10 * time.Second),
			ShutdownGrace:   Duration(30 * time.Second),
			ShutdownTimeout: Duration(2 * time.Minute),
			MonitorInterval: Duration(1 * time.Minute),
			IdleThreshold:   10,
		},
	}
}

// Load reads configuration from the specified file path into the Config struct.
// If the file does not exist, a default configuration is created and saved to the path.
func (c *Config) Load(path string) error {
	file, err := os.Open(path) //nolint
	if err != nil {
		if os.IsNotExist(err) {
			defaultConfig := NewConfig()
			data, marshalErr := yaml.Marshal(defaultConfig)
			if marshalErr != nil {
				return fmt.Errorf("failed to marshal default config: %w", marshalErr)
			}

			writeErr := os.WriteFile(path, data, 0600)
			if writeErr != nil {
				return fmt.Errorf("failed to write default config file: %w", writeErr)
			}

			log.Printf("config file not found — created default at %s\n", path)
			*c = defaultConfig
			return nil
		}

		return fmt.Errorf("could not open config file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("could not read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("could not parse yaml config: %w", err)
	}

	return nil
}

// Validate checks cross-field constraints the YAML schema cannot express.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return errors.New("api_url must be set")
	}

	if (c.Launch.Service == nil) == (c.Launch.Command == nil) {
		return errors.New("launch: exactly one of service or command must be set")
	}
	if c.Launch.Service != nil && c.Launch.Service.Unit == "" {
		return errors.New("launch.service.unit must be set")
	}
	if c.Launch.Command != nil && c.Launch.Command.Executable == "" {
		return errors.New("launch.command.executable must be set")
	}

	t := c.Timings
	for _, check := range []struct {
		name  string
		value Duration
	}{
		{"start_timeout", t.StartTimeout},
		{"poll_interval", t.PollInterval},
		{"shutdown_grace", t.ShutdownGrace},
		{"shutdown_timeout", t.ShutdownTimeout},
		{"monitor_interval", t.MonitorInterval},
	} {
		if check.value <= 0 {
			return fmt.Errorf("timings.%s must be positive", check.name)
		}
	}
	if t.SettleDelay < 0 {
		return errors.New("timings.settle_delay must not be negative")
	}
	if t.IdleThreshold < 1 {
		return errors.New("timings.idle_threshold must be at least 1")
	}

	return nil
}
