// Package botconfig loads the textmux.json configuration consumed by the
// CLI and the gateway.
package botconfig

import (
	"encoding/json"
	"fmt"
	"os"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "textmux.json"

	// DefaultListen is the default gateway listen address.
	DefaultListen = "localhost:7400"

	// DefaultRouter is the router ID used when a request names none.
	DefaultRouter = "demo"
)

// Config represents the complete textmux.json configuration.
type Config struct {
	// Listen is the gateway listen address (host:port).
	Listen string `json:"listen,omitempty"`

	// Prefix is the command prefix required on every message ("" accepts
	// all).
	Prefix string `json:"prefix,omitempty"`

	// DefaultRouter is the router dispatched when a request names none.
	DefaultRouter string `json:"default_router,omitempty"`

	// Metrics enables the Prometheus /metrics endpoint.
	Metrics bool `json:"metrics,omitempty"`

	// Tracing enables the OpenTelemetry dispatch observer.
	Tracing bool `json:"tracing,omitempty"`

	// Disabled lists routes to unload after startup, per router ID.
	Disabled map[string][]string `json:"disabled,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Listen:        DefaultListen,
		DefaultRouter: DefaultRouter,
		Metrics:       true,
	}
}

// Load reads the configuration from path, applying defaults for absent
// fields. A missing file yields the defaults without error.
func Load(path string) (Config, error) {
	if path == "" {
		path = ConfigFileName
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for obvious mistakes.
func (c Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	if c.DefaultRouter == "" {
		return fmt.Errorf("default_router must not be empty")
	}
	return nil
}
