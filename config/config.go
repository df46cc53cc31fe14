// Package config loads settings for the dsinfo tool: logging, driver order,
// data sources to open at startup and wasm runtime limits.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/nextgis-borsch/lib-gdal/driver"
	"github.com/nextgis-borsch/lib-gdal/errors"
	"github.com/nextgis-borsch/lib-gdal/registry"
)

// Environment variables that override file settings.
const (
	EnvLogLevel        = "DSINFO_LOG_LEVEL"
	EnvLogFormat       = "DSINFO_LOG_FORMAT"
	EnvDrivers         = "DSINFO_DRIVERS"
	EnvWasmMemoryLimit = "DSINFO_WASM_MEMORY_LIMIT_PAGES"
)

// Config is the root configuration.
type Config struct {
	Log     LogConfig      `yaml:"log"`
	Drivers []string       `yaml:"drivers"`
	Sources []SourceConfig `yaml:"sources"`
	Wasm    WasmConfig     `yaml:"wasm"`
}

// LogConfig selects the zap logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

// SourceConfig is a data source opened shared at startup.
type SourceConfig struct {
	Path   string `yaml:"path"`
	Access string `yaml:"access"`
}

// WasmConfig mirrors driver.WasmConfig.
type WasmConfig struct {
	MemoryLimitPages uint32 `yaml:"memory_limit_pages"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Drivers: append([]string(nil), driver.DefaultOrder...),
	}
}

// Load reads a YAML file over the defaults and applies environment
// overrides. An empty path yields the defaults; a named file must exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			return nil, errors.New(errors.PhaseConfig, errors.KindNotFound).
				Source(path).
				Cause(err).
				Detail("config file does not exist").
				Build()
		case err != nil:
			return nil, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
				Source(path).
				Cause(err).
				Detail("read config").
				Build()
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.ParseFailed("config "+path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnv loads .env files into the process environment. Missing files are
// skipped and variables already set are kept.
func LoadEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return errors.ParseFailed("env file "+f, err)
		}
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv(EnvDrivers); v != "" {
		c.Drivers = nil
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				c.Drivers = append(c.Drivers, name)
			}
		}
	}
	if v := os.Getenv(EnvWasmMemoryLimit); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return errors.ParseFailed(EnvWasmMemoryLimit, err)
		}
		c.Wasm.MemoryLimitPages = uint32(n)
	}
	return nil
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return errors.InvalidInput(errors.PhaseConfig, "log format must be console or json, got "+c.Log.Format)
	}

	seen := make(map[string]bool, len(c.Drivers))
	for _, name := range c.Drivers {
		if seen[name] {
			return errors.InvalidInput(errors.PhaseConfig, "driver "+name+" listed twice")
		}
		seen[name] = true
	}

	for _, s := range c.Sources {
		if s.Path == "" {
			return errors.InvalidInput(errors.PhaseConfig, "source with empty path")
		}
		if _, err := registry.ParseAccess(s.Access); err != nil {
			return errors.InvalidInput(errors.PhaseConfig, "source "+s.Path+": unknown access "+s.Access)
		}
	}
	return nil
}

// DriverOptions converts the driver settings.
func (c *Config) DriverOptions() driver.Options {
	return driver.Options{
		Wasm: driver.WasmConfig{MemoryLimitPages: c.Wasm.MemoryLimitPages},
	}
}

// Identifiers normalizes the configured sources.
func (c *Config) Identifiers() ([]registry.Identifier, error) {
	ids := make([]registry.Identifier, 0, len(c.Sources))
	for _, s := range c.Sources {
		access, err := registry.ParseAccess(s.Access)
		if err != nil {
			return nil, err
		}
		id, err := registry.NewIdentifier(s.Path, access)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
