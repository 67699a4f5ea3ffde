// Package config loads the daemon configuration from a JSON file. Flags
// override file values; fields omitted from the file fall back to the
// built-in defaults, so partial configs are safe.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/spectrum.report/internal/serialport"
)

// Config is the daemon configuration. All fields are pointers so a JSON
// file can set only the fields it cares about; the Get* methods provide
// the defaults for the rest.
type Config struct {
	Listen     *string `json:"listen,omitempty"`
	DBPath     *string `json:"db_path,omitempty"`
	SerialPort *string `json:"serial_port,omitempty"`
	BaudRate   *int    `json:"baud_rate,omitempty"`

	// FixturePath is the line fixture replayed in dev mode instead of
	// reading from hardware.
	FixturePath *string `json:"fixture_path,omitempty"`

	// ExportDir is where server-side CSV exports are written.
	ExportDir *string `json:"export_dir,omitempty"`
}

// Empty returns a Config with all fields unset.
func Empty() *Config {
	return &Config{}
}

// Load reads a Config from a JSON file. The file must have a .json
// extension and stay under the max file size.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *Config) Validate() error {
	if c.BaudRate != nil && !serialport.ValidBaudRate(*c.BaudRate) {
		return fmt.Errorf("unsupported baud_rate %d: accepted rates are %v",
			*c.BaudRate, serialport.AcceptedBaudRates)
	}
	if c.Listen != nil && *c.Listen == "" {
		return fmt.Errorf("listen must not be empty when set")
	}
	return nil
}

// GetListen returns the HTTP listen address or the default.
func (c *Config) GetListen() string {
	if c.Listen == nil {
		return ":8080"
	}
	return *c.Listen
}

// GetDBPath returns the preset database path or the default.
func (c *Config) GetDBPath() string {
	if c.DBPath == nil {
		return "spectrum_data.db"
	}
	return *c.DBPath
}

// GetSerialPort returns the default serial device path.
func (c *Config) GetSerialPort() string {
	if c.SerialPort == nil {
		return "/dev/ttyUSB0"
	}
	return *c.SerialPort
}

// GetBaudRate returns the default baud rate.
func (c *Config) GetBaudRate() int {
	if c.BaudRate == nil {
		return serialport.DefaultBaudRate
	}
	return *c.BaudRate
}

// GetExportDir returns the server-side CSV export directory.
func (c *Config) GetExportDir() string {
	if c.ExportDir == nil {
		return "exports"
	}
	return *c.ExportDir
}

// GetFixturePath returns the dev-mode fixture file path.
func (c *Config) GetFixturePath() string {
	if c.FixturePath == nil {
		return "fixtures.txt"
	}
	return *c.FixturePath
}
