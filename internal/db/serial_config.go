package db

import (
	"database/sql"
	"fmt"

	"github.com/banshee-data/spectrum.report/internal/serialport"
)

// SerialConfig represents a serial port preset for a spectrometer.
type SerialConfig struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	PortPath    string `json:"port_path"`
	BaudRate    int    `json:"baud_rate"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

func (c *SerialConfig) validate() error {
	if c.Name == "" {
		return fmt.Errorf("serial config name is required")
	}
	if c.PortPath == "" {
		return fmt.Errorf("serial config port path is required")
	}
	if !serialport.ValidBaudRate(c.BaudRate) {
		return fmt.Errorf("unsupported baud rate %d: accepted rates are %v", c.BaudRate, serialport.AcceptedBaudRates)
	}
	return nil
}

// GetSerialConfigs returns all serial presets.
func (db *DB) GetSerialConfigs() ([]SerialConfig, error) {
	query := `SELECT id, name, port_path, baud_rate, description, enabled, created_at, updated_at
	          FROM spectro_serial_config
	          ORDER BY created_at ASC, id ASC`

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query serial configs: %w", err)
	}
	defer rows.Close()

	var configs []SerialConfig
	for rows.Next() {
		var c SerialConfig
		var enabled int
		err := rows.Scan(&c.ID, &c.Name, &c.PortPath, &c.BaudRate, &c.Description,
			&enabled, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan serial config: %w", err)
		}
		c.Enabled = enabled == 1
		configs = append(configs, c)
	}

	return configs, rows.Err()
}

// GetSerialConfig returns a single preset by ID, or nil when it does not
// exist.
func (db *DB) GetSerialConfig(id int) (*SerialConfig, error) {
	query := `SELECT id, name, port_path, baud_rate, description, enabled, created_at, updated_at
	          FROM spectro_serial_config
	          WHERE id = ?`

	var c SerialConfig
	var enabled int
	err := db.QueryRow(query, id).Scan(&c.ID, &c.Name, &c.PortPath, &c.BaudRate,
		&c.Description, &enabled, &c.CreatedAt, &c.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get serial config: %w", err)
	}

	c.Enabled = enabled == 1
	return &c, nil
}

// GetEnabledSerialConfig returns the first enabled preset, or nil when none
// is enabled. The daemon connects to this preset at startup.
func (db *DB) GetEnabledSerialConfig() (*SerialConfig, error) {
	query := `SELECT id, name, port_path, baud_rate, description, enabled, created_at, updated_at
	          FROM spectro_serial_config
	          WHERE enabled = 1
	          ORDER BY created_at ASC, id ASC
	          LIMIT 1`

	var c SerialConfig
	var enabled int
	err := db.QueryRow(query).Scan(&c.ID, &c.Name, &c.PortPath, &c.BaudRate,
		&c.Description, &enabled, &c.CreatedAt, &c.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get enabled serial config: %w", err)
	}

	c.Enabled = enabled == 1
	return &c, nil
}

// CreateSerialConfig creates a new preset and returns its ID.
func (db *DB) CreateSerialConfig(c *SerialConfig) (int64, error) {
	if err := c.validate(); err != nil {
		return 0, err
	}

	query := `INSERT INTO spectro_serial_config (name, port_path, baud_rate, description, enabled)
	          VALUES (?, ?, ?, ?, ?)`

	enabled := 0
	if c.Enabled {
		enabled = 1
	}

	result, err := db.Exec(query, c.Name, c.PortPath, c.BaudRate, c.Description, enabled)
	if err != nil {
		return 0, fmt.Errorf("failed to create serial config: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get created serial config ID: %w", err)
	}
	return id, nil
}

// UpdateSerialConfig updates an existing preset.
func (db *DB) UpdateSerialConfig(id int, c *SerialConfig) error {
	if err := c.validate(); err != nil {
		return err
	}

	query := `UPDATE spectro_serial_config
	          SET name = ?, port_path = ?, baud_rate = ?, description = ?, enabled = ?, updated_at = unixepoch()
	          WHERE id = ?`

	enabled := 0
	if c.Enabled {
		enabled = 1
	}

	result, err := db.Exec(query, c.Name, c.PortPath, c.BaudRate, c.Description, enabled, id)
	if err != nil {
		return fmt.Errorf("failed to update serial config: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check serial config update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("serial config %d not found", id)
	}
	return nil
}

// DeleteSerialConfig removes a preset.
func (db *DB) DeleteSerialConfig(id int) error {
	result, err := db.Exec(`DELETE FROM spectro_serial_config WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete serial config: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check serial config delete: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("serial config %d not found", id)
	}
	return nil
}
