// Package config holds the ds3231ctl configuration, read from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Bus       BusConfig       `yaml:"bus"`
	Console   ConsoleConfig   `yaml:"console"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	NTP       NTPConfig       `yaml:"ntp"`
}

// BusConfig selects the I2C bus and the device on it.
type BusConfig struct {
	// Name is a periph bus name or number; empty means the first bus.
	Name           string        `yaml:"name"`
	Address        uint16        `yaml:"address"`
	SpeedKHz       int           `yaml:"speed_khz"`
	AcquireTimeout time.Duration `yaml:"acquire_timeout"`
	TxTimeout      time.Duration `yaml:"tx_timeout"`
}

// ConsoleConfig selects where commands are read from.
type ConsoleConfig struct {
	// Port is a serial port; empty means stdin and stdout.
	Port   string `yaml:"port"`
	Baud   int    `yaml:"baud"`
	Layout string `yaml:"layout"`
}

// TelemetryConfig configures periodic publishing of readings.
type TelemetryConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Client   string        `yaml:"client"` // paho, natiu, modbus or sqlite
	Interval time.Duration `yaml:"interval"`
	Timeout  time.Duration `yaml:"timeout"`

	// MQTT
	Broker string `yaml:"broker"`
	Topic  string `yaml:"topic"`

	// Modbus
	Endpoint string `yaml:"endpoint"`
	UnitID   uint8  `yaml:"unit_id"`
	Register uint16 `yaml:"register"`

	// SQLite
	Database string `yaml:"database"`
}

type NTPConfig struct {
	Server  string        `yaml:"server"`
	Timeout time.Duration `yaml:"timeout"`
}

// Telemetry clients
const (
	ClientPaho   = "paho"
	ClientNatiu  = "natiu"
	ClientModbus = "modbus"
	ClientSQLite = "sqlite"
)

// Default returns the configuration used without a config file.
func Default() *Config {
	c := &Config{}
	applyDefaults(c)
	return c
}

// Load reads a YAML config file. Missing values get their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&c)
	return &c, nil
}

func applyDefaults(c *Config) {
	if c.Bus.Address == 0 {
		c.Bus.Address = 0x68
	}
	if c.Bus.SpeedKHz == 0 {
		c.Bus.SpeedKHz = 400
	}
	if c.Bus.AcquireTimeout == 0 {
		c.Bus.AcquireTimeout = time.Second
	}
	if c.Bus.TxTimeout == 0 {
		c.Bus.TxTimeout = time.Second
	}
	if c.Console.Baud == 0 {
		c.Console.Baud = 115200
	}
	if c.Console.Layout == "" {
		c.Console.Layout = "24h"
	}
	if c.Telemetry.Client == "" {
		c.Telemetry.Client = ClientPaho
	}
	if c.Telemetry.Interval == 0 {
		c.Telemetry.Interval = time.Minute
	}
	if c.Telemetry.Timeout == 0 {
		c.Telemetry.Timeout = 5 * time.Second
	}
	if c.Telemetry.Topic == "" {
		c.Telemetry.Topic = "ds3231/reading"
	}
	if c.Telemetry.UnitID == 0 {
		c.Telemetry.UnitID = 1
	}
	if c.Telemetry.Database == "" {
		c.Telemetry.Database = "ds3231.db"
	}
	if c.NTP.Server == "" {
		c.NTP.Server = "pool.ntp.org"
	}
	if c.NTP.Timeout == 0 {
		c.NTP.Timeout = 2 * time.Second
	}
}
