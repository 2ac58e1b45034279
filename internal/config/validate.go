package config

import (
	"fmt"

	"github.com/ajanata/rtc/ds3231"
)

// Validate checks configuration correctness. It does not modify cfg.
func Validate(cfg *Config) error {
	if cfg.Bus.Address == 0 || cfg.Bus.Address > 0x7F {
		return fmt.Errorf("bus: address 0x%X is not a 7-bit address", cfg.Bus.Address)
	}
	if cfg.Bus.SpeedKHz < 0 {
		return fmt.Errorf("bus: negative speed_khz %d", cfg.Bus.SpeedKHz)
	}
	if cfg.Bus.AcquireTimeout < 0 || cfg.Bus.TxTimeout < 0 {
		return fmt.Errorf("bus: negative timeout")
	}
	if cfg.Console.Baud <= 0 {
		return fmt.Errorf("console: baud %d must be positive", cfg.Console.Baud)
	}
	if _, err := ds3231.ParseLayout(cfg.Console.Layout); err != nil {
		return fmt.Errorf("console: %w", err)
	}
	if cfg.NTP.Timeout < 0 {
		return fmt.Errorf("ntp: negative timeout")
	}

	t := cfg.Telemetry
	if !t.Enabled {
		return nil
	}
	if t.Interval <= 0 {
		return fmt.Errorf("telemetry: interval %v must be positive", t.Interval)
	}
	switch t.Client {
	case ClientPaho, ClientNatiu:
		if t.Broker == "" {
			return fmt.Errorf("telemetry: client %s requires broker", t.Client)
		}
	case ClientModbus:
		if t.Endpoint == "" {
			return fmt.Errorf("telemetry: client %s requires endpoint", t.Client)
		}
	case ClientSQLite:
		if t.Database == "" {
			return fmt.Errorf("telemetry: client %s requires database", t.Client)
		}
	default:
		return fmt.Errorf("telemetry: unknown client %q", t.Client)
	}
	return nil
}
