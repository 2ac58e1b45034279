// Package ds3231 provides a driver for the DS3231 RTC.
//
// Datasheet: https://datasheets.maximintegrated.com/en/ds/DS3231.pdf
//
// The driver reads and sets the calendar, reads the temperature sensor and
// reports and acknowledges the oscillator stop flag, which the chip sets when
// it lost both supply and battery power and the stored time cannot be trusted.
//
// Every operation is a fresh bus transaction. Transactions are serialized, so
// a Device may be shared between goroutines, but two operations issued from
// different goroutines may run in either order.
package ds3231 // import "github.com/ajanata/rtc/ds3231"

import (
	"time"

	"tinygo.org/x/drivers"
)

// Device wraps an I2C connection to a DS3231 device.
type Device struct {
	bus     drivers.I2C
	serial  *Bus
	Address uint16
}

// Config holds the settings applied by Configure.
type Config struct {
	// Address defaults to the DS3231 address, 0x68.
	Address uint16
	// AcquireTimeout bounds the wait for the bus; zero means one second.
	AcquireTimeout time.Duration
	// TxTimeout bounds a single transfer; zero means one second.
	TxTimeout time.Duration
	// Setup, if set, prepares the transport (role, speed) before the device
	// is used.
	Setup func() error
}

// New creates a new DS3231 connection. The I2C bus must already be
// configured, or be configured by Config.Setup.
//
// This function only creates the Device object, it does not touch the device.
func New(bus drivers.I2C) Device {
	return Device{
		bus:     bus,
		Address: Address,
	}
}

// Configure prepares the device for use. It must be called exactly once before
// any other method; a failure leaves the device unusable and should be
// treated as fatal.
func (d *Device) Configure(cfg Config) error {
	if d.serial != nil {
		return invalidArgument("already configured")
	}
	if d.bus == nil {
		return invalidArgument("no I2C bus")
	}
	if cfg.Address != 0 {
		d.Address = cfg.Address
	}
	if d.Address == 0 {
		d.Address = Address
	}
	if cfg.Setup != nil {
		if err := cfg.Setup(); err != nil {
			return &StatusErr{Status: NotInitialized, Message: "bus setup", Err: err}
		}
	}
	d.serial = NewBus(d.bus, d.Address, cfg.AcquireTimeout, cfg.TxTimeout)
	return nil
}

func (d *Device) conn() (*Bus, error) {
	if d.serial == nil {
		return nil, ErrNotInitialized
	}
	return d.serial, nil
}

// ReadTime reads the seven time registers in one transaction. The weekday is
// returned as stored.
func (d *Device) ReadTime() (Time, error) {
	bus, err := d.conn()
	if err != nil {
		return Time{}, err
	}
	var data [timeRegisters]byte
	if err := bus.ReadRegisters(RegTime, data[:]); err != nil {
		return Time{}, err
	}
	return Time{
		Second:  DecodeBCD(data[0] & secondsMask),
		Minute:  DecodeBCD(data[1]),
		Hour:    DecodeHour(data[2]),
		Weekday: DecodeBCD(data[3]),
		Day:     DecodeBCD(data[4]),
		Month:   DecodeMonth(data[5]),
		Year:    DecodeBCD(data[6]),
	}, nil
}

// WriteTime validates t and writes it in 24-hour form in one transaction.
//
// It does not touch the oscillator stop flag; see AcknowledgePowerLoss.
func (d *Device) WriteTime(t Time) error {
	if err := t.Validate(); err != nil {
		return err
	}
	bus, err := d.conn()
	if err != nil {
		return err
	}
	data := [timeRegisters]byte{
		EncodeBCD(t.Second),
		EncodeBCD(t.Minute),
		EncodeBCD(t.Hour),
		EncodeBCD(t.Weekday),
		EncodeBCD(t.Day),
		EncodeBCD(t.Month),
		EncodeBCD(t.Year),
	}
	return bus.WriteRegisters(RegTime, data[:])
}

// Now reads the DS3231 and returns a UTC time.Time.
func (d *Device) Now() (time.Time, error) {
	t, err := d.ReadTime()
	if err != nil {
		return time.Time{}, err
	}
	return t.Std(), nil
}

// Set sets the DS3231 to tm in UTC, with Sunday as weekday 1.
func (d *Device) Set(tm time.Time) error {
	t, err := FromStd(tm)
	if err != nil {
		return err
	}
	return d.WriteTime(t)
}

// IsRunning reports whether the oscillator keeps running on battery power.
func (d *Device) IsRunning() (bool, error) {
	bus, err := d.conn()
	if err != nil {
		return false, err
	}
	var data [1]byte
	if err := bus.ReadRegisters(RegControl, data[:]); err != nil {
		return false, err
	}
	return data[0]&eoscFlag == 0, nil
}

// SetRunning enables or disables the oscillator on battery power. The control
// register is read and written in two separate transactions.
func (d *Device) SetRunning(running bool) error {
	bus, err := d.conn()
	if err != nil {
		return err
	}
	var data [1]byte
	if err := bus.ReadRegisters(RegControl, data[:]); err != nil {
		return err
	}
	if running {
		data[0] &^= eoscFlag
	} else {
		data[0] |= eoscFlag
	}
	return bus.WriteRegisters(RegControl, data[:])
}
