// Package tester provides an in-memory I2C bus for testing drivers.
package tester

import (
	"errors"
	"sync"
	"time"
)

// ErrNoDevice is returned for an exchange with an address that has no device.
var ErrNoDevice = errors.New("tester: no device at address")

// Tx records one exchange on the bus.
type Tx struct {
	Addr uint16
	// W is a copy of the bytes written, register address first.
	W []byte
	// R is the number of bytes requested.
	R int
}

// I2CDevice is a device with 8-bit registers addressed by the first byte
// written. Reads and writes auto-increment the register pointer.
type I2CDevice struct {
	Addr uint16
	// Registers holds the device registers. It can be inspected or changed
	// as desired between exchanges.
	Registers [256]uint8
}

// I2CBus implements drivers.I2C in memory.
type I2CBus struct {
	mu      sync.Mutex
	devices map[uint16]*I2CDevice
	txs     []Tx

	inFlight    int
	maxInFlight int

	// Err, if non-nil, is returned from every exchange after it is recorded.
	Err error
	// Delay is slept inside every exchange.
	Delay time.Duration
	// Entered, if non-nil, receives a value when an exchange starts.
	Entered chan struct{}
	// Hold, if non-nil, blocks every exchange until it yields a value or is
	// closed.
	Hold chan struct{}
}

// NewI2CBus returns an empty bus.
func NewI2CBus() *I2CBus {
	return &I2CBus{devices: make(map[uint16]*I2CDevice)}
}

// AddDevice attaches a new device at addr and returns it.
func (b *I2CBus) AddDevice(addr uint16) *I2CDevice {
	b.mu.Lock()
	defer b.mu.Unlock()
	d := &I2CDevice{Addr: addr}
	b.devices[addr] = d
	return d
}

// Tx implements drivers.I2C.
func (b *I2CBus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	b.txs = append(b.txs, Tx{Addr: addr, W: append([]byte(nil), w...), R: len(r)})
	b.inFlight++
	if b.inFlight > b.maxInFlight {
		b.maxInFlight = b.inFlight
	}
	entered, hold, delay, err := b.Entered, b.Hold, b.Delay, b.Err
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.inFlight--
		b.mu.Unlock()
	}()

	if entered != nil {
		entered <- struct{}{}
	}
	if hold != nil {
		<-hold
	}
	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	dev := b.devices[addr]
	if dev == nil {
		return ErrNoDevice
	}
	var reg uint8
	if len(w) > 0 {
		reg = w[0]
		for i, v := range w[1:] {
			dev.Registers[reg+uint8(i)] = v
		}
	}
	for i := range r {
		r[i] = dev.Registers[reg+uint8(i)]
	}
	return nil
}

// ReadRegister reads len(buf) registers starting at r.
func (b *I2CBus) ReadRegister(addr uint8, r uint8, buf []byte) error {
	return b.Tx(uint16(addr), []byte{r}, buf)
}

// WriteRegister writes buf to the registers starting at r.
func (b *I2CBus) WriteRegister(addr uint8, r uint8, buf []byte) error {
	return b.Tx(uint16(addr), append([]byte{r}, buf...), nil)
}

// Txs returns the exchanges seen so far.
func (b *I2CBus) Txs() []Tx {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Tx(nil), b.txs...)
}

// MaxInFlight returns the largest number of exchanges that were running at
// the same time.
func (b *I2CBus) MaxInFlight() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.maxInFlight
}
