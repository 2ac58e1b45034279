package ds3231

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"tinygo.org/x/drivers"
)

// Default bounds for a bus transaction.
const (
	DefaultAcquireTimeout = time.Second
	DefaultTxTimeout      = time.Second
)

// Bus serializes register transactions to one device. At most one
// transaction is on the wire at any time; the transport is not assumed to be
// safe for concurrent use.
type Bus struct {
	i2c  drivers.I2C
	addr uint16

	// gate holds a token while a transaction is in flight.
	gate chan struct{}

	acquireTimeout time.Duration
	txTimeout      time.Duration
}

// NewBus wraps an I2C transport for the device at addr. A zero timeout selects
// the default.
func NewBus(i2c drivers.I2C, addr uint16, acquireTimeout, txTimeout time.Duration) *Bus {
	if acquireTimeout <= 0 {
		acquireTimeout = DefaultAcquireTimeout
	}
	if txTimeout <= 0 {
		txTimeout = DefaultTxTimeout
	}
	return &Bus{
		i2c:            i2c,
		addr:           addr,
		gate:           make(chan struct{}, 1),
		acquireTimeout: acquireTimeout,
		txTimeout:      txTimeout,
	}
}

// ReadRegisters writes the register address and reads len(buf) bytes back in
// one transaction.
func (b *Bus) ReadRegisters(reg uint8, buf []byte) error {
	return b.Transact(reg, nil, buf)
}

// WriteRegisters writes data starting at reg in one transaction.
func (b *Bus) WriteRegisters(reg uint8, data []byte) error {
	return b.Transact(reg, data, nil)
}

// Transact runs a single write, or write-then-read when read is not empty,
// against the device. The register address is sent as the first byte.
//
// It returns ErrBusBusy if the bus could not be acquired within the acquire
// timeout, ErrTimeout if the exchange outlived the transfer timeout and
// ErrTransportNack for any other transport failure. There are no retries.
//
// The transfer timeout is checked once the transport returns. A transport that
// never returns keeps the bus held, so later callers get ErrBusBusy rather
// than ErrTimeout.
func (b *Bus) Transact(reg uint8, write, read []byte) error {
	var buf [1 + timeRegisters]byte
	if len(write) > len(buf)-1 {
		return invalidArgument("write of %d bytes exceeds %d", len(write), len(buf)-1)
	}
	w := append(buf[:0], reg)
	w = append(w, write...)

	release, ok := b.acquire()
	if !ok {
		return &StatusErr{Status: BusBusy, Message: fmt.Sprintf("bus busy, register 0x%02X", reg)}
	}
	defer release()

	start := time.Now()
	err := b.i2c.Tx(b.addr, w, read)
	elapsed := time.Since(start)
	switch {
	case err != nil && isDeadline(err):
		return &StatusErr{Status: Timeout, Message: fmt.Sprintf("register 0x%02X", reg), Err: err}
	case err != nil:
		return &StatusErr{Status: TransportNack, Message: fmt.Sprintf("register 0x%02X", reg), Err: err}
	case elapsed > b.txTimeout:
		return &StatusErr{Status: Timeout, Message: fmt.Sprintf("register 0x%02X took %v", reg, elapsed)}
	}
	return nil
}

// acquire takes the gate, waiting at most the acquire timeout. The returned
// release func must be called exactly once, and only when ok is true.
func (b *Bus) acquire() (release func(), ok bool) {
	select {
	case b.gate <- struct{}{}:
		return b.release, true
	default:
	}

	timer := time.NewTimer(b.acquireTimeout)
	defer timer.Stop()
	select {
	case b.gate <- struct{}{}:
		return b.release, true
	case <-timer.C:
		return nil, false
	}
}

func (b *Bus) release() {
	select {
	case <-b.gate:
	default:
		panic("ds3231: bus released while not held")
	}
}

func isDeadline(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded)
}
