package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

// ModbusConfig configures a ModbusPublisher.
type ModbusConfig struct {
	// Endpoint is the host:port of a Modbus TCP server.
	Endpoint string
	UnitID   uint8
	// Address is the first of the ModbusRegisters holding registers written.
	Address uint16
	Timeout time.Duration
}

// ModbusRegisters is the number of holding registers a reading occupies:
// Unix time high and low words, temperature in 0.25 °C steps (signed) and
// the oscillator stop flag.
const ModbusRegisters = 4

// Registers returns the holding register values for r.
func Registers(r Reading) [ModbusRegisters]uint16 {
	var osf uint16
	if r.OscillatorStopped {
		osf = 1
	}
	return [ModbusRegisters]uint16{
		uint16(uint32(r.Unix) >> 16),
		uint16(r.Unix),
		uint16(r.Temperature),
		osf,
	}
}

// ModbusPublisher writes every reading to the holding registers of a Modbus
// TCP server.
type ModbusPublisher struct {
	mu      sync.Mutex
	handler *modbus.TCPClientHandler
	client  modbus.Client
	address uint16
}

// DialModbus connects to the server.
func DialModbus(cfg ModbusConfig) (*ModbusPublisher, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("telemetry: modbus endpoint required")
	}
	h := modbus.NewTCPClientHandler(cfg.Endpoint)
	h.Timeout = cfg.Timeout
	h.SlaveId = cfg.UnitID
	if err := h.Connect(); err != nil {
		return nil, err
	}
	return &ModbusPublisher{
		handler: h,
		client:  modbus.NewClient(h),
		address: cfg.Address,
	}, nil
}

func (p *ModbusPublisher) Publish(_ context.Context, r Reading) error {
	regs := Registers(r)
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := p.client.WriteMultipleRegisters(p.address, ModbusRegisters, packRegisters(regs[:]))
	return err
}

func (p *ModbusPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handler.Close()
}

func packRegisters(regs []uint16) []byte {
	out := make([]byte, len(regs)*2)
	for i, r := range regs {
		out[2*i] = byte(r >> 8)
		out[2*i+1] = byte(r)
	}
	return out
}
