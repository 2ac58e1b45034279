package telemetry

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/sirupsen/logrus"

	"github.com/ajanata/rtc/ds3231"
	"github.com/ajanata/rtc/internal/tester"
)

type recorder struct {
	mu       sync.Mutex
	readings []Reading
	err      error
	closed   bool
}

func (r *recorder) Publish(_ context.Context, rd Reading) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.readings = append(r.readings, rd)
	return nil
}

func (r *recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.readings)
}

func newDevice(c *qt.C) (*ds3231.Device, *tester.I2CBus, *tester.I2CDevice) {
	bus := tester.NewI2CBus()
	chip := bus.AddDevice(ds3231.Address)
	copy(chip.Registers[ds3231.RegTime:], []byte{0x00, 0x00, 0x00, 0x01, 0x01, 0x01, 0x23})
	chip.Registers[ds3231.RegStatus] = 0x80
	chip.Registers[ds3231.RegTemp] = 0xE6
	chip.Registers[ds3231.RegTemp+1] = 0x40
	dev := ds3231.New(bus)
	c.Assert(dev.Configure(ds3231.Config{}), qt.IsNil)
	return &dev, bus, chip
}

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestSample(t *testing.T) {
	c := qt.New(t)
	dev, bus, _ := newDevice(c)

	r, err := Sample(dev)
	c.Assert(err, qt.IsNil)
	c.Assert(r, qt.Equals, Reading{
		Time:              "2023-01-01 00:00:00",
		Unix:              1672531200,
		TemperatureC:      -25.75,
		Temperature:       -103,
		OscillatorStopped: true,
	})
	c.Assert(bus.Txs(), qt.HasLen, 3)
}

func TestSampleError(t *testing.T) {
	c := qt.New(t)
	dev, bus, _ := newDevice(c)
	bus.Err = errors.New("nack")
	_, err := Sample(dev)
	c.Assert(err, qt.ErrorMatches, `reading time: ds3231: register 0x00: nack`)
}

func TestPayload(t *testing.T) {
	c := qt.New(t)
	b, err := Payload(Reading{Time: "2023-01-01 00:00:00", Unix: 1672531200, TemperatureC: 25.25, Temperature: 101})
	c.Assert(err, qt.IsNil)
	c.Assert(string(b), qt.Equals,
		`{"time":"2023-01-01 00:00:00","unix":1672531200,"temperature_c":25.25,"oscillator_stopped":false}`)
}

func TestRegisters(t *testing.T) {
	c := qt.New(t)
	regs := Registers(Reading{Unix: 1672531200, Temperature: -103, OscillatorStopped: true})
	c.Assert(regs, qt.Equals, [ModbusRegisters]uint16{0x63B0, 0xCD00, 0xFF99, 1})
	c.Assert(packRegisters(regs[:2]), qt.DeepEquals, []byte{0x63, 0xB0, 0xCD, 0x00})
}

func TestNewPoller(t *testing.T) {
	c := qt.New(t)
	dev, _, _ := newDevice(c)

	_, err := NewPoller(nil, &recorder{}, Config{})
	c.Assert(err, qt.ErrorMatches, `telemetry: no source`)
	_, err = NewPoller(dev, nil, Config{})
	c.Assert(err, qt.ErrorMatches, `telemetry: no publisher`)
	_, err = NewPoller(dev, &recorder{}, Config{Interval: -time.Second})
	c.Assert(err, qt.ErrorMatches, `telemetry: negative interval -1s`)

	p, err := NewPoller(dev, &recorder{}, Config{})
	c.Assert(err, qt.IsNil)
	c.Assert(p.interval, qt.Equals, DefaultInterval)
}

func TestPollOnce(t *testing.T) {
	c := qt.New(t)
	dev, _, _ := newDevice(c)
	rec := &recorder{}
	p, err := NewPoller(dev, rec, Config{Log: quietLogger()})
	c.Assert(err, qt.IsNil)

	c.Assert(p.PollOnce(context.Background()), qt.IsNil)
	c.Assert(rec.count(), qt.Equals, 1)

	rec.err = errors.New("broker gone")
	c.Assert(p.PollOnce(context.Background()), qt.ErrorMatches, `publishing: broker gone`)
}

func TestRun(t *testing.T) {
	c := qt.New(t)
	dev, bus, _ := newDevice(c)
	rec := &recorder{}
	p, err := NewPoller(dev, rec, Config{Interval: 5 * time.Millisecond, Log: quietLogger()})
	c.Assert(err, qt.IsNil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- p.Run(ctx)
	}()
	for rec.count() < 3 {
		time.Sleep(time.Millisecond)
	}
	cancel()
	c.Assert(<-done, qt.Equals, context.Canceled)
	c.Assert(rec.closed, qt.Equals, true)
	// every reading is three fresh transactions
	c.Assert(len(bus.Txs()) >= 3*rec.count(), qt.Equals, true)
}

func TestRunSkipsFailedPolls(t *testing.T) {
	c := qt.New(t)
	dev, bus, _ := newDevice(c)
	bus.Err = errors.New("nack")
	rec := &recorder{}
	p, err := NewPoller(dev, rec, Config{Interval: time.Millisecond, Log: quietLogger()})
	c.Assert(err, qt.IsNil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	c.Assert(p.Run(ctx), qt.Equals, context.DeadlineExceeded)
	c.Assert(rec.count(), qt.Equals, 0)
	c.Assert(len(bus.Txs()) > 1, qt.Equals, true)
}
