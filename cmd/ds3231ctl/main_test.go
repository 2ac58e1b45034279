package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c/i2ctest"

	"github.com/ajanata/rtc/ds3231"
	"github.com/ajanata/rtc/internal/config"
	"github.com/ajanata/rtc/telemetry"
)

func TestPeriphBus(t *testing.T) {
	c := qt.New(t)
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x68, W: []byte{0x00}, R: []byte{0x00, 0x00, 0x00, 0x01, 0x01, 0x01, 0x23}},
			{Addr: 0x68, W: []byte{0x11}, R: []byte{0x19, 0x40}},
			{Addr: 0x68, W: []byte{0x0F, 0x08}},
		},
	}
	dev := ds3231.New(periphBus{bus})
	c.Assert(dev.Configure(ds3231.Config{}), qt.IsNil)

	now, err := dev.Now()
	c.Assert(err, qt.IsNil)
	c.Assert(now.Unix(), qt.Equals, int64(1672531200))

	temp, err := dev.ReadTemperature()
	c.Assert(err, qt.IsNil)
	c.Assert(temp.Celsius(), qt.Equals, float32(25.25))

	_, err = dev.AcknowledgePowerLoss(ds3231.PowerLossStatus{Raw: 0x88, State: ds3231.PowerChecked})
	c.Assert(err, qt.IsNil)
	c.Assert(bus.Close(), qt.IsNil)
}

func TestPeriphBusRegisterHelpers(t *testing.T) {
	c := qt.New(t)
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x68, W: []byte{0x0E}, R: []byte{0x1C}},
			{Addr: 0x68, W: []byte{0x0E, 0x9C}},
		},
	}
	b := periphBus{bus}
	var buf [1]byte
	c.Assert(b.ReadRegister(0x68, 0x0E, buf[:]), qt.IsNil)
	c.Assert(buf[0], qt.Equals, uint8(0x1C))
	c.Assert(b.WriteRegister(0x68, 0x0E, []byte{0x9C}), qt.IsNil)
	c.Assert(bus.Close(), qt.IsNil)
}

func TestLoadConfig(t *testing.T) {
	c := qt.New(t)
	wd, err := os.Getwd()
	c.Assert(err, qt.IsNil)
	dir := c.TempDir()
	c.Assert(os.Chdir(dir), qt.IsNil)
	defer os.Chdir(wd)

	cfg, err := loadConfig("")
	c.Assert(err, qt.IsNil)
	c.Assert(cfg, qt.DeepEquals, config.Default())

	c.Assert(os.WriteFile(filepath.Join(dir, defaultConfig), []byte("bus:\n  address: 0x57\n"), 0o644), qt.IsNil)
	cfg, err = loadConfig("")
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Bus.Address, qt.Equals, uint16(0x57))

	_, err = loadConfig(filepath.Join(dir, "missing.yml"))
	c.Assert(err, qt.ErrorMatches, `read config: .*`)
}

func TestNewPublisher(t *testing.T) {
	c := qt.New(t)
	cfg := config.Default().Telemetry

	cfg.Client = config.ClientSQLite
	cfg.Database = ":memory:"
	pub, err := newPublisher(context.Background(), cfg)
	c.Assert(err, qt.IsNil)
	_, ok := pub.(*telemetry.SQLiteStore)
	c.Assert(ok, qt.Equals, true)
	c.Assert(pub.Close(), qt.IsNil)

	cfg.Client = "kafka"
	_, err = newPublisher(context.Background(), cfg)
	c.Assert(err, qt.ErrorMatches, `unknown telemetry client "kafka"`)
}

func TestTimeSource(t *testing.T) {
	c := qt.New(t)
	src := timeSource(config.NTPConfig{Server: "127.0.0.1:1", Timeout: 50 * time.Millisecond})
	_, err := src(context.Background(), "")
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestStartTelemetryBadPublisher(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	cfg := config.Default().Telemetry
	cfg.Client = config.ClientModbus
	// no endpoint: the publisher cannot be created and nothing is started
	startTelemetry(context.Background(), nil, cfg, log)
}
