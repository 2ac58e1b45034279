// ds3231ctl is an operator console for a DS3231 on a Linux I2C bus.
//
// Usage:
//
//	ds3231ctl [-config ds3231.yml] [-bus 1] [-addr 0x68] [-serial /dev/ttyUSB0] [-telemetry] [-quiet]
//
// Commands are read line by line from stdin, or from a serial port; enter
// HELP for the list.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.bug.st/serial"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/ajanata/rtc/console"
	"github.com/ajanata/rtc/ds3231"
	"github.com/ajanata/rtc/internal/config"
	"github.com/ajanata/rtc/internal/logging"
	"github.com/ajanata/rtc/ntp"
)

const defaultConfig = "ds3231.yml"

func main() {
	configPath := flag.String("config", "", "path to the YAML config (default "+defaultConfig+" if present)")
	busName := flag.String("bus", "", "I2C bus name or number (overrides config)")
	addr := flag.Uint("addr", 0, "device address (overrides config)")
	port := flag.String("serial", "", "serial port for the console (overrides config)")
	tel := flag.Bool("telemetry", false, "publish readings (overrides config)")
	level := flag.String("log-level", "", "log level: debug, info, warn or error")
	quiet := flag.Bool("quiet", false, "only log warnings and errors")
	flag.Parse()

	if err := logging.Setup(os.Stderr, *level, *quiet); err != nil {
		fmt.Fprintf(os.Stderr, "ds3231ctl: %v\n", err)
		os.Exit(2)
	}
	log := logging.Logger()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.WithError(err).Fatal("config")
	}
	if *busName != "" {
		cfg.Bus.Name = *busName
	}
	if *addr != 0 {
		cfg.Bus.Address = uint16(*addr)
	}
	if *port != "" {
		cfg.Console.Port = *port
	}
	if *tel {
		cfg.Telemetry.Enabled = true
	}
	if err := config.Validate(cfg); err != nil {
		log.WithError(err).Fatal("config")
	}
	layout, _ := ds3231.ParseLayout(cfg.Console.Layout)

	if _, err := host.Init(); err != nil {
		log.WithError(err).Fatal("periph host init")
	}
	bus, err := i2creg.Open(cfg.Bus.Name)
	if err != nil {
		log.WithError(err).Fatalf("i2creg.Open %q", cfg.Bus.Name)
	}
	defer bus.Close()

	dev := ds3231.New(periphBus{bus})
	err = dev.Configure(ds3231.Config{
		Address:        cfg.Bus.Address,
		AcquireTimeout: cfg.Bus.AcquireTimeout,
		TxTimeout:      cfg.Bus.TxTimeout,
		Setup: func() error {
			if cfg.Bus.SpeedKHz == 0 {
				return nil
			}
			return bus.SetSpeed(physic.Frequency(cfg.Bus.SpeedKHz) * physic.KiloHertz)
		},
	})
	if err != nil {
		log.WithError(err).Fatal("configure ds3231")
	}
	log.WithField("bus", bus.String()).WithField("address", fmt.Sprintf("0x%02X", dev.Address)).Info("ds3231 ready")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		in  io.Reader = os.Stdin
		out io.Writer = os.Stdout
	)
	if cfg.Console.Port != "" {
		p, err := serial.Open(cfg.Console.Port, &serial.Mode{BaudRate: cfg.Console.Baud})
		if err != nil {
			log.WithError(err).Fatalf("serial open %s", cfg.Console.Port)
		}
		defer p.Close()
		in, out = p, p
	}

	session := console.New(&dev, out, console.Config{
		Layout:     layout,
		Log:        log,
		TimeSource: timeSource(cfg.NTP),
	})
	if _, err := session.Startup(); err != nil {
		log.WithError(err).Error("startup")
	}

	if cfg.Telemetry.Enabled {
		startTelemetry(ctx, &dev, cfg.Telemetry, log)
	}

	if err := session.Run(ctx, in); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("console")
	}
}

// loadConfig reads path, or the default config file if it exists.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if _, err := os.Stat(defaultConfig); err != nil {
			return config.Default(), nil
		}
		path = defaultConfig
	}
	return config.Load(path)
}

func timeSource(cfg config.NTPConfig) console.TimeSource {
	return func(ctx context.Context, server string) (time.Time, error) {
		c := ntp.Client{Server: cfg.Server, Timeout: cfg.Timeout}
		if server != "" {
			c.Server = server
		}
		return c.Now(ctx)
	}
}
