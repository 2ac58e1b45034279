// Package telemetry samples a DS3231 at a fixed interval and hands every
// reading to a Publisher: an MQTT broker, a Modbus server or a local SQLite
// database.
package telemetry // import "github.com/ajanata/rtc/telemetry"

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ajanata/rtc/ds3231"
)

// Source is the part of the driver that is sampled. *ds3231.Device
// implements it.
type Source interface {
	ReadTime() (ds3231.Time, error)
	ReadTemperature() (ds3231.Temperature, error)
	PowerLost() (ds3231.PowerLossStatus, error)
}

// Reading is one sample of the clock.
type Reading struct {
	Time              string             `json:"time"`
	Unix              int64              `json:"unix"`
	TemperatureC      float32            `json:"temperature_c"`
	Temperature       ds3231.Temperature `json:"-"`
	OscillatorStopped bool               `json:"oscillator_stopped"`
}

// Publisher delivers readings.
type Publisher interface {
	Publish(ctx context.Context, r Reading) error
	Close() error
}

// Sample reads the time, the temperature and the status register, each in
// its own transaction.
func Sample(src Source) (Reading, error) {
	t, err := src.ReadTime()
	if err != nil {
		return Reading{}, fmt.Errorf("reading time: %w", err)
	}
	temp, err := src.ReadTemperature()
	if err != nil {
		return Reading{}, fmt.Errorf("reading temperature: %w", err)
	}
	st, err := src.PowerLost()
	if err != nil {
		return Reading{}, fmt.Errorf("reading status: %w", err)
	}
	return Reading{
		Time:              t.String(),
		Unix:              t.Std().Unix(),
		TemperatureC:      temp.Celsius(),
		Temperature:       temp,
		OscillatorStopped: st.Stopped(),
	}, nil
}

// DefaultInterval is used when Config.Interval is zero.
const DefaultInterval = time.Minute

// Config configures a Poller.
type Config struct {
	Interval time.Duration
	// Log defaults to the logrus standard logger.
	Log logrus.FieldLogger
}

// Poller publishes a reading every interval.
type Poller struct {
	src      Source
	pub      Publisher
	interval time.Duration
	log      logrus.FieldLogger
}

// NewPoller returns a Poller reading src and publishing to pub.
func NewPoller(src Source, pub Publisher, cfg Config) (*Poller, error) {
	if src == nil {
		return nil, errors.New("telemetry: no source")
	}
	if pub == nil {
		return nil, errors.New("telemetry: no publisher")
	}
	if cfg.Interval < 0 {
		return nil, fmt.Errorf("telemetry: negative interval %v", cfg.Interval)
	}
	p := &Poller{
		src:      src,
		pub:      pub,
		interval: cfg.Interval,
		log:      cfg.Log,
	}
	if p.interval == 0 {
		p.interval = DefaultInterval
	}
	if p.log == nil {
		p.log = logrus.StandardLogger()
	}
	return p, nil
}

// PollOnce takes one sample and publishes it.
func (p *Poller) PollOnce(ctx context.Context) error {
	r, err := Sample(p.src)
	if err != nil {
		return err
	}
	if err := p.pub.Publish(ctx, r); err != nil {
		return fmt.Errorf("publishing: %w", err)
	}
	return nil
}

// Run polls immediately and then every interval until ctx is done. Failed
// polls are logged and skipped. The publisher is closed on return.
func (p *Poller) Run(ctx context.Context) error {
	defer func() {
		if err := p.pub.Close(); err != nil {
			p.log.WithError(err).Warn("closing publisher")
		}
	}()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		if err := p.PollOnce(ctx); err != nil {
			p.log.WithError(err).Warn("telemetry poll failed")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
