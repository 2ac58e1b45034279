package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ajanata/rtc/internal/config"
	"github.com/ajanata/rtc/telemetry"
)

func newPublisher(ctx context.Context, cfg config.TelemetryConfig) (telemetry.Publisher, error) {
	mqttCfg := telemetry.MQTTConfig{
		Broker:  cfg.Broker,
		Topic:   cfg.Topic,
		Timeout: cfg.Timeout,
	}
	switch cfg.Client {
	case config.ClientPaho:
		return telemetry.DialPaho(mqttCfg)
	case config.ClientNatiu:
		return telemetry.DialNatiu(ctx, mqttCfg)
	case config.ClientModbus:
		return telemetry.DialModbus(telemetry.ModbusConfig{
			Endpoint: cfg.Endpoint,
			UnitID:   cfg.UnitID,
			Address:  cfg.Register,
			Timeout:  cfg.Timeout,
		})
	case config.ClientSQLite:
		return telemetry.OpenSQLite(cfg.Database)
	}
	return nil, fmt.Errorf("unknown telemetry client %q", cfg.Client)
}

// startTelemetry runs a poller until ctx is done. A publisher that cannot be
// set up is reported and telemetry stays off.
func startTelemetry(ctx context.Context, src telemetry.Source, cfg config.TelemetryConfig, log logrus.FieldLogger) {
	log = log.WithField("telemetry", cfg.Client)
	pub, err := newPublisher(ctx, cfg)
	if err != nil {
		log.WithError(err).Error("telemetry disabled")
		return
	}
	poller, err := telemetry.NewPoller(src, pub, telemetry.Config{Interval: cfg.Interval, Log: log})
	if err != nil {
		pub.Close()
		log.WithError(err).Error("telemetry disabled")
		return
	}
	go poller.Run(ctx)
	log.WithField("interval", cfg.Interval).Info("telemetry started")
}
