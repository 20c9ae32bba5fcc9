package main

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"ble2wled.klederson.com/internal/adalight"
	"ble2wled.klederson.com/internal/animation"
	"ble2wled.klederson.com/internal/beacon"
	"ble2wled.klederson.com/internal/bluetooth"
	"ble2wled.klederson.com/internal/config"
	"ble2wled.klederson.com/internal/mqtt"
	"ble2wled.klederson.com/internal/wled"
)

func newStore(cfg config.Config) *beacon.Store {
	return beacon.NewStore(cfg.Beacon.Timeout.D(), cfg.Beacon.FadeOut.D())
}

func animationOptions(cfg config.Config) animation.Options {
	return animation.Options{
		LEDCount:    cfg.WLED.LEDCount,
		TrailLength: cfg.Animation.TrailLength,
		TrailFade:   cfg.Animation.FadeFactor,
		Interval:    cfg.Animation.UpdateInterval.D(),
		Motion:      cfg.Animation.Motion,
	}
}

// startSource launches the configured telemetry source on g. The MQTT
// statistics are returned when the source is mqtt, nil otherwise.
func startSource(ctx context.Context, g *errgroup.Group, cfg config.Config, store *beacon.Store, logger logrus.FieldLogger) (*mqtt.Stats, error) {
	switch cfg.Source.Type {
	case config.SourceMQTT:
		l := mqtt.NewListener(mqtt.Config{
			Broker:    cfg.MQTT.Broker,
			Port:      cfg.MQTT.Port,
			Location:  cfg.MQTT.Location,
			Username:  cfg.MQTT.Username,
			Password:  cfg.MQTT.Password,
			BaseTopic: cfg.MQTT.BaseTopic,
			LEDCount:  cfg.WLED.LEDCount,
		}, store, logger)
		g.Go(func() error { return l.Run(ctx) })
		return l.Stats(), nil

	case config.SourceBLE:
		s := bluetooth.NewScanner(store, cfg.WLED.LEDCount, logger)
		s.IBeaconOnly = cfg.Source.IBeaconOnly
		g.Go(func() error { return s.Run(ctx) })
		return nil, nil

	case config.SourceMock:
		m := bluetooth.NewMockGenerator(cfg.Source.MockBeacons, cfg.WLED.LEDCount,
			cfg.Source.MockRSSIMin, cfg.Source.MockRSSIMax, cfg.Source.MockRate.D(), logger)
		g.Go(func() error { return m.Run(ctx, store) })
		return nil, nil
	}
	return nil, fmt.Errorf("unknown telemetry source %q", cfg.Source.Type)
}

// buildSink opens the configured output. The returned close func is never nil.
func buildSink(ctx context.Context, cfg config.Config, logger logrus.FieldLogger) (animation.Sink, func() error, error) {
	noop := func() error { return nil }
	w := cfg.WLED

	var host string
	if w.OutputMode == config.OutputUDP || w.OutputMode == config.OutputHTTP {
		resolved, err := wled.ResolveHost(ctx, w.Host, w.Discover, w.DiscoverTimeout.D())
		if err != nil {
			return nil, noop, fmt.Errorf("failed to resolve WLED host: %w", err)
		}
		if resolved != w.Host {
			logger.WithField("host", resolved).Info("Discovered WLED controller")
		}
		host = resolved
	}

	var sink animation.Sink
	switch w.OutputMode {
	case config.OutputUDP:
		s, err := wled.NewUDPSink(host, w.UDPPort, uint8(w.RealtimeTimeout))
		if err != nil {
			return nil, noop, err
		}
		logger.WithField("addr", s.Addr()).Info("Sending frames over WLED realtime UDP")
		sink = s
	case config.OutputHTTP:
		s := wled.NewHTTPSink(host, w.HTTPTimeout.D(), logger)
		s.MaxRetries = w.MaxRetries
		logger.WithField("url", s.URL).Info("Sending frames over WLED JSON API")
		sink = s
	case config.OutputSerial:
		sink = adalight.NewSink(cfg.Serial.Port, cfg.Serial.Baud, adalight.OpenPort, logger)
		logger.WithField("port", cfg.Serial.Port).Info("Sending frames over Adalight serial")
	case config.OutputNone:
		logger.Info("Output disabled, frames are rendered and dropped")
		return animation.Discard, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown output mode %q", w.OutputMode)
	}

	if c, ok := sink.(io.Closer); ok {
		return sink, c.Close, nil
	}
	return sink, noop, nil
}
