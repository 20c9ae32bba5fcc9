package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"ble2wled.klederson.com/internal/animation"
	"ble2wled.klederson.com/internal/config"
	"ble2wled.klederson.com/internal/logging"
	"ble2wled.klederson.com/internal/metrics"
)

func runService(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := logging.Setup(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return err
	}
	logger.WithField("config", cfg.Redacted()).Debug("Configuration loaded")
	logger.WithFields(logrus.Fields{
		"version": config.AppVersion,
		"source":  cfg.Source.Type,
		"output":  cfg.WLED.OutputMode,
		"leds":    cfg.WLED.LEDCount,
	}).Infof("Starting %s", config.AppName)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink, closeSink, err := buildSink(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeSink(); err != nil {
			logger.WithError(err).Warn("Failed to close output")
		}
	}()

	store := newStore(cfg)
	loop := animation.New(store, cfg.ColorModel(), sink, animationOptions(cfg), logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if _, err := startSource(ctx, g, cfg, store, logger); err != nil {
		return err
	}
	if cfg.Metrics.Addr != "" {
		g.Go(func() error {
			return metrics.Serve(ctx, cfg.Metrics.Addr, func() any { return loop.Stats() }, logger)
		})
	}
	g.Go(func() error {
		// A closed sink ends the loop; take the sources down with it.
		defer cancel()
		return loop.Run(ctx)
	})

	err = g.Wait()
	logger.Info("Shutdown complete")
	return err
}
