package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"ble2wled.klederson.com/internal/animation"
	"ble2wled.klederson.com/internal/app"
	"ble2wled.klederson.com/internal/config"
	"ble2wled.klederson.com/internal/logging"
	"ble2wled.klederson.com/internal/strip"
)

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// The simulator is a demo surface: use mock beacons unless asked otherwise.
	if !cmd.Flags().Changed("source") {
		cfg.Source.Type = config.SourceMock
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration:\n%w", err)
		}
	}
	if err := strip.CheckGrid(cfg.WLED.LEDCount, cfg.Simulator.Rows, cfg.Simulator.Cols); err != nil {
		return err
	}

	var logOut io.Writer = io.Discard
	if flags.logFile != "" {
		f, err := os.OpenFile(flags.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger, err := logging.Setup(cfg.Log.Level, cfg.Log.Format, logOut)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	store := newStore(cfg)
	mqttStats, err := startSource(gctx, g, cfg, store, logger)
	if err != nil {
		return err
	}

	model := app.New(app.Options{
		Store:    store,
		Color:    cfg.ColorModel(),
		MQTT:     mqttStats,
		Source:   cfg.Source.Type,
		LEDCount: cfg.WLED.LEDCount,
		Rows:     cfg.Simulator.Rows,
		Cols:     cfg.Simulator.Cols,
		Duration: flags.duration,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())

	loop := animation.New(store, cfg.ColorModel(), app.NewProgramSink(p), animationOptions(cfg), logger)
	g.Go(func() error { return loop.Run(gctx) })

	groupErr := make(chan error, 1)
	go func() {
		err := g.Wait()
		p.Send(app.LoopDoneMsg{Err: err})
		groupErr <- err
	}()

	final, runErr := p.Run()
	cancel()
	waitErr := <-groupErr

	if runErr != nil {
		return runErr
	}
	if m, ok := final.(app.Model); ok && m.Err() != nil {
		return m.Err()
	}
	return waitErr
}
