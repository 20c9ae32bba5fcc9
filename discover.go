package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"ble2wled.klederson.com/internal/logging"
	"ble2wled.klederson.com/internal/wled"
)

func runDiscover(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := logging.Setup(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return err
	}

	timeout := cfg.WLED.DiscoverTimeout.D()
	logger.WithField("timeout", timeout).Info("Browsing for WLED controllers")

	devices, err := wled.Discover(cmd.Context(), timeout)
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		return wled.ErrNoController
	}

	fmt.Fprintln(cmd.OutOrStdout(), deviceTable(devices))
	return nil
}

func deviceTable(devices []wled.Device) string {
	if len(devices) == 0 {
		return ""
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "ADDRESS", "PORT", "ALL ADDRESSES")
	for _, d := range devices {
		t.Row(d.Name, d.Address(), strconv.Itoa(d.Port), strings.Join(d.Addrs, ", "))
	}
	return t.String()
}
