package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ble2wled.klederson.com/internal/config"
)

var flags flagValues

func main() {
	rootCmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Bridge BLE beacon telemetry to a WLED LED strip",
		Long: `ble2wled turns Bluetooth beacon sightings into moving, fading light
trails on an addressable LED strip.

Telemetry comes from espresense over MQTT (default), a local BLE scan
(requires sudo or CAP_NET_ADMIN) or a built-in mock. Frames go to a WLED
controller over UDP or HTTP, or to an Adalight device on a serial port.

Settings are read from defaults, an optional YAML file, .env, the
environment and finally these flags.

` + envHelp(),
		SilenceUsage: true,
		RunE:         runService,
	}

	flags.register(rootCmd.PersistentFlags())

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Render the LED strip in the terminal instead of on a device",
		RunE:  runSimulate,
	}
	simulateCmd.Flags().DurationVar(&flags.duration, "duration", 0, "Quit after this long (0 runs until q)")
	simulateCmd.Flags().StringVar(&flags.logFile, "log-file", "", "Write logs to this file while the simulator owns the terminal")

	discoverCmd := &cobra.Command{
		Use:   "discover",
		Short: "List WLED controllers announced over mDNS",
		RunE:  runDiscover,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", config.AppName, config.AppVersion)
		},
	}

	rootCmd.AddCommand(simulateCmd, discoverCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// envHelp lists the environment variables the config loader reads.
func envHelp() string {
	return "Environment variables:\n  " + strings.Join(config.EnvKeys(), "\n  ")
}

// loadConfig applies the flags the user actually set on top of file and
// environment settings, then validates.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{
		File:    flags.configFile,
		EnvFile: flags.envFile,
	})
	if err != nil {
		return cfg, err
	}
	flags.apply(&cfg, cmd.Flags().Changed)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration:\n%w", err)
	}
	return cfg, nil
}
