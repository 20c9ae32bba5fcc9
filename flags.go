package main

import (
	"time"

	"github.com/spf13/pflag"

	"ble2wled.klederson.com/internal/config"
)

// flagValues mirrors the settings that can be overridden on the command line.
type flagValues struct {
	configFile string
	envFile    string

	host       string
	ledCount   int
	output     string
	discover   bool
	serialPort string

	source      string
	broker      string
	mqttPort    int
	location    string
	ibeaconOnly bool
	mockBeacons int

	interval    time.Duration
	trailLength int
	fadeFactor  float64
	motion      bool

	logLevel    string
	logFormat   string
	metricsAddr string

	// simulate only
	duration time.Duration
	logFile  string
}

func (f *flagValues) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.configFile, "config", "c", "", "YAML config file")
	fs.StringVar(&f.envFile, "env-file", ".env", "Environment file (ignored when missing)")

	fs.StringVar(&f.host, "host", "", `WLED host, or "auto" to discover one`)
	fs.IntVar(&f.ledCount, "led-count", 0, "Number of LEDs on the strip")
	fs.StringVar(&f.output, "output", "", "Output mode: udp, http, serial or none")
	fs.BoolVar(&f.discover, "discover", false, "Find the WLED controller over mDNS")
	fs.StringVar(&f.serialPort, "serial-port", "", "Serial device for Adalight output")

	fs.StringVar(&f.source, "source", "", "Telemetry source: mqtt, ble or mock")
	fs.StringVar(&f.broker, "mqtt-broker", "", "MQTT broker host")
	fs.IntVar(&f.mqttPort, "mqtt-port", 0, "MQTT broker port")
	fs.StringVar(&f.location, "location", "", "espresense room to follow")
	fs.BoolVar(&f.ibeaconOnly, "ibeacon-only", false, "BLE source: ignore devices that are not iBeacons")
	fs.IntVar(&f.mockBeacons, "mock-beacons", 0, "Mock source: number of beacons")

	fs.DurationVar(&f.interval, "interval", 0, "Animation tick interval")
	fs.IntVar(&f.trailLength, "trail-length", 0, "Pixels per beacon trail")
	fs.Float64Var(&f.fadeFactor, "fade-factor", 0, "Brightness multiplier per trail step")
	fs.BoolVar(&f.motion, "motion", false, "Move trails along the strip every tick")

	fs.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	fs.StringVar(&f.logFormat, "log-format", "", "text or json")
	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "Serve /metrics and /stats on this address")
}

// apply copies every flag for which changed reports true into cfg.
func (f *flagValues) apply(cfg *config.Config, changed func(name string) bool) {
	set := func(name string, fn func()) {
		if changed(name) {
			fn()
		}
	}

	set("host", func() { cfg.WLED.Host = f.host })
	set("led-count", func() { cfg.WLED.LEDCount = f.ledCount })
	set("output", func() { cfg.WLED.OutputMode = f.output })
	set("discover", func() { cfg.WLED.Discover = f.discover })
	set("serial-port", func() { cfg.Serial.Port = f.serialPort })

	set("source", func() { cfg.Source.Type = f.source })
	set("mqtt-broker", func() { cfg.MQTT.Broker = f.broker })
	set("mqtt-port", func() { cfg.MQTT.Port = f.mqttPort })
	set("location", func() { cfg.MQTT.Location = f.location })
	set("ibeacon-only", func() { cfg.Source.IBeaconOnly = f.ibeaconOnly })
	set("mock-beacons", func() { cfg.Source.MockBeacons = f.mockBeacons })

	set("interval", func() { cfg.Animation.UpdateInterval = config.Duration(f.interval) })
	set("trail-length", func() { cfg.Animation.TrailLength = f.trailLength })
	set("fade-factor", func() { cfg.Animation.FadeFactor = f.fadeFactor })
	set("motion", func() { cfg.Animation.Motion = f.motion })

	set("log-level", func() { cfg.Log.Level = f.logLevel })
	set("log-format", func() { cfg.Log.Format = f.logFormat })
	set("metrics-addr", func() { cfg.Metrics.Addr = f.metricsAddr })
}
