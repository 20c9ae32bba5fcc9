// Package config holds every tunable of the bridge. Values come from, in
// increasing precedence: built-in defaults, an optional YAML file, a .env
// file, the process environment and finally explicitly set CLI flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"ble2wled.klederson.com/internal/color"
)

const (
	AppName    = "ble2wled"
	AppVersion = "1.0"
)

// Output modes.
const (
	OutputUDP    = "udp"
	OutputHTTP   = "http"
	OutputSerial = "serial"
	OutputNone   = "none"
)

// Telemetry sources.
const (
	SourceMQTT = "mqtt"
	SourceBLE  = "ble"
	SourceMock = "mock"
)

type Config struct {
	WLED      WLEDConfig      `yaml:"wled"`
	Serial    SerialConfig    `yaml:"serial"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Source    SourceConfig    `yaml:"source"`
	Beacon    BeaconConfig    `yaml:"beacon"`
	Animation AnimationConfig `yaml:"animation"`
	Signal    SignalConfig    `yaml:"signal"`
	Simulator SimulatorConfig `yaml:"simulator"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type WLEDConfig struct {
	Host            string   `yaml:"host"`
	LEDCount        int      `yaml:"led_count"`
	OutputMode      string   `yaml:"output_mode"`
	UDPPort         int      `yaml:"udp_port"`
	RealtimeTimeout int      `yaml:"realtime_timeout"` // seconds WLED holds realtime mode
	HTTPTimeout     Duration `yaml:"http_timeout"`
	MaxRetries      int      `yaml:"max_retries"`
	Discover        bool     `yaml:"discover"`
	DiscoverTimeout Duration `yaml:"discover_timeout"`
}

type SerialConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

type MQTTConfig struct {
	Broker    string `yaml:"broker"`
	Port      int    `yaml:"port"`
	Location  string `yaml:"location"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	BaseTopic string `yaml:"base_topic"`
}

type SourceConfig struct {
	Type        string   `yaml:"type"`
	IBeaconOnly bool     `yaml:"ibeacon_only"`
	MockBeacons int      `yaml:"mock_beacons"`
	MockRSSIMin int      `yaml:"mock_rssi_min"`
	MockRSSIMax int      `yaml:"mock_rssi_max"`
	MockRate    Duration `yaml:"mock_interval"`
}

type BeaconConfig struct {
	Timeout Duration `yaml:"timeout"`
	FadeOut Duration `yaml:"fade_out"`
}

type AnimationConfig struct {
	UpdateInterval Duration `yaml:"update_interval"`
	TrailLength    int      `yaml:"trail_length"`
	FadeFactor     float64  `yaml:"fade_factor"`
	Motion         bool     `yaml:"motion"`
}

type SignalConfig struct {
	ReferencePower   float64 `yaml:"reference_power"`
	PathLossExponent float64 `yaml:"path_loss_exponent"`
	NearThreshold    float64 `yaml:"near_threshold"`
	FarThreshold     float64 `yaml:"far_threshold"`
	HueShiftMax      float64 `yaml:"hue_shift_max"`
}

type SimulatorConfig struct {
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty disables the server
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		WLED: WLEDConfig{
			Host:            "wled.local",
			LEDCount:        60,
			OutputMode:      OutputUDP,
			UDPPort:         21324,
			RealtimeTimeout: 2,
			HTTPTimeout:     Duration(time.Second),
			MaxRetries:      3,
			DiscoverTimeout: Duration(3 * time.Second),
		},
		Serial: SerialConfig{
			Baud: 115200,
		},
		MQTT: MQTTConfig{
			Broker:    "localhost",
			Port:      1883,
			Location:  "balkon",
			BaseTopic: "espresense/devices",
		},
		Source: SourceConfig{
			Type:        SourceMQTT,
			MockBeacons: 3,
			MockRSSIMin: -90,
			MockRSSIMax: -30,
			MockRate:    Duration(100 * time.Millisecond),
		},
		Beacon: BeaconConfig{
			Timeout: Duration(6 * time.Second),
			FadeOut: Duration(4 * time.Second),
		},
		Animation: AnimationConfig{
			UpdateInterval: Duration(200 * time.Millisecond),
			TrailLength:    10,
			FadeFactor:     0.75,
		},
		Signal: SignalConfig{
			ReferencePower:   color.DefaultReferencePower,
			PathLossExponent: color.DefaultPathLossExponent,
			NearThreshold:    color.DefaultNearThreshold,
			FarThreshold:     color.DefaultFarThreshold,
			HueShiftMax:      color.DefaultHueShiftMax,
		},
		Simulator: SimulatorConfig{
			Rows: 10,
			Cols: 6,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// ColorModel builds the signal-to-color model from the signal settings.
func (c Config) ColorModel() color.Model {
	return color.Model{
		ReferencePower:   c.Signal.ReferencePower,
		PathLossExponent: c.Signal.PathLossExponent,
		NearThreshold:    c.Signal.NearThreshold,
		FarThreshold:     c.Signal.FarThreshold,
		HueShiftMax:      c.Signal.HueShiftMax,
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	w := c.WLED
	check(w.LEDCount > 0, "wled.led_count must be positive, got %d", w.LEDCount)
	check(oneOf(w.OutputMode, OutputUDP, OutputHTTP, OutputSerial, OutputNone),
		"wled.output_mode must be udp, http, serial or none, got %q", w.OutputMode)
	check(validPort(w.UDPPort), "wled.udp_port out of range: %d", w.UDPPort)
	check(w.RealtimeTimeout >= 0 && w.RealtimeTimeout <= 255, "wled.realtime_timeout must be 0-255, got %d", w.RealtimeTimeout)
	check(w.HTTPTimeout > 0, "wled.http_timeout must be positive")
	check(w.MaxRetries > 0, "wled.max_retries must be positive, got %d", w.MaxRetries)
	if (w.OutputMode == OutputUDP || w.OutputMode == OutputHTTP) && !w.Discover {
		check(w.Host != "", "wled.host is required for %s output", w.OutputMode)
	}
	if w.Discover || w.Host == "auto" {
		check(w.DiscoverTimeout > 0, "wled.discover_timeout must be positive")
	}

	if w.OutputMode == OutputSerial {
		check(c.Serial.Port != "", "serial.port is required for serial output")
		check(c.Serial.Baud > 0, "serial.baud must be positive, got %d", c.Serial.Baud)
	}

	s := c.Source
	check(oneOf(s.Type, SourceMQTT, SourceBLE, SourceMock), "source.type must be mqtt, ble or mock, got %q", s.Type)
	if s.Type == SourceMQTT {
		check(c.MQTT.Broker != "", "mqtt.broker is required")
		check(validPort(c.MQTT.Port), "mqtt.port out of range: %d", c.MQTT.Port)
		check(c.MQTT.Location != "", "mqtt.location is required")
	}
	if s.Type == SourceMock {
		check(s.MockBeacons > 0, "source.mock_beacons must be positive, got %d", s.MockBeacons)
		check(s.MockRSSIMin < s.MockRSSIMax, "source.mock_rssi_min must be below mock_rssi_max")
		check(s.MockRate > 0, "source.mock_interval must be positive")
	}

	check(c.Beacon.Timeout > 0, "beacon.timeout must be positive")
	check(c.Beacon.FadeOut > 0, "beacon.fade_out must be positive")

	a := c.Animation
	check(a.UpdateInterval > 0, "animation.update_interval must be positive")
	check(a.TrailLength > 0, "animation.trail_length must be positive, got %d", a.TrailLength)
	check(a.TrailLength <= w.LEDCount, "animation.trail_length (%d) must not exceed wled.led_count (%d)", a.TrailLength, w.LEDCount)
	check(a.FadeFactor > 0 && a.FadeFactor <= 1, "animation.fade_factor must be in (0, 1], got %v", a.FadeFactor)

	sig := c.Signal
	check(sig.PathLossExponent > 0, "signal.path_loss_exponent must be positive, got %v", sig.PathLossExponent)
	check(sig.NearThreshold >= 0, "signal.near_threshold must not be negative")
	check(sig.NearThreshold < sig.FarThreshold, "signal.near_threshold (%v) must be below far_threshold (%v)", sig.NearThreshold, sig.FarThreshold)
	check(sig.HueShiftMax >= 0 && sig.HueShiftMax <= 1, "signal.hue_shift_max must be in [0, 1], got %v", sig.HueShiftMax)

	check(c.Simulator.Rows > 0 && c.Simulator.Cols > 0, "simulator.rows and simulator.cols must be positive")

	check(oneOf(strings.ToLower(c.Log.Level), "debug", "info", "warn", "warning", "error"),
		"log.level must be debug, info, warn or error, got %q", c.Log.Level)
	check(oneOf(strings.ToLower(c.Log.Format), "text", "json"), "log.format must be text or json, got %q", c.Log.Format)

	return errors.Join(errs...)
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	if c.MQTT.Password != "" {
		c.MQTT.Password = "***"
	}
	return c
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func validPort(p int) bool {
	return p > 0 && p <= 65535
}
