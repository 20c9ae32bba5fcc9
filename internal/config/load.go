package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LookupFunc reads one environment variable.
type LookupFunc func(key string) (string, bool)

// LoadOptions selects the sources Load reads.
type LoadOptions struct {
	// File is an optional YAML config file. A missing file is an error.
	File string
	// EnvFile is loaded into the process environment without overriding
	// variables that are already set. A missing file is ignored.
	EnvFile string
	// Lookup defaults to os.LookupEnv.
	Lookup LookupFunc
}

// Load builds a Config from defaults, the YAML file and the environment.
// It does not validate; callers apply flag overrides first.
func Load(opts LoadOptions) (Config, error) {
	cfg := Default()

	if opts.File != "" {
		data, err := os.ReadFile(opts.File)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := decodeYAML(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", opts.File, err)
		}
	}

	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("failed to load env file %s: %w", opts.EnvFile, err)
		}
	}

	lookup := opts.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := applyEnv(&cfg, lookup); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

type envBinding struct {
	key string
	set func(cfg *Config, v string) error
}

func str(field func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*field(c) = v
		return nil
	}
}

func lower(field func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*field(c) = strings.ToLower(strings.TrimSpace(v))
		return nil
	}
}

func integer(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("not an integer: %q", v)
		}
		*field(c) = n
		return nil
	}
}

func float(field func(*Config) *float64) func(*Config, string) error {
	return func(c *Config, v string) error {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("not a number: %q", v)
		}
		*field(c) = f
		return nil
	}
}

func boolean(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("not a boolean: %q", v)
		}
		*field(c) = b
		return nil
	}
}

func duration(field func(*Config) *Duration) func(*Config, string) error {
	return func(c *Config, v string) error {
		d, err := ParseDuration(v)
		if err != nil {
			return err
		}
		*field(c) = d
		return nil
	}
}

var envBindings = []envBinding{
	{"WLED_HOST", str(func(c *Config) *string { return &c.WLED.Host })},
	{"LED_COUNT", integer(func(c *Config) *int { return &c.WLED.LEDCount })},
	{"OUTPUT_MODE", lower(func(c *Config) *string { return &c.WLED.OutputMode })},
	{"HTTP_TIMEOUT", duration(func(c *Config) *Duration { return &c.WLED.HTTPTimeout })},
	{"UDP_PORT", integer(func(c *Config) *int { return &c.WLED.UDPPort })},
	{"WLED_DISCOVER", boolean(func(c *Config) *bool { return &c.WLED.Discover })},
	{"MQTT_BROKER", str(func(c *Config) *string { return &c.MQTT.Broker })},
	{"MQTT_PORT", integer(func(c *Config) *int { return &c.MQTT.Port })},
	{"MQTT_LOCATION", str(func(c *Config) *string { return &c.MQTT.Location })},
	{"MQTT_USERNAME", str(func(c *Config) *string { return &c.MQTT.Username })},
	{"MQTT_PASSWORD", str(func(c *Config) *string { return &c.MQTT.Password })},
	{"BEACON_SOURCE", lower(func(c *Config) *string { return &c.Source.Type })},
	{"BEACON_TIMEOUT_SECONDS", duration(func(c *Config) *Duration { return &c.Beacon.Timeout })},
	{"BEACON_FADE_OUT_SECONDS", duration(func(c *Config) *Duration { return &c.Beacon.FadeOut })},
	{"UPDATE_INTERVAL", duration(func(c *Config) *Duration { return &c.Animation.UpdateInterval })},
	{"TRAIL_LENGTH", integer(func(c *Config) *int { return &c.Animation.TrailLength })},
	{"FADE_FACTOR", float(func(c *Config) *float64 { return &c.Animation.FadeFactor })},
	{"MOTION", boolean(func(c *Config) *bool { return &c.Animation.Motion })},
	{"REFERENCE_POWER", float(func(c *Config) *float64 { return &c.Signal.ReferencePower })},
	{"PATH_LOSS_EXPONENT", float(func(c *Config) *float64 { return &c.Signal.PathLossExponent })},
	{"NEAR_THRESHOLD", float(func(c *Config) *float64 { return &c.Signal.NearThreshold })},
	{"FAR_THRESHOLD", float(func(c *Config) *float64 { return &c.Signal.FarThreshold })},
	{"HUE_SHIFT_MAX", float(func(c *Config) *float64 { return &c.Signal.HueShiftMax })},
	{"SERIAL_PORT", str(func(c *Config) *string { return &c.Serial.Port })},
	{"SERIAL_BAUD", integer(func(c *Config) *int { return &c.Serial.Baud })},
	{"LOG_LEVEL", lower(func(c *Config) *string { return &c.Log.Level })},
	{"LOG_FORMAT", lower(func(c *Config) *string { return &c.Log.Format })},
	{"METRICS_ADDR", str(func(c *Config) *string { return &c.Metrics.Addr })},
}

// EnvKeys lists the environment variables Load reads.
func EnvKeys() []string {
	keys := make([]string, len(envBindings))
	for i, b := range envBindings {
		keys[i] = b.key
	}
	return keys
}

func applyEnv(cfg *Config, lookup LookupFunc) error {
	var errs []error
	for _, b := range envBindings {
		v, ok := lookup(b.key)
		if !ok || v == "" {
			continue
		}
		if err := b.set(cfg, v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", b.key, err))
		}
	}
	return errors.Join(errs...)
}
