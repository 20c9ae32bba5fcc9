package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 60, cfg.WLED.LEDCount)
	assert.Equal(t, OutputUDP, cfg.WLED.OutputMode)
	assert.Equal(t, 21324, cfg.WLED.UDPPort)
	assert.Equal(t, time.Second, cfg.WLED.HTTPTimeout.D())
	assert.Equal(t, "balkon", cfg.MQTT.Location)
	assert.Equal(t, 6*time.Second, cfg.Beacon.Timeout.D())
	assert.Equal(t, 4*time.Second, cfg.Beacon.FadeOut.D())
	assert.Equal(t, 200*time.Millisecond, cfg.Animation.UpdateInterval.D())
	assert.Equal(t, 10, cfg.Animation.TrailLength)
	assert.Equal(t, 0.75, cfg.Animation.FadeFactor)
	assert.False(t, cfg.Animation.Motion)
	assert.Equal(t, 60, cfg.Simulator.Rows*cfg.Simulator.Cols)
}

func TestLoadEnvOverrides(t *testing.T) {
	cfg, err := Load(LoadOptions{Lookup: envMap(map[string]string{
		"WLED_HOST":               "192.168.1.50",
		"LED_COUNT":               "120",
		"OUTPUT_MODE":             "HTTP",
		"HTTP_TIMEOUT":            "2.5",
		"MQTT_BROKER":             "broker.lan",
		"MQTT_PORT":               "8883",
		"MQTT_USERNAME":           "user",
		"MQTT_PASSWORD":           "secret",
		"BEACON_TIMEOUT_SECONDS":  "5",
		"BEACON_FADE_OUT_SECONDS": "1.5",
		"UPDATE_INTERVAL":         "100ms",
		"TRAIL_LENGTH":            "8",
		"FADE_FACTOR":             "0.5",
		"MOTION":                  "true",
		"LOG_LEVEL":               "DEBUG",
		"BEACON_SOURCE":           "Mock",
	})})
	require.NoError(t, err)

	assert.Equal(t, "192.168.1.50", cfg.WLED.Host)
	assert.Equal(t, 120, cfg.WLED.LEDCount)
	assert.Equal(t, OutputHTTP, cfg.WLED.OutputMode)
	assert.Equal(t, 2500*time.Millisecond, cfg.WLED.HTTPTimeout.D())
	assert.Equal(t, "broker.lan", cfg.MQTT.Broker)
	assert.Equal(t, 8883, cfg.MQTT.Port)
	assert.Equal(t, "secret", cfg.MQTT.Password)
	assert.Equal(t, 5*time.Second, cfg.Beacon.Timeout.D())
	assert.Equal(t, 1500*time.Millisecond, cfg.Beacon.FadeOut.D())
	assert.Equal(t, 100*time.Millisecond, cfg.Animation.UpdateInterval.D())
	assert.Equal(t, 8, cfg.Animation.TrailLength)
	assert.Equal(t, 0.5, cfg.Animation.FadeFactor)
	assert.True(t, cfg.Animation.Motion)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, SourceMock, cfg.Source.Type)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEnvErrorsAreJoined(t *testing.T) {
	_, err := Load(LoadOptions{Lookup: envMap(map[string]string{
		"LED_COUNT":   "sixty",
		"FADE_FACTOR": "strong",
	})})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LED_COUNT")
	assert.Contains(t, err.Error(), "FADE_FACTOR")
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ble2wled.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
wled:
  host: wled-strip.local
  led_count: 150
  http_timeout: 750ms
animation:
  update_interval: 0.05
  trail_length: 12
source:
  type: ble
  ibeacon_only: true
`), 0o600))

	cfg, err := Load(LoadOptions{File: path, Lookup: envMap(map[string]string{"LED_COUNT": "144"})})
	require.NoError(t, err)

	assert.Equal(t, "wled-strip.local", cfg.WLED.Host)
	assert.Equal(t, 144, cfg.WLED.LEDCount, "env beats file")
	assert.Equal(t, 750*time.Millisecond, cfg.WLED.HTTPTimeout.D())
	assert.Equal(t, 50*time.Millisecond, cfg.Animation.UpdateInterval.D())
	assert.Equal(t, 12, cfg.Animation.TrailLength)
	assert.Equal(t, SourceBLE, cfg.Source.Type)
	assert.True(t, cfg.Source.IBeaconOnly)
	assert.Equal(t, 0.75, cfg.Animation.FadeFactor, "unset keys keep defaults")
}

func TestLoadYAMLRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("wled:\n  leds: 10\n"), 0o600))

	_, err := Load(LoadOptions{File: path, Lookup: envMap(nil)})
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(LoadOptions{File: filepath.Join(t.TempDir(), "nope.yaml"), Lookup: envMap(nil)})
	assert.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("BLE2WLED_TEST_ONLY=from-dotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("BLE2WLED_TEST_ONLY") })

	_, err := Load(LoadOptions{EnvFile: path, Lookup: envMap(nil)})
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", os.Getenv("BLE2WLED_TEST_ONLY"))
}

func TestLoadMissingEnvFileIgnored(t *testing.T) {
	_, err := Load(LoadOptions{EnvFile: filepath.Join(t.TempDir(), ".env"), Lookup: envMap(nil)})
	assert.NoError(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero leds", func(c *Config) { c.WLED.LEDCount = 0 }, "led_count"},
		{"bad output", func(c *Config) { c.WLED.OutputMode = "dmx" }, "output_mode"},
		{"trail longer than strip", func(c *Config) { c.Animation.TrailLength = 61 }, "must not exceed"},
		{"zero trail", func(c *Config) { c.Animation.TrailLength = 0 }, "trail_length must be positive"},
		{"fade zero", func(c *Config) { c.Animation.FadeFactor = 0 }, "fade_factor"},
		{"fade above one", func(c *Config) { c.Animation.FadeFactor = 1.1 }, "fade_factor"},
		{"zero interval", func(c *Config) { c.Animation.UpdateInterval = 0 }, "update_interval"},
		{"zero timeout", func(c *Config) { c.Beacon.Timeout = 0 }, "beacon.timeout"},
		{"zero fade out", func(c *Config) { c.Beacon.FadeOut = 0 }, "beacon.fade_out"},
		{"path loss", func(c *Config) { c.Signal.PathLossExponent = 0 }, "path_loss_exponent"},
		{"near above far", func(c *Config) { c.Signal.NearThreshold = 20 }, "near_threshold"},
		{"bad source", func(c *Config) { c.Source.Type = "zigbee" }, "source.type"},
		{"serial without port", func(c *Config) { c.WLED.OutputMode = OutputSerial }, "serial.port"},
		{"mqtt port", func(c *Config) { c.MQTT.Port = 70000 }, "mqtt.port"},
		{"log level", func(c *Config) { c.Log.Level = "verbose" }, "log.level"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"missing host", func(c *Config) { c.WLED.Host = "" }, "wled.host"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateReportsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.WLED.LEDCount = -1
	cfg.Animation.FadeFactor = 2
	cfg.Source.Type = "?"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"led_count", "fade_factor", "source.type"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidateOptionalSections(t *testing.T) {
	cfg := Default()
	cfg.WLED.OutputMode = OutputNone
	cfg.WLED.Host = ""
	cfg.Source.Type = SourceBLE
	cfg.MQTT.Broker = ""
	assert.NoError(t, cfg.Validate())
}

func TestRedacted(t *testing.T) {
	cfg := Default()
	cfg.MQTT.Password = "hunter2"
	r := cfg.Redacted()
	assert.Equal(t, "***", r.MQTT.Password)
	assert.Equal(t, "hunter2", cfg.MQTT.Password)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"0.2", 200 * time.Millisecond},
		{"6", 6 * time.Second},
		{"1m", time.Minute},
		{" 250ms ", 250 * time.Millisecond},
	}
	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got.D(), tt.in)
	}

	_, err := ParseDuration("soon")
	assert.Error(t, err)
}

func TestColorModel(t *testing.T) {
	cfg := Default()
	cfg.Signal.FarThreshold = 12
	m := cfg.ColorModel()
	assert.Equal(t, 12.0, m.FarThreshold)
	assert.Equal(t, -59.0, m.ReferencePower)
}
