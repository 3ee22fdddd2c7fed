package config

import (
	"log/slog"
	"testing"
	"time"
)

var allKeys = []string{
	"APP_ENV", "LOG_LEVEL", "MQTT_BROKER", "MQTT_PORT", "MQTT_TOPIC", "MQTT_CLIENT_ID",
	"SENSOR_DRIVER", "BME280_ADDRESS", "SENSOR_POLL_INTERVAL", "RETRY_DELAY",
	"NETWORK_INTERFACE", "NETWORK_POLL_INTERVAL",
	"HTTP_ADDR", "BUFFER_CAPACITY", "REFRESH_INTERVAL", "MQTT_CONNECT_TIMEOUT", "SIMULATE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoadPublisherFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	got, err := LoadPublisherFromEnv()
	if err != nil {
		t.Fatalf("LoadPublisherFromEnv() error = %v, want nil", err)
	}

	if got.AppEnv != "dev" {
		t.Errorf("AppEnv = %q, want %q", got.AppEnv, "dev")
	}
	if got.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want %v", got.LogLevel, slog.LevelInfo)
	}
	if got.MQTTBroker != "test.mosquitto.org" {
		t.Errorf("MQTTBroker = %q, want test.mosquitto.org", got.MQTTBroker)
	}
	if got.MQTTPort != 1883 {
		t.Errorf("MQTTPort = %d, want 1883", got.MQTTPort)
	}
	if got.MQTTTopic != "jtown/study_area/data" {
		t.Errorf("MQTTTopic = %q, want jtown/study_area/data", got.MQTTTopic)
	}
	if got.MQTTClientID != "study-area-sensor" {
		t.Errorf("MQTTClientID = %q, want study-area-sensor", got.MQTTClientID)
	}
	if got.SensorDriver != "bme280" {
		t.Errorf("SensorDriver = %q, want bme280", got.SensorDriver)
	}
	if got.BME280Address != 0x76 {
		t.Errorf("BME280Address = %#x, want 0x76", got.BME280Address)
	}
	if got.SensorPollInterval != 2*time.Second {
		t.Errorf("SensorPollInterval = %v, want 2s", got.SensorPollInterval)
	}
	if got.RetryDelay != 5*time.Second {
		t.Errorf("RetryDelay = %v, want 5s", got.RetryDelay)
	}
	if got.NetworkPollInterval != 500*time.Millisecond {
		t.Errorf("NetworkPollInterval = %v, want 500ms", got.NetworkPollInterval)
	}
	if got.NetworkInterface != "" {
		t.Errorf("NetworkInterface = %q, want empty", got.NetworkInterface)
	}
}

func TestLoadPublisherFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("MQTT_BROKER", " broker.local ")
	t.Setenv("MQTT_PORT", "11883")
	t.Setenv("SENSOR_DRIVER", "Simulated")
	t.Setenv("BME280_ADDRESS", "0x77")
	t.Setenv("RETRY_DELAY", "250ms")
	t.Setenv("NETWORK_INTERFACE", "wlan0")

	got, err := LoadPublisherFromEnv()
	if err != nil {
		t.Fatalf("LoadPublisherFromEnv() error = %v, want nil", err)
	}
	if got.MQTTBroker != "broker.local" {
		t.Errorf("MQTTBroker = %q, want broker.local", got.MQTTBroker)
	}
	if got.MQTTPort != 11883 {
		t.Errorf("MQTTPort = %d, want 11883", got.MQTTPort)
	}
	if got.SensorDriver != "simulated" {
		t.Errorf("SensorDriver = %q, want simulated", got.SensorDriver)
	}
	if got.BME280Address != 0x77 {
		t.Errorf("BME280Address = %#x, want 0x77", got.BME280Address)
	}
	if got.RetryDelay != 250*time.Millisecond {
		t.Errorf("RetryDelay = %v, want 250ms", got.RetryDelay)
	}
	if got.NetworkInterface != "wlan0" {
		t.Errorf("NetworkInterface = %q, want wlan0", got.NetworkInterface)
	}
}

func TestLoadPublisherFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "app env", key: "APP_ENV", value: "staging"},
		{name: "uppercase app env", key: "APP_ENV", value: "DEV"},
		{name: "log level", key: "LOG_LEVEL", value: "loud"},
		{name: "port not a number", key: "MQTT_PORT", value: "eighteen"},
		{name: "port out of range", key: "MQTT_PORT", value: "70000"},
		{name: "wildcard topic", key: "MQTT_TOPIC", value: "jtown/#"},
		{name: "sensor driver", key: "SENSOR_DRIVER", value: "dht22"},
		{name: "bme280 address", key: "BME280_ADDRESS", value: "0xZZ"},
		{name: "poll interval", key: "SENSOR_POLL_INTERVAL", value: "soon"},
		{name: "negative retry delay", key: "RETRY_DELAY", value: "-1s"},
		{name: "zero network poll", key: "NETWORK_POLL_INTERVAL", value: "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			if _, err := LoadPublisherFromEnv(); err == nil {
				t.Fatalf("LoadPublisherFromEnv() with %s=%q error = nil, want non-nil", tt.key, tt.value)
			}
		})
	}
}

func TestLoadDashboardFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	got, err := LoadDashboardFromEnv()
	if err != nil {
		t.Fatalf("LoadDashboardFromEnv() error = %v, want nil", err)
	}
	if got.HTTPAddr != ":8050" {
		t.Errorf("HTTPAddr = %q, want :8050", got.HTTPAddr)
	}
	if got.BufferCapacity != 1500 {
		t.Errorf("BufferCapacity = %d, want 1500", got.BufferCapacity)
	}
	if got.RefreshInterval != 2*time.Second {
		t.Errorf("RefreshInterval = %v, want 2s", got.RefreshInterval)
	}
	if got.MQTTConnectTimeout != 5*time.Second {
		t.Errorf("MQTTConnectTimeout = %v, want 5s", got.MQTTConnectTimeout)
	}
	if got.Simulate {
		t.Error("Simulate = true, want false")
	}
	if got.MQTTClientID != "" {
		t.Errorf("MQTTClientID = %q, want empty (generated at startup)", got.MQTTClientID)
	}
	if got.MQTTTopic != DefaultMQTTTopic {
		t.Errorf("MQTTTopic = %q, want %q", got.MQTTTopic, DefaultMQTTTopic)
	}
}

func TestLoadDashboardFromEnv_HTTPAddr(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "default when empty", in: "", want: ":8050"},
		{name: "trims whitespace", in: "  :9090  ", want: ":9090"},
		{name: "host:port", in: "127.0.0.1:8081", want: "127.0.0.1:8081"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("HTTP_ADDR", tt.in)

			got, err := LoadDashboardFromEnv()
			if err != nil {
				t.Fatalf("LoadDashboardFromEnv() error = %v, want nil", err)
			}
			if got.HTTPAddr != tt.want {
				t.Errorf("HTTPAddr = %q, want %q", got.HTTPAddr, tt.want)
			}
		})
	}
}

func TestLoadDashboardFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "buffer capacity not a number", key: "BUFFER_CAPACITY", value: "lots"},
		{name: "zero buffer capacity", key: "BUFFER_CAPACITY", value: "0"},
		{name: "refresh interval", key: "REFRESH_INTERVAL", value: "2"},
		{name: "connect timeout", key: "MQTT_CONNECT_TIMEOUT", value: "-5s"},
		{name: "simulate", key: "SIMULATE", value: "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			if _, err := LoadDashboardFromEnv(); err == nil {
				t.Fatalf("LoadDashboardFromEnv() with %s=%q error = nil, want non-nil", tt.key, tt.value)
			}
		})
	}
}

func TestLoadDashboardFromEnv_Simulate(t *testing.T) {
	clearEnv(t)
	t.Setenv("SIMULATE", "true")

	got, err := LoadDashboardFromEnv()
	if err != nil {
		t.Fatalf("LoadDashboardFromEnv() error = %v, want nil", err)
	}
	if !got.Simulate {
		t.Error("Simulate = false, want true")
	}
}

func TestParseLogLevel_Valid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want slog.Level
	}{
		{name: "debug", in: "debug", want: slog.LevelDebug},
		{name: "info", in: "info", want: slog.LevelInfo},
		{name: "warn", in: "warn", want: slog.LevelWarn},
		{name: "warning", in: "warning", want: slog.LevelWarn},
		{name: "error", in: "error", want: slog.LevelError},
		{name: "case insensitive", in: "DeBuG", want: slog.LevelDebug},
		{name: "trims whitespace", in: "  warn \n", want: slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLogLevel(tt.in)
			if err != nil {
				t.Fatalf("parseLogLevel(%q) error = %v, want nil", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseLogLevel_Invalid(t *testing.T) {
	for _, in := range []string{"", "nope", "warns", "1"} {
		got, err := parseLogLevel(in)
		if err == nil {
			t.Fatalf("parseLogLevel(%q) error = nil, want non-nil", in)
		}
		// For invalid inputs, function returns LevelInfo along with an error.
		if got != slog.LevelInfo {
			t.Errorf("parseLogLevel(%q) = %v, want %v on error", in, got, slog.LevelInfo)
		}
	}
}
