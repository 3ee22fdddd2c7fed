package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultMQTTBroker = "test.mosquitto.org"
	DefaultMQTTPort   = 1883
	DefaultMQTTTopic  = "jtown/study_area/data"
)

// Common holds the settings shared by the publisher and the dashboard.
type Common struct {
	AppEnv       string
	LogLevel     slog.Level
	MQTTBroker   string
	MQTTPort     int
	MQTTTopic    string
	MQTTClientID string
}

type Publisher struct {
	Common

	SensorDriver        string
	BME280Address       uint16
	SensorPollInterval  time.Duration
	RetryDelay          time.Duration
	NetworkInterface    string
	NetworkPollInterval time.Duration
}

type Dashboard struct {
	Common

	HTTPAddr           string
	BufferCapacity     int
	RefreshInterval    time.Duration
	MQTTConnectTimeout time.Duration
	Simulate           bool
}

func loadCommon(defaultClientID string) (Common, error) {
	// A .env file is optional; variables already set in the environment win.
	_ = godotenv.Load()

	appEnv := env("APP_ENV", "dev")
	switch appEnv {
	case "dev", "prod":
	default:
		return Common{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(env("LOG_LEVEL", "info"))
	if err != nil {
		return Common{}, err
	}

	mqttPortStr := env("MQTT_PORT", strconv.Itoa(DefaultMQTTPort))
	mqttPort, err := strconv.Atoi(mqttPortStr)
	if err != nil {
		return Common{}, fmt.Errorf("invalid MQTT_PORT %q: %w", mqttPortStr, err)
	}
	if mqttPort < 1 || mqttPort > 65535 {
		return Common{}, fmt.Errorf("MQTT_PORT must be in 1..65535, got %d", mqttPort)
	}

	topic := env("MQTT_TOPIC", DefaultMQTTTopic)
	if strings.ContainsAny(topic, "#+") {
		return Common{}, fmt.Errorf("invalid MQTT_TOPIC %q: wildcards are not allowed", topic)
	}

	return Common{
		AppEnv:       appEnv,
		LogLevel:     level,
		MQTTBroker:   env("MQTT_BROKER", DefaultMQTTBroker),
		MQTTPort:     mqttPort,
		MQTTTopic:    topic,
		MQTTClientID: env("MQTT_CLIENT_ID", defaultClientID),
	}, nil
}

func LoadPublisherFromEnv() (Publisher, error) {
	common, err := loadCommon("study-area-sensor")
	if err != nil {
		return Publisher{}, err
	}

	sensorDriver := strings.ToLower(env("SENSOR_DRIVER", "bme280"))
	switch sensorDriver {
	case "bme280", "simulated":
	default:
		return Publisher{}, fmt.Errorf("invalid SENSOR_DRIVER %q (allowed: bme280, simulated)", sensorDriver)
	}

	bme280AddressStr := env("BME280_ADDRESS", "0x76")
	bme280Address, err := strconv.ParseUint(bme280AddressStr, 0, 16)
	if err != nil {
		return Publisher{}, fmt.Errorf("invalid BME280_ADDRESS %q: %w", bme280AddressStr, err)
	}

	sensorPollInterval, err := positiveDuration("SENSOR_POLL_INTERVAL", "2s")
	if err != nil {
		return Publisher{}, err
	}
	retryDelay, err := positiveDuration("RETRY_DELAY", "5s")
	if err != nil {
		return Publisher{}, err
	}
	networkPollInterval, err := positiveDuration("NETWORK_POLL_INTERVAL", "500ms")
	if err != nil {
		return Publisher{}, err
	}

	return Publisher{
		Common:              common,
		SensorDriver:        sensorDriver,
		BME280Address:       uint16(bme280Address),
		SensorPollInterval:  sensorPollInterval,
		RetryDelay:          retryDelay,
		NetworkInterface:    env("NETWORK_INTERFACE", ""),
		NetworkPollInterval: networkPollInterval,
	}, nil
}

func LoadDashboardFromEnv() (Dashboard, error) {
	// Empty client id: the dashboard generates a unique one per process.
	common, err := loadCommon("")
	if err != nil {
		return Dashboard{}, err
	}

	bufferCapacityStr := env("BUFFER_CAPACITY", "1500")
	bufferCapacity, err := strconv.Atoi(bufferCapacityStr)
	if err != nil {
		return Dashboard{}, fmt.Errorf("invalid BUFFER_CAPACITY %q: %w", bufferCapacityStr, err)
	}
	if bufferCapacity <= 0 {
		return Dashboard{}, fmt.Errorf("BUFFER_CAPACITY must be positive, got %d", bufferCapacity)
	}

	refreshInterval, err := positiveDuration("REFRESH_INTERVAL", "2s")
	if err != nil {
		return Dashboard{}, err
	}
	connectTimeout, err := positiveDuration("MQTT_CONNECT_TIMEOUT", "5s")
	if err != nil {
		return Dashboard{}, err
	}

	simulateStr := env("SIMULATE", "false")
	simulate, err := strconv.ParseBool(simulateStr)
	if err != nil {
		return Dashboard{}, fmt.Errorf("invalid SIMULATE %q: %w", simulateStr, err)
	}

	return Dashboard{
		Common:             common,
		HTTPAddr:           env("HTTP_ADDR", ":8050"),
		BufferCapacity:     bufferCapacity,
		RefreshInterval:    refreshInterval,
		MQTTConnectTimeout: connectTimeout,
		Simulate:           simulate,
	}, nil
}

func env(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func positiveDuration(key, def string) (time.Duration, error) {
	s := env(key, def)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %v", key, d)
	}
	return d, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
