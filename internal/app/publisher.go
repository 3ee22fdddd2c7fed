package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/config"
	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/mqtt"
	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/network"
	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/sensor"
	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/station"
)

// RunPublisher reads the sensor and publishes until ctx ends. Runtime faults
// are retried inside the loop; only a sensor that cannot be opened is fatal.
func RunPublisher(ctx context.Context, cfg config.Publisher) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"mqttTopic", cfg.MQTTTopic,
		"mqttClientID", cfg.MQTTClientID,
		"sensorDriver", cfg.SensorDriver,
		"bme280Address", fmt.Sprintf("0x%02x", cfg.BME280Address),
		"sensorPollInterval", cfg.SensorPollInterval,
		"retryDelay", cfg.RetryDelay,
		"networkInterface", cfg.NetworkInterface,
	)

	s, err := sensor.New(cfg)
	if err != nil {
		return fmt.Errorf("init sensor: %w", err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			slog.Error("sensor close", "error", err)
		}
	}()

	link := network.NewConnector(network.InterfaceProbe(cfg.NetworkInterface), cfg.NetworkPollInterval, slog.Default())
	client := mqtt.NewClient(cfg.Common, slog.Default())
	defer client.Disconnect()

	loop := station.New(s, link, client, station.Options{
		Topic:      cfg.MQTTTopic,
		Interval:   cfg.SensorPollInterval,
		RetryDelay: cfg.RetryDelay,
	})
	err = loop.Run(ctx)

	stats := loop.Stats()
	slog.Info("publish loop stopped",
		"published", stats.Published,
		"droppedInvalid", stats.DroppedInvalid,
		"publishFailures", stats.PublishFailures,
		"connectAttempts", stats.ConnectAttempts,
	)
	return err
}
