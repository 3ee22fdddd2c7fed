package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/config"
	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/dashboard"
	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/dashboard/controller"
	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/dashboard/views"
	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/httpapi"
	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/mqtt"
	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/sensor"
)

const shutdownTimeout = 10 * time.Second

// RunDashboard serves the dashboard until ctx ends. When the broker cannot
// be reached at startup the dashboard falls back to simulated readings; with
// a broker attached, simulation can also be toggled from the page.
func RunDashboard(ctx context.Context, cfg config.Dashboard) error {
	if cfg.MQTTClientID == "" {
		cfg.MQTTClientID = dashboardClientID()
	}

	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"mqttTopic", cfg.MQTTTopic,
		"mqttClientID", cfg.MQTTClientID,
		"bufferCapacity", cfg.BufferCapacity,
		"refreshInterval", cfg.RefreshInterval,
		"simulate", cfg.Simulate,
	)

	if err := views.LoadTemplates(); err != nil {
		return err
	}

	dash := dashboard.New(dashboard.Options{Capacity: cfg.BufferCapacity})
	sub := connectSubscriber(ctx, cfg, dash)
	if sub == nil {
		dash.SetMode(dashboard.ModeSimulation)
	}

	srv := httpapi.NewServer(cfg.HTTPAddr, newDashboardMux(cfg, dash))

	g, gctx := errgroup.WithContext(ctx)
	sim := dashboard.NewSimulator(sensor.NewSimulated(sensor.SimulatedOptions{}), dash, cfg.RefreshInterval, slog.Default())
	g.Go(func() error {
		return sim.Run(gctx)
	})
	g.Go(func() error {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if sub != nil {
			slog.Info("mqtt disconnecting")
			sub.Disconnect()
		}
		slog.Info("http shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// connectSubscriber returns nil when the dashboard should simulate, either
// by configuration or because the broker did not answer in time.
func connectSubscriber(ctx context.Context, cfg config.Dashboard, dash *dashboard.Dashboard) *mqtt.Subscriber {
	if cfg.Simulate {
		slog.Info("simulation requested, not connecting to mqtt")
		return nil
	}

	// The handler goes in before Connect so the subscription made on
	// CONNACK delivers straight into the buffer.
	sub := mqtt.NewSubscriber(cfg.Common, slog.Default())
	sub.SetMessageHandler(dash.HandleMessage)

	connectCtx, cancel := context.WithTimeout(ctx, cfg.MQTTConnectTimeout)
	err := sub.Connect(connectCtx)
	cancel()
	if err != nil {
		slog.Warn("mqtt not reachable, using simulated data", "error", err)
		sub.Disconnect()
		return nil
	}

	dash.SetLinkCheck(sub.IsConnected)
	return sub
}

func newDashboardMux(cfg config.Dashboard, dash *dashboard.Dashboard) *http.ServeMux {
	mux := httpapi.NewMux(dash)
	mux.Handle("GET /metrics", dash.Metrics().Handler())
	controller.NewDashboardController(dash, controller.Options{
		Broker:  cfg.MQTTBroker,
		Topic:   cfg.MQTTTopic,
		Refresh: cfg.RefreshInterval,
	}).RegisterRoutes(mux)
	return mux
}

func dashboardClientID() string {
	return "studyarea-dashboard-" + uuid.NewString()[:8]
}
