package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/config"
	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/dashboard"
	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/dashboard/views"
	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/reading"
)

func quietLogs(t *testing.T) {
	t.Helper()
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
}

func closedPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()
	return port
}

func testDashboardConfig(t *testing.T) config.Dashboard {
	return config.Dashboard{
		Common: config.Common{
			AppEnv:     "dev",
			LogLevel:   slog.LevelInfo,
			MQTTBroker: "127.0.0.1",
			MQTTPort:   closedPort(t),
			MQTTTopic:  config.DefaultMQTTTopic,
		},
		HTTPAddr:           "127.0.0.1:0",
		BufferCapacity:     10,
		RefreshInterval:    20 * time.Millisecond,
		MQTTConnectTimeout: 300 * time.Millisecond,
	}
}

func TestNewDashboardMux(t *testing.T) {
	quietLogs(t)
	if err := views.LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates(): %v", err)
	}

	cfg := testDashboardConfig(t)
	dash := dashboard.New(dashboard.Options{Capacity: cfg.BufferCapacity})
	dash.SetMode(dashboard.ModeSimulation)
	dash.Add(reading.Reading{Temperature: 28.85, Humidity: 60.4})
	mux := newDashboardMux(cfg, dash)

	tests := []struct {
		path string
		want string
	}{
		{"/healthz", `"mode":"simulation"`},
		{"/metrics", "studyarea_buffer_readings 1"},
		{"/", "Smart Study Area Climate Dashboard"},
		{"/partials/live", "Simulation Mode · Buffer: 1 samples"},
		{"/api/v1/readings", `"temperature_c":28.85`},
		{"/export.csv", "ts,temperature_c,humidity_pct"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("body missing %q", tt.want)
			}
		})
	}
}

func TestNewDashboardMux_simulateToggle(t *testing.T) {
	quietLogs(t)
	if err := views.LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates(): %v", err)
	}

	cfg := testDashboardConfig(t)
	dash := dashboard.New(dashboard.Options{Capacity: cfg.BufferCapacity})
	mux := newDashboardMux(cfg, dash)

	post := func(body string) int {
		req := httptest.NewRequest(http.MethodPost, "/simulate", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := post("simulate=1"); code != http.StatusOK {
		t.Fatalf("simulate on = %d; want %d", code, http.StatusOK)
	}
	if !dash.Simulating() {
		t.Fatal("dashboard not simulating after toggle on")
	}
	if code := post(""); code != http.StatusConflict {
		t.Errorf("simulate off without subscriber = %d; want %d", code, http.StatusConflict)
	}

	dash.SetLinkCheck(func() bool { return true })
	if code := post(""); code != http.StatusOK {
		t.Fatalf("simulate off = %d; want %d", code, http.StatusOK)
	}
	if dash.Mode() != dashboard.ModeMQTT {
		t.Errorf("Mode() = %v; want mqtt", dash.Mode())
	}
}

func TestRunDashboard_stopsOnCancel(t *testing.T) {
	quietLogs(t)
	cfg := testDashboardConfig(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- RunDashboard(ctx, cfg) }()

	// Past the connect timeout, so the simulator is running.
	time.Sleep(cfg.MQTTConnectTimeout + 200*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("RunDashboard() = %v; want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("RunDashboard() did not return after cancel")
	}
}

func TestRunDashboard_listenFailure(t *testing.T) {
	quietLogs(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	cfg := testDashboardConfig(t)
	cfg.Simulate = true
	cfg.HTTPAddr = ln.Addr().String()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = RunDashboard(ctx, cfg)
	if err == nil || !strings.Contains(err.Error(), "http server") {
		t.Errorf("RunDashboard() = %v; want http server error", err)
	}
}

func TestRunPublisher_unknownDriver(t *testing.T) {
	quietLogs(t)
	cfg := config.Publisher{SensorDriver: "dht22"}

	err := RunPublisher(context.Background(), cfg)
	if err == nil || !strings.Contains(err.Error(), "init sensor") {
		t.Errorf("RunPublisher() = %v; want init sensor error", err)
	}
}

func TestRunPublisher_stopsOnDeadline(t *testing.T) {
	quietLogs(t)
	cfg := config.Publisher{
		Common: config.Common{
			MQTTBroker:   "127.0.0.1",
			MQTTPort:     closedPort(t),
			MQTTTopic:    config.DefaultMQTTTopic,
			MQTTClientID: "study-area-sensor-test",
		},
		SensorDriver:        "simulated",
		SensorPollInterval:  10 * time.Millisecond,
		RetryDelay:          10 * time.Millisecond,
		NetworkPollInterval: 10 * time.Millisecond,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	err := RunPublisher(ctx, cfg)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("RunPublisher() = %v; want context.DeadlineExceeded", err)
	}
}

func TestDashboardClientID(t *testing.T) {
	a, b := dashboardClientID(), dashboardClientID()
	if !strings.HasPrefix(a, "studyarea-dashboard-") || len(a) != len("studyarea-dashboard-")+8 {
		t.Errorf("dashboardClientID() = %q", a)
	}
	if a == b {
		t.Errorf("two client ids collided: %q", a)
	}
}
