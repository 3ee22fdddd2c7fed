package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/app"
	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/config"
	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/logging"
)

var version = "dev"
var appName = "studyarea-publisher"

func main() {
	cfg, err := config.LoadPublisherFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Common, version, appName)
	slog.SetDefault(logger)

	slog.Info("starting",
		"app", appName,
		"version", version,
		"env", cfg.AppEnv,
		"log_level", cfg.LogLevel.String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunPublisher(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run failed", "err", err)
		os.Exit(1)
	}

	slog.Info("shutting down")
}
