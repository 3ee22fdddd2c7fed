package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/config"
)

// New returns the process logger: coloured text for local dev builds, JSON
// for release builds or whenever APP_ENV=prod.
func New(cfg config.Common, version string, appName string) *slog.Logger {
	return newLogger(os.Stdout, cfg, version, appName)
}

func newLogger(w io.Writer, cfg config.Common, version string, appName string) *slog.Logger {
	if version == "dev" && cfg.AppEnv != "prod" {
		h := tint.NewHandler(w, &tint.Options{
			Level:      cfg.LogLevel,
			AddSource:  true,
			TimeFormat: time.Kitchen,
		})
		return slog.New(h).With("app", appName)
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})
	return slog.New(h).With(
		"app", appName,
		"version", version,
		"env", cfg.AppEnv,
	)
}
