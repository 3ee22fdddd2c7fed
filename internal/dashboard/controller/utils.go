package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/dashboard/views"
)

const (
	defaultWindowMinutes = 5
	maxSmoothSeconds     = 20
)

type windowOption struct {
	Minutes int
	Label   string
}

// Zero minutes means the whole buffer.
var windowOptions = []windowOption{
	{Minutes: 1, Label: "Last 1 minute"},
	{Minutes: 5, Label: "Last 5 minutes"},
	{Minutes: 15, Label: "Last 15 minutes"},
	{Minutes: 60, Label: "Last 60 minutes"},
	{Minutes: 0, Label: "All data"},
}

var errInvalidWindow = errors.New("'window' must be one of 1, 5, 15, 60 or 0")

// parseWindow reads the window in minutes from the query or form, defaulting
// to five minutes when absent.
func parseWindow(r *http.Request) (int, error) {
	s := r.FormValue("window")
	if s == "" {
		return defaultWindowMinutes, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New("invalid 'window' (expected minutes)")
	}
	for _, opt := range windowOptions {
		if opt.Minutes == n {
			return n, nil
		}
	}
	return 0, errInvalidWindow
}

func windowDuration(minutes int) time.Duration {
	return time.Duration(minutes) * time.Minute
}

func windowLabel(minutes int) string {
	for _, opt := range windowOptions {
		if opt.Minutes == minutes {
			return opt.Label
		}
	}
	return ""
}

func windowChoices(selected int) []views.WindowOption {
	out := make([]views.WindowOption, 0, len(windowOptions))
	for _, opt := range windowOptions {
		out = append(out, views.WindowOption{Minutes: opt.Minutes, Label: opt.Label, Selected: opt.Minutes == selected})
	}
	return out
}

// parseSmooth returns the smoothing span, clamped to [0, 20] seconds.
// Anything unparsable disables smoothing.
func parseSmooth(r *http.Request) time.Duration {
	n, err := strconv.Atoi(r.FormValue("smooth"))
	if err != nil || n <= 0 {
		return 0
	}
	return time.Duration(min(n, maxSmoothSeconds)) * time.Second
}

func parseMarkers(r *http.Request) bool {
	return parseToggle(r.FormValue("markers"))
}

// parseToggle reads a checkbox value. Anything unrecognised is off.
func parseToggle(v string) bool {
	switch v {
	case "1", "true", "on":
		return true
	}
	return false
}
