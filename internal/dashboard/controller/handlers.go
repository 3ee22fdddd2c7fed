package controller

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/dashboard/views"
	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/reading"
	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/utils"
)

const htmlContentType = "text/html; charset=utf-8"

func (c *dashboardControllerImpl) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	minutes := c.resolveWindow(r, "dashboard")
	smooth := parseSmooth(r)
	data := &views.DashboardData{
		Broker:         c.opts.Broker,
		Topic:          c.opts.Topic,
		RefreshMillis:  c.opts.Refresh.Milliseconds(),
		Windows:        windowChoices(minutes),
		SelectedWindow: minutes,
		Smooth:         int(smooth / time.Second),
		Markers:        parseMarkers(r),
		Simulating:     c.source.Simulating(),
		Live:           c.buildLive(r, minutes),
	}

	err := utils.WriteRendered(w, htmlContentType, func(out io.Writer) error {
		return views.RenderDashboard(out, data)
	})
	if err != nil {
		slog.Error("dashboard template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
	}
}

func (c *dashboardControllerImpl) handleLivePartial(w http.ResponseWriter, r *http.Request) {
	c.writeLive(w, r, "live")
}

func (c *dashboardControllerImpl) handlePause(w http.ResponseWriter, r *http.Request) {
	c.source.Pause()
	slog.Info("dashboard paused")
	c.writeLive(w, r, "pause")
}

func (c *dashboardControllerImpl) handleResume(w http.ResponseWriter, r *http.Request) {
	c.source.Resume()
	slog.Info("dashboard resumed")
	c.writeLive(w, r, "resume")
}

// handleSimulate follows the "Simulate data" checkbox; an unchecked box
// sends no value.
func (c *dashboardControllerImpl) handleSimulate(w http.ResponseWriter, r *http.Request) {
	on := parseToggle(r.FormValue("simulate"))
	if err := c.source.SetSimulation(on); err != nil {
		slog.Warn("simulate: toggle rejected", "simulate", on, "error", err)
		utils.WriteError(w, http.StatusConflict, err.Error())
		return
	}
	slog.Info("data source toggled", "simulate", on)
	c.writeLive(w, r, "simulate")
}

func (c *dashboardControllerImpl) handleReadings(w http.ResponseWriter, r *http.Request) {
	minutes, err := parseWindow(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	readings := c.source.Window(windowDuration(minutes))
	if readings == nil {
		readings = []reading.Reading{}
	}
	utils.WriteJSON(w, http.StatusOK, readings)
}

func (c *dashboardControllerImpl) handleLatest(w http.ResponseWriter, r *http.Request) {
	latest, ok := c.source.Latest()
	if !ok {
		utils.WriteError(w, http.StatusNotFound, "no readings received yet")
		return
	}
	utils.WriteJSON(w, http.StatusOK, latest)
}

func (c *dashboardControllerImpl) handleExport(w http.ResponseWriter, r *http.Request) {
	minutes, err := parseWindow(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	readings := c.source.Window(windowDuration(minutes))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="study-area-%s.csv"`, exportSuffix(minutes)))
	err = utils.WriteRendered(w, "text/csv; charset=utf-8", func(out io.Writer) error {
		return writeCSV(out, readings)
	})
	if err != nil {
		slog.Error("export: write csv failed", "error", err)
		w.Header().Del("Content-Disposition")
		utils.WriteError(w, http.StatusInternalServerError, "failed to export readings")
	}
}

func writeCSV(out io.Writer, readings []reading.Reading) error {
	cw := csv.NewWriter(out)
	if err := cw.Write([]string{"ts", "temperature_c", "humidity_pct"}); err != nil {
		return err
	}
	for _, rd := range readings {
		record := []string{
			rd.Time.UTC().Format(time.RFC3339Nano),
			strconv.FormatFloat(rd.Temperature, 'f', 2, 64),
			strconv.FormatFloat(rd.Humidity, 'f', 2, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func exportSuffix(minutes int) string {
	if minutes == 0 {
		return "all"
	}
	return strconv.Itoa(minutes) + "m"
}

// resolveWindow falls back to the default window for the HTML views, where
// a bad value should not break the page.
func (c *dashboardControllerImpl) resolveWindow(r *http.Request, view string) int {
	minutes, err := parseWindow(r)
	if err != nil {
		slog.Warn(view+": invalid window", "window", r.FormValue("window"), "error", err)
		return defaultWindowMinutes
	}
	return minutes
}

func (c *dashboardControllerImpl) buildLive(r *http.Request, minutes int) *views.LiveData {
	paused, pausedAt := c.source.Paused()
	return views.BuildLive(c.source.Window(windowDuration(minutes)), views.LiveOptions{
		Status:      c.source.Status(),
		Paused:      paused,
		PausedAt:    pausedAt,
		WindowLabel: windowLabel(minutes),
		Smooth:      parseSmooth(r),
		Markers:     parseMarkers(r),
	})
}

func (c *dashboardControllerImpl) writeLive(w http.ResponseWriter, r *http.Request, view string) {
	data := c.buildLive(r, c.resolveWindow(r, view))
	err := utils.WriteRendered(w, htmlContentType, func(out io.Writer) error {
		return views.RenderLivePartial(out, data)
	})
	if err != nil {
		slog.Error(view+" partial render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render")
	}
}
