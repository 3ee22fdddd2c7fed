package controller

import (
	"net/http"
	"time"

	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/reading"
)

// Source is the dashboard state the handlers read from.
type Source interface {
	Window(window time.Duration) []reading.Reading
	Latest() (reading.Reading, bool)
	Status() string
	Pause()
	Resume()
	Paused() (bool, time.Time)
	SetSimulation(on bool) error
	Simulating() bool
}

type Options struct {
	Broker  string
	Topic   string
	Refresh time.Duration
}

type DashboardController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type dashboardControllerImpl struct {
	source Source
	opts   Options
}

func NewDashboardController(source Source, opts Options) DashboardController {
	return &dashboardControllerImpl{source: source, opts: opts}
}

func (c *dashboardControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /", c.handleDashboard)
	mux.HandleFunc("GET /partials/live", c.handleLivePartial)
	mux.HandleFunc("GET /api/v1/readings", c.handleReadings)
	mux.HandleFunc("GET /api/v1/readings/latest", c.handleLatest)
	mux.HandleFunc("GET /export.csv", c.handleExport)
	mux.HandleFunc("POST /pause", c.handlePause)
	mux.HandleFunc("POST /resume", c.handleResume)
	mux.HandleFunc("POST /simulate", c.handleSimulate)
}
