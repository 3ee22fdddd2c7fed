package httpapi

import (
	"net/http"

	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/utils"
)

// StatusSource reports the health of the dashboard's data source.
type StatusSource interface {
	Healthy() bool
	ModeName() string
	Len() int
}

type healthchecker interface {
	handleHealthz(w http.ResponseWriter, r *http.Request)
}

type healthcheckerImpl struct {
	source StatusSource
}

func NewHealthchecker(source StatusSource) healthchecker {
	return &healthcheckerImpl{source: source}
}

func (h *healthcheckerImpl) handleHealthz(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":   "ok",
		"mode":     h.source.ModeName(),
		"buffered": h.source.Len(),
	}
	if !h.source.Healthy() {
		body["status"] = "degraded"
		utils.WriteJSON(w, http.StatusServiceUnavailable, body)
		return
	}
	utils.WriteJSON(w, http.StatusOK, body)
}

func registerHealthcheck(mux *http.ServeMux, source StatusSource) {
	healthchecker := NewHealthchecker(source)
	mux.HandleFunc("GET /healthz", healthchecker.handleHealthz)
}
