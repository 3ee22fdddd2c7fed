package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/reading"
)

func TestObserveMessage(t *testing.T) {
	m := NewDashboard(func() (reading.Reading, bool) { return reading.Reading{}, false }, func() int { return 0 })

	m.ObserveMessage(ResultAccepted)
	m.ObserveMessage(ResultAccepted)
	m.ObserveMessage(ResultMalformed)

	if got := testutil.ToFloat64(m.messages.WithLabelValues(ResultAccepted)); got != 2 {
		t.Errorf("accepted = %v; want 2", got)
	}
	if got := testutil.ToFloat64(m.messages.WithLabelValues(ResultMalformed)); got != 1 {
		t.Errorf("malformed = %v; want 1", got)
	}
	if got := testutil.ToFloat64(m.messages.WithLabelValues(ResultOutOfRange)); got != 0 {
		t.Errorf("out_of_range = %v; want 0", got)
	}
}

func TestHandler_exposesLatestReading(t *testing.T) {
	at := time.Now()
	m := NewDashboard(func() (reading.Reading, bool) {
		return reading.Reading{Temperature: 28.85, Humidity: 60.4, Time: at}, true
	}, func() int { return 7 })

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	out := string(body)
	for _, want := range []string{
		"sensor_temperature_celsius 28.85",
		"sensor_humidity_ratio 0.604",
		"studyarea_buffer_readings 7",
		`studyarea_messages_total{result="accepted"} 0`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestHandler_noReadingYet(t *testing.T) {
	m := NewDashboard(func() (reading.Reading, bool) { return reading.Reading{}, false }, func() int { return 0 })

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if strings.Contains(rec.Body.String(), "sensor_temperature_celsius") {
		t.Error("temperature exposed before any reading arrived")
	}
}
