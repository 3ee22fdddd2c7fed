// Package metrics exposes the dashboard's view of the sensor stream to
// Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/reading"
)

// Message results.
const (
	ResultAccepted   = "accepted"
	ResultMalformed  = "malformed"
	ResultOutOfRange = "out_of_range"
)

var (
	descTemperature = prometheus.NewDesc(
		"sensor_temperature_celsius",
		"Latest temperature received from the study area sensor, in Celsius.",
		nil,
		nil,
	)

	descHumidity = prometheus.NewDesc(
		"sensor_humidity_ratio",
		"Latest relative humidity received from the study area sensor.",
		nil,
		nil,
	)
)

// LatestFunc returns the newest buffered reading, if any.
type LatestFunc func() (reading.Reading, bool)

type latestCollector struct {
	latest LatestFunc
}

func (c *latestCollector) Describe(ch chan<- *prometheus.Desc) {
	prometheus.DescribeByCollect(c, ch)
}

func (c *latestCollector) Collect(ch chan<- prometheus.Metric) {
	r, ok := c.latest()
	if !ok {
		return
	}

	temperature := prometheus.MustNewConstMetric(descTemperature, prometheus.GaugeValue, r.Temperature)
	humidity := prometheus.MustNewConstMetric(descHumidity, prometheus.GaugeValue, r.Humidity/100)

	ch <- prometheus.NewMetricWithTimestamp(r.Time, temperature)
	ch <- prometheus.NewMetricWithTimestamp(r.Time, humidity)
}

type Dashboard struct {
	registry *prometheus.Registry
	messages *prometheus.CounterVec
}

// NewDashboard registers the dashboard collectors on a fresh registry.
func NewDashboard(latest LatestFunc, bufferLen func() int) *Dashboard {
	reg := prometheus.NewRegistry()

	messages := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "studyarea_messages_total",
		Help: "Payloads received from the broker, by result.",
	}, []string{"result"})
	for _, r := range []string{ResultAccepted, ResultMalformed, ResultOutOfRange} {
		messages.WithLabelValues(r)
	}

	buffered := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "studyarea_buffer_readings",
		Help: "Readings currently held in the rolling buffer.",
	}, func() float64 { return float64(bufferLen()) })

	reg.MustRegister(messages, buffered, &latestCollector{latest: latest})

	return &Dashboard{registry: reg, messages: messages}
}

func (m *Dashboard) ObserveMessage(result string) {
	m.messages.WithLabelValues(result).Inc()
}

func (m *Dashboard) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Dashboard) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
