package views

import (
	"time"

	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/reading"
)

// WindowOption is one entry of the time window selector.
type WindowOption struct {
	Minutes  int
	Label    string
	Selected bool
}

// DashboardData is the view model for the full page.
type DashboardData struct {
	Broker         string
	Topic          string
	RefreshMillis  int64
	Windows        []WindowOption
	SelectedWindow int
	Smooth         int
	Markers        bool
	Simulating     bool
	Live           *LiveData
}

// Gauge is the view model of one current-value gauge.
type Gauge struct {
	Title   string
	Unit    string
	Color   string
	Value   float64
	Min     float64
	Max     float64
	Percent float64
	Ticks   []float64
}

// Chart is the view model of one line chart.
type Chart struct {
	Title   string
	YLabel  string
	Color   string
	Points  string
	Markers []Point
	Min     float64
	Max     float64
	Start   time.Time
	End     time.Time
	Width   int
	Height  int
}

// CorrelationCell is one cell of the 2x2 correlation matrix.
type CorrelationCell struct {
	Value float64
	Color string
}

type CorrelationMatrix struct {
	Defined bool
	Value   float64
	Rows    [2][2]CorrelationCell
	Labels  [2]string
}

type Summary struct {
	Samples     int
	Temperature SeriesStats
	Humidity    SeriesStats
}

// LiveData is the view model for the live partial refreshed by polling.
type LiveData struct {
	Status      string
	Paused      bool
	PausedAt    time.Time
	WindowLabel string
	HasData     bool
	Temperature Gauge
	Humidity    Gauge
	TempChart   Chart
	HumChart    Chart
	Correlation CorrelationMatrix
	Summary     Summary
}

// LiveOptions controls how BuildLive draws the window.
type LiveOptions struct {
	Status      string
	Paused      bool
	PausedAt    time.Time
	WindowLabel string
	Smooth      time.Duration
	Markers     bool
}

// BuildLive turns the visible window into gauges, charts, correlation and
// summary. readings must be oldest first.
func BuildLive(readings []reading.Reading, opts LiveOptions) *LiveData {
	data := &LiveData{
		Status:      opts.Status,
		Paused:      opts.Paused,
		PausedAt:    opts.PausedAt,
		WindowLabel: opts.WindowLabel,
		HasData:     len(readings) > 0,
	}
	if !data.HasData {
		return data
	}

	times := make([]time.Time, len(readings))
	temps := make([]float64, len(readings))
	hums := make([]float64, len(readings))
	for i, r := range readings {
		times[i] = r.Time
		temps[i] = r.Temperature
		hums[i] = r.Humidity
	}

	tStats, hStats := Stats(temps), Stats(hums)
	last := readings[len(readings)-1]

	data.Temperature = buildGauge("Temperature", "°C", "#FF8C00", last.Temperature, tStats.Min-0.1, tStats.Max+0.1)
	data.Humidity = buildGauge("Humidity", "%", "#00BFFF", last.Humidity, hStats.Min-0.05, hStats.Max+0.05)

	data.TempChart = buildChart("Temperature Over Time", "Temperature (°C)", "#007AFF", times, Smooth(times, temps, opts.Smooth), 0.02, opts.Markers)
	data.HumChart = buildChart("Humidity Over Time", "Humidity (%)", "#00BFFF", times, Smooth(times, hums, opts.Smooth), 0.05, opts.Markers)

	data.Correlation = buildCorrelation(temps, hums)
	data.Summary = Summary{Samples: len(readings), Temperature: tStats, Humidity: hStats}
	return data
}

func buildGauge(title, unit, color string, value, lo, hi float64) Gauge {
	lo, hi = SafeRange(lo, hi, 0.1)
	pct := (value - lo) / (hi - lo) * 100
	return Gauge{
		Title:   title,
		Unit:    unit,
		Color:   color,
		Value:   value,
		Min:     lo,
		Max:     hi,
		Percent: min(100, max(0, round1(pct))),
		Ticks:   Ticks(lo, hi, gaugeTicks),
	}
}

func buildChart(title, yLabel, color string, times []time.Time, values []float64, step float64, markers bool) Chart {
	s := Stats(values)
	lo, hi := SafeRange(s.Min-step, s.Max+step, 0.1)
	points := plot(times, values, lo, hi)

	c := Chart{
		Title:  title,
		YLabel: yLabel,
		Color:  color,
		Points: polyline(points),
		Min:    lo,
		Max:    hi,
		Start:  times[0],
		End:    times[len(times)-1],
		Width:  chartWidth,
		Height: chartHeight,
	}
	if markers {
		c.Markers = points
	}
	return c
}

// buildCorrelation falls back to the identity matrix when the coefficient
// is undefined.
func buildCorrelation(temps, hums []float64) CorrelationMatrix {
	r, ok := Correlation(temps, hums)
	cell := func(v float64) CorrelationCell {
		return CorrelationCell{Value: v, Color: correlationColor(v)}
	}
	return CorrelationMatrix{
		Defined: ok,
		Value:   r,
		Labels:  [2]string{"temperature", "humidity"},
		Rows: [2][2]CorrelationCell{
			{cell(1), cell(r)},
			{cell(r), cell(1)},
		},
	}
}
