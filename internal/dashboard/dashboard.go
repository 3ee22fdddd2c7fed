// Package dashboard holds the visualizer's state: the rolling buffer of
// received readings, the data source mode and the pause flag. One Dashboard
// is owned by the process and handed to the broker callback, the simulator
// and the HTTP handlers.
package dashboard

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/buffer"
	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/metrics"
	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/reading"
)

// ErrNoBroker is returned when leaving simulation without a broker link.
var ErrNoBroker = errors.New("no mqtt subscriber attached")

type Mode int32

const (
	ModeMQTT Mode = iota
	ModeSimulation
)

func (m Mode) String() string {
	switch m {
	case ModeMQTT:
		return "mqtt"
	case ModeSimulation:
		return "simulation"
	default:
		return "unknown"
	}
}

type Options struct {
	Capacity int
	Now      func() time.Time
	Logger   *slog.Logger
}

type Dashboard struct {
	buf     *buffer.Rolling[reading.Reading]
	metrics *metrics.Dashboard
	now     func() time.Time
	logger  *slog.Logger

	mode atomic.Int32

	mu       sync.RWMutex
	paused   bool
	pausedAt time.Time
	linkUp   func() bool
}

func New(opts Options) *Dashboard {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	d := &Dashboard{
		buf:    buffer.New[reading.Reading](opts.Capacity),
		now:    opts.Now,
		logger: opts.Logger,
	}
	d.metrics = metrics.NewDashboard(d.Latest, d.Len)
	return d
}

// HandleMessage is the broker callback. Rejected payloads are dropped
// without touching the buffer, and so is everything received while the
// dashboard is simulating.
func (d *Dashboard) HandleMessage(topic string, payload []byte) {
	if d.Mode() == ModeSimulation {
		d.logger.Debug("payload ignored while simulating", "topic", topic)
		return
	}
	if err := d.HandlePayload(payload); err != nil {
		d.logger.Debug("payload dropped", "topic", topic, "payload", string(payload), "error", err)
	}
}

// HandlePayload parses payload, stamps it with the receive time and buffers it
// if it passes the plausibility limits.
func (d *Dashboard) HandlePayload(payload []byte) error {
	r, err := reading.Parse(payload, d.now())
	if err != nil {
		d.metrics.ObserveMessage(metrics.ResultMalformed)
		return fmt.Errorf("parse payload: %w", err)
	}
	if err := r.Validate(); err != nil {
		d.metrics.ObserveMessage(metrics.ResultOutOfRange)
		return fmt.Errorf("admit reading: %w", err)
	}

	d.buf.Append(r)
	d.metrics.ObserveMessage(metrics.ResultAccepted)
	return nil
}

// Add buffers a locally produced reading, stamping it if it has no time.
func (d *Dashboard) Add(r reading.Reading) {
	if r.Time.IsZero() {
		r.Time = d.now()
	}
	d.buf.Append(r)
}

// Window returns the readings from the last window, oldest first. A zero
// window returns everything buffered. While paused, the window ends at the
// moment of the pause.
func (d *Dashboard) Window(window time.Duration) []reading.Reading {
	end := d.now()
	if paused, at := d.Paused(); paused {
		end = at
	}
	start := end.Add(-window)

	return d.buf.Filter(func(r reading.Reading) bool {
		if r.Time.After(end) {
			return false
		}
		return window <= 0 || r.Time.After(start)
	})
}

func (d *Dashboard) Latest() (reading.Reading, bool) {
	return d.buf.Last()
}

func (d *Dashboard) Len() int {
	return d.buf.Len()
}

func (d *Dashboard) Cap() int {
	return d.buf.Cap()
}

func (d *Dashboard) SetMode(m Mode) {
	if prev := Mode(d.mode.Swap(int32(m))); prev != m {
		d.logger.Info("data source changed", "mode", m.String())
	}
}

func (d *Dashboard) Mode() Mode {
	return Mode(d.mode.Load())
}

// SetSimulation switches the data source at runtime. Turning simulation off
// requires a broker subscriber installed through SetLinkCheck.
func (d *Dashboard) SetSimulation(on bool) error {
	if on {
		d.SetMode(ModeSimulation)
		return nil
	}
	d.mu.RLock()
	attached := d.linkUp != nil
	d.mu.RUnlock()
	if !attached {
		return ErrNoBroker
	}
	d.SetMode(ModeMQTT)
	return nil
}

func (d *Dashboard) Simulating() bool {
	return d.Mode() == ModeSimulation
}

// SetLinkCheck installs the broker connectivity probe used by Healthy.
func (d *Dashboard) SetLinkCheck(linkUp func() bool) {
	d.mu.Lock()
	d.linkUp = linkUp
	d.mu.Unlock()
}

// Pause freezes the visible window at the current time. Readings keep
// arriving in the buffer.
func (d *Dashboard) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.paused {
		return
	}
	d.paused = true
	d.pausedAt = d.now()
}

func (d *Dashboard) Resume() {
	d.mu.Lock()
	d.paused = false
	d.pausedAt = time.Time{}
	d.mu.Unlock()
}

func (d *Dashboard) Paused() (bool, time.Time) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.paused, d.pausedAt
}

// Status is the one-line source summary shown above the charts.
func (d *Dashboard) Status() string {
	n := d.Len()
	if d.Mode() == ModeSimulation {
		return fmt.Sprintf("Simulation Mode · Buffer: %d samples", n)
	}
	if !d.Healthy() {
		return fmt.Sprintf("MQTT Reconnecting · Buffer: %d samples", n)
	}
	return fmt.Sprintf("MQTT Connected · Buffer: %d samples", n)
}

// Healthy reports whether the data source is live. Simulation is always
// considered healthy.
func (d *Dashboard) Healthy() bool {
	if d.Mode() == ModeSimulation {
		return true
	}
	d.mu.RLock()
	linkUp := d.linkUp
	d.mu.RUnlock()
	return linkUp == nil || linkUp()
}

func (d *Dashboard) Metrics() *metrics.Dashboard {
	return d.metrics
}

func (d *Dashboard) ModeName() string {
	return d.Mode().String()
}
