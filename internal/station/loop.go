// Package station runs the sensor side of the pipeline: wait for the network,
// keep a broker link, read the sensor and publish each valid reading.
package station

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/connstate"
	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/reading"
)

type Sensor interface {
	Read(ctx context.Context) (reading.Reading, error)
}

// Network blocks until the link is usable.
type Network interface {
	Connect(ctx context.Context) error
}

type Broker interface {
	Connect(ctx context.Context) error
	IsConnected() bool
	Publish(ctx context.Context, topic string, payload []byte) error
}

// Outcome is what a single tick did.
type Outcome int

const (
	OutcomePublished Outcome = iota
	OutcomeInvalidReading
	OutcomeBrokerUnavailable
	OutcomePublishFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomePublished:
		return "published"
	case OutcomeInvalidReading:
		return "invalid_reading"
	case OutcomeBrokerUnavailable:
		return "broker_unavailable"
	case OutcomePublishFailed:
		return "publish_failed"
	default:
		return "unknown"
	}
}

type Options struct {
	Topic      string
	Interval   time.Duration // between ticks
	RetryDelay time.Duration // after a failed handshake or publish
	Logger     *slog.Logger

	// Sleep waits d or until ctx ends. Defaults to a timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

type Stats struct {
	Published       uint64
	DroppedInvalid  uint64
	PublishFailures uint64
	ConnectAttempts uint64
}

// Loop is the publish state machine. Everything runs sequentially on the
// goroutine calling Run; there is no backoff, only the two fixed delays.
type Loop struct {
	sensor  Sensor
	network Network
	broker  Broker
	opts    Options
	logger  *slog.Logger
	state   connstate.Value

	published       atomic.Uint64
	droppedInvalid  atomic.Uint64
	publishFailures atomic.Uint64
	connectAttempts atomic.Uint64
}

func New(sensor Sensor, network Network, broker Broker, opts Options) *Loop {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Sleep == nil {
		opts.Sleep = sleep
	}
	return &Loop{
		sensor:  sensor,
		network: network,
		broker:  broker,
		opts:    opts,
		logger:  opts.Logger,
	}
}

// Run ticks until ctx ends and returns ctx.Err().
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("publish loop started",
		"topic", l.opts.Topic,
		"interval", l.opts.Interval,
		"retry_delay", l.opts.RetryDelay,
	)

	for {
		outcome, err := l.Tick(ctx)
		if err != nil {
			return err
		}

		delay := l.opts.Interval
		if outcome == OutcomeBrokerUnavailable || outcome == OutcomePublishFailed {
			delay = l.opts.RetryDelay
		}
		if err := l.opts.Sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// Tick runs one iteration. The error is non-nil only when ctx ended; every
// other fault is logged and reported through the Outcome.
func (l *Loop) Tick(ctx context.Context) (Outcome, error) {
	if err := l.network.Connect(ctx); err != nil {
		return 0, err
	}

	if !l.broker.IsConnected() {
		if prev := l.state.Store(connstate.Connecting); prev == connstate.Connected {
			l.logger.Warn("broker link lost, reconnecting")
		}

		attempt := l.connectAttempts.Add(1)
		if err := l.broker.Connect(ctx); err != nil {
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}
			l.logger.Warn("broker unreachable", "attempt", attempt, "retry_in", l.opts.RetryDelay, "error", err)
			return OutcomeBrokerUnavailable, nil
		}

		l.state.Store(connstate.Connected)
		l.logger.Info("broker connected", "attempt", attempt)
	} else if prev := l.state.Store(connstate.Connected); prev != connstate.Connected {
		l.logger.Info("broker link up")
	}

	r, err := l.sensor.Read(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		l.droppedInvalid.Add(1)
		l.logger.Warn("sensor reading dropped", "error", err)
		return OutcomeInvalidReading, nil
	}

	payload := reading.Encode(r)
	if err := l.broker.Publish(ctx, l.opts.Topic, payload); err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		l.publishFailures.Add(1)
		if !l.broker.IsConnected() {
			l.state.Store(connstate.Connecting)
		}
		l.logger.Warn("publish failed", "topic", l.opts.Topic, "error", err)
		return OutcomePublishFailed, nil
	}

	l.published.Add(1)
	l.logger.Info("reading published",
		"topic", l.opts.Topic,
		"payload", string(payload),
		"T", r.Temperature, "H", r.Humidity,
	)
	return OutcomePublished, nil
}

func (l *Loop) State() connstate.State {
	return l.state.Load()
}

func (l *Loop) Stats() Stats {
	return Stats{
		Published:       l.published.Load(),
		DroppedInvalid:  l.droppedInvalid.Load(),
		PublishFailures: l.publishFailures.Load(),
		ConnectAttempts: l.connectAttempts.Load(),
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
