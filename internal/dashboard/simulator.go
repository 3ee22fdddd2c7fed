package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/sensor"
)

// Simulator feeds readings from a sensor straight into the dashboard while
// it is in simulation mode. In MQTT mode it idles.
type Simulator struct {
	sensor   sensor.Sensor
	dash     *Dashboard
	interval time.Duration
	logger   *slog.Logger
}

func NewSimulator(s sensor.Sensor, dash *Dashboard, interval time.Duration, logger *slog.Logger) *Simulator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Simulator{sensor: s, dash: dash, interval: interval, logger: logger}
}

// Run adds one reading immediately and then one per interval until ctx ends,
// skipping ticks where the dashboard is not simulating.
func (s *Simulator) Run(ctx context.Context) error {
	s.logger.Info("simulator started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if s.dash.Simulating() {
			r, err := s.sensor.Read(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				s.logger.Debug("simulator: reading dropped", "error", err)
			} else {
				s.dash.Add(r)
			}
		}

		select {
		case <-ctx.Done():
			s.logger.Info("simulator stopped")
			return nil
		case <-ticker.C:
		}
	}
}
