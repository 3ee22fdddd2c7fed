// Package sensor reads temperature and humidity samples.
package sensor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/config"
	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/reading"
)

// ErrInvalidReading is returned when either value is missing, e.g. after a
// transient bus fault. Callers drop the sample and try again on the next tick.
var ErrInvalidReading = errors.New("invalid sensor reading")

type Sensor interface {
	Read(ctx context.Context) (reading.Reading, error)
	Close() error
}

// New builds the sensor selected by cfg.SensorDriver.
func New(cfg config.Publisher) (Sensor, error) {
	switch cfg.SensorDriver {
	case "bme280":
		return NewBME280(cfg.BME280Address)
	case "simulated":
		return NewSimulated(SimulatedOptions{}), nil
	default:
		return nil, fmt.Errorf("unknown sensor driver %q", cfg.SensorDriver)
	}
}

func newReading(temperature, humidity float64, at time.Time) (reading.Reading, error) {
	if math.IsNaN(temperature) || math.IsInf(temperature, 0) {
		return reading.Reading{}, fmt.Errorf("%w: temperature missing", ErrInvalidReading)
	}
	if math.IsNaN(humidity) || math.IsInf(humidity, 0) {
		return reading.Reading{}, fmt.Errorf("%w: humidity missing", ErrInvalidReading)
	}
	return reading.Reading{Temperature: temperature, Humidity: humidity, Time: at}, nil
}
