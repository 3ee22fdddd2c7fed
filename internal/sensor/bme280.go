package sensor

import (
	"context"
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"
	"periph.io/x/host/v3"

	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/reading"
)

// BME280 reads a Bosch BME280 on the default I²C bus (usually /dev/i2c-1).
type BME280 struct {
	bus i2c.BusCloser
	dev *bmxx80.Dev
}

func NewBME280(addr uint16) (*BME280, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}

	bus, err := i2creg.Open("")
	if err != nil {
		return nil, fmt.Errorf("open i2c bus: %w", err)
	}

	dev, err := bmxx80.NewI2C(bus, addr, &bmxx80.DefaultOpts)
	if err != nil {
		_ = bus.Close()
		return nil, fmt.Errorf("bme280 at %#x: %w", addr, err)
	}

	return &BME280{bus: bus, dev: dev}, nil
}

func (s *BME280) Read(ctx context.Context) (reading.Reading, error) {
	if err := ctx.Err(); err != nil {
		return reading.Reading{}, err
	}

	var env physic.Env
	if err := s.dev.Sense(&env); err != nil {
		return reading.Reading{}, fmt.Errorf("%w: %v", ErrInvalidReading, err)
	}

	// env.Humidity is fixed point at 0.00001 %rH.
	humidity := float64(env.Humidity) / float64(physic.PercentRH)
	return newReading(env.Temperature.Celsius(), humidity, time.Now())
}

func (s *BME280) Close() error {
	haltErr := s.dev.Halt()
	if err := s.bus.Close(); err != nil {
		return err
	}
	return haltErr
}
