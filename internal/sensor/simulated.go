package sensor

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/reading"
)

type SimulatedOptions struct {
	BaseTemperature float64 // default 29 °C
	BaseHumidity    float64 // default 80 %
	Jitter          float64 // uniform ± around the base, default 0.5

	// InvalidEvery makes every n-th read fail with ErrInvalidReading. Zero disables.
	InvalidEvery int

	Rand *rand.Rand
	Now  func() time.Time
}

// Simulated produces plausible study-area readings without hardware.
type Simulated struct {
	opts SimulatedOptions

	mu    sync.Mutex
	reads int
}

func NewSimulated(opts SimulatedOptions) *Simulated {
	if opts.BaseTemperature == 0 {
		opts.BaseTemperature = 29
	}
	if opts.BaseHumidity == 0 {
		opts.BaseHumidity = 80
	}
	if opts.Jitter == 0 {
		opts.Jitter = 0.5
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Simulated{opts: opts}
}

func (s *Simulated) Read(ctx context.Context) (reading.Reading, error) {
	if err := ctx.Err(); err != nil {
		return reading.Reading{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.reads++
	if s.opts.InvalidEvery > 0 && s.reads%s.opts.InvalidEvery == 0 {
		return reading.Reading{}, fmt.Errorf("%w: simulated fault on read %d", ErrInvalidReading, s.reads)
	}

	t := s.opts.BaseTemperature + s.jitter()
	h := s.opts.BaseHumidity + s.jitter()
	return newReading(t, h, s.opts.Now())
}

func (s *Simulated) jitter() float64 {
	return (s.opts.Rand.Float64()*2 - 1) * s.opts.Jitter
}

func (s *Simulated) Close() error { return nil }
