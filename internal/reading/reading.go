package reading

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

var (
	ErrMalformedPayload = errors.New("malformed payload")
	ErrOutOfRange       = errors.New("reading out of range")
)

// Plausibility limits the dashboard applies to received readings. Temperature bounds are
// exclusive, humidity bounds inclusive.
const (
	MinTemperature = -10.0
	MaxTemperature = 60.0
	MinHumidity    = 0.0
	MaxHumidity    = 100.0
)

// Reading is a single temperature/humidity sample.
type Reading struct {
	Temperature float64   `json:"temperature_c"`
	Humidity    float64   `json:"humidity_pct"`
	Time        time.Time `json:"timestamp"`
}

// Encode renders r in the wire format "<temp>,<humidity>", two decimals each.
// The timestamp is not part of the payload.
func Encode(r Reading) []byte {
	return fmt.Appendf(nil, "%.2f,%.2f", r.Temperature, r.Humidity)
}

// Parse decodes a payload produced by Encode and stamps it with at. Only the
// shape is checked: exactly two finite numbers. Failures wrap ErrMalformedPayload.
func Parse(payload []byte, at time.Time) (Reading, error) {
	fields := bytes.Split(bytes.TrimSpace(payload), []byte(","))
	if len(fields) != 2 {
		return Reading{}, fmt.Errorf("%w: want 2 fields, got %d", ErrMalformedPayload, len(fields))
	}

	t, err := parseField(fields[0])
	if err != nil {
		return Reading{}, fmt.Errorf("%w: temperature: %v", ErrMalformedPayload, err)
	}
	h, err := parseField(fields[1])
	if err != nil {
		return Reading{}, fmt.Errorf("%w: humidity: %v", ErrMalformedPayload, err)
	}

	return Reading{Temperature: t, Humidity: h, Time: at}, nil
}

// Validate reports ErrOutOfRange when r falls outside the plausibility limits.
func (r Reading) Validate() error {
	if !(r.Temperature > MinTemperature && r.Temperature < MaxTemperature) {
		return fmt.Errorf("%w: temperature %.2f", ErrOutOfRange, r.Temperature)
	}
	if r.Humidity < MinHumidity || r.Humidity > MaxHumidity {
		return fmt.Errorf("%w: humidity %.2f", ErrOutOfRange, r.Humidity)
	}
	return nil
}

func parseField(b []byte) (float64, error) {
	s := string(bytes.TrimSpace(b))
	if s == "" {
		return 0, errors.New("empty field")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}

// Round2 rounds v to two decimal places, the precision of the wire format.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
