package views

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/JonathanMishayel/Smart-Study-Area-IoT-Dashboard/internal/reading"
)

const (
	chartWidth  = 600
	chartHeight = 220
	gaugeTicks  = 6
)

// SafeRange returns [lo, hi] unchanged when it is a proper interval. A
// degenerate or inverted range is widened by expand around lo, and a NaN
// bound falls back to [0, 1].
func SafeRange(lo, hi, expand float64) (float64, float64) {
	if math.IsNaN(lo) || math.IsNaN(hi) {
		return 0, 1
	}
	if hi <= lo {
		return lo - expand, lo + expand
	}
	return lo, hi
}

// Ticks splits [lo, hi] into n evenly spaced values rounded to two decimals.
func Ticks(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{reading.Round2(lo)}
	}
	ticks := make([]float64, n)
	for i := range n {
		ticks[i] = reading.Round2(lo + float64(i)*(hi-lo)/float64(n-1))
	}
	return ticks
}

// Correlation is the Pearson coefficient of xs and ys. ok is false when it
// is undefined: fewer than two points, mismatched lengths or a constant
// series.
func Correlation(xs, ys []float64) (r float64, ok bool) {
	n := len(xs)
	if n < 2 || n != len(ys) {
		return 0, false
	}

	var mx, my float64
	for i := range n {
		mx += xs[i]
		my += ys[i]
	}
	mx /= float64(n)
	my /= float64(n)

	var sxy, sxx, syy float64
	for i := range n {
		dx, dy := xs[i]-mx, ys[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, false
	}

	r = sxy / math.Sqrt(sxx*syy)
	return math.Max(-1, math.Min(1, r)), true
}

// SeriesStats summarises one series of the visible window.
type SeriesStats struct {
	Avg float64
	Min float64
	Max float64
}

func Stats(values []float64) SeriesStats {
	if len(values) == 0 {
		return SeriesStats{}
	}
	s := SeriesStats{Min: values[0], Max: values[0]}
	var sum float64
	for _, v := range values {
		sum += v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	s.Avg = sum / float64(len(values))
	return s
}

// Smooth replaces each value with the mean of the values at most span
// older than it. A zero span returns values unchanged.
func Smooth(times []time.Time, values []float64, span time.Duration) []float64 {
	if span <= 0 || len(values) != len(times) {
		return values
	}

	out := make([]float64, len(values))
	start := 0
	var sum float64
	for i, v := range values {
		sum += v
		for times[i].Sub(times[start]) > span {
			sum -= values[start]
			start++
		}
		out[i] = sum / float64(i-start+1)
	}
	return out
}

// Point is one plotted sample in SVG user units.
type Point struct {
	X, Y float64
}

// plot maps samples onto the chart viewport. Time runs left to right
// between the first and last sample and values are flipped so higher is
// up. A single instant is drawn in the middle.
func plot(times []time.Time, values []float64, lo, hi float64) []Point {
	if len(times) == 0 || len(times) != len(values) {
		return nil
	}

	first, last := times[0], times[len(times)-1]
	span := last.Sub(first)
	points := make([]Point, len(values))
	for i, v := range values {
		x := float64(chartWidth) / 2
		if span > 0 {
			x = float64(times[i].Sub(first)) / float64(span) * chartWidth
		}
		y := chartHeight - (v-lo)/(hi-lo)*chartHeight
		points[i] = Point{X: round1(x), Y: round1(y)}
	}
	return points
}

// polyline renders points as an SVG points attribute.
func polyline(points []Point) string {
	var b strings.Builder
	for i, p := range points {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%.1f,%.1f", p.X, p.Y)
	}
	return b.String()
}

// correlationColor maps [-1, 1] onto a blue-white-red scale.
func correlationColor(r float64) string {
	r = math.Max(-1, math.Min(1, r))
	fade := func(c float64) int { return int(math.Round(255 - (255-c)*math.Abs(r))) }
	if r >= 0 {
		return fmt.Sprintf("#%02x%02x%02x", 178+int(math.Round(77*(1-r))), fade(24), fade(43))
	}
	return fmt.Sprintf("#%02x%02x%02x", fade(33), fade(102), 172+int(math.Round(83*(1+r))))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
