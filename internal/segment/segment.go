// Package segment finds sustained below-threshold episodes ("air time") in
// a smoothed scalar channel.
package segment

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/fakeyudi/jumplab/internal/label"
	"github.com/fakeyudi/jumplab/internal/sensor"
)

// Config controls episode detection. Timestamps are nanoseconds, so the
// durations compare directly against timestamp differences.
type Config struct {
	// Threshold is compared against the absolute sample value.
	Threshold float64
	// MinDuration is exclusive: an episode must last strictly longer.
	MinDuration time.Duration
	// MaxDuration abandons an episode still open after this long.
	// Zero disables the limit.
	MaxDuration time.Duration
}

// DefaultConfig matches the phone recorder's jump detector: 2 m/s² and at
// least 150ms in the air.
func DefaultConfig() Config {
	return Config{Threshold: 2.0, MinDuration: 150 * time.Millisecond}
}

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid segment config")

// Validate rejects a NaN threshold and negative durations. A negative
// MinDuration would let an episode close on its own start.
func (c Config) Validate() error {
	if math.IsNaN(c.Threshold) {
		return fmt.Errorf("threshold is NaN: %w", ErrInvalidConfig)
	}
	if c.MinDuration < 0 {
		return fmt.Errorf("min duration %v is negative: %w", c.MinDuration, ErrInvalidConfig)
	}
	if c.MaxDuration < 0 {
		return fmt.Errorf("max duration %v is negative: %w", c.MaxDuration, ErrInvalidConfig)
	}
	return nil
}

type state int

const (
	ground state = iota
	airborne
)

// Detect runs the ground/airborne state machine over one column.
//
// The machine leaves GROUND on a falling edge (previous |v| >= threshold,
// current |v| < threshold) and returns on the matching rising edge. An
// episode still open when the series ends is dropped. NaN samples are
// skipped and do not count as the previous sample.
func Detect(timestamps []int64, values []float64, cfg Config) []label.Interval {
	var (
		out     []label.Interval
		st      = ground
		start   int64
		prev    float64
		hasPrev bool
	)
	n := min(len(timestamps), len(values))
	for i := 0; i < n; i++ {
		v := values[i]
		if math.IsNaN(v) {
			continue
		}
		cur := math.Abs(v)
		ts := timestamps[i]
		if st == airborne && cfg.MaxDuration > 0 && time.Duration(ts-start) > cfg.MaxDuration {
			st = ground
		}
		if hasPrev {
			switch {
			case st == ground && prev >= cfg.Threshold && cur < cfg.Threshold:
				st = airborne
				start = ts
			case st == airborne && prev < cfg.Threshold && cur >= cfg.Threshold:
				st = ground
				if time.Duration(ts-start) > cfg.MinDuration {
					out = append(out, label.Interval{Start: float64(start), End: float64(ts)})
				}
			}
		}
		prev, hasPrev = cur, true
	}
	return out
}

// DetectSeries detects episodes on a scalar derived from s: the column
// itself for one field, the vector magnitude for several.
func DetectSeries(s sensor.ChannelSeries, fields []string, cfg Config) ([]label.Interval, error) {
	values, err := Scalar(s, fields)
	if err != nil {
		return nil, err
	}
	return Detect(s.Timestamps(), values, cfg), nil
}

// Scalar resolves the channel Detect runs on.
func Scalar(s sensor.ChannelSeries, fields []string) ([]float64, error) {
	switch len(fields) {
	case 0:
		return nil, fmt.Errorf("no segmentation field: %w", sensor.ErrUnknownField)
	case 1:
		col, ok := s.Column(fields[0])
		if !ok {
			return nil, fmt.Errorf("%s.%s: %w", s.Type(), fields[0], sensor.ErrUnknownField)
		}
		return col, nil
	}
	m, err := sensor.Magnitude(s, fields...)
	if err != nil {
		return nil, err
	}
	col, _ := m.Column(sensor.MagnitudeField)
	return col, nil
}
