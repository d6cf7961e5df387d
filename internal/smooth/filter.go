// Package smooth applies centred rolling filters to the numeric columns of a
// sensor.ChannelSeries.
//
// Windows are clipped at the ends of the series instead of padded, so the
// first and last samples are smoothed over fewer neighbours and the output
// always has the input's length. NaN samples are skipped inside a window; a
// window with no numbers yields NaN.
package smooth

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/fakeyudi/jumplab/internal/sensor"
)

// MedianFilter replaces every numeric column with its rolling median.
func MedianFilter(s sensor.ChannelSeries, window int) (sensor.ChannelSeries, error) {
	return filterColumns(s, window, median)
}

// MeanFilter replaces every numeric column with its rolling mean.
func MeanFilter(s sensor.ChannelSeries, window int) (sensor.ChannelSeries, error) {
	return filterColumns(s, window, mean)
}

// Apply runs the stages of c over s in order.
func Apply(s sensor.ChannelSeries, c Config) (sensor.ChannelSeries, error) {
	if err := c.Validate(); err != nil {
		return sensor.ChannelSeries{}, err
	}
	var err error
	for _, st := range c.Order {
		switch st {
		case StageMedian:
			s, err = MedianFilter(s, c.MedianWindow)
		case StageMean:
			s, err = MeanFilter(s, c.MeanWindow)
		}
		if err != nil {
			return sensor.ChannelSeries{}, fmt.Errorf("%s stage: %w", st, err)
		}
	}
	return s, nil
}

func filterColumns(s sensor.ChannelSeries, window int, reduce func([]float64) float64) (sensor.ChannelSeries, error) {
	if window < 1 {
		return sensor.ChannelSeries{}, fmt.Errorf("window %d: %w", window, ErrInvalidWindow)
	}
	if window == 1 || s.Len() == 0 {
		return s, nil
	}
	cols := s.Columns()
	for name, col := range cols {
		cols[name] = Rolling(col, window, reduce)
	}
	return s.WithValues(cols)
}

// Rolling reduces a centred window around every sample. For window w the
// window of sample i spans [i-w/2, i+(w-1)/2], clipped to the slice.
func Rolling(values []float64, window int, reduce func([]float64) float64) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	before, after := window/2, (window-1)/2
	buf := make([]float64, 0, window)
	for i := range values {
		start := max(0, i-before)
		end := min(len(values), i+after+1)
		buf = buf[:0]
		for _, v := range values[start:end] {
			if !math.IsNaN(v) {
				buf = append(buf, v)
			}
		}
		if len(buf) == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = reduce(buf)
	}
	return out
}

func mean(values []float64) float64 {
	return stat.Mean(values, nil)
}

// median sorts values in place. For an even count it returns the average
// of the two middle values.
func median(values []float64) float64 {
	sort.Float64s(values)
	n := len(values)
	if n%2 == 1 {
		return values[n/2]
	}
	return (values[n/2-1] + values[n/2]) / 2
}
