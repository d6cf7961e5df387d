// Package features slices a multi-axis channel into fixed windows, labels
// each window from a LabelSet and hands the result to a tabular classifier.
package features

import (
	"errors"
	"fmt"

	"github.com/fakeyudi/jumplab/internal/label"
	"github.com/fakeyudi/jumplab/internal/sensor"
)

// ErrInvalidWindow is returned for a window size or stride below 1.
var ErrInvalidWindow = errors.New("window size and stride must be at least 1")

// Order is the flattening order of a window.
type Order string

const (
	// TimeMajor emits all axes of sample 0, then sample 1, and so on.
	TimeMajor Order = "time-major"
	// AxisMajor emits every sample of the first axis, then the next axis.
	AxisMajor Order = "axis-major"
)

// Options configures Extract.
type Options struct {
	WindowSize int
	Stride     int
	// Axes are flattened in this order. Empty means every column of the
	// series in schema order.
	Axes  []string
	Order Order
}

// DefaultOptions returns 20-sample windows every
// 5 samples over the three accelerometer axes.
func DefaultOptions() Options {
	return Options{WindowSize: 20, Stride: 5, Axes: []string{"x", "y", "z"}, Order: TimeMajor}
}

// Window is one training example.
type Window struct {
	CenterIndex int
	Features    []float64
	Label       int
}

// Extract builds windows starting at 0, Stride, 2*Stride, ... for every start
// below Len()-WindowSize. A window is labeled 1 when the timestamp at its
// centre index lies inside any interval of labels, inclusive.
func Extract(s sensor.ChannelSeries, labels label.LabelSet, opts Options) ([]Window, error) {
	if opts.WindowSize < 1 || opts.Stride < 1 {
		return nil, fmt.Errorf("window %d stride %d: %w", opts.WindowSize, opts.Stride, ErrInvalidWindow)
	}
	axes := opts.Axes
	if len(axes) == 0 {
		axes = s.Fields()
	}
	cols := make([][]float64, len(axes))
	for i, name := range axes {
		col, ok := s.Column(name)
		if !ok {
			return nil, fmt.Errorf("%s.%s: %w", s.Type(), name, sensor.ErrUnknownField)
		}
		cols[i] = col
	}
	order := opts.Order
	if order == "" {
		order = TimeMajor
	}
	if order != TimeMajor && order != AxisMajor {
		return nil, fmt.Errorf("unknown feature order %q", order)
	}

	ts := s.Timestamps()
	w := opts.WindowSize
	var out []Window
	for start := 0; start < len(ts)-w; start += opts.Stride {
		vec := make([]float64, 0, w*len(cols))
		if order == TimeMajor {
			for j := start; j < start+w; j++ {
				for _, col := range cols {
					vec = append(vec, col[j])
				}
			}
		} else {
			for _, col := range cols {
				vec = append(vec, col[start:start+w]...)
			}
		}
		center := start + w/2
		win := Window{CenterIndex: center, Features: vec}
		if labels.Contains(float64(ts[center])) {
			win.Label = 1
		}
		out = append(out, win)
	}
	return out, nil
}

// Dataset is the tabular form handed to a classifier.
type Dataset struct {
	X [][]float64
	Y []int
}

// Append adds windows to the dataset.
func (d *Dataset) Append(ws []Window) {
	for _, w := range ws {
		d.X = append(d.X, w.Features)
		d.Y = append(d.Y, w.Label)
	}
}

func (d Dataset) Len() int { return len(d.Y) }

// Positives counts windows labeled 1.
func (d Dataset) Positives() int {
	var n int
	for _, y := range d.Y {
		n += y
	}
	return n
}
