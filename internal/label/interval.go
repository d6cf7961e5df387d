// Package label holds interval labels and the pick protocol that turns
// chart selections into them.
package label

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"
)

// ErrEmptyInterval is returned for an interval whose endpoints coincide or
// are not numbers.
var ErrEmptyInterval = errors.New("interval has no extent")

// Interval is a labeled span. Start < End always holds for values built by
// NewInterval. Units follow the source (native timestamps or seconds).
// Nanosecond endpoints are exact below 2^53 ns (about 104 days), which
// covers boot-relative sensor clocks; epoch-based nanoseconds round to a
// few hundred ns.
type Interval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// NewInterval orders the endpoints, swapping them when reversed.
func NewInterval(a, b float64) (Interval, error) {
	if math.IsNaN(a) || math.IsNaN(b) || math.IsInf(a, 0) || math.IsInf(b, 0) {
		return Interval{}, fmt.Errorf("[%v, %v]: %w", a, b, ErrEmptyInterval)
	}
	if a == b {
		return Interval{}, fmt.Errorf("[%v, %v]: %w", a, b, ErrEmptyInterval)
	}
	if a > b {
		a, b = b, a
	}
	return Interval{Start: a, End: b}, nil
}

// Contains reports whether v lies in the closed interval.
func (iv Interval) Contains(v float64) bool { return v >= iv.Start && v <= iv.End }

func (iv Interval) Duration() float64 { return iv.End - iv.Start }

func (iv Interval) String() string { return fmt.Sprintf("[%g, %g]", iv.Start, iv.End) }

// LabelSet is the labels of one recording.
type LabelSet struct {
	SourceID  string
	Intervals []Interval
}

// Contains reports whether any interval contains v.
func (ls LabelSet) Contains(v float64) bool {
	for _, iv := range ls.Intervals {
		if iv.Contains(v) {
			return true
		}
	}
	return false
}

// SourceID derives a label set key from a recording path: the base name
// without its extension.
func SourceID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
