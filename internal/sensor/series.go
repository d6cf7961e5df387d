package sensor

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

var (
	// ErrUnknownField is returned when a series has no numeric column of the
	// requested name.
	ErrUnknownField = errors.New("unknown field")
	// ErrLengthMismatch is returned when a column is not index-aligned with
	// the series timestamps.
	ErrLengthMismatch = errors.New("column length does not match timestamps")
)

// MagnitudeField is the column produced by Magnitude.
const MagnitudeField = "magnitude"

// ChannelSeries is a column view of the events of one type. Every column is
// index-aligned with Timestamps; missing and null values are NaN.
type ChannelSeries struct {
	eventType  string
	timestamps []int64
	fields     []string
	values     map[string][]float64
	// records are the events the columns were taken from, nil for derived
	// series. They carry the opaque fields back out in Events.
	records []Event
}

// NewChannelSeries builds the column view of events, which must all share
// eventType and be in order. A field becomes a column when every value it
// takes is a number or null; other fields are left to the records.
func NewChannelSeries(eventType string, events []Event) ChannelSeries {
	s := ChannelSeries{
		eventType:  eventType,
		timestamps: make([]int64, len(events)),
		values:     make(map[string][]float64),
		records:    slices.Clone(events),
	}
	present := make(map[string]bool)
	opaque := make(map[string]bool)
	for i, e := range events {
		s.timestamps[i] = e.timestamp
		for name, f := range e.fields {
			present[name] = true
			if !f.Numeric() {
				opaque[name] = true
			}
		}
	}
	for name := range present {
		if opaque[name] {
			continue
		}
		col := make([]float64, len(events))
		for i, e := range events {
			col[i] = math.NaN()
			if v, ok := e.fields[name].Float(); ok {
				col[i] = v
			}
		}
		s.values[name] = col
	}
	s.fields = orderFields(eventType, s.values)
	return s
}

// SeriesFromColumns builds a derived series straight from columns.
func SeriesFromColumns(eventType string, timestamps []int64, columns map[string][]float64) (ChannelSeries, error) {
	s := ChannelSeries{
		eventType:  CanonicalType(eventType),
		timestamps: slices.Clone(timestamps),
		values:     make(map[string][]float64, len(columns)),
	}
	for name, col := range columns {
		if len(col) != len(timestamps) {
			return ChannelSeries{}, fmt.Errorf("column %q: %w", name, ErrLengthMismatch)
		}
		s.values[name] = slices.Clone(col)
	}
	s.fields = orderFields(s.eventType, s.values)
	return s, nil
}

func (s ChannelSeries) Type() string { return s.eventType }

func (s ChannelSeries) Len() int { return len(s.timestamps) }

// Fields lists the numeric columns in schema order.
func (s ChannelSeries) Fields() []string { return slices.Clone(s.fields) }

func (s ChannelSeries) Timestamps() []int64 { return slices.Clone(s.timestamps) }

// Column returns a copy of the named column.
func (s ChannelSeries) Column(name string) ([]float64, bool) {
	col, ok := s.values[name]
	if !ok {
		return nil, false
	}
	return slices.Clone(col), true
}

// Columns returns a copy of every column.
func (s ChannelSeries) Columns() map[string][]float64 {
	out := make(map[string][]float64, len(s.values))
	for name, col := range s.values {
		out[name] = slices.Clone(col)
	}
	return out
}

// WithValues returns a copy of s with the given columns replaced. The
// columns must already exist and keep the series length.
func (s ChannelSeries) WithValues(columns map[string][]float64) (ChannelSeries, error) {
	out := s
	out.values = make(map[string][]float64, len(s.values))
	for name, col := range s.values {
		out.values[name] = col
	}
	for name, col := range columns {
		if _, ok := s.values[name]; !ok {
			return ChannelSeries{}, fmt.Errorf("column %q: %w", name, ErrUnknownField)
		}
		if len(col) != len(s.timestamps) {
			return ChannelSeries{}, fmt.Errorf("column %q: %w", name, ErrLengthMismatch)
		}
		out.values[name] = slices.Clone(col)
	}
	return out, nil
}

// Events turns the series back into events. Records keep their opaque and
// absent fields; only the numeric values they carried are replaced.
func (s ChannelSeries) Events() []Event {
	out := make([]Event, len(s.timestamps))
	for i, ts := range s.timestamps {
		row := make(map[string]float64, len(s.values))
		for name, col := range s.values {
			row[name] = col[i]
		}
		if s.records != nil {
			out[i] = s.records[i].WithNumbers(row)
			continue
		}
		fields := make(map[string]Field, len(row))
		for name, v := range row {
			fields[name] = Number(v)
		}
		e := NewEvent(ts, s.eventType, fields)
		e.seq = i
		out[i] = e
	}
	return out
}

// RelativeSeconds returns each timestamp's offset from the first one in
// seconds, assuming nanosecond timestamps.
func (s ChannelSeries) RelativeSeconds() []float64 {
	out := make([]float64, len(s.timestamps))
	if len(s.timestamps) == 0 {
		return out
	}
	t0 := s.timestamps[0]
	for i, ts := range s.timestamps {
		out[i] = float64(ts-t0) / 1e9
	}
	return out
}

// Magnitude derives a single-column series holding the Euclidean norm of
// the named columns. A NaN in any input column gives NaN.
func Magnitude(s ChannelSeries, fields ...string) (ChannelSeries, error) {
	if len(fields) == 0 {
		return ChannelSeries{}, fmt.Errorf("magnitude of no fields: %w", ErrUnknownField)
	}
	cols := make([][]float64, len(fields))
	for i, name := range fields {
		col, ok := s.values[name]
		if !ok {
			return ChannelSeries{}, fmt.Errorf("%s.%s: %w", s.eventType, name, ErrUnknownField)
		}
		cols[i] = col
	}
	mag := make([]float64, len(s.timestamps))
	for i := range mag {
		var sum float64
		for _, col := range cols {
			sum += col[i] * col[i]
		}
		mag[i] = math.Sqrt(sum)
	}
	return SeriesFromColumns(s.eventType, s.timestamps, map[string][]float64{MagnitudeField: mag})
}
