// Package synth generates fake phone recordings with planted jumps: free-fall
// spans in the accelerometer stream followed by a landing spike.
package synth

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/fakeyudi/jumplab/internal/label"
	"github.com/fakeyudi/jumplab/internal/sensor"
)

const gravity = 9.81

// Options shapes a generated recording.
type Options struct {
	Seconds float64
	// AccelHz is the accelerometer rate; the gyroscope runs at half of it
	// and GPS at 1 Hz.
	AccelHz int
	Jumps   int
	Seed    uint64
	// StartNs is the first timestamp. Zero picks one from the seed.
	StartNs int64
}

func DefaultOptions() Options {
	return Options{Seconds: 30, AccelHz: 100, Jumps: 3, Seed: 42}
}

// Recording is a generated session and the air time spans planted in it,
// in timestamp units.
type Recording struct {
	Session sensor.Session
	Jumps   []label.Interval
}

type jump struct {
	start, landing int64
}

// Generate builds a recording. Each jump gets its own slot of the timeline
// so jumps never overlap.
func Generate(opts Options) (Recording, error) {
	if opts.Seconds <= 0 || opts.AccelHz <= 0 {
		return Recording{}, errors.New("seconds and rate must be positive")
	}
	if opts.Jumps < 0 {
		return Recording{}, errors.New("jump count must not be negative")
	}
	if opts.Jumps > 0 && opts.Seconds/float64(opts.Jumps) < 2 {
		return Recording{}, fmt.Errorf("%d jumps need at least %ds", opts.Jumps, 2*opts.Jumps)
	}
	f := gofakeit.New(opts.Seed)

	start := opts.StartNs
	if start == 0 {
		start = int64(f.Number(1, 1_000_000)) * int64(time.Millisecond)
	}
	total := int64(opts.Seconds * float64(time.Second))
	step := int64(time.Second) / int64(opts.AccelHz)

	jumps := plantJumps(f, start, total, opts.Jumps, step)

	var events []sensor.Event
	events = append(events, accelerometer(f, start, total, step, jumps)...)
	events = append(events, gyroscope(f, start, total, 2*step)...)
	events = append(events, gps(f, start, total)...)

	rec := Recording{Session: sensor.NewSession(events)}
	for _, j := range jumps {
		rec.Jumps = append(rec.Jumps, label.Interval{Start: float64(j.start), End: float64(j.landing)})
	}
	return rec, nil
}

// plantJumps places one free fall of 500-900ms in the first half of each
// slot, aligned to the accelerometer sample grid.
func plantJumps(f *gofakeit.Faker, start, total int64, n int, step int64) []jump {
	if n == 0 {
		return nil
	}
	slot := total / int64(n)
	out := make([]jump, n)
	for i := range out {
		lo := start + int64(i)*slot + slot/4
		offset := int64(f.Number(0, int(slot/4/step))) * step
		air := int64(f.Number(500, 900)) * int64(time.Millisecond)
		s := align(lo+offset, start, step)
		out[i] = jump{start: s, landing: align(s+air, start, step)}
	}
	return out
}

func align(ts, start, step int64) int64 {
	return start + (ts-start)/step*step
}

func accelerometer(f *gofakeit.Faker, start, total, step int64, jumps []jump) []sensor.Event {
	var out []sensor.Event
	for ts := start; ts < start+total; ts += step {
		x := f.Float64Range(-0.3, 0.3)
		y := f.Float64Range(-0.3, 0.3)
		z := gravity + f.Float64Range(-0.5, 0.5)
		for _, j := range jumps {
			switch {
			case ts >= j.start && ts < j.landing:
				z = f.Float64Range(-0.3, 0.3)
			case ts >= j.landing && ts < j.landing+3*step:
				z = gravity * f.Float64Range(2, 3)
			}
		}
		out = append(out, sensor.NewEvent(ts, "accelerometer", map[string]sensor.Field{
			"x": sensor.Number(round(x)),
			"y": sensor.Number(round(y)),
			"z": sensor.Number(round(z)),
		}))
	}
	return out
}

func gyroscope(f *gofakeit.Faker, start, total, step int64) []sensor.Event {
	var out []sensor.Event
	for ts := start; ts < start+total; ts += step {
		out = append(out, sensor.NewEvent(ts, "gyroscope", map[string]sensor.Field{
			"x": sensor.Number(round(f.Float64Range(-1, 1))),
			"y": sensor.Number(round(f.Float64Range(-1, 1))),
			"z": sensor.Number(round(f.Float64Range(-1, 1))),
		}))
	}
	return out
}

func gps(f *gofakeit.Faker, start, total int64) []sensor.Event {
	var out []sensor.Event
	lat := f.Float64Range(45, 47)
	lon := f.Float64Range(6, 10)
	for ts := start; ts < start+total; ts += int64(time.Second) {
		out = append(out, sensor.NewEvent(ts, "gps_speed", map[string]sensor.Field{
			"speedMps":    sensor.Number(round(f.Float64Range(2, 9))),
			"accuracyMps": sensor.Number(round(f.Float64Range(0.2, 1.5))),
		}))
		lat += f.Float64Range(-1e-4, 1e-4)
		lon += f.Float64Range(-1e-4, 1e-4)
		out = append(out, sensor.NewEvent(ts, "gps_location", map[string]sensor.Field{
			"latitude":           sensor.Number(lat),
			"longitude":          sensor.Number(lon),
			"altitude":           sensor.Number(round(f.Float64Range(800, 1200))),
			"accuracyHorizontal": sensor.Null(),
			"provider":           sensor.Opaque([]byte(`"gps"`)),
		}))
	}
	return out
}

// round keeps four decimals, like the recorder's output.
func round(v float64) float64 { return math.Round(v*1e4) / 1e4 }
