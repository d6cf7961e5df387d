package synth

import (
	"encoding/json"
	"testing"

	"pgregory.net/rapid"

	"github.com/fakeyudi/jumplab/internal/demux"
	"github.com/fakeyudi/jumplab/internal/segment"
)

func TestGenerateDeterministic(t *testing.T) {
	opts := DefaultOptions()
	a, err := Generate(opts)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := Generate(opts)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	ja, _ := json.Marshal(a.Session)
	jb, _ := json.Marshal(b.Session)
	if string(ja) != string(jb) {
		t.Fatal("same seed produced different sessions")
	}

	opts.Seed++
	c, err := Generate(opts)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	jc, _ := json.Marshal(c.Session)
	if string(ja) == string(jc) {
		t.Error("different seeds produced the same session")
	}
}

func TestGenerateChannels(t *testing.T) {
	rec, err := Generate(Options{Seconds: 4, AccelHz: 100, Jumps: 1, Seed: 1, StartNs: 1_000})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	byType := demux.Split(rec.Session)
	want := map[string]int{"accelerometer": 400, "gyroscope": 200, "gps_speed": 4, "gps_location": 4}
	for typ, n := range want {
		if got := byType[typ].Len(); got != n {
			t.Errorf("%s: %d samples, want %d", typ, got, n)
		}
	}
	if first := rec.Session.At(0).Timestamp(); first != 1_000 {
		t.Errorf("first timestamp = %d, want 1000", first)
	}
	loc := byType["gps_location"]
	if _, ok := loc.Column("provider"); ok {
		t.Error("opaque provider became a numeric column")
	}
}

func TestGenerateRejects(t *testing.T) {
	for name, opts := range map[string]Options{
		"no seconds": {AccelHz: 100},
		"no rate":    {Seconds: 10},
		"negative":   {Seconds: 10, AccelHz: 100, Jumps: -1},
		"crowded":    {Seconds: 5, AccelHz: 100, Jumps: 3},
	} {
		if _, err := Generate(opts); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

// Feature: jumplab, Property 14: Planted jumps are recovered from raw data
func TestPlantedJumpsDetected(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		opts := Options{
			Seconds: float64(rapid.IntRange(4, 40).Draw(t, "seconds")),
			AccelHz: 100,
			Seed:    rapid.Uint64().Draw(t, "seed"),
		}
		opts.Jumps = rapid.IntRange(0, int(opts.Seconds)/2).Draw(t, "jumps")

		rec, err := Generate(opts)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		acc := demux.Split(rec.Session)["accelerometer"]
		got, err := segment.DetectSeries(acc, []string{"x", "y", "z"}, segment.DefaultConfig())
		if err != nil {
			t.Fatalf("DetectSeries: %v", err)
		}
		if len(got) != len(rec.Jumps) {
			t.Fatalf("detected %d jumps, planted %d", len(got), len(rec.Jumps))
		}
		for i := range got {
			if got[i] != rec.Jumps[i] {
				t.Fatalf("jump %d: detected %v, planted %v", i, got[i], rec.Jumps[i])
			}
		}
	})
}
