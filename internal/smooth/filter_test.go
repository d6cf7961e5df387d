package smooth_test

import (
	"errors"
	"math"
	"slices"
	"testing"

	"pgregory.net/rapid"

	"github.com/fakeyudi/jumplab/internal/sensor"
	"github.com/fakeyudi/jumplab/internal/smooth"
)

type fataler interface {
	Helper()
	Fatalf(format string, args ...any)
}

func series(t fataler, cols map[string][]float64) sensor.ChannelSeries {
	t.Helper()
	var n int
	for _, c := range cols {
		n = len(c)
	}
	ts := make([]int64, n)
	for i := range ts {
		ts[i] = int64(i) * 10_000_000
	}
	s, err := sensor.SeriesFromColumns("accelerometer", ts, cols)
	if err != nil {
		t.Fatalf("SeriesFromColumns: %v", err)
	}
	return s
}

func column(t fataler, s sensor.ChannelSeries, name string) []float64 {
	t.Helper()
	col, ok := s.Column(name)
	if !ok {
		t.Fatalf("column %q missing", name)
	}
	return col
}

func sameFloats(a, b []float64) bool {
	return slices.EqualFunc(a, b, func(x, y float64) bool {
		return x == y || (math.IsNaN(x) && math.IsNaN(y))
	})
}

func TestMedianFilterTruncatesAtEdges(t *testing.T) {
	s := series(t, map[string][]float64{"z": {1, 100, 3, 4, 5}})
	out, err := smooth.MedianFilter(s, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{50.5, 3, 4, 4, 4.5}
	if got := column(t, out, "z"); !sameFloats(got, want) {
		t.Errorf("median = %v, want %v", got, want)
	}
}

func TestMeanFilterEvenWindow(t *testing.T) {
	s := series(t, map[string][]float64{"z": {1, 2, 3, 4, 5}})
	out, err := smooth.MeanFilter(s, 4)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{1.5, 2, 2.5, 3.5, 4}
	if got := column(t, out, "z"); !sameFloats(got, want) {
		t.Errorf("mean = %v, want %v", got, want)
	}
}

func TestFiltersSkipNaN(t *testing.T) {
	nan := math.NaN()
	s := series(t, map[string][]float64{"z": {nan, 2, nan, nan, nan, nan}})
	out, err := smooth.MeanFilter(s, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{2, 2, 2, nan, nan, nan}
	if got := column(t, out, "z"); !sameFloats(got, want) {
		t.Errorf("mean = %v, want %v", got, want)
	}
}

func TestFilterLeavesSourceUntouched(t *testing.T) {
	s := series(t, map[string][]float64{"z": {1, 9, 1}})
	if _, err := smooth.MedianFilter(s, 3); err != nil {
		t.Fatal(err)
	}
	if got := column(t, s, "z"); !sameFloats(got, []float64{1, 9, 1}) {
		t.Errorf("source changed: %v", got)
	}
}

func TestInvalidWindow(t *testing.T) {
	s := series(t, map[string][]float64{"z": {1}})
	for _, w := range []int{0, -3} {
		if _, err := smooth.MeanFilter(s, w); !errors.Is(err, smooth.ErrInvalidWindow) {
			t.Errorf("window %d: got %v", w, err)
		}
	}
}

func TestEmptySeriesIsNotAnError(t *testing.T) {
	s := series(t, map[string][]float64{"z": {}})
	out, err := smooth.Apply(s, smooth.DefaultConfig())
	if err != nil {
		t.Fatalf("Apply on empty series: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("Len = %d", out.Len())
	}
}

func TestApplyOrderIsExplicit(t *testing.T) {
	s := series(t, map[string][]float64{"z": {0, 0, 9, 0, 0, 9, 9, 0}})
	cfg := smooth.Config{MedianWindow: 3, MeanWindow: 3}

	none, err := smooth.Apply(s, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !sameFloats(column(t, none, "z"), column(t, s, "z")) {
		t.Error("empty order must not smooth")
	}

	cfg.Order = []smooth.Stage{smooth.StageMedian, smooth.StageMean}
	a, err := smooth.Apply(s, cfg)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Order = []smooth.Stage{smooth.StageMean, smooth.StageMedian}
	b, err := smooth.Apply(s, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if sameFloats(column(t, a, "z"), column(t, b, "z")) {
		t.Error("median,mean and mean,median should differ on this input")
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		cfg  smooth.Config
		want error
	}{
		{smooth.DefaultConfig(), nil},
		{smooth.Config{Order: []smooth.Stage{smooth.StageMedian}}, smooth.ErrInvalidWindow},
		{smooth.Config{MeanWindow: 3, Order: []smooth.Stage{"gauss"}}, smooth.ErrInvalidOrder},
		{smooth.Config{MeanWindow: 3, Order: []smooth.Stage{smooth.StageMean, smooth.StageMean}}, smooth.ErrInvalidOrder},
		{smooth.Config{}, nil},
	}
	for i, tc := range cases {
		if err := tc.cfg.Validate(); !errors.Is(err, tc.want) {
			t.Errorf("case %d: Validate = %v, want %v", i, err, tc.want)
		}
	}
}

func TestParseOrder(t *testing.T) {
	got, err := smooth.ParseOrder(" Mean, median ")
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []smooth.Stage{smooth.StageMean, smooth.StageMedian}) {
		t.Errorf("ParseOrder = %v", got)
	}
	if got, err := smooth.ParseOrder("none"); err != nil || len(got) != 0 {
		t.Errorf("none: %v %v", got, err)
	}
	if _, err := smooth.ParseOrder("median,blur"); !errors.Is(err, smooth.ErrInvalidOrder) {
		t.Errorf("bad stage: %v", err)
	}
}

func drawColumn(t *rapid.T, n int, label string) []float64 {
	col := make([]float64, n)
	for i := range col {
		if rapid.IntRange(0, 9).Draw(t, label+"_null") == 0 {
			col[i] = math.NaN()
			continue
		}
		col[i] = rapid.Float64Range(-50, 50).Draw(t, label)
	}
	return col
}

// Feature: jumplab, Property 2: window 1 is the identity for both filters
func TestWindowOneIdentityProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 60).Draw(rt, "n")
		s := series(rt, map[string][]float64{"x": drawColumn(rt, n, "x"), "y": drawColumn(rt, n, "y")})
		for _, f := range []func(sensor.ChannelSeries, int) (sensor.ChannelSeries, error){smooth.MedianFilter, smooth.MeanFilter} {
			out, err := f(s, 1)
			if err != nil {
				rt.Fatal(err)
			}
			for _, name := range []string{"x", "y"} {
				if !sameFloats(column(rt, out, name), column(rt, s, name)) {
					rt.Fatalf("column %s changed", name)
				}
			}
		}
	})
}

// Feature: jumplab, Property 3: smoothing preserves length and stays within the input range
func TestSmoothingBoundsProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 80).Draw(rt, "n")
		col := make([]float64, n)
		for i := range col {
			col[i] = rapid.Float64Range(-50, 50).Draw(rt, "v")
		}
		w := rapid.IntRange(1, 30).Draw(rt, "window")
		s := series(rt, map[string][]float64{"z": col})
		lo, hi := slices.Min(col), slices.Max(col)
		for _, f := range []func(sensor.ChannelSeries, int) (sensor.ChannelSeries, error){smooth.MedianFilter, smooth.MeanFilter} {
			out, err := f(s, w)
			if err != nil {
				rt.Fatal(err)
			}
			got := column(rt, out, "z")
			if len(got) != n {
				rt.Fatalf("length %d, want %d", len(got), n)
			}
			for i, v := range got {
				if v < lo-1e-9 || v > hi+1e-9 {
					rt.Fatalf("value %d = %v outside [%v, %v]", i, v, lo, hi)
				}
			}
		}
	})
}
