package features_test

import (
	"errors"
	"slices"
	"testing"

	"pgregory.net/rapid"

	"github.com/fakeyudi/jumplab/internal/features"
	"github.com/fakeyudi/jumplab/internal/label"
	"github.com/fakeyudi/jumplab/internal/sensor"
)

// threeAxis builds an accelerometer series with x=i, y=100+i, z=200+i and
// timestamps 10*i.
func threeAxis(t *testing.T, n int) sensor.ChannelSeries {
	t.Helper()
	ts := make([]int64, n)
	x, y, z := make([]float64, n), make([]float64, n), make([]float64, n)
	for i := range ts {
		ts[i] = int64(10 * i)
		x[i], y[i], z[i] = float64(i), float64(100+i), float64(200+i)
	}
	s, err := sensor.SeriesFromColumns("accelerometer", ts, map[string][]float64{"x": x, "y": y, "z": z})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestExtractWindowCount(t *testing.T) {
	ws, err := features.Extract(threeAxis(t, 30), label.LabelSet{}, features.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(ws) != 2 {
		t.Fatalf("got %d windows, want 2", len(ws))
	}
	for i, w := range ws {
		if len(w.Features) != 60 {
			t.Errorf("window %d has %d features, want 60", i, len(w.Features))
		}
	}
	if ws[0].CenterIndex != 10 || ws[1].CenterIndex != 15 {
		t.Errorf("centres = %d, %d", ws[0].CenterIndex, ws[1].CenterIndex)
	}
}

func TestExtractExactFitHasNoWindow(t *testing.T) {
	ws, err := features.Extract(threeAxis(t, 20), label.LabelSet{}, features.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(ws) != 0 {
		t.Errorf("got %d windows for length == window", len(ws))
	}
}

func TestExtractFlatteningOrder(t *testing.T) {
	s := threeAxis(t, 4)
	opts := features.Options{WindowSize: 2, Stride: 10, Axes: []string{"x", "z"}}
	ws, err := features.Extract(s, label.LabelSet{}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if want := []float64{0, 200, 1, 201}; !slices.Equal(ws[0].Features, want) {
		t.Errorf("time-major = %v, want %v", ws[0].Features, want)
	}
	opts.Order = features.AxisMajor
	ws, err = features.Extract(s, label.LabelSet{}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if want := []float64{0, 1, 200, 201}; !slices.Equal(ws[0].Features, want) {
		t.Errorf("axis-major = %v, want %v", ws[0].Features, want)
	}
}

func TestExtractCentreContainmentIsInclusive(t *testing.T) {
	// Centres are at indices 10 and 15, timestamps 100 and 150.
	cases := []struct {
		iv   label.Interval
		want []int
	}{
		{label.Interval{Start: 100, End: 120}, []int{1, 0}},
		{label.Interval{Start: 120, End: 150}, []int{0, 1}},
		{label.Interval{Start: 101, End: 149}, []int{0, 0}},
	}
	for _, tc := range cases {
		ls := label.LabelSet{SourceID: "ride", Intervals: []label.Interval{tc.iv}}
		ws, err := features.Extract(threeAxis(t, 30), ls, features.DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		got := []int{ws[0].Label, ws[1].Label}
		if !slices.Equal(got, tc.want) {
			t.Errorf("interval %v: labels %v, want %v", tc.iv, got, tc.want)
		}
	}
}

func TestExtractErrors(t *testing.T) {
	s := threeAxis(t, 30)
	if _, err := features.Extract(s, label.LabelSet{}, features.Options{WindowSize: 0, Stride: 1}); !errors.Is(err, features.ErrInvalidWindow) {
		t.Errorf("zero window: %v", err)
	}
	opts := features.DefaultOptions()
	opts.Axes = []string{"x", "w"}
	if _, err := features.Extract(s, label.LabelSet{}, opts); !errors.Is(err, sensor.ErrUnknownField) {
		t.Errorf("unknown axis: %v", err)
	}
}

// Feature: jumplab, Property 10: window count and vector length follow from length, window and stride
func TestExtractShapeProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 200).Draw(rt, "n")
		w := rapid.IntRange(1, 40).Draw(rt, "window")
		stride := rapid.IntRange(1, 20).Draw(rt, "stride")
		ts := make([]int64, n)
		col := make([]float64, n)
		for i := range ts {
			ts[i] = int64(i)
		}
		s, err := sensor.SeriesFromColumns("gyroscope", ts, map[string][]float64{"x": col, "y": col})
		if err != nil {
			rt.Fatal(err)
		}
		ws, err := features.Extract(s, label.LabelSet{}, features.Options{WindowSize: w, Stride: stride, Axes: []string{"x", "y"}})
		if err != nil {
			rt.Fatal(err)
		}
		want := 0
		for start := 0; start < n-w; start += stride {
			want++
		}
		if len(ws) != want {
			rt.Fatalf("%d windows, want %d", len(ws), want)
		}
		for _, win := range ws {
			if len(win.Features) != 2*w {
				rt.Fatalf("vector length %d, want %d", len(win.Features), 2*w)
			}
			if win.CenterIndex >= n {
				rt.Fatalf("centre %d outside series of %d", win.CenterIndex, n)
			}
		}
	})
}

type constant int

func (c constant) Fit(X [][]float64, y []int) (features.Predictor, error) { return c, nil }

func (c constant) Predict(X [][]float64) []int {
	out := make([]int, len(X))
	for i := range out {
		out[i] = int(c)
	}
	return out
}

func (c constant) Report(X [][]float64, y []int) string { return "constant" }

func TestTrainSplitsDeterministically(t *testing.T) {
	var ds features.Dataset
	for i := 0; i < 10; i++ {
		ds.Append([]features.Window{{Features: []float64{float64(i)}, Label: i % 2}})
	}
	a, err := features.Train(ds, constant(0), features.DefaultSplit())
	if err != nil {
		t.Fatal(err)
	}
	if a.TrainSize != 8 || a.TestSize != 2 {
		t.Errorf("sizes = %d/%d, want 8/2", a.TrainSize, a.TestSize)
	}
	if a.Report != "constant" {
		t.Errorf("Report = %q", a.Report)
	}

	trainA, testA, _ := features.Split(ds, features.DefaultSplit())
	trainB, testB, _ := features.Split(ds, features.DefaultSplit())
	if !slices.Equal(trainA.Y, trainB.Y) || !slices.Equal(testA.X[0], testB.X[0]) {
		t.Error("same seed gave different splits")
	}
	if trainA.Len()+testA.Len() != ds.Len() {
		t.Error("split lost rows")
	}
}

func TestTrainRejectsTinyDataset(t *testing.T) {
	var ds features.Dataset
	ds.Append([]features.Window{{Features: []float64{1}, Label: 1}})
	if _, err := features.Train(ds, constant(1), features.DefaultSplit()); !errors.Is(err, features.ErrEmptyDataset) {
		t.Errorf("got %v", err)
	}
}
