package sensor_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"pgregory.net/rapid"

	"github.com/fakeyudi/jumplab/internal/sensor"
)

func decode(t *testing.T, index int, src, hint string) (sensor.Event, error) {
	t.Helper()
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(src), &obj); err != nil {
		t.Fatalf("unmarshal %s: %v", src, err)
	}
	return sensor.DecodeObject(index, obj, hint)
}

func TestDecodeObjectRejectsMissingTimestamp(t *testing.T) {
	cases := []string{
		`{"eventType":"accelerometer","x":1}`,
		`{"timestamp":null,"x":1}`,
		`{"timestamp":"soon","x":1}`,
		`{"timestamp":{"ns":1}}`,
	}
	for i, src := range cases {
		_, err := decode(t, i, src, "")
		var mre *sensor.MalformedRecordError
		if !errors.As(err, &mre) {
			t.Fatalf("case %d: expected *MalformedRecordError, got %v", i, err)
		}
		if mre.Index != i {
			t.Errorf("case %d: Index = %d", i, mre.Index)
		}
	}
}

func TestDecodeObjectKeepsOpaqueFields(t *testing.T) {
	e, err := decode(t, 0, `{"timestamp":1.9e3,"eventType":"Accelerometer","x":1.5,"y":null,"note":"bump","meta":{"a":1}}`, "")
	if err != nil {
		t.Fatalf("DecodeObject: %v", err)
	}
	if e.Timestamp() != 1900 {
		t.Errorf("Timestamp = %d, want 1900", e.Timestamp())
	}
	if e.Type() != "accelerometer" {
		t.Errorf("Type = %q, want accelerometer", e.Type())
	}
	if _, ok := e.Field("eventType"); ok {
		t.Error("eventType must not be a field")
	}
	if f, _ := e.Field("y"); f.Kind() != sensor.KindNull {
		t.Errorf("y kind = %v, want null", f.Kind())
	}
	note, _ := e.Field("note")
	if note.Kind() != sensor.KindOpaque {
		t.Fatalf("note kind = %v, want opaque", note.Kind())
	}
	out, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"timestamp":1900,"eventType":"accelerometer","x":1.5,"y":null,"meta":{"a":1},"note":"bump"}`
	if string(out) != want {
		t.Errorf("Marshal =\n%s\nwant\n%s", out, want)
	}
}

func TestDecodeObjectTypeSources(t *testing.T) {
	cases := []struct {
		src, hint, want string
	}{
		{`{"timestamp":1,"event_type":"gyroscope"}`, "", "gyroscope"},
		{`{"timestamp":1,"type":"GPS_SPEED"}`, "", "gps_speed"},
		{`{"timestamp":1}`, "", sensor.UnknownEvent},
		{`{"timestamp":1,"eventType":""}`, "", sensor.UnknownEvent},
		{`{"timestamp":1,"eventType":"gyroscope"}`, sensor.TypeFromClass("com.example.mountainbiketrainer.AccelerometerEvent"), "accelerometer"},
		{`{"timestamp":1}`, sensor.TypeFromClass("GPSLocationEvent"), "gps_location"},
		{`{"timestamp":1}`, sensor.TypeFromClass("org.thing.Magnetometer"), "magnetometer"},
	}
	for _, tc := range cases {
		e, err := decode(t, 0, tc.src, tc.hint)
		if err != nil {
			t.Fatalf("%s: %v", tc.src, err)
		}
		if e.Type() != tc.want {
			t.Errorf("%s hint %q: Type = %q, want %q", tc.src, tc.hint, e.Type(), tc.want)
		}
	}
}

func TestClassNameRoundTrip(t *testing.T) {
	for _, typ := range []string{"accelerometer", "gyroscope", "gps_speed", "rotationVector"} {
		if got := sensor.TypeFromClass(sensor.ClassName(typ)); got != typ {
			t.Errorf("TypeFromClass(ClassName(%q)) = %q", typ, got)
		}
	}
	if got := sensor.ClassName("magnetometer"); got != "magnetometer" {
		t.Errorf("ClassName of unknown type = %q", got)
	}
}

func TestNumberRejectsNonFinite(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if sensor.Number(v).Kind() != sensor.KindNull {
			t.Errorf("Number(%v) should be null", v)
		}
	}
}

func TestEventWithNumbersDoesNotAlias(t *testing.T) {
	e := sensor.NewEvent(5, "accelerometer", map[string]sensor.Field{
		"x": sensor.Number(1), "timestamp": sensor.Number(9),
	})
	if _, ok := e.Field("timestamp"); ok {
		t.Fatal("reserved key kept as field")
	}
	f := e.WithNumbers(map[string]float64{"x": 2, "y": 3})
	if v, _ := mustField(t, e, "x").Float(); v != 1 {
		t.Errorf("original x changed to %v", v)
	}
	if v, _ := mustField(t, f, "x").Float(); v != 2 {
		t.Errorf("new x = %v, want 2", v)
	}
	if _, ok := f.Field("y"); ok {
		t.Error("WithNumbers added an absent field")
	}
}

func mustField(t *testing.T, e sensor.Event, name string) sensor.Field {
	t.Helper()
	f, ok := e.Field(name)
	if !ok {
		t.Fatalf("field %q missing", name)
	}
	return f
}

func TestNewSessionStableOnTies(t *testing.T) {
	events := []sensor.Event{
		sensor.NewEvent(20, "gyroscope", nil),
		sensor.NewEvent(10, "gyroscope", map[string]sensor.Field{"x": sensor.Number(1)}),
		sensor.NewEvent(10, "accelerometer", map[string]sensor.Field{"x": sensor.Number(2)}),
		sensor.NewEvent(10, "barometer", nil),
	}
	s := sensor.NewSession(events)
	wantTypes := []string{"gyroscope", "accelerometer", "barometer", "gyroscope"}
	for i, e := range s.Events() {
		if e.Type() != wantTypes[i] {
			t.Errorf("event %d type = %q, want %q", i, e.Type(), wantTypes[i])
		}
	}
	if got := s.Types(); len(got) != 3 || got[0] != "gyroscope" {
		t.Errorf("Types = %v", got)
	}
}

func TestEmptySessionMarshalsAsArray(t *testing.T) {
	out, err := json.Marshal(sensor.NewSession(nil))
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "[]" {
		t.Errorf("got %s, want []", out)
	}
}

// Feature: jumplab, Property 1: Session order is ascending by timestamp
func TestSessionSortedProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 40).Draw(t, "n")
		events := make([]sensor.Event, n)
		for i := range events {
			ts := rapid.Int64Range(0, 20).Draw(t, "ts")
			events[i] = sensor.NewEvent(ts, rapid.SampledFrom([]string{"accelerometer", "gyroscope"}).Draw(t, "type"), nil)
		}
		s := sensor.NewSession(events)
		if s.Len() != n {
			t.Fatalf("Len = %d, want %d", s.Len(), n)
		}
		for i := 1; i < s.Len(); i++ {
			if s.At(i-1).Timestamp() > s.At(i).Timestamp() {
				t.Fatalf("events %d and %d out of order", i-1, i)
			}
		}
	})
}

func TestChannelSeriesColumns(t *testing.T) {
	events := []sensor.Event{
		sensor.NewEvent(0, "accelerometer", map[string]sensor.Field{
			"x": sensor.Number(1), "z": sensor.Number(3), "tag": sensor.Opaque(json.RawMessage(`"a"`)),
		}),
		sensor.NewEvent(1_000_000_000, "accelerometer", map[string]sensor.Field{
			"x": sensor.Null(), "z": sensor.Number(4), "tag": sensor.Number(1),
		}),
	}
	s := sensor.NewChannelSeries("accelerometer", events)
	if got := s.Fields(); len(got) != 2 || got[0] != "x" || got[1] != "z" {
		t.Fatalf("Fields = %v, want [x z]", got)
	}
	x, _ := s.Column("x")
	if x[0] != 1 || !math.IsNaN(x[1]) {
		t.Errorf("x = %v", x)
	}
	if _, ok := s.Column("tag"); ok {
		t.Error("mixed opaque field became a column")
	}
	if rel := s.RelativeSeconds(); rel[1] != 1 {
		t.Errorf("RelativeSeconds = %v", rel)
	}

	smoothed, err := s.WithValues(map[string][]float64{"x": {7, 8}})
	if err != nil {
		t.Fatalf("WithValues: %v", err)
	}
	out := smoothed.Events()
	if v, _ := mustField(t, out[1], "x").Float(); v != 8 {
		t.Errorf("x[1] = %v, want 8", v)
	}
	if tag := mustField(t, out[0], "tag"); tag.Kind() != sensor.KindOpaque {
		t.Errorf("tag lost its opaque value")
	}
	if orig, _ := s.Column("x"); orig[0] != 1 {
		t.Error("WithValues mutated the source series")
	}

	if _, err := s.WithValues(map[string][]float64{"x": {1}}); !errors.Is(err, sensor.ErrLengthMismatch) {
		t.Errorf("short column: got %v", err)
	}
	if _, err := s.WithValues(map[string][]float64{"q": {1, 2}}); !errors.Is(err, sensor.ErrUnknownField) {
		t.Errorf("unknown column: got %v", err)
	}
}

func TestMagnitude(t *testing.T) {
	s, err := sensor.SeriesFromColumns("accelerometer", []int64{0, 1}, map[string][]float64{
		"x": {3, math.NaN()}, "y": {4, 0}, "z": {0, 0},
	})
	if err != nil {
		t.Fatal(err)
	}
	m, err := sensor.Magnitude(s, "x", "y", "z")
	if err != nil {
		t.Fatalf("Magnitude: %v", err)
	}
	col, _ := m.Column(sensor.MagnitudeField)
	if col[0] != 5 || !math.IsNaN(col[1]) {
		t.Errorf("magnitude = %v", col)
	}
	if _, err := sensor.Magnitude(s, "x", "w"); !errors.Is(err, sensor.ErrUnknownField) {
		t.Errorf("missing field: got %v", err)
	}
}
