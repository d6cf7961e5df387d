package recording

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/fakeyudi/jumplab/internal/sensor"
)

// SessionRenderer serializes a Session to bytes.
type SessionRenderer interface {
	Render(s sensor.Session) ([]byte, error)
}

// ObjectRenderer writes the processed-session format: an indented array
// of flat event objects.
type ObjectRenderer struct{}

func (r *ObjectRenderer) Render(s sensor.Session) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	return append(data, '\n'), nil
}

// PairRenderer writes the recorder's raw format, one [class, object] pair
// per event. The object carries the timestamp and fields but no type key.
type PairRenderer struct{}

func (r *PairRenderer) Render(s sensor.Session) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("[")
	for i, e := range s.Events() {
		if i > 0 {
			buf.WriteByte(',')
		}
		class, err := json.Marshal(sensor.ClassName(e.Type()))
		if err != nil {
			return nil, err
		}
		fields := make(map[string]json.RawMessage, len(e.FieldNames())+1)
		fields["timestamp"] = json.RawMessage(fmt.Sprint(e.Timestamp()))
		for _, name := range e.FieldNames() {
			f, _ := e.Field(name)
			raw, err := f.MarshalJSON()
			if err != nil {
				return nil, err
			}
			fields[name] = raw
		}
		obj, err := json.Marshal(fields)
		if err != nil {
			return nil, fmt.Errorf("marshal event %d: %w", i, err)
		}
		buf.WriteString("\n  [")
		buf.Write(class)
		buf.WriteString(", ")
		buf.Write(obj)
		buf.WriteByte(']')
	}
	if s.Len() > 0 {
		buf.WriteByte('\n')
	}
	buf.WriteString("]\n")
	return buf.Bytes(), nil
}

// RendererFor returns the renderer for the raw pair format when pairs is
// set, the object format otherwise.
func RendererFor(pairs bool) SessionRenderer {
	if pairs {
		return &PairRenderer{}
	}
	return &ObjectRenderer{}
}
