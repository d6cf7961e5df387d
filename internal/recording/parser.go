// Package recording reads and writes session files: raw recordings from the
// phone logger and processed sessions written back by the pipeline.
package recording

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fakeyudi/jumplab/internal/sensor"
)

// Result is a parsed recording. Skipped holds one *sensor.MalformedRecordError
// per record that could not become an event.
type Result struct {
	Session sensor.Session
	Skipped []*sensor.MalformedRecordError
}

// SessionParser decodes a recording file.
type SessionParser interface {
	Parse(data []byte) (Result, error)
}

// ObjectParser reads a JSON array of flat event objects, the processed
// session shape: {"timestamp": ..., "eventType": ..., <fields>}.
type ObjectParser struct{}

func (p *ObjectParser) Parse(data []byte) (Result, error) {
	return parseArray(data, func(i int, raw json.RawMessage) (sensor.Event, error) {
		return decodeObject(i, raw, "")
	})
}

// PairParser reads a JSON array of ["<class name>", {fields}] pairs, as the
// phone recorder writes them.
type PairParser struct{}

func (p *PairParser) Parse(data []byte) (Result, error) {
	return parseArray(data, decodePair)
}

// AutoParser accepts either shape, deciding per record.
type AutoParser struct{}

func (p *AutoParser) Parse(data []byte) (Result, error) {
	return parseArray(data, func(i int, raw json.RawMessage) (sensor.Event, error) {
		if b := bytes.TrimSpace(raw); len(b) > 0 && b[0] == '[' {
			return decodePair(i, raw)
		}
		return decodeObject(i, raw, "")
	})
}

func parseArray(data []byte, decode func(int, json.RawMessage) (sensor.Event, error)) (Result, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return Result{}, fmt.Errorf("not a recording: expected a JSON array: %w", err)
	}
	var (
		res    Result
		events = make([]sensor.Event, 0, len(records))
	)
	for i, raw := range records {
		e, err := decode(i, raw)
		if err != nil {
			var mre *sensor.MalformedRecordError
			if !errors.As(err, &mre) {
				mre = &sensor.MalformedRecordError{Index: i, Reason: err.Error()}
			}
			res.Skipped = append(res.Skipped, mre)
			continue
		}
		events = append(events, e)
	}
	res.Session = sensor.NewSession(events)
	return res, nil
}

func decodeObject(i int, raw json.RawMessage, typeHint string) (sensor.Event, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return sensor.Event{}, &sensor.MalformedRecordError{Index: i, Reason: "record is not an object"}
	}
	return sensor.DecodeObject(i, obj, typeHint)
}

func decodePair(i int, raw json.RawMessage) (sensor.Event, error) {
	var pair []json.RawMessage
	if err := json.Unmarshal(raw, &pair); err != nil || len(pair) != 2 {
		return sensor.Event{}, &sensor.MalformedRecordError{Index: i, Reason: "record is not a [type, object] pair"}
	}
	var class string
	if err := json.Unmarshal(pair[0], &class); err != nil {
		return sensor.Event{}, &sensor.MalformedRecordError{Index: i, Reason: "pair type is not a string"}
	}
	return decodeObject(i, pair[1], sensor.TypeFromClass(class))
}
