package sensor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// MalformedRecordError is returned for a raw record that cannot become an
// Event, typically because it has no usable timestamp.
type MalformedRecordError struct {
	Index  int
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record %d: %s", e.Index, e.Reason)
}

// DecodeObject builds an Event from a decoded JSON object. index is the
// record's position in its file. typeHint, when non-empty, overrides any
// type key inside the object (the pair format carries the type outside).
func DecodeObject(index int, obj map[string]json.RawMessage, typeHint string) (Event, error) {
	rawTS, ok := obj["timestamp"]
	if !ok {
		return Event{}, &MalformedRecordError{Index: index, Reason: "missing timestamp"}
	}
	ts, err := parseTimestamp(rawTS)
	if err != nil {
		return Event{}, &MalformedRecordError{Index: index, Reason: err.Error()}
	}

	typ := typeHint
	if typ == "" {
		for _, key := range []string{"eventType", "event_type", "type"} {
			if raw, ok := obj[key]; ok {
				var s string
				if json.Unmarshal(raw, &s) == nil && s != "" {
					typ = s
					break
				}
			}
		}
	}

	fields := make(map[string]Field, len(obj))
	for k, raw := range obj {
		if isReserved(k) {
			continue
		}
		fields[k] = decodeField(raw)
	}
	e := NewEvent(ts, typ, fields)
	e.seq = index
	return e, nil
}

func parseTimestamp(raw json.RawMessage) (int64, error) {
	s := string(bytes.TrimSpace(raw))
	if s == "" || s == "null" {
		return 0, fmt.Errorf("timestamp is null")
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	// Only JSON numbers are accepted; quoted strings fail ParseFloat too.
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("timestamp %s is not numeric", s)
	}
	if f > math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("timestamp %s out of range", s)
	}
	return int64(math.Trunc(f)), nil
}

func decodeField(raw json.RawMessage) Field {
	s := bytes.TrimSpace(raw)
	if len(s) == 0 || string(s) == "null" {
		return Null()
	}
	if c := s[0]; c == '-' || (c >= '0' && c <= '9') {
		if f, err := strconv.ParseFloat(string(s), 64); err == nil {
			return Number(f)
		}
	}
	return Opaque(s)
}
