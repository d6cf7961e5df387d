// Package sensor models heterogeneous readings captured during one recording
// session: accelerometer, gyroscope, barometer, GPS and anything else the
// recorder emitted.
package sensor

import (
	"bytes"
	"encoding/json"
	"math"
	"slices"
	"strconv"
)

// FieldKind tells numeric values apart from values smoothing must not touch.
type FieldKind uint8

const (
	KindNull FieldKind = iota
	KindNumber
	KindOpaque
)

// Field is one named value of a reading. Opaque values (strings, objects,
// booleans) are kept verbatim so they survive a processing pass unchanged.
type Field struct {
	kind FieldKind
	num  float64
	raw  json.RawMessage
}

// Number returns a numeric field. NaN and infinities become null because
// they have no JSON representation.
func Number(v float64) Field {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Null()
	}
	return Field{kind: KindNumber, num: v}
}

// Null returns an explicit null field.
func Null() Field { return Field{kind: KindNull} }

// Opaque wraps a raw JSON value that is carried through untouched.
func Opaque(raw json.RawMessage) Field {
	return Field{kind: KindOpaque, raw: slices.Clone(raw)}
}

func (f Field) Kind() FieldKind { return f.kind }

// Float returns the numeric value. ok is false for null and opaque fields.
func (f Field) Float() (v float64, ok bool) {
	if f.kind != KindNumber {
		return 0, false
	}
	return f.num, true
}

// Numeric reports whether the field can live in a numeric column
// (a number or a null).
func (f Field) Numeric() bool { return f.kind != KindOpaque }

// Equal compares kind and value.
func (f Field) Equal(o Field) bool {
	if f.kind != o.kind {
		return false
	}
	switch f.kind {
	case KindNumber:
		return f.num == o.num
	case KindOpaque:
		return bytes.Equal(f.raw, o.raw)
	}
	return true
}

func (f Field) MarshalJSON() ([]byte, error) {
	switch f.kind {
	case KindNumber:
		return strconv.AppendFloat(nil, f.num, 'g', -1, 64), nil
	case KindOpaque:
		return slices.Clone(f.raw), nil
	}
	return []byte("null"), nil
}

// Event is one timestamped reading. It is immutable: every transformation
// returns a new Event.
type Event struct {
	timestamp int64
	eventType string
	fields    map[string]Field
	// seq is the position the reading had in its recording. It breaks
	// timestamp ties so merges keep input order.
	seq int
}

// NewEvent builds an event. The type is canonicalised and reserved keys
// (timestamp and the event type keys) are dropped from fields.
func NewEvent(timestamp int64, eventType string, fields map[string]Field) Event {
	own := make(map[string]Field, len(fields))
	for k, v := range fields {
		if isReserved(k) {
			continue
		}
		own[k] = v
	}
	return Event{
		timestamp: timestamp,
		eventType: CanonicalType(eventType),
		fields:    own,
	}
}

func (e Event) Timestamp() int64 { return e.timestamp }

func (e Event) Type() string { return e.eventType }

// Field returns the named field and whether the reading carries it.
func (e Event) Field(name string) (Field, bool) {
	f, ok := e.fields[name]
	return f, ok
}

// FieldNames lists the fields in schema order: fields known for the event
// type first, then extension fields sorted by name.
func (e Event) FieldNames() []string {
	return orderFields(e.eventType, e.fields)
}

// Known returns the fields the schema defines for this event type.
func (e Event) Known() map[string]Field {
	out := make(map[string]Field)
	for _, name := range KnownFields(e.eventType) {
		if f, ok := e.fields[name]; ok {
			out[name] = f
		}
	}
	return out
}

// Extensions returns fields the schema does not know about.
func (e Event) Extensions() map[string]Field {
	out := make(map[string]Field)
	for name, f := range e.fields {
		if !IsKnownField(e.eventType, name) {
			out[name] = f
		}
	}
	return out
}

// WithNumbers returns a copy of e where each named field the event already
// carries is replaced by the given value. Fields the event lacks stay absent.
func (e Event) WithNumbers(values map[string]float64) Event {
	out := e
	out.fields = make(map[string]Field, len(e.fields))
	for k, v := range e.fields {
		out.fields[k] = v
	}
	for name, v := range values {
		if _, ok := out.fields[name]; ok {
			out.fields[name] = Number(v)
		}
	}
	return out
}

// Equal reports whether two events carry the same timestamp, type and fields.
func (e Event) Equal(o Event) bool {
	if e.timestamp != o.timestamp || e.eventType != o.eventType || len(e.fields) != len(o.fields) {
		return false
	}
	for k, f := range e.fields {
		g, ok := o.fields[k]
		if !ok || !f.Equal(g) {
			return false
		}
	}
	return true
}

// MarshalJSON writes the processed-session object shape:
// {"timestamp": ..., "eventType": ..., <fields in schema order>}.
func (e Event) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"timestamp":`)
	buf.WriteString(strconv.FormatInt(e.timestamp, 10))
	buf.WriteString(`,"eventType":`)
	typ, err := json.Marshal(e.eventType)
	if err != nil {
		return nil, err
	}
	buf.Write(typ)
	for _, name := range e.FieldNames() {
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := e.fields[name].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
