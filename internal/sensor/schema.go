package sensor

import (
	"slices"
	"sort"
	"strings"
)

// UnknownEvent is the bucket for readings without a usable event type.
const UnknownEvent = "UnknownEvent"

// knownFields lists the numeric fields the phone recorder writes per event type.
var knownFields = map[string][]string{
	"accelerometer":  {"x", "y", "z"},
	"gyroscope":      {"x", "y", "z"},
	"linearAccel":    {"x", "y", "z"},
	"barometer":      {"x", "y", "z"},
	"gravity":        {"x", "y", "z"},
	"pressure":       {"pressure"},
	"rotationVector": {"x", "y", "z", "w", "headingAccuracy"},
	"gps_speed":      {"speedMps", "accuracyMps"},
	"gps_location":   {"latitude", "longitude", "altitude", "accuracyHorizontal"},
}

// classNames maps recorder class names (used by the pair format) to event types.
var classNames = map[string]string{
	"AccelerometerEvent":  "accelerometer",
	"GyroscopeEvent":      "gyroscope",
	"LinearAccelEvent":    "linearAccel",
	"BarometerEvent":      "barometer",
	"PressureEvent":       "pressure",
	"GravityEvent":        "gravity",
	"RotationVectorEvent": "rotationVector",
	"GPSSpeedEvent":       "gps_speed",
	"GPSLocationEvent":    "gps_location",
}

// classPackage prefixes class names written back in the pair format.
const classPackage = "com.example.mountainbiketrainer."

// reservedKeys never appear in Event fields.
var reservedKeys = map[string]bool{
	"timestamp":  true,
	"eventType":  true,
	"event_type": true,
	"type":       true,
}

func isReserved(key string) bool { return reservedKeys[key] }

// CanonicalType normalises an event type string. Matching against known types
// and recorder class names is case-insensitive; anything else is lower-cased.
// An empty type becomes UnknownEvent.
func CanonicalType(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, UnknownEvent) {
		return UnknownEvent
	}
	for class, typ := range classNames {
		if strings.EqualFold(s, class) {
			return typ
		}
	}
	for typ := range knownFields {
		if strings.EqualFold(s, typ) {
			return typ
		}
	}
	return strings.ToLower(s)
}

// TypeFromClass resolves the type string of a pair-format record such as
// "com.example.mountainbiketrainer.AccelerometerEvent".
func TypeFromClass(class string) string {
	if i := strings.LastIndex(class, "."); i >= 0 {
		class = class[i+1:]
	}
	return CanonicalType(class)
}

// ClassName is the inverse of TypeFromClass for known types. Unknown types
// are returned unchanged.
func ClassName(eventType string) string {
	for class, typ := range classNames {
		if typ == eventType {
			return classPackage + class
		}
	}
	return eventType
}

// KnownFields returns the schema's numeric fields for an event type.
func KnownFields(eventType string) []string {
	return slices.Clone(knownFields[eventType])
}

// IsKnownField reports whether name is a schema field of eventType.
func IsKnownField(eventType, name string) bool {
	return slices.Contains(knownFields[eventType], name)
}

// orderFields returns the keys of fields with known ones first, in schema
// order, followed by the rest sorted.
func orderFields[V any](eventType string, fields map[string]V) []string {
	names := make([]string, 0, len(fields))
	for _, k := range knownFields[eventType] {
		if _, ok := fields[k]; ok {
			names = append(names, k)
		}
	}
	var extra []string
	for k := range fields {
		if !IsKnownField(eventType, k) {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}
