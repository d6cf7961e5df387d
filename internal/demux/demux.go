// Package demux splits a mixed session into one ChannelSeries per event
// type and merges processed series back into a single session.
package demux

import (
	"sort"

	"github.com/fakeyudi/jumplab/internal/sensor"
)

// Split groups the session's events by canonical event type. Events
// without a type are already bucketed under sensor.UnknownEvent.
func Split(s sensor.Session) map[string]sensor.ChannelSeries {
	groups := make(map[string][]sensor.Event)
	for _, e := range s.Events() {
		groups[e.Type()] = append(groups[e.Type()], e)
	}
	out := make(map[string]sensor.ChannelSeries, len(groups))
	for typ, events := range groups {
		out[typ] = sensor.NewChannelSeries(typ, events)
	}
	return out
}

// Merge concatenates every series back into one session. Ties on timestamp
// resolve to the order the events had in the session they were split from.
func Merge(byType map[string]sensor.ChannelSeries) sensor.Session {
	types := make([]string, 0, len(byType))
	for typ := range byType {
		types = append(types, typ)
	}
	sort.Strings(types)

	var all []sensor.Event
	for _, typ := range types {
		all = append(all, byType[typ].Events()...)
	}
	return sensor.NewSession(all)
}

// Map applies fn to every series, keeping the keys. The first error stops
// the walk and is returned with its type.
func Map(byType map[string]sensor.ChannelSeries, fn func(sensor.ChannelSeries) (sensor.ChannelSeries, error)) (map[string]sensor.ChannelSeries, error) {
	out := make(map[string]sensor.ChannelSeries, len(byType))
	for typ, s := range byType {
		next, err := fn(s)
		if err != nil {
			return nil, &TypeError{EventType: typ, Err: err}
		}
		out[typ] = next
	}
	return out, nil
}

// TypeError attributes a per-series failure to its event type.
type TypeError struct {
	EventType string
	Err       error
}

func (e *TypeError) Error() string { return e.EventType + ": " + e.Err.Error() }

func (e *TypeError) Unwrap() error { return e.Err }
