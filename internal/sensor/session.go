package sensor

import (
	"encoding/json"
	"slices"
	"sort"
)

// Session is one recording: events of every type, ascending by timestamp.
// Events sharing a timestamp keep the order they were given in.
type Session struct {
	events []Event
}

// NewSession sorts a copy of events into a Session.
func NewSession(events []Event) Session {
	own := slices.Clone(events)
	sortEvents(own)
	return Session{events: own}
}

// sortEvents orders by timestamp, then by recording position, then by
// slice position. seq is only a tie-breaker and is rewritten afterwards so
// later merges stay stable with respect to this order.
func sortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].timestamp != events[j].timestamp {
			return events[i].timestamp < events[j].timestamp
		}
		return events[i].seq < events[j].seq
	})
	for i := range events {
		events[i].seq = i
	}
}

func (s Session) Len() int { return len(s.events) }

// Events returns a copy of the session's events in order.
func (s Session) Events() []Event { return slices.Clone(s.events) }

// At returns the i-th event.
func (s Session) At(i int) Event { return s.events[i] }

// Types lists the distinct event types in first-seen order.
func (s Session) Types() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range s.events {
		if !seen[e.eventType] {
			seen[e.eventType] = true
			out = append(out, e.eventType)
		}
	}
	return out
}

func (s Session) MarshalJSON() ([]byte, error) {
	if s.events == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.events)
}
