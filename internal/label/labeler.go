package label

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
)

// RegionChart is the region id used when a labeler is built without
// explicit regions.
const RegionChart = "chart"

var (
	// ErrOutsideRegion is returned for a pick made outside every plotting
	// region the labeler recognises.
	ErrOutsideRegion = errors.New("pick outside a recognised region")
	// ErrDone is returned by a PickSource after the user finished picking.
	ErrDone = errors.New("picking finished")
	// ErrBadPick is returned for input that is not a usable pick, such as
	// an unparsable line or a non-finite timestamp. The run loop skips it.
	ErrBadPick = errors.New("unreadable pick")
)

// Pick is one user selection on a chart.
type Pick struct {
	Timestamp float64
	Region    string
}

// PickSource yields picks until the user is done. NextPick blocks until a
// pick is available.
type PickSource interface {
	NextPick(ctx context.Context) (Pick, error)
	Done() bool
}

// Mark says what a pick did to the working set.
type Mark int

const (
	// MarkStart opened a pending interval.
	MarkStart Mark = iota + 1
	// MarkEnd closed the pending interval.
	MarkEnd
)

// Labeler accumulates picks into intervals: the first pick of a pair opens
// a pending start, the second closes it. Nothing is final until Commit.
type Labeler struct {
	sourceID  string
	regions   []string
	pending   *float64
	intervals []Interval
}

// NewLabeler returns a labeler accepting picks on the given regions, or
// on RegionChart when none are given.
func NewLabeler(sourceID string, regions ...string) *Labeler {
	if len(regions) == 0 {
		regions = []string{RegionChart}
	}
	return &Labeler{sourceID: sourceID, regions: slices.Clone(regions)}
}

// Pick feeds one selection. A non-finite timestamp is rejected with
// ErrBadPick. A pick closing onto its own start is rejected with
// ErrEmptyInterval and the start stays pending.
func (l *Labeler) Pick(p Pick) (Mark, error) {
	if !slices.Contains(l.regions, p.Region) {
		return 0, fmt.Errorf("region %q: %w", p.Region, ErrOutsideRegion)
	}
	if math.IsNaN(p.Timestamp) || math.IsInf(p.Timestamp, 0) {
		return 0, fmt.Errorf("timestamp %v: %w", p.Timestamp, ErrBadPick)
	}
	if l.pending == nil {
		ts := p.Timestamp
		l.pending = &ts
		return MarkStart, nil
	}
	iv, err := NewInterval(*l.pending, p.Timestamp)
	if err != nil {
		return 0, err
	}
	l.pending = nil
	l.intervals = append(l.intervals, iv)
	return MarkEnd, nil
}

// Pending returns the open start, if any.
func (l *Labeler) Pending() (float64, bool) {
	if l.pending == nil {
		return 0, false
	}
	return *l.pending, true
}

// Intervals returns the closed intervals so far, in pick order.
func (l *Labeler) Intervals() []Interval { return slices.Clone(l.intervals) }

// Discard drops every pick, including a pending start.
func (l *Labeler) Discard() {
	l.pending = nil
	l.intervals = nil
}

// Commit returns the working set and resets the labeler. A pending start
// without an end is dropped.
func (l *Labeler) Commit() LabelSet {
	ls := LabelSet{SourceID: l.sourceID, Intervals: l.Intervals()}
	l.Discard()
	return ls
}

// Run feeds picks from src until it is done. Picks outside a region,
// unreadable picks and empty intervals are logged and skipped.
func (l *Labeler) Run(ctx context.Context, src PickSource) error {
	for !src.Done() {
		p, err := src.NextPick(ctx)
		if errors.Is(err, ErrDone) {
			return nil
		}
		if errors.Is(err, ErrBadPick) {
			slog.Warn("skipping pick", "source_id", l.sourceID, "err", err)
			continue
		}
		if err != nil {
			return err
		}
		if _, err := l.Pick(p); err != nil {
			if errors.Is(err, ErrOutsideRegion) || errors.Is(err, ErrEmptyInterval) || errors.Is(err, ErrBadPick) {
				slog.Warn("skipping pick", "source_id", l.sourceID, "timestamp", p.Timestamp, "err", err)
				continue
			}
			return err
		}
	}
	return nil
}
