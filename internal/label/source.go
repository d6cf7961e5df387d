package label

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ScriptedSource replays a fixed pick sequence.
type ScriptedSource struct {
	picks []Pick
	next  int
}

func NewScriptedSource(picks ...Pick) *ScriptedSource {
	return &ScriptedSource{picks: picks}
}

// Timestamps builds a scripted source of picks on RegionChart.
func Timestamps(ts ...float64) *ScriptedSource {
	picks := make([]Pick, len(ts))
	for i, v := range ts {
		picks[i] = Pick{Timestamp: v, Region: RegionChart}
	}
	return NewScriptedSource(picks...)
}

func (s *ScriptedSource) NextPick(ctx context.Context) (Pick, error) {
	if err := ctx.Err(); err != nil {
		return Pick{}, err
	}
	if s.Done() {
		return Pick{}, ErrDone
	}
	p := s.picks[s.next]
	s.next++
	return p, nil
}

func (s *ScriptedSource) Done() bool { return s.next >= len(s.picks) }

// LineSource reads picks from text, one per line: a timestamp optionally
// followed by a region id. "done" or end of input finishes the stream and
// blank lines are ignored.
type LineSource struct {
	r      *bufio.Reader
	region string
	done   bool
}

// NewLineSource reads picks from r. Lines without a region get
// defaultRegion.
func NewLineSource(r io.Reader, defaultRegion string) *LineSource {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &LineSource{r: br, region: defaultRegion}
}

func (s *LineSource) NextPick(ctx context.Context) (Pick, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Pick{}, err
		}
		if s.done {
			return Pick{}, ErrDone
		}
		line, err := s.r.ReadString('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return Pick{}, fmt.Errorf("reading picks: %w", err)
			}
			s.done = true
			if strings.TrimSpace(line) == "" {
				return Pick{}, ErrDone
			}
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if strings.EqualFold(fields[0], "done") {
			s.done = true
			return Pick{}, ErrDone
		}
		ts, perr := strconv.ParseFloat(fields[0], 64)
		if perr != nil || math.IsNaN(ts) || math.IsInf(ts, 0) {
			return Pick{}, fmt.Errorf("%q: %w", fields[0], ErrBadPick)
		}
		p := Pick{Timestamp: ts, Region: s.region}
		if len(fields) > 1 {
			p.Region = fields[1]
		}
		return p, nil
	}
}

func (s *LineSource) Done() bool { return s.done }
