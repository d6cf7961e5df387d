package smooth

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidWindow is returned for window sizes below 1.
	ErrInvalidWindow = errors.New("window size must be at least 1")
	// ErrInvalidOrder is returned for an unknown or repeated stage.
	ErrInvalidOrder = errors.New("invalid smoothing order")
)

// Stage names one filter in a smoothing chain.
type Stage string

const (
	StageMedian Stage = "median"
	StageMean   Stage = "mean"
)

// Config enumerates a smoothing chain. Order is applied left to right and
// an empty Order leaves the data untouched; there is no implicit chain.
type Config struct {
	MedianWindow int     `json:"median_window" yaml:"median_window"`
	MeanWindow   int     `json:"mean_window" yaml:"mean_window"`
	Order        []Stage `json:"order" yaml:"order"`
}

// DefaultConfig returns median(11) followed by mean(25).
func DefaultConfig() Config {
	return Config{
		MedianWindow: 11,
		MeanWindow:   25,
		Order:        []Stage{StageMedian, StageMean},
	}
}

// Validate checks the order and the windows of the stages it uses.
func (c Config) Validate() error {
	seen := make(map[Stage]bool)
	for _, st := range c.Order {
		switch st {
		case StageMedian:
			if c.MedianWindow < 1 {
				return fmt.Errorf("median window %d: %w", c.MedianWindow, ErrInvalidWindow)
			}
		case StageMean:
			if c.MeanWindow < 1 {
				return fmt.Errorf("mean window %d: %w", c.MeanWindow, ErrInvalidWindow)
			}
		default:
			return fmt.Errorf("stage %q: %w", st, ErrInvalidOrder)
		}
		if seen[st] {
			return fmt.Errorf("stage %q repeated: %w", st, ErrInvalidOrder)
		}
		seen[st] = true
	}
	return nil
}

// ParseOrder reads a comma-separated stage list such as "median,mean".
// "none" and the empty string mean no smoothing.
func ParseOrder(s string) ([]Stage, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "none" {
		return []Stage{}, nil
	}
	var out []Stage
	for _, part := range strings.Split(s, ",") {
		st := Stage(strings.TrimSpace(part))
		if st != StageMedian && st != StageMean {
			return nil, fmt.Errorf("stage %q: %w", part, ErrInvalidOrder)
		}
		out = append(out, st)
	}
	c := Config{MedianWindow: 1, MeanWindow: 1, Order: out}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// String renders the order the way ParseOrder reads it.
func (c Config) String() string {
	if len(c.Order) == 0 {
		return "none"
	}
	parts := make([]string, len(c.Order))
	for i, st := range c.Order {
		n := c.MedianWindow
		if st == StageMean {
			n = c.MeanWindow
		}
		parts[i] = fmt.Sprintf("%s(%d)", st, n)
	}
	return strings.Join(parts, ",")
}
