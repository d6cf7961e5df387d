package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/jumplab/internal/demux"
	"github.com/fakeyudi/jumplab/internal/label"
	"github.com/fakeyudi/jumplab/internal/recording"
	"github.com/fakeyudi/jumplab/internal/segment"
	"github.com/fakeyudi/jumplab/internal/sensor"
	"github.com/fakeyudi/jumplab/internal/tui"
)

// channel is the scalar a recording is labeled on.
type channel struct {
	sourceID   string
	name       string
	timestamps []int64
	values     []float64
}

func loadChannel(path, eventType string, fields []string) (channel, error) {
	res, err := recording.Load(path)
	if err != nil {
		return channel{}, err
	}
	series, ok := demux.Split(res.Session)[sensor.CanonicalType(eventType)]
	if !ok {
		return channel{}, fmt.Errorf("%s has no %s events", path, eventType)
	}
	values, err := segment.Scalar(series, fields)
	if err != nil {
		return channel{}, err
	}
	return channel{
		sourceID:   label.SourceID(path),
		name:       series.Type() + "." + strings.Join(fields, "+"),
		timestamps: series.Timestamps(),
		values:     values,
	}, nil
}

func newLabelCmd(a *app) *cobra.Command {
	var (
		eventType string
		fields    []string
		plain     bool
	)
	cmd := &cobra.Command{
		Use:   "label <processed.json>",
		Short: "Mark air time intervals on a recording by hand",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if eventType == "" {
				eventType = a.cfg.Segment.EventType
			}
			if len(fields) == 0 {
				fields = a.cfg.Segment.Fields
			}
			ch, err := loadChannel(args[0], eventType, fields)
			if err != nil {
				return err
			}

			var ls label.LabelSet
			var accepted bool
			if !plain && term.IsTerminal(os.Stdin.Fd()) {
				out, err := tui.Run(ch.sourceID, ch.name, ch.timestamps, ch.values)
				if err != nil {
					return err
				}
				ls, accepted = out.Labels, out.Accepted
			} else {
				ls, accepted, err = labelPlain(cmd, ch)
				if err != nil {
					return err
				}
			}

			if !accepted {
				cmd.Printf("Skipped %s, nothing saved.\n", ch.sourceID)
				return nil
			}
			path, err := a.store().Save(ls)
			if err != nil {
				return err
			}
			cmd.Printf("Saved %d intervals to %s\n", len(ls.Intervals), path)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&eventType, "event-type", "", "channel to plot")
	f.StringSliceVar(&fields, "field", nil, "fields to plot; several use the vector magnitude")
	f.BoolVar(&plain, "plain", false, "read picks from stdin instead of the interactive chart")
	return cmd
}

// labelPlain reads picks as timestamps, one per line, from the command's
// input. Each round ends with "done" and an accept, redo or skip decision.
func labelPlain(cmd *cobra.Command, ch channel) (label.LabelSet, bool, error) {
	in := bufio.NewReader(cmd.InOrStdin())
	for {
		if len(ch.timestamps) > 0 {
			cmd.Printf("%s: %d samples from %d to %d\n", ch.name, len(ch.timestamps), ch.timestamps[0], ch.timestamps[len(ch.timestamps)-1])
		}
		cmd.Println("Enter pick timestamps, one per line, then \"done\".")

		l := label.NewLabeler(ch.sourceID)
		if err := l.Run(cmd.Context(), label.NewLineSource(in, label.RegionChart)); err != nil {
			return label.LabelSet{}, false, err
		}
		if p, ok := l.Pending(); ok {
			slog.Warn("dropping start without an end", "source_id", ch.sourceID, "timestamp", p)
		}
		ivs := l.Intervals()
		cmd.Printf("%d intervals:\n", len(ivs))
		for i, iv := range ivs {
			cmd.Printf("  %d. %s\n", i+1, iv)
		}

		cmd.Print("[a]ccept, [r]edo or [s]kip? ")
		answer, err := in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return label.LabelSet{}, false, err
		}
		cmd.Println()
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "a", "accept":
			return l.Commit(), true, nil
		case "r", "redo":
			if errors.Is(err, io.EOF) {
				return label.LabelSet{}, false, nil
			}
			continue
		default:
			return label.LabelSet{}, false, nil
		}
	}
}
