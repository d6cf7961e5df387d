package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/jumplab/internal/label"
	"github.com/fakeyudi/jumplab/internal/pipeline"
	"github.com/fakeyudi/jumplab/internal/recording"
	"github.com/fakeyudi/jumplab/internal/report"
)

func newSegmentCmd(a *app) *cobra.Command {
	var (
		threshold   float64
		minDuration time.Duration
		maxDuration time.Duration
		eventType   string
		fields      []string
		smoothFirst bool
		save        bool
	)
	cmd := &cobra.Command{
		Use:   "segment <recording.json>...",
		Short: "Detect air time in recordings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seg := a.cfg.SegmentConfig()
			if cmd.Flags().Changed("threshold") {
				seg.Threshold = threshold
			}
			if cmd.Flags().Changed("min-duration") {
				seg.MinDuration = minDuration
			}
			if cmd.Flags().Changed("max-duration") {
				seg.MaxDuration = maxDuration
			}
			if err := seg.Validate(); err != nil {
				return err
			}
			if eventType == "" {
				eventType = a.cfg.Segment.EventType
			}
			if len(fields) == 0 {
				fields = a.cfg.Segment.Fields
			}
			sm, err := a.cfg.SmoothConfig()
			if err != nil {
				return err
			}

			segmentOne := func(path string) (report.Segmentation, error) {
				res, err := recording.Load(path)
				if err != nil {
					return report.Segmentation{}, err
				}
				for _, skipped := range res.Skipped {
					slog.Warn("skipping record", "path", path, "index", skipped.Index, "reason", skipped.Reason)
				}
				s := res.Session
				if smoothFirst {
					if s, err = pipeline.SmoothSession(s, sm); err != nil {
						return report.Segmentation{}, err
					}
				}
				jumps, err := pipeline.DetectJumps(s, eventType, fields, seg)
				if err != nil {
					return report.Segmentation{}, err
				}
				out := report.Segmentation{Source: label.SourceID(path), EventType: eventType, Jumps: jumps}
				if save {
					if out.Saved, err = a.store().Save(label.LabelSet{SourceID: out.Source, Intervals: jumps}); err != nil {
						return report.Segmentation{}, err
					}
				}
				return out, nil
			}

			var (
				results []report.Segmentation
				failed  []pipeline.FileIssue
			)
			for _, path := range args {
				out, err := segmentOne(path)
				if err != nil {
					slog.Error("segment failed", "path", path, "err", err)
					failed = append(failed, pipeline.FileIssue{Path: path, Reason: err.Error()})
					continue
				}
				results = append(results, out)
			}
			doc := report.Segments(results...)
			doc.Failed = failed
			if err := a.print(cmd, doc); err != nil {
				return err
			}
			if len(failed) > 0 {
				return fmt.Errorf("%d of %d recordings failed", len(failed), len(args))
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.Float64Var(&threshold, "threshold", 0, "absolute value below which the rider is airborne")
	f.DurationVar(&minDuration, "min-duration", 0, "shortest air time reported (exclusive)")
	f.DurationVar(&maxDuration, "max-duration", 0, "abandon episodes longer than this, 0 disables")
	f.StringVar(&eventType, "event-type", "", "channel to segment")
	f.StringSliceVar(&fields, "field", nil, "fields to segment on; several use the vector magnitude")
	f.BoolVar(&smoothFirst, "smooth", false, "apply the configured smoothing before detection")
	f.BoolVar(&save, "save", false, "store the detected intervals as the recording's label set")
	return cmd
}
