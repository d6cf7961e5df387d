package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/jumplab/internal/classify"
	"github.com/fakeyudi/jumplab/internal/features"
	"github.com/fakeyudi/jumplab/internal/pipeline"
	"github.com/fakeyudi/jumplab/internal/report"
)

func newTrainCmd(a *app) *cobra.Command {
	var (
		window   int
		stride   int
		maxDepth int
	)
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Fit a jump detector on labeled processed recordings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, split := a.cfg.FeatureOptions()
			if cmd.Flags().Changed("window") {
				opts.WindowSize = window
			}
			if cmd.Flags().Changed("stride") {
				opts.Stride = stride
			}
			ds, sum, err := pipeline.BuildDataset(a.store(), pipeline.DatasetOptions{
				ProcessedDir: a.cfg.ProcessedDir,
				EventType:    a.cfg.Features.EventType,
				Features:     opts,
			})
			if err != nil {
				return err
			}
			if ds.Len() == 0 {
				return fmt.Errorf("no labeled windows: label recordings in %s first: %w", a.cfg.ProcessedDir, features.ErrEmptyDataset)
			}

			res, err := features.Train(ds, classify.Tree{MaxDepth: maxDepth}, split)
			if err != nil {
				return err
			}
			t := report.Training{
				Dataset:   sum,
				Positives: ds.Positives(),
				TrainSize: res.TrainSize,
				TestSize:  res.TestSize,
				Accuracy:  res.Accuracy,
				Report:    res.Report,
			}
			if m, ok := res.Model.(*classify.Model); ok {
				t.Depth = m.Depth()
			}
			return a.print(cmd, report.Train(t))
		},
	}
	f := cmd.Flags()
	f.IntVar(&window, "window", 0, "samples per window")
	f.IntVar(&stride, "stride", 0, "samples between window starts")
	f.IntVar(&maxDepth, "max-depth", 8, "tree depth limit, 0 for unlimited")
	return cmd
}
