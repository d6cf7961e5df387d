package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/jumplab/internal/pipeline"
	"github.com/fakeyudi/jumplab/internal/report"
	"github.com/fakeyudi/jumplab/internal/smooth"
)

func newProcessCmd(a *app) *cobra.Command {
	var (
		order  string
		median int
		mean   int
		watch  bool
	)
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Smooth every raw recording into the processed directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sm, err := a.cfg.SmoothConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("order") {
				if sm.Order, err = smooth.ParseOrder(order); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("median") {
				sm.MedianWindow = median
			}
			if cmd.Flags().Changed("mean") {
				sm.MeanWindow = mean
			}
			opts := pipeline.Options{
				RawDir:       a.cfg.RawDir,
				ProcessedDir: a.cfg.ProcessedDir,
				Smoothing:    sm,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			sum, err := pipeline.Run(ctx, opts)
			if err != nil {
				return err
			}
			if err := a.print(cmd, report.Process(sum)); err != nil {
				return err
			}
			if watch {
				return watchRaw(ctx, cmd, opts)
			}
			if !sum.OK() {
				return fmt.Errorf("%d of %d recordings failed", len(sum.Failed), len(sum.Failed)+len(sum.Processed))
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&order, "order", "", "smoothing stages in order, e.g. median,mean or none")
	f.IntVar(&median, "median", 0, "median filter window")
	f.IntVar(&mean, "mean", 0, "mean filter window")
	f.BoolVar(&watch, "watch", false, "keep running and process recordings as they arrive")
	return cmd
}

func watchRaw(ctx context.Context, cmd *cobra.Command, opts pipeline.Options) error {
	cmd.Printf("Watching %s (Ctrl+C to stop)\n", opts.RawDir)
	return pipeline.Watch(ctx, opts, func(fr pipeline.FileResult, err error) {
		if err != nil {
			cmd.PrintErrf("failed: %v\n", err)
			return
		}
		cmd.Printf("Processed %s -> %s (%d events)\n", fr.Source, fr.Output, fr.Events)
	})
}
