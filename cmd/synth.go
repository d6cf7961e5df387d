package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fakeyudi/jumplab/internal/label"
	"github.com/fakeyudi/jumplab/internal/recording"
	"github.com/fakeyudi/jumplab/internal/synth"
)

func newSynthCmd(a *app) *cobra.Command {
	opts := synth.DefaultOptions()
	var (
		pairs      bool
		saveLabels bool
	)
	cmd := &cobra.Command{
		Use:   "synth <out.json>",
		Short: "Write a fake recording with planted jumps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := synth.Generate(opts)
			if err != nil {
				return err
			}
			path := args[0]
			if err := recording.Write(path, rec.Session, recording.RendererFor(pairs)); err != nil {
				return err
			}
			cmd.Printf("Wrote %s (%d events, %d jumps)\n", path, rec.Session.Len(), len(rec.Jumps))
			if saveLabels {
				saved, err := a.store().Save(label.LabelSet{SourceID: label.SourceID(path), Intervals: rec.Jumps})
				if err != nil {
					return err
				}
				cmd.Printf("Planted jumps saved to %s\n", saved)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.Float64Var(&opts.Seconds, "seconds", opts.Seconds, "recording length")
	f.IntVar(&opts.AccelHz, "rate", opts.AccelHz, "accelerometer rate in Hz")
	f.IntVar(&opts.Jumps, "jumps", opts.Jumps, "number of jumps to plant")
	f.Uint64Var(&opts.Seed, "seed", opts.Seed, "random seed")
	f.BoolVar(&pairs, "pairs", false, "write [class, object] pairs like the phone recorder")
	f.BoolVar(&saveLabels, "save-labels", false, "store the planted jumps as the recording's label set")
	return cmd
}
