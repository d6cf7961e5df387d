package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/jumplab/internal/config"
	"github.com/fakeyudi/jumplab/internal/labelstore"
	"github.com/fakeyudi/jumplab/internal/report"
)

// app carries the resolved configuration to the subcommands. It is
// populated in PersistentPreRunE.
type app struct {
	cfg        config.Config
	projectDir string
	overrides  config.Config
}

func (a *app) store() labelstore.LabelStore { return labelstore.New(a.cfg.LabelsDir) }

func (a *app) renderer() report.Renderer { return report.ForFormat(a.cfg.ReportFormat) }

// print renders doc in the configured report format to the command output.
func (a *app) print(cmd *cobra.Command, doc *report.Document) error {
	data, err := a.renderer().Render(doc)
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "jumplab",
		Short:        "Smooth phone sensor recordings, find and label jumps, train a detector",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.projectDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			// Flags are the top layer.
			cfg = config.Merge(&cfg, &a.overrides)
			if err := cfg.Validate(); err != nil {
				return err
			}
			if _, err := config.InitLogger(cfg, cmd.ErrOrStderr()); err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.projectDir, "project", ".", "directory holding "+config.ProjectFile+" and .env")
	pf.StringVar(&a.overrides.RawDir, "raw", "", "raw recordings directory")
	pf.StringVar(&a.overrides.ProcessedDir, "processed", "", "processed recordings directory")
	pf.StringVar(&a.overrides.LabelsDir, "labels", "", "label sets directory")
	pf.StringVar(&a.overrides.ReportFormat, "format", "", "report format: markdown or json")
	pf.StringVar(&a.overrides.LogLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(
		newProcessCmd(a),
		newSegmentCmd(a),
		newLabelCmd(a),
		newLabelsCmd(a),
		newTrainCmd(a),
		newSynthCmd(a),
		newViewCmd(a),
	)
	return root
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
