package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/jumplab/internal/labelstore"
)

func newLabelsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "labels [source_id]",
		Short: "List stored label sets or print one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := a.store()
			if len(args) == 0 {
				ids, err := store.List()
				if err != nil {
					return err
				}
				if len(ids) == 0 {
					cmd.Printf("No label sets in %s\n", a.cfg.LabelsDir)
					return nil
				}
				for _, id := range ids {
					ls, err := store.Load(id)
					if err != nil {
						cmd.Printf("%-24s  (unreadable: %v)\n", id, err)
						continue
					}
					cmd.Printf("%-24s  %d intervals\n", id, len(ls.Intervals))
				}
				return nil
			}

			ls, err := store.Load(args[0])
			if err != nil {
				if errors.Is(err, labelstore.ErrLabelSetNotFound) {
					return fmt.Errorf("no label set for %s in %s", args[0], a.cfg.LabelsDir)
				}
				return err
			}
			cmd.Printf("%s (%s)\n", ls.SourceID, store.Path(ls.SourceID))
			if len(ls.Intervals) == 0 {
				cmd.Println("  (none)")
			}
			for i, iv := range ls.Intervals {
				cmd.Printf("  %3d. %s  %s\n", i+1, iv, time.Duration(iv.Duration()).Round(time.Millisecond))
			}
			return nil
		},
	}
}
