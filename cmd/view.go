package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/jumplab/internal/report"
)

func newViewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "view <report>",
		Short: "Print a saved report in the configured format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("file not found: %s", path)
				}
				return err
			}
			doc, err := report.ParserFor(path).Parse(data)
			if err != nil {
				return err
			}
			return a.print(cmd, doc)
		},
	}
}
