package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/manifestnorm/internal/export"
)

func newCounterCommand(opts *options) *cobra.Command {
	var (
		file  string
		reset bool
	)
	cmd := &cobra.Command{
		Use:   "counter",
		Short: "Show or reset the save counter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				file = opts.cfg.Export.CounterFile
			}
			c := export.NewCounter(file)
			if reset {
				if err := c.Reset(); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "current %d\tnext %d\n", c.Current(), c.Next())
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "counter file (default EXPORT_COUNTER_FILE)")
	cmd.Flags().BoolVar(&reset, "reset", false, "set the counter back to zero")
	return cmd
}
