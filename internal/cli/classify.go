package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newClassifyCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <file>...",
		Short: "Detect the carrier layout of each file",
		Long: `classify prints one "<file>\t<LAYOUT>" line per argument. Unreadable
files print ERROR and files matching no carrier print UNKNOWN; neither
stops the remaining files.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd.Context())
			defer cancel()

			p := opts.pipeline()
			for _, path := range args {
				kind, err := p.ClassifyWhenReady(ctx, path, opts.cfg.Processing.PollInterval)
				if err != nil {
					return fmt.Errorf("classify %s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", path, kind)
			}
			return nil
		},
	}
}
