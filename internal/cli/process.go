package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/manifestnorm/internal/export"
	"github.com/JonMunkholm/manifestnorm/internal/manifest"
)

type processOptions struct {
	layout  string
	outDir  string
	counter string
	xlsx    bool
	stdout  bool
}

func newProcessCommand(opts *options) *cobra.Command {
	po := &processOptions{}

	cmd := &cobra.Command{
		Use:   "process <file>",
		Short: "Normalize a manifest and save the canonical table",
		Long: `process detects the layout of <file> (or uses --layout), extracts and
normalizes its rows and saves them as Logistica_<name>_<timestamp>.csv in
the output directory, advancing the save counter.

Examples:
  manifest process relatorio_tnt.xlsx
  manifest process --layout AGE --xlsx entregas.xls
  manifest process --stdout arquivo.txt > limpo.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd, opts, po, args[0])
		},
	}

	cmd.Flags().StringVarP(&po.layout, "layout", "l", "", "force a layout instead of detecting it")
	cmd.Flags().StringVarP(&po.outDir, "out", "o", "", "output directory (default EXPORT_OUTPUT_DIR)")
	cmd.Flags().StringVar(&po.counter, "counter", "", "counter file (default EXPORT_COUNTER_FILE)")
	cmd.Flags().BoolVar(&po.xlsx, "xlsx", false, "save as .xlsx instead of .csv")
	cmd.Flags().BoolVar(&po.stdout, "stdout", false, "write csv to stdout without saving or counting")
	return cmd
}

func runProcess(cmd *cobra.Command, opts *options, po *processOptions, path string) error {
	ctx, cancel := opts.context(cmd.Context())
	defer cancel()

	p := opts.pipeline()

	var (
		table *manifest.Table
		err   error
	)
	if po.layout != "" {
		kind, ok := manifest.ParseLayoutKind(po.layout)
		if !ok || !kind.Extractable() {
			return fmt.Errorf("invalid layout %q", po.layout)
		}
		table, err = p.ProcessAsWhenReady(ctx, path, kind, opts.cfg.Processing.PollInterval)
	} else {
		table, _, err = p.ProcessWhenReady(ctx, path, opts.cfg.Processing.PollInterval)
	}
	if err != nil {
		return fmt.Errorf("%s\n%w", manifest.FormatUserError(err), err)
	}

	if po.stdout {
		return export.WriteCSV(cmd.OutOrStdout(), table.Records)
	}

	outDir := opts.cfg.Export.OutputDir
	if po.outDir != "" {
		outDir = po.outDir
	}
	counterFile := opts.cfg.Export.CounterFile
	if po.counter != "" {
		counterFile = po.counter
	}
	format := export.FormatCSV
	if po.xlsx {
		format = export.FormatXLSX
	}

	svc := export.NewService(outDir, export.NewCounter(counterFile), opts.logger)
	saved, err := svc.Save(table, format)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d rows\t#%d\n", saved.Path, table.Layout, saved.Rows, saved.Number)
	return nil
}
