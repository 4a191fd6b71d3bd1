// Package cli implements the manifest command-line tool.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/manifestnorm/internal/config"
	"github.com/JonMunkholm/manifestnorm/internal/logging"
	"github.com/JonMunkholm/manifestnorm/internal/manifest"
)

// options are the persistent flags shared by every subcommand.
type options struct {
	logLevel  string
	logFormat string
	timeout   time.Duration

	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCommand builds the manifest command tree.
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "manifest",
		Short: "Normalize carrier delivery manifests",
		Long: `manifest reads carrier delivery reports (.xls, .xlsx, .csv, .txt),
detects the carrier layout and writes the canonical three-column table:
document number, expected delivery date, actual delivery date.

Supported layouts: ALFA, TNT, LT, AGE, TXT_EXCELLENCE, LISTA_CARGAS.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts.cfg = cfg
			opts.logger = logging.New(cmd.ErrOrStderr(), opts.logLevel, opts.logFormat)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "maximum wait for the spreadsheet engine and processing")

	root.AddCommand(
		newClassifyCommand(opts),
		newProcessCommand(opts),
		newLayoutsCommand(),
		newCounterCommand(opts),
	)
	return root
}

// pipeline starts the engine warm-up and returns a pipeline gated on it.
func (o *options) pipeline() *manifest.Pipeline {
	ready := manifest.NewReadiness()
	ready.Start(manifest.WarmUp)
	return manifest.NewPipeline(ready, o.logger)
}

// context bounds a command by --timeout.
func (o *options) context(parent context.Context) (context.Context, context.CancelFunc) {
	if o.timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, o.timeout)
}

func newLayoutsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "layouts",
		Short: "List the supported carrier layouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printLayouts(cmd.OutOrStdout())
		},
	}
}

func printLayouts(w io.Writer) error {
	for _, def := range manifest.Layouts() {
		engine := "text"
		if def.NeedsEngine {
			engine = "spreadsheet"
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\n", def.Kind, engine); err != nil {
			return err
		}
	}
	return nil
}
