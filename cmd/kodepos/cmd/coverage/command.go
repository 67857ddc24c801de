// Package coverage implements the coverage command.
package coverage

import (
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kodepos-id/kodepos/cmd/application"
	"github.com/kodepos-id/kodepos/internal/cmd/cmdutil"
	"github.com/kodepos-id/kodepos/internal/cmd/output"
	"github.com/kodepos-id/kodepos/pkg/codec"
	"github.com/kodepos-id/kodepos/pkg/constants"
	"github.com/kodepos-id/kodepos/pkg/coverage"
	"github.com/kodepos-id/kodepos/pkg/errors"
	"github.com/kodepos-id/kodepos/pkg/logging"
	"github.com/kodepos-id/kodepos/pkg/registry"
)

// NewCommand creates the coverage command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "coverage",
		GroupID: "data",
		Short:   "Measure how much of the registry a source covers",
		Long: `Coverage compares the village codes of an ingestion output with the
registry snapshot. It writes a coverage report and one JSON line per
registry village the source missed.

Codes the source carries that the registry does not know are not counted
as matched.`,
		Example: `  # Audit a Pos Indonesia lookup run
  kodepos coverage --output data/sources/kodepos-posindonesia-co-id/village_postal_codes.jsonl

  # Audit a built dataset and write a markdown summary
  kodepos coverage --output postal_codes.json --input-format records --markdown coverage.md`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, app)
		},
	}

	cmd.Flags().String("regions", constants.RegionsFile, "registry snapshot CSV")
	cmd.Flags().String("output", constants.PosIndonesiaFile, "ingestion output to audit")
	cmd.Flags().String("input-format", string(coverage.FormatJSONL), "layout of --output: jsonl, csv-opendata, records")
	cmd.Flags().String("source", "", "source label for the report (default the --output file name)")
	cmd.Flags().String("baseline", constants.BaselineRegionID, "baseline label for the report")
	cmd.Flags().String("coverage", constants.CoverageFile, "coverage report path")
	cmd.Flags().String("failed", constants.FailedFile, "missing-village JSONL path")
	cmd.Flags().String("markdown", "", "also write a markdown summary to this path")

	return cmd
}

func run(cmd *cobra.Command, app application.Application) error {
	logger := app.Logger()
	ctx := logging.WithLogger(cmd.Context(), logger)

	source := cmdutil.MustGetString(cmd, "output")
	format := coverage.Format(cmdutil.MustGetString(cmd, "input-format"))
	switch format {
	case coverage.FormatJSONL, coverage.FormatOpenDataCSV, coverage.FormatRecords:
	default:
		return errors.NewValidationError("input-format", format, "must be one of: jsonl, csv-opendata, records")
	}

	// An empty registry yields a 0% report rather than an error.
	reg, err := registry.LoadFile(ctx, cmdutil.MustGetString(cmd, "regions"), registry.WithAllowEmpty())
	if err != nil {
		return err
	}
	seen, err := coverage.ReadSeenFile(ctx, source, format)
	if err != nil {
		return err
	}

	label := cmdutil.MustGetString(cmd, "source")
	if label == "" {
		label = filepath.Base(source)
	}
	res := coverage.Audit(reg, seen, coverage.Options{
		Source:   label,
		Baseline: cmdutil.MustGetString(cmd, "baseline"),
	})

	writes := []struct {
		path  string
		write func(io.Writer) error
	}{
		{cmdutil.MustGetString(cmd, "coverage"), func(w io.Writer) error { return codec.WriteJSON(w, res.Report) }},
		{cmdutil.MustGetString(cmd, "failed"), func(w io.Writer) error { return codec.WriteJSONL(w, res.Missing) }},
		{cmdutil.MustGetString(cmd, "markdown"), res.Markdown},
	}
	for _, wr := range writes {
		if wr.path == "" {
			continue
		}
		a, err := codec.WriteFile(wr.path, wr.write)
		if err != nil {
			return err
		}
		logger.Info().Str("artifact", a.Path).Int64("bytes", a.Bytes).Msg("Wrote coverage output")
	}

	logger.Info().
		Int("total_villages", res.Report.TotalVillages).
		Int("matched", res.Report.Matched).
		Int("missing", res.Report.Missing).
		Float64("coverage_percent", res.Report.CoveragePercent).
		Msg("Coverage audit complete")

	return output.Print(cmd.OutOrStdout(), app.OutputFormat(), output.Coverage{Report: res.Report})
}
