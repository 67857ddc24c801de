// Package build implements the build command.
package build

import (
	"github.com/spf13/cobra"

	"github.com/kodepos-id/kodepos"
	"github.com/kodepos-id/kodepos/cmd/application"
	"github.com/kodepos-id/kodepos/internal/cmd/cmdutil"
	"github.com/kodepos-id/kodepos/internal/cmd/output"
	"github.com/kodepos-id/kodepos/internal/metrics"
	"github.com/kodepos-id/kodepos/pkg/constants"
	"github.com/kodepos-id/kodepos/pkg/logging"
	"github.com/kodepos-id/kodepos/pkg/profiles"
)

// NewCommand creates the build command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "build",
		GroupID: "core",
		Short:   "Build the postal-code dataset for a profile",
		Long: `Build reconciles the registry snapshot with the sources of a profile and
writes the CSV and JSON outputs, an enriched CSV when the profile defines
one, and a build manifest.

Every input the profile needs is checked before anything is read, and no
output is written unless reconciliation succeeds.`,
		Example: `  # Official values only
  kodepos build --profile opendata-jabar --official opendata.csv

  # Official values first, Pos Indonesia lookups for the rest
  kodepos build --profile combined --out-dir dist --metrics-file dist/kodepos.prom`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, app)
		},
	}

	cmd.Flags().StringP("profile", "p", profiles.OpenDataJabar, "build profile")
	cmd.Flags().String("regions", constants.RegionsFile, "registry snapshot CSV")
	cmd.Flags().String("official", constants.OpenDataJabarFile, "Open Data Jabar CSV")
	cmd.Flags().String("augmented", constants.PosIndonesiaFile, "Pos Indonesia lookup JSONL")
	cmd.Flags().String("out-dir", ".", "output directory")
	cmd.Flags().Int("build-year", 0, "year stamped on records without a source year (default current year)")
	cmd.Flags().Bool("enriched", true, "write the enriched CSV when the profile defines one")
	cmd.Flags().String("manifest", "", "manifest path (default <out-dir>/"+constants.ManifestFile+")")
	cmd.Flags().String("provenance", "", "write per-village provenance YAML to this path")
	cmd.Flags().String("metrics-file", "", "write build metrics in Prometheus text format to this path")

	return cmd
}

func run(cmd *cobra.Command, app application.Application) error {
	logger := app.Logger()
	ctx := logging.WithLogger(cmd.Context(), logger)

	var opts []kodepos.Option
	if year := cmdutil.MustGetInt(cmd, "build-year"); year != 0 {
		opts = append(opts, kodepos.WithBuildYear(year))
	}
	b, err := app.Builder(opts...)
	if err != nil {
		return err
	}

	m := metrics.New()
	m.Attach(b)

	res, err := b.Build(ctx, kodepos.Plan{
		Profile: cmdutil.MustGetString(cmd, "profile"),
		Regions: cmdutil.MustGetString(cmd, "regions"),
		Inputs: map[string]string{
			profiles.InputOfficial:  cmdutil.MustGetString(cmd, "official"),
			profiles.InputAugmented: cmdutil.MustGetString(cmd, "augmented"),
		},
		OutDir:         cmdutil.MustGetString(cmd, "out-dir"),
		SkipEnriched:   !cmdutil.MustGetBool(cmd, "enriched"),
		ManifestPath:   cmdutil.MustGetString(cmd, "manifest"),
		ProvenancePath: cmdutil.MustGetString(cmd, "provenance"),
	})
	if err != nil {
		return err
	}

	if path := cmdutil.MustGetString(cmd, "metrics-file"); path != "" {
		if err := m.WriteTextfile(path); err != nil {
			return err
		}
		logger.Info().Str("artifact", path).Msg("Wrote metrics")
	}

	return output.Print(cmd.OutOrStdout(), app.OutputFormat(), output.NewBuildSummary(res))
}
