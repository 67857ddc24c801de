// Package validate implements the validate command.
package validate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kodepos-id/kodepos/cmd/application"
	"github.com/kodepos-id/kodepos/internal/cmd/cmdutil"
	"github.com/kodepos-id/kodepos/internal/cmd/output"
	"github.com/kodepos-id/kodepos/pkg/constants"
	"github.com/kodepos-id/kodepos/pkg/schema"
)

// NewCommand creates the validate command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "validate",
		GroupID: "data",
		Short:   "Validate a canonical JSON dataset against the record schema",
		Long: `Validate checks every record of a canonical JSON dataset against the
record schema and reports the first violations found.

The command exits non-zero when any record violates the schema.`,
		Example: `  # Validate with the bundled schema
  kodepos validate --data postal_codes.json

  # Validate with a schema file and report up to 50 violations
  kodepos validate --schema schema/postal_code.schema.json --max-errors 50`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, app)
		},
	}

	cmd.Flags().String("schema", "", "schema file (default the bundled schema)")
	cmd.Flags().String("data", constants.OutputJSON, "canonical JSON dataset")
	cmd.Flags().Int("max-errors", constants.MaxSchemaViolations, "stop after this many violations")

	return cmd
}

func run(cmd *cobra.Command, app application.Application) error {
	logger := app.Logger()

	v, err := validator(cmdutil.MustGetString(cmd, "schema"))
	if err != nil {
		return err
	}

	data := cmdutil.MustGetString(cmd, "data")
	report, err := v.ValidateFile(data, cmdutil.MustGetInt(cmd, "max-errors"))
	if err != nil {
		return err
	}

	format := app.OutputFormat()
	if !report.Valid() {
		for _, viol := range report.Violations {
			logger.Error().Int("index", viol.Index).Str("village_code", viol.VillageCode).Msg(viol.Message)
		}
		if err := output.Print(cmd.ErrOrStderr(), format, output.Violations{Report: report}); err != nil {
			return err
		}
		more := ""
		if report.Truncated {
			more = " (stopped at the limit)"
		}
		return fmt.Errorf("%s: %d schema violations%s", data, len(report.Violations), more)
	}

	logger.Info().Int("records", report.Records).Str("data", data).Msg("Schema validation passed")
	if format == "" || output.Format(format) == output.FormatTable {
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d records valid\n", report.Records)
		return err
	}
	return output.Print(cmd.OutOrStdout(), format, report)
}

func validator(path string) (*schema.Validator, error) {
	if path == "" {
		return schema.Default()
	}
	return schema.Load(path)
}
