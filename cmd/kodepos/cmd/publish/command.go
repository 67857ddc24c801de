// Package publish implements the publish command.
package publish

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kodepos-id/kodepos/cmd/application"
	"github.com/kodepos-id/kodepos/internal/cmd/cmdutil"
	"github.com/kodepos-id/kodepos/internal/store"
	"github.com/kodepos-id/kodepos/pkg/codec"
	"github.com/kodepos-id/kodepos/pkg/constants"
	"github.com/kodepos-id/kodepos/pkg/errors"
	"github.com/kodepos-id/kodepos/pkg/logging"
	"github.com/kodepos-id/kodepos/pkg/manifest"
)

// NewCommand creates the publish command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "publish",
		GroupID: "core",
		Short:   "Upsert a canonical JSON dataset into Postgres",
		Long: `Publish loads a canonical JSON dataset into the postal_codes table in
one transaction. Rows are keyed by village code; rows left over from other
builds are removed, so the table mirrors the dataset afterwards.

The DSN comes from --dsn, KODEPOS_DATABASE_URL or DATABASE_URL. When a
build manifest is given, its build ID and profile are recorded with the
publication.`,
		Example: `  kodepos publish --data dist/postal_codes.json --manifest dist/build_manifest.yaml \
    --dsn "postgres://kodepos@localhost:5432/kodepos?sslmode=disable"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, app)
		},
	}

	cmd.Flags().String("data", constants.OutputJSON, "canonical JSON dataset")
	cmd.Flags().String("dsn", "", "Postgres DSN (default from configuration)")
	cmd.Flags().String("manifest", "", "build manifest of the dataset")
	cmd.Flags().Bool("migrate", true, "create or update the tables before publishing")

	return cmd
}

func run(cmd *cobra.Command, app application.Application) error {
	logger := app.Logger()
	ctx := logging.WithLogger(cmd.Context(), logger)

	dsn := cmdutil.MustGetString(cmd, "dsn")
	if dsn == "" {
		dsn = app.DatabaseURL()
	}
	if dsn == "" {
		return errors.NewConfigError("publish", "no database: set --dsn or KODEPOS_DATABASE_URL", nil)
	}

	data := cmdutil.MustGetString(cmd, "data")
	records, err := codec.ReadRecordsFile(data)
	if err != nil {
		return err
	}

	var pub store.Publication
	if path := cmdutil.MustGetString(cmd, "manifest"); path != "" {
		m, err := manifest.Read(path)
		if err != nil {
			return err
		}
		pub = store.FromManifest(m)
	}

	s, err := store.Open(dsn, logger)
	if err != nil {
		return err
	}
	defer s.Close() //nolint:errcheck

	if cmdutil.MustGetBool(cmd, "migrate") {
		if err := s.Migrate(ctx); err != nil {
			return err
		}
	}

	res, err := s.Publish(ctx, records, pub)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Published %d records as build %s (%d stale rows removed)\n",
		res.Upserted, res.BuildID, res.Removed)
	return err
}
