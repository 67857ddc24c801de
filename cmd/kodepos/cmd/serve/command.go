// Package serve implements the serve command.
package serve

import (
	"fmt"
	"net"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/kodepos-id/kodepos/cmd/application"
	"github.com/kodepos-id/kodepos/internal/cmd/cmdutil"
	"github.com/kodepos-id/kodepos/internal/metrics"
	"github.com/kodepos-id/kodepos/internal/server"
	"github.com/kodepos-id/kodepos/internal/server/index"
	"github.com/kodepos-id/kodepos/pkg/codec"
	"github.com/kodepos-id/kodepos/pkg/constants"
	"github.com/kodepos-id/kodepos/pkg/logging"
	"github.com/kodepos-id/kodepos/pkg/registry"
)

// NewCommand creates the serve command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server"},
		GroupID: "core",
		Short:   "Serve postal-code lookups over HTTP",
		Long: `Serve loads a canonical JSON dataset into memory and answers lookups
by village code and by postal code.

Endpoints, under the path prefix:
  GET /villages                 list villages (status, source, type, region, q, limit, offset)
  GET /villages/{code}          one village; dotted codes are accepted
  GET /postal-codes/{postal}    villages sharing a postal code
  GET /stats                    record counts by status and source
  GET /coverage                 coverage against the registry

/health, /ready and /metrics are served at the root.

With --regions, responses carry the registry ancestors of each village and
coverage is measured against the registry.`,
		Example: `  kodepos serve --data dist/postal_codes.json --regions regions_id.csv --addr :8080`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, app)
		},
	}

	defaults := server.DefaultConfig()
	cmd.Flags().String("data", constants.OutputJSON, "canonical JSON dataset")
	cmd.Flags().String("regions", "", "registry snapshot CSV for ancestors and coverage")
	cmd.Flags().String("addr", "", "listen address host:port (overrides --host and --port)")
	cmd.Flags().String("host", defaults.Host, "bind address")
	cmd.Flags().Int("port", defaults.Port, "server port")
	cmd.Flags().String("prefix", defaults.PathPrefix, "API path prefix")
	cmd.Flags().Bool("cors", defaults.CORSEnabled, "enable CORS")
	cmd.Flags().StringSlice("cors-origins", nil, "allowed CORS origins (default all)")
	cmd.Flags().Duration("cache-ttl", defaults.CacheTTL, "response cache TTL")
	cmd.Flags().Duration("read-timeout", defaults.ReadTimeout, "HTTP read timeout")
	cmd.Flags().Duration("write-timeout", defaults.WriteTimeout, "HTTP write timeout")
	cmd.Flags().Duration("idle-timeout", defaults.IdleTimeout, "HTTP idle timeout")
	cmd.Flags().Bool("metrics", defaults.MetricsEnabled, "serve Prometheus metrics at /metrics")

	return cmd
}

func run(cmd *cobra.Command, app application.Application) error {
	logger := app.Logger()
	ctx := logging.WithLogger(cmd.Context(), logger)

	cfg, err := parseConfig(cmd)
	if err != nil {
		return err
	}

	data := cmdutil.MustGetString(cmd, "data")
	records, err := codec.ReadRecordsFile(data)
	if err != nil {
		return err
	}

	var reg *registry.Registry
	if path := cmdutil.MustGetString(cmd, "regions"); path != "" {
		if reg, err = registry.LoadFile(ctx, path); err != nil {
			return err
		}
	}

	idx, err := index.New(records, reg, filepath.Base(data))
	if err != nil {
		return err
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
		m.ObserveStats(idx.Stats())
	}

	logger.Info().
		Str("addr", cfg.Addr()).
		Str("prefix", cfg.PathPrefix).
		Bool("cors", cfg.CORSEnabled).
		Dur("cache_ttl", cfg.CacheTTL).
		Int("villages", idx.Len()).
		Float64("coverage_percent", idx.Coverage().CoveragePercent).
		Msg("Starting lookup server")

	return server.New(idx, cfg, logger, m, app.Version()).ListenAndServe(ctx)
}

func parseConfig(cmd *cobra.Command) (server.Config, error) {
	cfg := server.Config{
		Host:           cmdutil.MustGetString(cmd, "host"),
		Port:           cmdutil.MustGetInt(cmd, "port"),
		PathPrefix:     cmdutil.MustGetString(cmd, "prefix"),
		CORSEnabled:    cmdutil.MustGetBool(cmd, "cors"),
		CORSOrigins:    cmdutil.MustGetStringSlice(cmd, "cors-origins"),
		CacheTTL:       cmdutil.MustGetDuration(cmd, "cache-ttl"),
		ReadTimeout:    cmdutil.MustGetDuration(cmd, "read-timeout"),
		WriteTimeout:   cmdutil.MustGetDuration(cmd, "write-timeout"),
		IdleTimeout:    cmdutil.MustGetDuration(cmd, "idle-timeout"),
		MetricsEnabled: cmdutil.MustGetBool(cmd, "metrics"),
	}

	if addr := cmdutil.MustGetString(cmd, "addr"); addr != "" {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return cfg, fmt.Errorf("invalid --addr %q: %w", addr, err)
		}
		p, err := parsePort(port)
		if err != nil {
			return cfg, err
		}
		cfg.Host, cfg.Port = host, p
	} else if cfg.Port < 1 || cfg.Port > 65535 {
		return cfg, fmt.Errorf("port out of range: %d", cfg.Port)
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}
	return cfg, nil
}

func parsePort(portStr string) (int, error) {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, fmt.Errorf("invalid port number: %s", portStr)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port out of range: %d", port)
	}
	return port, nil
}
