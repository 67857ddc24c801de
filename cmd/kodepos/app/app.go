// Package app wires configuration, logging and the command tree of the
// kodepos CLI.
package app

import (
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/kodepos-id/kodepos"
	"github.com/kodepos-id/kodepos/cmd/application"
	"github.com/kodepos-id/kodepos/pkg/errors"
	"github.com/kodepos-id/kodepos/pkg/logging"
	"github.com/kodepos-id/kodepos/pkg/profiles"
)

var _ application.Application = (*App)(nil)

// App is the application container. It implements
// application.Application for the subcommands.
type App struct {
	version string
	commit  string
	date    string
	builtBy string

	config   *Config
	viper    *viper.Viper
	profiles profiles.Set
	logger   *zerolog.Logger
}

// New loads configuration and creates the App.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, v, err := LoadConfig("")
	if err != nil {
		return nil, err
	}
	app.config = config
	app.viper = v

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if app.profiles == nil {
		if app.profiles, err = profiles.FromViper(app.viper); err != nil {
			return nil, err
		}
	}
	if app.logger == nil {
		app.setLogger(NewLogger(app.config))
	}

	return app, nil
}

func (a *App) setLogger(logger zerolog.Logger) {
	a.logger = &logger
	logging.SetDefault(logger)
}

// Version returns the application version.
func (a *App) Version() string { return a.version }

// Commit returns the git commit hash.
func (a *App) Commit() string { return a.commit }

// Date returns the build date.
func (a *App) Date() string { return a.date }

// BuiltBy returns who built the binary.
func (a *App) BuiltBy() string { return a.builtBy }

// Config returns the application configuration.
func (a *App) Config() *Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger { return a.logger }

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string { return a.config.Format }

// DatabaseURL returns the configured Postgres DSN.
func (a *App) DatabaseURL() string { return a.config.DatabaseURL }

// Profiles returns the built-in profiles merged with configured ones.
func (a *App) Profiles() profiles.Set { return a.profiles }

// Builder creates a dataset builder for the configured profiles. A build
// year from configuration applies unless opts override it.
func (a *App) Builder(opts ...kodepos.Option) (*kodepos.Builder, error) {
	base := []kodepos.Option{kodepos.WithProfiles(a.profiles)}
	if a.config.BuildYear > 0 {
		base = append(base, kodepos.WithBuildYear(a.config.BuildYear))
	}
	b, err := kodepos.New(append(base, opts...)...)
	if err != nil {
		return nil, errors.NewConfigError("builder", "creating builder", err)
	}
	return b, nil
}

// Option configures an App.
type Option func(*App) error

// WithConfig replaces the loaded configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithProfiles replaces the profile set.
func WithProfiles(set profiles.Set) Option {
	return func(a *App) error {
		a.profiles = set
		return nil
	}
}
