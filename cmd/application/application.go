// Package application defines what the kodepos commands need from the
// application. Commands depend on this interface rather than on the
// concrete App, so they can be tested with a mock.
package application

import (
	"github.com/rs/zerolog"

	"github.com/kodepos-id/kodepos"
	"github.com/kodepos-id/kodepos/pkg/profiles"
)

// Application is the interface commands are built against.
type Application interface {
	// Builder returns a dataset builder configured with the application's
	// profile set. opts are applied after the application defaults.
	Builder(opts ...kodepos.Option) (*kodepos.Builder, error)

	// Profiles returns the built-in profiles merged with configured ones.
	Profiles() profiles.Set

	// DatabaseURL returns the configured Postgres DSN, or "".
	DatabaseURL() string

	// Logger returns the application logger.
	Logger() *zerolog.Logger

	// OutputFormat returns the requested output format.
	OutputFormat() string

	// Version information
	Version() string
	Commit() string
	Date() string
	BuiltBy() string
}
