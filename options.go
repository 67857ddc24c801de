package kodepos

import (
	"time"

	"github.com/kodepos-id/kodepos/pkg/errors"
	"github.com/kodepos-id/kodepos/pkg/profiles"
)

// config holds Builder settings
type config struct {
	profiles   profiles.Set
	buildYear  int
	provenance bool
	manifest   bool
	now        func() time.Time
}

func defaultConfig() *config {
	return &config{
		profiles: profiles.Builtin(),
		manifest: true,
		now:      time.Now,
	}
}

// Option is a function that configures a Builder
type Option func(*config) error

// WithProfiles replaces the profile set builds are resolved against
func WithProfiles(set profiles.Set) Option {
	return func(c *config) error {
		if len(set) == 0 {
			return errors.NewValidationError("profiles", nil, "profile set is empty")
		}
		c.profiles = set
		return nil
	}
}

// WithBuildYear fixes the build year instead of taking the current year
func WithBuildYear(year int) Option {
	return func(c *config) error {
		if year <= 0 {
			return errors.NewValidationError("build_year", year, "must be positive")
		}
		c.buildYear = year
		return nil
	}
}

// WithProvenance enables per-village provenance tracking
func WithProvenance(enabled bool) Option {
	return func(c *config) error {
		c.provenance = enabled
		return nil
	}
}

// WithManifest configures whether a build manifest is written
func WithManifest(enabled bool) Option {
	return func(c *config) error {
		c.manifest = enabled
		return nil
	}
}

// WithClock sets the time source used for the build year and report timestamps
func WithClock(now func() time.Time) Option {
	return func(c *config) error {
		if now == nil {
			return errors.NewValidationError("clock", nil, "must not be nil")
		}
		c.now = now
		return nil
	}
}
