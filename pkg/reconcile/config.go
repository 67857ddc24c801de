package reconcile

import (
	"slices"
	"time"

	"github.com/kodepos-id/kodepos/pkg/errors"
)

// Config is the immutable configuration of a Reconciler.
type Config struct {
	// BuildYear is stamped on unassigned records and on layers without a year
	BuildYear int
	// Chain lists layers from highest to lowest precedence
	Chain []Layer
	// TrackProvenance records every offer per village
	TrackProvenance bool
}

// Labels returns the chain's source labels in precedence order.
func (c Config) Labels() []string {
	labels := make([]string, len(c.Chain))
	for i, l := range c.Chain {
		labels[i] = l.Label()
	}
	return labels
}

// Option configures a Reconciler.
type Option func(*Config) error

// WithBuildYear sets the build year.
func WithBuildYear(year int) Option {
	return func(c *Config) error {
		if year <= 0 {
			return errors.NewValidationError("build_year", year, "must be positive")
		}
		c.BuildYear = year
		return nil
	}
}

// WithLayer appends a layer below the existing ones.
func WithLayer(layer Layer) Option {
	return func(c *Config) error {
		if err := layer.validate(len(c.Chain)); err != nil {
			return err
		}
		c.Chain = append(c.Chain, layer)
		return nil
	}
}

// WithChain replaces the whole precedence chain.
func WithChain(layers ...Layer) Option {
	return func(c *Config) error {
		for i, l := range layers {
			if err := l.validate(i); err != nil {
				return err
			}
		}
		c.Chain = slices.Clone(layers)
		return nil
	}
}

// WithProvenance enables per-village offer tracking.
func WithProvenance(enabled bool) Option {
	return func(c *Config) error {
		c.TrackProvenance = enabled
		return nil
	}
}

// Reconciler merges a precedence chain of source mappings onto a registry.
// It holds no mutable state and may be reused across calls.
type Reconciler struct {
	config Config
}

// New creates a Reconciler. The build year defaults to the current UTC year.
func New(opts ...Option) (*Reconciler, error) {
	c := Config{BuildYear: time.Now().UTC().Year()}
	for _, opt := range opts {
		if err := opt(&c); err != nil {
			return nil, err
		}
	}
	return &Reconciler{config: c}, nil
}

// Config returns a copy of the reconciler's configuration.
func (r *Reconciler) Config() Config {
	c := r.config
	c.Chain = slices.Clone(r.config.Chain)
	return c
}
